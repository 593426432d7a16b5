package dto

import "github.com/fillog/blog-service/internal/model"

type RegisterRequest struct {
	Account   string `json:"account"`
	Password  string `json:"password"`
	UserName  string `json:"userName"`
	UserImage string `json:"userImage"`
}

type LoginRequest struct {
	Account  string `json:"account"`
	Password string `json:"password"`
}

type BlogSettingsRequest struct {
	BlogName       string               `json:"blogName"`
	FavoriteGenres []int                `json:"favoriteGenres"`
	BlogCategories []model.BlogCategory `json:"blogCategories"`
}
