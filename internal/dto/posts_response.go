package dto

import "github.com/fillog/blog-service/internal/model"

type GetPost struct {
	Post      *model.Post `json:"post"`
	LikeCount int         `json:"likeCount"`
	IsLiked   bool        `json:"isLiked"`
}

type LikeResponse struct {
	Liked     bool        `json:"liked"`
	LikeCount int         `json:"likeCount"`
	Post      *model.Post `json:"post"`
}
