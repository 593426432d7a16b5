package dto

import "github.com/fillog/blog-service/internal/model"

type SessionUser struct {
	ID        string     `json:"id"`
	Account   string     `json:"account"`
	UserName  string     `json:"userName"`
	UserImage string     `json:"userImage,omitempty"`
	Role      model.Role `json:"type"`
}

type LoginResponse struct {
	Token string      `json:"token"`
	User  SessionUser `json:"user"`
}

type FollowResponse struct {
	Following bool     `json:"following"`
	Changed   bool     `json:"changed"`
	Followers []string `json:"followers"`
}

type ProfileResponse struct {
	User      *model.User `json:"user"`
	Followers []string    `json:"followers"`
	Following []string    `json:"following"`
}
