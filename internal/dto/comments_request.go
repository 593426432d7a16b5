package dto

import "github.com/fillog/blog-service/internal/model"

// CreateCommentRequest answers the post when ReplyTarget is absent or of kind
// "post", and the comment ReplyTarget.TargetID otherwise.
type CreateCommentRequest struct {
	ReplyTarget *model.ReplyTarget `json:"replyTarget"`
	UserName    string             `json:"userName"`
	Password    string             `json:"password"`
	ReplyText   string             `json:"replyText"`
}

type DeleteCommentRequest struct {
	Password string `json:"password"`
}
