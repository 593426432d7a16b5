package dto

import "github.com/fillog/blog-service/internal/model"

type CreatePostRequest struct {
	Title      string            `json:"title"`
	Category   string            `json:"category"`
	MovieID    *int64            `json:"movieID"`
	Text       string            `json:"text"`
	ThumbIndex int               `json:"thumbIndex"`
	Images     []model.PostImage `json:"images"`
}

type EditPostRequest struct {
	Title      *string           `json:"title"`
	Category   *string           `json:"category"`
	MovieID    *int64            `json:"movieID"`
	Text       *string           `json:"text"`
	ThumbIndex *int              `json:"thumbIndex"`
	Images     []model.PostImage `json:"images"`
}

func (r EditPostRequest) ToUpdate() model.PostUpdate {
	return model.PostUpdate{
		Title:      r.Title,
		Category:   r.Category,
		Text:       r.Text,
		MovieID:    r.MovieID,
		ThumbIndex: r.ThumbIndex,
		Images:     r.Images,
	}
}
