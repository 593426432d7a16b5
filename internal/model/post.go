package model

import (
	"slices"
	"time"
)

type PostImage struct {
	Index    int    `json:"index" bson:"index"`
	ImageURL string `json:"imageURL" bson:"imageURL"`
	Alt      string `json:"alt,omitempty" bson:"alt,omitempty"`
}

// Author is the snapshot of a user stored on posts and guestbook entries.
type Author struct {
	ID    string `json:"userID,omitempty" bson:"userID,omitempty"`
	Name  string `json:"userName" bson:"userName"`
	Image string `json:"userImage,omitempty" bson:"userImage,omitempty"`
}

type Post struct {
	ID         string      `json:"id" bson:"_id"`
	Title      string      `json:"title" bson:"title"`
	Category   string      `json:"category" bson:"category"`
	MovieID    *int64      `json:"movieID,omitempty" bson:"movieID,omitempty"`
	Text       string      `json:"text" bson:"text"`
	ThumbIndex int         `json:"thumbIndex" bson:"thumbIndex"`
	Images     []PostImage `json:"images" bson:"images"`
	Likes      []string    `json:"likes" bson:"likes"`
	Comments   []string    `json:"comments" bson:"comments"`
	Author     Author      `json:"author" bson:"author"`
	CreatedAt  time.Time   `json:"createdAt" bson:"createdAt"`
	UpdatedAt  time.Time   `json:"updatedAt" bson:"updatedAt"`
}

func (p *Post) LikeCount() int {
	return len(p.Likes)
}

func (p *Post) IsLikedBy(userID string) bool {
	return slices.Contains(p.Likes, userID)
}

func (p *Post) HasComment(commentID string) bool {
	return slices.Contains(p.Comments, commentID)
}

// PostUpdate carries the fields of a partial post edit; nil means unchanged.
type PostUpdate struct {
	Title      *string
	Category   *string
	Text       *string
	MovieID    *int64
	ThumbIndex *int
	Images     []PostImage
}

func (u PostUpdate) IsEmpty() bool {
	return u.Title == nil && u.Category == nil && u.Text == nil && u.MovieID == nil && u.ThumbIndex == nil && u.Images == nil
}

type PostFilter struct {
	Category string
	AuthorID string
}
