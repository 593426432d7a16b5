package model

import (
	"slices"
	"time"
)

type Role string

const (
	RoleNormal Role = "normal"
	RoleAdmin  Role = "admin"
)

type BlogCategory struct {
	ID   int    `json:"id" bson:"id"`
	Name string `json:"name" bson:"name"`
}

type BlogSettings struct {
	BlogName       string         `json:"blogName" bson:"blogName"`
	FavoriteGenres []int          `json:"favoriteGenres" bson:"favoriteGenres"`
	BlogCategories []BlogCategory `json:"blogCategories" bson:"blogCategories"`
}

type User struct {
	ID                string        `json:"id" bson:"_id"`
	Account           string        `json:"account" bson:"account"`
	PasswordHash      string        `json:"-" bson:"password"`
	UserName          string        `json:"userName" bson:"userName"`
	UserImage         string        `json:"userImage,omitempty" bson:"userImage,omitempty"`
	Role              Role          `json:"type" bson:"type"`
	LikedArticles     []string      `json:"likedArticles" bson:"likedArticles"`
	CommentedArticles []string      `json:"commentedArticles" bson:"commentedArticles"`
	BlogSettings      *BlogSettings `json:"blogSettings,omitempty" bson:"blogSettings,omitempty"`
	CreatedAt         time.Time     `json:"dateCreated" bson:"dateCreated"`
}

func (u *User) HasLiked(postID string) bool {
	return slices.Contains(u.LikedArticles, postID)
}

func (u *User) HasCommented(postID string) bool {
	return slices.Contains(u.CommentedArticles, postID)
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u *User) AsAuthor() Author {
	return Author{ID: u.ID, Name: u.UserName, Image: u.UserImage}
}

// Actor is the authenticated caller of a request, resolved from the session token.
type Actor struct {
	UserID string
	Role   Role
}

func (a *Actor) IsAdmin() bool {
	return a != nil && a.Role == RoleAdmin
}

func (a *Actor) Is(userID string) bool {
	return a != nil && userID != "" && a.UserID == userID
}
