package model

import (
	"slices"
	"time"
)

type TargetKind string

const (
	TargetPost    TargetKind = "post"
	TargetComment TargetKind = "comment"
)

// ReplyTarget says what a comment answers: the post itself or another comment.
type ReplyTarget struct {
	Kind     TargetKind `json:"kind" bson:"target"`
	TargetID string     `json:"targetId,omitempty" bson:"targetID,omitempty"`
}

func (t ReplyTarget) IsNested() bool {
	return t.Kind == TargetComment
}

type Comment struct {
	ID           string      `json:"id" bson:"_id"`
	PostID       string      `json:"repliedArticle" bson:"repliedArticle"`
	ReplyTarget  ReplyTarget `json:"replyTarget" bson:"replyTarget"`
	AuthorID     string      `json:"userID,omitempty" bson:"userID,omitempty"`
	AuthorName   string      `json:"userName" bson:"userName"`
	PasswordHash string      `json:"-" bson:"password,omitempty"`
	Text         string      `json:"replyText" bson:"replyText"`
	ReReplies    []string    `json:"reReplies" bson:"reReplies"`
	CreatedAt    time.Time   `json:"createdAt" bson:"createdAt"`
}

func (c *Comment) HasPassword() bool {
	return c.PasswordHash != ""
}

func (c *Comment) HasReReply(id string) bool {
	return slices.Contains(c.ReReplies, id)
}
