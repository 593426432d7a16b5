package model

import "time"

type GuestbookAuthor struct {
	IsUser       bool   `json:"isUser" bson:"isUser"`
	UserID       string `json:"userID,omitempty" bson:"userID,omitempty"`
	UserName     string `json:"userName" bson:"userName"`
	UserImage    string `json:"userImage,omitempty" bson:"userImage,omitempty"`
	PasswordHash string `json:"-" bson:"password,omitempty"`
}

type Guestbook struct {
	ID          string          `json:"id" bson:"_id"`
	WrittenUser GuestbookAuthor `json:"writtenUser" bson:"writtenUser"`
	Text        string          `json:"text" bson:"text"`
	Replies     []string        `json:"replies" bson:"replies"`
	CreatedAt   time.Time       `json:"createdAt" bson:"createdAt"`
}

type GuestbookReply struct {
	ID          string    `json:"id" bson:"_id"`
	GuestbookID string    `json:"guestbookID" bson:"guestbookID"`
	ReplyUserID string    `json:"replyUserID" bson:"replyUserID"`
	ReplyText   string    `json:"replyText" bson:"replyText"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
}

// FullGuestbook is a guestbook entry with its replies resolved in order.
type FullGuestbook struct {
	Guestbook
	ReplyList []*GuestbookReply `json:"replyList"`
}
