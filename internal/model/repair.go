package model

import "time"

type RepairKind string

const (
	// RepairLike means a post's likes may disagree with a user's likedArticles.
	RepairLike RepairKind = "like"
	// RepairComment means a comment record may be half created or half
	// deleted. Repair removes it from its post and parent and deletes it.
	RepairComment RepairKind = "comment"
)

// RepairTask records a multi-entity operation that stopped half way.
type RepairTask struct {
	ID        string     `json:"id"`
	Kind      RepairKind `json:"kind"`
	Op        string     `json:"op"`
	PostID    string     `json:"postID,omitempty"`
	UserID    string     `json:"userID,omitempty"`
	CommentID string     `json:"commentID,omitempty"`
	ParentID  string     `json:"parentID,omitempty"`
	Completed []string   `json:"completed"`
	Failed    string     `json:"failed"`
	Attempts  int        `json:"attempts"`
	CreatedAt time.Time  `json:"createdAt"`
}
