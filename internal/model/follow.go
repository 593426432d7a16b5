package model

import "time"

// Follow is a directed edge: Follower follows Followee.
type Follow struct {
	FollowerID string    `json:"followerID"`
	FolloweeID string    `json:"followeeID"`
	CreatedAt  time.Time `json:"createdAt"`
}
