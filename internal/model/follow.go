package model

import (
	"time"
)

// Follow edge: follower follows followee.
type Follow struct {
	ID         string `gorm:"primaryKey;type:varchar(36)"`
	FollowerID int64  `gorm:"index:idx_follow_follower;index:idx_follow_pair,unique;not null"`
	FolloweeID int64  `gorm:"not null;index:idx_follow_pair,unique;index:idx_follow_followee"`
	// idx_follow_pair = (follower_id, followee_id) keeps the edge unique;
	// duplicate follow attempts are absorbed, not surfaced.
	CreatedAt time.Time
}

func (Follow) TableName() string { return "follows" }
