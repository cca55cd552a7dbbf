package model

import "time"

// MaxContentPoints is the bloom length limit in Unicode code points.
const MaxContentPoints = 280

// Bloom is a single post. The id encodes the creation instant at
// microsecond resolution, so ids sort by wall-clock time and double as
// pagination cursors.
type Bloom struct {
	ID            int64     `gorm:"primaryKey;autoIncrement:false"`
	SenderID      int64     `gorm:"index:idx_bloom_sender;not null"`
	Content       string    `gorm:"type:text;not null"`
	SendTimestamp time.Time `gorm:"index;not null"`
	// OriginalSender is set when this bloom reblooms another user's
	// content. It records only the origin username; there is no foreign
	// key to the original bloom row.
	OriginalSender *string `gorm:"type:varchar(64)"`
	RebloomCount   int64   `gorm:"not null;default:0"`
}

func (Bloom) TableName() string { return "blooms" }
