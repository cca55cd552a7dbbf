package model

import "time"

// User account row. Only the salt and the derived hash are stored, never
// the plaintext.
type User struct {
	ID           int64  `gorm:"primaryKey"`
	Username     string `gorm:"type:varchar(64);uniqueIndex;not null"`
	PasswordSalt []byte `gorm:"not null"`
	PasswordHash []byte `gorm:"not null"`
	CreatedAt    time.Time
}

func (User) TableName() string { return "users" }
