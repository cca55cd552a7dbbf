package model

// Hashtag index row, derived from bloom content at insert time. Rows are
// append-only and written in the same transaction as their bloom. The tag
// is stored verbatim with the leading '#' stripped; no case folding.
type Hashtag struct {
	Hashtag string `gorm:"type:varchar(280);index:idx_hashtag_tag;not null"`
	BloomID int64  `gorm:"index:idx_hashtag_bloom;not null"`
}

func (Hashtag) TableName() string { return "hashtags" }
