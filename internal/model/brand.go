package model

import "time"

// Brand is a read-only passthrough entity owned by the hosted store.
type Brand struct {
	ID          int64     `json:"id" gorm:"primaryKey"`
	Slug        string    `json:"slug" gorm:"type:varchar(100);uniqueIndex;not null"`
	Name        string    `json:"name" gorm:"type:varchar(100)"`
	Description string    `json:"description" gorm:"type:text"`
	OrgID       *int64    `json:"org_id" gorm:"column:org_id;index"`
	CreatedAt   time.Time `json:"created_at"`
}

func (Brand) TableName() string {
	return "brands"
}
