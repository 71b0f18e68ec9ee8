package model

import "time"

// Org represents an organization row in the hosted store. Rows are created
// lazily the first time a slug is referenced and are never deleted here.
type Org struct {
	OrgID     int64     `json:"org_id" gorm:"primaryKey;column:org_id;autoIncrement"`
	OrgSlug   string    `json:"org_slug" gorm:"column:org_slug;type:varchar(100);uniqueIndex;not null"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName matches the table name used by the hosted store.
func (Org) TableName() string {
	return "orgs"
}
