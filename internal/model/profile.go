package model

import "time"

// Profile tracks a user's organizational membership and privilege flags.
// The primary key is the identity provider's user id, so there is at most
// one profile per user. Profiles are created reactively on first sight.
type Profile struct {
	ID          string    `json:"id" gorm:"primaryKey;type:uuid"`
	OrgID       *int64    `json:"org_id" gorm:"column:org_id;index"`
	IsActivated bool      `json:"is_activated" gorm:"column:is_activated"`
	IsSuperuser bool      `json:"is_superuser" gorm:"column:is_superuser;default:false"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Profile) TableName() string {
	return "profiles"
}
