package models

import "gorm.io/gorm"

const (
	RoleOwner  = "OWNER"
	RoleMember = "MEMBER"
)

// A user holds at most one membership per project. The owner's row is
// written at project creation, but membership checks treat owner_id as
// membership regardless, so authorization never depends on the row existing.
type ProjectMembership struct {
	gorm.Model

	UserID    uint   `gorm:"not null;uniqueIndex:idx_user_project"`
	ProjectID uint   `gorm:"not null;uniqueIndex:idx_user_project"`
	Role      string `gorm:"not null"`

	// Relationships
	User    User    `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Project Project `gorm:"foreignKey:ProjectID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
