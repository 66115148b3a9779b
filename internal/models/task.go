package models

import (
	"time"

	"github.com/taskflow-dev/taskflow/internal/types"
	"gorm.io/gorm"
)

type Task struct {
	gorm.Model

	Title       string             `gorm:"not null"`
	Description string
	Status      types.TaskStatus   `gorm:"not null;default:TODO"`
	Priority    types.TaskPriority `gorm:"not null;default:MEDIUM"`
	ProjectID   uint               `gorm:"not null;index"`
	AssigneeID  *uint              `gorm:"index"`
	ReporterID  uint               `gorm:"not null;index"` // user who created the task, never changes
	DueDate     *time.Time

	// Relationships
	Project  Project `gorm:"foreignKey:ProjectID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Assignee *User   `gorm:"foreignKey:AssigneeID;constraint:OnUpdate:Cascade,OnDelete:SET NULL"`
	Reporter User    `gorm:"foreignKey:ReporterID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
