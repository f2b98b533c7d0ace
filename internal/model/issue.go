package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	PriorityLow    = "LOW"
	PriorityMedium = "MEDIUM"
	PriorityHigh   = "HIGH"
)

// Issue lives in a column. ReporterID is fixed at creation; AssigneeID may be
// any existing user regardless of project role.
type Issue struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	ColumnID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Title       string    `gorm:"not null"`
	Description string
	Priority    string     `gorm:"not null"`
	ReporterID  uuid.UUID  `gorm:"type:uuid;not null"`
	AssigneeID  *uuid.UUID `gorm:"type:uuid"`
	DueDate     *time.Time
	Position    int `gorm:"not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Column   Column  `gorm:"foreignKey:ColumnID"`
	Reporter User    `gorm:"foreignKey:ReporterID"`
	Assignee *User   `gorm:"foreignKey:AssigneeID"`
	Labels   []Label `gorm:"many2many:issue_labels"`
}

func (i *Issue) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
