package model

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Label struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey"`
	BoardID uuid.UUID `gorm:"type:uuid;not null;index"`
	Name    string    `gorm:"not null"`
	Color   string    `gorm:"not null"`

	Board  Board   `gorm:"foreignKey:BoardID"`
	Issues []Issue `gorm:"many2many:issue_labels"`
}

func (l *Label) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// All lists every table, parents first, for AutoMigrate.
func All() []any {
	return []any{
		&User{},
		&PendingUser{},
		&PasswordReset{},
		&Project{},
		&ProjectMembership{},
		&Board{},
		&Column{},
		&Issue{},
		&Label{},
	}
}
