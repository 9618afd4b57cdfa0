package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Tag represents a tag in the system. Names are globally unique and tags
// are shared by every task that references them.
type Tag struct {
	ID   uuid.UUID `json:"id" gorm:"primaryKey;type:uuid"`
	Name string    `json:"name" gorm:"not null;unique;index:idx_tags_name"`

	// Many-to-Many Relations
	Tasks []*Task `json:"tasks,omitempty" gorm:"many2many:task_tags"`
}

func (t *Tag) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
