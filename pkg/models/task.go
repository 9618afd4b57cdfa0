package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TaskStatus represents the status of a task
type TaskStatus string

const (
	TaskStatusCreated    TaskStatus = "Created"
	TaskStatusInProgress TaskStatus = "InProgress"
	TaskStatusTesting    TaskStatus = "Testing"
	TaskStatusRevision   TaskStatus = "Revision"
	TaskStatusUpdate     TaskStatus = "Update"
	TaskStatusDone       TaskStatus = "Done"
)

// TaskPriority represents the priority of a task
type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "Low"
	TaskPriorityMedium TaskPriority = "Medium"
	TaskPriorityHigh   TaskPriority = "High"
)

// Task represents a task in the system
type Task struct {
	ID          uuid.UUID    `json:"id" gorm:"primaryKey;type:uuid"`
	Title       string       `json:"title" gorm:"not null;index"`
	Description string       `json:"description"`
	Priority    TaskPriority `json:"priority" gorm:"not null;type:varchar(20);default:'Medium'"`
	Status      TaskStatus   `json:"status" gorm:"not null;type:varchar(20);default:'Created'"`
	StartDate   *time.Time   `json:"start_date,omitempty"`
	EndDate     *time.Time   `json:"end_date,omitempty"`
	Deadline    *time.Time   `json:"deadline,omitempty"`
	CreatedAt   time.Time    `json:"created_at" gorm:"not null;index"`

	// Many-to-Many Relations
	Tags []*Tag `json:"tags" gorm:"many2many:task_tags"`

	// One-to-Many Relations
	Files []*TaskFile `json:"files" gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE"`
}

// BeforeCreate assigns the ID in application code so generation works the
// same on every database backend.
func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// ValidateDates checks the ordering invariants between scheduling
// timestamps: start_date <= end_date, and deadline >= start_date, whenever
// both sides are set.
func (t *Task) ValidateDates() error {
	if t.StartDate != nil && t.EndDate != nil && t.StartDate.After(*t.EndDate) {
		return ErrInvalidDates
	}
	if t.StartDate != nil && t.Deadline != nil && t.Deadline.Before(*t.StartDate) {
		return ErrInvalidDates
	}
	return nil
}

// TaskFile represents metadata for one uploaded file owned by a task
type TaskFile struct {
	ID       uuid.UUID `json:"id" gorm:"primaryKey;type:uuid"`
	TaskID   uuid.UUID `json:"task_id" gorm:"not null;type:uuid;index:idx_task_files_task"`
	FilePath string    `json:"file_path" gorm:"not null"`

	// Foreign Key Relations
	Task *Task `json:"-" gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE"`
}

func (f *TaskFile) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}
