package repository

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kutbudev/taskvault/pkg/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TaskRepository persists tasks and their tag associations
type TaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new task repository
func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// TaskUpdate is a partial change set for a task. Nil fields are left
// untouched. A non-nil Tags replaces the whole tag set, even when empty.
type TaskUpdate struct {
	Title       *string
	Description *string
	Priority    *models.TaskPriority
	Status      *models.TaskStatus
	StartDate   *time.Time
	EndDate     *time.Time
	Deadline    *time.Time
	Tags        *[]string
}

// Create inserts a new task and associates it with the named tags,
// resolving each name with get-or-create semantics.
func (r *TaskRepository) Create(task *models.Task, tagNames []string) (*models.Task, error) {
	if task.Priority == "" {
		task.Priority = models.TaskPriorityMedium
	}
	if task.Status == "" {
		task.Status = models.TaskStatusCreated
	}
	if err := task.ValidateDates(); err != nil {
		return nil, err
	}

	if err := r.db.Omit(clause.Associations).Create(task).Error; err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	if len(tagNames) > 0 {
		tags, err := r.resolveTags(tagNames)
		if err != nil {
			return nil, err
		}
		if err := r.db.Model(task).Association("Tags").Append(tags); err != nil {
			return nil, fmt.Errorf("failed to associate tags: %w", err)
		}
	}

	return r.Get(task.ID)
}

// Get returns the task with its tags and files preloaded.
func (r *TaskRepository) Get(id uuid.UUID) (*models.Task, error) {
	var task models.Task
	err := r.db.Preload("Tags").Preload("Files").First(&task, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrTaskNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load task: %w", err)
	}
	return &task, nil
}

// Exists reports whether a task with the given id is present.
func (r *TaskRepository) Exists(id uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.Model(&models.Task{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check task: %w", err)
	}
	return count > 0, nil
}

// List returns every task satisfying the filter, newest first, with tags
// and files preloaded. An empty filter returns all tasks.
func (r *TaskRepository) List(f TaskFilter) ([]*models.Task, error) {
	tasks := []*models.Task{}
	q := f.apply(r.db.Model(&models.Task{}))
	err := q.Preload("Tags").Preload("Files").
		Order("tasks.created_at DESC").
		Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// Update applies a partial change set. Date invariants are validated
// against the merged view of stored and proposed values before anything is
// written, so a rejected update leaves the task untouched.
func (r *TaskRepository) Update(id uuid.UUID, changes TaskUpdate) (*models.Task, error) {
	var task models.Task
	err := r.db.First(&task, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrTaskNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load task: %w", err)
	}

	if changes.Title != nil {
		task.Title = *changes.Title
	}
	if changes.Description != nil {
		task.Description = *changes.Description
	}
	if changes.Priority != nil {
		task.Priority = *changes.Priority
	}
	if changes.Status != nil {
		task.Status = *changes.Status
	}
	if changes.StartDate != nil {
		task.StartDate = changes.StartDate
	}
	if changes.EndDate != nil {
		task.EndDate = changes.EndDate
	}
	if changes.Deadline != nil {
		task.Deadline = changes.Deadline
	}

	if err := task.ValidateDates(); err != nil {
		return nil, err
	}

	if err := r.db.Omit(clause.Associations).Save(&task).Error; err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	if changes.Tags != nil {
		tags, err := r.resolveTags(*changes.Tags)
		if err != nil {
			return nil, err
		}
		assoc := r.db.Model(&task).Association("Tags")
		if len(tags) == 0 {
			err = assoc.Clear()
		} else {
			err = assoc.Replace(tags)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to replace tags: %w", err)
		}
	}

	return r.Get(id)
}

// Delete removes the task row together with its file rows and tag
// associations. Physical file cleanup is the caller's concern.
func (r *TaskRepository) Delete(id uuid.UUID) error {
	task, err := r.Get(id)
	if err != nil {
		return err
	}
	if err := r.db.Select(clause.Associations).Delete(task).Error; err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

// resolveTags maps tag names to rows with get-or-create semantics. The
// insert relies on the unique index rather than a read-then-write check,
// so concurrent creates of the same name converge on one row.
func (r *TaskRepository) resolveTags(names []string) ([]*models.Tag, error) {
	tags := make([]*models.Tag, 0, len(names))
	for _, name := range names {
		err := r.db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoNothing: true,
		}).Create(&models.Tag{Name: name}).Error
		if err != nil {
			return nil, fmt.Errorf("failed to create tag %q: %w", name, err)
		}
		// Re-read into a fresh value: on conflict the insert was skipped,
		// so the ID generated for the insert struct was never persisted
		// and must not leak into the lookup.
		var tag models.Tag
		if err := r.db.Where("name = ?", name).First(&tag).Error; err != nil {
			return nil, fmt.Errorf("failed to load tag %q: %w", name, err)
		}
		tags = append(tags, &tag)
	}
	return tags, nil
}
