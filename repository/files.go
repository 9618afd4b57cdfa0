package repository

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/kutbudev/taskvault/pkg/models"
	"gorm.io/gorm"
)

// FileRepository persists task file metadata
type FileRepository struct {
	db *gorm.DB
}

// NewFileRepository creates a new file repository
func NewFileRepository(db *gorm.DB) *FileRepository {
	return &FileRepository{db: db}
}

// AddAll inserts one metadata record per stored path, in the given order,
// after a whole upload batch has been placed on disk.
func (r *FileRepository) AddAll(taskID uuid.UUID, paths []string) ([]*models.TaskFile, error) {
	files := make([]*models.TaskFile, 0, len(paths))
	for _, path := range paths {
		files = append(files, &models.TaskFile{TaskID: taskID, FilePath: path})
	}
	if len(files) == 0 {
		return files, nil
	}
	if err := r.db.Create(&files).Error; err != nil {
		return nil, fmt.Errorf("failed to record files: %w", err)
	}
	return files, nil
}

// ListByTask returns the task's file records.
func (r *FileRepository) ListByTask(taskID uuid.UUID) ([]*models.TaskFile, error) {
	files := []*models.TaskFile{}
	if err := r.db.Where("task_id = ?", taskID).Find(&files).Error; err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	return files, nil
}

// Get returns the file record addressed by (task id, file id).
func (r *FileRepository) Get(taskID, fileID uuid.UUID) (*models.TaskFile, error) {
	var file models.TaskFile
	err := r.db.First(&file, "task_id = ? AND id = ?", taskID, fileID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrFileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load file: %w", err)
	}
	return &file, nil
}

// Delete removes a file metadata record.
func (r *FileRepository) Delete(file *models.TaskFile) error {
	if err := r.db.Delete(file).Error; err != nil {
		return fmt.Errorf("failed to delete file record: %w", err)
	}
	return nil
}
