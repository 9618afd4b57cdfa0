package models

import "errors"

// Service error taxonomy. Handlers translate these into HTTP status codes
// with errors.Is, so every layer below wraps rather than replaces them.
var (
	ErrTaskNotFound    = errors.New("task not found")
	ErrFileNotFound    = errors.New("file not found")
	ErrInvalidDates    = errors.New("start_date must not be after end_date, and deadline must not be before start_date")
	ErrDuplicateFile   = errors.New("file with this name already exists for the task")
	ErrFileTooLarge    = errors.New("file exceeds the maximum allowed size")
	ErrInvalidPriority = errors.New("invalid priority")
	ErrInvalidStatus   = errors.New("invalid status")
)
