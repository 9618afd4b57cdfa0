package handlers

import (
	"fmt"
	"strings"
	"time"

	"github.com/kutbudev/taskvault/pkg/models"
)

// ParsePriority converts a client-supplied priority string to its model
// value, accepting any letter case. An empty input yields the zero value so
// callers can apply their own default.
func ParsePriority(p string) (models.TaskPriority, error) {
	switch strings.ToLower(p) {
	case "":
		return "", nil
	case "low":
		return models.TaskPriorityLow, nil
	case "medium":
		return models.TaskPriorityMedium, nil
	case "high":
		return models.TaskPriorityHigh, nil
	default:
		return "", fmt.Errorf("%w: %q", models.ErrInvalidPriority, p)
	}
}

// ParseStatus converts a client-supplied status string to its model value,
// accepting any letter case. An empty input yields the zero value.
func ParseStatus(s string) (models.TaskStatus, error) {
	switch strings.ToLower(s) {
	case "":
		return "", nil
	case "created":
		return models.TaskStatusCreated, nil
	case "inprogress", "in_progress":
		return models.TaskStatusInProgress, nil
	case "testing":
		return models.TaskStatusTesting, nil
	case "revision":
		return models.TaskStatusRevision, nil
	case "update":
		return models.TaskStatusUpdate, nil
	case "done":
		return models.TaskStatusDone, nil
	default:
		return "", fmt.Errorf("%w: %q", models.ErrInvalidStatus, s)
	}
}

// timeFormats are the accepted layouts for form and query timestamps.
var timeFormats = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

// ParseTime parses a form or query timestamp. An empty input yields nil.
func ParseTime(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	for _, layout := range timeFormats {
		if t, err := time.Parse(layout, value); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("invalid timestamp %q", value)
}
