package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kutbudev/taskvault/internal/storage"
	"github.com/kutbudev/taskvault/pkg/models"
	"github.com/kutbudev/taskvault/repository"
)

// Handler bundles the dependencies the HTTP endpoints need
type Handler struct {
	tasks *repository.TaskRepository
	files *repository.FileRepository
	store *storage.Store
	log   *slog.Logger
}

// New creates a new handler
func New(tasks *repository.TaskRepository, files *repository.FileRepository, store *storage.Store, log *slog.Logger) *Handler {
	return &Handler{tasks: tasks, files: files, store: store, log: log}
}

// respondError maps the service error taxonomy onto HTTP status codes.
func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrTaskNotFound), errors.Is(err, models.ErrFileNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrFileTooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrInvalidDates),
		errors.Is(err, models.ErrDuplicateFile),
		errors.Is(err, models.ErrInvalidPriority),
		errors.Is(err, models.ErrInvalidStatus):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.log.Error("request failed", "method", c.Request.Method, "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
