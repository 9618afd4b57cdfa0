package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/kutbudev/taskvault/pkg/models"
	"github.com/kutbudev/taskvault/repository"
)

// CreateTask creates a new task from a multipart form, optionally
// attaching tags and uploaded files in the same request.
func (h *Handler) CreateTask(c *gin.Context) {
	title := c.PostForm("title")
	if title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
		return
	}

	priority, err := ParsePriority(c.PostForm("priority"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	status, err := ParseStatus(c.PostForm("status"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	task := models.Task{
		Title:       title,
		Description: c.PostForm("description"),
		Priority:    priority,
		Status:      status,
	}
	if task.StartDate, err = ParseTime(c.PostForm("start_date")); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if task.EndDate, err = ParseTime(c.PostForm("end_date")); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if task.Deadline, err = ParseTime(c.PostForm("deadline")); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.tasks.Create(&task, c.PostFormArray("tags"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	if form, formErr := c.MultipartForm(); formErr == nil && len(form.File["files"]) > 0 {
		paths, err := h.store.SaveAll(created.ID.String(), form.File["files"])
		if err != nil {
			h.respondError(c, err)
			return
		}
		if _, err := h.files.AddAll(created.ID, paths); err != nil {
			h.respondError(c, err)
			return
		}
		if created, err = h.tasks.Get(created.ID); err != nil {
			h.respondError(c, err)
			return
		}
	}

	c.JSON(http.StatusOK, created)
}

// ListTasks retrieves tasks matching the optional filter criteria.
func (h *Handler) ListTasks(c *gin.Context) {
	var filter repository.TaskFilter

	priority, err := ParsePriority(c.Query("priority"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	if priority != "" {
		filter.Priority = &priority
	}
	status, err := ParseStatus(c.Query("status"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	if status != "" {
		filter.Status = &status
	}

	bounds := []struct {
		param string
		dst   **time.Time
	}{
		{"start_date_before", &filter.StartBefore},
		{"start_date_after", &filter.StartAfter},
		{"end_date_before", &filter.EndBefore},
		{"end_date_after", &filter.EndAfter},
		{"deadline_before", &filter.DeadlineBefore},
		{"deadline_after", &filter.DeadlineAfter},
	}
	for _, b := range bounds {
		t, err := ParseTime(c.Query(b.param))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		*b.dst = t
	}

	filter.Search = c.Query("search")
	filter.Tag = c.Query("tag")

	tasks, err := h.tasks.List(filter)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, tasks)
}

// GetTask retrieves a single task by its ID.
func (h *Handler) GetTask(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": models.ErrTaskNotFound.Error()})
		return
	}

	task, err := h.tasks.Get(id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

// UpdateTaskInput DTO for partially updating a task. Absent fields leave
// the stored value untouched; a present tags list replaces the whole tag
// set, even when empty.
type UpdateTaskInput struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Priority    *string    `json:"priority"`
	Status      *string    `json:"status"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	Deadline    *time.Time `json:"deadline"`
	Tags        *[]string  `json:"tags"`
}

// UpdateTask applies a partial update to an existing task.
func (h *Handler) UpdateTask(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": models.ErrTaskNotFound.Error()})
		return
	}

	var input UpdateTaskInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	changes := repository.TaskUpdate{
		Title:       input.Title,
		Description: input.Description,
		StartDate:   input.StartDate,
		EndDate:     input.EndDate,
		Deadline:    input.Deadline,
		Tags:        input.Tags,
	}
	if input.Priority != nil {
		priority, err := ParsePriority(*input.Priority)
		if err != nil {
			h.respondError(c, err)
			return
		}
		changes.Priority = &priority
	}
	if input.Status != nil {
		status, err := ParseStatus(*input.Status)
		if err != nil {
			h.respondError(c, err)
			return
		}
		changes.Status = &status
	}

	task, err := h.tasks.Update(id, changes)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

// DeleteTask deletes a task, its file records and the stored file content.
func (h *Handler) DeleteTask(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": models.ErrTaskNotFound.Error()})
		return
	}

	task, err := h.tasks.Get(id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	// Physical content goes first; a failed unlink is logged and does not
	// block removal of the records.
	for _, file := range task.Files {
		if err := h.store.Remove(file.FilePath); err != nil {
			h.log.Warn("failed to remove file content", "task", id, "path", file.FilePath, "error", err)
		}
	}

	if err := h.tasks.Delete(id); err != nil {
		h.respondError(c, err)
		return
	}

	if err := h.store.RemoveTaskDir(id.String()); err != nil {
		h.log.Warn("failed to remove task dir", "task", id, "error", err)
	}

	c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}
