package handlers

import (
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/kutbudev/taskvault/pkg/models"
)

// ListTaskFiles retrieves the file records of a task.
func (h *Handler) ListTaskFiles(c *gin.Context) {
	taskID, ok := h.taskIDParam(c)
	if !ok {
		return
	}

	files, err := h.files.ListByTask(taskID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, files)
}

// UploadTaskFiles stores a batch of uploaded files for an existing task.
func (h *Handler) UploadTaskFiles(c *gin.Context) {
	taskID, ok := h.taskIDParam(c)
	if !ok {
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	headers := form.File["files"]
	if len(headers) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no files provided"})
		return
	}

	paths, err := h.store.SaveAll(taskID.String(), headers)
	if err != nil {
		h.respondError(c, err)
		return
	}

	files, err := h.files.AddAll(taskID, paths)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, files)
}

// DeleteTaskFile removes one file record and its stored content. Content
// already missing from disk does not fail the request.
func (h *Handler) DeleteTaskFile(c *gin.Context) {
	taskID, fileID, ok := h.fileParams(c)
	if !ok {
		return
	}

	file, err := h.files.Get(taskID, fileID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	if err := h.store.Remove(file.FilePath); err != nil {
		h.respondError(c, err)
		return
	}
	if err := h.files.Delete(file); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "File deleted successfully"})
}

// DownloadTaskFile streams stored file content back to the client under
// its original filename.
func (h *Handler) DownloadTaskFile(c *gin.Context) {
	taskID, fileID, ok := h.fileParams(c)
	if !ok {
		return
	}

	file, err := h.files.Get(taskID, fileID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	f, err := h.store.Open(file.FilePath)
	if err != nil {
		h.respondError(c, err)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.DataFromReader(http.StatusOK, info.Size(), "application/octet-stream", f, map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=%q", filepath.Base(file.FilePath)),
	})
}

// taskIDParam parses the :id parameter and verifies the task exists.
func (h *Handler) taskIDParam(c *gin.Context) (uuid.UUID, bool) {
	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": models.ErrTaskNotFound.Error()})
		return uuid.Nil, false
	}
	exists, err := h.tasks.Exists(taskID)
	if err != nil {
		h.respondError(c, err)
		return uuid.Nil, false
	}
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": models.ErrTaskNotFound.Error()})
		return uuid.Nil, false
	}
	return taskID, true
}

// fileParams parses the :id and :fileId parameters.
func (h *Handler) fileParams(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": models.ErrFileNotFound.Error()})
		return uuid.Nil, uuid.Nil, false
	}
	fileID, err := uuid.Parse(c.Param("fileId"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": models.ErrFileNotFound.Error()})
		return uuid.Nil, uuid.Nil, false
	}
	return taskID, fileID, true
}
