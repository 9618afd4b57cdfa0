// Package api assembles the HTTP routing table.
package api

import (
	"github.com/gin-gonic/gin"
	"github.com/kutbudev/taskvault/api/handlers"
)

// NewRouter builds the gin engine with all task and file routes mounted.
func NewRouter(h *handlers.Handler) *gin.Engine {
	r := gin.Default()

	// Ping endpoint for health check
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	tasks := r.Group("/tasks")
	{
		tasks.POST("", h.CreateTask)
		tasks.GET("", h.ListTasks)
		tasks.GET("/:id", h.GetTask)
		tasks.PUT("/:id", h.UpdateTask)
		tasks.DELETE("/:id", h.DeleteTask)

		tasks.GET("/:id/files", h.ListTaskFiles)
		tasks.POST("/:id/files", h.UploadTaskFiles)
		tasks.DELETE("/:id/files/:fileId", h.DeleteTaskFile)
		tasks.GET("/:id/files/:fileId/download", h.DownloadTaskFile)
	}

	return r
}
