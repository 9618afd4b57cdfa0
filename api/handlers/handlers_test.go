package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/kutbudev/taskvault/api"
	"github.com/kutbudev/taskvault/api/handlers"
	"github.com/kutbudev/taskvault/internal/storage"
	"github.com/kutbudev/taskvault/pkg/models"
	"github.com/kutbudev/taskvault/repository"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testMaxUpload keeps the size ceiling small so the 413 path is cheap to hit.
const testMaxUpload = 1024

type testServer struct {
	router    *gin.Engine
	db        *gorm.DB
	uploadDir string
}

func setupServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Tag{}, &models.Task{}, &models.TaskFile{}))

	uploadDir := t.TempDir()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := storage.New(uploadDir, testMaxUpload, log)

	h := handlers.New(
		repository.NewTaskRepository(db),
		repository.NewFileRepository(db),
		store,
		log,
	)
	return &testServer{router: api.NewRouter(h), db: db, uploadDir: uploadDir}
}

func (s *testServer) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

// multipartRequest builds a task-creation or upload request from form
// fields and files.
func multipartRequest(t *testing.T, method, url string, fields map[string][]string, files map[string]string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for key, values := range fields {
		for _, value := range values {
			require.NoError(t, w.WriteField(key, value))
		}
	}
	for name, content := range files {
		fw, err := w.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(method, url, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func jsonRequest(t *testing.T, method, url string, payload interface{}) *http.Request {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(method, url, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeTask(t *testing.T, rec *httptest.ResponseRecorder) models.Task {
	t.Helper()
	var task models.Task
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &task))
	return task
}

func decodeTasks(t *testing.T, rec *httptest.ResponseRecorder) []models.Task {
	t.Helper()
	var tasks []models.Task
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tasks))
	return tasks
}

// createTask is a shortcut for tests that just need an existing task.
func (s *testServer) createTask(t *testing.T, title string, extra map[string][]string) models.Task {
	t.Helper()
	fields := map[string][]string{"title": {title}}
	for k, v := range extra {
		fields[k] = v
	}
	rec := s.do(t, multipartRequest(t, http.MethodPost, "/tasks", fields, nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decodeTask(t, rec)
}
