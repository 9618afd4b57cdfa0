package repository

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kutbudev/taskvault/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ts(day int) *time.Time {
	t := time.Date(2024, 3, day, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestTaskRepository_Create(t *testing.T) {
	repo := NewTaskRepository(setupTestDB(t))

	task, err := repo.Create(&models.Task{Title: "write report", Description: "quarterly"}, nil)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, task.ID)
	assert.Equal(t, models.TaskPriorityMedium, task.Priority)
	assert.Equal(t, models.TaskStatusCreated, task.Status)
	assert.Empty(t, task.Tags)
	assert.Empty(t, task.Files)
	assert.False(t, task.CreatedAt.IsZero())
}

func TestTaskRepository_CreateWithTags(t *testing.T) {
	repo := NewTaskRepository(setupTestDB(t))

	task, err := repo.Create(&models.Task{Title: "tagged"}, []string{"a", "b"})
	require.NoError(t, err)

	names := tagNames(task)
	assert.ElementsMatch(t, []string{"a", "b"}, names)
}

func TestTaskRepository_CreateValidatesDates(t *testing.T) {
	tests := []struct {
		name    string
		task    models.Task
		wantErr error
	}{
		{
			name: "start before end is accepted",
			task: models.Task{Title: "ok", StartDate: ts(1), EndDate: ts(2)},
		},
		{
			name: "start equal to end is accepted",
			task: models.Task{Title: "ok", StartDate: ts(1), EndDate: ts(1)},
		},
		{
			name:    "start after end is rejected",
			task:    models.Task{Title: "bad", StartDate: ts(2), EndDate: ts(1)},
			wantErr: models.ErrInvalidDates,
		},
		{
			name:    "deadline before start is rejected",
			task:    models.Task{Title: "bad", StartDate: ts(2), Deadline: ts(1)},
			wantErr: models.ErrInvalidDates,
		},
		{
			name: "deadline after start is accepted",
			task: models.Task{Title: "ok", StartDate: ts(1), Deadline: ts(3)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := setupTestDB(t)
			repo := NewTaskRepository(db)

			_, err := repo.Create(&tt.task, nil)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)

				// A rejected create must persist nothing.
				var count int64
				require.NoError(t, db.Model(&models.Task{}).Count(&count).Error)
				assert.Zero(t, count)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestTaskRepository_GetNotFound(t *testing.T) {
	repo := NewTaskRepository(setupTestDB(t))

	_, err := repo.Get(uuid.New())
	assert.ErrorIs(t, err, models.ErrTaskNotFound)
}

func TestTaskRepository_TagsAreSharedRows(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTaskRepository(db)

	first, err := repo.Create(&models.Task{Title: "one"}, []string{"a", "b"})
	require.NoError(t, err)
	second, err := repo.Create(&models.Task{Title: "two"}, []string{"a"})
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"a", "b"}, tagNames(first))
	require.Len(t, second.Tags, 1)

	// "a" resolves to the one shared row, not a duplicate.
	var sharedID uuid.UUID
	for _, tag := range first.Tags {
		if tag.Name == "a" {
			sharedID = tag.ID
		}
	}
	assert.Equal(t, sharedID, second.Tags[0].ID)

	var count int64
	require.NoError(t, db.Model(&models.Tag{}).Count(&count).Error)
	assert.EqualValues(t, 2, count)
}

func TestTaskRepository_ResolvesExistingTagName(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTaskRepository(db)

	first, err := repo.Create(&models.Task{Title: "one"}, []string{"shared"})
	require.NoError(t, err)

	// The name already has a row; resolving it again must find that row
	// rather than fail on the skipped insert.
	second, err := repo.Create(&models.Task{Title: "two"}, []string{"shared"})
	require.NoError(t, err)
	require.Len(t, second.Tags, 1)
	assert.Equal(t, first.Tags[0].ID, second.Tags[0].ID)

	// Same through the update path.
	third, err := repo.Create(&models.Task{Title: "three"}, nil)
	require.NoError(t, err)
	wantTags := []string{"shared"}
	updated, err := repo.Update(third.ID, TaskUpdate{Tags: &wantTags})
	require.NoError(t, err)
	require.Len(t, updated.Tags, 1)
	assert.Equal(t, first.Tags[0].ID, updated.Tags[0].ID)

	var count int64
	require.NoError(t, db.Model(&models.Tag{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestTaskRepository_ListOrdersNewestFirst(t *testing.T) {
	repo := NewTaskRepository(setupTestDB(t))

	for day, title := range map[int]string{1: "oldest", 15: "newest", 7: "middle"} {
		_, err := repo.Create(&models.Task{Title: title, CreatedAt: *ts(day)}, nil)
		require.NoError(t, err)
	}

	tasks, err := repo.List(TaskFilter{})
	require.NoError(t, err)
	require.Len(t, tasks, 3)
	assert.Equal(t, "newest", tasks[0].Title)
	assert.Equal(t, "middle", tasks[1].Title)
	assert.Equal(t, "oldest", tasks[2].Title)
}

func TestTaskRepository_ListFilters(t *testing.T) {
	repo := NewTaskRepository(setupTestDB(t))

	_, err := repo.Create(&models.Task{
		Title:       "Fix login bug",
		Description: "broken redirect",
		Priority:    models.TaskPriorityHigh,
		Status:      models.TaskStatusInProgress,
		StartDate:   ts(5),
		EndDate:     ts(10),
		Deadline:    ts(12),
	}, []string{"auth"})
	require.NoError(t, err)
	_, err = repo.Create(&models.Task{
		Title:       "Write RELEASE notes",
		Description: "for v2",
		Priority:    models.TaskPriorityLow,
		StartDate:   ts(20),
	}, []string{"docs"})
	require.NoError(t, err)

	high := models.TaskPriorityHigh
	inProgress := models.TaskStatusInProgress

	tests := []struct {
		name       string
		filter     TaskFilter
		wantTitles []string
	}{
		{"empty filter returns all", TaskFilter{}, []string{"Fix login bug", "Write RELEASE notes"}},
		{"by priority", TaskFilter{Priority: &high}, []string{"Fix login bug"}},
		{"by status", TaskFilter{Status: &inProgress}, []string{"Fix login bug"}},
		{"search matches title case-insensitively", TaskFilter{Search: "release"}, []string{"Write RELEASE notes"}},
		{"search matches description", TaskFilter{Search: "REDIRECT"}, []string{"Fix login bug"}},
		{"by tag", TaskFilter{Tag: "docs"}, []string{"Write RELEASE notes"}},
		{"unknown tag matches nothing", TaskFilter{Tag: "nope"}, nil},
		{"start_date after", TaskFilter{StartAfter: ts(15)}, []string{"Write RELEASE notes"}},
		{"start_date before", TaskFilter{StartBefore: ts(15)}, []string{"Fix login bug"}},
		{"end_date bounds", TaskFilter{EndAfter: ts(9), EndBefore: ts(11)}, []string{"Fix login bug"}},
		{"deadline bounds", TaskFilter{DeadlineAfter: ts(11), DeadlineBefore: ts(13)}, []string{"Fix login bug"}},
		{"conjunction can match nothing", TaskFilter{Priority: &high, Tag: "docs"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tasks, err := repo.List(tt.filter)
			require.NoError(t, err)

			var titles []string
			for _, task := range tasks {
				titles = append(titles, task.Title)
			}
			assert.ElementsMatch(t, tt.wantTitles, titles)
		})
	}
}

func TestTaskRepository_ListPreloadsAssociations(t *testing.T) {
	repo := NewTaskRepository(setupTestDB(t))

	created, err := repo.Create(&models.Task{Title: "with extras"}, []string{"x"})
	require.NoError(t, err)

	files := NewFileRepository(repo.db)
	_, err = files.AddAll(created.ID, []string{"uploads/a.txt"})
	require.NoError(t, err)

	tasks, err := repo.List(TaskFilter{})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Len(t, tasks[0].Tags, 1)
	assert.Len(t, tasks[0].Files, 1)
}

func TestTaskRepository_UpdatePartialFields(t *testing.T) {
	repo := NewTaskRepository(setupTestDB(t))

	created, err := repo.Create(&models.Task{Title: "orig", Description: "keep me", StartDate: ts(1)}, []string{"keep"})
	require.NoError(t, err)

	title := "renamed"
	updated, err := repo.Update(created.ID, TaskUpdate{Title: &title})
	require.NoError(t, err)

	assert.Equal(t, "renamed", updated.Title)
	// Everything not supplied stays as it was, including tags.
	assert.Equal(t, "keep me", updated.Description)
	require.NotNil(t, updated.StartDate)
	assert.True(t, updated.StartDate.Equal(*ts(1)))
	assert.Equal(t, []string{"keep"}, tagNames(updated))
}

func TestTaskRepository_UpdateReplacesTagSet(t *testing.T) {
	repo := NewTaskRepository(setupTestDB(t))

	created, err := repo.Create(&models.Task{Title: "t"}, []string{"a", "b"})
	require.NoError(t, err)

	newTags := []string{"b", "c"}
	updated, err := repo.Update(created.ID, TaskUpdate{Tags: &newTags})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"b", "c"}, tagNames(updated))

	// Supplying an empty list detaches everything.
	empty := []string{}
	updated, err = repo.Update(created.ID, TaskUpdate{Tags: &empty})
	require.NoError(t, err)
	assert.Empty(t, updated.Tags)
}

func TestTaskRepository_UpdateValidatesMergedDates(t *testing.T) {
	repo := NewTaskRepository(setupTestDB(t))

	created, err := repo.Create(&models.Task{Title: "t", StartDate: ts(10)}, nil)
	require.NoError(t, err)

	// The stored start date makes this end date invalid even though the
	// update itself only carries one field.
	_, err = repo.Update(created.ID, TaskUpdate{EndDate: ts(5)})
	assert.ErrorIs(t, err, models.ErrInvalidDates)

	// Nothing was written.
	stored, err := repo.Get(created.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.EndDate)

	_, err = repo.Update(created.ID, TaskUpdate{EndDate: ts(15)})
	assert.NoError(t, err)
}

func TestTaskRepository_UpdateNotFound(t *testing.T) {
	repo := NewTaskRepository(setupTestDB(t))

	title := "x"
	_, err := repo.Update(uuid.New(), TaskUpdate{Title: &title})
	assert.ErrorIs(t, err, models.ErrTaskNotFound)
}

func TestTaskRepository_DeleteCascadesFileRows(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTaskRepository(db)
	files := NewFileRepository(db)

	created, err := repo.Create(&models.Task{Title: "doomed"}, []string{"a"})
	require.NoError(t, err)
	_, err = files.AddAll(created.ID, []string{"uploads/x/a.txt", "uploads/x/b.txt"})
	require.NoError(t, err)

	require.NoError(t, repo.Delete(created.ID))

	_, err = repo.Get(created.ID)
	assert.ErrorIs(t, err, models.ErrTaskNotFound)

	var fileCount int64
	require.NoError(t, db.Model(&models.TaskFile{}).Count(&fileCount).Error)
	assert.Zero(t, fileCount)

	// The shared tag row survives, only the association is gone.
	var tagCount int64
	require.NoError(t, db.Model(&models.Tag{}).Count(&tagCount).Error)
	assert.EqualValues(t, 1, tagCount)
}

func TestTaskRepository_DeleteNotFound(t *testing.T) {
	repo := NewTaskRepository(setupTestDB(t))

	err := repo.Delete(uuid.New())
	assert.ErrorIs(t, err, models.ErrTaskNotFound)
}

func tagNames(task *models.Task) []string {
	var names []string
	for _, tag := range task.Tags {
		names = append(names, tag.Name)
	}
	return names
}
