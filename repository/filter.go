package repository

import (
	"strings"
	"time"

	"github.com/kutbudev/taskvault/pkg/models"
	"gorm.io/gorm"
)

// TaskFilter describes an optional set of list criteria. Nil or zero fields
// impose no constraint; supplied fields are combined as a conjunction.
type TaskFilter struct {
	Priority       *models.TaskPriority
	Status         *models.TaskStatus
	StartBefore    *time.Time
	StartAfter     *time.Time
	EndBefore      *time.Time
	EndAfter       *time.Time
	DeadlineBefore *time.Time
	DeadlineAfter  *time.Time
	Search         string
	Tag            string
}

// predicate is one compiled filter condition.
type predicate struct {
	expr string
	args []interface{}
}

// predicates compiles the supplied criteria into a flat condition list,
// independent of any gorm session so the composition is testable on its own.
func (f TaskFilter) predicates() []predicate {
	var ps []predicate

	if f.Priority != nil {
		ps = append(ps, predicate{"tasks.priority = ?", []interface{}{*f.Priority}})
	}
	if f.Status != nil {
		ps = append(ps, predicate{"tasks.status = ?", []interface{}{*f.Status}})
	}
	if f.StartBefore != nil {
		ps = append(ps, predicate{"tasks.start_date <= ?", []interface{}{*f.StartBefore}})
	}
	if f.StartAfter != nil {
		ps = append(ps, predicate{"tasks.start_date >= ?", []interface{}{*f.StartAfter}})
	}
	if f.EndBefore != nil {
		ps = append(ps, predicate{"tasks.end_date <= ?", []interface{}{*f.EndBefore}})
	}
	if f.EndAfter != nil {
		ps = append(ps, predicate{"tasks.end_date >= ?", []interface{}{*f.EndAfter}})
	}
	if f.DeadlineBefore != nil {
		ps = append(ps, predicate{"tasks.deadline <= ?", []interface{}{*f.DeadlineBefore}})
	}
	if f.DeadlineAfter != nil {
		ps = append(ps, predicate{"tasks.deadline >= ?", []interface{}{*f.DeadlineAfter}})
	}
	if f.Search != "" {
		needle := "%" + strings.ToLower(f.Search) + "%"
		ps = append(ps, predicate{"(LOWER(tasks.title) LIKE ? OR LOWER(tasks.description) LIKE ?)", []interface{}{needle, needle}})
	}
	if f.Tag != "" {
		ps = append(ps, predicate{"tags.name = ?", []interface{}{f.Tag}})
	}

	return ps
}

// apply folds the compiled predicates onto a query, joining the tag
// association only when a tag criterion is present.
func (f TaskFilter) apply(q *gorm.DB) *gorm.DB {
	if f.Tag != "" {
		q = q.Joins("JOIN task_tags ON task_tags.task_id = tasks.id").
			Joins("JOIN tags ON tags.id = task_tags.tag_id")
	}
	for _, p := range f.predicates() {
		q = q.Where(p.expr, p.args...)
	}
	return q
}
