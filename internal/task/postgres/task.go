package postgres

import (
	"strings"
	"time"

	"github.com/satyapradip/employee-task-management/internal/task"
	"gorm.io/gorm"
)

// TaskRepository implements the task.Repository interface using GORM
type TaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new task repository
func NewTaskRepository(db *gorm.DB) task.Repository {
	return &TaskRepository{db: db}
}

// Create saves a new task to the database
func (r *TaskRepository) Create(t *task.Task) error {
	return r.db.Create(t).Error
}

// GetByID retrieves a task with its assignee and assigner preloaded
func (r *TaskRepository) GetByID(id int64) (*task.Task, error) {
	var t task.Task
	err := r.db.Preload("Assignee").Preload("Assigner").
		Where("id = ?", id).First(&t).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// List retrieves tasks matching the filter plus the total match count.
// The LOWER(...) LIKE search keeps the query portable between postgres and
// the sqlite driver used in tests.
func (r *TaskRepository) List(filter task.ListTasksFilter) ([]*task.Task, int64, error) {
	query := r.db.Model(&task.Task{})

	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Category != nil {
		query = query.Where("category = ?", *filter.Category)
	}
	if filter.Priority != nil {
		query = query.Where("priority = ?", *filter.Priority)
	}
	if filter.AssignedTo != nil {
		query = query.Where("assigned_to = ?", *filter.AssignedTo)
	}
	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}
	if filter.Overdue {
		query = query.Where("due_date < ? AND status NOT IN ?", time.Now(),
			[]task.TaskStatus{task.StatusCompleted, task.StatusFailed})
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := "created_at DESC"
	if filter.SortByDueDate {
		order = "due_date ASC"
	}

	var tasks []*task.Task
	err := query.Preload("Assignee").Preload("Assigner").
		Order(order).
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&tasks).Error
	return tasks, total, err
}

// Update persists every field of an existing task
func (r *TaskRepository) Update(t *task.Task) error {
	t.UpdatedAt = time.Now()
	return r.db.Save(t).Error
}

// Delete removes a task permanently
func (r *TaskRepository) Delete(id int64) error {
	return r.db.Delete(&task.Task{}, id).Error
}

type bucketCount struct {
	Bucket string
	Count  int64
}

// CountByStatus groups tasks by status
func (r *TaskRepository) CountByStatus() (map[string]int64, error) {
	return r.countBy("status")
}

// CountByCategory groups tasks by category
func (r *TaskRepository) CountByCategory() (map[string]int64, error) {
	return r.countBy("category")
}

func (r *TaskRepository) countBy(column string) (map[string]int64, error) {
	var rows []bucketCount
	err := r.db.Model(&task.Task{}).
		Select(column + " AS bucket, COUNT(*) AS count").
		Group(column).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Bucket] = row.Count
	}
	return counts, nil
}

// CountOverdue counts non-terminal tasks past their due date
func (r *TaskRepository) CountOverdue(now time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&task.Task{}).
		Where("due_date < ? AND status NOT IN ?", now,
			[]task.TaskStatus{task.StatusCompleted, task.StatusFailed}).
		Count(&count).Error
	return count, err
}
