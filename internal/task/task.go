package task

import (
	"math"
	"time"

	"github.com/satyapradip/employee-task-management/internal/user"
)

// TaskStatus is the closed set of lifecycle states. new is the only
// non-terminal source state besides active; completed and failed are
// terminal.
type TaskStatus string

const (
	StatusNew       TaskStatus = "new"
	StatusActive    TaskStatus = "active"
	StatusCompleted TaskStatus = "completed"
	StatusFailed    TaskStatus = "failed"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case StatusNew, StatusActive, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// IsTerminal reports whether no further status transition is permitted.
func (s TaskStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
	PriorityUrgent TaskPriority = "urgent"
)

func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

type TaskCategory string

const (
	CategoryDevelopment   TaskCategory = "development"
	CategoryDesign        TaskCategory = "design"
	CategoryTesting       TaskCategory = "testing"
	CategoryDocumentation TaskCategory = "documentation"
	CategoryMeeting       TaskCategory = "meeting"
	CategorySupport       TaskCategory = "support"
	CategoryResearch      TaskCategory = "research"
	CategoryMaintenance   TaskCategory = "maintenance"
	CategoryOther         TaskCategory = "other"
)

// Categories lists every valid category, in display order.
func Categories() []TaskCategory {
	return []TaskCategory{
		CategoryDevelopment, CategoryDesign, CategoryTesting,
		CategoryDocumentation, CategoryMeeting, CategorySupport,
		CategoryResearch, CategoryMaintenance, CategoryOther,
	}
}

func (c TaskCategory) Valid() bool {
	for _, v := range Categories() {
		if c == v {
			return true
		}
	}
	return false
}

// Field length limits, enforced on create and on every admin edit.
const (
	TitleMaxLength         = 100
	DescriptionMaxLength   = 500
	FailureReasonMaxLength = 200
	NotesMaxLength         = 500
)

// Task is a unit of work assigned by an admin to an employee. completed_at
// and failed_at are set exactly once, at the corresponding transition, and
// never cleared.
type Task struct {
	ID            int64        `json:"id" gorm:"primaryKey"`
	Title         string       `json:"title" gorm:"column:title;not null"`
	Description   string       `json:"description" gorm:"column:description"`
	Category      TaskCategory `json:"category" gorm:"column:category;type:varchar(30);not null"`
	Status        TaskStatus   `json:"status" gorm:"column:status;type:varchar(20);not null;default:new"`
	Priority      TaskPriority `json:"priority" gorm:"column:priority;type:varchar(20);not null;default:medium"`
	AssignedTo    int64        `json:"assigned_to" gorm:"column:assigned_to;not null"`
	AssignedBy    int64        `json:"assigned_by" gorm:"column:assigned_by;not null"`
	DueDate       time.Time    `json:"due_date" gorm:"column:due_date;not null"`
	CompletedAt   *time.Time   `json:"completed_at,omitempty" gorm:"column:completed_at"`
	FailedAt      *time.Time   `json:"failed_at,omitempty" gorm:"column:failed_at"`
	FailureReason *string      `json:"failure_reason,omitempty" gorm:"column:failure_reason"`
	Notes         *string      `json:"notes,omitempty" gorm:"column:notes"`
	CreatedAt     time.Time    `json:"created_at" gorm:"column:created_at;default:now()"`
	UpdatedAt     time.Time    `json:"updated_at" gorm:"column:updated_at;default:now()"`

	Assignee *user.User `json:"assignee,omitempty" gorm:"foreignKey:AssignedTo"`
	Assigner *user.User `json:"assigner,omitempty" gorm:"foreignKey:AssignedBy"`
}

func (Task) TableName() string {
	return "tasks"
}

// Transition guards. Handlers never mutate status directly; the service
// checks these and applies the matching side effects.

func (t *Task) CanBeAccepted() bool {
	return t.Status == StatusNew
}

func (t *Task) CanBeCompleted() bool {
	return t.Status == StatusActive
}

func (t *Task) CanBeFailed() bool {
	return t.Status == StatusActive
}

// IsOverdue is derived, never persisted: a task still in flight past its
// due date.
func (t *Task) IsOverdue(now time.Time) bool {
	return !t.Status.IsTerminal() && now.After(t.DueDate)
}

// AgeInDays is the ceiling of the task's age.
func (t *Task) AgeInDays(now time.Time) int {
	age := now.Sub(t.CreatedAt)
	if age <= 0 {
		return 0
	}
	return int(math.Ceil(age.Hours() / 24))
}

// View is the outward representation including the derived attributes.
type View struct {
	*Task
	IsOverdue bool `json:"is_overdue"`
	AgeInDays int  `json:"age_in_days"`
}

func (t *Task) ToView(now time.Time) View {
	return View{
		Task:      t,
		IsOverdue: t.IsOverdue(now),
		AgeInDays: t.AgeInDays(now),
	}
}
