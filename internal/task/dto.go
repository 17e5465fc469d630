package task

import (
	"strings"
	"time"

	"github.com/satyapradip/employee-task-management/internal"
)

// CreateTaskDTO is the admin payload for assigning a new task.
type CreateTaskDTO struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Priority    string    `json:"priority"`
	AssignedTo  int64     `json:"assigned_to"`
	DueDate     time.Time `json:"due_date"`
}

func (d *CreateTaskDTO) Validate() *internal.AppError {
	d.Title = strings.TrimSpace(d.Title)

	if d.Title == "" {
		return internal.NewValidationFieldError("title", "title is required", internal.ErrCodeInvalidTitle)
	}
	if len(d.Title) > TitleMaxLength {
		return internal.NewValidationFieldError("title", "title must not exceed 100 characters", internal.ErrCodeInvalidTitle)
	}
	if len(d.Description) > DescriptionMaxLength {
		return internal.NewValidationFieldError("description", "description must not exceed 500 characters", internal.ErrCodeValidationFailed)
	}
	if !TaskCategory(d.Category).Valid() {
		return internal.NewValidationFieldError("category", "invalid task category", internal.ErrCodeInvalidCategory)
	}
	if d.Priority == "" {
		d.Priority = string(PriorityMedium)
	}
	if !TaskPriority(d.Priority).Valid() {
		return internal.NewValidationFieldError("priority", "priority must be low, medium, high or urgent", internal.ErrCodeInvalidPriority)
	}
	if d.AssignedTo <= 0 {
		return internal.NewValidationFieldError("assigned_to", "assigned_to is required", internal.ErrCodeValidationFailed)
	}
	if d.DueDate.IsZero() {
		return internal.NewValidationFieldError("due_date", "due_date is required", internal.ErrCodeInvalidDueDate)
	}
	return nil
}

// UpdateTaskDTO is the admin payload for field edits. It never carries a
// status: lifecycle transitions go through their own operations. Pointer
// fields distinguish absent from empty.
type UpdateTaskDTO struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Category    *string    `json:"category,omitempty"`
	Priority    *string    `json:"priority,omitempty"`
	AssignedTo  *int64     `json:"assigned_to,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Notes       *string    `json:"notes,omitempty"`
}

func (d *UpdateTaskDTO) Validate() *internal.AppError {
	if d.Title != nil {
		title := strings.TrimSpace(*d.Title)
		if title == "" {
			return internal.NewValidationFieldError("title", "title cannot be empty", internal.ErrCodeInvalidTitle)
		}
		if len(title) > TitleMaxLength {
			return internal.NewValidationFieldError("title", "title must not exceed 100 characters", internal.ErrCodeInvalidTitle)
		}
		*d.Title = title
	}
	if d.Description != nil && len(*d.Description) > DescriptionMaxLength {
		return internal.NewValidationFieldError("description", "description must not exceed 500 characters", internal.ErrCodeValidationFailed)
	}
	if d.Category != nil && !TaskCategory(*d.Category).Valid() {
		return internal.NewValidationFieldError("category", "invalid task category", internal.ErrCodeInvalidCategory)
	}
	if d.Priority != nil && !TaskPriority(*d.Priority).Valid() {
		return internal.NewValidationFieldError("priority", "priority must be low, medium, high or urgent", internal.ErrCodeInvalidPriority)
	}
	if d.AssignedTo != nil && *d.AssignedTo <= 0 {
		return internal.NewValidationFieldError("assigned_to", "assigned_to must reference a user", internal.ErrCodeValidationFailed)
	}
	if d.Notes != nil && len(*d.Notes) > NotesMaxLength {
		return internal.NewValidationFieldError("notes", "notes must not exceed 500 characters", internal.ErrCodeValidationFailed)
	}
	return nil
}

// CompleteTaskDTO carries the optional completion notes.
type CompleteTaskDTO struct {
	Notes string `json:"notes"`
}

func (d CompleteTaskDTO) Validate() *internal.AppError {
	if len(d.Notes) > NotesMaxLength {
		return internal.NewValidationFieldError("notes", "notes must not exceed 500 characters", internal.ErrCodeValidationFailed)
	}
	return nil
}

// FailTaskDTO carries the mandatory failure reason.
type FailTaskDTO struct {
	Reason string `json:"reason"`
}

func (d *FailTaskDTO) Validate() *internal.AppError {
	d.Reason = strings.TrimSpace(d.Reason)
	if d.Reason == "" {
		return internal.NewValidationFieldError("reason", "a failure reason is required", internal.ErrCodeValidationFailed)
	}
	if len(d.Reason) > FailureReasonMaxLength {
		return internal.NewValidationFieldError("reason", "failure reason must not exceed 200 characters", internal.ErrCodeValidationFailed)
	}
	return nil
}

// ListTasksFilter narrows List results. Employees always get AssignedTo
// forced to their own id at the service boundary, regardless of the query.
type ListTasksFilter struct {
	Status     *TaskStatus
	Category   *TaskCategory
	Priority   *TaskPriority
	AssignedTo *int64
	// Search matches a case-insensitive substring of title or description.
	Search        string
	Overdue       bool
	SortByDueDate bool
	Limit         int
	Offset        int
}

// Stats are the dashboard aggregates, computed by grouping in the store.
type Stats struct {
	ByStatus   map[string]int64 `json:"by_status"`
	ByCategory map[string]int64 `json:"by_category"`
	Overdue    int64            `json:"overdue"`
	Total      int64            `json:"total"`
}
