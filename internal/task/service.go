package task

import (
	"context"
	"log/slog"
	"time"

	"github.com/satyapradip/employee-task-management/internal"
	"github.com/satyapradip/employee-task-management/internal/events"
	"github.com/satyapradip/employee-task-management/internal/user"
)

// Repository defines the data access methods for tasks.
type Repository interface {
	Create(t *Task) error
	GetByID(id int64) (*Task, error)
	List(filter ListTasksFilter) ([]*Task, int64, error)
	Update(t *Task) error
	Delete(id int64) error
	CountByStatus() (map[string]int64, error)
	CountByCategory() (map[string]int64, error)
	CountOverdue(now time.Time) (int64, error)
}

// UserGetter is the slice of user storage needed to validate assignees.
type UserGetter interface {
	GetByID(id int64) (*user.User, error)
}

// Service enforces the task lifecycle state machine and its ownership
// rules. Status only ever moves along new→active→completed|failed, and only
// the assignee moves it; admins edit fields but never transition status.
type Service struct {
	repo   Repository
	users  UserGetter
	bus    *events.EventBus
	logger *slog.Logger
}

func NewService(repo Repository, users UserGetter, bus *events.EventBus, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		users:  users,
		bus:    bus,
		logger: logger,
	}
}

// requireAssignee returns the typed error for the two ownership failures:
// an employee touching someone else's task gets Forbidden.
func requireAssignee(principal *internal.Principal, t *Task) error {
	if principal.ID != t.AssignedTo {
		return internal.ErrNotTaskAssignee
	}
	return nil
}

// validateAssignee checks the referenced user exists and is an active
// employee. This is a read-then-write, not a transaction: a concurrent
// deactivation between the check and the task write is accepted at this
// scale.
func (s *Service) validateAssignee(assigneeID int64) (*user.User, error) {
	assignee, err := s.users.GetByID(assigneeID)
	if err != nil || assignee == nil {
		return nil, internal.NewNotFoundError("Assigned user not found", internal.ErrCodeUserNotFound)
	}
	if !assignee.IsEmployee() || !assignee.IsActive {
		return nil, internal.ErrInvalidAssignee
	}
	return assignee, nil
}

// Create assigns a new task. Admin only; the task starts in status new with
// the acting admin recorded as assigner.
func (s *Service) Create(principal *internal.Principal, dto CreateTaskDTO) (*Task, error) {
	if !principal.IsAdmin() {
		return nil, internal.ErrAdminOnly
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	assignee, err := s.validateAssignee(dto.AssignedTo)
	if err != nil {
		return nil, err
	}

	t := &Task{
		Title:       dto.Title,
		Description: dto.Description,
		Category:    TaskCategory(dto.Category),
		Status:      StatusNew,
		Priority:    TaskPriority(dto.Priority),
		AssignedTo:  dto.AssignedTo,
		AssignedBy:  principal.ID,
		DueDate:     dto.DueDate,
	}

	if err := s.repo.Create(t); err != nil {
		s.logger.Error("failed to create task", "error", err, "assigned_to", dto.AssignedTo)
		return nil, internal.NewInternalError("failed to create task", err)
	}

	s.logger.Info("task created",
		"task_id", t.ID,
		"assigned_to", t.AssignedTo,
		"assigned_by", t.AssignedBy,
		"category", t.Category,
		"priority", t.Priority)

	s.publishAssignment(events.TaskAssignedEvent, t, assignee, principal.Name)

	return s.reload(t)
}

// Get loads a single task. Admins read any task; an employee only their
// own. The task is loaded before the ownership check, so a foreign id
// yields Forbidden rather than NotFound.
func (s *Service) Get(principal *internal.Principal, id int64) (*Task, error) {
	t, err := s.repo.GetByID(id)
	if err != nil {
		return nil, internal.ErrTaskNotFound
	}

	if !principal.IsAdmin() {
		if err := requireAssignee(principal, t); err != nil {
			s.logger.Warn("task access denied", "task_id", id, "user_id", principal.ID, "assigned_to", t.AssignedTo)
			return nil, internal.ErrTaskAccessDenied
		}
	}

	return t, nil
}

// List returns tasks visible to the principal. The employee restriction is
// applied to the query itself, not filtered after the fact.
func (s *Service) List(principal *internal.Principal, filter ListTasksFilter) ([]*Task, int64, error) {
	if !principal.IsAdmin() {
		filter.AssignedTo = &principal.ID
	}
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	tasks, total, err := s.repo.List(filter)
	if err != nil {
		s.logger.Error("failed to list tasks", "error", err)
		return nil, 0, internal.NewInternalError("failed to list tasks", err)
	}
	return tasks, total, nil
}

// Accept moves a task from new to active. Assignee only.
func (s *Service) Accept(principal *internal.Principal, id int64) (*Task, error) {
	t, err := s.repo.GetByID(id)
	if err != nil {
		return nil, internal.ErrTaskNotFound
	}

	if err := requireAssignee(principal, t); err != nil {
		return nil, err
	}

	if !t.CanBeAccepted() {
		return nil, internal.NewValidationError("Only new tasks can be accepted", internal.ErrCodeInvalidTaskStatus)
	}

	t.Status = StatusActive
	if err := s.repo.Update(t); err != nil {
		s.logger.Error("failed to accept task", "error", err, "task_id", id)
		return nil, internal.NewInternalError("failed to update task", err)
	}

	s.logger.Info("task accepted", "task_id", id, "user_id", principal.ID)
	return t, nil
}

// Complete moves a task from active to completed, stamping completed_at
// exactly once and recording the optional notes.
func (s *Service) Complete(principal *internal.Principal, id int64, dto CompleteTaskDTO) (*Task, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	t, err := s.repo.GetByID(id)
	if err != nil {
		return nil, internal.ErrTaskNotFound
	}

	if err := requireAssignee(principal, t); err != nil {
		return nil, err
	}

	if !t.CanBeCompleted() {
		return nil, internal.NewValidationError("Only active tasks can be completed", internal.ErrCodeInvalidTaskStatus)
	}

	now := time.Now()
	t.Status = StatusCompleted
	t.CompletedAt = &now
	if dto.Notes != "" {
		t.Notes = &dto.Notes
	}

	if err := s.repo.Update(t); err != nil {
		s.logger.Error("failed to complete task", "error", err, "task_id", id)
		return nil, internal.NewInternalError("failed to update task", err)
	}

	s.logger.Info("task completed", "task_id", id, "user_id", principal.ID)
	return t, nil
}

// Fail moves a task from active to failed. The reason is mandatory and
// failed_at is stamped exactly once.
func (s *Service) Fail(principal *internal.Principal, id int64, dto FailTaskDTO) (*Task, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	t, err := s.repo.GetByID(id)
	if err != nil {
		return nil, internal.ErrTaskNotFound
	}

	if err := requireAssignee(principal, t); err != nil {
		return nil, err
	}

	if !t.CanBeFailed() {
		return nil, internal.NewValidationError("Only active tasks can be marked as failed", internal.ErrCodeInvalidTaskStatus)
	}

	now := time.Now()
	t.Status = StatusFailed
	t.FailedAt = &now
	t.FailureReason = &dto.Reason

	if err := s.repo.Update(t); err != nil {
		s.logger.Error("failed to mark task failed", "error", err, "task_id", id)
		return nil, internal.NewInternalError("failed to update task", err)
	}

	s.logger.Info("task marked failed", "task_id", id, "user_id", principal.ID, "reason", dto.Reason)
	return t, nil
}

// Update edits task fields. Admin only, allowed in any status, and never
// transitions status; constraints are re-validated on every write.
func (s *Service) Update(principal *internal.Principal, id int64, dto UpdateTaskDTO) (*Task, error) {
	if !principal.IsAdmin() {
		return nil, internal.ErrAdminOnly
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	t, err := s.repo.GetByID(id)
	if err != nil {
		return nil, internal.ErrTaskNotFound
	}

	var newAssignee *user.User
	if dto.AssignedTo != nil && *dto.AssignedTo != t.AssignedTo {
		newAssignee, err = s.validateAssignee(*dto.AssignedTo)
		if err != nil {
			return nil, err
		}
		t.AssignedTo = *dto.AssignedTo
	}

	if dto.Title != nil {
		t.Title = *dto.Title
	}
	if dto.Description != nil {
		t.Description = *dto.Description
	}
	if dto.Category != nil {
		t.Category = TaskCategory(*dto.Category)
	}
	if dto.Priority != nil {
		t.Priority = TaskPriority(*dto.Priority)
	}
	if dto.DueDate != nil {
		t.DueDate = *dto.DueDate
	}
	if dto.Notes != nil {
		t.Notes = dto.Notes
	}

	if err := s.repo.Update(t); err != nil {
		s.logger.Error("failed to update task", "error", err, "task_id", id)
		return nil, internal.NewInternalError("failed to update task", err)
	}

	s.logger.Info("task updated", "task_id", id, "admin_id", principal.ID)

	if newAssignee != nil {
		s.publishAssignment(events.TaskReassignedEvent, t, newAssignee, principal.Name)
	}

	return s.reload(t)
}

// Delete removes a task permanently. Admin only.
func (s *Service) Delete(principal *internal.Principal, id int64) error {
	if !principal.IsAdmin() {
		return internal.ErrAdminOnly
	}

	if _, err := s.repo.GetByID(id); err != nil {
		return internal.ErrTaskNotFound
	}

	if err := s.repo.Delete(id); err != nil {
		s.logger.Error("failed to delete task", "error", err, "task_id", id)
		return internal.NewInternalError("failed to delete task", err)
	}

	s.logger.Info("task deleted", "task_id", id, "admin_id", principal.ID)
	return nil
}

// Stats returns the dashboard aggregates. Admin only.
func (s *Service) Stats(principal *internal.Principal) (*Stats, error) {
	if !principal.IsAdmin() {
		return nil, internal.ErrAdminOnly
	}

	byStatus, err := s.repo.CountByStatus()
	if err != nil {
		return nil, internal.NewInternalError("failed to aggregate task statuses", err)
	}

	byCategory, err := s.repo.CountByCategory()
	if err != nil {
		return nil, internal.NewInternalError("failed to aggregate task categories", err)
	}

	overdue, err := s.repo.CountOverdue(time.Now())
	if err != nil {
		return nil, internal.NewInternalError("failed to count overdue tasks", err)
	}

	var total int64
	for _, n := range byStatus {
		total += n
	}

	return &Stats{
		ByStatus:   byStatus,
		ByCategory: byCategory,
		Overdue:    overdue,
		Total:      total,
	}, nil
}

// publishAssignment emits a fire-and-forget notification event. Delivery
// failures are logged by the bus and never surfaced to the caller.
func (s *Service) publishAssignment(eventType string, t *Task, assignee *user.User, assignerName string) {
	if s.bus == nil {
		return
	}

	ev := events.NewTaskEvent(eventType, t.ID, t.Title)
	ev.AssigneeID = assignee.ID
	ev.AssigneeEmail = assignee.Email
	ev.AssigneeName = assignee.Name
	ev.AssignerName = assignerName
	ev.DueDate = t.DueDate.Format("2006-01-02")

	if err := s.bus.Publish(context.Background(), ev); err != nil {
		s.logger.Warn("failed to publish task event", "error", err, "task_id", t.ID)
	}
}

// reload re-reads a task with its relations; if the read fails the already
// written task is returned as-is.
func (s *Service) reload(t *Task) (*Task, error) {
	fresh, err := s.repo.GetByID(t.ID)
	if err != nil {
		return t, nil
	}
	return fresh, nil
}
