package events

import (
	"time"

	"github.com/google/uuid"
)

// Task lifecycle event types.
const (
	TaskAssignedEvent   = "task.assigned"
	TaskReassignedEvent = "task.reassigned"
	TaskCompletedEvent  = "task.completed"
	TaskFailedEvent     = "task.failed"
)

// TaskEvent carries the identifiers a notification handler needs to build
// an email without reaching back into the task service.
type TaskEvent struct {
	BaseEvent
	TaskID        int64  `json:"task_id"`
	TaskTitle     string `json:"task_title"`
	AssigneeID    int64  `json:"assignee_id"`
	AssigneeEmail string `json:"assignee_email"`
	AssigneeName  string `json:"assignee_name"`
	AssignerName  string `json:"assigner_name"`
	DueDate       string `json:"due_date"`
}

func NewTaskEvent(eventType string, taskID int64, title string) TaskEvent {
	return TaskEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.NewString(),
			Type:      eventType,
			Timestamp: time.Now(),
		},
		TaskID:    taskID,
		TaskTitle: title,
	}
}

func (e TaskEvent) Payload() interface{} {
	return map[string]interface{}{
		"task_id":        e.TaskID,
		"task_title":     e.TaskTitle,
		"assignee_id":    e.AssigneeID,
		"assignee_email": e.AssigneeEmail,
	}
}
