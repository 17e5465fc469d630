package notification

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/satyapradip/employee-task-management/internal/events"
)

// TaskListener turns task lifecycle events into outbound mail. Delivery is
// fire-and-forget: a failed send is logged and the event is dropped, the
// task write has already committed.
type TaskListener struct {
	mailer Mailer
	logger *slog.Logger
}

func NewTaskListener(mailer Mailer, logger *slog.Logger) *TaskListener {
	return &TaskListener{mailer: mailer, logger: logger}
}

// Register subscribes the listener to the assignment events.
func (l *TaskListener) Register(bus *events.EventBus) {
	bus.Subscribe(events.TaskAssignedEvent, l.handleAssigned)
	bus.Subscribe(events.TaskReassignedEvent, l.handleAssigned)
}

func (l *TaskListener) handleAssigned(ctx context.Context, event events.Event) error {
	ev, ok := event.(events.TaskEvent)
	if !ok {
		return fmt.Errorf("unexpected event payload for %s", event.EventType())
	}

	msg := TaskAssignedMessage(ev.AssigneeName, ev.TaskTitle, ev.AssignerName, ev.DueDate)
	if _, err := l.mailer.Send(ev.AssigneeEmail, msg.Subject, msg.HTMLBody, msg.TextBody); err != nil {
		return fmt.Errorf("send assignment mail for task %d: %w", ev.TaskID, err)
	}

	l.logger.Info("assignment notification sent", "task_id", ev.TaskID, "assignee_id", ev.AssigneeID)
	return nil
}
