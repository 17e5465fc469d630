package task_test

import (
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/satyapradip/employee-task-management/internal"
	"github.com/satyapradip/employee-task-management/internal/events"
	"github.com/satyapradip/employee-task-management/internal/task"
	"github.com/satyapradip/employee-task-management/internal/user"
)

func TestTask(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Task Suite")
}

// Mock repository for testing
type mockTaskRepository struct {
	tasks       map[int64]*task.Task
	createError error
	updateError error
	nextID      int64
}

func newMockTaskRepository() *mockTaskRepository {
	return &mockTaskRepository{
		tasks:  make(map[int64]*task.Task),
		nextID: 1,
	}
}

func (m *mockTaskRepository) Create(t *task.Task) error {
	if m.createError != nil {
		return m.createError
	}
	t.ID = m.nextID
	m.nextID++
	t.CreatedAt = time.Now()
	t.UpdatedAt = time.Now()
	copied := *t
	m.tasks[t.ID] = &copied
	return nil
}

func (m *mockTaskRepository) GetByID(id int64) (*task.Task, error) {
	t, exists := m.tasks[id]
	if !exists {
		return nil, errors.New("task not found")
	}
	copied := *t
	return &copied, nil
}

func (m *mockTaskRepository) List(filter task.ListTasksFilter) ([]*task.Task, int64, error) {
	var out []*task.Task
	for _, t := range m.tasks {
		if filter.AssignedTo != nil && t.AssignedTo != *filter.AssignedTo {
			continue
		}
		if filter.Status != nil && t.Status != *filter.Status {
			continue
		}
		copied := *t
		out = append(out, &copied)
	}
	return out, int64(len(out)), nil
}

func (m *mockTaskRepository) Update(t *task.Task) error {
	if m.updateError != nil {
		return m.updateError
	}
	t.UpdatedAt = time.Now()
	copied := *t
	m.tasks[t.ID] = &copied
	return nil
}

func (m *mockTaskRepository) Delete(id int64) error {
	delete(m.tasks, id)
	return nil
}

func (m *mockTaskRepository) CountByStatus() (map[string]int64, error) {
	counts := make(map[string]int64)
	for _, t := range m.tasks {
		counts[string(t.Status)]++
	}
	return counts, nil
}

func (m *mockTaskRepository) CountByCategory() (map[string]int64, error) {
	counts := make(map[string]int64)
	for _, t := range m.tasks {
		counts[string(t.Category)]++
	}
	return counts, nil
}

func (m *mockTaskRepository) CountOverdue(now time.Time) (int64, error) {
	var count int64
	for _, t := range m.tasks {
		if t.IsOverdue(now) {
			count++
		}
	}
	return count, nil
}

// Mock user getter for assignee validation
type mockUserGetter struct {
	users map[int64]*user.User
}

func newMockUserGetter() *mockUserGetter {
	return &mockUserGetter{users: make(map[int64]*user.User)}
}

func (m *mockUserGetter) GetByID(id int64) (*user.User, error) {
	u, exists := m.users[id]
	if !exists {
		return nil, errors.New("user not found")
	}
	return u, nil
}

var _ = Describe("TaskService", func() {
	var (
		repo    *mockTaskRepository
		users   *mockUserGetter
		service *task.Service

		admin    *internal.Principal
		employee *internal.Principal
		other    *internal.Principal

		dueDate time.Time
	)

	testLogger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	BeforeEach(func() {
		repo = newMockTaskRepository()
		users = newMockUserGetter()
		service = task.NewService(repo, users, events.NewEventBus(testLogger), testLogger)

		admin = &internal.Principal{ID: 1, Email: "admin@mail.com", Name: "Admin", Role: "admin"}
		employee = &internal.Principal{ID: 2, Email: "emp@mail.com", Name: "Employee", Role: "employee"}
		other = &internal.Principal{ID: 3, Email: "other@mail.com", Name: "Other", Role: "employee"}

		users.users[1] = &user.User{ID: 1, Email: "admin@mail.com", Name: "Admin", Role: user.RoleAdmin, IsActive: true}
		users.users[2] = &user.User{ID: 2, Email: "emp@mail.com", Name: "Employee", Role: user.RoleEmployee, IsActive: true}
		users.users[3] = &user.User{ID: 3, Email: "other@mail.com", Name: "Other", Role: user.RoleEmployee, IsActive: true}

		dueDate = time.Now().AddDate(0, 0, 7)
	})

	createDTO := func() task.CreateTaskDTO {
		return task.CreateTaskDTO{
			Title:      "Write release notes",
			Category:   "documentation",
			AssignedTo: 2,
			DueDate:    time.Now().AddDate(0, 0, 7),
		}
	}

	createTask := func(assignedTo int64) *task.Task {
		dto := createDTO()
		dto.AssignedTo = assignedTo
		t, err := service.Create(admin, dto)
		Expect(err).NotTo(HaveOccurred())
		return t
	}

	Describe("Create", func() {
		It("creates a task in status new with the admin as assigner", func() {
			t, err := service.Create(admin, createDTO())
			Expect(err).NotTo(HaveOccurred())
			Expect(t.Status).To(Equal(task.StatusNew))
			Expect(t.AssignedTo).To(Equal(int64(2)))
			Expect(t.AssignedBy).To(Equal(int64(1)))
			Expect(t.Priority).To(Equal(task.PriorityMedium))
		})

		It("rejects non-admin callers", func() {
			_, err := service.Create(employee, createDTO())
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(403))
		})

		It("returns not found for an unknown assignee", func() {
			dto := createDTO()
			dto.AssignedTo = 99
			_, err := service.Create(admin, dto)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(404))
		})

		It("rejects assigning to an admin", func() {
			dto := createDTO()
			dto.AssignedTo = 1
			_, err := service.Create(admin, dto)
			Expect(err).To(Equal(internal.ErrInvalidAssignee))
		})

		It("rejects assigning to a deactivated employee", func() {
			users.users[2].IsActive = false
			_, err := service.Create(admin, createDTO())
			Expect(err).To(Equal(internal.ErrInvalidAssignee))
		})

		It("rejects a title over 100 characters", func() {
			dto := createDTO()
			for len(dto.Title) <= 100 {
				dto.Title += dto.Title
			}
			_, err := service.Create(admin, dto)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(400))
		})

		It("rejects an unknown category", func() {
			dto := createDTO()
			dto.Category = "gardening"
			_, err := service.Create(admin, dto)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(400))
		})

		It("requires a due date", func() {
			dto := createDTO()
			dto.DueDate = time.Time{}
			_, err := service.Create(admin, dto)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(400))
		})
	})

	Describe("Accept", func() {
		It("moves a new task to active for its assignee", func() {
			created := createTask(2)

			t, err := service.Accept(employee, created.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(t.Status).To(Equal(task.StatusActive))
		})

		It("rejects a non-assignee even with the employee role", func() {
			created := createTask(2)

			_, err := service.Accept(other, created.ID)
			Expect(err).To(Equal(internal.ErrNotTaskAssignee))
		})

		It("rejects accepting an already active task", func() {
			created := createTask(2)
			_, err := service.Accept(employee, created.ID)
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Accept(employee, created.ID)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Error()).To(Equal("Only new tasks can be accepted"))
		})
	})

	Describe("Complete", func() {
		It("stamps completed_at and records notes", func() {
			created := createTask(2)
			_, err := service.Accept(employee, created.ID)
			Expect(err).NotTo(HaveOccurred())

			t, err := service.Complete(employee, created.ID, task.CompleteTaskDTO{Notes: "done early"})
			Expect(err).NotTo(HaveOccurred())
			Expect(t.Status).To(Equal(task.StatusCompleted))
			Expect(t.CompletedAt).NotTo(BeNil())
			Expect(*t.Notes).To(Equal("done early"))
		})

		It("rejects completing a task that was never accepted", func() {
			created := createTask(2)

			_, err := service.Complete(employee, created.ID, task.CompleteTaskDTO{})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Error()).To(Equal("Only active tasks can be completed"))
		})

		It("rejects completing an already completed task", func() {
			created := createTask(2)
			_, err := service.Accept(employee, created.ID)
			Expect(err).NotTo(HaveOccurred())
			_, err = service.Complete(employee, created.ID, task.CompleteTaskDTO{})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Complete(employee, created.ID, task.CompleteTaskDTO{})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Error()).To(Equal("Only active tasks can be completed"))
		})
	})

	Describe("Fail", func() {
		It("requires a reason", func() {
			created := createTask(2)
			_, err := service.Accept(employee, created.ID)
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Fail(employee, created.ID, task.FailTaskDTO{Reason: "  "})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(400))
		})

		It("moves an active task to failed with the reason stored", func() {
			created := createTask(2)
			_, err := service.Accept(employee, created.ID)
			Expect(err).NotTo(HaveOccurred())

			t, err := service.Fail(employee, created.ID, task.FailTaskDTO{Reason: "blocked on vendor"})
			Expect(err).NotTo(HaveOccurred())
			Expect(t.Status).To(Equal(task.StatusFailed))
			Expect(t.FailedAt).NotTo(BeNil())
			Expect(*t.FailureReason).To(Equal("blocked on vendor"))
		})

		It("rejects failing a new task", func() {
			created := createTask(2)

			_, err := service.Fail(employee, created.ID, task.FailTaskDTO{Reason: "no"})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Error()).To(Equal("Only active tasks can be marked as failed"))
		})

		It("rejects failing a completed task", func() {
			created := createTask(2)
			_, err := service.Accept(employee, created.ID)
			Expect(err).NotTo(HaveOccurred())
			_, err = service.Complete(employee, created.ID, task.CompleteTaskDTO{})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Fail(employee, created.ID, task.FailTaskDTO{Reason: "too late"})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Error()).To(Equal("Only active tasks can be marked as failed"))
		})
	})

	Describe("Get", func() {
		It("returns forbidden, not not-found, for another employee's task", func() {
			created := createTask(2)

			_, err := service.Get(other, created.ID)
			Expect(err).To(Equal(internal.ErrTaskAccessDenied))
		})

		It("lets admins read any task", func() {
			created := createTask(2)

			t, err := service.Get(admin, created.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(t.ID).To(Equal(created.ID))
		})

		It("returns not found for a missing task", func() {
			_, err := service.Get(admin, 999)
			Expect(err).To(Equal(internal.ErrTaskNotFound))
		})
	})

	Describe("List", func() {
		It("forces the assignee filter for employees", func() {
			createTask(2)
			createTask(3)

			tasks, total, err := service.List(employee, task.ListTasksFilter{})
			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(Equal(int64(1)))
			Expect(tasks[0].AssignedTo).To(Equal(int64(2)))
		})

		It("ignores an employee's attempt to filter on another assignee", func() {
			createTask(2)
			createTask(3)

			otherID := int64(3)
			tasks, _, err := service.List(employee, task.ListTasksFilter{AssignedTo: &otherID})
			Expect(err).NotTo(HaveOccurred())
			for _, t := range tasks {
				Expect(t.AssignedTo).To(Equal(int64(2)))
			}
		})

		It("returns everything to admins", func() {
			createTask(2)
			createTask(3)

			_, total, err := service.List(admin, task.ListTasksFilter{})
			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(Equal(int64(2)))
		})
	})

	Describe("Update", func() {
		It("edits fields without touching status", func() {
			created := createTask(2)
			_, err := service.Accept(employee, created.ID)
			Expect(err).NotTo(HaveOccurred())

			newTitle := "Write and publish release notes"
			newPriority := "urgent"
			t, err := service.Update(admin, created.ID, task.UpdateTaskDTO{
				Title:    &newTitle,
				Priority: &newPriority,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(t.Title).To(Equal(newTitle))
			Expect(t.Priority).To(Equal(task.PriorityUrgent))
			Expect(t.Status).To(Equal(task.StatusActive))
		})

		It("validates the new assignee on reassignment", func() {
			created := createTask(2)

			adminID := int64(1)
			_, err := service.Update(admin, created.ID, task.UpdateTaskDTO{AssignedTo: &adminID})
			Expect(err).To(Equal(internal.ErrInvalidAssignee))
		})

		It("reassigns to another active employee", func() {
			created := createTask(2)

			otherID := int64(3)
			t, err := service.Update(admin, created.ID, task.UpdateTaskDTO{AssignedTo: &otherID})
			Expect(err).NotTo(HaveOccurred())
			Expect(t.AssignedTo).To(Equal(int64(3)))
		})

		It("rejects non-admin callers", func() {
			created := createTask(2)

			title := "mine now"
			_, err := service.Update(employee, created.ID, task.UpdateTaskDTO{Title: &title})
			Expect(err).To(Equal(internal.ErrAdminOnly))
		})
	})

	Describe("Delete", func() {
		It("removes the task for admins", func() {
			created := createTask(2)

			Expect(service.Delete(admin, created.ID)).To(Succeed())
			_, err := service.Get(admin, created.ID)
			Expect(err).To(Equal(internal.ErrTaskNotFound))
		})

		It("rejects non-admin callers", func() {
			created := createTask(2)
			Expect(service.Delete(employee, created.ID)).To(Equal(internal.ErrAdminOnly))
		})
	})

	Describe("Stats", func() {
		It("aggregates by status and category", func() {
			first := createTask(2)
			createTask(3)
			_, err := service.Accept(employee, first.ID)
			Expect(err).NotTo(HaveOccurred())

			stats, err := service.Stats(admin)
			Expect(err).NotTo(HaveOccurred())
			Expect(stats.Total).To(Equal(int64(2)))
			Expect(stats.ByStatus["new"]).To(Equal(int64(1)))
			Expect(stats.ByStatus["active"]).To(Equal(int64(1)))
			Expect(stats.ByCategory["documentation"]).To(Equal(int64(2)))
		})

		It("is admin only", func() {
			_, err := service.Stats(employee)
			Expect(err).To(Equal(internal.ErrAdminOnly))
		})
	})

	Describe("derived attributes", func() {
		It("marks a non-terminal task past its due date as overdue", func() {
			t := &task.Task{Status: task.StatusActive, DueDate: time.Now().Add(-time.Hour)}
			Expect(t.IsOverdue(time.Now())).To(BeTrue())
		})

		It("never marks a terminal task overdue", func() {
			t := &task.Task{Status: task.StatusCompleted, DueDate: time.Now().Add(-time.Hour)}
			Expect(t.IsOverdue(time.Now())).To(BeFalse())
		})

		It("rounds the task age up to whole days", func() {
			now := time.Now()
			t := &task.Task{CreatedAt: now.Add(-25 * time.Hour), DueDate: dueDate}
			Expect(t.AgeInDays(now)).To(Equal(2))
		})
	})
})
