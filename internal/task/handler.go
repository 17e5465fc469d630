package task

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi"
	"github.com/satyapradip/employee-task-management/internal"
	"github.com/satyapradip/employee-task-management/internal/transport"
	"github.com/satyapradip/employee-task-management/pkg/logger"
)

type ServiceAPI interface {
	Create(principal *internal.Principal, dto CreateTaskDTO) (*Task, error)
	Get(principal *internal.Principal, id int64) (*Task, error)
	List(principal *internal.Principal, filter ListTasksFilter) ([]*Task, int64, error)
	Accept(principal *internal.Principal, id int64) (*Task, error)
	Complete(principal *internal.Principal, id int64, dto CompleteTaskDTO) (*Task, error)
	Fail(principal *internal.Principal, id int64, dto FailTaskDTO) (*Task, error)
	Update(principal *internal.Principal, id int64, dto UpdateTaskDTO) (*Task, error)
	Delete(principal *internal.Principal, id int64) error
	Stats(principal *internal.Principal) (*Stats, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(svc ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(logger.L()),
		Service:     svc,
	}
}

// listResponse wraps the page of task views with the total match count so
// clients can paginate.
type listResponse struct {
	Tasks []View `json:"tasks"`
	Total int64  `json:"total"`
}

func (h *Handler) principal(w http.ResponseWriter, r *http.Request) (*internal.Principal, bool) {
	principal, ok := internal.PrincipalFromContext(r.Context())
	if !ok || principal == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return nil, false
	}
	return principal, true
}

func (h *Handler) taskID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		h.WriteError(w, http.StatusBadRequest, "invalid task id")
		return 0, false
	}
	return id, true
}

func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}

	var dto CreateTaskDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	t, err := h.Service.Create(principal, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, t.ToView(time.Now()))
}

func (h *Handler) GetTask(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}
	id, ok := h.taskID(w, r)
	if !ok {
		return
	}

	t, err := h.Service.Get(principal, id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, t.ToView(time.Now()))
}

// ListTasks supports filtering by status, category, priority, assignee and a
// case-insensitive title/description search. Employees only ever see their
// own tasks whatever filters they send.
func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}

	filter, err := parseListFilter(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	tasks, total, svcErr := h.Service.List(principal, filter)
	if svcErr != nil {
		h.HandleServiceError(w, svcErr)
		return
	}

	now := time.Now()
	views := make([]View, 0, len(tasks))
	for _, t := range tasks {
		views = append(views, t.ToView(now))
	}

	h.WriteJSON(w, http.StatusOK, listResponse{Tasks: views, Total: total})
}

func (h *Handler) AcceptTask(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(principal *internal.Principal, id int64) (*Task, error) {
		return h.Service.Accept(principal, id)
	})
}

func (h *Handler) CompleteTask(w http.ResponseWriter, r *http.Request) {
	var dto CompleteTaskDTO
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
			h.WriteError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	h.transition(w, r, func(principal *internal.Principal, id int64) (*Task, error) {
		return h.Service.Complete(principal, id, dto)
	})
}

func (h *Handler) FailTask(w http.ResponseWriter, r *http.Request) {
	var dto FailTaskDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	h.transition(w, r, func(principal *internal.Principal, id int64) (*Task, error) {
		return h.Service.Fail(principal, id, dto)
	})
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, op func(*internal.Principal, int64) (*Task, error)) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}
	id, ok := h.taskID(w, r)
	if !ok {
		return
	}

	t, err := op(principal, id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, t.ToView(time.Now()))
}

func (h *Handler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}
	id, ok := h.taskID(w, r)
	if !ok {
		return
	}

	var dto UpdateTaskDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	t, err := h.Service.Update(principal, id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, t.ToView(time.Now()))
}

func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}
	id, ok := h.taskID(w, r)
	if !ok {
		return
	}

	if err := h.Service.Delete(principal, id); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) TaskStats(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}

	stats, err := h.Service.Stats(principal)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, stats)
}

// ListCategories is a public lookup used by the client to render the
// category picker.
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	h.WriteJSON(w, http.StatusOK, map[string][]TaskCategory{"categories": Categories()})
}

func parseListFilter(r *http.Request) (ListTasksFilter, error) {
	q := r.URL.Query()
	var filter ListTasksFilter

	if v := q.Get("status"); v != "" {
		status := TaskStatus(v)
		if !status.Valid() {
			return filter, internal.NewValidationError("invalid status filter", internal.ErrCodeInvalidTaskStatus)
		}
		filter.Status = &status
	}
	if v := q.Get("category"); v != "" {
		category := TaskCategory(v)
		if !category.Valid() {
			return filter, internal.NewValidationError("invalid category filter", internal.ErrCodeInvalidCategory)
		}
		filter.Category = &category
	}
	if v := q.Get("priority"); v != "" {
		priority := TaskPriority(v)
		if !priority.Valid() {
			return filter, internal.NewValidationError("invalid priority filter", internal.ErrCodeInvalidPriority)
		}
		filter.Priority = &priority
	}
	if v := q.Get("assigned_to"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			return filter, internal.NewValidationError("invalid assigned_to filter", internal.ErrCodeValidationFailed)
		}
		filter.AssignedTo = &id
	}

	filter.Search = q.Get("search")
	filter.Overdue = q.Get("overdue") == "true"
	filter.SortByDueDate = q.Get("sort") == "due_date"

	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Limit = n
		}
	}
	if v := q.Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Offset = n
		}
	}

	return filter, nil
}
