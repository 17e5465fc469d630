package user_test

import (
	"net/http"
	"net/http/httptest"

	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/satyapradip/employee-task-management/internal"
	"github.com/satyapradip/employee-task-management/internal/user"
)

// fetchService only needs GetByID; the other methods never run in these specs.
type fetchService struct {
	users map[int64]*user.User
}

func (s *fetchService) GetByID(id int64) (*user.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, internal.ErrUserNotFound
	}
	return u, nil
}

func (s *fetchService) Create(dto user.CreateUserDTO) (*user.User, error) { return nil, nil }
func (s *fetchService) List(filter user.ListUsersFilter) ([]*user.User, int64, error) {
	return nil, 0, nil
}
func (s *fetchService) Update(id int64, dto user.UpdateUserDTO) (*user.User, error) {
	return nil, nil
}
func (s *fetchService) Deactivate(id, actorID int64) error { return nil }
func (s *fetchService) Reactivate(id int64) error          { return nil }

var _ = Describe("Handler GetUser", func() {
	var router *chi.Mux

	admin := &internal.Principal{ID: 1, Email: "admin@mail.com", Role: "admin"}
	employee := &internal.Principal{ID: 2, Email: "emp@mail.com", Role: "employee"}

	get := func(principal *internal.Principal, path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req = req.WithContext(internal.ContextWithPrincipal(req.Context(), principal))
		router.ServeHTTP(rec, req)
		return rec
	}

	BeforeEach(func() {
		svc := &fetchService{users: map[int64]*user.User{
			1: {ID: 1, Email: "admin@mail.com", Name: "Admin", Role: user.RoleAdmin, IsActive: true},
			2: {ID: 2, Email: "emp@mail.com", Name: "Employee", Role: user.RoleEmployee, IsActive: true},
			3: {ID: 3, Email: "other@mail.com", Name: "Other", Role: user.RoleEmployee, IsActive: true},
		}}
		handler := user.NewHandler(svc)
		router = chi.NewRouter()
		router.Get("/users/{id}", handler.GetUser)
	})

	It("lets an employee fetch their own record", func() {
		rec := get(employee, "/users/2")
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring("emp@mail.com"))
	})

	It("forbids an employee from fetching another account", func() {
		rec := get(employee, "/users/3")
		Expect(rec.Code).To(Equal(http.StatusForbidden))
	})

	It("lets an admin fetch any account", func() {
		Expect(get(admin, "/users/2").Code).To(Equal(http.StatusOK))
		Expect(get(admin, "/users/3").Code).To(Equal(http.StatusOK))
	})

	It("rejects a request with no principal attached", func() {
		rec := get(nil, "/users/2")
		Expect(rec.Code).To(Equal(http.StatusUnauthorized))
	})

	It("rejects a malformed id", func() {
		rec := get(admin, "/users/abc")
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
	})
})
