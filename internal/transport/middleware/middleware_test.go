package middleware_test

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/satyapradip/employee-task-management/internal/transport/middleware"
)

func TestMiddleware(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Middleware Suite")
}

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

var _ = Describe("CORS", func() {
	handler := middleware.CORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	It("answers preflight requests without hitting the handler", func() {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodOptions, "/api/v1/tasks", nil)

		handler.ServeHTTP(rec, req)

		Expect(rec.Code).To(Equal(http.StatusNoContent))
		Expect(rec.Header().Get("Access-Control-Allow-Methods")).To(ContainSubstring("PATCH"))
	})

	It("passes other methods through with the headers set", func() {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/tasks", nil)

		handler.ServeHTTP(rec, req)

		Expect(rec.Code).To(Equal(http.StatusTeapot))
		Expect(rec.Header().Get("Access-Control-Allow-Origin")).To(Equal("*"))
	})
})

var _ = Describe("RequestID", func() {
	It("echoes a supplied trace id", func() {
		handler := middleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Trace-ID", "trace-123")

		handler.ServeHTTP(rec, req)

		Expect(rec.Header().Get("X-Trace-ID")).To(Equal("trace-123"))
	})

	It("generates a trace id when none is supplied", func() {
		handler := middleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		Expect(rec.Header().Get("X-Trace-ID")).NotTo(BeEmpty())
	})
})

var _ = Describe("Recovery", func() {
	It("turns a panic into an opaque 500", func() {
		handler := middleware.Recovery(testLogger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic("boom")
		}))
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		Expect(rec.Code).To(Equal(http.StatusInternalServerError))
		Expect(rec.Body.String()).NotTo(ContainSubstring("boom"))
	})
})

var _ = Describe("Logging redaction", func() {
	It("masks reset tokens in the path", func() {
		handler := middleware.Logging(testLogger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		rec := httptest.NewRecorder()

		// The redaction itself is exercised through the unexported helper
		// via the middleware; the request must still reach the handler.
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/reset-password/abc123", nil))
		Expect(rec.Code).To(Equal(http.StatusOK))
	})

	It("masks sensitive fields in JSON documents", func() {
		out := middleware.RedactJSON([]byte(`{"email":"a@b.com","password":"hunter2","nested":{"token":"t"}}`))
		Expect(out).To(ContainSubstring(`"email":"a@b.com"`))
		Expect(out).NotTo(ContainSubstring("hunter2"))
		Expect(out).To(ContainSubstring(`"password":"[REDACTED]"`))
		Expect(out).To(ContainSubstring(`"token":"[REDACTED]"`))
	})

	It("flags unparseable input", func() {
		Expect(middleware.RedactJSON([]byte("not json"))).To(Equal("[UNPARSEABLE]"))
	})
})
