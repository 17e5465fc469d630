package rest_test

import (
	"context"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestRest(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Rest Suite")
}

// The published contract is loaded and validated so a broken edit to
// api/openapi.yml fails in CI rather than in the Swagger UI.
var _ = Describe("OpenAPI document", func() {
	var doc *openapi3.T

	BeforeEach(func() {
		loader := openapi3.NewLoader()
		var err error
		doc, err = loader.LoadFromFile("../../../api/openapi.yml")
		Expect(err).NotTo(HaveOccurred())
	})

	It("is a valid OpenAPI 3 document", func() {
		Expect(doc.Validate(context.Background())).To(Succeed())
	})

	It("documents every route the router serves", func() {
		for _, path := range []string{
			"/auth/login",
			"/auth/logout",
			"/forgot-password",
			"/reset-password/{token}",
			"/categories",
			"/users",
			"/users/{id}",
			"/users/{id}/reactivate",
			"/users/me",
			"/users/me/password",
			"/tasks",
			"/tasks/{id}",
			"/tasks/{id}/accept",
			"/tasks/{id}/complete",
			"/tasks/{id}/fail",
			"/tasks/stats",
			"/health",
			"/ping",
		} {
			Expect(doc.Paths.Find(path)).NotTo(BeNil(), "missing path %s", path)
		}
	})

	It("declares the lifecycle transitions as PATCH operations", func() {
		for _, path := range []string{"/tasks/{id}/accept", "/tasks/{id}/complete", "/tasks/{id}/fail"} {
			item := doc.Paths.Find(path)
			Expect(item).NotTo(BeNil())
			Expect(item.Patch).NotTo(BeNil(), "expected PATCH on %s", path)
		}
	})

	It("requires a reason to mark a task failed", func() {
		item := doc.Paths.Find("/tasks/{id}/fail")
		Expect(item).NotTo(BeNil())
		Expect(item.Patch.RequestBody).NotTo(BeNil())

		content := item.Patch.RequestBody.Value.Content.Get("application/json")
		Expect(content).NotTo(BeNil())
		Expect(content.Schema.Value.Required).To(ContainElement("reason"))
	})
})
