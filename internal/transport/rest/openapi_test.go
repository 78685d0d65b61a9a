package rest_test

import (
	"context"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestRESTContract(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "REST Contract Suite")
}

var _ = Describe("OpenAPI document", func() {
	var doc *openapi3.T

	BeforeEach(func() {
		loader := openapi3.NewLoader()
		var err error
		doc, err = loader.LoadFromFile("../../../api/openapi.yml")
		Expect(err).ToNot(HaveOccurred())
	})

	It("is a valid OpenAPI 3 document", func() {
		Expect(doc.Validate(context.Background())).To(Succeed())
	})

	It("documents every staff console route", func() {
		for _, path := range []string{
			"/rentals/{code}/checkout",
			"/payments",
			"/payments/{id}/confirm",
			"/payments/{id}/cancel",
			"/payments/{id}/method",
			"/payments/vnpay/return",
		} {
			Expect(doc.Paths.Find(path)).ToNot(BeNil(), "missing path %s", path)
		}
	})

	It("resolves the create payment request body", func() {
		item := doc.Paths.Find("/payments")
		Expect(item).ToNot(BeNil())
		Expect(item.Post).ToNot(BeNil())

		media := item.Post.RequestBody.Value.Content.Get("application/json")
		Expect(media).ToNot(BeNil())
		Expect(media.Schema.Value).ToNot(BeNil())
		Expect(media.Schema.Value.Required).To(ContainElements("booking_code", "payment_method", "payment_type"))
	})

	It("leaves the gateway return callback unauthenticated", func() {
		item := doc.Paths.Find("/payments/vnpay/return")
		Expect(item).ToNot(BeNil())
		Expect(item.Get).ToNot(BeNil())
		Expect(item.Get.Security).ToNot(BeNil())
		Expect(*item.Get.Security).To(BeEmpty())
	})

	It("requires the bearer scheme everywhere else", func() {
		Expect(doc.Security).To(HaveLen(1))
		Expect(doc.Security[0]).To(HaveKey("bearerAuth"))

		scheme := doc.Components.SecuritySchemes["bearerAuth"]
		Expect(scheme).ToNot(BeNil())
		Expect(scheme.Value.Scheme).To(Equal("bearer"))
	})
})
