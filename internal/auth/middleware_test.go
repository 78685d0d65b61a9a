package auth_test

import (
	"crypto/rand"
	"crypto/rsa"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/duchuy188/WDP301-EV-RENTAL-STAFF-sub000/internal/auth"
)

func TestAuthMiddleware(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Auth Middleware Suite")
}

var _ = Describe("RequireStaff", func() {
	var (
		privateKey *rsa.PrivateKey
		middleware *auth.Middleware
		recorder   *httptest.ResponseRecorder
		captured   *auth.StaffContext
		protected  http.Handler
	)

	signToken := func(claims auth.StaffClaims, key *rsa.PrivateKey) string {
		token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
		signed, err := token.SignedString(key)
		Expect(err).ToNot(HaveOccurred())
		return signed
	}

	staffClaims := func(subject string) auth.StaffClaims {
		return auth.StaffClaims{
			StationID: "ST01",
			Name:      "Nguyen Van B",
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   subject,
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
				IssuedAt:  jwt.NewNumericDate(time.Now()),
			},
		}
	}

	BeforeEach(func() {
		var err error
		privateKey, err = rsa.GenerateKey(rand.Reader, 2048)
		Expect(err).ToNot(HaveOccurred())

		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		middleware = auth.NewMiddleware(&privateKey.PublicKey, logger)
		recorder = httptest.NewRecorder()

		captured = nil
		protected = middleware.RequireStaff(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			captured, _ = auth.StaffFromContext(r.Context())
			w.WriteHeader(http.StatusOK)
		}))
	})

	It("resolves a valid token into the staff context", func() {
		req := httptest.NewRequest("GET", "/api/v1/rentals/RN0001/checkout", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(staffClaims("staff-42"), privateKey))

		protected.ServeHTTP(recorder, req)

		Expect(recorder.Code).To(Equal(http.StatusOK))
		Expect(captured).ToNot(BeNil())
		Expect(captured.StaffID).To(Equal("staff-42"))
		Expect(captured.StationID).To(Equal("ST01"))
	})

	It("rejects a request without a token", func() {
		req := httptest.NewRequest("GET", "/api/v1/rentals/RN0001/checkout", nil)

		protected.ServeHTTP(recorder, req)

		Expect(recorder.Code).To(Equal(http.StatusUnauthorized))
		Expect(captured).To(BeNil())
	})

	It("rejects a token signed with a different key", func() {
		otherKey, err := rsa.GenerateKey(rand.Reader, 2048)
		Expect(err).ToNot(HaveOccurred())

		req := httptest.NewRequest("GET", "/api/v1/rentals/RN0001/checkout", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(staffClaims("staff-42"), otherKey))

		protected.ServeHTTP(recorder, req)

		Expect(recorder.Code).To(Equal(http.StatusUnauthorized))
	})

	It("rejects an expired token", func() {
		claims := staffClaims("staff-42")
		claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))

		req := httptest.NewRequest("GET", "/api/v1/rentals/RN0001/checkout", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(claims, privateKey))

		protected.ServeHTTP(recorder, req)

		Expect(recorder.Code).To(Equal(http.StatusUnauthorized))
	})

	It("rejects a token without a subject", func() {
		req := httptest.NewRequest("GET", "/api/v1/rentals/RN0001/checkout", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(staffClaims(""), privateKey))

		protected.ServeHTTP(recorder, req)

		Expect(recorder.Code).To(Equal(http.StatusUnauthorized))
	})

	It("rejects an HMAC-signed token", func() {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, staffClaims("staff-42"))
		signed, err := token.SignedString([]byte("not-a-key"))
		Expect(err).ToNot(HaveOccurred())

		req := httptest.NewRequest("GET", "/api/v1/rentals/RN0001/checkout", nil)
		req.Header.Set("Authorization", "Bearer "+signed)

		protected.ServeHTTP(recorder, req)

		Expect(recorder.Code).To(Equal(http.StatusUnauthorized))
	})
})
