package auth

import (
	"crypto/rsa"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	errors "github.com/duchuy188/WDP301-EV-RENTAL-STAFF-sub000/internal"
	"github.com/duchuy188/WDP301-EV-RENTAL-STAFF-sub000/internal/transport"
	"github.com/duchuy188/WDP301-EV-RENTAL-STAFF-sub000/pkg/logger"
)

// StaffClaims is the token payload issued by the identity service. This
// service only verifies; it never issues tokens.
type StaffClaims struct {
	StationID string `json:"station_id"`
	Name      string `json:"name"`
	jwt.RegisteredClaims
}

// Middleware verifies the RS256 bearer token and resolves the staff
// identity into the request context.
type Middleware struct {
	transport.BaseHandler
	publicKey *rsa.PublicKey
	logger    *slog.Logger
}

func NewMiddleware(publicKey *rsa.PublicKey, lg *slog.Logger) *Middleware {
	if lg == nil {
		lg = logger.LoggerWrapper()
	}
	return &Middleware{
		BaseHandler: *transport.NewBaseHandler(lg),
		publicKey:   publicKey,
		logger:      lg,
	}
}

func (m *Middleware) RequireStaff(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := m.ExtractTokenFromHeader(r)
		if token == "" {
			m.HandleError(w, errors.NewUnauthorizedError("authentication required", errors.ErrCodeInvalidToken))
			return
		}

		staff, err := m.verify(token)
		if err != nil {
			m.logger.Warn("token rejected", "error", err, "path", r.URL.Path)
			m.HandleError(w, errors.ErrInvalidToken)
			return
		}

		ctx := ContextWithStaff(r.Context(), staff)
		ctx = logger.With(ctx, "staff_id", staff.StaffID, "station_id", staff.StationID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *Middleware) verify(tokenString string) (*StaffContext, error) {
	claims := &StaffClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return m.publicKey, nil
	}, jwt.WithValidMethods([]string{"RS256"}))
	if err != nil {
		return nil, err
	}
	if !token.Valid || strings.TrimSpace(claims.Subject) == "" {
		return nil, jwt.ErrTokenInvalidClaims
	}

	return &StaffContext{
		StaffID:   claims.Subject,
		StationID: claims.StationID,
		Name:      claims.Name,
	}, nil
}
