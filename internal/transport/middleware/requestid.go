package middleware

import (
	"net/http"

	"github.com/duchuy188/WDP301-EV-RENTAL-STAFF-sub000/pkg/logger"

	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

// RequestID tags every request with an id so a checkout and the payment
// calls it triggers can be correlated across log lines. The console
// frontend may supply its own id; otherwise one is minted here.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}

		ctx := logger.With(r.Context(), "request_id", id)

		w.Header().Set(requestIDHeader, id)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
