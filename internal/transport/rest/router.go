package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/duchuy188/WDP301-EV-RENTAL-STAFF-sub000/internal/auth"
	"github.com/duchuy188/WDP301-EV-RENTAL-STAFF-sub000/internal/payment"
	"github.com/duchuy188/WDP301-EV-RENTAL-STAFF-sub000/internal/rental"
	"github.com/duchuy188/WDP301-EV-RENTAL-STAFF-sub000/internal/transport/middleware"
	"github.com/duchuy188/WDP301-EV-RENTAL-STAFF-sub000/internal/transport/swagger"
	"github.com/go-chi/chi"
)

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, authMiddleware *auth.Middleware, rentalHandler *rental.Handler, paymentHandler *payment.Handler, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	// Apply global middleware
	router.Use(middleware.CORS)
	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.RecoveryMiddleware(logger))

	// Serve OpenAPI document at root (outside API prefix)
	router.Get(swagger.DocPath, func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	// Swagger UI route at root
	router.Handle("/swagger/*", swagger.Handler())

	// Mount API under /api/v1 to match OpenAPI basePath
	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		// Gateway return callback is unauthenticated: the customer's
		// browser carries the signed parameters.
		if paymentHandler != nil {
			r.Get("/payments/vnpay/return", paymentHandler.GatewayReturn)
		}

		// Staff routes require a verified staff token
		r.Group(func(pr chi.Router) {
			if authMiddleware != nil {
				pr.Use(authMiddleware.RequireStaff)
			}

			if rentalHandler != nil {
				pr.Route("/rentals", func(rr chi.Router) {
					rr.Get("/{code}/checkout", rentalHandler.BeginCheckout)   // GET /rentals/:code/checkout
					rr.Post("/{code}/checkout", rentalHandler.SubmitCheckout) // POST /rentals/:code/checkout
				})
			}

			if paymentHandler != nil {
				pr.Route("/payments", func(pmr chi.Router) {
					pmr.Post("/", paymentHandler.CreatePayment)                    // POST /payments
					pmr.Patch("/{id}/confirm", paymentHandler.ConfirmPayment)      // PATCH /payments/:id/confirm
					pmr.Patch("/{id}/cancel", paymentHandler.CancelPayment)        // PATCH /payments/:id/cancel
					pmr.Patch("/{id}/method", paymentHandler.UpdatePaymentMethod)  // PATCH /payments/:id/method
				})
			}
		})
	})
}
