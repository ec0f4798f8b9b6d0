package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/Romeo-the-rebel/Graduation-wishlist/internal/handlers"
)

func SetupRoutes(r *chi.Mux) {
	// Auth / profile routes
	r.Post("/api/auth/signup", handlers.Signup)
	r.Post("/api/auth/signin", handlers.Signin)
	r.Get("/api/auth/me", handlers.GetMe)
	r.Post("/api/auth/logout", handlers.Logout)

	// Catalog routes
	r.Get("/api/gifts", handlers.GetCatalog)
	r.Get("/api/gifts/{id}", handlers.SelectGift)

	// Reservation routes
	r.Post("/api/reservations", handlers.CreateReservation)
	r.Get("/api/reservations", handlers.GetReservations)
	r.Delete("/api/reservations/{id}", handlers.CancelReservation)

	// File upload routes
	r.Post("/api/upload", handlers.UploadFile)

	// WebSocket endpoint for live gift availability
	r.Get("/ws/availability", handlers.AvailabilityWebSocket)
}
