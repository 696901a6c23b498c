package handler

import (
	"github.com/go-chi/chi/v5"

	"github.com/dkoroban/folio/internal/auth"
)

// RegisterRoutes mounts the public, chat widget and admin route groups.
func RegisterRoutes(r chi.Router, h *Handler) {
	submitLimiter := newIPLimiter(30, 10)

	r.Route("/api", func(r chi.Router) {
		// public site
		r.Get("/content", h.GetContent)
		r.Get("/content/{section}", h.GetContentSection)
		r.Get("/projects", h.GetProjects)
		r.Get("/reviews", h.GetReviews)

		r.Group(func(r chi.Router) {
			r.Use(submitLimiter.middleware)
			r.Post("/orders", h.SubmitOrder)
			r.Post("/reviews", h.SubmitReview)
			r.Post("/contact", h.SubmitContact)
			r.Post("/track/visit", h.TrackVisit)
		})

		// chat widget
		r.Route("/chat", func(r chi.Router) {
			r.Post("/connect", h.ChatConnect)
			r.Post("/retry", h.ChatConnect)
			r.Get("/messages", h.ChatMessages)
			r.Post("/send", h.ChatSend)
			r.Delete("/", h.ChatClose)
		})

		r.Post("/login", h.Login)

		// back office
		r.Route("/admin", func(r chi.Router) {
			r.Use(auth.Middleware(h.jwtSecret))
			r.Use(auth.RequireRole(auth.RoleAdmin))

			r.Get("/orders", h.ListOrders)
			r.Patch("/orders/{id}", h.UpdateOrderStatus)

			r.Get("/reviews", h.ListAllReviews)
			r.Patch("/reviews/{id}", h.ApproveReview)
			r.Delete("/reviews/{id}", h.DeleteReview)

			r.Post("/projects", h.CreateProject)
			r.Put("/projects/{id}", h.UpdateProject)
			r.Delete("/projects/{id}", h.DeleteProject)

			r.Put("/content/{section}", h.UpsertContent)

			r.Get("/contact", h.ListContactMessages)

			r.Get("/users", h.ListUsers)
			r.Post("/users", h.CreateUser)
			r.Patch("/users/{id}/role", h.SetUserRole)

			r.Get("/analytics", h.AnalyticsSummary)
		})
	})
}
