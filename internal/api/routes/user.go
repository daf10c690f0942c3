package routes

import (
	"github.com/go-chi/chi/v5"

	"Chorus/internal/api/handlers/user"
	"Chorus/internal/api/middleware"
	"Chorus/internal/core/users"
)

// RegisterUserRoutes registers account endpoints on the router
func RegisterUserRoutes(r chi.Router, service users.Service, authMiddleware *middleware.AuthMiddleware) {
	registerHandler := user.NewRegisterHandler(service)
	loginHandler := user.NewLoginHandler(service)
	getHandler := user.NewGetHandler(service)
	manageHandler := user.NewManageHandler(service)

	r.Post("/users", registerHandler.HandleRegister)
	r.Post("/users/login", loginHandler.HandleLogin)
	r.Get("/users/{id}", getHandler.HandleGet)
	r.Get("/users/by-username/{username}", getHandler.HandleGetByUsername)

	r.With(authMiddleware.RequireAuth).Patch("/users/{id}/role", manageHandler.HandleUpdateRole)
	r.With(authMiddleware.RequireAuth).Delete("/users/{id}", manageHandler.HandleDelete)
}
