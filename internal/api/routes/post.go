package routes

import (
	"github.com/go-chi/chi/v5"

	"Chorus/internal/api/handlers/post"
	"Chorus/internal/api/middleware"
	"Chorus/internal/core/posts"
)

// RegisterPostRoutes registers post, reply, and vote endpoints on the router.
// Reads are public; every mutation requires authentication.
func RegisterPostRoutes(r chi.Router, service posts.Service, authMiddleware *middleware.AuthMiddleware) {
	createHandler := post.NewCreateHandler(service)
	getHandler := post.NewGetHandler(service)
	updateHandler := post.NewUpdateHandler(service)
	deleteHandler := post.NewDeleteHandler(service)
	replyHandler := post.NewReplyHandler(service)
	voteHandler := post.NewVoteHandler(service)

	r.Get("/posts", getHandler.HandleList)
	r.Get("/posts/{id}", getHandler.HandleGet)
	r.Get("/posts/{id}/replies/{replyID}", replyHandler.HandleGet)

	r.With(authMiddleware.RequireAuth).Post("/posts", createHandler.HandleCreate)
	r.With(authMiddleware.RequireAuth).Patch("/posts/{id}", updateHandler.HandleUpdate)
	r.With(authMiddleware.RequireAuth).Delete("/posts/{id}", deleteHandler.HandleDelete)
	r.With(authMiddleware.RequireAuth).Post("/posts/{id}/replies", replyHandler.HandleCreate)
	r.With(authMiddleware.RequireAuth).Delete("/posts/{id}/replies/{replyID}", replyHandler.HandleDelete)
	r.With(authMiddleware.RequireAuth).Post("/posts/{id}/vote", voteHandler.HandleVote)
}
