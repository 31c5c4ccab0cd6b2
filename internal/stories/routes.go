package stories

import (
	"github.com/gorilla/mux"

	"github.com/fynlabs/fyn-backend/internal/auth"
)

func RegisterRoutes(router *mux.Router, handler *Handler, authMiddleware *auth.Middleware) {
	api := router.PathPrefix("/api/v1/stories").Subrouter()
	api.Use(authMiddleware.Authenticate)

	api.HandleFunc("", handler.CreateStory).Methods("POST")
	api.HandleFunc("/feed", handler.GetFeed).Methods("GET")
	api.HandleFunc("/user/{userId}", handler.GetUserStories).Methods("GET")
	api.HandleFunc("/{id}", handler.GetStory).Methods("GET")
	api.HandleFunc("/{id}", handler.DeleteStory).Methods("DELETE")
	api.HandleFunc("/{id}/view", handler.ViewStory).Methods("POST")
	api.HandleFunc("/{id}/views", handler.GetStoryViews).Methods("GET")
}
