package notifications

import (
	"github.com/gorilla/mux"

	"github.com/fynlabs/fyn-backend/internal/auth"
)

func RegisterRoutes(router *mux.Router, handler *Handler, authMiddleware *auth.Middleware) {
	api := router.PathPrefix("/api/v1/notifications").Subrouter()
	api.Use(authMiddleware.Authenticate)

	api.HandleFunc("", handler.GetNotifications).Methods("GET")
	api.HandleFunc("/unread-count", handler.GetUnreadCount).Methods("GET")
	api.HandleFunc("/{id}/read", handler.MarkRead).Methods("PATCH")
	api.HandleFunc("/read-all", handler.MarkAllRead).Methods("PATCH")
	api.HandleFunc("/{id}", handler.DeleteNotification).Methods("DELETE")
}
