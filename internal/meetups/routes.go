package meetups

import (
	"github.com/gorilla/mux"

	"github.com/fynlabs/fyn-backend/internal/auth"
)

func RegisterRoutes(router *mux.Router, handler *Handler, authMiddleware *auth.Middleware) {
	api := router.PathPrefix("/api/v1/meetups").Subrouter()
	api.Use(authMiddleware.Authenticate)

	api.HandleFunc("", handler.CreateMeetup).Methods("POST")
	api.HandleFunc("", handler.GetMeetups).Methods("GET")
	api.HandleFunc("/mine", handler.GetMyMeetups).Methods("GET")
	api.HandleFunc("/{id}", handler.GetMeetupDetails).Methods("GET")
	api.HandleFunc("/{id}", handler.CancelMeetup).Methods("DELETE")
	api.HandleFunc("/{id}/join", handler.JoinMeetup).Methods("POST")
	api.HandleFunc("/{id}/leave", handler.LeaveMeetup).Methods("POST")
	api.HandleFunc("/{id}/complete", handler.CompleteMeetup).Methods("PATCH")
}
