package profiles

import (
	"github.com/gorilla/mux"

	"github.com/fynlabs/fyn-backend/internal/auth"
)

func RegisterRoutes(router *mux.Router, handler *Handler, authMiddleware *auth.Middleware) {
	api := router.PathPrefix("/api/v1/profiles").Subrouter()
	api.Use(authMiddleware.Authenticate)

	api.HandleFunc("/me", handler.GetMyProfile).Methods("GET")
	api.HandleFunc("/me", handler.UpdateProfile).Methods("PUT")
	api.HandleFunc("/me/avatar", handler.UploadAvatar).Methods("POST")
	api.HandleFunc("/{userId}", handler.GetProfile).Methods("GET")
}
