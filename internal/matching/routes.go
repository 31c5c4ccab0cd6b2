package matching

import (
	"github.com/gorilla/mux"

	"github.com/fynlabs/fyn-backend/internal/auth"
)

func RegisterRoutes(router *mux.Router, handler *Handler, authMiddleware *auth.Middleware) {
	api := router.PathPrefix("/api/v1/matches").Subrouter()
	api.Use(authMiddleware.Authenticate)

	api.HandleFunc("/discover", handler.Discover).Methods("GET")
	api.HandleFunc("/swipe", handler.Swipe).Methods("POST")
	api.HandleFunc("", handler.GetMatches).Methods("GET")
	api.HandleFunc("/{id}/unmatch", handler.Unmatch).Methods("POST")
	api.HandleFunc("/block/{userId}", handler.BlockUser).Methods("POST")
	api.HandleFunc("/ws", handler.ServeWS).Methods("GET")
}
