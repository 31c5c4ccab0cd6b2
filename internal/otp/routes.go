package otp

import (
	"github.com/gorilla/mux"
)

// Routes are public because they are used during signup and password
// reset, before the caller has a token.
func RegisterRoutes(router *mux.Router, handler *Handler) {
	api := router.PathPrefix("/api/v1/otp").Subrouter()

	api.HandleFunc("/send", handler.SendOTP).Methods("POST")
	api.HandleFunc("/verify", handler.VerifyOTP).Methods("POST")
	api.HandleFunc("/resend", handler.ResendOTP).Methods("POST")
}
