package auth

import "github.com/gorilla/mux"

func RegisterRoutes(router *mux.Router, handler *Handler, middleware *Middleware) {
	api := router.PathPrefix("/api/v1/auth").Subrouter()

	// Public
	api.HandleFunc("/signup", handler.Signup).Methods("POST")
	api.HandleFunc("/signup/verify", handler.VerifySignupOTP).Methods("POST")
	api.HandleFunc("/signin", handler.Signin).Methods("POST")
	api.HandleFunc("/refresh", handler.RefreshToken).Methods("POST")
	api.HandleFunc("/password/forgot", handler.ForgotPassword).Methods("POST")
	api.HandleFunc("/password/verify-otp", handler.VerifyResetOTP).Methods("POST")
	api.HandleFunc("/password/reset", handler.ResetPassword).Methods("POST")

	// Authenticated
	protected := api.NewRoute().Subrouter()
	protected.Use(middleware.Authenticate)
	protected.HandleFunc("/logout", handler.Logout).Methods("POST")
	protected.HandleFunc("/logout-all", handler.LogoutAllDevices).Methods("POST")
	protected.HandleFunc("/me", handler.Me).Methods("GET")
}
