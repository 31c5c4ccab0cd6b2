package dates

import (
	"github.com/gorilla/mux"

	"github.com/fynlabs/fyn-backend/internal/auth"
)

func RegisterRoutes(router *mux.Router, handler *Handler, authMiddleware *auth.Middleware) {
	api := router.PathPrefix("/api/v1/dates").Subrouter()
	api.Use(authMiddleware.Authenticate)

	api.HandleFunc("", handler.CreateDate).Methods("POST")
	api.HandleFunc("/public", handler.GetPublicDates).Methods("GET")
	api.HandleFunc("", handler.GetMyDates).Methods("GET")
	api.HandleFunc("/{id}", handler.GetDateDetails).Methods("GET")
	api.HandleFunc("/{id}", handler.CancelDate).Methods("DELETE")
	api.HandleFunc("/{id}/complete", handler.CompleteDate).Methods("PATCH")
	api.HandleFunc("/{id}/no-show", handler.MarkNoShow).Methods("PATCH")

	api.HandleFunc("/{id}/proposals", handler.SendProposal).Methods("POST")
	api.HandleFunc("/{id}/proposals", handler.GetProposals).Methods("GET")
	api.HandleFunc("/proposals/{proposalId}/accept", handler.AcceptProposal).Methods("PATCH")
	api.HandleFunc("/proposals/{proposalId}/reject", handler.RejectProposal).Methods("PATCH")
	api.HandleFunc("/proposals/{proposalId}/counter", handler.CounterPropose).Methods("PATCH")
	api.HandleFunc("/proposals/{proposalId}/withdraw", handler.WithdrawProposal).Methods("POST")
}
