package otp

import (
	"encoding/json"
	"net/http"

	"github.com/fynlabs/fyn-backend/internal/common/utils"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) SendOTP(w http.ResponseWriter, r *http.Request) {
	var req SendOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.service.GenerateOTP(r.Context(), &req)
	if err != nil {
		if err == ErrRateLimitExceeded {
			utils.RespondWithError(w, http.StatusTooManyRequests, err.Error())
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to send OTP")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, resp)
}

func (h *Handler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req VerifyOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.service.VerifyOTP(r.Context(), &req); err != nil {
		switch err {
		case ErrOTPNotFound, ErrOTPInvalid:
			utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		case ErrOTPMaxAttempts:
			utils.RespondWithError(w, http.StatusTooManyRequests, err.Error())
		default:
			utils.RespondWithError(w, http.StatusInternalServerError, "Verification failed")
		}
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "OTP verified"})
}

func (h *Handler) ResendOTP(w http.ResponseWriter, r *http.Request) {
	var req ResendOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.service.ResendOTP(r.Context(), &req)
	if err != nil {
		if err == ErrRateLimitExceeded {
			utils.RespondWithError(w, http.StatusTooManyRequests, err.Error())
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to resend OTP")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, resp)
}
