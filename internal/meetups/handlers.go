package meetups

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/fynlabs/fyn-backend/internal/common/utils"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) CreateMeetup(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	var dto CreateMeetupDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := utils.ValidateStruct(&dto); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	meetup, err := h.service.CreateMeetup(r.Context(), userID, &dto)
	if err != nil {
		respondMeetupError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, meetup)
}

func (h *Handler) GetMeetups(w http.ResponseWriter, r *http.Request) {
	params := &ListMeetupsParams{
		Category: r.URL.Query().Get("category"),
		Page:     queryInt(r, "page", 0),
		Size:     queryInt(r, "size", 20),
	}

	meetups, err := h.service.GetMeetups(r.Context(), params)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to list meetups")
		return
	}

	utils.RespondWithData(w, http.StatusOK, meetups)
}

func (h *Handler) GetMyMeetups(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	meetups, err := h.service.GetMyMeetups(r.Context(), userID, queryInt(r, "page", 0), queryInt(r, "size", 20))
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to list meetups")
		return
	}

	utils.RespondWithData(w, http.StatusOK, meetups)
}

func (h *Handler) GetMeetupDetails(w http.ResponseWriter, r *http.Request) {
	meetupID, err := meetupID(r)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid meetup ID")
		return
	}

	meetup, participants, err := h.service.GetMeetupDetails(r.Context(), meetupID)
	if err != nil {
		respondMeetupError(w, err)
		return
	}

	utils.RespondWithData(w, http.StatusOK, map[string]interface{}{
		"meetup":       meetup,
		"participants": participants,
	})
}

func (h *Handler) JoinMeetup(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	meetupID, err := meetupID(r)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid meetup ID")
		return
	}

	meetup, err := h.service.JoinMeetup(r.Context(), meetupID, userID)
	if err != nil {
		respondMeetupError(w, err)
		return
	}

	utils.RespondWithData(w, http.StatusOK, meetup)
}

func (h *Handler) LeaveMeetup(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	meetupID, err := meetupID(r)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid meetup ID")
		return
	}

	if err := h.service.LeaveMeetup(r.Context(), meetupID, userID); err != nil {
		respondMeetupError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Left meetup"})
}

func (h *Handler) CancelMeetup(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	meetupID, err := meetupID(r)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid meetup ID")
		return
	}

	if err := h.service.CancelMeetup(r.Context(), meetupID, userID); err != nil {
		respondMeetupError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Meetup cancelled"})
}

func (h *Handler) CompleteMeetup(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	meetupID, err := meetupID(r)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid meetup ID")
		return
	}

	if err := h.service.CompleteMeetup(r.Context(), meetupID, userID); err != nil {
		respondMeetupError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Meetup marked as completed"})
}

func meetupID(r *http.Request) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func respondMeetupError(w http.ResponseWriter, err error) {
	switch err {
	case ErrMeetupNotFound, ErrUserNotFound:
		utils.RespondWithError(w, http.StatusNotFound, err.Error())
	case ErrNotOrganizer:
		utils.RespondWithError(w, http.StatusForbidden, err.Error())
	case ErrMeetupFull, ErrAlreadyJoined:
		utils.RespondWithError(w, http.StatusConflict, err.Error())
	case ErrMeetupNotJoinable, ErrNotParticipant, ErrOrganizerCantJoin:
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
	default:
		utils.RespondWithError(w, http.StatusInternalServerError, "Operation failed")
	}
}
