package stories

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

func (h *Handler) CreateStory(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	var req CreateStoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	story, err := h.service.CreateStory(r.Context(), userID, &req)
	if err != nil {
		if err == ErrUserNotFound {
			utils.RespondWithError(w, http.StatusNotFound, err.Error())
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to create story")
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, story)
}

func (h *Handler) GetStory(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	storyID, err := storyID(r)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid story ID")
		return
	}

	story, err := h.service.GetStory(r.Context(), storyID, userID)
	if err != nil {
		respondStoryError(w, err)
		return
	}

	utils.RespondWithData(w, http.StatusOK, story)
}

func (h *Handler) GetFeed(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	size, _ := strconv.Atoi(r.URL.Query().Get("size"))

	stories, err := h.service.GetFeedStories(r.Context(), userID, page, size)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to load stories")
		return
	}

	utils.RespondWithData(w, http.StatusOK, stories)
}

func (h *Handler) GetUserStories(w http.ResponseWriter, r *http.Request) {
	targetID, err := strconv.ParseInt(mux.Vars(r)["userId"], 10, 64)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	stories, err := h.service.GetUserStories(r.Context(), targetID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to load stories")
		return
	}

	utils.RespondWithData(w, http.StatusOK, stories)
}

func (h *Handler) DeleteStory(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	storyID, err := storyID(r)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid story ID")
		return
	}

	if err := h.service.DeleteStory(r.Context(), storyID, userID); err != nil {
		respondStoryError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Story deleted"})
}

func (h *Handler) ViewStory(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	storyID, err := storyID(r)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid story ID")
		return
	}

	if err := h.service.ViewStory(r.Context(), storyID, userID); err != nil {
		respondStoryError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "View recorded"})
}

func (h *Handler) GetStoryViews(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	storyID, err := storyID(r)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid story ID")
		return
	}

	views, err := h.service.GetStoryViews(r.Context(), storyID, userID)
	if err != nil {
		respondStoryError(w, err)
		return
	}

	utils.RespondWithData(w, http.StatusOK, views)
}

func storyID(r *http.Request) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
}

func respondStoryError(w http.ResponseWriter, err error) {
	switch err {
	case ErrStoryNotFound, ErrUserNotFound:
		utils.RespondWithError(w, http.StatusNotFound, err.Error())
	case ErrNotStoryOwner:
		utils.RespondWithError(w, http.StatusForbidden, err.Error())
	case ErrStoryExpired:
		utils.RespondWithError(w, http.StatusGone, err.Error())
	default:
		utils.RespondWithError(w, http.StatusInternalServerError, "Operation failed")
	}
}
