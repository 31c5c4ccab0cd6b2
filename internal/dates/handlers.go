package dates

import (
	"context"
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

func (h *Handler) CreateDate(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	var dto CreateDateDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := utils.ValidateStruct(&dto); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	plan, err := h.service.CreateDate(r.Context(), userID, &dto)
	if err != nil {
		if err == ErrUserNotFound {
			utils.RespondWithError(w, http.StatusNotFound, err.Error())
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to create date")
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, plan)
}

func (h *Handler) GetPublicDates(w http.ResponseWriter, r *http.Request) {
	params := listParams(r)

	plans, err := h.service.GetPublicDates(r.Context(), params)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to list public dates")
		return
	}

	utils.RespondWithData(w, http.StatusOK, plans)
}

func (h *Handler) GetMyDates(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)
	params := listParams(r)
	params.Status = DateStatus(r.URL.Query().Get("status"))

	plans, err := h.service.GetMyDates(r.Context(), userID, params)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to list dates")
		return
	}

	utils.RespondWithData(w, http.StatusOK, plans)
}

func (h *Handler) GetDateDetails(w http.ResponseWriter, r *http.Request) {
	dateID, err := pathID(r, "id")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid date ID")
		return
	}

	plan, err := h.service.GetDateDetails(r.Context(), dateID)
	if err != nil {
		if err == ErrDateNotFound {
			utils.RespondWithError(w, http.StatusNotFound, err.Error())
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to get date")
		return
	}

	utils.RespondWithData(w, http.StatusOK, plan)
}

func (h *Handler) CancelDate(w http.ResponseWriter, r *http.Request) {
	h.ownerTransition(w, r, h.service.CancelDate, "Date cancelled")
}

func (h *Handler) CompleteDate(w http.ResponseWriter, r *http.Request) {
	h.ownerTransition(w, r, h.service.CompleteDate, "Date marked as completed")
}

func (h *Handler) MarkNoShow(w http.ResponseWriter, r *http.Request) {
	h.ownerTransition(w, r, h.service.MarkNoShow, "Date marked as no-show")
}

func (h *Handler) SendProposal(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	dateID, err := pathID(r, "id")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid date ID")
		return
	}

	var dto ProposalDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	proposal, err := h.service.SendProposal(r.Context(), dateID, userID, &dto)
	if err != nil {
		respondProposalError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, proposal)
}

func (h *Handler) GetProposals(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	dateID, err := pathID(r, "id")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid date ID")
		return
	}

	params := listParams(r)
	proposals, err := h.service.GetProposals(r.Context(), dateID, userID, params.Page, params.Size)
	if err != nil {
		respondProposalError(w, err)
		return
	}

	utils.RespondWithData(w, http.StatusOK, proposals)
}

func (h *Handler) AcceptProposal(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	proposalID, err := pathID(r, "proposalId")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid proposal ID")
		return
	}

	plan, err := h.service.AcceptProposal(r.Context(), proposalID, userID)
	if err != nil {
		respondProposalError(w, err)
		return
	}

	utils.RespondWithData(w, http.StatusOK, plan)
}

func (h *Handler) RejectProposal(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	proposalID, err := pathID(r, "proposalId")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid proposal ID")
		return
	}

	if err := h.service.RejectProposal(r.Context(), proposalID, userID); err != nil {
		respondProposalError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Proposal rejected"})
}

func (h *Handler) CounterPropose(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	proposalID, err := pathID(r, "proposalId")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid proposal ID")
		return
	}

	var dto CounterProposalDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := utils.ValidateStruct(&dto); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.service.CounterPropose(r.Context(), proposalID, userID, &dto); err != nil {
		respondProposalError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Counter-proposal sent"})
}

func (h *Handler) WithdrawProposal(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	proposalID, err := pathID(r, "proposalId")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid proposal ID")
		return
	}

	if err := h.service.WithdrawProposal(r.Context(), proposalID, userID); err != nil {
		respondProposalError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Proposal withdrawn"})
}

// Helpers

// ownerTransition handles the shared shape of cancel/complete/no-show:
// parse the date ID, run the owner-only status change, map the error.
func (h *Handler) ownerTransition(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, dateID, callerID int64) error, message string) {
	userID := r.Context().Value("userID").(int64)

	dateID, err := pathID(r, "id")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid date ID")
		return
	}

	if err := op(r.Context(), dateID, userID); err != nil {
		respondProposalError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"message": message})
}

func pathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)[name], 10, 64)
}

func listParams(r *http.Request) *ListDatesParams {
	params := &ListDatesParams{
		ConnectionType: r.URL.Query().Get("type"),
		Size:           20,
	}
	if page := r.URL.Query().Get("page"); page != "" {
		if p, err := strconv.Atoi(page); err == nil {
			params.Page = p
		}
	}
	if size := r.URL.Query().Get("size"); size != "" {
		if s, err := strconv.Atoi(size); err == nil {
			params.Size = s
		}
	}
	return params
}

func respondProposalError(w http.ResponseWriter, err error) {
	switch err {
	case ErrDateNotFound, ErrProposalNotFound, ErrUserNotFound:
		utils.RespondWithError(w, http.StatusNotFound, err.Error())
	case ErrNotDateOwner, ErrNotProposer:
		utils.RespondWithError(w, http.StatusForbidden, err.Error())
	case ErrDateNotAcceptingProposals, ErrCannotProposeOwnDate, ErrProposalNotPending,
		ErrDateNotCancellable, ErrDateNotAccepted, ErrDateNotOpen:
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
	case ErrAlreadyProposed:
		utils.RespondWithError(w, http.StatusConflict, err.Error())
	default:
		utils.RespondWithError(w, http.StatusInternalServerError, "Operation failed")
	}
}
