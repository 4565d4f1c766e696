package http

import (
	"net/http"

	"peerrent-backend/internal/domain"
	"peerrent-backend/internal/service"
)

// ReturnHandler exposes the lessee-initiated return/refund workflow
type ReturnHandler struct {
	returns service.ReturnService
}

func NewReturnHandler(returns service.ReturnService) *ReturnHandler {
	return &ReturnHandler{returns: returns}
}

func (h *ReturnHandler) Submit(w http.ResponseWriter, r *http.Request) {
	bookingID, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid booking id"})
		return
	}
	var req struct {
		Reason   domain.ReturnReason `json:"reason"`
		Detail   string              `json:"detail"`
		Evidence []domain.Evidence   `json:"evidence"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	request, err := h.returns.Submit(r.Context(), actorFrom(r), bookingID, req.Reason, req.Detail, req.Evidence)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, request)
}

func (h *ReturnHandler) SubmitPackingEvidence(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request id"})
		return
	}
	var req struct {
		Evidence []domain.Evidence `json:"evidence"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	request, err := h.returns.SubmitPackingEvidence(r.Context(), actorFrom(r), id, req.Evidence)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, request)
}

func (h *ReturnHandler) ConfirmReceipt(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request id"})
		return
	}
	request, err := h.returns.LessorConfirmReceipt(r.Context(), actorFrom(r), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, request)
}

func (h *ReturnHandler) Decide(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request id"})
		return
	}
	var req struct {
		Decision          domain.AdminDecision `json:"decision"`
		RefundAmountCents *int32               `json:"refund_amount_cents,omitempty"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	request, err := h.returns.AdminDecide(r.Context(), actorFrom(r), id, req.Decision, req.RefundAmountCents)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, request)
}

func (h *ReturnHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request id"})
		return
	}
	request, err := h.returns.GetByID(r.Context(), actorFrom(r), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, request)
}
