package http

import (
	"net/http"

	"peerrent-backend/internal/domain"
	"peerrent-backend/internal/service"
)

// DisputeHandler exposes the lessor-initiated damage claim workflow
type DisputeHandler struct {
	disputes service.DisputeService
}

func NewDisputeHandler(disputes service.DisputeService) *DisputeHandler {
	return &DisputeHandler{disputes: disputes}
}

func (h *DisputeHandler) Create(w http.ResponseWriter, r *http.Request) {
	bookingID, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid booking id"})
		return
	}
	var req struct {
		DamageTypeID int32             `json:"damage_type_id"`
		Detail       string            `json:"detail"`
		Evidence     []domain.Evidence `json:"evidence"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	dispute, err := h.disputes.Create(r.Context(), actorFrom(r), bookingID, req.DamageTypeID, req.Detail, req.Evidence)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, dispute)
}

func (h *DisputeHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid dispute id"})
		return
	}
	var req struct {
		Decision domain.AdminDecision `json:"decision"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	dispute, err := h.disputes.Resolve(r.Context(), actorFrom(r), id, req.Decision)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dispute)
}

func (h *DisputeHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid dispute id"})
		return
	}
	dispute, err := h.disputes.GetByID(r.Context(), actorFrom(r), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dispute)
}

func (h *DisputeHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	page, pageSize := queryInt32(r, "page", 1), queryInt32(r, "page_size", 20)

	disputes, total, err := h.disputes.ListPending(r.Context(), actorFrom(r), page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pagedResponse{Items: disputes, Total: total, Page: page})
}
