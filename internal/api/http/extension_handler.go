package http

import (
	"context"
	"net/http"

	"peerrent-backend/internal/domain"
	"peerrent-backend/internal/service"
)

// ExtensionHandler exposes the extension request workflow
type ExtensionHandler struct {
	extensions service.ExtensionService
}

func NewExtensionHandler(extensions service.ExtensionService) *ExtensionHandler {
	return &ExtensionHandler{extensions: extensions}
}

func (h *ExtensionHandler) Request(w http.ResponseWriter, r *http.Request) {
	bookingID, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid booking id"})
		return
	}
	var req struct {
		AdditionalDays int32 `json:"additional_days"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	ext, err := h.extensions.Request(r.Context(), actorFrom(r), bookingID, req.AdditionalDays)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ext)
}

func (h *ExtensionHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.command(w, r, h.extensions.Approve)
}

func (h *ExtensionHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.command(w, r, h.extensions.Reject)
}

func (h *ExtensionHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.command(w, r, h.extensions.Cancel)
}

func (h *ExtensionHandler) command(w http.ResponseWriter, r *http.Request,
	cmd func(ctx context.Context, actor service.Actor, requestID int32) (*domain.ExtensionRequest, error)) {
	id, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request id"})
		return
	}
	ext, err := cmd(r.Context(), actorFrom(r), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ext)
}

func (h *ExtensionHandler) ListByBooking(w http.ResponseWriter, r *http.Request) {
	bookingID, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid booking id"})
		return
	}
	exts, err := h.extensions.ListByBooking(r.Context(), actorFrom(r), bookingID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, exts)
}
