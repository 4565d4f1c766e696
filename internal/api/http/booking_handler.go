package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"peerrent-backend/internal/domain"
	"peerrent-backend/internal/service"
)

// BookingHandler exposes the booking state machine commands and queries
type BookingHandler struct {
	bookings service.BookingService
}

func NewBookingHandler(bookings service.BookingService) *BookingHandler {
	return &BookingHandler{bookings: bookings}
}

func pathID(r *http.Request, name string) (int32, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 32)
	if err != nil || id <= 0 {
		return 0, false
	}
	return int32(id), true
}

func queryInt32(r *http.Request, name string, fallback int32) int32 {
	v, err := strconv.ParseInt(r.URL.Query().Get(name), 10, 32)
	if err != nil {
		return fallback
	}
	return int32(v)
}

func (h *BookingHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Lines []service.CheckoutLine `json:"lines"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	bookings, err := h.bookings.Checkout(r.Context(), actorFrom(r), req.Lines)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, bookings)
}

func (h *BookingHandler) Accept(w http.ResponseWriter, r *http.Request) {
	h.command(w, r, h.bookings.OwnerAccept)
}

func (h *BookingHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.command(w, r, h.bookings.OwnerReject)
}

func (h *BookingHandler) ConfirmReceipt(w http.ResponseWriter, r *http.Request) {
	h.command(w, r, h.bookings.ConfirmReceipt)
}

func (h *BookingHandler) ConfirmReturn(w http.ResponseWriter, r *http.Request) {
	h.command(w, r, h.bookings.ConfirmReturn)
}

func (h *BookingHandler) SettleRefund(w http.ResponseWriter, r *http.Request) {
	h.command(w, r, h.bookings.SettleRefund)
}

func (h *BookingHandler) Forfeit(w http.ResponseWriter, r *http.Request) {
	h.command(w, r, h.bookings.Forfeit)
}

// command factors the shape shared by the id-only transitions: parse the
// booking id, run the service call, return the refreshed snapshot.
func (h *BookingHandler) command(w http.ResponseWriter, r *http.Request,
	cmd func(ctx context.Context, actor service.Actor, bookingID int32) (*domain.Booking, error)) {
	id, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid booking id"})
		return
	}
	booking, err := cmd(r.Context(), actorFrom(r), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (h *BookingHandler) Return(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid booking id"})
		return
	}
	var req struct {
		Evidence []domain.Evidence `json:"evidence"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	booking, err := h.bookings.Return(r.Context(), actorFrom(r), id, req.Evidence)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (h *BookingHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid booking id"})
		return
	}
	booking, err := h.bookings.GetByID(r.Context(), actorFrom(r), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (h *BookingHandler) ListByLessee(w http.ResponseWriter, r *http.Request) {
	lesseeID, ok := pathID(r, "accountId")
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid account id"})
		return
	}
	page, pageSize := queryInt32(r, "page", 1), queryInt32(r, "page_size", 20)

	bookings, total, err := h.bookings.ListByLessee(r.Context(), actorFrom(r), lesseeID,
		r.URL.Query().Get("status"), page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pagedResponse{Items: bookings, Total: total, Page: page})
}

func (h *BookingHandler) ListByLessor(w http.ResponseWriter, r *http.Request) {
	lessorID, ok := pathID(r, "accountId")
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid account id"})
		return
	}
	page, pageSize := queryInt32(r, "page", 1), queryInt32(r, "page_size", 20)

	bookings, total, err := h.bookings.ListByLessor(r.Context(), actorFrom(r), lessorID,
		r.URL.Query().Get("status"), page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pagedResponse{Items: bookings, Total: total, Page: page})
}

func (h *BookingHandler) ListByStatus(w http.ResponseWriter, r *http.Request) {
	page, pageSize := queryInt32(r, "page", 1), queryInt32(r, "page_size", 20)

	bookings, total, err := h.bookings.ListByStatus(r.Context(), actorFrom(r),
		domain.BookingStatus(r.URL.Query().Get("status")), page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pagedResponse{Items: bookings, Total: total, Page: page})
}
