package http

import (
	"net/http"

	"peerrent-backend/internal/domain"
	"peerrent-backend/internal/service"
)

// LedgerHandler exposes the read-only ledger queries
type LedgerHandler struct {
	ledger service.LedgerService
}

func NewLedgerHandler(ledger service.LedgerService) *LedgerHandler {
	return &LedgerHandler{ledger: ledger}
}

func (h *LedgerHandler) ListByAccount(w http.ResponseWriter, r *http.Request) {
	accountID, ok := pathID(r, "accountId")
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid account id"})
		return
	}
	page, pageSize := queryInt32(r, "page", 1), queryInt32(r, "page_size", 20)

	txs, total, err := h.ledger.ListByAccount(r.Context(), actorFrom(r), accountID, page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pagedResponse{Items: txs, Total: total, Page: page})
}

func (h *LedgerHandler) ListByBooking(w http.ResponseWriter, r *http.Request) {
	bookingID, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid booking id"})
		return
	}
	txs, err := h.ledger.ListByBooking(r.Context(), actorFrom(r), bookingID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, txs)
}

func (h *LedgerHandler) Summary(w http.ResponseWriter, r *http.Request) {
	accountID, ok := pathID(r, "accountId")
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid account id"})
		return
	}
	summary, err := h.ledger.GetSummary(r.Context(), actorFrom(r), accountID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// Reconcile is the admin escrow consistency check
func (h *LedgerHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	if !actorFrom(r).Admin() {
		writeError(w, domain.ErrUnauthorized)
		return
	}
	report, err := h.ledger.Reconcile(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
