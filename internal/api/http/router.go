// Package http is the command/query surface of the booking engine: JSON
// handlers over gorilla/mux, bearer-token auth, and the Prometheus endpoint.
package http

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"peerrent-backend/internal/security"
	"peerrent-backend/internal/service"
)

// Services bundles everything the router serves
type Services struct {
	Bookings      service.BookingService
	Extensions    service.ExtensionService
	Returns       service.ReturnService
	Disputes      service.DisputeService
	Ledger        service.LedgerService
	Notifications service.NotificationService
}

// NewRouter wires all routes. Everything under /api/v1 requires a bearer
// token; /healthz and /metrics are open.
func NewRouter(tokens security.TokenManager, svcs Services) *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(authMiddleware(tokens))

	bookings := NewBookingHandler(svcs.Bookings)
	api.HandleFunc("/bookings/checkout", bookings.Checkout).Methods("POST")
	api.HandleFunc("/bookings/{id}", bookings.Get).Methods("GET")
	api.HandleFunc("/bookings/{id}/accept", bookings.Accept).Methods("POST")
	api.HandleFunc("/bookings/{id}/reject", bookings.Reject).Methods("POST")
	api.HandleFunc("/bookings/{id}/confirm-receipt", bookings.ConfirmReceipt).Methods("POST")
	api.HandleFunc("/bookings/{id}/return", bookings.Return).Methods("POST")
	api.HandleFunc("/bookings/{id}/confirm-return", bookings.ConfirmReturn).Methods("POST")
	api.HandleFunc("/bookings/{id}/settle-refund", bookings.SettleRefund).Methods("POST")
	api.HandleFunc("/bookings/{id}/forfeit", bookings.Forfeit).Methods("POST")
	api.HandleFunc("/accounts/{accountId}/bookings", bookings.ListByLessee).Methods("GET")
	api.HandleFunc("/accounts/{accountId}/lendings", bookings.ListByLessor).Methods("GET")
	api.HandleFunc("/bookings", bookings.ListByStatus).Methods("GET")

	extensions := NewExtensionHandler(svcs.Extensions)
	api.HandleFunc("/bookings/{id}/extensions", extensions.Request).Methods("POST")
	api.HandleFunc("/bookings/{id}/extensions", extensions.ListByBooking).Methods("GET")
	api.HandleFunc("/extensions/{id}/approve", extensions.Approve).Methods("POST")
	api.HandleFunc("/extensions/{id}/reject", extensions.Reject).Methods("POST")
	api.HandleFunc("/extensions/{id}/cancel", extensions.Cancel).Methods("POST")

	returns := NewReturnHandler(svcs.Returns)
	api.HandleFunc("/bookings/{id}/return-requests", returns.Submit).Methods("POST")
	api.HandleFunc("/return-requests/{id}", returns.Get).Methods("GET")
	api.HandleFunc("/return-requests/{id}/packing-evidence", returns.SubmitPackingEvidence).Methods("POST")
	api.HandleFunc("/return-requests/{id}/confirm-receipt", returns.ConfirmReceipt).Methods("POST")
	api.HandleFunc("/return-requests/{id}/decide", returns.Decide).Methods("POST")

	disputes := NewDisputeHandler(svcs.Disputes)
	api.HandleFunc("/bookings/{id}/disputes", disputes.Create).Methods("POST")
	api.HandleFunc("/disputes/{id}", disputes.Get).Methods("GET")
	api.HandleFunc("/disputes/{id}/resolve", disputes.Resolve).Methods("POST")
	api.HandleFunc("/disputes", disputes.ListPending).Methods("GET")

	ledger := NewLedgerHandler(svcs.Ledger)
	api.HandleFunc("/accounts/{accountId}/transactions", ledger.ListByAccount).Methods("GET")
	api.HandleFunc("/accounts/{accountId}/summary", ledger.Summary).Methods("GET")
	api.HandleFunc("/bookings/{id}/transactions", ledger.ListByBooking).Methods("GET")
	api.HandleFunc("/ledger/reconcile", ledger.Reconcile).Methods("GET")

	notifications := NewNotificationHandler(svcs.Notifications)
	api.HandleFunc("/notifications", notifications.List).Methods("GET")
	api.HandleFunc("/notifications/{id}/read", notifications.MarkAsRead).Methods("POST")

	return router
}
