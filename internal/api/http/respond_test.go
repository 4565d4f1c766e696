package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"peerrent-backend/internal/domain"
	"peerrent-backend/internal/security"
	"peerrent-backend/internal/service"
)

func TestWriteErrorStatusMapping(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{domain.ErrNotFound, http.StatusNotFound},
		{domain.ErrUnauthorized, http.StatusForbidden},
		{domain.ErrInvalidStateTransition, http.StatusConflict},
		{domain.ErrDuplicatePendingRequest, http.StatusConflict},
		{domain.ErrInsufficientBalance, http.StatusPaymentRequired},
		{domain.ErrInvalidDateRange, http.StatusBadRequest},
		{domain.ErrAccountSuspended, http.StatusForbidden},
		{fmt.Errorf("driver: bad connection"), http.StatusInternalServerError},
	}
	for _, tc := range tests {
		rec := httptest.NewRecorder()
		writeError(rec, tc.err)
		assert.Equal(t, tc.want, rec.Code, "error %v", tc.err)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	}
}

func TestWriteErrorWrappedErrorsKeepTheirStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, fmt.Errorf("debit account 7: %w", domain.ErrInsufficientBalance))
	assert.Equal(t, http.StatusPaymentRequired, rec.Code)
}

func TestWriteErrorHidesInternalDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, fmt.Errorf("pq: relation bookings does not exist"))

	var body errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "internal error", body.Error)
}

type staticTokens struct {
	claims *security.ActorClaims
	err    error
}

func (s staticTokens) ValidateToken(string) (*security.ActorClaims, error) {
	return s.claims, s.err
}

func TestAuthMiddleware(t *testing.T) {
	var seen service.Actor
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = actorFrom(r)
		w.WriteHeader(http.StatusNoContent)
	})

	handler := authMiddleware(staticTokens{
		claims: &security.ActorClaims{AccountID: 7, Role: "ADMIN"},
	})(next)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings/1", nil)
	req.Header.Set("Authorization", "Bearer some-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, int32(7), seen.AccountID)
	assert.Equal(t, domain.AccountRoleAdmin, seen.Role)
}

func TestAuthMiddlewareMissingToken(t *testing.T) {
	handler := authMiddleware(staticTokens{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run without a token")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings/1", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddlewareInvalidToken(t *testing.T) {
	handler := authMiddleware(staticTokens{err: security.ErrInvalidToken})(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler must not run with a bad token")
		}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings/1", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
