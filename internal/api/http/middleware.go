package http

import (
	"context"
	"net/http"
	"strings"

	"peerrent-backend/internal/security"
	"peerrent-backend/internal/service"
)

type contextKey string

const actorKey contextKey = "actor"

// authMiddleware resolves the acting identity from the bearer token and puts
// it on the request context. Everything under the API subtree requires it.
func authMiddleware(tokens security.TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			const prefix = "Bearer "
			if !strings.HasPrefix(header, prefix) {
				writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing bearer token"})
				return
			}

			claims, err := tokens.ValidateToken(strings.TrimPrefix(header, prefix))
			if err != nil {
				writeJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error()})
				return
			}

			actor := service.Actor{
				AccountID: claims.AccountID,
				Role:      claims.AccountRole(),
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), actorKey, actor)))
		})
	}
}

func actorFrom(r *http.Request) service.Actor {
	actor, _ := r.Context().Value(actorKey).(service.Actor)
	return actor
}
