package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"spendwise/internal/storage"
)

type contextKey string

const userContextKey contextKey = "user"

// authenticated resolves the X-API-Key header to a user and stores it in the
// request context. Lookups are cached to keep the hot path off the database.
func (s *Server) authenticated(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiKey := r.Header.Get("X-API-Key")
		if apiKey == "" {
			writeError(w, http.StatusUnauthorized, "missing API key")
			return
		}

		user, found := s.userCache.Get(apiKey)
		if !found {
			var err error
			user, err = s.store.GetUserByAPIKey(r.Context(), apiKey)
			if err != nil {
				if errors.Is(err, storage.ErrNotFound) {
					writeError(w, http.StatusUnauthorized, "invalid API key")
					return
				}
				slog.ErrorContext(r.Context(), "API key lookup failed", "error", err)
				writeError(w, http.StatusInternalServerError, "internal error")
				return
			}
			s.userCache.Set(apiKey, user)
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requestUser returns the authenticated user placed by the middleware.
func requestUser(r *http.Request) *storage.User {
	user, _ := r.Context().Value(userContextKey).(*storage.User)
	return user
}
