package server

import (
	"context"
	"net/http"
	"strings"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ContextKeyClaims stores the verified access token claims
	ContextKeyClaims ContextKey = "claims"
)

// RequireAuth validates the Bearer access token on data routes. A request must
// carry exactly one Authorization header.
func (s *Server) RequireAuth() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			headers := r.Header.Values("Authorization")
			switch len(headers) {
			case 0:
				writeJSONError(w, "unauthorized", "Missing Authorization header", http.StatusUnauthorized)
				return
			case 1:
			default:
				writeJSONError(w, "invalid_request", "Multiple Authorization headers", http.StatusBadRequest)
				return
			}

			parts := strings.SplitN(headers[0], " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
				writeJSONError(w, "unauthorized", "Invalid Authorization header format", http.StatusUnauthorized)
				return
			}

			claims, err := s.creator.Verify(parts[1])
			if err != nil {
				writeJSONError(w, "invalid_token", err.Error(), http.StatusUnauthorized)
				return
			}
			if jti, _ := claims["jti"].(string); s.revoked.Revoked(jti) {
				writeJSONError(w, "invalid_token", "token has been revoked", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyClaims, claims)
			next(w, r.WithContext(ctx))
		}
	}
}

func claimsFromContext(ctx context.Context) jwtlib.MapClaims {
	claims, _ := ctx.Value(ContextKeyClaims).(jwtlib.MapClaims)
	return claims
}
