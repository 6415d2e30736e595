package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
)

const maxBodySize = 1 << 20

// DataEcho answers an authenticated data request with what it received.
// Paths ending in "/forbidden" answer 403 to stand in for missing entitlements.
func (s *Server) DataEcho() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := claimsFromContext(r.Context())
		if strings.HasSuffix(r.URL.Path, "/forbidden") {
			writeJSONError(w, "access_denied", "not entitled to "+r.URL.Path, http.StatusForbidden)
			return
		}

		query := map[string]string{}
		for k := range r.URL.Query() {
			query[k] = r.URL.Query().Get(k)
		}

		echo := map[string]any{
			"method": r.Method,
			"path":   r.URL.Path,
			"query":  query,
			"user":   claims["sub"],
		}

		if r.Method == http.MethodPost {
			body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
			if err != nil {
				writeJSONError(w, "invalid_request", "failed to read body", http.StatusBadRequest)
				return
			}
			if len(body) > 0 {
				if !json.Valid(body) {
					writeJSONError(w, "invalid_request", "body is not JSON", http.StatusBadRequest)
					return
				}
				echo["body"] = json.RawMessage(body)
			}
		}

		w.Header().Set("Content-Type", contentTypeJSON)
		_ = json.NewEncoder(w).Encode(echo)
	}
}
