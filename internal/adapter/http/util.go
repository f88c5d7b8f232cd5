package adapthttp

import (
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"habits/internal/domain"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]any{"error": err.Error()})
}

// writeDomainError maps validation failures to 400 and everything else to
// 500. Server-side failures are logged but not echoed to the client.
func (s *Server) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	if domain.IsValidation(err) {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	s.log.Error("request failed",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "internal error"})
}

func parseJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return &domain.ValidationError{Reason: fmt.Sprintf("invalid json: %v", err)}
	}
	return nil
}

func withNoCache(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}
