package adapthttp

import (
	"math"
	"net/http"

	"habits/internal/domain"
)

func (s *Server) handleHabits(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var body struct {
		Title    string    `json:"title"`
		WeekDays []float64 `json:"weekDays"`
	}
	if err := parseJSON(r, &body); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	weekDays, err := integerWeekDays(body.WeekDays)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	if err := s.registrar.Register(r.Context(), body.Title, weekDays); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	s.metrics.habitsRegistered.Inc()
	writeJSON(w, http.StatusCreated, map[string]any{"ok": true})
}

func (s *Server) handleDay(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	summary, err := s.resolver.ResolveDate(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// integerWeekDays rejects a missing list and any non-integral entry. Range
// checks are left to the registrar.
func integerWeekDays(raw []float64) ([]int, error) {
	if raw == nil {
		return nil, domain.NewValidationError("weekDays", "is required")
	}
	out := make([]int, len(raw))
	for i, v := range raw {
		if v != math.Trunc(v) || math.Abs(v) > math.MaxInt32 {
			return nil, domain.NewValidationError("weekDays", "%v is not an integer weekday", v)
		}
		out[i] = int(v)
	}
	return out, nil
}
