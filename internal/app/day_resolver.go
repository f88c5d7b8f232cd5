package app

import (
	"context"
	"time"

	"habits/internal/domain"
)

// DaySummary lists the habits scheduled on a day and the ones already done.
// A completed habit still appears in PossibleHabits.
type DaySummary struct {
	PossibleHabits    []domain.Habit   `json:"possibleHabits"`
	CompletedHabitIDs []domain.HabitID `json:"completedHabits"`
}

// DayResolver encapsulates the per-day habit lookup.
type DayResolver struct {
	repo domain.HabitRepository
	cal  domain.Calendar
}

// NewDayResolver creates a DayResolver backed by the given repository.
func NewDayResolver(repo domain.HabitRepository, cal domain.Calendar) *DayResolver {
	return &DayResolver{repo: repo, cal: cal}
}

// ResolveDate parses raw with the resolver's calendar and resolves that day.
func (s *DayResolver) ResolveDate(ctx context.Context, raw string) (*DaySummary, error) {
	date, err := s.cal.ParseDate(raw)
	if err != nil {
		return nil, err
	}
	return s.ResolveDay(ctx, date)
}

// ResolveDay returns the habits that were active and scheduled on date,
// together with the habits completed on date's calendar day.
func (s *DayResolver) ResolveDay(ctx context.Context, date time.Time) (*DaySummary, error) {
	dayKey := s.cal.StartOfDay(date)
	weekday := s.cal.Weekday(date)

	possible, err := s.repo.FindHabitsActiveOn(ctx, date, weekday)
	if err != nil {
		return nil, err
	}
	if possible == nil {
		possible = []domain.Habit{}
	}

	summary := &DaySummary{PossibleHabits: possible, CompletedHabitIDs: []domain.HabitID{}}

	day, err := s.repo.FindDayByDate(ctx, dayKey)
	if err != nil {
		return nil, err
	}
	if day != nil {
		summary.CompletedHabitIDs = day.HabitIDs()
	}
	return summary, nil
}
