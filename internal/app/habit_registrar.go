// Package app holds the application services and business logic.
package app

import (
	"context"
	"slices"
	"strings"

	"habits/internal/domain"
)

// HabitRegistrar encapsulates the habit creation use case.
type HabitRegistrar struct {
	repo domain.HabitRepository
	cal  domain.Calendar
}

// NewHabitRegistrar creates a HabitRegistrar backed by the given repository.
func NewHabitRegistrar(repo domain.HabitRepository, cal domain.Calendar) *HabitRegistrar {
	return &HabitRegistrar{repo: repo, cal: cal}
}

// Register validates and stores a new habit created today and scheduled on
// weekDays. Repeated weekdays are stored once.
func (s *HabitRegistrar) Register(ctx context.Context, title string, weekDays []int) error {
	if strings.TrimSpace(title) == "" {
		return domain.NewValidationError("title", "must not be empty")
	}
	for _, wd := range weekDays {
		if wd < 0 || wd > 6 {
			return domain.NewValidationError("weekDays", "%d is outside [0, 6]", wd)
		}
	}

	days := slices.Clone(weekDays)
	slices.Sort(days)
	days = slices.Compact(days)

	_, err := s.repo.CreateHabit(ctx, title, s.cal.Today(), days)
	return err
}
