// Package memory implements an in-memory repository for development and testing.
package memory

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"habits/internal/domain"
)

// DB implements an in-memory database storage.
type DB struct {
	mu     sync.Mutex
	habits []domain.Habit
	days   map[int64]*domain.Day
}

// New creates a new in-memory database.
func New() *DB {
	return &DB{
		days: make(map[int64]*domain.Day),
	}
}

// Ensure interfaces are met.
var _ domain.HabitRepository = (*DB)(nil)

// CreateHabit stores a habit with its weekday associations.
func (db *DB) CreateHabit(ctx context.Context, title string, createdAt time.Time, weekDays []int) (domain.HabitID, error) {
	if err := ctx.Err(); err != nil {
		return uuid.Nil, domain.WrapStorage("create habit", err)
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	h := domain.Habit{
		ID:        uuid.New(),
		Title:     title,
		CreatedAt: createdAt.UTC(),
		WeekDays:  slices.Clone(weekDays),
	}
	db.habits = append(db.habits, h)
	return h.ID, nil
}

// FindHabitsActiveOn returns habits created at or before date that are
// scheduled on weekday, oldest first.
func (db *DB) FindHabitsActiveOn(ctx context.Context, date time.Time, weekday int) ([]domain.Habit, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.WrapStorage("find habits", err)
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	out := make([]domain.Habit, 0)
	for _, h := range db.habits {
		if h.CreatedAt.After(date) {
			continue
		}
		if !slices.Contains(h.WeekDays, weekday) {
			continue
		}
		h.WeekDays = slices.Clone(h.WeekDays)
		out = append(out, h)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// FindDayByDate returns the day stored under dayKey, or nil.
func (db *DB) FindDayByDate(ctx context.Context, dayKey time.Time) (*domain.Day, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.WrapStorage("find day", err)
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	d, ok := db.days[dayKey.UnixNano()]
	if !ok {
		return nil, nil
	}
	// return a copy so callers cannot mutate stored completions
	ret := *d
	ret.Completions = slices.Clone(d.Completions)
	return &ret, nil
}

// RecordCompletion marks habitID as completed on dayKey, creating the day
// on first use. Recording the same pair twice is a no-op.
func (db *DB) RecordCompletion(ctx context.Context, dayKey time.Time, habitID domain.HabitID) error {
	if err := ctx.Err(); err != nil {
		return domain.WrapStorage("record completion", err)
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	d, ok := db.days[dayKey.UnixNano()]
	if !ok {
		d = &domain.Day{ID: uuid.New(), Date: dayKey.UTC()}
		db.days[dayKey.UnixNano()] = d
	}
	for _, c := range d.Completions {
		if c.HabitID == habitID {
			return nil
		}
	}
	d.Completions = append(d.Completions, domain.Completion{DayID: d.ID, HabitID: habitID})
	return nil
}
