// Package domain contains the core business entities and interfaces.
package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// HabitID identifies a habit.
type HabitID = uuid.UUID

// Habit is a recurring activity scheduled on a fixed set of weekdays.
type Habit struct {
	ID        HabitID   `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
	WeekDays  []int     `json:"weekDays"`
}

// Day is a calendar day on which at least one completion was recorded.
type Day struct {
	ID          uuid.UUID    `json:"id"`
	Date        time.Time    `json:"date"`
	Completions []Completion `json:"completions"`
}

// Completion marks a habit as done on a day.
type Completion struct {
	DayID   uuid.UUID `json:"dayId"`
	HabitID HabitID   `json:"habitId"`
}

// HabitIDs returns the habit of every completion attached to the day.
func (d *Day) HabitIDs() []HabitID {
	out := make([]HabitID, 0, len(d.Completions))
	for _, c := range d.Completions {
		out = append(out, c.HabitID)
	}
	return out
}

// HabitRepository is the port for habit persistence.
//
// CreateHabit stores the habit and all of its weekday associations as one
// unit; implementations must not leave a habit without its associations.
// FindDayByDate returns nil, nil when no day is stored under dayKey.
type HabitRepository interface {
	CreateHabit(ctx context.Context, title string, createdAt time.Time, weekDays []int) (HabitID, error)
	FindHabitsActiveOn(ctx context.Context, date time.Time, weekday int) ([]Habit, error)
	FindDayByDate(ctx context.Context, dayKey time.Time) (*Day, error)
}
