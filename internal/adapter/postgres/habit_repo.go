package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"habits/internal/domain"
)

var _ domain.HabitRepository = (*DB)(nil)

// CreateHabit inserts a habit and its weekday rows in one transaction.
func (d *DB) CreateHabit(ctx context.Context, title string, createdAt time.Time, weekDays []int) (domain.HabitID, error) {
	tx, err := d.sql.BeginTx(ctx, nil)
	if err != nil {
		return uuid.Nil, domain.WrapStorage("create habit: begin", err)
	}
	defer tx.Rollback() //nolint:errcheck

	id := uuid.New()
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO habits(id, title, created_at) VALUES($1, $2, $3);",
		id, title, createdAt.UTC(),
	); err != nil {
		return uuid.Nil, domain.WrapStorage("create habit: insert habit", err)
	}

	for _, wd := range weekDays {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO habit_week_days(id, habit_id, week_day) VALUES($1, $2, $3);",
			uuid.New(), id, wd,
		); err != nil {
			return uuid.Nil, domain.WrapStorage("create habit: insert week day", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return uuid.Nil, domain.WrapStorage("create habit: commit", err)
	}
	return id, nil
}

// FindHabitsActiveOn returns habits created at or before date that are
// scheduled on weekday, oldest first.
func (d *DB) FindHabitsActiveOn(ctx context.Context, date time.Time, weekday int) ([]domain.Habit, error) {
	rows, err := d.sql.QueryContext(ctx,
		`SELECT h.id, h.title, h.created_at,
			ARRAY(SELECT w.week_day FROM habit_week_days w WHERE w.habit_id = h.id ORDER BY w.week_day)
		FROM habits h
		WHERE h.created_at <= $1
			AND EXISTS (SELECT 1 FROM habit_week_days w WHERE w.habit_id = h.id AND w.week_day = $2)
		ORDER BY h.created_at, h.id;`,
		date.UTC(), weekday,
	)
	if err != nil {
		return nil, domain.WrapStorage("find habits", err)
	}
	defer rows.Close() //nolint:errcheck

	out := make([]domain.Habit, 0)
	for rows.Next() {
		var h domain.Habit
		var days []int64
		if err := rows.Scan(&h.ID, &h.Title, &h.CreatedAt, pq.Array(&days)); err != nil {
			return nil, domain.WrapStorage("find habits: scan", err)
		}
		h.CreatedAt = h.CreatedAt.UTC()
		h.WeekDays = make([]int, len(days))
		for i, wd := range days {
			h.WeekDays[i] = int(wd)
		}
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.WrapStorage("find habits", err)
	}
	return out, nil
}

// FindDayByDate returns the day stored under dayKey with its completions,
// or nil if none was recorded.
func (d *DB) FindDayByDate(ctx context.Context, dayKey time.Time) (*domain.Day, error) {
	var day domain.Day
	err := d.sql.QueryRowContext(ctx,
		"SELECT id, date FROM days WHERE date = $1;", dayKey.UTC(),
	).Scan(&day.ID, &day.Date)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.WrapStorage("find day", err)
	}
	day.Date = day.Date.UTC()

	rows, err := d.sql.QueryContext(ctx,
		"SELECT habit_id FROM day_habits WHERE day_id = $1 ORDER BY habit_id;", day.ID)
	if err != nil {
		return nil, domain.WrapStorage("find day: completions", err)
	}
	defer rows.Close() //nolint:errcheck

	day.Completions = make([]domain.Completion, 0)
	for rows.Next() {
		c := domain.Completion{DayID: day.ID}
		if err := rows.Scan(&c.HabitID); err != nil {
			return nil, domain.WrapStorage("find day: scan", err)
		}
		day.Completions = append(day.Completions, c)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.WrapStorage("find day: completions", err)
	}
	return &day, nil
}
