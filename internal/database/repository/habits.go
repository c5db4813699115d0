package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/pmehra/habitmind/internal/database"
)

// DefaultColor is assigned to habits created without an explicit color.
const DefaultColor = "#2ecc40"

// HabitRepo handles habits and their completion entries.
type HabitRepo struct {
	db *sql.DB
}

func NewHabitRepo(db *sql.DB) *HabitRepo {
	return &HabitRepo{db: db}
}

// List returns all habits for a user ordered by name.
func (r *HabitRepo) List(ctx context.Context, userID int64) ([]Habit, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT id, user_id, name, color, created_at FROM habits
	WHERE user_id = ? ORDER BY name`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Habit
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// GetByName returns the habit with an exact case-insensitive name match.
func (r *HabitRepo) GetByName(ctx context.Context, userID int64, name string) (Habit, error) {
	row := r.db.QueryRowContext(ctx, `
	SELECT id, user_id, name, color, created_at FROM habits
	WHERE user_id = ? AND name = ? COLLATE NOCASE`, userID, name)
	h, err := scanHabit(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Habit{}, ErrNotFound
	}
	return h, err
}

// Create inserts a new habit. A case-insensitive name collision returns ErrDuplicate.
func (r *HabitRepo) Create(ctx context.Context, userID int64, name, color string) (Habit, error) {
	if color == "" {
		color = DefaultColor
	}
	h := Habit{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      name,
		Color:     color,
		CreatedAt: database.Now(),
	}
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO habits(id, user_id, name, color, created_at)
	VALUES (?, ?, ?, ?, ?)`,
		h.ID, h.UserID, h.Name, h.Color, h.CreatedAt.Format(time.RFC3339))
	if isUniqueViolation(err) {
		return Habit{}, ErrDuplicate
	}
	if err != nil {
		return Habit{}, fmt.Errorf("create habit: %w", err)
	}
	return h, nil
}

// Rename changes a habit's name. The old name must match exactly
// (case-insensitive); a collision with a different habit returns ErrDuplicate.
func (r *HabitRepo) Rename(ctx context.Context, userID int64, oldName, newName string) error {
	return database.WithTx(r.db, func(tx *sql.Tx) error {
		var id, current string
		err := tx.QueryRowContext(ctx, `
		SELECT id, name FROM habits WHERE user_id = ? AND name = ? COLLATE NOCASE`,
			userID, oldName).Scan(&id, &current)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		// Renaming only by case ("water" -> "Water") must not trip the
		// constraint against the habit's own row.
		if !strings.EqualFold(current, newName) {
			var other string
			err := tx.QueryRowContext(ctx, `
			SELECT id FROM habits WHERE user_id = ? AND name = ? COLLATE NOCASE`,
				userID, newName).Scan(&other)
			if err == nil {
				return ErrDuplicate
			}
			if !errors.Is(err, sql.ErrNoRows) {
				return err
			}
		}
		if _, err := tx.ExecContext(ctx, `UPDATE habits SET name = ? WHERE id = ?`, newName, id); err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicate
			}
			return fmt.Errorf("rename habit: %w", err)
		}
		return nil
	})
}

// Delete removes a habit; its entries cascade via the foreign key.
func (r *HabitRepo) Delete(ctx context.Context, userID int64, name string) error {
	return database.WithTx(r.db, func(tx *sql.Tx) error {
		var id string
		err := tx.QueryRowContext(ctx, `
		SELECT id FROM habits WHERE user_id = ? AND name = ? COLLATE NOCASE`,
			userID, name).Scan(&id)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM habits WHERE id = ?`, id); err != nil {
			return fmt.Errorf("delete habit: %w", err)
		}
		return nil
	})
}

// Entries returns the full date -> completed calendar for a habit.
func (r *HabitRepo) Entries(ctx context.Context, habitID string) (map[string]bool, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT date, completed FROM habit_entries WHERE habit_id = ?`, habitID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[string]bool{}
	for rows.Next() {
		var date string
		var completed bool
		if err := rows.Scan(&date, &completed); err != nil {
			return nil, err
		}
		out[date] = completed
	}
	return out, rows.Err()
}

// EntriesSince returns entries on or after the given ISO date, newest first.
func (r *HabitRepo) EntriesSince(ctx context.Context, habitID, since string) ([]Entry, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT habit_id, user_id, date, completed FROM habit_entries
	WHERE habit_id = ? AND date >= ? ORDER BY date DESC`, habitID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.HabitID, &e.UserID, &e.Date, &e.Completed); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// CompletedOn reports whether the habit has a completed entry for the date.
func (r *HabitRepo) CompletedOn(ctx context.Context, habitID, date string) (bool, error) {
	var completed bool
	err := r.db.QueryRowContext(ctx, `
	SELECT completed FROM habit_entries WHERE habit_id = ? AND date = ?`,
		habitID, date).Scan(&completed)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return completed, err
}

// UpsertEntry inserts or updates the completion flag for (habit, date).
func (r *HabitRepo) UpsertEntry(ctx context.Context, habitID string, userID int64, date string, completed bool) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO habit_entries(habit_id, user_id, date, completed)
	VALUES (?, ?, ?, ?)
	ON CONFLICT(habit_id, date) DO UPDATE SET completed = excluded.completed`,
		habitID, userID, date, completed)
	if err != nil {
		return fmt.Errorf("upsert entry: %w", err)
	}
	return nil
}

func scanHabit(row interface{ Scan(...any) error }) (Habit, error) {
	var h Habit
	var created string
	if err := row.Scan(&h.ID, &h.UserID, &h.Name, &h.Color, &created); err != nil {
		return Habit{}, err
	}
	if t, err := time.Parse(time.RFC3339, created); err == nil {
		h.CreatedAt = t
	}
	return h, nil
}

func isUniqueViolation(err error) bool {
	var serr sqlite3.Error
	if errors.As(err, &serr) {
		return serr.Code == sqlite3.ErrConstraint
	}
	return false
}
