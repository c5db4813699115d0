package repository

import (
	"errors"
	"time"
)

// Habit represents a habit row.
type Habit struct {
	ID        string
	UserID    int64
	Name      string
	Color     string
	CreatedAt time.Time
}

// Entry represents a single dated completion record for a habit.
type Entry struct {
	HabitID   string
	UserID    int64
	Date      string // ISO date, YYYY-MM-DD
	Completed bool
}

// ConversationTurn is one user message with the assistant's reply.
type ConversationTurn struct {
	ID        int64
	UserID    int64
	Message   string
	Response  string
	CreatedAt time.Time
}

// Sentinel errors shared by all repositories. The sqlite UNIQUE constraint
// on (user_id, name COLLATE NOCASE) is the authoritative duplicate guard;
// ErrDuplicate surfaces both the constraint violation and application-level
// pre-checks under one value.
var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("already exists")
)
