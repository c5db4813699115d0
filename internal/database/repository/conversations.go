package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// ConversationRepo handles per-user chat history.
type ConversationRepo struct {
	db *sql.DB
}

func NewConversationRepo(db *sql.DB) *ConversationRepo {
	return &ConversationRepo{db: db}
}

// Append stores one conversation turn.
func (r *ConversationRepo) Append(ctx context.Context, userID int64, message, reply string, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO chat_history(user_id, message, response, created_at)
	VALUES (?, ?, ?, ?)`,
		userID, message, reply, at.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("append conversation: %w", err)
	}
	return nil
}

// Recent returns the latest n turns, oldest first.
func (r *ConversationRepo) Recent(ctx context.Context, userID int64, n int) ([]ConversationTurn, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT id, user_id, message, response, created_at FROM chat_history
	WHERE user_id = ? ORDER BY id DESC LIMIT ?`, userID, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ConversationTurn
	for rows.Next() {
		var t ConversationTurn
		var created string
		if err := rows.Scan(&t.ID, &t.UserID, &t.Message, &t.Response, &created); err != nil {
			return nil, err
		}
		if ts, err := time.Parse(time.RFC3339, created); err == nil {
			t.CreatedAt = ts
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// reverse to chronological order
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

// RecentContext formats the latest n turns as a prompt context block.
// Returns "" when there is no history.
func (r *ConversationRepo) RecentContext(ctx context.Context, userID int64, n int) (string, error) {
	turns, err := r.Recent(ctx, userID, n)
	if err != nil {
		return "", err
	}
	if len(turns) == 0 {
		return "", nil
	}
	var b strings.Builder
	b.WriteString("\n\nRecent conversation context:\n")
	for _, t := range turns {
		fmt.Fprintf(&b, "User: %s\nAssistant: %s\n\n", t.Message, t.Response)
	}
	return b.String(), nil
}
