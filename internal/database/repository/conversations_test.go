package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestConversationRecent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := NewConversationRepo(newTestDB(t))

	at := time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)
	for i := 1; i <= 5; i++ {
		require.NoError(t, repo.Append(ctx, 1,
			fmt.Sprintf("message %d", i), fmt.Sprintf("reply %d", i),
			at.Add(time.Duration(i)*time.Minute)))
	}

	turns, err := repo.Recent(ctx, 1, 3)
	require.NoError(t, err)
	require.Len(t, turns, 3)
	// Latest three, oldest first.
	require.Equal(t, "message 3", turns[0].Message)
	require.Equal(t, "message 5", turns[2].Message)
	require.Equal(t, "reply 5", turns[2].Response)

	turns, err = repo.Recent(ctx, 2, 3)
	require.NoError(t, err)
	require.Empty(t, turns)
}

func TestConversationRecentContext(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := NewConversationRepo(newTestDB(t))

	got, err := repo.RecentContext(ctx, 1, 10)
	require.NoError(t, err)
	require.Empty(t, got)

	require.NoError(t, repo.Append(ctx, 1, "hi", "Hello!", time.Now()))
	got, err = repo.RecentContext(ctx, 1, 10)
	require.NoError(t, err)
	require.Contains(t, got, "Recent conversation context:")
	require.Contains(t, got, "User: hi")
	require.Contains(t, got, "Assistant: Hello!")
}
