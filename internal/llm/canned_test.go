package llm

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCannedResponderNeverFails(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c := NewCannedResponder(1)

	for _, msg := range []string{
		"hello", "how are you", "i want a new habit", "totally unrelated text", "",
	} {
		reply, err := c.Generate(ctx, msg, "")
		require.NoError(t, err, "msg: %q", msg)
		require.NotEmpty(t, reply, "msg: %q", msg)
	}
}

func TestCannedResponderRoutesByKeyword(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c := NewCannedResponder(1)

	reply, err := c.Generate(ctx, "hello there", "")
	require.NoError(t, err)
	require.Contains(t, cannedBuckets[0].replies, reply)

	// Habit-flavored messages draw from the habit bucket.
	reply, err = c.Generate(ctx, "i should build a workout habit", "")
	require.NoError(t, err)
	lower := strings.ToLower(reply)
	require.True(t, strings.Contains(lower, "habit") || strings.Contains(lower, "routine"),
		"got: %q", reply)
}

func TestCannedResponderFollowup(t *testing.T) {
	t.Parallel()
	c := NewCannedResponder(1)

	reply, err := c.Generate(context.Background(), "tell me more about that", "User: hi\nAssistant: Hello!")
	require.NoError(t, err)
	require.Contains(t, reply, "continue our conversation")
}

func TestCannedResponderDeterministicWithSeed(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	a := NewCannedResponder(42)
	b := NewCannedResponder(42)
	for i := 0; i < 5; i++ {
		ra, err := a.Generate(ctx, "what a day", "")
		require.NoError(t, err)
		rb, err := b.Generate(ctx, "what a day", "")
		require.NoError(t, err)
		require.Equal(t, ra, rb)
	}
}
