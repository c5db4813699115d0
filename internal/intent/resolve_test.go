package intent

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveTiers(t *testing.T) {
	t.Parallel()
	candidates := []string{"Drink Water", "Morning Run", "Read Books"}

	tests := []struct {
		name  string
		query string
		want  string
		ok    bool
	}{
		{"exact", "Drink Water", "Drink Water", true},
		{"case insensitive", "drink water", "Drink Water", true},
		{"query contains candidate", "drink water as complete", "Drink Water", true},
		{"candidate contains query", "water", "Drink Water", true},
		{"word overlap", "my long morning treadmill run", "Morning Run", true},
		{"edit distance", "reed bookz", "Read Books", true},
		{"no match", "pizza", "", false},
		{"empty query", "   ", "", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, ok := Resolve(tc.query, candidates)
			require.Equal(t, tc.ok, ok)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestResolveReturnsMember(t *testing.T) {
	t.Parallel()
	candidates := []string{"Yoga", "Journaling", "Drink Water"}

	for _, query := range []string{"yoga", "jornaling", "water", "do some yoga today"} {
		got, ok := Resolve(query, candidates)
		require.True(t, ok, "query: %q", query)
		require.Contains(t, candidates, got, "query: %q", query)
	}
}

func TestResolveOverlapTieKeepsFirst(t *testing.T) {
	t.Parallel()

	// One shared word with each candidate; the first listed wins.
	got, ok := Resolve("morning run", []string{"Run Club", "Morning Yoga"})
	require.True(t, ok)
	require.Equal(t, "Run Club", got)
}

func TestResolveNoCandidates(t *testing.T) {
	t.Parallel()
	_, ok := Resolve("anything", nil)
	require.False(t, ok)
}
