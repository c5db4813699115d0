package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pmehra/habitmind/internal/database/repository"
	"github.com/pmehra/habitmind/internal/intent"
	"github.com/pmehra/habitmind/internal/llm"
)

type fixedModel struct {
	reply string
}

func (m fixedModel) Generate(context.Context, string, string) (string, error) {
	return m.reply, nil
}

type failingModel struct{}

func (failingModel) Generate(context.Context, string, string) (string, error) {
	return "", errors.New("provider unavailable")
}

func newTestPipeline(t *testing.T) (*Pipeline, *repository.HabitRepo, *repository.ConversationRepo) {
	t.Helper()
	db := newTestDB(t)
	habits := repository.NewHabitRepo(db)
	history := repository.NewConversationRepo(db)
	p := &Pipeline{
		Classifier: intent.NewClassifier().WithClock(testClock),
		Dispatcher: &Dispatcher{Habits: habits, Now: testClock},
		Habits:     habits,
		History:    history,
		Fallback:   llm.NewCannedResponder(1),
		Now:        testClock,
	}
	return p, habits, history
}

func TestPipelineAddThenComplete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	p, habits, history := newTestPipeline(t)

	resp := p.ProcessText(ctx, "add a habit to drink water", 1)
	require.True(t, resp.ActionTaken)
	require.Contains(t, resp.Reply, "'Drink Water'")
	require.NotNil(t, resp.Outcome)
	require.True(t, resp.Outcome.Success)

	h, err := habits.GetByName(ctx, 1, "Drink Water")
	require.NoError(t, err)

	resp = p.ProcessText(ctx, "mark drink water as complete", 1)
	require.True(t, resp.ActionTaken)
	require.True(t, resp.Outcome.Success)

	done, err := habits.CompletedOn(ctx, h.ID, "2026-03-10")
	require.NoError(t, err)
	require.True(t, done)

	turns, err := history.Recent(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, turns, 2)
	require.Equal(t, "add a habit to drink water", turns[0].Message)
	require.Equal(t, resp.Reply, turns[1].Response)
}

func TestPipelineConversationLeavesStoreAlone(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	p, habits, history := newTestPipeline(t)

	resp := p.ProcessText(ctx, "hello how are you", 1)
	require.False(t, resp.ActionTaken)
	require.NotEmpty(t, resp.Reply)
	require.Equal(t, intent.ActionConversation, resp.Processing)

	list, err := habits.List(ctx, 1)
	require.NoError(t, err)
	require.Empty(t, list)

	turns, err := history.Recent(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, turns, 1)
}

func TestPipelineUsesConversationModel(t *testing.T) {
	t.Parallel()
	p, _, _ := newTestPipeline(t)
	p.Model = fixedModel{reply: "Here for you."}

	resp := p.ProcessText(context.Background(), "tell me something nice", 1)
	require.False(t, resp.ActionTaken)
	require.Equal(t, "Here for you.", resp.Reply)
}

func TestPipelineModelFailureFallsBackToCanned(t *testing.T) {
	t.Parallel()
	p, _, _ := newTestPipeline(t)
	p.Model = failingModel{}

	resp := p.ProcessText(context.Background(), "hello there", 1)
	require.False(t, resp.ActionTaken)
	require.NotEmpty(t, resp.Reply)
	require.NotEqual(t, genericApology, resp.Reply)
}

func TestPipelineImplicitHabitCreation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	p, habits, _ := newTestPipeline(t)

	resp := p.ProcessText(ctx, "i'm beginning a habit of stretching", 1)
	require.True(t, resp.ActionTaken)
	require.Contains(t, resp.Reply, "I've added 'Stretching'")
	require.NotNil(t, resp.Frontend)
	require.Equal(t, FrontendRefreshHabits, resp.Frontend.Type)
	require.NotNil(t, resp.Outcome)
	require.Equal(t, []string{"Stretching"}, resp.Outcome.Data["implicit_creation"])

	_, err := habits.GetByName(ctx, 1, "Stretching")
	require.NoError(t, err)

	// Mentioning it again stays conversational: the habit already exists.
	resp = p.ProcessText(ctx, "i'm beginning a habit of stretching", 1)
	require.False(t, resp.ActionTaken)

	list, err := habits.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestPipelineTranscriptGates(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	p, habits, _ := newTestPipeline(t)
	p.MinTranscriptConfidence = 0.5

	resp := p.ProcessTranscript(ctx, "hm", 0.95, 1)
	require.Equal(t, ProcessingUnclearSpeech, resp.Processing)
	require.Contains(t, resp.Reply, "too short")

	resp = p.ProcessTranscript(ctx, "add a habit to read more", 0.2, 1)
	require.Equal(t, ProcessingUnclearSpeech, resp.Processing)
	require.False(t, resp.ActionTaken)

	list, err := habits.List(ctx, 1)
	require.NoError(t, err)
	require.Empty(t, list)

	resp = p.ProcessTranscript(ctx, "add a habit to read more", 0.9, 1)
	require.True(t, resp.ActionTaken)
	_, err = habits.GetByName(ctx, 1, "Read More")
	require.NoError(t, err)
}

func TestPipelineRecoversFromPanic(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	p, _, history := newTestPipeline(t)
	p.Classifier = nil // forces a panic inside Process

	resp := p.ProcessText(ctx, "add a habit to drink water", 1)
	require.Equal(t, genericApology, resp.Reply)
	require.Equal(t, ProcessingError, resp.Processing)
	require.False(t, resp.ActionTaken)

	turns, err := history.Recent(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, turns, 1)
	require.Equal(t, genericApology, turns[0].Response)
}

func TestDispatchEligibility(t *testing.T) {
	t.Parallel()

	require.True(t, dispatchEligible(intent.ActionAddHabit))
	require.True(t, dispatchEligible(intent.ActionNavigateHome))
	require.False(t, dispatchEligible(intent.ActionConversation))
	require.False(t, dispatchEligible(intent.ActionHabitConversation))
	require.False(t, dispatchEligible(intent.ActionUnknown))

	require.InDelta(t, mutatingThreshold, threshold(intent.ActionDeleteHabit), 1e-9)
	require.InDelta(t, defaultThreshold, threshold(intent.ActionShowHabits), 1e-9)
}
