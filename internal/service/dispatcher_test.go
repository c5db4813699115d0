package service

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pmehra/habitmind/internal/database"
	"github.com/pmehra/habitmind/internal/database/repository"
	"github.com/pmehra/habitmind/internal/intent"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	require.NoError(t, database.RunMigrations(dbPath))

	db, err := database.Open(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func testClock() time.Time {
	return time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
}

func newTestDispatcher(t *testing.T) (*Dispatcher, *repository.HabitRepo) {
	t.Helper()
	repo := repository.NewHabitRepo(newTestDB(t))
	return &Dispatcher{Habits: repo, Now: testClock}, repo
}

func TestDispatcherAddHabit(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	d, repo := newTestDispatcher(t)

	out := d.Execute(ctx, intent.Result{
		Action: intent.ActionAddHabit,
		Data:   intent.AddHabitData{Name: "Drink Water"},
	}, 1)
	require.True(t, out.Success)
	require.Contains(t, out.Message, "'Drink Water'")
	require.NotNil(t, out.Frontend)
	require.Equal(t, FrontendRefreshHabits, out.Frontend.Type)

	h, err := repo.GetByName(ctx, 1, "Drink Water")
	require.NoError(t, err)
	require.Equal(t, "Drink Water", h.Name)

	// Same name again, any case.
	out = d.Execute(ctx, intent.Result{
		Action: intent.ActionAddHabit,
		Data:   intent.AddHabitData{Name: "drink water"},
	}, 1)
	require.False(t, out.Success)
	require.Equal(t, true, out.Data["already_exists"])

	habits, err := repo.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, habits, 1)
}

func TestDispatcherAddHabitRejectsShortName(t *testing.T) {
	t.Parallel()
	d, _ := newTestDispatcher(t)

	out := d.Execute(context.Background(), intent.Result{
		Action: intent.ActionAddHabit,
		Data:   intent.AddHabitData{Name: "x"},
	}, 1)
	require.False(t, out.Success)
	require.Contains(t, out.Message, "valid habit name")
}

func TestDispatcherCompleteHabit(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	d, repo := newTestDispatcher(t)

	h, err := repo.Create(ctx, 1, "Drink Water", "")
	require.NoError(t, err)

	// Classifier output keeps trailing words; resolution absorbs them.
	out := d.Execute(ctx, intent.Result{
		Action: intent.ActionCompleteHabit,
		Data:   intent.CompleteHabitData{Name: "Drink Water As Complete"},
	}, 1)
	require.True(t, out.Success)
	require.Contains(t, out.Message, "'Drink Water'")
	require.Contains(t, out.Message, "today")

	done, err := repo.CompletedOn(ctx, h.ID, "2026-03-10")
	require.NoError(t, err)
	require.True(t, done)

	// Completing twice on the same date fails without changing the entry.
	out = d.Execute(ctx, intent.Result{
		Action: intent.ActionCompleteHabit,
		Data:   intent.CompleteHabitData{Name: "drink water"},
	}, 1)
	require.False(t, out.Success)
	require.Equal(t, true, out.Data["already_completed"])
}

func TestDispatcherCompleteHabitOnDate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	d, repo := newTestDispatcher(t)

	h, err := repo.Create(ctx, 1, "Yoga", "")
	require.NoError(t, err)

	yesterday := time.Date(2026, time.March, 9, 0, 0, 0, 0, time.UTC)
	out := d.Execute(ctx, intent.Result{
		Action: intent.ActionCompleteHabit,
		Data:   intent.CompleteHabitData{Name: "Yoga", Date: &yesterday},
	}, 1)
	require.True(t, out.Success)
	require.Contains(t, out.Message, "on 2026-03-09")

	done, err := repo.CompletedOn(ctx, h.ID, "2026-03-09")
	require.NoError(t, err)
	require.True(t, done)

	done, err = repo.CompletedOn(ctx, h.ID, "2026-03-10")
	require.NoError(t, err)
	require.False(t, done)
}

func TestDispatcherCompleteUnknownHabit(t *testing.T) {
	t.Parallel()
	d, _ := newTestDispatcher(t)

	out := d.Execute(context.Background(), intent.Result{
		Action: intent.ActionCompleteHabit,
		Data:   intent.CompleteHabitData{Name: "Skydiving"},
	}, 1)
	require.False(t, out.Success)
	require.Equal(t, true, out.Data["not_found"])
	require.Contains(t, out.Message, "create it for you")
}

func TestDispatcherRenameHabit(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	d, repo := newTestDispatcher(t)

	_, err := repo.Create(ctx, 1, "Water", "")
	require.NoError(t, err)
	_, err = repo.Create(ctx, 1, "Yoga", "")
	require.NoError(t, err)

	out := d.Execute(ctx, intent.Result{
		Action: intent.ActionEditHabit,
		Data:   intent.RenameHabitData{Old: "water", New: "Hydration"},
	}, 1)
	require.True(t, out.Success)
	require.Contains(t, out.Message, "renamed 'Water' to 'Hydration'")

	_, err = repo.GetByName(ctx, 1, "Hydration")
	require.NoError(t, err)

	// Renaming onto an existing habit is refused.
	out = d.Execute(ctx, intent.Result{
		Action: intent.ActionEditHabit,
		Data:   intent.RenameHabitData{Old: "Hydration", New: "yoga"},
	}, 1)
	require.False(t, out.Success)
	require.Equal(t, true, out.Data["name_exists"])
}

func TestDispatcherEditWithoutChangeAsksBack(t *testing.T) {
	t.Parallel()
	d, _ := newTestDispatcher(t)

	out := d.Execute(context.Background(), intent.Result{
		Action: intent.ActionEditHabit,
		Data:   intent.EditHabitData{Name: "Water"},
	}, 1)
	require.True(t, out.Success)
	require.Contains(t, out.Message, "What would you like to change")
}

func TestDispatcherDeleteHabit(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	d, repo := newTestDispatcher(t)

	h, err := repo.Create(ctx, 1, "Running", "")
	require.NoError(t, err)
	require.NoError(t, repo.UpsertEntry(ctx, h.ID, 1, "2026-03-09", true))

	out := d.Execute(ctx, intent.Result{
		Action: intent.ActionDeleteHabit,
		Data:   intent.HabitRefData{Name: "running"},
	}, 1)
	require.True(t, out.Success)
	require.Contains(t, out.Message, "removed 'Running'")

	// Gone for any later reference.
	out = d.Execute(ctx, intent.Result{
		Action: intent.ActionDeleteHabit,
		Data:   intent.HabitRefData{Name: "running"},
	}, 1)
	require.False(t, out.Success)
	require.Equal(t, true, out.Data["not_found"])
}

func TestDispatcherShowHabits(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	d, repo := newTestDispatcher(t)

	out := d.Execute(ctx, intent.Result{Action: intent.ActionShowHabits}, 1)
	require.True(t, out.Success)
	require.Equal(t, true, out.Data["empty"])

	_, err := repo.Create(ctx, 1, "Reading", "")
	require.NoError(t, err)
	h, err := repo.Create(ctx, 1, "Water", "")
	require.NoError(t, err)
	require.NoError(t, repo.UpsertEntry(ctx, h.ID, 1, "2026-03-10", true))

	out = d.Execute(ctx, intent.Result{Action: intent.ActionShowHabits}, 1)
	require.True(t, out.Success)
	require.Contains(t, out.Message, "Reading, Water")
	require.Contains(t, out.Message, "Today you've completed: Water")
	require.Equal(t, 2, out.Data["total_count"])
}

func TestDispatcherHabitStatusStreak(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	d, repo := newTestDispatcher(t)

	h, err := repo.Create(ctx, 1, "Meditation", "")
	require.NoError(t, err)

	// Newest two completed, then a break. Days with no entry are not gaps.
	require.NoError(t, repo.UpsertEntry(ctx, h.ID, 1, "2026-03-10", true))
	require.NoError(t, repo.UpsertEntry(ctx, h.ID, 1, "2026-03-09", true))
	require.NoError(t, repo.UpsertEntry(ctx, h.ID, 1, "2026-03-08", false))
	require.NoError(t, repo.UpsertEntry(ctx, h.ID, 1, "2026-03-06", true))

	out := d.Execute(ctx, intent.Result{
		Action: intent.ActionHabitStatus,
		Data:   intent.HabitRefData{Name: "meditation"},
	}, 1)
	require.True(t, out.Success)
	require.Equal(t, 2, out.Data["current_streak"])
	require.Equal(t, 3, out.Data["completed_days"])
	require.Equal(t, 4, out.Data["total_days"])
	require.Equal(t, true, out.Data["completed_today"])
	require.InDelta(t, 75.0, out.Data["completion_rate"].(float64), 1e-9)
	require.Contains(t, out.Message, "Current streak: 2 days")
}

func TestDispatcherNavigate(t *testing.T) {
	t.Parallel()
	d, _ := newTestDispatcher(t)

	out := d.Execute(context.Background(), intent.Result{
		Action: intent.ActionNavigateSettings,
		Data:   intent.NavigateData{Page: "settings"},
	}, 1)
	require.True(t, out.Success)
	require.NotNil(t, out.Frontend)
	require.Equal(t, FrontendNavigate, out.Frontend.Type)
	require.Equal(t, "/settings", out.Frontend.Navigate)
}

func TestDispatcherClearDataRefused(t *testing.T) {
	t.Parallel()
	d, _ := newTestDispatcher(t)

	out := d.Execute(context.Background(), intent.Result{Action: intent.ActionClearData}, 1)
	require.False(t, out.Success)
	require.Contains(t, out.Message, "settings page")
	require.NotNil(t, out.Frontend)
	require.Equal(t, "/settings", out.Frontend.Navigate)
}

func TestCurrentStreak(t *testing.T) {
	t.Parallel()

	entry := func(date string, done bool) repository.Entry {
		return repository.Entry{Date: date, Completed: done}
	}
	require.Equal(t, 0, currentStreak(nil))
	require.Equal(t, 0, currentStreak([]repository.Entry{entry("2026-03-10", false)}))
	require.Equal(t, 2, currentStreak([]repository.Entry{
		entry("2026-03-10", true),
		entry("2026-03-09", true),
		entry("2026-03-08", false),
		entry("2026-03-07", true),
	}))
}
