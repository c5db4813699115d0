package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/pmehra/habitmind/internal/database/repository"
	"github.com/pmehra/habitmind/internal/intent"
)

// statusWindowDays is the trailing window for completion-rate reporting.
const statusWindowDays = 30

// Dispatcher executes classified actions against the habit store. Each
// operation fully applies or applies nothing; there is no partial mutation
// on any failure path.
type Dispatcher struct {
	Habits *repository.HabitRepo
	Log    *zap.Logger
	Now    func() time.Time
}

func (d *Dispatcher) logger() *zap.Logger {
	if d.Log == nil {
		return zap.NewNop()
	}
	return d.Log
}

func (d *Dispatcher) clock() time.Time {
	if d.Now == nil {
		return time.Now()
	}
	return d.Now()
}

// Execute runs one classified action for a user and produces an outcome.
// Store failures degrade to success=false with a generic apologetic message;
// the error class lands in Outcome.Err only.
func (d *Dispatcher) Execute(ctx context.Context, res intent.Result, userID int64) Outcome {
	d.logger().Info("executing action",
		zap.String("action", string(res.Action)),
		zap.Int64("user", userID),
		zap.Float64("confidence", res.Confidence))

	switch res.Action {
	case intent.ActionAddHabit:
		data, _ := res.Data.(intent.AddHabitData)
		return d.addHabit(ctx, data, userID)
	case intent.ActionCompleteHabit:
		data, _ := res.Data.(intent.CompleteHabitData)
		return d.completeHabit(ctx, data, userID)
	case intent.ActionEditHabit:
		return d.editHabit(ctx, res.Data, userID)
	case intent.ActionDeleteHabit:
		data, _ := res.Data.(intent.HabitRefData)
		return d.deleteHabit(ctx, data, userID)
	case intent.ActionShowHabits:
		return d.showHabits(ctx, userID)
	case intent.ActionHabitStatus:
		data, _ := res.Data.(intent.HabitRefData)
		return d.habitStatus(ctx, data, userID)

	case intent.ActionNavigateHome, intent.ActionNavigateHabits,
		intent.ActionNavigateAnalytics, intent.ActionNavigateChat,
		intent.ActionNavigateSettings:
		data, _ := res.Data.(intent.NavigateData)
		return d.navigate(res.Action, data)

	case intent.ActionLogout:
		return Outcome{
			Success:  true,
			Action:   res.Action,
			Message:  "Logging you out now. See you soon!",
			Frontend: &Frontend{Type: FrontendLogout, Navigate: "/login"},
		}
	case intent.ActionViewAccount:
		return Outcome{
			Success:  true,
			Action:   res.Action,
			Message:  "Opening your account settings!",
			Frontend: &Frontend{Type: FrontendNavigate, Navigate: "/account"},
		}
	case intent.ActionRefreshPage:
		return Outcome{
			Success:  true,
			Action:   res.Action,
			Message:  "Refreshing the page for you!",
			Frontend: &Frontend{Type: FrontendRefresh},
		}
	case intent.ActionClearData:
		// Bulk wipe needs the settings surface; refuse by voice/text.
		return Outcome{
			Success:  false,
			Action:   res.Action,
			Message:  "For safety, please use the settings page to clear data. I can't do that through a chat command.",
			Frontend: &Frontend{Type: FrontendNavigate, Navigate: "/settings"},
		}
	case intent.ActionShowHelp:
		return Outcome{
			Success: true,
			Action:  res.Action,
			Message: helpMessage,
			Data:    map[string]any{"help_shown": true},
		}
	case intent.ActionAppInfo:
		return Outcome{
			Success: true,
			Action:  res.Action,
			Message: infoMessage,
			Data:    map[string]any{"info_shown": true},
		}
	case intent.ActionShowToday:
		return Outcome{
			Success:  true,
			Action:   res.Action,
			Message:  "Here's your schedule for today! Opening your habits page to show today's progress.",
			Data:     map[string]any{"date": d.clock().Format(intent.ISODate)},
			Frontend: &Frontend{Type: FrontendNavigate, Navigate: "/habits"},
		}
	case intent.ActionShowCalendar:
		return Outcome{
			Success:  true,
			Action:   res.Action,
			Message:  "Opening your habit calendar!",
			Frontend: &Frontend{Type: FrontendNavigate, Navigate: "/habits"},
		}
	}

	return Outcome{
		Success: false,
		Action:  res.Action,
		Message: fmt.Sprintf("I understand you want to %s, but I don't know how to do that yet.",
			strings.ReplaceAll(string(res.Action), "_", " ")),
	}
}

func (d *Dispatcher) addHabit(ctx context.Context, data intent.AddHabitData, userID int64) Outcome {
	name := strings.TrimSpace(data.Name)
	if utf8.RuneCountInString(name) < 2 {
		return Outcome{
			Success: false,
			Action:  intent.ActionAddHabit,
			Message: "Please provide a valid habit name.",
		}
	}

	// Exact case-insensitive check only; fuzzy matching here would block
	// legitimately distinct habits that share a word.
	if _, err := d.Habits.GetByName(ctx, userID, name); err == nil {
		return Outcome{
			Success: false,
			Action:  intent.ActionAddHabit,
			Message: fmt.Sprintf("You already have a habit called '%s'. Try completing it or creating a different one!", name),
			Data:    map[string]any{"habit_name": name, "already_exists": true},
		}
	} else if !errors.Is(err, repository.ErrNotFound) {
		return d.storeFailure(intent.ActionAddHabit, "Sorry, I couldn't add that habit right now. Please try again.", err)
	}

	h, err := d.Habits.Create(ctx, userID, name, "")
	if errors.Is(err, repository.ErrDuplicate) {
		// Lost the race against a concurrent create; same reply as above.
		return Outcome{
			Success: false,
			Action:  intent.ActionAddHabit,
			Message: fmt.Sprintf("You already have a habit called '%s'. Try completing it or creating a different one!", name),
			Data:    map[string]any{"habit_name": name, "already_exists": true},
		}
	}
	if err != nil {
		return d.storeFailure(intent.ActionAddHabit, "Sorry, I couldn't add that habit right now. Please try again.", err)
	}

	d.logger().Info("habit added", zap.String("name", h.Name), zap.Int64("user", userID))
	return Outcome{
		Success:  true,
		Action:   intent.ActionAddHabit,
		Message:  fmt.Sprintf("Perfect! I've added '%s' to your habits tracker. You can start tracking it today!", h.Name),
		Data:     map[string]any{"habit_name": h.Name, "habit_id": h.ID, "created": true},
		Frontend: &Frontend{Type: FrontendRefreshHabits},
	}
}

func (d *Dispatcher) completeHabit(ctx context.Context, data intent.CompleteHabitData, userID int64) Outcome {
	name := strings.TrimSpace(data.Name)
	if name == "" {
		return Outcome{
			Success: false,
			Action:  intent.ActionCompleteHabit,
			Message: "Please specify which habit you want to mark as complete.",
		}
	}

	habit, outcome := d.resolveHabit(ctx, intent.ActionCompleteHabit, name, userID,
		fmt.Sprintf("I couldn't find a habit called '%s'. Would you like me to create it for you?", name))
	if outcome != nil {
		return *outcome
	}

	today := d.clock().Format(intent.ISODate)
	dateKey := today
	if data.Date != nil {
		dateKey = data.Date.Format(intent.ISODate)
	}
	dateStr := "today"
	if dateKey != today {
		dateStr = "on " + dateKey
	}

	done, err := d.Habits.CompletedOn(ctx, habit.ID, dateKey)
	if err != nil {
		return d.storeFailure(intent.ActionCompleteHabit, "Sorry, I couldn't mark that habit as complete. Please try again.", err)
	}
	if done {
		return Outcome{
			Success: false,
			Action:  intent.ActionCompleteHabit,
			Message: fmt.Sprintf("You already completed '%s' %s! Great job maintaining your streak!", habit.Name, strings.TrimPrefix(dateStr, "on ")),
			Data:    map[string]any{"habit_name": habit.Name, "date": dateKey, "already_completed": true},
		}
	}

	if err := d.Habits.UpsertEntry(ctx, habit.ID, userID, dateKey, true); err != nil {
		return d.storeFailure(intent.ActionCompleteHabit, "Sorry, I couldn't mark that habit as complete. Please try again.", err)
	}

	d.logger().Info("habit completed", zap.String("name", habit.Name), zap.String("date", dateKey))
	return Outcome{
		Success:  true,
		Action:   intent.ActionCompleteHabit,
		Message:  fmt.Sprintf("Awesome! I've marked '%s' as completed %s. You're building great habits!", habit.Name, dateStr),
		Data:     map[string]any{"habit_name": habit.Name, "date": dateKey, "completed": true},
		Frontend: &Frontend{Type: FrontendRefreshHabits},
	}
}

func (d *Dispatcher) editHabit(ctx context.Context, data intent.Data, userID int64) Outcome {
	switch v := data.(type) {
	case intent.RenameHabitData:
		return d.renameHabit(ctx, v, userID)
	case intent.EditHabitData:
		return Outcome{
			Success: true,
			Action:  intent.ActionEditHabit,
			Message: fmt.Sprintf("What would you like to change about '%s'? You can say 'rename %s to [new name]'.", v.Name, v.Name),
			Data:    map[string]any{"habit_name": v.Name, "edit_request": true},
		}
	}
	return Outcome{
		Success: false,
		Action:  intent.ActionEditHabit,
		Message: "Please specify which habit you want to edit and what changes to make.",
	}
}

func (d *Dispatcher) renameHabit(ctx context.Context, data intent.RenameHabitData, userID int64) Outcome {
	habit, outcome := d.resolveHabit(ctx, intent.ActionEditHabit, data.Old, userID,
		fmt.Sprintf("I couldn't find a habit called '%s' to rename.", data.Old))
	if outcome != nil {
		return *outcome
	}

	err := d.Habits.Rename(ctx, userID, habit.Name, data.New)
	if errors.Is(err, repository.ErrDuplicate) {
		return Outcome{
			Success: false,
			Action:  intent.ActionEditHabit,
			Message: fmt.Sprintf("You already have a habit called '%s'. Please choose a different name.", data.New),
			Data:    map[string]any{"new_name": data.New, "name_exists": true},
		}
	}
	if err != nil {
		return d.storeFailure(intent.ActionEditHabit, "Sorry, I couldn't rename that habit. Please try again.", err)
	}

	d.logger().Info("habit renamed", zap.String("old", habit.Name), zap.String("new", data.New))
	return Outcome{
		Success:  true,
		Action:   intent.ActionEditHabit,
		Message:  fmt.Sprintf("Perfect! I've renamed '%s' to '%s'.", habit.Name, data.New),
		Data:     map[string]any{"old_name": habit.Name, "new_name": data.New, "renamed": true},
		Frontend: &Frontend{Type: FrontendRefreshHabits},
	}
}

func (d *Dispatcher) deleteHabit(ctx context.Context, data intent.HabitRefData, userID int64) Outcome {
	name := strings.TrimSpace(data.Name)
	if name == "" {
		return Outcome{
			Success: false,
			Action:  intent.ActionDeleteHabit,
			Message: "Please specify which habit you want to delete.",
		}
	}

	habit, outcome := d.resolveHabit(ctx, intent.ActionDeleteHabit, name, userID,
		fmt.Sprintf("I couldn't find a habit called '%s' to delete.", name))
	if outcome != nil {
		return *outcome
	}

	if err := d.Habits.Delete(ctx, userID, habit.Name); err != nil {
		return d.storeFailure(intent.ActionDeleteHabit, "Sorry, I couldn't delete that habit. Please try again.", err)
	}

	d.logger().Info("habit deleted", zap.String("name", habit.Name), zap.Int64("user", userID))
	return Outcome{
		Success:  true,
		Action:   intent.ActionDeleteHabit,
		Message:  fmt.Sprintf("I've successfully removed '%s' from your habits tracker.", habit.Name),
		Data:     map[string]any{"habit_name": habit.Name, "deleted": true},
		Frontend: &Frontend{Type: FrontendRefreshHabits},
	}
}

func (d *Dispatcher) showHabits(ctx context.Context, userID int64) Outcome {
	habits, err := d.Habits.List(ctx, userID)
	if err != nil {
		return d.storeFailure(intent.ActionShowHabits, "Sorry, I couldn't retrieve your habits right now.", err)
	}

	if len(habits) == 0 {
		return Outcome{
			Success: true,
			Action:  intent.ActionShowHabits,
			Message: "You don't have any habits yet. Try saying 'Add a habit to drink water' to get started!",
			Data:    map[string]any{"habits": []any{}, "empty": true},
		}
	}

	today := d.clock().Format(intent.ISODate)
	var names, completedToday []string
	habitList := make([]map[string]any, 0, len(habits))
	for _, h := range habits {
		done, err := d.Habits.CompletedOn(ctx, h.ID, today)
		if err != nil {
			return d.storeFailure(intent.ActionShowHabits, "Sorry, I couldn't retrieve your habits right now.", err)
		}
		names = append(names, h.Name)
		if done {
			completedToday = append(completedToday, h.Name)
		}
		habitList = append(habitList, map[string]any{
			"id": h.ID, "name": h.Name, "color": h.Color, "completed_today": done,
		})
	}

	msg := fmt.Sprintf("Your habits are: %s. ", strings.Join(names, ", "))
	if len(completedToday) > 0 {
		msg += fmt.Sprintf("Today you've completed: %s. Great job!", strings.Join(completedToday, ", "))
	} else {
		msg += "You haven't completed any habits today yet. You can do it!"
	}

	return Outcome{
		Success: true,
		Action:  intent.ActionShowHabits,
		Message: msg,
		Data: map[string]any{
			"habits":          habitList,
			"completed_today": completedToday,
			"total_count":     len(habitList),
		},
	}
}

func (d *Dispatcher) habitStatus(ctx context.Context, data intent.HabitRefData, userID int64) Outcome {
	name := strings.TrimSpace(data.Name)
	if name == "" {
		return Outcome{
			Success: false,
			Action:  intent.ActionHabitStatus,
			Message: "Please specify which habit you want to check.",
		}
	}

	habit, outcome := d.resolveHabit(ctx, intent.ActionHabitStatus, name, userID,
		fmt.Sprintf("I couldn't find a habit called '%s'.", name))
	if outcome != nil {
		return *outcome
	}

	now := d.clock()
	since := now.AddDate(0, 0, -statusWindowDays).Format(intent.ISODate)
	entries, err := d.Habits.EntriesSince(ctx, habit.ID, since)
	if err != nil {
		return d.storeFailure(intent.ActionHabitStatus, "Sorry, I couldn't check that habit's status right now.", err)
	}

	today := now.Format(intent.ISODate)
	totalDays := len(entries)
	completedDays := 0
	completedToday := false
	for _, e := range entries {
		if e.Completed {
			completedDays++
			if e.Date == today {
				completedToday = true
			}
		}
	}
	rate := 0.0
	if totalDays > 0 {
		rate = float64(completedDays) / float64(totalDays) * 100
	}
	streak := currentStreak(entries)

	todayStatus := "not completed yet"
	if completedToday {
		todayStatus = "completed"
	}
	msg := fmt.Sprintf("For '%s': You've completed it %d out of the last %d days (%.1f%%). Current streak: %d days. Today it's %s.",
		habit.Name, completedDays, totalDays, rate, streak, todayStatus)
	switch {
	case completedToday:
		msg += " Keep up the excellent work!"
	case streak > 0:
		msg += " You can still complete it today to keep your streak going!"
	default:
		msg += " Start building your streak today!"
	}

	return Outcome{
		Success: true,
		Action:  intent.ActionHabitStatus,
		Message: msg,
		Data: map[string]any{
			"habit_name":      habit.Name,
			"completed_days":  completedDays,
			"total_days":      totalDays,
			"completion_rate": rate,
			"current_streak":  streak,
			"completed_today": completedToday,
		},
	}
}

func (d *Dispatcher) navigate(action intent.Action, data intent.NavigateData) Outcome {
	route, ok := pageRoutes[data.Page]
	if !ok {
		route = "/"
	}
	pageName := titleWords(strings.ReplaceAll(data.Page, "_", " "))
	return Outcome{
		Success:  true,
		Action:   action,
		Message:  fmt.Sprintf("Taking you to the %s page!", pageName),
		Data:     map[string]any{"route": route, "page": data.Page},
		Frontend: &Frontend{Type: FrontendNavigate, Navigate: route},
	}
}

// resolveHabit fuzzily maps a spoken name to a stored habit. A nil second
// return means success; otherwise it is the not-found outcome to return.
func (d *Dispatcher) resolveHabit(ctx context.Context, action intent.Action, name string, userID int64, notFoundMsg string) (repository.Habit, *Outcome) {
	habits, err := d.Habits.List(ctx, userID)
	if err != nil {
		out := d.storeFailure(action, "Sorry, I couldn't complete that habit action. Please try again.", err)
		return repository.Habit{}, &out
	}
	names := make([]string, len(habits))
	for i, h := range habits {
		names[i] = h.Name
	}
	matched, ok := intent.Resolve(name, names)
	if !ok {
		return repository.Habit{}, &Outcome{
			Success: false,
			Action:  action,
			Message: notFoundMsg,
			Data:    map[string]any{"habit_name": name, "not_found": true},
		}
	}
	for _, h := range habits {
		if h.Name == matched {
			return h, nil
		}
	}
	// Resolve only returns members of names; unreachable.
	return repository.Habit{}, &Outcome{
		Success: false,
		Action:  action,
		Message: notFoundMsg,
		Data:    map[string]any{"habit_name": name, "not_found": true},
	}
}

func (d *Dispatcher) storeFailure(action intent.Action, msg string, err error) Outcome {
	d.logger().Error("store operation failed", zap.String("action", string(action)), zap.Error(err))
	return Outcome{
		Success: false,
		Action:  action,
		Message: msg,
		Err:     err.Error(),
	}
}

// currentStreak counts consecutive completed entries scanning newest first,
// stopping at the first entry whose completed flag is false. Dates with no
// entry are not gaps.
func currentStreak(entries []repository.Entry) int {
	streak := 0
	for _, e := range entries {
		if !e.Completed {
			break
		}
		streak++
	}
	return streak
}

func titleWords(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

const helpMessage = `Here are the commands you can use:

NAVIGATION:
- "Go to home" / "Take me home"
- "Open habits" / "Show my habits"
- "Go to analytics" / "Show stats"
- "Open chat" / "Start conversation"
- "Go to settings"

HABITS:
- "Add a habit to [habit name]"
- "Mark [habit] as complete"
- "Delete [habit] habit"
- "Show my habits"
- "How am I doing with [habit]?"

APP CONTROLS:
- "Refresh page"
- "Log out"
- "Show account"
- "Help" / "What can I do?"

INFORMATION:
- "What's today's schedule?"
- "Show calendar"
- "About this app"

Just speak naturally - I'll understand what you want to do!`

const infoMessage = `About this assistant

An intelligent habit tracking and productivity companion. It can help you:

- Track and build positive habits
- Analyze your progress with detailed analytics
- Have natural conversations about your goals
- Control everything with voice or text commands

Designed to help you become your best self through consistent habit building.`
