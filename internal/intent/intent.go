// Package intent turns free-form user text into structured assistant
// actions. Classification is a fixed-priority decision list over hand-written
// patterns; it never blocks and never fails.
package intent

import "time"

// Action identifies the classified purpose of an utterance.
type Action string

const (
	// Habit CRUD.
	ActionAddHabit      Action = "add_habit"
	ActionCompleteHabit Action = "complete_habit"
	ActionEditHabit     Action = "edit_habit"
	ActionDeleteHabit   Action = "delete_habit"
	ActionShowHabits    Action = "show_habits"
	ActionHabitStatus   Action = "habit_status"

	// Navigation.
	ActionNavigateHome      Action = "navigate_home"
	ActionNavigateHabits    Action = "navigate_habits"
	ActionNavigateAnalytics Action = "navigate_analytics"
	ActionNavigateChat      Action = "navigate_chat"
	ActionNavigateSettings  Action = "navigate_settings"

	// Account.
	ActionLogout      Action = "logout"
	ActionViewAccount Action = "view_account"

	// App control.
	ActionRefreshPage Action = "refresh_page"
	ActionClearData   Action = "clear_data"

	// Informational.
	ActionShowHelp     Action = "show_help"
	ActionAppInfo      Action = "app_info"
	ActionShowToday    Action = "show_today"
	ActionShowCalendar Action = "show_calendar"

	// Non-action outcomes.
	ActionConversation      Action = "conversation"
	ActionHabitConversation Action = "habit_conversation"
	ActionUnknown           Action = "unknown"
)

// Source tags where a command's text came from.
type Source string

const (
	SourceText  Source = "text"
	SourceVoice Source = "voice"
)

// Command is one unit of user input, ephemeral per request.
type Command struct {
	Text   string
	Source Source
	When   time.Time
}

// Data is the per-action payload of a classification result. Each action
// carries only entities extracted from the current utterance.
type Data interface {
	isData()
}

// AddHabitData names the habit to create.
type AddHabitData struct {
	Name string
}

// CompleteHabitData names the habit to complete; a nil Date means today.
type CompleteHabitData struct {
	Name string
	Date *time.Time
}

// RenameHabitData carries a rename request.
type RenameHabitData struct {
	Old string
	New string
}

// EditHabitData is an edit request that named a habit but no change yet.
type EditHabitData struct {
	Name string
}

// HabitRefData references an existing habit by spoken name.
type HabitRefData struct {
	Name string
}

// NavigateData names the page a navigation action targets.
type NavigateData struct {
	Page string
}

// TextData carries the utterance for conversational results.
type TextData struct {
	Text string
}

func (AddHabitData) isData()      {}
func (CompleteHabitData) isData() {}
func (RenameHabitData) isData()   {}
func (EditHabitData) isData()     {}
func (HabitRefData) isData()      {}
func (NavigateData) isData()      {}
func (TextData) isData()          {}

// Result is the classifier's verdict for one utterance.
type Result struct {
	Action     Action
	Data       Data
	Confidence float64
	Text       string // original utterance
}
