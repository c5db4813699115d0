package intent

import "regexp"

// Per-category fixed confidences. Heuristic certainty, not calibrated
// probability.
const (
	confAdd          = 0.85
	confComplete     = 0.85
	confCompleteDate = 0.80
	confRename       = 0.80
	confEditPartial  = 0.70
	confDelete       = 0.85
	confShow         = 0.90
	confStatus       = 0.80
	confNavigate     = 0.90
	confAccount      = 0.90
	confAppControl   = 0.85
	confInfo         = 0.90

	confConversationCue     = 0.90
	confConversationDefault = 0.70
	confHabitConversation   = 0.60
)

// category binds one action to its ordered pattern list and extraction
// builder. Categories are scanned in listed order and patterns within a
// category in listed order; the first pattern whose builder accepts wins.
// The category order is intentional policy: an earlier category's match wins
// even when a later pattern would consume more of the text.
type category struct {
	action   Action
	patterns []*regexp.Regexp
	build    builder
}

type builder func(c *Classifier, groups []string, original string) (Result, bool)

func compile(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, e := range exprs {
		out[i] = regexp.MustCompile(e)
	}
	return out
}

// actionCategories is the full decision list. Habit CRUD first, then
// navigation, account, app control, informational.
func actionCategories() []category {
	return []category{
		{
			action: ActionAddHabit,
			patterns: compile(
				`(?:add|create|start|begin|make).*?(?:habit|routine).*?(?:called|named|for|to)\s+([a-z0-9\s]+?)(?:\s*$|daily|every|regularly|\.)`,
				`(?:add|create|start|begin|make).*?(?:habit|routine).*?to\s+([a-z0-9\s]+?)(?:\s*$|daily|every|regularly|\.)`,
				`(?:add|create|start).*?(?:a|the)?\s*habit.*?(?:of|for|to)\s+([a-z0-9\s]+?)(?:\s*$|daily|every|regularly|\.)`,
				`(?:track|build|start).*?habit.*?(?:called|named|for|to)\s+([a-z0-9\s]+?)(?:\s*$|daily|every|regularly|\.)`,
				`(?:i want to|need to|should).*?(?:start|begin|track).*?([a-z0-9\s]+?)(?:\s+(?:daily|every day|regularly|as a habit))`,
				`(?:help me|remind me).*?(?:to\s+)?(?:track|build|start).*?([a-z0-9\s]+?)(?:\s+(?:daily|every day|regularly|habit))`,
				`(?:new|a)\s+habit.*?(?:called|named|for|to)\s+([a-z0-9\s]+?)(?:\s*$|daily|every|regularly|\.)`,
				`track\s+([a-z0-9\s]+?)(?:\s+(?:daily|every day|regularly|as a habit))`,
				`let.*?(?:start|begin).*?([a-z0-9\s]+?)(?:\s+(?:habit|routine|daily))`,
			),
			build: buildAddHabit,
		},
		{
			action: ActionCompleteHabit,
			patterns: compile(
				`(?:mark|complete|did|finished|done|check off|completed).*?([^.,!?]+)(?:today|for today|now|as done)?`,
				`(?:i|just).*?(?:did|finished|completed).*?([^.,!?]+)(?:today|now)?`,
				`(?:completed|done with|finished).*?([^.,!?]+)`,
				`([^.,!?]+).*?(?:is|was).*?(?:done|completed|finished)(?:today|now)?`,
				`(?:mark).*?([^.,!?]+).*?(?:as).*?(?:complete|done|finished)`,
			),
			build: buildCompleteHabit,
		},
		{
			action: ActionCompleteHabit, // dated variant
			patterns: compile(
				`(?:mark|complete).*?([^.,!?]+).*?(?:as done|as complete).*?(?:on|for)\s*([^.,!?]+)`,
				`(?:did|completed|finished).*?([^.,!?]+).*?(?:on|yesterday|last)\s*([^.,!?]*)`,
				`(?:mark).*?([^.,!?]+).*?(?:done|complete).*?(?:on)\s*([^.,!?]+)`,
			),
			build: buildCompleteHabitDate,
		},
		{
			action: ActionEditHabit,
			patterns: compile(
				`(?:rename|change).*?(?:habit|routine)?.*?([^.,!?]+).*?(?:to).*?([^.,!?]+)`,
				`(?:edit|modify|update).*?(?:habit|routine)?.*?([^.,!?]+)`,
				`(?:change).*?([^.,!?]+).*?(?:habit|routine).*?(?:to).*?([^.,!?]+)`,
			),
			build: buildEditHabit,
		},
		{
			action: ActionDeleteHabit,
			patterns: compile(
				`(?:remove|delete|stop|quit|cancel).*?(?:habit|routine).*?(?:called|named)?["\s]*([^".,!?]+)["\s]*`,
				`(?:remove|delete|stop|quit|cancel).*?(?:the)?["\s]*([^".,!?]+)["\s]*(?:habit|routine)?`,
				`(?:don't want to|no longer want to|stop).*?(?:track|do).*?([^.,!?]+)(?:anymore|any more)?`,
				`(?:get rid of|eliminate).*?(?:habit|routine)?.*?(?:called|named)?["\s]*([^".,!?]+)["\s]*`,
			),
			build: buildDeleteHabit,
		},
		{
			action: ActionShowHabits,
			patterns: compile(
				`(?:show|list|display).*?(?:my|all)?.*?(?:habits|routines)`,
				`(?:what are|what's).*?(?:my)?.*?(?:habits|routines)`,
				`(?:view|see).*?(?:my)?.*?(?:habits|routines)`,
				`(?:how many|what).*?(?:habits|routines).*?(?:do i have|i have)`,
			),
			build: buildSimple(ActionShowHabits, confShow),
		},
		{
			action: ActionHabitStatus,
			patterns: compile(
				`(?:how am i doing|progress|status).*?(?:with|on).*?([^.,!?]+)`,
				`(?:show|tell me).*?(?:progress|status).*?(?:for|on|with).*?([^.,!?]+)`,
				`(?:what's my|whats my).*?(?:progress|streak).*?(?:for|on|with).*?([^.,!?]+)`,
				`(?:check).*?([^.,!?]+).*?(?:progress|status|streak)`,
			),
			build: buildHabitStatus,
		},

		{
			action: ActionNavigateHome,
			patterns: compile(
				`(?:go to|open|show|navigate to).*?(?:home|dashboard|main)(?:\s+page)?`,
				`(?:take me to|bring me to).*?(?:home|main|dashboard)`,
				`(?:home|main page|dashboard)`,
				`(?:go back to|return to).*?(?:home|main)`,
			),
			build: buildNavigate(ActionNavigateHome, "home"),
		},
		{
			action: ActionNavigateHabits,
			patterns: compile(
				`(?:go to|open|show|navigate to).*?(?:habits|habit tracker|tracking)(?:\s+page)?`,
				`(?:take me to|bring me to).*?(?:habits|habit tracker)`,
				`(?:habits page|habit tracker|tracking page)`,
				`(?:show|open).*?(?:my)?.*?habits`,
			),
			build: buildNavigate(ActionNavigateHabits, "habits"),
		},
		{
			action: ActionNavigateAnalytics,
			patterns: compile(
				`(?:go to|open|show|navigate to).*?(?:analytics|stats|statistics|reports?)(?:\s+page)?`,
				`(?:take me to|bring me to).*?(?:analytics|stats|reports)`,
				`(?:analytics page|statistics|reports page)`,
				`(?:show|open).*?(?:my)?.*?(?:analytics|stats|progress|reports)`,
			),
			build: buildNavigate(ActionNavigateAnalytics, "analytics"),
		},
		{
			action: ActionNavigateChat,
			patterns: compile(
				`(?:go to|open|show|navigate to).*?(?:chat|conversation|talk)(?:\s+page)?`,
				`(?:take me to|bring me to).*?(?:chat|conversation)`,
				`(?:chat page|conversation|talk)`,
				`(?:open|start).*?(?:chat|conversation)`,
			),
			build: buildNavigate(ActionNavigateChat, "chat"),
		},
		{
			action: ActionNavigateSettings,
			patterns: compile(
				`(?:go to|open|show|navigate to).*?(?:settings|preferences|config)(?:\s+page)?`,
				`(?:take me to|bring me to).*?(?:settings|preferences)`,
				`(?:settings page|preferences|configuration)`,
				`(?:open|show).*?(?:settings|preferences|config)`,
			),
			build: buildNavigate(ActionNavigateSettings, "settings"),
		},

		{
			action: ActionLogout,
			patterns: compile(
				`(?:log out|logout|sign out|signout)`,
				`(?:exit|quit).*?(?:account|app|application)`,
				`(?:disconnect|end session)`,
			),
			build: buildSimple(ActionLogout, confAccount),
		},
		{
			action: ActionViewAccount,
			patterns: compile(
				`(?:show|view|open).*?(?:account|profile)(?:\s+info)?`,
				`(?:go to|navigate to).*?(?:account|profile)`,
				`(?:my account|my profile|account info|profile info)`,
			),
			build: buildSimple(ActionViewAccount, confAccount),
		},

		{
			action: ActionRefreshPage,
			patterns: compile(
				`(?:refresh|reload).*?(?:page|data|screen)`,
				`(?:update|sync).*?(?:data|info|information)`,
				`(?:refresh everything|reload all)`,
			),
			build: buildSimple(ActionRefreshPage, confAppControl),
		},
		{
			action: ActionClearData,
			patterns: compile(
				`(?:clear|reset|delete).*?(?:all data|everything)`,
				`(?:clean|wipe).*?(?:data|storage)`,
				`(?:start over|reset everything)`,
			),
			build: buildSimple(ActionClearData, confAppControl),
		},

		{
			action: ActionShowHelp,
			patterns: compile(
				`(?:help|assistance|guide|tutorial)`,
				`(?:how do i|how to|what can i).*?(?:do|use|say)`,
				`(?:show|tell me).*?(?:commands|options|features)`,
				`(?:what commands|voice commands|available commands)`,
			),
			build: buildSimple(ActionShowHelp, confInfo),
		},
		{
			action: ActionAppInfo,
			patterns: compile(
				`(?:about|version|info).*?(?:app|application|assistant)`,
				`(?:what is|tell me about).*?(?:this app|this assistant)`,
				`(?:app information|application info)`,
			),
			build: buildSimple(ActionAppInfo, confInfo),
		},
		{
			action: ActionShowToday,
			patterns: compile(
				`(?:show|what's).*?(?:today|today's).*?(?:habits|schedule|tasks)`,
				`(?:today's|todays).*?(?:agenda|plan|habits)`,
				`(?:what do i need to do|what's on).*?(?:today|my schedule)`,
			),
			build: buildSimple(ActionShowToday, confInfo),
		},
		{
			action: ActionShowCalendar,
			patterns: compile(
				`(?:show|open|view).*?(?:calendar|schedule|dates)`,
				`(?:go to|navigate to).*?calendar`,
				`(?:calendar view|monthly view|date picker)`,
			),
			build: buildSimple(ActionShowCalendar, confInfo),
		},
	}
}

// conversationCues short-circuit classification for clear small talk, ahead
// of every action category. Prevents incidental action words in greetings or
// questions from triggering mutations.
func conversationCues() []*regexp.Regexp {
	return compile(
		`^(?:hi|hello|hey|good morning|good evening)`,
		`^(?:how are you|what's up|how's it going)`,
		`^(?:thanks?|thank you|appreciate)`,
		`^(?:yes|no|ok|okay|sure|alright)`,
		`\?.*$`, // questions
		`^(?:tell me|explain|what is|what are)`,
		`^(?:why|when|where|who|how)`,
		`weather|time|date|news|joke|story`,
	)
}

// habitKeywords mark text as habit-related even without an actionable match.
var habitKeywords = []string{
	"habit", "routine", "daily", "track", "streak", "complete", "mark",
	"meditation", "exercise", "workout", "reading", "water", "study",
	"journal", "walk", "run", "yoga", "sleep", "wake up",
}
