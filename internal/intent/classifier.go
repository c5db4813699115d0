package intent

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

// Classifier scans text against the pattern library. It holds no per-call
// state; one instance serves all requests.
type Classifier struct {
	categories []category
	cues       []*regexp.Regexp
	keywords   []string
	now        func() time.Time
}

// NewClassifier builds a classifier with the standard pattern library.
func NewClassifier() *Classifier {
	return &Classifier{
		categories: actionCategories(),
		cues:       conversationCues(),
		keywords:   habitKeywords,
		now:        time.Now,
	}
}

// WithClock overrides the classifier's clock. Relative dates ("yesterday")
// resolve against it.
func (c *Classifier) WithClock(now func() time.Time) *Classifier {
	c.now = now
	return c
}

// Classify determines the intent of an utterance. It is deterministic for
// identical input, returns confidence in [0,1], and never fails: empty text
// yields ActionUnknown at confidence 0.
func (c *Classifier) Classify(text string) Result {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Result{Action: ActionUnknown, Confidence: 0}
	}
	lower := strings.ToLower(trimmed)

	// Clear small talk wins over everything.
	for _, cue := range c.cues {
		if cue.MatchString(lower) {
			return Result{
				Action:     ActionConversation,
				Data:       TextData{Text: trimmed},
				Confidence: confConversationCue,
				Text:       trimmed,
			}
		}
	}

	if res, ok := c.matchAction(lower, trimmed); ok {
		return res
	}

	for _, kw := range c.keywords {
		if strings.Contains(lower, kw) {
			return Result{
				Action:     ActionHabitConversation,
				Data:       TextData{Text: trimmed},
				Confidence: confHabitConversation,
				Text:       trimmed,
			}
		}
	}

	return Result{
		Action:     ActionConversation,
		Data:       TextData{Text: trimmed},
		Confidence: confConversationDefault,
		Text:       trimmed,
	}
}

// matchAction runs the decision list. First pattern whose builder accepts
// wins; a match the builder rejects (e.g. the cleaned name is too short)
// falls through to later patterns.
func (c *Classifier) matchAction(lower, original string) (Result, bool) {
	for _, cat := range c.categories {
		for _, p := range cat.patterns {
			m := p.FindStringSubmatch(lower)
			if m == nil {
				continue
			}
			if res, ok := cat.build(c, m, original); ok {
				return res, true
			}
		}
	}
	return Result{}, false
}

func longEnough(name string) bool {
	return utf8.RuneCountInString(name) > 1
}

func buildAddHabit(_ *Classifier, groups []string, original string) (Result, bool) {
	name := NormalizeName(groups[1])
	if !longEnough(name) {
		return Result{}, false
	}
	return Result{
		Action:     ActionAddHabit,
		Data:       AddHabitData{Name: name},
		Confidence: confAdd,
		Text:       original,
	}, true
}

func buildCompleteHabit(_ *Classifier, groups []string, original string) (Result, bool) {
	name := NormalizeName(groups[1])
	if !longEnough(name) {
		return Result{}, false
	}
	return Result{
		Action:     ActionCompleteHabit,
		Data:       CompleteHabitData{Name: name},
		Confidence: confComplete,
		Text:       original,
	}, true
}

func buildCompleteHabitDate(c *Classifier, groups []string, original string) (Result, bool) {
	name := NormalizeName(groups[1])
	if !longEnough(name) {
		return Result{}, false
	}
	var date *time.Time
	if len(groups) > 2 {
		date = ParseRelativeDate(groups[2], c.now())
	}
	return Result{
		Action:     ActionCompleteHabit,
		Data:       CompleteHabitData{Name: name, Date: date},
		Confidence: confCompleteDate,
		Text:       original,
	}, true
}

func buildEditHabit(_ *Classifier, groups []string, original string) (Result, bool) {
	if len(groups) >= 3 {
		oldName := NormalizeName(groups[1])
		newName := NormalizeName(groups[2])
		if oldName != "" && newName != "" {
			return Result{
				Action:     ActionEditHabit,
				Data:       RenameHabitData{Old: oldName, New: newName},
				Confidence: confRename,
				Text:       original,
			}, true
		}
		return Result{}, false
	}
	name := NormalizeName(groups[1])
	if name == "" {
		return Result{}, false
	}
	return Result{
		Action:     ActionEditHabit,
		Data:       EditHabitData{Name: name},
		Confidence: confEditPartial,
		Text:       original,
	}, true
}

func buildDeleteHabit(_ *Classifier, groups []string, original string) (Result, bool) {
	name := NormalizeName(groups[1])
	if !longEnough(name) {
		return Result{}, false
	}
	return Result{
		Action:     ActionDeleteHabit,
		Data:       HabitRefData{Name: name},
		Confidence: confDelete,
		Text:       original,
	}, true
}

func buildHabitStatus(_ *Classifier, groups []string, original string) (Result, bool) {
	name := NormalizeName(groups[1])
	if !longEnough(name) {
		return Result{}, false
	}
	return Result{
		Action:     ActionHabitStatus,
		Data:       HabitRefData{Name: name},
		Confidence: confStatus,
		Text:       original,
	}, true
}

func buildNavigate(action Action, page string) builder {
	return func(_ *Classifier, _ []string, original string) (Result, bool) {
		return Result{
			Action:     action,
			Data:       NavigateData{Page: page},
			Confidence: confNavigate,
			Text:       original,
		}, true
	}
}

func buildSimple(action Action, confidence float64) builder {
	return func(_ *Classifier, _ []string, original string) (Result, bool) {
		return Result{
			Action:     action,
			Confidence: confidence,
			Text:       original,
		}, true
	}
}
