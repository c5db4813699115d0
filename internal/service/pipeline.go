package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/pmehra/habitmind/internal/database/repository"
	"github.com/pmehra/habitmind/internal/intent"
	"github.com/pmehra/habitmind/internal/llm"
)

// Pipeline-level processing tags beyond the classifier's action set.
const (
	ProcessingUnclearSpeech intent.Action = "unclear_speech"
	ProcessingError         intent.Action = "error"
)

const (
	// Mutating habit actions require higher confidence than navigation and
	// informational commands.
	mutatingThreshold = 0.7
	defaultThreshold  = 0.6

	contextTurns         = 10
	minTranscriptRunes   = 3
	defaultModelTimeout  = 15 * time.Second
	genericApology       = "Sorry, I encountered an error processing your message. Please try again."
	unclearShortReply    = "I heard something but it was too short to understand. Please try speaking more clearly."
	unclearQualityReply  = "I'm not sure I caught that clearly. Could you say that again?"
	cannedFallbackReply  = "I'm here for you. How can I help?"
)

// Response is the pipeline's single per-command result: exactly one reply,
// produced regardless of internal failure.
type Response struct {
	Reply       string
	ActionTaken bool
	Outcome     *Outcome
	Frontend    *Frontend
	Processing  intent.Action
}

// Pipeline is the single entry point for both typed and voice-derived text.
// It classifies, dispatches or converses, and persists the turn.
type Pipeline struct {
	Classifier *intent.Classifier
	Dispatcher *Dispatcher
	Habits     *repository.HabitRepo
	History    *repository.ConversationRepo
	Model      llm.ConversationModel // may be nil: canned replies only
	Fallback   llm.ConversationModel // substituted when Model fails; nil means built-in canned
	Log        *zap.Logger

	// ModelTimeout bounds one conversation-model call. Zero means default.
	ModelTimeout time.Duration
	// MinTranscriptConfidence gates voice transcripts. Zero disables the gate.
	MinTranscriptConfidence float64

	Now func() time.Time
}

func (p *Pipeline) logger() *zap.Logger {
	if p.Log == nil {
		return zap.NewNop()
	}
	return p.Log
}

func (p *Pipeline) clock() time.Time {
	if p.Now == nil {
		return time.Now()
	}
	return p.Now()
}

// Process handles one command end to end. Internal failures degrade to a
// generic apologetic reply; the turn is still persisted best-effort.
func (p *Pipeline) Process(ctx context.Context, cmd intent.Command, userID int64) (resp Response) {
	defer func() {
		if r := recover(); r != nil {
			p.logger().Error("pipeline panic", zap.Any("panic", r), zap.String("text", cmd.Text))
			resp = Response{Reply: genericApology, Processing: ProcessingError}
			p.persist(ctx, userID, cmd.Text, resp.Reply)
		}
	}()

	res := p.Classifier.Classify(cmd.Text)
	p.logger().Info("classified",
		zap.String("action", string(res.Action)),
		zap.Float64("confidence", res.Confidence),
		zap.String("source", string(cmd.Source)))

	if dispatchEligible(res.Action) && res.Confidence >= threshold(res.Action) {
		out := p.Dispatcher.Execute(ctx, res, userID)
		resp = Response{
			Reply:       out.Message,
			ActionTaken: true,
			Outcome:     &out,
			Frontend:    out.Frontend,
			Processing:  res.Action,
		}
		p.persist(ctx, userID, cmd.Text, resp.Reply)
		return resp
	}

	// Conversation path.
	convContext := ""
	if p.History != nil {
		if c, err := p.History.RecentContext(ctx, userID, contextTurns); err == nil {
			convContext = c
		} else {
			p.logger().Warn("load conversation context", zap.Error(err))
		}
	}

	reply := p.converse(ctx, cmd.Text, convContext)
	resp = Response{Reply: reply, Processing: res.Action}

	// Opportunistic creation of habits mentioned conversationally. Never
	// blocks the conversational reply.
	if created := p.implicitCreate(ctx, cmd.Text, userID); len(created) > 0 {
		resp.Reply = fmt.Sprintf("Perfect! I've added '%s' to your habits tracker. %s",
			strings.Join(created, ", "), reply)
		resp.ActionTaken = true
		resp.Frontend = &Frontend{Type: FrontendRefreshHabits}
		resp.Outcome = &Outcome{
			Success:  true,
			Action:   intent.ActionAddHabit,
			Message:  resp.Reply,
			Data:     map[string]any{"implicit_creation": created},
			Frontend: resp.Frontend,
		}
	}

	p.persist(ctx, userID, cmd.Text, resp.Reply)
	return resp
}

// ProcessText wraps Process for typed input.
func (p *Pipeline) ProcessText(ctx context.Context, text string, userID int64) Response {
	return p.Process(ctx, intent.Command{Text: text, Source: intent.SourceText, When: p.clock()}, userID)
}

// ProcessTranscript gates voice transcripts before classification. Short or
// low-confidence transcripts get a dedicated unclear-speech reply instead of
// a guessed action.
func (p *Pipeline) ProcessTranscript(ctx context.Context, transcript string, confidence float64, userID int64) Response {
	t := strings.TrimSpace(transcript)
	if utf8.RuneCountInString(t) < minTranscriptRunes {
		return Response{Reply: unclearShortReply, Processing: ProcessingUnclearSpeech}
	}
	if p.MinTranscriptConfidence > 0 && confidence < p.MinTranscriptConfidence {
		return Response{Reply: unclearQualityReply, Processing: ProcessingUnclearSpeech}
	}
	return p.Process(ctx, intent.Command{Text: t, Source: intent.SourceVoice, When: p.clock()}, userID)
}

// converse asks the conversation model for a reply, time-boxed; on failure
// or timeout it substitutes the local canned responder.
func (p *Pipeline) converse(ctx context.Context, message, convContext string) string {
	timeout := p.ModelTimeout
	if timeout <= 0 {
		timeout = defaultModelTimeout
	}

	if p.Model != nil {
		mctx, cancel := context.WithTimeout(ctx, timeout)
		reply, err := p.Model.Generate(mctx, message, convContext)
		cancel()
		if err == nil && reply != "" {
			return reply
		}
		p.logger().Warn("conversation model unavailable, using fallback", zap.Error(err))
	}

	fallback := p.Fallback
	if fallback == nil {
		fallback = llm.NewCannedResponder(p.clock().UnixNano())
	}
	reply, err := fallback.Generate(ctx, message, convContext)
	if err != nil || reply == "" {
		return cannedFallbackReply
	}
	return reply
}

func (p *Pipeline) persist(ctx context.Context, userID int64, message, reply string) {
	if p.History == nil {
		return
	}
	if err := p.History.Append(ctx, userID, message, reply, p.clock()); err != nil {
		p.logger().Error("persist conversation turn", zap.Error(err))
	}
}

func dispatchEligible(a intent.Action) bool {
	switch a {
	case intent.ActionConversation, intent.ActionHabitConversation, intent.ActionUnknown:
		return false
	}
	return true
}

func threshold(a intent.Action) float64 {
	switch a {
	case intent.ActionAddHabit, intent.ActionCompleteHabit,
		intent.ActionEditHabit, intent.ActionDeleteHabit:
		return mutatingThreshold
	}
	return defaultThreshold
}

// implicitHabitRes is a second, independent, looser pattern set scanned only
// on the conversation path, so habits mentioned in passing still get created
// without hijacking the reply.
var implicitHabitRes = []*regexp.Regexp{
	regexp.MustCompile(`i want to (?:start|begin|create|add|track) (?:a )?habit (?:called |named |of )?['"]?([^'".,!?]+)['"]?`),
	regexp.MustCompile(`(?:create|add|start|track) (?:a |the )?habit[:\s]+['"]?([^'".,!?]+)['"]?`),
	regexp.MustCompile(`i (?:want to|need to|should) (?:start|begin) ([^.,!?]+daily|[^.,!?]+every day|drinking water|exercising|reading|meditation|yoga)`),
	regexp.MustCompile(`help me (?:track|start|create) (?:a )?habit (?:of |for )?['"]?([^'".,!?]+)['"]?`),
	regexp.MustCompile(`i'm (?:starting|beginning) (?:a |the )?habit (?:of |for )?['"]?([^'".,!?]+)['"]?`),
}

var trailingDurationRe = regexp.MustCompile(`\s*(daily|every day|everyday)$`)

func (p *Pipeline) implicitCreate(ctx context.Context, message string, userID int64) []string {
	if p.Habits == nil {
		return nil
	}
	lower := strings.ToLower(message)
	var created []string
	seen := map[string]struct{}{}
	for _, re := range implicitHabitRes {
		for _, m := range re.FindAllStringSubmatch(lower, -1) {
			name := trailingDurationRe.ReplaceAllString(strings.TrimSpace(m[1]), "")
			name = titleWords(name)
			if utf8.RuneCountInString(name) <= 2 {
				continue
			}
			key := strings.ToLower(name)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			if _, err := p.Habits.Create(ctx, userID, name, ""); err != nil {
				// Duplicate or store failure: stay quiet, the reply stands.
				p.logger().Debug("implicit creation skipped", zap.String("name", name), zap.Error(err))
				continue
			}
			p.logger().Info("habit created implicitly", zap.String("name", name))
			created = append(created, name)
		}
	}
	return created
}
