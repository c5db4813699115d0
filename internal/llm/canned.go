package llm

import (
	"context"
	"math/rand"
	"strings"
	"sync"
)

// CannedResponder is the offline conversation model: keyword-routed stock
// replies. It backs the pipeline when the real provider is unavailable and
// doubles as the standalone model when no API key is configured.
type CannedResponder struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewCannedResponder seeds the reply picker. A fixed seed gives
// deterministic replies in tests.
func NewCannedResponder(seed int64) *CannedResponder {
	return &CannedResponder{rng: rand.New(rand.NewSource(seed))}
}

var followupWords = []string{
	"also", "and", "what about", "how about", "tell me more",
	"more details", "continue", "go on",
}

type cannedBucket struct {
	triggers []string
	replies  []string
}

var cannedBuckets = []cannedBucket{
	{
		triggers: []string{"hello", "hi", "hey", "good morning", "good afternoon"},
		replies: []string{
			"Hello! I'm your personal assistant, here to help you stay organized and productive. What's on your mind?",
			"Hi there! **Ready to tackle your goals?** I'd love to help you organize your day. What would you like to work on?",
			"Good day! **Let's make today productive** together. How can I assist you?",
		},
	},
	{
		triggers: []string{"how are you", "how do you feel", "what's up"},
		replies: []string{
			"I'm doing great, thank you! **I'm here to support you** - what can I help you accomplish today?",
			"I'm excellent and **ready to help!** What's on your agenda?",
			"I'm at your service! **Let's focus on your goals** - what would you like to work on?",
		},
	},
	{
		triggers: []string{"habit", "routine", "daily", "exercise", "workout", "reading", "water"},
		replies: []string{
			"**Great thinking!** Building habits is so powerful. What specific habit would you like to start?",
			"I love helping with habits! **Small steps = big results.** What routine interests you?",
			"**Habits are game-changers!** What would you like to make consistent in your life?",
		},
	},
	{
		triggers: []string{"task", "work", "productive", "busy", "schedule", "plan", "organize"},
		replies: []string{
			"**Let's get organized!** What's the most important thing you need to tackle today?",
			"**Smart approach!** I can help you prioritize. What's on your to-do list?",
			"**I'm here to help!** What would you like to organize first?",
		},
	},
	{
		triggers: []string{"goal", "achieve", "success", "improve", "better", "progress"},
		replies: []string{
			"I'm excited to help you reach your goals! Every small step counts toward bigger achievements. What specific area would you like to focus on?",
			"Success is built one day at a time! Let's break down your goals into actionable steps. What would you like to work on first?",
			"Progress is the best motivator! What's your main focus right now?",
		},
	},
	{
		triggers: []string{"tired", "stressed", "difficult", "hard", "struggle", "help"},
		replies: []string{
			"I hear you, and what you're feeling is completely valid. Let's take this one step at a time.",
			"Even the smallest progress is still progress. What's one tiny thing we can do right now to make you feel better?",
			"Life can be challenging, but you have more strength than you realize. Let's find a small, manageable way forward together.",
		},
	},
}

var cannedDefaults = []string{
	"That's interesting! I'm here to help with whatever you're working on - building better habits, staying organized, or just having a friendly chat.",
	"I appreciate you sharing that with me! I'm here to support you in creating positive changes in your life. How can we make today a little bit better?",
	"Thanks for talking with me! What aspect of your life would you like to improve?",
}

// Generate always succeeds.
func (c *CannedResponder) Generate(_ context.Context, message, conversationContext string) (string, error) {
	lower := strings.ToLower(message)

	if conversationContext != "" {
		for _, w := range followupWords {
			if strings.Contains(lower, w) {
				return "I'd love to continue our conversation! **Let me help you** with that next step. What specific area would you like to focus on?", nil
			}
		}
	}

	for _, b := range cannedBuckets {
		for _, t := range b.triggers {
			if strings.Contains(lower, t) {
				return c.pick(b.replies), nil
			}
		}
	}
	return c.pick(cannedDefaults), nil
}

func (c *CannedResponder) pick(replies []string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return replies[c.rng.Intn(len(replies))]
}
