// Package llm supplies the conversation model behind the assistant's
// free-chat fallback. Providers may fail or time out; the pipeline degrades
// to the canned responder, never surfacing a hard error to the user.
package llm

import "context"

// ConversationModel generates a reply to a user message. conversationContext
// is an optional pre-formatted block of recent history; "" means none.
type ConversationModel interface {
	Generate(ctx context.Context, message, conversationContext string) (string, error)
}

const personaPrompt = "You are an intelligent and empathetic personal habit assistant. " +
	"Keep your responses concise (2-3 sentences max), warm, and actionable. " +
	"Use markdown formatting for emphasis (**bold**, *italic*) and bullet points when listing items. " +
	"Be encouraging and focus on one main suggestion per response rather than overwhelming with information."
