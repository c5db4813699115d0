package service

import "github.com/pmehra/habitmind/internal/intent"

// FrontendType is the directive vocabulary consumed by the presentation
// layer, distinct from the human-readable reply.
type FrontendType string

const (
	FrontendNavigate      FrontendType = "navigate"
	FrontendRefreshHabits FrontendType = "refresh_habits"
	FrontendRefresh       FrontendType = "refresh"
	FrontendLogout        FrontendType = "logout"
)

// Frontend is a structured hint telling the presentation layer to navigate
// or refresh. Navigate is empty for non-navigation directives.
type Frontend struct {
	Type     FrontendType `json:"type"`
	Navigate string       `json:"navigate,omitempty"`
}

// Outcome is the result of executing one classified action. Failures carry a
// polite, actionable Message; Err holds the underlying error text for
// diagnostics only and is never shown as the primary message.
type Outcome struct {
	Success  bool           `json:"success"`
	Action   intent.Action  `json:"action"`
	Message  string         `json:"message"`
	Data     map[string]any `json:"data,omitempty"`
	Frontend *Frontend      `json:"frontend_action,omitempty"`
	Err      string         `json:"error,omitempty"`
}

// Page routes for navigation actions.
var pageRoutes = map[string]string{
	"home":      "/",
	"habits":    "/habits",
	"analytics": "/analytics",
	"chat":      "/chat",
	"settings":  "/settings",
}
