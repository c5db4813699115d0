package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/pmehra/habitmind/internal/config"
	"github.com/pmehra/habitmind/internal/database"
	"github.com/pmehra/habitmind/internal/database/repository"
	"github.com/pmehra/habitmind/internal/intent"
	"github.com/pmehra/habitmind/internal/llm"
	"github.com/pmehra/habitmind/internal/service"
	"github.com/pmehra/habitmind/internal/tui"
)

// defaultUserID is the single local profile. Multi-user auth belongs to the
// surrounding server, not this binary.
const defaultUserID int64 = 1

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	if err := config.EnsureFile(cfg); err != nil {
		log.Printf("warn: write default config: %v", err)
	}

	logger := buildLogger(cfg.Assistant.LogFile)
	defer func() { _ = logger.Sync() }()

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		log.Fatalf("mkdir db dir: %v", err)
	}

	if err := database.RunMigrations(cfg.Database.Path); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	habitRepo := repository.NewHabitRepo(db)
	convRepo := repository.NewConversationRepo(db)

	dispatcher := &service.Dispatcher{Habits: habitRepo, Log: logger}
	pipeline := &service.Pipeline{
		Classifier:              intent.NewClassifier(),
		Dispatcher:              dispatcher,
		Habits:                  habitRepo,
		History:                 convRepo,
		Model:                   conversationModel(cfg),
		Log:                     logger,
		ModelTimeout:            time.Duration(cfg.Assistant.TimeoutSeconds) * time.Second,
		MinTranscriptConfidence: cfg.Assistant.MinTranscriptConfidence,
	}

	p := tea.NewProgram(tui.New(ctx, pipeline, defaultUserID), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("error: %v\n", err)
	}
}

// conversationModel picks the LLM provider; nil means canned replies only.
func conversationModel(cfg config.Config) llm.ConversationModel {
	if strings.ToLower(strings.TrimSpace(cfg.LLM.Provider)) != "openai" {
		return nil
	}
	apiKey := resolveAPIKey(cfg)
	if apiKey == "" {
		return nil
	}
	return llm.NewOpenAIModel(apiKey, cfg.LLM.Model)
}

func resolveAPIKey(cfg config.Config) string {
	if env := strings.TrimSpace(cfg.LLM.APIKeyEnv); env != "" {
		if v := os.Getenv(env); v != "" {
			return v
		}
	}
	return strings.TrimSpace(cfg.LLM.APIKey)
}

// buildLogger writes structured logs to a file so the TUI owns stdout.
// Without a configured path, logging is disabled.
func buildLogger(path string) *zap.Logger {
	if path == "" {
		return zap.NewNop()
	}
	zcfg := zap.NewProductionConfig()
	zcfg.OutputPaths = []string{path}
	zcfg.ErrorOutputPaths = []string{path}
	logger, err := zcfg.Build()
	if err != nil {
		log.Printf("warn: file logger unavailable: %v", err)
		return zap.NewNop()
	}
	return logger
}
