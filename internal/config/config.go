package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Database  DatabaseConfig
	LLM       LLMConfig
	Assistant AssistantConfig
}

// DatabaseConfig holds sqlite settings.
type DatabaseConfig struct {
	Path string
}

// LLMConfig holds conversation-model provider settings.
type LLMConfig struct {
	Provider  string
	APIKeyEnv string `mapstructure:"api_key_env"`
	APIKey    string `mapstructure:"api_key"`
	Model     string
}

// AssistantConfig holds pipeline tuning knobs.
type AssistantConfig struct {
	// TimeoutSeconds bounds a single conversation-model call.
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
	// MinTranscriptConfidence is the floor below which a voice transcript
	// is refused instead of classified.
	MinTranscriptConfidence float64 `mapstructure:"min_transcript_confidence"`
	// LogFile receives structured logs; empty disables file logging.
	LogFile string `mapstructure:"log_file"`
}

// Load reads configuration from file and env. Env var overrides use prefix HABITMIND_.
func Load() (Config, error) {
	v := viper.New()

	// default values
	v.SetDefault("database.path", filepath.Join(os.Getenv("HOME"), ".local", "share", "habitmind", "habitmind.db"))
	v.SetDefault("llm.provider", "openai")
	v.SetDefault("llm.api_key_env", "OPENAI_API_KEY")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.model", "gpt-4o-mini")
	v.SetDefault("assistant.timeout_seconds", 15)
	v.SetDefault("assistant.min_transcript_confidence", 0.5)
	v.SetDefault("assistant.log_file", "")

	v.SetConfigType("toml")

	cfgPath := os.Getenv("HABITMIND_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "habitmind"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("HABITMIND")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// read config file if present
	_ = v.ReadInConfig()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}

func configFilePath() string {
	if path := os.Getenv("HABITMIND_CONFIG"); path != "" {
		return path
	}
	return filepath.Join(os.Getenv("HOME"), ".config", "habitmind", "config.toml")
}

// EnsureFile writes cfg to disk when no config file exists yet, giving the
// user a template to edit. An existing file is never touched.
func EnsureFile(cfg Config) error {
	path := configFilePath()
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return err
	}
	return Save(cfg)
}

// Save writes the provided config to disk, creating the config directory if needed.
// The API key is stored in plain text in the config file; encourage users to prefer env vars.
func Save(cfg Config) error {
	path := configFilePath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("database.path", cfg.Database.Path)
	v.Set("llm.provider", cfg.LLM.Provider)
	v.Set("llm.api_key_env", cfg.LLM.APIKeyEnv)
	v.Set("llm.api_key", cfg.LLM.APIKey)
	v.Set("llm.model", cfg.LLM.Model)
	v.Set("assistant.timeout_seconds", cfg.Assistant.TimeoutSeconds)
	v.Set("assistant.min_transcript_confidence", cfg.Assistant.MinTranscriptConfidence)
	v.Set("assistant.log_file", cfg.Assistant.LogFile)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
