// In file: cmd/assistant/config.go
package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/dileep-u-k/course-assistant/internal/agent"
	"github.com/dileep-u-k/course-assistant/internal/calendar"
	"github.com/dileep-u-k/course-assistant/internal/llm"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	providerOpenAI = "openai"
	providerGemini = "gemini"

	defaultModel      = "llama3.1:8b"
	defaultPort       = "8080"
	defaultConfigFile = "config.yaml"
)

// FileSettings are the optional behaviour settings read from config.yaml.
type FileSettings struct {
	DefaultLocation string  `yaml:"default_location"`
	CountryCode     string  `yaml:"country_code"`
	MaxIterations   int     `yaml:"max_iterations"`
	SearchTopK      int     `yaml:"search_top_k"`
	Temperature     float32 `yaml:"temperature"`
	UpcomingDays    int     `yaml:"upcoming_days"`
}

// DefaultFileSettings are used for anything config.yaml leaves out.
func DefaultFileSettings() FileSettings {
	return FileSettings{
		DefaultLocation: "Haifa, Israel",
		CountryCode:     "IL",
		MaxIterations:   agent.DefaultMaxIterations,
		SearchTopK:      5,
		Temperature:     0,
		UpcomingDays:    7,
	}
}

// AppConfig holds all configuration for the assistant, loaded from the environment and config files.
type AppConfig struct {
	Provider     string
	Model        string
	BaseURL      string
	OpenAIKey    string
	GeminiKey    string
	CalendarPath string
	Port         string

	// RAG is nil when the vector index is not configured; the search tool is
	// then left out.
	RAG *llm.Config

	Settings FileSettings
}

// LoadConfig loads all configuration from a .env file, environment variables, and config.yaml.
func LoadConfig() (*AppConfig, error) {
	loadDotEnv()

	cfg := &AppConfig{
		Provider:     strings.ToLower(getEnv("LLM_PROVIDER", providerOpenAI)),
		Model:        getEnv("LLM_MODEL", defaultModel),
		BaseURL:      getEnv("LLM_BASE_URL", llm.DefaultOllamaURL),
		OpenAIKey:    os.Getenv("OPENAI_API_KEY"),
		GeminiKey:    os.Getenv("GEMINI_API_KEY"),
		CalendarPath: getEnv("CALENDAR_PATH", calendar.DefaultPath),
		Port:         getEnv("PORT", defaultPort),
	}
	switch cfg.Provider {
	case providerOpenAI:
	case providerGemini:
		if cfg.GeminiKey == "" {
			return nil, errors.New("GEMINI_API_KEY must be set when LLM_PROVIDER=gemini")
		}
	default:
		return nil, fmt.Errorf("unknown LLM_PROVIDER %q (want openai or gemini)", cfg.Provider)
	}

	settings, err := LoadFileSettings(getEnv("CONFIG_FILE", defaultConfigFile))
	if err != nil {
		return nil, err
	}
	cfg.Settings = settings

	if ragCfg, err := llm.LoadConfig(); err != nil {
		log.Printf("⚠️ Course-material search disabled: %v", err)
	} else {
		cfg.RAG = ragCfg
	}
	return cfg, nil
}

// LoadFileSettings reads path over the defaults. A missing file is not an error.
func LoadFileSettings(path string) (FileSettings, error) {
	settings := DefaultFileSettings()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return settings, nil
	}
	if err != nil {
		return settings, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var fromFile FileSettings
	if err := yaml.Unmarshal(data, &fromFile); err != nil {
		return settings, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if fromFile.DefaultLocation != "" {
		settings.DefaultLocation = fromFile.DefaultLocation
	}
	if fromFile.CountryCode != "" {
		settings.CountryCode = strings.ToUpper(fromFile.CountryCode)
	}
	if fromFile.MaxIterations > 0 {
		settings.MaxIterations = fromFile.MaxIterations
	}
	if fromFile.SearchTopK > 0 {
		settings.SearchTopK = fromFile.SearchTopK
	}
	if fromFile.Temperature > 0 {
		settings.Temperature = fromFile.Temperature
	}
	if fromFile.UpcomingDays > 0 {
		settings.UpcomingDays = fromFile.UpcomingDays
	}
	return settings, nil
}

// AgentSettings are the run settings handed to the orchestrator.
func (c *AppConfig) AgentSettings() agent.Settings {
	return agent.Settings{
		Model:           c.Model,
		Temperature:     c.Settings.Temperature,
		MaxIterations:   c.Settings.MaxIterations,
		DefaultLocation: c.Settings.DefaultLocation,
	}
}

// loadDotEnv reads .env for local development. In Docker (GIN_MODE=release)
// configuration comes from the environment only.
func loadDotEnv() {
	if os.Getenv("GIN_MODE") == "release" {
		return
	}
	if err := godotenv.Load(); err != nil {
		log.Println("WARNING: No .env file found for local development.")
	}
}

// getEnv is a helper to read an env var or return a default.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}
