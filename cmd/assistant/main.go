// In file: cmd/assistant/main.go
package main

import (
	"context"
	"fmt"
	"log"

	"github.com/dileep-u-k/course-assistant/internal/agent"
	"github.com/dileep-u-k/course-assistant/internal/calendar"
	"github.com/dileep-u-k/course-assistant/internal/llm"
	"github.com/dileep-u-k/course-assistant/internal/tools"
)

// main is the entry point for the application. The cobra commands in
// root.go share the composition root below.
func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	Execute()
}

// App is everything one process needs, built once and passed by reference.
type App struct {
	Config    *AppConfig
	Store     *calendar.Store
	Assistant *agent.Assistant
	rag       *llm.RAGService
}

// Close releases the cache connection.
func (a *App) Close() {
	if a.rag != nil {
		if err := a.rag.Close(); err != nil {
			log.Printf("⚠️ Closing Redis: %v", err)
		}
	}
}

// buildApp is the composition root: it loads configuration, initializes
// all services and injects dependencies.
func buildApp(ctx context.Context) (*App, error) {
	buildInfo := GetBuildInfo()
	log.Printf("🚀 Starting Course Assistant | Version: %s | Commit: %s", buildInfo.Version, buildInfo.GitCommit)

	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}
	log.Println("✅ Configuration loaded.")

	store, err := calendar.NewStore(cfg.CalendarPath, nil)
	if err != nil {
		return nil, fmt.Errorf("could not open calendar: %w", err)
	}

	client, err := initializeLLMClient(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{Config: cfg, Store: store}
	caps := tools.Capabilities{
		Weather:        tools.NewWeatherTool(),
		Calendar:       tools.NewCalendarTool(store, cfg.Settings.UpcomingDays),
		Holidays:       tools.NewHolidayTool(cfg.Settings.CountryCode, nil),
		DefaultCountry: cfg.Settings.CountryCode,
	}
	if cfg.RAG != nil {
		rag, err := llm.NewRAGService(ctx, cfg.RAG)
		if err != nil {
			return nil, fmt.Errorf("could not create RAG service: %w", err)
		}
		app.rag = rag
		caps.Search = tools.NewSearchTool(rag, cfg.Settings.SearchTopK)
	}

	registry, err := tools.NewRegistry(caps)
	if err != nil {
		return nil, fmt.Errorf("could not build tool registry: %w", err)
	}
	log.Printf("✅ Tool registry initialized with %d tools.", registry.ToolCount())

	app.Assistant, err = agent.NewAssistant(client, registry, cfg.AgentSettings())
	if err != nil {
		return nil, err
	}
	log.Println("✅ All services initialized.")
	return app, nil
}

// initializeLLMClient creates the completion client for the configured provider.
func initializeLLMClient(ctx context.Context, cfg *AppConfig) (llm.LLMClient, error) {
	var (
		client llm.LLMClient
		err    error
	)
	switch cfg.Provider {
	case providerGemini:
		client, err = llm.NewGeminiClient(ctx, cfg.GeminiKey, cfg.Model)
	default:
		client, err = llm.NewOpenAIClient(cfg.OpenAIKey, cfg.BaseURL)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create %s client for %s: %w", cfg.Provider, cfg.Model, err)
	}
	log.Printf("✅ LLM client initialized (%s, model %s).", cfg.Provider, cfg.Model)
	return client, nil
}
