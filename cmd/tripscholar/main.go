// Command tripscholar is an interactive travel-and-scholarship assistant.
// It reads questions from stdin, routes each to the matching capability and
// prints the answer.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/selhaddad/tripscholar/pkg/agent"
	"github.com/selhaddad/tripscholar/pkg/config"
	"github.com/selhaddad/tripscholar/pkg/hook"
	"github.com/selhaddad/tripscholar/pkg/logging"
	"github.com/selhaddad/tripscholar/pkg/model"
	"github.com/selhaddad/tripscholar/pkg/pipeline"
	"github.com/selhaddad/tripscholar/pkg/router"
	"github.com/selhaddad/tripscholar/pkg/session"
	"github.com/selhaddad/tripscholar/pkg/telemetry"
	"github.com/selhaddad/tripscholar/pkg/tool"
)

func main() {
	configPath := flag.String("config", "settings.yaml", "path to the settings file")
	logLevel := flag.String("log-level", "", "override the configured log level")
	flag.Parse()

	if err := run(*configPath, *logLevel); err != nil {
		fmt.Fprintf(os.Stderr, "tripscholar: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, logLevel string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	applyLogSettings(cfg, logLevel)

	stopWatch, err := watchSettings(configPath, logLevel)
	if err != nil {
		logging.Warn().Err(err).Msg("settings watcher unavailable")
	} else {
		defer func() {
			if err := stopWatch(); err != nil {
				logging.Warn().Err(err).Msg("settings watcher close")
			}
		}()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	shutdownTracing, err := telemetry.Init(ctx, cfg.Telemetry.OTLPEndpoint)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logging.Warn().Err(err).Msg("tracing shutdown")
		}
	}()

	backend, err := buildBackend(cfg)
	if err != nil {
		return err
	}

	registry, closers, err := buildRegistry(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		for _, closeSession := range closers {
			if err := closeSession(); err != nil {
				logging.Warn().Err(err).Msg("mcp session close")
			}
		}
	}()

	chain := hook.NewChain()
	chain.RegisterEntry(hook.LogEntry())
	chain.RegisterGeneration(hook.LogGeneration())
	chain.RegisterTool(hook.LogTool())

	rt := router.Assemble(chain,
		pipeline.NewScholarship(
			pipeline.NewSearch(backend, registry, chain, cfg.HandlerModel("scholarship")),
			pipeline.NewSummary(backend, chain, cfg.HandlerModel("scholarship")),
		),
		agent.NewWeatherHandler(backend, registry, chain,
			agent.WithModelName(cfg.HandlerModel("weather"))),
		agent.NewHolidayHandler(backend, registry, chain,
			agent.WithModelName(cfg.HandlerModel("holiday"))),
		agent.NewCityFactsHandler(backend, registry, chain,
			agent.WithModelName(cfg.HandlerModel("cityfacts"))),
	)

	store := session.NewStore(cfg.Session.TTL)
	return repl(ctx, rt, store)
}

// applyLogSettings reconfigures the global logger from the settings,
// keeping a -log-level flag override in force across reloads.
func applyLogSettings(cfg *config.Config, override string) {
	level := cfg.Log.Level
	if override != "" {
		level = override
	}
	logging.Init(logging.Config{
		Level:  logging.ParseLevel(level),
		Pretty: cfg.Log.Pretty,
	})
}

// watchSettings hot-reloads the settings file while the REPL runs. Only log
// settings take effect between turns; backend and tool wiring stay fixed
// for the process lifetime. The returned stop function ends the watch.
func watchSettings(path, logOverride string) (func() error, error) {
	w, err := config.NewWatcher(path,
		config.OnChange(func(next *config.Config) {
			applyLogSettings(next, logOverride)
		}),
		config.OnError(func(err error) {
			logging.Warn().Err(err).Msg("settings reload failed")
		}),
	)
	if err != nil {
		return nil, err
	}
	if _, err := w.Start(); err != nil {
		return nil, err
	}
	return w.Close, nil
}

func buildBackend(cfg *config.Config) (model.Model, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		return model.NewOpenAI(model.OpenAIConfig{
			APIKey:  cfg.OpenAI.APIKey,
			BaseURL: cfg.OpenAI.BaseURL,
			Model:   cfg.OpenAI.Model,
		})
	default:
		return model.NewAnthropic(model.AnthropicConfig{
			APIKey: cfg.Anthropic.APIKey,
			Model:  cfg.Anthropic.Model,
		})
	}
}

func buildRegistry(ctx context.Context, cfg *config.Config) (*tool.Registry, []func() error, error) {
	registry := tool.NewRegistry()

	var scholarshipOpts []tool.ScholarshipOption
	if cfg.Tools.DisableLiveSearch {
		scholarshipOpts = append(scholarshipOpts, tool.WithScholarshipEndpoint(""))
	} else if cfg.Tools.ScholarshipEndpoint != "" {
		scholarshipOpts = append(scholarshipOpts, tool.WithScholarshipEndpoint(cfg.Tools.ScholarshipEndpoint))
	}

	tools := []tool.Tool{
		tool.NewWeatherTool(),
		tool.NewHolidayTool(),
		tool.NewScholarshipTool(scholarshipOpts...),
		tool.NewCityInfoTool(cfg.Tools.TavilyAPIKey),
	}
	for _, t := range tools {
		if err := registry.Register(t); err != nil {
			return nil, nil, err
		}
	}

	var closers []func() error
	for _, server := range cfg.MCP {
		closer, err := tool.RegisterMCPServer(ctx, registry, server.Endpoint, "tripscholar")
		if err != nil {
			logging.Warn().Err(err).Str("server", server.Name).Msg("mcp server unavailable")
			continue
		}
		logging.Info().Str("server", server.Name).Msg("mcp tools registered")
		closers = append(closers, closer)
	}
	return registry, closers, nil
}

func repl(ctx context.Context, rt *router.Router, store *session.Store) error {
	sessionID := session.NewSessionID()
	var history []session.Turn

	fmt.Println("tripscholar ready. Ask about scholarships, weather, holidays or cities; 'exit' to quit.")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		if text == "exit" || text == "quit" {
			break
		}
		if ctx.Err() != nil {
			break
		}

		state, release := store.Acquire(sessionID)
		resp, err := rt.Route(ctx, session.NewRequest(sessionID, text, history), state)
		release()
		if err != nil {
			logging.Error().Err(err).Msg("turn failed")
			fmt.Println("Something went wrong on my side. Please try again.")
			continue
		}

		history = append(history,
			session.Turn{Role: "user", Text: text},
			session.Turn{Role: "assistant", Text: resp.Text},
		)
		fmt.Println(resp.Text)
	}
	return scanner.Err()
}
