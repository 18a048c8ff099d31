// Package main provides cua-browser, which lets a hosted computer-use model
// drive a real Chromium window: the model sees screenshots and answers with
// clicks, scrolls, key presses and typing until it stops asking for actions.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/entrhq/cua-browser/pkg/agent"
	"github.com/entrhq/cua-browser/pkg/browser"
	"github.com/entrhq/cua-browser/pkg/computer"
	"github.com/entrhq/cua-browser/pkg/config"
	"github.com/entrhq/cua-browser/pkg/console"
	"github.com/entrhq/cua-browser/pkg/llm"
	"github.com/entrhq/cua-browser/pkg/logging"
	"github.com/entrhq/cua-browser/pkg/security/domains"
)

const version = "0.1.0"

var (
	_ agent.Page     = (*browser.Session)(nil)
	_ agent.Reporter = (*console.Reporter)(nil)
)

// CLIConfig holds command-line configuration
type CLIConfig struct {
	ConfigFile  string
	Task        string
	StartURL    string
	Model       string
	APIKey      string
	BaseURL     string
	Headless    bool
	HeadlessSet bool
	Verbosity   string
	ShowVersion bool
}

func main() {
	cliConfig := parseFlags()

	if cliConfig.ShowVersion {
		fmt.Printf("cua-browser v%s\n", version)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\n\nShutting down gracefully...")
		cancel()
	}()

	if err := run(ctx, cliConfig); err != nil {
		cancel()
		log.Printf("Run failed: %v", err)
		os.Exit(1)
	}
	cancel()
}

// parseFlags parses command line flags
func parseFlags() *CLIConfig {
	cfg := &CLIConfig{}

	flag.StringVar(&cfg.ConfigFile, "config", "", "Path to configuration file (YAML)")
	flag.StringVar(&cfg.Task, "task", "", "Task for the model (default: check the latest OpenAI news on bing.com)")
	flag.StringVar(&cfg.StartURL, "url", "", "Page to open before the first request (default: https://bing.com)")
	flag.StringVar(&cfg.Model, "model", "", "Computer-use model (default: computer-use-preview)")
	flag.StringVar(&cfg.APIKey, "api-key", "", "OpenAI API key (default: $OPENAI_API_KEY)")
	flag.StringVar(&cfg.BaseURL, "base-url", "", "OpenAI API base URL (default: $OPENAI_BASE_URL)")
	flag.BoolVar(&cfg.Headless, "headless", false, "Run the browser without a window")
	flag.StringVar(&cfg.Verbosity, "verbosity", "", "Console output: quiet, normal, verbose or debug")
	flag.BoolVar(&cfg.ShowVersion, "version", false, "Show version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "cua-browser - let a computer-use model drive Chromium\n\n")
		fmt.Fprintf(os.Stderr, "Usage: cua-browser [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  # Default run\n")
		fmt.Fprintf(os.Stderr, "  cua-browser\n\n")
		fmt.Fprintf(os.Stderr, "  # Custom task and start page\n")
		fmt.Fprintf(os.Stderr, "  cua-browser -task \"Find the weather in Paris\" -url https://duckduckgo.com\n\n")
		fmt.Fprintf(os.Stderr, "  # Run with config file\n")
		fmt.Fprintf(os.Stderr, "  cua-browser -config cua.yaml\n\n")
	}

	flag.Parse()
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "headless" {
			cfg.HeadlessSet = true
		}
	})
	return cfg
}

func (c *CLIConfig) overrides() config.Overrides {
	o := config.Overrides{
		Task:      c.Task,
		StartURL:  c.StartURL,
		Model:     c.Model,
		APIKey:    c.APIKey,
		BaseURL:   c.BaseURL,
		Verbosity: c.Verbosity,
	}
	if c.HeadlessSet {
		headless := c.Headless
		o.Headless = &headless
	}
	return o
}

// run opens the browser, starts the conversation and drives the loop until
// the model stops issuing actions.
func run(ctx context.Context, cliConfig *CLIConfig) error {
	cfg, err := config.Load(cliConfig.ConfigFile, cliConfig.overrides())
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	level, _ := console.ParseLevel(cfg.Logging.Verbosity)
	reporter := console.NewReporter(level)

	logger, err := logging.NewLogger("main")
	if err != nil {
		reporter.Warningf("debug log unavailable, logging to stderr: %v", err)
	}
	defer logger.Close()

	guard, err := domains.NewGuard(cfg.AllowedDomains)
	if err != nil {
		return fmt.Errorf("failed to create domain guard: %w", err)
	}

	provider, err := config.BuildProvider(cfg)
	if err != nil {
		return fmt.Errorf("failed to create model provider: %w", err)
	}

	reporter.Header("CUA BROWSER")
	reporter.Infof("Task: %s", cfg.Task)
	reporter.Infof("Model: %s", provider.GetModel())
	reporter.Infof("Start page: %s", cfg.StartURL)
	reporter.Verbosef("Debug log: %s", logger.LogPath())
	if guard.Enabled() {
		reporter.Verbosef("Allowed domains: %v", guard.Patterns())
	}
	logger.Infof("run started: task=%q model=%s start_url=%s config=%s",
		cfg.Task, cfg.Model, cfg.StartURL, cfg.ConfigFilePath)

	opts := cfg.BrowserOptions()
	opts.DriverOutput = logger.Writer()
	session, err := browser.Launch(opts)
	if err != nil {
		return fmt.Errorf("failed to launch browser: %w", err)
	}
	defer func() {
		if closeErr := session.Close(); closeErr != nil {
			logger.Warnf("closing browser: %v", closeErr)
		}
	}()

	if err := session.Navigate(cfg.StartURL, browser.NavigateOptions{}); err != nil {
		return fmt.Errorf("failed to open start page: %w", err)
	}
	if err := computer.Sleep(ctx, cfg.Timing.PageLoadWait); err != nil {
		return fmt.Errorf("interrupted while the start page loaded: %w", err)
	}

	initial, err := provider.Start(ctx, llm.StartRequest{Task: cfg.Task})
	if err != nil {
		return fmt.Errorf("failed to send task: %w", err)
	}
	reporter.ModelOutput("Initial model response", initial)

	dispatcher := computer.NewDispatcher(
		computer.WithWaitDuration(cfg.Timing.WaitAction),
		computer.WithObserver(reporter),
	)
	loop := agent.NewLoop(provider, session,
		agent.WithDispatcher(dispatcher),
		agent.WithReporter(reporter),
		agent.WithDomainGuard(guard),
		agent.WithSettleDelay(cfg.Timing.SettleDelay),
		agent.WithSafetyCheckAcknowledgement(cfg.AcknowledgeSafetyChecks),
	)

	final, err := loop.Run(ctx, initial)
	if err != nil {
		reporter.Summary(loop.Steps(), nil)
		return fmt.Errorf("interaction loop failed: %w", err)
	}

	reporter.Summary(loop.Steps(), final)
	logger.Infof("run finished after %d actions, final response %s", loop.Steps(), final.ID)
	return nil
}
