package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/use-agent/quizpilot/config"
	"github.com/use-agent/quizpilot/fetch"
	"github.com/use-agent/quizpilot/llm"
	"github.com/use-agent/quizpilot/runner"
	"github.com/use-agent/quizpilot/solver"
	"github.com/use-agent/quizpilot/store"
)

var (
	flagForceDynamic bool
	flagNoBrowser    bool
	flagBlindSolve   bool
	flagEmail        string
	flagSecret       string
)

var rootCmd = &cobra.Command{
	Use:   "quizpilot",
	Short: "Automated quiz chain solver",
	Long: `quizpilot scrapes a quiz page, generates a solver script with an LLM,
executes it, and follows server-supplied next URLs until the chain ends.`,
	SilenceUsage: true,
}

var solveCmd = &cobra.Command{
	Use:   "solve <url>",
	Short: "Solve the quiz chain starting at the given URL",
	Args:  cobra.ExactArgs(1),
	RunE:  runSolve,
}

func main() {
	// Missing .env is fine; real env vars always win.
	_ = godotenv.Load()

	solveCmd.Flags().BoolVar(&flagForceDynamic, "force-dynamic", false, "always render pages in a browser")
	solveCmd.Flags().BoolVar(&flagNoBrowser, "no-browser", false, "never launch a browser; static fetches only")
	solveCmd.Flags().BoolVar(&flagBlindSolve, "blind-solve", false, "attempt a quiz from the URL alone when the fetch fails completely")
	solveCmd.Flags().StringVar(&flagEmail, "email", "", "submission email passed to the generated solver")
	solveCmd.Flags().StringVar(&flagSecret, "secret", "", "submission secret passed to the generated solver")
	rootCmd.AddCommand(solveCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runSolve(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	initLogger(cfg.Log)

	if flagForceDynamic {
		cfg.Solver.ForceDynamic = true
	}
	if flagBlindSolve {
		cfg.Solver.BlindSolve = true
	}
	if flagEmail != "" {
		cfg.Solver.Email = flagEmail
	}
	if flagSecret != "" {
		cfg.Solver.Secret = flagSecret
	}

	slog.Info("quizpilot starting",
		"url", args[0],
		"maxRetries", cfg.Solver.MaxRetries,
		"maxChainDepth", cfg.Solver.MaxChainDepth,
		"model", cfg.LLM.Model,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var browser *fetch.Browser
	if !flagNoBrowser {
		b, err := fetch.NewBrowser(cfg.Browser)
		if err != nil {
			slog.Warn("browser unavailable, static fetches only", "error", err)
		} else {
			browser = b
			defer browser.Close()
		}
	}

	fetcher := fetch.NewFetcher(cfg.Fetch, browser)
	client := llm.NewClient(cfg.LLM)
	exec := runner.New(cfg.Exec)

	opts := []solver.Option{solver.WithTranscriber(client)}
	if cfg.Store.Path != "" {
		db, err := store.Open(cfg.Store.Path)
		if err != nil {
			slog.Warn("attempt store unavailable, continuing without persistence", "path", cfg.Store.Path, "error", err)
		} else {
			defer db.Close()
			opts = append(opts, solver.WithRecorder(db))
		}
	}

	s := solver.New(fetcher, client, exec, cfg.Solver, opts...)
	outcome := s.Solve(ctx, args[0])

	out, err := json.MarshalIndent(outcome, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal outcome: %w", err)
	}
	fmt.Println(string(out))

	if !outcome.Success {
		return fmt.Errorf("quiz chain failed: %s", outcome.Error)
	}
	return nil
}

// initLogger configures slog based on the LogConfig.
func initLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}

	slog.SetDefault(slog.New(handler))
}
