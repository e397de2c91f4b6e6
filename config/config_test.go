package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	if cfg.Fetch.Timeout != 30*time.Second {
		t.Errorf("Fetch.Timeout = %v", cfg.Fetch.Timeout)
	}
	if cfg.Solver.MaxRetries != 3 {
		t.Errorf("Solver.MaxRetries = %d", cfg.Solver.MaxRetries)
	}
	if cfg.Solver.MaxChainDepth != 25 {
		t.Errorf("Solver.MaxChainDepth = %d", cfg.Solver.MaxChainDepth)
	}
	if cfg.Exec.Timeout != 150*time.Second {
		t.Errorf("Exec.Timeout = %v", cfg.Exec.Timeout)
	}
	if !cfg.Browser.Headless {
		t.Error("Browser.Headless should default to true")
	}
	if cfg.Solver.BlindSolve {
		t.Error("Solver.BlindSolve should default to false")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("QUIZPILOT_MAX_RETRIES", "5")
	t.Setenv("QUIZPILOT_EXEC_TIMEOUT", "10s")
	t.Setenv("QUIZPILOT_HEADLESS", "false")
	t.Setenv("QUIZPILOT_FETCH_RPS", "2.5")
	t.Setenv("QUIZPILOT_EMAIL", "solver@example.com")
	t.Setenv("QUIZPILOT_SECRET", "hunter2")
	t.Setenv("QUIZPILOT_BLIND_SOLVE", "true")

	cfg := Load()

	if cfg.Solver.MaxRetries != 5 {
		t.Errorf("Solver.MaxRetries = %d, want 5", cfg.Solver.MaxRetries)
	}
	if cfg.Exec.Timeout != 10*time.Second {
		t.Errorf("Exec.Timeout = %v, want 10s", cfg.Exec.Timeout)
	}
	if cfg.Browser.Headless {
		t.Error("Browser.Headless should be overridden to false")
	}
	if cfg.Fetch.RequestsPerSecond != 2.5 {
		t.Errorf("Fetch.RequestsPerSecond = %v", cfg.Fetch.RequestsPerSecond)
	}
	if cfg.Solver.Email != "solver@example.com" || cfg.Solver.Secret != "hunter2" {
		t.Errorf("credentials = %q / %q", cfg.Solver.Email, cfg.Solver.Secret)
	}
	if !cfg.Solver.BlindSolve {
		t.Error("Solver.BlindSolve should be overridden to true")
	}
}

func TestLoad_MalformedEnvFallsBack(t *testing.T) {
	t.Setenv("QUIZPILOT_MAX_RETRIES", "not-a-number")
	t.Setenv("QUIZPILOT_EXEC_TIMEOUT", "soon")

	cfg := Load()

	if cfg.Solver.MaxRetries != 3 {
		t.Errorf("Solver.MaxRetries = %d, want default 3", cfg.Solver.MaxRetries)
	}
	if cfg.Exec.Timeout != 150*time.Second {
		t.Errorf("Exec.Timeout = %v, want default", cfg.Exec.Timeout)
	}
}
