package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Fetch   FetchConfig
	Browser BrowserConfig
	Solver  SolverConfig
	LLM     LLMConfig
	Exec    ExecConfig
	Store   StoreConfig
	Log     LogConfig
}

// FetchConfig controls the HTTP fetcher.
type FetchConfig struct {
	// Timeout is the deadline for one static GET.
	Timeout time.Duration // default: 30s

	// ProbeTimeout is the deadline for the HEAD content-type probe.
	ProbeTimeout time.Duration // default: 8s

	// MaxRetries is the retry budget for idempotent requests.
	MaxRetries int // default: 3

	// RetryBackoff is the base backoff, doubled per retry.
	RetryBackoff time.Duration // default: 500ms

	// RequestsPerSecond / Burst throttle all outbound requests.
	RequestsPerSecond float64 // default: 4
	Burst             int     // default: 8

	// KindCacheEntries bounds the content-kind probe cache.
	KindCacheEntries int // default: 512
}

// BrowserConfig controls the rod browser used for dynamic rendering.
type BrowserConfig struct {
	// Headless controls whether the browser runs headless.
	Headless bool // default: true

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool // default: false

	// BrowserBin overrides the Chromium binary path.
	BrowserBin string

	// MaxPages is the page pool capacity.
	MaxPages int // default: 4

	// NavigationTimeout bounds one browser render.
	NavigationTimeout time.Duration // default: 30s

	// Stealth injects the stealth JS before navigation.
	Stealth bool // default: true
}

// SolverConfig controls the quiz orchestration loop.
type SolverConfig struct {
	// MaxRetries is the per-URL retry budget for incorrect answers and
	// execution failures.
	MaxRetries int // default: 3

	// MaxChainDepth caps how many server-supplied follow-up URLs the loop
	// will follow before giving up.
	MaxChainDepth int // default: 25

	// ForceDynamic skips the classifier and always renders in a browser.
	ForceDynamic bool // default: false

	// BlindSolve lets the loop attempt a quiz even when the fetch failed
	// completely, generating from the URL and its query parameters alone.
	// Off by default: a dead URL normally fails fast.
	BlindSolve bool // default: false

	// Email and Secret identify the quiz taker to the submission
	// endpoint; both are handed to the code generator as metadata.
	Email  string
	Secret string

	// ReportPath is where the markdown report is written for the code
	// generator to read.
	ReportPath string // default: "question.md"

	// TranscriptionWorkers bounds concurrent audio transcriptions.
	TranscriptionWorkers int // default: 3
}

// LLMConfig controls the code-generation and transcription collaborator.
type LLMConfig struct {
	APIKey       string
	BaseURL      string        // default: "https://aipipe.org/openai/v1"
	Model        string        // default: "gpt-4o-mini"
	WhisperModel string        // default: "whisper-1"
	Timeout      time.Duration // default: 120s
}

// ExecConfig controls execution of generated scripts.
type ExecConfig struct {
	// Interpreter runs the generated script (argv[0]).
	Interpreter string // default: "python3"

	// ScriptPath is where the generated code is written before execution.
	ScriptPath string // default: "generate.py"

	// Timeout is the hard wall-clock limit; the process group is killed
	// on expiry.
	Timeout time.Duration // default: 150s
}

// StoreConfig controls the attempt-history database.
type StoreConfig struct {
	// Path is the sqlite file; empty disables persistence.
	Path string
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "text"
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Fetch: FetchConfig{
			Timeout:           envDurationOr("QUIZPILOT_FETCH_TIMEOUT", 30*time.Second),
			ProbeTimeout:      envDurationOr("QUIZPILOT_PROBE_TIMEOUT", 8*time.Second),
			MaxRetries:        envIntOr("QUIZPILOT_FETCH_RETRIES", 3),
			RetryBackoff:      envDurationOr("QUIZPILOT_RETRY_BACKOFF", 500*time.Millisecond),
			RequestsPerSecond: envFloatOr("QUIZPILOT_FETCH_RPS", 4.0),
			Burst:             envIntOr("QUIZPILOT_FETCH_BURST", 8),
			KindCacheEntries:  envIntOr("QUIZPILOT_KIND_CACHE_ENTRIES", 512),
		},
		Browser: BrowserConfig{
			Headless:          envBoolOr("QUIZPILOT_HEADLESS", true),
			NoSandbox:         envBoolOr("QUIZPILOT_NO_SANDBOX", false),
			BrowserBin:        os.Getenv("QUIZPILOT_BROWSER_BIN"),
			MaxPages:          envIntOr("QUIZPILOT_MAX_PAGES", 4),
			NavigationTimeout: envDurationOr("QUIZPILOT_NAV_TIMEOUT", 30*time.Second),
			Stealth:           envBoolOr("QUIZPILOT_STEALTH", true),
		},
		Solver: SolverConfig{
			MaxRetries:           envIntOr("QUIZPILOT_MAX_RETRIES", 3),
			MaxChainDepth:        envIntOr("QUIZPILOT_MAX_CHAIN_DEPTH", 25),
			ForceDynamic:         envBoolOr("QUIZPILOT_FORCE_DYNAMIC", false),
			BlindSolve:           envBoolOr("QUIZPILOT_BLIND_SOLVE", false),
			Email:                os.Getenv("QUIZPILOT_EMAIL"),
			Secret:               os.Getenv("QUIZPILOT_SECRET"),
			ReportPath:           envOr("QUIZPILOT_REPORT_PATH", "question.md"),
			TranscriptionWorkers: envIntOr("QUIZPILOT_TRANSCRIPTION_WORKERS", 3),
		},
		LLM: LLMConfig{
			APIKey:       os.Getenv("QUIZPILOT_API_KEY"),
			BaseURL:      envOr("QUIZPILOT_LLM_BASE_URL", "https://aipipe.org/openai/v1"),
			Model:        envOr("QUIZPILOT_LLM_MODEL", "gpt-4o-mini"),
			WhisperModel: envOr("QUIZPILOT_WHISPER_MODEL", "whisper-1"),
			Timeout:      envDurationOr("QUIZPILOT_LLM_TIMEOUT", 120*time.Second),
		},
		Exec: ExecConfig{
			Interpreter: envOr("QUIZPILOT_INTERPRETER", "python3"),
			ScriptPath:  envOr("QUIZPILOT_SCRIPT_PATH", "generate.py"),
			Timeout:     envDurationOr("QUIZPILOT_EXEC_TIMEOUT", 150*time.Second),
		},
		Store: StoreConfig{
			Path: os.Getenv("QUIZPILOT_DB_PATH"),
		},
		Log: LogConfig{
			Level:  envOr("QUIZPILOT_LOG_LEVEL", "info"),
			Format: envOr("QUIZPILOT_LOG_FORMAT", "text"),
		},
	}
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
