// Package solver drives the scrape, generate, execute, submit loop over a
// quiz chain. One Solve call follows server-supplied next URLs until the
// chain terminates, a budget runs out, or the verdict becomes unknowable.
package solver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/use-agent/quizpilot/config"
	"github.com/use-agent/quizpilot/extract"
	"github.com/use-agent/quizpilot/llm"
	"github.com/use-agent/quizpilot/models"
	"github.com/use-agent/quizpilot/report"
)

// Fetcher retrieves a URL's content.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string, forceDynamic bool) *models.FetchResult
}

// Generator produces a solver script from a page report.
type Generator interface {
	GenerateSolution(ctx context.Context, pageReport string, attempt *models.QuizAttempt) (string, error)
}

// Executor runs a generated script.
type Executor interface {
	Execute(ctx context.Context, code string) (models.ExecResult, error)
}

// Recorder persists attempt history. All methods must tolerate being
// called concurrently with each other.
type Recorder interface {
	RecordAttempt(ctx context.Context, runID string, attempt *models.QuizAttempt, verdict models.SubmissionVerdict, exec models.ExecResult) error
	RecordOutcome(ctx context.Context, runID, startURL string, outcome *models.QuizOutcome) error
}

// Solver orchestrates one quiz chain end to end.
type Solver struct {
	fetcher     Fetcher
	generator   Generator
	executor    Executor
	transcriber extract.Transcriber
	recorder    Recorder
	cfg         config.SolverConfig
}

// Option configures optional collaborators.
type Option func(*Solver)

// WithTranscriber enables audio transcription during extraction.
func WithTranscriber(t extract.Transcriber) Option {
	return func(s *Solver) { s.transcriber = t }
}

// WithRecorder enables attempt persistence.
func WithRecorder(r Recorder) Option {
	return func(s *Solver) { s.recorder = r }
}

func New(fetcher Fetcher, generator Generator, executor Executor, cfg config.SolverConfig, opts ...Option) *Solver {
	s := &Solver{
		fetcher:   fetcher,
		generator: generator,
		executor:  executor,
		cfg:       cfg,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Solve processes the quiz chain starting at startURL and returns a
// terminal outcome. It never returns an error: every failure mode is an
// outcome the caller can serialize.
func (s *Solver) Solve(ctx context.Context, startURL string) *models.QuizOutcome {
	runID := uuid.NewString()
	slog.Info("starting quiz chain", "runID", runID, "url", startURL)

	outcome := s.solveChain(ctx, runID, startURL)

	if s.recorder != nil {
		if err := s.recorder.RecordOutcome(ctx, runID, startURL, outcome); err != nil {
			slog.Warn("failed to record outcome", "runID", runID, "error", err)
		}
	}

	slog.Info("quiz chain finished",
		"runID", runID,
		"success", outcome.Success,
		"totalQuizzes", outcome.TotalQuizzes,
		"retriesExhausted", outcome.RetriesExhausted,
	)
	return outcome
}

func (s *Solver) solveChain(ctx context.Context, runID, startURL string) *models.QuizOutcome {
	url := startURL

	for depth := 0; ; depth++ {
		if depth >= s.cfg.MaxChainDepth {
			return &models.QuizOutcome{
				Success:      false,
				TotalQuizzes: depth,
				Error:        fmt.Sprintf("%s: chain exceeded %d quizzes", models.ErrCodeChainDepth, s.cfg.MaxChainDepth),
			}
		}

		attempt := &models.QuizAttempt{
			URL:    url,
			Email:  s.cfg.Email,
			Secret: s.cfg.Secret,
			Depth:  depth,
		}
		outcome, nextURL := s.solveOne(ctx, runID, attempt)
		if outcome != nil {
			outcome.TotalQuizzes = depth + 1
			return outcome
		}

		slog.Info("advancing to next quiz", "runID", runID, "depth", depth+1, "url", nextURL)
		url = nextURL
	}
}

// solveOne runs the retry loop for a single URL. It returns either a
// terminal outcome or the next URL to advance to, never both.
func (s *Solver) solveOne(ctx context.Context, runID string, attempt *models.QuizAttempt) (*models.QuizOutcome, string) {
	for {
		verdict, exec, stepErr := s.attemptOnce(ctx, attempt)

		if s.recorder != nil {
			if err := s.recorder.RecordAttempt(ctx, runID, attempt, verdict, exec); err != nil {
				slog.Warn("failed to record attempt", "runID", runID, "error", err)
			}
		}

		switch {
		case isTerminalFetchError(stepErr):
			// A fully failed fetch is not worth a generation cycle and is
			// never retried: the page that defines the quiz does not exist.
			return &models.QuizOutcome{
				Success: false,
				Error:   stepErr.Error(),
			}, ""

		case stepErr != nil:
			attempt.PreviousErrors = append(attempt.PreviousErrors, stepErr.Error())
			slog.Warn("attempt failed",
				"url", attempt.URL,
				"retry", attempt.RetryCount,
				"error", stepErr,
			)
			if attempt.RetryCount >= s.cfg.MaxRetries {
				return &models.QuizOutcome{
					Success:          false,
					Reason:           stepErr.Error(),
					RetriesExhausted: true,
					ExecutionOutput:  execOutput(exec),
					Error:            stepErr.Error(),
				}, ""
			}
			attempt.RetryCount++

		case verdict.Correct != nil && *verdict.Correct:
			if verdict.NextURL != "" {
				s.waitDelay(ctx, verdict.DelaySeconds)
				return nil, verdict.NextURL
			}
			correct := true
			return &models.QuizOutcome{
				Success:   true,
				Correct:   &correct,
				FinalQuiz: true,
			}, ""

		case verdict.Correct != nil && !*verdict.Correct:
			reason := verdict.Reason
			if reason == "" {
				reason = "submission rejected"
			}
			attempt.PreviousErrors = append(attempt.PreviousErrors, "Incorrect: "+reason)
			slog.Info("incorrect answer",
				"url", attempt.URL,
				"retry", attempt.RetryCount,
				"reason", reason,
			)
			if attempt.RetryCount >= s.cfg.MaxRetries {
				// The server may hand out the next URL even for a wrong
				// answer; follow it rather than abandoning the chain.
				if verdict.NextURL != "" {
					slog.Info("retries exhausted but server supplied next URL, advancing", "url", verdict.NextURL)
					s.waitDelay(ctx, verdict.DelaySeconds)
					return nil, verdict.NextURL
				}
				incorrect := false
				return &models.QuizOutcome{
					Success:          false,
					Correct:          &incorrect,
					Reason:           reason,
					RetriesExhausted: true,
					ExecutionOutput:  execOutput(exec),
				}, ""
			}
			attempt.RetryCount++

		default:
			// The script ran but no verdict could be recovered. Treat the
			// execution as complete rather than guessing wrong and burning
			// retries on a possibly-successful submission.
			slog.Info("no verdict recovered from output", "url", attempt.URL)
			return &models.QuizOutcome{
				Success:         true,
				NextURL:         verdict.NextURL,
				ExecutionOutput: execOutput(exec),
			}, ""
		}
	}
}

// attemptOnce performs one full scrape-generate-execute cycle and parses
// the verdict. A non-nil error means the cycle broke before a verdict
// could exist.
func (s *Solver) attemptOnce(ctx context.Context, attempt *models.QuizAttempt) (models.SubmissionVerdict, models.ExecResult, error) {
	var zero models.SubmissionVerdict

	pageReport, err := s.buildReport(ctx, attempt.URL)
	if err != nil {
		return zero, models.ExecResult{}, err
	}

	if s.cfg.ReportPath != "" {
		if err := writeReport(s.cfg.ReportPath, pageReport); err != nil {
			slog.Warn("failed to persist report artifact", "error", err)
		}
	}

	response, err := s.generator.GenerateSolution(ctx, pageReport, attempt)
	if err != nil {
		return zero, models.ExecResult{}, err
	}

	code, err := llm.ExtractCodeBlock(response)
	if err != nil {
		return zero, models.ExecResult{}, err
	}

	exec, err := s.executor.Execute(ctx, code)
	if err != nil {
		return zero, exec, err
	}

	return ParseVerdict(exec.Stdout), exec, nil
}

// buildReport fetches the URL and renders whichever report shape matches
// what came back. A fully failed fetch is terminal: the error is returned
// instead of a report, unless BlindSolve opts into a failure report so
// the generator can try solving from the URL's query parameters alone.
func (s *Solver) buildReport(ctx context.Context, rawURL string) (string, error) {
	res := s.fetcher.Fetch(ctx, rawURL, s.cfg.ForceDynamic)

	switch {
	case !res.Success && s.cfg.BlindSolve:
		slog.Warn("fetch failed, building failure report", "url", rawURL, "error", res.Error)
		return report.FormatFailure(rawURL, res), nil

	case !res.Success:
		code := res.ErrorCode
		if code == "" {
			code = models.ErrCodeFetchFailed
		}
		return "", models.NewQuizError(code, res.Error, nil)

	case res.Kind == models.KindWebpage:
		rec := extract.Extract(res.HTML, rawURL)
		extract.TranscribeAudio(ctx, rec, s.transcriber, s.cfg.TranscriptionWorkers)
		return report.Format(rec, res.Method), nil

	case res.Kind == models.KindAudio:
		return report.FormatDirect(rawURL, res, s.transcribeDirect(ctx, rawURL)), nil

	default:
		return report.FormatDirect(rawURL, res, nil), nil
	}
}

// transcribeDirect handles a URL whose payload is itself an audio file,
// as opposed to audio embedded in a page. Transcription failure is
// reported inside the result so the generator still sees the audio URL.
func (s *Solver) transcribeDirect(ctx context.Context, rawURL string) *models.AudioTranscription {
	if s.transcriber == nil {
		return &models.AudioTranscription{
			URL:           rawURL,
			Transcription: "[Error transcribing audio: no transcriber configured]",
			Status:        models.TranscriptionFailed,
		}
	}
	text, err := s.transcriber.Transcribe(ctx, rawURL)
	if err != nil {
		slog.Warn("direct audio transcription failed", "url", rawURL, "error", err)
		return &models.AudioTranscription{
			URL:           rawURL,
			Transcription: fmt.Sprintf("[Error transcribing audio: %v]", err),
			Status:        models.TranscriptionFailed,
		}
	}
	return &models.AudioTranscription{
		URL:           rawURL,
		Transcription: text,
		Status:        models.TranscriptionSuccess,
	}
}

// isTerminalFetchError reports whether the attempt broke on a failure
// retrying cannot cure: the quiz page itself never arrived.
func isTerminalFetchError(err error) bool {
	var qe *models.QuizError
	if !errors.As(err, &qe) {
		return false
	}
	switch qe.Code {
	case models.ErrCodeInvalidURL, models.ErrCodeFetchFailed, models.ErrCodeBrowserCrash:
		return true
	}
	return false
}

// waitDelay honours the server-requested pause before the next quiz.
// With no requested delay the chain advances immediately.
func (s *Solver) waitDelay(ctx context.Context, seconds float64) {
	if seconds <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(time.Duration(seconds * float64(time.Second))):
	}
}

func execOutput(exec models.ExecResult) string {
	if exec.Stderr == "" {
		return exec.Stdout
	}
	if exec.Stdout == "" {
		return exec.Stderr
	}
	return exec.Stdout + "\n--- stderr ---\n" + exec.Stderr
}
