// Package runner executes generated scripts in a child process with a
// hard wall-clock limit. The script gets its own process group so the
// kill on timeout takes its children down too.
package runner

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"os/exec"
	"syscall"
	"time"

	"github.com/use-agent/quizpilot/config"
	"github.com/use-agent/quizpilot/models"
)

// Runner writes generated code to disk and runs it with the configured
// interpreter.
type Runner struct {
	cfg config.ExecConfig
}

func New(cfg config.ExecConfig) *Runner {
	return &Runner{cfg: cfg}
}

// Execute writes code to the script path and runs it. The result carries
// both output streams even on failure; a timeout sets TimedOut and
// returns an EXECUTION_TIMEOUT error alongside the captured output.
func (r *Runner) Execute(ctx context.Context, code string) (models.ExecResult, error) {
	if err := os.WriteFile(r.cfg.ScriptPath, []byte(code), 0o644); err != nil {
		return models.ExecResult{}, models.NewQuizError(models.ErrCodeExecutionFailed, "failed to write script", err)
	}

	ctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, r.cfg.Interpreter, r.cfg.ScriptPath)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		// Negative pid signals the whole process group.
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	result := models.ExecResult{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if ctx.Err() == context.DeadlineExceeded {
		result.TimedOut = true
		result.ExitCode = -1
		slog.Warn("script execution timed out", "timeout", r.cfg.Timeout, "elapsed", elapsed)
		return result, models.NewQuizError(models.ErrCodeExecutionTimeout, "script exceeded time limit", ctx.Err())
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			slog.Info("script exited non-zero", "exitCode", result.ExitCode, "elapsed", elapsed)
			return result, models.NewQuizError(models.ErrCodeExecutionFailed, "script exited non-zero", err)
		}
		result.ExitCode = -1
		return result, models.NewQuizError(models.ErrCodeExecutionFailed, "script failed to start", err)
	}

	slog.Info("script executed", "elapsed", elapsed, "stdoutBytes", len(result.Stdout))
	return result, nil
}
