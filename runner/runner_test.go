package runner

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/use-agent/quizpilot/config"
	"github.com/use-agent/quizpilot/models"
)

func testRunner(t *testing.T, timeout time.Duration) *Runner {
	t.Helper()
	return New(config.ExecConfig{
		Interpreter: "sh",
		ScriptPath:  filepath.Join(t.TempDir(), "script.sh"),
		Timeout:     timeout,
	})
}

func TestExecute_CapturesOutput(t *testing.T) {
	r := testRunner(t, 10*time.Second)

	res, err := r.Execute(context.Background(), "echo out; echo err >&2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.TrimSpace(res.Stdout) != "out" {
		t.Errorf("Stdout = %q", res.Stdout)
	}
	if strings.TrimSpace(res.Stderr) != "err" {
		t.Errorf("Stderr = %q", res.Stderr)
	}
	if res.ExitCode != 0 || res.TimedOut {
		t.Errorf("result = %+v", res)
	}
}

func TestExecute_NonZeroExit(t *testing.T) {
	r := testRunner(t, 10*time.Second)

	res, err := r.Execute(context.Background(), "echo partial; exit 3")
	if err == nil {
		t.Fatal("expected an error for non-zero exit")
	}

	var qe *models.QuizError
	if !errors.As(err, &qe) || qe.Code != models.ErrCodeExecutionFailed {
		t.Errorf("error = %v, want EXECUTION_FAILED", err)
	}
	if res.ExitCode != 3 {
		t.Errorf("ExitCode = %d, want 3", res.ExitCode)
	}
	// Output captured before the failure must survive.
	if strings.TrimSpace(res.Stdout) != "partial" {
		t.Errorf("Stdout = %q", res.Stdout)
	}
}

func TestExecute_Timeout(t *testing.T) {
	r := testRunner(t, 200*time.Millisecond)

	res, err := r.Execute(context.Background(), "echo before; sleep 5; echo after")
	if err == nil {
		t.Fatal("expected a timeout error")
	}

	var qe *models.QuizError
	if !errors.As(err, &qe) || qe.Code != models.ErrCodeExecutionTimeout {
		t.Errorf("error = %v, want EXECUTION_TIMEOUT", err)
	}
	if !res.TimedOut {
		t.Error("TimedOut should be set")
	}
	if !strings.Contains(res.Stdout, "before") {
		t.Errorf("pre-timeout output lost: %q", res.Stdout)
	}
	if strings.Contains(res.Stdout, "after") {
		t.Error("output after the kill should not exist")
	}
}
