package store

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/use-agent/quizpilot/models"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "quizpilot.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_RecordAttempt(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	correct := false
	attempt := &models.QuizAttempt{URL: "https://x.com/q/1", Depth: 0, RetryCount: 1}
	verdict := models.SubmissionVerdict{Correct: &correct, Reason: "wrong sum"}
	exec := models.ExecResult{ExitCode: 0, Stdout: "Submission response: {}"}

	if err := s.RecordAttempt(ctx, "run-1", attempt, verdict, exec); err != nil {
		t.Fatalf("record attempt: %v", err)
	}

	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM attempts WHERE run_id = ?`, "run-1").Scan(&count); err != nil {
		t.Fatalf("count attempts: %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
}

func TestStore_RecordOutcomeUpsert(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	first := &models.QuizOutcome{Success: false}
	if err := s.RecordOutcome(ctx, "run-2", "https://x.com/q/1", first); err != nil {
		t.Fatalf("record outcome: %v", err)
	}

	second := &models.QuizOutcome{Success: true, TotalQuizzes: 3}
	if err := s.RecordOutcome(ctx, "run-2", "https://x.com/q/1", second); err != nil {
		t.Fatalf("re-record outcome: %v", err)
	}

	var payload string
	if err := s.db.QueryRow(`SELECT outcome FROM outcomes WHERE run_id = ?`, "run-2").Scan(&payload); err != nil {
		t.Fatalf("read outcome: %v", err)
	}
	if want := `"total_quizzes":3`; !strings.Contains(payload, want) {
		t.Errorf("outcome = %s, want it to contain %s", payload, want)
	}

	var rows int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM outcomes`).Scan(&rows); err != nil {
		t.Fatalf("count outcomes: %v", err)
	}
	if rows != 1 {
		t.Errorf("rows = %d, want 1 (upsert must replace)", rows)
	}
}

func TestStore_NilSafe(t *testing.T) {
	var s *Store

	if err := s.RecordAttempt(context.Background(), "r", &models.QuizAttempt{}, models.SubmissionVerdict{}, models.ExecResult{}); err != nil {
		t.Errorf("nil store RecordAttempt: %v", err)
	}
	if err := s.RecordOutcome(context.Background(), "r", "u", &models.QuizOutcome{}); err != nil {
		t.Errorf("nil store RecordOutcome: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("nil store Close: %v", err)
	}
}
