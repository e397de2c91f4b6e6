package models

// QuizAttempt is the mutable state for one URL in a quiz chain. Advancing
// to the next URL discards the attempt and starts a fresh one, which resets
// the retry counter and the accumulated error history. Email and Secret
// are run-level submission credentials carried on every attempt so the
// code generator can echo them back to the quiz server.
type QuizAttempt struct {
	URL            string
	Email          string
	Secret         string
	Depth          int
	RetryCount     int
	PreviousErrors []string
}

// SubmissionVerdict is the parsed result of posting an answer, as recovered
// from the generated script's stdout. A response the parser could not decode
// yields the zero verdict (all fields unset), which the loop treats as
// "executed successfully, outcome unknown".
type SubmissionVerdict struct {
	Correct      *bool
	Reason       string
	NextURL      string
	DelaySeconds float64
}

// Known reports whether any submission response was recovered at all.
func (v SubmissionVerdict) Known() bool {
	return v.Correct != nil || v.Reason != "" || v.NextURL != "" || v.DelaySeconds != 0
}

// ExecResult is the captured output of one generated-script execution.
type ExecResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
	TimedOut bool
}

// QuizOutcome is the terminal result of processing a quiz chain.
type QuizOutcome struct {
	Success bool `json:"success"`

	// Correct is nil when no submission verdict was recovered.
	Correct *bool  `json:"correct,omitempty"`
	Reason  string `json:"reason,omitempty"`

	// NextURL is set when the run ended with an unconsumed server-supplied
	// follow-up URL (e.g. unknown verdict).
	NextURL string `json:"next_url,omitempty"`

	TotalQuizzes     int    `json:"total_quizzes,omitempty"`
	FinalQuiz        bool   `json:"final_quiz,omitempty"`
	RetriesExhausted bool   `json:"retries_exhausted,omitempty"`
	ExecutionOutput  string `json:"execution_output,omitempty"`
	Error            string `json:"error,omitempty"`
}
