package models

import "fmt"

// Error codes used across the pipeline and in terminal outcomes.
const (
	ErrCodeInvalidURL        = "INVALID_URL"
	ErrCodeFetchFailed       = "FETCH_FAILED"
	ErrCodeBrowserCrash      = "BROWSER_CRASH"
	ErrCodeNoCodeGenerated   = "NO_CODE_GENERATED"
	ErrCodeExecutionFailed   = "EXECUTION_FAILED"
	ErrCodeExecutionTimeout  = "EXECUTION_TIMEOUT"
	ErrCodeVerdictUnparsable = "VERDICT_UNPARSEABLE"
	ErrCodeRetriesExhausted  = "RETRIES_EXHAUSTED"
	ErrCodeChainDepth        = "CHAIN_DEPTH_EXCEEDED"
	ErrCodeLLMFailure        = "LLM_FAILURE"
)

// QuizError is the internal error type carrying an error code.
// It implements the error interface and supports error wrapping via Unwrap.
type QuizError struct {
	Code    string
	Message string
	Err     error // wrapped original error
}

func (e *QuizError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *QuizError) Unwrap() error {
	return e.Err
}

// NewQuizError creates a new QuizError.
func NewQuizError(code, message string, err error) *QuizError {
	return &QuizError{Code: code, Message: message, Err: err}
}
