// Package llm wraps the chat-completion and speech-to-text collaborators.
// The orchestration loop only sees the Client's two methods; prompt
// construction and transport details stay here.
package llm

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/use-agent/quizpilot/config"
	"github.com/use-agent/quizpilot/models"
)

// maxAudioBytes caps the audio download sent to transcription.
const maxAudioBytes = 25 << 20

// Client talks to an OpenAI-compatible API for code generation and audio
// transcription.
type Client struct {
	api        *openai.Client
	httpClient *http.Client
	cfg        config.LLMConfig
}

// NewClient builds a Client against the configured base URL. Any endpoint
// speaking the OpenAI wire format works.
func NewClient(cfg config.LLMConfig) *Client {
	apiCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiCfg.BaseURL = cfg.BaseURL
	}
	apiCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	return &Client{
		api:        openai.NewClientWithConfig(apiCfg),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cfg:        cfg,
	}
}

const systemPrompt = `You are an expert Python developer solving automated web quizzes.
You are given a markdown analysis of a quiz page. Write a complete, standalone Python 3 script that:
1. Determines the answer to the quiz question from the provided page analysis (downloading any referenced data files if needed).
2. Submits the answer to the submission endpoint found on the page, including any identifying query parameters from the quiz URL and the submission email and secret when they are provided.
3. Prints the raw submission response prefixed with the exact line "Submission response:" so it can be parsed.
Only use the Python standard library plus requests, pandas and numpy.
Respond with a single fenced python code block and nothing else.`

// GenerateSolution asks the model for a solver script for the analysed
// page. Previous failed attempts are included so the model can correct
// itself instead of repeating the same mistake.
func (c *Client) GenerateSolution(ctx context.Context, pageReport string, attempt *models.QuizAttempt) (string, error) {
	var user strings.Builder
	fmt.Fprintf(&user, "Quiz URL: %s\n", attempt.URL)
	if attempt.Email != "" {
		fmt.Fprintf(&user, "Submission email: %s\n", attempt.Email)
	}
	if attempt.Secret != "" {
		fmt.Fprintf(&user, "Submission secret: %s\n", attempt.Secret)
	}
	user.WriteString("\n")
	user.WriteString(pageReport)

	if len(attempt.PreviousErrors) > 0 {
		user.WriteString("\n\n## Previous Attempts Failed\n\n")
		user.WriteString("Earlier scripts for this quiz failed. Do not repeat these mistakes:\n")
		for i, e := range attempt.PreviousErrors {
			fmt.Fprintf(&user, "%d. %s\n", i+1, e)
		}
	}

	start := time.Now()
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: user.String()},
		},
	})
	if err != nil {
		return "", models.NewQuizError(models.ErrCodeLLMFailure, "chat completion failed", err)
	}
	if len(resp.Choices) == 0 {
		return "", models.NewQuizError(models.ErrCodeLLMFailure, "chat completion returned no choices", nil)
	}

	slog.Info("solution generated",
		"model", c.cfg.Model,
		"duration", time.Since(start),
		"promptTokens", resp.Usage.PromptTokens,
		"completionTokens", resp.Usage.CompletionTokens,
	)

	return resp.Choices[0].Message.Content, nil
}

// Transcribe downloads the audio file and runs it through the
// speech-to-text model. The download reuses the client's HTTP timeout.
func (c *Client) Transcribe(ctx context.Context, audioURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, audioURL, nil)
	if err != nil {
		return "", fmt.Errorf("llm: build audio request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("llm: download audio: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("llm: audio download returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxAudioBytes))
	if err != nil {
		return "", fmt.Errorf("llm: read audio body: %w", err)
	}

	transcription, err := c.api.CreateTranscription(ctx, openai.AudioRequest{
		Model:    c.cfg.WhisperModel,
		FilePath: audioFileName(audioURL),
		Reader:   bytes.NewReader(data),
	})
	if err != nil {
		return "", fmt.Errorf("llm: transcription failed: %w", err)
	}

	return strings.TrimSpace(transcription.Text), nil
}

// audioFileName derives a filename with extension from the URL; the API
// infers the audio format from it.
func audioFileName(audioURL string) string {
	u, err := url.Parse(audioURL)
	if err != nil {
		return "audio.mp3"
	}
	name := path.Base(u.Path)
	if name == "" || name == "." || name == "/" || path.Ext(name) == "" {
		return "audio.mp3"
	}
	return name
}
