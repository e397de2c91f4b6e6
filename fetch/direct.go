package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/use-agent/quizpilot/models"
)

// fetchDirect downloads a non-webpage payload in one GET and shapes it by
// kind: JSON is validated and kept as a raw document, text-like kinds keep
// the body as a string, binary kinds keep raw bytes.
func (f *Fetcher) fetchDirect(ctx context.Context, rawURL string, kind models.ContentKind) *models.FetchResult {
	resp, err := f.do(ctx, http.MethodGet, rawURL)
	if err != nil {
		return &models.FetchResult{
			Success: false,
			Kind:    kind,
			Error:   fmt.Sprintf("direct fetch failed: %v", err),
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return &models.FetchResult{
			Success:    false,
			Kind:       kind,
			StatusCode: resp.StatusCode,
			Error:      fmt.Sprintf("direct fetch returned status %d", resp.StatusCode),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return &models.FetchResult{
			Success:    false,
			Kind:       kind,
			StatusCode: resp.StatusCode,
			Error:      fmt.Sprintf("direct fetch read failed: %v", err),
		}
	}

	payload := &models.DirectPayload{
		Kind:        kind,
		ContentType: resp.Header.Get("Content-Type"),
	}

	switch kind {
	case models.KindJSON:
		if !json.Valid(body) {
			// Keep the raw text so the report can still show what came back.
			payload.Kind = models.KindText
			payload.Text = string(body)
		} else {
			payload.JSON = json.RawMessage(body)
		}
	case models.KindCSV, models.KindText, models.KindXML:
		payload.Text = string(body)
	default:
		payload.Bytes = body
	}

	return &models.FetchResult{
		Success:    true,
		Kind:       payload.Kind,
		Method:     models.MethodStatic,
		StatusCode: resp.StatusCode,
		FinalURL:   resp.Request.URL.String(),
		Payload:    payload,
	}
}
