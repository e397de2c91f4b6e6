package extract

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/use-agent/quizpilot/models"
)

// Transcriber converts an audio file into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audioURL string) (string, error)
}

// TranscribeAudio runs speech-to-text over the record's audio elements
// with bounded concurrency and stores the results in discovery order.
// A failed transcription becomes a placeholder entry instead of aborting
// the batch: one broken audio file must not cost the page its report.
func TranscribeAudio(ctx context.Context, rec *models.PageRecord, tr Transcriber, workers int) {
	if tr == nil || len(rec.AudioElements) == 0 {
		return
	}
	if workers <= 0 {
		workers = 3
	}

	results := make([]models.AudioTranscription, len(rec.AudioElements))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, el := range rec.AudioElements {
		g.Go(func() error {
			text, err := tr.Transcribe(gctx, el.Src)
			if err != nil {
				slog.Warn("audio transcription failed", "url", el.Src, "error", err)
				results[i] = models.AudioTranscription{
					URL:           el.Src,
					Transcription: fmt.Sprintf("[Error transcribing audio: %v]", err),
					Status:        models.TranscriptionFailed,
				}
				return nil
			}
			results[i] = models.AudioTranscription{
				URL:           el.Src,
				Transcription: text,
				Status:        models.TranscriptionSuccess,
			}
			return nil
		})
	}

	// Workers never return errors, so Wait only synchronises.
	_ = g.Wait()

	rec.AudioTranscriptions = results
}
