package report

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/use-agent/quizpilot/models"
)

// maxDirectText caps how much of a direct text payload the report embeds.
const maxDirectText = 20000

// FormatDirect renders a report for a non-webpage payload: the JSON
// document, CSV text, an audio transcription or a binary summary,
// depending on kind. transcription is non-nil only for audio payloads.
func FormatDirect(rawURL string, res *models.FetchResult, transcription *models.AudioTranscription) string {
	var b strings.Builder

	b.WriteString("# Direct Content Analysis\n\n")
	fmt.Fprintf(&b, "**URL:** %s\n", rawURL)
	fmt.Fprintf(&b, "**Content kind:** %s\n", res.Kind)
	if res.Payload != nil && res.Payload.ContentType != "" {
		fmt.Fprintf(&b, "**Content-Type:** %s\n", res.Payload.ContentType)
	}
	writeQueryParams(&b, rawURL)
	b.WriteString("\n")

	if res.Payload == nil {
		b.WriteString("No payload was retrieved.\n")
		return b.String()
	}

	switch {
	case transcription != nil:
		b.WriteString("## Audio Transcription\n\n")
		fmt.Fprintf(&b, "- %s [%s]:\n  %s\n", transcription.URL, transcription.Status, transcription.Transcription)
		b.WriteString("\nThe transcription above is the spoken content of the audio file at the URL.\n")

	case res.Payload.JSON != nil:
		b.WriteString("## JSON Document\n\n```json\n")
		var doc any
		if err := json.Unmarshal(res.Payload.JSON, &doc); err == nil {
			if out, err := json.MarshalIndent(doc, "", "  "); err == nil {
				b.Write(out)
			} else {
				b.Write(res.Payload.JSON)
			}
		} else {
			b.Write(res.Payload.JSON)
		}
		b.WriteString("\n```\n")

	case res.Payload.Text != "":
		fmt.Fprintf(&b, "## %s Content\n\n", strings.ToUpper(res.Kind.String()))
		text := res.Payload.Text
		omitted := 0
		if len(text) > maxDirectText {
			omitted = len(text) - maxDirectText
			text = text[:maxDirectText]
		}
		b.WriteString("```\n")
		b.WriteString(text)
		b.WriteString("\n```\n")
		if omitted > 0 {
			fmt.Fprintf(&b, "\n*(%d characters omitted)*\n", omitted)
		}

	default:
		b.WriteString("## Binary Content\n\n")
		fmt.Fprintf(&b, "Binary payload of %d bytes. ", len(res.Payload.Bytes))
		b.WriteString("The content cannot be inlined; generated code should download the URL directly.\n")
	}

	return b.String()
}

// FormatFailure renders a report for a fetch that produced no content, so
// the generator can still attempt a blind submission or a retry strategy.
func FormatFailure(rawURL string, res *models.FetchResult) string {
	var b strings.Builder

	b.WriteString("# Fetch Failure\n\n")
	fmt.Fprintf(&b, "**URL:** %s\n", rawURL)
	if res.StatusCode != 0 {
		fmt.Fprintf(&b, "**Status code:** %d\n", res.StatusCode)
	}
	fmt.Fprintf(&b, "**Error:** %s\n", res.Error)
	writeQueryParams(&b, rawURL)
	b.WriteString("\nNo page content is available. The URL itself and its query parameters are the only inputs.\n")

	return b.String()
}
