package models

import "encoding/json"

// Bounded-size contract for extracted collections. These caps bound the
// markdown report the LLM consumes; they do not affect correctness.
const (
	MaxLinks  = 50
	MaxImages = 20
)

// Link is a hyperlink extracted from the page, href resolved against the
// page URL unless the scheme is mailto:, tel: or javascript:.
type Link struct {
	Text string `json:"text"`
	Href string `json:"href"`
}

// Image is an image element, src resolved against the page URL.
type Image struct {
	Alt string `json:"alt"`
	Src string `json:"src"`
}

// Heading is an h1..h6 element in document order.
type Heading struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
}

// Table is one HTML table. A table appears in PageRecord.Tables only if it
// has at least one header or one row.
type Table struct {
	Index   int        `json:"table_index"` // 1-based
	Caption string     `json:"caption,omitempty"`
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// AudioElement is an <audio> element discovered before script stripping.
type AudioElement struct {
	Src         string `json:"src"`
	HasControls bool   `json:"has_controls"`
}

// Transcription statuses.
const (
	TranscriptionSuccess = "success"
	TranscriptionFailed  = "failed"
)

// AudioTranscription is the speech-to-text result for one audio element,
// reported in the same order the elements were discovered.
type AudioTranscription struct {
	URL           string `json:"url"`
	Transcription string `json:"transcription"`
	Status        string `json:"status"` // "success" or "failed"
}

// PageRecord is the normalized output of one successful fetch+parse.
// It is immutable after construction and owned by the orchestration loop
// for the duration of one quiz step.
type PageRecord struct {
	URL             string `json:"url"`
	Title           string `json:"title,omitempty"`
	MetaDescription string `json:"meta_description,omitempty"`

	// TextContent is the visible text: depth-first text-node concatenation,
	// newline-separated, trimmed per node, with script/style/noscript
	// subtrees removed.
	TextContent string `json:"text_content"`

	Links    []Link    `json:"links"`    // first MaxLinks
	Images   []Image   `json:"images"`   // first MaxImages
	Headings []Heading `json:"headings"` // document order
	Tables   []Table   `json:"tables"`

	// StructuredData holds each valid JSON-LD block; invalid blocks are
	// skipped during extraction.
	StructuredData []json.RawMessage `json:"structured_data"`

	HTMLLength int    `json:"html_length"`
	RawHTML    string `json:"-"`

	AudioElements       []AudioElement       `json:"audio_elements"`
	AudioTranscriptions []AudioTranscription `json:"audio_transcriptions"`

	// Excerpt is the readability summary of the main content; empty when
	// the readability pass found nothing usable.
	Excerpt string `json:"excerpt,omitempty"`

	// ContentMarkdown is the page body converted to markdown for the
	// report's readable-content block; empty on conversion failure.
	ContentMarkdown string `json:"-"`
}
