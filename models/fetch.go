package models

import "encoding/json"

// FetchMethod identifies how a page was retrieved.
type FetchMethod string

const (
	// MethodStatic means a plain HTTP GET returned the HTML.
	MethodStatic FetchMethod = "static"

	// MethodDynamic means the page was rendered in a browser session.
	MethodDynamic FetchMethod = "dynamic"

	// MethodStaticFallback means the dynamic render failed and the earlier
	// static result was used instead.
	MethodStaticFallback FetchMethod = "static (fallback)"
)

// ContentKind classifies a URL's payload before it is fetched in full.
// The set is closed: every fetch resolves to exactly one variant, with
// KindWebpage as the default when nothing better is known.
type ContentKind int

const (
	KindWebpage ContentKind = iota
	KindJSON
	KindCSV
	KindPDF
	KindImage
	KindAudio
	KindVideo
	KindText
	KindXML
)

var kindNames = map[ContentKind]string{
	KindWebpage: "webpage",
	KindJSON:    "json",
	KindCSV:     "csv",
	KindPDF:     "pdf",
	KindImage:   "image",
	KindAudio:   "audio",
	KindVideo:   "video",
	KindText:    "text",
	KindXML:     "xml",
}

func (k ContentKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "webpage"
}

// FetchResult is the outcome of one network fetch. Exactly one of HTML (or
// Payload for non-webpage kinds) and Error is populated; callers always
// receive a result object, never a panic or a raw transport error.
type FetchResult struct {
	Success    bool
	Kind       ContentKind
	Method     FetchMethod
	StatusCode int
	FinalURL   string

	// HTML carries the page source for KindWebpage results.
	HTML string

	// Payload carries the type-specific body for non-webpage kinds:
	// decoded JSON for KindJSON, text for KindCSV/KindText/KindXML,
	// raw bytes otherwise.
	Payload *DirectPayload

	// Error is a human-readable failure description, set iff !Success.
	// ErrorCode, when set, carries the matching taxonomy code (e.g.
	// INVALID_URL); callers fall back to FETCH_FAILED when it is empty.
	Error     string
	ErrorCode string
}

// DirectPayload holds the body of a non-webpage fetch.
type DirectPayload struct {
	Kind        ContentKind
	ContentType string

	// JSON is set for KindJSON (the decoded document).
	JSON json.RawMessage

	// Text is set for KindCSV, KindText and KindXML.
	Text string

	// Bytes is set for binary kinds (pdf, image, audio, video).
	Bytes []byte
}
