package solver

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/use-agent/quizpilot/models"
)

// verdictMarkers are the stdout prefixes a generated script may use for
// its submission response, in priority order. The decorated variants come
// first so a script that prints both decorated and plain lines resolves
// to the decorated one.
var verdictMarkers = []string{
	"\U0001F4E5 Submission response:",
	"Submission response:",
	"\U0001F4E5 Response:",
	"Response:",
	"Server response:",
	"submission response:",
}

var (
	// Matches a JSON object with at most one level of nesting.
	jsonObjectRe = regexp.MustCompile(`\{[^{}]*(?:\{[^{}]*\}[^{}]*)*\}`)

	// Last-resort scan for any flat object mentioning "correct".
	correctObjectRe = regexp.MustCompile(`\{[^{}]*["']correct["'][^{}]*\}`)
)

// ParseVerdict recovers the submission verdict from script stdout.
//
// Recovery proceeds from strict to forgiving: the first line after a
// known marker as JSON, then the same line with Python literals coerced
// to JSON, then any JSON object in the marked segment, and finally any
// object mentioning "correct" anywhere in the output (last occurrence
// wins, matching a script that retries and prints several responses).
// When nothing parses, the zero verdict is returned.
func ParseVerdict(stdout string) models.SubmissionVerdict {
	segment := markedSegment(stdout)

	if segment != "" {
		if line := firstNonEmptyLine(segment); line != "" {
			if v, ok := parseObject(line); ok {
				return v
			}
		}
		if m := jsonObjectRe.FindString(segment); m != "" {
			if v, ok := parseObject(m); ok {
				return v
			}
		}
	}

	matches := correctObjectRe.FindAllString(stdout, -1)
	for i := len(matches) - 1; i >= 0; i-- {
		if v, ok := parseObject(matches[i]); ok {
			return v
		}
	}

	return models.SubmissionVerdict{}
}

// markedSegment returns everything after the highest-priority marker
// present in the output, or "" when no marker is found.
func markedSegment(stdout string) string {
	for _, marker := range verdictMarkers {
		if idx := strings.Index(stdout, marker); idx >= 0 {
			return stdout[idx+len(marker):]
		}
	}
	return ""
}

func firstNonEmptyLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if t := strings.TrimSpace(line); t != "" {
			return t
		}
	}
	return ""
}

// parseObject decodes a candidate object as JSON, retrying with Python
// literal syntax coerced to JSON (single quotes, True/False/None).
func parseObject(candidate string) (models.SubmissionVerdict, bool) {
	var m map[string]any
	if err := json.Unmarshal([]byte(candidate), &m); err != nil {
		coerced := pythonToJSON(candidate)
		if err := json.Unmarshal([]byte(coerced), &m); err != nil {
			return models.SubmissionVerdict{}, false
		}
	}
	return verdictFromMap(m), true
}

func pythonToJSON(s string) string {
	s = strings.ReplaceAll(s, "'", `"`)
	s = strings.ReplaceAll(s, "True", "true")
	s = strings.ReplaceAll(s, "False", "false")
	s = strings.ReplaceAll(s, "None", "null")
	return s
}

func verdictFromMap(m map[string]any) models.SubmissionVerdict {
	v := models.SubmissionVerdict{}

	if raw, ok := m["correct"]; ok {
		switch c := raw.(type) {
		case bool:
			v.Correct = &c
		case string:
			if b, err := strconv.ParseBool(strings.ToLower(c)); err == nil {
				v.Correct = &b
			}
		}
	}

	if reason := stringField(m, "reason", "message"); reason != "" {
		v.Reason = reason
	}
	v.NextURL = stringField(m, "url", "nextUrl", "next_url")

	if raw, ok := m["delay"]; ok {
		switch d := raw.(type) {
		case float64:
			v.DelaySeconds = d
		case string:
			if f, err := strconv.ParseFloat(d, 64); err == nil {
				v.DelaySeconds = f
			}
		}
	}

	return v
}

func stringField(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if raw, ok := m[k]; ok {
			if s, ok := raw.(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
	}
	return ""
}
