// Package report renders a PageRecord into the markdown document the code
// generator consumes. Formatting is pure: same record in, same text out,
// no I/O and no clock. Every truncation states how much was omitted so
// the reader knows the view is partial.
package report

import (
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/use-agent/quizpilot/models"
)

// Caps on report payload size.
const (
	maxTextChars  = 15000
	maxRawHTML    = 150000
	maxTableRows  = 30
	maxCategoryN  = 15
	maxStructured = 10
)

// sensitiveParams are query keys called out in the header because they
// usually identify the quiz taker or carry a submission credential.
var sensitiveParams = map[string]bool{
	"email":  true,
	"id":     true,
	"secret": true,
	"token":  true,
	"key":    true,
	"code":   true,
}

// Format renders a full page report.
func Format(rec *models.PageRecord, method models.FetchMethod) string {
	var b strings.Builder

	writeHeader(&b, rec, method)

	if rec.ContentMarkdown != "" {
		b.WriteString("## Readable Content\n\n")
		b.WriteString(rec.ContentMarkdown)
		b.WriteString("\n\n")
	}

	writeTextSection(&b, rec)
	writeLinksSection(&b, rec)
	writeTablesSection(&b, rec)
	writeAudioSection(&b, rec)
	writeStructuredSection(&b, rec)
	writeRawHTMLSection(&b, rec)

	return b.String()
}

func writeHeader(b *strings.Builder, rec *models.PageRecord, method models.FetchMethod) {
	b.WriteString("# Quiz Page Analysis\n\n")
	fmt.Fprintf(b, "**URL:** %s\n", rec.URL)
	fmt.Fprintf(b, "**Fetch method:** %s\n", method)
	if rec.Title != "" {
		fmt.Fprintf(b, "**Title:** %s\n", rec.Title)
	}
	if rec.MetaDescription != "" {
		fmt.Fprintf(b, "**Description:** %s\n", rec.MetaDescription)
	}
	if rec.Excerpt != "" {
		fmt.Fprintf(b, "**Excerpt:** %s\n", rec.Excerpt)
	}

	fmt.Fprintf(b, "**Statistics:** %d links, %d images, %d tables, %d audio elements, %d characters of text\n",
		len(rec.Links), len(rec.Images), len(rec.Tables), len(rec.AudioElements), len(rec.TextContent))

	writeQueryParams(b, rec.URL)
	b.WriteString("\n")
}

// writeQueryParams decomposes the page URL's query string. Parameters with
// identifying names are flagged: generated code almost always needs to
// echo them back in its submission.
func writeQueryParams(b *strings.Builder, rawURL string) {
	u, err := url.Parse(rawURL)
	if err != nil || u.RawQuery == "" {
		return
	}

	values, err := url.ParseQuery(u.RawQuery)
	if err != nil {
		return
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	b.WriteString("\n**Query parameters:**\n")
	for _, k := range keys {
		for _, v := range values[k] {
			if sensitiveParams[strings.ToLower(k)] {
				fmt.Fprintf(b, "- `%s` = `%s` (IMPORTANT: likely needed in the submission)\n", k, v)
			} else {
				fmt.Fprintf(b, "- `%s` = `%s`\n", k, v)
			}
		}
	}
}

func writeTextSection(b *strings.Builder, rec *models.PageRecord) {
	b.WriteString("## SECTION 1: Page Text Content\n\n")

	if len(rec.Headings) > 0 {
		b.WriteString("**Headings:**\n")
		for _, h := range rec.Headings {
			fmt.Fprintf(b, "- %s %s\n", strings.Repeat("#", h.Level), h.Text)
		}
		b.WriteString("\n")
	}

	text := rec.TextContent
	omitted := 0
	if len(text) > maxTextChars {
		omitted = len(text) - maxTextChars
		text = text[:maxTextChars]
	}

	b.WriteString("```\n")
	b.WriteString(text)
	b.WriteString("\n```\n")
	if omitted > 0 {
		fmt.Fprintf(b, "\n*(%d characters omitted)*\n", omitted)
	}
	b.WriteString("\n")
}

func writeTablesSection(b *strings.Builder, rec *models.PageRecord) {
	b.WriteString("## SECTION 3: Tables\n\n")
	if len(rec.Tables) == 0 {
		b.WriteString("No tables found.\n\n")
		return
	}

	for _, t := range rec.Tables {
		fmt.Fprintf(b, "### Table %d", t.Index)
		if t.Caption != "" {
			fmt.Fprintf(b, ": %s", t.Caption)
		}
		b.WriteString("\n\n")
		writeMarkdownTable(b, t)
		b.WriteString("\n")
	}
}

func writeMarkdownTable(b *strings.Builder, t models.Table) {
	width := len(t.Headers)
	for _, r := range t.Rows {
		if len(r) > width {
			width = len(r)
		}
	}
	if width == 0 {
		return
	}

	headers := padRow(t.Headers, width)
	b.WriteString("| " + strings.Join(headers, " | ") + " |\n")
	b.WriteString("|" + strings.Repeat(" --- |", width) + "\n")

	rows := t.Rows
	omitted := 0
	if len(rows) > maxTableRows {
		omitted = len(rows) - maxTableRows
		rows = rows[:maxTableRows]
	}
	for _, r := range rows {
		b.WriteString("| " + strings.Join(padRow(r, width), " | ") + " |\n")
	}
	if omitted > 0 {
		fmt.Fprintf(b, "\n*(%d rows omitted)*\n", omitted)
	}
}

func padRow(cells []string, width int) []string {
	out := make([]string, width)
	for i := range out {
		if i < len(cells) {
			out[i] = escapeCell(cells[i])
		}
	}
	return out
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	return strings.ReplaceAll(s, "\n", " ")
}

func writeAudioSection(b *strings.Builder, rec *models.PageRecord) {
	b.WriteString("## SECTION 4: Audio\n\n")
	if len(rec.AudioElements) == 0 {
		b.WriteString("No audio elements found.\n\n")
		return
	}

	for i, el := range rec.AudioElements {
		fmt.Fprintf(b, "%d. %s", i+1, el.Src)
		if el.HasControls {
			b.WriteString(" (controls)")
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if len(rec.AudioTranscriptions) > 0 {
		b.WriteString("**Transcriptions:**\n\n")
		for _, tr := range rec.AudioTranscriptions {
			fmt.Fprintf(b, "- %s [%s]:\n  %s\n", tr.URL, tr.Status, tr.Transcription)
		}
		b.WriteString("\n")
	}
}

func writeStructuredSection(b *strings.Builder, rec *models.PageRecord) {
	b.WriteString("## SECTION 5: Structured Data\n\n")
	if len(rec.StructuredData) == 0 {
		b.WriteString("No JSON-LD blocks found.\n\n")
		return
	}

	blocks := rec.StructuredData
	omitted := 0
	if len(blocks) > maxStructured {
		omitted = len(blocks) - maxStructured
		blocks = blocks[:maxStructured]
	}

	for i, raw := range blocks {
		fmt.Fprintf(b, "### Block %d\n\n```json\n", i+1)
		var pretty map[string]any
		if err := json.Unmarshal(raw, &pretty); err == nil {
			if out, err := json.MarshalIndent(pretty, "", "  "); err == nil {
				b.Write(out)
			} else {
				b.Write(raw)
			}
		} else {
			// Arrays and scalars pass through as-is.
			b.Write(raw)
		}
		b.WriteString("\n```\n\n")
	}
	if omitted > 0 {
		fmt.Fprintf(b, "*(%d blocks omitted)*\n\n", omitted)
	}
}

func writeRawHTMLSection(b *strings.Builder, rec *models.PageRecord) {
	b.WriteString("## SECTION 6: Raw HTML\n\n")

	writePatternHints(b, rec.RawHTML)

	html := rec.RawHTML
	omitted := 0
	if len(html) > maxRawHTML {
		omitted = len(html) - maxRawHTML
		html = html[:maxRawHTML]
	}

	fmt.Fprintf(b, "Total length: %d characters.\n\n", rec.HTMLLength)
	b.WriteString("```html\n")
	b.WriteString(html)
	b.WriteString("\n```\n")
	if omitted > 0 {
		fmt.Fprintf(b, "\n*(%d characters omitted)*\n", omitted)
	}
}

// writePatternHints points the reader at mechanisms hidden in the markup
// that the text walk cannot surface.
func writePatternHints(b *strings.Builder, html string) {
	lower := strings.ToLower(html)

	var hints []string
	if strings.Contains(lower, "<form") {
		hints = append(hints, "contains a <form> element; inspect its action and inputs")
	}
	if strings.Contains(lower, `type="hidden"`) || strings.Contains(lower, "type='hidden'") {
		hints = append(hints, "contains hidden input fields; their values may be required for submission")
	}
	if strings.Contains(lower, "fetch(") || strings.Contains(lower, "xmlhttprequest") || strings.Contains(lower, "axios") {
		hints = append(hints, "scripts issue AJAX requests; the quiz data or submission endpoint may be loaded at runtime")
	}
	if strings.Contains(lower, "atob(") || strings.Contains(lower, "base64") {
		hints = append(hints, "Base64 decoding present; content may be encoded in the markup")
	}
	if strings.Contains(lower, "json.parse") {
		hints = append(hints, "scripts parse embedded JSON; look for inline data blobs")
	}

	if len(hints) == 0 {
		return
	}
	b.WriteString("**Patterns detected:**\n")
	for _, h := range hints {
		b.WriteString("- " + h + "\n")
	}
	b.WriteString("\n")
}
