package extract

import (
	"log/slog"
	nurl "net/url"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	readability "github.com/go-shiori/go-readability"

	"github.com/use-agent/quizpilot/models"
)

// minReadableLength is the minimum readability TextContent length for the
// extraction to be trusted. Below this the algorithm probably missed the
// main content and the record keeps only the plain text walk.
const minReadableLength = 50

// mdConverter is created once and reused; the converter is goroutine-safe.
var mdConverter = converter.NewConverter(
	converter.WithPlugins(
		base.NewBasePlugin(),
		commonmark.NewCommonmarkPlugin(),
		table.NewTablePlugin(
			table.WithCellPaddingBehavior(table.CellPaddingBehaviorMinimal),
		),
	),
)

// addReadableContent runs the readability pass and fills the record's
// Excerpt and ContentMarkdown. Both stay empty on any failure; the record
// is still usable without them.
func addReadableContent(rec *models.PageRecord, rawHTML, pageURL string) {
	parsedURL, err := nurl.Parse(pageURL)
	if err != nil {
		return
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), parsedURL)
	if err != nil {
		slog.Debug("readability extraction failed", "url", pageURL, "error", err)
		return
	}
	if len(strings.TrimSpace(article.TextContent)) < minReadableLength {
		slog.Debug("readability content too short, skipping", "url", pageURL, "length", len(article.TextContent))
		return
	}

	markdown, err := mdConverter.ConvertString(article.Content, converter.WithDomain(pageURL))
	if err != nil {
		slog.Debug("markdown conversion failed", "url", pageURL, "error", err)
		markdown = ""
	}

	rec.Excerpt = strings.TrimSpace(article.Excerpt)
	rec.ContentMarkdown = strings.TrimSpace(markdown)
}
