package report

import (
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/use-agent/quizpilot/models"
)

// Link categories, in the order they appear in the report. Submission
// candidates come first because they are what the generated code usually
// needs.
var linkCategories = []string{
	"Submission endpoints",
	"Data files",
	"API endpoints",
	"Media",
	"Other",
}

var dataFileExts = map[string]bool{
	".csv":  true,
	".json": true,
	".pdf":  true,
	".txt":  true,
	".xlsx": true,
	".xls":  true,
	".zip":  true,
	".xml":  true,
}

var mediaExts = map[string]bool{
	".mp3":  true,
	".wav":  true,
	".ogg":  true,
	".m4a":  true,
	".opus": true,
	".mp4":  true,
	".webm": true,
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
	".svg":  true,
}

func writeLinksSection(b *strings.Builder, rec *models.PageRecord) {
	b.WriteString("## SECTION 2: Links\n\n")

	if len(rec.Links) == 0 && len(rec.Images) == 0 {
		b.WriteString("No links found.\n\n")
		return
	}

	grouped := make(map[string][]models.Link)
	for _, l := range rec.Links {
		cat := categorizeLink(l)
		grouped[cat] = append(grouped[cat], l)
	}

	for _, cat := range linkCategories {
		links := grouped[cat]
		if len(links) == 0 {
			continue
		}

		fmt.Fprintf(b, "**%s:**\n", cat)
		shown := links
		omitted := 0
		if len(shown) > maxCategoryN {
			omitted = len(shown) - maxCategoryN
			shown = shown[:maxCategoryN]
		}
		for _, l := range shown {
			text := l.Text
			if text == "" {
				text = "(no text)"
			}
			fmt.Fprintf(b, "- [%s](%s)\n", escapeCell(text), l.Href)
		}
		if omitted > 0 {
			fmt.Fprintf(b, "- ... and %d more\n", omitted)
		}
		b.WriteString("\n")
	}

	if len(rec.Images) > 0 {
		b.WriteString("**Images:**\n")
		for _, img := range rec.Images {
			alt := img.Alt
			if alt == "" {
				alt = "(no alt)"
			}
			fmt.Fprintf(b, "- %s: %s\n", escapeCell(alt), img.Src)
		}
		b.WriteString("\n")
	}
}

func categorizeLink(l models.Link) string {
	lower := strings.ToLower(l.Href)

	if strings.Contains(lower, "submit") || strings.Contains(lower, "answer") {
		return "Submission endpoints"
	}

	ext := linkExt(l.Href)
	switch {
	case dataFileExts[ext]:
		return "Data files"
	case mediaExts[ext]:
		return "Media"
	}

	if strings.Contains(lower, "/api/") || strings.Contains(lower, "api.") {
		return "API endpoints"
	}
	return "Other"
}

func linkExt(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return strings.ToLower(path.Ext(href))
	}
	return strings.ToLower(path.Ext(u.Path))
}
