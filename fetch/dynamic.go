package fetch

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// SPA markers. Each match adds 1 to the dynamic score.
var dynamicMarkers = []*regexp.Regexp{
	regexp.MustCompile(`(?i)<div[^>]+id=["']root["']`),
	regexp.MustCompile(`(?i)<div[^>]+id=["']app["']`),
	regexp.MustCompile(`(?i)react`),
	regexp.MustCompile(`(?i)vue`),
	regexp.MustCompile(`(?i)angular`),
	regexp.MustCompile(`(?i)__NEXT_DATA__`),
	regexp.MustCompile(`(?i)__NUXT__`),
}

// minBodyText is the visible-text length below which a page is assumed to
// be an SPA shell (adds 2 to the score).
const minBodyText = 100

// IsLikelyDynamic decides whether a statically fetched HTML body probably
// needs JavaScript rendering to show its real content. Pure heuristic, no
// I/O; callers must tolerate both false positives and false negatives by
// falling back to whichever fetch actually succeeded.
func IsLikelyDynamic(htmlStr string) bool {
	score := 0
	for _, re := range dynamicMarkers {
		if re.MatchString(htmlStr) {
			score++
		}
	}

	if len(visibleBodyText(htmlStr)) < minBodyText {
		score += 2
	}

	return score >= 2
}

// visibleBodyText extracts the visible text from within <body>, stripping
// all tags and script/style/noscript content. Used for heuristic analysis
// only, so it trades precision for speed (single tokenizer pass).
func visibleBodyText(htmlStr string) string {
	tokenizer := html.NewTokenizer(strings.NewReader(htmlStr))
	var buf strings.Builder
	inBody := false
	skipDepth := 0

	for {
		tt := tokenizer.Next()
		switch tt {
		case html.ErrorToken:
			return buf.String()
		case html.StartTagToken:
			tn, _ := tokenizer.TagName()
			tag := string(tn)
			if tag == "body" {
				inBody = true
			}
			if tag == "script" || tag == "style" || tag == "noscript" {
				skipDepth++
			}
		case html.EndTagToken:
			tn, _ := tokenizer.TagName()
			tag := string(tn)
			if tag == "script" || tag == "style" || tag == "noscript" {
				if skipDepth > 0 {
					skipDepth--
				}
			}
		case html.TextToken:
			if inBody && skipDepth == 0 {
				text := strings.TrimSpace(string(tokenizer.Text()))
				if text != "" {
					buf.WriteString(text)
					buf.WriteByte(' ')
				}
			}
		}
	}
}
