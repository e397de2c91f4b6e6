package extract

import (
	"encoding/json"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/use-agent/quizpilot/models"
)

// Extract parses rendered HTML into a PageRecord. It never fails: a page
// that cannot be parsed still yields a record carrying the raw HTML, so
// the report always has something to show.
//
// Audio elements and JSON-LD blocks are collected before the noise strip
// because both live in subtrees the strip removes or that scripts mutate.
func Extract(rawHTML, pageURL string) *models.PageRecord {
	rec := &models.PageRecord{
		URL:                 pageURL,
		Links:               []models.Link{},
		Images:              []models.Image{},
		Headings:            []models.Heading{},
		Tables:              []models.Table{},
		StructuredData:      []json.RawMessage{},
		AudioElements:       []models.AudioElement{},
		AudioTranscriptions: []models.AudioTranscription{},
		HTMLLength:          len(rawHTML),
		RawHTML:             rawHTML,
	}

	base, baseErr := url.Parse(pageURL)
	if baseErr != nil {
		base = nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		rec.TextContent = rawHTML
		return rec
	}

	rec.AudioElements = extractAudio(doc, base)
	rec.StructuredData = extractJSONLD(doc)

	doc.FindMatcher(selNoise).Remove()

	rec.Title = strings.TrimSpace(doc.Find("title").First().Text())
	if desc, ok := doc.FindMatcher(selMetaDesc).First().Attr("content"); ok {
		rec.MetaDescription = strings.TrimSpace(desc)
	}

	rec.TextContent = documentText(doc)
	rec.Links = extractLinks(doc, base)
	rec.Images = extractImages(doc, base)
	rec.Headings = extractHeadings(doc)
	rec.Tables = extractTables(doc)

	addReadableContent(rec, rawHTML, pageURL)

	return rec
}

// documentText walks the document depth-first and joins the trimmed text
// nodes with newlines. Script/style/noscript subtrees are already gone by
// the time this runs.
func documentText(doc *goquery.Document) string {
	root := doc.Find("body")
	if root.Length() == 0 {
		root = doc.Selection
	}

	var parts []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				parts = append(parts, t)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range root.Nodes {
		walk(n)
	}
	return strings.Join(parts, "\n")
}

// extractLinks resolves hrefs against the page URL and keeps the first
// MaxLinks in document order, duplicates included. mailto:, tel: and
// javascript: hrefs are kept verbatim; the rest are absolutized, with
// unparseable hrefs dropped.
func extractLinks(doc *goquery.Document, base *url.URL) []models.Link {
	links := []models.Link{}

	doc.FindMatcher(selAnchors).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" {
			return true
		}

		if !hasOpaqueScheme(href) && base != nil {
			resolved, err := base.Parse(href)
			if err != nil {
				return true
			}
			href = resolved.String()
		}

		links = append(links, models.Link{
			Text: strings.TrimSpace(s.Text()),
			Href: href,
		})
		return len(links) < models.MaxLinks
	})

	return links
}

// extractImages resolves img srcs against the page URL and keeps the
// first MaxImages. data: URIs are kept verbatim.
func extractImages(doc *goquery.Document, base *url.URL) []models.Image {
	images := []models.Image{}
	seen := make(map[string]struct{})

	doc.FindMatcher(selImages).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		src, _ := s.Attr("src")
		src = strings.TrimSpace(src)
		if src == "" {
			return true
		}

		if !strings.HasPrefix(src, "data:") && base != nil {
			resolved, err := base.Parse(src)
			if err != nil {
				return true
			}
			src = resolved.String()
		}

		if _, ok := seen[src]; ok {
			return true
		}
		seen[src] = struct{}{}

		alt, _ := s.Attr("alt")
		images = append(images, models.Image{
			Alt: strings.TrimSpace(alt),
			Src: src,
		})
		return len(images) < models.MaxImages
	})

	return images
}

func extractHeadings(doc *goquery.Document) []models.Heading {
	headings := []models.Heading{}
	doc.FindMatcher(selHeadings).Each(func(_ int, s *goquery.Selection) {
		tag := goquery.NodeName(s)
		if len(tag) != 2 {
			return
		}
		level := int(tag[1] - '0')
		if level < 1 || level > 6 {
			return
		}
		headings = append(headings, models.Heading{
			Level: level,
			Text:  strings.TrimSpace(s.Text()),
		})
	})
	return headings
}

// extractJSONLD collects every script[type="application/ld+json"] block
// that parses as JSON. Invalid blocks are skipped silently.
func extractJSONLD(doc *goquery.Document) []json.RawMessage {
	blocks := []json.RawMessage{}
	doc.FindMatcher(selJSONLD).Each(func(_ int, s *goquery.Selection) {
		raw := strings.TrimSpace(s.Text())
		if raw == "" || !json.Valid([]byte(raw)) {
			return
		}
		blocks = append(blocks, json.RawMessage(raw))
	})
	return blocks
}

// extractAudio finds <audio> elements, taking the src attribute or the
// first <source> child. Runs before the noise strip.
func extractAudio(doc *goquery.Document, base *url.URL) []models.AudioElement {
	elements := []models.AudioElement{}
	seen := make(map[string]struct{})

	doc.FindMatcher(selAudio).Each(func(_ int, s *goquery.Selection) {
		src, ok := s.Attr("src")
		if !ok || strings.TrimSpace(src) == "" {
			src, _ = s.Find("source[src]").First().Attr("src")
		}
		src = strings.TrimSpace(src)
		if src == "" {
			return
		}

		if base != nil {
			if resolved, err := base.Parse(src); err == nil {
				src = resolved.String()
			}
		}

		if _, dup := seen[src]; dup {
			return
		}
		seen[src] = struct{}{}

		_, hasControls := s.Attr("controls")
		elements = append(elements, models.AudioElement{
			Src:         src,
			HasControls: hasControls,
		})
	})

	return elements
}

// hasOpaqueScheme reports whether the href uses a scheme that must not be
// resolved against the page URL.
func hasOpaqueScheme(href string) bool {
	lower := strings.ToLower(href)
	return strings.HasPrefix(lower, "mailto:") ||
		strings.HasPrefix(lower, "tel:") ||
		strings.HasPrefix(lower, "javascript:")
}
