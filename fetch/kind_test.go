package fetch

import (
	"fmt"
	"testing"

	"github.com/use-agent/quizpilot/models"
)

func TestKindFromContentType(t *testing.T) {
	cases := []struct {
		ct   string
		want models.ContentKind
	}{
		{"text/html; charset=utf-8", models.KindWebpage},
		{"application/json", models.KindJSON},
		{"application/ld+json", models.KindJSON},
		{"text/csv", models.KindCSV},
		{"application/pdf", models.KindPDF},
		{"image/png", models.KindImage},
		{"audio/mpeg", models.KindAudio},
		{"video/mp4", models.KindVideo},
		{"text/plain", models.KindText},
		{"application/xml", models.KindXML},
		{"application/rss+xml", models.KindXML},
		{"application/octet-stream", models.KindWebpage},
		{"", models.KindWebpage},
	}

	for _, tc := range cases {
		t.Run(tc.ct, func(t *testing.T) {
			if got := kindFromContentType(tc.ct); got != tc.want {
				t.Errorf("kindFromContentType(%q) = %s, want %s", tc.ct, got, tc.want)
			}
		})
	}
}

func TestKindFromPath(t *testing.T) {
	cases := []struct {
		url  string
		want models.ContentKind
	}{
		{"https://example.com/data.csv", models.KindCSV},
		{"https://example.com/doc.pdf?download=1", models.KindPDF},
		{"https://example.com/audio.MP3", models.KindAudio},
		{"https://example.com/page", models.KindWebpage},
		{"https://example.com/api/items.json", models.KindJSON},
	}

	for _, tc := range cases {
		if got := kindFromPath(tc.url); got != tc.want {
			t.Errorf("kindFromPath(%q) = %s, want %s", tc.url, got, tc.want)
		}
	}
}

func TestKindCache_BoundedEviction(t *testing.T) {
	c := newKindCache(10)

	for i := 0; i < 100; i++ {
		c.set(fmt.Sprintf("https://example.com/%d", i), models.KindJSON)
	}

	c.mu.Lock()
	size := len(c.store)
	c.mu.Unlock()

	if size > 10 {
		t.Errorf("cache grew past its bound: %d entries", size)
	}
}

func TestKindCache_RoundTrip(t *testing.T) {
	c := newKindCache(10)

	if _, ok := c.get("https://example.com/x"); ok {
		t.Error("empty cache reported a hit")
	}

	c.set("https://example.com/x", models.KindAudio)
	k, ok := c.get("https://example.com/x")
	if !ok || k != models.KindAudio {
		t.Errorf("get after set = (%s, %v), want (audio, true)", k, ok)
	}
}
