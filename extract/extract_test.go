package extract

import (
	"fmt"
	"strings"
	"testing"
)

func TestExtract_BasicPage(t *testing.T) {
	html := `<html><head>
<title> Quiz 7 </title>
<meta name="description" content="Answer the question below.">
</head><body>
<h1>Question</h1>
<p>What is 2 + 2?</p>
<script>var hidden = "secret";</script>
</body></html>`

	rec := Extract(html, "https://quiz.example.com/q/7")

	if rec.Title != "Quiz 7" {
		t.Errorf("Title = %q, want %q", rec.Title, "Quiz 7")
	}
	if rec.MetaDescription != "Answer the question below." {
		t.Errorf("MetaDescription = %q", rec.MetaDescription)
	}
	if !strings.Contains(rec.TextContent, "What is 2 + 2?") {
		t.Errorf("TextContent missing question: %q", rec.TextContent)
	}
	if strings.Contains(rec.TextContent, "secret") {
		t.Errorf("TextContent leaked script content: %q", rec.TextContent)
	}
	if len(rec.Headings) != 1 || rec.Headings[0].Level != 1 || rec.Headings[0].Text != "Question" {
		t.Errorf("Headings = %+v", rec.Headings)
	}
	if rec.HTMLLength != len(html) {
		t.Errorf("HTMLLength = %d, want %d", rec.HTMLLength, len(html))
	}
}

func TestExtract_LinkAbsolutization(t *testing.T) {
	html := `<html><body>
<a href="../c">relative</a>
<a href="/abs">rooted</a>
<a href="https://other.example.net/page">absolute</a>
<a href="mailto:team@example.com">mail</a>
<a href="tel:+15550100">phone</a>
<a href="javascript:void(0)">js</a>
<a href="#section">fragment</a>
</body></html>`

	rec := Extract(html, "https://x.com/a/b")

	want := []string{
		"https://x.com/c",
		"https://x.com/abs",
		"https://other.example.net/page",
		"mailto:team@example.com",
		"tel:+15550100",
		"javascript:void(0)",
		"https://x.com/a/b#section",
	}

	if len(rec.Links) != len(want) {
		t.Fatalf("got %d links, want %d: %+v", len(rec.Links), len(want), rec.Links)
	}
	for i, l := range rec.Links {
		if l.Href != want[i] {
			t.Errorf("link %d = %q, want %q", i, l.Href, want[i])
		}
	}
}

func TestExtract_DuplicateLinksKept(t *testing.T) {
	// Repetition is signal: a submit link that appears three times is
	// likelier to be the submission endpoint, so the order and count of
	// every anchor is preserved.
	html := `<html><body>
<a href="/submit">submit</a>
<a href="/other">other</a>
<a href="/submit">submit again</a>
<a href="/submit">and again</a>
</body></html>`

	rec := Extract(html, "https://x.com/")

	if len(rec.Links) != 4 {
		t.Fatalf("got %d links, want 4: %+v", len(rec.Links), rec.Links)
	}
	submits := 0
	for _, l := range rec.Links {
		if l.Href == "https://x.com/submit" {
			submits++
		}
	}
	if submits != 3 {
		t.Errorf("got %d duplicate submit links, want 3", submits)
	}
}

func TestExtract_LinkCap(t *testing.T) {
	var b strings.Builder
	b.WriteString("<html><body>")
	for i := 0; i < 80; i++ {
		fmt.Fprintf(&b, `<a href="/p/%d">link %d</a>`, i, i)
	}
	b.WriteString("</body></html>")

	rec := Extract(b.String(), "https://x.com/")
	if len(rec.Links) != 50 {
		t.Errorf("got %d links, want cap of 50", len(rec.Links))
	}
}

func TestExtract_ImageDataURIKeptVerbatim(t *testing.T) {
	html := `<html><body>
<img src="data:image/png;base64,iVBORw0KGgo=" alt="inline">
<img src="/logo.png" alt="logo">
</body></html>`

	rec := Extract(html, "https://x.com/page")

	if len(rec.Images) != 2 {
		t.Fatalf("got %d images, want 2", len(rec.Images))
	}
	found := map[string]bool{}
	for _, img := range rec.Images {
		found[img.Src] = true
	}
	if !found["data:image/png;base64,iVBORw0KGgo="] {
		t.Error("data URI was rewritten")
	}
	if !found["https://x.com/logo.png"] {
		t.Error("relative src was not absolutized")
	}
}

func TestExtract_JSONLD(t *testing.T) {
	html := `<html><head>
<script type="application/ld+json">{"@type":"Quiz","name":"Q1"}</script>
<script type="application/ld+json">{not valid json</script>
<script type="application/ld+json">[{"@type":"Question"}]</script>
</head><body></body></html>`

	rec := Extract(html, "https://x.com/")

	if len(rec.StructuredData) != 2 {
		t.Fatalf("got %d JSON-LD blocks, want 2 (invalid one skipped)", len(rec.StructuredData))
	}
}

func TestExtract_AudioElements(t *testing.T) {
	html := `<html><body>
<audio src="/clips/question.mp3" controls></audio>
<audio><source src="fallback.ogg" type="audio/ogg"></audio>
<audio></audio>
</body></html>`

	rec := Extract(html, "https://quiz.example.com/q/1")

	if len(rec.AudioElements) != 2 {
		t.Fatalf("got %d audio elements, want 2: %+v", len(rec.AudioElements), rec.AudioElements)
	}
	if rec.AudioElements[0].Src != "https://quiz.example.com/clips/question.mp3" {
		t.Errorf("first src = %q", rec.AudioElements[0].Src)
	}
	if !rec.AudioElements[0].HasControls {
		t.Error("first element should report controls")
	}
	if rec.AudioElements[1].Src != "https://quiz.example.com/q/fallback.ogg" {
		t.Errorf("source fallback src = %q", rec.AudioElements[1].Src)
	}
}

func TestExtract_NeverFails(t *testing.T) {
	inputs := []string{
		"",
		"not html at all",
		"<html><body><div><p>unclosed",
		strings.Repeat("<div>", 500),
	}

	for _, in := range inputs {
		rec := Extract(in, "https://x.com/")
		if rec == nil {
			t.Fatalf("Extract returned nil for %q", in)
		}
		if rec.Links == nil || rec.Tables == nil || rec.StructuredData == nil {
			t.Errorf("collections must be non-nil for %q", in)
		}
	}
}

func TestExtract_BadBaseURLStillWorks(t *testing.T) {
	html := `<html><body><a href="/x">x</a></body></html>`
	rec := Extract(html, "://not-a-url")

	if len(rec.Links) != 1 {
		t.Fatalf("got %d links, want 1", len(rec.Links))
	}
	if rec.Links[0].Href != "/x" {
		t.Errorf("href should stay relative when base is unparseable, got %q", rec.Links[0].Href)
	}
}
