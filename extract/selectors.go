package extract

import "github.com/andybalholm/cascadia"

// Compiled once at package load; cascadia.Selector satisfies
// goquery.Matcher, so these plug straight into FindMatcher without
// re-parsing the selector per document.
var (
	selAudio      = cascadia.MustCompile("audio")
	selNoise      = cascadia.MustCompile("script, style, noscript")
	selMetaDesc   = cascadia.MustCompile(`meta[name="description"]`)
	selJSONLD     = cascadia.MustCompile(`script[type="application/ld+json"]`)
	selAnchors    = cascadia.MustCompile("a[href]")
	selImages     = cascadia.MustCompile("img[src]")
	selHeadings   = cascadia.MustCompile("h1, h2, h3, h4, h5, h6")
	selTables     = cascadia.MustCompile("table")
	selTheadCells = cascadia.MustCompile("thead th")
	selBodyRows   = cascadia.MustCompile("tbody tr")
	selAllRows    = cascadia.MustCompile("tr")
	selCells      = cascadia.MustCompile("td, th")
	selCaption    = cascadia.MustCompile("caption")
)
