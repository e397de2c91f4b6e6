package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/use-agent/quizpilot/models"
)

// extractTables converts every <table> into a Table model. Header priority
// is thead th, then th cells in the table's first row. Body rows come from
// tbody when present, otherwise from all rows minus any header row. Rows
// whose cells are all empty are dropped, and tables that end up with no
// headers and no rows are excluded entirely. Index is 1-based and counts
// every table in the document, including excluded ones, so indices stay
// stable across pages with empty tables.
func extractTables(doc *goquery.Document) []models.Table {
	tables := []models.Table{}

	doc.FindMatcher(selTables).Each(func(i int, t *goquery.Selection) {
		headers, headerRow := tableHeaders(t)

		var rows *goquery.Selection
		if body := t.FindMatcher(selBodyRows); body.Length() > 0 {
			rows = body
		} else {
			rows = t.FindMatcher(selAllRows)
		}

		var data [][]string
		rows.Each(func(_ int, tr *goquery.Selection) {
			if headerRow != nil && tr.Nodes[0] == headerRow.Nodes[0] {
				return
			}
			if goquery.NodeName(tr.Parent()) == "thead" {
				return
			}
			cells := rowCells(tr)
			if cells != nil {
				data = append(data, cells)
			}
		})

		if len(headers) == 0 && len(data) == 0 {
			return
		}
		if data == nil {
			data = [][]string{}
		}

		tables = append(tables, models.Table{
			Index:   i + 1,
			Caption: strings.TrimSpace(t.FindMatcher(selCaption).First().Text()),
			Headers: headers,
			Rows:    data,
		})
	})

	return tables
}

// tableHeaders returns the header cells and, when they came from a plain
// row rather than a thead, that row so the caller can skip it.
func tableHeaders(t *goquery.Selection) ([]string, *goquery.Selection) {
	if cells := t.FindMatcher(selTheadCells); cells.Length() > 0 {
		return cellTexts(cells), nil
	}

	firstRow := t.FindMatcher(selAllRows).First()
	if firstRow.Length() == 0 {
		return []string{}, nil
	}
	if ths := firstRow.Find("th"); ths.Length() > 0 {
		return cellTexts(ths), firstRow
	}
	return []string{}, nil
}

// rowCells returns the trimmed cell texts, or nil when every cell is empty.
func rowCells(tr *goquery.Selection) []string {
	cells := cellTexts(tr.FindMatcher(selCells))
	for _, c := range cells {
		if c != "" {
			return cells
		}
	}
	return nil
}

func cellTexts(sel *goquery.Selection) []string {
	out := make([]string, 0, sel.Length())
	sel.Each(func(_ int, c *goquery.Selection) {
		out = append(out, strings.TrimSpace(c.Text()))
	})
	return out
}
