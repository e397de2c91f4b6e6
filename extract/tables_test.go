package extract

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func parseDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return doc
}

func TestExtractTables_TheadHeaders(t *testing.T) {
	doc := parseDoc(t, `<table>
<thead><tr><th>Name</th><th>Score</th></tr></thead>
<tbody>
<tr><td>alice</td><td>10</td></tr>
<tr><td>bob</td><td>7</td></tr>
</tbody>
</table>`)

	tables := extractTables(doc)
	if len(tables) != 1 {
		t.Fatalf("got %d tables, want 1", len(tables))
	}

	tab := tables[0]
	if tab.Index != 1 {
		t.Errorf("Index = %d, want 1", tab.Index)
	}
	if len(tab.Headers) != 2 || tab.Headers[0] != "Name" || tab.Headers[1] != "Score" {
		t.Errorf("Headers = %v", tab.Headers)
	}
	if len(tab.Rows) != 2 || tab.Rows[0][0] != "alice" || tab.Rows[1][1] != "7" {
		t.Errorf("Rows = %v", tab.Rows)
	}
}

func TestExtractTables_FirstRowTHHeaders(t *testing.T) {
	doc := parseDoc(t, `<table>
<tr><th>City</th><th>Pop</th></tr>
<tr><td>Oslo</td><td>700k</td></tr>
</table>`)

	tables := extractTables(doc)
	if len(tables) != 1 {
		t.Fatalf("got %d tables, want 1", len(tables))
	}

	tab := tables[0]
	if len(tab.Headers) != 2 || tab.Headers[0] != "City" {
		t.Errorf("Headers = %v", tab.Headers)
	}
	// The header row must not repeat as a data row.
	if len(tab.Rows) != 1 || tab.Rows[0][0] != "Oslo" {
		t.Errorf("Rows = %v", tab.Rows)
	}
}

func TestExtractTables_EmptyRowsDropped(t *testing.T) {
	doc := parseDoc(t, `<table>
<tr><td>data</td><td>1</td></tr>
<tr><td></td><td>  </td></tr>
<tr><td>more</td><td>2</td></tr>
</table>`)

	tables := extractTables(doc)
	if len(tables) != 1 {
		t.Fatalf("got %d tables, want 1", len(tables))
	}
	if len(tables[0].Rows) != 2 {
		t.Errorf("got %d rows, want 2 (empty row dropped): %v", len(tables[0].Rows), tables[0].Rows)
	}
}

func TestExtractTables_EmptyTableExcluded(t *testing.T) {
	doc := parseDoc(t, `<p>before</p>
<table></table>
<table><tr><td>kept</td></tr></table>`)

	tables := extractTables(doc)
	if len(tables) != 1 {
		t.Fatalf("got %d tables, want 1 (empty table excluded)", len(tables))
	}
	// Index counts all tables in the document, including excluded ones.
	if tables[0].Index != 2 {
		t.Errorf("Index = %d, want 2", tables[0].Index)
	}
}

func TestExtractTables_Caption(t *testing.T) {
	doc := parseDoc(t, `<table>
<caption>Results</caption>
<tr><td>x</td></tr>
</table>`)

	tables := extractTables(doc)
	if len(tables) != 1 || tables[0].Caption != "Results" {
		t.Errorf("tables = %+v", tables)
	}
}

func TestExtractTables_RaggedRows(t *testing.T) {
	doc := parseDoc(t, `<table>
<thead><tr><th>a</th><th>b</th><th>c</th></tr></thead>
<tbody><tr><td>1</td><td>2</td></tr></tbody>
</table>`)

	tables := extractTables(doc)
	if len(tables) != 1 {
		t.Fatalf("got %d tables, want 1", len(tables))
	}
	// Short rows are kept as-is; padding is the formatter's job.
	if len(tables[0].Rows[0]) != 2 {
		t.Errorf("row = %v", tables[0].Rows[0])
	}
}
