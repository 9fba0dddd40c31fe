package htmltable

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Anchor is the first link found inside a cell
type Anchor struct {
	Text string
	Href string
}

// Cell is a single td element
type Cell struct {
	Text   string
	Anchor *Anchor // nil unless the first a in the cell has an href
}

// Row is a tr element with its td cells
type Row struct {
	Cells []Cell
}

// Table is a table element in document order
type Table struct {
	Headers []string // th texts
	Rows    []Row
	Cells   []Cell // every td descendant, in document order
}

// Document is the decoded page: all tables, plus every tr on the page
type Document struct {
	Tables []Table
	Rows   []Row
}

// Decode parses raw markup into tables, rows and cells
func Decode(markup string) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	// line breaks separate words in headers such as "Vydané<br>obálky"
	doc.Find("br").ReplaceWithHtml(" ")

	page := &Document{
		Rows: decodeRows(doc.Find("tr")),
	}

	doc.Find("table").Each(func(_ int, s *goquery.Selection) {
		table := Table{
			Rows:  decodeRows(s.Find("tr")),
			Cells: decodeCells(s.Find("td")),
		}
		s.Find("th").Each(func(_ int, th *goquery.Selection) {
			table.Headers = append(table.Headers, cleanText(th.Text()))
		})
		page.Tables = append(page.Tables, table)
	})

	return page, nil
}

// Cell returns the i-th cell of the row, or false when out of range
func (r Row) Cell(i int) (Cell, bool) {
	if i < 0 || i >= len(r.Cells) {
		return Cell{}, false
	}
	return r.Cells[i], true
}

func decodeRows(sel *goquery.Selection) []Row {
	rows := make([]Row, 0, sel.Length())
	sel.Each(func(_ int, tr *goquery.Selection) {
		rows = append(rows, Row{Cells: decodeCells(tr.Find("td"))})
	})
	return rows
}

func decodeCells(sel *goquery.Selection) []Cell {
	cells := make([]Cell, 0, sel.Length())
	sel.Each(func(_ int, td *goquery.Selection) {
		cell := Cell{Text: cleanText(td.Text())}

		link := td.Find("a").First()
		if href, ok := link.Attr("href"); ok {
			cell.Anchor = &Anchor{
				Text: cleanText(link.Text()),
				Href: strings.TrimSpace(href),
			}
		}

		cells = append(cells, cell)
	})
	return cells
}

// cleanText collapses every whitespace run, non-breaking spaces included, into one space
func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
