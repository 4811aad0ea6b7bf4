package survey

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/net/html"
)

// HTMLSource reads the first table of a sheet published or saved as HTML.
type HTMLSource struct {
	Path string
}

func (s *HTMLSource) Load(ctx context.Context) (*Sheet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("open html: %w", err)
	}
	defer f.Close()
	return ReadHTML(f)
}

// ReadHTML takes the rows of the first <table> in the document. A Google
// Sheets "Download > Web page" export (a "waffle" table) carries a row of
// column letters and a row-number <th> on every row; both are dropped.
func ReadHTML(r io.Reader) (*Sheet, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	table := findElement(doc, "table")
	if table == nil {
		if title := pageTitle(doc); title != "" {
			return nil, fmt.Errorf("%w: no table in page %q", ErrEmptySheet, title)
		}
		return nil, fmt.Errorf("%w: no table in page", ErrEmptySheet)
	}

	var (
		rows      [][]string
		rowHeader []bool // first cell is a <th>
	)
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "tr" {
			var row []string
			leadTH := false
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.ElementNode && (c.Data == "td" || c.Data == "th") {
					if len(row) == 0 {
						leadTH = c.Data == "th"
					}
					row = append(row, textContent(c))
				}
			}
			rows = append(rows, row)
			rowHeader = append(rowHeader, leadTH)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(table)

	if len(rows) > 0 && (hasClass(table, "waffle") || isColumnLetters(rows[0])) {
		rows = unwaffle(rows, rowHeader)
	}
	return newSheet(rows)
}

// unwaffle strips the spreadsheet chrome of a Sheets export: the column
// letter row and the row-number header cell of each row.
func unwaffle(rows [][]string, rowHeader []bool) [][]string {
	if isColumnLetters(rows[0]) {
		rows, rowHeader = rows[1:], rowHeader[1:]
	}
	out := make([][]string, 0, len(rows))
	for i, row := range rows {
		if rowHeader[i] && len(row) > 0 {
			row = row[1:]
		}
		out = append(out, row)
	}
	return out
}

// isColumnLetters reports whether row reads "", "A", "B", ... as the letter
// header of a spreadsheet grid does.
func isColumnLetters(row []string) bool {
	if len(row) < 2 || row[0] != "" {
		return false
	}
	for i, cell := range row[1:] {
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil || cell != name {
			return false
		}
	}
	return true
}

func hasClass(n *html.Node, class string) bool {
	for _, a := range n.Attr {
		if a.Key == "class" && slices.Contains(strings.Fields(a.Val), class) {
			return true
		}
	}
	return false
}

func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		switch {
		case n.Type == html.TextNode:
			buf.WriteString(n.Data)
		case n.Type == html.ElementNode && n.Data == "br":
			buf.WriteString("\n")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(buf.String())
}

func pageTitle(doc *html.Node) string {
	if t := findElement(doc, "title"); t != nil {
		return textContent(t)
	}
	return ""
}

func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}
