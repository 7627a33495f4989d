// Package sheets delivers report tables to spreadsheet tabs.
package sheets

import (
	"context"
	"strings"
	"unicode/utf8"

	"incomebook/internal/export"
	"incomebook/internal/report"
)

// MaxTitleLength is the longest tab title Google Sheets accepts.
const MaxTitleLength = 100

// TableWriter replaces the content of the named tab with t, creating the tab
// when it does not exist.
type TableWriter interface {
	WriteTable(ctx context.Context, title string, t report.Table) error
}

// Sink delivers artifacts by writing their table into a tab named after the
// artifact filename.
type Sink struct {
	w TableWriter
}

var _ export.Sink = (*Sink)(nil)

func NewSink(w TableWriter) *Sink {
	return &Sink{w: w}
}

func (s *Sink) Deliver(ctx context.Context, a export.Artifact) error {
	return s.w.WriteTable(ctx, TabTitle(a.Filename), a.Table)
}

// TabTitle strips the extension from filename and caps its length.
func TabTitle(filename string) string {
	title := filename
	if i := strings.LastIndexByte(title, '.'); i > 0 {
		title = title[:i]
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		title = string([]rune(title)[:MaxTitleLength])
	}
	return title
}

// Values converts t into header-first rows of cell values.
func Values(t report.Table) [][]interface{} {
	out := make([][]interface{}, 0, len(t.Rows)+1)
	out = append(out, toCells(t.Header))
	for _, row := range t.Rows {
		out = append(out, toCells(row))
	}
	return out
}

func toCells(in []string) []interface{} {
	out := make([]interface{}, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}
