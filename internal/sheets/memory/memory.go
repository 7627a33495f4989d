// Package memory is an in-process TableWriter used when no spreadsheet is
// configured and in tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"incomebook/internal/report"
)

type Writer struct {
	mu   sync.Mutex
	tabs map[string]report.Table
}

func New() *Writer {
	return &Writer{tabs: make(map[string]report.Table)}
}

func (w *Writer) WriteTable(ctx context.Context, title string, t report.Table) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	rows := make([][]string, len(t.Rows))
	for i, r := range t.Rows {
		rows[i] = append([]string(nil), r...)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.tabs[title] = report.Table{Title: t.Title, Header: append([]string(nil), t.Header...), Rows: rows, Numeric: append([]bool(nil), t.Numeric...)}
	return nil
}

// Tab returns the last table written under title.
func (w *Writer) Tab(title string) (report.Table, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	t, ok := w.tabs[title]
	return t, ok
}

// Titles lists the written tabs in sorted order.
func (w *Writer) Titles() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]string, 0, len(w.tabs))
	for k := range w.tabs {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
