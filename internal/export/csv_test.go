package export

import (
	"encoding/csv"
	"strings"
	"testing"

	"incomebook/internal/report"
)

func TestEscapeCSVField(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"", ""},
		{"  leading space", "  leading space"},
		{"a,b", `"a,b"`},
		{`say "hi"`, `"say ""hi"""`},
		{"two\nlines", "\"two\nlines\""},
		{"carriage\rreturn", "\"carriage\rreturn\""},
		{`"`, `""""`},
	}
	for _, tt := range tests {
		if got := EscapeCSVField(tt.in); got != tt.want {
			t.Errorf("EscapeCSVField(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestEncodeCSV(t *testing.T) {
	table := report.Table{
		Header: []string{"Year", "Gross Income"},
		Rows: [][]string{
			{"2023", "1000.00"},
			{"2024", "1200.00"},
		},
	}
	want := "Year,Gross Income\n2023,1000.00\n2024,1200.00"
	if got := string(EncodeCSV(table)); got != want {
		t.Errorf("EncodeCSV() = %q, want %q", got, want)
	}
}

func TestEncodeCSVHeaderOnly(t *testing.T) {
	table := report.Table{Header: []string{"A", "B"}}
	if got := string(EncodeCSV(table)); got != "A,B" {
		t.Errorf("EncodeCSV() = %q, want %q", got, "A,B")
	}
}

func TestEncodeCSVReadsBack(t *testing.T) {
	table := report.Table{
		Header: []string{"Client", "Notes"},
		Rows: [][]string{
			{"Acme, Inc.", `He said "paid"`},
			{"Solo", "line one\nline two"},
		},
	}

	records, err := csv.NewReader(strings.NewReader(string(EncodeCSV(table)))).ReadAll()
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want 3", len(records))
	}
	for i, row := range table.Rows {
		for j, cell := range row {
			if records[i+1][j] != cell {
				t.Errorf("record[%d][%d] = %q, want %q", i+1, j, records[i+1][j], cell)
			}
		}
	}
}
