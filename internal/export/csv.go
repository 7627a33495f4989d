package export

import (
	"strings"

	"incomebook/internal/report"
)

// EncodeCSV writes the header and rows of t as comma separated text. A field
// is quoted only when it contains a comma, a double quote or a line break
// ("\n" or "\r"); inner quotes are doubled. Rows are joined with "\n" and there is no
// trailing newline.
func EncodeCSV(t report.Table) []byte {
	var b strings.Builder
	writeCSVRow(&b, t.Header)
	for _, row := range t.Rows {
		b.WriteByte('\n')
		writeCSVRow(&b, row)
	}
	return []byte(b.String())
}

func writeCSVRow(b *strings.Builder, fields []string) {
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(EscapeCSVField(f))
	}
}

// EscapeCSVField applies the quoting rule of EncodeCSV to one field.
func EscapeCSVField(f string) string {
	if !strings.ContainsAny(f, ",\"\n\r") {
		return f
	}
	return `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
}
