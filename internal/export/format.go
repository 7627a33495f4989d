package export

import (
	"errors"
	"fmt"
	"strings"

	"incomebook/internal/report"
)

// Format is an output encoding for report tables.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatPDF  Format = "pdf"
)

var ErrUnknownFormat = errors.New("unknown export format")

// ParseFormat maps a format name to a Format; "" means CSV.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatCSV, nil
	case FormatCSV, FormatXLSX, FormatPDF:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

func (f Format) Extension() string {
	return "." + string(f)
}

func (f Format) ContentType() string {
	switch f {
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatPDF:
		return "application/pdf"
	default:
		return "text/csv; charset=utf-8"
	}
}

// Encode renders t in format f.
func Encode(t report.Table, f Format) ([]byte, error) {
	switch f {
	case FormatCSV:
		return EncodeCSV(t), nil
	case FormatXLSX:
		return EncodeXLSX(t)
	case FormatPDF:
		return EncodePDF(t)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, string(f))
}
