// Package report turns income entries into rectangular tables: one row per
// entry (detailed), per month (monthly) or per year (yearly). Tables carry
// display strings only and know nothing about output encoding.
package report

import (
	"slices"
	"sort"
	"strconv"

	"incomebook/internal/core"
	"incomebook/internal/summary"
)

// DisplayDateLayout is the en-US short date used in detailed reports.
const DisplayDateLayout = "1/2/2006"

// NotApplicable fills the growth cell of the first yearly row.
const NotApplicable = "N/A"

// TotalLabel labels the trailing row of monthly reports.
const TotalLabel = "TOTAL"

// Table is a header row plus data rows. Every row has len(Header) cells.
// Numeric marks the columns holding numbers (amounts, counts, years, rates);
// a nil or short Numeric leaves the remaining columns as text.
type Table struct {
	Title   string
	Header  []string
	Rows    [][]string
	Numeric []bool
}

// IsNumeric reports whether column col holds numbers.
func (t Table) IsNumeric(col int) bool {
	return col >= 0 && col < len(t.Numeric) && t.Numeric[col]
}

var (
	detailedHeader = []string{"Date", "Client", "Project", "Gross Amount", "Tax Withheld", "Net Amount", "Payment Method", "Invoice Number", "Notes"}
	monthlyHeader  = []string{"Month", "Year", "Entries", "Gross Income", "Tax Withheld", "Net Income", "Tax Rate %"}
	yearlyHeader   = []string{"Year", "Entries", "Gross Income", "Tax Withheld", "Net Income", "Tax Rate %", "Growth %"}

	detailedNumeric = []bool{false, false, false, true, true, true, false, false, false}
	monthlyNumeric  = []bool{false, true, true, true, true, true, true}
	yearlyNumeric   = []bool{true, true, true, true, true, true, true}
)

// newTable returns a table owning its own copies of header and numeric, so
// callers may modify what Build returns.
func newTable(title string, header []string, numeric []bool) Table {
	return Table{Title: title, Header: slices.Clone(header), Numeric: slices.Clone(numeric)}
}

// Build produces the table for req over entries. entries is not modified.
func Build(entries []core.Entry, req Request) (Table, error) {
	if err := Validate(req); err != nil {
		return Table{}, err
	}
	switch r := req.(type) {
	case Detailed:
		return buildDetailed(entries, r), nil
	case Monthly:
		return buildMonthly(entries, r), nil
	case Yearly:
		return buildYearly(entries), nil
	}
	return Table{}, ErrUnknownKind
}

func buildDetailed(entries []core.Entry, r Detailed) Table {
	selected := make([]core.Entry, 0, len(entries))
	for _, e := range entries {
		if r.Contains(e.Date) {
			selected = append(selected, e)
		}
	}
	sort.SliceStable(selected, func(i, j int) bool {
		return selected[i].Date.Before(selected[j].Date.Time)
	})

	t := newTable("Detailed Income Report", detailedHeader, detailedNumeric)
	for _, e := range selected {
		t.Rows = append(t.Rows, []string{
			e.Date.Format(DisplayDateLayout),
			e.ClientName,
			e.ProjectDescription,
			core.FormatAmount(e.GrossAmount),
			core.FormatAmount(e.TaxWithheld),
			core.FormatAmount(e.NetAmount),
			e.PaymentMethod.Label(),
			e.InvoiceNumber,
			e.Notes,
		})
	}
	return t
}

func buildMonthly(entries []core.Entry, r Monthly) Table {
	months := summary.MonthlyForYear(entries, r.Year)

	t := newTable("Monthly Income Report", monthlyHeader, monthlyNumeric)
	if r.Year != 0 {
		t.Title += " " + strconv.Itoa(r.Year)
	}
	for _, m := range months {
		t.Rows = append(t.Rows, []string{
			m.Month,
			strconv.Itoa(m.Year),
			strconv.Itoa(m.Count),
			core.FormatAmount(m.GrossAmount),
			core.FormatAmount(m.TaxWithheld),
			core.FormatAmount(m.NetAmount),
			core.FormatAmount(summary.TaxRate(m.TaxWithheld, m.GrossAmount)),
		})
	}

	total := summary.Totals(months)
	t.Rows = append(t.Rows, []string{
		TotalLabel,
		"",
		strconv.Itoa(total.Count),
		core.FormatAmount(total.GrossAmount),
		core.FormatAmount(total.TaxWithheld),
		core.FormatAmount(total.NetAmount),
		core.FormatAmount(summary.TaxRate(total.TaxWithheld, total.GrossAmount)),
	})
	return t
}

func buildYearly(entries []core.Entry) Table {
	years := summary.AllYears(entries)

	t := newTable("Yearly Income Report", yearlyHeader, yearlyNumeric)
	for i, y := range years {
		growth := NotApplicable
		if i > 0 {
			growth = core.FormatAmount(summary.Growth(y.GrossAmount, years[i-1].GrossAmount))
		}
		t.Rows = append(t.Rows, []string{
			strconv.Itoa(y.Year),
			strconv.Itoa(y.Count),
			core.FormatAmount(y.GrossAmount),
			core.FormatAmount(y.TaxWithheld),
			core.FormatAmount(y.NetAmount),
			core.FormatAmount(summary.TaxRate(y.TaxWithheld, y.GrossAmount)),
			growth,
		})
	}
	return t
}
