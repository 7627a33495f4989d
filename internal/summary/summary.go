// Package summary derives monthly and yearly totals from income entries.
//
// Nothing here keeps state: every call recomputes from the entries it is
// given, so a summary always reflects the store contents at call time.
package summary

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"incomebook/internal/core"
)

var hundred = decimal.NewFromInt(100)

type monthKey struct {
	year  int
	month time.Month
}

// Monthly groups entries by calendar year and month. Months without entries
// are omitted; buckets come back oldest first.
func Monthly(entries []core.Entry) []core.MonthlyData {
	buckets := map[monthKey]*core.MonthlyData{}
	for _, e := range entries {
		k := monthKey{year: e.Date.Year(), month: e.Date.Month()}
		b, ok := buckets[k]
		if !ok {
			b = &core.MonthlyData{
				Month:       k.month.String(),
				MonthNumber: int(k.month),
				Year:        k.year,
			}
			buckets[k] = b
		}
		b.GrossAmount = b.GrossAmount.Add(e.GrossAmount)
		b.TaxWithheld = b.TaxWithheld.Add(e.TaxWithheld)
		b.NetAmount = b.NetAmount.Add(e.NetAmount)
		b.Count++
	}

	out := make([]core.MonthlyData, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].MonthNumber < out[j].MonthNumber
	})
	return out
}

// MonthlyForYear returns the monthly buckets of one year; year 0 keeps all.
func MonthlyForYear(entries []core.Entry, year int) []core.MonthlyData {
	all := Monthly(entries)
	if year == 0 {
		return all
	}
	out := all[:0]
	for _, m := range all {
		if m.Year == year {
			out = append(out, m)
		}
	}
	return out
}

// Yearly sums the entries dated in year. An empty year yields zero totals.
func Yearly(entries []core.Entry, year int) core.YearlyTotals {
	t := core.YearlyTotals{Year: year}
	for _, e := range entries {
		if e.Date.Year() != year {
			continue
		}
		t.GrossAmount = t.GrossAmount.Add(e.GrossAmount)
		t.TaxWithheld = t.TaxWithheld.Add(e.TaxWithheld)
		t.NetAmount = t.NetAmount.Add(e.NetAmount)
		t.Count++
	}
	return t
}

// Years lists the distinct years present, ascending.
func Years(entries []core.Entry) []int {
	seen := map[int]struct{}{}
	for _, e := range entries {
		seen[e.Date.Year()] = struct{}{}
	}
	years := make([]int, 0, len(seen))
	for y := range seen {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

// AllYears returns the totals of every year present, ascending.
func AllYears(entries []core.Entry) []core.YearlyTotals {
	years := Years(entries)
	out := make([]core.YearlyTotals, 0, len(years))
	for _, y := range years {
		out = append(out, Yearly(entries, y))
	}
	return out
}

// Totals sums a set of monthly buckets into a single yearly-shaped total.
// Year is left zero since the buckets may span years.
func Totals(months []core.MonthlyData) core.YearlyTotals {
	var t core.YearlyTotals
	for _, m := range months {
		t.GrossAmount = t.GrossAmount.Add(m.GrossAmount)
		t.TaxWithheld = t.TaxWithheld.Add(m.TaxWithheld)
		t.NetAmount = t.NetAmount.Add(m.NetAmount)
		t.Count += m.Count
	}
	return t
}

// TaxRate returns tax as a percentage of gross, or 0 when gross is 0.
func TaxRate(tax, gross decimal.Decimal) decimal.Decimal {
	if gross.IsZero() {
		return decimal.Zero
	}
	return tax.Div(gross).Mul(hundred)
}

// Growth returns the percentage change from previous to current. When
// previous is 0 the result is 100 for a positive current and 0 otherwise.
func Growth(current, previous decimal.Decimal) decimal.Decimal {
	if previous.IsZero() {
		if current.IsPositive() {
			return hundred
		}
		return decimal.Zero
	}
	return current.Sub(previous).Div(previous).Mul(hundred)
}
