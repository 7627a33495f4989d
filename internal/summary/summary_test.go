package summary

import (
	"math/rand"
	"strconv"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"incomebook/internal/core"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func entry(date core.Date, gross, tax string) core.Entry {
	g, tx := dec(gross), dec(tax)
	return core.Entry{
		ID:          date.String() + "-" + gross,
		Date:        date,
		ClientName:  "Acme",
		GrossAmount: g,
		TaxWithheld: tx,
		NetAmount:   g.Sub(tx),
		CreatedAt:   time.Now(),
	}
}

func scenario() []core.Entry {
	return []core.Entry{
		entry(core.NewDate(2024, 1, 10), "1000", "100"),
		entry(core.NewDate(2024, 1, 20), "500", "50"),
		entry(core.NewDate(2024, 2, 5), "300", "30"),
	}
}

func TestMonthlyScenario(t *testing.T) {
	months := Monthly(scenario())
	require.Len(t, months, 2)

	jan, feb := months[0], months[1]
	assert.Equal(t, "January", jan.Month)
	assert.Equal(t, 2024, jan.Year)
	assert.True(t, jan.GrossAmount.Equal(dec("1500")))
	assert.True(t, jan.TaxWithheld.Equal(dec("150")))
	assert.True(t, jan.NetAmount.Equal(dec("1350")))
	assert.Equal(t, 2, jan.Count)

	assert.Equal(t, "February", feb.Month)
	assert.True(t, feb.GrossAmount.Equal(dec("300")))
	assert.True(t, feb.TaxWithheld.Equal(dec("30")))
	assert.True(t, feb.NetAmount.Equal(dec("270")))
	assert.Equal(t, 1, feb.Count)
}

func TestYearlyScenario(t *testing.T) {
	y := Yearly(scenario(), 2024)
	assert.Equal(t, 2024, y.Year)
	assert.True(t, y.GrossAmount.Equal(dec("1800")))
	assert.True(t, y.TaxWithheld.Equal(dec("180")))
	assert.True(t, y.NetAmount.Equal(dec("1620")))
	assert.Equal(t, 3, y.Count)

	empty := Yearly(scenario(), 2023)
	assert.True(t, empty.GrossAmount.IsZero())
	assert.Equal(t, 0, empty.Count)
}

func TestMonthlyOrderAcrossYears(t *testing.T) {
	entries := []core.Entry{
		entry(core.NewDate(2025, 3, 1), "10", "1"),
		entry(core.NewDate(2023, 12, 31), "10", "1"),
		entry(core.NewDate(2025, 1, 1), "10", "1"),
		entry(core.NewDate(2024, 6, 15), "10", "1"),
	}
	months := Monthly(entries)
	require.Len(t, months, 4)
	var got []string
	for _, m := range months {
		got = append(got, m.Month+" "+strconv.Itoa(m.Year))
	}
	assert.Equal(t, []string{"December 2023", "June 2024", "January 2025", "March 2025"}, got)
}

func TestMonthlyIsOrderIndependent(t *testing.T) {
	base := append(scenario(),
		entry(core.NewDate(2023, 7, 1), "12.34", "1.23"),
		entry(core.NewDate(2024, 2, 28), "0.01", "0"),
	)
	want := Monthly(base)

	r := rand.New(rand.NewSource(42))
	for i := 0; i < 10; i++ {
		shuffled := append([]core.Entry(nil), base...)
		r.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		got := Monthly(shuffled)
		require.Len(t, got, len(want))
		for j := range want {
			assert.Equal(t, want[j].Year, got[j].Year)
			assert.Equal(t, want[j].MonthNumber, got[j].MonthNumber)
			assert.Equal(t, want[j].Count, got[j].Count)
			assert.True(t, want[j].GrossAmount.Equal(got[j].GrossAmount))
			assert.True(t, want[j].NetAmount.Equal(got[j].NetAmount))
		}
	}
}

func TestEmptyInput(t *testing.T) {
	assert.Empty(t, Monthly(nil))
	assert.Empty(t, AllYears(nil))
	assert.Empty(t, Years(nil))
	total := Totals(nil)
	assert.True(t, total.GrossAmount.IsZero())
	assert.True(t, TaxRate(total.TaxWithheld, total.GrossAmount).IsZero())
}

func TestMonthlyForYear(t *testing.T) {
	entries := append(scenario(), entry(core.NewDate(2023, 5, 5), "1", "0"))
	assert.Len(t, MonthlyForYear(entries, 2024), 2)
	assert.Len(t, MonthlyForYear(entries, 2023), 1)
	assert.Len(t, MonthlyForYear(entries, 0), 3)
	assert.Empty(t, MonthlyForYear(entries, 1999))
}

func TestAllYearsAndTotals(t *testing.T) {
	entries := append(scenario(), entry(core.NewDate(2022, 5, 5), "200", "20"))
	years := AllYears(entries)
	require.Len(t, years, 2)
	assert.Equal(t, 2022, years[0].Year)
	assert.Equal(t, 2024, years[1].Year)

	total := Totals(Monthly(entries))
	assert.True(t, total.GrossAmount.Equal(dec("2000")))
	assert.Equal(t, 4, total.Count)
}

func TestTaxRate(t *testing.T) {
	assert.True(t, TaxRate(dec("150"), dec("1500")).Equal(dec("10")))
	assert.True(t, TaxRate(dec("0"), dec("0")).IsZero())
	assert.True(t, TaxRate(dec("5"), dec("0")).IsZero())
}

func TestGrowth(t *testing.T) {
	cases := []struct {
		current, previous, want string
	}{
		{"1500", "1000", "50"},
		{"500", "1000", "-50"},
		{"1000", "1000", "0"},
		{"300", "0", "100"},
		{"0", "0", "0"},
	}
	for _, tc := range cases {
		got := Growth(dec(tc.current), dec(tc.previous))
		assert.True(t, got.Equal(dec(tc.want)), "Growth(%s, %s) = %s, want %s", tc.current, tc.previous, got, tc.want)
	}
}
