package core

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func validInput() EntryInput {
	return EntryInput{
		Date:               NewDate(2024, 1, 10),
		ClientName:         "Acme",
		ProjectName:        "Site",
		ProjectDescription: "Landing page",
		GrossAmount:        dec("1000"),
		TaxPercentage:      dec("10"),
		PaymentMethod:      PaymentBankTransfer,
	}
}

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2025, 1, 1), true},
		{NewDate(2025, 12, 31), true},
		{Date{Time: time.Time{}}, false}, // zero time
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestDateJSON(t *testing.T) {
	b, err := json.Marshal(NewDate(2024, 2, 5))
	if err != nil || string(b) != `"2024-02-05"` {
		t.Fatalf("marshal: %s %v", b, err)
	}

	var d Date
	if err := json.Unmarshal([]byte(`"2024-02-05T10:30:00Z"`), &d); err != nil {
		t.Fatalf("unmarshal rfc3339: %v", err)
	}
	if !d.Equal(NewDate(2024, 2, 5).Time) {
		t.Fatalf("expected time of day dropped, got %v", d)
	}

	if err := json.Unmarshal([]byte(`"05/02/2024"`), &d); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
}

func TestPaymentMethod(t *testing.T) {
	for _, m := range PaymentMethods() {
		if err := m.Validate(); err != nil {
			t.Fatalf("%s expected valid: %v", m, err)
		}
	}
	if err := PaymentMethod("cash").Validate(); !errors.Is(err, ErrInvalidPaymentMethod) {
		t.Fatalf("expected ErrInvalidPaymentMethod, got %v", err)
	}
	if got := PaymentBankTransfer.Label(); got != "bank transfer" {
		t.Fatalf("label = %q", got)
	}
}

func TestEntryInputValidate(t *testing.T) {
	if err := validInput().Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*EntryInput)
		want   error
	}{
		{"zero date", func(in *EntryInput) { in.Date = Date{} }, ErrInvalidDate},
		{"blank client", func(in *EntryInput) { in.ClientName = "  " }, ErrEmptyClient},
		{"negative gross", func(in *EntryInput) { in.GrossAmount = dec("-1") }, ErrInvalidAmount},
		{"percentage over 100", func(in *EntryInput) { in.TaxPercentage = dec("101") }, ErrInvalidTaxPercentage},
		{"negative percentage", func(in *EntryInput) { in.TaxPercentage = dec("-1") }, ErrInvalidTaxPercentage},
		{"unknown method", func(in *EntryInput) { in.PaymentMethod = "cash" }, ErrInvalidPaymentMethod},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput()
			tc.mutate(&in)
			if err := in.Validate(); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestEntryInputDerivesTaxAndNet(t *testing.T) {
	in := validInput()
	in.GrossAmount = dec("1234.56")
	in.TaxPercentage = dec("22.5")
	created := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)

	e := in.Entry("id-1", created)
	if !e.TaxWithheld.Equal(dec("277.776")) {
		t.Fatalf("tax = %s", e.TaxWithheld)
	}
	if !e.NetAmount.Equal(e.GrossAmount.Sub(e.TaxWithheld)) {
		t.Fatalf("net %s != gross - tax", e.NetAmount)
	}
	if e.ID != "id-1" || !e.CreatedAt.Equal(created) {
		t.Fatalf("identity not set: %+v", e)
	}
	if err := e.Validate(); err != nil {
		t.Fatalf("derived entry invalid: %v", err)
	}
}

func TestEntryValidateRejectsInconsistentNet(t *testing.T) {
	e := validInput().Entry("x", time.Now())
	e.NetAmount = e.NetAmount.Add(dec("1"))
	if err := e.Validate(); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestEntryPatchApply(t *testing.T) {
	created := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	e := validInput().Entry("id-1", created)

	notes := "paid late"
	patched := EntryPatch{Notes: &notes}.Apply(e)
	if patched.Notes != notes {
		t.Fatalf("notes not applied")
	}
	if !patched.GrossAmount.Equal(e.GrossAmount) || !patched.TaxWithheld.Equal(e.TaxWithheld) ||
		patched.ClientName != e.ClientName || patched.ID != e.ID || !patched.CreatedAt.Equal(created) {
		t.Fatalf("unrelated fields changed: %+v", patched)
	}

	gross := dec("2000")
	patched = EntryPatch{GrossAmount: &gross}.Apply(e)
	if !patched.TaxWithheld.Equal(dec("200")) || !patched.NetAmount.Equal(dec("1800")) {
		t.Fatalf("derived fields not recomputed: tax=%s net=%s", patched.TaxWithheld, patched.NetAmount)
	}

	pct := dec("0")
	patched = EntryPatch{TaxPercentage: &pct}.Apply(e)
	if !patched.TaxWithheld.IsZero() || !patched.NetAmount.Equal(e.GrossAmount) {
		t.Fatalf("zero percentage: tax=%s net=%s", patched.TaxWithheld, patched.NetAmount)
	}

	if !(EntryPatch{}).Empty() || (EntryPatch{Notes: &notes}).Empty() {
		t.Fatalf("Empty() mismatch")
	}
}

func TestEntryJSONAcceptsNumericAmounts(t *testing.T) {
	raw := `{"id":"a","date":"2024-01-10","clientName":"Acme","projectName":"p",
		"projectDescription":"d","grossAmount":1000,"taxWithheld":100,"taxPercentage":10,
		"netAmount":900,"paymentMethod":"paypal","createdAt":"2024-01-10T09:00:00Z"}`
	var e Entry
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !e.GrossAmount.Equal(dec("1000")) || e.PaymentMethod != PaymentPayPal {
		t.Fatalf("unexpected entry: %+v", e)
	}
	if err := e.Validate(); err != nil {
		t.Fatalf("expected valid entry: %v", err)
	}
}
