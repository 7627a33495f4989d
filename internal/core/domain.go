package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	PaymentCheck        PaymentMethod = "check"
	PaymentBankTransfer PaymentMethod = "bank_transfer"
	PaymentPayPal       PaymentMethod = "paypal"
	PaymentOther        PaymentMethod = "other"
)

// DateLayout is the wire and storage layout of a calendar date.
const DateLayout = "2006-01-02"

type (
	PaymentMethod string

	Date struct {
		time.Time
	}

	// Entry is one recorded income payment.
	Entry struct {
		ID                 string          `json:"id"`
		Date               Date            `json:"date"`
		ClientName         string          `json:"clientName"`
		ProjectName        string          `json:"projectName"`
		ProjectDescription string          `json:"projectDescription"`
		GrossAmount        decimal.Decimal `json:"grossAmount"`
		TaxWithheld        decimal.Decimal `json:"taxWithheld"`
		TaxPercentage      decimal.Decimal `json:"taxPercentage"`
		NetAmount          decimal.Decimal `json:"netAmount"`
		PaymentMethod      PaymentMethod   `json:"paymentMethod"`
		InvoiceNumber      string          `json:"invoiceNumber,omitempty"`
		Notes              string          `json:"notes,omitempty"`
		CreatedAt          time.Time       `json:"createdAt"`
	}

	// EntryInput is an entry before it gets an identity. Tax withheld and net
	// amount are derived from GrossAmount and TaxPercentage.
	EntryInput struct {
		Date               Date            `json:"date"`
		ClientName         string          `json:"clientName"`
		ProjectName        string          `json:"projectName"`
		ProjectDescription string          `json:"projectDescription"`
		GrossAmount        decimal.Decimal `json:"grossAmount"`
		TaxPercentage      decimal.Decimal `json:"taxPercentage"`
		PaymentMethod      PaymentMethod   `json:"paymentMethod"`
		InvoiceNumber      string          `json:"invoiceNumber,omitempty"`
		Notes              string          `json:"notes,omitempty"`
	}

	// EntryPatch overwrites the non-nil fields of an existing entry.
	EntryPatch struct {
		Date               *Date            `json:"date,omitempty"`
		ClientName         *string          `json:"clientName,omitempty"`
		ProjectName        *string          `json:"projectName,omitempty"`
		ProjectDescription *string          `json:"projectDescription,omitempty"`
		GrossAmount        *decimal.Decimal `json:"grossAmount,omitempty"`
		TaxPercentage      *decimal.Decimal `json:"taxPercentage,omitempty"`
		PaymentMethod      *PaymentMethod   `json:"paymentMethod,omitempty"`
		InvoiceNumber      *string          `json:"invoiceNumber,omitempty"`
		Notes              *string          `json:"notes,omitempty"`
	}
)

var (
	ErrInvalidDate          = errors.New("invalid date")
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrInvalidTaxPercentage = errors.New("tax percentage must be between 0 and 100")
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
	ErrEmptyClient          = errors.New("empty client name")
)

var hundred = decimal.NewFromInt(100)

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// String returns the date as YYYY-MM-DD, or "" for the zero date.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte(`""`), nil
	}
	return []byte(`"` + d.Format(DateLayout) + `"`), nil
}

// UnmarshalJSON accepts YYYY-MM-DD and full RFC 3339 timestamps; the time of
// day is dropped.
func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		*d = Date{Time: t}
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	*d = NewDate(t.Year(), int(t.Month()), t.Day())
	return nil
}

// Label returns the method with underscores replaced by spaces.
func (m PaymentMethod) Label() string {
	return strings.ReplaceAll(string(m), "_", " ")
}

func (m PaymentMethod) Validate() error {
	switch m {
	case PaymentCheck, PaymentBankTransfer, PaymentPayPal, PaymentOther:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidPaymentMethod, string(m))
}

// PaymentMethods lists the accepted payment methods.
func PaymentMethods() []PaymentMethod {
	return []PaymentMethod{PaymentCheck, PaymentBankTransfer, PaymentPayPal, PaymentOther}
}

// TaxFor returns gross * percentage / 100, exactly.
func TaxFor(gross, percentage decimal.Decimal) decimal.Decimal {
	return gross.Mul(percentage).Div(hundred)
}

func validateAmounts(gross, percentage decimal.Decimal) error {
	if gross.IsNegative() {
		return ErrInvalidAmount
	}
	if percentage.IsNegative() || percentage.GreaterThan(hundred) {
		return ErrInvalidTaxPercentage
	}
	return nil
}

func (in EntryInput) Validate() error {
	if err := in.Date.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(in.ClientName) == "" {
		return ErrEmptyClient
	}
	if err := validateAmounts(in.GrossAmount, in.TaxPercentage); err != nil {
		return err
	}
	return in.PaymentMethod.Validate()
}

// Entry builds the stored form of the input with derived tax and net amounts.
func (in EntryInput) Entry(id string, createdAt time.Time) Entry {
	tax := TaxFor(in.GrossAmount, in.TaxPercentage)
	return Entry{
		ID:                 id,
		Date:               in.Date,
		ClientName:         strings.TrimSpace(in.ClientName),
		ProjectName:        in.ProjectName,
		ProjectDescription: in.ProjectDescription,
		GrossAmount:        in.GrossAmount,
		TaxWithheld:        tax,
		TaxPercentage:      in.TaxPercentage,
		NetAmount:          in.GrossAmount.Sub(tax),
		PaymentMethod:      in.PaymentMethod,
		InvoiceNumber:      in.InvoiceNumber,
		Notes:              in.Notes,
		CreatedAt:          createdAt,
	}
}

func (e Entry) Validate() error {
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(e.ClientName) == "" {
		return ErrEmptyClient
	}
	if err := validateAmounts(e.GrossAmount, e.TaxPercentage); err != nil {
		return err
	}
	if e.TaxWithheld.IsNegative() || e.TaxWithheld.GreaterThan(e.GrossAmount) {
		return ErrInvalidAmount
	}
	if !e.NetAmount.Equal(e.GrossAmount.Sub(e.TaxWithheld)) {
		return fmt.Errorf("%w: net amount does not match gross minus tax", ErrInvalidAmount)
	}
	return e.PaymentMethod.Validate()
}

// Empty reports whether the patch sets no field.
func (p EntryPatch) Empty() bool {
	return p.Date == nil && p.ClientName == nil && p.ProjectName == nil &&
		p.ProjectDescription == nil && p.GrossAmount == nil && p.TaxPercentage == nil &&
		p.PaymentMethod == nil && p.InvoiceNumber == nil && p.Notes == nil
}

// Apply returns e with the patch merged over it. ID and CreatedAt never
// change; tax withheld and net amount are recomputed when gross or tax
// percentage are patched.
func (p EntryPatch) Apply(e Entry) Entry {
	if p.Date != nil {
		e.Date = *p.Date
	}
	if p.ClientName != nil {
		e.ClientName = strings.TrimSpace(*p.ClientName)
	}
	if p.ProjectName != nil {
		e.ProjectName = *p.ProjectName
	}
	if p.ProjectDescription != nil {
		e.ProjectDescription = *p.ProjectDescription
	}
	if p.PaymentMethod != nil {
		e.PaymentMethod = *p.PaymentMethod
	}
	if p.InvoiceNumber != nil {
		e.InvoiceNumber = *p.InvoiceNumber
	}
	if p.Notes != nil {
		e.Notes = *p.Notes
	}
	if p.GrossAmount != nil || p.TaxPercentage != nil {
		if p.GrossAmount != nil {
			e.GrossAmount = *p.GrossAmount
		}
		if p.TaxPercentage != nil {
			e.TaxPercentage = *p.TaxPercentage
		}
		e.TaxWithheld = TaxFor(e.GrossAmount, e.TaxPercentage)
		e.NetAmount = e.GrossAmount.Sub(e.TaxWithheld)
	}
	return e
}
