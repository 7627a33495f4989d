package core

import "github.com/shopspring/decimal"

// MonthlyData summarises the entries of one calendar month.
type MonthlyData struct {
	Month       string          `json:"month"`
	MonthNumber int             `json:"monthNumber"` // 1-12
	Year        int             `json:"year"`
	GrossAmount decimal.Decimal `json:"grossAmount"`
	TaxWithheld decimal.Decimal `json:"taxWithheld"`
	NetAmount   decimal.Decimal `json:"netAmount"`
	Count       int             `json:"count"`
}

// YearlyTotals summarises the entries of one calendar year.
type YearlyTotals struct {
	Year        int             `json:"year"`
	GrossAmount decimal.Decimal `json:"grossAmount"`
	TaxWithheld decimal.Decimal `json:"taxWithheld"`
	NetAmount   decimal.Decimal `json:"netAmount"`
	Count       int             `json:"count"`
}
