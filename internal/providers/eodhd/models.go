package eodhd

import (
	"time"
)

// EODData represents a single day's end-of-day price data.
type EODData struct {
	Date          time.Time `json:"-"`
	DateStr       string    `json:"date"`
	Open          float64   `json:"open"`
	High          float64   `json:"high"`
	Low           float64   `json:"low"`
	Close         float64   `json:"close"`
	AdjustedClose float64   `json:"adjusted_close"`
	Volume        int64     `json:"volume"`
}

// EODResponse is a slice of EODData.
type EODResponse []EODData

// FundamentalsResponse represents fundamentals data for a symbol, trimmed to
// the sections the analysis pipeline consumes.
type FundamentalsResponse struct {
	General    *GeneralInfo `json:"General"`
	Financials *Financials  `json:"Financials"`
}

// GeneralInfo contains general company information.
type GeneralInfo struct {
	Code              string `json:"Code"`
	Type              string `json:"Type"`
	Name              string `json:"Name"`
	Exchange          string `json:"Exchange"`
	CurrencyCode      string `json:"CurrencyCode"`
	CountryName       string `json:"CountryName"`
	Sector            string `json:"Sector"`
	Industry          string `json:"Industry"`
	Description       string `json:"Description"`
	WebURL            string `json:"WebURL"`
	FullTimeEmployees int    `json:"FullTimeEmployees"`
	UpdatedAt         string `json:"UpdatedAt"`
}

// Financials contains financial statements.
type Financials struct {
	BalanceSheet    *FinancialStatement `json:"Balance_Sheet"`
	CashFlow        *FinancialStatement `json:"Cash_Flow"`
	IncomeStatement *FinancialStatement `json:"Income_Statement"`
}

// FinancialStatement represents a financial statement with quarterly and yearly data.
// Entry maps are keyed by period date ("2023-12-31"); values are the raw
// statement line items.
type FinancialStatement struct {
	Currency  string                            `json:"currency"`
	Quarterly map[string]map[string]interface{} `json:"quarterly"`
	Yearly    map[string]map[string]interface{} `json:"yearly"`
}

// LatestYearly returns the most recent yearly entry, or nil if none exist.
// Period keys are ISO dates so lexicographic max is the latest period.
func (s *FinancialStatement) LatestYearly() map[string]interface{} {
	if s == nil || len(s.Yearly) == 0 {
		return nil
	}
	latest := ""
	for date := range s.Yearly {
		if date > latest {
			latest = date
		}
	}
	return s.Yearly[latest]
}
