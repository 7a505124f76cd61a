// Package models defines the data structures shared across the application.
package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Report section titles, in the fixed order the synthesis stage must produce them.
var ReportSections = []string{
	"Company Overview",
	"Financial Highlights & Key Ratios",
	"Recent Stock Performance (1-year)",
	"Recent News & Sentiment",
	"Concluding Summary",
}

// Report is a completed financial analysis report for one ticker.
type Report struct {
	ID              string    `badgerhold:"key" json:"id"`
	Ticker          string    `badgerholdIndex:"Ticker" json:"ticker"`
	CompanyInput    string    `json:"company_input"`
	ContentMarkdown string    `json:"content_markdown"`
	Analysis        *FinancialAnalysisOutput `json:"analysis,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// ValidateSections checks that the report markdown contains the five named
// sections in the required order.
func (r *Report) ValidateSections() error {
	pos := -1
	for _, section := range ReportSections {
		idx := strings.Index(r.ContentMarkdown, section)
		if idx < 0 {
			return fmt.Errorf("report missing section %q", section)
		}
		if idx < pos {
			return fmt.Errorf("report section %q out of order", section)
		}
		pos = idx
	}
	return nil
}

// FinancialRatio is one computed (or explicitly non-computable) ratio.
type FinancialRatio struct {
	Name           string `json:"name" validate:"required"`
	Formula        string `json:"formula" validate:"required"`
	Value          string `json:"value" validate:"required"`
	Interpretation string `json:"interpretation"`
}

// FinancialAnalysisOutput is the enforced output schema of the financial
// analysis stage. All other stages produce unstructured text.
type FinancialAnalysisOutput struct {
	HealthSummary string           `json:"health_summary" validate:"required"`
	Ratios        []FinancialRatio `json:"ratios" validate:"required,min=1,dive"`
}

var outputValidator = validator.New()

// Validate checks the structured output against its schema.
func (o *FinancialAnalysisOutput) Validate() error {
	if err := outputValidator.Struct(o); err != nil {
		return fmt.Errorf("financial analysis output failed validation: %w", err)
	}
	return nil
}
