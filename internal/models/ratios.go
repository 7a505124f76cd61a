package models

import (
	"fmt"
	"strconv"
	"strings"
)

// RatioSpec fixes the operand field names for one financial ratio.
// The numerator and denominator names match the fields produced by the
// company financials tool.
type RatioSpec struct {
	Name        string
	Formula     string
	Numerator   string
	Denominator string
}

// RatioSpecs lists the four ratios the financial analysis stage must compute,
// in presentation order.
var RatioSpecs = []RatioSpec{
	{Name: "Gross Profit Margin", Formula: "Gross Profit / Total Revenue", Numerator: "Gross Profit", Denominator: "Total Revenue"},
	{Name: "Net Profit Margin", Formula: "Net Income / Total Revenue", Numerator: "Net Income", Denominator: "Total Revenue"},
	{Name: "Debt-to-Equity Ratio", Formula: "Total Liabilities / Total Equity", Numerator: "Total Liabilities", Denominator: "Total Equity"},
	{Name: "Current Ratio", Formula: "Current Assets / Current Liabilities", Numerator: "Current Assets", Denominator: "Current Liabilities"},
}

// MissingDataSentinel returns the literal value a ratio must carry when an
// operand is not available. Tests depend on this exact phrasing.
func MissingDataSentinel(field string) string {
	return "Cannot calculate due to missing " + field
}

// IsMissingDataValue reports whether a ratio value is the missing-data sentinel.
func IsMissingDataValue(value string) bool {
	return strings.HasPrefix(value, "Cannot calculate due to missing ")
}

// ComputeRatio evaluates one ratio over the financials field map. A nil or
// "Not available" operand yields the missing-data sentinel naming that
// operand; a zero denominator yields an explicit non-computable value rather
// than a division error.
func ComputeRatio(spec RatioSpec, fields map[string]interface{}) string {
	num, ok := numericField(fields, spec.Numerator)
	if !ok {
		return MissingDataSentinel(spec.Numerator)
	}
	den, ok := numericField(fields, spec.Denominator)
	if !ok {
		return MissingDataSentinel(spec.Denominator)
	}
	if den == 0 {
		return fmt.Sprintf("Cannot calculate due to zero %s", spec.Denominator)
	}
	return strconv.FormatFloat(num/den, 'f', 2, 64)
}

// ComputeRatios evaluates all declared ratios and returns them in order with
// formulas attached. Interpretations are left to the analysis stage.
func ComputeRatios(fields map[string]interface{}) []FinancialRatio {
	ratios := make([]FinancialRatio, 0, len(RatioSpecs))
	for _, spec := range RatioSpecs {
		ratios = append(ratios, FinancialRatio{
			Name:    spec.Name,
			Formula: spec.Formula,
			Value:   ComputeRatio(spec, fields),
		})
	}
	return ratios
}

// numericField extracts a numeric operand from the field map. The explicit
// "Not available" marker, a nil value, or an absent key all count as missing.
func numericField(fields map[string]interface{}, name string) (float64, bool) {
	v, ok := fields[name]
	if !ok || v == nil {
		return 0, false
	}

	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		if n == "" || n == "Not available" {
			return 0, false
		}
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
