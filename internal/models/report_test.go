package models

import (
	"strings"
	"testing"
)

func sampleReport() string {
	var b strings.Builder
	b.WriteString("# Apple Inc. (AAPL)\n\n")
	for _, section := range ReportSections {
		b.WriteString("## " + section + "\n\ncontent\n\n")
	}
	return b.String()
}

func TestValidateSections(t *testing.T) {
	r := &Report{ContentMarkdown: sampleReport()}
	if err := r.ValidateSections(); err != nil {
		t.Errorf("complete report failed validation: %v", err)
	}
}

func TestValidateSectionsMissing(t *testing.T) {
	content := strings.Replace(sampleReport(), "## Recent News & Sentiment", "## Something Else", 1)
	r := &Report{ContentMarkdown: content}
	err := r.ValidateSections()
	if err == nil {
		t.Fatal("expected error for missing section")
	}
	if !strings.Contains(err.Error(), "Recent News & Sentiment") {
		t.Errorf("error should name the missing section, got: %v", err)
	}
}

func TestValidateSectionsOutOfOrder(t *testing.T) {
	content := "## " + ReportSections[1] + "\n\n## " + ReportSections[0] + "\n\n" +
		"## " + ReportSections[2] + "\n\n## " + ReportSections[3] + "\n\n## " + ReportSections[4] + "\n"
	r := &Report{ContentMarkdown: content}
	if err := r.ValidateSections(); err == nil {
		t.Fatal("expected error for out-of-order sections")
	}
}

func TestFinancialAnalysisOutputValidate(t *testing.T) {
	valid := &FinancialAnalysisOutput{
		HealthSummary: "Solid margins, manageable leverage.",
		Ratios: []FinancialRatio{
			{Name: "Net Profit Margin", Formula: "Net Income / Total Revenue", Value: "0.25", Interpretation: "strong"},
		},
	}
	if err := valid.Validate(); err != nil {
		t.Errorf("valid output failed validation: %v", err)
	}

	missingSummary := &FinancialAnalysisOutput{
		Ratios: []FinancialRatio{{Name: "n", Formula: "f", Value: "v"}},
	}
	if err := missingSummary.Validate(); err == nil {
		t.Error("expected error for missing health_summary")
	}

	emptyRatios := &FinancialAnalysisOutput{HealthSummary: "ok"}
	if err := emptyRatios.Validate(); err == nil {
		t.Error("expected error for empty ratios")
	}
}
