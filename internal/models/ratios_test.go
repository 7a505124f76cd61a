package models

import (
	"testing"
)

func TestComputeRatioMissingOperand(t *testing.T) {
	netMargin := RatioSpecs[1]
	if netMargin.Name != "Net Profit Margin" {
		t.Fatalf("unexpected spec order, got %q", netMargin.Name)
	}

	// Missing numerator must yield the sentinel naming the numerator
	fields := map[string]interface{}{
		"Net Income":    nil,
		"Total Revenue": 100.0,
	}
	got := ComputeRatio(netMargin, fields)
	want := "Cannot calculate due to missing Net Income"
	if got != want {
		t.Errorf("ComputeRatio = %q, want %q", got, want)
	}
	if !IsMissingDataValue(got) {
		t.Error("sentinel not recognized by IsMissingDataValue")
	}
}

func TestComputeRatio(t *testing.T) {
	tests := []struct {
		name   string
		spec   RatioSpec
		fields map[string]interface{}
		want   string
	}{
		{
			name: "computed value",
			spec: RatioSpecs[0], // Gross Profit Margin
			fields: map[string]interface{}{
				"Gross Profit":  57.97,
				"Total Revenue": 100.0,
			},
			want: "0.58",
		},
		{
			name: "not available marker counts as missing",
			spec: RatioSpecs[1],
			fields: map[string]interface{}{
				"Net Income":    "Not available",
				"Total Revenue": 100.0,
			},
			want: "Cannot calculate due to missing Net Income",
		},
		{
			name: "absent key counts as missing",
			spec: RatioSpecs[2], // Debt-to-Equity
			fields: map[string]interface{}{
				"Total Liabilities": 50.0,
			},
			want: "Cannot calculate due to missing Total Equity",
		},
		{
			name: "zero denominator is explicit, not a crash",
			spec: RatioSpecs[3], // Current Ratio
			fields: map[string]interface{}{
				"Current Assets":      10.0,
				"Current Liabilities": 0.0,
			},
			want: "Cannot calculate due to zero Current Liabilities",
		},
		{
			name: "numeric strings are parsed",
			spec: RatioSpecs[3],
			fields: map[string]interface{}{
				"Current Assets":      "150.5",
				"Current Liabilities": "100",
			},
			want: "1.50",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ComputeRatio(tt.spec, tt.fields); got != tt.want {
				t.Errorf("ComputeRatio = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestComputeRatiosOrderAndFormulas(t *testing.T) {
	ratios := ComputeRatios(map[string]interface{}{})
	if len(ratios) != len(RatioSpecs) {
		t.Fatalf("got %d ratios, want %d", len(ratios), len(RatioSpecs))
	}
	for i, spec := range RatioSpecs {
		if ratios[i].Name != spec.Name {
			t.Errorf("ratio %d = %q, want %q", i, ratios[i].Name, spec.Name)
		}
		if ratios[i].Formula != spec.Formula {
			t.Errorf("ratio %d formula = %q, want %q", i, ratios[i].Formula, spec.Formula)
		}
		if !IsMissingDataValue(ratios[i].Value) {
			t.Errorf("ratio %d on empty fields = %q, want missing-data sentinel", i, ratios[i].Value)
		}
	}
}
