package common

import (
	"testing"
)

func TestIsTickerSymbol(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		// Canonical symbols: 1-5 uppercase letters
		{"AAPL", true},
		{"A", true},
		{"GOOGL", true},
		{"  MSFT  ", true},

		// Company names and lowercase input must go through search
		{"Apple", false},
		{"apple", false},
		{"aapl", false},
		{"Apple Inc", false},

		// Shape violations
		{"", false},
		{"TOOLONG", false},
		{"BRK.B", false},
		{"AAPL1", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := IsTickerSymbol(tt.input); got != tt.want {
				t.Errorf("IsTickerSymbol(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeTicker(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"aapl", "AAPL"},
		{"  msft ", "MSFT"},
		{"GOOGL", "GOOGL"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := NormalizeTicker(tt.input); got != tt.want {
			t.Errorf("NormalizeTicker(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestEODHDSymbol(t *testing.T) {
	originalDefault := DefaultExchange
	defer func() { DefaultExchange = originalDefault }()

	DefaultExchange = "NYSE"
	if got := EODHDSymbol("AAPL"); got != "AAPL.US" {
		t.Errorf("EODHDSymbol(AAPL) = %q, want AAPL.US", got)
	}
	if got := EODHDSymbol("aapl"); got != "AAPL.US" {
		t.Errorf("EODHDSymbol(aapl) = %q, want AAPL.US", got)
	}
	if got := EODHDSymbol(""); got != "" {
		t.Errorf("EODHDSymbol(\"\") = %q, want empty", got)
	}

	DefaultExchange = "ASX"
	if got := EODHDSymbol("BHP"); got != "BHP.AU" {
		t.Errorf("EODHDSymbol(BHP) = %q, want BHP.AU", got)
	}
}
