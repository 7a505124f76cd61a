// Package common provides shared utilities across the application.
package common

import (
	"regexp"
	"strings"
)

// tickerPattern matches a canonical ticker symbol: 1-5 uppercase letters.
var tickerPattern = regexp.MustCompile(`^[A-Z]{1,5}$`)

// ExchangeToSuffix maps exchange codes to EODHD API suffixes.
var ExchangeToSuffix = map[string]string{
	"NYSE":   ".US",
	"NASDAQ": ".US",
	"ASX":    ".AU",
	"LSE":    ".LSE",
	"TSX":    ".TO",
	"XETRA":  ".XETRA",
}

// DefaultExchange is the exchange assumed for bare ticker symbols.
// Can be overridden via [markets] default_exchange in TOML config.
var DefaultExchange = "NYSE"

// SetDefaultExchange sets the default exchange for bare tickers.
// Called during app initialization from config.
func SetDefaultExchange(exchange string) {
	if exchange != "" {
		DefaultExchange = strings.ToUpper(exchange)
	}
}

// NormalizeTicker trims whitespace and uppercases a ticker candidate.
func NormalizeTicker(input string) string {
	return strings.ToUpper(strings.TrimSpace(input))
}

// IsTickerSymbol reports whether input already looks like a canonical
// ticker symbol: 1-5 uppercase letters. Case matters; "Apple" is a company
// name to search for, "AAPL" is a symbol.
func IsTickerSymbol(input string) bool {
	return tickerPattern.MatchString(strings.TrimSpace(input))
}

// EODHDSymbol converts a canonical ticker to the EODHD API symbol format
// using the default exchange suffix. Example: "AAPL" -> "AAPL.US"
func EODHDSymbol(ticker string) string {
	ticker = NormalizeTicker(ticker)
	if ticker == "" {
		return ""
	}
	suffix, ok := ExchangeToSuffix[DefaultExchange]
	if !ok {
		suffix = ".US"
	}
	return ticker + suffix
}
