package alphavantage

import (
	"fmt"
)

// SearchMatch is one normalized symbol-search result.
type SearchMatch struct {
	Symbol     string
	Name       string
	Region     string
	MatchScore float64
}

// searchResponse mirrors the raw SYMBOL_SEARCH payload. Alpha Vantage uses
// numbered field names and signals errors and throttling inside the body.
type searchResponse struct {
	BestMatches []struct {
		Symbol     string `json:"1. symbol"`
		Name       string `json:"2. name"`
		Type       string `json:"3. type"`
		Region     string `json:"4. region"`
		Currency   string `json:"8. currency"`
		MatchScore string `json:"9. matchScore"`
	} `json:"bestMatches"`
	ErrorMessage string `json:"Error Message"`
	Note         string `json:"Note"`
}

// APIError represents a hard error from the Alpha Vantage API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("Alpha Vantage API error: %s (status: %d)", e.Message, e.StatusCode)
	}
	return fmt.Sprintf("Alpha Vantage API error: %s", e.Message)
}

// AdvisoryError carries an API advisory note (call frequency limit). It is
// not a hard failure; callers surface the note and treat it as zero matches.
type AdvisoryError struct {
	Note string
}

func (e *AdvisoryError) Error() string {
	return fmt.Sprintf("Alpha Vantage API note: %s", e.Note)
}
