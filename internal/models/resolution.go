package models

// ResolutionStatus indicates the outcome of a ticker resolution attempt.
type ResolutionStatus string

const (
	// ResolutionResolved indicates exactly one canonical ticker was determined
	ResolutionResolved ResolutionStatus = "resolved"
	// ResolutionAmbiguous indicates multiple candidate tickers require an
	// explicit caller decision before the pipeline may proceed
	ResolutionAmbiguous ResolutionStatus = "ambiguous"
	// ResolutionFailed indicates no ticker could be determined
	ResolutionFailed ResolutionStatus = "failed"
)

// TickerMatch is one candidate from the symbol search provider.
type TickerMatch struct {
	Symbol     string  `json:"symbol"`
	Name       string  `json:"name"`
	Region     string  `json:"region"`
	MatchScore float64 `json:"match_score"`
}

// Resolution is the structured result of resolving free-text company input
// into a canonical ticker. Callers branch on Status, never on message text.
type Resolution struct {
	Status ResolutionStatus `json:"status"`

	// Ticker is the canonical symbol when Status == ResolutionResolved
	Ticker string `json:"ticker,omitempty"`

	// Matches holds the top candidates (max 5) when Status == ResolutionAmbiguous
	Matches []TickerMatch `json:"matches,omitempty"`

	// Reason is a human-readable explanation for ambiguous or failed outcomes
	Reason string `json:"reason,omitempty"`

	// Advisory carries a provider rate-limit/advisory note surfaced during search
	Advisory string `json:"advisory,omitempty"`
}
