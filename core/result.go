package core

import "time"

// Alignment reports the invariant status of the configuration a result was
// produced under. It is populated on every result, including fallbacks.
type Alignment struct {
	FormulaHolds bool    `json:"formula_holds"`
	Primary      float64 `json:"primary"`
	Margin       float64 `json:"margin"`
	Secondary    float64 `json:"secondary"`
}

// ProcessingResult is the structured outcome of one Process call.
type ProcessingResult struct {
	ID                string        `json:"id"`
	Answer            string        `json:"answer"`
	SupportingDetails string        `json:"supporting_details"`
	Concepts          []Concept     `json:"concepts"`
	EdgesBuilt        int           `json:"edges_built"`
	EdgesRetained     int           `json:"edges_retained"`
	Alignment         Alignment     `json:"alignment"`
	Branch            string        `json:"branch"`
	Success           bool          `json:"success"`
	Error             string        `json:"error,omitempty"`
	Duration          time.Duration `json:"duration"`
	Timestamp         time.Time     `json:"timestamp"`
}
