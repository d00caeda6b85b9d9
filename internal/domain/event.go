package domain

// Event is a single visa-application progress update. At least one of
// Percentage or Message must be set; Percentage, when present, lies in
// [0,100]. Events carry no identity and are never persisted.
type Event struct {
	Percentage *float64 `json:"percentage,omitempty"`
	Message    string   `json:"message,omitempty"`
}

// HasPayload reports whether the event carries at least one field.
func (e Event) HasPayload() bool {
	return e.Percentage != nil || e.Message != ""
}

// PercentageInRange reports whether the percentage, if present, lies in
// [0,100]. Events without a percentage are always in range.
func (e Event) PercentageInRange() bool {
	if e.Percentage == nil {
		return true
	}
	return *e.Percentage >= 0 && *e.Percentage <= 100
}
