package models

// Grant is one descriptor from the external grants catalog. The catalog is a
// read-only dataset owned by the data team; fields mirror its published shape.
type Grant struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Provider string   `json:"provider"`
	Category []string `json:"category"`
	Amount   string   `json:"amount,omitempty"`
	Deadline string   `json:"deadline,omitempty"`
	URL      string   `json:"url,omitempty"`
}

// GrantorAnalysis is one record from the external grantor-analysis dataset,
// keyed by grant id.
type GrantorAnalysis struct {
	Grantor     string   `json:"grantor"`
	SuccessRate string   `json:"success_rate"`
	AvgAward    string   `json:"avg_award"`
	Priorities  []string `json:"priorities"`
	Notes       string   `json:"notes"`
}
