package models

// SummarizeResponse is the response for a summarize request.
type SummarizeResponse struct {
	// ID is set when the summary was persisted.
	ID        string            `json:"id,omitempty"`
	Strategy  string            `json:"strategy"`
	Order     string            `json:"order"`
	Sentences []SummarySentence `json:"sentences"`
	Summary   string            `json:"summary"`
	Words     int               `json:"words"`
	Documents int               `json:"documents"`
	Ranked    int               `json:"ranked"`
	ElapsedMs int64             `json:"elapsed_ms"`
}

// SummaryListResponse is a page of stored summaries.
type SummaryListResponse struct {
	Summaries []*SummaryRecord `json:"summaries"`
	Total     int              `json:"total"`
	Offset    int              `json:"offset"`
	Limit     int              `json:"limit"`
}

// StrategyInfo describes a ranking strategy.
type StrategyInfo struct {
	Name         string `json:"name"`
	Column       string `json:"column"`
	NeedsVectors bool   `json:"needs_vectors"`
	Description  string `json:"description"`
}

// StatusResponse reports storage totals and watched directories.
type StatusResponse struct {
	Summaries     int64    `json:"summaries"`
	Sentences     int64    `json:"sentences"`
	DatabasePath  string   `json:"database_path"`
	DatabaseBytes int64    `json:"database_bytes"`
	Watching      []string `json:"watching,omitempty"`
}
