package models

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hyperjump/yoyaku/internal/ranking"
)

// ErrInvalidRequest is returned by request validation.
var ErrInvalidRequest = errors.New("invalid request")

// Sentence orders for a summary.
const (
	OrderScore    = "score"
	OrderDocument = "document"
)

// SummarizeRequest asks for a summary of one or more documents.
type SummarizeRequest struct {
	Documents []string `json:"documents"`
	Strategy  string   `json:"strategy,omitempty"`
	Limit     int      `json:"limit,omitempty"`     // max sentences; 0 uses the configured default
	MaxWords  int      `json:"max_words,omitempty"` // word budget applied after Limit; 0 disables
	Order     string   `json:"order,omitempty"`     // "score" (default) or "document"
	Persist   bool     `json:"persist,omitempty"`
	Title     string   `json:"title,omitempty"`
}

// Validate checks the request and fills defaults. Limit is capped at
// maxLimit. An empty document list is valid and summarizes to nothing.
func (r *SummarizeRequest) Validate(defaultStrategy string, defaultLimit, maxLimit int) error {
	if r.Documents == nil {
		r.Documents = []string{}
	}
	if r.Strategy == "" {
		r.Strategy = defaultStrategy
	}
	strategy, err := ranking.ParseStrategy(r.Strategy)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	r.Strategy = strategy.String()

	if r.Limit < 0 || r.MaxWords < 0 {
		return fmt.Errorf("%w: limit and max_words must not be negative", ErrInvalidRequest)
	}
	if r.Limit == 0 {
		r.Limit = defaultLimit
	}
	if maxLimit > 0 && r.Limit > maxLimit {
		r.Limit = maxLimit
	}

	switch strings.ToLower(r.Order) {
	case "", OrderScore:
		r.Order = OrderScore
	case OrderDocument:
		r.Order = OrderDocument
	default:
		return fmt.Errorf("%w: order must be %q or %q", ErrInvalidRequest, OrderScore, OrderDocument)
	}
	return nil
}
