// Package models defines request, response and persisted record types for
// summarization runs.
package models

import (
	"strings"
	"time"
)

// SummarySentence is one selected sentence as stored and returned.
type SummarySentence struct {
	Rank     int     `json:"rank" db:"rank"`
	DocID    int     `json:"doc" db:"doc_id"`
	Position int     `json:"position" db:"position"`
	Text     string  `json:"text" db:"text"`
	Score    float64 `json:"score" db:"score"`
}

// SummaryRecord is a persisted summarization run.
type SummaryRecord struct {
	ID         string            `json:"id" db:"id"`
	SourceID   string            `json:"source_id,omitempty" db:"source_id"`
	SourcePath string            `json:"source_path,omitempty" db:"source_path"`
	Title      string            `json:"title,omitempty" db:"title"`
	Strategy   string            `json:"strategy" db:"strategy"`
	Order      string            `json:"order" db:"sentence_order"`
	Documents  int               `json:"documents" db:"documents"`
	Ranked     int               `json:"ranked" db:"ranked"`
	Sentences  []SummarySentence `json:"sentences" db:"-"`
	CreatedAt  time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at" db:"updated_at"`
}

// Text joins the sentences with single spaces.
func (r *SummaryRecord) Text() string {
	parts := make([]string, len(r.Sentences))
	for i, s := range r.Sentences {
		parts[i] = s.Text
	}
	return strings.Join(parts, " ")
}
