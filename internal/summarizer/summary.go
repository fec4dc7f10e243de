package summarizer

import (
	"sort"
	"strings"

	"github.com/hyperjump/yoyaku/internal/ranking"
)

// ScoredSentence is one selected sentence and its rank value.
type ScoredSentence struct {
	DocID    int     `json:"doc"`
	Position int     `json:"position"`
	Text     string  `json:"text"`
	Score    float64 `json:"score"`
}

// Words returns the number of whitespace-separated words in the sentence.
func (s ScoredSentence) Words() int {
	return len(strings.Fields(s.Text))
}

// Summary holds the ranked sentences of one run, best first.
type Summary struct {
	Strategy  ranking.Strategy
	Sentences []ScoredSentence
	// Documents is the number of input documents.
	Documents int
	// Ranked is the number of sentences that were scored.
	Ranked int
}

// Len returns the number of sentences.
func (s *Summary) Len() int {
	return len(s.Sentences)
}

func (s *Summary) with(sentences []ScoredSentence) *Summary {
	out := *s
	out.Sentences = sentences
	return &out
}

// Top returns a summary of the first n sentences. n <= 0 keeps them all.
func (s *Summary) Top(n int) *Summary {
	if n <= 0 || n >= len(s.Sentences) {
		return s.with(append([]ScoredSentence(nil), s.Sentences...))
	}
	return s.with(append([]ScoredSentence(nil), s.Sentences[:n]...))
}

// WithinWords keeps sentences in rank order until the next one would push
// the word count past max. max <= 0 keeps them all.
func (s *Summary) WithinWords(max int) *Summary {
	if max <= 0 {
		return s.Top(0)
	}
	var kept []ScoredSentence
	total := 0
	for _, sent := range s.Sentences {
		n := sent.Words()
		if total+n > max {
			break
		}
		total += n
		kept = append(kept, sent)
	}
	return s.with(kept)
}

// InDocumentOrder returns the same sentences sorted by document, then
// position, which reads better than score order.
func (s *Summary) InDocumentOrder() *Summary {
	sorted := append([]ScoredSentence(nil), s.Sentences...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].DocID != sorted[j].DocID {
			return sorted[i].DocID < sorted[j].DocID
		}
		return sorted[i].Position < sorted[j].Position
	})
	return s.with(sorted)
}

// Text joins the sentences with single spaces.
func (s *Summary) Text() string {
	parts := make([]string, len(s.Sentences))
	for i, sent := range s.Sentences {
		parts[i] = sent.Text
	}
	return strings.Join(parts, " ")
}

// Words returns the total word count of the summary.
func (s *Summary) Words() int {
	n := 0
	for _, sent := range s.Sentences {
		n += sent.Words()
	}
	return n
}
