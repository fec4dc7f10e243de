package nlp

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/jdkato/prose/v2"
)

// ProseSentenceSplitter splits text with prose's punkt segmenter, which knows
// common abbreviations ("Dr.", "U.S.") and quoted sentence ends.
type ProseSentenceSplitter struct{}

// NewProseSentenceSplitter creates a new ProseSentenceSplitter.
func NewProseSentenceSplitter() *ProseSentenceSplitter {
	return &ProseSentenceSplitter{}
}

// Split returns the non-empty sentences of text in order.
func (s *ProseSentenceSplitter) Split(text string) ([]string, error) {
	if strings.TrimSpace(text) == "" {
		return []string{}, nil
	}
	doc, err := prose.NewDocument(text,
		prose.WithTokenization(false),
		prose.WithTagging(false),
		prose.WithExtraction(false))
	if err != nil {
		return nil, fmt.Errorf("failed to segment text: %w", err)
	}
	out := make([]string, 0, len(doc.Sentences()))
	for _, sent := range doc.Sentences() {
		if t := strings.TrimSpace(sent.Text); t != "" {
			out = append(out, t)
		}
	}
	return out, nil
}

var sentenceEnd = regexp.MustCompile(`[.!?]+["'”’)\]]*\s+`)

// SimpleSentenceSplitter splits on terminal punctuation followed by
// whitespace. It loads no model and is used for plain notes and tests.
type SimpleSentenceSplitter struct{}

// NewSimpleSentenceSplitter creates a new SimpleSentenceSplitter.
func NewSimpleSentenceSplitter() *SimpleSentenceSplitter {
	return &SimpleSentenceSplitter{}
}

// Split returns the non-empty sentences of text in order.
func (s *SimpleSentenceSplitter) Split(text string) ([]string, error) {
	out := []string{}
	start := 0
	for _, loc := range sentenceEnd.FindAllStringIndex(text, -1) {
		if t := strings.TrimSpace(text[start:loc[1]]); t != "" {
			out = append(out, t)
		}
		start = loc[1]
	}
	if t := strings.TrimSpace(text[start:]); t != "" {
		out = append(out, t)
	}
	return out, nil
}
