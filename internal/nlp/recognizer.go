package nlp

import (
	"fmt"
	"strings"

	"github.com/jdkato/prose/v2"
)

// ProseRecognizer flags tokens that belong to a named entity (PERSON or GPE)
// found by prose's entity extractor.
type ProseRecognizer struct{}

// NewProseRecognizer creates a new ProseRecognizer.
func NewProseRecognizer() *ProseRecognizer {
	return &ProseRecognizer{}
}

// Recognize returns one flag per tagged token, true when the token is part
// of an entity span.
func (r *ProseRecognizer) Recognize(tagged []TaggedToken) ([]bool, error) {
	flags := make([]bool, len(tagged))
	if len(tagged) == 0 {
		return flags, nil
	}
	words := make([]string, len(tagged))
	for i, t := range tagged {
		words[i] = t.Text
	}
	doc, err := prose.NewDocument(strings.Join(words, " "), prose.WithSegmentation(false))
	if err != nil {
		return nil, fmt.Errorf("failed to extract entities: %w", err)
	}
	for _, ent := range doc.Entities() {
		MarkSpan(words, strings.Fields(ent.Text), flags)
	}
	return flags, nil
}

// MarkSpan sets flags for every occurrence of span in words.
func MarkSpan(words, span []string, flags []bool) {
	if len(span) == 0 {
		return
	}
	for i := 0; i+len(span) <= len(words); i++ {
		match := true
		for k, w := range span {
			if words[i+k] != w {
				match = false
				break
			}
		}
		if match {
			for k := range span {
				flags[i+k] = true
			}
		}
	}
}
