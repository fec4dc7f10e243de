package nlp

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/jdkato/prose/v2"
)

// BleveTokenizer runs a Bleve analyzer over a sentence. The standard analyzer
// lowercases and drops English stop words; "en" additionally stems, so
// "ranking" and "ranked" overlap.
type BleveTokenizer struct {
	mapping  *mapping.IndexMappingImpl
	analyzer string
}

// NewBleveTokenizer creates a tokenizer for the named Bleve analyzer
// (AnalyzerStandard or AnalyzerEnglish).
func NewBleveTokenizer(analyzer string) (*BleveTokenizer, error) {
	switch analyzer {
	case "":
		analyzer = standard.Name
	case standard.Name, en.AnalyzerName:
	default:
		return nil, fmt.Errorf("unsupported analyzer %q", analyzer)
	}
	im := bleve.NewIndexMapping()
	if _, err := im.AnalyzeText(analyzer, []byte("warmup")); err != nil {
		return nil, fmt.Errorf("failed to load analyzer %q: %w", analyzer, err)
	}
	return &BleveTokenizer{mapping: im, analyzer: analyzer}, nil
}

// Analyzer returns the analyzer name.
func (t *BleveTokenizer) Analyzer() string {
	return t.analyzer
}

// Tokenize returns the analyzed terms of sentence. The result is never nil,
// so a sentence of only stop words yields an empty token list.
func (t *BleveTokenizer) Tokenize(sentence string) ([]string, error) {
	stream, err := t.mapping.AnalyzeText(t.analyzer, []byte(sentence))
	if err != nil {
		return nil, fmt.Errorf("failed to analyze sentence: %w", err)
	}
	out := make([]string, 0, len(stream))
	for _, tok := range stream {
		out = append(out, string(tok.Term))
	}
	return out, nil
}

// ProseTokenizer keeps surface forms and punctuation, which is what POS
// tagging and named-entity recognition expect.
type ProseTokenizer struct{}

// NewProseTokenizer creates a new ProseTokenizer.
func NewProseTokenizer() *ProseTokenizer {
	return &ProseTokenizer{}
}

// Tokenize returns the tokens of sentence. The result is never nil.
func (t *ProseTokenizer) Tokenize(sentence string) ([]string, error) {
	if strings.TrimSpace(sentence) == "" {
		return []string{}, nil
	}
	doc, err := prose.NewDocument(sentence,
		prose.WithSegmentation(false),
		prose.WithTagging(false),
		prose.WithExtraction(false))
	if err != nil {
		return nil, fmt.Errorf("failed to tokenize sentence: %w", err)
	}
	toks := doc.Tokens()
	out := make([]string, 0, len(toks))
	for _, tok := range toks {
		out = append(out, tok.Text)
	}
	return appendRemainder(sentence, out), nil
}

// appendRemainder appends whatever text follows the last token in sentence.
// prose drops the tokens after a sentence-final contraction ("isn't." comes
// back as "is"). The remainder is split on spaces with trailing punctuation
// as separate tokens.
func appendRemainder(sentence string, tokens []string) []string {
	cursor := 0
	for _, tok := range tokens {
		if i := strings.Index(sentence[cursor:], tok); i >= 0 {
			cursor += i + len(tok)
		}
	}
	for _, field := range strings.Fields(sentence[cursor:]) {
		end := len(field)
		for end > 0 {
			r, size := utf8.DecodeLastRuneInString(field[:end])
			if isWordRune(r) || r == '\'' {
				break
			}
			end -= size
		}
		if end > 0 {
			tokens = append(tokens, field[:end])
		}
		for _, r := range field[end:] {
			tokens = append(tokens, string(r))
		}
	}
	return tokens
}
