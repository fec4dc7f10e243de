package nlp

import (
	"fmt"
	"strings"

	"github.com/jdkato/prose/v2"
)

// ProseTagger assigns Penn Treebank tags with prose's averaged perceptron.
type ProseTagger struct{}

// NewProseTagger creates a new ProseTagger.
func NewProseTagger() *ProseTagger {
	return &ProseTagger{}
}

// Tag returns one (token, tag) pair per input token, in order.
func (t *ProseTagger) Tag(tokens []string) ([]TaggedToken, error) {
	out := make([]TaggedToken, len(tokens))
	if len(tokens) == 0 {
		return out, nil
	}
	doc, err := prose.NewDocument(strings.Join(tokens, " "),
		prose.WithSegmentation(false),
		prose.WithExtraction(false))
	if err != nil {
		return nil, fmt.Errorf("failed to tag tokens: %w", err)
	}
	tagged := doc.Tokens()
	for i, tok := range tokens {
		out[i] = TaggedToken{Text: tok}
		out[i].Tag, tagged = consume(tok, tagged)
		if !isWord(tok) {
			// prose tags a standalone quote as VB or JJ.
			out[i].Tag = fallbackTag(tok)
		}
	}
	return out, nil
}

// consume takes the prose tokens that make up tok (prose may split a token
// such as "don't" in two) and returns the tag of the first one.
func consume(tok string, tagged []prose.Token) (string, []prose.Token) {
	tag := ""
	n := 0
	for len(tagged) > 0 && n < len(tok) {
		if tag == "" {
			tag = tagged[0].Tag
		}
		n += len(tagged[0].Text)
		tagged = tagged[1:]
	}
	if tag == "" {
		tag = fallbackTag(tok)
	}
	return tag, tagged
}

// fallbackTag tags punctuation as itself, as the Penn tag set does, and
// anything else as a noun.
func fallbackTag(tok string) string {
	if isWord(tok) {
		return "NN"
	}
	return tok
}
