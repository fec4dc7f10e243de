package nlp

import (
	"strings"
	"unicode"

	"github.com/blevesearch/snowballstem"
	"github.com/blevesearch/snowballstem/english"

	"github.com/hyperjump/yoyaku/internal/ranking"
)

var irregularVerbs = map[string]string{
	"am": "be", "is": "be", "are": "be", "was": "be", "were": "be", "been": "be", "being": "be",
	"'s": "be", "'re": "be", "'m": "be",
	"has": "have", "had": "have", "having": "have", "'ve": "have",
	"does": "do", "did": "do", "done": "do", "doing": "do",
	"said": "say", "says": "say",
	"got": "get", "gotten": "get",
	"made": "make",
	"went": "go", "gone": "go", "goes": "go",
	"knew": "know", "known": "know",
	"took": "take", "taken": "take",
	"saw": "see", "seen": "see",
	"came": "come",
	"thought": "think",
	"gave": "give", "given": "give",
	"found": "find",
	"told": "tell",
	"felt": "feel",
	"left": "leave",
	"kept": "keep",
	"began": "begin", "begun": "begin",
	"wrote": "write", "written": "write",
	"ran": "run",
	"bought": "buy",
	"brought": "bring",
	"held": "hold",
	"stood": "stand",
	"won": "win",
	"lost": "lose",
	"paid": "pay",
	"met": "meet",
	"sold": "sell",
	"led": "lead",
	"fell": "fall", "fallen": "fall",
	"rose": "rise", "risen": "rise",
	"n't": "not", "wo": "will", "ca": "can",
}

var irregularNouns = map[string]string{
	"men": "man", "women": "woman", "children": "child", "people": "person",
	"mice": "mouse", "feet": "foot", "teeth": "tooth", "geese": "goose",
}

// SnowballLemmatizer approximates lemmas with irregular-form tables, Snowball
// English stemming, and a dictionary that maps stems back to known base
// forms (so "leaves" becomes "leave", not "leav").
type SnowballLemmatizer struct {
	bases map[string]string
}

// NewSnowballLemmatizer creates a lemmatizer that restores the given base
// forms. With no arguments the ranking package's generic verbs are used, so
// their inflections are recognized as generic.
func NewSnowballLemmatizer(baseForms ...string) *SnowballLemmatizer {
	if len(baseForms) == 0 {
		baseForms = ranking.DefaultGenericVerbs
	}
	bases := make(map[string]string, len(baseForms))
	for _, b := range baseForms {
		b = strings.ToLower(b)
		if _, ok := bases[Stem(b)]; !ok {
			bases[Stem(b)] = b
		}
	}
	return &SnowballLemmatizer{bases: bases}
}

// Lemma returns the lemma of token read as sense.
func (l *SnowballLemmatizer) Lemma(token string, sense Sense) string {
	w := strings.ToLower(token)
	switch sense {
	case SenseVerb:
		if lemma, ok := irregularVerbs[w]; ok {
			return lemma
		}
	case SenseNoun:
		if lemma, ok := irregularNouns[w]; ok {
			return lemma
		}
	}
	if !isWord(w) {
		return w
	}
	stem := Stem(w)
	if base, ok := l.bases[stem]; ok {
		return base
	}
	return stem
}

// Stem returns the Snowball English stem of a lowercase word.
func Stem(word string) string {
	env := snowballstem.NewEnv(word)
	english.Stem(env)
	return env.Current()
}

func isWord(tok string) bool {
	for _, r := range tok {
		if isWordRune(r) {
			return true
		}
	}
	return false
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
