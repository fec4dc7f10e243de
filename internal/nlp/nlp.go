// Package nlp provides the preprocessing collaborators that turn raw text into
// annotated sentence rows: sentence splitting, word tokenization, POS tagging,
// lemmatization, named-entity flags and TF-IDF vectorization.
package nlp

// TaggedToken is a token paired with its part-of-speech tag.
type TaggedToken struct {
	Text string `json:"text"`
	Tag  string `json:"tag"`
}

// Sense is the coarse word class used for lemmatization.
type Sense int

const (
	// SenseNoun is a noun (the default sense).
	SenseNoun Sense = iota
	// SenseVerb is a verb.
	SenseVerb
	// SenseAdjective is an adjective.
	SenseAdjective
	// SenseAdverb is an adverb.
	SenseAdverb
)

// String returns a string representation of the sense.
func (s Sense) String() string {
	switch s {
	case SenseNoun:
		return "noun"
	case SenseVerb:
		return "verb"
	case SenseAdjective:
		return "adjective"
	case SenseAdverb:
		return "adverb"
	default:
		return "unknown"
	}
}

var senseByPrefix = map[string]Sense{
	"NN": SenseNoun,
	"JJ": SenseAdjective,
	"VB": SenseVerb,
	"RB": SenseAdverb,
}

// SenseForTag maps a Penn Treebank tag to its lemma sense by two-letter
// prefix. Unknown tags are treated as nouns.
func SenseForTag(tag string) Sense {
	if s, ok := senseByPrefix[TagPrefix(tag)]; ok {
		return s
	}
	return SenseNoun
}

// TagPrefix returns the first two characters of a tag, or the tag itself when
// shorter.
func TagPrefix(tag string) string {
	if len(tag) <= 2 {
		return tag
	}
	return tag[:2]
}

// Word analyzer names.
const (
	AnalyzerStandard = "standard"
	AnalyzerEnglish  = "en"
	AnalyzerProse    = "prose"
)

// Sentence splitter names.
const (
	SplitterProse  = "prose"
	SplitterSimple = "simple"
)
