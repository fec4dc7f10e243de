package summarizer

import (
	"fmt"
	"strings"

	"github.com/hyperjump/yoyaku/internal/nlp"
	"github.com/hyperjump/yoyaku/internal/ranking"
)

// Pipeline names the preprocessing components to use.
type Pipeline struct {
	// SentenceSplitter is nlp.SplitterProse or nlp.SplitterSimple.
	SentenceSplitter string
	// WordAnalyzer is nlp.AnalyzerStandard, nlp.AnalyzerEnglish or
	// nlp.AnalyzerProse. DEMS always tokenizes with prose because tagging
	// needs surface forms.
	WordAnalyzer string
}

// NewDefault creates a Summarizer wired with the nlp package's collaborators.
// opts are applied after the defaults and may replace any of them.
func NewDefault(strategy ranking.Strategy, config *ranking.RankingConfig, p Pipeline, opts ...Option) (*Summarizer, error) {
	splitter, err := newSentenceSplitter(p.SentenceSplitter)
	if err != nil {
		return nil, err
	}
	analyzer := p.WordAnalyzer
	if strategy == ranking.StrategyDEMS {
		analyzer = nlp.AnalyzerProse
	}
	words, err := newWordTokenizer(analyzer)
	if err != nil {
		return nil, err
	}

	var lemmaBases []string
	if config != nil {
		lemmaBases = config.GenericVerbs
	}
	defaults := []Option{
		WithSentenceSplitter(splitter),
		WithWordTokenizer(words),
		WithTagger(nlp.NewProseTagger()),
		WithLemmatizer(nlp.NewSnowballLemmatizer(lemmaBases...)),
		WithEntityRecognizer(nlp.NewProseRecognizer()),
		WithVectorizer(nlp.NewTFIDFVectorizer()),
	}
	return New(strategy, config, append(defaults, opts...)...)
}

func newSentenceSplitter(name string) (SentenceSplitter, error) {
	switch strings.ToLower(name) {
	case "", nlp.SplitterProse:
		return nlp.NewProseSentenceSplitter(), nil
	case nlp.SplitterSimple:
		return nlp.NewSimpleSentenceSplitter(), nil
	default:
		return nil, fmt.Errorf("unknown sentence splitter %q", name)
	}
}

func newWordTokenizer(name string) (WordTokenizer, error) {
	switch n := strings.ToLower(name); n {
	case "":
		return nlp.NewBleveTokenizer(nlp.AnalyzerStandard)
	case nlp.AnalyzerStandard, nlp.AnalyzerEnglish:
		return nlp.NewBleveTokenizer(n)
	case nlp.AnalyzerProse:
		return nlp.NewProseTokenizer(), nil
	default:
		return nil, fmt.Errorf("unknown word analyzer %q", name)
	}
}
