// Package summarizer turns raw documents into a ranked sentence table and a
// Summary. It owns no algorithms: text is split, tokenized and annotated by
// injected collaborators, then scored by one ranking.Ranker.
package summarizer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/yoyaku/internal/nlp"
	"github.com/hyperjump/yoyaku/internal/ranking"
)

// ErrMissingCollaborator is returned by New when a strategy needs a
// preprocessing component that was not supplied.
var ErrMissingCollaborator = errors.New("missing collaborator")

// SentenceSplitter splits document text into sentences.
type SentenceSplitter interface {
	Split(text string) ([]string, error)
}

// WordTokenizer splits a sentence into tokens.
type WordTokenizer interface {
	Tokenize(sentence string) ([]string, error)
}

// Tagger pairs each token with a part-of-speech tag.
type Tagger interface {
	Tag(tokens []string) ([]nlp.TaggedToken, error)
}

// Lemmatizer maps a token and its word class to a lemma.
type Lemmatizer interface {
	Lemma(token string, sense nlp.Sense) string
}

// EntityRecognizer flags tokens that are part of a named entity.
type EntityRecognizer interface {
	Recognize(tagged []nlp.TaggedToken) ([]bool, error)
}

// Vectorizer builds one TF-IDF row per token sequence.
type Vectorizer interface {
	Vectorize(corpus [][]string) (*ranking.Vectors, error)
}

// Summarizer runs one ranking strategy over documents.
type Summarizer struct {
	strategy ranking.Strategy
	ranker   ranking.Ranker

	sentences  SentenceSplitter
	words      WordTokenizer
	tagger     Tagger
	lemmatizer Lemmatizer
	recognizer EntityRecognizer
	vectorizer Vectorizer

	logger *zap.Logger
}

// Option configures a Summarizer.
type Option func(*Summarizer)

// WithSentenceSplitter sets the sentence splitter.
func WithSentenceSplitter(s SentenceSplitter) Option {
	return func(z *Summarizer) { z.sentences = s }
}

// WithWordTokenizer sets the word tokenizer.
func WithWordTokenizer(w WordTokenizer) Option {
	return func(z *Summarizer) { z.words = w }
}

// WithTagger sets the POS tagger.
func WithTagger(t Tagger) Option {
	return func(z *Summarizer) { z.tagger = t }
}

// WithLemmatizer sets the lemmatizer.
func WithLemmatizer(l Lemmatizer) Option {
	return func(z *Summarizer) { z.lemmatizer = l }
}

// WithEntityRecognizer sets the named-entity recognizer.
func WithEntityRecognizer(r EntityRecognizer) Option {
	return func(z *Summarizer) { z.recognizer = r }
}

// WithVectorizer sets the TF-IDF vectorizer.
func WithVectorizer(v Vectorizer) Option {
	return func(z *Summarizer) { z.vectorizer = v }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(z *Summarizer) { z.logger = logger }
}

// New creates a Summarizer for strategy. Every collaborator the strategy
// consumes must be supplied; config may be nil for defaults.
func New(strategy ranking.Strategy, config *ranking.RankingConfig, opts ...Option) (*Summarizer, error) {
	ranker, err := ranking.NewRanker(strategy, config)
	if err != nil {
		return nil, err
	}
	s := &Summarizer{
		strategy: strategy,
		ranker:   ranker,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.checkCollaborators(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Summarizer) checkCollaborators() error {
	need := func(ok bool, what string) error {
		if ok {
			return nil
		}
		return fmt.Errorf("%w: %s requires a %s", ErrMissingCollaborator, s.strategy, what)
	}
	checks := []error{need(s.sentences != nil, "sentence splitter")}
	if s.needsWords() {
		checks = append(checks, need(s.words != nil, "word tokenizer"))
	}
	if s.strategy.NeedsVectors() {
		checks = append(checks, need(s.vectorizer != nil, "vectorizer"))
	}
	if s.strategy == ranking.StrategyDEMS {
		checks = append(checks,
			need(s.tagger != nil, "pos tagger"),
			need(s.lemmatizer != nil, "lemmatizer"),
			need(s.recognizer != nil, "named-entity recognizer"))
	}
	return errors.Join(checks...)
}

func (s *Summarizer) needsWords() bool {
	return s.strategy != ranking.StrategyLede
}

// Strategy returns the strategy the summarizer runs.
func (s *Summarizer) Strategy() ranking.Strategy {
	return s.strategy
}

// Analyze builds the annotated feature table for docs and ranks it. Document
// and sentence numbers start at 1. An empty document list or a document
// without sentences contributes no rows.
func (s *Summarizer) Analyze(ctx context.Context, docs []string) (*ranking.FeatureTable, error) {
	start := time.Now()
	var records []ranking.SentenceRecord
	for d, text := range docs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		sents, err := s.sentences.Split(text)
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", d+1, err)
		}
		for p, sent := range sents {
			rec := ranking.SentenceRecord{DocID: d + 1, Position: p + 1, Text: sent}
			if err := s.annotate(&rec); err != nil {
				return nil, fmt.Errorf("document %d sentence %d: %w", d+1, p+1, err)
			}
			records = append(records, rec)
		}
	}

	table := ranking.NewFeatureTable(records)
	var vectors *ranking.Vectors
	if s.strategy.NeedsVectors() {
		corpus := make([][]string, table.Len())
		for i := range corpus {
			corpus[i] = table.Row(i).Tokens
		}
		var err error
		if vectors, err = s.vectorizer.Vectorize(corpus); err != nil {
			return nil, fmt.Errorf("failed to vectorize sentences: %w", err)
		}
	}
	if err := s.ranker.Rank(table, vectors); err != nil {
		return nil, err
	}

	s.logger.Debug("Ranked sentences",
		zap.String("strategy", s.strategy.String()),
		zap.Int("documents", len(docs)),
		zap.Int("sentences", table.Len()),
		zap.Duration("elapsed", time.Since(start)))
	return table, nil
}

// annotate fills in the annotations the strategy consumes.
func (s *Summarizer) annotate(rec *ranking.SentenceRecord) error {
	if !s.needsWords() {
		return nil
	}
	tokens, err := s.words.Tokenize(rec.Text)
	if err != nil {
		return err
	}
	if tokens == nil {
		tokens = []string{}
	}
	rec.Tokens = tokens
	if s.strategy != ranking.StrategyDEMS {
		return nil
	}

	tagged, err := s.tagger.Tag(tokens)
	if err != nil {
		return err
	}
	if len(tagged) != len(tokens) {
		return fmt.Errorf("tagger returned %d tags for %d tokens", len(tagged), len(tokens))
	}
	rec.POSTags = make([]string, len(tagged))
	rec.Lemmas = make([]string, len(tagged))
	for i, t := range tagged {
		rec.POSTags[i] = nlp.TagPrefix(t.Tag)
		rec.Lemmas[i] = s.lemmatizer.Lemma(t.Text, nlp.SenseForTag(t.Tag))
	}
	if rec.Entities, err = s.recognizer.Recognize(tagged); err != nil {
		return err
	}
	return nil
}

// Summarize ranks docs and returns the selected sentences. Lede keeps only
// the first sentence of each document, in document order; every other
// strategy returns all sentences by descending score.
func (s *Summarizer) Summarize(ctx context.Context, docs []string) (*Summary, error) {
	table, err := s.Analyze(ctx, docs)
	if err != nil {
		return nil, err
	}
	col := s.strategy.Column()
	summary := &Summary{Strategy: s.strategy, Documents: len(docs), Ranked: table.Len()}

	if s.strategy == ranking.StrategyLede {
		for i := 0; i < table.Len(); i++ {
			if v, _ := table.Value(i, col); v == 1 {
				summary.Sentences = append(summary.Sentences, scored(table, i, v))
			}
		}
		return summary, nil
	}

	order, err := table.Order(col, true)
	if err != nil {
		return nil, err
	}
	summary.Sentences = make([]ScoredSentence, 0, len(order))
	for _, i := range order {
		v, _ := table.Value(i, col)
		summary.Sentences = append(summary.Sentences, scored(table, i, v))
	}
	return summary, nil
}

func scored(table *ranking.FeatureTable, i int, score float64) ScoredSentence {
	row := table.Row(i)
	return ScoredSentence{DocID: row.DocID, Position: row.Position, Text: row.Text, Score: score}
}
