package ranking

import (
	"strings"
	"unicode"
)

// Location bucket scores. The opening of a document carries the most
// summary-worthy content and the closing tends to restate it.
const (
	LocationBeginScore  = 1.0
	LocationMiddleScore = 0.25
	LocationEndScore    = 0.5
)

// DEMSRanker combines five normalized linguistic features into one score:
// verb specificity, lead value, inverse pronoun count, sentence length and
// document location. Each feature lies in [0,1] and the composite is their
// weighted mean, so it is comparable across documents.
type DEMSRanker struct {
	config  *RankingConfig
	generic map[string]bool
}

// NewDEMSRanker creates a new DEMSRanker.
func NewDEMSRanker(config *RankingConfig) *DEMSRanker {
	generic := make(map[string]bool, len(config.GenericVerbs))
	for _, v := range config.GenericVerbs {
		generic[strings.ToLower(v)] = true
	}
	return &DEMSRanker{config: config, generic: generic}
}

// Strategy returns StrategyDEMS.
func (r *DEMSRanker) Strategy() Strategy { return StrategyDEMS }

// Column returns ColumnDEMS.
func (r *DEMSRanker) Column() Column { return ColumnDEMS }

// DEMSFeatures holds the sub-feature values of one sentence.
type DEMSFeatures struct {
	VerbSpecificity float64
	LeadValue       float64
	Pronoun         float64
	Length          float64
	Location        float64
}

// Composite returns the weighted mean of the features.
func (f DEMSFeatures) Composite(w DEMSWeights) float64 {
	total := w.sum()
	if total <= 0 {
		return 0
	}
	return (w.VerbSpecificity*f.VerbSpecificity +
		w.LeadValue*f.LeadValue +
		w.Pronoun*f.Pronoun +
		w.Length*f.Length +
		w.Location*f.Location) / total
}

// Rank writes rank:demsrank and the five sub-feature columns. Every row must
// carry tokens with aligned POS tags, lemmas and entity flags; a missing
// annotation fails before any column is written.
func (r *DEMSRanker) Rank(table *FeatureTable, _ *Vectors) error {
	for i := 0; i < table.Len(); i++ {
		if err := checkDEMSRow(table.Row(i)); err != nil {
			return err
		}
	}

	n := table.Len()
	cols := map[Column][]float64{
		ColumnVerbSpec:     make([]float64, n),
		ColumnLeadValue:    make([]float64, n),
		ColumnCountPronoun: make([]float64, n),
		ColumnSentLength:   make([]float64, n),
		ColumnLocation:     make([]float64, n),
		ColumnDEMS:         make([]float64, n),
	}
	for _, span := range table.Documents() {
		for i := span.Start; i < span.End; i++ {
			f := r.Features(table.Row(i), span.Len())
			cols[ColumnVerbSpec][i] = f.VerbSpecificity
			cols[ColumnLeadValue][i] = f.LeadValue
			cols[ColumnCountPronoun][i] = f.Pronoun
			cols[ColumnSentLength][i] = f.Length
			cols[ColumnLocation][i] = f.Location
			cols[ColumnDEMS][i] = f.Composite(r.config.Weights)
		}
	}
	for _, col := range []Column{ColumnVerbSpec, ColumnLeadValue, ColumnCountPronoun, ColumnSentLength, ColumnLocation, ColumnDEMS} {
		if err := table.SetColumn(col, cols[col]); err != nil {
			return err
		}
	}
	return nil
}

// Features computes the sub-features of rec in a document of docLen sentences.
func (r *DEMSRanker) Features(rec *SentenceRecord, docLen int) DEMSFeatures {
	return DEMSFeatures{
		VerbSpecificity: VerbSpecificity(rec.POSTags, rec.Lemmas, rec.Entities, r.generic),
		LeadValue:       LeadValue(rec.Position, docLen, r.config.LeadDecay),
		Pronoun:         PronounScore(rec.POSTags),
		Length:          LengthScore(rec.Tokens, rec.Entities, r.config.TargetLengthMin, r.config.TargetLengthMax),
		Location:        LocationScore(rec.Position, docLen),
	}
}

func checkDEMSRow(rec *SentenceRecord) error {
	switch {
	case rec.Tokens == nil:
		return missing(StrategyDEMS, "word tokens", rec)
	case len(rec.POSTags) != len(rec.Tokens):
		return missing(StrategyDEMS, "pos tags", rec)
	case len(rec.Lemmas) != len(rec.Tokens):
		return missing(StrategyDEMS, "lemmas", rec)
	case len(rec.Entities) != len(rec.Tokens):
		return missing(StrategyDEMS, "named-entity flags", rec)
	}
	return nil
}

// IsVerbTag reports whether a Penn Treebank tag (or its two-letter prefix)
// marks a verb.
func IsVerbTag(tag string) bool {
	return strings.HasPrefix(tag, "VB")
}

// IsPronounTag reports whether a tag marks a personal, possessive or wh-
// pronoun (PRP, PRP$, WP, WP$).
func IsPronounTag(tag string) bool {
	return strings.HasPrefix(tag, "PR") || strings.HasPrefix(tag, "WP")
}

// VerbSpecificity returns the share of verbs whose lemma is not generic.
// Tokens flagged as named entities or without letters or digits are never
// counted as verbs. A sentence without verbs scores 0.
func VerbSpecificity(tags, lemmas []string, entities []bool, generic map[string]bool) float64 {
	verbs, specific := 0, 0
	for i, tag := range tags {
		if !IsVerbTag(tag) || (i < len(entities) && entities[i]) {
			continue
		}
		if i < len(lemmas) && !isWord(lemmas[i]) {
			continue
		}
		verbs++
		if i < len(lemmas) && !generic[strings.ToLower(lemmas[i])] {
			specific++
		}
	}
	if verbs == 0 {
		return 0
	}
	return float64(specific) / float64(verbs)
}

// LeadValue decays with position: 1/position for LeadDecayInverse, or
// 1-(position-1)/docLen for LeadDecayLinear.
func LeadValue(position, docLen int, decay string) float64 {
	if position < 1 {
		position = 1
	}
	if decay == LeadDecayLinear {
		if docLen < position {
			docLen = position
		}
		return 1 - float64(position-1)/float64(docLen)
	}
	return 1 / float64(position)
}

// PronounScore returns 1/(1+pronouns), so pronoun-free sentences score 1.
func PronounScore(tags []string) float64 {
	count := 0
	for _, tag := range tags {
		if IsPronounTag(tag) {
			count++
		}
	}
	return 1 / float64(1+count)
}

// SentenceLength counts word tokens, ignoring punctuation and counting a
// run of named-entity tokens as a single unit.
func SentenceLength(tokens []string, entities []bool) int {
	n := 0
	inEntity := false
	for i, tok := range tokens {
		if !isWord(tok) {
			inEntity = false
			continue
		}
		ent := i < len(entities) && entities[i]
		if ent && inEntity {
			continue
		}
		inEntity = ent
		n++
	}
	return n
}

// LengthScore is 1 inside [minLen, maxLen], falls linearly to 0 below the
// band and decays as maxLen/length above it.
func LengthScore(tokens []string, entities []bool, minLen, maxLen int) float64 {
	n := SentenceLength(tokens, entities)
	switch {
	case n == 0:
		return 0
	case n < minLen:
		return float64(n) / float64(minLen)
	case n > maxLen:
		return float64(maxLen) / float64(n)
	}
	return 1
}

// LocationScore buckets a sentence into the beginning, middle or end third
// of its document.
func LocationScore(position, docLen int) float64 {
	if docLen <= 1 || position <= 1 {
		return LocationBeginScore
	}
	if position >= docLen {
		return LocationEndScore
	}
	r := float64(position-1) / float64(docLen)
	switch {
	case r < 1.0/3:
		return LocationBeginScore
	case r >= 2.0/3:
		return LocationEndScore
	}
	return LocationMiddleScore
}

func isWord(tok string) bool {
	for _, r := range tok {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
