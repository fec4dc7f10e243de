package ranking

import "fmt"

// Centroid aggregation modes.
const (
	CentroidMean = "mean"
	CentroidSum  = "sum"
)

// Lead decay functions for the DEMS lead value.
const (
	LeadDecayInverse = "inverse" // 1/position
	LeadDecayLinear  = "linear"  // 1 - (position-1)/n
)

// DEMSWeights holds the DEMS sub-feature weights.
type DEMSWeights struct {
	VerbSpecificity float64 `yaml:"verb_specificity" json:"verb_specificity"` // default: 1
	LeadValue       float64 `yaml:"lead_value" json:"lead_value"`             // default: 1
	Pronoun         float64 `yaml:"pronoun" json:"pronoun"`                   // default: 1
	Length          float64 `yaml:"length" json:"length"`                     // default: 1
	Location        float64 `yaml:"location" json:"location"`                 // default: 1
}

func (w DEMSWeights) sum() float64 {
	return w.VerbSpecificity + w.LeadValue + w.Pronoun + w.Length + w.Location
}

func (w DEMSWeights) isZero() bool {
	return w == DEMSWeights{}
}

// RankingConfig holds all configuration for the rankers.
type RankingConfig struct {
	// Graph centrality
	Damping              float64 `yaml:"damping"`               // default: 0.85
	MaxIterations        int     `yaml:"max_iterations"`        // default: 100
	ConvergenceTolerance float64 `yaml:"convergence_tolerance"` // default: 1e-6

	// LexRank
	SimilarityThreshold float64 `yaml:"similarity_threshold"` // default: 0 (continuous LexRank)
	LexRankBinary       bool    `yaml:"lexrank_binary"`       // default: false

	// Centroid
	CentroidMode string `yaml:"centroid_mode"` // default: mean

	// Solve one document per goroutine. Results are identical either way.
	Parallel bool `yaml:"parallel"` // default: false

	// DEMS
	Weights         DEMSWeights `yaml:"dems_weights"`
	LeadDecay       string      `yaml:"lead_decay"`        // default: inverse
	TargetLengthMin int         `yaml:"target_length_min"` // default: 8
	TargetLengthMax int         `yaml:"target_length_max"` // default: 30
	GenericVerbs    []string    `yaml:"generic_verbs,omitempty"` // default: DefaultGenericVerbs
}

// DefaultGenericVerbs are lemmas of verbs too common to carry content.
var DefaultGenericVerbs = []string{
	"be", "have", "do", "say", "get", "make", "go", "know", "take", "see",
	"come", "think", "look", "want", "give", "use", "find", "tell", "ask",
	"seem", "feel", "try", "leave", "call", "put", "keep", "let", "begin",
	"can", "could", "will", "would", "shall", "should", "may", "might", "must",
}

// DefaultRankingConfig returns the default ranking configuration.
func DefaultRankingConfig() *RankingConfig {
	return &RankingConfig{
		Damping:              0.85,
		MaxIterations:        100,
		ConvergenceTolerance: 1e-6,

		SimilarityThreshold: 0,
		LexRankBinary:       false,

		CentroidMode: CentroidMean,

		Weights: DEMSWeights{
			VerbSpecificity: 1,
			LeadValue:       1,
			Pronoun:         1,
			Length:          1,
			Location:        1,
		},
		LeadDecay:       LeadDecayInverse,
		TargetLengthMin: 8,
		TargetLengthMax: 30,
		GenericVerbs:    append([]string(nil), DefaultGenericVerbs...),
	}
}

// ApplyDefaults fills in zero values with defaults.
func (c *RankingConfig) ApplyDefaults() {
	defaults := DefaultRankingConfig()

	if c.Damping == 0 {
		c.Damping = defaults.Damping
	}
	if c.MaxIterations == 0 {
		c.MaxIterations = defaults.MaxIterations
	}
	if c.ConvergenceTolerance == 0 {
		c.ConvergenceTolerance = defaults.ConvergenceTolerance
	}
	if c.CentroidMode == "" {
		c.CentroidMode = defaults.CentroidMode
	}

	// An unset weight block means equal weighting; a partially set block is
	// taken as written so a feature can be switched off with 0.
	if c.Weights.isZero() {
		c.Weights = defaults.Weights
	}
	if c.LeadDecay == "" {
		c.LeadDecay = defaults.LeadDecay
	}
	if c.TargetLengthMin == 0 {
		c.TargetLengthMin = defaults.TargetLengthMin
	}
	if c.TargetLengthMax == 0 {
		c.TargetLengthMax = defaults.TargetLengthMax
	}
	if c.GenericVerbs == nil {
		c.GenericVerbs = defaults.GenericVerbs
	}
}

// Validate checks that every option is in range.
func (c *RankingConfig) Validate() error {
	if c.Damping <= 0 || c.Damping >= 1 {
		return fmt.Errorf("%w: damping must be in (0,1), got %v", ErrInvalidConfig, c.Damping)
	}
	if c.MaxIterations <= 0 {
		return fmt.Errorf("%w: max_iterations must be positive, got %d", ErrInvalidConfig, c.MaxIterations)
	}
	if c.ConvergenceTolerance <= 0 {
		return fmt.Errorf("%w: convergence_tolerance must be positive, got %v", ErrInvalidConfig, c.ConvergenceTolerance)
	}
	if c.SimilarityThreshold < 0 || c.SimilarityThreshold > 1 {
		return fmt.Errorf("%w: similarity_threshold must be in [0,1], got %v", ErrInvalidConfig, c.SimilarityThreshold)
	}
	if c.CentroidMode != CentroidMean && c.CentroidMode != CentroidSum {
		return fmt.Errorf("%w: centroid_mode must be %q or %q, got %q", ErrInvalidConfig, CentroidMean, CentroidSum, c.CentroidMode)
	}
	if c.LeadDecay != LeadDecayInverse && c.LeadDecay != LeadDecayLinear {
		return fmt.Errorf("%w: lead_decay must be %q or %q, got %q", ErrInvalidConfig, LeadDecayInverse, LeadDecayLinear, c.LeadDecay)
	}
	w := c.Weights
	if w.VerbSpecificity < 0 || w.LeadValue < 0 || w.Pronoun < 0 || w.Length < 0 || w.Location < 0 {
		return fmt.Errorf("%w: dems_weights must be non-negative", ErrInvalidConfig)
	}
	if w.sum() <= 0 {
		return fmt.Errorf("%w: dems_weights must not all be zero", ErrInvalidConfig)
	}
	if c.TargetLengthMin < 1 || c.TargetLengthMax < c.TargetLengthMin {
		return fmt.Errorf("%w: target length band [%d,%d] is empty", ErrInvalidConfig, c.TargetLengthMin, c.TargetLengthMax)
	}
	return nil
}

func (c *RankingConfig) centralityOptions() CentralityOptions {
	return CentralityOptions{
		Damping:       c.Damping,
		MaxIterations: c.MaxIterations,
		Tolerance:     c.ConvergenceTolerance,
	}
}
