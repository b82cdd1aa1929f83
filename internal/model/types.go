package model

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// ParamSnapshot is the serialized form of an adaptive parameter state at the
// end of one generation. Restoring a snapshot must reproduce every field
// exactly; nothing is re-derived on load.
type ParamSnapshot struct {
	VersionedRecord
	RunID      string `json:"run_id"`
	Generation int    `json:"generation"`

	MutationStrategy  string `json:"mutation_strategy"`
	CrossoverStrategy string `json:"crossover_strategy"`

	Strength       float64 `json:"strength"`
	StrengthSet    bool    `json:"strength_set"`
	Probability    float64 `json:"probability"`
	ProbabilitySet bool    `json:"probability_set"`

	MinStrength    float64 `json:"min_strength"`
	MaxStrength    float64 `json:"max_strength"`
	MinProbability float64 `json:"min_probability"`
	MaxProbability float64 `json:"max_probability"`

	IncreaseFactor float64 `json:"increase_factor"`
	DecreaseFactor float64 `json:"decrease_factor"`

	MinDiversityThreshold float64 `json:"min_diversity_threshold"`
	MaxDiversityThreshold float64 `json:"max_diversity_threshold"`

	Tau float64 `json:"tau"`

	CrossoverProbability    float64 `json:"crossover_probability"`
	CrossoverProbabilitySet bool    `json:"crossover_probability_set"`
	MinCrossoverProbability float64 `json:"min_crossover_probability"`
	MaxCrossoverProbability float64 `json:"max_crossover_probability"`
	CrossoverIncreaseFactor float64 `json:"crossover_increase_factor"`
	CrossoverDecreaseFactor float64 `json:"crossover_decrease_factor"`

	DiversityEMA    float64 `json:"diversity_ema"`
	DiversityEMASet bool    `json:"diversity_ema_set"`
}

// LineageRecord tracks one individual in one generation for ancestry and
// structural-event analysis.
type LineageRecord struct {
	VersionedRecord
	RunID        string  `json:"run_id"`
	Generation   int     `json:"generation"`
	IndividualID string  `json:"individual_id"`
	ParentID     string  `json:"parent_id"`
	Origin       string  `json:"origin"`
	Structural   bool    `json:"structural"`
	Fitness      float64 `json:"fitness"`
	Evaluated    bool    `json:"evaluated"`
}

// RunSummary describes one completed or in-progress evolution run.
type RunSummary struct {
	VersionedRecord
	ID          string  `json:"id"`
	Objective   string  `json:"objective"`
	Generations int     `json:"generations"`
	Population  int     `json:"population"`
	Seed        int64   `json:"seed"`
	BestFitness float64 `json:"best_fitness"`
}
