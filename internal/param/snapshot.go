package param

import "evoforge/internal/model"

// Snapshot converts the state into its persistent record form. Every field
// is copied verbatim so that a restored state matches the original exactly.
func (p *AdaptiveParams) Snapshot(runID string, generation int, diversity *DiversityTracker) model.ParamSnapshot {
	snap := model.ParamSnapshot{
		RunID:      runID,
		Generation: generation,

		MutationStrategy:  p.MutationStrategy.String(),
		CrossoverStrategy: p.CrossoverStrategy.String(),

		Strength:       p.Strength,
		StrengthSet:    p.StrengthSet,
		Probability:    p.Probability,
		ProbabilitySet: p.ProbabilitySet,

		MinStrength:    p.MinStrength,
		MaxStrength:    p.MaxStrength,
		MinProbability: p.MinProbability,
		MaxProbability: p.MaxProbability,

		IncreaseFactor: p.IncreaseFactor,
		DecreaseFactor: p.DecreaseFactor,

		MinDiversityThreshold: p.MinDiversityThreshold,
		MaxDiversityThreshold: p.MaxDiversityThreshold,

		Tau: p.Tau,

		CrossoverProbability:    p.CrossoverProbability,
		CrossoverProbabilitySet: p.CrossoverProbabilitySet,
		MinCrossoverProbability: p.MinCrossoverProbability,
		MaxCrossoverProbability: p.MaxCrossoverProbability,
		CrossoverIncreaseFactor: p.CrossoverIncreaseFactor,
		CrossoverDecreaseFactor: p.CrossoverDecreaseFactor,
	}
	if ema, ok := diversityEMA(diversity); ok {
		snap.DiversityEMA = ema
		snap.DiversityEMASet = true
	}
	return snap
}

// FromSnapshot rebuilds an adaptive parameter state from a persisted record.
// Nothing is re-derived: the field values are taken as stored.
func FromSnapshot(snap model.ParamSnapshot) (*AdaptiveParams, error) {
	mutation, err := ParseMutationStrategy(snap.MutationStrategy)
	if err != nil {
		return nil, err
	}
	crossover, err := ParseCrossoverStrategy(snap.CrossoverStrategy)
	if err != nil {
		return nil, err
	}
	return &AdaptiveParams{
		MutationStrategy:  mutation,
		CrossoverStrategy: crossover,

		Strength:       snap.Strength,
		StrengthSet:    snap.StrengthSet,
		Probability:    snap.Probability,
		ProbabilitySet: snap.ProbabilitySet,

		MinStrength:    snap.MinStrength,
		MaxStrength:    snap.MaxStrength,
		MinProbability: snap.MinProbability,
		MaxProbability: snap.MaxProbability,

		IncreaseFactor: snap.IncreaseFactor,
		DecreaseFactor: snap.DecreaseFactor,

		MinDiversityThreshold: snap.MinDiversityThreshold,
		MaxDiversityThreshold: snap.MaxDiversityThreshold,

		Tau: snap.Tau,

		CrossoverProbability:    snap.CrossoverProbability,
		CrossoverProbabilitySet: snap.CrossoverProbabilitySet,
		MinCrossoverProbability: snap.MinCrossoverProbability,
		MaxCrossoverProbability: snap.MaxCrossoverProbability,
		CrossoverIncreaseFactor: snap.CrossoverIncreaseFactor,
		CrossoverDecreaseFactor: snap.CrossoverDecreaseFactor,
	}, nil
}
