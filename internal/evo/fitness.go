package evo

// FitnessPostprocessor adjusts fitness values after evaluation and before
// ranking.
type FitnessPostprocessor interface {
	Name() string
	Process(pop []*Individual)
}

type NoopFitnessPostprocessor struct{}

func (NoopFitnessPostprocessor) Name() string {
	return "none"
}

func (NoopFitnessPostprocessor) Process([]*Individual) {}

// ComplexityPenaltyPostprocessor subtracts a per-element cost for network
// genomes, so structural growth must pay for itself. The penalty is
// subtractive rather than multiplicative because fitness may be negative
// (minimization runs negate their objective).
type ComplexityPenaltyPostprocessor struct {
	Weight float64
}

func (ComplexityPenaltyPostprocessor) Name() string {
	return "complexity_penalty"
}

func (p ComplexityPenaltyPostprocessor) Process(pop []*Individual) {
	for _, ind := range pop {
		if ind.Net == nil || !ind.Evaluated {
			continue
		}
		complexity := float64(len(ind.Net.Neurons) + len(ind.Net.Conns))
		ind.Fitness -= p.Weight * complexity
	}
}
