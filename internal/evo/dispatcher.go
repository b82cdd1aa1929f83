package evo

import (
	"errors"
	"fmt"
	"math/rand"

	"evoforge/internal/net"
	"evoforge/internal/param"
	"evoforge/internal/vec"
)

var (
	ErrNoGenome    = errors.New("individual carries no genome")
	ErrUpdateOrder = errors.New("parameters not updated for the current generation")
	ErrNoCrossover = errors.New("no crossover operator configured")
)

// Dispatcher owns the population-scoped control parameters and applies the
// configured mutation and crossover strategies to individuals. All
// randomness flows through Rand; for one Mutate call the draw order is the
// vector step first (strategy-specific strength and probability draws, then
// the gaussian mutator's draws) followed by the structural step, then delay
// mutation.
type Dispatcher struct {
	Rand           *rand.Rand
	Params         *param.AdaptiveParams
	Tracker        *param.DiversityTracker
	Gaussian       *vec.GaussianMutator
	Structural     *net.StructuralMutator
	Crossover      vec.Crossover
	MaxGenerations int

	generation int
	updated    bool
}

// UpdateAdaptiveParameters advances the control parameters to the given
// generation. For the adaptive strategies the raw diversity sample is folded
// into the tracker first, so the update sees the smoothed signal including
// this generation. Must be called before Mutate or Cross each generation
// when a schedule-driven strategy is active.
func (d *Dispatcher) UpdateAdaptiveParameters(generation int, rawDiversity float64) error {
	if d.Tracker != nil {
		d.Tracker.Observe(rawDiversity)
	}
	if err := d.Params.UpdateMutation(generation, d.MaxGenerations, d.Tracker); err != nil {
		return err
	}
	if err := d.Params.UpdateCrossover(generation, d.MaxGenerations, d.Tracker); err != nil {
		return err
	}
	d.generation = generation
	d.updated = true
	return nil
}

// Generation returns the generation of the last parameter update.
func (d *Dispatcher) Generation() int {
	return d.generation
}

func (d *Dispatcher) needsUpdate() bool {
	switch d.Params.MutationStrategy {
	case param.MutationExponentialDecay, param.MutationAdaptiveGlobal:
		return true
	}
	switch d.Params.CrossoverStrategy {
	case param.CrossoverExponentialDecay, param.CrossoverAdaptiveGlobal:
		return true
	}
	return false
}

// Mutate applies the configured mutation strategy to the individual in
// place. Vector genomes go through the gaussian mutator with the operative
// strength and probability; network genomes go through the structural
// mutator and then delay mutation. Both run when the individual carries
// both genomes.
func (d *Dispatcher) Mutate(ind *Individual) error {
	if ind.Vector == nil && ind.Net == nil {
		return ErrNoGenome
	}
	if !d.updated && d.needsUpdate() {
		return fmt.Errorf("%w: call UpdateAdaptiveParameters first", ErrUpdateOrder)
	}

	if ind.Vector != nil {
		if err := d.mutateVector(ind); err != nil {
			return err
		}
	}
	if ind.Net != nil && d.Structural != nil {
		changed := d.Structural.Mutate(ind.Net)
		if d.Structural.MutateDelays(ind.Net) {
			changed = true
		}
		ind.StructuralMutant = changed
	}
	return nil
}

func (d *Dispatcher) mutateVector(ind *Individual) error {
	p := d.Params
	switch p.MutationStrategy {
	case param.MutationAdaptivePerParameter:
		tau := p.Tau
		if tau == 0 {
			tau = param.DeriveTau(ind.Vector.Len())
		}
		if ind.Vector.Sigmas == nil {
			ind.Vector.Sigmas = param.InitSigmas(d.Rand, ind.Vector.Len(), p.MinStrength, p.MaxStrength)
		} else {
			param.AdaptSigmas(d.Rand, ind.Vector.Sigmas, tau, p.MinStrength, p.MaxStrength)
		}
		// Sigmas supersede strength and probability inside the mutator.
		return d.Gaussian.Mutate(ind.Vector, 0, 0)

	case param.MutationAdaptiveIndividual:
		tau := p.Tau
		if tau == 0 {
			tau = param.DeriveTau(ind.Vector.Len())
		}
		if !ind.StrengthSet {
			ind.Strength = param.InitSigma(d.Rand, p.MinStrength, p.MaxStrength)
			ind.StrengthSet = true
		} else {
			ind.Strength = param.AdaptSigma(d.Rand, ind.Strength, tau, p.MinStrength, p.MaxStrength)
		}
		probability := 1.0
		switch {
		case p.MaxProbability > 0:
			// Probability clamp bounds enable the per-individual channel:
			// the gate self-adapts alongside the strength.
			if !ind.ProbabilitySet {
				ind.Probability = param.InitSigma(d.Rand, p.MinProbability, p.MaxProbability)
				ind.ProbabilitySet = true
			} else {
				ind.Probability = param.AdaptSigma(d.Rand, ind.Probability, tau, p.MinProbability, p.MaxProbability)
			}
			probability = ind.Probability
		case p.ProbabilitySet:
			probability = p.Probability
		}
		return d.Gaussian.Mutate(ind.Vector, ind.Strength, probability)

	default:
		if !p.StrengthSet {
			return fmt.Errorf("%s mutation: %w", p.MutationStrategy, param.ErrNotInitialized)
		}
		probability := 1.0
		if p.ProbabilitySet {
			probability = p.Probability
		}
		return d.Gaussian.Mutate(ind.Vector, p.Strength, probability)
	}
}

// Cross mixes the two parents' vector genomes in place with the operative
// crossover probability. It reports whether crossover actually happened.
// One uniform draw decides the gate; the operator's own draws follow.
func (d *Dispatcher) Cross(a, b *Individual) (bool, error) {
	if d.Params.CrossoverStrategy == param.CrossoverNone {
		return false, nil
	}
	if a.Vector == nil || b.Vector == nil {
		return false, nil
	}
	if d.Crossover == nil {
		return false, ErrNoCrossover
	}
	if !d.updated && d.needsUpdate() {
		return false, fmt.Errorf("%w: call UpdateAdaptiveParameters first", ErrUpdateOrder)
	}
	if !d.Params.CrossoverProbabilitySet {
		return false, fmt.Errorf("crossover: %w", param.ErrNotInitialized)
	}
	if d.Rand.Float64() >= d.Params.CrossoverProbability {
		return false, nil
	}
	if err := d.Crossover.Cross(a.Vector, b.Vector, d.Gaussian.Bounds); err != nil {
		return false, err
	}
	return true, nil
}

// LogSnapshot reports the operative control values plus the smoothed
// diversity signal when one exists.
func (d *Dispatcher) LogSnapshot() map[string]float64 {
	snap := d.Params.LogSnapshot()
	if d.Tracker != nil {
		if ema, ok := d.Tracker.EMA(); ok {
			snap["diversity_ema"] = ema
		}
	}
	return snap
}
