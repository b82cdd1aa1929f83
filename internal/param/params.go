package param

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrMissingBounds     = errors.New("adaptive bounds are required")
	ErrInvalidBounds     = errors.New("bounds are malformed")
	ErrInvalidFactor     = errors.New("adaptation factor must be > 0")
	ErrDiversityRequired = errors.New("diversity signal is required")
	ErrNotInitialized    = errors.New("adaptive value used before initialization")
	ErrInvalidHorizon    = errors.New("max generations must be >= 1")
)

// AdaptiveParams holds the operative mutation and crossover control values
// together with their clamp bounds and adaptation rates. One instance is
// owned by the population for population-scoped strategies, or by each
// individual for the per-individual strategies.
type AdaptiveParams struct {
	MutationStrategy  MutationStrategy
	CrossoverStrategy CrossoverStrategy

	// Operative values. The Set flags distinguish "zero" from "not yet
	// initialized": under the per-individual strategies both start unset
	// and are assigned exactly once, on the first mutation of the owner.
	Strength       float64
	StrengthSet    bool
	Probability    float64
	ProbabilitySet bool

	MinStrength    float64
	MaxStrength    float64
	MinProbability float64
	MaxProbability float64

	IncreaseFactor float64
	DecreaseFactor float64

	MinDiversityThreshold float64
	MaxDiversityThreshold float64

	// Tau is the self-adaptation learning rate. Zero means "derive from the
	// vector length on first use" (1/sqrt(n)).
	Tau float64

	CrossoverProbability    float64
	CrossoverProbabilitySet bool
	MinCrossoverProbability float64
	MaxCrossoverProbability float64
	CrossoverIncreaseFactor float64
	CrossoverDecreaseFactor float64
}

// Validate checks the strategy-specific field requirements. It is called
// once at setup; the per-generation update path assumes a validated state.
func (p *AdaptiveParams) Validate() error {
	switch p.MutationStrategy {
	case MutationConstant:
		if !p.StrengthSet || p.Strength <= 0 {
			return fmt.Errorf("constant mutation: strength must be set and > 0: %w", ErrMissingBounds)
		}
	case MutationExponentialDecay:
		if err := checkDecayBounds("mutation strength", p.MinStrength, p.MaxStrength); err != nil {
			return err
		}
		if err := checkDecayBounds("mutation probability", p.MinProbability, p.MaxProbability); err != nil {
			return err
		}
	case MutationAdaptiveGlobal:
		if !p.StrengthSet || !p.ProbabilitySet {
			return fmt.Errorf("adaptive_global mutation: initial strength and probability are required: %w", ErrMissingBounds)
		}
		if err := checkClampBounds("mutation strength", p.MinStrength, p.MaxStrength); err != nil {
			return err
		}
		if err := checkClampBounds("mutation probability", p.MinProbability, p.MaxProbability); err != nil {
			return err
		}
		if err := checkInitialValue("mutation strength", p.Strength, p.MinStrength, p.MaxStrength); err != nil {
			return err
		}
		if err := checkInitialValue("mutation probability", p.Probability, p.MinProbability, p.MaxProbability); err != nil {
			return err
		}
		if p.IncreaseFactor <= 0 || p.DecreaseFactor <= 0 {
			return fmt.Errorf("adaptive_global mutation: %w", ErrInvalidFactor)
		}
		if p.MinDiversityThreshold > p.MaxDiversityThreshold {
			return fmt.Errorf("diversity thresholds: min > max: %w", ErrInvalidBounds)
		}
	case MutationAdaptiveIndividual:
		if err := checkClampBounds("mutation strength", p.MinStrength, p.MaxStrength); err != nil {
			return err
		}
		if p.MinStrength <= 0 {
			return fmt.Errorf("self-adaptive mutation: min strength must be > 0: %w", ErrInvalidBounds)
		}
		// A max probability > 0 enables the per-individual probability
		// channel; without it the population-level probability is the gate.
		if p.MaxProbability > 0 {
			if err := checkClampBounds("mutation probability", p.MinProbability, p.MaxProbability); err != nil {
				return err
			}
			if p.MinProbability <= 0 {
				return fmt.Errorf("self-adaptive mutation: min probability must be > 0: %w", ErrInvalidBounds)
			}
		}
	case MutationAdaptivePerParameter:
		if err := checkClampBounds("mutation strength", p.MinStrength, p.MaxStrength); err != nil {
			return err
		}
		if p.MinStrength <= 0 {
			return fmt.Errorf("self-adaptive mutation: min strength must be > 0: %w", ErrInvalidBounds)
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnknownStrategy, p.MutationStrategy)
	}
	if p.ProbabilitySet && (p.Probability < 0 || p.Probability > 1) {
		return fmt.Errorf("mutation probability must be in [0,1]: %w", ErrInvalidBounds)
	}
	if p.Tau < 0 {
		return fmt.Errorf("tau must be >= 0: %w", ErrInvalidBounds)
	}

	switch p.CrossoverStrategy {
	case CrossoverNone:
	case CrossoverConstant:
		if !p.CrossoverProbabilitySet || p.CrossoverProbability < 0 || p.CrossoverProbability > 1 {
			return fmt.Errorf("constant crossover: probability must be set in [0,1]: %w", ErrMissingBounds)
		}
	case CrossoverExponentialDecay:
		if err := checkDecayBounds("crossover probability", p.MinCrossoverProbability, p.MaxCrossoverProbability); err != nil {
			return err
		}
	case CrossoverAdaptiveGlobal:
		if !p.CrossoverProbabilitySet {
			return fmt.Errorf("adaptive_global crossover: initial probability is required: %w", ErrMissingBounds)
		}
		if err := checkClampBounds("crossover probability", p.MinCrossoverProbability, p.MaxCrossoverProbability); err != nil {
			return err
		}
		if err := checkInitialValue("crossover probability", p.CrossoverProbability, p.MinCrossoverProbability, p.MaxCrossoverProbability); err != nil {
			return err
		}
		if p.CrossoverIncreaseFactor <= 0 || p.CrossoverDecreaseFactor <= 0 {
			return fmt.Errorf("adaptive_global crossover: %w", ErrInvalidFactor)
		}
		if p.MinDiversityThreshold > p.MaxDiversityThreshold {
			return fmt.Errorf("diversity thresholds: min > max: %w", ErrInvalidBounds)
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnknownStrategy, p.CrossoverStrategy)
	}
	return nil
}

// UpdateMutation recomputes the operative mutation strength and probability
// for the given generation. The diversity tracker is consulted only by the
// ADAPTIVE_GLOBAL strategy; the per-individual strategies are updated in the
// dispatcher, per owner, and this call is a no-op for them.
func (p *AdaptiveParams) UpdateMutation(generation, maxGenerations int, diversity *DiversityTracker) error {
	switch p.MutationStrategy {
	case MutationConstant, MutationAdaptiveIndividual, MutationAdaptivePerParameter:
		return nil
	case MutationExponentialDecay:
		strength, err := expDecay(generation, maxGenerations, p.MaxStrength, p.MinStrength)
		if err != nil {
			return fmt.Errorf("mutation strength decay: %w", err)
		}
		probability, err := expDecay(generation, maxGenerations, p.MaxProbability, p.MinProbability)
		if err != nil {
			return fmt.Errorf("mutation probability decay: %w", err)
		}
		p.Strength, p.StrengthSet = strength, true
		p.Probability, p.ProbabilitySet = probability, true
		return nil
	case MutationAdaptiveGlobal:
		ema, ok := diversityEMA(diversity)
		if !ok {
			return fmt.Errorf("adaptive_global mutation: %w", ErrDiversityRequired)
		}
		if !p.StrengthSet || !p.ProbabilitySet {
			return fmt.Errorf("adaptive_global mutation: %w", ErrNotInitialized)
		}
		p.Strength = p.adaptiveValue(p.Strength, p.MinStrength, p.MaxStrength, p.IncreaseFactor, p.DecreaseFactor, ema)
		p.Probability = p.adaptiveValue(p.Probability, p.MinProbability, p.MaxProbability, p.IncreaseFactor, p.DecreaseFactor, ema)
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnknownStrategy, p.MutationStrategy)
	}
}

// UpdateCrossover recomputes the operative crossover probability for the
// given generation.
func (p *AdaptiveParams) UpdateCrossover(generation, maxGenerations int, diversity *DiversityTracker) error {
	switch p.CrossoverStrategy {
	case CrossoverNone, CrossoverConstant:
		return nil
	case CrossoverExponentialDecay:
		probability, err := expDecay(generation, maxGenerations, p.MaxCrossoverProbability, p.MinCrossoverProbability)
		if err != nil {
			return fmt.Errorf("crossover probability decay: %w", err)
		}
		p.CrossoverProbability, p.CrossoverProbabilitySet = probability, true
		return nil
	case CrossoverAdaptiveGlobal:
		ema, ok := diversityEMA(diversity)
		if !ok {
			return fmt.Errorf("adaptive_global crossover: %w", ErrDiversityRequired)
		}
		if !p.CrossoverProbabilitySet {
			return fmt.Errorf("adaptive_global crossover: %w", ErrNotInitialized)
		}
		p.CrossoverProbability = p.adaptiveValue(
			p.CrossoverProbability,
			p.MinCrossoverProbability, p.MaxCrossoverProbability,
			p.CrossoverIncreaseFactor, p.CrossoverDecreaseFactor,
			ema,
		)
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnknownStrategy, p.CrossoverStrategy)
	}
}

// adaptiveValue scales value against the diversity signal. A diversity EMA
// exactly equal to a threshold counts as "within range" on both sides. The
// result is clamped into [minValue, maxValue] on every path, so a value that
// somehow escaped the band is pulled back in on the next update.
func (p *AdaptiveParams) adaptiveValue(value, minValue, maxValue, incFactor, decFactor, ema float64) float64 {
	switch {
	case ema < p.MinDiversityThreshold:
		value *= incFactor
	case ema > p.MaxDiversityThreshold:
		value *= decFactor
	}
	return math.Min(maxValue, math.Max(minValue, value))
}

// LogSnapshot returns the currently active control values for telemetry.
// Unset values are reported as zero.
func (p *AdaptiveParams) LogSnapshot() map[string]float64 {
	snap := map[string]float64{
		"mutation_strength":     0,
		"mutation_probability":  0,
		"crossover_probability": 0,
		"tau":                   p.Tau,
	}
	if p.StrengthSet {
		snap["mutation_strength"] = p.Strength
	}
	if p.ProbabilitySet {
		snap["mutation_probability"] = p.Probability
	}
	if p.CrossoverProbabilitySet {
		snap["crossover_probability"] = p.CrossoverProbability
	}
	return snap
}

// Clone returns a copy suitable for per-individual ownership.
func (p *AdaptiveParams) Clone() *AdaptiveParams {
	cp := *p
	return &cp
}

// expDecay computes max * exp(-k*g) with k chosen so that the value reaches
// min exactly at maxGenerations; beyond the horizon it stays clamped at min.
func expDecay(generation, maxGenerations int, maxValue, minValue float64) (float64, error) {
	if maxValue <= 0 || minValue <= 0 {
		return 0, ErrMissingBounds
	}
	if maxGenerations < 1 {
		return 0, ErrInvalidHorizon
	}
	if generation <= 0 {
		return maxValue, nil
	}
	if generation > maxGenerations {
		return minValue, nil
	}
	k := math.Log(maxValue/minValue) / float64(maxGenerations)
	return maxValue * math.Exp(-k*float64(generation)), nil
}

func diversityEMA(tracker *DiversityTracker) (float64, bool) {
	if tracker == nil {
		return 0, false
	}
	return tracker.EMA()
}

func checkDecayBounds(name string, minValue, maxValue float64) error {
	if minValue <= 0 || maxValue <= 0 {
		return fmt.Errorf("%s: min and max must be set and > 0: %w", name, ErrMissingBounds)
	}
	if minValue > maxValue {
		return fmt.Errorf("%s: min > max: %w", name, ErrInvalidBounds)
	}
	return nil
}

func checkInitialValue(name string, value, minValue, maxValue float64) error {
	if value < minValue || value > maxValue {
		return fmt.Errorf("%s: initial value %v outside [%v, %v]: %w", name, value, minValue, maxValue, ErrInvalidBounds)
	}
	return nil
}

func checkClampBounds(name string, minValue, maxValue float64) error {
	if maxValue <= 0 {
		return fmt.Errorf("%s: max must be set and > 0: %w", name, ErrMissingBounds)
	}
	if minValue < 0 || minValue > maxValue {
		return fmt.Errorf("%s: min > max: %w", name, ErrInvalidBounds)
	}
	return nil
}
