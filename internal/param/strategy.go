package param

import (
	"errors"
	"fmt"
)

var ErrUnknownStrategy = errors.New("unknown strategy")

// MutationStrategy selects how mutation strength and probability evolve
// across generations.
type MutationStrategy int

const (
	MutationConstant MutationStrategy = iota
	MutationExponentialDecay
	MutationAdaptiveGlobal
	MutationAdaptiveIndividual
	MutationAdaptivePerParameter
)

func (s MutationStrategy) String() string {
	switch s {
	case MutationConstant:
		return "constant"
	case MutationExponentialDecay:
		return "exponential_decay"
	case MutationAdaptiveGlobal:
		return "adaptive_global"
	case MutationAdaptiveIndividual:
		return "adaptive_individual"
	case MutationAdaptivePerParameter:
		return "adaptive_per_parameter"
	default:
		return fmt.Sprintf("mutation_strategy(%d)", int(s))
	}
}

// PerIndividual reports whether the strategy keeps its adaptive state on the
// individual instead of the population.
func (s MutationStrategy) PerIndividual() bool {
	return s == MutationAdaptiveIndividual || s == MutationAdaptivePerParameter
}

func ParseMutationStrategy(name string) (MutationStrategy, error) {
	switch name {
	case "constant":
		return MutationConstant, nil
	case "exponential_decay":
		return MutationExponentialDecay, nil
	case "adaptive_global":
		return MutationAdaptiveGlobal, nil
	case "adaptive_individual":
		return MutationAdaptiveIndividual, nil
	case "adaptive_per_parameter":
		return MutationAdaptivePerParameter, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
}

// CrossoverStrategy selects how the crossover probability evolves across
// generations.
type CrossoverStrategy int

const (
	CrossoverNone CrossoverStrategy = iota
	CrossoverConstant
	CrossoverExponentialDecay
	CrossoverAdaptiveGlobal
)

func (s CrossoverStrategy) String() string {
	switch s {
	case CrossoverNone:
		return "none"
	case CrossoverConstant:
		return "constant"
	case CrossoverExponentialDecay:
		return "exponential_decay"
	case CrossoverAdaptiveGlobal:
		return "adaptive_global"
	default:
		return fmt.Sprintf("crossover_strategy(%d)", int(s))
	}
}

func ParseCrossoverStrategy(name string) (CrossoverStrategy, error) {
	switch name {
	case "", "none":
		return CrossoverNone, nil
	case "constant":
		return CrossoverConstant, nil
	case "exponential_decay":
		return CrossoverExponentialDecay, nil
	case "adaptive_global":
		return CrossoverAdaptiveGlobal, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
}
