// Package evo ties the control-parameter engine to the genome
// representations: it owns individuals, routes mutation and crossover by the
// configured strategy, and computes the population diversity signal the
// adaptive strategies feed on.
package evo

import (
	"github.com/google/uuid"

	"evoforge/internal/net"
	"evoforge/internal/vec"
)

// Origin records how an individual came to exist.
type Origin string

const (
	OriginSeed      Origin = "seed"
	OriginMutation  Origin = "mutation"
	OriginCrossover Origin = "crossover"
)

// Individual is one member of the population. It carries either a real
// vector genome, a network genome, or both. The per-individual mutation
// strength and probability are lazily assigned by the dispatcher on first
// mutation under the per-individual strategy and inherited by offspring
// afterwards.
type Individual struct {
	ID              string
	ParentID        string
	Origin          Origin
	BirthGeneration int
	Age             int

	Fitness   float64
	Evaluated bool

	// StructuralMutant marks individuals whose network changed in the last
	// mutation step, so evaluation caches know to invalidate.
	StructuralMutant bool

	Strength    float64
	StrengthSet bool

	Probability    float64
	ProbabilitySet bool

	Vector *vec.Vector
	Net    *net.Network
}

// NewIndividual mints a founding individual around the given genomes.
func NewIndividual(vector *vec.Vector, network *net.Network) *Individual {
	return &Individual{
		ID:     uuid.NewString(),
		Origin: OriginSeed,
		Vector: vector,
		Net:    network,
	}
}

// Offspring deep-copies the genomes into a fresh individual with its own ID
// and a lineage link back to the parent. Fitness and the structural flag are
// reset; the self-adaptive strength and probability are inherited.
func (ind *Individual) Offspring(generation int, origin Origin) *Individual {
	child := &Individual{
		ID:              uuid.NewString(),
		ParentID:        ind.ID,
		Origin:          origin,
		BirthGeneration: generation,
		Strength:        ind.Strength,
		StrengthSet:     ind.StrengthSet,
		Probability:     ind.Probability,
		ProbabilitySet:  ind.ProbabilitySet,
	}
	if ind.Vector != nil {
		child.Vector = ind.Vector.Clone()
	}
	if ind.Net != nil {
		child.Net = ind.Net.Clone()
	}
	return child
}
