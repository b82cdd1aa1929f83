package vec

import (
	"errors"
	"fmt"
	"math/rand"
)

var ErrInvalidStrength = errors.New("mutation strength must be set and > 0")

// GaussianMutator perturbs vector genes with additive Gaussian noise and
// clips the result into its bounds. Randomness comes exclusively from Rand;
// for each gene the draw order is one uniform for the Bernoulli gate
// followed by one normal when the gate fires. A probability >= 1 skips the
// gate draw entirely. The per-parameter sigma path consumes exactly one
// normal per gene and no gate draws.
type GaussianMutator struct {
	Rand   *rand.Rand
	Bounds Bounds
}

func NewGaussianMutator(rng *rand.Rand, bounds Bounds) (*GaussianMutator, error) {
	if rng == nil {
		return nil, errors.New("random source is required")
	}
	if err := bounds.Validate(); err != nil {
		return nil, err
	}
	return &GaussianMutator{Rand: rng, Bounds: bounds}, nil
}

// Mutate perturbs v in place. When v carries per-parameter sigmas they
// supersede both strength and probability: every gene is perturbed with its
// own sigma. Otherwise each gene passes an independent Bernoulli gate with
// the given probability (>= 1 means every gene) and is perturbed with the
// shared strength.
func (m *GaussianMutator) Mutate(v *Vector, strength, probability float64) error {
	if err := v.Validate(); err != nil {
		return err
	}
	if v.Sigmas != nil {
		for i := range v.Values {
			v.Values[i] = m.Bounds.Clip(v.Values[i] + m.Rand.NormFloat64()*v.Sigmas[i])
		}
		return nil
	}

	if strength <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidStrength, strength)
	}
	for i := range v.Values {
		if probability < 1 && m.Rand.Float64() >= probability {
			continue
		}
		v.Values[i] = m.Bounds.Clip(v.Values[i] + m.Rand.NormFloat64()*strength)
	}
	return nil
}
