package vec

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
)

var ErrLengthMismatch = errors.New("crossover parents must have equal length")

// Crossover mixes two parent vectors in place, producing two children. All
// operators clip children into the mutator bounds and require equal parent
// lengths.
type Crossover interface {
	Name() string
	Cross(a, b *Vector, bounds Bounds) error
}

// BLXCrossover implements blend crossover: each child gene is drawn
// uniformly from the parent interval extended by Alpha on both sides.
type BLXCrossover struct {
	Rand  *rand.Rand
	Alpha float64
}

func (c *BLXCrossover) Name() string {
	return "blx"
}

func (c *BLXCrossover) Cross(a, b *Vector, bounds Bounds) error {
	if err := checkParents(a, b); err != nil {
		return err
	}
	if c.Alpha < 0 {
		return fmt.Errorf("blx alpha must be >= 0: %v", c.Alpha)
	}
	for i := range a.Values {
		lo := math.Min(a.Values[i], b.Values[i])
		hi := math.Max(a.Values[i], b.Values[i])
		span := hi - lo
		lo -= c.Alpha * span
		hi += c.Alpha * span
		a.Values[i] = bounds.Clip(lo + c.Rand.Float64()*(hi-lo))
		b.Values[i] = bounds.Clip(lo + c.Rand.Float64()*(hi-lo))
	}
	return nil
}

// SBXCrossover implements simulated binary crossover with distribution
// index Eta. Larger Eta keeps children closer to their parents.
type SBXCrossover struct {
	Rand *rand.Rand
	Eta  float64
}

func (c *SBXCrossover) Name() string {
	return "sbx"
}

func (c *SBXCrossover) Cross(a, b *Vector, bounds Bounds) error {
	if err := checkParents(a, b); err != nil {
		return err
	}
	if c.Eta <= 0 {
		return fmt.Errorf("sbx eta must be > 0: %v", c.Eta)
	}
	for i := range a.Values {
		u := c.Rand.Float64()
		var beta float64
		if u <= 0.5 {
			beta = math.Pow(2*u, 1/(c.Eta+1))
		} else {
			beta = math.Pow(1/(2*(1-u)), 1/(c.Eta+1))
		}
		x, y := a.Values[i], b.Values[i]
		a.Values[i] = bounds.Clip(0.5 * ((1+beta)*x + (1-beta)*y))
		b.Values[i] = bounds.Clip(0.5 * ((1-beta)*x + (1+beta)*y))
	}
	return nil
}

// IntermediateCrossover blends each gene pair toward each other by a random
// fraction of BlendRange.
type IntermediateCrossover struct {
	Rand       *rand.Rand
	BlendRange float64
}

func (c *IntermediateCrossover) Name() string {
	return "intermediate"
}

func (c *IntermediateCrossover) Cross(a, b *Vector, bounds Bounds) error {
	if err := checkParents(a, b); err != nil {
		return err
	}
	if c.BlendRange <= 0 || c.BlendRange > 1 {
		return fmt.Errorf("intermediate blend range must be in (0,1]: %v", c.BlendRange)
	}
	for i := range a.Values {
		u := c.Rand.Float64() * c.BlendRange
		x, y := a.Values[i], b.Values[i]
		a.Values[i] = bounds.Clip(x + u*(y-x))
		b.Values[i] = bounds.Clip(y + u*(x-y))
	}
	return nil
}

func checkParents(a, b *Vector) error {
	if a.Len() != b.Len() {
		return fmt.Errorf("%w: %d != %d", ErrLengthMismatch, a.Len(), b.Len())
	}
	return nil
}
