package vec

import (
	"errors"
	"fmt"
)

var (
	ErrMalformedBounds = errors.New("bounds must satisfy lo < hi")
	ErrSigmaLength     = errors.New("per-parameter sigma length must equal vector length")
)

// Bounds is the hard clipping range applied to every gene after mutation.
type Bounds struct {
	Lo float64
	Hi float64
}

func (b Bounds) Validate() error {
	if !(b.Lo < b.Hi) {
		return fmt.Errorf("%w: (%v, %v)", ErrMalformedBounds, b.Lo, b.Hi)
	}
	return nil
}

func (b Bounds) Clip(v float64) float64 {
	if v < b.Lo {
		return b.Lo
	}
	if v > b.Hi {
		return b.Hi
	}
	return v
}

// Vector is a flat real-valued genome. Sigmas, when present, carry one
// self-adapted mutation strength per gene; its length is fixed at creation
// and always equals len(Values).
type Vector struct {
	Values []float64
	Sigmas []float64
}

func New(values []float64) *Vector {
	return &Vector{Values: values}
}

// Validate checks the sigma/value length invariant.
func (v *Vector) Validate() error {
	if v.Sigmas != nil && len(v.Sigmas) != len(v.Values) {
		return fmt.Errorf("%w: %d sigmas for %d genes", ErrSigmaLength, len(v.Sigmas), len(v.Values))
	}
	return nil
}

func (v *Vector) Len() int {
	return len(v.Values)
}

// Clone returns a deep copy.
func (v *Vector) Clone() *Vector {
	cp := &Vector{Values: append([]float64(nil), v.Values...)}
	if v.Sigmas != nil {
		cp.Sigmas = append([]float64(nil), v.Sigmas...)
	}
	return cp
}
