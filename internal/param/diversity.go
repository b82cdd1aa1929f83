package param

import "fmt"

// DiversityTracker smooths a raw population diversity metric with an
// exponential moving average. The first observation is taken as-is; every
// later one is blended with factor alpha.
type DiversityTracker struct {
	alpha       float64
	ema         float64
	initialized bool
}

func NewDiversityTracker(alpha float64) (*DiversityTracker, error) {
	if alpha <= 0 || alpha > 1 {
		return nil, fmt.Errorf("diversity alpha must be in (0,1]: %w", ErrInvalidBounds)
	}
	return &DiversityTracker{alpha: alpha}, nil
}

// Observe feeds one raw diversity sample and returns the updated EMA.
func (t *DiversityTracker) Observe(raw float64) float64 {
	if !t.initialized {
		t.ema = raw
		t.initialized = true
		return t.ema
	}
	t.ema = (1-t.alpha)*t.ema + t.alpha*raw
	return t.ema
}

// EMA returns the smoothed diversity and whether a sample has been observed.
func (t *DiversityTracker) EMA() (float64, bool) {
	if t == nil || !t.initialized {
		return 0, false
	}
	return t.ema, true
}

// Restore seeds the tracker from a persisted EMA value.
func (t *DiversityTracker) Restore(ema float64) {
	t.ema = ema
	t.initialized = true
}
