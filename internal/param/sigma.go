package param

import (
	"math"
	"math/rand"
)

// DeriveTau returns the default self-adaptation learning rate 1/sqrt(n) for
// an n-dimensional genome. A zero or negative dimensionality yields 0.
func DeriveTau(n int) float64 {
	if n <= 0 {
		return 0
	}
	return 1 / math.Sqrt(float64(n))
}

// AdaptSigma applies one log-normal self-adaptation step to a scalar
// mutation strength and clips the result into [minStrength, maxStrength].
// Exactly one standard-normal draw is consumed.
func AdaptSigma(rng *rand.Rand, sigma, tau, minStrength, maxStrength float64) float64 {
	adapted := sigma * math.Exp(tau*rng.NormFloat64())
	return clip(adapted, minStrength, maxStrength)
}

// AdaptSigmas applies log-normal self-adaptation to every per-gene strength
// in place, sharing tau across genes. One standard-normal draw is consumed
// per gene, in index order.
func AdaptSigmas(rng *rand.Rand, sigmas []float64, tau, minStrength, maxStrength float64) {
	for i := range sigmas {
		sigmas[i] = clip(sigmas[i]*math.Exp(tau*rng.NormFloat64()), minStrength, maxStrength)
	}
}

// InitSigma draws an initial strength uniformly from [minStrength, maxStrength].
func InitSigma(rng *rand.Rand, minStrength, maxStrength float64) float64 {
	return minStrength + rng.Float64()*(maxStrength-minStrength)
}

// InitSigmas draws n initial per-gene strengths uniformly from
// [minStrength, maxStrength], one draw per gene in index order.
func InitSigmas(rng *rand.Rand, n int, minStrength, maxStrength float64) []float64 {
	sigmas := make([]float64, n)
	for i := range sigmas {
		sigmas[i] = InitSigma(rng, minStrength, maxStrength)
	}
	return sigmas
}

func clip(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
