// Package bench provides the benchmark objectives runs are scored against.
// Fitness is higher-is-better everywhere, so minimization benchmarks report
// the negated objective value.
package bench

import (
	"context"
	"fmt"
	"math"

	"evoforge/internal/evo"
	"evoforge/internal/net"
)

// Objective scores one individual.
type Objective interface {
	Name() string
	Evaluate(ctx context.Context, ind *evo.Individual) (float64, error)
}

// New resolves an objective by name.
func New(name string) (Objective, error) {
	switch name {
	case "sphere":
		return Sphere{}, nil
	case "rastrigin":
		return Rastrigin{}, nil
	case "xor":
		return XOR{}, nil
	default:
		return nil, fmt.Errorf("unknown objective: %q", name)
	}
}

// Sphere is the classic unimodal sum-of-squares benchmark, minimal at the
// origin.
type Sphere struct{}

func (Sphere) Name() string {
	return "sphere"
}

func (Sphere) Evaluate(_ context.Context, ind *evo.Individual) (float64, error) {
	if ind.Vector == nil {
		return 0, fmt.Errorf("sphere: individual %s has no vector genome", ind.ID)
	}
	var sum float64
	for _, x := range ind.Vector.Values {
		sum += x * x
	}
	return -sum, nil
}

// Rastrigin is the standard highly multimodal benchmark, minimal at the
// origin.
type Rastrigin struct{}

func (Rastrigin) Name() string {
	return "rastrigin"
}

func (Rastrigin) Evaluate(_ context.Context, ind *evo.Individual) (float64, error) {
	if ind.Vector == nil {
		return 0, fmt.Errorf("rastrigin: individual %s has no vector genome", ind.ID)
	}
	sum := 10 * float64(ind.Vector.Len())
	for _, x := range ind.Vector.Values {
		sum += x*x - 10*math.Cos(2*math.Pi*x)
	}
	return -sum, nil
}

// XOR scores a network genome on the four XOR patterns by negated sum of
// squared error. The evaluator is reset between patterns.
type XOR struct{}

func (XOR) Name() string {
	return "xor"
}

var xorCases = []struct {
	in   []float64
	want float64
}{
	{in: []float64{0, 0}, want: 0},
	{in: []float64{0, 1}, want: 1},
	{in: []float64{1, 0}, want: 1},
	{in: []float64{1, 1}, want: 0},
}

func (XOR) Evaluate(ctx context.Context, ind *evo.Individual) (float64, error) {
	if ind.Net == nil {
		return 0, fmt.Errorf("xor: individual %s has no network genome", ind.ID)
	}
	e, err := net.NewEvaluator(ind.Net)
	if err != nil {
		return 0, fmt.Errorf("xor: %w", err)
	}

	var sse float64
	for _, c := range xorCases {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		e.Reset()
		out, err := e.Step(c.in)
		if err != nil {
			return 0, fmt.Errorf("xor: %w", err)
		}
		if len(out) == 0 {
			return 0, fmt.Errorf("xor: network has no output neuron")
		}
		d := out[0] - c.want
		sse += d * d
	}
	return -sse, nil
}
