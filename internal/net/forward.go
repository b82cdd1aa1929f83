package net

import (
	"errors"
	"fmt"
	"sort"
)

var ErrInputArity = errors.New("input count does not match network inputs")

// Evaluator runs a network one time step at a time. Standard connections
// read the source value computed this step; recurrent connections read the
// source value from `delay` steps ago (zero before enough history exists).
// The evaluator snapshots the topology at construction and must be rebuilt
// after structural mutation.
type Evaluator struct {
	net    *Network
	inputs []int
	order  []int
	funcs  []ActivationFunc

	values   []float64
	history  [][]float64
	maxDelay int
}

func NewEvaluator(n *Network) (*Evaluator, error) {
	if err := n.Validate(); err != nil {
		return nil, err
	}
	e := &Evaluator{
		net:    n,
		funcs:  make([]ActivationFunc, len(n.Neurons)),
		values: make([]float64, len(n.Neurons)),
	}
	for i, neuron := range n.Neurons {
		if neuron.Role == RoleInput {
			e.inputs = append(e.inputs, i)
			continue
		}
		e.order = append(e.order, i)
		fn, err := LookupActivation(neuron.Activation)
		if err != nil {
			return nil, fmt.Errorf("neuron %d: %w", i, err)
		}
		e.funcs[i] = fn
	}
	// Evaluation proceeds front to back; ties resolve by arena index so the
	// step is deterministic.
	sort.SliceStable(e.order, func(a, b int) bool {
		return n.Neurons[e.order[a]].Depth < n.Neurons[e.order[b]].Depth
	})
	for _, c := range n.Conns {
		if c.Kind == KindRecurrent && c.Delay > e.maxDelay {
			e.maxDelay = c.Delay
		}
	}
	return e, nil
}

// Reset clears all neuron state and recurrent history.
func (e *Evaluator) Reset() {
	for i := range e.values {
		e.values[i] = 0
	}
	e.history = e.history[:0]
}

// delayed returns the value of neuron idx from `delay` steps ago.
func (e *Evaluator) delayed(idx, delay int) float64 {
	if delay > len(e.history) {
		return 0
	}
	return e.history[len(e.history)-delay][idx]
}

// Step advances the network by one time step and returns the output neuron
// values in arena index order.
func (e *Evaluator) Step(inputs []float64) ([]float64, error) {
	if len(inputs) != len(e.inputs) {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInputArity, len(inputs), len(e.inputs))
	}
	for i, idx := range e.inputs {
		e.values[idx] = inputs[i]
	}

	for _, idx := range e.order {
		sum := e.net.Neurons[idx].Bias
		for _, c := range e.net.Conns {
			if c.Target != idx {
				continue
			}
			if c.Kind == KindStandard {
				sum += c.Weight * e.values[c.Source]
			} else {
				sum += c.Weight * e.delayed(c.Source, c.Delay)
			}
		}
		e.values[idx] = e.funcs[idx](sum)
	}

	if e.maxDelay > 0 {
		snapshot := append([]float64(nil), e.values...)
		e.history = append(e.history, snapshot)
		if len(e.history) > e.maxDelay {
			e.history = e.history[len(e.history)-e.maxDelay:]
		}
	}

	var outputs []float64
	for i, neuron := range e.net.Neurons {
		if neuron.Role == RoleOutput {
			outputs = append(outputs, e.values[i])
		}
	}
	return outputs, nil
}
