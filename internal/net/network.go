// Package net holds the mutable neuron/connection graph and its structural
// mutation operators. Neurons and connections live in arena slices;
// connections reference neurons by index, so removing a neuron is a
// swap-compaction with index fixup instead of a dangling-pointer hazard.
package net

import (
	"errors"
	"fmt"
)

var (
	ErrNeuronIndex       = errors.New("neuron index out of range")
	ErrConnectionIndex   = errors.New("connection index out of range")
	ErrInputTarget       = errors.New("input neurons cannot receive connections")
	ErrInputRemoval      = errors.New("input neurons cannot be removed")
	ErrDuplicateEdge     = errors.New("connection already exists")
	ErrInvalidDelay      = errors.New("recurrent delay must be >= 1")
	ErrInvariantViolated = errors.New("graph invariant violated")
)

// Role classifies a neuron within the computation graph.
type Role int

const (
	RoleInput Role = iota
	RoleHidden
	RoleOutput
)

func (r Role) String() string {
	switch r {
	case RoleInput:
		return "input"
	case RoleHidden:
		return "hidden"
	case RoleOutput:
		return "output"
	default:
		return fmt.Sprintf("role(%d)", int(r))
	}
}

// ConnKind distinguishes forward edges from recurrent ones.
type ConnKind int

const (
	KindStandard ConnKind = iota
	KindRecurrent
)

// RecurrentKind refines recurrent edges by their direction relative to the
// depth ordering: a self loop (direct), an edge within the same depth
// (lateral), or an edge feeding an earlier depth (indirect).
type RecurrentKind int

const (
	RecurrentDirect RecurrentKind = iota
	RecurrentLateral
	RecurrentIndirect
)

func (k RecurrentKind) String() string {
	switch k {
	case RecurrentDirect:
		return "direct"
	case RecurrentLateral:
		return "lateral"
	case RecurrentIndirect:
		return "indirect"
	default:
		return fmt.Sprintf("recurrent_kind(%d)", int(k))
	}
}

func ParseRecurrentKind(name string) (RecurrentKind, error) {
	switch name {
	case "direct":
		return RecurrentDirect, nil
	case "lateral":
		return RecurrentLateral, nil
	case "indirect":
		return RecurrentIndirect, nil
	default:
		return 0, fmt.Errorf("unknown recurrent kind: %q", name)
	}
}

// Neuron is one node of the graph. Depth orders the graph front to back:
// inputs sit at 0, outputs at 1, hidden neurons strictly between. Edges
// toward greater depth are standard; everything else is recurrent.
type Neuron struct {
	Role       Role
	Depth      float64
	Activation string
	Bias       float64
}

// Connection is a directed weighted edge between two arena indices. Delay is
// meaningful only for recurrent edges and is always >= 1 there.
type Connection struct {
	Source int
	Target int
	Weight float64
	Kind   ConnKind
	Delay  int
}

// Network is the arena holding all neurons and connections of one genome.
type Network struct {
	Neurons []Neuron
	Conns   []Connection
}

// Classify derives the connection kind for an edge from src to dst.
func (n *Network) Classify(src, dst int) (ConnKind, RecurrentKind) {
	if src == dst {
		return KindRecurrent, RecurrentDirect
	}
	srcDepth, dstDepth := n.Neurons[src].Depth, n.Neurons[dst].Depth
	switch {
	case srcDepth < dstDepth:
		return KindStandard, 0
	case srcDepth == dstDepth:
		return KindRecurrent, RecurrentLateral
	default:
		return KindRecurrent, RecurrentIndirect
	}
}

// AddNeuron appends a neuron and returns its index.
func (n *Network) AddNeuron(neuron Neuron) int {
	n.Neurons = append(n.Neurons, neuron)
	return len(n.Neurons) - 1
}

// AddConnection inserts an edge from src to dst. The kind is derived from
// the endpoints; delay applies only to recurrent edges and defaults to 1
// when zero is passed for one.
func (n *Network) AddConnection(src, dst int, weight float64, delay int) (int, error) {
	if src < 0 || src >= len(n.Neurons) || dst < 0 || dst >= len(n.Neurons) {
		return 0, fmt.Errorf("%w: %d -> %d", ErrNeuronIndex, src, dst)
	}
	if n.Neurons[dst].Role == RoleInput {
		return 0, fmt.Errorf("%w: target %d", ErrInputTarget, dst)
	}
	if n.HasConnection(src, dst) {
		return 0, fmt.Errorf("%w: %d -> %d", ErrDuplicateEdge, src, dst)
	}

	kind, _ := n.Classify(src, dst)
	conn := Connection{Source: src, Target: dst, Weight: weight, Kind: kind}
	if kind == KindRecurrent {
		if delay == 0 {
			delay = 1
		}
		if delay < 1 {
			return 0, fmt.Errorf("%w: %d", ErrInvalidDelay, delay)
		}
		conn.Delay = delay
	}
	n.Conns = append(n.Conns, conn)
	return len(n.Conns) - 1, nil
}

// RemoveConnection drops the connection at index i by swap-removal.
func (n *Network) RemoveConnection(i int) error {
	if i < 0 || i >= len(n.Conns) {
		return fmt.Errorf("%w: %d", ErrConnectionIndex, i)
	}
	last := len(n.Conns) - 1
	n.Conns[i] = n.Conns[last]
	n.Conns = n.Conns[:last]
	return nil
}

// RemoveNeuron removes the neuron at index i together with every incident
// connection. The last neuron is swapped into the freed slot and all
// connection endpoints referring to it are remapped.
func (n *Network) RemoveNeuron(i int) error {
	if i < 0 || i >= len(n.Neurons) {
		return fmt.Errorf("%w: %d", ErrNeuronIndex, i)
	}
	if n.Neurons[i].Role == RoleInput {
		return fmt.Errorf("%w: %d", ErrInputRemoval, i)
	}

	kept := n.Conns[:0]
	for _, c := range n.Conns {
		if c.Source == i || c.Target == i {
			continue
		}
		kept = append(kept, c)
	}
	n.Conns = kept

	last := len(n.Neurons) - 1
	if i != last {
		n.Neurons[i] = n.Neurons[last]
		for j := range n.Conns {
			if n.Conns[j].Source == last {
				n.Conns[j].Source = i
			}
			if n.Conns[j].Target == last {
				n.Conns[j].Target = i
			}
		}
	}
	n.Neurons = n.Neurons[:last]
	return nil
}

// HasConnection reports whether an edge from src to dst exists.
func (n *Network) HasConnection(src, dst int) bool {
	for _, c := range n.Conns {
		if c.Source == src && c.Target == dst {
			return true
		}
	}
	return false
}

// NonInputCount returns the number of hidden and output neurons. Topology
// caps are expressed against this count.
func (n *Network) NonInputCount() int {
	count := 0
	for _, neuron := range n.Neurons {
		if neuron.Role != RoleInput {
			count++
		}
	}
	return count
}

// HiddenIndices returns the arena indices of all hidden neurons.
func (n *Network) HiddenIndices() []int {
	indices := make([]int, 0, len(n.Neurons))
	for i, neuron := range n.Neurons {
		if neuron.Role == RoleHidden {
			indices = append(indices, i)
		}
	}
	return indices
}

// Clone returns a deep copy of the network.
func (n *Network) Clone() *Network {
	return &Network{
		Neurons: append([]Neuron(nil), n.Neurons...),
		Conns:   append([]Connection(nil), n.Conns...),
	}
}

// Validate checks the structural invariants: endpoints in range, no edges
// into input neurons, delay >= 1 on recurrent edges, stored kinds matching
// the depth ordering, and no duplicate edges.
func (n *Network) Validate() error {
	seen := make(map[[2]int]struct{}, len(n.Conns))
	for i, c := range n.Conns {
		if c.Source < 0 || c.Source >= len(n.Neurons) || c.Target < 0 || c.Target >= len(n.Neurons) {
			return fmt.Errorf("%w: connection %d references missing neuron", ErrInvariantViolated, i)
		}
		if n.Neurons[c.Target].Role == RoleInput {
			return fmt.Errorf("%w: connection %d targets an input neuron", ErrInvariantViolated, i)
		}
		kind, _ := n.Classify(c.Source, c.Target)
		if kind != c.Kind {
			return fmt.Errorf("%w: connection %d kind mismatch", ErrInvariantViolated, i)
		}
		if c.Kind == KindRecurrent && c.Delay < 1 {
			return fmt.Errorf("%w: connection %d has delay %d", ErrInvariantViolated, i, c.Delay)
		}
		if c.Kind == KindStandard && c.Delay != 0 {
			return fmt.Errorf("%w: standard connection %d carries a delay", ErrInvariantViolated, i)
		}
		key := [2]int{c.Source, c.Target}
		if _, dup := seen[key]; dup {
			return fmt.Errorf("%w: duplicate edge %d -> %d", ErrInvariantViolated, c.Source, c.Target)
		}
		seen[key] = struct{}{}
	}
	return nil
}
