package net

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
)

var (
	ErrNilRand           = errors.New("mutator requires a random source")
	ErrBadOperatorConfig = errors.New("invalid operator configuration")
)

// WeightInit selects how freshly created connections are weighted.
type WeightInit int

const (
	// InitNone leaves the weight at zero without consuming randomness.
	InitNone WeightInit = iota
	InitZero
	InitRandom
	InitNearZero
)

const nearZeroSpan = 0.05

func ParseWeightInit(name string) (WeightInit, error) {
	switch name {
	case "none", "":
		return InitNone, nil
	case "zero":
		return InitZero, nil
	case "random":
		return InitRandom, nil
	case "near_zero":
		return InitNearZero, nil
	default:
		return 0, fmt.Errorf("unknown weight init: %q", name)
	}
}

// Scope restricts where add-neuron may wire its new node.
type Scope int

const (
	// ScopeAdjacent wires only to the nearest depth on each side.
	ScopeAdjacent Scope = iota
	// ScopeCrossLayer wires to any earlier depth upstream and any later
	// depth downstream.
	ScopeCrossLayer
)

func ParseScope(name string) (Scope, error) {
	switch name {
	case "adjacent", "":
		return ScopeAdjacent, nil
	case "cross_layer":
		return ScopeCrossLayer, nil
	default:
		return 0, fmt.Errorf("unknown wiring scope: %q", name)
	}
}

// AddConnectionConfig gates the add-connection operator. When it fires it
// performs 1..Max insertion attempts.
type AddConnectionConfig struct {
	Probability float64
	Max         int
	Init        WeightInit
}

type RemoveConnectionConfig struct {
	Probability float64
	Max         int
}

type AddNeuronConfig struct {
	Probability float64
	Activations []string
	// ConnectionRatio is the fraction of eligible neurons on each side the
	// new neuron is wired to, rounded up and never below one.
	ConnectionRatio float64
	Init            WeightInit
}

type RemoveNeuronConfig struct {
	Probability float64
}

type SplitConnectionConfig struct {
	Probability float64
}

// DelayMode picks how recurrent delays are perturbed.
type DelayMode int

const (
	// DelayDeltaStep nudges the delay by +/-Delta and clamps to [Lo, Hi].
	DelayDeltaStep DelayMode = iota
	// DelayResample draws a fresh delay uniformly from [Lo, Hi].
	DelayResample
)

func ParseDelayMode(name string) (DelayMode, error) {
	switch name {
	case "delta_step", "":
		return DelayDeltaStep, nil
	case "resample":
		return DelayResample, nil
	default:
		return 0, fmt.Errorf("unknown delay mode: %q", name)
	}
}

// DelayMutationConfig gates per-edge delay perturbation of recurrent
// connections. It runs independently of the structural operators.
type DelayMutationConfig struct {
	Probability float64
	Mode        DelayMode
	Delta       int
	Lo          int
	Hi          int
}

// Limits caps growth and constrains which edges may be created.
type Limits struct {
	// MaxNeurons bounds the non-input neuron count; zero means unbounded.
	MaxNeurons int
	// MaxConnections bounds the total edge count; zero means unbounded.
	MaxConnections int
	// Recurrent lists the recurrent kinds add-connection may create. An
	// empty list forbids new recurrent edges entirely.
	Recurrent []RecurrentKind
	Scope     Scope
}

func (l Limits) allowsRecurrent(kind RecurrentKind) bool {
	for _, k := range l.Recurrent {
		if k == kind {
			return true
		}
	}
	return false
}

func (l Limits) neuronRoom(n *Network) bool {
	return l.MaxNeurons <= 0 || n.NonInputCount() < l.MaxNeurons
}

func (l Limits) connectionRoom(n *Network) bool {
	return l.MaxConnections <= 0 || len(n.Conns) < l.MaxConnections
}

// StructuralMutator applies at most one structural operator per Mutate call.
// Operators are enabled by setting their config; a nil config disables the
// operator without consuming randomness.
type StructuralMutator struct {
	Rand *rand.Rand

	AddConnection    *AddConnectionConfig
	RemoveConnection *RemoveConnectionConfig
	AddNeuron        *AddNeuronConfig
	RemoveNeuron     *RemoveNeuronConfig
	SplitConnection  *SplitConnectionConfig
	Delay            *DelayMutationConfig

	Limits Limits
}

// Validate rejects malformed operator configurations. Misconfiguration is a
// hard error; runtime preconditions (caps reached, no candidates) degrade to
// no-ops instead.
func (m *StructuralMutator) Validate() error {
	if m.Rand == nil {
		return ErrNilRand
	}
	check := func(op string, p float64) error {
		if p < 0 || p > 1 {
			return fmt.Errorf("%w: %s probability %v outside [0, 1]", ErrBadOperatorConfig, op, p)
		}
		return nil
	}
	if c := m.AddConnection; c != nil {
		if err := check("add_connection", c.Probability); err != nil {
			return err
		}
		if c.Max < 1 {
			return fmt.Errorf("%w: add_connection max %d < 1", ErrBadOperatorConfig, c.Max)
		}
	}
	if c := m.RemoveConnection; c != nil {
		if err := check("remove_connection", c.Probability); err != nil {
			return err
		}
		if c.Max < 1 {
			return fmt.Errorf("%w: remove_connection max %d < 1", ErrBadOperatorConfig, c.Max)
		}
	}
	if c := m.AddNeuron; c != nil {
		if err := check("add_neuron", c.Probability); err != nil {
			return err
		}
		if c.ConnectionRatio <= 0 || c.ConnectionRatio > 1 {
			return fmt.Errorf("%w: add_neuron connection ratio %v outside (0, 1]", ErrBadOperatorConfig, c.ConnectionRatio)
		}
	}
	if c := m.RemoveNeuron; c != nil {
		if err := check("remove_neuron", c.Probability); err != nil {
			return err
		}
	}
	if c := m.SplitConnection; c != nil {
		if err := check("split_connection", c.Probability); err != nil {
			return err
		}
	}
	if c := m.Delay; c != nil {
		if err := check("delay", c.Probability); err != nil {
			return err
		}
		if c.Lo < 1 || c.Hi < c.Lo {
			return fmt.Errorf("%w: delay bounds [%d, %d]", ErrBadOperatorConfig, c.Lo, c.Hi)
		}
		if c.Mode == DelayDeltaStep && c.Delta < 1 {
			return fmt.Errorf("%w: delay delta %d < 1", ErrBadOperatorConfig, c.Delta)
		}
	}
	return nil
}

type opKind int

const (
	opAddConnection opKind = iota
	opRemoveConnection
	opAddNeuron
	opRemoveNeuron
	opSplitConnection
)

// Mutate runs the structural mutation step and reports whether the network
// changed. Draw order: one uniform gate per enabled operator in fixed order
// (add_connection, remove_connection, add_neuron, remove_neuron,
// split_connection); if any fired, one uniform pick among them; then the
// draws of the chosen operator. Operators whose preconditions fail at
// application time leave the network untouched.
func (m *StructuralMutator) Mutate(n *Network) bool {
	var fired []opKind
	gate := func(op opKind, p float64) {
		if m.Rand.Float64() < p {
			fired = append(fired, op)
		}
	}
	if m.AddConnection != nil {
		gate(opAddConnection, m.AddConnection.Probability)
	}
	if m.RemoveConnection != nil {
		gate(opRemoveConnection, m.RemoveConnection.Probability)
	}
	if m.AddNeuron != nil {
		gate(opAddNeuron, m.AddNeuron.Probability)
	}
	if m.RemoveNeuron != nil {
		gate(opRemoveNeuron, m.RemoveNeuron.Probability)
	}
	if m.SplitConnection != nil {
		gate(opSplitConnection, m.SplitConnection.Probability)
	}
	if len(fired) == 0 {
		return false
	}

	switch fired[m.Rand.Intn(len(fired))] {
	case opAddConnection:
		return m.applyAddConnection(n)
	case opRemoveConnection:
		return m.applyRemoveConnection(n)
	case opAddNeuron:
		return m.applyAddNeuron(n)
	case opRemoveNeuron:
		return m.applyRemoveNeuron(n)
	case opSplitConnection:
		return m.applySplitConnection(n)
	}
	return false
}

func (m *StructuralMutator) initWeight(init WeightInit) float64 {
	switch init {
	case InitRandom:
		return m.Rand.Float64()*2 - 1
	case InitNearZero:
		return (m.Rand.Float64()*2 - 1) * nearZeroSpan
	default:
		return 0
	}
}

func (m *StructuralMutator) defaultDelay() int {
	if m.Delay != nil {
		return m.Delay.Lo
	}
	return 1
}

func (m *StructuralMutator) applyAddConnection(n *Network) bool {
	cfg := m.AddConnection
	attempts := 1 + m.Rand.Intn(cfg.Max)
	changed := false
	for i := 0; i < attempts; i++ {
		if !m.Limits.connectionRoom(n) {
			break
		}
		var candidates [][2]int
		for src := range n.Neurons {
			for dst := range n.Neurons {
				if n.Neurons[dst].Role == RoleInput || n.HasConnection(src, dst) {
					continue
				}
				kind, rec := n.Classify(src, dst)
				if kind == KindRecurrent && !m.Limits.allowsRecurrent(rec) {
					continue
				}
				candidates = append(candidates, [2]int{src, dst})
			}
		}
		if len(candidates) == 0 {
			break
		}
		pair := candidates[m.Rand.Intn(len(candidates))]
		weight := m.initWeight(cfg.Init)
		if _, err := n.AddConnection(pair[0], pair[1], weight, m.defaultDelay()); err != nil {
			break
		}
		changed = true
	}
	return changed
}

func (m *StructuralMutator) applyRemoveConnection(n *Network) bool {
	attempts := 1 + m.Rand.Intn(m.RemoveConnection.Max)
	changed := false
	for i := 0; i < attempts; i++ {
		if len(n.Conns) == 0 {
			break
		}
		if err := n.RemoveConnection(m.Rand.Intn(len(n.Conns))); err != nil {
			break
		}
		changed = true
	}
	return changed
}

// hiddenDepths returns the distinct hidden depths in ascending order.
func hiddenDepths(n *Network) []float64 {
	var depths []float64
	for _, neuron := range n.Neurons {
		if neuron.Role != RoleHidden {
			continue
		}
		found := false
		for _, d := range depths {
			if d == neuron.Depth {
				found = true
				break
			}
		}
		if !found {
			depths = append(depths, neuron.Depth)
		}
	}
	for i := 1; i < len(depths); i++ {
		for j := i; j > 0 && depths[j] < depths[j-1]; j-- {
			depths[j], depths[j-1] = depths[j-1], depths[j]
		}
	}
	return depths
}

func (m *StructuralMutator) pickActivation(whitelist []string) string {
	if len(whitelist) == 0 {
		whitelist = []string{"tanh", "sigmoid", "relu", "identity"}
	}
	return whitelist[m.Rand.Intn(len(whitelist))]
}

func (m *StructuralMutator) applyAddNeuron(n *Network) bool {
	if !m.Limits.neuronRoom(n) {
		return false
	}
	cfg := m.AddNeuron

	depth := 0.5
	if depths := hiddenDepths(n); len(depths) > 0 {
		depth = depths[m.Rand.Intn(len(depths))]
	}
	activation := m.pickActivation(cfg.Activations)
	idx := n.AddNeuron(Neuron{Role: RoleHidden, Depth: depth, Activation: activation})

	var sources, targets []int
	nearestBelow, nearestAbove := math.Inf(-1), math.Inf(1)
	for i, neuron := range n.Neurons {
		if i == idx {
			continue
		}
		switch {
		case neuron.Depth < depth:
			sources = append(sources, i)
			if neuron.Depth > nearestBelow {
				nearestBelow = neuron.Depth
			}
		case neuron.Depth > depth && neuron.Role != RoleInput:
			targets = append(targets, i)
			if neuron.Depth < nearestAbove {
				nearestAbove = neuron.Depth
			}
		}
	}
	if m.Limits.Scope == ScopeAdjacent {
		sources = filterDepth(n, sources, nearestBelow)
		targets = filterDepth(n, targets, nearestAbove)
	}

	changed := false
	wire := func(cands []int, incoming bool) {
		if len(cands) == 0 {
			return
		}
		count := int(math.Ceil(cfg.ConnectionRatio * float64(len(cands))))
		if count < 1 {
			count = 1
		}
		perm := m.Rand.Perm(len(cands))
		for _, p := range perm[:count] {
			if !m.Limits.connectionRoom(n) {
				return
			}
			src, dst := cands[p], idx
			if !incoming {
				src, dst = idx, cands[p]
			}
			weight := m.initWeight(cfg.Init)
			if _, err := n.AddConnection(src, dst, weight, m.defaultDelay()); err == nil {
				changed = true
			}
		}
	}
	wire(sources, true)
	wire(targets, false)

	if !changed {
		// An orphan would never influence the output; undo the insertion.
		_ = n.RemoveNeuron(idx)
		return false
	}
	return true
}

func filterDepth(n *Network, indices []int, depth float64) []int {
	kept := indices[:0]
	for _, i := range indices {
		if n.Neurons[i].Depth == depth {
			kept = append(kept, i)
		}
	}
	return kept
}

func (m *StructuralMutator) applyRemoveNeuron(n *Network) bool {
	hidden := n.HiddenIndices()
	if len(hidden) == 0 {
		return false
	}
	return n.RemoveNeuron(hidden[m.Rand.Intn(len(hidden))]) == nil
}

// applySplitConnection replaces a standard edge src -> dst with
// src -> mid -> dst, where mid sits at the midpoint depth. The incoming edge
// gets weight 1 and the outgoing edge inherits the original weight, so the
// signal the split carries is initially unchanged.
func (m *StructuralMutator) applySplitConnection(n *Network) bool {
	if !m.Limits.neuronRoom(n) {
		return false
	}
	// Splitting nets one extra connection.
	if m.Limits.MaxConnections > 0 && len(n.Conns)+1 > m.Limits.MaxConnections {
		return false
	}
	var standard []int
	for i, c := range n.Conns {
		if c.Kind == KindStandard {
			standard = append(standard, i)
		}
	}
	if len(standard) == 0 {
		return false
	}

	ci := standard[m.Rand.Intn(len(standard))]
	conn := n.Conns[ci]
	activation := "tanh"
	if m.AddNeuron != nil {
		activation = m.pickActivation(m.AddNeuron.Activations)
	}
	depth := (n.Neurons[conn.Source].Depth + n.Neurons[conn.Target].Depth) / 2
	mid := n.AddNeuron(Neuron{Role: RoleHidden, Depth: depth, Activation: activation})

	if err := n.RemoveConnection(ci); err != nil {
		return false
	}
	if _, err := n.AddConnection(conn.Source, mid, 1, 0); err != nil {
		return false
	}
	if _, err := n.AddConnection(mid, conn.Target, conn.Weight, 0); err != nil {
		return false
	}
	return true
}

// MutateDelays perturbs the delay of each recurrent connection independently
// with the configured probability, in connection index order. Standard edges
// are never touched. It reports whether any delay changed value.
func (m *StructuralMutator) MutateDelays(n *Network) bool {
	cfg := m.Delay
	if cfg == nil {
		return false
	}
	changed := false
	for i := range n.Conns {
		if n.Conns[i].Kind != KindRecurrent {
			continue
		}
		if cfg.Probability < 1 && m.Rand.Float64() >= cfg.Probability {
			continue
		}
		old := n.Conns[i].Delay
		var next int
		switch cfg.Mode {
		case DelayResample:
			next = cfg.Lo + m.Rand.Intn(cfg.Hi-cfg.Lo+1)
		default:
			step := cfg.Delta
			if m.Rand.Intn(2) == 0 {
				step = -step
			}
			next = old + step
			if next < cfg.Lo {
				next = cfg.Lo
			}
			if next > cfg.Hi {
				next = cfg.Hi
			}
		}
		if next != old {
			n.Conns[i].Delay = next
			changed = true
		}
	}
	return changed
}
