package net

import (
	"errors"
	"math/rand"
	"testing"
)

func pair(t *testing.T) *Network {
	t.Helper()
	n := &Network{}
	in := n.AddNeuron(Neuron{Role: RoleInput, Depth: 0})
	out := n.AddNeuron(Neuron{Role: RoleOutput, Depth: 1, Activation: "identity"})
	if _, err := n.AddConnection(in, out, 0.5, 0); err != nil {
		t.Fatalf("seed connection: %v", err)
	}
	return n
}

func allRecurrent() []RecurrentKind {
	return []RecurrentKind{RecurrentDirect, RecurrentLateral, RecurrentIndirect}
}

func TestAddConnectionAlwaysFires(t *testing.T) {
	// Two neurons, one existing edge, probability 1: every call that still
	// has a free slot must grow the connection count.
	m := &StructuralMutator{
		Rand:          rand.New(rand.NewSource(1)),
		AddConnection: &AddConnectionConfig{Probability: 1, Max: 3, Init: InitRandom},
		Limits:        Limits{Recurrent: allRecurrent()},
	}
	if err := m.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	n := pair(t)
	before := len(n.Conns)
	if !m.Mutate(n) {
		t.Fatal("mutate reported no change")
	}
	if len(n.Conns) <= before {
		t.Fatalf("connection count = %d, want > %d", len(n.Conns), before)
	}
	if err := n.Validate(); err != nil {
		t.Fatalf("validate after mutation: %v", err)
	}
}

func TestCapsNeverExceeded(t *testing.T) {
	m := &StructuralMutator{
		Rand:             rand.New(rand.NewSource(7)),
		AddConnection:    &AddConnectionConfig{Probability: 1, Max: 4, Init: InitRandom},
		RemoveConnection: &RemoveConnectionConfig{Probability: 0.3, Max: 2},
		AddNeuron:        &AddNeuronConfig{Probability: 1, ConnectionRatio: 1, Init: InitNearZero},
		RemoveNeuron:     &RemoveNeuronConfig{Probability: 0.2},
		SplitConnection:  &SplitConnectionConfig{Probability: 0.5},
		Limits: Limits{
			MaxNeurons:     5,
			MaxConnections: 12,
			Recurrent:      allRecurrent(),
			Scope:          ScopeCrossLayer,
		},
	}
	if err := m.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	n := pair(t)
	for i := 0; i < 500; i++ {
		m.Mutate(n)
		if got := n.NonInputCount(); got > 5 {
			t.Fatalf("step %d: non-input neurons = %d, exceeds cap 5", i, got)
		}
		if got := len(n.Conns); got > 12 {
			t.Fatalf("step %d: connections = %d, exceeds cap 12", i, got)
		}
		if err := n.Validate(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}
}

func TestMutateNoOperatorsFired(t *testing.T) {
	m := &StructuralMutator{
		Rand:          rand.New(rand.NewSource(3)),
		AddConnection: &AddConnectionConfig{Probability: 0, Max: 1},
		RemoveNeuron:  &RemoveNeuronConfig{Probability: 0},
	}
	n := pair(t)
	for i := 0; i < 50; i++ {
		if m.Mutate(n) {
			t.Fatal("zero-probability operators mutated the network")
		}
	}
	if len(n.Conns) != 1 || len(n.Neurons) != 2 {
		t.Fatalf("network changed: %d neurons, %d connections", len(n.Neurons), len(n.Conns))
	}
}

func TestRemoveNeuronSkipsWhenNoHidden(t *testing.T) {
	m := &StructuralMutator{
		Rand:         rand.New(rand.NewSource(5)),
		RemoveNeuron: &RemoveNeuronConfig{Probability: 1},
	}
	n := pair(t)
	if m.Mutate(n) {
		t.Fatal("remove_neuron changed a network without hidden neurons")
	}
}

func TestSplitConnectionKeepsSignal(t *testing.T) {
	m := &StructuralMutator{
		Rand:            rand.New(rand.NewSource(11)),
		SplitConnection: &SplitConnectionConfig{Probability: 1},
		AddNeuron:       &AddNeuronConfig{Probability: 0, Activations: []string{"tanh"}, ConnectionRatio: 1},
	}
	n := pair(t)
	if !m.Mutate(n) {
		t.Fatal("split did not fire")
	}
	if got := len(n.Neurons); got != 3 {
		t.Fatalf("neuron count = %d, want 3", got)
	}
	if got := len(n.Conns); got != 2 {
		t.Fatalf("connection count = %d, want 2", got)
	}
	mid := 2
	if n.Neurons[mid].Role != RoleHidden || n.Neurons[mid].Depth != 0.5 {
		t.Fatalf("midpoint neuron = %+v", n.Neurons[mid])
	}
	var inWeight, outWeight float64
	for _, c := range n.Conns {
		switch {
		case c.Target == mid:
			inWeight = c.Weight
		case c.Source == mid:
			outWeight = c.Weight
		}
	}
	if inWeight != 1 {
		t.Fatalf("incoming weight = %v, want 1", inWeight)
	}
	if outWeight != 0.5 {
		t.Fatalf("outgoing weight = %v, want original 0.5", outWeight)
	}
	if err := n.Validate(); err != nil {
		t.Fatalf("validate after split: %v", err)
	}
}

func TestSplitConnectionNoStandardEdges(t *testing.T) {
	m := &StructuralMutator{
		Rand:            rand.New(rand.NewSource(13)),
		SplitConnection: &SplitConnectionConfig{Probability: 1},
	}
	n := &Network{}
	out := n.AddNeuron(Neuron{Role: RoleOutput, Depth: 1})
	if _, err := n.AddConnection(out, out, 0.2, 1); err != nil {
		t.Fatalf("self loop: %v", err)
	}
	if m.Mutate(n) {
		t.Fatal("split fired on a network with only recurrent edges")
	}
}

func TestAddNeuronAdjacentScope(t *testing.T) {
	m := &StructuralMutator{
		Rand:      rand.New(rand.NewSource(17)),
		AddNeuron: &AddNeuronConfig{Probability: 1, ConnectionRatio: 1, Init: InitRandom},
		Limits:    Limits{Scope: ScopeAdjacent},
	}
	n := pair(t)
	if !m.Mutate(n) {
		t.Fatal("add_neuron did not fire")
	}
	// First hidden node lands at depth 0.5 and, fully wired, connects the
	// input to the output.
	hid := 2
	if n.Neurons[hid].Depth != 0.5 {
		t.Fatalf("depth = %v, want 0.5", n.Neurons[hid].Depth)
	}
	if !n.HasConnection(0, hid) || !n.HasConnection(hid, 1) {
		t.Fatalf("new neuron not wired on both sides: %+v", n.Conns)
	}
	if err := n.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestDelayDeltaStepStaysInBounds(t *testing.T) {
	for seed := int64(0); seed < 100; seed++ {
		m := &StructuralMutator{
			Rand: rand.New(rand.NewSource(seed)),
			Delay: &DelayMutationConfig{
				Probability: 1,
				Mode:        DelayDeltaStep,
				Delta:       1,
				Lo:          1,
				Hi:          2,
			},
		}
		n := &Network{}
		out := n.AddNeuron(Neuron{Role: RoleOutput, Depth: 1})
		if _, err := n.AddConnection(out, out, 0.1, 1); err != nil {
			t.Fatalf("seed %d: %v", seed, err)
		}
		m.MutateDelays(n)
		if d := n.Conns[0].Delay; d != 1 && d != 2 {
			t.Fatalf("seed %d: delay = %d, want 1 or 2", seed, d)
		}
	}
}

func TestDelayResampleStaysInBounds(t *testing.T) {
	m := &StructuralMutator{
		Rand: rand.New(rand.NewSource(23)),
		Delay: &DelayMutationConfig{
			Probability: 1,
			Mode:        DelayResample,
			Lo:          2,
			Hi:          6,
		},
	}
	n := &Network{}
	out := n.AddNeuron(Neuron{Role: RoleOutput, Depth: 1})
	hid := n.AddNeuron(Neuron{Role: RoleHidden, Depth: 0.5})
	if _, err := n.AddConnection(out, hid, 0.1, 3); err != nil {
		t.Fatalf("recurrent edge: %v", err)
	}
	for i := 0; i < 200; i++ {
		m.MutateDelays(n)
		if d := n.Conns[0].Delay; d < 2 || d > 6 {
			t.Fatalf("iteration %d: delay = %d outside [2, 6]", i, d)
		}
	}
}

func TestDelayMutationIgnoresStandardEdges(t *testing.T) {
	m := &StructuralMutator{
		Rand: rand.New(rand.NewSource(29)),
		Delay: &DelayMutationConfig{
			Probability: 1,
			Mode:        DelayResample,
			Lo:          1,
			Hi:          9,
		},
	}
	n := pair(t)
	if m.MutateDelays(n) {
		t.Fatal("delay mutation reported a change on a purely feed-forward network")
	}
	if n.Conns[0].Delay != 0 {
		t.Fatalf("standard edge delay = %d, want 0", n.Conns[0].Delay)
	}
}

func TestRecurrentWhitelistEnforced(t *testing.T) {
	// With no recurrent kinds allowed and the only forward edge present,
	// add_connection has no candidates and degrades to a no-op.
	m := &StructuralMutator{
		Rand:          rand.New(rand.NewSource(31)),
		AddConnection: &AddConnectionConfig{Probability: 1, Max: 3, Init: InitRandom},
	}
	n := pair(t)
	if m.Mutate(n) {
		t.Fatal("add_connection created a forbidden recurrent edge")
	}
	if len(n.Conns) != 1 {
		t.Fatalf("connection count = %d, want 1", len(n.Conns))
	}
}

func TestValidateRejectsBadConfigs(t *testing.T) {
	cases := []struct {
		name string
		m    *StructuralMutator
	}{
		{"nil_rand", &StructuralMutator{}},
		{"probability", &StructuralMutator{
			Rand:          rand.New(rand.NewSource(1)),
			AddConnection: &AddConnectionConfig{Probability: 1.5, Max: 1},
		}},
		{"zero_max", &StructuralMutator{
			Rand:          rand.New(rand.NewSource(1)),
			AddConnection: &AddConnectionConfig{Probability: 0.5, Max: 0},
		}},
		{"ratio", &StructuralMutator{
			Rand:      rand.New(rand.NewSource(1)),
			AddNeuron: &AddNeuronConfig{Probability: 0.5, ConnectionRatio: 0},
		}},
		{"delay_bounds", &StructuralMutator{
			Rand:  rand.New(rand.NewSource(1)),
			Delay: &DelayMutationConfig{Probability: 1, Mode: DelayResample, Lo: 3, Hi: 1},
		}},
		{"delay_delta", &StructuralMutator{
			Rand:  rand.New(rand.NewSource(1)),
			Delay: &DelayMutationConfig{Probability: 1, Mode: DelayDeltaStep, Delta: 0, Lo: 1, Hi: 4},
		}},
	}
	for _, tc := range cases {
		err := tc.m.Validate()
		if err == nil {
			t.Errorf("%s: validate accepted a bad config", tc.name)
			continue
		}
		if tc.name != "nil_rand" && !errors.Is(err, ErrBadOperatorConfig) {
			t.Errorf("%s: err = %v, want ErrBadOperatorConfig", tc.name, err)
		}
	}
}

func TestMutateDeterministic(t *testing.T) {
	build := func(seed int64) *Network {
		m := &StructuralMutator{
			Rand:            rand.New(rand.NewSource(seed)),
			AddConnection:   &AddConnectionConfig{Probability: 0.6, Max: 2, Init: InitRandom},
			AddNeuron:       &AddNeuronConfig{Probability: 0.4, ConnectionRatio: 1, Init: InitRandom},
			SplitConnection: &SplitConnectionConfig{Probability: 0.3},
			Limits:          Limits{MaxNeurons: 8, MaxConnections: 20, Recurrent: allRecurrent()},
		}
		n := &Network{}
		in := n.AddNeuron(Neuron{Role: RoleInput, Depth: 0})
		out := n.AddNeuron(Neuron{Role: RoleOutput, Depth: 1})
		if _, err := n.AddConnection(in, out, 0.5, 0); err != nil {
			t.Fatalf("seed edge: %v", err)
		}
		for i := 0; i < 40; i++ {
			m.Mutate(n)
		}
		return n
	}
	a, b := build(42), build(42)
	if len(a.Neurons) != len(b.Neurons) || len(a.Conns) != len(b.Conns) {
		t.Fatalf("same seed diverged: %d/%d neurons, %d/%d connections",
			len(a.Neurons), len(b.Neurons), len(a.Conns), len(b.Conns))
	}
	for i := range a.Conns {
		if a.Conns[i] != b.Conns[i] {
			t.Fatalf("connection %d differs: %+v vs %+v", i, a.Conns[i], b.Conns[i])
		}
	}
}
