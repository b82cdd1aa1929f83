package evo

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"evoforge/internal/net"
	"evoforge/internal/param"
	"evoforge/internal/vec"
)

func newDispatcher(t *testing.T, seed int64, params *param.AdaptiveParams) *Dispatcher {
	t.Helper()
	if err := params.Validate(); err != nil {
		t.Fatalf("params: %v", err)
	}
	rng := rand.New(rand.NewSource(seed))
	gaussian, err := vec.NewGaussianMutator(rng, vec.Bounds{Lo: -5, Hi: 5})
	if err != nil {
		t.Fatalf("mutator: %v", err)
	}
	tracker, err := param.NewDiversityTracker(0.3)
	if err != nil {
		t.Fatalf("tracker: %v", err)
	}
	return &Dispatcher{
		Rand:           rng,
		Params:         params,
		Tracker:        tracker,
		Gaussian:       gaussian,
		Crossover:      &vec.BLXCrossover{Rand: rng, Alpha: 0.5},
		MaxGenerations: 100,
	}
}

func vectorIndividual(values ...float64) *Individual {
	return NewIndividual(vec.New(values), nil)
}

func constantParams() *param.AdaptiveParams {
	return &param.AdaptiveParams{
		MutationStrategy:  param.MutationConstant,
		CrossoverStrategy: param.CrossoverNone,
		Strength:          0.5,
		StrengthSet:       true,
		Probability:       1,
		ProbabilitySet:    true,
	}
}

func TestMutateConstantPerturbsVector(t *testing.T) {
	d := newDispatcher(t, 1, constantParams())
	ind := vectorIndividual(0, 0, 0, 0)
	if err := d.Mutate(ind); err != nil {
		t.Fatalf("mutate: %v", err)
	}
	moved := false
	for _, x := range ind.Vector.Values {
		if x != 0 {
			moved = true
		}
		if x < -5 || x > 5 {
			t.Fatalf("gene %v escaped bounds", x)
		}
	}
	if !moved {
		t.Fatal("constant mutation at probability 1 left the vector unchanged")
	}
}

func TestMutateDecayRequiresUpdate(t *testing.T) {
	params := &param.AdaptiveParams{
		MutationStrategy:  param.MutationExponentialDecay,
		CrossoverStrategy: param.CrossoverNone,
		MinStrength:       0.01,
		MaxStrength:       1,
		MinProbability:    0.1,
		MaxProbability:    1,
	}
	d := newDispatcher(t, 2, params)
	ind := vectorIndividual(1, 2, 3)

	if err := d.Mutate(ind); !errors.Is(err, ErrUpdateOrder) {
		t.Fatalf("mutate before update: err = %v, want ErrUpdateOrder", err)
	}
	if err := d.UpdateAdaptiveParameters(1, 0); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := d.Mutate(ind); err != nil {
		t.Fatalf("mutate after update: %v", err)
	}
}

func TestMutateAdaptiveIndividualLazyInit(t *testing.T) {
	params := &param.AdaptiveParams{
		MutationStrategy:  param.MutationAdaptiveIndividual,
		CrossoverStrategy: param.CrossoverNone,
		MinStrength:       0.1,
		MaxStrength:       0.9,
	}
	d := newDispatcher(t, 3, params)
	ind := vectorIndividual(0, 0)

	if ind.StrengthSet {
		t.Fatal("strength set before first mutation")
	}
	if err := d.Mutate(ind); err != nil {
		t.Fatalf("mutate: %v", err)
	}
	if !ind.StrengthSet {
		t.Fatal("first mutation did not initialize the strength")
	}
	first := ind.Strength
	if first < 0.1 || first > 0.9 {
		t.Fatalf("initial strength %v outside [0.1, 0.9]", first)
	}

	for i := 0; i < 50; i++ {
		if err := d.Mutate(ind); err != nil {
			t.Fatalf("mutate %d: %v", i, err)
		}
		if ind.Strength < 0.1 || ind.Strength > 0.9 {
			t.Fatalf("adapted strength %v escaped clamp", ind.Strength)
		}
	}
}

func TestMutateAdaptiveIndividualProbabilityChannel(t *testing.T) {
	params := &param.AdaptiveParams{
		MutationStrategy:  param.MutationAdaptiveIndividual,
		CrossoverStrategy: param.CrossoverNone,
		MinStrength:       0.1,
		MaxStrength:       0.9,
		MinProbability:    0.2,
		MaxProbability:    0.8,
	}
	d := newDispatcher(t, 11, params)
	ind := vectorIndividual(0, 0, 0)

	if ind.ProbabilitySet {
		t.Fatal("probability set before first mutation")
	}
	if err := d.Mutate(ind); err != nil {
		t.Fatalf("mutate: %v", err)
	}
	if !ind.ProbabilitySet {
		t.Fatal("first mutation did not initialize the probability")
	}
	for i := 0; i < 50; i++ {
		if err := d.Mutate(ind); err != nil {
			t.Fatalf("mutate %d: %v", i, err)
		}
		if ind.Probability < 0.2 || ind.Probability > 0.8 {
			t.Fatalf("adapted probability %v escaped clamp", ind.Probability)
		}
	}

	child := ind.Offspring(3, OriginMutation)
	if !child.ProbabilitySet || child.Probability != ind.Probability {
		t.Fatalf("child probability = %v (set=%v), want inherited %v",
			child.Probability, child.ProbabilitySet, ind.Probability)
	}
}

func TestMutatePerParameterInitializesSigmas(t *testing.T) {
	params := &param.AdaptiveParams{
		MutationStrategy:  param.MutationAdaptivePerParameter,
		CrossoverStrategy: param.CrossoverNone,
		MinStrength:       0.05,
		MaxStrength:       0.5,
	}
	d := newDispatcher(t, 4, params)
	ind := vectorIndividual(0, 0, 0, 0, 0, 0)

	if err := d.Mutate(ind); err != nil {
		t.Fatalf("mutate: %v", err)
	}
	if got := len(ind.Vector.Sigmas); got != ind.Vector.Len() {
		t.Fatalf("sigma count = %d, want %d", got, ind.Vector.Len())
	}
	for i := 0; i < 30; i++ {
		if err := d.Mutate(ind); err != nil {
			t.Fatalf("mutate %d: %v", i, err)
		}
		for j, s := range ind.Vector.Sigmas {
			if s < 0.05 || s > 0.5 {
				t.Fatalf("sigma[%d] = %v escaped clamp", j, s)
			}
		}
	}
}

func TestOffspringInheritsStrength(t *testing.T) {
	params := &param.AdaptiveParams{
		MutationStrategy:  param.MutationAdaptiveIndividual,
		CrossoverStrategy: param.CrossoverNone,
		MinStrength:       0.1,
		MaxStrength:       0.9,
	}
	d := newDispatcher(t, 5, params)
	parent := vectorIndividual(1, 1)
	if err := d.Mutate(parent); err != nil {
		t.Fatalf("mutate parent: %v", err)
	}

	child := parent.Offspring(7, OriginMutation)
	if !child.StrengthSet || child.Strength != parent.Strength {
		t.Fatalf("child strength = %v (set=%v), want inherited %v", child.Strength, child.StrengthSet, parent.Strength)
	}
	if child.ID == parent.ID || child.ParentID != parent.ID {
		t.Fatalf("lineage broken: child %q parent link %q", child.ID, child.ParentID)
	}
	if child.BirthGeneration != 7 || child.Evaluated || child.Origin != OriginMutation {
		t.Fatalf("offspring bookkeeping: %+v", child)
	}
	child.Vector.Values[0] = 99
	if parent.Vector.Values[0] == 99 {
		t.Fatal("offspring shares vector storage with parent")
	}
}

func TestMutateStructuralSetsFlag(t *testing.T) {
	rng := rand.New(rand.NewSource(6))
	gaussian, err := vec.NewGaussianMutator(rng, vec.Bounds{Lo: -1, Hi: 1})
	if err != nil {
		t.Fatalf("mutator: %v", err)
	}
	d := &Dispatcher{
		Rand:     rng,
		Params:   constantParams(),
		Gaussian: gaussian,
		Structural: &net.StructuralMutator{
			Rand:          rng,
			AddConnection: &net.AddConnectionConfig{Probability: 1, Max: 2, Init: net.InitRandom},
			Limits: net.Limits{Recurrent: []net.RecurrentKind{
				net.RecurrentDirect, net.RecurrentLateral, net.RecurrentIndirect,
			}},
		},
		MaxGenerations: 10,
	}

	network := &net.Network{}
	in := network.AddNeuron(net.Neuron{Role: net.RoleInput, Depth: 0})
	out := network.AddNeuron(net.Neuron{Role: net.RoleOutput, Depth: 1})
	if _, err := network.AddConnection(in, out, 0.5, 0); err != nil {
		t.Fatalf("seed edge: %v", err)
	}
	ind := NewIndividual(nil, network)

	if err := d.Mutate(ind); err != nil {
		t.Fatalf("mutate: %v", err)
	}
	if !ind.StructuralMutant {
		t.Fatal("structural change not flagged")
	}
	if len(network.Conns) < 2 {
		t.Fatalf("connection count = %d, want >= 2", len(network.Conns))
	}
}

func TestMutateNoGenome(t *testing.T) {
	d := newDispatcher(t, 7, constantParams())
	if err := d.Mutate(&Individual{ID: "x"}); !errors.Is(err, ErrNoGenome) {
		t.Fatalf("err = %v, want ErrNoGenome", err)
	}
}

func TestCrossGateAndStrategyNone(t *testing.T) {
	// NONE never crosses, regardless of configured operator.
	d := newDispatcher(t, 8, constantParams())
	a, b := vectorIndividual(0, 0), vectorIndividual(1, 1)
	for i := 0; i < 20; i++ {
		crossed, err := d.Cross(a, b)
		if err != nil {
			t.Fatalf("cross: %v", err)
		}
		if crossed {
			t.Fatal("crossover fired under strategy NONE")
		}
	}

	// Constant probability 1 always crosses.
	params := constantParams()
	params.CrossoverStrategy = param.CrossoverConstant
	params.CrossoverProbability = 1
	params.CrossoverProbabilitySet = true
	d = newDispatcher(t, 9, params)
	a, b = vectorIndividual(0, 0), vectorIndividual(1, 1)
	crossed, err := d.Cross(a, b)
	if err != nil {
		t.Fatalf("cross: %v", err)
	}
	if !crossed {
		t.Fatal("crossover did not fire at probability 1")
	}
	for i := range a.Vector.Values {
		lo, hi := -0.5, 1.5
		if a.Vector.Values[i] < lo || a.Vector.Values[i] > hi {
			t.Fatalf("child gene %v outside blx interval", a.Vector.Values[i])
		}
	}
}

func TestAdaptiveGlobalReactsToDiversity(t *testing.T) {
	params := &param.AdaptiveParams{
		MutationStrategy:      param.MutationAdaptiveGlobal,
		CrossoverStrategy:     param.CrossoverNone,
		Strength:              0.5,
		StrengthSet:           true,
		Probability:           0.5,
		ProbabilitySet:        true,
		MinStrength:           0.01,
		MaxStrength:           2,
		MinProbability:        0.01,
		MaxProbability:        1,
		IncreaseFactor:        1.5,
		DecreaseFactor:        0.5,
		MinDiversityThreshold: 0.2,
		MaxDiversityThreshold: 0.6,
	}
	d := newDispatcher(t, 10, params)

	// Low diversity raises the mutation pressure.
	if err := d.UpdateAdaptiveParameters(1, 0.05); err != nil {
		t.Fatalf("update: %v", err)
	}
	if math.Abs(params.Strength-0.75) > 1e-12 {
		t.Fatalf("strength = %v, want 0.75 after increase", params.Strength)
	}
	snap := d.LogSnapshot()
	if _, ok := snap["diversity_ema"]; !ok {
		t.Fatal("snapshot missing the diversity signal")
	}
	if snap["mutation_strength"] != params.Strength {
		t.Fatalf("snapshot strength = %v, want %v", snap["mutation_strength"], params.Strength)
	}
}

func TestMutateDeterministicAcrossRuns(t *testing.T) {
	run := func() []float64 {
		params := constantParams()
		rng := rand.New(rand.NewSource(77))
		gaussian, _ := vec.NewGaussianMutator(rng, vec.Bounds{Lo: -5, Hi: 5})
		d := &Dispatcher{Rand: rng, Params: params, Gaussian: gaussian, MaxGenerations: 10}
		ind := vectorIndividual(0, 0, 0, 0, 0)
		for i := 0; i < 10; i++ {
			if err := d.Mutate(ind); err != nil {
				t.Fatalf("mutate: %v", err)
			}
		}
		return ind.Vector.Values
	}
	a, b := run(), run()
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("gene %d diverged: %v vs %v", i, a[i], b[i])
		}
	}
}
