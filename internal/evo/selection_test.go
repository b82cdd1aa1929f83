package evo

import (
	"math/rand"
	"testing"
)

func scoredPopulation() []*Individual {
	fitness := []float64{0.2, 0.9, 0.5, 0.7}
	pop := make([]*Individual, 0, len(fitness))
	for _, f := range fitness {
		ind := NewIndividual(nil, nil)
		ind.Fitness = f
		ind.Evaluated = true
		pop = append(pop, ind)
	}
	return pop
}

func TestRankDescendingWithUnevaluatedLast(t *testing.T) {
	pop := scoredPopulation()
	pop = append(pop, NewIndividual(nil, nil)) // unevaluated straggler
	Rank(pop)

	want := []float64{0.9, 0.7, 0.5, 0.2}
	for i, f := range want {
		if pop[i].Fitness != f {
			t.Fatalf("rank[%d] fitness = %v, want %v", i, pop[i].Fitness, f)
		}
	}
	if pop[len(pop)-1].Evaluated {
		t.Fatal("unevaluated individual was not ranked last")
	}
}

func TestEliteSelectorStaysInEliteSet(t *testing.T) {
	pop := scoredPopulation()
	Rank(pop)
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 100; i++ {
		parent, err := EliteSelector{}.PickParent(rng, pop, 2)
		if err != nil {
			t.Fatalf("pick: %v", err)
		}
		if parent.Fitness < 0.7 {
			t.Fatalf("picked fitness %v from outside the elite set", parent.Fitness)
		}
	}
	if _, err := (EliteSelector{}).PickParent(rng, pop, 0); err == nil {
		t.Fatal("zero elite count accepted")
	}
	if _, err := (EliteSelector{}).PickParent(nil, pop, 2); err == nil {
		t.Fatal("nil rng accepted")
	}
}

func TestTournamentSelectorPrefersFitter(t *testing.T) {
	pop := scoredPopulation()
	Rank(pop)
	rng := rand.New(rand.NewSource(2))
	s := TournamentSelector{PoolSize: 4, TournamentSize: 3}

	wins := 0
	const trials = 400
	for i := 0; i < trials; i++ {
		parent, err := s.PickParent(rng, pop, 2)
		if err != nil {
			t.Fatalf("pick: %v", err)
		}
		if parent.Fitness >= 0.7 {
			wins++
		}
	}
	// With a pool of 4 and tournaments of 3, the top two should win the
	// large majority of tournaments.
	if wins < trials/2 {
		t.Fatalf("top individuals won only %d/%d tournaments", wins, trials)
	}
}

func TestComplexityPenaltyOnlyTouchesNetworks(t *testing.T) {
	vecInd := vectorIndividual(1, 2)
	vecInd.Fitness = 3
	vecInd.Evaluated = true

	netInd := NewIndividual(nil, smallNetwork(t))
	netInd.Fitness = 3
	netInd.Evaluated = true

	ComplexityPenaltyPostprocessor{Weight: 0.1}.Process([]*Individual{vecInd, netInd})
	if vecInd.Fitness != 3 {
		t.Fatalf("vector fitness changed: %v", vecInd.Fitness)
	}
	if netInd.Fitness >= 3 {
		t.Fatalf("network fitness not penalized: %v", netInd.Fitness)
	}
}
