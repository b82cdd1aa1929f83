package evo

import (
	"fmt"
	"math/rand"
	"sort"
)

// Selector chooses a parent from an evaluated population for replication.
// Populations are ranked best-first by Rank before selection; fitness is
// higher-is-better throughout.
type Selector interface {
	Name() string
	PickParent(rng *rand.Rand, ranked []*Individual, eliteCount int) (*Individual, error)
}

// Rank sorts the population in place by descending fitness. Unevaluated
// individuals sink to the end.
func Rank(pop []*Individual) {
	sort.SliceStable(pop, func(i, j int) bool {
		if pop[i].Evaluated != pop[j].Evaluated {
			return pop[i].Evaluated
		}
		return pop[i].Fitness > pop[j].Fitness
	})
}

// EliteSelector picks uniformly from the top elite set.
type EliteSelector struct{}

func (EliteSelector) Name() string {
	return "elite"
}

func (EliteSelector) PickParent(rng *rand.Rand, ranked []*Individual, eliteCount int) (*Individual, error) {
	if rng == nil {
		return nil, fmt.Errorf("random source is required")
	}
	if eliteCount <= 0 || eliteCount > len(ranked) {
		return nil, fmt.Errorf("invalid elite count: %d", eliteCount)
	}
	return ranked[rng.Intn(eliteCount)], nil
}

// TournamentSelector samples candidates from the elite pool and picks the
// best fitness among them.
type TournamentSelector struct {
	PoolSize       int
	TournamentSize int
}

func (TournamentSelector) Name() string {
	return "tournament"
}

func (s TournamentSelector) PickParent(rng *rand.Rand, ranked []*Individual, eliteCount int) (*Individual, error) {
	if rng == nil {
		return nil, fmt.Errorf("random source is required")
	}
	if eliteCount <= 0 || eliteCount > len(ranked) {
		return nil, fmt.Errorf("invalid elite count: %d", eliteCount)
	}

	poolSize := s.PoolSize
	if poolSize <= 0 {
		poolSize = eliteCount * 2
	}
	if poolSize < eliteCount {
		poolSize = eliteCount
	}
	if poolSize > len(ranked) {
		poolSize = len(ranked)
	}

	tournamentSize := s.TournamentSize
	if tournamentSize <= 0 {
		tournamentSize = 3
	}
	if tournamentSize > poolSize {
		tournamentSize = poolSize
	}

	best := ranked[rng.Intn(poolSize)]
	for i := 1; i < tournamentSize; i++ {
		candidate := ranked[rng.Intn(poolSize)]
		if candidate.Fitness > best.Fitness {
			best = candidate
		}
	}
	return best, nil
}
