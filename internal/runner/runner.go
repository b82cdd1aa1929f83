// Package runner drives a complete evolution run: seeding, evaluation,
// parameter updates, breeding, and telemetry persistence.
package runner

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/google/uuid"

	"evoforge/internal/bench"
	"evoforge/internal/config"
	"evoforge/internal/evo"
	"evoforge/internal/model"
	"evoforge/internal/net"
	"evoforge/internal/param"
	"evoforge/internal/storage"
	"evoforge/internal/vec"
)

// Runner executes one (mu+lambda) evolution run against a benchmark
// objective, logging a parameter snapshot per generation and the full
// lineage at the end.
type Runner struct {
	cfg        *config.Config
	store      storage.Store
	objective  bench.Objective
	dispatcher *evo.Dispatcher
	selector   evo.Selector
	post       evo.FitnessPostprocessor
	rng        *rand.Rand
}

// Result summarizes a finished run.
type Result struct {
	RunID       string
	Generations int
	Best        *evo.Individual
	BestFitness float64
}

func New(cfg *config.Config, store storage.Store) (*Runner, error) {
	objective, err := bench.New(cfg.Run.Objective)
	if err != nil {
		return nil, err
	}
	params, err := cfg.Params()
	if err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(cfg.Run.Seed))
	gaussian, err := vec.NewGaussianMutator(rng, cfg.Bounds())
	if err != nil {
		return nil, err
	}
	crossover, err := cfg.CrossoverOperator(rng)
	if err != nil {
		return nil, err
	}

	d := &evo.Dispatcher{
		Rand:           rng,
		Params:         params,
		Gaussian:       gaussian,
		Crossover:      crossover,
		MaxGenerations: cfg.Run.MaxGenerations,
	}
	// The diversity tracker exists only when a strategy consumes it: the
	// signal is vector-based and network-only runs have none to offer.
	if params.MutationStrategy == param.MutationAdaptiveGlobal ||
		params.CrossoverStrategy == param.CrossoverAdaptiveGlobal {
		tracker, err := cfg.Tracker()
		if err != nil {
			return nil, err
		}
		d.Tracker = tracker
	}

	r := &Runner{
		cfg:        cfg,
		store:      store,
		objective:  objective,
		dispatcher: d,
		selector:   evo.EliteSelector{},
		post:       evo.NoopFitnessPostprocessor{},
		rng:        rng,
	}
	if cfg.Run.Representation != "vector" {
		structural, err := cfg.StructuralMutator(rng)
		if err != nil {
			return nil, err
		}
		d.Structural = structural
		r.post = evo.ComplexityPenaltyPostprocessor{Weight: 1e-3}
	}
	return r, nil
}

// Run executes the configured number of generations and returns the best
// individual found.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	if err := r.store.Init(ctx); err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}

	runID := uuid.NewString()
	pop := r.seed()
	var lineage []model.LineageRecord
	best := pop[0]
	bestFitness := 0.0
	bestSet := false

	maxGen := r.cfg.Run.MaxGenerations
	mu := r.cfg.Run.Population
	for gen := 0; gen <= maxGen; gen++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var fresh []*evo.Individual
		for _, ind := range pop {
			if ind.Evaluated {
				continue
			}
			fitness, err := r.objective.Evaluate(ctx, ind)
			if err != nil {
				return nil, fmt.Errorf("generation %d: %w", gen, err)
			}
			ind.Fitness = fitness
			ind.Evaluated = true
			fresh = append(fresh, ind)
		}
		// Post-process only fresh scores; survivors keep theirs.
		r.post.Process(fresh)
		evo.Rank(pop)
		if len(pop) > mu {
			pop = pop[:mu]
		}
		if !bestSet || pop[0].Fitness > bestFitness {
			best, bestFitness, bestSet = pop[0], pop[0].Fitness, true
		}

		raw, ok := evo.MeanPairwiseDistance(pop)
		if r.dispatcher.Tracker != nil && !ok {
			return nil, fmt.Errorf("generation %d: %w", gen, param.ErrDiversityRequired)
		}
		if err := r.dispatcher.UpdateAdaptiveParameters(gen, raw); err != nil {
			return nil, fmt.Errorf("generation %d: %w", gen, err)
		}

		snapshot := r.dispatcher.Params.Snapshot(runID, gen, r.dispatcher.Tracker)
		snapshot.VersionedRecord = storage.Stamp()
		if err := r.store.SaveParamSnapshot(ctx, snapshot); err != nil {
			return nil, fmt.Errorf("save snapshot: %w", err)
		}
		for _, ind := range pop {
			lineage = append(lineage, model.LineageRecord{
				VersionedRecord: storage.Stamp(),
				RunID:           runID,
				Generation:      gen,
				IndividualID:    ind.ID,
				ParentID:        ind.ParentID,
				Origin:          string(ind.Origin),
				Structural:      ind.StructuralMutant,
				Fitness:         ind.Fitness,
				Evaluated:       ind.Evaluated,
			})
		}

		if gen == maxGen {
			break
		}
		offspring, err := r.breed(pop, gen+1)
		if err != nil {
			return nil, fmt.Errorf("generation %d: %w", gen, err)
		}
		for _, ind := range pop {
			ind.Age++
		}
		pop = append(pop, offspring...)
	}

	if err := r.store.SaveLineage(ctx, runID, lineage); err != nil {
		return nil, fmt.Errorf("save lineage: %w", err)
	}
	summary := model.RunSummary{
		VersionedRecord: storage.Stamp(),
		ID:              runID,
		Objective:       r.objective.Name(),
		Generations:     maxGen,
		Population:      mu,
		Seed:            r.cfg.Run.Seed,
		BestFitness:     bestFitness,
	}
	if err := r.store.SaveRunSummary(ctx, summary); err != nil {
		return nil, fmt.Errorf("save summary: %w", err)
	}
	return &Result{
		RunID:       runID,
		Generations: maxGen,
		Best:        best,
		BestFitness: bestFitness,
	}, nil
}

func (r *Runner) seed() []*evo.Individual {
	pop := make([]*evo.Individual, 0, r.cfg.Run.Population)
	for i := 0; i < r.cfg.Run.Population; i++ {
		var vector *vec.Vector
		var network *net.Network
		if r.cfg.Run.Representation != "network" {
			vector = vec.New(r.randomGenes())
		}
		if r.cfg.Run.Representation != "vector" {
			network = r.seedNetwork()
		}
		pop = append(pop, evo.NewIndividual(vector, network))
	}
	return pop
}

func (r *Runner) randomGenes() []float64 {
	b := r.cfg.Bounds()
	genes := make([]float64, r.cfg.Vector.Dimension)
	for i := range genes {
		genes[i] = b.Lo + r.rng.Float64()*(b.Hi-b.Lo)
	}
	return genes
}

// seedNetwork builds a minimal fully connected input/output topology with
// small random weights; structure beyond that is grown by mutation.
func (r *Runner) seedNetwork() *net.Network {
	activation := "sigmoid"
	if op := r.cfg.Network.AddNeuron; op != nil && len(op.Activations) > 0 {
		activation = op.Activations[0]
	}
	n := &net.Network{}
	for i := 0; i < r.cfg.Network.Inputs; i++ {
		n.AddNeuron(net.Neuron{Role: net.RoleInput, Depth: 0})
	}
	for i := 0; i < r.cfg.Network.Outputs; i++ {
		out := n.AddNeuron(net.Neuron{Role: net.RoleOutput, Depth: 1, Activation: activation})
		for src := 0; src < r.cfg.Network.Inputs; src++ {
			weight := r.rng.Float64()*2 - 1
			if _, err := n.AddConnection(src, out, weight, 0); err != nil {
				// Fresh forward edges into a new output cannot collide.
				panic(err)
			}
		}
	}
	return n
}

func (r *Runner) breed(ranked []*evo.Individual, birthGen int) ([]*evo.Individual, error) {
	elites := r.cfg.Run.Elites
	offspring := make([]*evo.Individual, 0, r.cfg.Run.Offspring)
	for i := 0; i < r.cfg.Run.Offspring; i++ {
		parent, err := r.selector.PickParent(r.rng, ranked, elites)
		if err != nil {
			return nil, err
		}
		child := parent.Offspring(birthGen, evo.OriginMutation)

		if r.dispatcher.Params.CrossoverStrategy != param.CrossoverNone && child.Vector != nil {
			mate, err := r.selector.PickParent(r.rng, ranked, elites)
			if err != nil {
				return nil, err
			}
			// Cross against a throwaway copy so the mate's genome survives.
			scratch := mate.Offspring(birthGen, evo.OriginCrossover)
			crossed, err := r.dispatcher.Cross(child, scratch)
			if err != nil {
				return nil, err
			}
			if crossed {
				child.Origin = evo.OriginCrossover
			}
		}
		if err := r.dispatcher.Mutate(child); err != nil {
			return nil, err
		}
		offspring = append(offspring, child)
	}
	return offspring, nil
}
