// Package config loads and validates the YAML run configuration and resolves
// it into the engine's control, vector, and network settings.
package config

import (
	"fmt"
	"math/rand"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"evoforge/internal/net"
	"evoforge/internal/param"
	"evoforge/internal/vec"
)

// Config is the root configuration structure.
type Config struct {
	Run     RunConfig     `yaml:"run"`
	Control ControlConfig `yaml:"control"`
	Vector  VectorConfig  `yaml:"vector"`
	Network NetworkConfig `yaml:"network"`
	Storage StorageConfig `yaml:"storage"`
}

// RunConfig defines the evolutionary loop shape.
type RunConfig struct {
	Seed           int64  `yaml:"seed"`
	MaxGenerations int    `yaml:"max_generations" validate:"gte=1"`
	Population     int    `yaml:"population" validate:"gte=2"`
	Offspring      int    `yaml:"offspring" validate:"gte=1"`
	Elites         int    `yaml:"elites" validate:"gte=1"`
	Objective      string `yaml:"objective" validate:"oneof=sphere rastrigin xor"`
	// Representation selects which genomes individuals carry.
	Representation string `yaml:"representation" validate:"oneof=vector network both"`
}

// ControlConfig configures the adaptive parameter engine.
type ControlConfig struct {
	MutationStrategy  string `yaml:"mutation_strategy"`
	CrossoverStrategy string `yaml:"crossover_strategy"`

	Strength    *float64 `yaml:"strength" validate:"omitempty,gte=0"`
	Probability *float64 `yaml:"probability" validate:"omitempty,gte=0,lte=1"`

	MinStrength    float64 `yaml:"min_strength" validate:"gte=0"`
	MaxStrength    float64 `yaml:"max_strength" validate:"gte=0"`
	MinProbability float64 `yaml:"min_probability" validate:"gte=0,lte=1"`
	MaxProbability float64 `yaml:"max_probability" validate:"gte=0,lte=1"`

	IncreaseFactor float64 `yaml:"increase_factor" validate:"gte=0"`
	DecreaseFactor float64 `yaml:"decrease_factor" validate:"gte=0"`

	MinDiversityThreshold float64 `yaml:"min_diversity_threshold" validate:"gte=0"`
	MaxDiversityThreshold float64 `yaml:"max_diversity_threshold" validate:"gte=0"`

	Tau            float64 `yaml:"tau" validate:"gte=0"`
	DiversityAlpha float64 `yaml:"diversity_alpha" validate:"gte=0,lte=1"`

	CrossoverProbability    *float64 `yaml:"crossover_probability" validate:"omitempty,gte=0,lte=1"`
	MinCrossoverProbability float64  `yaml:"min_crossover_probability" validate:"gte=0,lte=1"`
	MaxCrossoverProbability float64  `yaml:"max_crossover_probability" validate:"gte=0,lte=1"`
	CrossoverIncreaseFactor float64  `yaml:"crossover_increase_factor" validate:"gte=0"`
	CrossoverDecreaseFactor float64  `yaml:"crossover_decrease_factor" validate:"gte=0"`

	CrossoverOperator string  `yaml:"crossover_operator" validate:"omitempty,oneof=blx sbx intermediate"`
	BLXAlpha          float64 `yaml:"blx_alpha" validate:"gte=0"`
	SBXEta            float64 `yaml:"sbx_eta" validate:"gte=0"`
	BlendRange        float64 `yaml:"blend_range" validate:"gte=0,lte=1"`
}

// VectorConfig shapes the real-valued genome.
type VectorConfig struct {
	Dimension int     `yaml:"dimension" validate:"gte=1"`
	Lo        float64 `yaml:"lo"`
	Hi        float64 `yaml:"hi"`
}

// OperatorConfig is the shared shape for YAML operator blocks; unused fields
// are ignored per operator.
type OperatorConfig struct {
	Probability     float64  `yaml:"probability" validate:"gte=0,lte=1"`
	Max             int      `yaml:"max" validate:"gte=0"`
	Init            string   `yaml:"init" validate:"omitempty,oneof=none zero random near_zero"`
	Activations     []string `yaml:"activations"`
	ConnectionRatio float64  `yaml:"connection_ratio" validate:"gte=0,lte=1"`
}

// DelayConfig configures recurrent delay mutation.
type DelayConfig struct {
	Probability float64 `yaml:"probability" validate:"gte=0,lte=1"`
	Mode        string  `yaml:"mode" validate:"omitempty,oneof=delta_step resample"`
	Delta       int     `yaml:"delta" validate:"gte=0"`
	Lo          int     `yaml:"lo" validate:"gte=0"`
	Hi          int     `yaml:"hi" validate:"gte=0"`
}

// NetworkConfig shapes the graph genome and its structural operators.
type NetworkConfig struct {
	Inputs  int `yaml:"inputs" validate:"gte=0"`
	Outputs int `yaml:"outputs" validate:"gte=0"`

	MaxNeurons     int      `yaml:"max_neurons" validate:"gte=0"`
	MaxConnections int      `yaml:"max_connections" validate:"gte=0"`
	Recurrent      []string `yaml:"recurrent" validate:"dive,oneof=direct lateral indirect"`
	Scope          string   `yaml:"scope" validate:"omitempty,oneof=adjacent cross_layer"`

	AddConnection    *OperatorConfig `yaml:"add_connection"`
	RemoveConnection *OperatorConfig `yaml:"remove_connection"`
	AddNeuron        *OperatorConfig `yaml:"add_neuron"`
	RemoveNeuron     *OperatorConfig `yaml:"remove_neuron"`
	SplitConnection  *OperatorConfig `yaml:"split_connection"`
	Delay            *DelayConfig    `yaml:"delay"`
}

// StorageConfig selects the telemetry store.
type StorageConfig struct {
	Kind string `yaml:"kind" validate:"omitempty,oneof=memory sqlite"`
	Path string `yaml:"path"`
}

var validate = validator.New()

// Load reads, defaults, and validates a YAML config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates raw YAML config bytes.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	applyDefaults(cfg)
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	if err := checkCrossFields(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Run.Seed == 0 {
		cfg.Run.Seed = 1
	}
	if cfg.Run.MaxGenerations == 0 {
		cfg.Run.MaxGenerations = 100
	}
	if cfg.Run.Population == 0 {
		cfg.Run.Population = 30
	}
	if cfg.Run.Offspring == 0 {
		cfg.Run.Offspring = cfg.Run.Population
	}
	if cfg.Run.Elites == 0 {
		cfg.Run.Elites = cfg.Run.Population / 4
		if cfg.Run.Elites < 1 {
			cfg.Run.Elites = 1
		}
	}
	if cfg.Run.Objective == "" {
		cfg.Run.Objective = "sphere"
	}
	if cfg.Run.Representation == "" {
		cfg.Run.Representation = "vector"
	}

	if cfg.Control.MutationStrategy == "" {
		cfg.Control.MutationStrategy = "constant"
	}
	if cfg.Control.CrossoverStrategy == "" {
		cfg.Control.CrossoverStrategy = "none"
	}
	if cfg.Control.DiversityAlpha == 0 {
		cfg.Control.DiversityAlpha = 0.3
	}
	if cfg.Control.CrossoverOperator == "" {
		cfg.Control.CrossoverOperator = "blx"
	}
	if cfg.Control.BLXAlpha == 0 {
		cfg.Control.BLXAlpha = 0.5
	}
	if cfg.Control.SBXEta == 0 {
		cfg.Control.SBXEta = 2
	}
	if cfg.Control.BlendRange == 0 {
		cfg.Control.BlendRange = 0.25
	}

	if cfg.Vector.Dimension == 0 {
		cfg.Vector.Dimension = 10
	}
	if cfg.Vector.Lo == 0 && cfg.Vector.Hi == 0 {
		cfg.Vector.Lo, cfg.Vector.Hi = -5.12, 5.12
	}

	if cfg.Network.Scope == "" {
		cfg.Network.Scope = "adjacent"
	}
	if cfg.Storage.Kind == "" {
		cfg.Storage.Kind = "memory"
	}
}

// checkCrossFields enforces constraints the tag validators cannot express:
// bound ordering, elite counts, and the strategy parse checks that surface
// bad names before the engine is built.
func checkCrossFields(cfg *Config) error {
	if cfg.Run.Elites > cfg.Run.Population {
		return fmt.Errorf("config: elites %d exceed population %d", cfg.Run.Elites, cfg.Run.Population)
	}
	if !(cfg.Vector.Lo < cfg.Vector.Hi) {
		return fmt.Errorf("config: vector bounds (%v, %v) malformed", cfg.Vector.Lo, cfg.Vector.Hi)
	}
	if _, err := param.ParseMutationStrategy(cfg.Control.MutationStrategy); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if _, err := param.ParseCrossoverStrategy(cfg.Control.CrossoverStrategy); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if cfg.Run.Representation == "network" &&
		(cfg.Control.MutationStrategy == "adaptive_global" || cfg.Control.CrossoverStrategy == "adaptive_global") {
		return fmt.Errorf("config: adaptive_global needs vector genomes for the diversity signal")
	}
	if cfg.Run.Representation != "vector" && cfg.Network.Inputs < 1 {
		return fmt.Errorf("config: network representation needs at least one input")
	}
	if cfg.Run.Representation != "vector" && cfg.Network.Outputs < 1 {
		return fmt.Errorf("config: network representation needs at least one output")
	}
	if cfg.Storage.Kind == "sqlite" && cfg.Storage.Path == "" {
		return fmt.Errorf("config: sqlite storage needs a path")
	}
	return nil
}

// Params resolves the control block into a validated parameter set. Strategy
// field requirements (bounds, factors, thresholds) are enforced by the
// parameter set's own Validate, so misconfiguration fails here, at setup.
func (c *Config) Params() (*param.AdaptiveParams, error) {
	mutation, err := param.ParseMutationStrategy(c.Control.MutationStrategy)
	if err != nil {
		return nil, err
	}
	crossover, err := param.ParseCrossoverStrategy(c.Control.CrossoverStrategy)
	if err != nil {
		return nil, err
	}
	p := &param.AdaptiveParams{
		MutationStrategy:  mutation,
		CrossoverStrategy: crossover,

		MinStrength:    c.Control.MinStrength,
		MaxStrength:    c.Control.MaxStrength,
		MinProbability: c.Control.MinProbability,
		MaxProbability: c.Control.MaxProbability,

		IncreaseFactor: c.Control.IncreaseFactor,
		DecreaseFactor: c.Control.DecreaseFactor,

		MinDiversityThreshold: c.Control.MinDiversityThreshold,
		MaxDiversityThreshold: c.Control.MaxDiversityThreshold,

		Tau: c.Control.Tau,

		MinCrossoverProbability: c.Control.MinCrossoverProbability,
		MaxCrossoverProbability: c.Control.MaxCrossoverProbability,
		CrossoverIncreaseFactor: c.Control.CrossoverIncreaseFactor,
		CrossoverDecreaseFactor: c.Control.CrossoverDecreaseFactor,
	}
	if c.Control.Strength != nil {
		p.Strength, p.StrengthSet = *c.Control.Strength, true
	}
	if c.Control.Probability != nil {
		p.Probability, p.ProbabilitySet = *c.Control.Probability, true
	}
	if c.Control.CrossoverProbability != nil {
		p.CrossoverProbability, p.CrossoverProbabilitySet = *c.Control.CrossoverProbability, true
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("config control: %w", err)
	}
	return p, nil
}

// Tracker builds the diversity tracker for the configured smoothing factor.
func (c *Config) Tracker() (*param.DiversityTracker, error) {
	return param.NewDiversityTracker(c.Control.DiversityAlpha)
}

// Bounds returns the vector clipping range.
func (c *Config) Bounds() vec.Bounds {
	return vec.Bounds{Lo: c.Vector.Lo, Hi: c.Vector.Hi}
}

// CrossoverOperator builds the configured vector crossover.
func (c *Config) CrossoverOperator(rng *rand.Rand) (vec.Crossover, error) {
	switch c.Control.CrossoverOperator {
	case "blx":
		return &vec.BLXCrossover{Rand: rng, Alpha: c.Control.BLXAlpha}, nil
	case "sbx":
		return &vec.SBXCrossover{Rand: rng, Eta: c.Control.SBXEta}, nil
	case "intermediate":
		return &vec.IntermediateCrossover{Rand: rng, BlendRange: c.Control.BlendRange}, nil
	default:
		return nil, fmt.Errorf("unknown crossover operator: %q", c.Control.CrossoverOperator)
	}
}

// StructuralMutator builds and validates the structural mutation engine.
// A nil network block yields a mutator with every operator disabled.
func (c *Config) StructuralMutator(rng *rand.Rand) (*net.StructuralMutator, error) {
	scope, err := net.ParseScope(c.Network.Scope)
	if err != nil {
		return nil, err
	}
	kinds := make([]net.RecurrentKind, 0, len(c.Network.Recurrent))
	for _, name := range c.Network.Recurrent {
		kind, err := net.ParseRecurrentKind(name)
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, kind)
	}

	m := &net.StructuralMutator{
		Rand: rng,
		Limits: net.Limits{
			MaxNeurons:     c.Network.MaxNeurons,
			MaxConnections: c.Network.MaxConnections,
			Recurrent:      kinds,
			Scope:          scope,
		},
	}
	if op := c.Network.AddConnection; op != nil {
		init, err := net.ParseWeightInit(op.Init)
		if err != nil {
			return nil, err
		}
		m.AddConnection = &net.AddConnectionConfig{Probability: op.Probability, Max: op.Max, Init: init}
	}
	if op := c.Network.RemoveConnection; op != nil {
		m.RemoveConnection = &net.RemoveConnectionConfig{Probability: op.Probability, Max: op.Max}
	}
	if op := c.Network.AddNeuron; op != nil {
		init, err := net.ParseWeightInit(op.Init)
		if err != nil {
			return nil, err
		}
		ratio := op.ConnectionRatio
		if ratio == 0 {
			ratio = 1
		}
		m.AddNeuron = &net.AddNeuronConfig{
			Probability:     op.Probability,
			Activations:     op.Activations,
			ConnectionRatio: ratio,
			Init:            init,
		}
	}
	if op := c.Network.RemoveNeuron; op != nil {
		m.RemoveNeuron = &net.RemoveNeuronConfig{Probability: op.Probability}
	}
	if op := c.Network.SplitConnection; op != nil {
		m.SplitConnection = &net.SplitConnectionConfig{Probability: op.Probability}
	}
	if d := c.Network.Delay; d != nil {
		mode, err := net.ParseDelayMode(d.Mode)
		if err != nil {
			return nil, err
		}
		lo, hi := d.Lo, d.Hi
		if lo == 0 {
			lo = 1
		}
		if hi == 0 {
			hi = lo
		}
		m.Delay = &net.DelayMutationConfig{
			Probability: d.Probability,
			Mode:        mode,
			Delta:       d.Delta,
			Lo:          lo,
			Hi:          hi,
		}
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}
