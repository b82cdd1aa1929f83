// Package evoforge is the public entry point: it owns a telemetry store and
// exposes run execution and telemetry queries over validated configuration.
package evoforge

import (
	"context"
	"fmt"

	"evoforge/internal/config"
	"evoforge/internal/model"
	"evoforge/internal/runner"
	"evoforge/internal/storage"
)

const defaultDBPath = "evoforge.db"

type Options struct {
	StoreKind string
	DBPath    string
}

// Client wires a store to the run machinery. One client may execute many
// runs; each run gets its own ID.
type Client struct {
	store storage.Store
}

func New(opts Options) (*Client, error) {
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	store, err := storage.NewStore(opts.StoreKind, dbPath)
	if err != nil {
		return nil, err
	}
	return &Client{store: store}, nil
}

// NewWithStore builds a client around an existing store, mainly for tests
// and embedding.
func NewWithStore(store storage.Store) *Client {
	return &Client{store: store}
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

// RunResult is the public shape of one finished run.
type RunResult struct {
	RunID       string
	Objective   string
	Generations int
	BestFitness float64
	BestGenes   []float64
}

// RunYAML parses a YAML run configuration and executes it.
func (c *Client) RunYAML(ctx context.Context, doc []byte) (*RunResult, error) {
	cfg, err := config.Parse(doc)
	if err != nil {
		return nil, err
	}
	return c.Run(ctx, cfg)
}

// RunFile loads a YAML run configuration from disk and executes it.
func (c *Client) RunFile(ctx context.Context, path string) (*RunResult, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	return c.Run(ctx, cfg)
}

// Run executes one evolution run against the client's store.
func (c *Client) Run(ctx context.Context, cfg *config.Config) (*RunResult, error) {
	r, err := runner.New(cfg, c.store)
	if err != nil {
		return nil, err
	}
	result, err := r.Run(ctx)
	if err != nil {
		return nil, err
	}
	out := &RunResult{
		RunID:       result.RunID,
		Objective:   cfg.Run.Objective,
		Generations: result.Generations,
		BestFitness: result.BestFitness,
	}
	if result.Best != nil && result.Best.Vector != nil {
		out.BestGenes = append([]float64(nil), result.Best.Vector.Values...)
	}
	return out, nil
}

// RunSummary fetches the stored summary for a run.
func (c *Client) RunSummary(ctx context.Context, runID string) (model.RunSummary, error) {
	summary, ok, err := c.store.GetRunSummary(ctx, runID)
	if err != nil {
		return model.RunSummary{}, err
	}
	if !ok {
		return model.RunSummary{}, fmt.Errorf("run %s not found", runID)
	}
	return summary, nil
}

// ParamSnapshots fetches the per-generation parameter telemetry for a run,
// ordered by generation.
func (c *Client) ParamSnapshots(ctx context.Context, runID string) ([]model.ParamSnapshot, error) {
	snapshots, ok, err := c.store.GetParamSnapshots(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("run %s has no snapshots", runID)
	}
	return snapshots, nil
}

// Lineage fetches the ancestry records for a run.
func (c *Client) Lineage(ctx context.Context, runID string) ([]model.LineageRecord, error) {
	lineage, ok, err := c.store.GetLineage(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("run %s has no lineage", runID)
	}
	return lineage, nil
}
