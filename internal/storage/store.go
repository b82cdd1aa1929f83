package storage

import (
	"context"

	"evoforge/internal/model"
)

// Store defines persistence for run telemetry: run summaries, per-generation
// parameter snapshots, and lineage records.
type Store interface {
	Init(ctx context.Context) error
	SaveRunSummary(ctx context.Context, summary model.RunSummary) error
	GetRunSummary(ctx context.Context, id string) (model.RunSummary, bool, error)
	SaveParamSnapshot(ctx context.Context, snapshot model.ParamSnapshot) error
	GetParamSnapshots(ctx context.Context, runID string) ([]model.ParamSnapshot, bool, error)
	SaveLineage(ctx context.Context, runID string, lineage []model.LineageRecord) error
	GetLineage(ctx context.Context, runID string) ([]model.LineageRecord, bool, error)
}
