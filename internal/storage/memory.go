package storage

import (
	"context"
	"sort"
	"sync"

	"evoforge/internal/model"
)

type MemoryStore struct {
	mu        sync.RWMutex
	runs      map[string]model.RunSummary
	snapshots map[string][]model.ParamSnapshot
	lineage   map[string][]model.LineageRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.runs = make(map[string]model.RunSummary)
	s.snapshots = make(map[string][]model.ParamSnapshot)
	s.lineage = make(map[string][]model.LineageRecord)
	return nil
}

func (s *MemoryStore) SaveRunSummary(_ context.Context, summary model.RunSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.runs[summary.ID] = summary
	return nil
}

func (s *MemoryStore) GetRunSummary(_ context.Context, id string) (model.RunSummary, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summary, ok := s.runs[id]
	return summary, ok, nil
}

// SaveParamSnapshot upserts by (run, generation), so re-logging a generation
// replaces it.
func (s *MemoryStore) SaveParamSnapshot(_ context.Context, snapshot model.ParamSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing := s.snapshots[snapshot.RunID]
	for i, snap := range existing {
		if snap.Generation == snapshot.Generation {
			existing[i] = snapshot
			return nil
		}
	}
	s.snapshots[snapshot.RunID] = append(existing, snapshot)
	return nil
}

func (s *MemoryStore) GetParamSnapshots(_ context.Context, runID string) ([]model.ParamSnapshot, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshots, ok := s.snapshots[runID]
	if !ok {
		return nil, false, nil
	}
	copied := append([]model.ParamSnapshot(nil), snapshots...)
	sort.Slice(copied, func(i, j int) bool {
		return copied[i].Generation < copied[j].Generation
	})
	return copied, true, nil
}

func (s *MemoryStore) SaveLineage(_ context.Context, runID string, lineage []model.LineageRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lineage[runID] = append([]model.LineageRecord(nil), lineage...)
	return nil
}

func (s *MemoryStore) GetLineage(_ context.Context, runID string) ([]model.LineageRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lineage, ok := s.lineage[runID]
	if !ok {
		return nil, false, nil
	}
	return append([]model.LineageRecord(nil), lineage...), true, nil
}
