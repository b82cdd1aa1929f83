package param

import (
	"reflect"
	"testing"
)

func TestSnapshotRoundTripPreservesEveryField(t *testing.T) {
	original := &AdaptiveParams{
		MutationStrategy:  MutationAdaptiveGlobal,
		CrossoverStrategy: CrossoverAdaptiveGlobal,

		Strength:       0.123456789,
		StrengthSet:    true,
		Probability:    0.42,
		ProbabilitySet: true,

		MinStrength:    0.001,
		MaxStrength:    0.75,
		MinProbability: 0.05,
		MaxProbability: 0.95,

		IncreaseFactor: 1.37,
		DecreaseFactor: 0.81,

		MinDiversityThreshold: 0.15,
		MaxDiversityThreshold: 0.55,

		Tau: 0.25,

		CrossoverProbability:    0.6,
		CrossoverProbabilitySet: true,
		MinCrossoverProbability: 0.1,
		MaxCrossoverProbability: 0.9,
		CrossoverIncreaseFactor: 1.2,
		CrossoverDecreaseFactor: 0.9,
	}

	snap := original.Snapshot("run-1", 17, trackerAt(t, 0.33))
	if snap.RunID != "run-1" || snap.Generation != 17 {
		t.Fatalf("snapshot metadata: %+v", snap)
	}
	if !snap.DiversityEMASet || snap.DiversityEMA != 0.33 {
		t.Fatalf("snapshot diversity: %+v", snap)
	}

	restored, err := FromSnapshot(snap)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if !reflect.DeepEqual(original, restored) {
		t.Fatalf("round trip drift:\noriginal=%+v\nrestored=%+v", original, restored)
	}
}

func TestFromSnapshotRejectsUnknownStrategy(t *testing.T) {
	snap := (&AdaptiveParams{MutationStrategy: MutationConstant}).Snapshot("run", 0, nil)
	snap.MutationStrategy = "quantum"
	if _, err := FromSnapshot(snap); err == nil {
		t.Fatal("unknown strategy accepted")
	}
}

func TestSnapshotWithoutDiversity(t *testing.T) {
	snap := (&AdaptiveParams{MutationStrategy: MutationConstant}).Snapshot("run", 3, nil)
	if snap.DiversityEMASet {
		t.Fatalf("diversity should be unset: %+v", snap)
	}
}
