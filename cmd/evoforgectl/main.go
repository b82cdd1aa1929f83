package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"

	"evoforge/pkg/evoforge"
)

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "run":
		return runRun(ctx, args[1:])
	case "summary":
		return runSummary(ctx, args[1:])
	case "snapshots":
		return runSnapshots(ctx, args[1:])
	case "lineage":
		return runLineage(ctx, args[1:])
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

func newClient(storeKind, dbPath string) (*evoforge.Client, error) {
	return evoforge.New(evoforge.Options{StoreKind: storeKind, DBPath: dbPath})
}

func storeFlags(fs *flag.FlagSet) (storeKind, dbPath *string) {
	storeKind = fs.String("store", "memory", "store backend: memory|sqlite")
	dbPath = fs.String("db-path", "evoforge.db", "sqlite database path")
	return storeKind, dbPath
}

func runRun(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to the YAML run configuration")
	storeKind, dbPath := storeFlags(fs)
	asJSON := fs.Bool("json", false, "emit the result as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *configPath == "" {
		return usageError("run requires -config")
	}

	client, err := newClient(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer client.Close()

	result, err := client.RunFile(ctx, *configPath)
	if err != nil {
		return err
	}
	if *asJSON {
		return printJSON(result)
	}
	fmt.Printf("run %s finished\n", result.RunID)
	fmt.Printf("  objective:    %s\n", result.Objective)
	fmt.Printf("  generations:  %s\n", humanize.Comma(int64(result.Generations)))
	fmt.Printf("  best fitness: %g\n", result.BestFitness)
	if len(result.BestGenes) > 0 {
		fmt.Printf("  best genes:   %v\n", result.BestGenes)
	}
	return nil
}

func runSummary(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("summary", flag.ContinueOnError)
	runID := fs.String("run", "", "run ID")
	storeKind, dbPath := storeFlags(fs)
	asJSON := fs.Bool("json", false, "emit the summary as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID == "" {
		return usageError("summary requires -run")
	}

	client, err := newClient(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer client.Close()

	summary, err := client.RunSummary(ctx, *runID)
	if err != nil {
		return err
	}
	if *asJSON {
		return printJSON(summary)
	}
	fmt.Printf("run %s\n", summary.ID)
	fmt.Printf("  objective:    %s\n", summary.Objective)
	fmt.Printf("  generations:  %s\n", humanize.Comma(int64(summary.Generations)))
	fmt.Printf("  population:   %s\n", humanize.Comma(int64(summary.Population)))
	fmt.Printf("  seed:         %d\n", summary.Seed)
	fmt.Printf("  best fitness: %g\n", summary.BestFitness)
	return nil
}

func runSnapshots(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("snapshots", flag.ContinueOnError)
	runID := fs.String("run", "", "run ID")
	storeKind, dbPath := storeFlags(fs)
	asJSON := fs.Bool("json", false, "emit the snapshots as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID == "" {
		return usageError("snapshots requires -run")
	}

	client, err := newClient(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer client.Close()

	snapshots, err := client.ParamSnapshots(ctx, *runID)
	if err != nil {
		return err
	}
	if *asJSON {
		return printJSON(snapshots)
	}
	fmt.Printf("%s snapshots for run %s\n", humanize.Comma(int64(len(snapshots))), *runID)
	fmt.Println("gen\tstrength\tprobability\tcrossover\tdiversity")
	for _, snap := range snapshots {
		diversity := "-"
		if snap.DiversityEMASet {
			diversity = fmt.Sprintf("%.4f", snap.DiversityEMA)
		}
		fmt.Printf("%d\t%.4f\t%.4f\t%.4f\t%s\n",
			snap.Generation, snap.Strength, snap.Probability, snap.CrossoverProbability, diversity)
	}
	return nil
}

func runLineage(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("lineage", flag.ContinueOnError)
	runID := fs.String("run", "", "run ID")
	storeKind, dbPath := storeFlags(fs)
	asJSON := fs.Bool("json", false, "emit the lineage as JSON")
	generation := fs.Int("generation", -1, "restrict to one generation")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID == "" {
		return usageError("lineage requires -run")
	}

	client, err := newClient(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer client.Close()

	lineage, err := client.Lineage(ctx, *runID)
	if err != nil {
		return err
	}
	if *generation >= 0 {
		filtered := lineage[:0]
		for _, rec := range lineage {
			if rec.Generation == *generation {
				filtered = append(filtered, rec)
			}
		}
		lineage = filtered
	}
	if *asJSON {
		return printJSON(lineage)
	}
	fmt.Printf("%s lineage records for run %s\n", humanize.Comma(int64(len(lineage))), *runID)
	fmt.Println("gen\tindividual\tparent\torigin\tstructural\tfitness")
	for _, rec := range lineage {
		parent := rec.ParentID
		if parent == "" {
			parent = "-"
		}
		fmt.Printf("%d\t%s\t%s\t%s\t%v\t%g\n",
			rec.Generation, rec.IndividualID, parent, rec.Origin, rec.Structural, rec.Fitness)
	}
	return nil
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func usageError(msg string) error {
	return fmt.Errorf("%s\nusage: evoforgectl <run|summary|snapshots|lineage> [flags]", msg)
}
