package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/beetlebugorg/gmltopo/internal/report"
	"github.com/beetlebugorg/gmltopo/pkg/gmltopo"
)

var (
	checkDetect     []string
	checkBoundaries []string
	checkStrategy   string
	checkErrorLimit int
	checkUnique     bool
)

var checkCmd = &cobra.Command{
	Use:   "check [files...]",
	Short: "Validate the surfaces of the given files as one theme",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		detect, err := gmltopo.ParseDetection(checkDetect...)
		if err != nil {
			log.Fatalf("Invalid --detect: %v", err)
		}
		strategy, err := gmltopo.ParseStrategy(checkStrategy)
		if err != nil {
			log.Fatalf("Invalid --strategy: %v", err)
		}

		opts := gmltopo.DefaultOptions()
		opts.ErrorLimit = checkErrorLimit
		opts.SuppressDuplicates = checkUnique
		opts.Logger = newLogger()

		started := time.Now()
		theme := gmltopo.NewTheme("check", opts)
		for _, path := range args {
			summary, err := theme.LoadFile(path)
			if err != nil {
				log.Fatalf("Failed to load %s: %v", path, err)
			}
			fmt.Printf("Loaded %s: %d features, %d skipped\n", path, summary.Features, summary.Skipped)
		}

		if len(checkBoundaries) > 0 {
			bc := theme.ValidateBoundary(strategy)
			for _, path := range checkBoundaries {
				if _, err := bc.LoadFile(path); err != nil {
					log.Fatalf("Failed to check boundaries of %s: %v", path, err)
				}
			}
			fmt.Printf("Boundaries: %d edges matched\n", bc.Matched())
		}

		var failure string
		if err := theme.Detect(detect); err != nil {
			failure = err.Error()
			fmt.Fprintf(os.Stderr, "Detection failed: %v\n", err)
		}

		stats := theme.Stats()
		records := theme.Errors()
		f := report.Formatter{Resolve: theme.Objects().Resolve}
		for _, r := range records {
			fmt.Printf("%s: %s\n", r.Kind, f.Format(r))
		}
		fmt.Printf("%d nodes, %d edges, %d errors (%d not stored)\n",
			stats.Nodes, stats.Edges, stats.Errors, stats.Dropped)

		if store := openStore(dbPath); store != nil {
			run := report.Run{
				ID:       theme.ID(),
				Theme:    theme.Name(),
				Started:  started,
				Features: stats.Features,
				Nodes:    stats.Nodes,
				Edges:    stats.Edges,
				Total:    stats.Errors,
				Dropped:  stats.Dropped,
				Failure:  failure,
				Records:  records,
			}
			err := store.SaveRun(context.Background(), run, f)
			store.Close()
			if err != nil {
				log.Fatalf("Failed to save run: %v", err)
			}
			fmt.Printf("Saved run %s\n", run.ID)
		}

		if failure != "" || stats.Errors > 0 {
			os.Exit(1)
		}
	},
}

func init() {
	checkCmd.Flags().StringSliceVar(&checkDetect, "detect", []string{"holes"}, "Detectors to run: holes, unenclosed_boundaries, free_standing_surfaces, free_standing_surfaces_with_all_objects")
	checkCmd.Flags().StringSliceVarP(&checkBoundaries, "boundaries", "b", nil, "Files of declared boundaries to check against the graph")
	checkCmd.Flags().StringVar(&checkStrategy, "strategy", "enclosing", "Boundary strategy: single, multiple or enclosing")
	checkCmd.Flags().IntVar(&checkErrorLimit, "error-limit", 0, "Errors stored per kind (0 stores all)")
	checkCmd.Flags().BoolVar(&checkUnique, "suppress-duplicates", false, "Drop immediately repeated points")
}
