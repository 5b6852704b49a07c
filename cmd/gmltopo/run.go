package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/cheggaaa/pb"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/beetlebugorg/gmltopo/internal/config"
	"github.com/beetlebugorg/gmltopo/internal/report"
	"github.com/beetlebugorg/gmltopo/pkg/gmltopo"
)

var configPath string

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Validate every theme of a configuration file in parallel",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load(configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		logger := newLogger()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		objects := make([]*gmltopo.ObjectTable, len(cfg.Themes))
		started := make([]time.Time, len(cfg.Themes))
		jobs := make([]gmltopo.ThemeJob, len(cfg.Themes))
		for i, t := range cfg.Themes {
			i, t := i, t
			detect, _ := t.Detection()
			strategy, _ := t.Strategy()
			opts := cfg.ThemeOptions(t)
			opts.Logger = logger

			jobs[i] = gmltopo.ThemeJob{
				Name:    t.Name,
				Detect:  detect,
				Options: &opts,
				Build: func(ctx context.Context, theme *gmltopo.Theme) error {
					started[i] = time.Now()
					objects[i] = theme.Objects()
					for _, path := range t.Inputs {
						if err := ctx.Err(); err != nil {
							return err
						}
						if _, err := theme.LoadFile(path); err != nil {
							return err
						}
					}
					if len(t.Boundaries) == 0 {
						return nil
					}
					bc := theme.ValidateBoundary(strategy)
					for _, path := range t.Boundaries {
						if err := ctx.Err(); err != nil {
							return err
						}
						if _, err := bc.LoadFile(path); err != nil {
							return err
						}
					}
					return nil
				},
			}
		}

		bar := pb.New(len(jobs))
		bar.Output = os.Stderr
		bar.Start()

		runOpts := gmltopo.DefaultRunOptions()
		runOpts.Workers = cfg.Workers
		runOpts.SkipErrors = !cfg.StopOnError
		runOpts.ErrorLog = os.Stderr
		runOpts.Progress = func(done, total int) { bar.Increment() }

		results, err := gmltopo.RunThemes(ctx, jobs, runOpts)
		bar.Finish()
		if err != nil {
			log.Fatalf("Run failed: %v", err)
		}

		path := dbPath
		if path == "" {
			path = cfg.Database
		}
		store := openStore(path)

		failed := false
		for i, res := range results {
			fmt.Printf("%-20s %8d nodes %8d edges %6d errors", res.Name, res.Stats.Nodes, res.Stats.Edges, res.Stats.Errors)
			if res.Err != nil {
				failed = true
				fmt.Printf("  failed: %v", res.Err)
			}
			fmt.Println()
			if res.Stats.Errors > 0 {
				failed = true
			}

			if store == nil || res.ID == uuid.Nil {
				continue
			}
			f := report.Formatter{}
			if objects[i] != nil {
				f.Resolve = objects[i].Resolve
			}
			run := report.Run{
				ID:       res.ID,
				Theme:    res.Name,
				Started:  started[i],
				Features: res.Stats.Features,
				Nodes:    res.Stats.Nodes,
				Edges:    res.Stats.Edges,
				Total:    res.Stats.Errors,
				Dropped:  res.Stats.Dropped,
				Records:  res.Errors,
			}
			if res.Err != nil {
				run.Failure = res.Err.Error()
			}
			if err := store.SaveRun(ctx, run, f); err != nil {
				log.Printf("Failed to save theme %s: %v", res.Name, err)
				failed = true
			}
		}

		if store != nil {
			fmt.Printf("Results saved to %s\n", path)
			store.Close()
		}
		if failed {
			stop()
			os.Exit(1)
		}
	},
}

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List the runs stored in the database",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		store := mustStore()
		defer store.Close()

		runs, err := store.Runs(context.Background())
		if err != nil {
			log.Fatalf("Failed to list runs: %v", err)
		}
		for _, r := range runs {
			status := "ok"
			if r.Failure != "" {
				status = "failed"
			}
			fmt.Printf("%s  %s  %-20s %6d errors  %s\n",
				r.ID, r.Started.Local().Format(time.DateTime), r.Theme, r.Total, status)
		}
	},
}

var showCmd = &cobra.Command{
	Use:   "show [run-id]",
	Short: "Print the errors of a stored run",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id, err := uuid.Parse(args[0])
		if err != nil {
			log.Fatalf("Invalid run id: %v", err)
		}
		store := mustStore()
		defer store.Close()
		ctx := context.Background()

		counts, err := store.CountByKind(ctx, id)
		if err != nil {
			log.Fatalf("Failed to count errors: %v", err)
		}
		for kind, n := range counts {
			fmt.Printf("%-32s %d\n", kind, n)
		}

		messages, err := store.Messages(ctx, id)
		if err != nil {
			log.Fatalf("Failed to read errors: %v", err)
		}
		for _, m := range messages {
			fmt.Println(m)
		}
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete [run-id]",
	Short: "Remove a stored run",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id, err := uuid.Parse(args[0])
		if err != nil {
			log.Fatalf("Invalid run id: %v", err)
		}
		store := mustStore()
		defer store.Close()

		if err := store.DeleteRun(context.Background(), id); err != nil {
			log.Fatalf("Failed to delete run: %v", err)
		}
	},
}

func mustStore() *report.SQLiteStore {
	if dbPath == "" {
		log.Fatalf("No database given, use --db")
	}
	return openStore(dbPath)
}

func init() {
	runCmd.Flags().StringVarP(&configPath, "config", "c", "gmltopo.yaml", "Run configuration")
}
