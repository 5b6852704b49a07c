package gmltopo

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// ThemeJob describes one theme of a parallel run.
type ThemeJob struct {
	Name string

	// Build ingests the theme's features, and optionally validates declared
	// boundaries, before detection runs.
	Build func(ctx context.Context, t *Theme) error

	// Detect selects the detectors run after Build.
	Detect Detection

	// Options overrides RunOptions.Theme for this theme.
	Options *Options
}

// ThemeResult is the outcome of one ThemeJob.
type ThemeResult struct {
	Name   string
	ID     uuid.UUID
	Stats  Stats
	Errors []Error // topology errors, drained from the theme
	Err    error   // build or detection failure
}

// RunOptions controls parallel theme runs and error handling.
type RunOptions struct {
	// Workers specifies the number of themes processed concurrently.
	// If 0, defaults to runtime.NumCPU().
	Workers int

	// SkipErrors causes the run to continue when a theme fails. The failure
	// is kept in the theme's result. When false, the first failure cancels
	// the remaining themes and is returned.
	SkipErrors bool

	// Progress is an optional callback for tracking progress. It is called
	// after each theme finishes, never concurrently.
	Progress func(done, total int)

	// ErrorLog is an optional writer receiving one line per failed theme.
	ErrorLog io.Writer

	// Theme configures every theme of the run.
	Theme Options
}

// DefaultRunOptions returns run options with sensible defaults.
func DefaultRunOptions() RunOptions {
	return RunOptions{
		Workers:    runtime.NumCPU(),
		SkipErrors: true,
		Theme:      DefaultOptions(),
	}
}

// ThemeError wraps the failure of one theme.
type ThemeError struct {
	Theme string
	Err   error
}

func (e *ThemeError) Error() string {
	return fmt.Sprintf("theme %s: %v", e.Theme, e.Err)
}

func (e *ThemeError) Unwrap() error { return e.Err }

// RunThemes runs independent themes concurrently, each with its own graph,
// parser and error collector. Results are returned in job order.
//
// Example:
//
//	results, err := gmltopo.RunThemes(ctx, []gmltopo.ThemeJob{
//	    {Name: "parcels", Build: loadParcels, Detect: gmltopo.Holes | gmltopo.FreeStandingSurfaces},
//	    {Name: "roads", Build: loadRoads, Detect: gmltopo.UnenclosedBoundaries},
//	}, gmltopo.DefaultRunOptions())
func RunThemes(ctx context.Context, jobs []ThemeJob, opts RunOptions) ([]ThemeResult, error) {
	results := make([]ThemeResult, len(jobs))
	if len(jobs) == 0 {
		return results, nil
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(jobs) {
		workers = len(jobs)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	var mu sync.Mutex
	done := 0
	finish := func(res ThemeResult) {
		mu.Lock()
		defer mu.Unlock()
		done++
		if res.Err != nil && opts.ErrorLog != nil {
			fmt.Fprintf(opts.ErrorLog, "theme %s: %v\n", res.Name, res.Err)
		}
		if opts.Progress != nil {
			opts.Progress(done, len(jobs))
		}
	}

	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			res := runTheme(gctx, job, opts.Theme)
			results[i] = res
			finish(res)
			if res.Err != nil && !opts.SkipErrors {
				return &ThemeError{Theme: job.Name, Err: res.Err}
			}
			return nil
		})
	}

	err := g.Wait()
	return results, err
}

func runTheme(ctx context.Context, job ThemeJob, opts Options) ThemeResult {
	res := ThemeResult{Name: job.Name}
	if err := ctx.Err(); err != nil {
		res.Err = err
		return res
	}

	if job.Options != nil {
		opts = *job.Options
	}
	theme := NewTheme(job.Name, opts)
	res.ID = theme.ID()

	if job.Build != nil {
		if err := job.Build(ctx, theme); err != nil {
			res.Err = fmt.Errorf("build: %w", err)
		}
	}
	if res.Err == nil {
		if err := theme.Detect(job.Detect); err != nil {
			res.Err = fmt.Errorf("detect: %w", err)
		}
	}

	res.Stats = theme.Stats()
	res.Errors = theme.Drain()
	theme.log.V(1).Info("theme finished", "nodes", res.Stats.Nodes, "errors", res.Stats.Errors)
	return res
}
