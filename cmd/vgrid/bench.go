package main

import (
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/vango-dev/vgrid/internal/errors"
	"github.com/vango-dev/vgrid/pkg/columns"
	"github.com/vango-dev/vgrid/pkg/grid"
	"github.com/vango-dev/vgrid/pkg/render"
)

type benchProfile struct {
	Name     string
	Rows     int
	Runs     int
	Append   int
	Replaces int
}

var benchProfiles = map[string]benchProfile{
	"fast":     {Name: "fast", Rows: 1_000, Runs: 3, Append: 100, Replaces: 100},
	"standard": {Name: "standard", Rows: 10_000, Runs: 5, Append: 1_000, Replaces: 500},
	"stress":   {Name: "stress", Rows: 50_000, Runs: 5, Append: 5_000, Replaces: 2_000},
}

// benchResult holds the per-run durations of one operation.
type benchResult struct {
	Op      string
	Samples []time.Duration
}

func (r benchResult) stats() (lo, avg, hi time.Duration) {
	if len(r.Samples) == 0 {
		return 0, 0, 0
	}
	var sum time.Duration
	for _, d := range r.Samples {
		sum += d
	}
	return slices.Min(r.Samples), sum / time.Duration(len(r.Samples)), slices.Max(r.Samples)
}

func benchCmd(c *cli) *cobra.Command {
	var (
		profileName string
		rows        int
		runs        int
		synthetic   bool
	)

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Measure row materialization",
		Long: `Bench times bulk row creation, appends, single-row replacement and
rendering. It uses the project's grid and items, cycled up to the requested
row count, or a built-in synthetic grid with --synthetic.

Profiles: fast, standard, stress.

Examples:
  vgrid bench --synthetic
  vgrid bench --profile stress
  vgrid bench --rows 20000 --runs 10`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			prof, ok := benchProfiles[profileName]
			if !ok {
				return errors.New("E150").
					WithDetail("Unknown profile " + strconv.Quote(profileName)).
					WithSuggestion("Use one of: fast, standard, stress")
			}
			if rows > 0 {
				prof.Rows = rows
			}
			if runs > 0 {
				prof.Runs = runs
			}

			cfg, items := syntheticGrid(), syntheticItems(prof.Rows)
			level := "info"
			if !synthetic {
				p, err := loadProject(cmd.Context(), c.project)
				if err != nil {
					return err
				}
				defer p.Close()
				src, err := p.source.Items(cmd.Context())
				if err != nil {
					return loadError(err)
				}
				if len(src) == 0 {
					return errors.New("E122").WithDetail("The item source is empty")
				}
				cfg, items, level = p.gridCfg, cycleItems(src, prof.Rows), p.cfg.LogLevel
			}

			results, err := runBench(cfg, items, prof, c.logger(level))
			if err != nil {
				return errors.New("E115").Wrap(err)
			}
			printBench(c.stdout, prof, results)
			return nil
		},
	}

	cmd.Flags().StringVarP(&profileName, "profile", "p", "fast", "Benchmark profile")
	cmd.Flags().IntVar(&rows, "rows", 0, "Row count (overrides the profile)")
	cmd.Flags().IntVar(&runs, "runs", 0, "Number of runs (overrides the profile)")
	cmd.Flags().BoolVar(&synthetic, "synthetic", false, "Use the built-in grid instead of the project")

	return cmd
}

func runBench(cfg grid.Config, items []grid.Item, prof benchProfile, logger *slog.Logger) ([]benchResult, error) {
	results := []benchResult{{Op: "create"}, {Op: "append"}, {Op: "replace"}, {Op: "render"}}
	r := render.New(render.Config{})
	extra := items[:min(prof.Append, len(items))]

	for run := 0; run < prof.Runs; run++ {
		g, err := grid.New(cfg, grid.WithLogger(logger))
		if err != nil {
			return nil, err
		}

		start := time.Now()
		if err := g.CreateAll(items); err != nil {
			g.Destroy()
			return nil, err
		}
		results[0].Samples = append(results[0].Samples, time.Since(start))

		start = time.Now()
		if err := g.AppendAll(extra); err != nil {
			g.Destroy()
			return nil, err
		}
		results[1].Samples = append(results[1].Samples, time.Since(start))

		start = time.Now()
		for i := 0; i < prof.Replaces; i++ {
			idx := (i * 7919) % g.Len()
			if err := g.ReplaceAt(idx, items[idx%len(items)]); err != nil {
				g.Destroy()
				return nil, err
			}
		}
		results[2].Samples = append(results[2].Samples, time.Since(start))

		start = time.Now()
		if err := r.RenderToWriter(io.Discard, g.Table()); err != nil {
			g.Destroy()
			return nil, err
		}
		results[3].Samples = append(results[3].Samples, time.Since(start))

		g.Destroy()
	}
	return results, nil
}

func printBench(w io.Writer, prof benchProfile, results []benchResult) {
	fmt.Fprintf(w, "profile=%s rows=%d runs=%d append=%d replaces=%d\n\n",
		prof.Name, prof.Rows, prof.Runs, prof.Append, prof.Replaces)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "op\tmin\tavg\tmax")
	for _, r := range results {
		lo, avg, hi := r.stats()
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.Op, lo.Round(time.Microsecond), avg.Round(time.Microsecond), hi.Round(time.Microsecond))
	}
	tw.Flush()
}

func syntheticGrid() grid.Config {
	two := 2
	defs, _ := columns.BuildAll([]columns.Spec{
		{Kind: "index"},
		{Kind: "text", Field: "name", Label: "Name", Sortable: true},
		{Kind: "number", Field: "amount", Label: "Amount", Precision: &two, Sortable: true},
		{Kind: "checkbox", Field: "done", Label: "Done"},
		{Kind: "link", Field: "name", HrefField: "url", Label: "Link"},
	})
	return grid.Config{Name: "bench", Columns: defs, UseRowHeader: true}
}

func syntheticItems(n int) []grid.Item {
	items := make([]grid.Item, n)
	for i := range items {
		items[i] = grid.Item{
			"name":   "row " + strconv.Itoa(i),
			"amount": float64(i) * 1.25,
			"done":   i%3 == 0,
			"url":    "/rows/" + strconv.Itoa(i),
		}
	}
	return items
}

// cycleItems repeats src until it holds n items.
func cycleItems(src []grid.Item, n int) []grid.Item {
	items := make([]grid.Item, n)
	for i := range items {
		items[i] = src[i%len(src)]
	}
	return items
}
