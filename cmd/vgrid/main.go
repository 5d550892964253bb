package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vango-dev/vgrid/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		errors.Print(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// cli holds the global flags and output streams shared by every command.
type cli struct {
	stdout  io.Writer
	stderr  io.Writer
	verbose bool
	noColor bool
	project projectFlags
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	c := &cli{stdout: stdout, stderr: stderr}

	rootCmd := &cobra.Command{
		Use:   "vgrid",
		Short: "Virtualized row-template data grids",
		Long: `vgrid renders, serves and exports data grids built from a row template.

A grid is defined in YAML and fed from a YAML/JSON item file or a SQLite
query. Project settings live in vgrid.json.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if c.noColor {
				errors.DisableColors()
			}
		},
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&c.verbose, "verbose", "v", false, "Log debug output to stderr")
	pf.BoolVar(&c.noColor, "no-color", false, "Disable colored error output")
	pf.StringVarP(&c.project.configPath, "config", "c", "", "Path to vgrid.json (default: nearest vgrid.json)")
	pf.StringVarP(&c.project.gridPath, "grid", "g", "", "Grid definition (overrides vgrid.json)")
	pf.StringVarP(&c.project.dataPath, "data", "d", "", "YAML or JSON item file (overrides vgrid.json)")
	pf.StringVar(&c.project.sqlitePath, "sqlite", "", "SQLite database to read items from")
	pf.StringVar(&c.project.query, "query", "", "SQLite query (default: SELECT * FROM items)")

	rootCmd.AddCommand(
		renderCmd(c),
		serveCmd(c),
		exportCmd(c),
		benchCmd(c),
		versionCmd(c),
	)
	return rootCmd
}

// logger returns the command logger. --verbose forces debug level.
func (c *cli) logger(level string) *slog.Logger {
	var lvl slog.Level
	if c.verbose {
		lvl = slog.LevelDebug
	} else if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(c.stderr, &slog.HandlerOptions{Level: lvl}))
}

// success prints a success message.
func (c *cli) success(format string, args ...any) {
	fmt.Fprintf(c.stdout, "\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func (c *cli) info(format string, args ...any) {
	fmt.Fprintf(c.stdout, "  %s\n", fmt.Sprintf(format, args...))
}
