package main

import (
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/vango-dev/vgrid/internal/config"
	"github.com/vango-dev/vgrid/internal/errors"
	"github.com/vango-dev/vgrid/pkg/export"
)

func exportCmd(c *cli) *cobra.Command {
	var (
		format string
		target string
		prune  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "export [name]",
		Short: "Export a grid snapshot to disk or S3",
		Long: `Export renders the grid once and stores the snapshot.

The target is a directory or an s3://bucket/prefix URL. S3 credentials are
read from AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY and AWS_SESSION_TOKEN;
the region from AWS_REGION when vgrid.json sets none.

Formats: html (table only), page (full document), csv, json.

--prune only deletes files named like the snapshots export writes
(<grid>-<UTC timestamp>.<ext>); other files and dot-directories under the
target are kept.

Examples:
  vgrid export
  vgrid export users --format csv --to ./out
  vgrid export --to s3://snapshots/grids/ --prune 168h`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := loadProject(ctx, c.project)
			if err != nil {
				return err
			}
			defer p.Close()

			if format == "" {
				format = p.cfg.Export.Format
			}
			f, err := export.ParseFormat(format)
			if err != nil {
				return errors.New("E132").Wrap(err).
					WithSuggestion("Use one of: html, page, csv, json")
			}

			store, err := openStore(target, p.cfg)
			if err != nil {
				return err
			}

			logger := c.logger(p.cfg.LogLevel)
			g, err := p.newGrid(ctx, logger)
			if err != nil {
				return err
			}
			defer g.Destroy()

			name := export.SnapshotName(p.def.Name, time.Now())
			if len(args) == 1 {
				name = args[0]
			}

			ex := export.NewExporter(store).WithLogger(logger)
			ex.Title = p.cfg.Server.Title
			ex.StyleSheets = p.cfg.Server.StyleSheets
			loc, err := ex.Export(ctx, g, f, name)
			if err != nil {
				return errors.New("E131").Wrap(err)
			}
			c.success("Exported %d rows to %s", g.Len(), loc)

			if prune > 0 {
				n, err := store.Prune(ctx, prune)
				if err != nil {
					return errors.New("E131").Wrap(err).WithDetail("Pruning old snapshots failed")
				}
				c.info("Pruned %d snapshots older than %s", n, prune)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "Snapshot format (default from vgrid.json)")
	cmd.Flags().StringVarP(&target, "to", "t", "", "Directory or s3://bucket/prefix (default from vgrid.json)")
	cmd.Flags().DurationVar(&prune, "prune", 0, "Delete timestamped snapshots older than this after exporting")

	return cmd
}

// openStore builds the store for target, falling back to the configured S3
// bucket and then the export directory.
func openStore(target string, cfg *config.Config) (export.Store, error) {
	if target == "" {
		if s := cfg.Export.S3; s != nil {
			return newS3Store(s.Bucket, s.Prefix, cfg), nil
		}
		target = cfg.Resolve(cfg.Export.Dir)
	}

	if strings.HasPrefix(target, "s3://") {
		u, err := url.Parse(target)
		if err != nil || u.Host == "" {
			return nil, errors.New("E130").
				WithDetail("Cannot parse " + target).
				WithSuggestion("Use s3://bucket or s3://bucket/prefix/")
		}
		return newS3Store(u.Host, strings.TrimPrefix(u.Path, "/"), cfg), nil
	}

	store, err := export.NewDiskStore(target, cfg.Export.MaxSize)
	if err != nil {
		return nil, errors.New("E130").Wrap(err)
	}
	return store, nil
}

func newS3Store(bucket, prefix string, cfg *config.Config) *export.S3Store {
	sc := export.S3Config{
		Region:          os.Getenv("AWS_REGION"),
		AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
		SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
	}
	if s := cfg.Export.S3; s != nil {
		if s.Region != "" {
			sc.Region = s.Region
		}
		sc.Endpoint = s.Endpoint
		sc.UsePathStyle = s.UsePathStyle
	}
	return export.NewS3Store(export.NewS3Client(sc), bucket, prefix, cfg.Export.MaxSize)
}
