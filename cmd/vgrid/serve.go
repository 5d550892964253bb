package main

import (
	"github.com/spf13/cobra"

	"github.com/vango-dev/vgrid/internal/errors"
	"github.com/vango-dev/vgrid/pkg/live"
)

func serveCmd(c *cli) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the grid over HTTP with live updates",
		Long: `Serve the grid. Every page load gets its own grid session; clicks,
sorts and column resizes are sent over a WebSocket and answered with row
patches.

Routes:
  /          full page
  /grid      table fragment
  /ws        session WebSocket
  /healthz   liveness
  /metrics   Prometheus metrics

Examples:
  vgrid serve
  vgrid serve --addr 127.0.0.1:9000`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProject(cmd.Context(), c.project)
			if err != nil {
				return err
			}
			defer p.Close()

			if addr != "" {
				p.cfg.Server.Addr = addr
				if err := p.cfg.Validate(); err != nil {
					return err
				}
			}
			ttl, _ := p.cfg.SessionTTL()
			logger := c.logger(p.cfg.LogLevel)

			srv, err := live.New(live.Config{
				Grid:        p.gridCfg,
				Source:      p.source,
				SortBy:      p.def.Sort,
				Layout:      p.cfg.FixedHeaderLayout(),
				Title:       p.cfg.Server.Title,
				StyleSheets: p.cfg.Server.StyleSheets,
				Logger:      logger,
				SessionTTL:  ttl,
				MaxSessions: p.cfg.Server.MaxSessions,
			})
			if err != nil {
				return errors.New("E140").Wrap(err)
			}

			c.success("Serving %s on http://%s", p.def.Name, displayAddr(p.cfg.Server.Addr))
			if err := srv.Run(cmd.Context(), p.cfg.Server.Addr); err != nil {
				return errors.New("E140").Wrap(err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address (default from vgrid.json)")

	return cmd
}

// displayAddr fills in localhost for addresses without a host.
func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}
