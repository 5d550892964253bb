package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/vgrid/internal/errors"
	"github.com/vango-dev/vgrid/pkg/render"
)

func renderCmd(c *cli) *cobra.Command {
	var (
		page   bool
		pretty bool
		hids   bool
		output string
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the grid to HTML",
		Long: `Render the grid once and write the table HTML.

Examples:
  vgrid render
  vgrid render --page -o users.html
  vgrid render --grid users.yaml --data users.json --pretty`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProject(cmd.Context(), c.project)
			if err != nil {
				return err
			}
			defer p.Close()

			logger := c.logger(p.cfg.LogLevel)
			g, err := p.newGrid(cmd.Context(), logger)
			if err != nil {
				return err
			}
			defer g.Destroy()

			var w io.Writer = c.stdout
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return errors.New("E150").Wrap(err)
				}
				defer f.Close()
				w = f
			}

			r := render.New(render.Config{Pretty: pretty, OmitHIDs: !hids})
			if page {
				err = r.RenderPage(w, render.PageData{
					Title:       p.cfg.Server.Title,
					StyleSheets: p.cfg.Server.StyleSheets,
					Body:        g.Table(),
				})
			} else {
				err = r.RenderToWriter(w, g.Table())
			}
			if err != nil {
				return errors.New("E131").Wrap(err)
			}
			logger.Debug("rendered grid", "rows", g.Len(), "output", output)
			return nil
		},
	}

	cmd.Flags().BoolVar(&page, "page", false, "Render a complete HTML document")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "Indent the output")
	cmd.Flags().BoolVar(&hids, "hids", false, "Keep data-hid attributes")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to a file instead of stdout")

	return cmd
}
