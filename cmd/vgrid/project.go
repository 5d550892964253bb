package main

import (
	"context"
	stderrors "errors"
	"log/slog"

	"github.com/vango-dev/vgrid/internal/config"
	"github.com/vango-dev/vgrid/internal/errors"
	"github.com/vango-dev/vgrid/pkg/datasource"
	"github.com/vango-dev/vgrid/pkg/grid"
)

type projectFlags struct {
	configPath string
	gridPath   string
	dataPath   string
	sqlitePath string
	query      string
}

// project is a loaded configuration, grid definition and item source.
type project struct {
	cfg     *config.Config
	def     *config.GridDef
	gridCfg grid.Config
	source  grid.Source
	sqlite  *datasource.SQLite
}

// loadProject resolves the configuration and the flags that override it.
// Without --config the nearest vgrid.json is used; when there is none, the
// --grid flag alone is enough.
func loadProject(ctx context.Context, f projectFlags) (*project, error) {
	var (
		cfg *config.Config
		err error
	)
	if f.configPath != "" {
		cfg, err = config.LoadFile(f.configPath)
	} else {
		cfg, err = config.LoadFromWorkingDir()
		if err != nil && f.gridPath != "" && code(err) == "E101" {
			cfg, err = config.New(), nil
		}
	}
	if err != nil {
		return nil, err
	}

	gridPath := f.gridPath
	if gridPath == "" {
		gridPath = cfg.Resolve(cfg.Grid)
	}
	if gridPath == "" {
		return nil, errors.New("E110").
			WithSuggestion(`Set "grid" in vgrid.json or pass --grid`)
	}
	def, err := config.LoadGrid(gridPath)
	if err != nil {
		return nil, err
	}
	gridCfg, err := def.GridConfig()
	if err != nil {
		return nil, err
	}

	p := &project{cfg: cfg, def: def, gridCfg: gridCfg}
	if err := p.openSource(ctx, f); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *project) openSource(ctx context.Context, f projectFlags) error {
	switch {
	case f.sqlitePath != "":
		return p.openSQLite(ctx, datasource.SQLiteConfig{Path: f.sqlitePath, Query: f.query})
	case f.dataPath != "":
		p.source = datasource.File(f.dataPath)
		return nil
	case p.cfg.Data.SQLite != nil:
		sc := p.cfg.Data.SQLite
		path := sc.Path
		if path != ":memory:" {
			path = p.cfg.Resolve(path)
		}
		return p.openSQLite(ctx, datasource.SQLiteConfig{Path: path, Query: sc.Query, BoolColumns: sc.BoolColumns})
	case p.cfg.Data.File != "":
		p.source = datasource.File(p.cfg.Resolve(p.cfg.Data.File))
		return nil
	}
	return errors.New("E120").
		WithSuggestion(`Set "data" in vgrid.json or pass --data/--sqlite`)
}

func (p *project) openSQLite(ctx context.Context, cfg datasource.SQLiteConfig) error {
	db, err := datasource.OpenSQLite(ctx, cfg)
	if err != nil {
		return errors.New("E123").Wrap(err)
	}
	p.sqlite = db
	p.source = db
	return nil
}

// Close releases the item source.
func (p *project) Close() error {
	if p.sqlite != nil {
		return p.sqlite.Close()
	}
	return nil
}

// newGrid builds a loaded, sorted grid for one-shot commands.
func (p *project) newGrid(ctx context.Context, logger *slog.Logger, opts ...grid.Option) (*grid.Grid, error) {
	opts = append([]grid.Option{grid.WithLogger(logger)}, opts...)
	g, err := grid.New(p.gridCfg, opts...)
	if err != nil {
		return nil, errors.New("E111").Wrap(err)
	}
	if err := g.Load(ctx, p.source); err != nil {
		g.Destroy()
		return nil, loadError(err)
	}
	if p.def.Sort != "" {
		if err := g.ApplySortResult(datasource.SortItems(g.Items(), p.def.Sort)); err != nil {
			g.Destroy()
			return nil, errors.New("E114").Wrap(err)
		}
	}
	g.UpdateFixedHeader(p.cfg.FixedHeaderLayout())
	return g, nil
}

func loadError(err error) error {
	if stderrors.Is(err, datasource.ErrUnsupportedFormat) {
		return errors.New("E121").Wrap(err).
			WithSuggestion("Item files must end in .json, .yaml or .yml")
	}
	var te *grid.TemplateError
	if stderrors.As(err, &te) {
		return errors.New("E115").Wrap(err)
	}
	return errors.New("E122").Wrap(err)
}

func code(err error) string {
	var ve *errors.VgridError
	if stderrors.As(err, &ve) {
		return ve.Code
	}
	return ""
}
