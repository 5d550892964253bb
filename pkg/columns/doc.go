// Package columns provides ready-made column templates and actions for
// pkg/grid, and builds column definitions from declarative specs.
package columns
