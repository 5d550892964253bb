// Package datasource supplies grid items from files and SQLite, and sorts
// them for grid.ApplySortResult.
//
// Every provider implements grid.Source, so a grid can be filled with
//
//	err := g.Load(ctx, datasource.File("tasks.yaml"))
package datasource
