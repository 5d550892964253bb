// Package export writes snapshots of a grid to a storage backend.
//
// A snapshot is the grid rendered as an HTML fragment or page, or its items
// as CSV or JSON. Stores accept a key and a body and return the location the
// snapshot was written to.
//
//	store, _ := export.NewDiskStore("out", 0)
//	exp := export.NewExporter(store)
//	loc, err := exp.Export(ctx, g, export.FormatPage, "users")
//
// S3Store writes to an S3 bucket (or any S3-compatible endpoint) through
// aws-sdk-go-v2.
package export
