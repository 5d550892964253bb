// Package config loads vgrid project configuration.
//
// A project has a vgrid.json at its root and one or more grid definitions in
// YAML.
//
// # vgrid.json
//
//	{
//	  "name": "users",
//	  "grid": "grids/users.yaml",
//	  "server": {"addr": ":8080", "sessionTTL": "1m"},
//	  "data": {"file": "data/users.yaml"},
//	  "export": {"dir": "exports", "format": "page"},
//	  "layout": {"containerHeight": 600, "headerHeight": 40},
//	  "logLevel": "info"
//	}
//
// Relative paths are resolved against the directory of vgrid.json.
//
// # Grid definitions
//
//	name: users
//	rowHeader: true
//	sort: -name
//	columns:
//	  - kind: text
//	    field: name
//	    label: Name
//	    sortable: true
//	  - kind: checkbox
//	    field: done
package config
