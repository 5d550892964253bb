package errors

import "sort"

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// Configuration (E101-E109)
	"E101": {
		Category: CategoryConfig,
		Message:  "Configuration file not found",
		Detail:   "vgrid looks for vgrid.json in the working directory and its parents.",
	},
	"E102": {
		Category: CategoryConfig,
		Message:  "Invalid configuration file",
		Detail:   "vgrid.json could not be parsed as JSON.",
	},
	"E103": {
		Category: CategoryConfig,
		Message:  "Invalid server address",
		Detail:   "The server address must be host:port with a port between 0 and 65535.",
	},
	"E104": {
		Category: CategoryConfig,
		Message:  "Invalid configuration value",
	},

	// Grid definitions (E110-E119)
	"E110": {
		Category: CategoryGrid,
		Message:  "Grid definition not found",
		Detail:   "The grid definition file named in vgrid.json does not exist.",
	},
	"E111": {
		Category: CategoryGrid,
		Message:  "Invalid grid definition",
		Detail:   "The grid definition is not valid YAML or does not match the expected shape.",
	},
	"E112": {
		Category: CategoryGrid,
		Message:  "Unknown column kind",
		Detail:   "Column kinds are text, number, index, checkbox, link and html.",
	},
	"E113": {
		Category: CategoryGrid,
		Message:  "Grid has no columns",
		Detail:   "A grid needs at least one column definition.",
	},
	"E114": {
		Category: CategoryGrid,
		Message:  "Invalid sort",
		Detail:   "The sort names a column that is not defined or not sortable.",
	},
	"E115": {
		Category: CategoryGrid,
		Message:  "Column template failed",
		Detail:   "A column template failed while rendering a row. No rows were changed.",
	},

	// Data sources (E120-E129)
	"E120": {
		Category: CategoryData,
		Message:  "No data source configured",
		Detail:   "Set data.file or data.sqlite in vgrid.json, or pass --data.",
	},
	"E121": {
		Category: CategoryData,
		Message:  "Unsupported data file format",
		Detail:   "Item files must be .json, .yaml or .yml.",
	},
	"E122": {
		Category: CategoryData,
		Message:  "Failed to load items",
	},
	"E123": {
		Category: CategoryData,
		Message:  "Failed to open SQLite database",
	},

	// Export (E130-E139)
	"E130": {
		Category: CategoryExport,
		Message:  "Invalid export target",
		Detail:   "Export targets are a directory path or s3://bucket/prefix.",
	},
	"E131": {
		Category: CategoryExport,
		Message:  "Export failed",
	},
	"E132": {
		Category: CategoryExport,
		Message:  "Unknown export format",
		Detail:   "Formats are html, page, csv and json.",
	},

	// Server (E140-E149)
	"E140": {
		Category: CategoryServer,
		Message:  "Server failed",
	},

	// CLI (E150-E159)
	"E150": {
		Category: CategoryCLI,
		Message:  "Invalid arguments",
	},
}

// GetAllCodes returns all registered error codes in order.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}
