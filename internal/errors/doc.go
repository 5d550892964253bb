// Package errors provides coded, actionable errors for the vgrid CLI and
// configuration loaders.
//
// Each error has a code (e.g., "E101") that maps to a category, a short
// message and a longer explanation. Call sites add details, a source
// location and a suggestion:
//
//	err := errors.New("E111").
//	    WithLocation("grids/users.yaml", 4, 0).
//	    WithSuggestion("Indent column entries under 'columns:'")
//
//	fmt.Print(err.Format())
//	// ERROR E111: Invalid grid definition
//	//
//	//   grids/users.yaml:4
//	//
//	//        3 │ columns:
//	//   →    4 │ - kind text
//	//        5 │   field: name
//	//
//	//   Hint: Indent column entries under 'columns:'
//
// Library packages (pkg/...) return plain sentinel errors; the CLI converts
// them with FromError at the boundary.
package errors
