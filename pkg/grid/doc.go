// Package grid renders large homogeneous collections with a fixed set of live
// column templates.
//
// A Grid compiles its column definitions once into a row skeleton: a single
// <tr> whose cells are rendered by one ColumnTemplate per column, all reading
// the current item through a shared RowContext. Materializing a row binds the
// RowContext to an item, re-renders the skeleton through the host runtime and
// deep-clones the result into a detached VirtualRow. The bind, render and
// clone steps run under a lock and never suspend; a second bind before the
// clone completes is rejected with ErrRowContextLocked.
//
// Events are not handled per row. AttachDelegation installs one capturing
// listener per event type on the <tbody>; on dispatch the grid walks from the
// event target up to the owning row, collects the actions exposed along the
// way (innermost first), rebinds the RowContext to that row's item and runs
// them. When an action mutates state through the RowContext only that row is
// re-materialized and swapped in place.
//
//	g, err := grid.New(grid.Config{
//	    Columns: []grid.ColumnDef{
//	        {Key: "name", Label: "Name", Template: columns.Text("name")},
//	        {Key: "done", Label: "Done", Template: columns.Checkbox("done"),
//	            Actions: columns.ToggleActions("done")},
//	    },
//	})
//	err = g.CreateAll(items)
package grid
