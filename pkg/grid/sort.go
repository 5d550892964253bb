package grid

import (
	"fmt"
	"strings"

	"github.com/vango-dev/vgrid/pkg/vango"
)

// Sort directions as written to aria-sort.
const (
	SortAscending  = "ascending"
	SortDescending = "descending"
)

// SortResult is the outcome of an external sort: either SortItems or
// SortState.
type SortResult interface {
	sortResult()
}

// SortItems is a full, already ordered item sequence. Applying it clears the
// header sort indicator.
type SortItems []Item

// SortState is an ordered item sequence with the column and direction it was
// sorted by.
type SortState struct {
	Items         []Item
	SortColumnKey string
	Direction     string
}

func (SortItems) sortResult() {}
func (SortState) sortResult() {}

// SortBy encodes the state as a sort-by string ("name" or "-name").
func (s SortState) SortBy() string {
	if s.SortColumnKey == "" {
		return ""
	}
	if s.Direction == SortDescending {
		return "-" + s.SortColumnKey
	}
	return s.SortColumnKey
}

// ParseSortBy decodes a sort-by string. A leading "-" selects descending
// order; an empty string yields no sort.
func ParseSortBy(sortBy string) (key, direction string) {
	sortBy = strings.TrimSpace(sortBy)
	switch {
	case sortBy == "":
		return "", ""
	case strings.HasPrefix(sortBy, "-"):
		return sortBy[1:], SortDescending
	default:
		return sortBy, SortAscending
	}
}

// ApplySortResult rebuilds every row from the sorted items and updates the
// header indicator. Malformed results are rejected before any row changes.
func (g *Grid) ApplySortResult(result SortResult) error {
	if !g.valid() {
		return nil
	}
	switch r := result.(type) {
	case SortItems:
		if err := g.CreateAll(r); err != nil {
			return err
		}
		g.setSort("", "")
		return nil
	case *SortState:
		if r == nil {
			return fmt.Errorf("%w: nil sort state", ErrMalformedSortResult)
		}
		return g.applySortState(*r)
	case SortState:
		return g.applySortState(r)
	default:
		return fmt.Errorf("%w: %T", ErrMalformedSortResult, result)
	}
}

func (g *Grid) applySortState(s SortState) error {
	switch s.Direction {
	case "", SortAscending, SortDescending:
	default:
		return fmt.Errorf("%w: direction %q", ErrMalformedSortResult, s.Direction)
	}
	if s.SortColumnKey != "" && g.columnIndex(s.SortColumnKey) < 0 {
		return fmt.Errorf("%w: unknown column %q", ErrMalformedSortResult, s.SortColumnKey)
	}
	if s.SortColumnKey == "" && s.Direction != "" {
		return fmt.Errorf("%w: direction without column", ErrMalformedSortResult)
	}
	if err := g.CreateAll(s.Items); err != nil {
		return err
	}
	g.setSort(s.SortColumnKey, s.Direction)
	return nil
}

// sortSpec is the value held by the grid's sort signal.
type sortSpec struct {
	Key       string
	Direction string
}

// sortIndicator subscribes to the sort signal and keeps the header's
// aria-sort attributes in step with it.
type sortIndicator struct {
	id uint64
	g  *Grid
}

func newSortIndicator(g *Grid) *sortIndicator {
	return &sortIndicator{id: vango.NextID(), g: g}
}

func (s *sortIndicator) ID() uint64 { return s.id }

// MarkDirty implements vango.Listener. Inside a Batch it runs once, when the
// outermost batch completes.
func (s *sortIndicator) MarkDirty() {
	g := s.g
	if g.destroyed {
		return
	}
	spec := g.applySortIndicators()
	if g.cfg.Hooks.OnSortChange != nil {
		g.cfg.Hooks.OnSortChange(spec.Key, spec.Direction)
	}
}

// SortState returns the current sort column and direction.
func (g *Grid) SortState() (key, direction string) {
	spec := g.sort.Peek()
	return spec.Key, spec.Direction
}

func (g *Grid) setSort(key, direction string) {
	if key != "" && direction == "" {
		direction = SortAscending
	}
	g.sort.Set(sortSpec{Key: key, Direction: direction})
}

// applySortIndicators writes the current sort to the header cells and
// subscribes the indicator to later changes.
func (g *Grid) applySortIndicators() sortSpec {
	var spec sortSpec
	vango.WithListener(g.indicator, func() { spec = g.sort.Get() })
	for i, def := range g.columns {
		th := g.headerCell(i)
		if th == nil {
			continue
		}
		if spec.Key != "" && def.Key == spec.Key {
			th.SetAttr("aria-sort", spec.Direction)
			th.SetAttr("data-direction", spec.Direction)
			continue
		}
		th.RemoveAttr("aria-sort")
		th.RemoveAttr("data-direction")
	}
	return spec
}

func (g *Grid) columnIndex(key string) int {
	for i, def := range g.columns {
		if def.Key == key {
			return i
		}
	}
	return -1
}
