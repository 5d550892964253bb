package datasource

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vango-dev/vgrid/pkg/grid"
)

// SortItems returns a sorted copy of items for a sort-by string ("name" or
// "-name"). Missing values sort last in both directions. An empty sortBy
// returns the items in their original order with no sort column.
func SortItems(items []grid.Item, sortBy string) grid.SortState {
	key, dir := grid.ParseSortBy(sortBy)
	out := append([]grid.Item(nil), items...)
	if key == "" {
		return grid.SortState{Items: out}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, aok := out[i][key]
		b, bok := out[j][key]
		aok = aok && a != nil
		bok = bok && b != nil
		switch {
		case !aok || !bok:
			return aok && !bok
		case dir == grid.SortDescending:
			return compare(b, a) < 0
		default:
			return compare(a, b) < 0
		}
	})
	return grid.SortState{Items: out, SortColumnKey: key, Direction: dir}
}

// compare orders numbers numerically, bools false first and everything else
// by case-insensitive text.
func compare(a, b any) int {
	if fa, ok := toFloat(a); ok {
		if fb, ok := toFloat(b); ok {
			switch {
			case fa < fb:
				return -1
			case fa > fb:
				return 1
			}
			return 0
		}
	}
	if ba, ok := a.(bool); ok {
		if bb, ok := b.(bool); ok {
			switch {
			case ba == bb:
				return 0
			case !ba:
				return -1
			}
			return 1
		}
	}
	return strings.Compare(strings.ToLower(fmt.Sprint(a)), strings.ToLower(fmt.Sprint(b)))
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	}
	return 0, false
}
