package grid

import "fmt"

// Item is one record of the grid: a mapping of field name to value.
// Items are identified by position, never by reference equality.
type Item map[string]any

// String returns the field formatted with fmt, or "" when absent.
func (it Item) String(field string) string {
	v, ok := it[field]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Bool returns the field as a bool. Non-bool values are false.
func (it Item) Bool(field string) bool {
	b, _ := it[field].(bool)
	return b
}

// Clone returns a shallow copy of the item.
func (it Item) Clone() Item {
	if it == nil {
		return nil
	}
	out := make(Item, len(it))
	for k, v := range it {
		out[k] = v
	}
	return out
}
