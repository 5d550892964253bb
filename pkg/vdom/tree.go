package vdom

import "errors"

// ErrNotChild is returned when a reference node is not a child of the receiver.
var ErrNotChild = errors.New("vdom: node is not a child")

// ErrHierarchy is returned when an insertion would make a node its own ancestor.
var ErrHierarchy = errors.New("vdom: hierarchy request")

// FirstChild returns the first child, or nil.
func (v *VNode) FirstChild() *VNode {
	if v == nil || len(v.Children) == 0 {
		return nil
	}
	return v.Children[0]
}

// LastChild returns the last child, or nil.
func (v *VNode) LastChild() *VNode {
	if v == nil || len(v.Children) == 0 {
		return nil
	}
	return v.Children[len(v.Children)-1]
}

// IndexOf returns the position of child among v's children, or -1.
func (v *VNode) IndexOf(child *VNode) int {
	if v == nil || child == nil || child.parent != v {
		return -1
	}
	for i, c := range v.Children {
		if c == child {
			return i
		}
	}
	return -1
}

// Contains reports whether other is v or a descendant of v.
func (v *VNode) Contains(other *VNode) bool {
	for n := other; n != nil; n = n.parent {
		if n == v {
			return true
		}
	}
	return false
}

// Root returns the topmost ancestor of v.
func (v *VNode) Root() *VNode {
	n := v
	for n != nil && n.parent != nil {
		n = n.parent
	}
	return n
}

// AppendChild appends child to v, detaching it from its previous parent.
// Appending a fragment moves the fragment's children instead and leaves the
// fragment empty.
func (v *VNode) AppendChild(child *VNode) error {
	return v.insertAt(len(v.Children), child)
}

// InsertBefore inserts child before ref. A nil ref appends.
func (v *VNode) InsertBefore(child, ref *VNode) error {
	if ref == nil {
		return v.AppendChild(child)
	}
	idx := v.IndexOf(ref)
	if idx < 0 {
		return ErrNotChild
	}
	return v.insertAt(idx, child)
}

// ReplaceChild swaps old for next in place. old is detached and returned.
func (v *VNode) ReplaceChild(next, old *VNode) (*VNode, error) {
	idx := v.IndexOf(old)
	if idx < 0 || next == nil {
		return nil, ErrNotChild
	}
	if next == old {
		return old, nil
	}
	if next.Contains(v) {
		return nil, ErrHierarchy
	}
	next.Remove()
	// Removing next may have shifted old when both share the parent.
	idx = v.IndexOf(old)
	old.parent = nil
	next.parent = v
	v.Children[idx] = next
	return old, nil
}

// RemoveChild detaches child from v.
func (v *VNode) RemoveChild(child *VNode) error {
	idx := v.IndexOf(child)
	if idx < 0 {
		return ErrNotChild
	}
	v.Children = append(v.Children[:idx], v.Children[idx+1:]...)
	child.parent = nil
	return nil
}

// Remove detaches v from its parent, if any.
func (v *VNode) Remove() {
	if v == nil || v.parent == nil {
		return
	}
	_ = v.parent.RemoveChild(v)
}

// ReplaceChildren removes every child of v and appends the given nodes.
func (v *VNode) ReplaceChildren(children ...*VNode) error {
	for _, c := range v.Children {
		c.parent = nil
	}
	clear(v.Children)
	v.Children = v.Children[:0]
	for _, c := range children {
		if c == nil {
			continue
		}
		if err := v.AppendChild(c); err != nil {
			return err
		}
	}
	return nil
}

func (v *VNode) insertAt(idx int, child *VNode) error {
	if child == nil {
		return nil
	}
	if child.Kind == KindFragment {
		moved := child.Children
		child.Children = nil
		for _, c := range moved {
			c.parent = nil
		}
		for i, c := range moved {
			if err := v.insertAt(idx+i, c); err != nil {
				return err
			}
		}
		return nil
	}
	if child.Contains(v) {
		return ErrHierarchy
	}
	if child.parent != nil {
		if child.parent == v && v.IndexOf(child) < idx {
			idx--
		}
		child.Remove()
	}
	child.parent = v
	v.Children = append(v.Children, nil)
	copy(v.Children[idx+1:], v.Children[idx:])
	v.Children[idx] = child
	return nil
}

// Clone returns a detached copy of v. With deep set, descendants are cloned
// too. Props are copied so the clone never aliases the original's attribute
// map. Event listeners and hydration IDs are not carried over.
func (v *VNode) Clone(deep bool) *VNode {
	if v == nil {
		return nil
	}
	c := &VNode{
		Kind: v.Kind,
		Tag:  v.Tag,
		Key:  v.Key,
		Text: v.Text,
	}
	if v.Props != nil {
		c.Props = make(Props, len(v.Props))
		for k, val := range v.Props {
			c.Props[k] = val
		}
	}
	if deep && len(v.Children) > 0 {
		c.Children = make([]*VNode, len(v.Children))
		for i, child := range v.Children {
			cc := child.Clone(true)
			cc.parent = c
			c.Children[i] = cc
		}
	}
	return c
}

// Walk visits v and its descendants depth-first. Returning false from fn
// skips the node's children.
func Walk(v *VNode, fn func(*VNode) bool) {
	if v == nil {
		return
	}
	if !fn(v) {
		return
	}
	for _, child := range v.Children {
		Walk(child, fn)
	}
}
