package vdom

import (
	"fmt"
	"sync"
)

// HIDGenerator generates unique hydration IDs for elements.
type HIDGenerator struct {
	prefix  string
	counter uint32
	mu      sync.Mutex
}

// NewHIDGenerator creates a new HIDGenerator producing "h1", "h2", ...
func NewHIDGenerator() *HIDGenerator {
	return &HIDGenerator{prefix: "h"}
}

// NewPrefixedHIDGenerator creates a generator whose IDs start with prefix.
// Separate documents sharing one client use distinct prefixes.
func NewPrefixedHIDGenerator(prefix string) *HIDGenerator {
	return &HIDGenerator{prefix: prefix}
}

// Next returns the next hydration ID.
func (g *HIDGenerator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.counter++
	return fmt.Sprintf("%s%d", g.prefix, g.counter)
}

// Reset resets the counter to 0.
func (g *HIDGenerator) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.counter = 0
}

// Current returns the current counter value without incrementing.
func (g *HIDGenerator) Current() uint32 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.counter
}

// AssignAllHIDs assigns a fresh HID to every element in the tree.
func AssignAllHIDs(node *VNode, gen *HIDGenerator) {
	Walk(node, func(n *VNode) bool {
		if n.Kind == KindElement {
			n.HID = gen.Next()
		}
		return true
	})
}

// CollectHIDs returns a map of HID to VNode for all nodes with HIDs.
func CollectHIDs(node *VNode) map[string]*VNode {
	result := make(map[string]*VNode)
	Walk(node, func(n *VNode) bool {
		if n.HID != "" {
			result[n.HID] = n
		}
		return true
	})
	return result
}

// FindByHID finds a node by its HID in the tree.
func FindByHID(node *VNode, hid string) *VNode {
	if node == nil || hid == "" {
		return nil
	}
	if node.HID == hid {
		return node
	}
	for _, child := range node.Children {
		if found := FindByHID(child, hid); found != nil {
			return found
		}
	}
	return nil
}

// ClearHIDs removes all HIDs from the tree.
func ClearHIDs(node *VNode) {
	Walk(node, func(n *VNode) bool {
		n.HID = ""
		return true
	})
}
