package host

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/vango-dev/vgrid/pkg/vango"
)

// Sentinel errors for runtime misuse.
var (
	// ErrInvalidated is returned by operations on an invalidated runtime.
	ErrInvalidated = errors.New("host: runtime invalidated")

	// ErrRenderInProgress is returned when a scope is rendered re-entrantly.
	ErrRenderInProgress = errors.New("host: render already in progress for scope")
)

// Component is anything the runtime can re-render in place.
type Component interface {
	vango.Listener

	// Render re-renders the component against its current state.
	Render() error
}

type mounted struct {
	comp  Component
	scope string
	dirty bool
}

// Runtime is the host component runtime. It is safe for concurrent use; the
// components it renders are called without the runtime lock held.
type Runtime struct {
	mu         sync.Mutex
	scopes     map[string][]*mounted
	components map[uint64]*mounted
	bindings   map[string]*binding
	rendering  map[string]bool
	valid      atomic.Bool
	logger     *slog.Logger
}

type binding struct {
	dirty bool
	owner uint64
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithLogger sets the runtime logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runtime) {
		if l != nil {
			r.logger = l
		}
	}
}

// New creates a valid, empty runtime.
func New(opts ...Option) *Runtime {
	r := &Runtime{
		scopes:     make(map[string][]*mounted),
		components: make(map[uint64]*mounted),
		bindings:   make(map[string]*binding),
		rendering:  make(map[string]bool),
		logger:     slog.Default(),
	}
	r.valid.Store(true)
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// IsValid reports whether the runtime is still usable.
func (r *Runtime) IsValid() bool {
	return r != nil && r.valid.Load()
}

// Invalidate tears the runtime down. Mounted components are forgotten and
// every later call is a no-op.
func (r *Runtime) Invalidate() {
	if !r.valid.CompareAndSwap(true, false) {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scopes = make(map[string][]*mounted)
	r.components = make(map[uint64]*mounted)
	r.bindings = make(map[string]*binding)
}

// Mount registers c in scope. Mounting an already mounted component moves it.
func (r *Runtime) Mount(scope string, c Component) {
	if !r.IsValid() || c == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.components[c.ID()]; ok {
		r.detachLocked(existing)
	}
	m := &mounted{comp: c, scope: scope}
	r.components[c.ID()] = m
	r.scopes[scope] = append(r.scopes[scope], m)
}

// Unmount removes c from the runtime along with any binding it owns.
func (r *Runtime) Unmount(c Component) {
	if c == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.components[c.ID()]
	if !ok {
		return
	}
	r.detachLocked(m)
	for key, b := range r.bindings {
		if b.owner == c.ID() {
			delete(r.bindings, key)
		}
	}
}

func (r *Runtime) detachLocked(m *mounted) {
	delete(r.components, m.comp.ID())
	list := r.scopes[m.scope]
	for i, existing := range list {
		if existing == m {
			r.scopes[m.scope] = append(list[:i], list[i+1:]...)
			break
		}
	}
	if len(r.scopes[m.scope]) == 0 {
		delete(r.scopes, m.scope)
	}
}

// Mounted returns the number of components mounted in scope.
func (r *Runtime) Mounted(scope string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.scopes[scope])
}

// Schedule marks c dirty so the next render of its scope re-renders it.
func (r *Runtime) Schedule(c Component) {
	if !r.IsValid() || c == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.components[c.ID()]; ok {
		m.dirty = true
	}
}

// IsDirty reports whether c is waiting to be re-rendered.
func (r *Runtime) IsDirty(c Component) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.components[c.ID()]
	return ok && m.dirty
}

// Bind associates a binding key with its owning component. Touching the key
// schedules the owner.
func (r *Runtime) Bind(key string, owner Component) {
	if !r.IsValid() || owner == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bindings[key] = &binding{owner: owner.ID()}
}

// Touch marks the binding dirty and schedules its owner.
func (r *Runtime) Touch(key string) {
	if !r.IsValid() {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bindings[key]
	if !ok {
		return
	}
	b.dirty = true
	if m, ok := r.components[b.owner]; ok {
		m.dirty = true
	}
}

// MarkClean clears the binding's dirty state and unschedules its owner, so a
// render pass started right after does not re-render the owner because of
// this binding.
func (r *Runtime) MarkClean(key string) {
	if !r.IsValid() {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bindings[key]
	if !ok {
		return
	}
	b.dirty = false
	if m, ok := r.components[b.owner]; ok {
		m.dirty = false
	}
}

// IsBindingDirty reports whether the binding has been touched since it was
// last marked clean.
func (r *Runtime) IsBindingDirty(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bindings[key]
	return ok && b.dirty
}

// RenderScoped re-renders the dirty components of scope in mount order.
// Rendering stops at the first error; components not yet rendered stay dirty.
func (r *Runtime) RenderScoped(scope string) error {
	if !r.IsValid() {
		return ErrInvalidated
	}

	r.mu.Lock()
	if r.rendering[scope] {
		r.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrRenderInProgress, scope)
	}
	r.rendering[scope] = true
	list := make([]*mounted, len(r.scopes[scope]))
	copy(list, r.scopes[scope])
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		delete(r.rendering, scope)
		r.mu.Unlock()
	}()

	for _, m := range list {
		r.mu.Lock()
		dirty := m.dirty
		m.dirty = false
		r.mu.Unlock()
		if !dirty {
			continue
		}
		if err := m.comp.Render(); err != nil {
			r.logger.Debug("scoped render failed", "scope", scope, "component", m.comp.ID(), "error", err)
			return err
		}
	}
	return nil
}

// Flush renders every scope that has dirty components.
func (r *Runtime) Flush() error {
	if !r.IsValid() {
		return ErrInvalidated
	}
	r.mu.Lock()
	var scopes []string
	for scope, list := range r.scopes {
		for _, m := range list {
			if m.dirty {
				scopes = append(scopes, scope)
				break
			}
		}
	}
	r.mu.Unlock()

	for _, scope := range scopes {
		if err := r.RenderScoped(scope); err != nil {
			return err
		}
	}
	return nil
}
