// Package refs tracks the scene files a top-level operation pulls in.
//
// Open and import remember a single pending path. Reference loads can nest
// (a referenced scene loading its own references), so each reference kind
// keeps a stack of pending loads and every Before is paired with the most
// recent unmatched Before of the same kind. References that finish with an
// infection stay in the Registry until the next open or import so they can
// be listed to the user in one dialog.
package refs

import (
	"fmt"

	"github.com/hannesdelbeke/maya-security-tools/internal/types"
)

// Registry is an ordered set of reference paths.
type Registry struct {
	paths []string
}

// Add appends path unless it is already present. It reports whether the
// path was added.
func (r *Registry) Add(path string) bool {
	if r.Contains(path) {
		return false
	}
	r.paths = append(r.paths, path)
	return true
}

// Remove drops path, preserving the order of the remaining paths.
func (r *Registry) Remove(path string) bool {
	for i, p := range r.paths {
		if p == path {
			r.paths = append(r.paths[:i], r.paths[i+1:]...)
			return true
		}
	}
	return false
}

// Contains reports whether path is registered.
func (r *Registry) Contains(path string) bool {
	for _, p := range r.paths {
		if p == path {
			return true
		}
	}
	return false
}

// Paths returns the registered paths in insertion order.
func (r *Registry) Paths() []string {
	return append([]string(nil), r.paths...)
}

// Len returns the number of registered paths.
func (r *Registry) Len() int { return len(r.paths) }

// Clear empties the registry.
func (r *Registry) Clear() { r.paths = r.paths[:0] }

// OpID identifies one Before call. Ids increase monotonically.
type OpID uint64

type pending struct {
	id   OpID
	path string
}

// Tracker pairs before and after file events.
type Tracker struct {
	Registry Registry

	next    OpID
	scalar  map[types.OperationKind]string
	stacks  map[types.OperationKind][]pending
	unknown []string
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		scalar: map[types.OperationKind]string{},
		stacks: map[types.OperationKind][]pending{},
	}
}

// Before records the start of a file event. Open and import start a fresh
// top-level operation and clear the registry; reference kinds push onto
// their stack and register the path.
func (t *Tracker) Before(kind types.OperationKind, path string) OpID {
	t.next++
	id := t.next
	if kind.IsReference() {
		t.stacks[kind] = append(t.stacks[kind], pending{id: id, path: path})
		t.Registry.Add(path)
		return id
	}
	t.Registry.Clear()
	t.scalar[kind] = path
	return id
}

// After closes the most recent pending event of kind and returns its path.
// A reference that finished clean is removed from the registry. ok is false
// when no Before was recorded for kind.
func (t *Tracker) After(kind types.OperationKind, infected bool) (path string, ok bool) {
	if !kind.IsReference() {
		path, ok = t.scalar[kind]
		return path, ok
	}
	stack := t.stacks[kind]
	if len(stack) == 0 {
		return "", false
	}
	top := stack[len(stack)-1]
	t.stacks[kind] = stack[:len(stack)-1]
	if !infected && !t.Registry.Remove(top.path) {
		t.unknown = append(t.unknown, top.path)
	}
	return top.path, true
}

// Peek returns the path the next After of kind would close.
func (t *Tracker) Peek(kind types.OperationKind) (string, bool) {
	if !kind.IsReference() {
		p, ok := t.scalar[kind]
		return p, ok
	}
	stack := t.stacks[kind]
	if len(stack) == 0 {
		return "", false
	}
	return stack[len(stack)-1].path, true
}

// Depth returns the number of in-flight reference loads of kind.
func (t *Tracker) Depth(kind types.OperationKind) int { return len(t.stacks[kind]) }

// Unresolved returns the infected references of the current top-level
// operation in load order.
func (t *Tracker) Unresolved() []string { return t.Registry.Paths() }

// Stray returns paths that finished clean but were no longer registered,
// as happens when a scene is referenced again inside its own load.
func (t *Tracker) Stray() []string { return append([]string(nil), t.unknown...) }

func (id OpID) String() string { return fmt.Sprintf("op#%d", uint64(id)) }
