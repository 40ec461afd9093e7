package dom

import (
	"context"
	"sync"

	"golang.org/x/net/html"
)

// Event types dispatched through a Registry.
const (
	EventClick  = "click"
	EventChange = "change"
	EventLoad   = "load"
)

// Event is a browser event delivered to an element.
type Event struct {
	Type   string
	Target *html.Node
	// Value carries the control value for change events.
	Value string
}

// Handler reacts to an event.
type Handler func(ctx context.Context, ev Event)

// Listener is the handle returned by Registry.Add. Removal matches on this
// pointer, so the same handler registered twice yields two listeners.
type Listener struct {
	Type    string
	handler Handler
}

// Registry maps element identity to the listeners bound to it.
type Registry struct {
	mu       sync.Mutex
	bindings map[*html.Node][]*Listener
}

func NewRegistry() *Registry {
	return &Registry{bindings: make(map[*html.Node][]*Listener)}
}

// Add binds handler to events of type typ on node.
func (r *Registry) Add(node *html.Node, typ string, handler Handler) *Listener {
	l := &Listener{Type: typ, handler: handler}
	r.mu.Lock()
	r.bindings[node] = append(r.bindings[node], l)
	r.mu.Unlock()
	return l
}

// Remove unbinds l from node and reports whether it was bound.
func (r *Registry) Remove(node *html.Node, l *Listener) bool {
	if l == nil {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	listeners := r.bindings[node]
	for i, bound := range listeners {
		if bound == l {
			listeners = append(listeners[:i], listeners[i+1:]...)
			if len(listeners) == 0 {
				delete(r.bindings, node)
			} else {
				r.bindings[node] = listeners
			}
			return true
		}
	}
	return false
}

// Count returns how many listeners of type typ are bound to node.
func (r *Registry) Count(node *html.Node, typ string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, l := range r.bindings[node] {
		if l.Type == typ {
			n++
		}
	}
	return n
}

// Len returns the total number of bound listeners.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, listeners := range r.bindings {
		n += len(listeners)
	}
	return n
}

// Dispatch invokes every listener of ev.Type bound to node, in
// registration order, and returns how many ran. Handlers run without the
// registry lock held so they may add or remove listeners.
func (r *Registry) Dispatch(ctx context.Context, node *html.Node, ev Event) int {
	if ev.Target == nil {
		ev.Target = node
	}

	r.mu.Lock()
	var matched []*Listener
	for _, l := range r.bindings[node] {
		if l.Type == ev.Type {
			matched = append(matched, l)
		}
	}
	r.mu.Unlock()

	for _, l := range matched {
		l.handler(ctx, ev)
	}
	return len(matched)
}
