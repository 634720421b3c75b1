// Package keybind turns key presses into callbacks.
//
// A Dispatcher holds every live listener for the process and is fed each
// tea.KeyMsg. Bind and Add register a listener; the returned Binding can be
// rebound to a new key or callback in place and unbound any number of times.
// A Scope collects bindings that live as long as some piece of UI and
// releases them together on Close. Key names match case-insensitively and
// dispatching only observes a press, so the caller still routes it.
package keybind

import (
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// aliases maps browser-style and spelled-out key names onto the names
// bubbletea reports.
var aliases = map[string]string{
	"escape":     "esc",
	"return":     "enter",
	"space":      " ",
	"spacebar":   " ",
	"del":        "delete",
	"arrowup":    "up",
	"arrowdown":  "down",
	"arrowleft":  "left",
	"arrowright": "right",
}

// Normalize returns the canonical, case-folded form of a key name.
func Normalize(key string) string {
	if key != " " {
		key = strings.ToLower(strings.TrimSpace(key))
	}
	if alias, ok := aliases[key]; ok {
		return alias
	}
	return key
}

// Matches reports whether key names the key in msg, ignoring case.
func Matches(key string, msg tea.KeyMsg) bool {
	return Normalize(key) == Normalize(msg.String())
}

type listener struct {
	key     string
	onMatch func()
}

// Dispatcher is a process-wide source of key presses. Listeners observe
// presses; dispatching never consumes the event.
type Dispatcher struct {
	mu        sync.Mutex
	nextID    uint64
	ids       []uint64
	listeners map[uint64]*listener
}

// NewDispatcher creates a dispatcher with no listeners.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		listeners: make(map[uint64]*listener),
	}
}

// Binding is a single registered listener.
type Binding struct {
	d    *Dispatcher
	id   uint64
	once sync.Once
}

// Add registers onMatch for key and returns its binding.
func (d *Dispatcher) Add(key string, onMatch func()) *Binding {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.nextID++
	id := d.nextID
	d.ids = append(d.ids, id)
	d.listeners[id] = &listener{key: Normalize(key), onMatch: onMatch}
	return &Binding{d: d, id: id}
}

// Bind registers onMatch for key and returns the function that removes it.
func (d *Dispatcher) Bind(key string, onMatch func()) (unbind func()) {
	return d.Add(key, onMatch).Unbind
}

// Len returns the number of live listeners.
func (d *Dispatcher) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.listeners)
}

// Dispatch delivers a key press to every matching listener and returns how
// many were called. Listeners run outside the lock and may bind or unbind.
func (d *Dispatcher) Dispatch(msg tea.KeyMsg) int {
	return d.DispatchKey(msg.String())
}

// DispatchKey is Dispatch for a bare key name.
func (d *Dispatcher) DispatchKey(name string) int {
	name = Normalize(name)

	d.mu.Lock()
	var matched []*listener
	for _, id := range d.ids {
		if l := d.listeners[id]; l.key == name {
			matched = append(matched, l)
		}
	}
	d.mu.Unlock()

	called := 0
	for _, l := range matched {
		// An earlier callback may have replaced or removed this listener.
		if !d.live(l) {
			continue
		}
		l.onMatch()
		called++
	}
	return called
}

func (d *Dispatcher) live(l *listener) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, cur := range d.listeners {
		if cur == l {
			return true
		}
	}
	return false
}

func (d *Dispatcher) remove(id uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.listeners[id]; !ok {
		return
	}
	delete(d.listeners, id)
	for i, cur := range d.ids {
		if cur == id {
			d.ids = append(d.ids[:i], d.ids[i+1:]...)
			break
		}
	}
}

// Rebind swaps the key and callback of a live binding in place. The old
// callback is never called after Rebind returns. Rebinding an unbound
// binding does nothing.
func (b *Binding) Rebind(key string, onMatch func()) {
	b.d.mu.Lock()
	defer b.d.mu.Unlock()

	if _, ok := b.d.listeners[b.id]; !ok {
		return
	}
	b.d.listeners[b.id] = &listener{key: Normalize(key), onMatch: onMatch}
}

// Unbind removes the listener. It is safe to call more than once.
func (b *Binding) Unbind() {
	b.once.Do(func() {
		b.d.remove(b.id)
	})
}

// Key returns the normalized key the binding currently listens for, or ""
// once unbound.
func (b *Binding) Key() string {
	b.d.mu.Lock()
	defer b.d.mu.Unlock()
	if l, ok := b.d.listeners[b.id]; ok {
		return l.key
	}
	return ""
}

// Scope groups bindings that share a lifetime, such as an open pane.
type Scope struct {
	mu       sync.Mutex
	d        *Dispatcher
	bindings []*Binding
	closed   bool
}

// NewScope creates an empty scope on d.
func (d *Dispatcher) NewScope() *Scope {
	return &Scope{d: d}
}

// Bind registers a listener owned by the scope. Binding on a closed scope
// returns a binding that is already unbound.
func (s *Scope) Bind(key string, onMatch func()) *Binding {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := s.d.Add(key, onMatch)
	if s.closed {
		b.Unbind()
		return b
	}
	s.bindings = append(s.bindings, b)
	return b
}

// Close unbinds everything in the scope.
func (s *Scope) Close() {
	s.mu.Lock()
	bindings := s.bindings
	s.bindings = nil
	s.closed = true
	s.mu.Unlock()

	for _, b := range bindings {
		b.Unbind()
	}
}
