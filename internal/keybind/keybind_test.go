package keybind

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "esc", Normalize("Escape"))
	assert.Equal(t, "esc", Normalize("ESC"))
	assert.Equal(t, "enter", Normalize("Return"))
	assert.Equal(t, " ", Normalize("space"))
	assert.Equal(t, " ", Normalize(" "))
	assert.Equal(t, "up", Normalize("ArrowUp"))
	assert.Equal(t, "ctrl+c", Normalize("Ctrl+C"))
	assert.Equal(t, "g", Normalize("G"))
}

func TestMatches(t *testing.T) {
	t.Run("matches special keys", func(t *testing.T) {
		assert.True(t, Matches("Enter", tea.KeyMsg{Type: tea.KeyEnter}))
		assert.True(t, Matches("Escape", tea.KeyMsg{Type: tea.KeyEsc}))
		assert.False(t, Matches("Enter", tea.KeyMsg{Type: tea.KeyEsc}))
	})

	t.Run("matches runes", func(t *testing.T) {
		assert.True(t, Matches("q", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}}))
		assert.True(t, Matches("Q", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}}))
		assert.False(t, Matches("q", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'w'}}))
	})

	t.Run("matches ctrl combinations", func(t *testing.T) {
		assert.True(t, Matches("ctrl+c", tea.KeyMsg{Type: tea.KeyCtrlC}))
	})
}

func TestDispatcher_Bind(t *testing.T) {
	t.Run("calls callback once per matching press regardless of case", func(t *testing.T) {
		d := NewDispatcher()
		calls := 0
		unbind := d.Bind("Escape", func() { calls++ })
		defer unbind()

		n := d.DispatchKey("escape")

		assert.Equal(t, 1, n)
		assert.Equal(t, 1, calls)
	})

	t.Run("dispatches tea key messages", func(t *testing.T) {
		d := NewDispatcher()
		calls := 0
		d.Bind("Escape", func() { calls++ })

		d.Dispatch(tea.KeyMsg{Type: tea.KeyEsc})
		d.Dispatch(tea.KeyMsg{Type: tea.KeyEsc})

		assert.Equal(t, 2, calls)
	})

	t.Run("ignores unrelated keys", func(t *testing.T) {
		d := NewDispatcher()
		calls := 0
		d.Bind("Escape", func() { calls++ })

		d.Dispatch(tea.KeyMsg{Type: tea.KeyEnter})
		d.Dispatch(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'e'}})
		d.DispatchKey("Esc2")

		assert.Equal(t, 0, calls)
	})

	t.Run("unbind removes the listener", func(t *testing.T) {
		d := NewDispatcher()
		calls := 0
		unbind := d.Bind("Enter", func() { calls++ })
		assert.Equal(t, 1, d.Len())

		unbind()
		d.DispatchKey("Enter")

		assert.Equal(t, 0, calls)
		assert.Equal(t, 0, d.Len())
	})

	t.Run("unbind is idempotent", func(t *testing.T) {
		d := NewDispatcher()
		unbind := d.Bind("Enter", func() {})
		other := d.Bind("Enter", func() {})
		defer other()

		unbind()
		unbind()

		assert.Equal(t, 1, d.Len())
	})

	t.Run("independent listeners on the same key both fire", func(t *testing.T) {
		d := NewDispatcher()
		var order []string
		d.Bind("Enter", func() { order = append(order, "first") })
		d.Bind("enter", func() { order = append(order, "second") })

		assert.Equal(t, 2, d.DispatchKey("ENTER"))
		assert.Equal(t, []string{"first", "second"}, order)
	})
}

func TestBinding_Rebind(t *testing.T) {
	t.Run("new callback replaces the old one", func(t *testing.T) {
		d := NewDispatcher()
		oldCalls, newCalls := 0, 0
		b := d.Add("Escape", func() { oldCalls++ })

		b.Rebind("Escape", func() { newCalls++ })
		d.DispatchKey("Escape")

		assert.Equal(t, 0, oldCalls)
		assert.Equal(t, 1, newCalls)
		assert.Equal(t, 1, d.Len())
	})

	t.Run("new key replaces the old key", func(t *testing.T) {
		d := NewDispatcher()
		calls := 0
		b := d.Add("Escape", func() { calls++ })

		b.Rebind("q", func() { calls++ })
		d.DispatchKey("Escape")
		assert.Equal(t, 0, calls)

		d.DispatchKey("q")
		assert.Equal(t, 1, calls)
		assert.Equal(t, "q", b.Key())
	})

	t.Run("rebind after unbind does nothing", func(t *testing.T) {
		d := NewDispatcher()
		calls := 0
		b := d.Add("Escape", func() {})
		b.Unbind()

		b.Rebind("Escape", func() { calls++ })
		d.DispatchKey("Escape")

		assert.Equal(t, 0, calls)
		assert.Equal(t, 0, d.Len())
		assert.Empty(t, b.Key())
	})

	t.Run("callback replaced during dispatch is not called", func(t *testing.T) {
		d := NewDispatcher()
		staleCalls := 0
		var second *Binding
		d.Add("Enter", func() {
			second.Rebind("Enter", func() {})
		})
		second = d.Add("Enter", func() { staleCalls++ })

		d.DispatchKey("Enter")

		assert.Equal(t, 0, staleCalls)
	})
}

func TestScope(t *testing.T) {
	t.Run("close unbinds everything", func(t *testing.T) {
		d := NewDispatcher()
		calls := 0
		s := d.NewScope()
		s.Bind("Escape", func() { calls++ })
		s.Bind("Enter", func() { calls++ })
		assert.Equal(t, 2, d.Len())

		s.Close()
		d.DispatchKey("Escape")
		d.DispatchKey("Enter")

		assert.Equal(t, 0, calls)
		assert.Equal(t, 0, d.Len())
	})

	t.Run("repeated open and close does not leak listeners", func(t *testing.T) {
		d := NewDispatcher()
		for i := 0; i < 100; i++ {
			s := d.NewScope()
			s.Bind("Escape", func() {})
			s.Close()
		}
		assert.Equal(t, 0, d.Len())
	})

	t.Run("bind on closed scope is inert", func(t *testing.T) {
		d := NewDispatcher()
		s := d.NewScope()
		s.Close()

		calls := 0
		s.Bind("Escape", func() { calls++ })
		d.DispatchKey("Escape")

		assert.Equal(t, 0, calls)
		assert.Equal(t, 0, d.Len())
	})

	t.Run("listener can close its own scope", func(t *testing.T) {
		d := NewDispatcher()
		s := d.NewScope()
		calls := 0
		s.Bind("Escape", func() {
			calls++
			s.Close()
		})

		d.DispatchKey("Escape")
		d.DispatchKey("Escape")

		assert.Equal(t, 1, calls)
	})
}
