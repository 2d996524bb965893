// Package history provides bounded linear undo/redo over snapshots of the
// freehand canvas's colored-region map. Snapshots are structural copies,
// never shared references: mutating live state after a push cannot alter a
// stored snapshot.
package history

import "time"

// DefaultMaxEntries bounds each of the past and future stacks.
const DefaultMaxEntries = 50

// Snapshot captures the colored-region map at one point in time.
type Snapshot struct {
	Colored   map[string]string // element key -> applied color hex
	Timestamp time.Time
}

func (s Snapshot) clone() Snapshot {
	out := Snapshot{Timestamp: s.Timestamp}
	if s.Colored != nil {
		out.Colored = make(map[string]string, len(s.Colored))
		for k, v := range s.Colored {
			out.Colored[k] = v
		}
	}
	return out
}

// Manager holds the current snapshot plus bounded past and future stacks.
// Standard linear undo model: pushing after an undo discards the redo
// branch.
type Manager struct {
	current Snapshot
	past    []Snapshot
	future  []Snapshot
	max     int
}

// New creates a Manager seeded with an initial snapshot. maxEntries <= 0
// selects DefaultMaxEntries.
func New(initial Snapshot, maxEntries int) *Manager {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Manager{current: initial.clone(), max: maxEntries}
}

// Current returns a copy of the current snapshot.
func (m *Manager) Current() Snapshot { return m.current.clone() }

// CanUndo reports whether an undo step is available.
func (m *Manager) CanUndo() bool { return len(m.past) > 0 }

// CanRedo reports whether a redo step is available.
func (m *Manager) CanRedo() bool { return len(m.future) > 0 }

// Push records a new state: the current snapshot moves onto the past stack
// (oldest entry evicted at capacity) and the future stack is cleared.
func (m *Manager) Push(next Snapshot) {
	m.past = append(m.past, m.current)
	if len(m.past) > m.max {
		m.past = m.past[1:]
	}
	m.future = m.future[:0]
	m.current = next.clone()
}

// Undo steps back to the most recent past snapshot, moving the current one
// onto the future stack. Returns false without changing state if there is
// no past entry.
func (m *Manager) Undo() (Snapshot, bool) {
	if len(m.past) == 0 {
		return Snapshot{}, false
	}
	m.future = append(m.future, m.current)
	if len(m.future) > m.max {
		m.future = m.future[1:]
	}
	m.current = m.past[len(m.past)-1]
	m.past = m.past[:len(m.past)-1]
	return m.current.clone(), true
}

// Redo is the symmetric operation over the future stack.
func (m *Manager) Redo() (Snapshot, bool) {
	if len(m.future) == 0 {
		return Snapshot{}, false
	}
	m.past = append(m.past, m.current)
	if len(m.past) > m.max {
		m.past = m.past[1:]
	}
	m.current = m.future[len(m.future)-1]
	m.future = m.future[:len(m.future)-1]
	return m.current.clone(), true
}
