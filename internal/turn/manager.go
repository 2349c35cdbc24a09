// Package turn provides hotseat turn management.
// It handles turn order, the acting participant, and initiative ordering.
package turn

import (
	"math/rand"
	"slices"
	"sort"
)

// Participant is the view of a player the scheduler needs.
type Participant struct {
	ID       string
	IsMaster bool
}

// Manager keeps the ordered roster and the index of the acting participant.
type Manager struct {
	order          []string
	activeIdx      int
	initiativeMode bool
	rng            *rand.Rand

	// Callbacks
	OnActiveChanged func(playerID string)
}

// NewManager creates a new turn manager
func NewManager(rng *rand.Rand) *Manager {
	return &Manager{
		order: make([]string, 0),
		rng:   rng,
	}
}

// Order returns a copy of the current turn order.
func (m *Manager) Order() []string {
	return slices.Clone(m.order)
}

// ActiveIndex returns the index of the acting participant.
func (m *Manager) ActiveIndex() int {
	return m.activeIdx
}

// Active returns the id of the acting participant, or "" for an empty order.
func (m *Manager) Active() string {
	if len(m.order) == 0 {
		return ""
	}
	return m.order[m.activeIdx]
}

// InitiativeMode reports whether the order was built from initiative rolls.
func (m *Manager) InitiativeMode() bool {
	return m.initiativeMode
}

// Register appends a newly added participant to the end of the order.
func (m *Manager) Register(playerID string) {
	if slices.Contains(m.order, playerID) {
		return
	}
	m.order = append(m.order, playerID)
}

// SetActive makes playerID the acting participant. Unknown ids are ignored.
func (m *Manager) SetActive(playerID string) {
	idx := slices.Index(m.order, playerID)
	if idx < 0 {
		return
	}
	m.activeIdx = idx
	m.notify()
}

// Pass advances to the next participant, wrapping around.
func (m *Manager) Pass() {
	if len(m.order) == 0 {
		return
	}
	m.activeIdx = (m.activeIdx + 1) % len(m.order)
	m.notify()
}

// EnterInitiative rebuilds the order from fresh initiative rolls. The master
// always rolls 0, everyone else a d20; ties keep registration order.
func (m *Manager) EnterInitiative(players []Participant) {
	type entry struct {
		id   string
		init int
	}
	entries := make([]entry, len(players))
	for i, p := range players {
		init := 0
		if !p.IsMaster {
			init = 1 + m.rng.Intn(20)
		}
		entries[i] = entry{id: p.ID, init: init}
	}
	sort.SliceStable(entries, func(a, b int) bool {
		return entries[a].init > entries[b].init
	})

	m.order = make([]string, len(entries))
	for i, e := range entries {
		m.order[i] = e.id
	}
	m.initiativeMode = true
	m.activeIdx = 0
	m.notify()
}

// ExitInitiative restores registration order.
func (m *Manager) ExitInitiative(players []Participant) {
	m.order = ids(players)
	m.initiativeMode = false
	m.clampActive()
	m.notify()
}

// Restore replaces the whole turn state, typically from a snapshot. An empty
// order falls back to the players in registration order.
func (m *Manager) Restore(order []string, activeIdx int, initiativeMode bool, players []Participant) {
	known := make(map[string]bool, len(players))
	for _, p := range players {
		known[p.ID] = true
	}
	m.order = m.order[:0]
	for _, id := range order {
		if known[id] && !slices.Contains(m.order, id) {
			m.order = append(m.order, id)
		}
	}
	if len(m.order) == 0 {
		m.order = ids(players)
	}
	m.activeIdx = activeIdx
	m.initiativeMode = initiativeMode
	m.clampActive()
}

func (m *Manager) clampActive() {
	if m.activeIdx < 0 || m.activeIdx >= len(m.order) {
		m.activeIdx = 0
	}
}

func (m *Manager) notify() {
	if m.OnActiveChanged != nil {
		m.OnActiveChanged(m.Active())
	}
}

func ids(players []Participant) []string {
	out := make([]string, len(players))
	for i, p := range players {
		out[i] = p.ID
	}
	return out
}
