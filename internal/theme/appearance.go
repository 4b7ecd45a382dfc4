package theme

import (
	"encoding/json"
	"fmt"
	"sync"
)

// Mode is the user's appearance choice.
type Mode string

const (
	Light  Mode = "light"
	Dark   Mode = "dark"
	System Mode = "system"
)

// ParseMode validates s. The empty string means System.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case Light, Dark, System:
		return Mode(s), nil
	case "":
		return System, nil
	}
	return "", fmt.Errorf("unknown appearance %q", s)
}

// DecodeMode reads the stored appearance setting value.
func DecodeMode(data []byte) (Mode, error) {
	if len(data) == 0 {
		return System, nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return "", fmt.Errorf("failed to decode appearance: %w", err)
	}
	return ParseMode(s)
}

// EncodeMode serialises m for the appearance setting.
func EncodeMode(m Mode) ([]byte, error) {
	return json.Marshal(string(m))
}

// State is what observers of a Cell receive.
type State struct {
	Mode Mode `json:"mode"`
	Dark bool `json:"dark"`
}

// Cell holds the single appearance configuration of the app.
//
// The mode is changed by explicit user choice; the platform reports its
// dark/light preference through SetSystemDark. Observers are notified
// whenever the effective state changes.
type Cell struct {
	mu         sync.Mutex
	mode       Mode
	systemDark bool
	nextID     int
	subs       map[int]chan State
}

// NewCell creates a cell starting in mode.
func NewCell(mode Mode) *Cell {
	if mode == "" {
		mode = System
	}
	return &Cell{mode: mode, subs: make(map[int]chan State)}
}

// State returns the current mode and whether dark styling applies.
func (c *Cell) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

func (c *Cell) stateLocked() State {
	dark := c.mode == Dark || (c.mode == System && c.systemDark)
	return State{Mode: c.mode, Dark: dark}
}

// Dark reports whether dark styling applies.
func (c *Cell) Dark() bool {
	return c.State().Dark
}

// SetMode records the user's choice.
func (c *Cell) SetMode(m Mode) {
	c.update(func() { c.mode = m })
}

// SetSystemDark records the platform preference. It only matters in System mode.
func (c *Cell) SetSystemDark(dark bool) {
	c.update(func() { c.systemDark = dark })
}

func (c *Cell) update(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	before := c.stateLocked()
	fn()
	after := c.stateLocked()
	if before == after {
		return
	}
	for _, ch := range c.subs {
		// Keep only the latest state for slow observers.
		select {
		case <-ch:
		default:
		}
		ch <- after
	}
}

// Subscribe returns a channel receiving every state change and a cancel
// func that closes it.
func (c *Cell) Subscribe() (<-chan State, func()) {
	ch := make(chan State, 1)

	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.subs[id] = ch
	c.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.subs, id)
			c.mu.Unlock()
			close(ch)
		})
	}
}
