// Package input turns pointer and touch activity into key presses. One key
// at most is held per stream: the pointer, and a single tracked touch
// sequence.
package input

import (
	"github.com/charmbracelet/log"

	"github.com/bnema/wayosk/internal/geometry"
	"github.com/bnema/wayosk/internal/layout"
	"github.com/bnema/wayosk/internal/logger"
)

// Submitter receives the key activity that leaves the keyboard.
type Submitter interface {
	HandlePress(key *layout.Key, time uint32)
	HandleRelease(key *layout.Key, time uint32)
	HandleCancel(key *layout.Key, time uint32)
	ToggleModifier(mod layout.Modifier)
	ReleaseAll(time uint32)
}

// Stream identifies an input source.
type Stream int

const (
	StreamPointer Stream = iota
	StreamTouch
)

func (s Stream) String() string {
	if s == StreamTouch {
		return "touch"
	}
	return "pointer"
}

type streamState struct {
	key     string
	pressed bool
}

// Machine is the key-press state machine.
type Machine struct {
	layout *layout.Layout
	geom   geometry.RenderGeometry
	sub    Submitter
	log    *log.Logger

	streams [2]streamState

	touchSeq     uint64
	touchTracked bool

	// popView is restored after the next submitted key is released.
	popView string

	OnPreferences func()
}

// NewMachine creates an idle machine with the placeholder geometry.
func NewMachine(sub Submitter) *Machine {
	return &Machine{
		sub:  sub,
		geom: geometry.InitialRenderGeometry(),
		log:  logger.With("input"),
	}
}

// Layout returns the layout used for hit-testing.
func (m *Machine) Layout() *layout.Layout {
	return m.layout
}

// SetLayout releases everything held on the previous layout and switches to l.
func (m *Machine) SetLayout(l *layout.Layout, time uint32) {
	m.ReleaseAllOnly(time)
	m.layout = l
	m.popView = ""
	m.refit()
}

// Geometry returns the current allocation and transform.
func (m *Machine) Geometry() geometry.RenderGeometry {
	return m.geom
}

// Resize recomputes the transform for a new allocation. Presses in progress
// keep their key; later hit-tests use the new transform.
func (m *Machine) Resize(width, height float64) {
	if m.layout == nil {
		return
	}
	m.geom = m.geom.Resize(width, height, m.layout.Size())
}

func (m *Machine) refit() {
	m.Resize(m.geom.AllocationWidth, m.geom.AllocationHeight)
}

// Pressed returns the key held by a stream.
func (m *Machine) Pressed(s Stream) (string, bool) {
	st := m.streams[s]
	return st.key, st.pressed
}

// TrackedTouch returns the touch sequence currently followed.
func (m *Machine) TrackedTouch() (uint64, bool) {
	return m.touchSeq, m.touchTracked
}

func (m *Machine) hit(x, y float64) (*layout.Key, bool) {
	if m.layout == nil {
		return nil, false
	}
	p := m.geom.WidgetToLayout.WidgetToLayout(x, y)
	b, ok := m.layout.FindButton(p)
	if !ok {
		return nil, false
	}
	return m.layout.Key(b.KeyID)
}

// Depress starts a press on the key under (x, y), in widget pixels.
func (m *Machine) Depress(s Stream, x, y float64, time uint32) {
	if m.streams[s].pressed {
		return
	}
	key, ok := m.hit(x, y)
	if !ok {
		return
	}
	m.press(s, key, time)
}

// Drag moves a held press. Crossing onto another key cancels the old key and
// presses the new one. Leaving every key keeps the old one pressed.
func (m *Machine) Drag(s Stream, x, y float64, time uint32) {
	st := m.streams[s]
	if !st.pressed {
		return
	}
	key, ok := m.hit(x, y)
	if !ok || key.ID == st.key {
		return
	}
	if old, ok := m.layout.Key(st.key); ok {
		m.cancel(s, old, time)
	} else {
		m.clear(s)
	}
	m.press(s, key, time)
}

// Release finishes the press held by a stream.
func (m *Machine) Release(s Stream, time uint32) {
	st := m.streams[s]
	if !st.pressed {
		return
	}
	m.clear(s)
	key, ok := m.layout.Key(st.key)
	if !ok {
		return
	}

	switch key.Action.Kind {
	case layout.ActionSubmit, layout.ActionErase:
		m.sub.HandleRelease(key, time)
		if m.popView != "" {
			m.setView(m.popView)
			m.popView = ""
		}
	case layout.ActionShowPreferences:
		if m.OnPreferences != nil {
			m.OnPreferences()
		}
	}
}

// Cancel abandons the press held by a stream without submitting it.
func (m *Machine) Cancel(s Stream, time uint32) {
	st := m.streams[s]
	if !st.pressed {
		return
	}
	if key, ok := m.layout.Key(st.key); ok {
		m.cancel(s, key, time)
		return
	}
	m.clear(s)
}

// ReleaseAllOnly drops every held key without view or preference side
// effects. Held keycodes are released exactly once.
func (m *Machine) ReleaseAllOnly(time uint32) {
	for s := range m.streams {
		m.clear(Stream(s))
	}
	m.touchTracked = false
	m.sub.ReleaseAll(time)
}

// TouchBegin releases whatever was held and starts tracking seq.
func (m *Machine) TouchBegin(seq uint64, x, y float64, time uint32) {
	m.Release(StreamPointer, time)
	if m.touchTracked {
		m.Release(StreamTouch, time)
	}
	m.touchSeq = seq
	m.touchTracked = true
	m.Depress(StreamTouch, x, y, time)
}

// TouchUpdate drags the tracked sequence. Other sequences are ignored.
func (m *Machine) TouchUpdate(seq uint64, x, y float64, time uint32) {
	if !m.tracks(seq) {
		return
	}
	m.Drag(StreamTouch, x, y, time)
}

// TouchEnd releases the tracked sequence.
func (m *Machine) TouchEnd(seq uint64, time uint32) {
	if !m.tracks(seq) {
		return
	}
	m.Release(StreamTouch, time)
	m.touchTracked = false
}

// TouchCancel ends the tracked sequence the same way TouchEnd does.
func (m *Machine) TouchCancel(seq uint64, time uint32) {
	m.TouchEnd(seq, time)
}

func (m *Machine) tracks(seq uint64) bool {
	return m.touchTracked && m.touchSeq == seq
}

func (m *Machine) press(s Stream, key *layout.Key, time uint32) {
	m.streams[s] = streamState{key: key.ID, pressed: true}
	m.layout.SetPressed(key.ID, true)

	a := key.Action
	switch a.Kind {
	case layout.ActionSubmit, layout.ActionErase:
		m.sub.HandlePress(key, time)
	case layout.ActionSetView:
		m.popView = ""
		m.setView(a.View)
	case layout.ActionLockView:
		if m.layout.IsLocked(key.ID) {
			m.popView = ""
			m.setView(a.Lock.UnlockView)
		} else {
			m.setView(a.Lock.LockView)
			if a.Lock.Pops {
				m.popView = a.Lock.UnlockView
			}
		}
	case layout.ActionApplyModifier:
		m.sub.ToggleModifier(a.Modifier)
	}
}

func (m *Machine) cancel(s Stream, key *layout.Key, time uint32) {
	m.clear(s)
	switch key.Action.Kind {
	case layout.ActionSubmit, layout.ActionErase:
		m.sub.HandleCancel(key, time)
	}
}

func (m *Machine) clear(s Stream) {
	st := m.streams[s]
	if st.pressed && m.layout != nil {
		other := m.streams[1-s]
		if !other.pressed || other.key != st.key {
			m.layout.SetPressed(st.key, false)
		}
	}
	m.streams[s] = streamState{}
}

func (m *Machine) setView(name string) {
	if err := m.layout.SetView(name); err != nil {
		m.log.Warn("Cannot switch view", "view", name, "err", err)
		return
	}
	m.refit()
}
