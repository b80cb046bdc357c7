// Package session owns the keyboard core: layout state, the key-press state
// machine, the submission router and the input-method session. Every event
// goes through Dispatch, on one goroutine.
package session

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/bnema/wayosk/internal/imservice"
	"github.com/bnema/wayosk/internal/input"
	"github.com/bnema/wayosk/internal/layout"
	"github.com/bnema/wayosk/internal/logger"
	"github.com/bnema/wayosk/internal/outputs"
	"github.com/bnema/wayosk/internal/submission"
	"github.com/bnema/wayosk/internal/visibility"
)

var (
	ErrUnknownKey = errors.New("unknown key")
	ErrKeyBusy    = errors.New("pointer already pressing a key")
	ErrStopped    = errors.New("session loop stopped")
)

// DefaultWideThreshold is the logical output width above which the wide
// arrangement is used.
const DefaultWideThreshold = 540

// Options are the collaborators and settings of a session.
type Options struct {
	// VirtualKeyboard is required in production; tests may leave it nil.
	VirtualKeyboard submission.VirtualKeyboard
	// InputMethod is nil when the compositor does not offer the protocol.
	InputMethod imservice.Protocol
	Loader      *layout.Loader

	LayoutName    string
	OverlayName   string
	WideThreshold float64
	Visibility    visibility.Mode

	OnVisibilityChange func(visible bool)
	OnPreferences      func()
	Diagnostic         submission.DiagnosticFunc
}

// Session is the single owner of all keyboard state.
type Session struct {
	ims        *imservice.Session
	router     *submission.Router
	machine    *input.Machine
	loader     *layout.Loader
	outputs    *outputs.Tracker
	visibility *visibility.Manager

	state         layout.State
	loaded        []string
	wideThreshold float64

	events   chan Event
	stopped  chan struct{}
	stopOnce sync.Once
	started  time.Time
	log      *log.Logger
}

// New builds a session and loads the initial layout.
func New(opts Options) (*Session, error) {
	if opts.Loader == nil {
		opts.Loader = layout.NewLoader("")
	}
	if opts.WideThreshold <= 0 {
		opts.WideThreshold = DefaultWideThreshold
	}

	s := &Session{
		loader:        opts.Loader,
		outputs:       outputs.NewTracker(),
		wideThreshold: opts.WideThreshold,
		state: layout.State{
			LayoutName:  opts.LayoutName,
			OverlayName: opts.OverlayName,
		},
		events:  make(chan Event, 64),
		stopped: make(chan struct{}),
		started: time.Now(),
		log:     logger.With("session"),
	}
	s.ims = imservice.New(opts.InputMethod, s.onCommit)
	s.router = submission.New(opts.VirtualKeyboard, s.ims)
	s.router.SetDiagnostic(opts.Diagnostic)
	s.machine = input.NewMachine(s.router)
	s.machine.OnPreferences = opts.OnPreferences
	s.visibility = visibility.New(opts.Visibility, opts.OnVisibilityChange)

	if opts.InputMethod == nil {
		s.log.Warn("No input method available, text goes through the virtual keyboard only")
	}
	if err := s.reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Layout returns the active layout. Only call it from the dispatching
// goroutine.
func (s *Session) Layout() *layout.Layout {
	return s.machine.Layout()
}

// Machine exposes the key-press state machine for renderers.
func (s *Session) Machine() *input.Machine {
	return s.machine
}

// Router exposes the submission router.
func (s *Session) Router() *submission.Router {
	return s.router
}

// InputMethod exposes the input-method session.
func (s *Session) InputMethod() *imservice.Session {
	return s.ims
}

// State returns the layout selection state.
func (s *Session) State() layout.State {
	return s.state
}

// Visible returns the current visibility decision.
func (s *Session) Visible() bool {
	return s.visibility.Visible()
}

// Dispatch handles one event. It must only be called from one goroutine,
// normally the one running Loop.
func (s *Session) Dispatch(ev Event) {
	m := s.machine
	switch e := ev.(type) {
	case PointerDown:
		m.Depress(input.StreamPointer, e.X, e.Y, e.Time)
	case PointerMove:
		m.Drag(input.StreamPointer, e.X, e.Y, e.Time)
	case PointerUp:
		m.Release(input.StreamPointer, e.Time)
	case PointerLeave:
		m.Cancel(input.StreamPointer, e.Time)

	case TouchBegin:
		m.TouchBegin(e.Seq, e.X, e.Y, e.Time)
	case TouchUpdate:
		m.TouchUpdate(e.Seq, e.X, e.Y, e.Time)
	case TouchEnd:
		m.TouchEnd(e.Seq, e.Time)
	case TouchCancel:
		m.TouchCancel(e.Seq, e.Time)

	case Resize:
		m.Resize(e.Width, e.Height)
	case Unmap:
		m.ReleaseAllOnly(e.Time)

	case IMActivate:
		s.ims.Activate()
	case IMDeactivate:
		s.ims.Deactivate()
		m.ReleaseAllOnly(s.now())
	case IMSurroundingText:
		s.ims.SurroundingText(e.Text, e.Cursor, e.Anchor)
	case IMContentType:
		s.ims.ContentType(e.Hint, e.Purpose)
	case IMTextChangeCause:
		s.ims.TextChangeCause(e.Cause)
	case IMDone:
		s.ims.Done()
	case IMUnavailable:
		m.ReleaseAllOnly(s.now())
		s.ims.Unavailable()

	case OutputAdded:
		s.outputs.Register(e.Output)
		s.refreshArrangement()
	case OutputRemoved:
		if s.outputs.Unregister(e.ID) {
			s.refreshArrangement()
		}

	case SetVisibility:
		s.visibility.SetMode(e.Mode)
	case LayoutSwitch:
		reply(e.Reply, s.switchLayout(e.Name, e.Overlay))
	case LayoutReload:
		if e.Name == "" || slices.Contains(s.loaded, e.Name) {
			if err := s.reload(); err != nil {
				s.log.Error("Layout reload failed", "err", err)
			}
		}
	case StatusRequest:
		if e.Reply != nil {
			e.Reply <- s.Status()
		}
	case PressKey:
		reply(e.Reply, s.tapKey(e.ID))

	default:
		s.log.Warn("Ignoring unknown event", "type", fmt.Sprintf("%T", ev))
	}
}

func reply(ch chan error, err error) {
	if ch != nil {
		ch <- err
	}
}

// Post queues an event for Loop. It blocks while the queue is full and drops
// the event once Loop has returned.
func (s *Session) Post(ev Event) {
	select {
	case s.events <- ev:
	case <-s.stopped:
		s.log.Debug("Dropping event after loop stopped", "type", fmt.Sprintf("%T", ev))
	}
}

// PostContext queues an event unless ctx ends or Loop returns first.
func (s *Session) PostContext(ctx context.Context, ev Event) error {
	select {
	case s.events <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-s.stopped:
		return ErrStopped
	}
}

// Loop dispatches queued events until ctx is cancelled. Held keys are released
// before it returns so nothing stays pressed on the compositor side.
func (s *Session) Loop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			s.machine.ReleaseAllOnly(s.now())
			s.stopOnce.Do(func() { close(s.stopped) })
			return nil
		case ev := <-s.events:
			s.Dispatch(ev)
		}
	}
}

func (s *Session) now() uint32 {
	return uint32(time.Since(s.started).Milliseconds())
}

func (s *Session) onCommit(snap imservice.Snapshot) {
	s.visibility.SetInputMethodActive(snap.Active && s.ims.Available())
	next := s.state
	next.Purpose = snap.Purpose
	next.Hint = snap.Hint
	s.apply(next)
}

func (s *Session) refreshArrangement() {
	next := s.state
	next.Arrangement = layout.ArrangementBase
	if s.outputs.IsWide(s.wideThreshold) {
		next.Arrangement = layout.ArrangementWide
	}
	s.apply(next)
}

// apply stores a new state and reloads the layout when the selection changed.
func (s *Session) apply(next layout.State) {
	changed := !slices.Equal(next.Candidates(), s.state.Candidates())
	s.state = next
	if !changed {
		return
	}
	if err := s.reload(); err != nil {
		s.log.Error("Cannot load layout", "err", err)
	}
}

func (s *Session) reload() error {
	l, err := s.loader.Load(s.state)
	if err != nil {
		return err
	}
	s.machine.SetLayout(l, s.now())
	s.router.SetKeymaps(l.Keymaps)
	s.loaded = s.state.Candidates()
	s.log.Debug("Layout loaded", "name", l.Name, "arrangement", l.Arrangement)
	return nil
}

func (s *Session) switchLayout(name, overlay string) error {
	available := s.loader.Names()
	for _, n := range []string{name, overlay} {
		if n != "" && !slices.Contains(available, n) {
			return fmt.Errorf("%w: %s", layout.ErrUnknownLayout, n)
		}
	}
	next := s.state
	if name != "" {
		next.LayoutName = name
	}
	next.OverlayName = overlay
	s.state = next
	return s.reload()
}

func (s *Session) tapKey(id string) error {
	if _, busy := s.machine.Pressed(input.StreamPointer); busy {
		return ErrKeyBusy
	}
	b, ok := s.Layout().FindKey(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownKey, id)
	}
	x, y := s.machine.Geometry().WidgetToLayout.LayoutToWidget(b.Bounds.Center())
	t := s.now()
	s.machine.Depress(input.StreamPointer, x, y, t)
	s.machine.Release(input.StreamPointer, t)
	return nil
}
