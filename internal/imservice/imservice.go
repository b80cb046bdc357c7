// Package imservice tracks the compositor's input-method session. Updates are
// buffered until the compositor sends done, which commits them as one
// consistent snapshot.
package imservice

import (
	"errors"
	"unicode/utf8"

	"github.com/charmbracelet/log"

	"github.com/bnema/wayosk/internal/logger"
)

var (
	ErrNotActive   = errors.New("input method not active")
	ErrUnavailable = errors.New("input method unavailable")
)

// Protocol is the outbound half of the input-method protocol object.
type Protocol interface {
	CommitString(text string) error
	DeleteSurroundingText(beforeLength, afterLength uint32) error
	Commit(serial uint32) error
	Destroy()
}

// Snapshot is one consistent view of the focused text field.
type Snapshot struct {
	Active          bool
	SurroundingText string
	Cursor          uint32
	Anchor          uint32
	Hint            ContentHint
	Purpose         ContentPurpose
	Cause           ChangeCause
}

// Phase is derived from the committed and pending activation flags.
type Phase int

const (
	PhaseInactive Phase = iota
	PhaseActivating
	PhaseActive
	PhaseDeactivating
)

func (p Phase) String() string {
	switch p {
	case PhaseActivating:
		return "activating"
	case PhaseActive:
		return "active"
	case PhaseDeactivating:
		return "deactivating"
	}
	return "inactive"
}

// Session owns the pending and committed input-method state.
type Session struct {
	proto       Protocol
	pending     Snapshot
	current     Snapshot
	serial      uint32
	unavailable bool
	onCommit    func(Snapshot)
	log         *log.Logger
}

// New creates a session around proto. A nil proto means the compositor does
// not offer the input-method protocol. onCommit is called after every done
// that changed the committed snapshot.
func New(proto Protocol, onCommit func(Snapshot)) *Session {
	return &Session{
		proto:    proto,
		onCommit: onCommit,
		log:      logger.With("imservice"),
	}
}

// Available reports whether the protocol is bound and usable.
func (s *Session) Available() bool {
	return s.proto != nil && !s.unavailable
}

// IsActive reports whether a text field is focused according to the last
// committed snapshot.
func (s *Session) IsActive() bool {
	return s.Available() && s.current.Active
}

// Phase returns the activation state machine position.
func (s *Session) Phase() Phase {
	if !s.Available() {
		return PhaseInactive
	}
	switch {
	case s.current.Active && s.pending.Active:
		return PhaseActive
	case s.current.Active:
		return PhaseDeactivating
	case s.pending.Active:
		return PhaseActivating
	}
	return PhaseInactive
}

// Committed returns the snapshot committed by the last effective done.
func (s *Session) Committed() Snapshot {
	return s.current
}

// Serial is the number of done events received, as the compositor counts them.
func (s *Session) Serial() uint32 {
	return s.serial
}

// Activate starts a new pending session with empty buffers.
func (s *Session) Activate() {
	s.pending = Snapshot{Active: true}
}

// Deactivate marks the pending session inactive.
func (s *Session) Deactivate() {
	s.pending.Active = false
}

// SurroundingText buffers the text around the cursor. Offsets are in bytes.
func (s *Session) SurroundingText(text string, cursor, anchor uint32) {
	s.pending.SurroundingText = text
	s.pending.Cursor = cursor
	s.pending.Anchor = anchor
}

// ContentType buffers the hint and purpose. Invalid values are replaced by
// the defaults.
func (s *Session) ContentType(hint, purpose uint32) {
	h, ok := HintFromWire(hint)
	if !ok {
		s.log.Warn("Received invalid content hint", "hint", hint)
	}
	p, ok := PurposeFromWire(purpose)
	if !ok {
		s.log.Warn("Received invalid content purpose", "purpose", purpose)
	}
	s.pending.Hint = h
	s.pending.Purpose = p
}

// TextChangeCause buffers the cause of the last change.
func (s *Session) TextChangeCause(cause uint32) {
	c, ok := ChangeCauseFromWire(cause)
	if !ok {
		s.log.Warn("Received invalid text change cause", "cause", cause)
	}
	s.pending.Cause = c
}

// Done commits the pending snapshot. It reports whether the committed
// snapshot changed; consumers are only notified in that case.
func (s *Session) Done() bool {
	s.serial++
	if s.pending == s.current {
		return false
	}
	s.current = s.pending
	if s.onCommit != nil {
		s.onCommit(s.current)
	}
	return true
}

// Unavailable disables the protocol for the rest of the process.
func (s *Session) Unavailable() {
	if s.unavailable {
		return
	}
	s.log.Warn("Input method unavailable, falling back to virtual keyboard")
	wasActive := s.current.Active
	s.unavailable = true
	s.current = Snapshot{}
	s.pending = Snapshot{}
	if s.proto != nil {
		s.proto.Destroy()
		s.proto = nil
	}
	if wasActive && s.onCommit != nil {
		s.onCommit(s.current)
	}
}

// CommitString queues text for insertion. It takes effect on Commit.
func (s *Session) CommitString(text string) error {
	if err := s.ready(); err != nil {
		return err
	}
	return s.proto.CommitString(text)
}

// DeleteSurroundingText queues a deletion around the cursor, in bytes.
func (s *Session) DeleteSurroundingText(before, after uint32) error {
	if err := s.ready(); err != nil {
		return err
	}
	return s.proto.DeleteSurroundingText(before, after)
}

// Commit applies queued requests using the current serial.
func (s *Session) Commit() error {
	if err := s.ready(); err != nil {
		return err
	}
	return s.proto.Commit(s.serial)
}

// BeforeCursorLength returns the byte length of the code point preceding the
// cursor, when the committed surrounding text makes that computable and no
// selection is active.
func (s *Session) BeforeCursorLength() (uint32, bool) {
	c := s.current
	if !s.IsActive() || c.Cursor != c.Anchor || c.Cursor == 0 {
		return 0, false
	}
	if int(c.Cursor) > len(c.SurroundingText) {
		return 0, false
	}
	before := c.SurroundingText[:c.Cursor]
	r, size := utf8.DecodeLastRuneInString(before)
	if r == utf8.RuneError && size <= 1 {
		return 0, false
	}
	return uint32(size), true
}

func (s *Session) ready() error {
	if !s.Available() {
		return ErrUnavailable
	}
	if !s.current.Active {
		return ErrNotActive
	}
	return nil
}
