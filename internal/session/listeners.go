package session

import "github.com/bnema/wayosk/internal/outputs"

// InputMethodEvents forwards protocol callbacks into the session loop.
type InputMethodEvents struct {
	s *Session
}

// InputMethodEvents returns a listener suitable for the input-method proxy.
func (s *Session) InputMethodEvents() InputMethodEvents {
	return InputMethodEvents{s: s}
}

func (e InputMethodEvents) Activate()   { e.s.Post(IMActivate{}) }
func (e InputMethodEvents) Deactivate() { e.s.Post(IMDeactivate{}) }
func (e InputMethodEvents) Done()       { e.s.Post(IMDone{}) }
func (e InputMethodEvents) Unavailable() {
	e.s.Post(IMUnavailable{})
}

func (e InputMethodEvents) SurroundingText(text string, cursor, anchor uint32) {
	e.s.Post(IMSurroundingText{Text: text, Cursor: cursor, Anchor: anchor})
}

func (e InputMethodEvents) ContentType(hint, purpose uint32) {
	e.s.Post(IMContentType{Hint: hint, Purpose: purpose})
}

func (e InputMethodEvents) TextChangeCause(cause uint32) {
	e.s.Post(IMTextChangeCause{Cause: cause})
}

// OutputEvents forwards output announcements into the session loop.
type OutputEvents struct {
	s *Session
}

// OutputEvents returns a listener for output globals.
func (s *Session) OutputEvents() OutputEvents {
	return OutputEvents{s: s}
}

func (e OutputEvents) OutputAdded(o outputs.Output) { e.s.Post(OutputAdded{Output: o}) }
func (e OutputEvents) OutputRemoved(id uint32)      { e.s.Post(OutputRemoved{ID: id}) }
