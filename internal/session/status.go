package session

import (
	"context"
	"strings"

	"github.com/bnema/wayosk/internal/layout"
	"github.com/bnema/wayosk/internal/outputs"
	"github.com/bnema/wayosk/internal/submission"
	"github.com/bnema/wayosk/internal/visibility"
)

// Status is a point-in-time description of the session.
type Status struct {
	Visible      bool
	Visibility   string
	InputMethod  string
	Serial       uint32
	Capabilities submission.Capabilities
	Layout       string
	View         string
	Arrangement  string
	Purpose      string
	Hint         string
	Modifiers    string
	Pressed      []string
	Outputs      []outputs.Output
}

// Status builds a status snapshot. Only call it from the dispatching
// goroutine; other goroutines use QueryStatus.
func (s *Session) Status() Status {
	st := Status{
		Visible:      s.visibility.Visible(),
		Visibility:   s.visibility.Mode().String(),
		InputMethod:  s.ims.Phase().String(),
		Serial:       s.ims.Serial(),
		Capabilities: s.router.Capabilities(),
		Arrangement:  s.state.Arrangement.String(),
		Purpose:      s.state.Purpose.String(),
		Hint:         s.state.Hint.String(),
		Modifiers:    modifierNames(s.router.Modifiers()),
		Outputs:      s.outputs.All(),
	}
	if l := s.Layout(); l != nil {
		st.Layout = l.Name
		st.View = l.CurrentViewName()
		st.Pressed = l.PressedKeys()
	}
	return st
}

func modifierNames(mask layout.Modifier) string {
	var names []string
	for _, m := range []layout.Modifier{layout.ModControl, layout.ModAlt, layout.ModMod4} {
		if mask&m != 0 {
			names = append(names, m.String())
		}
	}
	return strings.Join(names, "+")
}

// QueryStatus asks the running loop for a status snapshot.
func (s *Session) QueryStatus(ctx context.Context) (Status, error) {
	ch := make(chan Status, 1)
	if err := s.PostContext(ctx, StatusRequest{Reply: ch}); err != nil {
		return Status{}, err
	}
	select {
	case st := <-ch:
		return st, nil
	case <-ctx.Done():
		return Status{}, ctx.Err()
	}
}

// SwitchLayout asks the running loop to change the user layout and overlay.
func (s *Session) SwitchLayout(ctx context.Context, name, overlay string) error {
	return s.request(ctx, func(ch chan error) Event {
		return LayoutSwitch{Name: name, Overlay: overlay, Reply: ch}
	})
}

// TapKey asks the running loop to press and release a key by id.
func (s *Session) TapKey(ctx context.Context, id string) error {
	return s.request(ctx, func(ch chan error) Event {
		return PressKey{ID: id, Reply: ch}
	})
}

// ForceVisibility changes the visibility override.
func (s *Session) ForceVisibility(ctx context.Context, mode visibility.Mode) error {
	return s.PostContext(ctx, SetVisibility{Mode: mode})
}

func (s *Session) request(ctx context.Context, build func(chan error) Event) error {
	ch := make(chan error, 1)
	if err := s.PostContext(ctx, build(ch)); err != nil {
		return err
	}
	select {
	case err := <-ch:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
