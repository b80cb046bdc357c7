package cmd

import (
	"context"

	"github.com/bnema/wayosk/internal/ipc"
	"github.com/bnema/wayosk/internal/session"
	"github.com/bnema/wayosk/internal/visibility"
)

// sessionHandler serves control requests by posting into the session loop.
type sessionHandler struct {
	sess *session.Session
}

func (h sessionHandler) SetVisibility(ctx context.Context, mode string) error {
	m, err := visibility.ParseMode(mode)
	if err != nil {
		return err
	}
	return h.sess.ForceVisibility(ctx, m)
}

func (h sessionHandler) Status(ctx context.Context) (*ipc.Status, error) {
	st, err := h.sess.QueryStatus(ctx)
	if err != nil {
		return nil, err
	}
	return statusToIPC(st), nil
}

func (h sessionHandler) SetLayout(ctx context.Context, name, overlay string) error {
	return h.sess.SwitchLayout(ctx, name, overlay)
}

func (h sessionHandler) Press(ctx context.Context, key string) error {
	return h.sess.TapKey(ctx, key)
}

func statusToIPC(st session.Status) *ipc.Status {
	out := &ipc.Status{
		Visible:           st.Visible,
		Visibility:        st.Visibility,
		InputMethod:       st.InputMethod,
		Serial:            st.Serial,
		VirtualKeyboard:   st.Capabilities.VirtualKeyboard,
		InputMethodBound:  st.Capabilities.InputMethodBound,
		InputMethodActive: st.Capabilities.InputMethod,
		Layout:            st.Layout,
		View:              st.View,
		Arrangement:       st.Arrangement,
		Purpose:           st.Purpose,
		Hint:              st.Hint,
		Modifiers:         st.Modifiers,
		Pressed:           st.Pressed,
	}
	for i := range st.Outputs {
		out.Outputs = append(out.Outputs, st.Outputs[i].String())
	}
	return out
}
