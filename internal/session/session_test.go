package session

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/wayosk/internal/imservice"
	"github.com/bnema/wayosk/internal/keymap"
	"github.com/bnema/wayosk/internal/layout"
	"github.com/bnema/wayosk/internal/outputs"
	"github.com/bnema/wayosk/internal/visibility"
)

type wire struct {
	calls []string
}

func (w *wire) add(format string, args ...any) {
	w.calls = append(w.calls, fmt.Sprintf(format, args...))
}

type fakeVK struct{ *wire }

func (v fakeVK) SetKeymap(_ *keymap.Set, idx int) error {
	v.add("keymap %d", idx)
	return nil
}

func (v fakeVK) Key(_ uint32, code uint32, pressed bool) error {
	v.add("key %d %t", code, pressed)
	return nil
}

func (v fakeVK) Modifiers(depressed uint32) error {
	v.add("modifiers %d", depressed)
	return nil
}

type fakeIM struct{ *wire }

func (m fakeIM) CommitString(text string) error {
	m.add("commit_string %s", text)
	return nil
}

func (m fakeIM) DeleteSurroundingText(before, after uint32) error {
	m.add("delete_surrounding_text %d %d", before, after)
	return nil
}

func (m fakeIM) Commit(serial uint32) error {
	m.add("commit %d", serial)
	return nil
}

func (m fakeIM) Destroy() {
	m.add("destroy")
}

func newSession(t *testing.T, opts Options) (*Session, *wire) {
	t.Helper()
	w := &wire{}
	opts.VirtualKeyboard = fakeVK{w}
	if opts.InputMethod == nil {
		opts.InputMethod = fakeIM{w}
	}
	s, err := New(opts)
	require.NoError(t, err)
	s.Dispatch(Resize{Width: 720, Height: 300})
	w.calls = nil
	return s, w
}

func keyCenter(t *testing.T, s *Session, id string) (float64, float64) {
	t.Helper()
	b, ok := s.Layout().FindKey(id)
	require.True(t, ok, "key %s not in view", id)
	return s.Machine().Geometry().WidgetToLayout.LayoutToWidget(b.Bounds.Center())
}

func activate(s *Session, text string, cursor uint32, purpose imservice.ContentPurpose) {
	s.Dispatch(IMActivate{})
	s.Dispatch(IMSurroundingText{Text: text, Cursor: cursor, Anchor: cursor})
	s.Dispatch(IMContentType{Hint: 0, Purpose: uint32(purpose)})
	s.Dispatch(IMDone{})
}

func TestNumberPurposeSwitchesLayout(t *testing.T) {
	s, _ := newSession(t, Options{})
	assert.Equal(t, "us", s.Layout().Name)
	assert.False(t, s.Visible())

	activate(s, "hello", 5, imservice.PurposeNumber)

	snap := s.InputMethod().Committed()
	assert.Equal(t, uint32(5), snap.Cursor)
	assert.Equal(t, imservice.PurposeNumber, snap.Purpose)
	assert.Equal(t, imservice.PurposeNumber, s.State().Purpose)
	assert.Equal(t, "number", s.Layout().Name)
	assert.True(t, s.Visible())
}

func TestPendingUpdatesInvisibleBeforeDone(t *testing.T) {
	s, _ := newSession(t, Options{})
	s.Dispatch(IMActivate{})
	s.Dispatch(IMContentType{Purpose: uint32(imservice.PurposeTerminal)})
	assert.Equal(t, "us", s.Layout().Name)
	assert.False(t, s.Visible())

	s.Dispatch(IMDone{})
	assert.Equal(t, "terminal", s.Layout().Name)
}

func TestTextCommittedThroughInputMethod(t *testing.T) {
	s, w := newSession(t, Options{})
	activate(s, "", 0, imservice.PurposeNormal)
	w.calls = nil

	x, y := keyCenter(t, s, "q")
	s.Dispatch(PointerDown{X: x, Y: y, Time: 1})
	assert.Empty(t, w.calls)
	s.Dispatch(PointerUp{Time: 2})
	assert.Equal(t, []string{"commit_string q", "commit 1"}, w.calls)
}

func TestDeactivateReleasesHeldKeys(t *testing.T) {
	s, w := newSession(t, Options{})
	activate(s, "", 0, imservice.PurposeNormal)
	w.calls = nil

	x, y := keyCenter(t, s, "q")
	s.Dispatch(PointerDown{X: x, Y: y, Time: 1})
	s.Dispatch(IMDeactivate{})
	assert.Empty(t, s.Layout().PressedKeys())
	s.Dispatch(PointerUp{Time: 2})
	s.Dispatch(IMDone{})
	assert.Empty(t, w.calls)
	assert.False(t, s.Visible())

	// a held keycode gets exactly one release
	x, y = keyCenter(t, s, "Return")
	s.Dispatch(PointerDown{X: x, Y: y, Time: 3})
	s.Dispatch(IMActivate{})
	s.Dispatch(IMDeactivate{})
	s.Dispatch(Unmap{Time: 4})
	ret, _ := s.Layout().Key("Return")
	code := ret.Keycodes[0].Code
	assert.Equal(t, []string{fmt.Sprintf("key %d true", code), fmt.Sprintf("key %d false", code)}, w.calls)
}

const emojiLayout = `
outlines:
    default: { width: 40, height: 40 }
views:
    base:
        - "thumbs a"
buttons:
    thumbs:
        text: "👍🏽"
`

func TestUnavailableTextWithoutKeysymIsSilent(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "emoji.yaml"), []byte(emojiLayout), 0o644))
	s, w := newSession(t, Options{Loader: layout.NewLoader(dir), LayoutName: "emoji"})

	s.Dispatch(IMUnavailable{})
	assert.Equal(t, []string{"destroy"}, w.calls)
	w.calls = nil

	x, y := keyCenter(t, s, "thumbs")
	s.Dispatch(PointerDown{X: x, Y: y, Time: 1})
	s.Dispatch(PointerUp{Time: 2})
	assert.Empty(t, w.calls)

	// the session never comes back
	activate(s, "", 0, imservice.PurposeNormal)
	assert.False(t, s.Status().Capabilities.InputMethodBound)
	assert.False(t, s.Visible())

	x, y = keyCenter(t, s, "a")
	s.Dispatch(PointerDown{X: x, Y: y, Time: 3})
	s.Dispatch(PointerUp{Time: 4})
	assert.Len(t, w.calls, 2)
}

func TestWideOutputSelectsWideLayout(t *testing.T) {
	s, _ := newSession(t, Options{})

	s.Dispatch(OutputAdded{Output: outputs.Output{ID: 7, Width: 1920, Height: 1080, Scale: 1}})
	assert.Equal(t, "us_wide", s.Layout().Name)
	assert.Equal(t, layout.ArrangementWide, s.State().Arrangement)

	s.Dispatch(OutputAdded{Output: outputs.Output{ID: 8, Width: 720, Height: 1440, Scale: 2}})
	assert.Equal(t, "us", s.Layout().Name)

	s.Dispatch(OutputRemoved{ID: 8})
	assert.Equal(t, "us_wide", s.Layout().Name)
}

func TestLayoutSwitch(t *testing.T) {
	s, _ := newSession(t, Options{})

	ch := make(chan error, 1)
	s.Dispatch(LayoutSwitch{Name: "nope", Reply: ch})
	assert.ErrorIs(t, <-ch, layout.ErrUnknownLayout)
	assert.Equal(t, "us", s.Layout().Name)

	s.Dispatch(LayoutSwitch{Name: "terminal", Reply: ch})
	require.NoError(t, <-ch)
	assert.Equal(t, "terminal", s.Layout().Name)
	assert.Equal(t, "terminal", s.State().LayoutName)
}

func TestVisibilityOverride(t *testing.T) {
	var changes []bool
	s, _ := newSession(t, Options{OnVisibilityChange: func(v bool) { changes = append(changes, v) }})

	s.Dispatch(SetVisibility{Mode: visibility.ForcedVisible})
	assert.True(t, s.Visible())
	activate(s, "", 0, imservice.PurposeNormal)
	s.Dispatch(SetVisibility{Mode: visibility.ForcedHidden})
	assert.False(t, s.Visible())
	s.Dispatch(SetVisibility{Mode: visibility.NotForced})
	assert.True(t, s.Visible())
	assert.Equal(t, []bool{true, false, true}, changes)
}

func TestLoopRequests(t *testing.T) {
	s, w := newSession(t, Options{})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	done := make(chan error, 1)
	loopCtx, stop := context.WithCancel(ctx)
	go func() { done <- s.Loop(loopCtx) }()

	require.NoError(t, s.TapKey(ctx, "Return"))
	assert.ErrorIs(t, s.TapKey(ctx, "missing"), ErrUnknownKey)
	require.NoError(t, s.SwitchLayout(ctx, "number", ""))
	require.NoError(t, s.ForceVisibility(ctx, visibility.ForcedVisible))

	st, err := s.QueryStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, "number", st.Layout)
	assert.Equal(t, "base", st.View)
	assert.True(t, st.Visible)
	assert.Equal(t, "forced_visible", st.Visibility)
	assert.Equal(t, "inactive", st.InputMethod)
	assert.True(t, st.Capabilities.VirtualKeyboard)

	stop()
	require.NoError(t, <-done)
	assert.Contains(t, w.calls, "keymap 0")
}

func TestPostAfterLoopStops(t *testing.T) {
	s, _ := newSession(t, Options{})
	loopCtx, stop := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Loop(loopCtx) }()
	stop()
	require.NoError(t, <-done)

	posted := make(chan struct{})
	go func() {
		im := s.InputMethodEvents()
		out := s.OutputEvents()
		for i := 0; i < 200; i++ {
			im.Activate()
			out.OutputRemoved(uint32(i))
		}
		close(posted)
	}()

	select {
	case <-posted:
	case <-time.After(2 * time.Second):
		t.Fatal("listener callbacks blocked after the loop stopped")
	}
	assert.ErrorIs(t, s.PostContext(context.Background(), IMDone{}), ErrStopped)
}
