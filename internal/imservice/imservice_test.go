package imservice

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingProtocol struct {
	calls     []string
	destroyed bool
	fail      error
}

func (p *recordingProtocol) CommitString(text string) error {
	p.calls = append(p.calls, fmt.Sprintf("commit_string(%q)", text))
	return p.fail
}

func (p *recordingProtocol) DeleteSurroundingText(before, after uint32) error {
	p.calls = append(p.calls, fmt.Sprintf("delete_surrounding_text(%d,%d)", before, after))
	return p.fail
}

func (p *recordingProtocol) Commit(serial uint32) error {
	p.calls = append(p.calls, fmt.Sprintf("commit(%d)", serial))
	return p.fail
}

func (p *recordingProtocol) Destroy() {
	p.destroyed = true
}

func newSession(t *testing.T) (*Session, *recordingProtocol, *[]Snapshot) {
	t.Helper()
	proto := &recordingProtocol{}
	var commits []Snapshot
	s := New(proto, func(snap Snapshot) { commits = append(commits, snap) })
	return s, proto, &commits
}

func TestActivationScenario(t *testing.T) {
	s, _, commits := newSession(t)

	s.Activate()
	assert.Equal(t, PhaseActivating, s.Phase())
	s.SurroundingText("hello", 5, 5)
	s.ContentType(0, uint32(PurposeNumber))

	// nothing visible before done
	assert.Equal(t, Snapshot{}, s.Committed())
	assert.False(t, s.IsActive())

	assert.True(t, s.Done())
	got := s.Committed()
	assert.True(t, got.Active)
	assert.Equal(t, uint32(5), got.Cursor)
	assert.Equal(t, PurposeNumber, got.Purpose)
	assert.Equal(t, PhaseActive, s.Phase())
	assert.Equal(t, uint32(1), s.Serial())
	require.Len(t, *commits, 1)
}

func TestDoneCommitsLastPendingValues(t *testing.T) {
	s, _, _ := newSession(t)
	s.Activate()
	s.SurroundingText("a", 1, 1)
	s.SurroundingText("abc", 2, 1)
	s.ContentType(uint32(HintSpellcheck), uint32(PurposeEmail))
	s.ContentType(uint32(HintLatin|HintMultiline), uint32(PurposeURL))
	s.TextChangeCause(uint32(CauseOther))
	s.Done()

	assert.Equal(t, Snapshot{
		Active:          true,
		SurroundingText: "abc",
		Cursor:          2,
		Anchor:          1,
		Hint:            HintLatin | HintMultiline,
		Purpose:         PurposeURL,
		Cause:           CauseOther,
	}, s.Committed())
}

func TestSecondDoneIsNoop(t *testing.T) {
	s, _, commits := newSession(t)
	s.Activate()
	s.SurroundingText("x", 1, 1)
	require.True(t, s.Done())
	before := s.Committed()

	assert.False(t, s.Done())
	assert.Equal(t, before, s.Committed())
	assert.Len(t, *commits, 1)
	// the compositor counts every done, so the serial still follows it
	assert.Equal(t, uint32(2), s.Serial())
}

func TestDeactivate(t *testing.T) {
	s, _, commits := newSession(t)
	s.Activate()
	s.SurroundingText("keep", 4, 4)
	s.Done()

	s.Deactivate()
	assert.Equal(t, PhaseDeactivating, s.Phase())
	assert.True(t, s.IsActive())

	s.Done()
	assert.Equal(t, PhaseInactive, s.Phase())
	assert.False(t, s.IsActive())
	assert.Equal(t, "keep", s.Committed().SurroundingText)
	assert.Len(t, *commits, 2)
}

func TestActivateResetsPending(t *testing.T) {
	s, _, _ := newSession(t)
	s.Activate()
	s.SurroundingText("old", 3, 3)
	s.ContentType(0, uint32(PurposePin))
	s.Done()

	s.Activate()
	s.Done()
	assert.Equal(t, Snapshot{Active: true}, s.Committed())
}

func TestInvalidContentTypeUsesDefaults(t *testing.T) {
	s, _, _ := newSession(t)
	s.Activate()
	s.ContentType(0x10000, 99)
	s.TextChangeCause(7)
	s.Done()

	got := s.Committed()
	assert.Equal(t, HintNone, got.Hint)
	assert.Equal(t, PurposeNormal, got.Purpose)
	assert.Equal(t, CauseInputMethod, got.Cause)
}

func TestCommitRequests(t *testing.T) {
	s, proto, _ := newSession(t)

	assert.ErrorIs(t, s.CommitString("a"), ErrNotActive)
	assert.Empty(t, proto.calls)

	s.Activate()
	s.Done()
	s.Activate()
	s.Done()
	require.NoError(t, s.CommitString("hi"))
	require.NoError(t, s.DeleteSurroundingText(1, 0))
	require.NoError(t, s.Commit())
	assert.Equal(t, []string{
		`commit_string("hi")`,
		"delete_surrounding_text(1,0)",
		"commit(2)",
	}, proto.calls)

	proto.fail = errors.New("broken pipe")
	assert.Error(t, s.Commit())
}

func TestUnavailable(t *testing.T) {
	s, proto, commits := newSession(t)
	s.Activate()
	s.Done()
	require.True(t, s.IsActive())

	s.Unavailable()
	assert.True(t, proto.destroyed)
	assert.False(t, s.Available())
	assert.False(t, s.IsActive())
	assert.Len(t, *commits, 2)

	// later events cannot revive it
	s.Activate()
	s.Done()
	assert.False(t, s.IsActive())
	assert.Equal(t, PhaseInactive, s.Phase())
	assert.ErrorIs(t, s.CommitString("x"), ErrUnavailable)

	s.Unavailable()
	assert.Len(t, *commits, 2)
}

func TestNilProtocol(t *testing.T) {
	s := New(nil, nil)
	s.Activate()
	s.Done()
	assert.False(t, s.Available())
	assert.False(t, s.IsActive())
	assert.ErrorIs(t, s.Commit(), ErrUnavailable)
}

func TestBeforeCursorLength(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		cursor uint32
		anchor uint32
		want   uint32
		ok     bool
	}{
		{"ascii", "hello", 5, 5, 1, true},
		{"two byte", "café", 5, 5, 2, true},
		{"emoji", "a😀", 5, 5, 4, true},
		{"start", "hello", 0, 0, 0, false},
		{"selection", "hello", 5, 2, 0, false},
		{"out of range", "hi", 9, 9, 0, false},
		{"split code point", "é", 1, 1, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _, _ := newSession(t)
			s.Activate()
			s.SurroundingText(tt.text, tt.cursor, tt.anchor)
			s.Done()
			got, ok := s.BeforeCursorLength()
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestContentHintString(t *testing.T) {
	assert.Equal(t, "none", HintNone.String())
	assert.Equal(t, "spellcheck|latin", (HintSpellcheck | HintLatin).String())
	p, ok := ParsePurpose("terminal")
	assert.True(t, ok)
	assert.Equal(t, PurposeTerminal, p)
}
