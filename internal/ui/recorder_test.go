package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/wayosk/internal/keymap"
)

func TestRecorderVirtualKeyboard(t *testing.T) {
	set, err := keymap.Generate([]keymap.KeySym{"a", "space", "U00E9", "BackSpace"})
	require.NoError(t, err)

	r := NewRecorder(4)
	require.NoError(t, r.SetKeymap(set, 0))

	for _, sym := range []keymap.KeySym{"a", "space", "U00E9", "BackSpace"} {
		code, ok := set.Lookup(sym)
		require.True(t, ok)
		require.NoError(t, r.Key(0, code.Code, true))
		require.NoError(t, r.Key(0, code.Code, false))
	}

	assert.Equal(t, "a ", r.Text())
	assert.Len(t, r.Lines(), 4)
	assert.True(t, r.TakeDirty())
	assert.False(t, r.TakeDirty())
}

func TestRecorderInputMethod(t *testing.T) {
	r := NewRecorder(10)

	require.NoError(t, r.CommitString("héllo"))
	assert.Empty(t, r.Text())
	require.NoError(t, r.Commit(1))
	assert.Equal(t, "héllo", r.Text())

	require.NoError(t, r.DeleteSurroundingText(2, 0))
	require.NoError(t, r.CommitString("p"))
	require.NoError(t, r.Commit(2))
	assert.Equal(t, "hélp", r.Text())

	require.NoError(t, r.DeleteSurroundingText(100, 0))
	require.NoError(t, r.Commit(3))
	assert.Empty(t, r.Text())

	r.Destroy()
	assert.Equal(t, "im.destroy", r.Lines()[len(r.Lines())-1])
}
