package wayland

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestEncoding(t *testing.T) {
	msg := newRequest(5, 3).putUint32(42).bytes()
	require.Len(t, msg, 12)
	assert.Equal(t, uint32(5), binary.NativeEndian.Uint32(msg[0:4]))
	assert.Equal(t, uint32(12<<16|3), binary.NativeEndian.Uint32(msg[4:8]))
	assert.Equal(t, uint32(42), binary.NativeEndian.Uint32(msg[8:12]))
}

func TestStringRoundTrip(t *testing.T) {
	tests := []string{"", "a", "abc", "abcd", "héllo 👍"}
	for _, s := range tests {
		t.Run(s, func(t *testing.T) {
			msg := newRequest(1, 0).putString(s).putUint32(7).bytes()
			assert.Zero(t, len(msg)%4)

			r := &eventReader{data: msg[8:]}
			assert.Equal(t, s, r.string())
			assert.Equal(t, uint32(7), r.uint32())
			assert.NoError(t, r.err)
		})
	}
}

func TestEventReaderShort(t *testing.T) {
	r := &eventReader{data: []byte{1, 0}}
	assert.Zero(t, r.uint32())
	assert.ErrorIs(t, r.err, errShortMessage)

	msg := newRequest(1, 0).putString("hello").bytes()
	r = &eventReader{data: msg[8:14]}
	assert.Empty(t, r.string())
	assert.ErrorIs(t, r.err, errShortMessage)
}
