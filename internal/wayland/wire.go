package wayland

import (
	"encoding/binary"
	"errors"
)

var errShortMessage = errors.New("short wayland message")

// request builds one wire message: sender id, size and opcode, then the
// arguments, all in host byte order and padded to 32 bits.
type request struct {
	buf []byte
}

func newRequest(sender uint32, opcode uint16) *request {
	r := &request{buf: make([]byte, 8, 64)}
	binary.NativeEndian.PutUint32(r.buf[0:4], sender)
	binary.NativeEndian.PutUint32(r.buf[4:8], uint32(opcode))
	return r
}

func (r *request) putUint32(v uint32) *request {
	r.buf = binary.NativeEndian.AppendUint32(r.buf, v)
	return r
}

func (r *request) putInt32(v int32) *request {
	return r.putUint32(uint32(v))
}

// putString writes a NUL terminated string with its length prefix.
func (r *request) putString(s string) *request {
	n := len(s) + 1
	r.putUint32(uint32(n))
	r.buf = append(r.buf, s...)
	r.buf = append(r.buf, make([]byte, paddedLen(n)-len(s))...)
	return r
}

// bytes finalises the size field and returns the message.
func (r *request) bytes() []byte {
	header := binary.NativeEndian.Uint32(r.buf[4:8])
	binary.NativeEndian.PutUint32(r.buf[4:8], uint32(len(r.buf))<<16|header&0xffff)
	return r.buf
}

func paddedLen(n int) int {
	return (n + 3) &^ 3
}

// eventReader decodes the arguments of an incoming event.
type eventReader struct {
	data []byte
	err  error
}

func (e *eventReader) uint32() uint32 {
	if e.err != nil {
		return 0
	}
	if len(e.data) < 4 {
		e.err = errShortMessage
		return 0
	}
	v := binary.NativeEndian.Uint32(e.data[:4])
	e.data = e.data[4:]
	return v
}

func (e *eventReader) string() string {
	n := int(e.uint32())
	if e.err != nil || n == 0 {
		return ""
	}
	padded := paddedLen(n)
	if len(e.data) < padded {
		e.err = errShortMessage
		return ""
	}
	s := string(e.data[:n-1])
	e.data = e.data[padded:]
	return s
}
