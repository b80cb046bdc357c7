package wayland

import (
	"fmt"
	"sync"

	"github.com/rajveermalviya/go-wayland/wayland/client"
)

const (
	inputMethodManagerInterface = "zwp_input_method_manager_v2"
	inputMethodInterface        = "zwp_input_method_v2"
)

// zwp_input_method_manager_v2 requests.
const opGetInputMethod = 0

// zwp_input_method_v2 requests.
const (
	opIMCommitString          = 0
	opIMDeleteSurroundingText = 2
	opIMCommit                = 3
	opIMDestroy               = 6
)

// zwp_input_method_v2 events.
const (
	evIMActivate        = 0
	evIMDeactivate      = 1
	evIMSurroundingText = 2
	evIMTextChangeCause = 3
	evIMContentType     = 4
	evIMDone            = 5
	evIMUnavailable     = 6
)

// InputMethodListener receives zwp_input_method_v2 events.
type InputMethodListener interface {
	Activate()
	Deactivate()
	SurroundingText(text string, cursor, anchor uint32)
	TextChangeCause(cause uint32)
	ContentType(hint, purpose uint32)
	Done()
	Unavailable()
}

type inputMethodManager struct {
	client.BaseProxy
}

func (m *inputMethodManager) Dispatch(uint32, int, []byte) {}

// InputMethod is the zwp_input_method_v2 object of the seat.
type InputMethod struct {
	client.BaseProxy
	conn *Conn

	mu        sync.Mutex
	listener  InputMethodListener
	destroyed bool
}

func (c *Conn) getInputMethod() (*InputMethod, error) {
	ctx := c.display.Context()
	im := &InputMethod{conn: c}
	im.SetContext(ctx)
	ctx.Register(im)

	msg := newRequest(c.imManager.ID(), opGetInputMethod).
		putUint32(c.seat.ID()).
		putUint32(im.ID()).
		bytes()
	if err := c.send(msg, nil); err != nil {
		ctx.Unregister(im)
		return nil, fmt.Errorf("get input method: %w", err)
	}
	return im, nil
}

// SetListener installs the event receiver.
func (im *InputMethod) SetListener(l InputMethodListener) {
	im.mu.Lock()
	im.listener = l
	im.mu.Unlock()
}

// Dispatch decodes one event and forwards it to the listener.
func (im *InputMethod) Dispatch(opcode uint32, _ int, data []byte) {
	im.mu.Lock()
	l, destroyed := im.listener, im.destroyed
	im.mu.Unlock()
	if l == nil || destroyed {
		return
	}

	r := &eventReader{data: data}
	switch opcode {
	case evIMActivate:
		l.Activate()
	case evIMDeactivate:
		l.Deactivate()
	case evIMSurroundingText:
		text, cursor, anchor := r.string(), r.uint32(), r.uint32()
		if r.err == nil {
			l.SurroundingText(text, cursor, anchor)
		}
	case evIMTextChangeCause:
		if cause := r.uint32(); r.err == nil {
			l.TextChangeCause(cause)
		}
	case evIMContentType:
		hint, purpose := r.uint32(), r.uint32()
		if r.err == nil {
			l.ContentType(hint, purpose)
		}
	case evIMDone:
		l.Done()
	case evIMUnavailable:
		l.Unavailable()
	}
	if r.err != nil {
		im.conn.log.Warn("Malformed input method event", "opcode", opcode, "err", r.err)
	}
}

// CommitString queues text for the focused field.
func (im *InputMethod) CommitString(text string) error {
	return im.request(newRequest(im.ID(), opIMCommitString).putString(text))
}

// DeleteSurroundingText queues a deletion around the cursor, in bytes.
func (im *InputMethod) DeleteSurroundingText(before, after uint32) error {
	return im.request(newRequest(im.ID(), opIMDeleteSurroundingText).putUint32(before).putUint32(after))
}

// Commit applies queued requests for the given serial.
func (im *InputMethod) Commit(serial uint32) error {
	return im.request(newRequest(im.ID(), opIMCommit).putUint32(serial))
}

// Destroy sends the destructor. Late events for the object are dropped.
func (im *InputMethod) Destroy() {
	im.mu.Lock()
	if im.destroyed {
		im.mu.Unlock()
		return
	}
	im.destroyed = true
	im.mu.Unlock()
	if err := im.conn.send(newRequest(im.ID(), opIMDestroy).bytes(), nil); err != nil {
		im.conn.log.Warn("Destroying input method failed", "err", err)
	}
}

func (im *InputMethod) request(r *request) error {
	im.mu.Lock()
	destroyed := im.destroyed
	im.mu.Unlock()
	if destroyed {
		return fmt.Errorf("input method destroyed")
	}
	return im.conn.send(r.bytes(), nil)
}
