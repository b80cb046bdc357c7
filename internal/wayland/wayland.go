// Package wayland connects to the compositor and binds the seat, outputs,
// the virtual keyboard and the input method.
package wayland

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/rajveermalviya/go-wayland/wayland/client"

	"github.com/bnema/wayosk/internal/imservice"
	"github.com/bnema/wayosk/internal/logger"
	"github.com/bnema/wayosk/internal/outputs"
)

var (
	ErrNoSeat            = errors.New("compositor offers no wl_seat")
	ErrNoVirtualKeyboard = errors.New("compositor offers no " + virtualKeyboardManagerInterface)
)

// OutputListener receives output announcements.
type OutputListener interface {
	OutputAdded(o outputs.Output)
	OutputRemoved(id uint32)
}

type global struct {
	name    uint32
	version uint32
}

// Conn is one compositor connection and the objects bound on it.
type Conn struct {
	display  *client.Display
	registry *client.Registry
	seat     *client.Seat

	vkManager *virtualKeyboardManager
	imManager *inputMethodManager

	// Keyboard is always present on a connected Conn.
	Keyboard *VirtualKeyboard
	// InputMethod is nil when the compositor lacks the protocol.
	InputMethod *InputMethod

	writeMu sync.Mutex

	mu             sync.Mutex
	outputs        map[uint32]*outputProxy
	outputListener OutputListener

	log *log.Logger
}

// Connect opens the display named by WAYLAND_DISPLAY and binds every global
// the keyboard needs. A missing seat or virtual keyboard manager is fatal;
// a missing input method is not.
func Connect() (*Conn, error) {
	display, err := client.Connect("")
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Wayland display: %w", err)
	}

	c := &Conn{
		display: display,
		outputs: make(map[uint32]*outputProxy),
		log:     logger.With("wayland"),
	}
	display.SetErrorHandler(func(e client.DisplayErrorEvent) {
		c.log.Error("Protocol error", "code", e.Code, "message", e.Message)
	})

	if err := c.bindGlobals(); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

func (c *Conn) bindGlobals() error {
	registry, err := c.display.GetRegistry()
	if err != nil {
		return fmt.Errorf("failed to get registry: %w", err)
	}
	c.registry = registry

	globals := make(map[string]global)
	var outputGlobals []global
	registry.SetGlobalHandler(func(e client.RegistryGlobalEvent) {
		c.log.Debug("Global", "name", e.Name, "interface", e.Interface, "version", e.Version)
		if e.Interface == "wl_output" {
			if c.seat == nil {
				outputGlobals = append(outputGlobals, global{e.Name, e.Version})
				return
			}
			c.bindOutput(e.Name, e.Version)
			return
		}
		if _, seen := globals[e.Interface]; !seen {
			globals[e.Interface] = global{e.Name, e.Version}
		}
	})
	registry.SetGlobalRemoveHandler(func(e client.RegistryGlobalRemoveEvent) {
		c.removeOutput(e.Name)
	})

	if err := c.roundtrip(); err != nil {
		return err
	}

	seat, ok := globals["wl_seat"]
	if !ok {
		return ErrNoSeat
	}
	c.seat = client.NewSeat(c.display.Context())
	if err := registry.Bind(seat.name, "wl_seat", 1, c.seat); err != nil {
		return fmt.Errorf("bind wl_seat: %w", err)
	}

	vkm, ok := globals[virtualKeyboardManagerInterface]
	if !ok {
		return ErrNoVirtualKeyboard
	}
	c.vkManager = &virtualKeyboardManager{}
	c.display.Context().Register(c.vkManager)
	if err := registry.Bind(vkm.name, virtualKeyboardManagerInterface, 1, c.vkManager); err != nil {
		return fmt.Errorf("bind %s: %w", virtualKeyboardManagerInterface, err)
	}
	if c.Keyboard, err = c.createVirtualKeyboard(); err != nil {
		return err
	}

	if imm, ok := globals[inputMethodManagerInterface]; ok {
		c.imManager = &inputMethodManager{}
		c.display.Context().Register(c.imManager)
		if err := registry.Bind(imm.name, inputMethodManagerInterface, 1, c.imManager); err != nil {
			return fmt.Errorf("bind %s: %w", inputMethodManagerInterface, err)
		}
		if c.InputMethod, err = c.getInputMethod(); err != nil {
			return err
		}
	} else {
		c.log.Warn("Compositor offers no input method, text goes through the virtual keyboard only")
	}

	for _, g := range outputGlobals {
		c.bindOutput(g.name, g.version)
	}
	return c.roundtrip()
}

// roundtrip blocks until the compositor has processed every request so far.
func (c *Conn) roundtrip() error {
	cb, err := c.display.Sync()
	if err != nil {
		return fmt.Errorf("sync: %w", err)
	}
	done := false
	cb.SetDoneHandler(func(client.CallbackDoneEvent) { done = true })
	for !done {
		if err := c.display.Context().Dispatch(); err != nil {
			return fmt.Errorf("dispatch: %w", err)
		}
	}
	return nil
}

// InputMethodProtocol returns the input method as a protocol, or nil when the
// compositor does not offer it.
func (c *Conn) InputMethodProtocol() imservice.Protocol {
	if c.InputMethod == nil {
		return nil
	}
	return c.InputMethod
}

// SetInputMethodListener forwards input method events to l.
func (c *Conn) SetInputMethodListener(l InputMethodListener) {
	if c.InputMethod != nil {
		c.InputMethod.SetListener(l)
	}
}

// SetOutputListener forwards output changes to l, starting with the outputs
// already known.
func (c *Conn) SetOutputListener(l OutputListener) {
	c.mu.Lock()
	c.outputListener = l
	var ready []outputs.Output
	for _, o := range c.outputs {
		if o.complete {
			ready = append(ready, o.info)
		}
	}
	c.mu.Unlock()
	for _, o := range ready {
		l.OutputAdded(o)
	}
}

// Run dispatches compositor events until ctx is cancelled or the connection
// fails. The connection stays open after cancellation so held keys can still
// be released; Close ends the dispatch goroutine.
func (c *Conn) Run(ctx context.Context) error {
	wctx := c.display.Context()
	errc := make(chan error, 1)
	go func() {
		for {
			if err := wctx.Dispatch(); err != nil {
				errc <- err
				return
			}
		}
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-errc:
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("wayland dispatch: %w", err)
	}
}

// Close tears the connection down.
func (c *Conn) Close() error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if c.display == nil {
		return nil
	}
	err := c.display.Context().Close()
	c.display = nil
	return err
}

func (c *Conn) send(msg []byte, oob []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if c.display == nil {
		return errors.New("wayland connection closed")
	}
	return c.display.Context().WriteMsg(msg, oob)
}
