package ipc

import (
	"fmt"
	"net"
	"time"

	"github.com/bnema/wayosk/internal/logger"
	"google.golang.org/protobuf/types/known/structpb"
)

// Client talks to a running wayosk instance over its control socket.
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a client for socketPath, or the default path when empty.
func NewClient(socketPath string) (*Client, error) {
	if socketPath == "" {
		p, err := DefaultSocketPath()
		if err != nil {
			return nil, fmt.Errorf("failed to get socket path: %w", err)
		}
		socketPath = p
	}
	return &Client{socketPath: socketPath, timeout: 5 * time.Second}, nil
}

// SetTimeout changes the per-request timeout.
func (c *Client) SetTimeout(d time.Duration) {
	c.timeout = d
}

// Show forces the keyboard visible.
func (c *Client) Show() error { return c.simple(CmdShow, nil) }

// Hide forces the keyboard hidden.
func (c *Client) Hide() error { return c.simple(CmdHide, nil) }

// Auto returns visibility to input-method control.
func (c *Client) Auto() error { return c.simple(CmdAuto, nil) }

// SetLayout switches the user layout and overlay.
func (c *Client) SetLayout(name, overlay string) error {
	args := map[string]string{"name": name}
	if overlay != "" {
		args["overlay"] = overlay
	}
	return c.simple(CmdLayout, args)
}

// Press taps a key of the current layout by id.
func (c *Client) Press(key string) error {
	return c.simple(CmdPress, map[string]string{"key": key})
}

// Status fetches the running keyboard's state.
func (c *Client) Status() (*Status, error) {
	req, err := NewRequest(CmdStatus, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.sendMessage(req)
	if err != nil {
		return nil, err
	}
	return GetStatus(resp)
}

func (c *Client) simple(cmd string, args map[string]string) error {
	req, err := NewRequest(cmd, args)
	if err != nil {
		return err
	}
	resp, err := c.sendMessage(req)
	if err != nil {
		return err
	}
	return ResponseError(resp)
}

func (c *Client) sendMessage(msg *structpb.Struct) (*structpb.Struct, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to wayosk (is it running?): %w", err)
	}
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(c.timeout)); err != nil {
		return nil, fmt.Errorf("failed to set deadline: %w", err)
	}

	logger.Debugf("Sending IPC request %q to %s", Command(msg), c.socketPath)
	if err := writeMessage(conn, msg); err != nil {
		return nil, err
	}
	resp, err := readMessage(conn)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return resp, nil
}
