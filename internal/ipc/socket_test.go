package ipc

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockHandler records control requests.
type MockHandler struct {
	mu         sync.Mutex
	visibility []string
	layouts    [][2]string
	presses    []string
	status     *Status
	err        error
}

func (m *MockHandler) SetVisibility(_ context.Context, mode string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.visibility = append(m.visibility, mode)
	return m.err
}

func (m *MockHandler) Status(context.Context) (*Status, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.status == nil {
		return &Status{Visibility: "auto", Layout: "us", View: "base"}, nil
	}
	return m.status, nil
}

func (m *MockHandler) SetLayout(_ context.Context, name, overlay string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.layouts = append(m.layouts, [2]string{name, overlay})
	return m.err
}

func (m *MockHandler) Press(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.presses = append(m.presses, key)
	return m.err
}

func startServer(t *testing.T, handler MessageHandler) (*SocketServer, *Client) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.sock")
	server, err := NewSocketServer(path, handler)
	require.NoError(t, err)
	require.NoError(t, server.Start())
	t.Cleanup(server.Stop)

	client, err := NewClient(path)
	require.NoError(t, err)
	client.SetTimeout(2 * time.Second)
	return server, client
}

func TestSocketServerStartStop(t *testing.T) {
	server, _ := startServer(t, &MockHandler{})

	_, err := os.Stat(server.SocketPath())
	require.NoError(t, err)

	server.Stop()
	_, err = os.Stat(server.SocketPath())
	assert.True(t, os.IsNotExist(err))

	// Stop twice is harmless
	server.Stop()
}

func TestSocketServerMultipleStarts(t *testing.T) {
	server, _ := startServer(t, &MockHandler{})
	for i := 0; i < 3; i++ {
		require.NoError(t, server.Start())
	}
}

func TestSocketServerCleanupExistingSocket(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.sock")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	server, err := NewSocketServer(path, &MockHandler{})
	require.NoError(t, err)
	require.NoError(t, server.Start())
	server.Stop()
}

func TestClientCommands(t *testing.T) {
	handler := &MockHandler{}
	_, client := startServer(t, handler)

	require.NoError(t, client.Show())
	require.NoError(t, client.Hide())
	require.NoError(t, client.Auto())
	require.NoError(t, client.SetLayout("us", "terminal"))
	require.NoError(t, client.SetLayout("number", ""))
	require.NoError(t, client.Press("BackSpace"))

	handler.mu.Lock()
	defer handler.mu.Unlock()
	assert.Equal(t, []string{CmdShow, CmdHide, CmdAuto}, handler.visibility)
	assert.Equal(t, [][2]string{{"us", "terminal"}, {"number", ""}}, handler.layouts)
	assert.Equal(t, []string{"BackSpace"}, handler.presses)
}

func TestClientStatus(t *testing.T) {
	handler := &MockHandler{status: &Status{
		Visible:    true,
		Visibility: "forced_visible",
		Layout:     "terminal",
		View:       "base",
		Pressed:    []string{},
		Outputs:    []string{"eDP-1"},
	}}
	_, client := startServer(t, handler)

	st, err := client.Status()
	require.NoError(t, err)
	assert.True(t, st.Visible)
	assert.Equal(t, "forced_visible", st.Visibility)
	assert.Equal(t, "terminal", st.Layout)
	assert.Equal(t, []string{"eDP-1"}, st.Outputs)
}

func TestHandlerErrorsReachClient(t *testing.T) {
	handler := &MockHandler{err: errors.New("unknown key")}
	_, client := startServer(t, handler)

	assert.ErrorContains(t, client.Press("nope"), "unknown key")
	_, err := client.Status()
	assert.ErrorContains(t, err, "unknown key")
}

func TestServerValidatesRequests(t *testing.T) {
	_, client := startServer(t, &MockHandler{})

	tests := []struct {
		name string
		cmd  string
		args map[string]string
		want string
	}{
		{name: "unknown command", cmd: "explode", want: "unknown command"},
		{name: "layout without name", cmd: CmdLayout, want: "missing name"},
		{name: "press without key", cmd: CmdPress, want: "missing key"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorContains(t, client.simple(tt.cmd, tt.args), tt.want)
		})
	}
}

func TestClientWithoutServer(t *testing.T) {
	client, err := NewClient(filepath.Join(t.TempDir(), "absent.sock"))
	require.NoError(t, err)
	assert.ErrorContains(t, client.Show(), "is it running")
}

func TestSocketServerStopWithOpenConnection(t *testing.T) {
	server, client := startServer(t, &MockHandler{})
	require.NoError(t, client.Show())

	done := make(chan struct{})
	go func() {
		server.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Error("Stop() took too long")
	}
}

func TestDefaultSocketPath(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", "/run/user/1000")
	path, err := DefaultSocketPath()
	require.NoError(t, err)
	assert.Equal(t, "/run/user/1000/wayosk.sock", path)
}
