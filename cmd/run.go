package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bnema/wayosk/internal/config"
	"github.com/bnema/wayosk/internal/imservice"
	"github.com/bnema/wayosk/internal/ipc"
	"github.com/bnema/wayosk/internal/layout"
	"github.com/bnema/wayosk/internal/logger"
	"github.com/bnema/wayosk/internal/session"
	"github.com/bnema/wayosk/internal/submission"
	"github.com/bnema/wayosk/internal/uinputkbd"
	"github.com/bnema/wayosk/internal/visibility"
	"github.com/bnema/wayosk/internal/wayland"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the keyboard",
	Long: `Connect to the compositor, load the configured layout and serve the
control socket until interrupted.`,
	RunE: runKeyboard,
}

func init() {
	runCmd.Flags().StringP("layout", "l", "", "layout name")
	runCmd.Flags().String("overlay", "", "overlay layout name")
	runCmd.Flags().String("backend", "", "key backend: wayland or uinput")
	runCmd.Flags().Bool("show", false, "keep the panel visible")

	viper.BindPFlag("keyboard.layout", runCmd.Flags().Lookup("layout"))
	viper.BindPFlag("keyboard.overlay", runCmd.Flags().Lookup("overlay"))
	viper.BindPFlag("backend.type", runCmd.Flags().Lookup("backend"))
	viper.BindPFlag("visibility.force_show", runCmd.Flags().Lookup("show"))

	rootCmd.AddCommand(runCmd)
}

// backend is where key events and input-method traffic go.
type backend struct {
	conn        *wayland.Conn
	uinput      *uinputkbd.Keyboard
	keyboard    submission.VirtualKeyboard
	inputMethod imservice.Protocol
}

func openBackend(cfg *config.Config) (*backend, error) {
	switch cfg.Backend.Type {
	case config.BackendUinput:
		kbd, err := uinputkbd.Open(cfg.Backend.UinputPath, "wayosk virtual keyboard")
		if err != nil {
			return nil, err
		}
		return &backend{uinput: kbd, keyboard: kbd}, nil
	default:
		conn, err := wayland.Connect()
		if err != nil {
			return nil, err
		}
		return &backend{
			conn:        conn,
			keyboard:    conn.Keyboard,
			inputMethod: conn.InputMethodProtocol(),
		}, nil
	}
}

func (b *backend) attach(sess *session.Session) {
	if b.conn == nil {
		return
	}
	b.conn.SetInputMethodListener(sess.InputMethodEvents())
	b.conn.SetOutputListener(sess.OutputEvents())
}

// run blocks until ctx ends or the compositor connection fails.
func (b *backend) run(ctx context.Context) error {
	if b.conn == nil {
		<-ctx.Done()
		return nil
	}
	return b.conn.Run(ctx)
}

func (b *backend) Close() error {
	var errs []error
	if b.conn != nil {
		errs = append(errs, b.conn.Close())
	}
	if b.uinput != nil {
		errs = append(errs, b.uinput.Close())
	}
	return errors.Join(errs...)
}

func visibilityMode(cfg *config.Config) visibility.Mode {
	if cfg.Visibility.ForceShow {
		return visibility.ForcedVisible
	}
	return visibility.NotForced
}

func runKeyboard(cmd *cobra.Command, args []string) error {
	cfg := config.Get()
	log := logger.With("run")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b, err := openBackend(cfg)
	if err != nil {
		return fmt.Errorf("failed to open %s backend: %w", cfg.Backend.Type, err)
	}
	defer b.Close()

	sess, err := session.New(session.Options{
		VirtualKeyboard: b.keyboard,
		InputMethod:     b.inputMethod,
		Loader:          layout.NewLoader(cfg.Keyboard.LayoutsDir),
		LayoutName:      cfg.Keyboard.Layout,
		OverlayName:     cfg.Keyboard.Overlay,
		WideThreshold:   float64(cfg.Keyboard.WideThreshold),
		Visibility:      visibilityMode(cfg),
		OnVisibilityChange: func(visible bool) {
			log.Info("Panel visibility changed", "visible", visible)
		},
		OnPreferences: func() {
			log.Info("Preferences requested")
		},
	})
	if err != nil {
		return fmt.Errorf("failed to start keyboard: %w", err)
	}
	b.attach(sess)

	server, err := ipc.NewSocketServer(cfg.IPC.SocketPath, sessionHandler{sess: sess})
	if err != nil {
		return err
	}
	if err := server.Start(); err != nil {
		return err
	}
	defer server.Stop()

	if dir := cfg.Keyboard.LayoutsDir; dir != "" {
		if st, err := os.Stat(dir); err == nil && st.IsDir() {
			go func() {
				err := layout.Watch(ctx, dir, func(name string) {
					log.Info("Layout file changed", "name", name)
					_ = sess.PostContext(ctx, session.LayoutReload{Name: name})
				})
				if err != nil {
					log.Warn("Layout watcher stopped", "err", err)
				}
			}()
		}
	}

	config.Watch(func(old, updated *config.Config) {
		onConfigChange(ctx, sess, old, updated)
	})

	loopCtx, cancelLoop := context.WithCancel(context.Background())
	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		sess.Loop(loopCtx)
	}()

	log.Info("Keyboard running", "layout", cfg.Keyboard.Layout, "backend", cfg.Backend.Type)
	runErr := b.run(ctx)

	// Stop the loop before the backend closes so held keys get released.
	cancelLoop()
	<-loopDone
	log.Info("Keyboard stopped")
	return runErr
}

func onConfigChange(ctx context.Context, sess *session.Session, old, updated *config.Config) {
	if updated.Logging.LogLevel != old.Logging.LogLevel {
		logger.SetLevel(updated.Logging.LogLevel)
	}
	if config.LayoutChanged(old, updated) {
		if err := sess.SwitchLayout(ctx, updated.Keyboard.Layout, updated.Keyboard.Overlay); err != nil {
			logger.Warnf("Cannot apply layout from config: %v", err)
		}
	}
	if updated.Visibility.ForceShow != old.Visibility.ForceShow {
		if err := sess.ForceVisibility(ctx, visibilityMode(updated)); err != nil {
			logger.Warnf("Cannot apply visibility from config: %v", err)
		}
	}
}
