package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bnema/wayosk/internal/config"
	"github.com/bnema/wayosk/internal/ipc"
	"github.com/bnema/wayosk/internal/ui"
)

func newClient() (*ipc.Client, error) {
	client, err := ipc.NewClient(config.Get().IPC.SocketPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create IPC client: %w", err)
	}
	return client, nil
}

func visibilityCommand(use, short string, send func(*ipc.Client) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}
			return send(client)
		},
	}
}

var (
	showCmd = visibilityCommand("show", "Force the keyboard visible", (*ipc.Client).Show)
	hideCmd = visibilityCommand("hide", "Force the keyboard hidden", (*ipc.Client).Hide)
	autoCmd = visibilityCommand("auto", "Show the keyboard only while a text field is focused", (*ipc.Client).Auto)
)

var pressCmd = &cobra.Command{
	Use:   "press <key>",
	Short: "Tap a key of the current layout on the running keyboard",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		return client.Press(args[0])
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the state of the running keyboard",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		st, err := client.Status()
		if err != nil {
			return fmt.Errorf("failed to get status: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.RenderStatus(st))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(showCmd, hideCmd, autoCmd, pressCmd, statusCmd)
}
