package cmd

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/bnema/wayosk/internal/config"
	"github.com/bnema/wayosk/internal/layout"
	"github.com/bnema/wayosk/internal/session"
	"github.com/bnema/wayosk/internal/ui"
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Try a layout in the terminal",
	Long: `Render the active view in the terminal and type on it with the mouse.
No compositor is involved: protocol requests are recorded and applied to a
simulated text field.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Get()
		name, _ := cmd.Flags().GetString("layout")
		if name == "" {
			name = cfg.Keyboard.Layout
		}

		model, err := ui.NewPreview(session.Options{
			Loader:        layout.NewLoader(cfg.Keyboard.LayoutsDir),
			LayoutName:    name,
			OverlayName:   cfg.Keyboard.Overlay,
			WideThreshold: float64(cfg.Keyboard.WideThreshold),
			Visibility:    visibilityMode(cfg),
		})
		if err != nil {
			return err
		}

		p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
		_, err = p.Run()
		return err
	},
}

func init() {
	previewCmd.Flags().StringP("layout", "l", "", "layout name")
	rootCmd.AddCommand(previewCmd)
}
