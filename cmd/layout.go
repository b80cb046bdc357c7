package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/bnema/wayosk/internal/config"
	"github.com/bnema/wayosk/internal/layout"
	"github.com/bnema/wayosk/internal/ui"
)

var layoutCmd = &cobra.Command{
	Use:   "layout",
	Short: "Manage keyboard layouts",
}

var layoutSetCmd = &cobra.Command{
	Use:   "set <name>",
	Short: "Switch the running keyboard to a layout",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		overlay, _ := cmd.Flags().GetString("overlay")
		client, err := newClient()
		if err != nil {
			return err
		}
		return client.SetLayout(args[0], overlay)
	},
}

var layoutListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available layouts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Get()
		out := cmd.OutOrStdout()
		for _, name := range layout.NewLoader(cfg.Keyboard.LayoutsDir).Names() {
			fmt.Fprintln(out, ui.FormatIndicator(name == cfg.Keyboard.Layout, name))
		}
		return nil
	},
}

var layoutCheckCmd = &cobra.Command{
	Use:   "check <file>",
	Short: "Validate a layout file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		l, err := layout.ParseFile(args[0])
		if err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), ui.ErrorStyle.Render(ui.IconError)+" "+args[0]+" is invalid")
			return err
		}
		views := make([]string, 0, len(l.Views))
		for name := range l.Views {
			views = append(views, name)
		}
		sort.Strings(views)

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, ui.SuccessStyle.Render(ui.IconSuccess)+" "+l.Name+" is valid")
		fmt.Fprintln(out, ui.FormatField("Views", fmt.Sprint(views)))
		fmt.Fprintln(out, ui.FormatField("Keys", fmt.Sprint(len(l.Keys))))
		fmt.Fprintln(out, ui.FormatField("Keymaps", fmt.Sprint(len(l.Keymaps.Keymaps))))
		size := l.Size()
		fmt.Fprintln(out, ui.FormatField("Size", fmt.Sprintf("%.0fx%.0f", size.Width, size.Height)))
		return nil
	},
}

func init() {
	layoutSetCmd.Flags().String("overlay", "", "overlay layout name")
	layoutCmd.AddCommand(layoutSetCmd, layoutListCmd, layoutCheckCmd)
	rootCmd.AddCommand(layoutCmd)
}
