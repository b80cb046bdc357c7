package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/bnema/wayosk/internal/config"
	"github.com/bnema/wayosk/internal/layout"
	"github.com/bnema/wayosk/internal/ui"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage wayosk configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Get()
		out := cmd.OutOrStdout()

		fmt.Fprintln(out, ui.HeaderStyle.Render("Configuration"))
		fmt.Fprintln(out, ui.FormatField("File", config.GetConfigPath()))
		fmt.Fprintln(out)
		fmt.Fprintln(out, ui.BoldStyle.Render("[keyboard]"))
		fmt.Fprintln(out, ui.FormatField("layout", cfg.Keyboard.Layout))
		fmt.Fprintln(out, ui.FormatField("overlay", cfg.Keyboard.Overlay))
		fmt.Fprintln(out, ui.FormatField("layouts_dir", cfg.Keyboard.LayoutsDir))
		fmt.Fprintln(out, ui.FormatField("wide_threshold", strconv.Itoa(cfg.Keyboard.WideThreshold)))
		fmt.Fprintln(out, ui.BoldStyle.Render("[backend]"))
		fmt.Fprintln(out, ui.FormatField("type", cfg.Backend.Type))
		fmt.Fprintln(out, ui.FormatField("uinput_path", cfg.Backend.UinputPath))
		fmt.Fprintln(out, ui.BoldStyle.Render("[visibility]"))
		fmt.Fprintln(out, ui.FormatField("force_show", strconv.FormatBool(cfg.Visibility.ForceShow)))
		fmt.Fprintln(out, ui.BoldStyle.Render("[ipc]"))
		fmt.Fprintln(out, ui.FormatField("socket_path", cfg.IPC.SocketPath))
		fmt.Fprintln(out, ui.BoldStyle.Render("[logging]"))
		fmt.Fprintln(out, ui.FormatField("log_level", cfg.Logging.LogLevel))
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file path",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), config.GetConfigPath())
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath := config.GetConfigPath()
		force, _ := cmd.Flags().GetBool("force")
		if _, err := os.Stat(configPath); err == nil && !force {
			fmt.Fprintf(cmd.OutOrStdout(), "Configuration file already exists at: %s\nUse --force to overwrite\n", configPath)
			return nil
		}

		c := *config.Get()
		if interactive, _ := cmd.Flags().GetBool("interactive"); interactive {
			if err := configForm(&c).Run(); err != nil {
				return fmt.Errorf("configuration cancelled: %w", err)
			}
		}
		if err := c.Validate(); err != nil {
			return err
		}

		config.Apply(&c)
		if err := config.Save(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Configuration initialized at: %s\n", configPath)
		return nil
	},
}

func configForm(c *config.Config) *huh.Form {
	names := layout.NewLoader(c.Keyboard.LayoutsDir).Names()
	options := make([]huh.Option[string], len(names))
	for i, name := range names {
		options[i] = huh.NewOption(name, name)
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Layout").
				Description("Layout used when the text field does not ask for a special one").
				Options(options...).
				Value(&c.Keyboard.Layout),
			huh.NewSelect[string]().
				Title("Backend").
				Description("How key events reach the system").
				Options(
					huh.NewOption("Wayland virtual keyboard", config.BackendWayland),
					huh.NewOption("uinput (needs access to /dev/uinput)", config.BackendUinput),
				).
				Value(&c.Backend.Type),
			huh.NewConfirm().
				Title("Always show the keyboard?").
				Value(&c.Visibility.ForceShow),
		),
	)
}

func init() {
	configInitCmd.Flags().BoolP("force", "f", false, "overwrite an existing file")
	configInitCmd.Flags().BoolP("interactive", "i", true, "ask for the main settings")
	configCmd.AddCommand(configShowCmd, configPathCmd, configInitCmd)
	rootCmd.AddCommand(configCmd)
}
