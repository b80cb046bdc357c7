package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bnema/wayosk/internal/config"
	"github.com/bnema/wayosk/internal/logger"
)

var (
	configFile string
	logLevel   string

	rootCmd = &cobra.Command{
		Use:   "wayosk",
		Short: "wayosk - Wayland on-screen keyboard",
		Long: `wayosk is an on-screen keyboard core for Wayland compositors.
It types through the virtual-keyboard protocol or uinput, follows the
input-method protocol to know when a text field wants input, and is
controlled over a local socket.`,
		SilenceUsage:      true,
		PersistentPreRunE: initConfig,
	}
)

// Execute runs the root command
func Execute() error {
	rootCmd.Version = Version
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(`{{with .Name}}{{printf "%s " .}}{{end}}{{printf "version %s\n" .Version}}`)

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default $XDG_CONFIG_HOME/wayosk/wayosk.toml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	viper.BindPFlag("logging.log_level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func initConfig(cmd *cobra.Command, args []string) error {
	if configFile != "" {
		config.SetConfigPath(configFile)
	}
	if err := config.Init(); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if lvl := config.Get().Logging.LogLevel; lvl != "" {
		logger.SetLevel(lvl)
	}
	return nil
}
