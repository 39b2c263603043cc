package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/dragmate/dragmate/internal/config"
	"github.com/dragmate/dragmate/internal/observability"
)

var (
	cfgFile string

	// cfg is populated by PersistentPreRunE and read by subcommands.
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:     "dragmate",
	Short:   "Dragmate attaches drag-and-drop pairing interactions to live pages.",
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := initializeConfig(); err != nil {
			return err
		}

		loaded, err := config.Load(viper.GetViper())
		if err != nil {
			// Fallback logger so the failure itself is reported somewhere.
			observability.Initialize(config.LoggerConfig{Level: "info", Format: "console", ServiceName: "dragmate"})
			return err
		}
		cfg = loaded

		observability.Initialize(cfg.Logger)
		observability.GetLogger().Info("starting dragmate", zap.String("version", Version))
		return nil
	},
}

// Execute runs the root command. It is the program entry point after main.
func Execute() {
	defer observability.Sync()
	if err := rootCmd.Execute(); err != nil {
		if logger := observability.GetLogger(); logger != nil {
			logger.Error("command failed", zap.Error(err))
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ./config.yaml)")
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}

// initializeConfig wires viper: defaults, optional config file, DRAGMATE_ env.
func initializeConfig() error {
	v := viper.GetViper()
	config.SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("DRAGMATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}
	return nil
}
