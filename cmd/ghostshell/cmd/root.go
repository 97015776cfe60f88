/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/ssargent/ghostshell/pkg/config"
	"github.com/ssargent/ghostshell/pkg/di"
	"github.com/ssargent/ghostshell/pkg/stego"
)

type contextKey string

const (
	configKey contextKey = "config"
	loggerKey contextKey = "logger"
)

var container *di.Container

// SetContainer injects the dependency container used by the commands
func SetContainer(c *di.Container) {
	container = c
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ghostshell",
	Short: "GhostShell - hide text in images",
	Long: `GhostShell hides short text messages in the least significant bits of
lossless raster images (PNG, BMP, TIFF, QOI) and recovers them again.

Each character costs 8 bits and a zero byte terminates the message, so a
W x H image carries floor(W*H/8)-1 characters in the default red channel.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		logger, err := cfg.Logging.NewLogger(cmd.ErrOrStderr())
		if err != nil {
			return err
		}

		// Store in command context
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		ctx = context.WithValue(ctx, configKey, cfg)
		ctx = context.WithValue(ctx, loggerKey, logger)
		cmd.SetContext(ctx)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to config file (default: ~/.config/ghostshell/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringP("data-dir", "d", "", "Data directory for stored images")
}

// configPath resolves the --config flag
func configPath(cmd *cobra.Command) string {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = config.GetDefaultConfigPath()
	}
	return path
}

// loadConfig reads the config file if present and applies global flag overrides
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path := configPath(cmd)

	cfg := config.DefaultConfig()
	if config.ConfigExists(path) {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Logging.Level = level
	}
	if dataDir, _ := cmd.Flags().GetString("data-dir"); dataDir != "" {
		cfg.DataDir = dataDir
	}
	return cfg, nil
}

func configFrom(cmd *cobra.Command) (*config.Config, error) {
	cfg, ok := cmd.Context().Value(configKey).(*config.Config)
	if !ok {
		return nil, errors.New("config not found in context")
	}
	return cfg, nil
}

func loggerFrom(cmd *cobra.Command) *slog.Logger {
	if logger, ok := cmd.Context().Value(loggerKey).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}

// newStegoService builds a service from config, honouring a --channels override
func newStegoService(cmd *cobra.Command) (*stego.Service, error) {
	if container == nil {
		return nil, errors.New("dependency container not initialized")
	}
	cfg, err := configFrom(cmd)
	if err != nil {
		return nil, err
	}

	if cmd.Flags().Lookup("channels") != nil {
		if channels, _ := cmd.Flags().GetString("channels"); channels != "" {
			override := *cfg
			override.Codec.Channels = channels
			cfg = &override
		}
	}

	return container.GetServiceFactory().CreateService(cfg, loggerFrom(cmd))
}
