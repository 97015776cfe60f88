/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/ssargent/ghostshell/pkg/api"
	"github.com/ssargent/ghostshell/pkg/config"
	"github.com/ssargent/ghostshell/pkg/raster"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start the GhostShell REST API server.

Every /api/v1 route requires the X-API-Key header. When no key is
configured a random one is generated for this run and printed.

Examples:
  ghostshell serve
  ghostshell serve --api-key=mysecretkey --port=9000
  ghostshell serve --config ./ghostshell.yaml --bind 0.0.0.0`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := configFrom(cmd)
		if err != nil {
			return err
		}
		applyServerFlags(cmd, cfg)
		return runServer(cmd, cfg)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	addServerFlags(serveCmd)
	serveCmd.Flags().String("api-key", "", "API key for authentication (default: from config)")
}

func addServerFlags(c *cobra.Command) {
	c.Flags().IntP("port", "p", 8080, "Port to listen on")
	c.Flags().String("bind", "127.0.0.1", "Address to bind server to")
}

// applyServerFlags overrides config values with flags that were set explicitly
func applyServerFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("port") {
		cfg.Port, _ = cmd.Flags().GetInt("port")
	}
	if cmd.Flags().Changed("bind") {
		cfg.Bind, _ = cmd.Flags().GetString("bind")
	}
	if cmd.Flags().Lookup("api-key") != nil && cmd.Flags().Changed("api-key") {
		cfg.Security.APIKey, _ = cmd.Flags().GetString("api-key")
	}
}

// runServer opens the image store and runs the API server until interrupted
func runServer(cmd *cobra.Command, cfg *config.Config) error {
	if container == nil {
		return errors.New("dependency container not initialized")
	}
	logger := loggerFrom(cmd)

	format, err := raster.ParseFormat(cfg.Codec.Format)
	if err != nil {
		return fmt.Errorf("invalid codec.format: %w", err)
	}

	apiKey := cfg.Security.APIKey
	if apiKey == "" || apiKey == "auto" {
		apiKey, err = config.GenerateSecureKey(32)
		if err != nil {
			return err
		}
		logger.Warn("no API key configured, generated one for this run")
		fmt.Fprintf(cmd.OutOrStdout(), "🔑 API key for this run: %s\n", apiKey)
	}

	svc, err := newStegoService(cmd)
	if err != nil {
		return err
	}

	images, err := container.GetStoreFactory().OpenStore(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := images.Close(); err != nil {
			logger.Error("failed to close image store", "error", err)
		}
	}()

	cmd.Printf("🚀 Starting GhostShell server on %s:%d\n", cfg.Bind, cfg.Port)
	cmd.Printf("📁 Data directory: %s\n", cfg.DataDir)

	starter := container.GetServerFactory().CreateServerStarter()
	return starter.StartServer(cmd.Context(), svc, images, api.ServerConfig{
		Port:          cfg.Port,
		Bind:          cfg.Bind,
		APIKey:        apiKey,
		DefaultFormat: format,
		Retention:     cfg.Storage.Retention,
	}, logger)
}
