/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/ssargent/ghostshell/pkg/config"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a GhostShell configuration",
	Long: `Create a configuration file with a freshly generated API key and the
data directory used for stored images.

Examples:
  ghostshell init
  ghostshell init --config ./ghostshell.yaml --data-dir ./data --print-key
  ghostshell init --force`,
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")
		printKey, _ := cmd.Flags().GetBool("print-key")
		dataDir, _ := cmd.Flags().GetString("data-dir")
		path := configPath(cmd)

		if config.ConfigExists(path) && !force {
			cmd.Printf("Configuration already exists at %s. Use --force to overwrite.\n", path)
			return nil
		}

		cfg, err := initializeConfig(path, dataDir)
		if err != nil {
			return err
		}

		cmd.Printf("✅ Configuration created at %s\n", path)
		cmd.Printf("Data directory: %s\n", cfg.DataDir)
		if printKey {
			cmd.Printf("API key: %s\n", cfg.Security.APIKey)
		} else {
			cmd.Printf("The API key is stored in %s\n", path)
		}
		cmd.Printf("\nYou can now start the server with:\n")
		cmd.Printf("  ghostshell serve --config %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().Bool("force", false, "Overwrite an existing configuration")
	initCmd.Flags().Bool("print-key", false, "Print the generated API key")
}

// initializeConfig writes a bootstrap config and creates its data directory
func initializeConfig(path, dataDir string) (*config.Config, error) {
	cfg, err := config.BootstrapConfig(path, dataDir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cfg.DataDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return cfg, nil
}
