/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/ssargent/ghostshell/pkg/config"
)

// upCmd represents the up command
var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Bootstrap and start the GhostShell server",
	Long: `Bootstrap GhostShell by creating a configuration with a generated API key
if none exists, then start the REST API server. This is the recommended way
to get GhostShell running.

Examples:
  ghostshell up
  ghostshell up --data-dir ./mydata --port 9000
  ghostshell up --config ./custom-config.yaml --print-key`,
	RunE: func(cmd *cobra.Command, args []string) error {
		printKey, _ := cmd.Flags().GetBool("print-key")
		path := configPath(cmd)

		cfg, err := configFrom(cmd)
		if err != nil {
			return err
		}

		if config.ConfigExists(path) {
			cmd.Printf("✅ Loaded existing configuration from %s\n", path)
		} else {
			cmd.Printf("🔧 First run detected. Bootstrapping GhostShell...\n")
			boot, err := initializeConfig(path, cfg.DataDir)
			if err != nil {
				return err
			}
			cfg.Security.APIKey = boot.Security.APIKey
			cmd.Printf("✅ Configuration created at %s\n", path)
			if printKey {
				cmd.Printf("\n🔑 API key: %s\n", boot.Security.APIKey)
				cmd.Printf("⚠️  Store this key securely! It is also saved in %s\n", path)
			}
		}

		applyServerFlags(cmd, cfg)
		return runServer(cmd, cfg)
	},
}

func init() {
	rootCmd.AddCommand(upCmd)
	addServerFlags(upCmd)
	upCmd.Flags().Bool("print-key", false, "Print the generated API key to the console")
}
