/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/ssargent/ghostshell/pkg/config"
)

const serviceName = "ghostshell.service"

var (
	unitPath   = "/etc/systemd/system/" + serviceName
	binaryPath = "/usr/local/bin/ghostshell"

	// runCommand runs a system command; replaced in tests
	runCommand = func(command string, args ...string) error {
		c := exec.Command(command, args...)
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr
		return c.Run()
	}

	errNotRoot = errors.New("this command requires root privileges (sudo)")
)

// serviceCmd represents the service command
var serviceCmd = &cobra.Command{
	Use:   "service",
	Short: "Manage GhostShell as a systemd service",
	Long: `Manage the GhostShell API server as a systemd service.

The service is installed with a restrictive umask, no new privileges and
automatic restart on failure.`,
}

// installServiceCmd represents the service install command
var installServiceCmd = &cobra.Command{
	Use:   "install",
	Short: "Install GhostShell as a systemd service",
	Long: `Install GhostShell as a systemd service.

This will:
- Create or reuse the configuration
- Write the systemd unit file
- Enable and optionally start the service

Examples:
  sudo ghostshell service install
  sudo ghostshell service install --data-dir /var/lib/ghostshell --user ghostshell`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dataDir, _ := cmd.Flags().GetString("data-dir")
		user, _ := cmd.Flags().GetString("user")
		port, _ := cmd.Flags().GetInt("port")
		startNow, _ := cmd.Flags().GetBool("start")
		path := configPath(cmd)

		if os.Geteuid() != 0 {
			return errNotRoot
		}

		cmd.Printf("🔧 Installing GhostShell systemd service...\n")

		var cfg *config.Config
		var err error
		if config.ConfigExists(path) {
			if cfg, err = config.LoadConfig(path); err != nil {
				return err
			}
			cmd.Printf("✅ Loaded existing configuration\n")
		} else {
			if cfg, err = config.BootstrapConfig(path, dataDir); err != nil {
				return err
			}
			cmd.Printf("✅ Created new configuration at %s\n", path)
		}

		if dataDir != "" {
			cfg.DataDir = dataDir
		}
		if cmd.Flags().Changed("port") {
			cfg.Port = port
		}
		if err := config.SaveConfig(cfg, path); err != nil {
			return err
		}

		if err := writeSystemdUnit(cfg, path, user); err != nil {
			return fmt.Errorf("failed to write systemd unit: %w", err)
		}
		if err := runSystemctlCommand("daemon-reload"); err != nil {
			return fmt.Errorf("failed to reload systemd: %w", err)
		}
		if err := runSystemctlCommand("enable", serviceName); err != nil {
			return fmt.Errorf("failed to enable service: %w", err)
		}
		cmd.Printf("✅ Service enabled\n")

		if startNow {
			if err := runSystemctlCommand("start", serviceName); err != nil {
				return fmt.Errorf("failed to start service: %w", err)
			}
			cmd.Printf("✅ Service started\n")
		}

		cmd.Printf("\nService: %s\nConfig: %s\nData: %s\nPort: %d\n", serviceName, path, cfg.DataDir, cfg.Port)
		if !startNow {
			cmd.Printf("\nTo start the service: sudo systemctl start %s\n", serviceName)
		}
		cmd.Printf("To view logs: sudo journalctl -u %s -f\n", serviceName)
		return nil
	},
}

func systemctlCmd(action, short, done string) *cobra.Command {
	return &cobra.Command{
		Use:   action,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := runSystemctlCommand(action, serviceName); err != nil {
				return fmt.Errorf("systemctl %s failed: %w", action, err)
			}
			if done != "" {
				cmd.Printf("✅ %s\n", done)
			}
			return nil
		},
	}
}

// logsCmd represents the service logs command
var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Show GhostShell service logs",
	Long: `Show GhostShell service logs using journalctl.

Examples:
  ghostshell service logs
  ghostshell service logs -f`,
	RunE: func(cmd *cobra.Command, args []string) error {
		follow, _ := cmd.Flags().GetBool("follow")
		lines, _ := cmd.Flags().GetInt("lines")
		return runCommand("journalctl", journalArgs(follow, lines)...)
	},
}

// uninstallCmd represents the service uninstall command
var uninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Uninstall the GhostShell service",
	RunE: func(cmd *cobra.Command, args []string) error {
		if os.Geteuid() != 0 {
			return errNotRoot
		}

		cmd.Printf("🗑️  Uninstalling GhostShell service...\n")
		_ = runSystemctlCommand("stop", serviceName) // Ignore errors if already stopped

		if err := runSystemctlCommand("disable", serviceName); err != nil {
			cmd.Printf("Warning: could not disable service: %v\n", err)
		}
		if err := os.Remove(unitPath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove unit file: %w", err)
		}
		if err := runSystemctlCommand("daemon-reload"); err != nil {
			return fmt.Errorf("failed to reload systemd: %w", err)
		}

		cmd.Printf("✅ GhostShell service uninstalled\n")
		cmd.Printf("Note: configuration and stored images were not removed\n")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serviceCmd)

	serviceCmd.AddCommand(installServiceCmd)
	serviceCmd.AddCommand(systemctlCmd("start", "Start the GhostShell service", "GhostShell service started"))
	serviceCmd.AddCommand(systemctlCmd("stop", "Stop the GhostShell service", "GhostShell service stopped"))
	serviceCmd.AddCommand(systemctlCmd("restart", "Restart the GhostShell service", "GhostShell service restarted"))
	serviceCmd.AddCommand(systemctlCmd("status", "Show GhostShell service status", ""))
	serviceCmd.AddCommand(logsCmd)
	serviceCmd.AddCommand(uninstallCmd)

	installServiceCmd.Flags().String("user", "ghostshell", "User to run the service as")
	installServiceCmd.Flags().Int("port", 8080, "Port for the service")
	installServiceCmd.Flags().Bool("start", true, "Start the service after installation")

	logsCmd.Flags().BoolP("follow", "f", false, "Follow log output")
	logsCmd.Flags().IntP("lines", "n", 0, "Number of lines to show")
}

// renderSystemdUnit returns the unit file for running the server from configPath
func renderSystemdUnit(cfg *config.Config, configPath, user string) string {
	return fmt.Sprintf(`[Unit]
Description=GhostShell steganography API
After=network-online.target
Wants=network-online.target

[Service]
User=%s
Group=%s
ExecStart=%s serve --config %s
Restart=on-failure
NoNewPrivileges=true
UMask=0077
ReadWritePaths=%s
ReadWritePaths=%s

[Install]
WantedBy=multi-user.target
`, user, user, binaryPath, configPath, cfg.DataDir, filepath.Dir(configPath))
}

func writeSystemdUnit(cfg *config.Config, configPath, user string) error {
	return os.WriteFile(unitPath, []byte(renderSystemdUnit(cfg, configPath, user)), 0600)
}

func runSystemctlCommand(args ...string) error {
	return runCommand("systemctl", args...)
}

func journalArgs(follow bool, lines int) []string {
	args := []string{"-u", serviceName}
	if follow {
		args = append(args, "-f")
	}
	if lines > 0 {
		args = append(args, fmt.Sprintf("-n%d", lines))
	}
	return args
}
