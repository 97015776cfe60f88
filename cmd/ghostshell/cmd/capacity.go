/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

// capacityCmd represents the capacity command
var capacityCmd = &cobra.Command{
	Use:   "capacity",
	Short: "Show how much text an image can hold",
	Long: `Show the embedding capacity of an image.

Examples:
  ghostshell capacity -i cat.png
  ghostshell capacity -i cat.png --channels rgb`,
	RunE: func(cmd *cobra.Command, args []string) error {
		input, _ := cmd.Flags().GetString("input")

		svc, err := newStegoService(cmd)
		if err != nil {
			return err
		}

		src, err := os.ReadFile(filepath.Clean(input))
		if err != nil {
			return fmt.Errorf("failed to read input image: %w", err)
		}

		report, err := svc.Inspect(cmd.Context(), src)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Image:    %s (%dx%d)\n", report.Format, report.Width, report.Height)
		fmt.Fprintf(out, "Channels: %s\n", report.Scan)
		fmt.Fprintf(out, "Capacity: %d bits\n", report.Capacity)
		fmt.Fprintf(out, "Max text: %d characters\n", report.MaxChars)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(capacityCmd)

	capacityCmd.Flags().StringP("input", "i", "", "Image to inspect (required)")
	capacityCmd.Flags().String("channels", "", "Channels to count (default: from config)")
	_ = capacityCmd.MarkFlagRequired("input")
}
