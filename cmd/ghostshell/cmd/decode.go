/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

// ErrTruncated is returned by decode --strict when no terminator was found
var ErrTruncated = errors.New("hidden text is truncated: no terminator found")

// decodeCmd represents the decode command
var decodeCmd = &cobra.Command{
	Use:   "decode",
	Short: "Recover hidden text from an image",
	Long: `Recover text hidden by "ghostshell encode".

The text is written to stdout. If the image holds no terminator the text
read so far is still printed and a warning goes to stderr; --strict turns
that case into a failure.

Examples:
  ghostshell decode -i secret.png
  ghostshell decode -i secret.png --strict`,
	RunE: func(cmd *cobra.Command, args []string) error {
		input, _ := cmd.Flags().GetString("input")
		strict, _ := cmd.Flags().GetBool("strict")

		svc, err := newStegoService(cmd)
		if err != nil {
			return err
		}

		src, err := os.ReadFile(filepath.Clean(input))
		if err != nil {
			return fmt.Errorf("failed to read input image: %w", err)
		}

		out, err := svc.DecodeBytes(cmd.Context(), src)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), out.Text)
		if out.Truncated {
			if strict {
				return ErrTruncated
			}
			fmt.Fprintln(cmd.ErrOrStderr(), "warning: no terminator found, text may be incomplete")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(decodeCmd)

	decodeCmd.Flags().StringP("input", "i", "", "Image to read (required)")
	decodeCmd.Flags().Bool("strict", false, "Fail when no terminator is found")
	decodeCmd.Flags().String("channels", "", "Channels the text was embedded into (default: from config)")
	_ = decodeCmd.MarkFlagRequired("input")
}
