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
	"github.com/ssargent/ghostshell/pkg/config"
	"github.com/ssargent/ghostshell/pkg/raster"
)

// encodeCmd represents the encode command
var encodeCmd = &cobra.Command{
	Use:   "encode",
	Short: "Hide text in an image",
	Long: `Hide text in the least significant bits of an image.

The source may be any readable image (PNG, BMP, TIFF, QOI, GIF, JPEG, WebP);
the output is always written in a lossless format so the hidden bits survive.
Characters must be in the range 1-255.

Examples:
  ghostshell encode -i cat.png -o secret.png -t "meet at noon"
  ghostshell encode -i cat.jpg -o secret.bmp --text-file note.txt
  ghostshell encode -i cat.png -o secret.qoi -t "hello" --channels rgb`,
	RunE: func(cmd *cobra.Command, args []string) error {
		input, _ := cmd.Flags().GetString("input")
		output, _ := cmd.Flags().GetString("output")
		text, _ := cmd.Flags().GetString("text")
		textFile, _ := cmd.Flags().GetString("text-file")
		formatName, _ := cmd.Flags().GetString("format")

		if cmd.Flags().Changed("text") && textFile != "" {
			return errors.New("--text and --text-file are mutually exclusive")
		}
		if textFile != "" {
			data, err := os.ReadFile(filepath.Clean(textFile))
			if err != nil {
				return fmt.Errorf("failed to read text file: %w", err)
			}
			text = string(data)
		}

		cfg, err := configFrom(cmd)
		if err != nil {
			return err
		}
		format, err := outputFormat(formatName, output, cfg)
		if err != nil {
			return err
		}

		svc, err := newStegoService(cmd)
		if err != nil {
			return err
		}

		src, err := os.ReadFile(filepath.Clean(input))
		if err != nil {
			return fmt.Errorf("failed to read input image: %w", err)
		}

		res, err := svc.EncodeBytes(cmd.Context(), src, text, format)
		if err != nil {
			return err
		}

		if err := os.WriteFile(output, res.Data, 0644); err != nil { //nolint:gosec
			return fmt.Errorf("failed to write output image: %w", err)
		}

		cmd.Printf("Encoded %d characters into %s (%s, %d/%d bits)\n",
			len([]rune(text)), output, res.Format, res.BitsUsed, res.Capacity)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(encodeCmd)

	encodeCmd.Flags().StringP("input", "i", "", "Source image (required)")
	encodeCmd.Flags().StringP("output", "o", "", "Destination image (required)")
	encodeCmd.Flags().StringP("text", "t", "", "Text to hide")
	encodeCmd.Flags().String("text-file", "", "Read the text to hide from a file")
	encodeCmd.Flags().String("format", "", "Output format: png, bmp, tiff, qoi (default: from output extension)")
	encodeCmd.Flags().String("channels", "", "Channels to embed into, e.g. r or rgb (default: from config)")
	_ = encodeCmd.MarkFlagRequired("input")
	_ = encodeCmd.MarkFlagRequired("output")
}

// outputFormat picks the format from --format, then the output extension, then config
func outputFormat(flag, output string, cfg *config.Config) (raster.Format, error) {
	if flag != "" {
		return raster.ParseFormat(flag)
	}
	if filepath.Ext(output) != "" {
		return raster.FormatFromPath(output)
	}
	return raster.ParseFormat(cfg.Codec.Format)
}
