package raster

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

var (
	// ErrLossyFormat is returned when asked to write a format that would destroy LSB data.
	ErrLossyFormat = errors.New("lossy output format")

	// ErrUnsupportedFormat is returned for unknown format names.
	ErrUnsupportedFormat = errors.New("unsupported format")
)

// Format names an image serialization, matching the names image.Decode reports.
type Format string

// Output formats. PNG and TIFF preserve exact 8-bit NRGBA channel values for
// any image; BMP and QOI only for fully opaque images.
const (
	PNG  Format = "png"
	BMP  Format = "bmp"
	TIFF Format = "tiff"
	QOI  Format = "qoi"

	DefaultFormat = PNG
)

var lossy = map[string]bool{
	"jpeg": true,
	"jpg":  true,
	"webp": true,
	"gif":  true, // palette quantization rewrites channel values
}

// Lossless reports whether f can be written without altering pixel bytes.
func (f Format) Lossless() bool {
	switch f {
	case PNG, BMP, TIFF, QOI:
		return true
	}
	return false
}

// KeepsAlpha reports whether f round-trips colour bytes of non-opaque pixels.
// BMP drops alpha and QOI stores premultiplied colour.
func (f Format) KeepsAlpha() bool {
	return f == PNG || f == TIFF
}

// ContentType returns the MIME type for f.
func (f Format) ContentType() string {
	switch f {
	case PNG:
		return "image/png"
	case BMP:
		return "image/bmp"
	case TIFF:
		return "image/tiff"
	case QOI:
		return "image/qoi"
	}
	return "application/octet-stream"
}

// Ext returns the canonical file extension, with the leading dot.
func (f Format) Ext() string {
	if f == TIFF {
		return ".tiff"
	}
	return "." + string(f)
}

// ParseFormat resolves a format name for output, rejecting lossy formats.
// An empty name selects DefaultFormat.
func ParseFormat(name string) (Format, error) {
	n := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(name), "."))
	switch n {
	case "":
		return DefaultFormat, nil
	case "png":
		return PNG, nil
	case "bmp":
		return BMP, nil
	case "tif", "tiff":
		return TIFF, nil
	case "qoi":
		return QOI, nil
	}
	if lossy[n] {
		return "", fmt.Errorf("%w: %q cannot carry LSB data", ErrLossyFormat, name)
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
}

// FormatFromPath picks the output format from a file extension.
func FormatFromPath(path string) (Format, error) {
	ext := filepath.Ext(path)
	if ext == "" {
		return DefaultFormat, nil
	}
	return ParseFormat(ext)
}
