// Package raster converts between serialized image files and the flat RGBA
// pixel buffers the codec operates on.
//
// Pixel buffers are non-premultiplied (NRGBA), so channel bytes survive a
// decode/encode cycle through any lossless format unchanged.
package raster

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"  // decode only
	_ "image/jpeg" // decode only; never written
	"image/png"
	"io"

	"github.com/xfmoulet/qoi"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp" // decode only
)

var (
	// ErrSourceDecode is returned when input bytes are not a readable raster image.
	ErrSourceDecode = errors.New("source decode failed")

	// ErrImageTooLarge is returned when an image exceeds the configured pixel limit.
	ErrImageTooLarge = errors.New("image too large")
)

// Image is a decoded raster: Width*Height pixels, 4 bytes each, RGBA order.
type Image struct {
	Width  int
	Height int
	Pix    []byte
}

// NewImage allocates a zeroed (transparent black) image.
func NewImage(width, height int) *Image {
	return &Image{Width: width, Height: height, Pix: make([]byte, width*height*4)}
}

// Validate checks the buffer length matches the dimensions.
func (m *Image) Validate() error {
	if m == nil {
		return fmt.Errorf("%w: nil image", ErrSourceDecode)
	}
	if m.Width <= 0 || m.Height <= 0 {
		return fmt.Errorf("%w: invalid dimensions %dx%d", ErrSourceDecode, m.Width, m.Height)
	}
	if len(m.Pix) != m.Width*m.Height*4 {
		return fmt.Errorf("%w: pixel buffer is %d bytes, want %d for %dx%d",
			ErrSourceDecode, len(m.Pix), m.Width*m.Height*4, m.Width, m.Height)
	}
	return nil
}

// WithPix returns a new Image with the same dimensions and the given buffer.
func (m *Image) WithPix(pix []byte) *Image {
	return &Image{Width: m.Width, Height: m.Height, Pix: pix}
}

// NRGBA wraps the buffer as an *image.NRGBA without copying.
func (m *Image) NRGBA() *image.NRGBA {
	return &image.NRGBA{
		Pix:    m.Pix,
		Stride: m.Width * 4,
		Rect:   image.Rect(0, 0, m.Width, m.Height),
	}
}

// FromImage converts any image into a freshly allocated NRGBA buffer.
func FromImage(src image.Image) *Image {
	b := src.Bounds()
	out := NewImage(b.Dx(), b.Dy())

	if n, ok := src.(*image.NRGBA); ok {
		for y := 0; y < out.Height; y++ {
			start := n.PixOffset(b.Min.X, b.Min.Y+y)
			copy(out.Pix[y*out.Width*4:(y+1)*out.Width*4], n.Pix[start:start+out.Width*4])
		}
		return out
	}

	draw.Draw(out.NRGBA(), out.NRGBA().Rect, src, b.Min, draw.Src)
	return out
}

// DecodeOption configures Decode.
type DecodeOption func(*decodeConfig)

type decodeConfig struct {
	maxPixels int
}

// WithMaxPixels rejects images with more than n pixels before decoding pixel data.
// Zero means no limit.
func WithMaxPixels(n int) DecodeOption {
	return func(c *decodeConfig) { c.maxPixels = n }
}

// Decode reads any registered image format into an Image.
func Decode(r io.Reader, opts ...DecodeOption) (*Image, Format, error) {
	var cfg decodeConfig
	for _, o := range opts {
		o(&cfg)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrSourceDecode, err)
	}

	hdr, name, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrSourceDecode, err)
	}
	if cfg.maxPixels > 0 && hdr.Width*hdr.Height > cfg.maxPixels {
		return nil, "", fmt.Errorf("%w: %dx%d exceeds %d pixels",
			ErrImageTooLarge, hdr.Width, hdr.Height, cfg.maxPixels)
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrSourceDecode, err)
	}

	img := FromImage(src)
	if err := img.Validate(); err != nil {
		return nil, "", err
	}
	return img, Format(name), nil
}

// DecodeBytes is Decode over an in-memory buffer.
func DecodeBytes(data []byte, opts ...DecodeOption) (*Image, Format, error) {
	return Decode(bytes.NewReader(data), opts...)
}

// Encode writes img in a lossless format.
func Encode(w io.Writer, img *Image, f Format) error {
	if err := img.Validate(); err != nil {
		return err
	}
	if !f.Lossless() {
		return fmt.Errorf("%w: %q", ErrLossyFormat, f)
	}

	m := img.NRGBA()
	if !f.KeepsAlpha() && !m.Opaque() {
		return fmt.Errorf("%w: %s cannot hold translucent pixels exactly, use png or tiff", ErrLossyFormat, f)
	}
	switch f {
	case PNG:
		enc := png.Encoder{CompressionLevel: png.BestCompression}
		return enc.Encode(w, m)
	case BMP:
		return bmp.Encode(w, m)
	case TIFF:
		return tiff.Encode(w, m, &tiff.Options{Compression: tiff.Deflate})
	case QOI:
		return qoi.Encode(w, m)
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
}

// EncodeBytes is Encode into a new byte slice.
func EncodeBytes(img *Image, f Format) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, img, f); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
