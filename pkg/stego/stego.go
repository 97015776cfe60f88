// Package stego exposes the encode/decode operations over whole raster images.
//
// Encode and Decode work on decoded pixel buffers. Service adds the byte-level
// boundary used by the CLI and the HTTP API: image decoding, lossless
// re-serialization, cancellation and per-image serialization.
package stego

import (
	"github.com/ssargent/ghostshell/pkg/codec"
	"github.com/ssargent/ghostshell/pkg/raster"
)

// DecodeOutcome is the text recovered from an image.
type DecodeOutcome struct {
	Text      string `json:"text"`
	Truncated bool   `json:"truncated"` // terminator not found; Text is best effort
}

// Encode hides text in a copy of img. The source image is never modified.
func Encode(img *raster.Image, text string, opts ...codec.Option) (*raster.Image, error) {
	if err := img.Validate(); err != nil {
		return nil, err
	}
	c, err := codec.NewCodec(opts...)
	if err != nil {
		return nil, err
	}

	pix, err := c.EmbedText(img.Pix, text)
	if err != nil {
		return nil, err
	}
	return img.WithPix(pix), nil
}

// Decode recovers the text hidden in img.
func Decode(img *raster.Image, opts ...codec.Option) (DecodeOutcome, error) {
	if err := img.Validate(); err != nil {
		return DecodeOutcome{}, err
	}
	c, err := codec.NewCodec(opts...)
	if err != nil {
		return DecodeOutcome{}, err
	}

	p := c.Extract(img.Pix)
	return DecodeOutcome{Text: p.Text, Truncated: p.Truncated}, nil
}
