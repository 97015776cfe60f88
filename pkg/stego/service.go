package stego

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/ssargent/ghostshell/pkg/codec"
	"github.com/ssargent/ghostshell/pkg/raster"
)

// EncodeResult is a serialized carrier image with its embedding statistics.
type EncodeResult struct {
	Data     []byte        `json:"-"`
	Format   raster.Format `json:"format"`
	Width    int           `json:"width"`
	Height   int           `json:"height"`
	BitsUsed int           `json:"bits_used"`
	Capacity int           `json:"capacity"`
}

// CapacityReport describes how much text an image can carry.
type CapacityReport struct {
	Format   raster.Format `json:"format"`
	Width    int           `json:"width"`
	Height   int           `json:"height"`
	Scan     string        `json:"scan"`
	Capacity int           `json:"capacity_bits"`
	MaxChars int           `json:"max_chars"`
}

// Service runs encode/decode over serialized images.
type Service struct {
	codec     *codec.Codec
	scan      codec.Scan
	maxPixels int
	logger    *slog.Logger
	locks     *keyedMutex
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithScan sets the channel scan used for every operation.
func WithScan(s codec.Scan) ServiceOption {
	return func(svc *Service) { svc.scan = s }
}

// WithMaxPixels caps the size of accepted source images. Zero disables the cap.
func WithMaxPixels(n int) ServiceOption {
	return func(svc *Service) { svc.maxPixels = n }
}

// WithLogger sets the logger. The payload text itself is never logged.
func WithLogger(l *slog.Logger) ServiceOption {
	return func(svc *Service) { svc.logger = l }
}

// NewService creates a service using the default scan unless configured otherwise.
func NewService(opts ...ServiceOption) (*Service, error) {
	s := &Service{
		scan:   codec.DefaultScan,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		locks:  newKeyedMutex(),
	}
	for _, o := range opts {
		o(s)
	}

	c, err := codec.NewCodec(codec.WithScan(s.scan))
	if err != nil {
		return nil, err
	}
	s.codec = c
	return s, nil
}

// Scan returns the configured channel scan.
func (s *Service) Scan() codec.Scan {
	return s.scan
}

func (s *Service) decode(src []byte) (*raster.Image, raster.Format, error) {
	return raster.DecodeBytes(src, raster.WithMaxPixels(s.maxPixels))
}

// EncodeBytes decodes src, hides text in it and re-serializes it as format.
func (s *Service) EncodeBytes(ctx context.Context, src []byte, text string, format raster.Format) (*EncodeResult, error) {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !format.Lossless() {
		return nil, fmt.Errorf("%w: %q", raster.ErrLossyFormat, format)
	}

	// Frame first so bad text fails before the image is decoded.
	bits, err := codec.Frame(text)
	if err != nil {
		return nil, err
	}

	img, srcFormat, err := s.decode(src)
	if err != nil {
		return nil, err
	}

	pix, err := s.codec.Embed(img.Pix, bits)
	if err != nil {
		return nil, err
	}

	out, err := raster.EncodeBytes(img.WithPix(pix), format)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize %s: %w", format, err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.logger.Debug("payload embedded",
		"source_format", srcFormat,
		"format", format,
		"width", img.Width,
		"height", img.Height,
		"bits", len(bits),
		"capacity", s.codec.Capacity(img.Pix),
		"duration", time.Since(start),
	)

	return &EncodeResult{
		Data:     out,
		Format:   format,
		Width:    img.Width,
		Height:   img.Height,
		BitsUsed: len(bits),
		Capacity: s.codec.Capacity(img.Pix),
	}, nil
}

// DecodeBytes decodes src and extracts its hidden text.
func (s *Service) DecodeBytes(ctx context.Context, src []byte) (DecodeOutcome, error) {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		return DecodeOutcome{}, err
	}

	img, srcFormat, err := s.decode(src)
	if err != nil {
		return DecodeOutcome{}, err
	}

	p := s.codec.Extract(img.Pix)
	if err := ctx.Err(); err != nil {
		return DecodeOutcome{}, err
	}

	s.logger.Debug("payload extracted",
		"format", srcFormat,
		"width", img.Width,
		"height", img.Height,
		"chars", len([]rune(p.Text)),
		"truncated", p.Truncated,
		"duration", time.Since(start),
	)
	if p.Truncated {
		s.logger.Warn("no terminator found; returning best-effort text", "format", srcFormat)
	}

	return DecodeOutcome{Text: p.Text, Truncated: p.Truncated}, nil
}

// Inspect reports the capacity of src without modifying anything.
func (s *Service) Inspect(ctx context.Context, src []byte) (*CapacityReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	img, format, err := s.decode(src)
	if err != nil {
		return nil, err
	}

	return &CapacityReport{
		Format:   format,
		Width:    img.Width,
		Height:   img.Height,
		Scan:     s.scan.String(),
		Capacity: s.codec.Capacity(img.Pix),
		MaxChars: s.codec.MaxChars(img.Pix),
	}, nil
}

// WithImage runs fn while holding the lock for image id, so at most one
// operation is in flight per stored image.
func (s *Service) WithImage(ctx context.Context, id string, fn func(context.Context) error) error {
	unlock, err := s.locks.lock(ctx, id)
	if err != nil {
		return err
	}
	defer unlock()
	return fn(ctx)
}
