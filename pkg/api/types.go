package api

import (
	"context"
	"time"

	"github.com/segmentio/ksuid"
	"github.com/ssargent/ghostshell/pkg/raster"
	"github.com/ssargent/ghostshell/pkg/stego"
	"github.com/ssargent/ghostshell/pkg/storage"
)

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// EncodeResponse describes a stored carrier image
type EncodeResponse struct {
	ID       string        `json:"id"`
	URL      string        `json:"url"`
	Format   raster.Format `json:"format"`
	Width    int           `json:"width"`
	Height   int           `json:"height"`
	BitsUsed int           `json:"bits_used"`
	Capacity int           `json:"capacity"`
}

// ImageInfo describes a stored image in listings
type ImageInfo struct {
	ID      string    `json:"id"`
	URL     string    `json:"url"`
	Created time.Time `json:"created"`
}

// ServerConfig holds configuration for the API server
type ServerConfig struct {
	Port           int
	Bind           string
	APIKey         string
	DefaultFormat  raster.Format
	MaxUploadBytes int64         // request body limit; 0 uses the default
	Retention      time.Duration // stored images older than this are pruned; 0 keeps them
}

// IStegoService defines the encode/decode operations the API exposes
type IStegoService interface {
	EncodeBytes(ctx context.Context, src []byte, text string, format raster.Format) (*stego.EncodeResult, error)
	DecodeBytes(ctx context.Context, src []byte) (stego.DecodeOutcome, error)
	Inspect(ctx context.Context, src []byte) (*stego.CapacityReport, error)
	WithImage(ctx context.Context, id string, fn func(context.Context) error) error
}

// IImageStore defines storage for encoded images behind download links
type IImageStore interface {
	Put(format string, data []byte) (ksuid.KSUID, error)
	Get(id ksuid.KSUID) (*storage.StoredImage, error)
	Delete(id ksuid.KSUID) error
	List() ([]ksuid.KSUID, error)
	Prune(cutoff time.Time) (int, error)
}
