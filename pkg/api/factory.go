// Package api provides factory implementations for dependency injection
package api

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ssargent/ghostshell/pkg/codec"
	"github.com/ssargent/ghostshell/pkg/config"
	"github.com/ssargent/ghostshell/pkg/stego"
	"github.com/ssargent/ghostshell/pkg/storage"
)

// DefaultServiceFactory is the default implementation of ServiceFactory
type DefaultServiceFactory struct{}

// NewServiceFactory creates a new service factory
func NewServiceFactory() ServiceFactory {
	return &DefaultServiceFactory{}
}

// CreateService builds a stego service from the codec section of the config
func (f *DefaultServiceFactory) CreateService(cfg *config.Config, logger *slog.Logger) (*stego.Service, error) {
	scan, err := codec.ParseScan(cfg.Codec.Channels)
	if err != nil {
		return nil, fmt.Errorf("invalid codec.channels: %w", err)
	}
	return stego.NewService(
		stego.WithScan(scan),
		stego.WithMaxPixels(cfg.Codec.MaxPixels),
		stego.WithLogger(logger),
	)
}

// DefaultStoreFactory is the default implementation of StoreFactory
type DefaultStoreFactory struct{}

// NewStoreFactory creates a new store factory
func NewStoreFactory() StoreFactory {
	return &DefaultStoreFactory{}
}

// OpenStore opens <data_dir>/images
func (f *DefaultStoreFactory) OpenStore(cfg *config.Config) (*storage.ImageStore, error) {
	if err := os.MkdirAll(cfg.DataDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}
	return storage.Open(filepath.Join(cfg.DataDir, "images"), storage.Options{Sync: cfg.Storage.Sync})
}

// DefaultServerFactory is the default implementation of ServerFactory
type DefaultServerFactory struct{}

// NewServerFactory creates a new server factory
func NewServerFactory() ServerFactory {
	return &DefaultServerFactory{}
}

// CreateServerStarter creates a server starter
func (f *DefaultServerFactory) CreateServerStarter() ServerStarter {
	return &DefaultServerStarter{}
}

// DefaultServerStarter is the default implementation of ServerStarter
type DefaultServerStarter struct{}

// StartServer starts the API server with the given configuration
func (s *DefaultServerStarter) StartServer(
	ctx context.Context,
	svc IStegoService,
	images IImageStore,
	config ServerConfig,
	logger *slog.Logger,
) error {
	return StartServer(ctx, svc, images, config, logger)
}
