// Package api provides interfaces for dependency injection
package api

import (
	"context"
	"log/slog"

	"github.com/ssargent/ghostshell/pkg/config"
	"github.com/ssargent/ghostshell/pkg/stego"
	"github.com/ssargent/ghostshell/pkg/storage"
)

// ServiceFactory creates stego services
type ServiceFactory interface {
	// CreateService builds a service from the codec section of the config
	CreateService(cfg *config.Config, logger *slog.Logger) (*stego.Service, error)
}

// StoreFactory opens image stores
type StoreFactory interface {
	// OpenStore opens the image store under the configured data directory
	OpenStore(cfg *config.Config) (*storage.ImageStore, error)
}

// ServerStarter defines the interface for starting the API server
type ServerStarter interface {
	// StartServer runs the API server until ctx is cancelled
	StartServer(ctx context.Context, svc IStegoService, images IImageStore, config ServerConfig, logger *slog.Logger) error
}

// ServerFactory creates server instances
type ServerFactory interface {
	// CreateServerStarter creates a server starter
	CreateServerStarter() ServerStarter
}
