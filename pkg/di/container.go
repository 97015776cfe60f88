// Package di provides dependency injection container
package di

import (
	"github.com/ssargent/ghostshell/pkg/api" //nolint:depguard
)

// Container holds all the dependencies for the application
type Container struct {
	serviceFactory api.ServiceFactory
	storeFactory   api.StoreFactory
	serverFactory  api.ServerFactory
}

// NewContainer creates a new dependency injection container
func NewContainer() *Container {
	return &Container{
		serviceFactory: api.NewServiceFactory(),
		storeFactory:   api.NewStoreFactory(),
		serverFactory:  api.NewServerFactory(),
	}
}

// GetServiceFactory returns the stego service factory
func (c *Container) GetServiceFactory() api.ServiceFactory {
	return c.serviceFactory
}

// GetStoreFactory returns the image store factory
func (c *Container) GetStoreFactory() api.StoreFactory {
	return c.storeFactory
}

// GetServerFactory returns the server factory
func (c *Container) GetServerFactory() api.ServerFactory {
	return c.serverFactory
}

// SetServiceFactory allows overriding the service factory (for testing)
func (c *Container) SetServiceFactory(factory api.ServiceFactory) {
	c.serviceFactory = factory
}

// SetStoreFactory allows overriding the store factory (for testing)
func (c *Container) SetStoreFactory(factory api.StoreFactory) {
	c.storeFactory = factory
}

// SetServerFactory allows overriding the server factory (for testing)
func (c *Container) SetServerFactory(factory api.ServerFactory) {
	c.serverFactory = factory
}
