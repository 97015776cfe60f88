package di

import (
	"context"
	"log/slog"
	"testing"

	"github.com/ssargent/ghostshell/pkg/api"
	"github.com/stretchr/testify/assert"
)

type stubStarter struct{ called bool }

func (s *stubStarter) StartServer(context.Context, api.IStegoService, api.IImageStore, api.ServerConfig, *slog.Logger) error {
	s.called = true
	return nil
}

type stubServerFactory struct{ starter *stubStarter }

func (f *stubServerFactory) CreateServerStarter() api.ServerStarter { return f.starter }

func TestNewContainer(t *testing.T) {
	c := NewContainer()

	assert.IsType(t, &api.DefaultServiceFactory{}, c.GetServiceFactory())
	assert.IsType(t, &api.DefaultStoreFactory{}, c.GetStoreFactory())
	assert.IsType(t, &api.DefaultServerFactory{}, c.GetServerFactory())
}

func TestContainer_Overrides(t *testing.T) {
	c := NewContainer()
	starter := &stubStarter{}
	c.SetServerFactory(&stubServerFactory{starter: starter})

	err := c.GetServerFactory().CreateServerStarter().StartServer(context.Background(), nil, nil, api.ServerConfig{}, nil)
	assert.NoError(t, err)
	assert.True(t, starter.called)
}
