package cmd

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/ssargent/ghostshell/pkg/api"
	"github.com/ssargent/ghostshell/pkg/di"
	"github.com/ssargent/ghostshell/pkg/raster"
	"github.com/stretchr/testify/require"
)

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// executeCommand runs the root command with args and returns combined output
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	if container == nil {
		SetContainer(di.NewContainer())
	}
	resetFlags(rootCmd)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)

	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

type testDirs struct {
	root   string
	config string
	data   string
}

func newTestDirs(t *testing.T) testDirs {
	t.Helper()
	root := t.TempDir()
	return testDirs{
		root:   root,
		config: filepath.Join(root, "config.yaml"),
		data:   filepath.Join(root, "data"),
	}
}

// writeCarrier writes a w x h PNG whose red channel is fill everywhere
func writeCarrier(t *testing.T, dir string, w, h int, fill byte) string {
	t.Helper()
	img := raster.NewImage(w, h)
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = fill
		img.Pix[i+1] = byte(i / 4)
		img.Pix[i+2] = 0x7F
		img.Pix[i+3] = 0xFF
	}
	data, err := raster.EncodeBytes(img, raster.PNG)
	require.NoError(t, err)

	path := filepath.Join(dir, "carrier.png")
	require.NoError(t, os.WriteFile(path, data, 0600))
	return path
}

type recordingStarter struct {
	config api.ServerConfig
	calls  int
}

func (s *recordingStarter) StartServer(_ context.Context, _ api.IStegoService, images api.IImageStore, cfg api.ServerConfig, _ *slog.Logger) error {
	s.calls++
	s.config = cfg
	_, err := images.List()
	return err
}

type recordingServerFactory struct{ starter *recordingStarter }

func (f *recordingServerFactory) CreateServerStarter() api.ServerStarter { return f.starter }

// withRecordingServer swaps in a server starter that returns immediately
func withRecordingServer(t *testing.T) *recordingStarter {
	t.Helper()
	c := di.NewContainer()
	starter := &recordingStarter{}
	c.SetServerFactory(&recordingServerFactory{starter: starter})
	SetContainer(c)
	t.Cleanup(func() { SetContainer(di.NewContainer()) })
	return starter
}
