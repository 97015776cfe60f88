package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ssargent/ghostshell/pkg/codec"
	"github.com/ssargent/ghostshell/pkg/config"
	"github.com/ssargent/ghostshell/pkg/raster"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeCommands(t *testing.T) {
	dirs := newTestDirs(t)
	in := writeCarrier(t, dirs.root, 10, 10, 0x40)
	out := filepath.Join(dirs.root, "secret.png")

	output, err := executeCommand(t, "encode", "--config", dirs.config, "-i", in, "-o", out, "-t", "Hello World")
	require.NoError(t, err, output)
	assert.Contains(t, output, "Encoded 11 characters")
	assert.Contains(t, output, "96/100 bits")
	assert.FileExists(t, out)

	output, err = executeCommand(t, "decode", "--config", dirs.config, "-i", out)
	require.NoError(t, err)
	assert.Equal(t, "Hello World\n", output)
}

func TestEncodeCommand_TextFileAndChannels(t *testing.T) {
	dirs := newTestDirs(t)
	in := writeCarrier(t, dirs.root, 12, 12, 0x00)
	out := filepath.Join(dirs.root, "secret.bmp")
	textFile := filepath.Join(dirs.root, "note.txt")
	require.NoError(t, os.WriteFile(textFile, []byte("multi\nline café"), 0600))

	output, err := executeCommand(t, "encode", "--config", dirs.config,
		"-i", in, "-o", out, "--text-file", textFile, "--channels", "rgb")
	require.NoError(t, err, output)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	_, format, err := raster.DecodeBytes(data)
	require.NoError(t, err)
	assert.Equal(t, raster.BMP, format)

	output, err = executeCommand(t, "decode", "--config", dirs.config, "-i", out, "--channels", "rgb")
	require.NoError(t, err)
	assert.Equal(t, "multi\nline café\n", output)

	// Reading with the wrong scan does not recover the text.
	output, err = executeCommand(t, "decode", "--config", dirs.config, "-i", out)
	require.NoError(t, err)
	assert.NotEqual(t, "multi\nline café\n", output)
}

func TestEncodeCommand_Errors(t *testing.T) {
	dirs := newTestDirs(t)
	in := writeCarrier(t, dirs.root, 10, 10, 0x00)

	testCases := []struct {
		name    string
		args    []string
		wantErr error
	}{
		{
			name:    "payload too large",
			args:    []string{"-o", filepath.Join(dirs.root, "a.png"), "-t", "thirteen char"},
			wantErr: codec.ErrPayloadTooLarge,
		},
		{
			name:    "code point out of range",
			args:    []string{"-o", filepath.Join(dirs.root, "b.png"), "-t", "€"},
			wantErr: codec.ErrCodepointOutOfRange,
		},
		{
			name:    "lossy output",
			args:    []string{"-o", filepath.Join(dirs.root, "c.jpg"), "-t", "hi"},
			wantErr: raster.ErrLossyFormat,
		},
		{
			name:    "lossy format flag",
			args:    []string{"-o", filepath.Join(dirs.root, "d"), "-t", "hi", "--format", "webp"},
			wantErr: raster.ErrLossyFormat,
		},
		{
			name:    "bad channels",
			args:    []string{"-o", filepath.Join(dirs.root, "e.png"), "-t", "hi", "--channels", "rx"},
			wantErr: codec.ErrInvalidScan,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			args := append([]string{"encode", "--config", dirs.config, "-i", in}, tc.args...)
			_, err := executeCommand(t, args...)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.wantErr), "got %v", err)
			assert.NoFileExists(t, tc.args[1])
		})
	}
}

func TestEncodeCommand_TextAndTextFileExclusive(t *testing.T) {
	dirs := newTestDirs(t)
	in := writeCarrier(t, dirs.root, 10, 10, 0x00)

	_, err := executeCommand(t, "encode", "--config", dirs.config, "-i", in,
		"-o", filepath.Join(dirs.root, "out.png"), "-t", "a", "--text-file", in)
	assert.Error(t, err)
}

func TestDecodeCommand_Truncated(t *testing.T) {
	dirs := newTestDirs(t)
	in := writeCarrier(t, dirs.root, 4, 4, 0xFF)

	output, err := executeCommand(t, "decode", "--config", dirs.config, "-i", in)
	require.NoError(t, err)
	assert.Contains(t, output, "ÿÿ\n")
	assert.Contains(t, output, "warning: no terminator found")

	output, err = executeCommand(t, "decode", "--config", dirs.config, "-i", in, "--strict")
	assert.True(t, errors.Is(err, ErrTruncated))
	assert.Contains(t, output, "ÿÿ")
}

func TestDecodeCommand_NotAnImage(t *testing.T) {
	dirs := newTestDirs(t)
	path := filepath.Join(dirs.root, "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("plain text"), 0600))

	_, err := executeCommand(t, "decode", "--config", dirs.config, "-i", path)
	assert.True(t, errors.Is(err, raster.ErrSourceDecode), "got %v", err)
}

func TestCapacityCommand(t *testing.T) {
	dirs := newTestDirs(t)
	in := writeCarrier(t, dirs.root, 10, 10, 0x00)

	output, err := executeCommand(t, "capacity", "--config", dirs.config, "-i", in)
	require.NoError(t, err)
	assert.Contains(t, output, "png (10x10)")
	assert.Contains(t, output, "Channels: r")
	assert.Contains(t, output, "Capacity: 100 bits")
	assert.Contains(t, output, "Max text: 11 characters")

	output, err = executeCommand(t, "capacity", "--config", dirs.config, "-i", in, "--channels", "rgba")
	require.NoError(t, err)
	assert.Contains(t, output, "Capacity: 400 bits")
	assert.Contains(t, output, "Max text: 49 characters")
}

func TestCapacityCommand_ChannelsFromConfig(t *testing.T) {
	dirs := newTestDirs(t)
	in := writeCarrier(t, dirs.root, 10, 10, 0x00)

	cfg := config.DefaultConfig()
	cfg.Codec.Channels = "gb"
	require.NoError(t, config.SaveConfig(cfg, dirs.config))

	output, err := executeCommand(t, "capacity", "--config", dirs.config, "-i", in)
	require.NoError(t, err)
	assert.Contains(t, output, "Channels: gb")
	assert.Contains(t, output, "Capacity: 200 bits")
}

func TestOutputFormat(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Codec.Format = "qoi"

	testCases := []struct {
		name    string
		flag    string
		output  string
		want    raster.Format
		wantErr error
	}{
		{name: "flag wins", flag: "bmp", output: "out.png", want: raster.BMP},
		{name: "extension", output: "out.tif", want: raster.TIFF},
		{name: "config fallback", output: "out", want: raster.QOI},
		{name: "lossy extension", output: "out.jpeg", wantErr: raster.ErrLossyFormat},
		{name: "unknown extension", output: "out.xyz", wantErr: raster.ErrUnsupportedFormat},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := outputFormat(tc.flag, tc.output, cfg)
			if tc.wantErr != nil {
				assert.True(t, errors.Is(err, tc.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}
