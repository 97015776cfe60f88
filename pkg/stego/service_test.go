package stego

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ssargent/ghostshell/pkg/codec"
	"github.com/ssargent/ghostshell/pkg/raster"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodedCarrier(t *testing.T, w, h int, f raster.Format) []byte {
	t.Helper()
	data, err := raster.EncodeBytes(carrierImage(w, h), f)
	require.NoError(t, err)
	return data
}

func TestService_EncodeDecodeBytes(t *testing.T) {
	svc, err := NewService()
	require.NoError(t, err)
	ctx := context.Background()

	for _, f := range []raster.Format{raster.PNG, raster.BMP, raster.TIFF, raster.QOI} {
		t.Run(string(f), func(t *testing.T) {
			src := encodedCarrier(t, 16, 16, raster.PNG)

			res, err := svc.EncodeBytes(ctx, src, "secret message", f)
			require.NoError(t, err)
			assert.Equal(t, f, res.Format)
			assert.Equal(t, 16, res.Width)
			assert.Equal(t, 120, res.BitsUsed)
			assert.Equal(t, 256, res.Capacity)

			out, err := svc.DecodeBytes(ctx, res.Data)
			require.NoError(t, err)
			assert.Equal(t, "secret message", out.Text)
			assert.False(t, out.Truncated)
		})
	}
}

func translucentCarrier(w, h int) *raster.Image {
	img := carrierImage(w, h)
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = byte(i)
	}
	return img
}

func TestService_EncodeDecodeBytes_Translucent(t *testing.T) {
	svc, err := NewService()
	require.NoError(t, err)
	ctx := context.Background()

	carrier := translucentCarrier(16, 16)
	src, err := raster.EncodeBytes(carrier, raster.PNG)
	require.NoError(t, err)

	for _, f := range []raster.Format{raster.PNG, raster.TIFF} {
		t.Run(string(f), func(t *testing.T) {
			res, err := svc.EncodeBytes(ctx, src, "Hello World, hidden", f)
			require.NoError(t, err)

			out, err := svc.DecodeBytes(ctx, res.Data)
			require.NoError(t, err)
			assert.Equal(t, "Hello World, hidden", out.Text)
			assert.False(t, out.Truncated)

			img, _, err := raster.DecodeBytes(res.Data)
			require.NoError(t, err)
			for i := range carrier.Pix {
				if i%4 != 0 {
					require.Equal(t, carrier.Pix[i], img.Pix[i], "byte %d changed", i)
				}
			}
		})
	}

	for _, f := range []raster.Format{raster.BMP, raster.QOI} {
		t.Run(string(f), func(t *testing.T) {
			res, err := svc.EncodeBytes(ctx, src, "Hello World, hidden", f)
			assert.True(t, errors.Is(err, raster.ErrLossyFormat), "got %v", err)
			assert.Nil(t, res)
		})
	}
}

func TestService_EncodeBytes_Errors(t *testing.T) {
	svc, err := NewService()
	require.NoError(t, err)
	ctx := context.Background()
	src := encodedCarrier(t, 4, 4, raster.PNG)

	_, err = svc.EncodeBytes(ctx, src, "x", raster.Format("jpeg"))
	assert.True(t, errors.Is(err, raster.ErrLossyFormat))

	_, err = svc.EncodeBytes(ctx, []byte("garbage"), "x", raster.PNG)
	assert.True(t, errors.Is(err, raster.ErrSourceDecode))

	_, err = svc.EncodeBytes(ctx, src, "far too long for sixteen pixels", raster.PNG)
	assert.True(t, errors.Is(err, codec.ErrPayloadTooLarge))

	_, err = svc.EncodeBytes(ctx, src, "\x00", raster.PNG)
	assert.True(t, errors.Is(err, codec.ErrCodepointOutOfRange))

	_, err = svc.DecodeBytes(ctx, []byte{})
	assert.True(t, errors.Is(err, raster.ErrSourceDecode))
}

func TestService_Cancelled(t *testing.T) {
	svc, err := NewService()
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := encodedCarrier(t, 4, 4, raster.PNG)

	res, err := svc.EncodeBytes(ctx, src, "x", raster.PNG)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, res)

	_, err = svc.DecodeBytes(ctx, src)
	assert.ErrorIs(t, err, context.Canceled)

	_, err = svc.Inspect(ctx, src)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestService_Inspect(t *testing.T) {
	svc, err := NewService(WithScan(codec.ChannelR | codec.ChannelG))
	require.NoError(t, err)

	report, err := svc.Inspect(context.Background(), encodedCarrier(t, 10, 10, raster.BMP))
	require.NoError(t, err)
	assert.Equal(t, raster.BMP, report.Format)
	assert.Equal(t, "rg", report.Scan)
	assert.Equal(t, 200, report.Capacity)
	assert.Equal(t, 24, report.MaxChars)
}

func TestService_MaxPixels(t *testing.T) {
	svc, err := NewService(WithMaxPixels(50))
	require.NoError(t, err)

	_, err = svc.DecodeBytes(context.Background(), encodedCarrier(t, 10, 10, raster.PNG))
	assert.True(t, errors.Is(err, raster.ErrImageTooLarge))
}

func TestService_InvalidScan(t *testing.T) {
	_, err := NewService(WithScan(0))
	assert.True(t, errors.Is(err, codec.ErrInvalidScan))
}

func TestService_WithImage_Serializes(t *testing.T) {
	svc, err := NewService()
	require.NoError(t, err)
	ctx := context.Background()

	var inFlight, maxInFlight int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := svc.WithImage(ctx, "img-1", func(context.Context) error {
				n := atomic.AddInt32(&inFlight, 1)
				for {
					m := atomic.LoadInt32(&maxInFlight)
					if n <= m || atomic.CompareAndSwapInt32(&maxInFlight, m, n) {
						break
					}
				}
				time.Sleep(2 * time.Millisecond)
				atomic.AddInt32(&inFlight, -1)
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxInFlight)
	assert.Equal(t, 0, svc.locks.size(), "idle keys should be released")
}

func TestService_WithImage_ContextWhileWaiting(t *testing.T) {
	svc, err := NewService()
	require.NoError(t, err)

	held := make(chan struct{})
	release := make(chan struct{})
	go func() {
		_ = svc.WithImage(context.Background(), "busy", func(context.Context) error {
			close(held)
			<-release
			return nil
		})
	}()
	<-held

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err = svc.WithImage(ctx, "busy", func(context.Context) error {
		t.Error("fn must not run without the lock")
		return nil
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(release)

	want := errors.New("boom")
	err = svc.WithImage(context.Background(), "busy", func(context.Context) error { return want })
	assert.ErrorIs(t, err, want)
}
