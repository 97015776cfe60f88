package codec

import (
	"fmt"
	"math/bits"
	"strings"
)

// BytesPerPixel is the number of interleaved channel bytes per pixel.
const BytesPerPixel = 4

// Scan selects which channel bytes of each pixel carry payload bits.
type Scan uint8

// Channel masks, combinable with |.
const (
	ChannelR Scan = 1 << iota
	ChannelG
	ChannelB
	ChannelA

	// DefaultScan writes one bit per pixel into channel 0 (red).
	DefaultScan = ChannelR
)

// BitsPerPixel returns how many payload bits one pixel carries under the scan.
func (s Scan) BitsPerPixel() int {
	return bits.OnesCount8(uint8(s & 0x0F))
}

// Valid reports whether the scan selects at least one channel and nothing else.
func (s Scan) Valid() bool {
	return s != 0 && s&^0x0F == 0
}

// offsets returns the byte offsets within a pixel visited by the scan, ascending.
func (s Scan) offsets() []int {
	offs := make([]int, 0, BytesPerPixel)
	for ch := 0; ch < BytesPerPixel; ch++ {
		if s&(1<<uint(ch)) != 0 {
			offs = append(offs, ch)
		}
	}
	return offs
}

// String renders the scan as channel letters, e.g. "rgb".
func (s Scan) String() string {
	var sb strings.Builder
	for ch, name := range "rgba" {
		if s&(1<<uint(ch)) != 0 {
			sb.WriteRune(name)
		}
	}
	if sb.Len() == 0 {
		return "none"
	}
	return sb.String()
}

// ParseScan parses channel letters such as "r", "rgb" or "RGBA".
func ParseScan(channels string) (Scan, error) {
	var s Scan
	for _, c := range strings.ToLower(strings.TrimSpace(channels)) {
		switch c {
		case 'r':
			s |= ChannelR
		case 'g':
			s |= ChannelG
		case 'b':
			s |= ChannelB
		case 'a':
			s |= ChannelA
		default:
			return 0, fmt.Errorf("%w: unknown channel %q in %q", ErrInvalidScan, c, channels)
		}
	}
	if !s.Valid() {
		return 0, fmt.Errorf("%w: no channels selected", ErrInvalidScan)
	}
	return s, nil
}
