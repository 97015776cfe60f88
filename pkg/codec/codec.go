package codec

import "fmt"

// Payload is the result of extracting text from a pixel buffer.
type Payload struct {
	Text      string
	Truncated bool // no terminator was found before the buffer ran out
}

// Codec embeds and extracts bitstreams under a fixed Scan.
type Codec struct {
	scan    Scan
	offsets []int
}

// Option configures a Codec.
type Option func(*Codec)

// WithScan selects the channels that carry payload bits.
func WithScan(s Scan) Option {
	return func(c *Codec) { c.scan = s }
}

// NewCodec creates a codec. Without options it uses DefaultScan.
func NewCodec(opts ...Option) (*Codec, error) {
	c := &Codec{scan: DefaultScan}
	for _, o := range opts {
		o(c)
	}
	if !c.scan.Valid() {
		return nil, fmt.Errorf("%w: %#x", ErrInvalidScan, uint8(c.scan))
	}
	c.offsets = c.scan.offsets()
	return c, nil
}

var defaultCodec, _ = NewCodec()

// Scan returns the codec's channel selection.
func (c *Codec) Scan() Scan {
	return c.scan
}

// Capacity returns the number of payload bits the buffer can hold.
func (c *Codec) Capacity(pix []byte) int {
	return len(pix) / BytesPerPixel * len(c.offsets)
}

// MaxChars returns the longest text that fits the buffer after framing.
func (c *Codec) MaxChars(pix []byte) int {
	n := (c.Capacity(pix) - TerminatorBits) / BitsPerChar
	if n < 0 {
		return 0
	}
	return n
}

// Embed writes bits into a copy of pix and returns the copy.
// The caller's buffer is never modified.
func (c *Codec) Embed(pix []byte, bits BitStream) ([]byte, error) {
	if err := Validate(len(bits), c.Capacity(pix)); err != nil {
		return nil, err
	}
	for i, bit := range bits {
		if bit > 1 {
			return nil, fmt.Errorf("%w: %d at index %d", ErrInvalidBit, bit, i)
		}
	}

	out := make([]byte, len(pix))
	copy(out, pix)

	per := len(c.offsets)
	for i, bit := range bits {
		idx := (i/per)*BytesPerPixel + c.offsets[i%per]
		out[idx] = out[idx]&0xFE | bit
	}

	return out, nil
}

// EmbedText frames text and embeds it in a copy of pix.
func (c *Codec) EmbedText(pix []byte, text string) ([]byte, error) {
	bits, err := Frame(text)
	if err != nil {
		return nil, err
	}
	return c.Embed(pix, bits)
}

// ExtractBits reads the LSB of every scanned channel byte, in embedding order.
func (c *Codec) ExtractBits(pix []byte) BitStream {
	pixels := len(pix) / BytesPerPixel
	bits := make(BitStream, 0, pixels*len(c.offsets))
	for p := 0; p < pixels; p++ {
		base := p * BytesPerPixel
		for _, off := range c.offsets {
			bits = append(bits, pix[base+off]&1)
		}
	}
	return bits
}

// Extract reads the embedded bitstream and decodes it to text.
func (c *Codec) Extract(pix []byte) Payload {
	text, terminated := Unframe(c.ExtractBits(pix))
	return Payload{Text: text, Truncated: !terminated}
}

// Validate fails with ErrPayloadTooLarge when bitLen exceeds slots.
func Validate(bitLen, slots int) error {
	if bitLen > slots {
		return fmt.Errorf("%w: %d bits > %d available", ErrPayloadTooLarge, bitLen, slots)
	}
	return nil
}

// Capacity returns floor(len(pix)/4), the default-scan bit capacity.
func Capacity(pix []byte) int {
	return defaultCodec.Capacity(pix)
}

// Embed writes bits under the default scan. See (*Codec).Embed.
func Embed(pix []byte, bits BitStream) ([]byte, error) {
	return defaultCodec.Embed(pix, bits)
}

// EmbedText frames and embeds text under the default scan.
func EmbedText(pix []byte, text string) ([]byte, error) {
	return defaultCodec.EmbedText(pix, text)
}

// ExtractBits reads the default-scan bitstream.
func ExtractBits(pix []byte) BitStream {
	return defaultCodec.ExtractBits(pix)
}

// Extract decodes text under the default scan.
func Extract(pix []byte) Payload {
	return defaultCodec.Extract(pix)
}
