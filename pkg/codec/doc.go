// Package codec provides the least-significant-bit (LSB) embedding codec for GhostShell.
//
// The codec hides a short text payload inside the pixel bytes of a lossless raster
// image. It only ever sees raw pixel buffers; decoding and re-serialising image
// files is the job of the raster package.
//
// # Pixel Buffer Layout
//
// A pixel buffer is a flat byte slice of interleaved, non-premultiplied channel
// samples, four bytes per pixel, in row-major order:
//
//	[R0][G0][B0][A0][R1][G1][B1][A1]...
//
// # Bitstream Framing
//
// Text is framed into a bitstream before embedding:
//
//	[char0(8)][char1(8)]...[charN(8)][00000000]
//
// Each character's code point is written as 8 bits, most significant bit first,
// followed by an all-zero terminator byte. Only code points in [1,255] can be
// framed; anything else fails with ErrCodepointOutOfRange. A literal NUL is
// rejected because it is indistinguishable from the terminator.
//
// # Scan Order
//
// One payload bit is written into the least-significant bit of one channel byte.
// The default scan visits the red channel (channel 0) of every pixel in row-major
// order and leaves the other three channels untouched, so the capacity of a
// buffer is floor(len(buffer)/4) bits. A wider Scan (for example ChannelR|ChannelG)
// visits the selected channels of each pixel in ascending channel order. Embedding
// and extraction must use the same Scan.
//
// # Usage
//
//	encoded, err := codec.EmbedText(pixels, "Hello World")
//	if err != nil {
//	    return err // ErrPayloadTooLarge or ErrCodepointOutOfRange
//	}
//
//	payload := codec.Extract(encoded)
//	if payload.Truncated {
//	    // no terminator found; payload.Text is best effort
//	}
//
// # Error Handling
//
// Every input-validation failure is detected before a single byte is written:
//   - ErrCodepointOutOfRange: a character outside [1,255]
//   - ErrPayloadTooLarge: the framed bitstream does not fit the buffer
//   - ErrInvalidBit: a bitstream element other than 0 or 1
//   - ErrInvalidScan: an empty channel mask
//
// A missing terminator on extraction is not an error. It is reported through
// Payload.Truncated together with the text decoded so far.
//
// # Thread Safety
//
// Codec instances are immutable and safe for concurrent use. Embed never mutates
// the caller's buffer; it returns a fresh copy.
//
// # Compatibility
//
// The default scan (channel 0 only, one bit per pixel) is fixed. Images encoded
// with it must keep decoding with every future version of this package.
package codec
