package codec

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	// BitsPerChar is the width of one framed character.
	BitsPerChar = 8

	// TerminatorBits is the width of the all-zero end marker.
	TerminatorBits = 8

	maxCodepoint = 0xFF
)

// BitStream is an ordered sequence of bits, one element per bit, each 0 or 1.
type BitStream []uint8

// FramedLen returns the number of bits Frame produces for a text of n characters.
func FramedLen(n int) int {
	return n*BitsPerChar + TerminatorBits
}

// Frame converts text into a terminated bitstream.
// Format: [char0(8)]...[charN(8)][00000000], most significant bit first.
func Frame(text string) (BitStream, error) {
	bits := make(BitStream, 0, FramedLen(utf8.RuneCountInString(text)))

	pos := 0
	for _, r := range text {
		if r < 1 || r > maxCodepoint {
			return nil, fmt.Errorf("%w: %U at character %d", ErrCodepointOutOfRange, r, pos)
		}
		bits = appendByte(bits, byte(r))
		pos++
	}

	return appendByte(bits, 0), nil
}

// Unframe decodes 8-bit groups back into text. It stops at the first all-zero
// group and reports whether that terminator was found. A trailing group shorter
// than 8 bits is ignored.
func Unframe(bits BitStream) (string, bool) {
	var sb strings.Builder
	sb.Grow(len(bits) / BitsPerChar)

	for i := 0; i+BitsPerChar <= len(bits); i += BitsPerChar {
		c := packByte(bits[i : i+BitsPerChar])
		if c == 0 {
			return sb.String(), true
		}
		sb.WriteRune(rune(c))
	}

	return sb.String(), false
}

// String renders the bitstream as a string of '0' and '1' characters.
func (b BitStream) String() string {
	var sb strings.Builder
	sb.Grow(len(b))
	for _, bit := range b {
		sb.WriteByte('0' + bit&1)
	}
	return sb.String()
}

func appendByte(bits BitStream, c byte) BitStream {
	for shift := 7; shift >= 0; shift-- {
		bits = append(bits, (c>>uint(shift))&1)
	}
	return bits
}

func packByte(group BitStream) byte {
	var c byte
	for _, bit := range group {
		c = c<<1 | bit&1
	}
	return c
}
