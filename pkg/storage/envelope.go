package storage

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"time"
)

const envelopeHeaderSize = 20

// ErrCorrupt is returned when a stored envelope fails its integrity check.
var ErrCorrupt = errors.New("corrupt image envelope")

// Envelope wraps a stored image blob with its format and creation time.
type Envelope struct {
	CRC32      uint32 // CRC32 over everything after this field
	FormatSize uint32 // Size of the format name in bytes
	BlobSize   uint32 // Size of the (compressed) blob in bytes
	Timestamp  uint64 // Unix timestamp in nanoseconds
	Format     string // Output format name, e.g. "png"
	Blob       []byte // zstd-compressed image bytes
}

// NewEnvelope creates an envelope stamped with the current time
func NewEnvelope(format string, blob []byte) *Envelope {
	return &Envelope{
		FormatSize: uint32(len(format)),
		BlobSize:   uint32(len(blob)),
		Timestamp:  uint64(time.Now().UnixNano()),
		Format:     format,
		Blob:       blob,
	}
}

// Created returns the envelope timestamp as a time.Time
func (e *Envelope) Created() time.Time {
	return time.Unix(0, int64(e.Timestamp))
}

// Size returns the total size of the envelope when encoded
func (e *Envelope) Size() int {
	return envelopeHeaderSize + len(e.Format) + len(e.Blob)
}

// MarshalBinary serializes the envelope.
// Format: [CRC32(4)][FormatSize(4)][BlobSize(4)][Timestamp(8)][Format][Blob]
func (e *Envelope) MarshalBinary() ([]byte, error) {
	e.CRC32 = e.checksum()

	buf := make([]byte, e.Size())
	binary.LittleEndian.PutUint32(buf[0:], e.CRC32)
	binary.LittleEndian.PutUint32(buf[4:], e.FormatSize)
	binary.LittleEndian.PutUint32(buf[8:], e.BlobSize)
	binary.LittleEndian.PutUint64(buf[12:], e.Timestamp)
	copy(buf[envelopeHeaderSize:], e.Format)
	copy(buf[envelopeHeaderSize+len(e.Format):], e.Blob)

	return buf, nil
}

// UnmarshalBinary deserializes and validates an envelope
func (e *Envelope) UnmarshalBinary(data []byte) error {
	if len(data) < envelopeHeaderSize {
		return fmt.Errorf("%w: data too short for header", ErrCorrupt)
	}

	e.CRC32 = binary.LittleEndian.Uint32(data[0:4])
	e.FormatSize = binary.LittleEndian.Uint32(data[4:8])
	e.BlobSize = binary.LittleEndian.Uint32(data[8:12])
	e.Timestamp = binary.LittleEndian.Uint64(data[12:20])

	want := uint64(envelopeHeaderSize) + uint64(e.FormatSize) + uint64(e.BlobSize)
	if uint64(len(data)) < want {
		return fmt.Errorf("%w: data too short for declared sizes: %d < %d", ErrCorrupt, len(data), want)
	}

	formatEnd := envelopeHeaderSize + int(e.FormatSize)
	e.Format = string(data[envelopeHeaderSize:formatEnd])
	e.Blob = append([]byte(nil), data[formatEnd:formatEnd+int(e.BlobSize)]...)

	if sum := e.checksum(); sum != e.CRC32 {
		return fmt.Errorf("%w: CRC32 mismatch: %d != %d", ErrCorrupt, e.CRC32, sum)
	}
	return nil
}

// checksum computes CRC32 over every field except the CRC itself
func (e *Envelope) checksum() uint32 {
	var hdr [16]byte
	binary.LittleEndian.PutUint32(hdr[0:], e.FormatSize)
	binary.LittleEndian.PutUint32(hdr[4:], e.BlobSize)
	binary.LittleEndian.PutUint64(hdr[8:], e.Timestamp)

	crc := crc32.NewIEEE()
	crc.Write(hdr[:])
	crc.Write([]byte(e.Format))
	crc.Write(e.Blob)
	return crc.Sum32()
}
