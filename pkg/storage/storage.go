// Package storage keeps encoded carrier images so they can be downloaded later.
package storage

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
	"github.com/klauspost/compress/zstd"
	"github.com/segmentio/ksuid"
)

// ErrNotFound is returned when no image is stored under an ID.
var ErrNotFound = errors.New("image not found")

// StoredImage is an image read back from the store.
type StoredImage struct {
	ID      ksuid.KSUID
	Format  string
	Data    []byte
	Size    int // compressed size on disk
	Created time.Time
}

// ImageStore persists encoded images in pebble, keyed by KSUID.
type ImageStore struct {
	db   *pebble.DB
	enc  *zstd.Encoder
	dec  *zstd.Decoder
	sync bool

	mu     sync.RWMutex
	closed bool
}

// Options configures an ImageStore.
type Options struct {
	// Sync forces an fsync on every write.
	Sync bool
	// InMemory keeps everything in memory; path is ignored.
	InMemory bool
}

var imagePrefix = []byte("img/")

// Open opens (or creates) an image store at path.
func Open(path string, opts Options) (*ImageStore, error) {
	po := &pebble.Options{}
	if opts.InMemory {
		po.FS = vfs.NewMem()
	}

	db, err := pebble.Open(path, po)
	if err != nil {
		return nil, fmt.Errorf("failed to open image store: %w", err)
	}

	enc, err := zstd.NewWriter(nil,
		zstd.WithEncoderConcurrency(1),
		zstd.WithEncoderLevel(zstd.SpeedDefault),
	)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
	if err != nil {
		enc.Close()
		db.Close()
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}

	return &ImageStore{db: db, enc: enc, dec: dec, sync: opts.Sync}, nil
}

func (s *ImageStore) writeOpts() *pebble.WriteOptions {
	if s.sync {
		return pebble.Sync
	}
	return pebble.NoSync
}

// Put stores image bytes and returns their new ID.
func (s *ImageStore) Put(format string, data []byte) (ksuid.KSUID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ksuid.Nil, errors.New("image store is closed")
	}

	id := ksuid.New()
	env := NewEnvelope(format, s.enc.EncodeAll(data, nil))
	value, err := env.MarshalBinary()
	if err != nil {
		return ksuid.Nil, err
	}

	if err := s.db.Set(imageKey(id), value, s.writeOpts()); err != nil {
		return ksuid.Nil, fmt.Errorf("failed to store image: %w", err)
	}
	return id, nil
}

// Get reads an image back by ID.
func (s *ImageStore) Get(id ksuid.KSUID) (*StoredImage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, errors.New("image store is closed")
	}

	value, closer, err := s.db.Get(imageKey(id))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	defer closer.Close()

	var env Envelope
	if err := env.UnmarshalBinary(value); err != nil {
		return nil, err
	}

	data, err := s.dec.DecodeAll(env.Blob, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	return &StoredImage{
		ID:      id,
		Format:  env.Format,
		Data:    data,
		Size:    len(env.Blob),
		Created: env.Created(),
	}, nil
}

// Delete removes an image. Deleting a missing ID returns ErrNotFound.
func (s *ImageStore) Delete(id ksuid.KSUID) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return errors.New("image store is closed")
	}

	key := imageKey(id)
	_, closer, err := s.db.Get(key)
	if errors.Is(err, pebble.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return fmt.Errorf("failed to read image: %w", err)
	}
	closer.Close()

	return s.db.Delete(key, s.writeOpts())
}

// List returns stored image IDs in creation order.
func (s *ImageStore) List() ([]ksuid.KSUID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, errors.New("image store is closed")
	}

	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: imagePrefix,
		UpperBound: []byte("img0"), // '0' follows '/'
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}
	defer iter.Close()

	var ids []ksuid.KSUID
	for iter.First(); iter.Valid(); iter.Next() {
		id, err := ksuid.FromBytes(iter.Key()[len(imagePrefix):])
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, iter.Error()
}

// Prune deletes every image created before the cutoff and returns how many were removed.
func (s *ImageStore) Prune(cutoff time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0, errors.New("image store is closed")
	}

	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: imagePrefix,
		UpperBound: []byte("img0"),
	})
	if err != nil {
		return 0, fmt.Errorf("failed to scan images: %w", err)
	}

	batch := s.db.NewBatch()
	defer batch.Close()

	pruned := 0
	for iter.First(); iter.Valid(); iter.Next() {
		var env Envelope
		if err := env.UnmarshalBinary(iter.Value()); err != nil {
			continue
		}
		if env.Created().Before(cutoff) {
			if err := batch.Delete(iter.Key(), nil); err != nil {
				iter.Close()
				return 0, err
			}
			pruned++
		}
	}
	if err := iter.Close(); err != nil {
		return 0, err
	}

	if pruned == 0 {
		return 0, nil
	}
	if err := batch.Commit(s.writeOpts()); err != nil {
		return 0, fmt.Errorf("failed to prune images: %w", err)
	}
	return pruned, nil
}

// Close flushes and closes the store.
func (s *ImageStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	s.enc.Close()
	s.dec.Close()
	return s.db.Close()
}

func imageKey(id ksuid.KSUID) []byte {
	return append(append([]byte(nil), imagePrefix...), id.Bytes()...)
}
