// Package persistence stores the whole forum forest as one blob under one
// key. Loads fail open to an empty forest; saves report failures.
package persistence

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/example/learnhub/services/forum/internal/forum"
	"github.com/example/learnhub/services/forum/internal/persistence/kv"
)

// DefaultKey is the slot the forest lives in.
const DefaultKey = "discussionPosts"

var (
	// ErrStorageUnavailable wraps read and write failures of the backend.
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrMalformedData is returned by Load when the stored blob was discarded.
	ErrMalformedData = errors.New("malformed stored data")
)

// Adapter implements forum.Persister on top of a kv.Store.
type Adapter struct {
	slot  kv.Store
	key   string
	codec *Codec
	log   *zap.Logger
}

type Options struct {
	Key         string
	Compression Compression
	Logger      *zap.Logger
}

func New(slot kv.Store, opts Options) *Adapter {
	if opts.Key == "" {
		opts.Key = DefaultKey
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Adapter{
		slot:  slot,
		key:   opts.Key,
		codec: &Codec{Compression: opts.Compression},
		log:   opts.Logger,
	}
}

// Load returns the stored forest. It always returns a usable forest: on a
// missing slot the error is nil, on a failed read or a malformed blob the
// forest is empty and the error says which.
func (a *Adapter) Load(ctx context.Context) (forum.Forest, error) {
	blob, err := a.slot.Get(ctx, a.key)
	if errors.Is(err, kv.ErrNotFound) {
		return forum.Forest{}, nil
	}
	if err != nil {
		return forum.Forest{}, fmt.Errorf("%w: get %s: %v", ErrStorageUnavailable, a.key, err)
	}

	f, err := a.codec.Decode(blob)
	if err != nil {
		a.log.Warn("persistence: discarding stored forest", zap.String("key", a.key),
			zap.Int("bytes", len(blob)), zap.Error(err))
		return forum.Forest{}, fmt.Errorf("%w: %v", ErrMalformedData, err)
	}
	return f, nil
}

// Save overwrites the slot with f.
func (a *Adapter) Save(ctx context.Context, f forum.Forest) error {
	blob, err := a.codec.Encode(f)
	if err != nil {
		return fmt.Errorf("%w: encode: %v", ErrStorageUnavailable, err)
	}
	if err := a.slot.Set(ctx, a.key, blob); err != nil {
		return fmt.Errorf("%w: set %s: %v", ErrStorageUnavailable, a.key, err)
	}
	blobBytes.Observe(float64(len(blob)))
	return nil
}

// Ping reports whether the backend is reachable, for readiness checks.
func (a *Adapter) Ping(ctx context.Context) error {
	if p, ok := a.slot.(kv.Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

// Close releases the backend.
func (a *Adapter) Close() error {
	return a.slot.Close()
}
