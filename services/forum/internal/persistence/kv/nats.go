package kv

import (
	"context"
	"errors"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/example/learnhub/internal/platform/natsconn"
)

const defaultBucket = "forum"

// NATS stores slots in a JetStream key-value bucket. Only the latest
// revision of a key is kept.
type NATS struct {
	nc *nats.Conn
	kv jetstream.KeyValue
}

func OpenNATS(ctx context.Context, url, bucket string) (*NATS, error) {
	if bucket == "" {
		bucket = defaultBucket
	}
	nc, err := natsconn.Connect(natsconn.Options{URL: url})
	if err != nil {
		return nil, err
	}
	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, err
	}
	kv, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:  bucket,
		History: 1,
	})
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("kv: bucket %s: %w", bucket, err)
	}
	return &NATS{nc: nc, kv: kv}, nil
}

func (s *NATS) Get(ctx context.Context, key string) ([]byte, error) {
	entry, err := s.kv.Get(ctx, key)
	if errors.Is(err, jetstream.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return entry.Value(), nil
}

func (s *NATS) Set(ctx context.Context, key string, value []byte) error {
	if _, err := s.kv.Put(ctx, key, value); err != nil {
		return fmt.Errorf("failed to store key %s: %w", key, err)
	}
	return nil
}

func (s *NATS) Ping(context.Context) error {
	_, err := s.nc.RTT()
	return err
}

func (s *NATS) Close() error {
	return s.nc.Drain()
}
