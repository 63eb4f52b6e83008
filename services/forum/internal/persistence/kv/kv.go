// Package kv provides single-slot key/value backends for the forum blob.
//
// Backend is selected by DSN scheme:
//
//	""           in-memory (development only)
//	file://      one file per key in a directory
//	sqlite://    modernc.org/sqlite database file
//	postgres://  Postgres table forum_kv
//	redis://     Redis string key
//	nats://      NATS JetStream key-value bucket
//	mongodb://   MongoDB collection forum_kv
package kv

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrNotFound is returned by Get when the key holds no value.
var ErrNotFound = errors.New("kv: key not found")

// Store is a synchronous key/value slot store.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

// Pinger is implemented by backends that can report reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Open creates the backend named by dsn. When isProd is true the in-memory
// fallback is refused.
func Open(ctx context.Context, dsn string, isProd bool) (Store, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		if isProd {
			return nil, errors.New("production requires FORUM_STORE_DSN; in-memory store is not allowed")
		}
		return NewMemory(), nil
	}

	u, err := url.Parse(dsn)
	if err != nil || u.Scheme == "" {
		// A bare path means a file store.
		return NewFile(dsn)
	}

	switch u.Scheme {
	case "memory", "mem":
		if isProd {
			return nil, errors.New("in-memory store is not allowed in production")
		}
		return NewMemory(), nil
	case "file":
		return NewFile(filePath(u))
	case "sqlite":
		return OpenSQLite(filePath(u))
	case "postgres", "postgresql":
		return OpenPostgres(ctx, dsn)
	case "redis", "rediss":
		return OpenRedis(ctx, dsn)
	case "nats", "tls":
		server, bucket := natsTarget(u)
		return OpenNATS(ctx, server, bucket)
	case "mongodb", "mongodb+srv":
		return OpenMongo(ctx, dsn)
	default:
		return nil, fmt.Errorf("kv: unsupported scheme %q", u.Scheme)
	}
}

func filePath(u *url.URL) string {
	if u.Opaque != "" {
		return u.Opaque
	}
	return u.Host + u.Path
}

// natsTarget splits a nats DSN into the server URL and the ?bucket= value.
func natsTarget(u *url.URL) (server, bucket string) {
	bucket = u.Query().Get("bucket")
	base := *u
	base.RawQuery = ""
	return base.String(), bucket
}
