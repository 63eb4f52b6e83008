package kv

import (
	"context"
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"testing"
)

// exercise runs the shared contract against any backend.
func exercise(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	if _, err := s.Get(ctx, "discussionPosts"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on empty store, got %v", err)
	}
	if err := s.Set(ctx, "discussionPosts", []byte(`[]`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.Set(ctx, "discussionPosts", []byte(`[{"id":"1"}]`)); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	got, err := s.Get(ctx, "discussionPosts")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != `[{"id":"1"}]` {
		t.Fatalf("expected last write to win, got %q", got)
	}
	if _, err := s.Get(ctx, "other"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("keys must be independent, got %v", err)
	}
}

func TestMemory(t *testing.T) {
	exercise(t, NewMemory())
}

func TestMemory_CopiesValues(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	v := []byte("abc")
	_ = m.Set(ctx, "k", v)
	v[0] = 'x'
	got, _ := m.Get(ctx, "k")
	if string(got) != "abc" {
		t.Fatalf("stored value aliased caller slice: %q", got)
	}
}

func TestFile(t *testing.T) {
	s, err := NewFile(filepath.Join(t.TempDir(), "slots"))
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}
	exercise(t, s)

	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected only the slot file, no temp leftovers, got %d entries", len(entries))
	}
}

func TestSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "forum.db")
	s, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	exercise(t, s)
	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	// Reopen and read back.
	s, err = OpenSQLite(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	got, err := s.Get(context.Background(), "discussionPosts")
	if err != nil || string(got) != `[{"id":"1"}]` {
		t.Fatalf("expected value to survive reopen, got %q, %v", got, err)
	}
}

func TestOpen_EmptyDSNFallsBackToMemory(t *testing.T) {
	s, err := Open(context.Background(), "", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := s.(*Memory); !ok {
		t.Fatalf("expected *Memory, got %T", s)
	}
}

func TestOpen_RejectsMemoryInProd(t *testing.T) {
	for _, dsn := range []string{"", "memory://"} {
		s, err := Open(context.Background(), dsn, true)
		if err == nil {
			t.Fatalf("expected error for %q in production, got %T", dsn, s)
		}
	}
}

func TestOpen_FileSchemes(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(context.Background(), "file://"+filepath.Join(dir, "a"), false)
	if err != nil {
		t.Fatalf("file scheme: %v", err)
	}
	if f, ok := s.(*File); !ok || f.Dir != filepath.Join(dir, "a") {
		t.Fatalf("expected *File at %s, got %#v", filepath.Join(dir, "a"), s)
	}

	s, err = Open(context.Background(), filepath.Join(dir, "b"), false)
	if err != nil {
		t.Fatalf("bare path: %v", err)
	}
	if _, ok := s.(*File); !ok {
		t.Fatalf("expected *File for bare path, got %T", s)
	}

	s, err = Open(context.Background(), "sqlite://"+filepath.Join(dir, "c.db"), false)
	if err != nil {
		t.Fatalf("sqlite scheme: %v", err)
	}
	defer s.Close()
	if _, ok := s.(*SQLite); !ok {
		t.Fatalf("expected *SQLite, got %T", s)
	}
}

func TestOpen_UnknownScheme(t *testing.T) {
	if _, err := Open(context.Background(), "ftp://example.com/x", false); err == nil {
		t.Fatal("expected error for unsupported scheme")
	}
}

func TestNATSTarget(t *testing.T) {
	u, err := url.Parse("nats://user:pw@localhost:4222?bucket=forum-prod")
	if err != nil {
		t.Fatal(err)
	}
	server, bucket := natsTarget(u)
	if server != "nats://user:pw@localhost:4222" {
		t.Fatalf("unexpected server %q", server)
	}
	if bucket != "forum-prod" {
		t.Fatalf("unexpected bucket %q", bucket)
	}

	u, _ = url.Parse("nats://localhost:4222")
	if server, bucket = natsTarget(u); server != "nats://localhost:4222" || bucket != "" {
		t.Fatalf("unexpected %q %q", server, bucket)
	}
}

func TestStoreInterface(t *testing.T) {
	var _ Store = (*Memory)(nil)
	var _ Store = (*File)(nil)
	var _ Store = (*SQLite)(nil)
	var _ Store = (*Postgres)(nil)
	var _ Store = (*Redis)(nil)
	var _ Store = (*NATS)(nil)
	var _ Store = (*Mongo)(nil)
	var _ Pinger = (*Postgres)(nil)
	var _ Pinger = (*Redis)(nil)
	var _ Pinger = (*NATS)(nil)
	var _ Pinger = (*Mongo)(nil)
}
