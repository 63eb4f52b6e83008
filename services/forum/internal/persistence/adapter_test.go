package persistence

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/example/learnhub/services/forum/internal/forum"
	"github.com/example/learnhub/services/forum/internal/persistence/kv"
)

type brokenStore struct{ kv.Store }

func (brokenStore) Get(context.Context, string) ([]byte, error) { return nil, errors.New("io error") }
func (brokenStore) Set(context.Context, string, []byte) error   { return errors.New("io error") }
func (brokenStore) Close() error                               { return nil }

func sampleForest() forum.Forest {
	f := forum.CreatePost(nil, "p1", "Welcome", "Say **hi**")
	f = forum.CreatePost(f, "p2", "Homework", "")
	f = forum.AddComment(f, "c1", "p1", "hi")
	f = forum.AddReply(f, "r1", "p1", "c1", "hello")
	f = forum.AddReply(f, "r2", "p1", "r1", "hey")
	f = forum.UpvoteComment(f, "p1", "r2")
	f = forum.DownvotePost(f, "p2")
	return f
}

func TestLoad_AbsentSlotIsEmpty(t *testing.T) {
	a := New(kv.NewMemory(), Options{})
	f, err := a.Load(context.Background())
	require.NoError(t, err)
	require.NotNil(t, f)
	require.Empty(t, f)
}

func TestRoundTrip(t *testing.T) {
	for _, c := range []Compression{CompressionNone, CompressionZstd} {
		t.Run(string(c), func(t *testing.T) {
			a := New(kv.NewMemory(), Options{Compression: c})
			ctx := context.Background()

			want := sampleForest()
			require.NoError(t, a.Save(ctx, want))
			got, err := a.Load(ctx)
			require.NoError(t, err)
			require.Equal(t, want, got)
		})
	}
}

func TestSaveOfLoadIsIdempotent(t *testing.T) {
	slot := kv.NewMemory()
	a := New(slot, Options{})
	ctx := context.Background()
	require.NoError(t, a.Save(ctx, sampleForest()))
	before, _ := slot.Get(ctx, DefaultKey)

	f, err := a.Load(ctx)
	require.NoError(t, err)
	require.NoError(t, a.Save(ctx, f))
	after, _ := slot.Get(ctx, DefaultKey)
	require.Equal(t, string(before), string(after))
}

func TestSave_WritesEmptyListsAsArrays(t *testing.T) {
	slot := kv.NewMemory()
	a := New(slot, Options{Key: "k"})
	ctx := context.Background()
	require.NoError(t, a.Save(ctx, forum.Forest{{ID: "p"}}))

	blob, _ := slot.Get(ctx, "k")
	require.JSONEq(t, `[{"id":"p","title":"","content":"","upvotes":0,"downvotes":0,"comments":[]}]`, string(blob))

	require.NoError(t, a.Save(ctx, nil))
	blob, _ = slot.Get(ctx, "k")
	require.Equal(t, "[]", string(blob))
}

func TestLoad_CompressedSlotReadableWithoutCompression(t *testing.T) {
	slot := kv.NewMemory()
	ctx := context.Background()
	require.NoError(t, New(slot, Options{Compression: CompressionZstd}).Save(ctx, sampleForest()))

	got, err := New(slot, Options{}).Load(ctx)
	require.NoError(t, err)
	require.Equal(t, sampleForest(), got)
}

func TestLoad_MalformedIsDiscarded(t *testing.T) {
	blobs := map[string]string{
		"not json":         `{{{`,
		"object not array": `{"id":"p"}`,
		"null":             `null`,
		"missing fields":   `[{"id":"p"}]`,
		"negative votes":   `[{"id":"p","title":"","content":"","upvotes":-1,"downvotes":0,"comments":[]}]`,
		"fractional votes": `[{"id":"p","title":"","content":"","upvotes":1.5,"downvotes":0,"comments":[]}]`,
		"foreign postId": `[{"id":"p","title":"","content":"","upvotes":0,"downvotes":0,"comments":[
			{"id":"c","postId":"other","text":"","upvotes":0,"downvotes":0,"replies":[]}]}]`,
		"duplicate ids": `[{"id":"p","title":"","content":"","upvotes":0,"downvotes":0,"comments":[]},
			{"id":"p","title":"","content":"","upvotes":0,"downvotes":0,"comments":[]}]`,
		"bad zstd frame": string(append([]byte{0x28, 0xb5, 0x2f, 0xfd}, "garbage"...)),
	}
	for name, blob := range blobs {
		t.Run(name, func(t *testing.T) {
			slot := kv.NewMemory()
			ctx := context.Background()
			require.NoError(t, slot.Set(ctx, DefaultKey, []byte(blob)))

			f, err := New(slot, Options{}).Load(ctx)
			require.ErrorIs(t, err, ErrMalformedData)
			require.NotNil(t, f)
			require.Empty(t, f)
		})
	}
}

func TestStorageUnavailable(t *testing.T) {
	a := New(brokenStore{}, Options{})
	ctx := context.Background()

	f, err := a.Load(ctx)
	require.ErrorIs(t, err, ErrStorageUnavailable)
	require.Empty(t, f)

	require.ErrorIs(t, a.Save(ctx, sampleForest()), ErrStorageUnavailable)
}

func TestStoreWithSQLite_SurvivesRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "forum.db")
	ctx := context.Background()

	slot, err := kv.OpenSQLite(path)
	require.NoError(t, err)
	s := forum.NewStore(ctx, New(slot, Options{}), forum.WithIDGenerator(&forum.CounterGenerator{}))
	post, err := s.CreatePost(ctx, "T", "C")
	require.NoError(t, err)
	c, _, err := s.AddComment(ctx, post.ID, "nice")
	require.NoError(t, err)
	_, _, err = s.AddReply(ctx, post.ID, c.Comment.ID, "thanks")
	require.NoError(t, err)
	want := s.Forest()
	require.NoError(t, slot.Close())

	slot, err = kv.OpenSQLite(path)
	require.NoError(t, err)
	restarted := forum.NewStore(ctx, New(slot, Options{}), forum.WithIDGenerator(forum.NewIDGenerator("counter")))
	require.Equal(t, want, restarted.Forest())

	// New ids after a restart must not reuse stored ones.
	second, err := restarted.CreatePost(ctx, "T2", "C2")
	require.NoError(t, err)
	require.Equal(t, "4", second.ID)
	_, ok, err := restarted.AddComment(ctx, post.ID, "still here")
	require.NoError(t, err)
	require.True(t, ok)
	want = restarted.Forest()
	require.NoError(t, slot.Close())

	slot, err = kv.OpenSQLite(path)
	require.NoError(t, err)
	defer slot.Close()
	loaded, err := New(slot, Options{}).Load(ctx)
	require.NoError(t, err)
	require.Equal(t, want, loaded)
	require.Len(t, loaded, 2)
}

func TestParseCompression(t *testing.T) {
	require.Equal(t, CompressionZstd, ParseCompression("zstd"))
	require.Equal(t, CompressionNone, ParseCompression(""))
	require.Equal(t, CompressionNone, ParseCompression("gzip"))
}

func TestAdapterIsPersister(t *testing.T) {
	var _ forum.Persister = (*Adapter)(nil)
}
