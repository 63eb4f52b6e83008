package forum

import (
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// IDGenerator hands out ids that are unique across posts and comments.
type IDGenerator interface {
	NewID() string
}

// UUIDGenerator produces random v4 UUIDs.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID() string { return uuid.NewString() }

// Seeder is implemented by generators whose ids are derived from a sequence
// that restarts with the process. Seed moves the sequence past every id
// already present in f.
type Seeder interface {
	Seed(f Forest)
}

// CounterGenerator produces Prefix1, Prefix2, ... Safe for concurrent use.
type CounterGenerator struct {
	Prefix string
	n      atomic.Uint64
}

func (g *CounterGenerator) NewID() string {
	return g.Prefix + strconv.FormatUint(g.n.Add(1), 10)
}

// Seed raises the counter to the largest Prefix<n> id in f.
func (g *CounterGenerator) Seed(f Forest) {
	eachID(f, func(id string) {
		rest, ok := strings.CutPrefix(id, g.Prefix)
		if !ok {
			return
		}
		n, err := strconv.ParseUint(rest, 10, 64)
		if err != nil {
			return
		}
		for {
			cur := g.n.Load()
			if n <= cur || g.n.CompareAndSwap(cur, n) {
				return
			}
		}
	})
}

// TimestampGenerator produces Unix-millisecond ids. Two calls within the same
// millisecond get consecutive values, so ids never repeat within a process.
type TimestampGenerator struct {
	Now func() time.Time

	mu   sync.Mutex
	last int64
}

func (g *TimestampGenerator) NewID() string {
	now := time.Now
	if g.Now != nil {
		now = g.Now
	}
	ms := now().UnixMilli()

	g.mu.Lock()
	defer g.mu.Unlock()
	if ms <= g.last {
		ms = g.last + 1
	}
	g.last = ms
	return strconv.FormatInt(ms, 10)
}

// Seed makes later ids larger than every numeric id in f, so a clock that
// stepped back across a restart cannot reissue a stored id.
func (g *TimestampGenerator) Seed(f Forest) {
	g.mu.Lock()
	defer g.mu.Unlock()
	eachID(f, func(id string) {
		if ms, err := strconv.ParseInt(id, 10, 64); err == nil && ms > g.last {
			g.last = ms
		}
	})
}

func eachID(f Forest, fn func(string)) {
	var comments func([]Comment)
	comments = func(nodes []Comment) {
		for _, c := range nodes {
			fn(c.ID)
			comments(c.Replies)
		}
	}
	for _, p := range f {
		fn(p.ID)
		comments(p.Comments)
	}
}

// NewIDGenerator maps a strategy name to a generator. Unknown names get UUIDs.
func NewIDGenerator(strategy string) IDGenerator {
	switch strategy {
	case "timestamp":
		return &TimestampGenerator{}
	case "counter":
		return &CounterGenerator{}
	default:
		return UUIDGenerator{}
	}
}
