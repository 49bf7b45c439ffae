package store

import (
	"strconv"
	"sync"
	"time"
)

// keyGen hands out millisecond timestamps as record keys. Keys never repeat
// within a process: a second request in the same millisecond gets the next
// millisecond instead.
type keyGen struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

func newKeyGen(now func() time.Time) *keyGen {
	if now == nil {
		now = time.Now
	}
	return &keyGen{now: now}
}

func (g *keyGen) next() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	ms := g.now().UnixMilli()
	if ms <= g.last {
		ms = g.last + 1
	}
	g.last = ms
	return strconv.FormatInt(ms, 10)
}
