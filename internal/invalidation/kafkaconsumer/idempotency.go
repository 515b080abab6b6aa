package kafkaconsumer

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// seqDedupe remembers the highest applied sequence number per
// identifier over a bounded window, so replayed events do not trigger
// repeated purges.
type seqDedupe struct {
	mu  sync.Mutex
	lru *lru.Cache[string, uint64]
}

func newSeqDedupe(size int) *seqDedupe {
	if size <= 0 {
		size = 4096
	}
	c, _ := lru.New[string, uint64](size)
	return &seqDedupe{lru: c}
}

// returns true if seq is greater than last applied
func (d *seqDedupe) shouldApply(identifier string, seq uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	last, ok := d.lru.Get(identifier)
	return !ok || seq > last
}

// record marks seq applied. Kept separate from shouldApply so a failed
// purge stays eligible for redelivery.
func (d *seqDedupe) record(identifier string, seq uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if last, ok := d.lru.Get(identifier); ok && last >= seq {
		return
	}
	d.lru.Add(identifier, seq)
}
