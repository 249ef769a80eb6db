package ingest

import (
	"hash/fnv"
	"sync"
)

const lockStripes = 64

// KeyedLock is the per-document advisory lock: a fixed array of mutexes
// addressed by a hash of the key (canonical URL during ingestion, document
// id during enrichment writes and reconciliation). Held only for the
// critical section, never across an oracle call.
type KeyedLock struct {
	stripes [lockStripes]sync.Mutex
}

func NewKeyedLock() *KeyedLock {
	return &KeyedLock{}
}

// Lock acquires the stripe for key and returns its release func.
func (l *KeyedLock) Lock(key string) func() {
	m := &l.stripes[stripeFor(key)]
	m.Lock()
	return m.Unlock
}

func stripeFor(key string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return h.Sum32() % lockStripes
}
