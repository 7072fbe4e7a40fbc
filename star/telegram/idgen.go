package telegram

import "sync"

// IDGen is the per-connection identifier allocator of spec.md §4.3: a
// monotonically increasing 4-digit decimal counter, wrapping at 10000 back
// to 0. Every outgoing command gets a fresh id; the reply must echo it
// exactly, or the caller has a protocol error on its hands (the instrument
// may already be executing a stale command).
type IDGen struct {
	mu   sync.Mutex
	next int
}

// Next returns the next id in [0, 10000).
func (g *IDGen) Next() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	id := g.next
	g.next = (g.next + 1) % 10000
	return id
}
