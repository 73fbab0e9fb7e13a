// Package events provides the in-process pub/sub signal connecting the
// reconciler to the latest-rate refresher. The reconciler publishes after a
// successful write; the refresher's subscriber loop consumes and recomputes
// the latest snapshot.
package events

import "sync"

// RatesUpdatedBus fans a "rates updated" signal out to subscribers. Publishing
// never blocks: each subscriber channel has capacity one and a pending signal
// coalesces with the next, which is safe because the refresher recomputes from
// the store rather than from event payloads.
type RatesUpdatedBus struct {
	mu   sync.RWMutex
	subs []chan struct{}
}

// NewRatesUpdatedBus creates an empty bus.
func NewRatesUpdatedBus() *RatesUpdatedBus {
	return &RatesUpdatedBus{}
}

// Subscribe registers a new subscriber and returns its signal channel.
func (b *RatesUpdatedBus) Subscribe() <-chan struct{} {
	ch := make(chan struct{}, 1)
	b.mu.Lock()
	b.subs = append(b.subs, ch)
	b.mu.Unlock()
	return ch
}

// Publish signals every subscriber without blocking.
func (b *RatesUpdatedBus) Publish() {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subs {
		select {
		case ch <- struct{}{}:
		default:
			// subscriber already has a pending signal
		}
	}
}
