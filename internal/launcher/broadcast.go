package launcher

import "sync"

// progressBuffer is the per-subscriber channel depth. A sequence emits a
// bounded number of events, so a slow consumer only ever drops the oldest.
const progressBuffer = 16

// Broadcaster fans progress events out to any number of subscribers. Sends
// never block: a subscriber that falls behind loses events rather than
// stalling the sequence.
type Broadcaster struct {
	mu   sync.Mutex
	subs map[chan Progress]struct{}
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[chan Progress]struct{})}
}

// Subscribe returns a buffered event channel and a cancel function that
// closes it. Cancel is idempotent per subscription.
func (b *Broadcaster) Subscribe() (<-chan Progress, func()) {
	ch := make(chan Progress, progressBuffer)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, ch)
			b.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Publish delivers an event to every current subscriber. Usable directly as
// a WithProgressFunc callback.
func (b *Broadcaster) Publish(p Progress) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs {
		select {
		case ch <- p:
		default:
		}
	}
}
