package notify

import (
	"context"
	"sync"
)

// Broadcaster fans reminders out to live subscribers, such as open browser
// tabs on the event stream. Slow subscribers miss reminders rather than
// blocking delivery.
type Broadcaster struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]chan Reminder
	buffer int
}

func NewBroadcaster(buffer int) *Broadcaster {
	if buffer <= 0 {
		buffer = 8
	}
	return &Broadcaster{
		subs:   make(map[int]chan Reminder),
		buffer: buffer,
	}
}

func (b *Broadcaster) Name() string { return "broadcast" }

// Subscribe returns a channel of reminders and a function that ends the
// subscription and closes the channel.
func (b *Broadcaster) Subscribe() (<-chan Reminder, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++

	ch := make(chan Reminder, b.buffer)
	b.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subs, id)
			close(ch)
		})
	}
}

func (b *Broadcaster) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

func (b *Broadcaster) Send(ctx context.Context, r Reminder) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subs {
		select {
		case ch <- r:
		default:
		}
	}
	return nil
}
