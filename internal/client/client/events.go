package client

import (
	"sort"
	"sync"

	"github.com/dmitrijs2005/resourcehub/internal/client/models"
)

// broker fans session events out to subscribers. A single goroutine drains
// the queue, so handlers run one event at a time and in publish order.
type broker struct {
	mu     sync.Mutex
	nextID uint64
	subs   map[uint64]func(models.SessionEvent)

	queue     chan models.SessionEvent
	done      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once
}

func newBroker() *broker {
	b := &broker{
		subs:    make(map[uint64]func(models.SessionEvent)),
		queue:   make(chan models.SessionEvent, 64),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go b.run()
	return b
}

func (b *broker) run() {
	defer close(b.stopped)
	for {
		select {
		case ev := <-b.queue:
			b.deliver(ev)
		case <-b.done:
			// flush what was published before close
			for {
				select {
				case ev := <-b.queue:
					b.deliver(ev)
				default:
					return
				}
			}
		}
	}
}

func (b *broker) deliver(ev models.SessionEvent) {
	b.mu.Lock()
	ids := make([]uint64, 0, len(b.subs))
	for id := range b.subs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	handlers := make([]func(models.SessionEvent), 0, len(ids))
	for _, id := range ids {
		handlers = append(handlers, b.subs[id])
	}
	b.mu.Unlock()

	for _, h := range handlers {
		h(ev)
	}
}

func (b *broker) publish(ev models.SessionEvent) {
	select {
	case <-b.done:
		return
	default:
	}
	select {
	case b.queue <- ev:
	case <-b.done:
	}
}

func (b *broker) subscribe(fn func(models.SessionEvent)) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	b.subs[id] = fn
	return &subscription{b: b, id: id}
}

func (b *broker) remove(id uint64) {
	b.mu.Lock()
	delete(b.subs, id)
	b.mu.Unlock()
}

func (b *broker) close() {
	b.closeOnce.Do(func() { close(b.done) })
	<-b.stopped
}

type subscription struct {
	b    *broker
	id   uint64
	once sync.Once
}

func (s *subscription) Unsubscribe() {
	s.once.Do(func() { s.b.remove(s.id) })
}
