package workers

import (
	"log"
	"sync"

	"github.com/comitanigiacomo/studo-sync-engine/internal/core/domain"
)

const subscriberBuffer = 10

// Notifier fans change events out to the open streams of each user.
// Publishing never blocks: a subscriber that is not keeping up misses events
// and is expected to refetch.
type Notifier struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan domain.ChangeEvent]struct{}
}

func NewNotifier() *Notifier {
	return &Notifier{
		subscribers: make(map[string]map[chan domain.ChangeEvent]struct{}),
	}
}

// Subscribe returns the user's event channel and the func that closes it.
func (n *Notifier) Subscribe(userID string) (<-chan domain.ChangeEvent, func()) {
	n.mu.Lock()
	defer n.mu.Unlock()

	ch := make(chan domain.ChangeEvent, subscriberBuffer)
	if n.subscribers[userID] == nil {
		n.subscribers[userID] = make(map[chan domain.ChangeEvent]struct{})
	}
	n.subscribers[userID][ch] = struct{}{}

	var once sync.Once
	cleanup := func() {
		once.Do(func() {
			n.mu.Lock()
			defer n.mu.Unlock()
			delete(n.subscribers[userID], ch)
			close(ch)
			if len(n.subscribers[userID]) == 0 {
				delete(n.subscribers, userID)
			}
		})
	}

	return ch, cleanup
}

func (n *Notifier) Publish(event domain.ChangeEvent) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	for ch := range n.subscribers[event.UserID] {
		select {
		case ch <- event:
		default:
			log.Printf("[NOTIFY] subscriber for %s is full, dropping %s", event.UserID, event.Kind)
		}
	}
}

func (n *Notifier) SubscriberCount(userID string) int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.subscribers[userID])
}

func (n *Notifier) TotalSubscribers() int {
	n.mu.RLock()
	defer n.mu.RUnlock()

	total := 0
	for _, subs := range n.subscribers {
		total += len(subs)
	}
	return total
}
