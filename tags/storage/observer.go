package storage

import (
	"sync"

	"github.com/openbfd/bfd/logger"
	"github.com/openbfd/bfd/tags"
)

// observerRegistry fans committed events out to registered observers.
// Notification runs asynchronously after the event is durable, so a slow
// or failing observer never delays or rolls back a write. Delivery
// failures are the observer's concern.
type observerRegistry struct {
	mu        sync.RWMutex
	observers []tags.EventObserver
}

func (r *observerRegistry) register(o tags.EventObserver) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.observers = append(r.observers, o)
}

func (r *observerRegistry) notify(event tags.Event) {
	r.mu.RLock()
	observers := make([]tags.EventObserver, len(r.observers))
	copy(observers, r.observers)
	r.mu.RUnlock()

	for _, o := range observers {
		go func(o tags.EventObserver) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Warnw("event observer panicked",
						logger.FieldEventID, event.ID,
						"panic", rec,
					)
				}
			}()
			o.Notify(event)
		}(o)
	}
}
