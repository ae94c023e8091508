// Package events fans zone listing changes out to subscribers.
package events

import (
	"encoding/json"
	"fmt"
	"sync"

	"spotmarket/internal/domain/models"
)

// messageBuffer gives a slow websocket writer room before messages are dropped.
const messageBuffer = 100

// Hub maps zone id to subscriber id to channel.
type Hub struct {
	mu   sync.RWMutex
	subs map[int64]map[string]chan []byte
}

func New() *Hub {
	return &Hub{subs: make(map[int64]map[string]chan []byte)}
}

// Acquire registers id for zoneID and returns its channel. Acquiring twice returns the same channel.
func (h *Hub) Acquire(zoneID int64, id string) <-chan []byte {
	h.mu.Lock()
	defer h.mu.Unlock()

	zone, ok := h.subs[zoneID]
	if !ok {
		zone = make(map[string]chan []byte)
		h.subs[zoneID] = zone
	}
	if ch, ok := zone[id]; ok {
		return ch
	}

	ch := make(chan []byte, messageBuffer)
	zone[id] = ch
	return ch
}

// Release closes and removes the channel handed out by Acquire.
func (h *Hub) Release(zoneID int64, id string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	zone := h.subs[zoneID]
	ch, ok := zone[id]
	if !ok {
		return fmt.Errorf("subscriber %q does not exist in zone %d", id, zoneID)
	}

	delete(zone, id)
	if len(zone) == 0 {
		delete(h.subs, zoneID)
	}
	close(ch)
	return nil
}

// Publish sends the event to every subscriber of its zone without blocking.
// It returns how many subscribers received it and how many were dropped.
func (h *Hub) Publish(ev models.ZoneListingEvent) (sent, dropped int, err error) {
	msg, err := json.Marshal(ev)
	if err != nil {
		return 0, 0, err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, ch := range h.subs[ev.ParkingInfo.ZoneID] {
		select {
		case ch <- msg:
			sent++
		default:
			dropped++
		}
	}
	return sent, dropped, nil
}

// Subscribers reports the number of open subscriptions for a zone.
func (h *Hub) Subscribers(zoneID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[zoneID])
}

// Shutdown closes every channel so subscribers return.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for zoneID, zone := range h.subs {
		for id, ch := range zone {
			delete(zone, id)
			close(ch)
		}
		delete(h.subs, zoneID)
	}
}
