package events

import (
	"encoding/json"
	"testing"

	"spotmarket/internal/domain/models"

	"github.com/shopspring/decimal"
)

func event(zone int64) models.ZoneListingEvent {
	return models.ZoneListingSummary{
		ZoneID: zone, SpotID: 1, StartTime: 0, EndTime: 2700, Price: decimal.RequireFromString("6.00"), IsAvail: true,
	}.Event()
}

func TestPublishReachesOnlyZoneSubscribers(t *testing.T) {
	h := New()
	a := h.Acquire(1, "a")
	b := h.Acquire(2, "b")

	sent, dropped, err := h.Publish(event(1))
	if err != nil || sent != 1 || dropped != 0 {
		t.Fatalf("publish got sent=%d dropped=%d err=%v", sent, dropped, err)
	}

	msg := <-a
	var got map[string]any
	if err := json.Unmarshal(msg, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got["isAvail"] != true {
		t.Fatalf("unexpected message %s", msg)
	}
	info := got["parkingInfo"].(map[string]any)
	if info["end_time"].(float64) != 2700 || info["price"] != "6" {
		t.Fatalf("unexpected parkingInfo %v", info)
	}

	select {
	case m := <-b:
		t.Fatalf("zone 2 should not receive zone 1 events, got %s", m)
	default:
	}
}

func TestPublishDropsWhenFull(t *testing.T) {
	h := New()
	h.Acquire(1, "slow")

	for i := 0; i < messageBuffer; i++ {
		if _, dropped, _ := h.Publish(event(1)); dropped != 0 {
			t.Fatalf("dropped before the buffer filled")
		}
	}
	if _, dropped, _ := h.Publish(event(1)); dropped != 1 {
		t.Fatalf("expected a drop once the buffer is full")
	}
}

func TestReleaseAndShutdown(t *testing.T) {
	h := New()
	ch := h.Acquire(1, "a")
	if h.Acquire(1, "a") != ch {
		t.Fatalf("acquire must be idempotent")
	}

	if err := h.Release(1, "a"); err != nil {
		t.Fatalf("release: %v", err)
	}
	if _, ok := <-ch; ok {
		t.Fatalf("released channel should be closed")
	}
	if err := h.Release(1, "a"); err == nil {
		t.Fatalf("second release should fail")
	}

	other := h.Acquire(3, "b")
	h.Shutdown()
	if _, ok := <-other; ok {
		t.Fatalf("shutdown should close channels")
	}
	if h.Subscribers(3) != 0 {
		t.Fatalf("shutdown should remove subscribers")
	}
}
