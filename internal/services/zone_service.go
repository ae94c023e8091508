package services

import (
	"context"
	"math"
	"time"

	"spotmarket/internal/domain"
	"spotmarket/internal/domain/models"
	"spotmarket/internal/utils"
)

type ZoneStore interface {
	ListZones(ctx context.Context) ([]models.Zone, error)
}

type SlotReader interface {
	SummarizeZone(ctx context.Context, zoneID, from, to int64) ([]models.ZoneListingSummary, error)
	ListAvailableBySpot(ctx context.Context, zoneID, spotID, from, to int64) ([]models.TimeSlot, error)
}

// Window bounds a listing query by time_code, both ends inclusive. Nil ends default to the current UTC day.
type Window struct {
	Start *int64
	End   *int64
}

type ZoneService struct {
	Zones        ZoneStore
	Slots        SlotReader
	StoreTimeout time.Duration
	Now          func() time.Time
	RequestID    string
}

func (s ZoneService) ctx(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.StoreTimeout > 0 {
		return context.WithTimeout(ctx, s.StoreTimeout)
	}
	return context.WithCancel(ctx)
}

// allTime is the spot view's default window: every listed slot.
func allTime(time.Time) (int64, int64) { return 0, math.MaxInt64 }

// resolve uses w only when both bounds are set. A partial window falls back to def.
func (s ZoneService) resolve(w Window, def func(now time.Time) (int64, int64)) (int64, int64, error) {
	if w.Start == nil || w.End == nil {
		now := utils.NowUTC()
		if s.Now != nil {
			now = s.Now()
		}
		from, to := def(now)
		return from, to, nil
	}
	from, to := *w.Start, *w.End

	if from < 0 {
		return 0, 0, domain.ValidationError{Field: "startTime", Msg: "must not be negative"}
	}
	if to < from {
		return 0, 0, domain.ValidationError{Field: "endTime", Msg: "must not be before startTime"}
	}
	return from, to, nil
}

func (s ZoneService) ListZones(ctx context.Context) ([]models.Zone, error) {
	c, cancel := s.ctx(ctx)
	defer cancel()
	return s.Zones.ListZones(c)
}

// ZoneListings aggregates the listed slots of each spot in the zone.
func (s ZoneService) ZoneListings(ctx context.Context, zoneID int64, w Window) ([]models.ZoneListingSummary, error) {
	if zoneID <= 0 {
		return nil, domain.ValidationError{Field: "zoneId", Msg: "must be greater than 0"}
	}
	from, to, err := s.resolve(w, utils.DayBoundsUTC)
	if err != nil {
		return nil, err
	}

	c, cancel := s.ctx(ctx)
	defer cancel()
	return s.Slots.SummarizeZone(c, zoneID, from, to)
}

// SpotListings returns the listed slots of one spot.
func (s ZoneService) SpotListings(ctx context.Context, zoneID, spotID int64, w Window) ([]models.TimeSlot, error) {
	if zoneID <= 0 {
		return nil, domain.ValidationError{Field: "zoneId", Msg: "must be greater than 0"}
	}
	if spotID <= 0 {
		return nil, domain.ValidationError{Field: "spotId", Msg: "must be greater than 0"}
	}
	from, to, err := s.resolve(w, allTime)
	if err != nil {
		return nil, err
	}

	c, cancel := s.ctx(ctx)
	defer cancel()
	return s.Slots.ListAvailableBySpot(c, zoneID, spotID, from, to)
}
