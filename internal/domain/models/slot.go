package models

import (
	"github.com/shopspring/decimal"
	"gopkg.in/guregu/null.v4"
)

// TimeSlot is one row of parking_times: a 15-minute unit of inventory.
type TimeSlot struct {
	ZoneID       int64           `json:"zone_id"`
	SpotID       int64           `json:"spot_id"`
	TimeCode     int64           `json:"time_code"`
	UserPID      string          `json:"user_pid"`
	Price        decimal.Decimal `json:"price"`
	Availability bool            `json:"availability"`
	SellerKey    null.String     `json:"seller_key"`
}

// Zone is a named group of spots.
type Zone struct {
	ZoneID   int64  `json:"zone_id"`
	ZoneName string `json:"zone_name"`
}

// ZoneListingSummary is the per-spot view over a contiguous run of listed slots.
// EndTime is exclusive (last time code + one slot).
type ZoneListingSummary struct {
	ZoneID    int64           `json:"zone_id"`
	SpotID    int64           `json:"spot_id"`
	StartTime int64           `json:"start_time"`
	EndTime   int64           `json:"end_time"`
	Price     decimal.Decimal `json:"price"`
	IsAvail   bool            `json:"-"`
}

// ZoneListingEvent is the message pushed to zone subscribers.
type ZoneListingEvent struct {
	IsAvail     bool               `json:"isAvail"`
	ParkingInfo ZoneListingSummary `json:"parkingInfo"`
}

// Event wraps the summary in its broadcast shape.
func (s ZoneListingSummary) Event() ZoneListingEvent {
	return ZoneListingEvent{IsAvail: s.IsAvail, ParkingInfo: s}
}
