package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SpotRange is the slot range part of a listing request. Times are epoch seconds,
// the range is [StartTime, EndTime).
type SpotRange struct {
	SpotID    int64           `json:"spot_id" validate:"gt=0"`
	ZoneID    int64           `json:"zone_id" validate:"gt=0"`
	StartTime *int64          `json:"start_time" validate:"required,gte=0"`
	EndTime   *int64          `json:"end_time" validate:"required,gt=0"`
	Price     decimal.Decimal `json:"price"`
}

// ListingRequest asks to put owned slots up for sale. Signature is a hex
// secp256k1 signature over Challenge(); the private key never leaves the client.
type ListingRequest struct {
	PID       string    `json:"pid" validate:"required,max=64"`
	Signature string    `json:"signature" validate:"required,startswith=0x"`
	SignedAt  int64     `json:"signed_at" validate:"gt=0"`
	Spot      SpotRange `json:"spot"`
}

// ListingChallenge is the canonical payload a seller signs.
type ListingChallenge struct {
	PID       string `json:"pid"`
	ZoneID    int64  `json:"zone_id"`
	SpotID    int64  `json:"spot_id"`
	StartTime int64  `json:"start_time"`
	EndTime   int64  `json:"end_time"`
	Price     string `json:"price"`
	SignedAt  int64  `json:"signed_at"`
}

// Challenge builds the payload covered by Signature. Call only after validation.
func (r ListingRequest) Challenge() ListingChallenge {
	var start, end int64
	if r.Spot.StartTime != nil {
		start = *r.Spot.StartTime
	}
	if r.Spot.EndTime != nil {
		end = *r.Spot.EndTime
	}
	return ListingChallenge{
		PID:       r.PID,
		ZoneID:    r.Spot.ZoneID,
		SpotID:    r.Spot.SpotID,
		StartTime: start,
		EndTime:   end,
		Price:     r.Spot.Price.String(),
		SignedAt:  r.SignedAt,
	}
}

// ListingResult is what a successful sell returns: the updated rows and their summary.
type ListingResult struct {
	Rows    []TimeSlot
	Summary ZoneListingSummary
}

// ListingRecord is one committed sell, kept in listing_history.
// Price is the total over every slot of [StartTime, EndTime).
type ListingRecord struct {
	ID        string          `json:"id"`
	SellerPID string          `json:"seller_pid"`
	ZoneID    int64           `json:"zone_id"`
	SpotID    int64           `json:"spot_id"`
	StartTime int64           `json:"start_time"`
	EndTime   int64           `json:"end_time"`
	Price     decimal.Decimal `json:"price"`
	SellerKey string          `json:"seller_key"`
	CreatedAt time.Time       `json:"created_at"`
}
