package domain

import (
	"sort"

	"spotmarket/internal/domain/models"

	"github.com/shopspring/decimal"
)

// SlotDuration is the width of one parking time slot in seconds.
const SlotDuration int64 = 900

// IsSlotAligned reports whether t sits on a 15-minute boundary.
func IsSlotAligned(t int64) bool {
	return t >= 0 && t%SlotDuration == 0
}

// LastSlotIn returns the time code of the last slot inside [start, end).
func LastSlotIn(end int64) int64 {
	return end - SlotDuration
}

// SummarizeListing folds updated rows into the zone-level summary broadcast to subscribers.
// The bool is false when rows is empty.
func SummarizeListing(rows []models.TimeSlot) (models.ZoneListingSummary, bool) {
	if len(rows) == 0 {
		return models.ZoneListingSummary{}, false
	}

	ordered := make([]models.TimeSlot, len(rows))
	copy(ordered, rows)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].TimeCode < ordered[j].TimeCode })

	total := decimal.Zero
	for _, r := range ordered {
		total = total.Add(r.Price)
	}

	first := ordered[0]
	last := ordered[len(ordered)-1]
	return models.ZoneListingSummary{
		ZoneID:    first.ZoneID,
		SpotID:    first.SpotID,
		StartTime: first.TimeCode,
		EndTime:   last.TimeCode + SlotDuration,
		Price:     total,
		IsAvail:   true,
	}, true
}
