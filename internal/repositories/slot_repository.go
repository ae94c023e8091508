package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"spotmarket/internal/domain"
	"spotmarket/internal/domain/models"

	"github.com/shopspring/decimal"
)

const slotColumns = "zone_id, spot_id, time_code, user_pid, price, availability, seller_key"

type SlotRepository struct {
	DB      *sql.DB
	Dialect string
}

func (r SlotRepository) s() store { return store{DB: r.DB, Dialect: r.Dialect} }

// SellParams describes one listing mutation over the slots [Start, End).
type SellParams struct {
	ListingID string
	ZoneID    int64
	SpotID    int64
	Start     int64
	End       int64
	PID       string
	Price     decimal.Decimal
	SellerKey string
}

func scanSlots(rows *sql.Rows) ([]models.TimeSlot, error) {
	defer rows.Close()

	out := make([]models.TimeSlot, 0)
	for rows.Next() {
		var ts models.TimeSlot
		if err := rows.Scan(&ts.ZoneID, &ts.SpotID, &ts.TimeCode, &ts.UserPID, &ts.Price, &ts.Availability, &ts.SellerKey); err != nil {
			return nil, err
		}
		out = append(out, ts)
	}
	return out, rows.Err()
}

// ListAvailableBySpot returns listed slots of one spot with time_code inside [from, to].
func (r SlotRepository) ListAvailableBySpot(ctx context.Context, zoneID, spotID, from, to int64) ([]models.TimeSlot, error) {
	st := r.s()
	rows, err := st.db().QueryContext(ctx, st.q(`
		SELECT `+slotColumns+`
		FROM parking_times
		WHERE zone_id = ? AND spot_id = ?
		  AND availability = TRUE
		  AND time_code BETWEEN ? AND ?
		ORDER BY time_code
	`), zoneID, spotID, from, to)
	if err != nil {
		return nil, storeErr("list spot slots", err)
	}
	out, err := scanSlots(rows)
	if err != nil {
		return nil, storeErr("scan spot slots", err)
	}
	return out, nil
}

// SummarizeZone aggregates the listed slots of every spot in a zone inside [from, to].
func (r SlotRepository) SummarizeZone(ctx context.Context, zoneID, from, to int64) ([]models.ZoneListingSummary, error) {
	st := r.s()
	rows, err := st.db().QueryContext(ctx, st.q(`
		SELECT spot_id, MIN(time_code), MAX(time_code), SUM(price)
		FROM parking_times
		WHERE zone_id = ?
		  AND availability = TRUE
		  AND time_code BETWEEN ? AND ?
		GROUP BY spot_id
		ORDER BY spot_id
	`), zoneID, from, to)
	if err != nil {
		return nil, storeErr("summarize zone", err)
	}
	defer rows.Close()

	out := make([]models.ZoneListingSummary, 0)
	for rows.Next() {
		sum := models.ZoneListingSummary{ZoneID: zoneID, IsAvail: true}
		var last int64
		if err := rows.Scan(&sum.SpotID, &sum.StartTime, &last, &sum.Price); err != nil {
			return nil, storeErr("scan zone summary", err)
		}
		sum.EndTime = last + domain.SlotDuration
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("scan zone summary", err)
	}
	return out, nil
}

// SellRange lists every slot of [Start, End) for sale in one transaction and records the
// sale in listing_history under p.ListingID.
// Rows are locked first; if any row belongs to someone else, or the range is empty,
// nothing is written and UnauthorizedError is returned.
func (r SlotRepository) SellRange(ctx context.Context, p SellParams) ([]models.TimeSlot, error) {
	st := r.s()
	last := domain.LastSlotIn(p.End)

	tx, err := st.db().BeginTx(ctx, nil)
	if err != nil {
		return nil, storeErr("begin listing", err)
	}
	defer func() { _ = tx.Rollback() }()

	rows, err := tx.QueryContext(ctx, st.q(`
		SELECT user_pid
		FROM parking_times
		WHERE zone_id = ? AND spot_id = ?
		  AND time_code BETWEEN ? AND ?
		FOR UPDATE
	`), p.ZoneID, p.SpotID, p.Start, last)
	if err != nil {
		return nil, storeErr("lock slots", err)
	}

	var total int64
	foreign := false
	for rows.Next() {
		var owner string
		if err := rows.Scan(&owner); err != nil {
			rows.Close()
			return nil, storeErr("scan slot owner", err)
		}
		total++
		if owner != p.PID {
			foreign = true
		}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, storeErr("scan slot owner", err)
	}
	rows.Close()

	if total == 0 {
		return nil, domain.UnauthorizedError{Msg: "no slots in the requested range"}
	}
	if foreign {
		return nil, domain.UnauthorizedError{Msg: "requested range contains slots owned by someone else"}
	}

	res, err := tx.ExecContext(ctx, st.q(`
		UPDATE parking_times
		SET availability = TRUE, price = ?, seller_key = ?
		WHERE zone_id = ? AND spot_id = ?
		  AND time_code BETWEEN ? AND ?
		  AND user_pid = ?
	`), p.Price.String(), p.SellerKey, p.ZoneID, p.SpotID, p.Start, last, p.PID)
	if err != nil {
		return nil, storeErr("update listing", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, storeErr("update listing", err)
	}
	if affected != total {
		return nil, domain.UnauthorizedError{Msg: fmt.Sprintf("ownership changed during listing (%d of %d rows)", affected, total)}
	}

	updated, err := tx.QueryContext(ctx, st.q(`
		SELECT `+slotColumns+`
		FROM parking_times
		WHERE zone_id = ? AND spot_id = ?
		  AND time_code BETWEEN ? AND ?
		ORDER BY time_code
	`), p.ZoneID, p.SpotID, p.Start, last)
	if err != nil {
		return nil, storeErr("reload listing", err)
	}
	out, err := scanSlots(updated)
	if err != nil {
		return nil, storeErr("reload listing", err)
	}

	sum, _ := domain.SummarizeListing(out)
	if _, err := tx.ExecContext(ctx, st.q(`
		INSERT INTO listing_history (id, seller_pid, zone_id, spot_id, start_time, end_time, price, seller_key)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`), p.ListingID, p.PID, p.ZoneID, p.SpotID, p.Start, p.End, sum.Price.String(), p.SellerKey); err != nil {
		return nil, storeErr("record listing", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, storeErr("commit listing", err)
	}
	return out, nil
}

// ListBySeller returns the caller's recorded sales, newest first.
func (r SlotRepository) ListBySeller(ctx context.Context, pid string) ([]models.ListingRecord, error) {
	st := r.s()
	rows, err := st.db().QueryContext(ctx, st.q(`
		SELECT id, seller_pid, zone_id, spot_id, start_time, end_time, price, seller_key, created_at
		FROM listing_history
		WHERE seller_pid = ?
		ORDER BY created_at DESC
	`), pid)
	if err != nil {
		return nil, storeErr("list sales", err)
	}
	defer rows.Close()

	out := make([]models.ListingRecord, 0)
	for rows.Next() {
		var rec models.ListingRecord
		if err := rows.Scan(&rec.ID, &rec.SellerPID, &rec.ZoneID, &rec.SpotID, &rec.StartTime, &rec.EndTime,
			&rec.Price, &rec.SellerKey, &rec.CreatedAt); err != nil {
			return nil, storeErr("scan sale", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("scan sale", err)
	}
	return out, nil
}

// FindOccupant returns the latest slot of a spot inside [from, to].
func (r SlotRepository) FindOccupant(ctx context.Context, zoneID, spotID, from, to int64) (models.TimeSlot, error) {
	st := r.s()
	var ts models.TimeSlot
	err := st.db().QueryRowContext(ctx, st.q(`
		SELECT `+slotColumns+`
		FROM parking_times
		WHERE zone_id = ? AND spot_id = ?
		  AND time_code BETWEEN ? AND ?
		ORDER BY time_code DESC
		LIMIT 1
	`), zoneID, spotID, from, to).Scan(&ts.ZoneID, &ts.SpotID, &ts.TimeCode, &ts.UserPID, &ts.Price, &ts.Availability, &ts.SellerKey)
	if errors.Is(err, sql.ErrNoRows) {
		return models.TimeSlot{}, domain.NotFoundError{Resource: "occupancy record", Err: err}
	}
	if err != nil {
		return models.TimeSlot{}, storeErr("find occupant", err)
	}
	return ts, nil
}
