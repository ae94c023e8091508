package db

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// SeedOptions describes the demo inventory: every slot is owned by Owner and starts out listed.
type SeedOptions struct {
	Zones        int
	SpotsPerZone int
	Days         int
	Owner        string
	Price        decimal.Decimal
	Start        time.Time
	BatchSize    int
}

func DefaultSeedOptions(now time.Time) SeedOptions {
	y, m, d := now.UTC().Date()
	return SeedOptions{
		Zones:        8,
		SpotsPerZone: 5,
		Days:         14,
		Owner:        "admin",
		Price:        decimal.NewFromInt(1),
		Start:        time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
		BatchSize:    500,
	}
}

// SlotCount is the number of parking_times rows a seed run produces.
func (o SeedOptions) SlotCount() int {
	return o.Zones * o.SpotsPerZone * o.Days * 96
}

// Seed inserts demo zones and slots. Rows that already exist are skipped, so reruns are safe.
func Seed(ctx context.Context, db *sql.DB, dialect string, o SeedOptions) (int64, error) {
	if o.BatchSize <= 0 {
		o.BatchSize = 500
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin seed: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for z := 1; z <= o.Zones; z++ {
		q := insertIgnore(dialect, "zones", "zone_id, zone_name", "(?, ?)", "zone_id")
		if _, err := tx.ExecContext(ctx, Rebind(dialect, q), z, fmt.Sprintf("Zone %d", z)); err != nil {
			return 0, fmt.Errorf("seed zone %d: %w", z, err)
		}
	}

	var inserted int64
	batch := make([]any, 0, o.BatchSize*6)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		rows := len(batch) / 6
		values := strings.TrimSuffix(strings.Repeat("(?, ?, ?, ?, ?, ?, TRUE),", rows), ",")
		q := insertIgnore(dialect, "parking_times",
			"zone_id, spot_id, time_code, user_pid, price, seller_key, availability", values, "zone_id, spot_id, time_code")
		res, err := tx.ExecContext(ctx, Rebind(dialect, q), batch...)
		if err != nil {
			return err
		}
		n, _ := res.RowsAffected()
		inserted += n
		batch = batch[:0]
		return nil
	}

	start := o.Start.Unix()
	end := start + int64(o.Days)*86400
	for z := 1; z <= o.Zones; z++ {
		for s := 1; s <= o.SpotsPerZone; s++ {
			for tc := start; tc < end; tc += 900 {
				batch = append(batch, z, s, tc, o.Owner, o.Price.StringFixed(4), nil)
				if len(batch) >= o.BatchSize*6 {
					if err := flush(); err != nil {
						return inserted, fmt.Errorf("seed slots: %w", err)
					}
				}
			}
		}
	}
	if err := flush(); err != nil {
		return inserted, fmt.Errorf("seed slots: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return inserted, fmt.Errorf("commit seed: %w", err)
	}
	return inserted, nil
}

// WriteSQL prints the same inventory Seed would insert as a SQL script, one
// statement per zone and one per spot.
func WriteSQL(w io.Writer, dialect string, o SeedOptions) error {
	bw := bufio.NewWriter(w)
	owner := "'" + strings.ReplaceAll(o.Owner, "'", "''") + "'"
	price := o.Price.StringFixed(4)

	for z := 1; z <= o.Zones; z++ {
		fmt.Fprintln(bw, insertIgnore(dialect, "zones", "zone_id, zone_name",
			fmt.Sprintf("(%d, 'Zone %d')", z, z), "zone_id")+";")
	}

	start := o.Start.Unix()
	end := start + int64(o.Days)*86400
	for z := 1; z <= o.Zones; z++ {
		for s := 1; s <= o.SpotsPerZone; s++ {
			rows := make([]string, 0, o.Days*96)
			for tc := start; tc < end; tc += 900 {
				rows = append(rows, fmt.Sprintf("(%d, %d, %d, %s, %s, NULL, TRUE)", z, s, tc, owner, price))
			}
			if len(rows) == 0 {
				continue
			}
			fmt.Fprintln(bw, insertIgnore(dialect, "parking_times",
				"zone_id, spot_id, time_code, user_pid, price, seller_key, availability",
				strings.Join(rows, ",\n  "), "zone_id, spot_id, time_code")+";")
		}
	}

	return bw.Flush()
}

func insertIgnore(dialect, table, cols, values, conflict string) string {
	if dialect == DialectPostgres {
		return fmt.Sprintf("INSERT INTO %s (%s) VALUES %s ON CONFLICT (%s) DO NOTHING", table, cols, values, conflict)
	}
	return fmt.Sprintf("INSERT IGNORE INTO %s (%s) VALUES %s", table, cols, values)
}
