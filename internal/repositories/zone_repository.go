package repositories

import (
	"context"
	"database/sql"

	"spotmarket/internal/domain/models"
)

type ZoneRepository struct {
	DB      *sql.DB
	Dialect string
}

func (r ZoneRepository) ListZones(ctx context.Context) ([]models.Zone, error) {
	st := store{DB: r.DB, Dialect: r.Dialect}
	rows, err := st.db().QueryContext(ctx, `SELECT zone_id, zone_name FROM zones ORDER BY zone_id`)
	if err != nil {
		return nil, storeErr("list zones", err)
	}
	defer rows.Close()

	out := make([]models.Zone, 0)
	for rows.Next() {
		var z models.Zone
		if err := rows.Scan(&z.ZoneID, &z.ZoneName); err != nil {
			return nil, storeErr("scan zone", err)
		}
		out = append(out, z)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("scan zone", err)
	}
	return out, nil
}
