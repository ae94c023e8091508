package repositories

import (
	"context"
	"database/sql"
	"errors"

	intdb "spotmarket/internal/db"
	"spotmarket/internal/domain"
	"spotmarket/internal/domain/models"
)

const rewardColumns = `id, dedup_key, reporter_pid, zone_id, spot_id, window_start, reported_plate,
	amount, status, tx_id, failure, created_at, updated_at`

type RewardRepository struct {
	DB      *sql.DB
	Dialect string
}

func (r RewardRepository) s() store { return store{DB: r.DB, Dialect: r.Dialect} }

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReward(sc rowScanner) (models.BountyReward, error) {
	var rw models.BountyReward
	var status string
	err := sc.Scan(&rw.ID, &rw.DedupKey, &rw.ReporterPID, &rw.ZoneID, &rw.SpotID, &rw.WindowStart,
		&rw.ReportedPlate, &rw.Amount, &status, &rw.TxID, &rw.Failure, &rw.CreatedAt, &rw.UpdatedAt)
	rw.Status = models.RewardStatus(status)
	return rw, err
}

// Claim reserves the reward for rw.DedupKey. It returns claimed=true when the caller now owns a
// pending record and must attempt the transfer. An issued record is returned with claimed=false.
// A record that is still pending belongs to another request and yields ConflictError, as does
// an unknown one. Only failed records may be re-claimed.
func (r RewardRepository) Claim(ctx context.Context, rw models.BountyReward) (models.BountyReward, bool, error) {
	st := r.s()
	rw.Status = models.RewardPending

	_, err := st.db().ExecContext(ctx, st.q(`
		INSERT INTO bounty_rewards (`+rewardColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, NULL, NULL, ?, ?)
	`), rw.ID, rw.DedupKey, rw.ReporterPID, rw.ZoneID, rw.SpotID, rw.WindowStart, rw.ReportedPlate,
		rw.Amount.String(), string(rw.Status), rw.CreatedAt, rw.UpdatedAt)
	if err == nil {
		return rw, true, nil
	}
	if !intdb.IsDuplicateKey(err) {
		return models.BountyReward{}, false, storeErr("claim reward", err)
	}

	existing, err := r.GetByDedupKey(ctx, rw.DedupKey)
	if err != nil {
		return models.BountyReward{}, false, err
	}

	switch existing.Status {
	case models.RewardIssued:
		return existing, false, nil
	case models.RewardFailed:
		res, err := st.db().ExecContext(ctx, st.q(`
			UPDATE bounty_rewards
			SET status = ?, reporter_pid = ?, failure = NULL, updated_at = ?
			WHERE dedup_key = ? AND status = ?
		`), string(models.RewardPending), rw.ReporterPID, rw.UpdatedAt, rw.DedupKey, string(models.RewardFailed))
		if err != nil {
			return models.BountyReward{}, false, storeErr("reclaim reward", err)
		}
		if n, _ := res.RowsAffected(); n == 1 {
			existing.Status = models.RewardPending
			existing.ReporterPID = rw.ReporterPID
			existing.Failure.Valid = false
			existing.UpdatedAt = rw.UpdatedAt
			return existing, true, nil
		}
	case models.RewardUnknown:
		return models.BountyReward{}, false, domain.ConflictError{Resource: "reward", Msg: "an earlier transfer for this violation is awaiting reconciliation"}
	}
	return models.BountyReward{}, false, domain.ConflictError{Resource: "reward", Msg: "a reward for this violation is already being processed"}
}

func (r RewardRepository) MarkIssued(ctx context.Context, id, txID string) error {
	return r.finish(ctx, id, models.RewardIssued, txID, "")
}

func (r RewardRepository) MarkFailed(ctx context.Context, id, reason string) error {
	if len(reason) > 255 {
		reason = reason[:255]
	}
	return r.finish(ctx, id, models.RewardFailed, "", reason)
}

// MarkUnknown parks a reward whose transfer outcome is not known. Claim refuses it
// until an operator settles it.
func (r RewardRepository) MarkUnknown(ctx context.Context, id, reason string) error {
	if len(reason) > 255 {
		reason = reason[:255]
	}
	return r.finish(ctx, id, models.RewardUnknown, "", reason)
}

func (r RewardRepository) finish(ctx context.Context, id string, status models.RewardStatus, txID, failure string) error {
	st := r.s()
	res, err := st.db().ExecContext(ctx, st.q(`
		UPDATE bounty_rewards
		SET status = ?, tx_id = ?, failure = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND status = ?
	`), string(status), intdb.NullIfEmpty(txID), intdb.NullIfEmpty(failure), id, string(models.RewardPending))
	if err != nil {
		return storeErr("update reward", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ConflictError{Resource: "reward", Msg: "reward is not pending"}
	}
	return nil
}

func (r RewardRepository) GetByID(ctx context.Context, id string) (models.BountyReward, error) {
	st := r.s()
	rw, err := scanReward(st.db().QueryRowContext(ctx, st.q(`SELECT `+rewardColumns+` FROM bounty_rewards WHERE id = ?`), id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.BountyReward{}, domain.NotFoundError{Resource: "reward", Err: err}
	}
	if err != nil {
		return models.BountyReward{}, storeErr("get reward", err)
	}
	return rw, nil
}

func (r RewardRepository) GetByDedupKey(ctx context.Context, key string) (models.BountyReward, error) {
	st := r.s()
	rw, err := scanReward(st.db().QueryRowContext(ctx, st.q(`SELECT `+rewardColumns+` FROM bounty_rewards WHERE dedup_key = ?`), key))
	if errors.Is(err, sql.ErrNoRows) {
		return models.BountyReward{}, domain.NotFoundError{Resource: "reward", Err: err}
	}
	if err != nil {
		return models.BountyReward{}, storeErr("get reward", err)
	}
	return rw, nil
}

// ListByReporter returns the caller's rewards, newest first.
func (r RewardRepository) ListByReporter(ctx context.Context, pid string) ([]models.BountyReward, error) {
	st := r.s()
	rows, err := st.db().QueryContext(ctx, st.q(`
		SELECT `+rewardColumns+`
		FROM bounty_rewards
		WHERE reporter_pid = ?
		ORDER BY created_at DESC
	`), pid)
	if err != nil {
		return nil, storeErr("list rewards", err)
	}
	defer rows.Close()

	out := make([]models.BountyReward, 0)
	for rows.Next() {
		rw, err := scanReward(rows)
		if err != nil {
			return nil, storeErr("scan reward", err)
		}
		out = append(out, rw)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("scan reward", err)
	}
	return out, nil
}
