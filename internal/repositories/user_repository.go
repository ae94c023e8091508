package repositories

import (
	"context"
	"database/sql"
	"errors"

	intdb "spotmarket/internal/db"
	"spotmarket/internal/domain"
	"spotmarket/internal/domain/models"
)

type UserRepository struct {
	DB      *sql.DB
	Dialect string
}

func (r UserRepository) Create(ctx context.Context, u models.User) error {
	st := store{DB: r.DB, Dialect: r.Dialect}
	_, err := st.db().ExecContext(ctx, st.q(`
		INSERT INTO users (pid, password_hash, license_plate, created_at)
		VALUES (?, ?, ?, ?)
	`), u.PID, u.PasswordHash, u.LicensePlate, u.CreatedAt)
	if intdb.IsDuplicateKey(err) {
		return domain.ConflictError{Resource: "user", Msg: "pid already registered", Err: err}
	}
	if err != nil {
		return storeErr("create user", err)
	}
	return nil
}

func (r UserRepository) GetByPID(ctx context.Context, pid string) (models.User, error) {
	st := store{DB: r.DB, Dialect: r.Dialect}
	var u models.User
	err := st.db().QueryRowContext(ctx, st.q(`
		SELECT pid, password_hash, license_plate, created_at
		FROM users
		WHERE pid = ?
		LIMIT 1
	`), pid).Scan(&u.PID, &u.PasswordHash, &u.LicensePlate, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, domain.NotFoundError{Resource: "user", Err: err}
	}
	if err != nil {
		return models.User{}, storeErr("get user", err)
	}
	return u, nil
}
