package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"spotmarket/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
)

var slotCols = []string{"zone_id", "spot_id", "time_code", "user_pid", "price", "availability", "seller_key"}

func newMock(t *testing.T) (SlotRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	return SlotRepository{DB: db, Dialect: "mysql"}, mock, func() { _ = db.Close() }
}

func sellParams() SellParams {
	return SellParams{
		ListingID: "l-1",
		ZoneID:    1,
		SpotID:    1,
		Start:     0,
		End:       2700,
		PID:       "pidA",
		Price:     decimal.RequireFromString("2.00"),
		SellerKey: "0xabc",
	}
}

func TestSellRangeUpdatesOwnedRange(t *testing.T) {
	repo, mock, done := newMock(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT user_pid FROM parking_times .* FOR UPDATE").
		WithArgs(int64(1), int64(1), int64(0), int64(1800)).
		WillReturnRows(sqlmock.NewRows([]string{"user_pid"}).AddRow("pidA").AddRow("pidA").AddRow("pidA"))
	mock.ExpectExec("UPDATE parking_times SET availability = TRUE").
		WithArgs("2", "0xabc", int64(1), int64(1), int64(0), int64(1800), "pidA").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectQuery("SELECT zone_id, spot_id, time_code").
		WillReturnRows(sqlmock.NewRows(slotCols).
			AddRow(1, 1, 0, "pidA", "2.00", true, "0xabc").
			AddRow(1, 1, 900, "pidA", "2.00", true, "0xabc").
			AddRow(1, 1, 1800, "pidA", "2.00", true, "0xabc"))
	mock.ExpectExec("INSERT INTO listing_history").
		WithArgs("l-1", "pidA", int64(1), int64(1), int64(0), int64(2700), "6", "0xabc").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	rows, err := repo.SellRange(context.Background(), sellParams())
	if err != nil {
		t.Fatalf("sell range: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	for _, r := range rows {
		if !r.Availability || r.SellerKey.String != "0xabc" || !r.Price.Equal(decimal.RequireFromString("2")) {
			t.Fatalf("row not listed: %+v", r)
		}
	}
	sum, _ := domain.SummarizeListing(rows)
	if sum.StartTime != 0 || sum.EndTime != 2700 || !sum.Price.Equal(decimal.RequireFromString("6")) {
		t.Fatalf("unexpected summary %+v", sum)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSellRangeForeignOwnerWritesNothing(t *testing.T) {
	repo, mock, done := newMock(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").
		WillReturnRows(sqlmock.NewRows([]string{"user_pid"}).AddRow("pidA").AddRow("pidB"))
	mock.ExpectRollback()

	_, err := repo.SellRange(context.Background(), sellParams())
	if !domain.IsUnauthorized(err) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSellRangeEmptyRangeIsUnauthorized(t *testing.T) {
	repo, mock, done := newMock(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WillReturnRows(sqlmock.NewRows([]string{"user_pid"}))
	mock.ExpectRollback()

	_, err := repo.SellRange(context.Background(), sellParams())
	if !domain.IsUnauthorized(err) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSellRangeRowsAffectedMismatchRollsBack(t *testing.T) {
	repo, mock, done := newMock(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").
		WillReturnRows(sqlmock.NewRows([]string{"user_pid"}).AddRow("pidA").AddRow("pidA"))
	mock.ExpectExec("UPDATE parking_times").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectRollback()

	_, err := repo.SellRange(context.Background(), sellParams())
	if !domain.IsUnauthorized(err) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSellRangeHistoryFailureRollsBack(t *testing.T) {
	repo, mock, done := newMock(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WillReturnRows(sqlmock.NewRows([]string{"user_pid"}).AddRow("pidA"))
	mock.ExpectExec("UPDATE parking_times").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT zone_id, spot_id, time_code").
		WillReturnRows(sqlmock.NewRows(slotCols).AddRow(1, 1, 0, "pidA", "2.00", true, "0xabc"))
	mock.ExpectExec("INSERT INTO listing_history").WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	_, err := repo.SellRange(context.Background(), sellParams())
	if !domain.IsPersistence(err) {
		t.Fatalf("expected persistence error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestListBySeller(t *testing.T) {
	repo, mock, done := newMock(t)
	defer done()

	at := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	mock.ExpectQuery("FROM listing_history WHERE seller_pid = ?").WithArgs("pidA").
		WillReturnRows(sqlmock.NewRows([]string{"id", "seller_pid", "zone_id", "spot_id", "start_time", "end_time", "price", "seller_key", "created_at"}).
			AddRow("l-2", "pidA", 1, 2, 900, 1800, "1.5000", "0xabc", at).
			AddRow("l-1", "pidA", 1, 1, 0, 2700, "6.0000", "0xabc", at.Add(-time.Hour)))

	out, err := repo.ListBySeller(context.Background(), "pidA")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(out) != 2 || out[0].ID != "l-2" || out[1].EndTime != 2700 || !out[1].Price.Equal(decimal.RequireFromString("6")) {
		t.Fatalf("unexpected sales %+v", out)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSellRangeStoreFailure(t *testing.T) {
	repo, mock, done := newMock(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").
		WillReturnRows(sqlmock.NewRows([]string{"user_pid"}).AddRow("pidA"))
	mock.ExpectExec("UPDATE parking_times").WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	_, err := repo.SellRange(context.Background(), sellParams())
	if !domain.IsPersistence(err) {
		t.Fatalf("expected persistence error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSellRangeDeadlineIsTimeout(t *testing.T) {
	repo, mock, done := newMock(t)
	defer done()

	mock.ExpectBegin().WillReturnError(context.DeadlineExceeded)

	_, err := repo.SellRange(context.Background(), sellParams())
	if !domain.IsTimeout(err) {
		t.Fatalf("expected timeout, got %v", err)
	}
}

func TestSummarizeZoneAggregatesPerSpot(t *testing.T) {
	repo, mock, done := newMock(t)
	defer done()

	mock.ExpectQuery("SELECT spot_id, MIN\\(time_code\\), MAX\\(time_code\\), SUM\\(price\\)").
		WithArgs(int64(3), int64(0), int64(86340)).
		WillReturnRows(sqlmock.NewRows([]string{"spot_id", "min", "max", "sum"}).
			AddRow(1, 0, 1800, "6.00").
			AddRow(2, 900, 900, "1.50"))

	out, err := repo.SummarizeZone(context.Background(), 3, 0, 86340)
	if err != nil {
		t.Fatalf("summarize zone: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 spots, got %d", len(out))
	}
	if out[0].ZoneID != 3 || out[0].EndTime != 2700 || !out[0].Price.Equal(decimal.RequireFromString("6")) {
		t.Fatalf("unexpected first spot %+v", out[0])
	}
	if out[1].StartTime != 900 || out[1].EndTime != 1800 {
		t.Fatalf("unexpected second spot %+v", out[1])
	}
}

func TestListAvailableBySpotRebindsForPostgres(t *testing.T) {
	repo, mock, done := newMock(t)
	defer done()
	repo.Dialect = "postgres"

	mock.ExpectQuery("zone_id = \\$1 AND spot_id = \\$2 .* BETWEEN \\$3 AND \\$4").
		WithArgs(int64(1), int64(2), int64(0), int64(900)).
		WillReturnRows(sqlmock.NewRows(slotCols).AddRow(1, 2, 900, "admin", "1.00", true, nil))

	out, err := repo.ListAvailableBySpot(context.Background(), 1, 2, 0, 900)
	if err != nil {
		t.Fatalf("list spot: %v", err)
	}
	if len(out) != 1 || out[0].SellerKey.Valid {
		t.Fatalf("unexpected rows %+v", out)
	}
}

func TestFindOccupantMissing(t *testing.T) {
	repo, mock, done := newMock(t)
	defer done()

	mock.ExpectQuery("ORDER BY time_code DESC").WillReturnRows(sqlmock.NewRows(slotCols))

	_, err := repo.FindOccupant(context.Background(), 1, 1, 0, 899)
	if !domain.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}
