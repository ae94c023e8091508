package services

import (
	"context"
	"errors"
	"testing"

	"spotmarket/internal/domain"
	"spotmarket/internal/domain/models"
	"spotmarket/internal/repositories"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
)

func listingRequest(start, end int64, price string) models.ListingRequest {
	return models.ListingRequest{
		PID:       "pidA",
		Signature: "0xsig",
		SignedAt:  fixedNow.Unix(),
		Spot: models.SpotRange{
			ZoneID:    1,
			SpotID:    1,
			StartTime: int64p(start),
			EndTime:   int64p(end),
			Price:     decimal.RequireFromString(price),
		},
	}
}

func newListingService(t *testing.T) (ListingService, sqlmock.Sqlmock, *fakeCredentials, *fakeNotifier) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	creds := &fakeCredentials{key: "0xSeller"}
	notifier := &fakeNotifier{}
	svc := ListingService{
		Credentials: creds,
		Store:       repositories.SlotRepository{DB: db, Dialect: "mysql"},
		Notifier:    notifier,
		RequestID:   "req-1",
	}
	return svc, mock, creds, notifier
}

func TestSellListsOwnedRangeAndBroadcasts(t *testing.T) {
	svc, mock, _, notifier := newListingService(t)

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").
		WillReturnRows(sqlmock.NewRows([]string{"user_pid"}).AddRow("pidA").AddRow("pidA").AddRow("pidA"))
	mock.ExpectExec("UPDATE parking_times").
		WithArgs("2", "0xSeller", int64(1), int64(1), int64(0), int64(1800), "pidA").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectQuery("SELECT zone_id, spot_id, time_code").
		WillReturnRows(sqlmock.NewRows([]string{"zone_id", "spot_id", "time_code", "user_pid", "price", "availability", "seller_key"}).
			AddRow(1, 1, 0, "pidA", "2.00", true, "0xSeller").
			AddRow(1, 1, 900, "pidA", "2.00", true, "0xSeller").
			AddRow(1, 1, 1800, "pidA", "2.00", true, "0xSeller"))
	mock.ExpectExec("INSERT INTO listing_history").
		WithArgs(sqlmock.AnyArg(), "pidA", int64(1), int64(1), int64(0), int64(2700), "6", "0xSeller").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	res, err := svc.Sell(context.Background(), listingRequest(0, 2700, "2.00"))
	if err != nil {
		t.Fatalf("sell: %v", err)
	}
	if len(res.Rows) != 3 {
		t.Fatalf("rows got %d", len(res.Rows))
	}
	sum := res.Summary
	if sum.StartTime != 0 || sum.EndTime != 2700 || !sum.Price.Equal(decimal.RequireFromString("6.00")) {
		t.Fatalf("unexpected summary %+v", sum)
	}

	if len(notifier.events) != 1 {
		t.Fatalf("expected one broadcast, got %d", len(notifier.events))
	}
	ev := notifier.events[0]
	if !ev.IsAvail || ev.ParkingInfo.ZoneID != 1 || ev.ParkingInfo.SpotID != 1 || ev.ParkingInfo.EndTime != 2700 {
		t.Fatalf("unexpected event %+v", ev)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSellMalformedNeverReachesLookups(t *testing.T) {
	cases := map[string]models.ListingRequest{
		"misaligned start": listingRequest(100, 2700, "2.00"),
		"empty range":      listingRequest(900, 900, "2.00"),
		"reversed range":   listingRequest(1800, 900, "2.00"),
		"zero price":       listingRequest(0, 900, "0"),
		"too precise":      listingRequest(0, 900, "1.00001"),
	}
	missingStart := listingRequest(0, 900, "1")
	missingStart.Spot.StartTime = nil
	cases["missing start"] = missingStart
	noSig := listingRequest(0, 900, "1")
	noSig.Signature = ""
	cases["missing signature"] = noSig

	for name, req := range cases {
		svc, mock, creds, notifier := newListingService(t)
		_, err := svc.Sell(context.Background(), req)
		if !domain.IsValidation(err) {
			t.Fatalf("%s: expected validation error, got %v", name, err)
		}
		if creds.calls != 0 || len(notifier.events) != 0 {
			t.Fatalf("%s: malformed request reached credential check or broadcast", name)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Fatalf("%s: %v", name, err)
		}
	}
}

func TestSellInvalidCredentialLeavesStoreUntouched(t *testing.T) {
	svc, mock, creds, notifier := newListingService(t)
	creds.err = domain.CredentialError{Reason: "key does not control account"}

	_, err := svc.Sell(context.Background(), listingRequest(0, 2700, "2.00"))
	if !domain.IsCredential(err) {
		t.Fatalf("expected credential error, got %v", err)
	}
	if len(notifier.events) != 0 {
		t.Fatalf("no broadcast expected")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSellForeignSlotIsUnauthorized(t *testing.T) {
	svc, mock, _, notifier := newListingService(t)

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").
		WillReturnRows(sqlmock.NewRows([]string{"user_pid"}).AddRow("pidA").AddRow("pidB").AddRow("pidA"))
	mock.ExpectRollback()

	_, err := svc.Sell(context.Background(), listingRequest(0, 2700, "2.00"))
	if !domain.IsUnauthorized(err) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if len(notifier.events) != 0 {
		t.Fatalf("no broadcast expected")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSellStoreFailureSkipsBroadcast(t *testing.T) {
	svc, mock, _, notifier := newListingService(t)

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WillReturnRows(sqlmock.NewRows([]string{"user_pid"}).AddRow("pidA"))
	mock.ExpectExec("UPDATE parking_times").WillReturnError(errors.New("lock wait timeout"))
	mock.ExpectRollback()

	_, err := svc.Sell(context.Background(), listingRequest(0, 900, "2.00"))
	if !domain.IsPersistence(err) {
		t.Fatalf("expected persistence error, got %v", err)
	}
	if len(notifier.events) != 0 {
		t.Fatalf("no broadcast expected")
	}
}

func TestHistoryListsCallerSales(t *testing.T) {
	svc, mock, _, _ := newListingService(t)

	mock.ExpectQuery("FROM listing_history").WithArgs("pidA").
		WillReturnRows(sqlmock.NewRows([]string{"id", "seller_pid", "zone_id", "spot_id", "start_time", "end_time", "price", "seller_key", "created_at"}).
			AddRow("l-1", "pidA", 1, 1, 0, 2700, "6.0000", "0xSeller", fixedNow))

	sales, err := svc.History(context.Background(), "pidA")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(sales) != 1 || sales[0].SellerPID != "pidA" || sales[0].StartTime != 0 || sales[0].EndTime != 2700 {
		t.Fatalf("unexpected sales %+v", sales)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
