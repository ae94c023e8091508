package services

import (
	"context"
	"time"

	"spotmarket/internal/domain"
	"spotmarket/internal/domain/models"
	"spotmarket/internal/repositories"
	"spotmarket/internal/utils"

	"github.com/google/uuid"
)

// CredentialChecker returns the seller key for a request whose credential is valid.
type CredentialChecker interface {
	Validate(ctx context.Context, req models.ListingRequest) (string, error)
}

type ListingStore interface {
	SellRange(ctx context.Context, p repositories.SellParams) ([]models.TimeSlot, error)
	ListBySeller(ctx context.Context, pid string) ([]models.ListingRecord, error)
}

// Notifier fans a listing change out to zone subscribers.
type Notifier interface {
	Publish(ev models.ZoneListingEvent) (sent, dropped int, err error)
}

// ListingService runs the sell flow: credential, ownership, atomic listing, broadcast.
type ListingService struct {
	Credentials  CredentialChecker
	Store        ListingStore
	Notifier     Notifier
	StoreTimeout time.Duration
	RequestID    string
}

func (s ListingService) Sell(ctx context.Context, req models.ListingRequest) (models.ListingResult, error) {
	if err := ValidateListing(req); err != nil {
		return models.ListingResult{}, err
	}

	sellerKey, err := s.Credentials.Validate(ctx, req)
	if err != nil {
		utils.LogEvent(s.RequestID, "sell", "credential", "rejected: "+err.Error())
		return models.ListingResult{}, err
	}

	storeCtx, cancel := s.storeCtx(ctx)
	defer cancel()

	rows, err := s.Store.SellRange(storeCtx, repositories.SellParams{
		ListingID: uuid.NewString(),
		ZoneID:    req.Spot.ZoneID,
		SpotID:    req.Spot.SpotID,
		Start:     *req.Spot.StartTime,
		End:       *req.Spot.EndTime,
		PID:       req.PID,
		Price:     req.Spot.Price,
		SellerKey: sellerKey,
	})
	if err != nil {
		if !domain.IsUnauthorized(err) {
			utils.LogFailure(s.RequestID, "sell", "list", err)
		}
		return models.ListingResult{}, err
	}

	summary, ok := domain.SummarizeListing(rows)
	if !ok {
		return models.ListingResult{}, domain.InternalError{Msg: "listing produced no rows"}
	}
	utils.LogEvent(s.RequestID, "sell", "list", "listed "+utils.FormatEpoch(summary.StartTime)+" to "+utils.FormatEpoch(summary.EndTime))

	s.broadcast(summary)
	return models.ListingResult{Rows: rows, Summary: summary}, nil
}

// History returns the sales pid has made, newest first.
func (s ListingService) History(ctx context.Context, pid string) ([]models.ListingRecord, error) {
	sctx, cancel := s.storeCtx(ctx)
	defer cancel()
	return s.Store.ListBySeller(sctx, pid)
}

func (s ListingService) storeCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.StoreTimeout > 0 {
		return context.WithTimeout(ctx, s.StoreTimeout)
	}
	return context.WithCancel(ctx)
}

// broadcast is best effort: the listing is already committed.
func (s ListingService) broadcast(summary models.ZoneListingSummary) {
	if s.Notifier == nil {
		return
	}
	sent, dropped, err := s.Notifier.Publish(summary.Event())
	if err != nil {
		utils.LogFailure(s.RequestID, "sell", "broadcast", err)
		return
	}
	if dropped > 0 {
		utils.Logger().Warnw("listing event dropped", "request_id", s.RequestID, "zone_id", summary.ZoneID, "sent", sent, "dropped", dropped)
	}
}

// ValidateListing checks the request shape before any lookup.
func ValidateListing(req models.ListingRequest) error {
	if err := validateStruct(req); err != nil {
		return err
	}

	start, end := *req.Spot.StartTime, *req.Spot.EndTime
	if !domain.IsSlotAligned(start) {
		return domain.ValidationError{Field: "start_time", Msg: "must be a multiple of 900 seconds"}
	}
	if !domain.IsSlotAligned(end) {
		return domain.ValidationError{Field: "end_time", Msg: "must be a multiple of 900 seconds"}
	}
	if end <= start {
		return domain.ValidationError{Field: "end_time", Msg: "must be after start_time"}
	}
	if !req.Spot.Price.IsPositive() {
		return domain.ValidationError{Field: "price", Msg: "must be greater than 0"}
	}
	if !req.Spot.Price.Equal(req.Spot.Price.Truncate(utils.TokenPrecision)) {
		return domain.ValidationError{Field: "price", Msg: "must have at most 4 decimal places"}
	}
	return nil
}
