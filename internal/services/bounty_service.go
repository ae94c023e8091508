package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"spotmarket/internal/domain"
	"spotmarket/internal/domain/models"
	"spotmarket/internal/guard"
	"spotmarket/internal/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OccupancyStore interface {
	FindOccupant(ctx context.Context, zoneID, spotID, from, to int64) (models.TimeSlot, error)
}

type RewardStore interface {
	Claim(ctx context.Context, rw models.BountyReward) (models.BountyReward, bool, error)
	MarkIssued(ctx context.Context, id, txID string) error
	MarkFailed(ctx context.Context, id, reason string) error
	MarkUnknown(ctx context.Context, id, reason string) error
	GetByID(ctx context.Context, id string) (models.BountyReward, error)
	ListByReporter(ctx context.Context, pid string) ([]models.BountyReward, error)
}

// PlateRegistry returns the normalized plate registered for an account.
type PlateRegistry interface {
	ExpectedPlate(ctx context.Context, pid string) (string, error)
}

// TokenTransferer pays out reward tokens and returns the ledger transaction id.
type TokenTransferer interface {
	Transfer(ctx context.Context, to, quantity, memo string) (string, error)
}

// BountyService resolves plate violation reports and pays each violation at most once.
type BountyService struct {
	Slots        OccupancyStore
	Rewards      RewardStore
	Plates       PlateRegistry
	Ledger       TokenTransferer
	Guard        *guard.Breaker
	RewardAmount decimal.Decimal
	Symbol       string
	StoreTimeout time.Duration
	Now          func() time.Time
	NewID        func() string
	RequestID    string
}

func (s BountyService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return utils.NowUTC()
}

func (s BountyService) newID() string {
	if s.NewID != nil {
		return s.NewID()
	}
	return uuid.NewString()
}

func (s BountyService) storeCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.StoreTimeout > 0 {
		return context.WithTimeout(ctx, s.StoreTimeout)
	}
	return context.WithCancel(ctx)
}

// DedupKey identifies one violation: a plate seen in a spot during one occupancy slot.
func DedupKey(zoneID, spotID, windowStart int64, plate string) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%d|%d|%d|%s", zoneID, spotID, windowStart, utils.NormalizePlate(plate))))
	return hex.EncodeToString(sum[:])
}

func (s BountyService) Report(ctx context.Context, rep models.BountyReport) (models.BountyResult, error) {
	if err := validateStruct(rep); err != nil {
		return models.BountyResult{}, err
	}
	reported := utils.NormalizePlate(rep.LicenseInfo)
	if reported == "" {
		return models.BountyResult{}, domain.ValidationError{Field: "license_info", Msg: "is required"}
	}

	now := s.now().Unix()

	sctx, cancel := s.storeCtx(ctx)
	occupant, err := s.Slots.FindOccupant(sctx, rep.ZoneID, rep.SpotID, now-domain.SlotDuration+1, now)
	cancel()
	if err != nil {
		return models.BountyResult{}, err
	}

	sctx, cancel = s.storeCtx(ctx)
	expected, err := s.Plates.ExpectedPlate(sctx, occupant.UserPID)
	cancel()
	if err != nil {
		return models.BountyResult{}, err
	}

	if expected == reported {
		utils.LogEvent(s.RequestID, "bounty", "report", fmt.Sprintf("zone %d spot %d compliant", rep.ZoneID, rep.SpotID))
		return models.BountyResult{Outcome: models.OutcomeAlreadyCompliant}, nil
	}

	stamp := s.now().UTC()
	claim := models.BountyReward{
		ID:            s.newID(),
		DedupKey:      DedupKey(rep.ZoneID, rep.SpotID, occupant.TimeCode, reported),
		ReporterPID:   rep.PID,
		ZoneID:        rep.ZoneID,
		SpotID:        rep.SpotID,
		WindowStart:   occupant.TimeCode,
		ReportedPlate: reported,
		Amount:        s.RewardAmount,
		CreatedAt:     stamp,
		UpdatedAt:     stamp,
	}

	sctx, cancel = s.storeCtx(ctx)
	reward, claimed, err := s.Rewards.Claim(sctx, claim)
	cancel()
	if err != nil {
		return models.BountyResult{}, err
	}
	if !claimed {
		utils.LogEvent(s.RequestID, "bounty", "report", "violation already rewarded as "+reward.ID)
		return models.BountyResult{Outcome: models.OutcomeAlreadyRewarded, Reward: &reward}, nil
	}

	return s.pay(ctx, reward)
}

// pay transfers the claimed reward and settles the record either way.
func (s BountyService) pay(ctx context.Context, reward models.BountyReward) (models.BountyResult, error) {
	to := utils.AccountName(reward.ReporterPID)
	quantity := utils.FormatQuantity(reward.Amount, s.Symbol)
	memo := fmt.Sprintf("bounty %s zone %d spot %d slot %d", reward.ID, reward.ZoneID, reward.SpotID, reward.WindowStart)

	var txID string
	err := s.Guard.Do(ctx, func(ctx context.Context) error {
		var err error
		txID, err = s.Ledger.Transfer(ctx, to, quantity, memo)
		return err
	})

	// settle even if the caller went away
	settle, cancel := s.storeCtx(context.WithoutCancel(ctx))
	defer cancel()

	if err != nil {
		utils.LogFailure(s.RequestID, "bounty", "transfer", err)

		// Only a refusal proves no tokens moved. Anything else may have been committed.
		if domain.IsTransfer(err) || guard.IsRejected(err) {
			if mErr := s.Rewards.MarkFailed(settle, reward.ID, err.Error()); mErr != nil {
				utils.LogFailure(s.RequestID, "bounty", "mark_failed", mErr)
			}
			if domain.IsTransfer(err) {
				return models.BountyResult{}, err
			}
			return models.BountyResult{}, domain.TransferError{Err: err}
		}

		if mErr := s.Rewards.MarkUnknown(settle, reward.ID, err.Error()); mErr != nil {
			utils.LogFailure(s.RequestID, "bounty", "mark_unknown", mErr)
		}
		if domain.IsTimeout(err) || domain.IsDependency(err) {
			return models.BountyResult{}, err
		}
		return models.BountyResult{}, domain.DependencyError{Service: "ledger", Err: err}
	}

	if mErr := s.Rewards.MarkIssued(settle, reward.ID, txID); mErr != nil {
		// tokens moved; the record stays pending so the violation cannot be paid twice
		utils.LogFailure(s.RequestID, "bounty", "mark_issued", mErr)
	}

	reward.Status = models.RewardIssued
	reward.TxID.SetValid(txID)
	utils.LogEvent(s.RequestID, "bounty", "transfer", quantity+" to "+to+" tx "+txID)
	return models.BountyResult{Outcome: models.OutcomeRewardIssued, Reward: &reward}, nil
}

func (s BountyService) ListRewards(ctx context.Context, pid string) ([]models.BountyReward, error) {
	sctx, cancel := s.storeCtx(ctx)
	defer cancel()
	return s.Rewards.ListByReporter(sctx, pid)
}

// GetReward returns one reward if caller reported it.
func (s BountyService) GetReward(ctx context.Context, caller, id string) (models.BountyReward, error) {
	sctx, cancel := s.storeCtx(ctx)
	defer cancel()

	rw, err := s.Rewards.GetByID(sctx, id)
	if err != nil {
		return models.BountyReward{}, err
	}
	if rw.ReporterPID != caller {
		return models.BountyReward{}, domain.ForbiddenError{Msg: "reward belongs to another reporter"}
	}
	return rw, nil
}
