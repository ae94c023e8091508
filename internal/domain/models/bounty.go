package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/guregu/null.v4"
)

// BountyReport is a claim that the car parked in a spot is not the occupant's.
type BountyReport struct {
	PID         string `json:"pid" validate:"required,max=64"`
	ZoneID      int64  `json:"zone_id" validate:"gt=0"`
	SpotID      int64  `json:"spot_id" validate:"gt=0"`
	LicenseInfo string `json:"license_info" validate:"required,max=32"`
}

type RewardStatus string

const (
	RewardPending RewardStatus = "pending"
	RewardIssued  RewardStatus = "issued"
	RewardFailed  RewardStatus = "failed"
	// RewardUnknown means the transfer may or may not have reached the ledger.
	// The violation stays blocked until the record is reconciled against the ledger memo.
	RewardUnknown RewardStatus = "unknown"
)

// BountyReward records one reward per violation event, keyed by DedupKey.
type BountyReward struct {
	ID            string          `json:"id"`
	DedupKey      string          `json:"-"`
	ReporterPID   string          `json:"reporter_pid"`
	ZoneID        int64           `json:"zone_id"`
	SpotID        int64           `json:"spot_id"`
	WindowStart   int64           `json:"window_start"`
	ReportedPlate string          `json:"reported_plate"`
	Amount        decimal.Decimal `json:"amount"`
	Status        RewardStatus    `json:"status"`
	TxID          null.String     `json:"tx_id"`
	Failure       null.String     `json:"failure"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

type BountyOutcome string

const (
	OutcomeAlreadyCompliant BountyOutcome = "already_compliant"
	OutcomeRewardIssued     BountyOutcome = "reward_issued"
	OutcomeAlreadyRewarded  BountyOutcome = "already_rewarded"
)

// BountyResult is the resolved state of a report.
type BountyResult struct {
	Outcome BountyOutcome
	Reward  *BountyReward
}
