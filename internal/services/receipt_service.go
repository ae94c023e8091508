package services

import (
	"bytes"
	"context"
	"fmt"

	"spotmarket/internal/domain"
	"spotmarket/internal/domain/models"
	"spotmarket/internal/utils"

	"github.com/phpdave11/gofpdf"
)

type RewardReader interface {
	GetReward(ctx context.Context, caller, id string) (models.BountyReward, error)
}

// ReceiptService renders reward receipts as PDF.
type ReceiptService struct {
	Rewards   RewardReader
	Symbol    string
	RequestID string
}

// RewardReceipt returns the PDF bytes and a download filename. Only issued rewards have receipts.
func (s ReceiptService) RewardReceipt(ctx context.Context, caller, id string) ([]byte, string, error) {
	rw, err := s.Rewards.GetReward(ctx, caller, id)
	if err != nil {
		return nil, "", err
	}
	if rw.Status != models.RewardIssued {
		return nil, "", domain.ConflictError{Resource: "reward", Msg: "receipt is available once the reward is issued"}
	}

	data, err := buildRewardReceiptPDF(rw, s.Symbol)
	if err != nil {
		return nil, "", domain.InternalError{Msg: "render receipt", Err: err}
	}
	utils.LogEvent(s.RequestID, "bounty", "receipt", "rendered receipt "+rw.ID)
	return data, fmt.Sprintf("REWARD_%s.pdf", rw.ID), nil
}

func buildRewardReceiptPDF(rw models.BountyReward, symbol string) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Bounty Reward Receipt", false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "BOUNTY REWARD RECEIPT")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		fmt.Sprintf("Receipt        : %s", rw.ID),
		fmt.Sprintf("Reporter       : %s", rw.ReporterPID),
		fmt.Sprintf("Zone / Spot    : %d / %d", rw.ZoneID, rw.SpotID),
		fmt.Sprintf("Time slot      : %s", utils.FormatEpoch(rw.WindowStart)),
		fmt.Sprintf("Reported plate : %s", rw.ReportedPlate),
		fmt.Sprintf("Amount         : %s", utils.FormatQuantity(rw.Amount, symbol)),
		fmt.Sprintf("Transaction    : %s", rw.TxID.ValueOrZero()),
		fmt.Sprintf("Issued at      : %s", rw.UpdatedAt.UTC().Format("2006-01-02 15:04")+" UTC"),
	}
	for _, l := range lines {
		pdf.Cell(0, 7, l)
		pdf.Ln(7)
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 6, "The amount above was transferred on the ledger to the reporter's account. One reward is paid per violation and time slot.", "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
