package cli

import (
	"crypto/ecdsa"
	"encoding/json"
	"fmt"
	"time"

	"spotmarket/internal/domain/models"
	"spotmarket/internal/signature"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

type signOptions struct {
	keyPath string
	pid     string
	zoneID  int64
	spotID  int64
	start   int64
	end     int64
	price   string
}

// NewSignCmd creates the sign command
func NewSignCmd() *cobra.Command {
	var o signOptions

	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Sign a listing request",
		Long: `Builds a sell request for a slot range, signs it with a local key and prints
the JSON body to POST to /api/sell. The key never leaves this machine.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := crypto.LoadECDSA(o.keyPath)
			if err != nil {
				return fmt.Errorf("failed to load key: %w", err)
			}

			req, err := buildListing(o, key, time.Now().UTC())
			if err != nil {
				return err
			}

			out, err := json.MarshalIndent(req, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}

	cmd.Flags().StringVar(&o.keyPath, "key", "", "Path to the seller key")
	cmd.Flags().StringVar(&o.pid, "pid", "", "Account that owns the slots")
	cmd.Flags().Int64Var(&o.zoneID, "zone", 0, "Zone id")
	cmd.Flags().Int64Var(&o.spotID, "spot", 0, "Spot id")
	cmd.Flags().Int64Var(&o.start, "start", 0, "First slot, epoch seconds")
	cmd.Flags().Int64Var(&o.end, "end", 0, "End of the range (exclusive), epoch seconds")
	cmd.Flags().StringVar(&o.price, "price", "", "Price per slot")
	for _, f := range []string{"key", "pid", "zone", "spot", "start", "end", "price"} {
		_ = cmd.MarkFlagRequired(f)
	}

	return cmd
}

func buildListing(o signOptions, key *ecdsa.PrivateKey, now time.Time) (models.ListingRequest, error) {
	price, err := decimal.NewFromString(o.price)
	if err != nil {
		return models.ListingRequest{}, fmt.Errorf("invalid price %q: %w", o.price, err)
	}

	req := models.ListingRequest{
		PID:      o.pid,
		SignedAt: now.Unix(),
		Spot: models.SpotRange{
			ZoneID:    o.zoneID,
			SpotID:    o.spotID,
			StartTime: &o.start,
			EndTime:   &o.end,
			Price:     price,
		},
	}

	sig, err := signature.Sign(req.Challenge(), key)
	if err != nil {
		return models.ListingRequest{}, fmt.Errorf("failed to sign: %w", err)
	}
	req.Signature = sig

	return req, nil
}
