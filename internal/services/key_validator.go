package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"spotmarket/internal/domain"
	"spotmarket/internal/domain/models"
	"spotmarket/internal/guard"
	"spotmarket/internal/signature"
	"spotmarket/internal/utils"
)

// KeyAccountLookup is the ledger's key to accounts index.
type KeyAccountLookup interface {
	KeyAccounts(ctx context.Context, address string) ([]string, error)
}

// KeyValidator proves that a listing request was signed by a key controlling the claimed account.
type KeyValidator struct {
	Accounts KeyAccountLookup
	Guard    *guard.Breaker
	Skew     time.Duration
	Now      func() time.Time
}

func (v KeyValidator) now() time.Time {
	if v.Now != nil {
		return v.Now()
	}
	return utils.NowUTC()
}

// Validate returns the signer address, which becomes the listing's seller key.
func (v KeyValidator) Validate(ctx context.Context, req models.ListingRequest) (string, error) {
	if strings.TrimSpace(req.Signature) == "" {
		return "", domain.ValidationError{Field: "signature", Msg: "is required"}
	}

	skew := v.Skew
	if skew <= 0 {
		skew = 5 * time.Minute
	}
	age := v.now().Sub(time.Unix(req.SignedAt, 0))
	if age > skew || age < -skew {
		return "", domain.CredentialError{Reason: "signature is outside the accepted time window"}
	}

	address, err := signature.FromAddress(req.Challenge(), req.Signature)
	if err != nil {
		return "", domain.CredentialError{Reason: "signature does not verify", Err: err}
	}

	var accounts []string
	err = v.Guard.Do(ctx, func(ctx context.Context) error {
		var err error
		accounts, err = v.Accounts.KeyAccounts(ctx, address)
		return err
	})
	if err != nil {
		if domain.IsTimeout(err) || domain.IsDependency(err) {
			return "", err
		}
		return "", domain.DependencyError{Service: "ledger", Err: fmt.Errorf("key accounts: %w", err)}
	}

	want := utils.AccountName(req.PID)
	for _, a := range accounts {
		if utils.AccountName(a) == want {
			return address, nil
		}
	}
	return "", domain.CredentialError{Reason: "key does not control account " + want}
}
