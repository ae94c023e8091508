package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"spotmarket/internal/domain/models"
	"spotmarket/internal/signature"

	"github.com/ethereum/go-ethereum/crypto"
)

func TestBuildListingVerifies(t *testing.T) {
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}

	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	req, err := buildListing(signOptions{
		pid: "alice", zoneID: 3, spotID: 7, start: 1714557600, end: 1714561200, price: "2.50",
	}, key, now)
	if err != nil {
		t.Fatalf("buildListing: %v", err)
	}

	if req.SignedAt != now.Unix() {
		t.Fatalf("signed_at = %d, want %d", req.SignedAt, now.Unix())
	}
	addr, err := signature.FromAddress(req.Challenge(), req.Signature)
	if err != nil {
		t.Fatalf("FromAddress: %v", err)
	}
	if addr != signature.Address(key) {
		t.Fatalf("recovered %s, want %s", addr, signature.Address(key))
	}
}

func TestBuildListingRejectsBadPrice(t *testing.T) {
	key, _ := crypto.GenerateKey()
	if _, err := buildListing(signOptions{price: "two"}, key, time.Now()); err == nil {
		t.Fatalf("expected price error")
	}
}

func TestKeygenAndSign(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seller.ecdsa")

	var out bytes.Buffer
	keygen := NewKeygenCmd()
	keygen.SetOut(&out)
	keygen.SetArgs([]string{path})
	if err := keygen.Execute(); err != nil {
		t.Fatalf("keygen: %v", err)
	}
	if !strings.Contains(out.String(), "Address: 0x") {
		t.Fatalf("keygen output %q", out.String())
	}

	again := NewKeygenCmd()
	again.SetOut(&bytes.Buffer{})
	again.SetErr(&bytes.Buffer{})
	again.SetArgs([]string{path})
	if err := again.Execute(); err == nil {
		t.Fatalf("expected refusal to overwrite")
	}

	out.Reset()
	sign := NewSignCmd()
	sign.SetOut(&out)
	sign.SetArgs([]string{"--key", path, "--pid", "alice", "--zone", "1", "--spot", "2",
		"--start", "0", "--end", "900", "--price", "1.5"})
	if err := sign.Execute(); err != nil {
		t.Fatalf("sign: %v", err)
	}

	var req models.ListingRequest
	if err := json.Unmarshal(out.Bytes(), &req); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if !strings.HasPrefix(req.Signature, "0x") || req.Spot.SpotID != 2 {
		t.Fatalf("unexpected request %+v", req)
	}
}

func TestSeedDryRun(t *testing.T) {
	var out bytes.Buffer
	cmd := NewSeedCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--dry-run", "--zones", "2", "--spots", "3", "--days", "1", "--start", "2024-05-01"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if !strings.Contains(out.String(), "576 slots") {
		t.Fatalf("seed output %q", out.String())
	}
}

func TestSeedPrintsSQL(t *testing.T) {
	var out bytes.Buffer
	cmd := NewSeedCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--sql", "--driver", "postgres", "--zones", "1", "--spots", "1", "--days", "1", "--start", "2024-05-01"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if !strings.Contains(out.String(), "ON CONFLICT (zone_id, spot_id, time_code) DO NOTHING;") {
		t.Fatalf("seed output %.200q", out.String())
	}
}
