// Package ledger talks to the token ledger's HTTP RPC: the key to account index
// used to validate sellers, and token transfers used to pay bounty rewards.
package ledger

import (
	"bytes"
	"context"
	"crypto/ecdsa"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"spotmarket/internal/domain"
	"spotmarket/internal/signature"

	"github.com/ethereum/go-ethereum/crypto"
)

// ErrNoIssuerKey is returned by Transfer when no issuer key is configured.
var ErrNoIssuerKey = errors.New("issuer key not configured")

type Config struct {
	RPCURL        string
	TokenContract string
	IssuerAccount string
	IssuerKeyPath string
	Timeout       time.Duration
}

// Client is safe for concurrent use.
type Client struct {
	baseURL  string
	contract string
	issuer   string
	key      *ecdsa.PrivateKey
	http     *http.Client
}

func New(cfg Config) (*Client, error) {
	c := Client{
		baseURL:  strings.TrimRight(cfg.RPCURL, "/"),
		contract: cfg.TokenContract,
		issuer:   cfg.IssuerAccount,
		http:     &http.Client{Timeout: cfg.Timeout},
	}

	if cfg.IssuerKeyPath != "" {
		key, err := crypto.LoadECDSA(cfg.IssuerKeyPath)
		if err != nil {
			return nil, fmt.Errorf("load issuer key: %w", err)
		}
		c.key = key
	}

	return &c, nil
}

type keyAccountsRequest struct {
	PublicKey string `json:"public_key"`
}

type keyAccountsResponse struct {
	AccountNames []string `json:"account_names"`
}

// KeyAccounts lists the ledger accounts controlled by the given key address.
func (c *Client) KeyAccounts(ctx context.Context, address string) ([]string, error) {
	var resp keyAccountsResponse
	if err := c.send(ctx, http.MethodPost, "/v1/history/get_key_accounts", keyAccountsRequest{PublicKey: address}, &resp); err != nil {
		return nil, err
	}
	return resp.AccountNames, nil
}

type Authorization struct {
	Actor      string `json:"actor"`
	Permission string `json:"permission"`
}

type TransferData struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Quantity string `json:"quantity"`
	Memo     string `json:"memo"`
}

type Action struct {
	Account       string          `json:"account"`
	Name          string          `json:"name"`
	Authorization []Authorization `json:"authorization"`
	Data          TransferData    `json:"data"`
}

type PushTransaction struct {
	Actions   []Action `json:"actions"`
	Signature string   `json:"signature"`
}

type pushResponse struct {
	TransactionID string `json:"transaction_id"`
}

// Transfer moves quantity (an asset string like "1.0000 VTP") from the issuer to the
// given account and returns the ledger transaction id.
func (c *Client) Transfer(ctx context.Context, to, quantity, memo string) (string, error) {
	if c.key == nil {
		return "", domain.TransferError{Err: ErrNoIssuerKey}
	}

	actions := []Action{{
		Account:       c.contract,
		Name:          "transfer",
		Authorization: []Authorization{{Actor: c.issuer, Permission: "active"}},
		Data: TransferData{
			From:     c.issuer,
			To:       to,
			Quantity: quantity,
			Memo:     memo,
		},
	}}

	sig, err := signature.Sign(actions, c.key)
	if err != nil {
		return "", domain.TransferError{Err: fmt.Errorf("sign transfer: %w", err)}
	}

	var resp pushResponse
	if err := c.send(ctx, http.MethodPost, "/v1/chain/push_transaction", PushTransaction{Actions: actions, Signature: sig}, &resp); err != nil {
		var rej rejection
		if errors.As(err, &rej) {
			return "", domain.TransferError{Err: err}
		}
		return "", err
	}
	if resp.TransactionID == "" {
		return "", domain.DependencyError{Service: "ledger", Err: errors.New("ledger returned no transaction id")}
	}
	return resp.TransactionID, nil
}

// rejection is a 4xx answer: the ledger is up but refused the request.
type rejection struct {
	Status int
	Body   string
}

func (r rejection) Error() string {
	return fmt.Sprintf("ledger rejected request (%d): %s", r.Status, r.Body)
}

func (c *Client) send(ctx context.Context, method, path string, dataSend any, dataRecv any) error {
	var body io.Reader
	if dataSend != nil {
		data, err := json.Marshal(dataSend)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return domain.TimeoutError{Service: "ledger", Err: err}
		}
		return domain.DependencyError{Service: "ledger", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if resp.StatusCode >= 500 {
			return domain.DependencyError{Service: "ledger", Err: fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))}
		}
		return rejection{Status: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}

	if dataRecv != nil {
		if err := json.NewDecoder(resp.Body).Decode(dataRecv); err != nil {
			return domain.DependencyError{Service: "ledger", Err: fmt.Errorf("decode response: %w", err)}
		}
	}

	return nil
}
