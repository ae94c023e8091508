// Package signature signs and recovers secp256k1 signatures over JSON values.
// The value is hashed with a marketplace stamp so a signature produced here
// cannot be replayed as an Ethereum or Bitcoin message.
package signature

import (
	"crypto/ecdsa"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
)

// spotID is added to the recovery id so signatures are recognizably ours.
const spotID = 29

var (
	ErrMalformed  = errors.New("malformed signature")
	ErrRecoveryID = errors.New("invalid recovery id")
	ErrValues     = errors.New("invalid signature values")
)

// Stamp returns the 32 byte hash that is actually signed for value.
func Stamp(value any) ([]byte, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}

	valueHash := crypto.Keccak256Hash(data)
	stamp := []byte("\x19Spot Market Signed Message:\n32")

	return crypto.Keccak256Hash(stamp, valueHash.Bytes()).Bytes(), nil
}

// Sign signs value and returns the 65 byte [R|S|V] signature as 0x-prefixed hex.
func Sign(value any, privateKey *ecdsa.PrivateKey) (string, error) {
	data, err := Stamp(value)
	if err != nil {
		return "", err
	}

	sig, err := crypto.Sign(data, privateKey)
	if err != nil {
		return "", err
	}
	sig[64] += spotID

	return "0x" + hex.EncodeToString(sig), nil
}

// FromAddress recovers the address of the key that produced sigHex over value.
func FromAddress(value any, sigHex string) (string, error) {
	sig, err := decode(sigHex)
	if err != nil {
		return "", err
	}

	tran, err := Stamp(value)
	if err != nil {
		return "", err
	}

	publicKey, err := crypto.SigToPub(tran, sig)
	if err != nil {
		return "", fmt.Errorf("recover public key: %w", err)
	}

	rs := sig[:crypto.RecoveryIDOffset]
	if !crypto.VerifySignature(crypto.FromECDSAPub(publicKey), tran, rs) {
		return "", ErrValues
	}

	return crypto.PubkeyToAddress(*publicKey).Hex(), nil
}

// Address is the account address derived from a private key.
func Address(privateKey *ecdsa.PrivateKey) string {
	return crypto.PubkeyToAddress(privateKey.PublicKey).Hex()
}

// decode validates the hex signature and strips the recovery id offset.
func decode(sigHex string) ([]byte, error) {
	raw := strings.TrimPrefix(strings.TrimSpace(sigHex), "0x")
	sig, err := hex.DecodeString(raw)
	if err != nil || len(sig) != crypto.SignatureLength {
		return nil, ErrMalformed
	}

	recID := int(sig[64]) - spotID
	if recID != 0 && recID != 1 {
		return nil, ErrRecoveryID
	}
	sig[64] = byte(recID)

	r := new(big.Int).SetBytes(sig[:32])
	s := new(big.Int).SetBytes(sig[32:64])
	if !crypto.ValidateSignatureValues(sig[64], r, s, true) {
		return nil, ErrValues
	}

	return sig, nil
}
