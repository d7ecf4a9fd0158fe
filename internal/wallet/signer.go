// Package wallet turns a hex private key into a transaction signer.
package wallet

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// ErrInvalidKey is returned when PRIVATE_KEY is not a 32-byte hex secp256k1 key.
var ErrInvalidKey = errors.New("invalid private key")

// Signer signs EVM transactions with a single in-memory key.
type Signer struct {
	key     *ecdsa.PrivateKey
	address common.Address
}

// FromHex parses a hex private key, with or without 0x prefix.
func FromHex(hexKey string) (*Signer, error) {
	hexKey = stripHexPrefix(strings.TrimSpace(hexKey))
	if hexKey == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidKey)
	}

	key, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}

	return &Signer{key: key, address: crypto.PubkeyToAddress(key.PublicKey)}, nil
}

// SignTx signs tx for chainID with the latest signer the chain supports.
func (s *Signer) SignTx(tx *types.Transaction, chainID *big.Int) (*types.Transaction, error) {
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(chainID), s.key)
	if err != nil {
		return nil, fmt.Errorf("signing transaction: %w", err)
	}
	return signed, nil
}

// Address returns the account the key controls.
func (s *Signer) Address() common.Address {
	return s.address
}

func stripHexPrefix(s string) string {
	if len(s) >= 2 && (s[:2] == "0x" || s[:2] == "0X") {
		return s[2:]
	}
	return s
}
