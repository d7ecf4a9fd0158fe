package chain

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
)

// fakeBackend is an in-memory Backend. Zero values mean "succeed with zero".
type fakeBackend struct {
	chainID  *big.Int
	nonce    uint64
	gasPrice *big.Int
	tip      *big.Int
	balance  *big.Int
	gas      uint64
	gasErr   error
	sendErr  error

	receipts     []*types.Receipt // returned in order, nil entries mean "not yet mined"
	receiptErr   error
	receiptCalls int

	sent      []*types.Transaction
	estimated []ethereum.CallMsg
}

func (f *fakeBackend) BlockNumber(context.Context) (uint64, error) { return 0, nil }

func (f *fakeBackend) ChainID(context.Context) (*big.Int, error) {
	if f.chainID == nil {
		return big.NewInt(1), nil
	}
	return f.chainID, nil
}

func (f *fakeBackend) SuggestGasPrice(context.Context) (*big.Int, error) {
	if f.gasPrice == nil {
		return nil, errors.New("no gas price")
	}
	return f.gasPrice, nil
}

func (f *fakeBackend) SuggestGasTipCap(context.Context) (*big.Int, error) {
	if f.tip == nil {
		return nil, errors.New("no tip")
	}
	return f.tip, nil
}

func (f *fakeBackend) BalanceAt(context.Context, common.Address, *big.Int) (*big.Int, error) {
	if f.balance == nil {
		return new(big.Int), nil
	}
	return f.balance, nil
}

func (f *fakeBackend) CallContract(context.Context, ethereum.CallMsg, *big.Int) ([]byte, error) {
	return nil, nil
}

func (f *fakeBackend) PendingNonceAt(context.Context, common.Address) (uint64, error) {
	return f.nonce, nil
}

func (f *fakeBackend) EstimateGas(_ context.Context, msg ethereum.CallMsg) (uint64, error) {
	f.estimated = append(f.estimated, msg)
	return f.gas, f.gasErr
}

func (f *fakeBackend) SendTransaction(_ context.Context, tx *types.Transaction) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, tx)
	return nil
}

func (f *fakeBackend) TransactionReceipt(context.Context, common.Hash) (*types.Receipt, error) {
	f.receiptCalls++
	if f.receiptErr != nil {
		return nil, f.receiptErr
	}
	if len(f.receipts) == 0 {
		return nil, ethereum.NotFound
	}
	r := f.receipts[0]
	f.receipts = f.receipts[1:]
	if r == nil {
		return nil, ethereum.NotFound
	}
	return r, nil
}

// keySigner signs with an in-memory key.
type keySigner struct {
	key *ecdsa.PrivateKey
}

func newKeySigner(t *testing.T) *keySigner {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	return &keySigner{key: key}
}

func (s *keySigner) Address() common.Address { return crypto.PubkeyToAddress(s.key.PublicKey) }

func (s *keySigner) SignTx(tx *types.Transaction, chainID *big.Int) (*types.Transaction, error) {
	return types.SignTx(tx, types.LatestSignerForChainID(chainID), s.key)
}
