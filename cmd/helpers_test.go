package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/Mohsinsiddi/w3lessons/internal/contract"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

// rpcMock creates a test HTTP server that serves a fixed JSON-RPC response
// per method. Pass method→result pairs; any unknown method returns an RPC error.
func rpcMock(t *testing.T, responses map[string]interface{}) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Method string          `json:"method"`
			ID     json.RawMessage `json:"id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if result, ok := responses[req.Method]; ok {
			json.NewEncoder(w).Encode(map[string]interface{}{ //nolint:errcheck
				"jsonrpc": "2.0",
				"id":      req.ID,
				"result":  result,
			})
		} else {
			json.NewEncoder(w).Encode(map[string]interface{}{ //nolint:errcheck
				"jsonrpc": "2.0",
				"id":      req.ID,
				"error":   map[string]interface{}{"code": -32601, "message": "method not found"},
			})
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

// fakeNode is an in-memory chain with one ERC-20 token. It serves every
// backend interface the lessons use.
type fakeNode struct {
	mu sync.Mutex

	chainID  *big.Int
	block    uint64
	balance  *big.Int
	tokenBal map[common.Address]*big.Int

	logs     []types.Log
	getLogs  []ethereum.FilterQuery
	tooLarge func(q ethereum.FilterQuery) bool

	sent    []*types.Transaction
	subLogs chan<- types.Log
	subErr  chan error
}

func newFakeNode() *fakeNode {
	return &fakeNode{
		chainID:  big.NewInt(11155111),
		block:    5_000,
		balance:  big.NewInt(1e18),
		tokenBal: map[common.Address]*big.Int{},
	}
}

func (f *fakeNode) BlockNumber(context.Context) (uint64, error) { return f.block, nil }

func (f *fakeNode) ChainID(context.Context) (*big.Int, error) { return f.chainID, nil }

func (f *fakeNode) SuggestGasPrice(context.Context) (*big.Int, error) { return big.NewInt(10e9), nil }

func (f *fakeNode) SuggestGasTipCap(context.Context) (*big.Int, error) { return big.NewInt(1e9), nil }

func (f *fakeNode) BalanceAt(context.Context, common.Address, *big.Int) (*big.Int, error) {
	return f.balance, nil
}

func (f *fakeNode) CallContract(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	m, err := contract.ERC20.MethodById(msg.Data[:4])
	if err != nil {
		return nil, err
	}
	switch m.Name {
	case "name":
		return m.Outputs.Pack("Tether USD")
	case "symbol":
		return m.Outputs.Pack("USDT")
	case "decimals":
		return m.Outputs.Pack(uint8(6))
	case "totalSupply":
		return m.Outputs.Pack(big.NewInt(1_000_000_000_000))
	case "balanceOf":
		args, err := m.Inputs.Unpack(msg.Data[4:])
		if err != nil {
			return nil, err
		}
		if bal, ok := f.tokenBal[args[0].(common.Address)]; ok {
			return m.Outputs.Pack(bal)
		}
		return m.Outputs.Pack(new(big.Int))
	}
	return nil, errors.New("execution reverted")
}

func (f *fakeNode) PendingNonceAt(context.Context, common.Address) (uint64, error) { return 4, nil }

func (f *fakeNode) EstimateGas(context.Context, ethereum.CallMsg) (uint64, error) { return 21_000, nil }

func (f *fakeNode) SendTransaction(_ context.Context, tx *types.Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, tx)
	return nil
}

func (f *fakeNode) TransactionReceipt(context.Context, common.Hash) (*types.Receipt, error) {
	return &types.Receipt{Status: types.ReceiptStatusSuccessful, BlockNumber: big.NewInt(5_001), GasUsed: 21_000}, nil
}

func (f *fakeNode) FilterLogs(_ context.Context, q ethereum.FilterQuery) ([]types.Log, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getLogs = append(f.getLogs, q)
	if f.tooLarge != nil && f.tooLarge(q) {
		return nil, errors.New("query returned more than 10000 results")
	}
	from, to := q.FromBlock.Uint64(), q.ToBlock.Uint64()
	var out []types.Log
	for _, l := range f.logs {
		if l.BlockNumber < from || l.BlockNumber > to {
			continue
		}
		if len(q.Topics) > 2 && len(q.Topics[2]) > 0 && l.Topics[2] != q.Topics[2][0] {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

type nodeSub struct {
	errc chan error
	once sync.Once
}

func (s *nodeSub) Err() <-chan error { return s.errc }
func (s *nodeSub) Unsubscribe() { s.once.Do(func() { close(s.errc) }) }

func (f *fakeNode) SubscribeFilterLogs(_ context.Context, _ ethereum.FilterQuery, ch chan<- types.Log) (ethereum.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subLogs = ch
	sub := &nodeSub{errc: make(chan error, 1)}
	f.subErr = sub.errc
	return sub, nil
}

func transferLog(token, from, to common.Address, value int64, block uint64) types.Log {
	return types.Log{
		Address: token,
		Topics: []common.Hash{
			contract.TransferTopic,
			common.BytesToHash(from.Bytes()),
			common.BytesToHash(to.Bytes()),
		},
		Data:        common.LeftPadBytes(big.NewInt(value).Bytes(), 32),
		BlockNumber: block,
		TxHash:      common.BigToHash(new(big.Int).SetUint64(block)),
	}
}
