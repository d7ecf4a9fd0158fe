package contract

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"sync/atomic"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// ---------------------------------------------------------------------------
// fakeChain: an in-memory ERC-20 behind the chain.Backend surface
// ---------------------------------------------------------------------------

type fakeChain struct {
	name     string
	symbol   string
	decimals uint8
	supply   *big.Int
	balances map[common.Address]*big.Int

	callErr error
	noCode  bool
	calls   atomic.Int32

	mu   sync.Mutex
	sent []*types.Transaction
}

func newFakeChain() *fakeChain {
	return &fakeChain{
		name:     "Tether USD",
		symbol:   "USDT",
		decimals: 6,
		supply:   big.NewInt(1_000_000_000_000),
		balances: map[common.Address]*big.Int{},
	}
}

func (f *fakeChain) CallContract(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	f.calls.Add(1)
	if f.callErr != nil {
		return nil, f.callErr
	}
	if f.noCode {
		return nil, nil
	}

	m, err := ERC20.MethodById(msg.Data[:4])
	if err != nil {
		return nil, err
	}
	switch m.Name {
	case "name":
		return m.Outputs.Pack(f.name)
	case "symbol":
		return m.Outputs.Pack(f.symbol)
	case "decimals":
		return m.Outputs.Pack(f.decimals)
	case "totalSupply":
		return m.Outputs.Pack(f.supply)
	case "balanceOf":
		args, err := m.Inputs.Unpack(msg.Data[4:])
		if err != nil {
			return nil, err
		}
		bal, ok := f.balances[args[0].(common.Address)]
		if !ok {
			bal = new(big.Int)
		}
		return m.Outputs.Pack(bal)
	}
	return nil, errors.New("execution reverted")
}

func (f *fakeChain) BlockNumber(context.Context) (uint64, error) { return 100, nil }
func (f *fakeChain) ChainID(context.Context) (*big.Int, error) { return big.NewInt(11155111), nil }
func (f *fakeChain) SuggestGasPrice(context.Context) (*big.Int, error) { return big.NewInt(10e9), nil }
func (f *fakeChain) SuggestGasTipCap(context.Context) (*big.Int, error) {
	return big.NewInt(1e9), nil
}

func (f *fakeChain) BalanceAt(context.Context, common.Address, *big.Int) (*big.Int, error) {
	return big.NewInt(1e18), nil
}

func (f *fakeChain) PendingNonceAt(context.Context, common.Address) (uint64, error) { return 0, nil }

func (f *fakeChain) EstimateGas(context.Context, ethereum.CallMsg) (uint64, error) {
	return 0, errors.New("estimation unsupported")
}

func (f *fakeChain) SendTransaction(_ context.Context, tx *types.Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, tx)
	return nil
}

func (f *fakeChain) TransactionReceipt(context.Context, common.Hash) (*types.Receipt, error) {
	return nil, ethereum.NotFound
}

// ---------------------------------------------------------------------------
// fakeSubscriber: hands the test the log channel and the error channel
// ---------------------------------------------------------------------------

type fakeSub struct {
	errc chan error
	once sync.Once
}

func (s *fakeSub) Err() <-chan error { return s.errc }

func (s *fakeSub) Unsubscribe() { s.once.Do(func() { close(s.errc) }) }

type fakeSubscriber struct {
	err   error
	query ethereum.FilterQuery
	logs  chan<- types.Log
	sub   *fakeSub
}

func (f *fakeSubscriber) SubscribeFilterLogs(_ context.Context, q ethereum.FilterQuery, ch chan<- types.Log) (ethereum.Subscription, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.query = q
	f.logs = ch
	f.sub = &fakeSub{errc: make(chan error, 1)}
	return f.sub, nil
}
