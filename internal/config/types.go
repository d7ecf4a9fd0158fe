package config

import (
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Provider is the configuration of the chain-state lesson.
type Provider struct {
	RPCURL  string
	Address *common.Address // optional
}

// SendTx is the configuration of the native transfer lesson.
type SendTx struct {
	RPCURL         string
	PrivateKey     string
	Receiver       common.Address
	Amount         string // decimal ETH
	PriorityBuffer *big.Int
	Timeout        time.Duration
}

// ReadToken is the configuration of the ERC-20 read lesson.
type ReadToken struct {
	RPCURL string
	Token  common.Address
	User   common.Address
}

// WriteToken is the configuration of the ERC-20 transfer lesson.
type WriteToken struct {
	RPCURL         string
	PrivateKey     string
	Token          common.Address
	Receiver       common.Address
	Amount         string // decimal, in token units
	PriorityBuffer *big.Int
	Timeout        time.Duration
}

// Events is the configuration of the Transfer event lesson.
type Events struct {
	WSURL       string
	Contract    common.Address
	Receiver    common.Address
	Step        int
	Lookback    uint64
	FailFast    bool
	ExplorerURL string // empty = derive from chain id
}

// Provider validates and returns the provider lesson settings.
func (c *Config) Provider() (Provider, error) {
	if err := c.Require(KeyRPCURL); err != nil {
		return Provider{}, err
	}
	url, err := c.RPCURL(KeyRPCURL)
	if err != nil {
		return Provider{}, err
	}
	addr, err := c.OptionalAddress(KeyAddress)
	if err != nil {
		return Provider{}, err
	}
	return Provider{RPCURL: url, Address: addr}, nil
}

// SendTx validates and returns the native transfer lesson settings.
func (c *Config) SendTx() (SendTx, error) {
	if err := c.Require(KeyRPCURL, KeyPrivateKey, KeyReceiver); err != nil {
		return SendTx{}, err
	}
	url, err := c.RPCURL(KeyRPCURL)
	if err != nil {
		return SendTx{}, err
	}
	to, err := c.Address(KeyReceiver)
	if err != nil {
		return SendTx{}, err
	}
	buf, err := c.Uint64(KeyPriorityBuffer, DefaultPriorityBuffer)
	if err != nil {
		return SendTx{}, err
	}
	timeout, err := c.Duration(KeyTxTimeout, TxConfirmTimeout)
	if err != nil {
		return SendTx{}, err
	}
	return SendTx{
		RPCURL:         url,
		PrivateKey:     c.Get(KeyPrivateKey),
		Receiver:       to,
		Amount:         c.String(KeySendAmount, DefaultSendAmount),
		PriorityBuffer: gweiToWei(buf),
		Timeout:        timeout,
	}, nil
}

// ReadToken validates and returns the ERC-20 read lesson settings.
func (c *Config) ReadToken() (ReadToken, error) {
	if err := c.Require(KeyRPCURL, KeyTokenAddress, KeyUserAddress); err != nil {
		return ReadToken{}, err
	}
	url, err := c.RPCURL(KeyRPCURL)
	if err != nil {
		return ReadToken{}, err
	}
	token, err := c.Address(KeyTokenAddress)
	if err != nil {
		return ReadToken{}, err
	}
	user, err := c.Address(KeyUserAddress)
	if err != nil {
		return ReadToken{}, err
	}
	return ReadToken{RPCURL: url, Token: token, User: user}, nil
}

// WriteToken validates and returns the ERC-20 transfer lesson settings.
func (c *Config) WriteToken() (WriteToken, error) {
	if err := c.Require(KeyRPCURL, KeyPrivateKey, KeyTokenAddress, KeyReceiver, KeyAmount); err != nil {
		return WriteToken{}, err
	}
	url, err := c.RPCURL(KeyRPCURL)
	if err != nil {
		return WriteToken{}, err
	}
	token, err := c.Address(KeyTokenAddress)
	if err != nil {
		return WriteToken{}, err
	}
	to, err := c.Address(KeyReceiver)
	if err != nil {
		return WriteToken{}, err
	}
	buf, err := c.Uint64(KeyPriorityBuffer, DefaultPriorityBuffer)
	if err != nil {
		return WriteToken{}, err
	}
	timeout, err := c.Duration(KeyTxTimeout, TxConfirmTimeout)
	if err != nil {
		return WriteToken{}, err
	}
	return WriteToken{
		RPCURL:         url,
		PrivateKey:     c.Get(KeyPrivateKey),
		Token:          token,
		Receiver:       to,
		Amount:         c.Get(KeyAmount),
		PriorityBuffer: gweiToWei(buf),
		Timeout:        timeout,
	}, nil
}

// Events validates and returns the Transfer event lesson settings.
// WS_URL wins over INFURA_ID.
func (c *Config) Events() (Events, error) {
	if err := c.Require(KeyContractAddress, KeyReceiverAddress); err != nil {
		return Events{}, err
	}

	var ws string
	switch {
	case c.Get(KeyWSURL) != "":
		u, err := c.WSURL(KeyWSURL)
		if err != nil {
			return Events{}, err
		}
		ws = u
	case c.Get(KeyInfuraID) != "":
		ws = fmt.Sprintf(InfuraWSTemplate, c.Get(KeyInfuraID))
	default:
		return Events{}, &MissingEnvError{Keys: []string{KeyInfuraID + " or " + KeyWSURL}}
	}

	contract, err := c.Address(KeyContractAddress)
	if err != nil {
		return Events{}, err
	}
	receiver, err := c.Address(KeyReceiverAddress)
	if err != nil {
		return Events{}, err
	}
	step, err := c.Int(KeyLogStep, DefaultLogStep)
	if err != nil {
		return Events{}, err
	}
	if step < 1 {
		return Events{}, fmt.Errorf("%w: %s must be at least 1", ErrInvalidValue, KeyLogStep)
	}
	lookback, err := c.Uint64(KeyLogLookback, DefaultLogLookback)
	if err != nil {
		return Events{}, err
	}
	failFast, err := c.Bool(KeyLogFailFast, false)
	if err != nil {
		return Events{}, err
	}
	return Events{
		WSURL:       ws,
		Contract:    contract,
		Receiver:    receiver,
		Step:        step,
		Lookback:    lookback,
		FailFast:    failFast,
		ExplorerURL: c.Get(KeyExplorerURL),
	}, nil
}

func gweiToWei(gwei uint64) *big.Int {
	return new(big.Int).Mul(new(big.Int).SetUint64(gwei), big.NewInt(1e9))
}
