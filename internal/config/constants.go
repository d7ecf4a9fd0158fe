package config

import "time"

// Environment keys.
const (
	KeyRPCURL          = "RPC_URL"
	KeyWSURL           = "WS_URL"
	KeyInfuraID        = "INFURA_ID"
	KeyAddress         = "ADDRESS"
	KeyPrivateKey      = "PRIVATE_KEY"
	KeyReceiver        = "RECEIVER"
	KeyTokenAddress    = "TOKEN_ADDRESS"
	KeyUserAddress     = "USER_ADDRESS"
	KeyAmount          = "AMOUNT"
	KeySendAmount      = "SEND_AMOUNT"
	KeyPriorityBuffer  = "PRIORITY_BUFFER_GWEI"
	KeyTxTimeout       = "TX_TIMEOUT"
	KeyContractAddress = "CONTRACT_ADDRESS"
	KeyReceiverAddress = "RECEIVER_ADDRESS"
	KeyLogStep         = "LOG_STEP"
	KeyLogLookback     = "LOG_LOOKBACK"
	KeyLogFailFast     = "LOG_FAIL_FAST"
	KeyExplorerURL     = "EXPLORER_URL"
	KeyLogLevel        = "LOG_LEVEL"
)

// Gas limits used as EstimateGas fallbacks when the node cannot simulate the tx.
const (
	GasLimitETHTransfer   = uint64(21_000)
	GasLimitERC20Transfer = uint64(60_000)
)

// Lesson defaults.
const (
	DefaultSendAmount     = "0.01"
	DefaultPriorityBuffer = uint64(1) // gwei added on top of base + tip
	DefaultLogStep        = 250
	DefaultLogLookback    = uint64(2000)
	DefaultLogLevel       = "info"

	InfuraWSTemplate = "wss://mainnet.infura.io/ws/v3/%s"
)

// Timeouts.
const (
	TxConfirmTimeout = 3 * time.Minute
	ReceiptPollEvery = 2 * time.Second
)
