package chain

import (
	"errors"
	"math/big"
	"strings"
)

// ErrNetworkNotFound is returned when a chain id is not in the registry.
var ErrNetworkNotFound = errors.New("network not found")

// Network holds the display metadata of one EVM network.
type Network struct {
	Name     string // ethers-style network name, e.g. "mainnet", "sepolia"
	ChainID  int64
	Currency string
	Explorer string
	Testnet  bool
}

// Registry indexes known networks by chain id.
type Registry struct {
	networks []Network
	byID     map[int64]*Network
}

// NewRegistry returns the built-in network registry.
func NewRegistry() *Registry {
	nets := allNetworks()
	r := &Registry{
		networks: nets,
		byID:     make(map[int64]*Network, len(nets)),
	}
	for i := range r.networks {
		r.byID[r.networks[i].ChainID] = &r.networks[i]
	}
	return r
}

// Lookup finds a network by chain id.
func (r *Registry) Lookup(chainID *big.Int) (*Network, error) {
	if chainID == nil || !chainID.IsInt64() {
		return nil, ErrNetworkNotFound
	}
	n, ok := r.byID[chainID.Int64()]
	if !ok {
		return nil, ErrNetworkNotFound
	}
	return n, nil
}

// NameOf returns the network name for chainID, or "unknown".
func (r *Registry) NameOf(chainID *big.Int) string {
	n, err := r.Lookup(chainID)
	if err != nil {
		return "unknown"
	}
	return n.Name
}

// TxURL joins an explorer base URL and a transaction hash.
func TxURL(explorer, hash string) string {
	if explorer == "" || hash == "" {
		return ""
	}
	return strings.TrimRight(explorer, "/") + "/tx/" + hash
}

// --- network data ---

func allNetworks() []Network {
	return []Network{
		{Name: "mainnet", ChainID: 1, Currency: "ETH", Explorer: "https://etherscan.io"},
		{Name: "sepolia", ChainID: 11155111, Currency: "ETH", Explorer: "https://sepolia.etherscan.io", Testnet: true},
		{Name: "holesky", ChainID: 17000, Currency: "ETH", Explorer: "https://holesky.etherscan.io", Testnet: true},
		{Name: "base", ChainID: 8453, Currency: "ETH", Explorer: "https://basescan.org"},
		{Name: "base-sepolia", ChainID: 84532, Currency: "ETH", Explorer: "https://sepolia.basescan.org", Testnet: true},
		{Name: "matic", ChainID: 137, Currency: "POL", Explorer: "https://polygonscan.com"},
		{Name: "matic-amoy", ChainID: 80002, Currency: "POL", Explorer: "https://amoy.polygonscan.com", Testnet: true},
		{Name: "arbitrum", ChainID: 42161, Currency: "ETH", Explorer: "https://arbiscan.io"},
		{Name: "arbitrum-sepolia", ChainID: 421614, Currency: "ETH", Explorer: "https://sepolia.arbiscan.io", Testnet: true},
		{Name: "optimism", ChainID: 10, Currency: "ETH", Explorer: "https://optimistic.etherscan.io"},
		{Name: "optimism-sepolia", ChainID: 11155420, Currency: "ETH", Explorer: "https://sepolia-optimism.etherscan.io", Testnet: true},
		{Name: "bnb", ChainID: 56, Currency: "BNB", Explorer: "https://bscscan.com"},
		{Name: "bnbt", ChainID: 97, Currency: "tBNB", Explorer: "https://testnet.bscscan.com", Testnet: true},
		{Name: "linea", ChainID: 59144, Currency: "ETH", Explorer: "https://lineascan.build"},
		{Name: "linea-sepolia", ChainID: 59141, Currency: "ETH", Explorer: "https://sepolia.lineascan.build", Testnet: true},
	}
}
