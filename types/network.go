package types

import "fmt"

// Network names a ledger network the wallet can connect to
type Network string

const (
	Mainnet    Network = "Mainnet"
	Testnet    Network = "Testnet"
	Devnet     Network = "Devnet"
	AMMDevnet  Network = "AMM-Devnet"
	CustomNode Network = "Custom"
)

var networkEndpoints = map[Network]string{
	Mainnet:   "wss://s1.ripple.com",
	Testnet:   "wss://s.altnet.rippletest.net:51233",
	Devnet:    "wss://s.devnet.rippletest.net:51233",
	AMMDevnet: "wss://amm.devnet.rippletest.net:51233",
}

// ParseNetwork parses a network name as shown to users
func ParseNetwork(name string) (Network, error) {
	switch n := Network(name); n {
	case Mainnet, Testnet, Devnet, AMMDevnet, CustomNode:
		return n, nil
	}
	return "", fmt.Errorf("unknown network %q", name)
}

// DefaultEndpoint returns the public WebSocket endpoint of the network.
// Custom networks have none.
func (n Network) DefaultEndpoint() string {
	return networkEndpoints[n]
}

// IsTest reports whether addresses on the network use the test X-address prefix
func (n Network) IsTest() bool {
	return n != Mainnet && n != CustomNode
}
