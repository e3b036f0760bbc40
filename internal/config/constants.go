package config

import (
	"fmt"
	"slices"
	"strings"
)

// DefaultNetwork is the chain queried when SUBGRAPH_NETWORK is unset.
const DefaultNetwork = "ethereum"

const (
	gatewayURLFormat = "https://gateway.thegraph.com/api/%s/subgraphs/id/%s"
	hostedURL        = "https://api.thegraph.com/subgraphs/name/uniswap/uniswap-v3"
)

// subgraphIDs maps a network name to the Uniswap V3 subgraph deployed on
// the decentralized network.
var subgraphIDs = map[string]string{
	"ethereum": "5zvR82QoaXYFyDEKLZ9t6v9adgnptxYpKpSbxtgVENFV",
	"arbitrum": "FbCGRftH4a3yZugY7TnbYgPJVEv2LvMT6oF1fxPe9aJM",
}

// Networks returns the network names with a known subgraph, sorted.
func Networks() []string {
	names := make([]string, 0, len(subgraphIDs))
	for name := range subgraphIDs {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// SubgraphURLFor builds the endpoint for network. The gateway needs an API
// key; without one only the ethereum network falls back to the legacy
// hosted service. An unknown network yields "".
func SubgraphURLFor(network, apiKey string) string {
	network = strings.ToLower(strings.TrimSpace(network))
	id, ok := subgraphIDs[network]
	if !ok {
		return ""
	}

	if apiKey = strings.TrimSpace(apiKey); apiKey != "" {
		return fmt.Sprintf(gatewayURLFormat, apiKey, id)
	}
	if network == DefaultNetwork {
		return hostedURL
	}
	return ""
}
