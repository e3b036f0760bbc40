package subgraph

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/j-veylop/uniswap-dashboard-tui/internal/models"
)

const topPoolsQuery = `
	query TopPools($first: Int!) {
		pools(first: $first, orderBy: liquidity, orderDirection: desc) {
			id
			token0 { symbol }
			token1 { symbol }
			liquidity
			volumeUSD
		}
	}
`

type rawPool struct {
	Token0    *models.TokenRef `json:"token0"`
	Token1    *models.TokenRef `json:"token1"`
	ID        string           `json:"id"`
	Liquidity models.Scalar    `json:"liquidity"`
	VolumeUSD models.Scalar    `json:"volumeUSD"`
}

func (p rawPool) toModel() (models.Pool, error) {
	liquidity, err := decimalOrZero(p.Liquidity)
	if err != nil {
		return models.Pool{}, fmt.Errorf("pool %s: liquidity: %w", p.ID, err)
	}
	volume, err := decimalOrZero(p.VolumeUSD)
	if err != nil {
		return models.Pool{}, fmt.Errorf("pool %s: volumeUSD: %w", p.ID, err)
	}

	pool := models.Pool{ID: p.ID, Liquidity: liquidity, VolumeUSD: volume}
	if p.Token0 != nil {
		pool.Token0 = p.Token0.Symbol
	}
	if p.Token1 != nil {
		pool.Token1 = p.Token1.Symbol
	}
	return pool, nil
}

// FetchTopPools returns the n pools holding the most liquidity, largest first.
func (c *Client) FetchTopPools(ctx context.Context, n int) ([]models.Pool, error) {
	if n <= 0 {
		return nil, nil
	}

	data, err := c.doQuery(ctx, topPoolsQuery, map[string]any{"first": min(n, c.pageSize)})
	if err != nil {
		return nil, fmt.Errorf("subgraph: fetch top pools: %w", err)
	}

	var result struct {
		Pools []rawPool `json:"pools"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("subgraph: decode top pools: %w", err)
	}

	out := make([]models.Pool, 0, len(result.Pools))
	for _, p := range result.Pools {
		pool, err := p.toModel()
		if err != nil {
			return nil, fmt.Errorf("subgraph: %w", err)
		}
		out = append(out, pool)
	}
	return out, nil
}
