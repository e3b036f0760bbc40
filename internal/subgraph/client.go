// Package subgraph queries the Uniswap V3 subgraph over GraphQL.
package subgraph

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/j-veylop/uniswap-dashboard-tui/internal/models"
)

const (
	// MaxPageSize is the largest `first` the Graph accepts.
	MaxPageSize = 1000

	requestTimeout = 30 * time.Second
)

// ErrEmptyURL is returned when no endpoint is configured.
var ErrEmptyURL = errors.New("subgraph: empty endpoint url")

// Client is a GraphQL client for the Uniswap V3 subgraph.
type Client struct {
	httpClient *http.Client
	url        string
	apiKey     string
	pageSize   int
}

// NewClient creates a new subgraph client. apiKey is optional and sent as a
// bearer token when set.
func NewClient(url, apiKey string) *Client {
	return &Client{
		url:    strings.TrimSpace(url),
		apiKey: strings.TrimSpace(apiKey),
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
		pageSize: MaxPageSize,
	}
}

// URL returns the configured endpoint.
func (c *Client) URL() string {
	return c.url
}

type graphqlRequest struct {
	Variables map[string]any `json:"variables,omitempty"`
	Query     string         `json:"query"`
}

type graphqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

const swapsQuery = `
	query Swaps($first: Int!, $since: BigInt!, $until: BigInt!) {
		swaps(
			first: $first
			orderBy: timestamp
			orderDirection: desc
			where: { timestamp_gte: $since, timestamp_lte: $until }
		) {
			id
			amountUSD
			timestamp
			token0 { symbol }
			token1 { symbol }
		}
	}
`

const swapsAtTimestampQuery = `
	query SwapsAt($first: Int!, $timestamp: BigInt!, $after: String!) {
		swaps(
			first: $first
			orderBy: id
			orderDirection: asc
			where: { timestamp: $timestamp, id_gt: $after }
		) {
			id
			amountUSD
			timestamp
			token0 { symbol }
			token1 { symbol }
		}
	}
`

// swapCollector accumulates unique swaps up to a limit.
type swapCollector struct {
	seen  map[string]struct{}
	out   []models.RawSwap
	limit int
}

func (sc *swapCollector) full() bool {
	return len(sc.out) >= sc.limit
}

// add appends the unseen swaps of page and returns how many were new and the
// oldest timestamp among them.
func (sc *swapCollector) add(page []models.RawSwap, oldest int64) (int, int64) {
	added := 0
	for _, s := range page {
		if sc.full() {
			break
		}
		if _, dup := sc.seen[s.ID]; dup {
			continue
		}
		sc.seen[s.ID] = struct{}{}
		sc.out = append(sc.out, s)
		added++
		if ts, err := strconv.ParseInt(s.Timestamp.String(), 10, 64); err == nil && ts < oldest {
			oldest = ts
		}
	}
	return added, oldest
}

// FetchSwaps returns up to limit swaps at or after since, newest first.
// Pages are walked with a timestamp cursor. Swaps sharing the cursor
// timestamp appear on both sides of a page boundary, so ids already seen are
// dropped. When a full page holds nothing new, every swap on it shares one
// timestamp; that timestamp is drained with an id cursor before the scan
// moves past it.
func (c *Client) FetchSwaps(ctx context.Context, since time.Time, limit int) ([]models.RawSwap, error) {
	if limit <= 0 {
		return nil, nil
	}

	until := time.Now().Unix()
	sc := &swapCollector{
		seen:  make(map[string]struct{}, min(limit, c.pageSize)),
		out:   make([]models.RawSwap, 0, min(limit, c.pageSize)),
		limit: limit,
	}

	for !sc.full() && until >= since.Unix() {
		first := min(c.pageSize, limit)

		page, err := c.fetchSwapPage(ctx, swapsQuery, map[string]any{
			"first": first,
			"since": strconv.FormatInt(since.Unix(), 10),
			"until": strconv.FormatInt(until, 10),
		})
		if err != nil {
			return nil, fmt.Errorf("subgraph: fetch swaps: %w", err)
		}

		added, oldest := sc.add(page, until)
		if len(page) < first {
			break
		}
		if added > 0 {
			until = oldest
			continue
		}

		if err := c.drainTimestamp(ctx, sc, until, first); err != nil {
			return nil, fmt.Errorf("subgraph: fetch swaps: %w", err)
		}
		until--
	}

	return sc.out, nil
}

// drainTimestamp collects every swap at exactly ts, paging by id.
func (c *Client) drainTimestamp(ctx context.Context, sc *swapCollector, ts int64, first int) error {
	after := ""
	for !sc.full() {
		page, err := c.fetchSwapPage(ctx, swapsAtTimestampQuery, map[string]any{
			"first":     first,
			"timestamp": strconv.FormatInt(ts, 10),
			"after":     after,
		})
		if err != nil {
			return err
		}

		sc.add(page, ts)
		if len(page) < first {
			return nil
		}
		after = page[len(page)-1].ID
	}
	return nil
}

func (c *Client) fetchSwapPage(ctx context.Context, query string, variables map[string]any) ([]models.RawSwap, error) {
	data, err := c.doQuery(ctx, query, variables)
	if err != nil {
		return nil, err
	}

	var result struct {
		Swaps []models.RawSwap `json:"swaps"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("decode swaps: %w", err)
	}
	return result.Swaps, nil
}

const dayDataQuery = `
	query DayData($first: Int!) {
		uniswapDayDatas(first: $first, orderBy: date, orderDirection: desc) {
			date
			tvlUSD
			volumeUSD
			feesUSD
		}
	}
`

// FetchDayData returns the protocol summaries of the last days days, newest
// first.
func (c *Client) FetchDayData(ctx context.Context, days int) ([]models.DayData, error) {
	if days <= 0 {
		return nil, nil
	}

	data, err := c.doQuery(ctx, dayDataQuery, map[string]any{"first": min(days, c.pageSize)})
	if err != nil {
		return nil, fmt.Errorf("subgraph: fetch day data: %w", err)
	}

	var result struct {
		DayDatas []rawDayData `json:"uniswapDayDatas"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("subgraph: decode day data: %w", err)
	}

	out := make([]models.DayData, 0, len(result.DayDatas))
	for _, d := range result.DayDatas {
		dd, err := d.toModel()
		if err != nil {
			return nil, fmt.Errorf("subgraph: day data: %w", err)
		}
		out = append(out, dd)
	}
	return out, nil
}

// FetchLatestBlock returns the latest block number indexed by the subgraph.
func (c *Client) FetchLatestBlock(ctx context.Context) (int64, error) {
	query := `
		query LatestBlock {
			_meta {
				block {
					number
				}
			}
		}
	`

	data, err := c.doQuery(ctx, query, nil)
	if err != nil {
		return 0, fmt.Errorf("subgraph: fetch latest block: %w", err)
	}

	var result struct {
		Meta struct {
			Block struct {
				Number int64 `json:"number"`
			} `json:"block"`
		} `json:"_meta"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return 0, fmt.Errorf("subgraph: decode latest block: %w", err)
	}

	return result.Meta.Block.Number, nil
}

// doQuery posts a GraphQL query and returns the raw "data" field.
func (c *Client) doQuery(ctx context.Context, query string, variables map[string]any) (json.RawMessage, error) {
	if c.url == "" {
		return nil, ErrEmptyURL
	}

	body, err := json.Marshal(graphqlRequest{Query: query, Variables: variables})
	if err != nil {
		return nil, fmt.Errorf("marshal graphql request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, truncate(string(respBody), 200))
	}

	var gqlResp graphqlResponse
	if err := json.Unmarshal(respBody, &gqlResp); err != nil {
		return nil, fmt.Errorf("decode graphql response: %w", err)
	}
	if len(gqlResp.Errors) > 0 {
		return nil, fmt.Errorf("graphql error: %s", gqlResp.Errors[0].Message)
	}

	return gqlResp.Data, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
