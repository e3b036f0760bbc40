package aggregator

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/j-veylop/uniswap-dashboard-tui/internal/models"
)

// ParseSwap validates a raw swap. The amount must be a non-negative decimal
// and the timestamp an integer count of unix seconds.
func ParseSwap(raw models.RawSwap) (models.SwapRecord, error) {
	id := strings.TrimSpace(raw.ID)
	if id == "" {
		return models.SwapRecord{}, fmt.Errorf("%w: missing id", ErrInvalidRecord)
	}

	amountText := strings.TrimSpace(raw.AmountUSD.String())
	if amountText == "" {
		return models.SwapRecord{}, fmt.Errorf("%w: swap %s: missing amountUSD", ErrInvalidRecord, id)
	}
	amount, err := decimal.NewFromString(amountText)
	if err != nil {
		return models.SwapRecord{}, fmt.Errorf("%w: swap %s: amountUSD %q: %v", ErrInvalidRecord, id, amountText, err)
	}
	if amount.IsNegative() {
		return models.SwapRecord{}, fmt.Errorf("%w: swap %s: negative amountUSD %s", ErrInvalidRecord, id, amountText)
	}

	tsText := strings.TrimSpace(raw.Timestamp.String())
	ts, err := strconv.ParseInt(tsText, 10, 64)
	if err != nil {
		return models.SwapRecord{}, fmt.Errorf("%w: swap %s: timestamp %q is not an integer", ErrInvalidRecord, id, tsText)
	}

	token0, token1 := raw.Symbols()
	return models.SwapRecord{
		ID:        id,
		AmountUSD: amount,
		Timestamp: ts,
		Token0:    token0,
		Token1:    token1,
	}, nil
}

// ParseSwaps parses every raw swap, dropping invalid ones. It returns the
// valid records in input order together with the number dropped.
func ParseSwaps(raws []models.RawSwap) ([]models.SwapRecord, int) {
	records := make([]models.SwapRecord, 0, len(raws))
	skipped := 0
	for _, raw := range raws {
		rec, err := ParseSwap(raw)
		if err != nil {
			skipped++
			continue
		}
		records = append(records, rec)
	}
	return records, skipped
}
