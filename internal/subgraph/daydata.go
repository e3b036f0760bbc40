package subgraph

import (
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/j-veylop/uniswap-dashboard-tui/internal/models"
)

type rawDayData struct {
	Date      models.Scalar `json:"date"`
	TVLUSD    models.Scalar `json:"tvlUSD"`
	VolumeUSD models.Scalar `json:"volumeUSD"`
	FeesUSD   models.Scalar `json:"feesUSD"`
}

func (d rawDayData) toModel() (models.DayData, error) {
	date, err := strconv.ParseInt(d.Date.String(), 10, 64)
	if err != nil {
		return models.DayData{}, fmt.Errorf("date %q: %w", d.Date, err)
	}

	tvl, err := decimalOrZero(d.TVLUSD)
	if err != nil {
		return models.DayData{}, fmt.Errorf("tvlUSD: %w", err)
	}
	volume, err := decimalOrZero(d.VolumeUSD)
	if err != nil {
		return models.DayData{}, fmt.Errorf("volumeUSD: %w", err)
	}
	fees, err := decimalOrZero(d.FeesUSD)
	if err != nil {
		return models.DayData{}, fmt.Errorf("feesUSD: %w", err)
	}

	return models.DayData{
		Date:      time.Unix(date, 0).UTC(),
		TVLUSD:    tvl,
		VolumeUSD: volume,
		FeesUSD:   fees,
	}, nil
}

// decimalOrZero parses s, treating a missing value as zero.
func decimalOrZero(s models.Scalar) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s.String())
}
