package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// AllPairs is the rule pair that matches every swap.
const AllPairs = "*"

// AlertRule fires when the volume of the latest bucket for Pair reaches
// ThresholdUSD.
type AlertRule struct {
	ThresholdUSD decimal.Decimal `json:"thresholdUSD"`
	Pair         string          `json:"pair"`
	Name         string          `json:"name,omitempty"`
}

// Key identifies a rule for crossing detection.
func (r AlertRule) Key() string {
	return strings.ToUpper(strings.TrimSpace(r.Pair)) + "@" + r.ThresholdUSD.String()
}

// Label returns the rule name, or the pair when unnamed.
func (r AlertRule) Label() string {
	if r.Name != "" {
		return r.Name
	}
	if r.Pair == AllPairs {
		return "All pairs"
	}
	return r.Pair
}

// VolumeAlert is a rule whose threshold was crossed upward.
type VolumeAlert struct {
	IntervalStart time.Time
	VolumeUSD     decimal.Decimal
	Rule          AlertRule
}
