package db

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/j-veylop/uniswap-dashboard-tui/internal/models"
)

func swap(id, amount string, ts int64) models.SwapRecord {
	return models.SwapRecord{
		ID:        id,
		AmountUSD: decimal.RequireFromString(amount),
		Timestamp: ts,
		Token0:    "WETH",
		Token1:    "USDC",
	}
}

func TestUpsertSwaps_Dedupes(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	n, err := db.UpsertSwaps([]models.SwapRecord{swap("a", "10.5", 100), swap("b", "2", 200)})
	if err != nil {
		t.Fatalf("UpsertSwaps failed: %v", err)
	}
	if n != 2 {
		t.Errorf("Expected 2 inserted, got %d", n)
	}

	n, err = db.UpsertSwaps([]models.SwapRecord{swap("b", "999", 200), swap("c", "3", 300)})
	if err != nil {
		t.Fatalf("UpsertSwaps failed: %v", err)
	}
	if n != 1 {
		t.Errorf("Expected 1 inserted on overlap, got %d", n)
	}

	count, err := db.CountSwaps()
	if err != nil {
		t.Fatalf("CountSwaps failed: %v", err)
	}
	if count != 3 {
		t.Errorf("Expected 3 swaps, got %d", count)
	}

	swaps, err := db.GetSwapsSince(time.Time{})
	if err != nil {
		t.Fatalf("GetSwapsSince failed: %v", err)
	}
	if !swaps[1].AmountUSD.Equal(decimal.NewFromInt(2)) {
		t.Errorf("Existing swap was overwritten: %s", swaps[1].AmountUSD)
	}
}

func TestUpsertSwaps_LargeBatch(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	swaps := make([]models.SwapRecord, maxBatchSize*2+7)
	for i := range swaps {
		swaps[i] = swap(fmt.Sprintf("swap-%04d", i), "1", int64(i))
	}

	n, err := db.UpsertSwaps(swaps)
	if err != nil {
		t.Fatalf("UpsertSwaps failed: %v", err)
	}
	if n != len(swaps) {
		t.Errorf("Expected %d inserted, got %d", len(swaps), n)
	}
}

func TestUpsertSwaps_Empty(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	n, err := db.UpsertSwaps(nil)
	if err != nil || n != 0 {
		t.Errorf("UpsertSwaps(nil) = %d, %v", n, err)
	}
}

func TestGetSwapsSince(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	if _, err := db.UpsertSwaps([]models.SwapRecord{
		swap("c", "3", 300),
		swap("a", "0.000001", 100),
		swap("b", "2", 200),
	}); err != nil {
		t.Fatalf("UpsertSwaps failed: %v", err)
	}

	swaps, err := db.GetSwapsSince(time.Unix(200, 0))
	if err != nil {
		t.Fatalf("GetSwapsSince failed: %v", err)
	}
	if len(swaps) != 2 || swaps[0].ID != "b" || swaps[1].ID != "c" {
		t.Errorf("Expected [b c] oldest first, got %+v", swaps)
	}

	all, err := db.GetSwapsSince(time.Time{})
	if err != nil {
		t.Fatalf("GetSwapsSince failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("Expected 3 swaps, got %d", len(all))
	}
	if all[0].AmountUSD.String() != "0.000001" {
		t.Errorf("Expected exact decimal round trip, got %s", all[0].AmountUSD)
	}
	if all[0].Pair() != "WETH/USDC" {
		t.Errorf("Expected pair WETH/USDC, got %q", all[0].Pair())
	}
}

func TestPruneSwapsBefore(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	if _, err := db.UpsertSwaps([]models.SwapRecord{
		swap("old", "1", 100), swap("edge", "1", 200), swap("new", "1", 300),
	}); err != nil {
		t.Fatalf("UpsertSwaps failed: %v", err)
	}

	deleted, err := db.PruneSwapsBefore(time.Unix(200, 0))
	if err != nil {
		t.Fatalf("PruneSwapsBefore failed: %v", err)
	}
	if deleted != 1 {
		t.Errorf("Expected 1 deleted, got %d", deleted)
	}

	count, _ := db.CountSwaps()
	if count != 2 {
		t.Errorf("Expected 2 remaining, got %d", count)
	}
}

func TestFetchRuns(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	base := time.Date(2024, 9, 14, 12, 0, 0, 0, time.UTC)
	ok := &models.FetchRun{Timestamp: base, Fetched: 100, Inserted: 40, Skipped: 1, DurationMs: 850}
	failed := &models.FetchRun{Timestamp: base.Add(time.Minute), Error: "subgraph: fetch swaps: HTTP 502"}

	for _, run := range []*models.FetchRun{ok, failed} {
		if err := db.InsertFetchRun(run); err != nil {
			t.Fatalf("InsertFetchRun failed: %v", err)
		}
		if run.ID == 0 {
			t.Error("Expected ID to be assigned")
		}
	}

	runs, err := db.GetRecentFetchRuns(10)
	if err != nil {
		t.Fatalf("GetRecentFetchRuns failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("Expected 2 runs, got %d", len(runs))
	}
	if !runs[0].Failed() || runs[1].Failed() {
		t.Errorf("Expected newest failed run first, got %+v", runs)
	}
	if runs[1].Inserted != 40 || runs[1].Skipped != 1 || runs[1].DurationMs != 850 {
		t.Errorf("Unexpected run fields: %+v", runs[1])
	}
	if !runs[1].Timestamp.Equal(base) {
		t.Errorf("Expected timestamp %v, got %v", base, runs[1].Timestamp)
	}

	deleted, err := db.PruneFetchRunsBefore(base.Add(30 * time.Second))
	if err != nil {
		t.Fatalf("PruneFetchRunsBefore failed: %v", err)
	}
	if deleted != 1 {
		t.Errorf("Expected 1 pruned run, got %d", deleted)
	}
}

func TestNullString(t *testing.T) {
	if ns := nullString(""); ns.Valid {
		t.Error("Expected invalid NullString for empty string")
	}
	if ns := nullString("x"); !ns.Valid || ns.String != "x" {
		t.Errorf("Unexpected NullString: %+v", ns)
	}
}

func TestReplacePools(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	first := []models.Pool{
		{ID: "0x1", Token0: "USDC", Token1: "WETH", Liquidity: decimal.RequireFromString("32405870923542910293"), VolumeUSD: decimal.NewFromInt(5)},
		{ID: "0x2", Token0: "WBTC", Token1: "WETH", Liquidity: decimal.NewFromInt(10), VolumeUSD: decimal.NewFromInt(7)},
	}
	if err := db.ReplacePools(first); err != nil {
		t.Fatalf("ReplacePools failed: %v", err)
	}

	pools, err := db.GetPools()
	if err != nil {
		t.Fatalf("GetPools failed: %v", err)
	}
	if len(pools) != 2 || pools[0].ID != "0x1" || pools[1].ID != "0x2" {
		t.Fatalf("Expected pools in rank order, got %+v", pools)
	}
	if pools[0].Liquidity.String() != "32405870923542910293" {
		t.Errorf("Expected exact liquidity, got %s", pools[0].Liquidity)
	}

	if err := db.ReplacePools([]models.Pool{{ID: "0x2", Token0: "WBTC", Token1: "WETH"}}); err != nil {
		t.Fatalf("second ReplacePools failed: %v", err)
	}
	pools, _ = db.GetPools()
	if len(pools) != 1 || pools[0].Pair() != "WBTC/WETH" {
		t.Errorf("Expected only the latest list, got %+v", pools)
	}
}
