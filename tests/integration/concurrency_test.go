package integration

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"wallet-remittance-engine/internal/core/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestConcurrentDebits_ExactlyAffordableCountSucceeds verifies the
// non-negative balance invariant under contention: with a balance of
// 1000.00, fifty concurrent debits of 100.00 each must produce exactly
// ten successes and forty rejections, never a negative balance.
func TestConcurrentDebits_ExactlyAffordableCountSucceeds(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	app.createWallet(t, "tenant-race")
	code, _ := app.credit(t, "tenant-race", "1000.00", "recharge", "payment", "seed_1")
	require.Equal(t, 201, code)

	const workers = 50
	var wg sync.WaitGroup
	results := make([]int, workers)

	// Raw http.Post here: testify's require must not run off the test
	// goroutine.
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			body := fmt.Sprintf(`{"amount":"100.00","reason":"shipping_cost","reference_type":"shipment","reference_id":"shp_%03d"}`, n)
			resp, err := http.Post(app.server.URL+"/api/v1/wallets/tenant-race/debit", "application/json", strings.NewReader(body))
			if err != nil {
				results[n] = -1
				return
			}
			resp.Body.Close()
			results[n] = resp.StatusCode
		}(i)
	}
	wg.Wait()

	succeeded, rejected := 0, 0
	for _, c := range results {
		switch c {
		case 201:
			succeeded++
		case 402:
			rejected++
		default:
			t.Fatalf("unexpected status %d", c)
		}
	}

	assert.Equal(t, 10, succeeded, "exactly floor(1000/100) debits must win")
	assert.Equal(t, 40, rejected)

	code, resp := app.getJSON(t, "/api/v1/wallets/tenant-race/balance")
	require.Equal(t, 200, code)
	assert.Equal(t, "0.00", data(t, resp)["balance"])

	// Ledger records exactly the winning debits plus the seed credit.
	entries := app.ledgerRepo.allEntries("tenant-race")
	assert.Len(t, entries, 11)
}

// TestBalanceConservation_MixedOperations runs a long mixed sequence of
// 2-decimal credits and debits and checks the balance is bit-exact against
// an independently tracked decimal sum. Any float drift would show here.
func TestBalanceConservation_MixedOperations(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	app.createWallet(t, "tenant-sum")

	expected := decimal.Zero
	amounts := []string{"0.01", "10.10", "33.33", "249.99", "1000.00", "5.55", "0.99", "76.40"}

	for i := 0; i < 120; i++ {
		amount := amounts[i%len(amounts)]
		if i%3 == 0 {
			code, _ := app.credit(t, "tenant-sum", amount, "recharge", "payment", fmt.Sprintf("pay_%03d", i))
			require.Equal(t, 201, code)
			expected = expected.Add(decimal.RequireFromString(amount))
			continue
		}

		code, _ := app.debit(t, "tenant-sum", amount, "shipping_cost", "shipment", fmt.Sprintf("shp_%03d", i))
		if code == 201 {
			expected = expected.Sub(decimal.RequireFromString(amount))
		} else {
			require.Equal(t, 402, code)
		}
	}

	code, resp := app.getJSON(t, "/api/v1/wallets/tenant-sum/balance")
	require.Equal(t, 200, code)
	assert.Equal(t, expected.StringFixed(2), data(t, resp)["balance"])

	// The log replays to the same balance: sum(credits) - sum(debits).
	replayed := decimal.Zero
	for _, e := range app.ledgerRepo.allEntries("tenant-sum") {
		assert.True(t, e.Amount.IsPositive())
		switch e.Direction {
		case domain.DirectionCredit:
			replayed = replayed.Add(e.Amount)
		case domain.DirectionDebit:
			replayed = replayed.Sub(e.Amount)
		}
	}
	assert.True(t, replayed.Equal(expected), "log replays to %s, balance is %s", replayed, expected)
}

// TestConcurrentRemittanceBuilders verifies that two builders racing over
// the same shipment pool never double-remit: every shipment lands in
// exactly one batch, and the wallet is credited once per claimed shipment
// set.
func TestConcurrentRemittanceBuilders(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	app.createWallet(t, "tenant-dup")

	deliveredAt := time.Now().UTC().Add(-time.Hour)
	shipmentIDs := []string{"shp_a", "shp_b", "shp_c", "shp_d"}
	for _, id := range shipmentIDs {
		app.seedDeliveredCOD("tenant-dup", id, "1000.00", "100.00", deliveredAt)
	}

	asOf := time.Now().UTC()
	var wg sync.WaitGroup
	batches := make([]*domain.RemittanceBatch, 2)
	errs := make([]error, 2)

	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			batches[n], errs[n] = app.remittanceSvc.CreateBatch(context.Background(), "tenant-dup", "test", asOf)
		}(i)
	}
	wg.Wait()

	// Collect the claimed sets of whichever builds succeeded.
	claimed := make(map[string]int)
	expectedCredit := decimal.Zero
	for i := 0; i < 2; i++ {
		if errs[i] != nil {
			continue
		}
		require.NotNil(t, batches[i])
		for _, id := range batches[i].ShipmentIDs {
			claimed[id]++
		}
		expectedCredit = expectedCredit.Add(batches[i].Financials.NetPayable)
	}

	require.NotEmpty(t, claimed, "at least one builder must win")
	for _, id := range shipmentIDs {
		assert.Equal(t, 1, claimed[id], "shipment %s must be claimed exactly once", id)
	}

	// Claim flags stuck.
	for _, id := range shipmentIDs {
		s, ok := app.shipmentRepo.get(id)
		require.True(t, ok)
		assert.True(t, s.RemittanceIncluded)
	}

	// Wallet received exactly the sum of the winning batches' net payables.
	account, err := app.walletRepo.GetByTenantID(context.Background(), "tenant-dup")
	require.NoError(t, err)
	require.NotNil(t, account)
	assert.True(t, account.Balance.Equal(expectedCredit),
		"balance %s, expected %s", account.Balance, expectedCredit)
}

// TestSequentialRemittance_SecondSweepEmpty pins the claim guard across
// sequential runs: immediately rebuilding after a successful batch finds
// nothing, even before any webhook arrives.
func TestSequentialRemittance_SecondSweepEmpty(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	app.createWallet(t, "tenant-seq")
	deliveredAt := time.Now().UTC().Add(-time.Hour)
	app.seedDeliveredCOD("tenant-seq", "shp_s1", "800.00", "90.00", deliveredAt)

	first, err := app.remittanceSvc.CreateBatch(context.Background(), "tenant-seq", "test", time.Now().UTC())
	require.NoError(t, err)
	require.Len(t, first.ShipmentIDs, 1)

	_, err = app.remittanceSvc.CreateBatch(context.Background(), "tenant-seq", "test", time.Now().UTC())
	require.Error(t, err)
}
