package history_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/askupi/insights/pkg/database"
	"github.com/askupi/insights/pkg/history"
	"github.com/askupi/insights/pkg/storage"
)

func sampleAnalysis(description string) database.Analysis {
	return database.Analysis{
		Transactions: []database.Transaction{
			{
				Date:        "2024-01-05",
				Description: description,
				Amount:      decimal.NewFromFloat(-250.5),
				Category:    database.CategoryFood,
			},
		},
		Summary: database.Summary{
			TotalSpent:       decimal.NewFromFloat(-250.5),
			TotalReceived:    decimal.NewFromInt(2000),
			NetChange:        decimal.NewFromFloat(1749.5),
			TransactionCount: 1,
			StartDate:        "2024-01-01",
			EndDate:          "2024-01-31",
		},
	}
}

func TestAppendThenList(t *testing.T) {
	ledger := history.NewLedger(storage.NewFile(t.TempDir()))
	ctx := context.Background()

	analysis := sampleAnalysis("PhonePe payment to Blue Tokai")

	entry, err := ledger.Append(ctx, analysis)
	assert.NoError(t, err)
	assert.NotEmpty(t, entry.ID)
	assert.Equal(t, "2024-01-01", entry.StartDate)
	assert.Equal(t, "2024-01-31", entry.EndDate)

	entries, err := ledger.List(ctx)
	assert.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.Equal(t, entry.ID, entries[0].ID)

	stored := entries[0].Data
	assert.Len(t, stored.Transactions, 1)
	assert.True(t, stored.Transactions[0].Amount.Equal(analysis.Transactions[0].Amount))
	assert.Equal(t, analysis.Transactions[0].Description, stored.Transactions[0].Description)
	assert.True(t, stored.Summary.NetChange.Equal(analysis.Summary.NetChange))
	assert.Equal(t, analysis.Summary.TransactionCount, stored.Summary.TransactionCount)
}

func TestAppendOrdersMostRecentFirst(t *testing.T) {
	ledger := history.NewLedger(storage.NewFile(t.TempDir()))
	ctx := context.Background()

	first, err := ledger.Append(ctx, sampleAnalysis("first"))
	assert.NoError(t, err)

	second, err := ledger.Append(ctx, sampleAnalysis("second"))
	assert.NoError(t, err)

	entries, err := ledger.List(ctx)
	assert.NoError(t, err)
	assert.Len(t, entries, 2)
	assert.Equal(t, second.ID, entries[0].ID)
	assert.Equal(t, first.ID, entries[1].ID)
}

func TestRemove(t *testing.T) {
	ledger := history.NewLedger(storage.NewFile(t.TempDir()))
	ctx := context.Background()

	entry, err := ledger.Append(ctx, sampleAnalysis("x"))
	assert.NoError(t, err)

	removed, err := ledger.Remove(ctx, entry.ID)
	assert.NoError(t, err)
	assert.NotNil(t, removed)
	assert.Equal(t, entry.ID, removed.ID)

	entries, err := ledger.List(ctx)
	assert.NoError(t, err)
	assert.Empty(t, entries)

	removed, err = ledger.Remove(ctx, "no-such-id")
	assert.NoError(t, err)
	assert.Nil(t, removed)
}

func TestAppName(t *testing.T) {
	ledger := history.NewLedger(storage.NewFile(t.TempDir()))
	ctx := context.Background()

	cases := map[string]string{
		"PhonePe payment to cafe":     "PhonePe",
		"paid via GPay to grocer":     "Google Pay",
		"Google Pay transfer":         "Google Pay",
		"PAYTM wallet top-up":         "Paytm",
		"NEFT transfer from HDFC":     "UPI App",
		"upi/phonepe/blue tokai/food": "PhonePe",
	}

	for description, expected := range cases {
		entry, err := ledger.Append(ctx, sampleAnalysis(description))
		assert.NoError(t, err)
		assert.Equal(t, expected, entry.AppName, "description %q", description)
	}
}

func TestDegradesWhenStorageUnavailable(t *testing.T) {
	dir := t.TempDir()
	occupied := filepath.Join(dir, "occupied")
	assert.NoError(t, os.WriteFile(occupied, []byte("x"), 0o644))

	ledger := history.NewLedger(storage.NewFile(occupied))
	ctx := context.Background()

	// persistence is a convenience: the entry is still produced
	entry, err := ledger.Append(ctx, sampleAnalysis("x"))
	assert.NoError(t, err)
	assert.NotNil(t, entry)

	entries, err := ledger.List(ctx)
	assert.NoError(t, err)
	assert.Empty(t, entries)

	removed, err := ledger.Remove(ctx, entry.ID)
	assert.NoError(t, err)
	assert.Nil(t, removed)
}
