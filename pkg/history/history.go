package history

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/askupi/insights/pkg/common"
	"github.com/askupi/insights/pkg/database"
	"github.com/askupi/insights/pkg/storage"
)

// knownApps is matched case-insensitively against the first transaction's
// description; first match wins.
var knownApps = []struct {
	substring string
	name      string
}{
	{"phonepe", "PhonePe"},
	{"gpay", "Google Pay"},
	{"google pay", "Google Pay"},
	{"paytm", "Paytm"},
}

const defaultAppName = "UPI App"

// Ledger is the append-only list of past analyses, most-recent-first.
// Persistence is a convenience: when storage is unavailable every operation
// degrades to a logged no-op instead of failing.
type Ledger struct {
	store storage.Store
}

func NewLedger(store storage.Store) *Ledger {
	return &Ledger{
		store: store,
	}
}

// Append builds a HistoryEntry for the analysis and prepends it to the
// persisted list. The entry is returned even when persistence degraded, so
// the in-session result stays usable.
func (l *Ledger) Append(
	ctx context.Context,
	analysis database.Analysis,
) (*database.HistoryEntry, error) {
	entry := &database.HistoryEntry{
		ID:           uuid.NewString(),
		AppName:      inferAppName(analysis),
		StartDate:    analysis.Summary.StartDate,
		EndDate:      analysis.Summary.EndDate,
		AnalysisDate: time.Now().UTC(),
		Data:         analysis,
	}

	entries := l.load(ctx)
	entries = append([]database.HistoryEntry{*entry}, entries...)
	l.save(ctx, entries)

	return entry, nil
}

func (l *Ledger) List(ctx context.Context) ([]database.HistoryEntry, error) {
	return l.load(ctx), nil
}

func (l *Ledger) Get(
	ctx context.Context,
	id string,
) (*database.HistoryEntry, error) {
	entry, found := lo.Find(l.load(ctx), func(e database.HistoryEntry) bool {
		return e.ID == id
	})
	if !found {
		return nil, errors.Wrapf(common.ErrNotFound, "history entry %s", id)
	}

	return &entry, nil
}

// Remove deletes the entry and returns it so the caller can cascade the
// delete to the owning conversation. A missing id is a no-op.
func (l *Ledger) Remove(
	ctx context.Context,
	id string,
) (*database.HistoryEntry, error) {
	entries := l.load(ctx)

	removed, found := lo.Find(entries, func(e database.HistoryEntry) bool {
		return e.ID == id
	})
	if !found {
		return nil, nil
	}

	entries = lo.Filter(entries, func(e database.HistoryEntry, _ int) bool {
		return e.ID != id
	})
	l.save(ctx, entries)

	return &removed, nil
}

func (l *Ledger) load(ctx context.Context) []database.HistoryEntry {
	raw, err := l.store.Read(ctx, storage.KeyHistory)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("history storage unavailable, treating as empty")
		return nil
	}

	if len(raw) == 0 {
		return nil
	}

	var entries []database.HistoryEntry
	if err = json.Unmarshal(raw, &entries); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to decode stored history")
		return nil
	}

	return entries
}

func (l *Ledger) save(ctx context.Context, entries []database.HistoryEntry) {
	raw, err := json.Marshal(entries)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to encode history")
		return
	}

	if err = l.store.Write(ctx, storage.KeyHistory, raw); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("failed to persist history")
	}
}

func inferAppName(analysis database.Analysis) string {
	if len(analysis.Transactions) == 0 {
		return defaultAppName
	}

	description := strings.ToLower(analysis.Transactions[0].Description)

	for _, app := range knownApps {
		if strings.Contains(description, app.substring) {
			return app.name
		}
	}

	return defaultAppName
}
