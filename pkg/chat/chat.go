package chat

import (
	"context"
	"encoding/json"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/askupi/insights/pkg/common"
	"github.com/askupi/insights/pkg/database"
	"github.com/askupi/insights/pkg/storage"
)

// Session is the explicit current-conversation pointer, threaded through
// calls instead of living in ambient global state. The zero value selects
// nothing.
type Session struct {
	current string
}

func (s *Session) Current() string {
	return s.current
}

func (s *Session) set(id string) {
	s.current = id
}

type Printer interface {
	Title(analysis database.Analysis) string
	Seed(analysis database.Analysis) string
}

// Ledger is the persisted list of conversations, one per history entry.
// Storage degradation mirrors the history ledger: logged no-ops, never
// failures.
type Ledger struct {
	store   storage.Store
	printer Printer
}

func NewLedger(store storage.Store, printer Printer) *Ledger {
	return &Ledger{
		store:   store,
		printer: printer,
	}
}

// CreateOrGet returns the conversation owned by the given history entry,
// creating and seeding it on first use. Either way the session now selects
// it. Calling twice for the same entry returns the same conversation and
// does not duplicate the seed message.
func (l *Ledger) CreateOrGet(
	ctx context.Context,
	session *Session,
	entry database.HistoryEntry,
) (*database.Conversation, error) {
	conversations := l.load(ctx)

	existing, found := lo.Find(conversations, func(c database.Conversation) bool {
		return c.HistoryEntryID == entry.ID
	})
	if found {
		session.set(existing.ID)
		return &existing, nil
	}

	now := time.Now().UTC()
	conversation := database.Conversation{
		ID:             uuid.NewString(),
		HistoryEntryID: entry.ID,
		Title:          l.printer.Title(entry.Data),
		CreatedAt:      now,
		AnalysisData:   entry.Data,
		Messages: []database.Message{
			{
				ID:        uuid.NewString(),
				Role:      database.RoleAssistant,
				Content:   l.printer.Seed(entry.Data),
				Timestamp: now,
			},
		},
	}

	conversations = append([]database.Conversation{conversation}, conversations...)
	l.save(ctx, conversations)
	session.set(conversation.ID)

	return &conversation, nil
}

func (l *Ledger) List(ctx context.Context) ([]database.Conversation, error) {
	return l.load(ctx), nil
}

func (l *Ledger) Get(
	ctx context.Context,
	id string,
) (*database.Conversation, error) {
	conversation, found := lo.Find(l.load(ctx), func(c database.Conversation) bool {
		return c.ID == id
	})
	if !found {
		return nil, errors.Wrapf(common.ErrNotFound, "conversation %s", id)
	}

	return &conversation, nil
}

func (l *Ledger) Select(
	ctx context.Context,
	session *Session,
	id string,
) error {
	if _, err := l.Get(ctx, id); err != nil {
		return err
	}

	session.set(id)

	return nil
}

// AddMessage appends a turn to the conversation the session selects. With
// nothing selected it is a logged no-op.
func (l *Ledger) AddMessage(
	ctx context.Context,
	session *Session,
	role database.Role,
	content string,
) (*database.Message, error) {
	if session.Current() == "" {
		zerolog.Ctx(ctx).Warn().Msg("no conversation selected, dropping message")
		return nil, nil
	}

	message := database.Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}

	conversations := l.load(ctx)
	for i := range conversations {
		if conversations[i].ID == session.Current() {
			conversations[i].Messages = append(conversations[i].Messages, message)
		}
	}
	l.save(ctx, conversations)

	return &message, nil
}

// Delete removes the conversation. Deleting the selected conversation
// clears the session pointer; deleting any other leaves it untouched.
func (l *Ledger) Delete(
	ctx context.Context,
	session *Session,
	id string,
) error {
	conversations := l.load(ctx)

	remaining := lo.Filter(conversations, func(c database.Conversation, _ int) bool {
		return c.ID != id
	})
	if len(remaining) != len(conversations) {
		l.save(ctx, remaining)
	}

	if session.Current() == id {
		session.set("")
	}

	return nil
}

// DeleteByEntry removes the conversation owned by a history entry, if any.
// Used for the cascade when a history entry is deleted.
func (l *Ledger) DeleteByEntry(
	ctx context.Context,
	session *Session,
	historyEntryID string,
) error {
	conversation, found := lo.Find(l.load(ctx), func(c database.Conversation) bool {
		return c.HistoryEntryID == historyEntryID
	})
	if !found {
		return nil
	}

	return l.Delete(ctx, session, conversation.ID)
}

func (l *Ledger) load(ctx context.Context) []database.Conversation {
	raw, err := l.store.Read(ctx, storage.KeyChats)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("conversation storage unavailable, treating as empty")
		return nil
	}

	if len(raw) == 0 {
		return nil
	}

	var conversations []database.Conversation
	if err = json.Unmarshal(raw, &conversations); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to decode stored conversations")
		return nil
	}

	return conversations
}

func (l *Ledger) save(ctx context.Context, conversations []database.Conversation) {
	raw, err := json.Marshal(conversations)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to encode conversations")
		return
	}

	if err = l.store.Write(ctx, storage.KeyChats, raw); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("failed to persist conversations")
	}
}
