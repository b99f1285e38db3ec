package processor

import (
	"context"

	"github.com/askupi/insights/pkg/chat"
	"github.com/askupi/insights/pkg/database"
	"github.com/askupi/insights/pkg/intake"
)

type Intake interface {
	Accept(name string, mimeType string, payload []byte) (*intake.File, error)
}

type Dispatcher interface {
	Analyze(ctx context.Context, fileName string, payload []byte) ([]byte, error)
	Chat(
		ctx context.Context,
		messages []database.Message,
		analysis database.Analysis,
	) (string, error)
}

type Normalizer interface {
	Normalize(body []byte) (*database.Analysis, error)
}

type HistoryLedger interface {
	Append(ctx context.Context, analysis database.Analysis) (*database.HistoryEntry, error)
	List(ctx context.Context) ([]database.HistoryEntry, error)
	Get(ctx context.Context, id string) (*database.HistoryEntry, error)
	Remove(ctx context.Context, id string) (*database.HistoryEntry, error)
}

type ConversationLedger interface {
	CreateOrGet(
		ctx context.Context,
		session *chat.Session,
		entry database.HistoryEntry,
	) (*database.Conversation, error)
	List(ctx context.Context) ([]database.Conversation, error)
	Get(ctx context.Context, id string) (*database.Conversation, error)
	Select(ctx context.Context, session *chat.Session, id string) error
	AddMessage(
		ctx context.Context,
		session *chat.Session,
		role database.Role,
		content string,
	) (*database.Message, error)
	Delete(ctx context.Context, session *chat.Session, id string) error
	DeleteByEntry(ctx context.Context, session *chat.Session, historyEntryID string) error
}
