package main

import (
	"context"

	"github.com/askupi/insights/pkg/database"
	"github.com/askupi/insights/pkg/processor"
)

type AnalysisProcessor interface {
	AnalyzeStatement(
		ctx context.Context,
		upload processor.Upload,
	) (*processor.AnalysisResult, error)
	Ask(ctx context.Context, conversationID string, question string) (*database.Message, error)
	History(ctx context.Context) ([]database.HistoryEntry, error)
	HistoryEntry(ctx context.Context, id string) (*database.HistoryEntry, error)
	DeleteHistory(ctx context.Context, id string) error
	Conversations(ctx context.Context) ([]database.Conversation, error)
	Conversation(ctx context.Context, id string) (*database.Conversation, error)
	DeleteConversation(ctx context.Context, id string) error
}
