package processor

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"

	"github.com/askupi/insights/pkg/chat"
	"github.com/askupi/insights/pkg/common"
	"github.com/askupi/insights/pkg/database"
)

// Processor orchestrates one user session: intake, dispatch, normalization
// and the two ledgers. At most one statement analysis may be in flight; the
// slot token enforces that here rather than in any UI.
type Processor struct {
	intake        Intake
	dispatcher    Dispatcher
	normalizer    Normalizer
	history       HistoryLedger
	conversations ConversationLedger

	session *chat.Session
	slot    chan struct{}
}

func NewProcessor(cfg *Config) *Processor {
	return &Processor{
		intake:        cfg.Intake,
		dispatcher:    cfg.Dispatcher,
		normalizer:    cfg.Normalizer,
		history:       cfg.History,
		conversations: cfg.Conversations,
		session:       &chat.Session{},
		slot:          make(chan struct{}, 1),
	}
}

// AnalyzeStatement runs the full upload pipeline. Either the analysis is
// fully produced and stored, or nothing is stored at all; cancellation
// before the upstream response resolves as common.ErrCancelled and writes
// nothing.
func (p *Processor) AnalyzeStatement(
	ctx context.Context,
	upload Upload,
) (*AnalysisResult, error) {
	select {
	case p.slot <- struct{}{}:
	default:
		return nil, common.ErrAnalysisInFlight
	}
	defer func() {
		<-p.slot
	}()

	file, err := p.intake.Accept(upload.FileName, upload.MimeType, upload.Payload)
	if err != nil {
		return nil, err
	}

	raw, err := p.dispatcher.Analyze(ctx, file.Name, file.Payload)
	if err != nil {
		return nil, err
	}

	analysis, err := p.normalizer.Normalize(raw)
	if err != nil {
		return nil, err
	}

	entry, err := p.history.Append(ctx, *analysis)
	if err != nil {
		return nil, err
	}

	conversation, err := p.conversations.CreateOrGet(ctx, p.session, *entry)
	if err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Info().
		Str("entry_id", entry.ID).
		Int("transactions", len(analysis.Transactions)).
		Msg("statement analyzed")

	return &AnalysisResult{
		Analysis:     analysis,
		Entry:        entry,
		Conversation: conversation,
	}, nil
}

// Ask routes a follow-up question through the chat endpoint with the
// conversation's prior turns and owned analysis as context, then records
// both sides of the exchange.
func (p *Processor) Ask(
	ctx context.Context,
	conversationID string,
	question string,
) (*database.Message, error) {
	conversation, err := p.conversations.Get(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	if err = p.conversations.Select(ctx, p.session, conversationID); err != nil {
		return nil, err
	}

	userMessage, err := p.conversations.AddMessage(ctx, p.session, database.RoleUser, question)
	if err != nil {
		return nil, err
	}

	turns := conversation.Messages
	if userMessage != nil {
		turns = append(turns, *userMessage)
	}

	reply, err := p.dispatcher.Chat(ctx, turns, conversation.AnalysisData)
	if err != nil {
		return nil, err
	}

	message, err := p.conversations.AddMessage(ctx, p.session, database.RoleAssistant, reply)
	if err != nil {
		return nil, err
	}

	if message == nil {
		return nil, errors.Wrap(common.ErrNotFound, "conversation deselected mid-exchange")
	}

	return message, nil
}

func (p *Processor) History(ctx context.Context) ([]database.HistoryEntry, error) {
	return p.history.List(ctx)
}

func (p *Processor) HistoryEntry(
	ctx context.Context,
	id string,
) (*database.HistoryEntry, error) {
	return p.history.Get(ctx, id)
}

// DeleteHistory removes the entry and cascades to the conversation that
// owns the same analysis.
func (p *Processor) DeleteHistory(
	ctx context.Context,
	id string,
) error {
	removed, err := p.history.Remove(ctx, id)
	if err != nil {
		return err
	}

	if removed == nil {
		return nil
	}

	return p.conversations.DeleteByEntry(ctx, p.session, removed.ID)
}

func (p *Processor) Conversations(ctx context.Context) ([]database.Conversation, error) {
	return p.conversations.List(ctx)
}

func (p *Processor) Conversation(
	ctx context.Context,
	id string,
) (*database.Conversation, error) {
	return p.conversations.Get(ctx, id)
}

func (p *Processor) SelectConversation(
	ctx context.Context,
	id string,
) error {
	return p.conversations.Select(ctx, p.session, id)
}

func (p *Processor) DeleteConversation(
	ctx context.Context,
	id string,
) error {
	return p.conversations.Delete(ctx, p.session, id)
}
