package processor

import (
	"github.com/askupi/insights/pkg/database"
)

// Upload is one file selected by the user.
type Upload struct {
	FileName string
	MimeType string
	Payload  []byte
}

// AnalysisResult is everything a successful analysis produces: the
// normalized analysis, its history entry and the conversation seeded for it.
type AnalysisResult struct {
	Analysis     *database.Analysis     `json:"analysis"`
	Entry        *database.HistoryEntry `json:"entry"`
	Conversation *database.Conversation `json:"conversation"`
}

type Config struct {
	Intake        Intake
	Dispatcher    Dispatcher
	Normalizer    Normalizer
	History       HistoryLedger
	Conversations ConversationLedger
}
