package dispatcher

import (
	"github.com/askupi/insights/pkg/database"
)

type apiError struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type chatRequest struct {
	Messages     []database.Message `json:"messages"`
	AnalysisData database.Analysis  `json:"analysisData"`
}

type chatResponse struct {
	Text string `json:"text"`
}
