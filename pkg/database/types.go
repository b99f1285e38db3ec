package database

import (
	"time"

	"github.com/shopspring/decimal"
)

type Category string

const (
	CategoryFood          = Category("food")
	CategoryShopping      = Category("shopping")
	CategoryEntertainment = Category("entertainment")
	CategoryUtilities     = Category("utilities")
	CategoryTransport     = Category("transport")
	CategoryHealth        = Category("health")
	CategoryEducation     = Category("education")
	CategoryTravel        = Category("travel")
	CategorySubscription  = Category("subscription")
	CategoryOther         = Category("other")
)

// Transaction is one statement row as extracted by the model. Amount is
// negative for debits and positive for credits. Immutable once normalized.
type Transaction struct {
	Date        string          `json:"date"`
	Time        *string         `json:"time,omitempty"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	UpiID       *string         `json:"upi_id"`
	Category    Category        `json:"category"`
}

// Summary is derived by the model, never recomputed locally. The
// spent+received==net identity is assumed, not enforced.
type Summary struct {
	TotalSpent       decimal.Decimal `json:"total_spent"`
	TotalReceived    decimal.Decimal `json:"total_received"`
	NetChange        decimal.Decimal `json:"net_change"`
	TransactionCount int             `json:"transaction_count"`
	StartDate        string          `json:"start_date"`
	EndDate          string          `json:"end_date"`
}

type CategoryStat struct {
	Total      decimal.Decimal `json:"total"`
	Percentage float64         `json:"percentage"`
	Count      int             `json:"count"`
}

type InsightKind string

const (
	InsightSavingOpportunity = InsightKind("saving_opportunity")
	InsightSpendingPattern   = InsightKind("spending_pattern")
	InsightAnomaly           = InsightKind("anomaly")
	InsightTip               = InsightKind("tip")
)

type Insight struct {
	Kind        InsightKind      `json:"type"`
	Description string           `json:"description"`
	Impact      *decimal.Decimal `json:"impact"`
}

type Recommendation struct {
	Category         string          `json:"category"`
	Action           string          `json:"action"`
	PotentialSavings decimal.Decimal `json:"potential_savings"`
}

// Analysis is one normalized statement analysis. Created once per successful
// upload and never mutated afterwards.
type Analysis struct {
	Transactions      []Transaction           `json:"transactions"`
	Summary           Summary                 `json:"summary"`
	CategoryBreakdown map[string]CategoryStat `json:"category_breakdown,omitempty"`
	Insights          []Insight               `json:"insights,omitempty"`
	Recommendations   []Recommendation        `json:"recommendations,omitempty"`
}

// HistoryEntry is one persisted past analysis. It owns a full copy of the
// Analysis rather than a reference.
type HistoryEntry struct {
	ID           string    `json:"id"`
	AppName      string    `json:"appName"`
	StartDate    string    `json:"startDate"`
	EndDate      string    `json:"endDate"`
	AnalysisDate time.Time `json:"analysisDate"`
	Data         Analysis  `json:"data"`
}

type Role string

const (
	RoleUser      = Role("user")
	RoleAssistant = Role("assistant")
)

type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Conversation is one chat thread grounded in a single analysis.
// HistoryEntryID links it to its HistoryEntry; the analysis is duplicated
// here on purpose so the thread survives independently of the ledger record.
type Conversation struct {
	ID             string    `json:"id"`
	HistoryEntryID string    `json:"historyEntryId"`
	Title          string    `json:"title"`
	CreatedAt      time.Time `json:"createdAt"`
	AnalysisData   Analysis  `json:"analysisData"`
	Messages       []Message `json:"messages"`
}
