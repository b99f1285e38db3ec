package normalizer

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/askupi/insights/pkg/common"
	"github.com/askupi/insights/pkg/database"
)

// rawPrefixLimit bounds the diagnostic snippet attached to parse failures.
const rawPrefixLimit = 1000

// insights and recommendations are bounded lists
const maxListItems = 3

var fencedBlock = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")

type Normalizer struct {
}

func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// ExtractJSON pulls the JSON object out of a free-text model response.
// Tiers, applied in order: fenced code block, whitespace trim, leading
// prefix before the first '{', trailing suffix after the last '}'. It never
// repairs malformed JSON beyond trimming.
func ExtractJSON(raw string) string {
	if match := fencedBlock.FindStringSubmatch(raw); match != nil {
		raw = match[1]
	}

	raw = strings.TrimSpace(raw)

	if !strings.HasPrefix(raw, "{") {
		if start := strings.Index(raw, "{"); start >= 0 {
			raw = raw[start:]
		}
	}

	if !strings.HasSuffix(raw, "}") {
		if end := strings.LastIndex(raw, "}"); end >= 0 {
			raw = raw[:end+1]
		}
	}

	return raw
}

// wrapped is the shape the upstream returns when it forwards the model text
// untouched instead of pre-parsed fields.
type wrapped struct {
	Text string `json:"text"`
}

// payload keeps summary raw so absence and non-object values are
// distinguishable from field-level decode errors.
type payload struct {
	Transactions      []database.Transaction           `json:"transactions"`
	Summary           json.RawMessage                  `json:"summary"`
	CategoryBreakdown map[string]database.CategoryStat `json:"category_breakdown"`
	Insights          []database.Insight               `json:"insights"`
	Recommendations   []database.Recommendation        `json:"recommendations"`
}

// Normalize turns a raw upstream response body into an Analysis. The body is
// probed for the wrapped shape ({"text": "..."}) first and otherwise treated
// as the analysis object itself.
func (n *Normalizer) Normalize(body []byte) (*database.Analysis, error) {
	text := string(body)

	var w wrapped
	if err := json.Unmarshal(body, &w); err == nil && w.Text != "" {
		text = w.Text
	}

	extracted := ExtractJSON(text)

	var p payload
	if err := json.Unmarshal([]byte(extracted), &p); err != nil {
		return nil, errors.Wrapf(common.ErrMalformedResponse, "%v; raw: %s",
			err, truncate(text, rawPrefixLimit))
	}

	if len(p.Transactions) == 0 {
		return nil, common.ErrEmptyAnalysis
	}

	summaryRaw := bytes.TrimSpace(p.Summary)
	if len(summaryRaw) == 0 || summaryRaw[0] != '{' {
		return nil, common.ErrIncompleteAnalysis
	}

	var summary database.Summary
	if err := json.Unmarshal(summaryRaw, &summary); err != nil {
		return nil, errors.Wrapf(common.ErrIncompleteAnalysis, "%v", err)
	}

	return &database.Analysis{
		Transactions:      p.Transactions,
		Summary:           summary,
		CategoryBreakdown: p.CategoryBreakdown,
		Insights:          clamp(p.Insights, maxListItems),
		Recommendations:   clamp(p.Recommendations, maxListItems),
	}, nil
}

func clamp[T any](s []T, limit int) []T {
	if len(s) > limit {
		return s[:limit]
	}

	return s
}

func truncate(s string, limit int) string {
	if len(s) > limit {
		return s[:limit]
	}

	return s
}
