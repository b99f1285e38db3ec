package normalizer_test

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"

	"github.com/askupi/insights/pkg/common"
	"github.com/askupi/insights/pkg/normalizer"
)

const sampleAnalysis = `{
	"transactions": [
		{
			"date": "2024-01-05",
			"description": "PhonePe payment to Blue Tokai",
			"amount": -250.5,
			"upi_id": "bluetokai@ybl",
			"category": "food"
		}
	],
	"summary": {
		"total_spent": -250.5,
		"total_received": 2000,
		"net_change": 1749.5,
		"transaction_count": 1,
		"start_date": "2024-01-01",
		"end_date": "2024-01-31"
	}
}`

func TestNormalizeFlat(t *testing.T) {
	n := normalizer.NewNormalizer()

	analysis, err := n.Normalize([]byte(sampleAnalysis))
	assert.NoError(t, err)
	assert.NotNil(t, analysis)

	assert.Len(t, analysis.Transactions, 1)
	assert.Equal(t, "-250.5", analysis.Transactions[0].Amount.String())
	assert.Equal(t, "2024-01-01", analysis.Summary.StartDate)
	assert.Equal(t, "2024-01-31", analysis.Summary.EndDate)
	assert.Equal(t, 1, analysis.Summary.TransactionCount)
}

func TestNormalizeWrapped(t *testing.T) {
	n := normalizer.NewNormalizer()

	t.Run("fenced json block inside text property", func(t *testing.T) {
		body := `{"text": "` + "```json\\n" +
			`{\"transactions\":[{\"date\":\"2024-01-05\",\"description\":\"UPI\",\"amount\":-10,\"category\":\"other\"}],` +
			`\"summary\":{\"total_spent\":-10,\"total_received\":0,\"net_change\":-10,\"transaction_count\":1,` +
			`\"start_date\":\"2024-01-01\",\"end_date\":\"2024-01-31\"}}` +
			"\\n```" + `"}`

		analysis, err := n.Normalize([]byte(body))
		assert.NoError(t, err)
		assert.Len(t, analysis.Transactions, 1)
	})

	t.Run("plain json inside text property", func(t *testing.T) {
		body := `{"text": "{\"transactions\":[{\"date\":\"2024-01-05\",\"description\":\"UPI\",\"amount\":-10,\"category\":\"other\"}],\"summary\":{\"start_date\":\"2024-01-01\",\"end_date\":\"2024-01-31\"}}"}`

		analysis, err := n.Normalize([]byte(body))
		assert.NoError(t, err)
		assert.Len(t, analysis.Transactions, 1)
	})
}

func TestNormalizeSurroundingProse(t *testing.T) {
	n := normalizer.NewNormalizer()

	body := "Sure, here is your analysis:\n" + sampleAnalysis + "\nHope that helps!"

	analysis, err := n.Normalize([]byte(body))
	assert.NoError(t, err)
	assert.Len(t, analysis.Transactions, 1)
}

func TestNormalizeMalformed(t *testing.T) {
	n := normalizer.NewNormalizer()

	inputs := []string{
		"",
		"this response contains no json at all",
		"{ definitely broken",
		"{\"transactions\": [},",
		"\x00\x01\x02\xff",
		"```json\nnot json either\n```",
	}

	for _, input := range inputs {
		analysis, err := n.Normalize([]byte(input))
		assert.Nil(t, analysis)
		assert.True(t, errors.Is(err, common.ErrMalformedResponse), "input %q got %v", input, err)
	}
}

func TestNormalizeEmptyAnalysis(t *testing.T) {
	n := normalizer.NewNormalizer()

	t.Run("empty transactions", func(t *testing.T) {
		_, err := n.Normalize([]byte(`{"transactions": [], "summary": {}}`))
		assert.True(t, errors.Is(err, common.ErrEmptyAnalysis))
	})

	t.Run("missing transactions", func(t *testing.T) {
		_, err := n.Normalize([]byte(`{"summary": {}}`))
		assert.True(t, errors.Is(err, common.ErrEmptyAnalysis))
	})
}

func TestNormalizeIncompleteAnalysis(t *testing.T) {
	n := normalizer.NewNormalizer()

	t.Run("missing summary", func(t *testing.T) {
		_, err := n.Normalize([]byte(`{"transactions":[{"date":"2024-01-05","description":"x","amount":-1,"category":"other"}]}`))
		assert.True(t, errors.Is(err, common.ErrIncompleteAnalysis))
	})

	t.Run("summary is not an object", func(t *testing.T) {
		_, err := n.Normalize([]byte(`{"transactions":[{"date":"2024-01-05","description":"x","amount":-1,"category":"other"}],"summary":"oops"}`))
		assert.True(t, errors.Is(err, common.ErrIncompleteAnalysis))
	})
}

func TestNormalizeClampsInsights(t *testing.T) {
	n := normalizer.NewNormalizer()

	body := `{
		"transactions": [{"date":"2024-01-05","description":"x","amount":-1,"category":"other"}],
		"summary": {"start_date":"2024-01-01","end_date":"2024-01-31"},
		"insights": [
			{"type":"tip","description":"a"},
			{"type":"tip","description":"b"},
			{"type":"tip","description":"c"},
			{"type":"tip","description":"d"}
		]
	}`

	analysis, err := n.Normalize([]byte(body))
	assert.NoError(t, err)
	assert.Len(t, analysis.Insights, 3)
}

func TestExtractJSON(t *testing.T) {
	t.Run("fenced block wins", func(t *testing.T) {
		raw := "intro\n```json\n{\"a\":1}\n```\noutro"
		assert.Equal(t, `{"a":1}`, normalizer.ExtractJSON(raw))
	})

	t.Run("fence without language tag", func(t *testing.T) {
		raw := "```\n{\"a\":1}\n```"
		assert.Equal(t, `{"a":1}`, normalizer.ExtractJSON(raw))
	})

	t.Run("leading prose trimmed to first brace", func(t *testing.T) {
		assert.Equal(t, `{"a":1}`, normalizer.ExtractJSON(`prose {"a":1}`))
	})

	t.Run("trailing prose trimmed to last brace", func(t *testing.T) {
		assert.Equal(t, `{"a":1}`, normalizer.ExtractJSON(`{"a":1} trailing`))
	})

	t.Run("clean object untouched", func(t *testing.T) {
		assert.Equal(t, `{"a":1}`, normalizer.ExtractJSON(`{"a":1}`))
	})
}
