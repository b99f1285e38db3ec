package printer

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/askupi/insights/pkg/database"
)

// Printer renders analyses as user-facing text: conversation titles and the
// assistant message that seeds a new conversation.
type Printer struct {
}

func NewPrinter() *Printer {
	return &Printer{}
}

func (p *Printer) Title(analysis database.Analysis) string {
	return fmt.Sprintf("Analysis %s to %s",
		shortDate(analysis.Summary.StartDate),
		shortDate(analysis.Summary.EndDate))
}

func (p *Printer) Seed(analysis database.Analysis) string {
	summary := analysis.Summary

	return fmt.Sprintf("I've analyzed your UPI transactions from %s to %s. "+
		"You spent ₹%s and received ₹%s. Your net change was ₹%s. "+
		"What would you like to know about this data?",
		shortDate(summary.StartDate),
		shortDate(summary.EndDate),
		FormatRupees(summary.TotalSpent.Abs()),
		FormatRupees(summary.TotalReceived),
		FormatRupees(summary.NetChange))
}

func shortDate(date string) string {
	parsed, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date
	}

	return parsed.Format("2 Jan")
}

// FormatRupees groups digits the en-IN way: the last three digits form one
// group, everything above them pairs of two (12,34,567.89).
func FormatRupees(amount decimal.Decimal) string {
	rounded := amount.Round(2)

	sign := ""
	if rounded.IsNegative() {
		sign = "-"
		rounded = rounded.Abs()
	}

	whole := rounded.Truncate(0)
	fraction := rounded.Sub(whole)

	out := sign + groupIndian(whole.BigInt().String())
	if !fraction.IsZero() {
		out += fraction.StringFixed(2)[1:]
	}

	return out
}

func groupIndian(digits string) string {
	if len(digits) <= 3 {
		return digits
	}

	head := digits[:len(digits)-3]
	groups := []string{digits[len(digits)-3:]}

	for len(head) > 2 {
		groups = append([]string{head[len(head)-2:]}, groups...)
		head = head[:len(head)-2]
	}

	if head != "" {
		groups = append([]string{head}, groups...)
	}

	return strings.Join(groups, ",")
}
