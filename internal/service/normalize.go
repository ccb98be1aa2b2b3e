package service

import (
	"regexp"
	"strings"
	"time"

	naturaldate "github.com/tj/go-naturaldate"
)

const (
	// CurrencySymbol is the single target currency marker for every reply.
	CurrencySymbol = "₹"

	// DefaultCategory labels expenses whose category could not be extracted.
	DefaultCategory = "miscellaneous"
)

var (
	wordAmountRe  = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*rupees`)
	symbolSpaceRe = regexp.MustCompile(`₹\s+(\d)`)

	currencyReplacer = strings.NewReplacer(
		"$", "₹",
		"dollars", "rupees",
		"Dollars", "Rupees",
		"USD", "INR",
		"usd", "inr",
	)
)

// NormalizeCurrency rewrites foreign currency markers into rupee form and
// collapses "500 rupees" / "₹ 500" into "₹500". Idempotent.
func NormalizeCurrency(text string) string {
	if text == "" {
		return text
	}
	text = currencyReplacer.Replace(text)
	text = wordAmountRe.ReplaceAllString(text, CurrencySymbol+"$1")
	text = symbolSpaceRe.ReplaceAllString(text, CurrencySymbol+"$1")
	return text
}

// NormalizeCategory canonicalizes a free-text category: lowercase with the
// plural suffix stripped, so "Groceries" and "grocery" land on the same
// key. Collisions are intentional; no disambiguation is attempted.
func NormalizeCategory(raw string) string {
	category := strings.ToLower(strings.TrimSpace(raw))
	if category == "" {
		return DefaultCategory
	}
	switch {
	case strings.HasSuffix(category, "ies"):
		category = strings.TrimSuffix(category, "ies") + "y"
	case len(category) > 1 && strings.HasSuffix(category, "s"):
		category = strings.TrimSuffix(category, "s")
	}
	return category
}

// ResolveDate parses a natural-language date phrase into an absolute
// instant, biased toward the past ("monday" is the most recent past
// Monday). Unparseable or absent input silently resolves to now.
func ResolveDate(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Now()
	}
	parsed, err := naturaldate.Parse(raw, time.Now(), naturaldate.WithDirection(naturaldate.Past))
	if err != nil {
		return time.Now()
	}
	return parsed
}

// QueryWindowDays derives a trailing query window from keywords in the raw
// text: 1 day for "today", 30 for "last month", 7 otherwise.
func QueryWindowDays(text string) int {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "today"):
		return 1
	case strings.Contains(lower, "last month"):
		return 30
	default:
		return 7
	}
}
