package listing

import (
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/kailas-cloud/estatedash/internal/domain"
)

// Placeholders rendered instead of missing values.
const (
	PlaceholderAskAgent = "Ask agent"
	PlaceholderNA       = "N/A"
	UnknownAddress      = "Unknown address"
)

// LetAvailableLayout renders availability dates, e.g. "05 Mar 2024".
const LetAvailableLayout = "02 Jan 2006"

var printer = message.NewPrinter(language.BritishEnglish)

// FormatCurrency renders whole pounds with thousands separators: "£1,250,000".
// A missing or unparseable value yields "N/A".
func FormatCurrency(v any) string {
	n, ok := domain.ToNumber(v)
	if !ok {
		return PlaceholderNA
	}
	return printer.Sprintf("£%d", int64(n))
}

// FormatRent renders a monthly rent: "£1,500 pcm".
func FormatRent(v any) string {
	s := FormatCurrency(v)
	if s == PlaceholderNA {
		return s
	}
	return s + " pcm"
}

// FormatLetAvailable renders an availability timestamp or ISO date.
// Unparseable strings are shown as written; anything else missing is "Ask agent".
func FormatLetAvailable(v any) string {
	switch t := v.(type) {
	case nil:
		return PlaceholderAskAgent
	case string:
		if t == "" || t == "None" {
			return PlaceholderAskAgent
		}
		if parsed, ok := domain.ToTime(t); ok {
			return parsed.Format(LetAvailableLayout)
		}
		return t
	}
	if parsed, ok := domain.ToTime(v); ok {
		return parsed.UTC().Format(LetAvailableLayout)
	}
	return PlaceholderAskAgent
}

// ValueOrPlaceholder stringifies v, falling back to placeholder when empty.
func ValueOrPlaceholder(v any, placeholder string) string {
	switch t := v.(type) {
	case nil:
		return placeholder
	case string:
		if t == "" || t == "None" {
			return placeholder
		}
		return t
	case bool:
		if t {
			return "Yes"
		}
		return "No"
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case []string:
		if len(t) == 0 {
			return placeholder
		}
		return strings.Join(t, ", ")
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			parts = append(parts, ValueOrPlaceholder(item, ""))
		}
		if len(parts) == 0 {
			return placeholder
		}
		return strings.Join(parts, ", ")
	case map[string]any:
		if len(t) == 0 {
			return placeholder
		}
	}
	return printer.Sprint(v)
}

// FormatCount renders "n <unit>s" with naive pluralization, or placeholder.
func FormatCount(v any, unit, placeholder string) string {
	n, ok := domain.ToNumber(v)
	if !ok {
		return placeholder
	}
	i := int64(n)
	if i == 1 {
		return "1 " + unit
	}
	return strconv.FormatInt(i, 10) + " " + unit + "s"
}

// FormatDate renders t with LetAvailableLayout.
func FormatDate(t time.Time) string {
	return t.Format(LetAvailableLayout)
}
