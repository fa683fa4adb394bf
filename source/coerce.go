package source

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var nonNumericRegex = regexp.MustCompile(`[^0-9.\-]`)

// CleanDecimal parses an upstream amount such as "RM 1,234.56" or "-12.5".
// Currency symbols, separators and suffixes are dropped; an empty result is
// zero. A leading minus or accounting parentheses mark a negative value.
func CleanDecimal(text string) (decimal.Decimal, error) {
	text = strings.TrimSpace(text)
	negative := strings.HasPrefix(text, "(") && strings.HasSuffix(text, ")")

	cleanText := nonNumericRegex.ReplaceAllString(text, "")
	if strings.HasPrefix(cleanText, "-") {
		negative = true
	}
	cleanText = strings.ReplaceAll(cleanText, "-", "")
	if cleanText == "" || cleanText == "." {
		return decimal.Zero, nil
	}

	amount, err := decimal.NewFromString(cleanText)
	if err != nil {
		return decimal.Zero, err
	}
	if negative {
		amount = amount.Neg()
	}
	return amount, nil
}

// Decimal coerces any JSON-ish value to a decimal. ok is false when v was
// present but could not be read as a number; the value is then zero.
func Decimal(v any) (value decimal.Decimal, ok bool) {
	switch x := v.(type) {
	case nil:
		return decimal.Zero, true
	case decimal.Decimal:
		return x, true
	case json.Number:
		dec, err := decimal.NewFromString(x.String())
		if err != nil {
			return decimal.Zero, false
		}
		return dec, true
	case float64:
		return decimal.NewFromFloat(x), true
	case float32:
		return decimal.NewFromFloat32(x), true
	case int:
		return decimal.NewFromInt(int64(x)), true
	case int64:
		return decimal.NewFromInt(x), true
	case int32:
		return decimal.NewFromInt32(x), true
	case bool:
		return decimal.Zero, false
	case string:
		dec, err := CleanDecimal(x)
		if err != nil {
			return decimal.Zero, false
		}
		// Text without a single digit is not an amount.
		if strings.TrimSpace(x) != "" && !strings.ContainsAny(x, "0123456789") {
			return decimal.Zero, false
		}
		return dec, true
	default:
		return decimal.Zero, false
	}
}

// String renders identifiers and statuses that may arrive as numbers.
func String(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	case json.Number:
		return x.String()
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	default:
		return strings.TrimSpace(fmt.Sprint(x))
	}
}

// Bool reads flags stored as booleans, numbers or "yes"/"true"/"1" strings.
func Bool(v any) bool {
	switch x := v.(type) {
	case bool:
		return x
	case string:
		switch strings.ToLower(strings.TrimSpace(x)) {
		case "1", "true", "yes", "y":
			return true
		}
		return false
	default:
		dec, ok := Decimal(v)
		return ok && !dec.IsZero()
	}
}
