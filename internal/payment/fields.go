// Package payment verifies UPI payment screenshots.
package payment

import (
	"regexp"
	"strings"
)

// Fields are the payment details found in a screenshot. Nil means not found.
type Fields struct {
	UPIID         *string `json:"upi_id,omitempty"`
	Amount        *string `json:"amount,omitempty"`
	TransactionID *string `json:"transaction_id,omitempty"`
}

// Each list is tried in order; the first pattern with any match wins and its
// first match is taken.
var (
	upiPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\d{10,12}@[a-zA-Z]+`),
		regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`),
		regexp.MustCompile(`[a-zA-Z0-9]+@[a-zA-Z]+`),
	}

	amountPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)₹\s*(\d+(?:\.\d+)?)`),
		regexp.MustCompile(`(?i)Rs\.*\s*(\d+(?:\.\d+)?)`),
		regexp.MustCompile(`(?i)amount.*?(\d+(?:\.\d+)?)`),
		regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*rs`),
		regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*inr`),
	}

	txnPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:txn|transaction).*?([A-Z0-9]{8,})`),
		regexp.MustCompile(`(?i)([A-Z0-9]{8,})\s*(?:ref|reference)`),
		regexp.MustCompile(`(?i)(?:ref|reference).*?([A-Z0-9]{8,})`),
	}
)

// ExtractFields pulls the UPI id, amount and transaction id out of OCR text.
func ExtractFields(text string) Fields {
	return Fields{
		UPIID:         firstMatch(upiPatterns, text, 0),
		Amount:        firstMatch(amountPatterns, text, 1),
		TransactionID: firstMatch(txnPatterns, text, 1),
	}
}

func firstMatch(patterns []*regexp.Regexp, text string, group int) *string {
	for _, re := range patterns {
		m := re.FindStringSubmatch(text)
		if m == nil || m[group] == "" {
			continue
		}
		v := m[group]
		return &v
	}
	return nil
}

// Present returns how many fields were found.
func (f Fields) Present() int {
	n := 0
	for _, p := range []*string{f.UPIID, f.Amount, f.TransactionID} {
		if p != nil {
			n++
		}
	}
	return n
}

// Display returns v or "Not found".
func Display(v *string) string {
	if v == nil {
		return "Not found"
	}
	return *v
}

var (
	upiKeywords    = []string{"upi", "vpa", "@", "paytm", "gpay", "phonepe", "bhim"}
	amountKeywords = []string{"amount", "rs", "inr", "₹", "rupees"}
)

// Describe summarizes OCR text for the standalone /ocr flow.
func Describe(text string) string {
	if text == "" {
		return "❌ Could not extract text from the image."
	}

	lower := strings.ToLower(text)
	hasUPI := containsAny(lower, upiKeywords)
	hasAmount := containsAny(lower, amountKeywords)

	excerpt := text
	if r := []rune(text); len(r) > 200 {
		excerpt = string(r[:200])
	}

	switch {
	case hasUPI && hasAmount:
		return "✅ Payment details detected!\n\nExtracted text:\n" + excerpt + "..."
	case hasUPI:
		return "✅ UPI information detected!\n\nExtracted text:\n" + excerpt + "..."
	default:
		return "🔍 Processed image but couldn't find clear payment information.\n\nExtracted text:\n" + excerpt + "..."
	}
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
