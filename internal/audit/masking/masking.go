// Package masking redacts disbursement references before they are written
// to audit storage. Bank and processor references identify real accounts;
// the audit trail only needs enough of one to correlate with the payout row.
package masking

import "strings"

const maskToken = "****"

// sensitiveKeys are metadata fields whose values are always redacted.
var sensitiveKeys = map[string]struct{}{
	"payout_reference": {},
	"reference":        {},
	"account":          {},
	"account_number":   {},
	"iban":             {},
}

// MaskReference keeps at most the last four characters of a reference.
func MaskReference(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return ""
	}
	if len(trimmed) <= 4 {
		return maskToken
	}
	return maskToken + trimmed[len(trimmed)-4:]
}

// RedactMetadata returns a copy of the metadata with sensitive string
// values masked. Nested maps are walked; other values pass through.
func RedactMetadata(input map[string]any) map[string]any {
	if len(input) == 0 {
		return nil
	}

	out := make(map[string]any, len(input))
	for key, value := range input {
		trimmedKey := strings.TrimSpace(key)
		if trimmedKey == "" {
			continue
		}
		out[trimmedKey] = redactValue(trimmedKey, value)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func redactValue(key string, value any) any {
	switch cast := value.(type) {
	case string:
		if _, sensitive := sensitiveKeys[strings.ToLower(key)]; sensitive {
			return MaskReference(cast)
		}
		return cast
	case map[string]any:
		return RedactMetadata(cast)
	default:
		return value
	}
}
