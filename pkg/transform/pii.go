// pkg/transform/pii.go
package transform

import (
	"regexp"
	"strings"
)

// RedactionMarker replaces any value flagged as PII.
const RedactionMarker = "[REDACTED]"

var emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)

// PIICheck is the outcome of a PII scan over a text value.
type PIICheck struct {
	HasPII bool
	Reason string
}

// DetectPII reports whether text contains an email-shaped substring or a
// reference to Notion's own hosted-page domains.
func DetectPII(text string) PIICheck {
	if text == "" {
		return PIICheck{}
	}

	if emailPattern.MatchString(text) {
		return PIICheck{HasPII: true, Reason: "Contiene email"}
	}

	if strings.Contains(text, "notion.so") || strings.Contains(text, "notion.site") {
		return PIICheck{HasPII: true, Reason: "Contiene link a Notion"}
	}

	return PIICheck{}
}

// StripPII replaces every string or string-array value flagged by DetectPII
// with the redaction marker. Non-string values pass through unchanged.
func StripPII(properties map[string]interface{}) map[string]interface{} {
	cleaned := make(map[string]interface{}, len(properties))

	for key, value := range properties {
		switch v := value.(type) {
		case string:
			cleaned[key] = redactString(v)

		case []string:
			items := make([]string, len(v))
			for i, item := range v {
				items[i] = redactString(item)
			}
			cleaned[key] = items

		case []interface{}:
			items := make([]interface{}, len(v))
			for i, item := range v {
				if s, ok := item.(string); ok {
					items[i] = redactString(s)
				} else {
					items[i] = item
				}
			}
			cleaned[key] = items

		default:
			cleaned[key] = value
		}
	}

	return cleaned
}

func redactString(s string) string {
	if DetectPII(s).HasPII {
		return RedactionMarker
	}
	return s
}
