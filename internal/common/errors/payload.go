package errors

import (
	"strings"

	"github.com/tidwall/gjson"
)

// ExtractMessage unwraps the human readable message from a ledger error body.
// Accepted shapes: {"error":"..."}, {"error":{"message":"..."}}, {"message":"..."}.
// Anything else yields "" so the caller falls back to a generic text.
func ExtractMessage(body []byte) string {
	if len(body) == 0 || !gjson.ValidBytes(body) {
		return ""
	}
	for _, path := range []string{"error", "error.message", "message"} {
		v := gjson.GetBytes(body, path)
		if v.Type == gjson.String {
			if msg := strings.TrimSpace(v.String()); msg != "" {
				return msg
			}
		}
	}
	return ""
}
