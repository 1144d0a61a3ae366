package utils

import (
	"strings"

	"github.com/google/uuid"
)

// GenerateRunLabel creates a short, greppable label for one batch run.
// Format: {operation}-{SCOPE}-{8charHexUUID}
//
// Example:
//   - Input: operation="optimize", batchType="cross_company"
//   - Output: "optimize-CROSS-a3f8e2b1"
//
// The label identifies a single run across log lines; the UUID suffix keeps
// it unique when the same batch type fires on consecutive nights.
func GenerateRunLabel(operation, batchType string) string {
	return operation + "-" + scopeTag(batchType) + "-" + generateShortUUID()
}

// scopeTag compresses a batch type like "cross_company" to "CROSS"
func scopeTag(batchType string) string {
	scope, _, found := strings.Cut(batchType, "_")
	if !found || scope == "" {
		scope = batchType
	}
	return strings.ToUpper(scope)
}

// generateShortUUID creates an 8-character hex string from a UUID.
// This provides sufficient uniqueness while keeping labels compact.
func generateShortUUID() string {
	id := uuid.New()
	return strings.ReplaceAll(id.String(), "-", "")[:8]
}
