// fingerprint.go generates stable hashes for grouping similar crashes.

package crashrelay

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
)

// Fingerprint generates a hash for grouping similar crashes. The fingerprint
// is based on the exception type and a normalized message with volatile data
// (hex addresses, numbers) stripped.
//
// Raw addresses are deliberately excluded: module load bases vary between
// process runs, so address values do not group across restarts. Grouping by
// symbolicated frame is the backend's job after symbolication.
func Fingerprint(report Report) string {
	parts := []string{
		report.ExceptionType,
		normalizeMessage(report.Message),
	}

	input := strings.Join(parts, "|")
	hash := sha256.Sum256([]byte(input))

	// Hex-encoded first 16 bytes (32 hex chars).
	return hex.EncodeToString(hash[:16])
}

// Volatile-data patterns stripped before hashing.
var (
	// Hex values like "0x1234abcd" (addresses, handles)
	hexPattern = regexp.MustCompile(`0x[0-9a-fA-F]+`)

	// Runs of digits (line numbers, PIDs, sizes, timestamps)
	digitPattern = regexp.MustCompile(`\d+`)
)

// normalizeMessage replaces variable message content so two occurrences of
// the same failure hash identically.
func normalizeMessage(msg string) string {
	if msg == "" {
		return ""
	}
	msg = hexPattern.ReplaceAllString(msg, "0x")
	msg = digitPattern.ReplaceAllString(msg, "N")
	return strings.TrimSpace(msg)
}
