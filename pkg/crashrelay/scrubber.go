// scrubber.go implements fail-closed sensitive data redaction for crash
// reports.

package crashrelay

import (
	"regexp"
	"strings"
)

// ScrubberConfig controls scrubbing behavior.
type ScrubberConfig struct {
	// SensitiveKeyPatterns contains additional substring patterns for
	// sensitive metadata keys, merged with the built-in set.
	SensitiveKeyPatterns []string

	// MaxMessageSize is the maximum length for crash messages (default: 4096).
	MaxMessageSize int

	// MaxMetadataValueSize is the maximum size per metadata value (default: 1024).
	MaxMetadataValueSize int

	// ScrubMessages enables scrubbing of messages for secrets/PII (default: true).
	ScrubMessages bool
}

// DefaultScrubberConfig returns production-safe defaults.
func DefaultScrubberConfig() ScrubberConfig {
	return ScrubberConfig{
		MaxMessageSize:       4096,
		MaxMetadataValueSize: 1024,
		ScrubMessages:        true,
	}
}

// Compiled regex patterns for message scrubbing (compiled once at package init)
var messageScrubPatterns = []*regexp.Regexp{
	// API keys and tokens
	regexp.MustCompile(`(?i)(api[_-]?key|token)[=:\s]+['"]?[\w\-\.]+['"]?`),
	regexp.MustCompile(`(?i)(authorization|bearer)[=:\s]+['"]?[\w\-\.]+['"]?[\s]+['"]?[\w\-\.]+['"]?`), // Authorization: Bearer <token>
	regexp.MustCompile(`(?i)sk-[a-zA-Z0-9_-]{20,}`),        // OpenAI-style keys
	regexp.MustCompile(`(?i)ghp_[a-zA-Z0-9]{36}`),          // GitHub tokens
	regexp.MustCompile(`(?i)gho_[a-zA-Z0-9]{36}`),          // GitHub OAuth tokens
	regexp.MustCompile(`(?i)github_pat_[a-zA-Z0-9_]{22,}`), // GitHub PAT
	regexp.MustCompile(`(?i)xox[baprs]-[a-zA-Z0-9\-]{10,}`), // Slack tokens
	regexp.MustCompile(`(?i)eyJ[a-zA-Z0-9_-]*\.eyJ[a-zA-Z0-9_-]*\.[a-zA-Z0-9_-]*`), // JWT tokens

	// Credentials
	regexp.MustCompile(`(?i)password[=:\s]+['"]?[^\s'"",]+['"]?`),
	regexp.MustCompile(`(?i)secret[=:\s]+['"]?[^\s'"",]+['"]?`),
	regexp.MustCompile(`(?i)passwd[=:\s]+['"]?[^\s'"",]+['"]?`),
	regexp.MustCompile(`(?i)credential[=:\s]+['"]?[^\s'"",]+['"]?`),

	// PII
	regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Z|a-z]{2,}\b`), // Email
	regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`),                               // SSN
	regexp.MustCompile(`\b\d{4}[\s-]?\d{4}[\s-]?\d{4}[\s-]?\d{4}\b`),          // Credit card
}

// Built-in sensitive metadata key patterns (case-insensitive substring match)
var sensitiveKeyPatterns = []string{
	"token",
	"key",
	"secret",
	"password",
	"credential",
	"auth",
	"passwd",
}

// Scrubber redacts sensitive data from crash reports before delivery.
type Scrubber struct {
	cfg ScrubberConfig
}

// NewScrubber creates a new scrubber with the given configuration.
func NewScrubber(cfg ScrubberConfig) *Scrubber {
	if cfg.MaxMessageSize <= 0 {
		cfg.MaxMessageSize = 4096
	}
	if cfg.MaxMetadataValueSize <= 0 {
		cfg.MaxMetadataValueSize = 1024
	}
	return &Scrubber{cfg: cfg}
}

// ScrubMessage scrubs sensitive patterns from a crash message.
func (s *Scrubber) ScrubMessage(msg string) string {
	if !s.cfg.ScrubMessages {
		return msg
	}

	// Truncate if too large first
	if len(msg) > s.cfg.MaxMessageSize {
		msg = truncateWithMarker(msg, s.cfg.MaxMessageSize)
	}

	// Apply all scrubbing patterns
	result := msg
	for _, pattern := range messageScrubPatterns {
		result = pattern.ReplaceAllString(result, "[REDACTED]")
	}

	return result
}

// ScrubMetadata redacts sensitive keys from metadata.
func (s *Scrubber) ScrubMetadata(meta map[string]string) map[string]string {
	if meta == nil {
		return nil
	}

	result := make(map[string]string, len(meta))
	for key, value := range meta {
		if s.isSensitiveKey(key) {
			result[key] = "[REDACTED]"
		} else {
			// Truncate long values
			if len(value) > s.cfg.MaxMetadataValueSize {
				value = truncateWithMarker(value, s.cfg.MaxMetadataValueSize)
			}
			result[key] = value
		}
	}

	return result
}

// isSensitiveKey checks if a metadata key matches sensitive patterns.
func (s *Scrubber) isSensitiveKey(key string) bool {
	keyLower := strings.ToLower(key)
	for _, pattern := range sensitiveKeyPatterns {
		if strings.Contains(keyLower, pattern) {
			return true
		}
	}
	for _, pattern := range s.cfg.SensitiveKeyPatterns {
		if strings.Contains(keyLower, strings.ToLower(pattern)) {
			return true
		}
	}
	return false
}

// truncateWithMarker truncates a string and adds a truncation marker.
func truncateWithMarker(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	marker := "...[TRUNCATED]"
	if maxLen <= len(marker) {
		return marker[:maxLen]
	}
	return s[:maxLen-len(marker)] + marker
}
