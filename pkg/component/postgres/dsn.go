package postgres

import (
	"fmt"
	"strings"
)

// BuildDSN renders the keyword/value DSN that gorm's pgx driver consumes.
// The password is quoted when it carries spaces, quotes, or backslashes so
// a pasted secret cannot smuggle extra DSN parameters.
func BuildDSN(opts *Options) string {
	if opts == nil {
		return ""
	}

	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		opts.Host,
		opts.Port,
		opts.Username,
		escapeValue(opts.Password),
		opts.Database,
		opts.SSLMode,
	)
}

// escapeValue quotes a DSN value when it contains characters that would
// otherwise terminate or corrupt the key=value pair.
func escapeValue(value string) string {
	if value == "" {
		return "''"
	}

	if !strings.ContainsAny(value, " '\\") {
		return value
	}

	escaped := strings.ReplaceAll(value, "'", "''")
	escaped = strings.ReplaceAll(escaped, "\\", "\\\\")
	return "'" + escaped + "'"
}
