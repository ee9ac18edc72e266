package utils

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	nonSlugChars = regexp.MustCompile("[^a-z0-9-]")
	multiHyphen  = regexp.MustCompile("-+")
	nonFileChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)
)

// ParseUUID parses a string into a UUID
func ParseUUID(s string) (uuid.UUID, error) {
	return uuid.Parse(s)
}

// Slugify converts a string to a URL-friendly slug
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer(
		"á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u", "ñ", "n", "ü", "u",
		" ", "-", "_", "-",
	).Replace(s)
	s = nonSlugChars.ReplaceAllString(s, "")
	s = multiHyphen.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// SanitizeFilename keeps a file name safe for use in a storage key
func SanitizeFilename(name string) string {
	name = strings.TrimSpace(name)
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	name = nonFileChars.ReplaceAllString(strings.ReplaceAll(name, " ", "_"), "")
	if name == "" || name == "." || name == ".." {
		return "file"
	}
	return name
}

// PeriodPrefix returns prefix followed by the year and month of t and a
// dash, e.g. COT-202610-.
func PeriodPrefix(prefix string, t time.Time) string {
	return fmt.Sprintf("%s%s-", prefix, t.Format("200601"))
}

// FormatSequence zero-pads a document sequence to four digits
func FormatSequence(prefix string, n int) string {
	return fmt.Sprintf("%s%04d", prefix, n)
}
