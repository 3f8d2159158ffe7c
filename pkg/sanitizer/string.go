package sanitizer

import (
	"strings"
	"unicode"
)

func TrimAndNormalize(s string) string {
	s = strings.TrimSpace(s)

	if s == "" {
		return ""
	}

	var result strings.Builder
	var lastWasSpace bool

	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				result.WriteRune(' ')
				lastWasSpace = true
			}
		} else {
			result.WriteRune(r)
			lastWasSpace = false
		}
	}

	return result.String()
}

func NormalizeName(name string) string {
	return TrimAndNormalize(name)
}

func NormalizeAddress(address string) string {
	return TrimAndNormalize(address)
}

// NormalizeNotes keeps line breaks but trims every line.
func NormalizeNotes(notes string) string {
	lines := strings.Split(strings.TrimSpace(notes), "\n")
	for i, line := range lines {
		lines[i] = TrimAndNormalize(line)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func NormalizeEquipmentID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}

func NormalizeEnum(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
