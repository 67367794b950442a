package serializer

import (
	"regexp"
	"strings"
)

var separatorPattern = regexp.MustCompile(`[_\-\s]+`)

// Humanize turns a field name into lower-case words: "first_name" → "first name".
func Humanize(name string) string {
	return strings.TrimSpace(separatorPattern.ReplaceAllString(name, " "))
}

// DisplayName turns a slug into a title-cased label: "date_of_birth" → "Date Of Birth".
func DisplayName(slug string) string {
	words := separatorPattern.Split(strings.TrimSpace(slug), -1)
	out := make([]string, 0, len(words))
	for _, w := range words {
		if w == "" {
			continue
		}
		lower := strings.ToLower(w)
		out = append(out, strings.ToUpper(lower[:1])+lower[1:])
	}
	return strings.Join(out, " ")
}

// firstOf returns the first non-empty value.
func firstOf(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
