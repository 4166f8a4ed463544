package validators

import "strings"

// SanitizeString trims input, folds inner whitespace runs to one space and
// caps the result at maxLen runes. Search filters such as a customer name
// pasted with a tab or double space still match.
func SanitizeString(input string, maxLen int) string {
	folded := strings.Join(strings.Fields(input), " ")
	if maxLen <= 0 {
		return folded
	}
	runes := []rune(folded)
	if len(runes) <= maxLen {
		return folded
	}
	return strings.TrimSpace(string(runes[:maxLen]))
}
