package notify

import "strings"

// reserved is the full set of characters MarkdownV2 treats as markup.
// Every occurrence in raw text must be preceded by a backslash or the API
// rejects the message with a 400.
const reserved = "\\_*[]()~`><&#+-=|{}.!"

// EscapeMarkdown prefixes each reserved character in text with a backslash.
// It is a pure mapping over single characters and must be applied exactly
// once per raw string; escaping already-escaped text doubles the backslashes
// and breaks rendering.
func EscapeMarkdown(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if r < 128 && strings.ContainsRune(reserved, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
