package extract

import (
	"strings"
	"unicode/utf8"
)

// extractPlain returns content as string with Windows line endings
// normalized. Invalid UTF-8 sequences are replaced with the replacement
// character.
func extractPlain(content []byte) (string, error) {
	text := string(content)
	if !utf8.Valid(content) {
		text = strings.ToValidUTF8(text, "�")
	}
	return strings.ReplaceAll(text, "\r\n", "\n"), nil
}
