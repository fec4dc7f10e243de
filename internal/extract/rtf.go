package extract

import (
	"fmt"
	"strings"

	"github.com/lu4p/cat"
)

// extractRTF extracts text from .rtf bytes.
func extractRTF(content []byte) (string, error) {
	text, err := cat.FromBytes(content)
	if err != nil {
		return "", fmt.Errorf("extract RTF: %w", err)
	}
	return strings.TrimSpace(text), nil
}
