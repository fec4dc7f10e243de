package extract

import (
	"archive/zip"
	"bytes"
	"fmt"
	"html"
	"regexp"
	"strings"
)

// odtContentPath is the path to the main content inside an OpenDocument zip.
const odtContentPath = "content.xml"

var (
	odtEmpty = regexp.MustCompile(`<text:(?:p|h)(?:\s[^>]*)?/>`)
	// odtBlock matches headings and paragraphs (with optional attributes).
	odtBlock = regexp.MustCompile(`(?s)<text:(p|h)(?:\s[^>]*)?>(.*?)</text:(?:p|h)>`)
	// odtSpace is <text:s/>, OpenDocument's encoding of a run of spaces.
	odtSpace = regexp.MustCompile(`<text:s(?:\s[^>]*)?/>`)
	xmlTag   = regexp.MustCompile(`<[^>]+>`)
)

// extractODT extracts text from .odt bytes, one heading or paragraph per block.
func extractODT(content []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("extract ODT: not a zip: %w", err)
	}
	contentXML, err := readZipEntry(zr, odtContentPath)
	if err != nil {
		return "", fmt.Errorf("extract ODT: %w", err)
	}
	if contentXML == nil {
		return "", fmt.Errorf("extract ODT: %s not found", odtContentPath)
	}

	var paragraphs []string
	body := odtEmpty.ReplaceAllString(string(contentXML), "")
	for _, m := range odtBlock.FindAllStringSubmatch(body, -1) {
		inner := odtSpace.ReplaceAllString(m[2], " ")
		inner = xmlTag.ReplaceAllString(inner, "")
		paragraphs = append(paragraphs, strings.TrimSpace(html.UnescapeString(inner)))
	}
	return joinParagraphs(paragraphs), nil
}
