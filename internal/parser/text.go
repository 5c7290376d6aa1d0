package parser

import (
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/plainfin/internal/document"
)

// TextParser handles plain text files. Form feeds, when present, separate
// pages the way text exports of filings mark them.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (*document.Filing, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read text: %w", err)
	}

	text := string(data)
	if !strings.Contains(text, "\f") {
		return singlePage(filename, "text", text), nil
	}

	return &document.Filing{
		Title:  titleFromFilename(filename),
		Format: "text",
		Pages:  splitFormFeeds(text),
	}, nil
}
