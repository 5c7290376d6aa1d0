package document

import "strings"

// Filing is the parsed form of an uploaded document.
type Filing struct {
	Title  string // Document title (from metadata or filename)
	Format string // Source format, e.g. "pdf", "html"
	Pages  []Page // Pages in document order
}

// Page holds the extracted text of one page. Text is empty for pages that
// yield nothing, such as scanned images.
type Page struct {
	Number int
	Text   string
}

// Text concatenates the text of every page in page order.
func (f *Filing) Text() string {
	if f == nil {
		return ""
	}
	var sb strings.Builder
	for _, p := range f.Pages {
		sb.WriteString(p.Text)
	}
	return sb.String()
}

// PageCount returns the number of pages, including empty ones.
func (f *Filing) PageCount() int {
	if f == nil {
		return 0
	}
	return len(f.Pages)
}

// Chunk is a word-aligned slice of document text sized for one model call.
type Chunk struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

// SectionSummary is the model's summary of the chunk with the same index.
type SectionSummary struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}
