// Package report assembles generated summaries into downloadable Markdown and
// PDF documents.
package report

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/dgallion1/plainfin/internal/document"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Download names and content types of the two report encodings.
const (
	MarkdownFilename    = "plainfin_report.md"
	MarkdownContentType = "text/markdown"
	PDFFilename         = "plainfin_report.pdf"
	PDFContentType      = "application/pdf"
)

const defaultTitle = "PlainFin Report"

// Report is the ordered content of a generated report.
type Report struct {
	Title            string
	Sections         []document.SectionSummary
	ExecutiveSummary string
	KeyMetrics       string
	GeneratedAt      time.Time
}

// Markdown renders the report as Markdown. Optional parts are omitted when
// empty.
func (r Report) Markdown() string {
	title := r.Title
	if title == "" {
		title = defaultTitle
	}

	var sb strings.Builder
	sb.WriteString("# " + title + "\n\n")
	for _, s := range r.Sections {
		fmt.Fprintf(&sb, "## Section %d Summary\n", s.Index+1)
		sb.WriteString(strings.TrimSpace(s.Text))
		sb.WriteString("\n\n")
	}
	if r.ExecutiveSummary != "" {
		sb.WriteString("## Executive Summary\n")
		sb.WriteString(strings.TrimSpace(r.ExecutiveSummary))
		sb.WriteString("\n\n")
	}
	if r.KeyMetrics != "" {
		sb.WriteString("## Key Metrics\n")
		sb.WriteString(strings.TrimSpace(r.KeyMetrics))
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n") + "\n"
}

// PDF renders the Markdown encoding through the page layout engine.
func (r Report) PDF(spec PageSpec) ([]byte, error) {
	title := r.Title
	if title == "" {
		title = defaultTitle
	}
	return RenderPDF(r.Markdown(), spec, Meta{Title: title, Created: r.GeneratedAt})
}

var md = goldmark.New(goldmark.WithExtensions(extension.GFM))

// HTML renders the report for in-page preview. Raw HTML in model output is
// not passed through.
func (r Report) HTML() (string, error) {
	return MarkdownToHTML(r.Markdown())
}

// MarkdownToHTML converts model output to HTML for display.
func MarkdownToHTML(src string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("render html: %w", err)
	}
	return buf.String(), nil
}
