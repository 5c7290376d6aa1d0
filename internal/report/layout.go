package report

import (
	"strings"

	"github.com/dgallion1/plainfin/internal/chunker"
)

// Style is the font treatment of one rendered line.
type Style struct {
	Name    string  `json:"name"`
	Bold    bool    `json:"bold"`
	Size    float64 `json:"size"`    // Font size in points.
	Leading float64 `json:"leading"` // Vertical advance in points.
}

var (
	StyleH1   = Style{Name: "h1", Bold: true, Size: 16, Leading: 24}
	StyleH2   = Style{Name: "h2", Bold: true, Size: 14, Leading: 20}
	StyleH3   = Style{Name: "h3", Bold: true, Size: 12, Leading: 18}
	StyleBody = Style{Name: "body", Size: 11, Leading: 15}
)

// PageSpec fixes the page geometry in points.
type PageSpec struct {
	Width        float64
	Height       float64
	MarginLeft   float64
	MarginTop    float64
	MarginBottom float64

	// MaxLineChars wraps lines at word boundaries when positive. Zero keeps
	// every input line on one output line.
	MaxLineChars int
}

// LetterPage is US Letter with 50pt margins and no wrapping.
func LetterPage() PageSpec {
	return PageSpec{
		Width:        612,
		Height:       792,
		MarginLeft:   50,
		MarginTop:    50,
		MarginBottom: 50,
	}
}

// Line is one positioned line of text. Y is the baseline measured from the
// top edge of the page.
type Line struct {
	Text  string  `json:"text"`
	Style Style   `json:"style"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
}

// Page is one laid-out page, numbered from 1.
type Page struct {
	Number int    `json:"number"`
	Lines  []Line `json:"lines"`
}

// ParseLine strips a heading marker and returns the style it selects.
func ParseLine(line string) (string, Style) {
	switch {
	case strings.HasPrefix(line, "### "):
		return strings.TrimPrefix(line, "### "), StyleH3
	case strings.HasPrefix(line, "## "):
		return strings.TrimPrefix(line, "## "), StyleH2
	case strings.HasPrefix(line, "# "):
		return strings.TrimPrefix(line, "# "), StyleH1
	default:
		return line, StyleBody
	}
}

// Layout flows text onto pages one input line at a time. The cursor moves
// down by each line's leading; a line that would cross the bottom margin
// starts a new page at the top margin.
func Layout(text string, spec PageSpec) []Page {
	if spec.Height <= 0 {
		spec = LetterPage()
	}
	bottom := spec.Height - spec.MarginBottom

	pages := []Page{{Number: 1}}
	y := spec.MarginTop

	place := func(s string, style Style) {
		if y+style.Leading > bottom && len(pages[len(pages)-1].Lines) > 0 {
			pages = append(pages, Page{Number: len(pages) + 1})
			y = spec.MarginTop
		}
		cur := &pages[len(pages)-1]
		cur.Lines = append(cur.Lines, Line{
			Text:  s,
			Style: style,
			X:     spec.MarginLeft,
			Y:     y + style.Size,
		})
		y += style.Leading
	}

	text = strings.ReplaceAll(text, "\r\n", "\n")
	for _, raw := range strings.Split(text, "\n") {
		s, style := ParseLine(raw)
		if spec.MaxLineChars > 0 {
			if parts := chunker.Split(s, spec.MaxLineChars); len(parts) > 1 {
				for _, part := range parts {
					place(part, style)
				}
				continue
			}
		}
		place(s, style)
	}

	return pages
}
