package report

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/go-pdf/fpdf"
)

const fontFamily = "Helvetica"

// Meta is PDF document metadata.
type Meta struct {
	Title   string
	Created time.Time // Zero means now.
}

// WritePDF draws laid-out pages with the core Helvetica fonts. Text is
// translated from UTF-8 to cp1252; unmappable runes are replaced.
func WritePDF(w io.Writer, pages []Page, spec PageSpec, meta Meta) error {
	if spec.Height <= 0 {
		spec = LetterPage()
	}

	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           fpdf.SizeType{Wd: spec.Width, Ht: spec.Height},
	})
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCreator("PlainFin", true)
	if meta.Title != "" {
		pdf.SetTitle(meta.Title, true)
	}
	if !meta.Created.IsZero() {
		pdf.SetCreationDate(meta.Created)
	}
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	var current Style
	for i, page := range pages {
		pdf.AddPage()
		if i == 0 {
			current = StyleBody
			pdf.SetFont(fontFamily, "", StyleBody.Size)
		}
		for _, line := range page.Lines {
			if line.Style != current {
				pdf.SetFont(fontFamily, fontStyle(line.Style), line.Style.Size)
				current = line.Style
			}
			if line.Text != "" {
				pdf.Text(line.X, line.Y, tr(line.Text))
			}
		}
	}
	if len(pages) == 0 {
		pdf.AddPage()
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

// RenderPDF lays out text on Letter pages and returns the encoded PDF.
func RenderPDF(text string, spec PageSpec, meta Meta) ([]byte, error) {
	var buf bytes.Buffer
	if err := WritePDF(&buf, Layout(text, spec), spec, meta); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func fontStyle(s Style) string {
	if s.Bold {
		return "B"
	}
	return ""
}
