package parser

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

var disableConfigOnce sync.Once

// PDFInfo describes an uploaded PDF independently of text extraction.
type PDFInfo struct {
	Pages int `json:"pages"`
}

// InspectPDF counts the pages of a PDF with relaxed validation. Callers use
// it for metadata only; extraction does not depend on it.
func InspectPDF(data []byte) (PDFInfo, error) {
	// pdfcpu writes a config directory under $HOME unless told not to.
	disableConfigOnce.Do(api.DisableConfigDir)

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	n, err := api.PageCount(bytes.NewReader(data), conf)
	if err != nil {
		return PDFInfo{}, fmt.Errorf("inspect pdf: %w", err)
	}
	return PDFInfo{Pages: n}, nil
}
