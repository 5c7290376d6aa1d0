package pipeline

import (
	"bytes"
	"context"
	"fmt"

	"github.com/dgallion1/plainfin/internal/chunker"
	"github.com/dgallion1/plainfin/internal/parser"
	"github.com/dgallion1/plainfin/internal/session"
)

// Ingest extracts and chunks an uploaded filing and stores a new session.
func (p *Pipeline) Ingest(ctx context.Context, filename string, data []byte) (*session.Session, error) {
	prs, err := parser.ForFile(filename, p.opts.Parser)
	if err != nil {
		return nil, err
	}

	s := session.New(filename)
	log := p.log.With("session_id", s.ID, "filename", filename)

	filing, err := prs.Parse(bytes.NewReader(data), filename)
	if err != nil {
		log.Error("extraction failed", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrExtraction, err)
	}

	s.Title = filing.Title
	s.Format = filing.Format
	s.PageCount = filing.PageCount()
	s.Text = filing.Text()
	s.ContentHash = ContentHashHex([]byte(s.Text))

	if filing.Format == "pdf" {
		info, err := parser.InspectPDF(data)
		switch {
		case err != nil:
			log.Warn("pdf inspection failed", "error", err)
		case info.Pages != s.PageCount:
			log.Warn("page count mismatch", "inspected", info.Pages, "extracted", s.PageCount)
		}
	}

	s.Chunks = chunker.Chunks(s.Text, p.opts.ChunkSize)
	if len(s.Chunks) == 0 {
		log.Warn("no extractable text", "pages", s.PageCount)
	}

	if err := p.store.Put(ctx, s); err != nil {
		return nil, err
	}
	log.Info("filing ingested",
		"format", s.Format,
		"pages", s.PageCount,
		"chunks", len(s.Chunks),
		"est_tokens", chunker.EstimateTokens(s.Text),
	)
	return s, nil
}
