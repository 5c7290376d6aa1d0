// Package pipeline runs the user-triggered steps of a filing session:
// ingest, summarize, extract metrics, answer questions and assemble reports.
// Every step is synchronous and calls the model sequentially.
package pipeline

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dgallion1/plainfin/internal/chunker"
	"github.com/dgallion1/plainfin/internal/document"
	"github.com/dgallion1/plainfin/internal/llm"
	"github.com/dgallion1/plainfin/internal/parser"
	"github.com/dgallion1/plainfin/internal/report"
	"github.com/dgallion1/plainfin/internal/session"
)

// DefaultMaxSections is how many chunks are summarized per filing.
const DefaultMaxSections = 3

var (
	// ErrEmptyInput is returned for a blank question or term. The model is
	// not called.
	ErrEmptyInput = errors.New("empty input")
	// ErrInvalidMode is returned for an unknown answer mode.
	ErrInvalidMode = errors.New("invalid answer mode")
	// ErrExtraction wraps text extraction failures.
	ErrExtraction = errors.New("text extraction failed")
	// ErrNoSections is returned when a filing has no text to summarize or no
	// section summary succeeded.
	ErrNoSections = errors.New("no sections to summarize")
	// ErrNotSummarized is returned when a report is requested before any
	// section summary exists.
	ErrNotSummarized = errors.New("filing has not been summarized")
)

// Completer sends one prompt to a language model.
type Completer interface {
	Complete(ctx context.Context, p llm.Prompt) (string, error)
}

// Options configure a Pipeline. They are fixed at construction.
type Options struct {
	ChunkSize              int
	MaxSections            int
	ContinueOnSectionError bool
	Parser                 parser.Options
	Page                   report.PageSpec
}

// Pipeline wires extraction, the model and the session store together.
type Pipeline struct {
	llm   Completer
	store session.Store
	log   *slog.Logger
	opts  Options
}

// New returns a Pipeline with default chunk size, section cap and page applied.
func New(c Completer, store session.Store, log *slog.Logger, opts Options) *Pipeline {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = chunker.DefaultMaxChars
	}
	if opts.MaxSections <= 0 {
		opts.MaxSections = DefaultMaxSections
	}
	if opts.Page.Width == 0 {
		opts.Page = report.LetterPage()
	}
	return &Pipeline{llm: c, store: store, log: log, opts: opts}
}

// Session returns a stored session.
func (p *Pipeline) Session(ctx context.Context, id string) (*session.Session, error) {
	return p.store.Get(ctx, id)
}

// Discard drops a session.
func (p *Pipeline) Discard(ctx context.Context, id string) error {
	if err := p.store.Delete(ctx, id); err != nil {
		return err
	}
	p.log.Info("session discarded", "session_id", id)
	return nil
}

// PageSpec returns the page geometry used for PDF reports.
func (p *Pipeline) PageSpec() report.PageSpec {
	return p.opts.Page
}

// cappedChunks returns the chunks the model is allowed to see.
func (p *Pipeline) cappedChunks(s *session.Session) []document.Chunk {
	return s.Chunks[:min(len(s.Chunks), p.opts.MaxSections)]
}

func (p *Pipeline) cappedText(s *session.Session) string {
	chunks := p.cappedChunks(s)
	parts := make([]string, len(chunks))
	for i, c := range chunks {
		parts[i] = c.Text
	}
	return strings.Join(parts, " ")
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
