package pipeline

import (
	"context"
	"fmt"

	"github.com/dgallion1/plainfin/internal/document"
	"github.com/dgallion1/plainfin/internal/llm"
	"github.com/dgallion1/plainfin/internal/session"
)

// SectionResult is the outcome of summarizing one chunk.
type SectionResult struct {
	Index   int    `json:"index"`
	Summary string `json:"summary,omitempty"`
	Error   string `json:"error,omitempty"`
	Err     error  `json:"-"`
}

// OK reports whether the section was summarized.
func (r SectionResult) OK() bool {
	return r.Err == nil
}

// Summary is the result of a Summarize run.
type Summary struct {
	Sections         []SectionResult `json:"sections"`
	ExecutiveSummary string          `json:"executive_summary"`
	SectionsSkipped  int             `json:"sections_skipped"`
	Status           session.Status  `json:"status"`
}

// Summarize asks the model for one summary per chunk, in chunk order and one
// call at a time, up to MaxSections chunks. It then condenses the successful
// summaries into an executive summary. A failed section stops the run unless
// ContinueOnSectionError is set.
func (p *Pipeline) Summarize(ctx context.Context, id string) (*Summary, error) {
	s, err := p.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	log := p.log.With("session_id", s.ID)

	if len(s.Chunks) == 0 {
		return nil, ErrNoSections
	}

	chunks := p.cappedChunks(s)
	out := &Summary{SectionsSkipped: len(s.Chunks) - len(chunks)}
	if out.SectionsSkipped > 0 {
		log.Info("sections capped", "total", len(s.Chunks), "summarized", len(chunks), "skipped", out.SectionsSkipped)
	}

	s.Sections = nil
	s.ExecutiveSummary = ""
	s.Errors = nil

	var lastErr error
	for _, c := range chunks {
		text, err := p.llm.Complete(ctx, llm.SectionSummaryPrompt(s.Title, c.Index, c.Text))
		if err != nil {
			err = fmt.Errorf("summarize section %d: %w", c.Index+1, err)
			log.Error("section summary failed", "section", c.Index+1, "error", err)
			out.Sections = append(out.Sections, SectionResult{Index: c.Index, Error: err.Error(), Err: err})
			s.AddError(err.Error())
			lastErr = err
			if !p.opts.ContinueOnSectionError {
				return nil, p.fail(ctx, s, err)
			}
			continue
		}
		out.Sections = append(out.Sections, SectionResult{Index: c.Index, Summary: text})
		s.Sections = append(s.Sections, document.SectionSummary{Index: c.Index, Text: text})
		log.Debug("section summarized", "section", c.Index+1, "chars", len(text))
	}

	if len(s.Sections) == 0 {
		return nil, p.fail(ctx, s, fmt.Errorf("%w: %w", ErrNoSections, lastErr))
	}

	exec, err := p.llm.Complete(ctx, llm.ExecutiveSummaryPrompt(s.Title, s.Sections))
	if err != nil {
		err = fmt.Errorf("executive summary: %w", err)
		log.Error("executive summary failed", "error", err)
		s.AddError(err.Error())
		return nil, p.fail(ctx, s, err)
	}
	s.ExecutiveSummary = exec
	out.ExecutiveSummary = exec

	if lastErr != nil {
		s.SetStatus(session.StatusPartial)
	} else {
		s.SetStatus(session.StatusSummarized)
	}
	out.Status = s.Status

	if err := p.store.Put(ctx, s); err != nil {
		return nil, err
	}
	log.Info("filing summarized", "sections", len(s.Sections), "failed", len(chunks)-len(s.Sections), "status", s.Status)
	return out, nil
}

// fail marks the session failed, saves it, and returns err. Without
// ContinueOnSectionError the sections summarized so far are dropped.
func (p *Pipeline) fail(ctx context.Context, s *session.Session, err error) error {
	if !p.opts.ContinueOnSectionError {
		s.Sections = nil
		s.ExecutiveSummary = ""
	}
	s.SetStatus(session.StatusFailed)
	if perr := p.store.Put(ctx, s); perr != nil {
		p.log.Error("save failed session", "session_id", s.ID, "error", perr)
	}
	return err
}
