package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dgallion1/plainfin/internal/llm"
	"github.com/dgallion1/plainfin/internal/report"
	"github.com/dgallion1/plainfin/internal/session"
)

// KeyMetrics extracts headline figures from the summarized part of a filing.
func (p *Pipeline) KeyMetrics(ctx context.Context, id string) (string, error) {
	s, err := p.store.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if len(s.Chunks) == 0 {
		return "", ErrNoSections
	}

	out, err := p.llm.Complete(ctx, llm.KeyMetricsPrompt(s.Title, p.cappedText(s)))
	if err != nil {
		p.log.Error("key metrics failed", "session_id", s.ID, "error", err)
		return "", fmt.Errorf("key metrics: %w", err)
	}
	s.KeyMetrics = out
	s.UpdatedAt = time.Now()
	if err := p.store.Put(ctx, s); err != nil {
		return "", err
	}
	return out, nil
}

// Ask answers a question about a filing. mode is "Document Only" or
// "Document + Outside Knowledge".
func (p *Pipeline) Ask(ctx context.Context, id, question, mode string) (session.Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return session.Answer{}, ErrEmptyInput
	}
	m, err := llm.ParseAnswerMode(mode)
	if err != nil {
		return session.Answer{}, fmt.Errorf("%w: %w", ErrInvalidMode, err)
	}

	s, err := p.store.Get(ctx, id)
	if err != nil {
		return session.Answer{}, err
	}
	if len(s.Chunks) == 0 {
		return session.Answer{}, ErrNoSections
	}

	text, err := p.llm.Complete(ctx, llm.DocumentQuestionPrompt(s.Title, p.cappedText(s), question, m))
	if err != nil {
		p.log.Error("document question failed", "session_id", s.ID, "error", err)
		return session.Answer{}, fmt.Errorf("answer question: %w", err)
	}

	a := session.Answer{Question: question, Mode: string(m), Text: text, AskedAt: time.Now()}
	s.Answers = append(s.Answers, a)
	s.UpdatedAt = a.AskedAt
	if err := p.store.Put(ctx, s); err != nil {
		return session.Answer{}, err
	}
	return a, nil
}

// ExplainJargon explains one finance term. It does not need a filing.
func (p *Pipeline) ExplainJargon(ctx context.Context, term string) (string, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return "", ErrEmptyInput
	}
	out, err := p.llm.Complete(ctx, llm.JargonPrompt(term))
	if err != nil {
		return "", fmt.Errorf("explain jargon: %w", err)
	}
	return out, nil
}

// Tutor answers a standalone finance question.
func (p *Pipeline) Tutor(ctx context.Context, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", ErrEmptyInput
	}
	out, err := p.llm.Complete(ctx, llm.TutorPrompt(question))
	if err != nil {
		return "", fmt.Errorf("tutor: %w", err)
	}
	return out, nil
}

// Report assembles the session's generated content into a report.
func (p *Pipeline) Report(ctx context.Context, id string) (report.Report, error) {
	s, err := p.store.Get(ctx, id)
	if err != nil {
		return report.Report{}, err
	}
	if len(s.Sections) == 0 || s.Status == session.StatusFailed {
		return report.Report{}, ErrNotSummarized
	}
	return report.Report{
		Title:            s.Title,
		Sections:         s.Sections,
		ExecutiveSummary: s.ExecutiveSummary,
		KeyMetrics:       s.KeyMetrics,
		GeneratedAt:      time.Now(),
	}, nil
}
