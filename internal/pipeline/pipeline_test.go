package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dgallion1/plainfin/internal/llm"
	"github.com/dgallion1/plainfin/internal/parser"
	"github.com/dgallion1/plainfin/internal/report"
	"github.com/dgallion1/plainfin/internal/session"
)

// fakeLLM answers every prompt with "<kind> #n" and fails the calls listed
// in failOn (1-based).
type fakeLLM struct {
	mu      sync.Mutex
	prompts []llm.Prompt
	failOn  map[int]error
}

func (f *fakeLLM) Complete(_ context.Context, p llm.Prompt) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, p)
	n := len(f.prompts)
	if err, ok := f.failOn[n]; ok {
		return "", err
	}
	return p.Kind + " #" + strconv.Itoa(n), nil
}

func (f *fakeLLM) kinds() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.prompts))
	for i, p := range f.prompts {
		out[i] = p.Kind
	}
	return out
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestPipeline(f *fakeLLM, opts Options) (*Pipeline, *session.MemoryStore) {
	store := session.NewMemoryStore(time.Hour)
	return New(f, store, testLogger(), opts), store
}

// words returns n space-separated words of the given length.
func words(n, length int) string {
	w := strings.Repeat("x", length)
	parts := make([]string, n)
	for i := range parts {
		parts[i] = w
	}
	return strings.Join(parts, " ")
}

func TestContentHashHex(t *testing.T) {
	// SHA-256 of "hello world" is well-known.
	want := "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"
	if got := ContentHashHex([]byte("hello world")); got != want {
		t.Errorf("expected hash %q, got %q", want, got)
	}
	if ContentHashHex([]byte("aaa")) == ContentHashHex([]byte("bbb")) {
		t.Error("expected different hashes for different inputs")
	}
}

func TestNew_Defaults(t *testing.T) {
	p, _ := newTestPipeline(&fakeLLM{}, Options{})
	if p.opts.ChunkSize != 2000 {
		t.Errorf("expected chunk size 2000, got %d", p.opts.ChunkSize)
	}
	if p.opts.MaxSections != 3 {
		t.Errorf("expected 3 sections, got %d", p.opts.MaxSections)
	}
	if p.PageSpec() != report.LetterPage() {
		t.Error("expected letter page by default")
	}
}

func TestIngest_Text(t *testing.T) {
	p, store := newTestPipeline(&fakeLLM{}, Options{ChunkSize: 10})
	ctx := context.Background()

	s, err := p.Ingest(ctx, "acme-q3.txt", []byte("Revenue grew eight percent this quarter."))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Title != "acme-q3" || s.Format != "text" || s.PageCount != 1 {
		t.Errorf("unexpected metadata %q/%q/%d", s.Title, s.Format, s.PageCount)
	}
	if len(s.Chunks) < 2 {
		t.Errorf("expected several chunks with a small bound, got %d", len(s.Chunks))
	}
	if s.ContentHash != ContentHashHex([]byte(s.Text)) {
		t.Error("expected content hash of extracted text")
	}

	stored, err := store.Get(ctx, s.ID)
	if err != nil {
		t.Fatalf("expected stored session: %v", err)
	}
	if stored.Text != s.Text {
		t.Error("stored text differs")
	}
}

func TestIngest_PDF(t *testing.T) {
	data, err := report.RenderPDF("# Annual Report\nRevenue rose.", report.LetterPage(), report.Meta{})
	if err != nil {
		t.Fatal(err)
	}
	p, _ := newTestPipeline(&fakeLLM{}, Options{})
	s, err := p.Ingest(context.Background(), "annual.pdf", data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.PageCount != 1 || !strings.Contains(s.Text, "Revenue") {
		t.Errorf("unexpected pdf session: pages=%d text=%q", s.PageCount, s.Text)
	}
}

func TestIngest_Errors(t *testing.T) {
	p, store := newTestPipeline(&fakeLLM{}, Options{})
	ctx := context.Background()

	if _, err := p.Ingest(ctx, "photo.png", []byte("x")); !errors.Is(err, parser.ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
	if _, err := p.Ingest(ctx, "broken.pdf", []byte("not a pdf")); !errors.Is(err, ErrExtraction) {
		t.Errorf("expected ErrExtraction, got %v", err)
	}
	if store.Len() != 0 {
		t.Errorf("expected no sessions stored on failure, got %d", store.Len())
	}
}

func TestIngest_EmptyTextStillCreatesSession(t *testing.T) {
	p, _ := newTestPipeline(&fakeLLM{}, Options{})
	s, err := p.Ingest(context.Background(), "blank.txt", []byte("   \n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s.Chunks) != 0 {
		t.Errorf("expected no chunks, got %d", len(s.Chunks))
	}
	if _, err := p.Summarize(context.Background(), s.ID); !errors.Is(err, ErrNoSections) {
		t.Errorf("expected ErrNoSections, got %v", err)
	}
	if _, err := p.Ask(context.Background(), s.ID, "What was revenue?", ""); !errors.Is(err, ErrNoSections) {
		t.Errorf("expected ErrNoSections from Ask, got %v", err)
	}
}

func TestSummarize_CapsAndOrders(t *testing.T) {
	f := &fakeLLM{}
	p, store := newTestPipeline(f, Options{ChunkSize: 20})
	ctx := context.Background()

	// Five words of 19 chars each: one chunk per word.
	s, err := p.Ingest(ctx, "long.txt", []byte(words(5, 19)))
	if err != nil {
		t.Fatal(err)
	}
	if len(s.Chunks) != 5 {
		t.Fatalf("expected 5 chunks, got %d", len(s.Chunks))
	}

	sum, err := p.Summarize(ctx, s.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"section_summary", "section_summary", "section_summary", "executive_summary"}
	if got := f.kinds(); strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("expected calls %v, got %v", want, got)
	}
	for i, pr := range f.prompts[:3] {
		if !strings.Contains(pr.User, "section "+strconv.Itoa(i+1)) {
			t.Errorf("call %d: expected section %d prompt", i+1, i+1)
		}
	}
	if sum.SectionsSkipped != 2 {
		t.Errorf("expected 2 skipped, got %d", sum.SectionsSkipped)
	}
	if len(sum.Sections) != 3 || sum.Sections[2].Index != 2 || !sum.Sections[2].OK() {
		t.Errorf("unexpected section results %+v", sum.Sections)
	}
	if sum.ExecutiveSummary != "executive_summary #4" || sum.Status != session.StatusSummarized {
		t.Errorf("unexpected summary %+v", sum)
	}

	stored, _ := store.Get(ctx, s.ID)
	if len(stored.Sections) != 3 || stored.Sections[0].Text != "section_summary #1" {
		t.Errorf("unexpected stored sections %+v", stored.Sections)
	}
	if stored.Status != session.StatusSummarized {
		t.Errorf("expected status summarized, got %q", stored.Status)
	}
}

func TestSummarize_ConfigurableCap(t *testing.T) {
	f := &fakeLLM{}
	p, _ := newTestPipeline(f, Options{ChunkSize: 20, MaxSections: 5})
	s, _ := p.Ingest(context.Background(), "long.txt", []byte(words(5, 19)))
	sum, err := p.Summarize(context.Background(), s.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(sum.Sections) != 5 || sum.SectionsSkipped != 0 {
		t.Errorf("expected 5 sections and none skipped, got %d/%d", len(sum.Sections), sum.SectionsSkipped)
	}
}

func TestSummarize_FailFast(t *testing.T) {
	boom := errors.New("upstream 500")
	f := &fakeLLM{failOn: map[int]error{2: boom}}
	p, store := newTestPipeline(f, Options{ChunkSize: 20})
	ctx := context.Background()
	s, _ := p.Ingest(ctx, "long.txt", []byte(words(3, 19)))

	_, err := p.Summarize(ctx, s.ID)
	if !errors.Is(err, boom) {
		t.Fatalf("expected upstream error, got %v", err)
	}
	if len(f.prompts) != 2 {
		t.Errorf("expected the run to stop after the failed call, got %d calls", len(f.prompts))
	}
	stored, _ := store.Get(ctx, s.ID)
	if stored.Status != session.StatusFailed || len(stored.Errors) != 1 {
		t.Errorf("expected failed session with one error, got %q %v", stored.Status, stored.Errors)
	}
	if !strings.Contains(stored.Errors[0], "section 2") {
		t.Errorf("expected section number in error, got %q", stored.Errors[0])
	}
	if len(stored.Sections) != 0 {
		t.Errorf("expected earlier sections dropped, got %+v", stored.Sections)
	}
	if _, err := p.Report(ctx, s.ID); !errors.Is(err, ErrNotSummarized) {
		t.Errorf("expected ErrNotSummarized for a failed run, got %v", err)
	}
}

func TestSummarize_ContinueOnSectionError(t *testing.T) {
	f := &fakeLLM{failOn: map[int]error{2: errors.New("timeout")}}
	p, store := newTestPipeline(f, Options{ChunkSize: 20, ContinueOnSectionError: true})
	ctx := context.Background()
	s, _ := p.Ingest(ctx, "long.txt", []byte(words(3, 19)))

	sum, err := p.Summarize(ctx, s.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sum.Status != session.StatusPartial {
		t.Errorf("expected partial status, got %q", sum.Status)
	}
	if sum.Sections[1].OK() || sum.Sections[1].Error == "" {
		t.Errorf("expected section 2 to carry its error, got %+v", sum.Sections[1])
	}
	stored, _ := store.Get(ctx, s.ID)
	if len(stored.Sections) != 2 || stored.Sections[1].Index != 2 {
		t.Errorf("expected sections 0 and 2 stored, got %+v", stored.Sections)
	}
	last := f.prompts[len(f.prompts)-1]
	if last.Kind != "executive_summary" || strings.Contains(last.User, "### Section 2") ||
		!strings.Contains(last.User, "### Section 1") || !strings.Contains(last.User, "### Section 3") {
		t.Errorf("expected executive summary over sections 1 and 3, got %q", last.User)
	}
	r, err := p.Report(ctx, s.ID)
	if err != nil || len(r.Sections) != 2 {
		t.Errorf("expected partial report with two sections, got %d sections, err %v", len(r.Sections), err)
	}
}

func TestSummarize_AllSectionsFail(t *testing.T) {
	boom := errors.New("down")
	f := &fakeLLM{failOn: map[int]error{1: boom}}
	p, _ := newTestPipeline(f, Options{ContinueOnSectionError: true})
	s, _ := p.Ingest(context.Background(), "short.txt", []byte("one short chunk"))

	_, err := p.Summarize(context.Background(), s.ID)
	if !errors.Is(err, ErrNoSections) || !errors.Is(err, boom) {
		t.Errorf("expected ErrNoSections wrapping the upstream error, got %v", err)
	}
}

func TestSummarize_MissingSession(t *testing.T) {
	p, _ := newTestPipeline(&fakeLLM{}, Options{})
	if _, err := p.Summarize(context.Background(), "nope"); !errors.Is(err, session.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestAsk(t *testing.T) {
	f := &fakeLLM{}
	p, store := newTestPipeline(f, Options{})
	ctx := context.Background()
	s, _ := p.Ingest(ctx, "q.txt", []byte("Net income was 610 million."))

	a, err := p.Ask(ctx, s.ID, "  What was net income? ", "Document + Outside Knowledge")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Question != "What was net income?" || a.Mode != "Document + Outside Knowledge" {
		t.Errorf("unexpected answer %+v", a)
	}
	if !strings.Contains(f.prompts[0].User, "Net income was 610 million.") {
		t.Error("expected document text in prompt")
	}
	stored, _ := store.Get(ctx, s.ID)
	if len(stored.Answers) != 1 {
		t.Errorf("expected answer recorded, got %d", len(stored.Answers))
	}
}

func TestAsk_InputValidation(t *testing.T) {
	f := &fakeLLM{}
	p, _ := newTestPipeline(f, Options{})
	ctx := context.Background()
	s, _ := p.Ingest(ctx, "q.txt", []byte("text"))

	if _, err := p.Ask(ctx, s.ID, "   ", ""); !errors.Is(err, ErrEmptyInput) {
		t.Errorf("expected ErrEmptyInput, got %v", err)
	}
	if _, err := p.Ask(ctx, s.ID, "why?", "Everything"); !errors.Is(err, ErrInvalidMode) {
		t.Errorf("expected ErrInvalidMode, got %v", err)
	}
	if len(f.prompts) != 0 {
		t.Errorf("expected no model calls, got %d", len(f.prompts))
	}
}

func TestKeyMetrics_UsesCappedText(t *testing.T) {
	f := &fakeLLM{}
	p, store := newTestPipeline(f, Options{ChunkSize: 10, MaxSections: 1})
	ctx := context.Background()
	s, _ := p.Ingest(ctx, "m.txt", []byte("alpha beta gamma delta"))

	out, err := p.KeyMetrics(ctx, s.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "key_metrics #1" {
		t.Errorf("unexpected output %q", out)
	}
	if strings.Contains(f.prompts[0].User, "delta") {
		t.Error("expected text beyond the section cap to be excluded")
	}
	stored, _ := store.Get(ctx, s.ID)
	if stored.KeyMetrics != out {
		t.Error("expected key metrics stored on the session")
	}
}

func TestExplainJargonAndTutor(t *testing.T) {
	f := &fakeLLM{}
	p, _ := newTestPipeline(f, Options{})
	ctx := context.Background()

	if _, err := p.ExplainJargon(ctx, ""); !errors.Is(err, ErrEmptyInput) {
		t.Errorf("expected ErrEmptyInput, got %v", err)
	}
	if _, err := p.Tutor(ctx, "\t"); !errors.Is(err, ErrEmptyInput) {
		t.Errorf("expected ErrEmptyInput, got %v", err)
	}
	if len(f.prompts) != 0 {
		t.Fatalf("expected no model calls for blank input")
	}

	out, err := p.ExplainJargon(ctx, "EBITDA")
	if err != nil || out != "jargon #1" {
		t.Errorf("unexpected jargon result %q, %v", out, err)
	}
	out, err = p.Tutor(ctx, "What is a bond?")
	if err != nil || out != "tutor #2" {
		t.Errorf("unexpected tutor result %q, %v", out, err)
	}
}

func TestTutor_PropagatesError(t *testing.T) {
	boom := errors.New("rate limited")
	p, _ := newTestPipeline(&fakeLLM{failOn: map[int]error{1: boom}}, Options{})
	if _, err := p.Tutor(context.Background(), "q"); !errors.Is(err, boom) {
		t.Errorf("expected wrapped upstream error, got %v", err)
	}
}

func TestReport(t *testing.T) {
	f := &fakeLLM{}
	p, _ := newTestPipeline(f, Options{})
	ctx := context.Background()
	s, _ := p.Ingest(ctx, "acme.txt", []byte("Revenue grew."))

	if _, err := p.Report(ctx, s.ID); !errors.Is(err, ErrNotSummarized) {
		t.Errorf("expected ErrNotSummarized, got %v", err)
	}

	if _, err := p.Summarize(ctx, s.ID); err != nil {
		t.Fatal(err)
	}
	r, err := p.Report(ctx, s.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	md := r.Markdown()
	for _, want := range []string{"# acme\n", "## Section 1 Summary\nsection_summary #1", "## Executive Summary\nexecutive_summary #2"} {
		if !strings.Contains(md, want) {
			t.Errorf("expected %q in markdown:\n%s", want, md)
		}
	}
}

func TestDiscard(t *testing.T) {
	p, _ := newTestPipeline(&fakeLLM{}, Options{})
	ctx := context.Background()
	s, _ := p.Ingest(ctx, "a.txt", []byte("x"))
	if err := p.Discard(ctx, s.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := p.Session(ctx, s.ID); !errors.Is(err, session.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
