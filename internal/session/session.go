package session

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/dgallion1/plainfin/internal/document"
)

// ErrNotFound is returned when a session ID is unknown or expired.
var ErrNotFound = errors.New("session not found")

// Status represents where a session is in its lifecycle.
type Status string

const (
	StatusUploaded   Status = "uploaded"
	StatusSummarized Status = "summarized"
	StatusPartial    Status = "partial"
	StatusFailed     Status = "failed"
)

// Answer is one question asked about the session's filing.
type Answer struct {
	Question string    `json:"question"`
	Mode     string    `json:"mode"`
	Text     string    `json:"text"`
	AskedAt  time.Time `json:"asked_at"`
}

// Session holds one user's working state for an uploaded filing.
type Session struct {
	ID        string `json:"id"`
	Filename  string `json:"filename"`
	Title     string `json:"title"`
	Format    string `json:"format"`
	PageCount int    `json:"page_count"`

	ContentHash string `json:"content_hash,omitempty"`

	Text     string                    `json:"text"`
	Chunks   []document.Chunk          `json:"chunks"`
	Sections []document.SectionSummary `json:"sections"`

	ExecutiveSummary string   `json:"executive_summary,omitempty"`
	KeyMetrics       string   `json:"key_metrics,omitempty"`
	Answers          []Answer `json:"answers,omitempty"`

	Status    Status    `json:"status"`
	Errors    []string  `json:"errors,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// New returns an uploaded session with a fresh ID.
func New(filename string) *Session {
	now := time.Now()
	return &Session{
		ID:        uuid.NewString(),
		Filename:  filename,
		Status:    StatusUploaded,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Store persists sessions. Implementations store copies, so callers must Put
// after mutating a session they got.
type Store interface {
	Put(ctx context.Context, s *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
}

// SetStatus updates status and touches UpdatedAt.
func (s *Session) SetStatus(status Status) {
	s.Status = status
	s.UpdatedAt = time.Now()
}

// AddError records an error.
func (s *Session) AddError(msg string) {
	s.Errors = append(s.Errors, msg)
	s.UpdatedAt = time.Now()
}

// Clone returns a deep copy.
func (s *Session) Clone() *Session {
	c := *s
	c.Chunks = slices.Clone(s.Chunks)
	c.Sections = slices.Clone(s.Sections)
	c.Answers = slices.Clone(s.Answers)
	c.Errors = slices.Clone(s.Errors)
	return &c
}

// Snapshot is a JSON-safe view of a session without the document body.
type Snapshot struct {
	ID               string                    `json:"id"`
	Filename         string                    `json:"filename"`
	Title            string                    `json:"title"`
	Format           string                    `json:"format"`
	PageCount        int                       `json:"page_count"`
	ContentHash      string                    `json:"content_hash,omitempty"`
	TextChars        int                       `json:"text_chars"`
	TotalChunks      int                       `json:"total_chunks"`
	Sections         []document.SectionSummary `json:"sections"`
	ExecutiveSummary string                    `json:"executive_summary,omitempty"`
	KeyMetrics       string                    `json:"key_metrics,omitempty"`
	Answers          []Answer                  `json:"answers"`
	Status           Status                    `json:"status"`
	Errors           []string                  `json:"errors"`
	CreatedAt        time.Time                 `json:"created_at"`
	UpdatedAt        time.Time                 `json:"updated_at"`
}

// Snapshot returns the session state for API responses.
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		ID:               s.ID,
		Filename:         s.Filename,
		Title:            s.Title,
		Format:           s.Format,
		PageCount:        s.PageCount,
		ContentHash:      s.ContentHash,
		TextChars:        len([]rune(s.Text)),
		TotalChunks:      len(s.Chunks),
		Sections:         slices.Clone(s.Sections),
		ExecutiveSummary: s.ExecutiveSummary,
		KeyMetrics:       s.KeyMetrics,
		Answers:          slices.Clone(s.Answers),
		Status:           s.Status,
		Errors:           slices.Clone(s.Errors),
		CreatedAt:        s.CreatedAt,
		UpdatedAt:        s.UpdatedAt,
	}
	if snap.Sections == nil {
		snap.Sections = []document.SectionSummary{}
	}
	if snap.Answers == nil {
		snap.Answers = []Answer{}
	}
	if snap.Errors == nil {
		snap.Errors = []string{}
	}
	return snap
}
