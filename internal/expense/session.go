package expense

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/zombor/expense-scanner/internal/extraction"
)

// Status is the lifecycle state of a session.
type Status string

const (
	StatusEmpty      Status = "empty"
	StatusSubmitting Status = "submitting"
	StatusPopulated  Status = "populated"
	StatusFailed     Status = "failed"
)

var (
	// ErrBusy is returned for operations not permitted while a
	// submission is in flight.
	ErrBusy = errors.New("submission in flight")

	// ErrStale indicates a submission was superseded by a reset or a
	// newer submission before its response arrived.
	ErrStale = errors.New("submission superseded")

	ErrUnknownModel    = errors.New("unknown model")
	ErrUnknownCategory = errors.New("unknown category")
	ErrUnknownCurrency = errors.New("unknown currency")
	ErrBadAmount       = errors.New("invalid amount")
	ErrBadDate         = errors.New("invalid date")
)

// Session owns the lifecycle of one document-upload-to-populated-form
// interaction. Each submission captures the generation counter at send
// time; a response is applied only if that value still matches, so results
// arriving after a reset or a newer submission are discarded silently.
type Session struct {
	mu         sync.Mutex
	id         string
	status     Status
	model      string
	doc        *Document
	fields     Fields
	timings    *extraction.Timings
	generation uint64
	createdAt  time.Time
	updatedAt  time.Time
}

// NewSession creates an empty session with every field at its default.
func NewSession(id string, now time.Time) *Session {
	return &Session{
		id:        id,
		status:    StatusEmpty,
		model:     extraction.DefaultModel,
		fields:    defaultFields(),
		createdAt: now,
		updatedAt: now,
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// SelectModel changes the model used for subsequent submissions.
func (s *Session) SelectModel(model string, now time.Time) error {
	if !extraction.ValidModel(model) {
		return fmt.Errorf("%w: %q", ErrUnknownModel, model)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status == StatusSubmitting {
		return ErrBusy
	}
	s.model = model
	s.updatedAt = now
	return nil
}

// BeginSubmission takes ownership of a newly selected document and moves
// the session to Submitting. It returns the generation token the caller
// must present when applying the outcome, and the model to submit with.
// A submission started while another is in flight supersedes it: only the
// latest generation's response will ever be applied.
func (s *Session) BeginSubmission(doc *Document, now time.Time) (uint64, string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.generation++
	s.doc = doc
	s.status = StatusSubmitting
	s.updatedAt = now
	return s.generation, s.model
}

// ApplyResult populates the fields from an extraction result. It reports
// whether the result was applied; a stale generation leaves the session
// untouched.
func (s *Session) ApplyResult(gen uint64, res *extraction.Result, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		return false
	}

	s.fields = Fields{
		Merchant: res.Merchant,
		Category: res.Category,
		Currency: res.Currency,
		Amount:   res.Amount,
		Date:     res.Date,
	}
	if res.Timings != nil {
		t := *res.Timings
		s.timings = &t
	} else {
		s.timings = nil
	}
	s.status = StatusPopulated
	s.updatedAt = now
	return true
}

// FailSubmission moves the session to Failed. Field values from before the
// attempt are preserved; only status and timings change. It reports whether
// the failure was applied.
func (s *Session) FailSubmission(gen uint64, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		return false
	}

	s.timings = nil
	s.status = StatusFailed
	s.updatedAt = now
	return true
}

// FieldEdits carries a partial field update; nil members leave the
// corresponding field unchanged. Date uses the backend's day/month/year
// format; an empty string clears the field.
type FieldEdits struct {
	Merchant *string `json:"merchant"`
	Category *string `json:"category"`
	Currency *string `json:"currency"`
	Amount   *string `json:"amount"`
	Date     *string `json:"date"`
}

// EditFields applies a partial update. Edits are permitted in any
// non-Submitting state and never change the status: extraction is a
// convenience, not an authority, so the user always has the last word.
// The whole edit is validated before any field is touched.
func (s *Session) EditFields(edits FieldEdits, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status == StatusSubmitting {
		return ErrBusy
	}

	var date *time.Time
	if edits.Date != nil && *edits.Date != "" {
		d, err := time.Parse(extraction.DateLayout, *edits.Date)
		if err != nil {
			return fmt.Errorf("%w: %q", ErrBadDate, *edits.Date)
		}
		date = &d
	}
	if edits.Category != nil && *edits.Category != "" && !ValidCategory(*edits.Category) {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, *edits.Category)
	}
	if edits.Currency != nil && !ValidCurrency(*edits.Currency) {
		return fmt.Errorf("%w: %q", ErrUnknownCurrency, *edits.Currency)
	}
	if edits.Amount != nil && !validAmount(*edits.Amount) {
		return fmt.Errorf("%w: %q", ErrBadAmount, *edits.Amount)
	}

	if edits.Merchant != nil {
		s.fields.Merchant = *edits.Merchant
	}
	if edits.Category != nil {
		s.fields.Category = *edits.Category
	}
	if edits.Currency != nil {
		s.fields.Currency = *edits.Currency
	}
	if edits.Amount != nil {
		s.fields.Amount = *edits.Amount
	}
	if edits.Date != nil {
		s.fields.Date = date
	}
	s.updatedAt = now
	return nil
}

// Reset unconditionally returns every field to its default, reverts the
// model choice, and moves the session back to Empty. The generation bump
// makes any in-flight submission stale, so its result is discarded on
// arrival. Reset is idempotent.
func (s *Session) Reset(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.generation++
	s.doc = nil
	s.fields = defaultFields()
	s.timings = nil
	s.model = extraction.DefaultModel
	s.status = StatusEmpty
	s.updatedAt = now
}

// FileInfo describes the selected document without carrying its bytes.
type FileInfo struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

// Snapshot is a read-only copy of the session state for rendering.
type Snapshot struct {
	ID        string              `json:"id"`
	Status    Status              `json:"status"`
	Model     string              `json:"model"`
	Fields    Fields              `json:"fields"`
	Timings   *extraction.Timings `json:"timings,omitempty"`
	File      *FileInfo           `json:"file,omitempty"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// Snapshot returns a copy of the current session state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		ID:        s.id,
		Status:    s.status,
		Model:     s.model,
		Fields:    s.fields,
		CreatedAt: s.createdAt,
		UpdatedAt: s.updatedAt,
	}
	if s.timings != nil {
		t := *s.timings
		snap.Timings = &t
	}
	if s.doc != nil {
		snap.File = &FileInfo{
			Filename:    s.doc.Filename,
			ContentType: s.doc.ContentType,
			Size:        s.doc.Size,
		}
	}
	return snap
}
