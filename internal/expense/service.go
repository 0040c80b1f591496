package expense

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/zombor/expense-scanner/internal/extraction"
)

// IDGenerator generates unique IDs for sessions
type IDGenerator interface {
	Generate() string
}

// TimeSource provides the current time
type TimeSource interface {
	Now() time.Time
}

// uuidGenerator generates IDs using random UUIDs
type uuidGenerator struct{}

func (g *uuidGenerator) Generate() string {
	return uuid.NewString()
}

// defaultTimeSource provides the current time
type defaultTimeSource struct{}

func (t *defaultTimeSource) Now() time.Time {
	return time.Now()
}

// Service runs the extraction workflow over registered sessions
type Service struct {
	sessions    *Registry
	extractor   extraction.Extractor
	store       DocumentStore
	idGenerator IDGenerator
	timeSource  TimeSource
}

// NewService creates a new Service with default ID generator and time source
func NewService(extractor extraction.Extractor, store DocumentStore) *Service {
	return &Service{
		sessions:    NewRegistry(),
		extractor:   extractor,
		store:       store,
		idGenerator: &uuidGenerator{},
		timeSource:  &defaultTimeSource{},
	}
}

// NewServiceWithDeps creates a new Service with custom dependencies for testing
func NewServiceWithDeps(extractor extraction.Extractor, store DocumentStore, idGen IDGenerator, timeSrc TimeSource) *Service {
	return &Service{
		sessions:    NewRegistry(),
		extractor:   extractor,
		store:       store,
		idGenerator: idGen,
		timeSource:  timeSrc,
	}
}

// CreateSession creates and registers an empty session.
func (s *Service) CreateSession() *Session {
	sess := NewSession(s.idGenerator.Generate(), s.timeSource.Now())
	s.sessions.Add(sess)
	return sess
}

// GetSession retrieves a registered session by ID.
func (s *Service) GetSession(id string) (*Session, error) {
	return s.sessions.Get(id)
}

// SubmitDocument runs one submission end to end: store the document, send
// it to the extraction backend, and apply the outcome under the session's
// generation guard. The call blocks until the backend responds or the
// transport fails, so the returned snapshot is always the terminal state
// this submission produced. ErrStale means a reset or newer submission won
// the race; the result is discarded and the document this call stored is
// removed unless the winner has claimed it.
func (s *Service) SubmitDocument(ctx context.Context, sess *Session, doc *Document) (Snapshot, error) {
	gen, model := sess.BeginSubmission(doc, s.timeSource.Now())

	if err := s.store.Save(sess.ID(), doc); err != nil {
		slog.Error("Failed to store document",
			"session", sess.ID(),
			"filename", doc.Filename,
			"error", err,
		)
		if !sess.FailSubmission(gen, s.timeSource.Now()) {
			s.discardStaleDocument(sess)
			return sess.Snapshot(), ErrStale
		}
		return sess.Snapshot(), fmt.Errorf("saving document: %w", err)
	}

	res, err := s.extractor.ProcessFile(ctx, doc.Filename, doc.Data, doc.ContentType, model)
	if err != nil {
		slog.Error("Failed to process document",
			"session", sess.ID(),
			"filename", doc.Filename,
			"content_type", doc.ContentType,
			"file_size", len(doc.Data),
			"error", err,
		)
		if !sess.FailSubmission(gen, s.timeSource.Now()) {
			s.discardStaleDocument(sess)
			return sess.Snapshot(), ErrStale
		}
		return sess.Snapshot(), fmt.Errorf("processing document: %w", err)
	}

	if !sess.ApplyResult(gen, res, s.timeSource.Now()) {
		// Not an error from the session's point of view: the result no
		// longer corresponds to the latest submission
		slog.Debug("Discarding stale extraction result",
			"session", sess.ID(),
			"generation", gen,
		)
		s.discardStaleDocument(sess)
		return sess.Snapshot(), ErrStale
	}

	return sess.Snapshot(), nil
}

// discardStaleDocument removes the document a superseded submission
// saved. When the session still claims a file, a newer submission owns
// the store key and the document must stay.
func (s *Service) discardStaleDocument(sess *Session) {
	if sess.Snapshot().File != nil {
		return
	}
	if err := s.store.Delete(sess.ID()); err != nil {
		slog.Warn("Failed to delete stale document", "session", sess.ID(), "error", err)
	}
}

// EditFields applies a partial field update to a session.
func (s *Service) EditFields(sess *Session, edits FieldEdits) error {
	return sess.EditFields(edits, s.timeSource.Now())
}

// SelectModel changes a session's model choice.
func (s *Service) SelectModel(sess *Session, model string) error {
	return sess.SelectModel(model, s.timeSource.Now())
}

// ResetSession returns a session to its defaults and drops its stored
// document.
func (s *Service) ResetSession(sess *Session) {
	sess.Reset(s.timeSource.Now())
	if err := s.store.Delete(sess.ID()); err != nil {
		slog.Warn("Failed to delete stored document", "session", sess.ID(), "error", err)
	}
}

// DeleteSession unregisters a session and drops its stored document.
func (s *Service) DeleteSession(id string) error {
	if _, err := s.sessions.Get(id); err != nil {
		return err
	}
	if err := s.store.Delete(id); err != nil {
		slog.Warn("Failed to delete stored document", "session", id, "error", err)
	}
	s.sessions.Delete(id)
	return nil
}

// Document retrieves the stored document for a session.
func (s *Service) Document(sess *Session) (*Document, error) {
	doc, err := s.store.Get(sess.ID())
	if err != nil {
		return nil, fmt.Errorf("getting document: %w", err)
	}
	return doc, nil
}
