package expense

import "errors"

// ErrNoDocument is returned when a session has no stored document.
var ErrNoDocument = errors.New("no document stored")

// DocumentStore defines the interface for uploaded-document storage. A
// session owns at most one document at a time.
type DocumentStore interface {
	// Save stores the document for a session, replacing any previous one
	Save(sessionID string, doc *Document) error

	// Get retrieves the stored document for a session
	Get(sessionID string) (*Document, error)

	// Delete removes the stored document for a session; removing a
	// missing document is a no-op
	Delete(sessionID string) error

	// Close closes the store
	Close() error
}
