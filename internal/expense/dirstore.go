package expense

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// DirStore implements the DocumentStore interface on the local filesystem:
// one data file per session plus a JSON sidecar for metadata.
type DirStore struct {
	basePath string
}

// NewDirStore creates a new DirStore instance
func NewDirStore(basePath string) (*DirStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("creating storage directory: %w", err)
	}

	return &DirStore{
		basePath: basePath,
	}, nil
}

func (d *DirStore) dataPath(sessionID string) string {
	return filepath.Join(d.basePath, sessionID+".bin")
}

func (d *DirStore) metaPath(sessionID string) string {
	return filepath.Join(d.basePath, sessionID+".json")
}

// Save stores the document for a session, replacing any previous one
func (d *DirStore) Save(sessionID string, doc *Document) error {
	meta := *doc
	meta.Data = nil
	metaData, err := json.Marshal(&meta)
	if err != nil {
		return fmt.Errorf("marshaling metadata: %w", err)
	}

	if err := os.WriteFile(d.dataPath(sessionID), doc.Data, 0644); err != nil {
		return fmt.Errorf("writing document: %w", err)
	}
	if err := os.WriteFile(d.metaPath(sessionID), metaData, 0644); err != nil {
		return fmt.Errorf("writing metadata: %w", err)
	}
	return nil
}

// Get retrieves the stored document for a session
func (d *DirStore) Get(sessionID string) (*Document, error) {
	metaData, err := os.ReadFile(d.metaPath(sessionID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNoDocument, sessionID)
		}
		return nil, fmt.Errorf("reading metadata: %w", err)
	}

	var doc Document
	if err := json.Unmarshal(metaData, &doc); err != nil {
		return nil, fmt.Errorf("unmarshaling metadata: %w", err)
	}

	doc.Data, err = os.ReadFile(d.dataPath(sessionID))
	if err != nil {
		return nil, fmt.Errorf("reading document: %w", err)
	}
	return &doc, nil
}

// Delete removes the stored document for a session
func (d *DirStore) Delete(sessionID string) error {
	for _, path := range []string{d.dataPath(sessionID), d.metaPath(sessionID)} {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("deleting %s: %w", path, err)
		}
	}
	return nil
}

// Close closes the store (no-op for the filesystem)
func (d *DirStore) Close() error {
	return nil
}
