package extraction

import (
	"context"
	"time"
)

// Result contains the structured expense guess extracted from a document.
// Every member already carries its documented default when the backend
// omitted the corresponding field; Date and Timings are nil when absent.
type Result struct {
	Merchant string
	Category string
	Currency string
	Amount   string
	Date     *time.Time
	Timings  *Timings
}

// Timings reports how long the backend spent on each processing stage.
type Timings struct {
	OCRSeconds   float64 `json:"ocr_seconds"`
	LLMSeconds   float64 `json:"llm_seconds"`
	TotalSeconds float64 `json:"total_seconds"`
}

// Extractor defines the interface for document extraction operations
type Extractor interface {
	// ProcessFile submits one document for extraction and returns the
	// structured expense guess
	ProcessFile(ctx context.Context, filename string, data []byte, contentType string, model string) (*Result, error)
	// Close closes the extractor and releases resources
	Close() error
}
