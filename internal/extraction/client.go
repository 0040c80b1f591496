package extraction

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"
)

// Client implements the Extractor interface against a remote extraction
// backend speaking the multipart /process_file contract.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a new extraction Client. A zero timeout disables the
// client-side deadline and trusts the backend to eventually respond.
func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("extraction backend base URL is required")
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: timeout, // OCR + LLM inference can be slow
		},
	}, nil
}

// ProcessFile submits one document for extraction. Exactly one file is
// attached per request; any non-2xx status is a total failure.
func (c *Client) ProcessFile(ctx context.Context, filename string, data []byte, contentType string, model string) (*Result, error) {
	provider := ProviderFor(model)

	// Normalize formats the backend doesn't accept (HEIC from phones)
	data, filename, contentType, err := normalizeDocument(data, filename, contentType)
	if err != nil {
		return nil, err
	}

	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	header.Set("Content-Type", contentType)
	part, err := w.CreatePart(header)
	if err != nil {
		return nil, fmt.Errorf("creating file part: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("writing file part: %w", err)
	}

	if err := w.WriteField("model", model); err != nil {
		return nil, fmt.Errorf("writing model field: %w", err)
	}

	info, err := json.Marshal(map[string]string{
		"model":    model,
		"provider": provider,
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling info: %w", err)
	}
	if err := w.WriteField("info", string(info)); err != nil {
		return nil, fmt.Errorf("writing info field: %w", err)
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("closing multipart body: %w", err)
	}

	url := fmt.Sprintf("%s/process_file", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, "POST", url, &body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling extraction backend: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("extraction backend error (status %d): %s", resp.StatusCode, string(msg))
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	result, err := parseResult(respBody)
	if err != nil {
		return nil, fmt.Errorf("parsing extraction response: %w", err)
	}

	return result, nil
}

// Close closes the client (no-op for HTTP client)
func (c *Client) Close() error {
	return nil
}
