package extraction

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	"image/png"
	"path/filepath"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/gen2brain/heic"
)

// normalizeDocument converts uploads the backend can't OCR into a format it
// can. PNG, JPEG and PDF pass through untouched; HEIC/HEIF (common on
// iPhones) is re-encoded as PNG and the filename/content type follow.
func normalizeDocument(data []byte, filename string, contentType string) ([]byte, string, string, error) {
	mimeType := strings.ToLower(strings.TrimSpace(contentType))

	if !isHEICFormat(data) && !isHEICMimeType(mimeType) {
		return data, filename, contentType, nil
	}

	img, err := heic.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", "", fmt.Errorf("decoding HEIC/HEIF image: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, "", "", fmt.Errorf("encoding PNG: %w", err)
	}

	base := strings.TrimSuffix(filename, filepath.Ext(filename))
	return buf.Bytes(), base + ".png", "image/png", nil
}

// RenderPreview produces a PNG rendering of a document for display: the
// first page for PDFs, a re-encode for non-PNG images, the raw bytes for
// PNG.
func RenderPreview(data []byte, contentType string) ([]byte, error) {
	mimeType := strings.ToLower(strings.TrimSpace(contentType))

	if mimeType == "application/pdf" {
		return pdfToImage(data)
	}
	if mimeType == "image/png" && !isHEICFormat(data) {
		return data, nil
	}
	return imageToPNG(data, mimeType)
}

// pdfToImage renders the first page of a PDF as a PNG image. Most receipts
// are single page.
func pdfToImage(pdfData []byte) ([]byte, error) {
	doc, err := fitz.NewFromMemory(pdfData)
	if err != nil {
		return nil, fmt.Errorf("opening PDF: %w", err)
	}
	defer doc.Close()

	img, err := doc.Image(0)
	if err != nil {
		return nil, fmt.Errorf("rendering PDF page: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding PNG: %w", err)
	}

	return buf.Bytes(), nil
}

// imageToPNG converts any supported image format to PNG
func imageToPNG(imageData []byte, mimeType string) ([]byte, error) {
	var img image.Image
	var err error

	if isHEICFormat(imageData) || isHEICMimeType(mimeType) {
		img, err = heic.Decode(bytes.NewReader(imageData))
		if err != nil {
			return nil, fmt.Errorf("decoding HEIC/HEIF image: %w", err)
		}
	} else {
		img, _, err = image.Decode(bytes.NewReader(imageData))
		if err != nil {
			return nil, fmt.Errorf("decoding image: %w", err)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding PNG: %w", err)
	}

	return buf.Bytes(), nil
}

// isHEICFormat checks the ftyp box brands HEIC/HEIF files start with
func isHEICFormat(data []byte) bool {
	if len(data) < 12 {
		return false
	}
	if string(data[4:8]) != "ftyp" {
		return false
	}
	switch string(data[8:12]) {
	case "heic", "heif", "mif1", "msf1":
		return true
	}
	return false
}

func isHEICMimeType(mimeType string) bool {
	return strings.Contains(mimeType, "heic") || strings.Contains(mimeType, "heif")
}
