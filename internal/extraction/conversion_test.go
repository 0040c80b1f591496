package extraction

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func encodePNG() []byte {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.White)
	var buf bytes.Buffer
	Expect(png.Encode(&buf, img)).To(Succeed())
	return buf.Bytes()
}

func encodeJPEG() []byte {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	var buf bytes.Buffer
	Expect(jpeg.Encode(&buf, img, nil)).To(Succeed())
	return buf.Bytes()
}

var _ = Describe("isHEICFormat", func() {
	It("detects the heic ftyp brand", func() {
		data := append([]byte{0, 0, 0, 24}, []byte("ftypheic")...)
		Expect(isHEICFormat(data)).To(BeTrue())
	})

	It("detects the mif1 ftyp brand", func() {
		data := append([]byte{0, 0, 0, 24}, []byte("ftypmif1")...)
		Expect(isHEICFormat(data)).To(BeTrue())
	})

	It("rejects PNG data", func() {
		Expect(isHEICFormat(encodePNG())).To(BeFalse())
	})

	It("rejects short data", func() {
		Expect(isHEICFormat([]byte("ftyp"))).To(BeFalse())
	})
})

var _ = Describe("normalizeDocument", func() {
	When("the document is a PNG", func() {
		It("passes through untouched", func() {
			original := encodePNG()
			data, filename, contentType, err := normalizeDocument(original, "receipt.png", "image/png")
			Expect(err).NotTo(HaveOccurred())
			Expect(data).To(Equal(original))
			Expect(filename).To(Equal("receipt.png"))
			Expect(contentType).To(Equal("image/png"))
		})
	})

	When("the document is a PDF", func() {
		It("passes through untouched", func() {
			original := []byte("%PDF-1.4 fake")
			data, filename, contentType, err := normalizeDocument(original, "invoice.pdf", "application/pdf")
			Expect(err).NotTo(HaveOccurred())
			Expect(data).To(Equal(original))
			Expect(filename).To(Equal("invoice.pdf"))
			Expect(contentType).To(Equal("application/pdf"))
		})
	})

	When("the document claims to be HEIC but isn't", func() {
		It("returns the error", func() {
			_, _, _, err := normalizeDocument([]byte("definitely not heic"), "photo.heic", "image/heic")
			Expect(err).To(HaveOccurred())
		})
	})
})

var _ = Describe("RenderPreview", func() {
	When("the document is a PNG", func() {
		It("returns the bytes as-is", func() {
			original := encodePNG()
			preview, err := RenderPreview(original, "image/png")
			Expect(err).NotTo(HaveOccurred())
			Expect(preview).To(Equal(original))
		})
	})

	When("the document is a JPEG", func() {
		It("re-encodes it as PNG", func() {
			preview, err := RenderPreview(encodeJPEG(), "image/jpeg")
			Expect(err).NotTo(HaveOccurred())
			_, decodeErr := png.Decode(bytes.NewReader(preview))
			Expect(decodeErr).NotTo(HaveOccurred())
		})
	})

	When("the document is not an image", func() {
		It("returns the error", func() {
			_, err := RenderPreview([]byte("plain text"), "text/plain")
			Expect(err).To(HaveOccurred())
		})
	})
})
