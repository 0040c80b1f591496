package expense

import (
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("BoltStore", func() {
	var (
		store *BoltStore
		doc   *Document
	)

	BeforeEach(func() {
		var err error
		store, err = NewBoltStore(filepath.Join(GinkgoT().TempDir(), "test.db"))
		Expect(err).NotTo(HaveOccurred())

		doc = &Document{
			Filename:    "receipt.pdf",
			ContentType: "application/pdf",
			Data:        []byte("%PDF-1.4 fake"),
			Size:        13,
			UploadedAt:  time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC),
		}
	})

	AfterEach(func() {
		if store != nil {
			store.Close()
		}
	})

	Describe("Save", func() {
		It("stores the document under the session ID", func() {
			Expect(store.Save("session-1", doc)).To(Succeed())
			saved, err := store.Get("session-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(saved.Filename).To(Equal("receipt.pdf"))
			Expect(saved.Data).To(Equal([]byte("%PDF-1.4 fake")))
		})

		It("replaces a previously stored document", func() {
			Expect(store.Save("session-1", doc)).To(Succeed())
			replacement := &Document{Filename: "other.png", ContentType: "image/png", Data: []byte("png")}
			Expect(store.Save("session-1", replacement)).To(Succeed())

			saved, err := store.Get("session-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(saved.Filename).To(Equal("other.png"))
		})
	})

	Describe("Get", func() {
		When("no document is stored", func() {
			It("returns ErrNoDocument", func() {
				_, err := store.Get("nope")
				Expect(err).To(MatchError(ErrNoDocument))
			})
		})
	})

	Describe("Delete", func() {
		It("removes the stored document", func() {
			Expect(store.Save("session-1", doc)).To(Succeed())
			Expect(store.Delete("session-1")).To(Succeed())
			_, err := store.Get("session-1")
			Expect(err).To(MatchError(ErrNoDocument))
		})

		It("is a no-op for a missing document", func() {
			Expect(store.Delete("nope")).To(Succeed())
		})
	})
})

var _ = Describe("DirStore", func() {
	var (
		store *DirStore
		doc   *Document
	)

	BeforeEach(func() {
		var err error
		store, err = NewDirStore(filepath.Join(GinkgoT().TempDir(), "documents"))
		Expect(err).NotTo(HaveOccurred())

		doc = &Document{
			Filename:    "receipt.png",
			ContentType: "image/png",
			Data:        []byte("fake png"),
			Size:        8,
			UploadedAt:  time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC),
		}
	})

	Describe("Save", func() {
		It("round-trips the document and its metadata", func() {
			Expect(store.Save("session-1", doc)).To(Succeed())
			saved, err := store.Get("session-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(saved.Filename).To(Equal("receipt.png"))
			Expect(saved.ContentType).To(Equal("image/png"))
			Expect(saved.Data).To(Equal([]byte("fake png")))
		})
	})

	Describe("Get", func() {
		When("no document is stored", func() {
			It("returns ErrNoDocument", func() {
				_, err := store.Get("nope")
				Expect(err).To(MatchError(ErrNoDocument))
			})
		})
	})

	Describe("Delete", func() {
		It("removes the stored document", func() {
			Expect(store.Save("session-1", doc)).To(Succeed())
			Expect(store.Delete("session-1")).To(Succeed())
			_, err := store.Get("session-1")
			Expect(err).To(MatchError(ErrNoDocument))
		})

		It("is a no-op for a missing document", func() {
			Expect(store.Delete("nope")).To(Succeed())
		})
	})
})
