package extraction

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"
)

var _ = Describe("Client", func() {
	var (
		backend *ghttp.Server
		client  *Client
		result  *Result
		err     error

		fileData    []byte
		filename    string
		contentType string
		model       string
	)

	BeforeEach(func() {
		backend = ghttp.NewServer()
		var newErr error
		client, newErr = NewClient(backend.URL(), 5*time.Second)
		Expect(newErr).NotTo(HaveOccurred())

		fileData = []byte("fake receipt bytes")
		filename = "receipt.png"
		contentType = "image/png"
		model = ModelCommandR
	})

	AfterEach(func() {
		backend.Close()
	})

	JustBeforeEach(func() {
		result, err = client.ProcessFile(context.Background(), filename, fileData, contentType, model)
	})

	When("the backend responds with a full payload", func() {
		BeforeEach(func() {
			backend.AppendHandlers(func(w http.ResponseWriter, r *http.Request) {
				defer GinkgoRecover()

				Expect(r.Method).To(Equal("POST"))
				Expect(r.URL.Path).To(Equal("/process_file"))

				Expect(r.ParseMultipartForm(10 << 20)).To(Succeed())

				Expect(r.FormValue("model")).To(Equal(ModelCommandR))

				var info map[string]string
				Expect(json.Unmarshal([]byte(r.FormValue("info")), &info)).To(Succeed())
				Expect(info["model"]).To(Equal(ModelCommandR))
				Expect(info["provider"]).To(Equal(ProviderCohere))

				f, header, formErr := r.FormFile("file")
				Expect(formErr).NotTo(HaveOccurred())
				defer f.Close()
				Expect(header.Filename).To(Equal("receipt.png"))
				Expect(header.Header.Get("Content-Type")).To(Equal("image/png"))
				uploaded, readErr := io.ReadAll(f)
				Expect(readErr).NotTo(HaveOccurred())
				Expect(uploaded).To(Equal([]byte("fake receipt bytes")))

				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(`{"merchant": "Acme Co", "category": "Meals", "currency": "EUR", "amount": 12.5, "date": "05/03/2024", "ocr_time": 0.8, "llm_time": 1.9, "total_time": 2.7}`))
			})
		})

		It("should not return an error", func() {
			Expect(err).NotTo(HaveOccurred())
		})

		It("should return the parsed result", func() {
			Expect(result.Merchant).To(Equal("Acme Co"))
			Expect(result.Currency).To(Equal("EUR"))
			Expect(result.Amount).To(Equal("12.5"))
			Expect(result.Date).NotTo(BeNil())
			Expect(result.Date.Day()).To(Equal(5))
			Expect(result.Date.Month()).To(Equal(time.March))
		})

		It("should carry the timings", func() {
			Expect(result.Timings).NotTo(BeNil())
			Expect(result.Timings.TotalSeconds).To(Equal(2.7))
		})
	})

	When("the mixtral model is selected", func() {
		BeforeEach(func() {
			model = ModelMixtral
			backend.AppendHandlers(func(w http.ResponseWriter, r *http.Request) {
				defer GinkgoRecover()
				Expect(r.ParseMultipartForm(10 << 20)).To(Succeed())

				var info map[string]string
				Expect(json.Unmarshal([]byte(r.FormValue("info")), &info)).To(Succeed())
				Expect(info["provider"]).To(Equal(ProviderFireworks))

				w.Write([]byte(`{}`))
			})
		})

		It("derives the Fireworks provider", func() {
			Expect(err).NotTo(HaveOccurred())
		})
	})

	When("the backend responds with a server error", func() {
		BeforeEach(func() {
			backend.AppendHandlers(ghttp.RespondWith(http.StatusInternalServerError, "boom"))
		})

		It("returns the error", func() {
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("status 500"))
		})
	})

	When("the backend responds with a non-JSON body", func() {
		BeforeEach(func() {
			backend.AppendHandlers(ghttp.RespondWith(http.StatusOK, "<html>oops</html>"))
		})

		It("returns the error", func() {
			Expect(err).To(HaveOccurred())
		})
	})

	When("the backend is unreachable", func() {
		BeforeEach(func() {
			backend.Close()
		})

		It("returns the error", func() {
			Expect(err).To(HaveOccurred())
		})
	})
})

var _ = Describe("NewClient", func() {
	When("the base URL is empty", func() {
		It("returns an error", func() {
			_, err := NewClient("", time.Second)
			Expect(err).To(HaveOccurred())
		})
	})

	When("the base URL has a trailing slash", func() {
		It("is accepted", func() {
			client, err := NewClient("http://localhost:9999/", time.Second)
			Expect(err).NotTo(HaveOccurred())
			Expect(client).NotTo(BeNil())
		})
	})
})
