package openapi_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/workforce-attendance/internal/transport/openapi"
)

var _ = Describe("Validator", func() {
	var (
		handler  http.Handler
		reached  bool
		received string
	)

	BeforeEach(func() {
		doc, err := openapi.Load(context.Background(), "../../../api/openapi.yml")
		Expect(err).NotTo(HaveOccurred())

		v, err := openapi.NewValidator(doc, "/api/v1", slog.New(slog.NewTextHandler(io.Discard, nil)))
		Expect(err).NotTo(HaveOccurred())

		reached, received = false, ""
		handler = v.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reached = true
			if r.Body != nil {
				b, _ := io.ReadAll(r.Body)
				received = string(b)
			}
			w.WriteHeader(http.StatusOK)
		}))
	})

	do := func(method, target, body string) *httptest.ResponseRecorder {
		var rdr io.Reader
		if body != "" {
			rdr = strings.NewReader(body)
		}
		req := httptest.NewRequest(method, target, rdr)
		if body != "" {
			req.Header.Set("Content-Type", "application/json")
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	It("passes a conforming request with its body intact", func() {
		body := `{"date":"2024-03-04","start_at":"2024-03-04T09:00:00Z","end_at":"2024-03-04T17:00:00Z"}`
		rec := do(http.MethodPost, "/api/v1/timesheets", body)

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(reached).To(BeTrue())
		Expect(received).To(Equal(body))
	})

	It("rejects a body missing a required field", func() {
		rec := do(http.MethodPost, "/api/v1/timesheets", `{"start_at":"2024-03-04T09:00:00Z"}`)

		Expect(rec.Code).To(Equal(http.StatusBadRequest))
		Expect(reached).To(BeFalse())
		Expect(rec.Body.String()).To(ContainSubstring("VALIDATION_FAILED"))
	})

	It("rejects a non-numeric path id", func() {
		rec := do(http.MethodGet, "/api/v1/timesheets/abc", "")

		Expect(rec.Code).To(Equal(http.StatusBadRequest))
		Expect(rec.Body.String()).To(ContainSubstring(`parameter \"id\"`))
	})

	It("rejects a report request without its range", func() {
		rec := do(http.MethodGet, "/api/v1/users/3/attendance?from=2024-03-01", "")
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
	})

	It("lets review calls through without a body", func() {
		rec := do(http.MethodPost, "/api/v1/timesheets/9/approve", "")
		Expect(rec.Code).To(Equal(http.StatusOK))
	})

	It("leaves undocumented paths to the router", func() {
		Expect(do(http.MethodGet, "/api/v1/unknown", "").Code).To(Equal(http.StatusOK))
		Expect(do(http.MethodGet, "/swagger/index.html", "").Code).To(Equal(http.StatusOK))
		Expect(reached).To(BeTrue())
	})
})

var _ = Describe("LoadData", func() {
	It("refuses an invalid document", func() {
		_, err := openapi.LoadData(context.Background(), []byte("openapi: 3.0.3\ninfo: {}\npaths: {}\n"))
		Expect(err).To(HaveOccurred())
	})
})
