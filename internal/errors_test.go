package internal_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/workforce-attendance/internal"
)

var _ = Describe("AppError", func() {
	It("is found through wrapping", func() {
		wrapped := fmt.Errorf("loading: %w", internal.ErrTimesheetNotFound)

		appErr, ok := internal.IsAppError(wrapped)
		Expect(ok).To(BeTrue())
		Expect(appErr.StatusCode).To(Equal(http.StatusNotFound))

		_, ok = internal.IsAppError(fmt.Errorf("plain"))
		Expect(ok).To(BeFalse())
	})

	It("renders without its cause", func() {
		appErr := internal.NewInternalError("Internal server error", fmt.Errorf("dial tcp: refused"))
		Expect(appErr.Error()).To(ContainSubstring("refused"))

		status, body := appErr.ToHTTPResponse()
		Expect(status).To(Equal(http.StatusInternalServerError))

		raw, err := json.Marshal(body)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(raw)).NotTo(ContainSubstring("refused"))
		Expect(string(raw)).To(ContainSubstring(`"code":"INTERNAL_ERROR"`))
	})

	It("uses the field message for field errors", func() {
		appErr := internal.NewValidationFieldError("date", "date must be formatted as YYYY-MM-DD", internal.ErrCodeInvalidDate)
		Expect(appErr.Error()).To(Equal("date must be formatted as YYYY-MM-DD"))
		Expect(appErr.Code).To(Equal(internal.ErrCodeValidationFailed))
	})

	DescribeTable("sentinel status codes",
		func(err *internal.AppError, status int) {
			Expect(err.StatusCode).To(Equal(status))
		},
		Entry("duplicate timesheet", internal.ErrDuplicateTimesheet, http.StatusConflict),
		Entry("invalid transition", internal.ErrInvalidTransition, http.StatusConflict),
		Entry("forbidden", internal.ErrForbidden, http.StatusForbidden),
		Entry("range too large", internal.ErrRangeTooLarge, http.StatusBadRequest),
		Entry("expired token", internal.ErrTokenExpired, http.StatusUnauthorized),
		Entry("inactive user", internal.ErrUserInactive, http.StatusForbidden),
	)
})

var _ = Describe("context helpers", func() {
	It("defaults the timeout", func() {
		ctx, cancel := internal.WithTimeout(context.Background(), 0)
		defer cancel()
		deadline, ok := ctx.Deadline()
		Expect(ok).To(BeTrue())
		Expect(time.Until(deadline)).To(BeNumerically("~", 5*time.Second, time.Second))
	})

	It("keeps an explicit timeout", func() {
		ctx, cancel := internal.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		deadline, ok := ctx.Deadline()
		Expect(ok).To(BeTrue())
		Expect(time.Until(deadline)).To(BeNumerically("<=", 2*time.Second))
	})
})
