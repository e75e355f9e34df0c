package logger_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/lead-rotation/pkg/logger"
)

var _ = Describe("Context", func() {
	It("should fall back to the process logger for a bare context", func() {
		Expect(logger.From(context.Background())).To(BeIdenticalTo(logger.LoggerWrapper()))
	})

	It("should tolerate a nil context", func() {
		Expect(logger.From(nil)).ToNot(BeNil())
	})

	It("should hand back the request-scoped logger stored by With", func() {
		ctx := logger.With(context.Background(), "traceID", "abc-123")

		Expect(logger.From(ctx)).ToNot(BeIdenticalTo(logger.LoggerWrapper()))
	})
})
