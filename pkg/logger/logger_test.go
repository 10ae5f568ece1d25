package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/pkg/errors"

	"github.com/proxyangel/load-balancer/pkg/logger"
)

var _ = Describe("Logger", func() {
	ctx := context.Background()

	Describe("New", func() {
		It("should create a dev logger", func() {
			log := logger.New("info", false, "dev")
			Expect(log).NotTo(BeNil())
		})

		It("should create a prod logger", func() {
			log := logger.New("info", true, "prod")
			Expect(log).NotTo(BeNil())
		})
	})

	DescribeTable("level filtering",
		func(level string, enabled, disabled slog.Level) {
			log := logger.New(level, false, "dev")
			Expect(log.Enabled(ctx, enabled)).To(BeTrue())
			Expect(log.Enabled(ctx, disabled)).To(BeFalse())
		},
		Entry("debug", "debug", slog.LevelDebug, slog.LevelDebug-4),
		Entry("info", "info", slog.LevelInfo, slog.LevelDebug),
		Entry("warn", "warn", slog.LevelWarn, slog.LevelInfo),
		Entry("error", "error", slog.LevelError, slog.LevelWarn),
		Entry("unknown defaults to info", "loud", slog.LevelInfo, slog.LevelDebug),
		Entry("mixed case", "WARN", slog.LevelWarn, slog.LevelInfo),
	)

	Describe("NewWithWriter", func() {
		It("should write JSON with the environment attribute in prod", func() {
			var buf bytes.Buffer
			log := logger.NewWithWriter(&buf, "info", false, "prod")
			log.Info("hello")

			var record map[string]any
			Expect(json.Unmarshal(buf.Bytes(), &record)).To(Succeed())
			Expect(record).To(HaveKeyWithValue("msg", "hello"))
			Expect(record).To(HaveKeyWithValue("environment", "prod"))
		})

		It("should write text records outside prod", func() {
			var buf bytes.Buffer
			log := logger.NewWithWriter(&buf, "info", false, "staging")
			log.Info("hello")

			Expect(buf.String()).To(ContainSubstring("msg=hello"))
			Expect(buf.String()).To(ContainSubstring("environment=staging"))
		})
	})

	Describe("Err", func() {
		It("should render plain errors as a string", func() {
			attr := logger.Err(errors.New("boom"))
			Expect(attr.Key).To(Equal("err"))
		})

		It("should include the stack for wrapped errors", func() {
			var buf bytes.Buffer
			log := logger.NewWithWriter(&buf, "info", false, "prod")
			log.Error("failed", logger.Err(errors.Wrap(errors.New("dial refused"), "send")))

			var record map[string]any
			Expect(json.Unmarshal(buf.Bytes(), &record)).To(Succeed())
			Expect(record).To(HaveKey("err"))

			errGroup, ok := record["err"].(map[string]any)
			Expect(ok).To(BeTrue())
			Expect(errGroup).To(HaveKeyWithValue("msg", "send: dial refused"))
			Expect(errGroup["stack"]).To(ContainSubstring("logger_test"))
		})

		It("should handle nil", func() {
			Expect(logger.Err(nil).Value.String()).To(Equal("<nil>"))
		})
	})

	Describe("RequestID", func() {
		It("should generate unique ids", func() {
			Expect(logger.RequestID()).NotTo(Equal(logger.RequestID()))
			Expect(logger.RequestID()).To(HaveLen(36))
		})
	})
})
