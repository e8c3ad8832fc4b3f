package mlog_test

import (
	"errors"
	"time"

	"github.com/dogmatiq/dodeca/logging"
	"github.com/millrace/weir/envelope"
	. "github.com/millrace/weir/internal/mlog"
	"github.com/millrace/weir/message"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("message logging", func() {
	var (
		logger *logging.BufferedLogger
		env    *envelope.Envelope
	)

	BeforeEach(func() {
		logger = &logging.BufferedLogger{
			CaptureDebug: true,
		}

		env = &envelope.Envelope{
			MessageID:     "<id>",
			CausationID:   "<cause>",
			CorrelationID: "<correlation>",
			ProcessKey:    "<process>",
			NodeID:        "<node>",
			InstanceID:    "<instance>",
			Kind:          message.Activation,
		}
	})

	Describe("func LogConsume()", func() {
		It("logs in the standard format", func() {
			LogConsume(logger, env, 0)

			Expect(logger.Messages()).To(ContainElement(
				logging.BufferedLogMessage{
					Message: "= <id>  ∵ <cause>  ⋲ <correlation>  ▼    activation ● node <node> of instance <instance>",
				},
			))
		})

		It("shows the retry icon if the failure count is non-zero", func() {
			LogConsume(logger, env, 2)

			Expect(logger.Messages()).To(ContainElement(
				logging.BufferedLogMessage{
					Message: "= <id>  ∵ <cause>  ⋲ <correlation>  ▼ ↻  activation ● node <node> of instance <instance>",
				},
			))
		})
	})

	Describe("func LogProduce()", func() {
		It("logs in the standard format", func() {
			LogProduce(logger, env)

			Expect(logger.Messages()).To(ContainElement(
				logging.BufferedLogMessage{
					Message: "= <id>  ∵ <cause>  ⋲ <correlation>  ▲    activation ● node <node> of instance <instance>",
				},
			))
		})
	})

	Describe("func LogDrop()", func() {
		It("logs the state that caused the message to be discarded", func() {
			LogDrop(logger, env, "passed")

			Expect(logger.Messages()).To(ContainElement(
				logging.BufferedLogMessage{
					Message: "= <id>  ∵ <cause>  ⋲ <correlation>  ∅    activation ● node <node> of instance <instance> ● target is already passed",
					IsDebug: true,
				},
			))
		})
	})

	Describe("func LogFailure()", func() {
		It("logs the cause and the retry delay", func() {
			LogFailure(logger, env, errors.New("<error>"), 3*time.Second)

			Expect(logger.Messages()).To(ContainElement(
				logging.BufferedLogMessage{
					Message: "= <id>  ∵ <cause>  ⋲ <correlation>  ▽ ✖  activation ● <error> ● next retry in 3s",
				},
			))
		})
	})
})
