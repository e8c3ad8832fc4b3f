package deactivate_test

import (
	"context"
	"time"

	"github.com/dogmatiq/dodeca/logging"
	. "github.com/millrace/weir/deactivate"
	"github.com/millrace/weir/definition"
	"github.com/millrace/weir/envelope"
	"github.com/millrace/weir/fixtures"
	"github.com/millrace/weir/message"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("type Coordinator", func() {
	var (
		ctx         context.Context
		cancel      context.CancelFunc
		harness     *fixtures.Harness
		logger      *logging.BufferedLogger
		coordinator *Coordinator
		cause       *envelope.Envelope
	)

	BeforeEach(func() {
		ctx, cancel = context.WithTimeout(context.Background(), 3*time.Second)

		p := definition.MustNewProcess(
			"<process-key>",
			&definition.FlowNode{ID: "src", Kind: definition.StartEvent, Outgoing: []string{"a", "b", "c"}},
			&definition.FlowNode{ID: "a", Kind: definition.ReceiveTask, Incoming: []string{"src"}},
			&definition.FlowNode{ID: "b", Kind: definition.ReceiveTask, Incoming: []string{"src"}},
			&definition.FlowNode{ID: "c", Kind: definition.ReceiveTask, Incoming: []string{"src"}},
		)

		harness = fixtures.NewHarness(p, nil)
		logger = &logging.BufferedLogger{}

		coordinator = &Coordinator{
			Packer:   harness.Packer,
			Exchange: harness.Exchange,
			Timeout:  100 * time.Millisecond,
			Logger:   logger,
		}

		cause = fixtures.NewEnvelope("<cause-id>", message.Trigger, "src", "<instance>")
	})

	AfterEach(func() {
		cancel()
	})

	It("sends a deactivation to every target", func() {
		harness.Start(ctx)

		coordinator.Deactivate(ctx, cause, "src", "a", "b", "c")

		for _, id := range []string{"a", "b", "c"} {
			var env *envelope.Envelope
			Eventually(harness.Received[id]).Should(Receive(&env))
			Expect(env.Kind).To(Equal(message.Deactivation))
			Expect(env.SourceID).To(Equal("src"))
			Expect(env.InstanceID).To(Equal("<instance>"))
			Expect(env.CausationID).To(Equal("<cause-id>"))
		}

		Expect(logger.Messages()).To(BeEmpty())
	})

	It("does nothing when there are no targets", func() {
		coordinator.Packer = nil
		coordinator.Exchange = nil

		coordinator.Deactivate(ctx, cause, "src")
	})

	It("logs the targets that never acknowledge", func() {
		// The workers are never started, so the deactivations sit in their
		// mailboxes unacknowledged until the coordinator's timeout elapses.
		coordinator.Deactivate(ctx, cause, "src", "a", "b")

		Expect(logger.Messages()).To(ConsistOf(
			logging.BufferedLogMessage{
				Message: "deactivation fan-out from node src timed out awaiting acknowledgment from: a, b",
			},
		))
	})

	It("logs the targets that can not be routed", func() {
		harness.Start(ctx)

		coordinator.Deactivate(ctx, cause, "src", "a", "<unknown>")

		Eventually(harness.Received["a"]).Should(Receive())

		var messages []string
		for _, m := range logger.Messages() {
			messages = append(messages, m.Message)
		}
		Expect(messages).To(ContainElement(
			ContainSubstring("deactivation fan-out from node src failed for some targets"),
		))
	})
})
