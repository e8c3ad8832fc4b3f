package eventdef_test

import (
	"context"
	"time"

	"github.com/millrace/weir/definition"
	. "github.com/millrace/weir/eventdef"
	"github.com/millrace/weir/fixtures"
	"github.com/millrace/weir/message"
	"github.com/millrace/weir/node/event"
	"github.com/millrace/weir/persistence"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("type Timer", func() {
	var (
		ctx     context.Context
		cancel  context.CancelFunc
		harness *fixtures.Harness
	)

	// dueTimers returns every timer due within the next hour.
	dueTimers := func() []persistence.Timer {
		timers, err := harness.DataStore.LoadDueTimers(
			ctx,
			time.Now().Add(1*time.Hour),
		)
		Expect(err).ShouldNot(HaveOccurred())
		return timers
	}

	BeforeEach(func() {
		ctx, cancel = context.WithTimeout(context.Background(), 3*time.Second)

		p := definition.MustNewProcess(
			"<process-key>",
			&definition.FlowNode{ID: "start", Kind: definition.StartEvent, Outgoing: []string{"delay"}},
			&definition.FlowNode{ID: "delay", Kind: definition.IntermediateCatchEvent, Incoming: []string{"start"}, Outgoing: []string{"out"}},
			&definition.FlowNode{ID: "out", Kind: definition.ReceiveTask, Incoming: []string{"delay"}},
		)

		harness = fixtures.NewHarness(p, nil)

		harness.Workers["delay"].Behavior = &event.Catch{
			Strategy: Timer{
				Spec: &definition.TimerSpec{
					After: 5 * time.Minute,
				},
			},
		}

		harness.Start(ctx)
	})

	AfterEach(func() {
		cancel()
	})

	It("persists the fire time on activation", func() {
		before := time.Now()

		err := harness.Post(ctx, message.Activation, "delay", "<instance>", nil)
		Expect(err).ShouldNot(HaveOccurred())

		timers := dueTimers()
		Expect(timers).To(HaveLen(1))
		Expect(timers[0].NodeID).To(Equal("delay"))
		Expect(timers[0].InstanceID).To(Equal("<instance>"))
		Expect(timers[0].FireAt).To(BeTemporally(">=", before.Add(5*time.Minute)))
	})

	It("removes the pending fire time on deactivation", func() {
		err := harness.Post(ctx, message.Activation, "delay", "<instance>", nil)
		Expect(err).ShouldNot(HaveOccurred())

		err = harness.Post(ctx, message.Deactivation, "delay", "<instance>", nil)
		Expect(err).ShouldNot(HaveOccurred())

		Expect(dueTimers()).To(BeEmpty())
	})

	It("completes the node when the poller raises the trigger", func() {
		err := harness.Post(ctx, message.Activation, "delay", "<instance>", nil)
		Expect(err).ShouldNot(HaveOccurred())

		err = harness.Post(ctx, message.Trigger, "delay", "<instance>", nil)
		Expect(err).ShouldNot(HaveOccurred())

		Eventually(harness.Received["out"]).Should(Receive())

		Eventually(func() persistence.State {
			inst, err := harness.DataStore.LoadNodeInstance(ctx, "delay", "<instance>")
			Expect(err).ShouldNot(HaveOccurred())
			return inst.State
		}).Should(Equal(persistence.Passed))
	})
})
