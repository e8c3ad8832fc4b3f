package event_test

import (
	"context"
	"time"

	"github.com/dogmatiq/dodeca/logging"
	"github.com/millrace/weir/deactivate"
	"github.com/millrace/weir/definition"
	"github.com/millrace/weir/envelope"
	"github.com/millrace/weir/eventdef"
	"github.com/millrace/weir/fixtures"
	"github.com/millrace/weir/message"
	"github.com/millrace/weir/node"
	. "github.com/millrace/weir/node/event"
	"github.com/millrace/weir/persistence"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("type Catch", func() {
	var (
		ctx    context.Context
		cancel context.CancelFunc
	)

	BeforeEach(func() {
		ctx, cancel = context.WithTimeout(context.Background(), 3*time.Second)
	})

	AfterEach(func() {
		cancel()
	})

	When("the node is a plain intermediate catch event", func() {
		var harness *fixtures.Harness

		BeforeEach(func() {
			harness = fixtures.NewHarness(
				definition.MustNewProcess(
					"<process-key>",
					&definition.FlowNode{ID: "in", Kind: definition.ReceiveTask, Outgoing: []string{"wait"}},
					&definition.FlowNode{
						ID:       "wait",
						Kind:     definition.IntermediateCatchEvent,
						Incoming: []string{"in"},
						Outgoing: []string{"out"},
					},
					&definition.FlowNode{ID: "out", Kind: definition.ReceiveTask, Incoming: []string{"wait"}},
				),
				map[string]node.Behavior{
					"wait": &Catch{
						Strategy: eventdef.Empty{},
					},
				},
			)

			harness.Start(ctx)
		})

		It("stays active after activation", func() {
			err := harness.Post(ctx, message.Activation, "wait", "<instance>", nil)
			Expect(err).ShouldNot(HaveOccurred())

			Consistently(harness.Received["out"]).ShouldNot(Receive())

			inst, err := harness.DataStore.LoadNodeInstance(ctx, "wait", "<instance>")
			Expect(err).ShouldNot(HaveOccurred())
			Expect(inst.State).To(Equal(persistence.Active))
		})

		It("passes and activates its outgoing flow when triggered", func() {
			err := harness.Post(ctx, message.Activation, "wait", "<instance>", nil)
			Expect(err).ShouldNot(HaveOccurred())

			err = harness.Post(ctx, message.Trigger, "wait", "<instance>", nil)
			Expect(err).ShouldNot(HaveOccurred())

			var env *envelope.Envelope
			Eventually(harness.Received["out"]).Should(Receive(&env))
			Expect(env.Kind).To(Equal(message.Activation))

			inst, err := harness.DataStore.LoadNodeInstance(ctx, "wait", "<instance>")
			Expect(err).ShouldNot(HaveOccurred())
			Expect(inst.State).To(Equal(persistence.Passed))
		})
	})

	When("the node is fed by an event-based gateway", func() {
		var harness *fixtures.Harness

		BeforeEach(func() {
			harness = fixtures.NewHarness(
				definition.MustNewProcess(
					"<process-key>",
					&definition.FlowNode{
						ID:       "race",
						Kind:     definition.EventBasedGateway,
						Outgoing: []string{"wait"},
					},
					&definition.FlowNode{
						ID:       "wait",
						Kind:     definition.IntermediateCatchEvent,
						Incoming: []string{"race"},
						Outgoing: []string{"out"},
					},
					&definition.FlowNode{ID: "out", Kind: definition.ReceiveTask, Incoming: []string{"wait"}},
				),
				map[string]node.Behavior{
					"wait": &Catch{
						Strategy:  eventdef.Empty{},
						GatewayID: "race",
					},
				},
			)

			harness.Start(ctx)
		})

		It("reports an occurrence to the gateway instead of completing", func() {
			err := harness.Post(ctx, message.Activation, "wait", "<instance>", nil)
			Expect(err).ShouldNot(HaveOccurred())

			err = harness.Post(ctx, message.Trigger, "wait", "<instance>", []byte("<payload>"))
			Expect(err).ShouldNot(HaveOccurred())

			var env *envelope.Envelope
			Eventually(harness.Received["race"]).Should(Receive(&env))
			Expect(env.Kind).To(Equal(message.Trigger))
			Expect(env.SourceID).To(Equal("wait"))
			Expect(env.Payload).To(Equal([]byte("<payload>")))

			Consistently(harness.Received["out"]).ShouldNot(Receive())

			inst, err := harness.DataStore.LoadNodeInstance(ctx, "wait", "<instance>")
			Expect(err).ShouldNot(HaveOccurred())
			Expect(inst.State).To(Equal(persistence.Active))
		})

		It("completes when the gateway elects it as the winner", func() {
			err := harness.Post(ctx, message.Activation, "wait", "<instance>", nil)
			Expect(err).ShouldNot(HaveOccurred())

			err = harness.Post(ctx, message.Winning, "wait", "<instance>", nil)
			Expect(err).ShouldNot(HaveOccurred())

			Eventually(harness.Received["out"]).Should(Receive())

			inst, err := harness.DataStore.LoadNodeInstance(ctx, "wait", "<instance>")
			Expect(err).ShouldNot(HaveOccurred())
			Expect(inst.State).To(Equal(persistence.Passed))
		})
	})

	When("the node is a boundary event", func() {
		var harness *fixtures.Harness

		BeforeEach(func() {
			harness = fixtures.NewHarness(
				definition.MustNewProcess(
					"<process-key>",
					&definition.FlowNode{
						ID:          "host",
						Kind:        definition.ReceiveTask,
						Attachments: []string{"boundary"},
						Outgoing:    []string{"done"},
					},
					&definition.FlowNode{
						ID:         "boundary",
						Kind:       definition.BoundaryEvent,
						AttachedTo: "host",
						Outgoing:   []string{"handler"},
					},
					&definition.FlowNode{ID: "done", Kind: definition.ReceiveTask, Incoming: []string{"host"}},
					&definition.FlowNode{ID: "handler", Kind: definition.ReceiveTask, Incoming: []string{"boundary"}},
				),
				nil,
			)

			harness.Workers["boundary"].Behavior = &Catch{
				Strategy: eventdef.Empty{},
				HostID:   "host",
				Deactivation: &deactivate.Coordinator{
					Packer:   harness.Packer,
					Exchange: harness.Exchange,
					Timeout:  1 * time.Second,
					Logger:   logging.DiscardLogger{},
				},
			}

			harness.Start(ctx)
		})

		It("interrupts its host and activates the handler branch when triggered", func() {
			err := harness.Post(ctx, message.Activation, "boundary", "<instance>", nil)
			Expect(err).ShouldNot(HaveOccurred())

			err = harness.Post(ctx, message.Trigger, "boundary", "<instance>", nil)
			Expect(err).ShouldNot(HaveOccurred())

			var env *envelope.Envelope
			Eventually(harness.Received["host"]).Should(Receive(&env))
			Expect(env.Kind).To(Equal(message.Deactivation))

			Eventually(harness.Received["handler"]).Should(Receive(&env))
			Expect(env.Kind).To(Equal(message.Activation))
		})
	})
})
