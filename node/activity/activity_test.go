package activity_test

import (
	"context"
	"time"

	"github.com/dogmatiq/dodeca/logging"
	"github.com/millrace/weir/deactivate"
	"github.com/millrace/weir/definition"
	"github.com/millrace/weir/envelope"
	"github.com/millrace/weir/fixtures"
	"github.com/millrace/weir/loop"
	"github.com/millrace/weir/message"
	. "github.com/millrace/weir/node/activity"
	"github.com/millrace/weir/persistence"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("type Activity", func() {
	var (
		ctx        context.Context
		cancel     context.CancelFunc
		harness    *fixtures.Harness
		dispatcher *fixtures.DispatcherStub
		dispatched chan string
		instanceID string
	)

	install := func(action loop.Action) {
		harness.Workers["task"].Behavior = &Activity{
			Loop:   loop.None{},
			Action: action,
			Deactivation: &deactivate.Coordinator{
				Packer:   harness.Packer,
				Exchange: harness.Exchange,
				Timeout:  1 * time.Second,
				Logger:   logging.DiscardLogger{},
			},
		}
	}

	BeforeEach(func() {
		ctx, cancel = context.WithTimeout(context.Background(), 3*time.Second)

		p := definition.MustNewProcess(
			"<process-key>",
			&definition.FlowNode{ID: "start", Kind: definition.StartEvent, Outgoing: []string{"task"}},
			&definition.FlowNode{
				ID:          "task",
				Kind:        definition.ReceiveTask,
				Incoming:    []string{"start"},
				Outgoing:    []string{"out"},
				Attachments: []string{"guard"},
			},
			&definition.FlowNode{ID: "guard", Kind: definition.BoundaryEvent, AttachedTo: "task", Outgoing: []string{"out"}},
			&definition.FlowNode{ID: "out", Kind: definition.ReceiveTask, Incoming: []string{"task", "guard"}},
		)

		harness = fixtures.NewHarness(p, nil)

		dispatched = make(chan string, 10)
		dispatcher = &fixtures.DispatcherStub{
			DispatchFunc: func(_ context.Context, nodeID string, payload []byte) error {
				dispatched <- string(payload)
				return nil
			},
			RequestReplyFunc: func(_ context.Context, nodeID string, payload []byte) ([]byte, error) {
				dispatched <- string(payload)
				return []byte("<reply>"), nil
			},
		}

		instanceID = "<instance>"
		harness.Start(ctx)
	})

	AfterEach(func() {
		cancel()
	})

	When("the action is a receive task", func() {
		BeforeEach(func() {
			install(ReceiveTask{})
		})

		It("remains active until an inbound message arrives", func() {
			err := harness.Post(ctx, message.Activation, "task", instanceID, nil)
			Expect(err).ShouldNot(HaveOccurred())

			inst, err := harness.DataStore.LoadNodeInstance(ctx, "task", instanceID)
			Expect(err).ShouldNot(HaveOccurred())
			Expect(inst.State).To(Equal(persistence.Active))

			Consistently(harness.Received["out"]).ShouldNot(Receive())
		})

		It("completes when the node is triggered", func() {
			err := harness.Post(ctx, message.Activation, "task", instanceID, nil)
			Expect(err).ShouldNot(HaveOccurred())

			err = harness.Post(ctx, message.Trigger, "task", instanceID, []byte("<inbound>"))
			Expect(err).ShouldNot(HaveOccurred())

			var env *envelope.Envelope
			Eventually(harness.Received["out"]).Should(Receive(&env))
			Expect(env.Kind).To(Equal(message.Activation))
			Expect(env.SourceID).To(Equal("task"))

			Eventually(func() persistence.State {
				inst, err := harness.DataStore.LoadNodeInstance(ctx, "task", instanceID)
				Expect(err).ShouldNot(HaveOccurred())
				return inst.State
			}).Should(Equal(persistence.Passed))
		})
	})

	When("the action is a send task", func() {
		BeforeEach(func() {
			install(&SendTask{Dispatcher: dispatcher})
		})

		It("dispatches the payload and completes immediately", func() {
			err := harness.Post(ctx, message.Activation, "task", instanceID, []byte("<outbound>"))
			Expect(err).ShouldNot(HaveOccurred())

			Eventually(dispatched).Should(Receive(Equal("<outbound>")))
			Eventually(harness.Received["out"]).Should(Receive())
		})
	})

	When("the action is a service task", func() {
		BeforeEach(func() {
			install(&ServiceTask{Dispatcher: dispatcher})
		})

		It("completes with the reply", func() {
			err := harness.Post(ctx, message.Activation, "task", instanceID, []byte("<request>"))
			Expect(err).ShouldNot(HaveOccurred())

			Eventually(dispatched).Should(Receive(Equal("<request>")))
			Eventually(harness.Received["out"]).Should(Receive())

			Eventually(func() persistence.State {
				inst, err := harness.DataStore.LoadNodeInstance(ctx, "task", instanceID)
				Expect(err).ShouldNot(HaveOccurred())
				return inst.State
			}).Should(Equal(persistence.Passed))
		})
	})

	When("the activity has a boundary event", func() {
		BeforeEach(func() {
			install(ReceiveTask{})
		})

		It("arms the boundary event on activation", func() {
			err := harness.Post(ctx, message.Activation, "task", instanceID, nil)
			Expect(err).ShouldNot(HaveOccurred())

			var env *envelope.Envelope
			Eventually(harness.Received["guard"]).Should(Receive(&env))
			Expect(env.Kind).To(Equal(message.Activation))
		})

		It("disarms the boundary event on completion", func() {
			err := harness.Post(ctx, message.Activation, "task", instanceID, nil)
			Expect(err).ShouldNot(HaveOccurred())

			Eventually(harness.Received["guard"]).Should(Receive())

			err = harness.Post(ctx, message.Trigger, "task", instanceID, nil)
			Expect(err).ShouldNot(HaveOccurred())

			var env *envelope.Envelope
			Eventually(harness.Received["guard"]).Should(Receive(&env))
			Expect(env.Kind).To(Equal(message.Deactivation))
		})

		It("disarms the boundary event when the activity itself is deactivated", func() {
			err := harness.Post(ctx, message.Activation, "task", instanceID, nil)
			Expect(err).ShouldNot(HaveOccurred())

			Eventually(harness.Received["guard"]).Should(Receive())

			err = harness.Post(ctx, message.Deactivation, "task", instanceID, nil)
			Expect(err).ShouldNot(HaveOccurred())

			var env *envelope.Envelope
			Eventually(harness.Received["guard"]).Should(Receive(&env))
			Expect(env.Kind).To(Equal(message.Deactivation))

			inst, err := harness.DataStore.LoadNodeInstance(ctx, "task", instanceID)
			Expect(err).ShouldNot(HaveOccurred())
			Expect(inst.State).To(Equal(persistence.Deactivated))
		})
	})
})

var _ = Describe("type SubProcess", func() {
	var (
		ctx     context.Context
		cancel  context.CancelFunc
		harness *fixtures.Harness
	)

	BeforeEach(func() {
		ctx, cancel = context.WithTimeout(context.Background(), 3*time.Second)

		p := definition.MustNewProcess(
			"<process-key>",
			&definition.FlowNode{ID: "start", Kind: definition.StartEvent, Outgoing: []string{"sub"}},
			&definition.FlowNode{ID: "sub", Kind: definition.SubProcess, Incoming: []string{"start"}, Outgoing: []string{"out"}},
			&definition.FlowNode{ID: "inner-start", Kind: definition.StartEvent, Parent: "sub", Outgoing: []string{"inner-end"}},
			&definition.FlowNode{ID: "inner-end", Kind: definition.EndEvent, Parent: "sub", Incoming: []string{"inner-start"}},
			&definition.FlowNode{ID: "out", Kind: definition.ReceiveTask, Incoming: []string{"sub"}},
		)

		harness = fixtures.NewHarness(p, nil)

		deactivation := &deactivate.Coordinator{
			Packer:   harness.Packer,
			Exchange: harness.Exchange,
			Timeout:  1 * time.Second,
			Logger:   logging.DiscardLogger{},
		}

		harness.Workers["sub"].Behavior = &Activity{
			Loop: loop.None{},
			Action: &SubProcess{
				Process:      p,
				Deactivation: deactivation,
			},
			Deactivation: deactivation,
		}

		harness.Start(ctx)
	})

	AfterEach(func() {
		cancel()
	})

	It("triggers the nested start events on activation", func() {
		err := harness.Post(ctx, message.Activation, "sub", "<instance>", []byte("<payload>"))
		Expect(err).ShouldNot(HaveOccurred())

		var env *envelope.Envelope
		Eventually(harness.Received["inner-start"]).Should(Receive(&env))
		Expect(env.Kind).To(Equal(message.Trigger))
		Expect(env.Payload).To(Equal([]byte("<payload>")))

		Consistently(harness.Received["out"]).ShouldNot(Receive())
	})

	It("completes when a nested end event reports back", func() {
		err := harness.Post(ctx, message.Activation, "sub", "<instance>", nil)
		Expect(err).ShouldNot(HaveOccurred())

		Eventually(harness.Received["inner-start"]).Should(Receive())

		err = harness.Post(ctx, message.Trigger, "sub", "<instance>", nil)
		Expect(err).ShouldNot(HaveOccurred())

		Eventually(harness.Received["out"]).Should(Receive())

		Eventually(func() persistence.State {
			inst, err := harness.DataStore.LoadNodeInstance(ctx, "sub", "<instance>")
			Expect(err).ShouldNot(HaveOccurred())
			return inst.State
		}).Should(Equal(persistence.Passed))
	})

	It("abandons the nested nodes when deactivated mid-run", func() {
		err := harness.Post(ctx, message.Activation, "sub", "<instance>", nil)
		Expect(err).ShouldNot(HaveOccurred())

		Eventually(harness.Received["inner-start"]).Should(Receive())

		err = harness.Post(ctx, message.Deactivation, "sub", "<instance>", nil)
		Expect(err).ShouldNot(HaveOccurred())

		var env *envelope.Envelope
		Eventually(harness.Received["inner-start"]).Should(Receive(&env))
		Expect(env.Kind).To(Equal(message.Deactivation))
	})
})
