package gateway_test

import (
	"context"
	"time"

	"github.com/millrace/weir/definition"
	"github.com/millrace/weir/fixtures"
	"github.com/millrace/weir/message"
	"github.com/millrace/weir/node"
	. "github.com/millrace/weir/node/gateway"
	"github.com/millrace/weir/persistence"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("type Exclusive", func() {
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

	newHarness := func(guards []definition.Guard, defaultTo string) *fixtures.Harness {
		h := fixtures.NewHarness(
			definition.MustNewProcess(
				"<process-key>",
				&definition.FlowNode{
					ID:        "route",
					Kind:      definition.ExclusiveGateway,
					Incoming:  []string{"in"},
					Outgoing:  []string{"g1", "g2", "g3", "g4"},
					Guards:    guards,
					DefaultTo: defaultTo,
				},
				&definition.FlowNode{ID: "in", Kind: definition.ReceiveTask, Outgoing: []string{"route"}},
				&definition.FlowNode{ID: "g1", Kind: definition.ReceiveTask, Incoming: []string{"route"}},
				&definition.FlowNode{ID: "g2", Kind: definition.ReceiveTask, Incoming: []string{"route"}},
				&definition.FlowNode{ID: "g3", Kind: definition.ReceiveTask, Incoming: []string{"route"}},
				&definition.FlowNode{ID: "g4", Kind: definition.ReceiveTask, Incoming: []string{"route"}},
			),
			map[string]node.Behavior{
				"route": Exclusive{},
			},
		)

		h.Start(ctx)

		return h
	}

	It("routes to the first guard that matches, in modeled order", func() {
		harness := newHarness(
			[]definition.Guard{
				{To: "g1", When: definition.Bool(false)},
				{To: "g2", When: definition.Bool(true)},
				{To: "g3", When: definition.Bool(true)},
			},
			"g4",
		)

		err := harness.Post(ctx, message.Activation, "route", "<instance>", nil)
		Expect(err).ShouldNot(HaveOccurred())

		Eventually(harness.Received["g2"]).Should(Receive())
		Consistently(harness.Received["g1"]).ShouldNot(Receive())
		Consistently(harness.Received["g3"]).ShouldNot(Receive())
		Consistently(harness.Received["g4"]).ShouldNot(Receive())
	})

	It("routes to the default when no guard matches", func() {
		harness := newHarness(
			[]definition.Guard{
				{To: "g1", When: definition.Bool(false)},
				{To: "g2", When: definition.Bool(false)},
			},
			"g4",
		)

		err := harness.Post(ctx, message.Activation, "route", "<instance>", nil)
		Expect(err).ShouldNot(HaveOccurred())

		Eventually(harness.Received["g4"]).Should(Receive())
	})

	It("stalls when no guard matches and there is no default", func() {
		harness := newHarness(
			[]definition.Guard{
				{To: "g1", When: definition.Bool(false)},
			},
			"",
		)

		err := harness.Post(ctx, message.Activation, "route", "<instance>", nil)
		Expect(err).ShouldNot(HaveOccurred())

		Consistently(harness.Received["g1"]).ShouldNot(Receive())

		inst, err := harness.DataStore.LoadNodeInstance(ctx, "route", "<instance>")
		Expect(err).ShouldNot(HaveOccurred())
		Expect(inst.State).To(Equal(persistence.Active))
	})
})
