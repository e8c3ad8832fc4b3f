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

var _ = Describe("type Parallel", func() {
	var (
		ctx     context.Context
		cancel  context.CancelFunc
		harness *fixtures.Harness
	)

	BeforeEach(func() {
		ctx, cancel = context.WithTimeout(context.Background(), 3*time.Second)

		harness = fixtures.NewHarness(
			definition.MustNewProcess(
				"<process-key>",
				&definition.FlowNode{ID: "a", Kind: definition.ReceiveTask, Outgoing: []string{"join"}},
				&definition.FlowNode{ID: "b", Kind: definition.ReceiveTask, Outgoing: []string{"join"}},
				&definition.FlowNode{
					ID:       "join",
					Kind:     definition.ParallelGateway,
					Incoming: []string{"a", "b"},
					Outgoing: []string{"out"},
				},
				&definition.FlowNode{ID: "out", Kind: definition.ReceiveTask, Incoming: []string{"join"}},
			),
			map[string]node.Behavior{
				"join": Parallel{},
			},
		)

		harness.Start(ctx)
	})

	AfterEach(func() {
		cancel()
	})

	It("does not fire until every incoming flow has fired", func() {
		err := harness.Post(ctx, message.Activation, "join", "<instance>", nil)
		Expect(err).ShouldNot(HaveOccurred())

		Consistently(harness.Received["out"]).ShouldNot(Receive())

		inst, err := harness.DataStore.LoadNodeInstance(ctx, "join", "<instance>")
		Expect(err).ShouldNot(HaveOccurred())
		Expect(inst.State).To(Equal(persistence.Active))
	})

	It("fires exactly once when the last flow arrives", func() {
		err := harness.Post(ctx, message.Activation, "join", "<instance>", nil)
		Expect(err).ShouldNot(HaveOccurred())

		err = harness.Post(ctx, message.Activation, "join", "<instance>", nil)
		Expect(err).ShouldNot(HaveOccurred())

		Eventually(harness.Received["out"]).Should(Receive())

		inst, err := harness.DataStore.LoadNodeInstance(ctx, "join", "<instance>")
		Expect(err).ShouldNot(HaveOccurred())
		Expect(inst.State).To(Equal(persistence.Passed))
	})

	It("drops a surplus activation after firing", func() {
		for i := 0; i < 3; i++ {
			err := harness.Post(ctx, message.Activation, "join", "<instance>", nil)
			Expect(err).ShouldNot(HaveOccurred())
		}

		Eventually(harness.Received["out"]).Should(Receive())
		Consistently(harness.Received["out"]).ShouldNot(Receive())
	})
})
