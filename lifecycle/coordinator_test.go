package lifecycle_test

import (
	"context"
	"time"

	"github.com/millrace/weir/definition"
	"github.com/millrace/weir/fixtures"
	. "github.com/millrace/weir/internal/x/gomegax"
	. "github.com/millrace/weir/lifecycle"
	"github.com/millrace/weir/persistence"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("type Coordinator", func() {
	var (
		ctx         context.Context
		cancel      context.CancelFunc
		dataStore   *fixtures.DataStoreStub
		process     *definition.Process
		coordinator *Coordinator
	)

	now := time.Date(2024, 4, 1, 10, 30, 0, 0, time.UTC)

	// setState moves a node instance of the "<instance>" process instance to
	// the given state, via the intermediate states if necessary.
	setState := func(nodeID string, state persistence.State) {
		inst, err := dataStore.LoadNodeInstance(ctx, nodeID, "<instance>")
		Expect(err).ShouldNot(HaveOccurred())

		if inst.State == persistence.Inactive && state != persistence.Active {
			Expect(inst.Transition(persistence.Active)).ShouldNot(HaveOccurred())
		}
		Expect(inst.Transition(state)).ShouldNot(HaveOccurred())

		err = dataStore.Persist(ctx, persistence.Batch{
			persistence.SaveNodeInstance{Instance: inst},
		})
		Expect(err).ShouldNot(HaveOccurred())
	}

	BeforeEach(func() {
		ctx, cancel = context.WithTimeout(context.Background(), 1*time.Second)

		dataStore = fixtures.NewDataStoreStub()

		process = definition.MustNewProcess(
			"<process-key>",
			&definition.FlowNode{ID: "start", Kind: definition.StartEvent, Outgoing: []string{"a", "b", "c"}},
			&definition.FlowNode{ID: "a", Kind: definition.ReceiveTask, Incoming: []string{"start"}, Outgoing: []string{"join"}},
			&definition.FlowNode{ID: "b", Kind: definition.ReceiveTask, Incoming: []string{"start"}, Outgoing: []string{"join"}},
			&definition.FlowNode{ID: "c", Kind: definition.ReceiveTask, Incoming: []string{"start"}, Outgoing: []string{"join"}},
			&definition.FlowNode{ID: "join", Kind: definition.ComplexGateway, JoinThreshold: 2, Incoming: []string{"a", "b", "c"}, Outgoing: []string{"end"}},
			&definition.FlowNode{ID: "end", Kind: definition.EndEvent, Incoming: []string{"join"}},
		)

		coordinator = &Coordinator{
			Process:   process,
			DataStore: dataStore,
			GenerateID: func() string {
				return "<instance>"
			},
			Now: func() time.Time {
				return now
			},
		}
	})

	AfterEach(func() {
		cancel()
	})

	Describe("func CreateInstance()", func() {
		It("persists the process instance record", func() {
			pi, err := coordinator.CreateInstance(
				ctx,
				map[string]string{"<key>": "<value>"},
			)
			Expect(err).ShouldNot(HaveOccurred())
			Expect(pi.InstanceID).To(Equal("<instance>"))
			Expect(pi.ProcessKey).To(Equal("<process-key>"))
			Expect(pi.StartNodes).To(ConsistOf("start"))
			Expect(pi.StartedAt).To(BeTemporally("==", now))
			Expect(pi.Revision).To(BeEquivalentTo(1))

			loaded, err := dataStore.LoadProcessInstance(ctx, "<instance>")
			Expect(err).ShouldNot(HaveOccurred())
			Expect(loaded.Metadata).To(EqualX(map[string]string{"<key>": "<value>"}))
		})

		It("mirrors every sequence-flow edge onto the record", func() {
			pi, err := coordinator.CreateInstance(ctx, nil)
			Expect(err).ShouldNot(HaveOccurred())

			Expect(pi.Edges).To(ConsistOf(
				persistence.Edge{From: "start", To: "a"},
				persistence.Edge{From: "start", To: "b"},
				persistence.Edge{From: "start", To: "c"},
				persistence.Edge{From: "a", To: "join"},
				persistence.Edge{From: "b", To: "join"},
				persistence.Edge{From: "c", To: "join"},
				persistence.Edge{From: "join", To: "end"},
			))
		})

		It("creates one inactive node instance per definition node", func() {
			_, err := coordinator.CreateInstance(ctx, nil)
			Expect(err).ShouldNot(HaveOccurred())

			instances, err := dataStore.ListNodeInstances(ctx, "<instance>")
			Expect(err).ShouldNot(HaveOccurred())
			Expect(instances).To(HaveLen(len(process.Nodes)))

			for _, inst := range instances {
				Expect(inst.State).To(Equal(persistence.Inactive))
			}
		})
	})

	Describe("func EndReached()", func() {
		BeforeEach(func() {
			_, err := coordinator.CreateInstance(ctx, nil)
			Expect(err).ShouldNot(HaveOccurred())
		})

		It("returns false while a node at the level is still active", func() {
			setState("c", persistence.Active)

			ended, err := coordinator.EndReached(ctx, "<instance>", "end")
			Expect(err).ShouldNot(HaveOccurred())
			Expect(ended).To(BeFalse())
		})

		It("returns true once every node at the level has settled", func() {
			setState("start", persistence.Passed)
			setState("a", persistence.Passed)
			setState("b", persistence.Passed)
			setState("c", persistence.Deactivated)
			setState("join", persistence.Passed)

			ended, err := coordinator.EndReached(ctx, "<instance>", "end")
			Expect(err).ShouldNot(HaveOccurred())
			Expect(ended).To(BeTrue())
		})

		It("ignores the end events at the level", func() {
			setState("end", persistence.Active)

			ended, err := coordinator.EndReached(ctx, "<instance>", "end")
			Expect(err).ShouldNot(HaveOccurred())
			Expect(ended).To(BeTrue())
		})
	})

	Describe("func LosingBranches()", func() {
		BeforeEach(func() {
			_, err := coordinator.CreateInstance(ctx, nil)
			Expect(err).ShouldNot(HaveOccurred())
		})

		It("returns the sibling branches that never fired", func() {
			setState("start", persistence.Passed)
			setState("a", persistence.Passed)
			setState("b", persistence.Passed)

			losers, err := coordinator.LosingBranches(ctx, "<instance>", "join")
			Expect(err).ShouldNot(HaveOccurred())
			Expect(losers).To(ConsistOf("c"))
		})

		It("stops each path at the first already-passed node", func() {
			setState("start", persistence.Passed)
			setState("a", persistence.Passed)

			losers, err := coordinator.LosingBranches(ctx, "<instance>", "join")
			Expect(err).ShouldNot(HaveOccurred())
			Expect(losers).To(ConsistOf("b", "c"))
		})

		It("returns nothing when every branch fired", func() {
			setState("start", persistence.Passed)
			setState("a", persistence.Passed)
			setState("b", persistence.Passed)
			setState("c", persistence.Passed)

			losers, err := coordinator.LosingBranches(ctx, "<instance>", "join")
			Expect(err).ShouldNot(HaveOccurred())
			Expect(losers).To(BeEmpty())
		})
	})

	Describe("func Finalize()", func() {
		BeforeEach(func() {
			_, err := coordinator.CreateInstance(ctx, nil)
			Expect(err).ShouldNot(HaveOccurred())
		})

		It("removes the instance from the live keyspace", func() {
			err := coordinator.Finalize(ctx, "<instance>")
			Expect(err).ShouldNot(HaveOccurred())

			_, err = dataStore.LoadProcessInstance(ctx, "<instance>")
			Expect(err).To(Equal(persistence.ErrInstanceNotFound))
		})

		It("is a no-op for an instance that has already been finalized", func() {
			err := coordinator.Finalize(ctx, "<instance>")
			Expect(err).ShouldNot(HaveOccurred())

			err = coordinator.Finalize(ctx, "<instance>")
			Expect(err).ShouldNot(HaveOccurred())
		})

		It("is a no-op for an unknown instance", func() {
			err := coordinator.Finalize(ctx, "<unknown>")
			Expect(err).ShouldNot(HaveOccurred())
		})

		It("deletes the instance's records entirely under the delete policy", func() {
			coordinator.Policy = Delete

			err := coordinator.Finalize(ctx, "<instance>")
			Expect(err).ShouldNot(HaveOccurred())

			instances, err := dataStore.ListNodeInstances(ctx, "<instance>")
			Expect(err).ShouldNot(HaveOccurred())
			Expect(instances).To(BeEmpty())
		})
	})
})
