package weir_test

import (
	"context"
	"time"

	"github.com/dogmatiq/dodeca/logging"
	. "github.com/millrace/weir"
	"github.com/millrace/weir/definition"
	. "github.com/millrace/weir/fixtures"
	"github.com/millrace/weir/node"
	"github.com/millrace/weir/persistence/memorypersistence"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("type Engine", func() {
	var (
		ctx        context.Context
		cancel     context.CancelFunc
		engine     *Engine
		running    chan error
		dispatched chan string
	)

	// startEngine boots an engine hosting the given definitions and waits
	// for Run() to be underway.
	startEngine := func(processes ...*definition.Process) {
		dispatched = make(chan string, 10)

		options := []EngineOption{
			WithPersistence(&memorypersistence.Provider{}),
			WithDispatcher(&DispatcherStub{
				DispatchFunc: func(_ context.Context, nodeID string, _ []byte) error {
					dispatched <- nodeID
					return nil
				},
			}),
			WithTimerPollInterval(20 * time.Millisecond),
			WithLogger(logging.DiscardLogger{}),
		}
		for _, p := range processes {
			options = append(options, WithProcess(p))
		}

		engine = New(nil, options...)

		running = make(chan error, 1)
		go func() {
			running <- engine.Run(ctx)
		}()
	}

	// order returns a definition that waits for an inbound message and then
	// dispatches an outbound one before completing.
	order := func() *definition.Process {
		return definition.MustNewProcess(
			"<process-key>",
			&definition.FlowNode{ID: "start", Kind: definition.StartEvent, Outgoing: []string{"recv"}},
			&definition.FlowNode{ID: "recv", Kind: definition.ReceiveTask, Incoming: []string{"start"}, Outgoing: []string{"notify"}},
			&definition.FlowNode{ID: "notify", Kind: definition.SendTask, Incoming: []string{"recv"}, Outgoing: []string{"end"}},
			&definition.FlowNode{ID: "end", Kind: definition.EndEvent, Incoming: []string{"notify"}},
		)
	}

	BeforeEach(func() {
		ctx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
	})

	AfterEach(func() {
		cancel()
		Eventually(running).Should(Receive())
	})

	Describe("func Run()", func() {
		It("returns the context error when canceled", func() {
			startEngine(order())

			runCtx, cancelRun := context.WithCancel(ctx)
			e := New(
				order(),
				WithPersistence(&memorypersistence.Provider{}),
				WithLogger(logging.DiscardLogger{}),
			)

			done := make(chan error, 1)
			go func() {
				done <- e.Run(runCtx)
			}()

			cancelRun()
			Eventually(done).Should(Receive(Equal(context.Canceled)))
		})
	})

	Describe("func CreateProcessInstance()", func() {
		It("runs the flow from the start event", func() {
			startEngine(order())

			id, err := engine.CreateProcessInstance(ctx, "<process-key>", nil)
			Expect(err).ShouldNot(HaveOccurred())
			Expect(id).ToNot(BeEmpty())

			err = engine.SendTrigger(ctx, "<process-key>", "recv", id, []byte("<inbound>"))
			Expect(err).ShouldNot(HaveOccurred())

			Eventually(dispatched).Should(Receive(Equal("notify")))
		})

		It("returns an error for an unknown process", func() {
			startEngine(order())

			_, err := engine.CreateProcessInstance(ctx, "<unknown>", nil)
			Expect(err).Should(HaveOccurred())
		})
	})

	Describe("func SendTrigger()", func() {
		It("creates a new instance when a start event is triggered without an instance ID", func() {
			startEngine(order())

			err := engine.SendTrigger(ctx, "<process-key>", "start", "", nil)
			Expect(err).ShouldNot(HaveOccurred())

			err = engine.SendTrigger(ctx, "<process-key>", "recv", "", nil)
			Expect(err).To(MatchError(
				"can not trigger node recv without an instance ID, it is not a start event",
			))
		})

		It("returns an error for an unknown node", func() {
			startEngine(order())

			err := engine.SendTrigger(ctx, "<process-key>", "<unknown>", "", nil)
			Expect(err).To(BeAssignableToTypeOf(node.UnknownTargetError{}))
		})
	})

	Describe("func RaiseSignal()", func() {
		It("starts an instance of every process that begins with a matching signal", func() {
			p := definition.MustNewProcess(
				"<signal-process-key>",
				&definition.FlowNode{
					ID:   "start",
					Kind: definition.StartEvent,
					Event: &definition.EventSpec{
						Kind: definition.EventSignal,
						Name: "<order-placed>",
					},
					Outgoing: []string{"notify"},
				},
				&definition.FlowNode{ID: "notify", Kind: definition.SendTask, Incoming: []string{"start"}, Outgoing: []string{"end"}},
				&definition.FlowNode{ID: "end", Kind: definition.EndEvent, Incoming: []string{"notify"}},
			)

			startEngine(order(), p)

			err := engine.RaiseSignal(ctx, "<order-placed>", []byte("<payload>"))
			Expect(err).ShouldNot(HaveOccurred())

			Eventually(dispatched).Should(Receive(Equal("notify")))
		})

		It("does not start an instance for an unrelated signal", func() {
			startEngine(order())

			err := engine.RaiseSignal(ctx, "<unrelated>", nil)
			Expect(err).ShouldNot(HaveOccurred())

			Consistently(dispatched).ShouldNot(Receive())
		})
	})

	When("the concurrency limit is one", func() {
		It("resolves an event race without waiting out the deactivation timeout", func() {
			p := definition.MustNewProcess(
				"<race-process-key>",
				&definition.FlowNode{ID: "start", Kind: definition.StartEvent, Outgoing: []string{"race"}},
				&definition.FlowNode{ID: "race", Kind: definition.EventBasedGateway, Incoming: []string{"start"}, Outgoing: []string{"left", "right"}},
				&definition.FlowNode{ID: "left", Kind: definition.IntermediateCatchEvent, Incoming: []string{"race"}, Outgoing: []string{"notify"}},
				&definition.FlowNode{ID: "right", Kind: definition.IntermediateCatchEvent, Incoming: []string{"race"}, Outgoing: []string{"notify"}},
				&definition.FlowNode{ID: "notify", Kind: definition.SendTask, Incoming: []string{"left", "right"}, JoinThreshold: 1, Outgoing: []string{"end"}},
				&definition.FlowNode{ID: "end", Kind: definition.EndEvent, Incoming: []string{"notify"}},
			)

			dispatched = make(chan string, 10)

			engine = New(
				p,
				WithPersistence(&memorypersistence.Provider{}),
				WithDispatcher(&DispatcherStub{
					DispatchFunc: func(_ context.Context, nodeID string, _ []byte) error {
						dispatched <- nodeID
						return nil
					},
				}),
				WithConcurrencyLimit(1),
				WithDeactivationTimeout(2*time.Second),
				WithLogger(logging.DiscardLogger{}),
			)

			running = make(chan error, 1)
			go func() {
				running <- engine.Run(ctx)
			}()

			id, err := engine.CreateProcessInstance(ctx, "<race-process-key>", nil)
			Expect(err).ShouldNot(HaveOccurred())

			err = engine.SendTrigger(ctx, "<race-process-key>", "left", id, nil)
			Expect(err).ShouldNot(HaveOccurred())

			// The losing branch acquires its own concurrency slot to
			// acknowledge its deactivation, so the winner proceeds well
			// before the fan-out timeout.
			Eventually(dispatched).Should(Receive(Equal("notify")))
		})
	})

	When("a process begins with a timer start event", func() {
		It("starts a new instance when the timer fires", func() {
			p := definition.MustNewProcess(
				"<timer-process-key>",
				&definition.FlowNode{
					ID:   "start",
					Kind: definition.StartEvent,
					Event: &definition.EventSpec{
						Kind: definition.EventTimer,
						Timer: &definition.TimerSpec{
							After: 50 * time.Millisecond,
						},
					},
					Outgoing: []string{"notify"},
				},
				&definition.FlowNode{ID: "notify", Kind: definition.SendTask, Incoming: []string{"start"}, Outgoing: []string{"end"}},
				&definition.FlowNode{ID: "end", Kind: definition.EndEvent, Incoming: []string{"notify"}},
			)

			startEngine(p)

			Eventually(dispatched).Should(Receive(Equal("notify")))
		})
	})
})
