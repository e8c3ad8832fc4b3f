// Package main runs a small order-fulfilment process on a weir engine.
//
// It hosts a single process definition, starts one instance per line read
// from stdin, and logs the outbound messages the instance produces.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/millrace/weir"
	"github.com/millrace/weir/definition"
	"github.com/millrace/weir/internal/x/loggingx"
	"github.com/millrace/weir/lifecycle"
	"github.com/millrace/weir/persistence/boltpersistence"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// newContext returns a cancelable context that is canceled when the process
// receives a SIGTERM or SIGINT.
func newContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case <-ctx.Done():
		case <-sig:
			cancel()
		}
	}()

	return ctx, cancel
}

func main() {
	ctx, cancel := newContext()
	defer cancel()

	if err := run(ctx); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Println(err)
			os.Exit(1)
		}
	}
}

// newOrderProcess models the order-fulfilment flow: an inbound order is
// either auto-approved or routed through a manual review task, then a
// confirmation is dispatched.
func newOrderProcess() *definition.Process {
	return definition.MustNewProcess(
		"order-fulfilment",
		&definition.FlowNode{
			ID:       "order-received",
			Kind:     definition.StartEvent,
			Outgoing: []string{"triage"},
		},
		&definition.FlowNode{
			ID:       "triage",
			Kind:     definition.ExclusiveGateway,
			Incoming: []string{"order-received"},
			Outgoing: []string{"review", "confirm"},
			Guards: []definition.Guard{
				{
					To: "review",
					When: definition.ExpressionFunc(
						func(ctx context.Context, env definition.ExpressionEnv) (bool, error) {
							_, err := env.LoadDataObject(ctx, "requires-review")
							return err == nil, nil
						},
					),
				},
			},
			DefaultTo: "confirm",
		},
		&definition.FlowNode{
			ID:       "review",
			Kind:     definition.ReceiveTask,
			Incoming: []string{"triage"},
			Outgoing: []string{"confirm"},
		},
		&definition.FlowNode{
			ID:            "confirm",
			Kind:          definition.SendTask,
			Incoming:      []string{"triage", "review"},
			JoinThreshold: 1,
			Outgoing:      []string{"done"},
		},
		&definition.FlowNode{
			ID:       "done",
			Kind:     definition.EndEvent,
			Incoming: []string{"confirm"},
		},
	)
}

func run(ctx context.Context) error {
	store := flag.String("store", "weir-demo.boltdb", "path of the instance store")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	zcfg := zap.NewDevelopmentConfig()
	if !*debug {
		zcfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	zl, err := zcfg.Build()
	if err != nil {
		return err
	}
	defer zl.Sync()

	engine := weir.New(
		newOrderProcess(),
		weir.WithPersistence(&boltpersistence.FileProvider{
			Path: *store,
		}),
		weir.WithArchivePolicy(lifecycle.Delete),
		weir.WithTimerPollInterval(250*time.Millisecond),
		weir.WithLogger(loggingx.Zap(zl)),
	)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return engine.Run(ctx)
	})

	g.Go(func() error {
		scanner := bufio.NewScanner(os.Stdin)

		for scanner.Scan() {
			id, err := engine.CreateProcessInstance(
				ctx,
				"order-fulfilment",
				map[string]string{
					"order": scanner.Text(),
				},
			)
			if err != nil {
				return err
			}

			zl.Info("started instance", zap.String("instance_id", id))
		}

		return scanner.Err()
	})

	return g.Wait()
}
