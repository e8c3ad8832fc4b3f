// Package providertest declares generic behavioral tests that every
// persistence provider implementation must pass.
package providertest

import (
	"context"
	"time"

	"github.com/millrace/weir/persistence"
	"github.com/onsi/ginkgo/v2"
)

// In is a container for values that are provided to the provider-specific
// "before" function.
type In struct {
	// ProcessKey is the identity key of the process definition the tests open
	// a data-store for.
	ProcessKey string
}

// Out is a container for values that are provided by the provider-specific
// "before" function.
type Out struct {
	// NewProvider is a function that creates a new provider instance.
	//
	// Each call must produce a provider that shares underlying storage with
	// the others, so that exclusive locking can be observed across them.
	NewProvider func() persistence.Provider

	// TestTimeout is the maximum duration allowed for each test.
	TestTimeout time.Duration
}

// DefaultTestTimeout is the default test timeout.
const DefaultTestTimeout = 3 * time.Second

// Declare declares generic behavioral tests for a specific persistence
// provider implementation.
func Declare(
	before func(context.Context, In) Out,
	after func(),
) {
	var (
		ctx    context.Context
		cancel func()
		in     In
		out    Out
	)

	ginkgo.Context("standard provider test suite", func() {
		ginkgo.BeforeEach(func() {
			setupCtx, cancelSetup := context.WithTimeout(
				context.Background(),
				10*time.Second,
			)
			defer cancelSetup()

			in = In{
				ProcessKey: "<process>",
			}

			out = before(setupCtx, in)

			if out.TestTimeout <= 0 {
				out.TestTimeout = DefaultTestTimeout
			}

			ctx, cancel = context.WithTimeout(context.Background(), out.TestTimeout)
		})

		ginkgo.AfterEach(func() {
			if after != nil {
				after()
			}

			cancel()
		})

		declareProviderTests(&ctx, &in, &out)
		declareNodeInstanceTests(&ctx, &in, &out)
		declareProcessInstanceTests(&ctx, &in, &out)
		declareDataObjectTests(&ctx, &in, &out)
		declareTimerTests(&ctx, &in, &out)
	})
}
