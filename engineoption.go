package weir

import (
	"fmt"
	"runtime"
	"time"

	"github.com/dogmatiq/dodeca/logging"
	"github.com/dogmatiq/linger"
	"github.com/dogmatiq/linger/backoff"
	"github.com/millrace/weir/definition"
	"github.com/millrace/weir/eventdef"
	"github.com/millrace/weir/lifecycle"
	"github.com/millrace/weir/persistence"
	"github.com/millrace/weir/persistence/boltpersistence"
)

var (
	// DefaultPersistenceProvider is the default persistence provider.
	//
	// It is overridden by the WithPersistence() option.
	DefaultPersistenceProvider persistence.Provider = &boltpersistence.FileProvider{
		Path: "/var/run/weir.boltdb",
	}

	// DefaultMessageTimeout is the default duration the engine allows for
	// the handling of a single message by a flow node.
	//
	// It is overridden by the WithMessageTimeout() option.
	DefaultMessageTimeout = 5 * time.Second

	// DefaultMessageBackoff is the default backoff strategy for message
	// handling retries.
	//
	// It is overridden by the WithMessageBackoff() option.
	DefaultMessageBackoff backoff.Strategy = backoff.WithTransforms(
		backoff.Exponential(100*time.Millisecond),
		linger.FullJitter,
		linger.Limiter(0, 1*time.Hour),
	)

	// DefaultConcurrencyLimit is the default number of messages to handle
	// concurrently.
	//
	// It is overridden by the WithConcurrencyLimit() option.
	DefaultConcurrencyLimit = uint(runtime.GOMAXPROCS(0) * 2)

	// DefaultDeactivationTimeout is the default duration the engine allows
	// for a deactivation fan-out to be acknowledged by its targets.
	//
	// It is overridden by the WithDeactivationTimeout() option.
	DefaultDeactivationTimeout = 5 * time.Second

	// DefaultTerminationTimeout is the default duration the engine allows
	// for the fan-out of a Terminate event to be acknowledged. It is
	// tighter than the general deactivation timeout because a terminating
	// instance addresses every node at once.
	//
	// It is overridden by the WithTerminationTimeout() option.
	DefaultTerminationTimeout = 3 * time.Second

	// DefaultTimerPollInterval is the default interval at which the engine
	// polls the data store for due timers.
	//
	// It is overridden by the WithTimerPollInterval() option.
	DefaultTimerPollInterval = 1 * time.Second

	// DefaultLogger is the default target for log messages produced by the
	// engine.
	//
	// It is overridden by the WithLogger() option.
	DefaultLogger = logging.DefaultLogger
)

// EngineOption configures the behavior of an engine.
type EngineOption func(*engineOptions)

// WithProcess returns an engine option that hosts an additional process
// definition on the engine.
//
// There must always be at least one process specified either by using
// WithProcess(), the p parameter to New(), or both.
func WithProcess(p *definition.Process) EngineOption {
	return func(opts *engineOptions) {
		for _, x := range opts.Processes {
			if x.Key == p.Key {
				panic(fmt.Sprintf(
					"can not host two process definitions with the key %s",
					p.Key,
				))
			}
		}

		opts.Processes = append(opts.Processes, p)
	}
}

// WithPersistence returns an engine option that sets the persistence
// provider used to store and retrieve instance state.
//
// If this option is omitted or p is nil, DefaultPersistenceProvider is used.
func WithPersistence(p persistence.Provider) EngineOption {
	return func(opts *engineOptions) {
		opts.PersistenceProvider = p
	}
}

// WithDispatcher returns an engine option that sets the adapter used to
// deliver outbound integration messages produced by send tasks, service
// tasks and message throw events.
//
// If this option is omitted or d is nil, outbound messages are discarded.
func WithDispatcher(d eventdef.Dispatcher) EngineOption {
	return func(opts *engineOptions) {
		opts.Dispatcher = d
	}
}

// WithMessageTimeout returns an engine option that sets the duration the
// engine allows for the handling of a single message by a flow node.
//
// If this option is omitted or d is zero DefaultMessageTimeout is used.
func WithMessageTimeout(d time.Duration) EngineOption {
	if d < 0 {
		panic("duration must not be negative")
	}

	return func(opts *engineOptions) {
		opts.MessageTimeout = d
	}
}

// WithMessageBackoff returns an engine option that sets the backoff
// strategy used to delay message handling retries.
//
// If this option is omitted or s is nil DefaultMessageBackoff is used.
func WithMessageBackoff(s backoff.Strategy) EngineOption {
	return func(opts *engineOptions) {
		opts.MessageBackoff = s
	}
}

// WithConcurrencyLimit returns an engine option that limits the number of
// messages that will be handled at the same time.
//
// If this option is omitted or n is zero DefaultConcurrencyLimit is used.
func WithConcurrencyLimit(n uint) EngineOption {
	return func(opts *engineOptions) {
		opts.ConcurrencyLimit = n
	}
}

// WithDeactivationTimeout returns an engine option that sets the duration
// the engine allows for a deactivation fan-out to be acknowledged by its
// targets.
//
// If this option is omitted or d is zero DefaultDeactivationTimeout is
// used.
func WithDeactivationTimeout(d time.Duration) EngineOption {
	if d < 0 {
		panic("duration must not be negative")
	}

	return func(opts *engineOptions) {
		opts.DeactivationTimeout = d
	}
}

// WithTerminationTimeout returns an engine option that sets the duration
// the engine allows for the fan-out of a Terminate event to be
// acknowledged.
//
// If this option is omitted or d is zero DefaultTerminationTimeout is
// used.
func WithTerminationTimeout(d time.Duration) EngineOption {
	if d < 0 {
		panic("duration must not be negative")
	}

	return func(opts *engineOptions) {
		opts.TerminationTimeout = d
	}
}

// WithTimerPollInterval returns an engine option that sets the interval at
// which the engine polls the data store for due timers.
//
// If this option is omitted or d is zero DefaultTimerPollInterval is used.
func WithTimerPollInterval(d time.Duration) EngineOption {
	if d < 0 {
		panic("duration must not be negative")
	}

	return func(opts *engineOptions) {
		opts.TimerPollInterval = d
	}
}

// WithArchivePolicy returns an engine option that sets the disposition of
// the records of an ended process instance.
//
// If this option is omitted, ended instances are archived.
func WithArchivePolicy(p lifecycle.Policy) EngineOption {
	return func(opts *engineOptions) {
		opts.ArchivePolicy = p
	}
}

// WithLogger returns an engine option that sets the target for log
// messages produced by the engine.
//
// If this option is omitted or l is nil DefaultLogger is used.
func WithLogger(l logging.Logger) EngineOption {
	return func(opts *engineOptions) {
		opts.Logger = l
	}
}

// engineOptions is a container for a fully-resolved set of engine options.
type engineOptions struct {
	Processes           []*definition.Process
	PersistenceProvider persistence.Provider
	Dispatcher          eventdef.Dispatcher
	MessageTimeout      time.Duration
	MessageBackoff      backoff.Strategy
	ConcurrencyLimit    uint
	DeactivationTimeout time.Duration
	TerminationTimeout  time.Duration
	TimerPollInterval   time.Duration
	ArchivePolicy       lifecycle.Policy
	Logger              logging.Logger
}

// resolveEngineOptions returns a fully-populated set of engine options
// built from the given set of option functions.
func resolveEngineOptions(options ...EngineOption) *engineOptions {
	opts := &engineOptions{}

	for _, o := range options {
		o(opts)
	}

	if len(opts.Processes) == 0 {
		panic("no process definitions configured, see weir.WithProcess()")
	}

	if opts.PersistenceProvider == nil {
		opts.PersistenceProvider = DefaultPersistenceProvider
	}

	if opts.Dispatcher == nil {
		opts.Dispatcher = discardDispatcher{}
	}

	if opts.MessageTimeout == 0 {
		opts.MessageTimeout = DefaultMessageTimeout
	}

	if opts.MessageBackoff == nil {
		opts.MessageBackoff = DefaultMessageBackoff
	}

	if opts.ConcurrencyLimit == 0 {
		opts.ConcurrencyLimit = DefaultConcurrencyLimit
	}

	if opts.DeactivationTimeout == 0 {
		opts.DeactivationTimeout = DefaultDeactivationTimeout
	}

	if opts.TerminationTimeout == 0 {
		opts.TerminationTimeout = DefaultTerminationTimeout
	}

	if opts.TimerPollInterval == 0 {
		opts.TimerPollInterval = DefaultTimerPollInterval
	}

	if opts.Logger == nil {
		opts.Logger = DefaultLogger
	}

	return opts
}
