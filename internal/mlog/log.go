package mlog

import (
	"fmt"
	"time"

	"github.com/dogmatiq/dodeca/logging"
	"github.com/millrace/weir/envelope"
)

// LogConsume logs a message indicating that a node message is being consumed.
func LogConsume(
	log logging.Logger,
	env *envelope.Envelope,
	fc uint,
) {
	logging.LogString(
		log,
		String(
			[]IconWithLabel{
				MessageIDIcon.WithID(env.MessageID),
				CausationIDIcon.WithID(env.CausationID),
				CorrelationIDIcon.WithID(env.CorrelationID),
			},
			[]Icon{
				ConsumeIcon,
				retryIcon(fc),
			},
			env.Kind.String(),
			describe(env),
		),
	)
}

// LogProduce logs a message indicating that a node message is being produced.
func LogProduce(
	log logging.Logger,
	env *envelope.Envelope,
) {
	logging.LogString(
		log,
		String(
			[]IconWithLabel{
				MessageIDIcon.WithID(env.MessageID),
				CausationIDIcon.WithID(env.CausationID),
				CorrelationIDIcon.WithID(env.CorrelationID),
			},
			[]Icon{
				ProduceIcon,
				"",
			},
			env.Kind.String(),
			describe(env),
		),
	)
}

// LogDrop logs a message indicating that a message has been discarded without
// being handled because its target is already in the given state.
func LogDrop(
	log logging.Logger,
	env *envelope.Envelope,
	state string,
) {
	logging.DebugString(
		log,
		String(
			[]IconWithLabel{
				MessageIDIcon.WithID(env.MessageID),
				CausationIDIcon.WithID(env.CausationID),
				CorrelationIDIcon.WithID(env.CorrelationID),
			},
			[]Icon{
				DropIcon,
				"",
			},
			env.Kind.String(),
			describe(env),
			fmt.Sprintf("target is already %s", state),
		),
	)
}

// LogFailure logs a message indicating that handling a message has failed and
// will be retried.
func LogFailure(
	log logging.Logger,
	env *envelope.Envelope,
	cause error,
	delay time.Duration,
) {
	logging.LogString(
		log,
		String(
			[]IconWithLabel{
				MessageIDIcon.WithID(env.MessageID),
				CausationIDIcon.WithID(env.CausationID),
				CorrelationIDIcon.WithID(env.CorrelationID),
			},
			[]Icon{
				ConsumeErrorIcon,
				ErrorIcon,
			},
			env.Kind.String(),
			cause.Error(),
			fmt.Sprintf("next retry in %s", delay),
		),
	)
}

// describe renders the node and instance a message is addressed to.
func describe(env *envelope.Envelope) string {
	return fmt.Sprintf(
		"node %s of instance %s",
		env.NodeID,
		FormatID(env.InstanceID),
	)
}

// retryIcon returns the icon to use in place of the "consume" icon for the
// given failure count.
func retryIcon(fc uint) Icon {
	if fc == 0 {
		return ""
	}

	return RetryIcon
}
