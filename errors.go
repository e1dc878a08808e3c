package pipeline

import "errors"

// Namespace prefixes every sentinel error message in this package.
const Namespace = "pipeline"

var (
	// ErrInvalidArgument is returned by New when the mapper or reducer is
	// nil, or a buffer/worker-count option is explicitly set to zero.
	ErrInvalidArgument = errors.New(Namespace + ": invalid argument")

	// ErrPushAfterClose is returned by a bounded container's push once the
	// container has been closed.
	ErrPushAfterClose = errors.New(Namespace + ": push to closed container")

	// ErrSubmitAfterClose is returned by Dispatcher.Submit once Close has
	// been called.
	ErrSubmitAfterClose = errors.New(Namespace + ": submit after close")

	// ErrPoisoned is returned by Dispatcher.Submit once a prior mapper or
	// reducer failure has poisoned the dispatcher.
	ErrPoisoned = errors.New(Namespace + ": pipeline poisoned by a prior failure")

	// ErrInvariantViolation indicates the ordered queue released an index
	// other than the expected next-index. It cannot arise from well-formed
	// use and is only ever wrapped into a panic; see orderedqueue.go.
	ErrInvariantViolation = errors.New(Namespace + ": ordered queue invariant violated")

	// ErrMapperFailure and ErrReducerFailure tag the origin of a domain
	// error surfaced through SequenceError; see error_tagging.go.
	ErrMapperFailure  = errors.New(Namespace + ": mapper failure")
	ErrReducerFailure = errors.New(Namespace + ": reducer failure")
)
