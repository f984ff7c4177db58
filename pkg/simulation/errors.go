package simulation

import "errors"

// Usage errors are returned synchronously to the caller, they are never
// retried or swallowed by the engine.
var (
	ErrDisposed      = errors.New("world has been disposed")
	ErrNegativeCount = errors.New("number of bodies must not be negative")
	ErrNilCallback   = errors.New("creation callback must not be nil")
	ErrStopped       = errors.New("body has been stopped")
	ErrNonFinite     = errors.New("vector is not finite")
)

// ErrNumericAnomaly marks a step whose candidate position was not finite or
// left the sanity bound around the arena. Such a step is never committed.
var ErrNumericAnomaly = errors.New("numeric anomaly in body state")
