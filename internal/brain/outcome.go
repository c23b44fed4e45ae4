package brain

// Outcome is a stage result that records whether the model output could be
// used. A degraded outcome carries the stage's default value and the reason
// interpretation failed; it is never reported as an error.
type Outcome[T any] struct {
	Value    T
	Degraded bool
	Reason   string
}

func parsed[T any](v T) Outcome[T] {
	return Outcome[T]{Value: v}
}

func degraded[T any](v T, reason string) Outcome[T] {
	return Outcome[T]{Value: v, Degraded: true, Reason: reason}
}
