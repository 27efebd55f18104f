package fdtd

import "fmt"

// ContractViolation is returned when a Scene violates an invariant the
// engine relies on: out-of-range index, Mb[k] > MMb, or a non-finite
// coefficient (spec.md §7). It is always fatal — the engine never
// attempts to run a Scene that fails validation.
type ContractViolation struct {
	Field  string
	Reason string
}

func (e *ContractViolation) Error() string {
	return fmt.Sprintf("fdtd: contract violation in %s: %s", e.Field, e.Reason)
}

// NumericalWarning records a non-finite sample observed during the run.
// It does not stop the simulation (spec.md §7: "engine SHOULD continue,
// MAY log"); it is surfaced through the progress callback instead of a
// returned error.
type NumericalWarning struct {
	Sample    int64
	ReceiverN int
}

func (e *NumericalWarning) Error() string {
	return fmt.Sprintf("fdtd: non-finite sample at n=%d, receiver %d", e.Sample, e.ReceiverN)
}
