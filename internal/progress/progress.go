// Package progress defines the per-sample timing callback the driver
// loop invokes once per simulated sample (spec.md §9: "the per-sample
// timing print is out of core scope and SHOULD be a callback interface
// the driver invokes at each sample"). This generalizes the teacher's
// CPU-profile hook (profiling.go's startDefaultPGORecording) from a
// one-shot profiling toggle into a continuous per-sample observer.
package progress

import "time"

// Sample is reported once per simulated time step.
type Sample struct {
	N int64 // sample index, 0 <= N < Nt

	Elapsed       time.Duration // wall time since the run started
	ElapsedSample time.Duration // wall time for this sample alone

	AirElapsed       time.Duration // cumulative air-phase wall time
	AirElapsedSample time.Duration // air-phase wall time for this sample

	BoundaryElapsed       time.Duration // cumulative boundary-phase wall time
	BoundaryElapsedSample time.Duration // boundary-phase wall time for this sample

	// NonFinite reports a NumericalWarning (spec.md §7): a receiver
	// sample this step was NaN or +/-Inf. The run continues regardless.
	NonFinite bool

	// NonFiniteReceiver is the index of the first receiver observed
	// non-finite this sample, or -1 when NonFinite is false.
	NonFiniteReceiver int

	// Field is a snapshot of the full pressure buffer for this sample,
	// present only when Options.FieldSnapshot was set (internal/viz's
	// live viewer is the only consumer; the CLI leaves this nil to
	// avoid the copy on every step).
	Field []float64
}

// Callback receives one Sample per simulated step. Sample.Field, when
// present, is a fresh copy made for that call, so a callback may keep it.
type Callback func(Sample)

// Timings summarizes a completed run (spec.md §6): total wall time,
// air-phase wall time, boundary-phase wall time, and derived throughput.
type Timings struct {
	Total    time.Duration
	Air      time.Duration
	Boundary time.Duration

	// VoxelsPerSecond is Npts*Nt / Total.Seconds().
	VoxelsPerSecond float64
}
