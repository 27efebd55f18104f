//go:build !fdtd_double

package fdtd

// Real is the working precision of the interior solver, chosen at compile
// time. Build with -tags fdtd_double to switch to double precision; never
// mix Real and float64 inside a stencil kernel. Source signals, receiver
// output, and the Courant number l are always float64 regardless of this
// choice (widened at the ABC correction and at sample-time promotion of
// receiver output).
type Real = float32
