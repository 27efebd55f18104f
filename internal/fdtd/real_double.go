//go:build fdtd_double

package fdtd

// Real is the working precision of the interior solver; this build tag
// selects double precision throughout the field buffers and stencil
// coefficients.
type Real = float64
