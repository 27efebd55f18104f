// Package fdtd implements the 3-D room-acoustics finite-difference
// time-domain core: grid indexing, the halo manager, the interior air
// stencil, the rigid and frequency-dependent boundary subsystems, the
// absorbing boundary condition, and the driver loop that composes them
// into Run. Scene loading, CLI handling, progress printing, and output
// serialization are external collaborators (spec.md §1) living in
// sibling packages.
package fdtd

import (
	"math"
	"time"

	"github.com/tobanteAudio/pffdtd/internal/progress"
)

// Options configures a Run beyond the Scene itself.
type Options struct {
	// Workers is the worker-count hint (spec.md §6); <= 0 uses
	// runtime.GOMAXPROCS(0).
	Workers int
	// OnSample, if non-nil, is invoked once per simulated step
	// (spec.md §9 "Progress reporting").
	OnSample progress.Callback

	// FieldSnapshot requests that each progress.Sample carry a copy of
	// the full pressure buffer, for internal/viz's live viewer. Costs
	// one allocation and Npts conversions per sample, so it defaults
	// to off.
	FieldSnapshot bool
}

// Result is the output of Run: the receiver time series and summary
// timings (spec.md §6).
type Result struct {
	// ReceiverSeries is length Nr*Nt, time-major per receiver:
	// ReceiverSeries[nr*Nt+n].
	ReceiverSeries []float64
	Timings        progress.Timings
}

// Run advances the wave equation for scene.Nt time steps and produces a
// time series at each receiver (spec.md §1/§6). It validates scene
// first; any invariant violation is returned as a *ContractViolation
// and no simulation is attempted.
func Run(scene *Scene, opts Options) (Result, error) {
	if err := scene.Validate(); err != nil {
		return Result{}, err
	}

	g := scene.Grid
	npts := g.Npts()
	nbl := int64(len(scene.BnlIxyz))
	nba := int64(len(scene.BnaIxyz))
	nr := len(scene.OutIxyz)
	nt := scene.Nt

	st := newState(npts, nbl, nba)
	pl := newPool(opts.Workers)
	d := deriveCoefficients(scene.L, scene.Scheme)

	result := Result{ReceiverSeries: make([]float64, int64(nr)*nt)}
	if nt == 0 {
		return result, nil
	}

	start := time.Now()
	var airTotal, boundaryTotal time.Duration

	for n := int64(0); n < nt; n++ {
		sampleStart := time.Now()

		cur, prev := st.cur(), st.prev()

		// 1. Snapshot ABC shadow before any other update this sample.
		snapshotABC(pl, cur, scene.BnaIxyz, st.u2ba)

		// 2. Halo mirror on U_prev.
		mirrorHalo(pl, prev, g, scene.Scheme)

		// 3. Air stencil.
		airStart := time.Now()
		airStep(pl, cur, prev, scene.BnMask, g, scene.Scheme, d.a1, d.a2)
		airElapsedSample := time.Since(airStart)
		airTotal += airElapsedSample

		// 4. ABC correction.
		boundaryStart := time.Now()
		abcStep(pl, cur, scene.BnaIxyz, scene.QBna, st.u2ba, scene.L)

		// 5. Rigid-boundary stencil.
		rigidStep(pl, cur, prev, scene.BnIxyz, scene.AdjBn, g, scene.Scheme, d.a2, d.sl2)

		// 6. FD-boundary integrator: read cur at bnl_ixyz into u0b, run,
		// write back.
		u0b := st.u0b()
		pl.Run(nbl, func(lo, hi int64) {
			for nb := lo; nb < hi; nb++ {
				u0b[nb] = cur[scene.BnlIxyz[nb]]
			}
		})
		fdBoundaryStep(pl, u0b, st.u2b(), scene.SsafBnl, scene.MatBnl, scene.Materials, st.vh1, st.gh1, d.lo2)
		pl.Run(nbl, func(lo, hi int64) {
			for nb := lo; nb < hi; nb++ {
				cur[scene.BnlIxyz[nb]] = u0b[nb]
			}
		})
		boundaryElapsedSample := time.Since(boundaryStart)
		boundaryTotal += boundaryElapsedSample

		// 7. Receiver readout: spec.md §9 Open Questions preserves
		// reading U_prev here (before this sample's source injection and
		// buffer rotation) rather than U_curr.
		nonFinite := false
		nonFiniteReceiver := -1
		for ri := 0; ri < nr; ri++ {
			v := float64(prev[scene.OutIxyz[ri]])
			result.ReceiverSeries[int64(ri)*nt+n] = v
			if !nonFinite && (math.IsNaN(v) || math.IsInf(v, 0)) {
				nonFinite = true
				nonFiniteReceiver = ri
			}
		}

		// 8. Source injection.
		ns := len(scene.InIxyz)
		for s := 0; s < ns; s++ {
			cur[scene.InIxyz[s]] += Real(scene.InSigs[int64(s)*nt+n])
		}

		// 9. Rotate buffers and lossy shadow.
		st.rotate()

		if opts.OnSample != nil {
			now := time.Now()
			sample := progress.Sample{
				N:                     n,
				Elapsed:               now.Sub(start),
				ElapsedSample:         now.Sub(sampleStart),
				AirElapsed:            airTotal,
				AirElapsedSample:      airElapsedSample,
				BoundaryElapsed:       boundaryTotal,
				BoundaryElapsedSample: boundaryElapsedSample,
				NonFinite:             nonFinite,
				NonFiniteReceiver:     nonFiniteReceiver,
			}
			if opts.FieldSnapshot {
				field := make([]float64, len(st.prev()))
				for i, v := range st.prev() {
					field[i] = float64(v)
				}
				sample.Field = field
			}
			opts.OnSample(sample)
		}
	}

	total := time.Since(start)
	voxPerSec := 0.0
	if total > 0 {
		voxPerSec = float64(npts*nt) / total.Seconds()
	}
	result.Timings = progress.Timings{
		Total:           total,
		Air:             airTotal,
		Boundary:        boundaryTotal,
		VoxelsPerSecond: voxPerSec,
	}
	return result, nil
}
