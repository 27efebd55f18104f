package fdtd

// fdBoundaryStep runs the frequency-dependent lossy-boundary integrator
// of spec.md §4.7 over every lossy node. u0b holds the current-time
// boundary pressure (already read from cur by the driver) and is
// updated in place; u2b is the two-steps-ago shadow. vh1/gh1 are the
// two auxiliary state scalars per (node, branch), persisted across
// samples and never touched outside this function.
//
// The two branch loops (Step 2 and Step 3) are deliberately not fused:
// Step 2 must read vh/gh as they stood after the previous sample, and
// Step 3's writes must not be visible to Step 2 (spec.md §4.7
// algorithmic note).
func fdBoundaryStep(
	p *pool,
	u0b, u2b []Real,
	ssafBnl []Real,
	matBnl []int8,
	materials []Material,
	vh1, gh1 []Real,
	lo2 Real,
) {
	nbl := int64(len(u0b))
	p.Run(nbl, func(lo, hi int64) {
		for nb := lo; nb < hi; nb++ {
			k := matBnl[nb]
			mat := materials[k]
			ssaf := ssafBnl[nb]

			lo2Kb := lo2 * ssaf * mat.Beta
			fac := 2 * lo2 * ssaf / (1 + lo2Kb)

			u0 := u0b[nb]
			u2 := u2b[nb]

			// Step 1: base correction, independent of branches.
			u0 = (u0 + lo2Kb*u2) / (1 + lo2Kb)

			branches := mat.Quads[:mat.Mb]
			base := nb * MMb

			// Step 2: branch correction, reading last sample's vh/gh.
			for m, q := range branches {
				idx := base + int64(m)
				u0 -= fac * (2*q.BDh*vh1[idx] - q.BFh*gh1[idx])
			}

			du := u0 - u2

			// Step 3: state advance; these writes must not be observed
			// by Step 2 above (hence the separate loop, per node).
			for m, q := range branches {
				idx := base + int64(m)
				vhPrev := vh1[idx]
				vhNew := q.B*du + q.Bd*vhPrev - 2*q.BFh*gh1[idx]
				gh1[idx] += (vhNew + vhPrev) / 2
				vh1[idx] = vhNew
			}

			u0b[nb] = u0
		}
	})
}
