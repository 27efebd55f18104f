package fdtd

// snapshotABC captures U_curr at every ABC node into u2ba before any
// other phase runs this sample (spec.md §4.1 step 1); this is the value
// abcStep reads back as "the pressure before any other update."
func snapshotABC(p *pool, cur []Real, bnaIxyz []int64, u2ba []Real) {
	p.Run(int64(len(bnaIxyz)), func(lo, hi int64) {
		for nb := lo; nb < hi; nb++ {
			u2ba[nb] = cur[bnaIxyz[nb]]
		}
	})
}

// abcStep applies the first-order Engquist-Majda absorbing correction
// at every ABC node (spec.md §4.6), dissipatively scaled by Q (1=wall,
// 2=edge, 3=corner).
func abcStep(p *pool, cur []Real, bnaIxyz []int64, qBna []int8, u2ba []Real, l float64) {
	p.Run(int64(len(bnaIxyz)), func(lo, hi int64) {
		for nb := lo; nb < hi; nb++ {
			lQ := l * float64(qBna[nb])
			ib := bnaIxyz[nb]
			cur[ib] = Real((float64(cur[ib]) + lQ*float64(u2ba[nb])) / (1 + lQ))
		}
	})
}
