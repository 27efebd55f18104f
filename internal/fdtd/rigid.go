package fdtd

// rigidStep overwrites cur[ii] at every rigid boundary node using the
// adjacency-masked formula of spec.md §4.4 (Cartesian, 6 offsets) or
// §4.5 (FCC, 12 offsets). adj is bit-packed per node; bit j gates
// whether offset[j] is added (branch-free multiply by 0/1, spec.md §9).
func rigidStep(p *pool, cur, prev []Real, bnIxyz []int64, adjBn []uint16, g Grid, scheme Scheme, a2, sl2 Real) {
	nzny := g.NzNy()
	nz := g.Nz

	if scheme == SchemeCartesian {
		off := cartesianOffsets(nzny, nz)
		p.Run(int64(len(bnIxyz)), func(lo, hi int64) {
			for nb := lo; nb < hi; nb++ {
				ii := bnIxyz[nb]
				adj := adjBn[nb]
				k := popcount16(adj)
				b1 := Real(2) - sl2*Real(k)
				partial := b1*prev[ii] - cur[ii]
				for j := 0; j < 6; j++ {
					partial += a2 * bit(adj, uint(j)) * prev[ii+off[j]]
				}
				cur[ii] = partial
			}
		})
		return
	}

	off := fccOffsets(nzny, nz)
	p.Run(int64(len(bnIxyz)), func(lo, hi int64) {
		for nb := lo; nb < hi; nb++ {
			ii := bnIxyz[nb]
			adj := adjBn[nb]
			k := popcount16(adj)
			b1 := Real(2) - sl2*Real(k)
			partial := b1*prev[ii] - cur[ii]
			for j := 0; j < 12; j++ {
				partial += a2 * bit(adj, uint(j)) * prev[ii+off[j]]
			}
			cur[ii] = partial
		}
	})
}
