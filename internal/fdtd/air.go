package fdtd

// airStep runs the interior second-order leapfrog update (spec.md §4.3)
// over every interior cell whose bn_mask bit is clear, writing cur[ii]
// from prev[ii], cur[ii] (read as the "two steps ago" leapfrog value),
// and prev's neighbours.
func airStep(p *pool, cur, prev []Real, mask []uint8, g Grid, scheme Scheme, a1, a2 Real) {
	nzny := g.NzNy()
	nz := g.Nz
	nx, ny := g.Nx, g.Ny

	switch scheme {
	case SchemeCartesian:
		off := cartesianOffsets(nzny, nz)
		p.Run(nx-2, func(lo, hi int64) {
			for ix := lo + 1; ix < hi+1; ix++ {
				for iy := int64(1); iy < ny-1; iy++ {
					base := ix*nzny + iy*nz
					for iz := int64(1); iz < nz-1; iz++ {
						ii := base + iz
						if maskBit(mask, ii) {
							continue
						}
						partial := a1*prev[ii] - cur[ii]
						for _, o := range off {
							partial += a2 * prev[ii+o]
						}
						cur[ii] = partial
					}
				}
			}
		})
	default: // SchemeFCC, SchemeFCCFolded
		off := fccOffsets(nzny, nz)
		checker := scheme == SchemeFCC
		p.Run(nx-2, func(lo, hi int64) {
			for ix := lo + 1; ix < hi+1; ix++ {
				for iy := int64(1); iy < ny-1; iy++ {
					base := ix*nzny + iy*nz
					izStart := int64(1)
					izStep := int64(1)
					if checker {
						izStart = 2 - (ix+iy)%2
						izStep = 2
					}
					for iz := izStart; iz < nz-1; iz += izStep {
						ii := base + iz
						if maskBit(mask, ii) {
							continue
						}
						partial := a1*prev[ii] - cur[ii]
						for _, o := range off {
							partial += a2 * prev[ii+o]
						}
						cur[ii] = partial
					}
				}
			}
		})
	}
}
