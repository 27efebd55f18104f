package fdtd

// mirrorHalo patches the one-cell outer ring of buf (U_prev) at all six
// faces so the following air-stencil pass sees a Neumann (rigid outer
// wall) reflection, per spec.md §4.2. Faces are patched iz first, then
// iy, then ix, so that edge/corner cells end up with the last writer's
// value.
//
// The folded FCC scheme (scheme == SchemeFCCFolded) mirrors the
// iy=Ny-1 face from iy=Ny-2 (not Ny-3) BEFORE the iz mirroring, and
// suppresses the normal iy=Ny-1 pass — this reflects the half-offset
// grid and is load-bearing (spec.md §9 Open Questions: "treat it as
// load-bearing and preserve it verbatim").
func mirrorHalo(p *pool, buf []Real, g Grid, scheme Scheme) {
	nzny := g.NzNy()
	nx, ny, nz := g.Nx, g.Ny, g.Nz

	if scheme == SchemeFCCFolded {
		p.Run(nx, func(loX, hiX int64) {
			for ix := loX; ix < hiX; ix++ {
				base := ix * nzny
				for iz := int64(0); iz < nz; iz++ {
					buf[base+(ny-1)*nz+iz] = buf[base+(ny-2)*nz+iz]
				}
			}
		})
	}

	// iz faces.
	p.Run(nx, func(loX, hiX int64) {
		for ix := loX; ix < hiX; ix++ {
			base := ix * nzny
			for iy := int64(0); iy < ny; iy++ {
				row := base + iy*nz
				buf[row+0] = buf[row+2]
				buf[row+nz-1] = buf[row+nz-3]
			}
		}
	})

	// iy=0 face.
	p.Run(nx, func(loX, hiX int64) {
		for ix := loX; ix < hiX; ix++ {
			base := ix * nzny
			for iz := int64(0); iz < nz; iz++ {
				buf[base+0*nz+iz] = buf[base+2*nz+iz]
			}
		}
	})

	// iy=Ny-1 face, suppressed for the folded FCC scheme (already
	// handled above from the Ny-2 plane instead of Ny-3).
	if scheme != SchemeFCCFolded {
		p.Run(nx, func(loX, hiX int64) {
			for ix := loX; ix < hiX; ix++ {
				base := ix * nzny
				for iz := int64(0); iz < nz; iz++ {
					buf[base+(ny-1)*nz+iz] = buf[base+(ny-3)*nz+iz]
				}
			}
		})
	}

	// ix faces.
	p.Run(ny, func(loY, hiY int64) {
		for iy := loY; iy < hiY; iy++ {
			for iz := int64(0); iz < nz; iz++ {
				buf[0*nzny+iy*nz+iz] = buf[2*nzny+iy*nz+iz]
				buf[(nx-1)*nzny+iy*nz+iz] = buf[(nx-3)*nzny+iy*nz+iz]
			}
		}
	})
}
