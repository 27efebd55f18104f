package fdtd

import "math"

// Test-only scene builders. A box with no boundary-node registries at
// all already behaves as a fully rigid enclosure: the halo manager
// unconditionally mirrors the outer ring as a Neumann (rigid) reflection
// every sample, so "Scenario C — rigid cube" and
// "closed rigid box" invariants need no bn_ixyz/bnl_ixyz at all.

func newFreeScene(nx, ny, nz int64, l float64, scheme Scheme, nt int64) *Scene {
	npts := nx * ny * nz
	return &Scene{
		Grid:    Grid{Nx: nx, Ny: ny, Nz: nz},
		Scheme:  scheme,
		BnMask:  make([]uint8, packedMaskLen(npts)),
		InSigs:  nil,
		OutIxyz: nil,
		Nt:      nt,
		L:       l,
	}
}

func addSource(s *Scene, ix, iy, iz int64, sig []float64) {
	s.InIxyz = append(s.InIxyz, s.Grid.Index(ix, iy, iz))
	s.InSigs = append(s.InSigs, sig...)
}

func addReceiver(s *Scene, ix, iy, iz int64) {
	s.OutIxyz = append(s.OutIxyz, s.Grid.Index(ix, iy, iz))
}

// gaussianPulse returns a length-nt signal that is a Gaussian pulse of
// standard deviation sigma samples centered at n0.
func gaussianPulse(nt, n0 int64, sigma float64) []float64 {
	out := make([]float64, nt)
	for n := int64(0); n < nt; n++ {
		t := float64(n-n0) / sigma
		out[n] = math.Exp(-0.5 * t * t)
	}
	return out
}

// addAllFaceABC tags every cell of the outermost air layer (one cell in
// from the halo ring) as an ABC node with the canonical wall/edge/corner
// classification (spec.md §3 Q_bna). The halo ring itself is rewritten
// by mirrorHalo every sample and never updated by the air stencil, so
// ABC nodes placed there would have no effect.
func addAllFaceABC(s *Scene) {
	nx, ny, nz := s.Grid.Nx, s.Grid.Ny, s.Grid.Nz
	onRing := func(ix, iy, iz int64) bool {
		return ix == 1 || ix == nx-2 || iy == 1 || iy == ny-2 || iz == 1 || iz == nz-2
	}
	classify := func(ix, iy, iz int64) int8 {
		q := int8(0)
		if ix == 1 || ix == nx-2 {
			q++
		}
		if iy == 1 || iy == ny-2 {
			q++
		}
		if iz == 1 || iz == nz-2 {
			q++
		}
		return q
	}
	for ix := int64(1); ix < nx-1; ix++ {
		for iy := int64(1); iy < ny-1; iy++ {
			for iz := int64(1); iz < nz-1; iz++ {
				if !onRing(ix, iy, iz) {
					continue
				}
				s.BnaIxyz = append(s.BnaIxyz, s.Grid.Index(ix, iy, iz))
				s.QBna = append(s.QBna, classify(ix, iy, iz))
			}
		}
	}
}

func energy(buf []Real) float64 {
	sum := 0.0
	for _, v := range buf {
		sum += float64(v) * float64(v)
	}
	return sum
}

// addInteriorRigidPartition marks a two-cell-thick rigid membrane
// spanning the full interior cross-section at ix in {midX, midX+1},
// splitting the box into two acoustically isolated chambers. This is
// the "arbitrary embedded rigid geometry" case of spec.md §4.4, which
// the halo manager's implicit six-face enclosure cannot represent: a
// partition interior to the domain, not the domain's own outer ring.
//
// A membrane cell's adjacency bit toward its partner layer is cleared
// (the two layers never read each other's state), while every other
// direction — including neighbours within the same layer — stays set.
// The midX layer therefore follows the chamber on its -x side, while the
// midX+1 layer reads only itself and the chamber on its +x side: absent
// a source on that side, it and that chamber stay exactly zero, which is
// what isolates the two chambers.
func addInteriorRigidPartition(s *Scene, midX int64) {
	nx, ny, nz := s.Grid.Nx, s.Grid.Ny, s.Grid.Nz
	if midX < 1 || midX+1 >= nx-1 {
		panic("addInteriorRigidPartition: midX too close to the domain edge")
	}
	for _, ix := range [2]int64{midX, midX + 1} {
		partner := midX + (midX - ix) + 1 // midX -> midX+1, midX+1 -> midX
		var adj uint16 = 1<<2 | 1<<3 | 1<<4 | 1<<5
		if ix < partner {
			adj |= 1 << 1 // -x neighbour (away from the membrane) stays set
		} else {
			adj |= 1 << 0 // +x neighbour (away from the membrane) stays set
		}
		for iy := int64(1); iy < ny-1; iy++ {
			for iz := int64(1); iz < nz-1; iz++ {
				s.BnIxyz = append(s.BnIxyz, s.Grid.Index(ix, iy, iz))
				s.AdjBn = append(s.AdjBn, adj)
			}
		}
	}
	s.BnMask = BuildMask(s.Grid.Npts(), s.BnIxyz, s.BnlIxyz)
}

// addLossyWallMaterial tags every cell of the outermost air layer (one
// cell in from the halo ring) as a frequency-dependent lossy boundary
// node (spec.md §4.7) using a single material with Mb RLC branches. Each
// such cell is also a rigid node with all six neighbours set, so the
// rigid pass updates it and the FD pass then corrects it; cells on the
// halo ring itself would be rewritten by mirrorHalo every sample.
func addLossyWallMaterial(s *Scene, mat Material) {
	nx, ny, nz := s.Grid.Nx, s.Grid.Ny, s.Grid.Nz
	onRing := func(ix, iy, iz int64) bool {
		return ix == 1 || ix == nx-2 || iy == 1 || iy == ny-2 || iz == 1 || iz == nz-2
	}
	s.Materials = []Material{mat}
	for ix := int64(1); ix < nx-1; ix++ {
		for iy := int64(1); iy < ny-1; iy++ {
			for iz := int64(1); iz < nz-1; iz++ {
				if !onRing(ix, iy, iz) {
					continue
				}
				s.BnIxyz = append(s.BnIxyz, s.Grid.Index(ix, iy, iz))
				s.AdjBn = append(s.AdjBn, 0x3f)
				s.BnlIxyz = append(s.BnlIxyz, s.Grid.Index(ix, iy, iz))
				s.SsafBnl = append(s.SsafBnl, 1.0)
				s.MatBnl = append(s.MatBnl, 0)
			}
		}
	}
	s.BnMask = BuildMask(s.Grid.Npts(), s.BnIxyz, s.BnlIxyz)
}
