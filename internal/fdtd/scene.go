package fdtd

import (
	"fmt"
	"math"
)

// MMb is the compile-time maximum number of RLC branches per material
// (spec.md §3).
const MMb = 12

// Scheme selects the interior stencil and halo-mirroring variant.
type Scheme int8

const (
	// SchemeCartesian is the 7-point stencil on an axis-aligned lattice.
	SchemeCartesian Scheme = 0
	// SchemeFCC is the 13-point checkerboard FCC stencil.
	SchemeFCC Scheme = 1
	// SchemeFCCFolded is the 13-point folded FCC stencil (halo quirk,
	// spec.md §4.2).
	SchemeFCCFolded Scheme = 2
)

// MatQuad holds one RLC branch's precomputed coefficients (b, bd, bDh,
// bFh), per spec.md §3.
type MatQuad struct {
	B, Bd, BDh, BFh Real
}

// Material is one entry of the Nm-length material registry.
type Material struct {
	// Mb is the number of RLC branches in Quads, 0 <= Mb <= MMb.
	Mb int
	// Beta is the admittance scale.
	Beta Real
	// Quads holds Mb populated branch coefficients (len(Quads) may be
	// exactly Mb or padded to MMb; only the first Mb entries are read).
	Quads []MatQuad
}

// Scene is the complete, immutable input to Run: grid geometry,
// boundary-node topology, material registry, source/receiver tables,
// and the Courant number from which Run derives the scalar coefficients
// (spec.md §3).
type Scene struct {
	Grid   Grid
	Scheme Scheme

	// Rigid boundary nodes.
	BnIxyz []int64
	AdjBn  []uint16 // len(BnIxyz); bit-packed adjacency mask

	// Lossy (frequency-dependent) boundary nodes.
	BnlIxyz []int64
	SsafBnl []Real // surface-area fraction, len(BnlIxyz)
	MatBnl  []int8 // material index per lossy node, len(BnlIxyz)

	// ABC termination nodes.
	BnaIxyz []int64
	QBna    []int8 // 1=wall, 2=edge, 3=corner; len(BnaIxyz)

	// BnMask is the packed per-cell boundary classification bitmap
	// (spec.md §3/§9): bit ii of BnMask is set iff ii appears in
	// BnIxyz or BnlIxyz.
	BnMask []uint8

	// Materials is the Nm-length material registry.
	Materials []Material

	// Sources.
	InIxyz []int64
	InSigs []float64 // len(InIxyz)*Nt, row-major by source

	// Receivers.
	OutIxyz []int64

	// Nt is the number of time steps to simulate.
	Nt int64

	// L is the Courant number (CFL parameter); always float64.
	L float64
}

// derived holds the scalar coefficients computed once from L and Scheme
// (spec.md §3: "l2, sl2, lo2, a1, a2").
type derived struct {
	l2  float64
	sl2 Real
	lo2 Real
	a1  Real
	a2  Real
}

// neighbourCount is the number of stencil neighbours for a scheme: 6 for
// Cartesian (§4.3/§4.4), 12 for either FCC variant (§4.3/§4.5). The
// rigid-boundary formula b1 = 2 - sl2*K is the same formula as a1 with
// K substituted for the full neighbour count, so a1 and a2 must agree
// with it at full connectivity.
func neighbourCount(scheme Scheme) int64 {
	if scheme == SchemeCartesian {
		return 6
	}
	return 12
}

// deriveCoefficients computes the stencil weights for a given Courant
// number and scheme: a2 is l2 in the working precision, and a1 is fixed
// by requiring a uniform interior field to be stationary under the
// leapfrog recurrence when every neighbour is present
// (a1 = 2 - a2*neighbourCount), matching the rigid-boundary stencil's
// b1 = 2 - sl2*K at K = neighbourCount.
func deriveCoefficients(l float64, scheme Scheme) derived {
	l2 := l * l
	sl2 := Real(l2)
	a1 := Real(2) - sl2*Real(neighbourCount(scheme))
	return derived{
		l2:  l2,
		sl2: sl2,
		lo2: Real(l / 2),
		a1:  a1,
		a2:  sl2,
	}
}

// Validate checks the invariants spec.md §3 requires of a Scene before
// Run may use it. Any violation is a ContractViolation (spec.md §7):
// the engine has no recoverable error path once the loop starts.
func (s *Scene) Validate() error {
	npts := s.Grid.Npts()
	if npts <= 0 {
		return &ContractViolation{"Grid", "Npts must be positive"}
	}
	if s.Nt < 0 {
		return &ContractViolation{"Nt", "must be non-negative"}
	}
	if math.IsNaN(s.L) || math.IsInf(s.L, 0) {
		return &ContractViolation{"L", "must be finite"}
	}
	if int64(len(s.BnMask)) != packedMaskLen(npts) {
		return &ContractViolation{"BnMask", "length must be ceil(Npts/8)"}
	}
	if len(s.AdjBn) != len(s.BnIxyz) {
		return &ContractViolation{"AdjBn", "length must match BnIxyz"}
	}
	if len(s.SsafBnl) != len(s.BnlIxyz) || len(s.MatBnl) != len(s.BnlIxyz) {
		return &ContractViolation{"BnlIxyz", "SsafBnl/MatBnl length mismatch"}
	}
	if len(s.QBna) != len(s.BnaIxyz) {
		return &ContractViolation{"BnaIxyz", "QBna length mismatch"}
	}
	for _, ii := range s.BnIxyz {
		if ii < 0 || ii >= npts {
			return &ContractViolation{"BnIxyz", "index out of range"}
		}
		if !maskBit(s.BnMask, ii) {
			return &ContractViolation{"BnMask", "bit clear for a rigid boundary node"}
		}
	}
	for _, ii := range s.BnlIxyz {
		if ii < 0 || ii >= npts {
			return &ContractViolation{"BnlIxyz", "index out of range"}
		}
		if !maskBit(s.BnMask, ii) {
			return &ContractViolation{"BnMask", "bit clear for a lossy boundary node"}
		}
	}
	for _, ii := range s.BnaIxyz {
		if ii < 0 || ii >= npts {
			return &ContractViolation{"BnaIxyz", "index out of range"}
		}
	}
	for _, ii := range s.InIxyz {
		if ii < 0 || ii >= npts {
			return &ContractViolation{"InIxyz", "index out of range"}
		}
	}
	for _, ii := range s.OutIxyz {
		if ii < 0 || ii >= npts {
			return &ContractViolation{"OutIxyz", "index out of range"}
		}
	}
	if len(s.InSigs) != len(s.InIxyz)*int(s.Nt) {
		return &ContractViolation{"InSigs", "length must be Ns*Nt"}
	}
	for k, m := range s.Materials {
		if m.Mb < 0 || m.Mb > MMb {
			return &ContractViolation{"Materials", materialErr(k, "Mb out of [0,MMb] range")}
		}
		if len(m.Quads) < m.Mb {
			return &ContractViolation{"Materials", materialErr(k, "Quads shorter than Mb")}
		}
		for _, q := range m.Quads[:m.Mb] {
			if !finite(q.B) || !finite(q.Bd) || !finite(q.BDh) || !finite(q.BFh) {
				return &ContractViolation{"Materials", materialErr(k, "non-finite RLC coefficient")}
			}
		}
	}
	for _, k := range s.MatBnl {
		if int(k) < 0 || int(k) >= len(s.Materials) {
			return &ContractViolation{"MatBnl", "material index out of range"}
		}
	}
	return nil
}

func finite(r Real) bool {
	f := float64(r)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func materialErr(k int, reason string) string {
	return fmt.Sprintf("material[%d]: %s", k, reason)
}
