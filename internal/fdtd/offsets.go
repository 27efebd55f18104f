package fdtd

// Canonical bit-to-neighbour-offset tables (spec.md §9, "Bit-masked
// neighbour gather"): these are the single source of truth for which
// adjacency bit corresponds to which spatial offset. A scene builder
// constructing adj_bn must agree with this ordering; the rigid-boundary
// stencil (§4.4/§4.5) and the unit tests both index through here.

// cartesianOffsets is the 6-neighbour Cartesian table, canonical order
// {+NzNy, -NzNy, +Nz, -Nz, +1, -1}.
func cartesianOffsets(nzny, nz int64) [6]int64 {
	return [6]int64{nzny, -nzny, nz, -nz, 1, -1}
}

// fccOffsets is the 12-neighbour FCC table, canonical order per spec.md
// §4.5:
//
//	{+NzNy+Nz, -NzNy-Nz, +Nz+1, -Nz-1, +NzNy+1, -NzNy-1,
//	 +NzNy-Nz, -NzNy+Nz, +Nz-1, -Nz+1, +NzNy-1, -NzNy+1}
func fccOffsets(nzny, nz int64) [12]int64 {
	return [12]int64{
		nzny + nz, -nzny - nz,
		nz + 1, -nz - 1,
		nzny + 1, -nzny - 1,
		nzny - nz, -nzny + nz,
		nz - 1, -nz + 1,
		nzny - 1, -nzny + 1,
	}
}

// popcount16 is Kernighan's bit-clear loop over a 16-bit adjacency word
// (spec.md §9: "any intrinsic or library popcount ... is equivalent").
func popcount16(v uint16) int {
	k := 0
	for ; v != 0; k++ {
		v &= v - 1
	}
	return k
}

// bit reports whether bit j of a 16-bit adjacency word is set, widened
// to 0/1 for the branch-free multiply used by the rigid-boundary stencil.
func bit(adj uint16, j uint) Real {
	return Real((adj >> j) & 1)
}
