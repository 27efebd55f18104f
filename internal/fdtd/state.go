package fdtd

// state holds the mutable buffers that evolve across the driver loop
// (spec.md §3 "Field arrays", "Buffer identities rotate at sample end").
//
// Rather than the teacher's raw-pointer rotation, buffer identity is
// tracked with an explicit parity bit over two owned slices (spec.md §9
// "Pointer swap / double buffering"): cur()/prev() always resolve
// through the parity, so no aliasing is possible and no pointers are
// exchanged.
type state struct {
	buf    [2][]Real // buf[parity] is U_curr, buf[1-parity] is U_prev
	parity int

	// Lossy-boundary pressure shadow, three time levels, rotated the
	// same way as buf but over three slots (spec.md §9).
	ub     [3][]Real // ub[level] indexed by (level+rot)%3
	rot    int
	vh1    []Real // len(Nbl*MMb)
	gh1    []Real // len(Nbl*MMb)
	u2ba   []Real // len(Nba), ABC shadow captured at step 1
}

func newState(npts, nbl, nba int64) *state {
	s := &state{}
	s.buf[0] = make([]Real, npts)
	s.buf[1] = make([]Real, npts)
	s.ub[0] = make([]Real, nbl)
	s.ub[1] = make([]Real, nbl)
	s.ub[2] = make([]Real, nbl)
	s.vh1 = make([]Real, nbl*MMb)
	s.gh1 = make([]Real, nbl*MMb)
	s.u2ba = make([]Real, nba)
	return s
}

// cur is U_curr: the buffer written by the current sample's phases.
func (s *state) cur() []Real { return s.buf[s.parity] }

// prev is U_prev: the buffer read as "one step ago".
func (s *state) prev() []Real { return s.buf[1-s.parity] }

// u0b/u1b/u2b are the three-level lossy pressure shadow: u0b is the
// current-time boundary pressure, u1b one step ago, u2b two steps ago.
func (s *state) u0b() []Real { return s.ub[s.rot%3] }
func (s *state) u1b() []Real { return s.ub[(s.rot+2)%3] }
func (s *state) u2b() []Real { return s.ub[(s.rot+1)%3] }

// rotate swaps U_curr/U_prev and advances the lossy-shadow rotation,
// per spec.md §4.1 step 9. It is the only place parity/rot change.
func (s *state) rotate() {
	s.parity = 1 - s.parity
	// u0b becomes next sample's u1b, u1b becomes u2b, u2b's slot is
	// freed to be overwritten as the next u0b: advancing rot by one
	// reindexes u0b()/u1b()/u2b() exactly that way.
	s.rot = (s.rot + 1) % 3
}
