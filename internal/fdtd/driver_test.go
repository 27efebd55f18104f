package fdtd

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/tobanteAudio/pffdtd/internal/progress"
)

func TestRunNtZeroReturnsEmptySeries(t *testing.T) {
	s := newFreeScene(8, 8, 8, 0.5, SchemeCartesian, 0)
	addReceiver(s, 4, 4, 4)
	res, err := Run(s, Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.ReceiverSeries) != 0 {
		t.Fatalf("expected empty series, got %d samples", len(res.ReceiverSeries))
	}
}

func TestZeroInputZeroOutput(t *testing.T) {
	nt := int64(20)
	s := newFreeScene(10, 10, 10, 0.4, SchemeCartesian, nt)
	addReceiver(s, 5, 5, 5)
	res, err := Run(s, Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	for n, v := range res.ReceiverSeries {
		if v != 0 {
			t.Fatalf("sample %d: got %v, want 0", n, v)
		}
	}
}

func TestPureAirStencilNoBoundaries(t *testing.T) {
	// Nb=Nbl=Nba=0 with an all-interior source reduces to pure air
	// stencil (spec.md §8 "Boundary behaviours").
	nt := int64(5)
	s := newFreeScene(12, 12, 12, 0.5, SchemeCartesian, nt)
	sig := make([]float64, nt)
	sig[0] = 1.0
	addSource(s, 6, 6, 6, sig)
	addReceiver(s, 7, 6, 6)

	res, err := Run(s, Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.ReceiverSeries) != int(nt) {
		t.Fatalf("unexpected series length %d", len(res.ReceiverSeries))
	}
	// The pulse cannot reach a neighbour one cell away before the
	// second sample (leapfrog stencil couples nearest neighbours per
	// step), so sample 0 must be exactly zero.
	if res.ReceiverSeries[0] != 0 {
		t.Fatalf("sample 0 should be unexcited, got %v", res.ReceiverSeries[0])
	}
}

func TestMaterialZeroBranchesBaseCorrectionOnly(t *testing.T) {
	// Mb[k]=0 reduces FD-boundary to pure base correction (Step 1 only).
	u0b := []Real{0.8}
	u2b := []Real{0.2}
	ssaf := []Real{1.0}
	matBnl := []int8{0}
	materials := []Material{{Mb: 0, Beta: 1.5, Quads: nil}}
	vh1 := []Real{}
	gh1 := []Real{}
	lo2 := Real(0.1)

	pl := newPool(1)
	fdBoundaryStep(pl, u0b, u2b, ssaf, matBnl, materials, vh1, gh1, lo2)

	lo2Kb := lo2 * ssaf[0] * materials[0].Beta
	want := (Real(0.8) + lo2Kb*Real(0.2)) / (1 + lo2Kb)
	if diff := float64(u0b[0] - want); math.Abs(diff) > 1e-6 {
		t.Fatalf("got %v, want %v", u0b[0], want)
	}
}

func TestClosedRigidBoxEnergyBounded(t *testing.T) {
	// Invariant 1: energy of an un-driven closed rigid box (no ABC, no
	// sources, random initial field) is bounded for all n.
	rng := rand.New(rand.NewSource(1))
	nx, ny, nz := int64(10), int64(10), int64(10)
	nt := int64(300)
	s := newFreeScene(nx, ny, nz, 0.3, SchemeCartesian, nt)

	st := newState(nx*ny*nz, 0, 0)
	for i := range st.buf[0] {
		v := Real(rng.Float64()*2 - 1)
		st.buf[0][i] = v
		st.buf[1][i] = v
	}
	e0 := energy(st.buf[0])

	pl := newPool(2)
	d := deriveCoefficients(s.L, s.Scheme)
	maxEnergy := e0
	for n := int64(0); n < nt; n++ {
		cur, prev := st.cur(), st.prev()
		mirrorHalo(pl, prev, s.Grid, s.Scheme)
		airStep(pl, cur, prev, s.BnMask, s.Grid, s.Scheme, d.a1, d.a2)
		st.rotate()
		e := energy(st.prev())
		if e > maxEnergy {
			maxEnergy = e
		}
	}
	// Bounded: never blows up to more than a small constant multiple of
	// the initial energy over this many steps at a stable Courant number.
	if maxEnergy > 50*e0 {
		t.Fatalf("energy grew unbounded: e0=%v max=%v", e0, maxEnergy)
	}
}

func TestLinearity(t *testing.T) {
	nt := int64(40)
	build := func(sig []float64) *Scene {
		s := newFreeScene(12, 12, 12, 0.5, SchemeCartesian, nt)
		addSource(s, 6, 6, 6, sig)
		addReceiver(s, 8, 6, 6)
		return s
	}
	sig1 := gaussianPulse(nt, 5, 2)
	sig2 := gaussianPulse(nt, 10, 3)
	alpha, beta := 1.7, -0.4

	r1, err := Run(build(sig1), Options{})
	if err != nil {
		t.Fatal(err)
	}
	r2, err := Run(build(sig2), Options{})
	if err != nil {
		t.Fatal(err)
	}
	mixed := make([]float64, nt)
	for n := range mixed {
		mixed[n] = alpha*sig1[n] + beta*sig2[n]
	}
	rMixed, err := Run(build(mixed), Options{})
	if err != nil {
		t.Fatal(err)
	}
	for n := int64(0); n < nt; n++ {
		want := alpha*r1.ReceiverSeries[n] + beta*r2.ReceiverSeries[n]
		got := rMixed.ReceiverSeries[n]
		// Real defaults to float32, so superposition holds only to
		// single-precision rounding of a series peaking near 0.25.
		if math.Abs(got-want) > 1e-6 {
			t.Fatalf("sample %d: got %v, want %v", n, got, want)
		}
	}
}

func TestTimeInvariance(t *testing.T) {
	nt := int64(60)
	shift := int64(7)
	build := func(sig []float64) *Scene {
		s := newFreeScene(12, 12, 12, 0.5, SchemeCartesian, nt)
		addSource(s, 6, 6, 6, sig)
		addReceiver(s, 8, 7, 6)
		return s
	}
	sig := gaussianPulse(nt, 5, 2)
	shifted := make([]float64, nt)
	for n := int64(0); n < nt; n++ {
		if n-shift >= 0 {
			shifted[n] = sig[n-shift]
		}
	}

	r, err := Run(build(sig), Options{})
	if err != nil {
		t.Fatal(err)
	}
	rShifted, err := Run(build(shifted), Options{})
	if err != nil {
		t.Fatal(err)
	}
	for n := int64(0); n < nt-shift; n++ {
		want := r.ReceiverSeries[n]
		got := rShifted.ReceiverSeries[n+shift]
		if math.Abs(got-want) > 1e-9 {
			t.Fatalf("sample %d: got %v, want %v", n, got, want)
		}
	}
}

func TestReciprocity(t *testing.T) {
	nt := int64(50)
	sig := gaussianPulse(nt, 5, 2)
	build := func(srcX, recX int64) *Scene {
		s := newFreeScene(14, 10, 10, 0.45, SchemeCartesian, nt)
		addSource(s, srcX, 5, 5, sig)
		addReceiver(s, recX, 5, 5)
		return s
	}
	r1, err := Run(build(4, 9), Options{})
	if err != nil {
		t.Fatal(err)
	}
	r2, err := Run(build(9, 4), Options{})
	if err != nil {
		t.Fatal(err)
	}
	for n := int64(0); n < nt; n++ {
		if math.Abs(r1.ReceiverSeries[n]-r2.ReceiverSeries[n]) > 1e-6 {
			t.Fatalf("sample %d: swapped source/receiver disagree: %v vs %v", n, r1.ReceiverSeries[n], r2.ReceiverSeries[n])
		}
	}
}

func TestABCAbsorptionScenarioB(t *testing.T) {
	nt := int64(200)
	s := newFreeScene(16, 16, 16, 0.4, SchemeCartesian, nt)
	addAllFaceABC(s)
	sig := gaussianPulse(nt, 10, 4)
	addSource(s, 8, 8, 8, sig)
	addReceiver(s, 10, 8, 8)

	var lastSample progress.Sample
	res, err := Run(s, Options{OnSample: func(sm progress.Sample) { lastSample = sm }})
	if err != nil {
		t.Fatal(err)
	}
	_ = lastSample
	pulseEnergy := 0.0
	for n := int64(0); n < 30; n++ {
		pulseEnergy += res.ReceiverSeries[n] * res.ReceiverSeries[n]
	}
	tailEnergy := 0.0
	for n := nt - 30; n < nt; n++ {
		tailEnergy += res.ReceiverSeries[n] * res.ReceiverSeries[n]
	}
	if pulseEnergy == 0 {
		t.Fatal("pulse never excited the receiver")
	}
	if tailEnergy > 0.1*pulseEnergy {
		t.Fatalf("ABC did not sufficiently absorb: pulse=%v tail=%v", pulseEnergy, tailEnergy)
	}
}

func TestContractViolationOutOfRangeIndex(t *testing.T) {
	s := newFreeScene(8, 8, 8, 0.5, SchemeCartesian, 5)
	s.InIxyz = []int64{99999}
	s.InSigs = make([]float64, 5)
	_, err := Run(s, Options{})
	if err == nil {
		t.Fatal("expected ContractViolation, got nil")
	}
	var cv *ContractViolation
	if !errors.As(err, &cv) {
		t.Fatalf("expected *ContractViolation, got %T: %v", err, err)
	}
}
