package fdtd

import "testing"

func TestFloat16RoundTrip(t *testing.T) {
	src := []float64{0, 1, -1, 0.5, -0.5, 3.14159, -100.25, 1e-5}
	enc := make([]uint16, len(src))
	EncodeFloat16(enc, src)
	dec := make([]float64, len(src))
	DecodeFloat16(dec, enc)
	for i, want := range src {
		got := dec[i]
		diff := got - want
		if diff < 0 {
			diff = -diff
		}
		// binary16 has ~3 significant decimal digits; allow proportional error.
		tol := 0.01 * (1 + absF(want))
		if diff > tol {
			t.Errorf("index %d: got %v, want %v (diff %v > tol %v)", i, got, want, diff, tol)
		}
	}
}

func absF(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
