// Package scene reads the on-disk JSON scene document and turns it
// into an internal/fdtd.Scene ready for Run. The document mirrors the
// teacher repo's "flat JSON config struct plus os.ReadFile/json.Unmarshal"
// loading style (pack repo 0x5844-wave2D's LoadWaveScene), not a
// schema-validated or streaming decoder: scene files are small enough
// that decoding the whole thing up front is simplest.
package scene

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tobanteAudio/pffdtd/internal/fdtd"
)

// GridDoc is the on-disk grid geometry block.
type GridDoc struct {
	Nx int64 `json:"nx"`
	Ny int64 `json:"ny"`
	Nz int64 `json:"nz"`
}

// MatQuadDoc is one RLC branch of a material.
type MatQuadDoc struct {
	B   fdtd.Real `json:"b"`
	Bd  fdtd.Real `json:"bd"`
	BDh fdtd.Real `json:"b_dh"`
	BFh fdtd.Real `json:"b_fh"`
}

// MaterialDoc is one entry of the material registry.
type MaterialDoc struct {
	Mb    int          `json:"mb"`
	Beta  fdtd.Real    `json:"beta"`
	Quads []MatQuadDoc `json:"quads"`
}

// Document is the complete on-disk scene representation. Field names
// follow the original pffdtd HDF5 dataset names (spec.md GLOSSARY) so
// scenes translated from the historical Python preprocessing pipeline
// need no renaming.
type Document struct {
	Grid   GridDoc `json:"grid"`
	Scheme string  `json:"scheme"` // "cartesian", "fcc", or "fcc_folded"

	BnIxyz []int64  `json:"bn_ixyz"`
	AdjBn  []uint16 `json:"adj_bn"`

	BnlIxyz []int64     `json:"bnl_ixyz"`
	SsafBnl []fdtd.Real `json:"ssaf_bnl"`
	MatBnl  []int8      `json:"mat_bnl"`

	BnaIxyz []int64 `json:"bna_ixyz"`
	QBna    []int8  `json:"q_bna"`

	Materials []MaterialDoc `json:"materials"`

	InIxyz []int64   `json:"in_ixyz"`
	InSigs []float64 `json:"in_sigs"` // len(InIxyz)*Nt, row-major by source

	// InWavPaths is an alternative to InSigs: one path per source (empty
	// string falls back to the corresponding InSigs row, or silence if
	// InSigs is empty too). Stereo WAVs are averaged to mono.
	InWavPaths []string `json:"in_wav_paths"`
	SampleRate int      `json:"sample_rate"` // used only to decode InWavPaths; default 48000

	OutIxyz []int64 `json:"out_ixyz"`

	Nt int64   `json:"nt"`
	L  float64 `json:"l"` // Courant number
}

// Load reads and decodes the scene document at path and converts it to
// an internal/fdtd.Scene, filling in BnMask automatically (spec.md §3:
// the bit is set iff the index appears in BnIxyz or BnlIxyz, so the
// document itself never needs to carry the packed bitmap). Any error
// is a *LoadError.
func Load(path string) (*fdtd.Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Reason: "read file", Err: err}
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &LoadError{Path: path, Reason: "decode JSON", Err: err}
	}

	scheme, err := parseScheme(doc.Scheme)
	if err != nil {
		return nil, &LoadError{Path: path, Reason: "scheme", Err: err}
	}

	inSigs, err := resolveInSigs(doc, path)
	if err != nil {
		return nil, err
	}

	s := &fdtd.Scene{
		Grid:    fdtd.Grid{Nx: doc.Grid.Nx, Ny: doc.Grid.Ny, Nz: doc.Grid.Nz},
		Scheme:  scheme,
		BnIxyz:  doc.BnIxyz,
		AdjBn:   doc.AdjBn,
		BnlIxyz: doc.BnlIxyz,
		SsafBnl: doc.SsafBnl,
		MatBnl:  doc.MatBnl,
		BnaIxyz: doc.BnaIxyz,
		QBna:    doc.QBna,
		InIxyz:  doc.InIxyz,
		InSigs:  inSigs,
		OutIxyz: doc.OutIxyz,
		Nt:      doc.Nt,
		L:       doc.L,
	}

	s.Materials = make([]fdtd.Material, len(doc.Materials))
	for i, m := range doc.Materials {
		quads := make([]fdtd.MatQuad, len(m.Quads))
		for j, q := range m.Quads {
			quads[j] = fdtd.MatQuad{B: q.B, Bd: q.Bd, BDh: q.BDh, BFh: q.BFh}
		}
		s.Materials[i] = fdtd.Material{Mb: m.Mb, Beta: m.Beta, Quads: quads}
	}

	npts := s.Grid.Npts()
	if npts <= 0 {
		return nil, &LoadError{Path: path, Reason: "grid dimensions must be positive"}
	}
	s.BnMask = fdtd.BuildMask(npts, s.BnIxyz, s.BnlIxyz)

	if err := s.Validate(); err != nil {
		return nil, &LoadError{Path: path, Reason: "contract violation", Err: err}
	}
	return s, nil
}

// resolveInSigs builds the row-major InSigs array, substituting a
// per-source WAV file for its row wherever doc.InWavPaths names one.
func resolveInSigs(doc Document, path string) ([]float64, error) {
	ns := len(doc.InIxyz)
	if len(doc.InWavPaths) == 0 {
		return doc.InSigs, nil
	}
	if len(doc.InWavPaths) != ns {
		return nil, &LoadError{Path: path, Reason: "in_wav_paths length must match in_ixyz"}
	}
	sampleRate := doc.SampleRate
	if sampleRate == 0 {
		sampleRate = 48000
	}

	out := make([]float64, int64(ns)*doc.Nt)
	for i, wavPath := range doc.InWavPaths {
		var inline []float64
		if int64(len(doc.InSigs)) == int64(ns)*doc.Nt {
			inline = doc.InSigs[int64(i)*doc.Nt : int64(i+1)*doc.Nt]
		}
		signal, err := resolveSourceSignal(inline, wavPath, sampleRate, doc.Nt)
		if err != nil {
			return nil, &LoadError{Path: path, Reason: fmt.Sprintf("source[%d]", i), Err: err}
		}
		copy(out[int64(i)*doc.Nt:int64(i+1)*doc.Nt], signal)
	}
	return out, nil
}

func parseScheme(s string) (fdtd.Scheme, error) {
	switch s {
	case "", "cartesian":
		return fdtd.SchemeCartesian, nil
	case "fcc":
		return fdtd.SchemeFCC, nil
	case "fcc_folded":
		return fdtd.SchemeFCCFolded, nil
	default:
		return 0, &LoadError{Reason: "unknown scheme " + s}
	}
}
