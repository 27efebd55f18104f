// Command roomfdtd runs an offline 3-D room-acoustics FDTD simulation
// from a JSON scene document and writes the receiver time series to
// disk. Flag handling and the GOMAXPROCS/worker-count wiring follow the
// teacher's main.go (flag.Parse then runtime.GOMAXPROCS(runtime.NumCPU())),
// generalized from a fixed call into internal/config.ParseFlags.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/tobanteAudio/pffdtd/internal/config"
	"github.com/tobanteAudio/pffdtd/internal/engineopencl"
	"github.com/tobanteAudio/pffdtd/internal/fdtd"
	"github.com/tobanteAudio/pffdtd/internal/progress"
	"github.com/tobanteAudio/pffdtd/internal/scene"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("roomfdtd", flag.ContinueOnError)
	flags, err := config.ParseFlags(fs, args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return config.ExitOK
		}
		log.Printf("config: %v", err)
		return config.ExitBadInput
	}

	scenePath := filepath.Join(flags.SimDir, "scene.json")
	s, err := scene.Load(scenePath)
	if err != nil {
		log.Printf("scene: %v", err)
		return config.ExitInternalFailed
	}

	opts := fdtd.Options{Workers: flags.Workers}
	if !flags.Quiet {
		opts.OnSample = logProgress(s.Nt)
	}

	result, err := runEngine(flags.Engine, s, opts)
	if err != nil {
		log.Printf("run: %v", err)
		return config.ExitInternalFailed
	}

	if err := writeResult(flags.OutPath, result, len(s.OutIxyz), s.Nt, flags.FP16Out); err != nil {
		log.Printf("writing result: %v", err)
		return config.ExitInternalFailed
	}

	log.Printf("done: %d samples, %.0f voxels/s, wrote %s",
		s.Nt, result.Timings.VoxelsPerSecond, flags.OutPath)
	return config.ExitOK
}

func runEngine(name string, s *fdtd.Scene, opts fdtd.Options) (fdtd.Result, error) {
	if name != "opencl" {
		return fdtd.Run(s, opts)
	}

	eng, err := engineopencl.New()
	if err != nil {
		return fdtd.Result{}, fmt.Errorf("opencl engine: %w", err)
	}
	defer eng.Close()
	if !eng.Supports(s) {
		return fdtd.Result{}, errors.New("opencl engine: scene is not supported (FCC scheme or boundary nodes present); rerun with -engine native")
	}
	log.Printf("opencl device: %s", eng.DeviceName())
	return eng.Run(s, opts)
}

// logProgress returns a progress.Callback that prints one line every
// config.ProgressInterval samples, matching the teacher's sparse debug
// logging rather than a line per step.
func logProgress(nt int64) progress.Callback {
	last := time.Now()
	return func(s progress.Sample) {
		if s.N != 0 && s.N%config.ProgressInterval != 0 && s.N != nt-1 {
			return
		}
		now := time.Now()
		log.Printf("sample %d/%d  elapsed %s  since last %s  air %s/sample",
			s.N, nt, s.Elapsed.Round(time.Millisecond), now.Sub(last).Round(time.Millisecond), s.AirElapsedSample)
		if s.NonFinite {
			warn := &fdtd.NumericalWarning{Sample: s.N, ReceiverN: s.NonFiniteReceiver}
			log.Print(warn)
		}
		last = now
	}
}

// outputDocument is the on-disk shape of a completed run's receiver
// series, decoded back into plain JSON the way the scene document is
// encoded (internal/scene.Document).
type outputDocument struct {
	ReceiverSeries []float64 `json:"receiver_series"`
	Nr             int       `json:"nr"`
	Nt             int64     `json:"nt"`
	TotalSeconds   float64   `json:"total_seconds"`
	VoxelsPerSec   float64   `json:"voxels_per_second"`
}

func writeResult(path string, result fdtd.Result, nr int, nt int64, fp16 bool) error {
	if fp16 {
		return writeResultFP16(path, result)
	}
	doc := outputDocument{
		ReceiverSeries: result.ReceiverSeries,
		Nr:             nr,
		Nt:             nt,
		TotalSeconds:   result.Timings.Total.Seconds(),
		VoxelsPerSec:   result.Timings.VoxelsPerSecond,
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// writeResultFP16 writes the receiver series as a flat binary16 array
// (little-endian uint16 words), trading precision for half the file
// size; timings are not part of this compact format.
func writeResultFP16(path string, result fdtd.Result) error {
	packed := make([]uint16, len(result.ReceiverSeries))
	fdtd.EncodeFloat16(packed, result.ReceiverSeries)
	raw := make([]byte, len(packed)*2)
	for i, v := range packed {
		raw[2*i] = byte(v)
		raw[2*i+1] = byte(v >> 8)
	}
	return os.WriteFile(path, raw, 0o644)
}
