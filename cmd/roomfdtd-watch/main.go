// Command roomfdtd-watch runs a simulation while rendering a live
// horizontal pressure-field slice and sonifying one receiver, via
// internal/viz. It loads <sim_dir>/scene.json with scene.Load like
// cmd/roomfdtd, but parses its own flags and always runs the native
// engine, since the live viewer wants a
// full-field snapshot every sample (internal/engineopencl never holds
// the field on the host between steps).
package main

import (
	"flag"
	"log"
	"os"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/tobanteAudio/pffdtd/internal/fdtd"
	"github.com/tobanteAudio/pffdtd/internal/scene"
	"github.com/tobanteAudio/pffdtd/internal/viz"
)

func main() {
	simDir := flag.String("sim_dir", "", "directory containing the scene JSON document")
	sliceZ := flag.Int64("slice-z", -1, "iz plane to render (-1 = grid center)")
	receiver := flag.Int("receiver", 0, "receiver index to sonify")
	scaleUp := flag.Int("scale", 2, "pixels per grid cell")
	flag.Parse()

	if *simDir == "" {
		log.Fatal("-sim_dir is required")
	}

	s, err := scene.Load(*simDir + "/scene.json")
	if err != nil {
		log.Fatalf("scene: %v", err)
	}

	z := *sliceZ
	if z < 0 {
		z = s.Grid.Nz / 2
	}

	g := viz.New(s, z, *receiver, *scaleUp)

	go func() {
		_, err := fdtd.Run(s, fdtd.Options{OnSample: g.Watch, FieldSnapshot: true})
		if err != nil {
			g.SetRunError(err)
			return
		}
		g.SetDone()
	}()

	ebiten.SetWindowSize(int(s.Grid.Nx)*(*scaleUp), int(s.Grid.Ny)*(*scaleUp))
	ebiten.SetWindowTitle("roomfdtd — live pressure field")
	if err := ebiten.RunGame(g); err != nil {
		log.Fatal(err)
	}
	os.Exit(0)
}
