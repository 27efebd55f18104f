// Package viz is an optional live viewer for a running simulation: a
// horizontal pressure-field slice rendered with ebiten, plus a
// sonification of one receiver channel through ebiten/v2/audio. It
// adapts the teacher's Game/Draw/centerAudioStream trio (game.go,
// render.go, audio_center.go) from an interactive 2-D wave toy to a
// passive viewer driven by a background fdtd.Run.
package viz

import (
	"fmt"
	"image/color"
	"sync"
	"sync/atomic"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"

	"github.com/tobanteAudio/pffdtd/internal/fdtd"
	"github.com/tobanteAudio/pffdtd/internal/progress"
)

const audioSampleRate = 48000

// Game is an ebiten.Game that displays the iz=SliceZ horizontal plane
// of a Scene's pressure field as the simulation runs, and plays one
// receiver's pressure as audio.
type Game struct {
	scene    *fdtd.Scene
	sliceZ   int64
	receiver int

	mu         sync.Mutex
	field      []float64
	lastSample progress.Sample

	audioCtx    *audio.Context
	audioStream *receiverStream
	audioPlayer *audio.Player

	done    atomic.Bool
	runErr  error
	scaleUp int
}

// New builds a viewer for scene, slicing the field at iz=sliceZ and
// sonifying receiver index receiverIdx. It does not start the
// simulation; call Run in a goroutine and feed OnSample into Watch.
func New(scene *fdtd.Scene, sliceZ int64, receiverIdx int, scaleUp int) *Game {
	if scaleUp < 1 {
		scaleUp = 1
	}
	g := &Game{
		scene:    scene,
		sliceZ:   sliceZ,
		receiver: receiverIdx,
		scaleUp:  scaleUp,
	}
	g.audioStream = newReceiverStream()
	g.audioCtx = audio.NewContext(audioSampleRate)
	if player, err := g.audioCtx.NewPlayer(g.audioStream); err == nil {
		g.audioPlayer = player
		g.audioPlayer.Play()
	}
	return g
}

// Watch is a progress.Callback that feeds this viewer with each
// simulated sample; pass it as Options.OnSample with
// Options.FieldSnapshot set to true.
func (g *Game) Watch(s progress.Sample) {
	g.mu.Lock()
	g.field = s.Field
	g.lastSample = s
	g.mu.Unlock()

	// The audio stream samples the field directly at the receiver cell
	// rather than waiting for Run's own ReceiverSeries (only available
	// after the whole run completes), since this is a live view.
	if len(g.scene.OutIxyz) > 0 && g.receiver < len(g.scene.OutIxyz) && g.receiver >= 0 {
		ii := g.scene.OutIxyz[g.receiver]
		if int64(ii) < int64(len(s.Field)) && ii >= 0 {
			g.audioStream.Push(float32(s.Field[ii]))
		}
	}
}

// SetRunError records a terminal error from the background Run call so
// Update can surface it instead of looping forever.
func (g *Game) SetRunError(err error) {
	g.runErr = err
	g.done.Store(true)
}

// SetDone marks the run complete (successfully or not).
func (g *Game) SetDone() { g.done.Store(true) }

func (g *Game) Update() error {
	if g.done.Load() {
		return g.runErr
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.mu.Lock()
	field := g.field
	sample := g.lastSample
	g.mu.Unlock()

	nx, ny := g.scene.Grid.Nx, g.scene.Grid.Ny
	if field == nil {
		ebitenutil.DebugPrint(screen, "waiting for first sample...")
		return
	}

	for iy := int64(0); iy < ny; iy++ {
		for ix := int64(0); ix < nx; ix++ {
			ii := g.scene.Grid.Index(ix, iy, g.sliceZ)
			v := field[ii]
			c := pressureColor(v)
			for dy := 0; dy < g.scaleUp; dy++ {
				for dx := 0; dx < g.scaleUp; dx++ {
					screen.Set(int(ix)*g.scaleUp+dx, int(iy)*g.scaleUp+dy, c)
				}
			}
		}
	}

	msg := fmt.Sprintf("sample %d  elapsed %s  air %s/sample", sample.N, sample.Elapsed, sample.AirElapsedSample)
	if sample.NonFinite {
		msg += "  [non-finite receiver sample]"
	}
	ebitenutil.DebugPrint(screen, msg)
}

func (g *Game) Layout(_, _ int) (int, int) {
	return int(g.scene.Grid.Nx) * g.scaleUp, int(g.scene.Grid.Ny) * g.scaleUp
}

// pressureColor maps a signed pressure value to a diverging blue/red
// colormap, clamped at +/-1.
func pressureColor(v float64) color.RGBA {
	if v > 1 {
		v = 1
	} else if v < -1 {
		v = -1
	}
	if v >= 0 {
		return color.RGBA{R: uint8(255 * v), G: 20, B: 40, A: 255}
	}
	return color.RGBA{R: 40, G: 20, B: uint8(255 * -v), A: 255}
}
