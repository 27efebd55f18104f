//go:build opencl

// Package engineopencl offloads the interior air stencil (spec.md §4.3)
// to an OpenCL device, adapted from the teacher's 2-D wave_step kernel
// and context/queue/program/kernel setup (opencl_wave.go). Everything
// outside the interior stencil (halo mirroring, source injection,
// receiver readout) runs on the host between device dispatches. Rigid,
// lossy and ABC boundary nodes are not handled by this engine at all;
// Supports rejects scenes that contain any.
package engineopencl

import (
	"errors"
	"fmt"
	"math"
	"time"
	"unsafe"

	"github.com/jgillich/go-opencl/cl"

	"github.com/tobanteAudio/pffdtd/internal/fdtd"
	"github.com/tobanteAudio/pffdtd/internal/progress"
)

const airKernelSource = `__kernel void air_step_cartesian(
    const int nx, const int ny, const int nz,
    const float a1, const float a2,
    __global const uchar* mask,
    __global const float* prev,
    __global float* cur)
{
    int ii = get_global_id(0);
    int npts = nx * ny * nz;
    if (ii >= npts) return;
    int nzny = ny * nz;
    int ix = ii / nzny;
    int rem = ii % nzny;
    int iy = rem / nz;
    int iz = rem % nz;
    if (ix <= 0 || ix >= nx - 1 || iy <= 0 || iy >= ny - 1 || iz <= 0 || iz >= nz - 1) return;
    if ((mask[ii >> 3] >> (ii & 7)) & 1) return;
    float sum = prev[ii + nzny] + prev[ii - nzny] + prev[ii + nz] + prev[ii - nz] + prev[ii + 1] + prev[ii - 1];
    cur[ii] = a1 * prev[ii] - cur[ii] + a2 * sum;
}`

// Engine runs the fdtd.Run loop with the interior Cartesian air stencil
// dispatched to an OpenCL device. It only supports fdtd.SchemeCartesian;
// FCC scenes are rejected (see Supports).
type Engine struct {
	context *cl.Context
	queue   *cl.CommandQueue
	program *cl.Program
	kernel  *cl.Kernel
	device  *cl.Device
}

// New selects a GPU device if one is available, else the first CPU
// device, and builds the air-stencil kernel, mirroring
// newOpenCLWaveSolver's platform/device discovery fallback chain.
func New() (*Engine, error) {
	platforms, err := cl.GetPlatforms()
	if err != nil {
		return nil, fmt.Errorf("querying OpenCL platforms: %w", err)
	}
	if len(platforms) == 0 {
		return nil, errors.New("no OpenCL platforms available; verify with `clinfo`")
	}

	var device *cl.Device
	for _, p := range platforms {
		if devices, derr := p.GetDevices(cl.DeviceTypeGPU); derr == nil && len(devices) > 0 {
			device = devices[0]
			break
		}
	}
	if device == nil {
		for _, p := range platforms {
			if devices, derr := p.GetDevices(cl.DeviceTypeCPU); derr == nil && len(devices) > 0 {
				device = devices[0]
				break
			}
		}
	}
	if device == nil {
		return nil, errors.New("no suitable OpenCL devices found")
	}

	context, err := cl.CreateContext([]*cl.Device{device})
	if err != nil {
		return nil, fmt.Errorf("creating OpenCL context: %w", err)
	}
	queue, err := context.CreateCommandQueue(device, 0)
	if err != nil {
		context.Release()
		return nil, fmt.Errorf("creating OpenCL command queue: %w", err)
	}
	program, err := context.CreateProgramWithSource([]string{airKernelSource})
	if err != nil {
		queue.Release()
		context.Release()
		return nil, fmt.Errorf("creating OpenCL program: %w", err)
	}
	if err := program.BuildProgram([]*cl.Device{device}, ""); err != nil {
		program.Release()
		queue.Release()
		context.Release()
		if buildErr, ok := err.(cl.BuildError); ok {
			return nil, fmt.Errorf("building OpenCL program: %s", string(buildErr))
		}
		return nil, fmt.Errorf("building OpenCL program: %w", err)
	}
	kernel, err := program.CreateKernel("air_step_cartesian")
	if err != nil {
		program.Release()
		queue.Release()
		context.Release()
		return nil, fmt.Errorf("creating OpenCL kernel: %w", err)
	}

	return &Engine{context: context, queue: queue, program: program, kernel: kernel, device: device}, nil
}

// Close releases the OpenCL resources held by the engine.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	e.kernel.Release()
	e.program.Release()
	e.queue.Release()
	e.context.Release()
}

// DeviceName reports the selected OpenCL device, for CLI/progress output.
func (e *Engine) DeviceName() string { return e.device.Name() }

// Supports reports whether this engine can run scene. Only the
// Cartesian scheme has a device kernel, and only the pure air-stencil
// reduction (no rigid, lossy, or ABC boundary nodes, spec.md §8
// "Nb=Nbl=Nba=0") is implemented device-side; for any other scene it
// returns false, and Run returns an error.
func (e *Engine) Supports(scene *fdtd.Scene) bool {
	return scene.Scheme == fdtd.SchemeCartesian &&
		len(scene.BnIxyz) == 0 && len(scene.BnlIxyz) == 0 && len(scene.BnaIxyz) == 0
}

// Run mirrors fdtd.Run's loop structure and per-sample ordering
// exactly (driver.go steps 1-9); only step 3, the interior air
// stencil, is dispatched to the device instead of the worker pool.
func (e *Engine) Run(scene *fdtd.Scene, opts fdtd.Options) (fdtd.Result, error) {
	if err := scene.Validate(); err != nil {
		return fdtd.Result{}, err
	}
	if !e.Supports(scene) {
		return fdtd.Result{}, errors.New("engineopencl: scheme not supported by the device kernel")
	}

	g := scene.Grid
	npts := g.Npts()
	if npts > math.MaxInt32 {
		return fdtd.Result{}, errors.New("engineopencl: grid too large for a 32-bit device index; rerun with -engine native")
	}
	nr := len(scene.OutIxyz)
	nt := scene.Nt

	result := fdtd.Result{ReceiverSeries: make([]float64, int64(nr)*nt)}
	if nt == 0 {
		return result, nil
	}

	byteSize := int(npts) * int(unsafe.Sizeof(float32(0)))
	maskBuf, err := e.context.CreateEmptyBuffer(cl.MemReadOnly, int(npts+7)/8)
	if err != nil {
		return fdtd.Result{}, fmt.Errorf("allocating mask buffer: %w", err)
	}
	defer maskBuf.Release()
	prevBuf, err := e.context.CreateEmptyBuffer(cl.MemReadWrite, byteSize)
	if err != nil {
		return fdtd.Result{}, fmt.Errorf("allocating prev buffer: %w", err)
	}
	defer prevBuf.Release()
	curBuf, err := e.context.CreateEmptyBuffer(cl.MemReadWrite, byteSize)
	if err != nil {
		return fdtd.Result{}, fmt.Errorf("allocating cur buffer: %w", err)
	}
	defer curBuf.Release()

	if _, err := e.queue.EnqueueWriteBuffer(maskBuf, true, 0, len(scene.BnMask), unsafe.Pointer(&scene.BnMask[0]), nil); err != nil {
		return fdtd.Result{}, fmt.Errorf("writing mask buffer: %w", err)
	}

	cur := make([]float32, npts)
	prev := make([]float32, npts)
	d := deriveCartesianCoefficients(scene.L)
	nx32, ny32, nz32 := int32(g.Nx), int32(g.Ny), int32(g.Nz)

	start := time.Now()
	var airTotal time.Duration

	for n := int64(0); n < nt; n++ {
		sampleStart := time.Now()

		// Halo mirroring runs on the host buffer, then both buffers are
		// uploaded; this keeps device-side code to the one kernel above.
		mirrorHaloFloat32(prev, g, scene.Scheme)

		if _, err := e.queue.EnqueueWriteBufferFloat32(prevBuf, false, 0, prev, nil); err != nil {
			return fdtd.Result{}, fmt.Errorf("uploading prev: %w", err)
		}
		if _, err := e.queue.EnqueueWriteBufferFloat32(curBuf, false, 0, cur, nil); err != nil {
			return fdtd.Result{}, fmt.Errorf("uploading cur: %w", err)
		}

		airStart := time.Now()
		if err := e.kernel.SetArgs(nx32, ny32, nz32, d.a1, d.a2, maskBuf, prevBuf, curBuf); err != nil {
			return fdtd.Result{}, fmt.Errorf("setting kernel args: %w", err)
		}
		if _, err := e.queue.EnqueueNDRangeKernel(e.kernel, nil, []int{int(npts)}, nil, nil); err != nil {
			return fdtd.Result{}, fmt.Errorf("enqueueing kernel: %w", err)
		}
		if _, err := e.queue.EnqueueReadBufferFloat32(curBuf, true, 0, cur, nil); err != nil {
			return fdtd.Result{}, fmt.Errorf("reading cur: %w", err)
		}
		airElapsedSample := time.Since(airStart)
		airTotal += airElapsedSample

		nonFinite := false
		for ri, ii := range scene.OutIxyz {
			v := float64(prev[ii])
			result.ReceiverSeries[int64(ri)*nt+n] = v
			if math.IsNaN(v) || math.IsInf(v, 0) {
				nonFinite = true
			}
		}

		for s, ii := range scene.InIxyz {
			cur[ii] += float32(scene.InSigs[int64(s)*nt+n])
		}

		cur, prev = prev, cur

		if opts.OnSample != nil {
			now := time.Now()
			opts.OnSample(progress.Sample{
				N:                n,
				Elapsed:          now.Sub(start),
				ElapsedSample:    now.Sub(sampleStart),
				AirElapsed:       airTotal,
				AirElapsedSample: airElapsedSample,
				NonFinite:        nonFinite,
			})
		}
	}

	total := time.Since(start)
	voxPerSec := 0.0
	if total > 0 {
		voxPerSec = float64(npts*nt) / total.Seconds()
	}
	result.Timings = progress.Timings{Total: total, Air: airTotal, VoxelsPerSecond: voxPerSec}
	return result, nil
}

type coeffs struct{ a1, a2 float32 }

func deriveCartesianCoefficients(l float64) coeffs {
	l2 := float32(l * l)
	return coeffs{a1: 2 - l2*6, a2: l2}
}

// mirrorHaloFloat32 is the device-engine's host-side copy of
// fdtd.mirrorHalo's Cartesian Neumann mirroring (halo.go), since that
// package's unexported helper cannot be called across packages and a
// device round-trip per halo cell would be far slower than doing it on
// the host float32 buffer directly.
func mirrorHaloFloat32(buf []float32, g fdtd.Grid, scheme fdtd.Scheme) {
	nx, ny, nz := g.Nx, g.Ny, g.Nz
	nzny := ny * nz
	idx := func(ix, iy, iz int64) int64 { return ix*nzny + iy*nz + iz }

	for ix := int64(0); ix < nx; ix++ {
		for iy := int64(0); iy < ny; iy++ {
			buf[idx(ix, iy, 0)] = buf[idx(ix, iy, 2)]
			buf[idx(ix, iy, nz-1)] = buf[idx(ix, iy, nz-3)]
		}
	}
	for ix := int64(0); ix < nx; ix++ {
		for iz := int64(0); iz < nz; iz++ {
			buf[idx(ix, 0, iz)] = buf[idx(ix, 2, iz)]
			buf[idx(ix, ny-1, iz)] = buf[idx(ix, ny-3, iz)]
		}
	}
	for iy := int64(0); iy < ny; iy++ {
		for iz := int64(0); iz < nz; iz++ {
			buf[idx(0, iy, iz)] = buf[idx(2, iy, iz)]
			buf[idx(nx-1, iy, iz)] = buf[idx(nx-3, iy, iz)]
		}
	}
}
