//go:build !opencl

package engineopencl

import (
	"errors"

	"github.com/tobanteAudio/pffdtd/internal/fdtd"
)

// Engine is the disabled stand-in used when the binary is built
// without -tags opencl.
type Engine struct{}

// New always fails: OpenCL support was not compiled in.
func New() (*Engine, error) {
	return nil, errors.New("OpenCL support is not enabled; rebuild with -tags opencl")
}

func (e *Engine) Close() {}

func (e *Engine) DeviceName() string { return "" }

func (e *Engine) Supports(scene *fdtd.Scene) bool { return false }

func (e *Engine) Run(scene *fdtd.Scene, opts fdtd.Options) (fdtd.Result, error) {
	return fdtd.Result{}, errors.New("OpenCL engine unavailable")
}
