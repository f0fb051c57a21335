//go:build tinygo || !cgo

package glpipe

import "errors"

var errNoCGO = errors.New("GL API requires CGo and is not supported on TinyGo")

// NewGLAPI returns an [API] backed by the OpenGL context current on the
// calling thread. gl.Init must have run for that context.
func NewGLAPI() (API, error) {
	return nil, errNoCGO
}
