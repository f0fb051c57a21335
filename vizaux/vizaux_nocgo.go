//go:build tinygo || !cgo

package vizaux

import "errors"

// Show opens a window and renders the scene until it is closed or the
// config context is cancelled.
func Show(scene Scene, cfg Config) error {
	return errors.New("require cgo for viewer rendering")
}
