package cloudgl

import (
	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms2"
	"github.com/soypat/glgl/math/ms1"
)

// RingMaxRadius is the radius in world units beyond which the ring program
// never draws, no matter the ring spacing.
const RingMaxRadius = 1000

// ringDeadZone is the fraction of the ring spacing around the center within
// which drawing is suppressed. Without it the innermost rings degenerate
// into a solid disk.
const ringDeadZone = 0.1

// RingDistance returns the signed distance from a radial distance to the
// nearest concentric ring spaced every ringRange units. It is exactly zero
// on every ring.
func RingDistance(radius, ringRange float32) float32 {
	return radius - math32.Round(radius/ringRange)*ringRange
}

// RingWeight mirrors the ring program's fragment stage: the line coverage in
// [0,1] for a fragment at ground-plane position xy given the ring spacing
// ringRange and line thickness in pixels. pixelGradient is the screen-space
// gradient magnitude of the radial distance in world units per pixel; it is
// what makes the drawn line width independent of zoom. Pass 1 to reason in
// world units directly.
func RingWeight(xy ms2.Vec, ringRange, thickness, pixelGradient float32) float32 {
	radius := ms2.Norm(xy)
	pixelsFromLine := math32.Abs(RingDistance(radius, ringRange) / pixelGradient)
	weight := ms1.Clamp(thickness-pixelsFromLine, 0, 1)
	if radius > RingMaxRadius || radius < ringRange*ringDeadZone {
		weight = 0
	}
	return weight
}
