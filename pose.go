package cloudgl

import (
	"errors"

	"github.com/soypat/geometry/ms3"
)

// TransformTexHeight is the fixed row count of a transform lookup texture.
// Rows 0 to 2 hold the rotation basis vectors and row 3 the translation.
const TransformTexHeight = 4

var (
	errEmptyBuffers         = errors.New("empty buffers")
	errMismatchBufferLength = errors.New("buffer length mismatch")
	errNoPoses              = errors.New("need at least one pose")
)

// Pose is a rigid transform. X, Y and Z are the basis vectors (columns) of
// the rotation matrix and T is the translation, so a point p maps to
// p.X*X + p.Y*Y + p.Z*Z + T. The implicit bottom row is (0,0,0,1).
type Pose struct {
	X, Y, Z, T ms3.Vec
}

// IdentityPose returns the do-nothing rigid transform.
func IdentityPose() Pose {
	return Pose{
		X: ms3.Vec{X: 1},
		Y: ms3.Vec{Y: 1},
		Z: ms3.Vec{Z: 1},
	}
}

// PoseFromMat4 extracts the rigid part of m: the three rotation columns and
// the translation column. The bottom row of m is discarded.
func PoseFromMat4(m ms3.Mat4) Pose {
	a := m.Array() // row-major.
	return Pose{
		X: ms3.Vec{X: a[0], Y: a[4], Z: a[8]},
		Y: ms3.Vec{X: a[1], Y: a[5], Z: a[9]},
		Z: ms3.Vec{X: a[2], Y: a[6], Z: a[10]},
		T: ms3.Vec{X: a[3], Y: a[7], Z: a[11]},
	}
}

// Transform applies the pose to point p.
func (pose Pose) Transform(p ms3.Vec) ms3.Vec {
	v := ms3.Add(ms3.Scale(p.X, pose.X), ms3.Scale(p.Y, pose.Y))
	v = ms3.Add(v, ms3.Scale(p.Z, pose.Z))
	return ms3.Add(v, pose.T)
}

// TransIndex normalizes transform index i of n to the trans_index vertex
// attribute expected by the point program: the horizontal center of column i.
func TransIndex(i, n int) float32 {
	return (float32(i) + 0.5) / float32(n)
}

// AppendTransforms appends the texel data of the transform lookup texture
// for poses to dst and returns the result. The layout is the one the point
// vertex stage samples: a len(poses) x 4 RGB float texture where column i
// encodes pose i, rows 0-2 its rotation basis vectors and row 3 its
// translation.
func AppendTransforms(dst []float32, poses []Pose) []float32 {
	for _, p := range poses {
		dst = append(dst, p.X.X, p.X.Y, p.X.Z)
	}
	for _, p := range poses {
		dst = append(dst, p.Y.X, p.Y.Y, p.Y.Z)
	}
	for _, p := range poses {
		dst = append(dst, p.Z.X, p.Z.Y, p.Z.Z)
	}
	for _, p := range poses {
		dst = append(dst, p.T.X, p.T.Y, p.T.Z)
	}
	return dst
}

// TransformTexture is the CPU-side form of the packed transform texture.
// It encodes poses exactly as [AppendTransforms] and decodes them with the
// same nearest/clamped sampling the GPU applies, so it doubles as the
// software reference for the point program's vertex stage.
type TransformTexture struct {
	data  []float32
	width int
}

// NewTransformTexture packs poses into a transform lookup texture.
func NewTransformTexture(poses []Pose) (TransformTexture, error) {
	if len(poses) == 0 {
		return TransformTexture{}, errNoPoses
	}
	return TransformTexture{
		data:  AppendTransforms(nil, poses),
		width: len(poses),
	}, nil
}

// Width returns the texture width in texels, one column per pose.
func (t TransformTexture) Width() int { return t.width }

// Height returns [TransformTexHeight].
func (t TransformTexture) Height() int { return TransformTexHeight }

// RawData returns the texel buffer to hand to the texture uploader.
func (t TransformTexture) RawData() []float32 { return t.data }

// sample looks up the RGB texel at texture coordinate (u,v) with
// nearest-neighbor filtering and clamp-to-edge addressing, mirroring the
// sampler state the uploader configures.
func (t TransformTexture) sample(u, v float32) ms3.Vec {
	x := clampi(int(u*float32(t.width)), 0, t.width-1)
	y := clampi(int(v*TransformTexHeight), 0, TransformTexHeight-1)
	base := (y*t.width + x) * 3
	return ms3.Vec{X: t.data[base], Y: t.data[base+1], Z: t.data[base+2]}
}

// PoseAt decodes the pose addressed by the trans_index attribute. Sampling
// happens at the vertical texel centers 0.125, 0.375, 0.625 and 0.875, same
// as the vertex stage. Out of range indices clamp to the edge columns.
func (t TransformTexture) PoseAt(transIndex float32) Pose {
	return Pose{
		X: t.sample(transIndex, 0.125),
		Y: t.sample(transIndex, 0.375),
		Z: t.sample(transIndex, 0.625),
		T: t.sample(transIndex, 0.875),
	}
}

// TransformPoints mirrors the point program's vertex stage up to (and
// excluding) the proj_view projection: for every point the world position
//
//	pose(trans_index) * model * (xyz*range + offset)
//
// is stored in dst. Points with range <= 0 are degenerate and collapse to
// the local origin before the pose applies. All slices must have the length
// of dst.
func (t TransformTexture) TransformPoints(dst, xyz, offset []ms3.Vec, ranges, transIndex []float32, model Pose) error {
	if len(dst) == 0 {
		return errEmptyBuffers
	}
	if len(xyz) != len(dst) || len(offset) != len(dst) ||
		len(ranges) != len(dst) || len(transIndex) != len(dst) {
		return errMismatchBufferLength
	}
	for i := range dst {
		var local ms3.Vec
		if r := ranges[i]; r > 0 {
			local = model.Transform(ms3.Add(ms3.Scale(r, xyz[i]), offset[i]))
		}
		dst[i] = t.PoseAt(transIndex[i]).Transform(local)
	}
	return nil
}

func clampi(v, lo, hi int) int {
	if v < lo {
		return lo
	} else if v > hi {
		return hi
	}
	return v
}
