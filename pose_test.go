package cloudgl_test

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/cloudgl/cloudgl"
	"github.com/soypat/geometry/ms3"
)

func rigidPoses(n int) []cloudgl.Pose {
	poses := make([]cloudgl.Pose, n)
	for i := range poses {
		angle := 0.35 * float32(i)
		axis := ms3.Unit(ms3.Vec{X: 0.2 * float32(i%3), Y: 0.1, Z: 1})
		p := cloudgl.PoseFromMat4(ms3.RotationMat4(angle, axis))
		p.T = ms3.Vec{X: float32(i), Y: -2 * float32(i), Z: 0.5}
		poses[i] = p
	}
	return poses
}

func TestTransformTextureRoundTrip(t *testing.T) {
	const N = 7
	poses := rigidPoses(N)
	tex, err := cloudgl.NewTransformTexture(poses)
	if err != nil {
		t.Fatal(err)
	}
	if tex.Width() != N || tex.Height() != cloudgl.TransformTexHeight {
		t.Fatalf("texture dims %dx%d, want %dx%d", tex.Width(), tex.Height(), N, cloudgl.TransformTexHeight)
	}
	if len(tex.RawData()) != N*cloudgl.TransformTexHeight*3 {
		t.Fatalf("texel buffer length %d", len(tex.RawData()))
	}
	for i := 0; i < N; i++ {
		got := tex.PoseAt(cloudgl.TransIndex(i, N))
		cmpVec(t, "X", got.X, poses[i].X)
		cmpVec(t, "Y", got.Y, poses[i].Y)
		cmpVec(t, "Z", got.Z, poses[i].Z)
		cmpVec(t, "T", got.T, poses[i].T)
	}
}

func TestPoseAtClampsIndex(t *testing.T) {
	const N = 4
	poses := rigidPoses(N)
	tex, err := cloudgl.NewTransformTexture(poses)
	if err != nil {
		t.Fatal(err)
	}
	lo := tex.PoseAt(-0.5)
	hi := tex.PoseAt(1.5)
	cmpVec(t, "low clamp T", lo.T, poses[0].T)
	cmpVec(t, "high clamp T", hi.T, poses[N-1].T)
}

func TestTransformPoints(t *testing.T) {
	// Quarter turn around z plus a translation.
	quarter := cloudgl.Pose{
		X: ms3.Vec{Y: 1},
		Y: ms3.Vec{X: -1},
		Z: ms3.Vec{Z: 1},
		T: ms3.Vec{X: 1, Y: 2, Z: 3},
	}
	poses := []cloudgl.Pose{cloudgl.IdentityPose(), quarter}
	tex, err := cloudgl.NewTransformTexture(poses)
	if err != nil {
		t.Fatal(err)
	}
	model := cloudgl.IdentityPose()
	model.T = ms3.Vec{Z: 0.5} // sensor mounted half a meter up

	xyz := []ms3.Vec{{X: 1}, {X: 1}, {Y: 1}}
	offset := []ms3.Vec{{}, {}, {X: 0.1}}
	ranges := []float32{5, 5, 10}
	transIndex := []float32{
		cloudgl.TransIndex(0, 2),
		cloudgl.TransIndex(1, 2),
		cloudgl.TransIndex(1, 2),
	}
	dst := make([]ms3.Vec, 3)
	err = tex.TransformPoints(dst, xyz, offset, ranges, transIndex, model)
	if err != nil {
		t.Fatal(err)
	}
	want := []ms3.Vec{
		{X: 5, Y: 0, Z: 0.5},            // identity pose
		{X: 1, Y: 7, Z: 3.5},            // (5,0,0.5) rotated 90° then translated
		{X: 1 - 10, Y: 2 + 0.1, Z: 3.5}, // (0.1,10,0.5) rotated 90° then translated
	}
	for i := range want {
		cmpVec(t, "world", dst[i], want[i])
	}
}

func TestTransformPointsDegenerateRange(t *testing.T) {
	shifted := cloudgl.IdentityPose()
	shifted.T = ms3.Vec{X: -4, Y: 8}
	poses := []cloudgl.Pose{cloudgl.IdentityPose(), shifted}
	tex, err := cloudgl.NewTransformTexture(poses)
	if err != nil {
		t.Fatal(err)
	}
	xyz := []ms3.Vec{{X: 1}, {X: 1}}
	offset := []ms3.Vec{{X: 2, Y: 2, Z: 2}, {X: 2, Y: 2, Z: 2}}
	ranges := []float32{0, -1}
	transIndex := []float32{cloudgl.TransIndex(0, 2), cloudgl.TransIndex(1, 2)}
	dst := make([]ms3.Vec, 2)
	err = tex.TransformPoints(dst, xyz, offset, ranges, transIndex, cloudgl.IdentityPose())
	if err != nil {
		t.Fatal(err)
	}
	// Degenerate points collapse to the local origin: offsets and ranges do
	// not leak into the result, only the selected pose's translation does.
	cmpVec(t, "collapsed", dst[0], ms3.Vec{})
	cmpVec(t, "collapsed+pose", dst[1], shifted.T)
}

func TestTransformPointsBufferErrors(t *testing.T) {
	tex, err := cloudgl.NewTransformTexture(rigidPoses(2))
	if err != nil {
		t.Fatal(err)
	}
	err = tex.TransformPoints(nil, nil, nil, nil, nil, cloudgl.IdentityPose())
	if err == nil {
		t.Error("expected error for empty buffers")
	}
	dst := make([]ms3.Vec, 3)
	err = tex.TransformPoints(dst, make([]ms3.Vec, 2), make([]ms3.Vec, 3),
		make([]float32, 3), make([]float32, 3), cloudgl.IdentityPose())
	if err == nil {
		t.Error("expected error for mismatched buffer lengths")
	}
	if _, err := cloudgl.NewTransformTexture(nil); err == nil {
		t.Error("expected error for zero poses")
	}
}

func cmpVec(t *testing.T, what string, got, want ms3.Vec) {
	t.Helper()
	const tol = 1e-5
	if math32.Abs(got.X-want.X) > tol ||
		math32.Abs(got.Y-want.Y) > tol ||
		math32.Abs(got.Z-want.Z) > tol {
		t.Errorf("%s: got %+v, want %+v", what, got, want)
	}
}
