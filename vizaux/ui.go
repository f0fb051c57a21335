//go:build !tinygo && cgo

package vizaux

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/chewxy/math32"
	"github.com/cloudgl/cloudgl"
	"github.com/cloudgl/cloudgl/glpipe"
	"github.com/go-gl/gl/all-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/soypat/geometry/ms3"
)

func init() {
	// GLFW event handling must run on the thread that created the window.
	runtime.LockOSThread()
}

var errEmptyCloud = errors.New("cloud has no complete points")

// Show opens a window and renders the scene until it is closed or the
// config context is cancelled. It is an auxiliary entry point to get a
// scene on screen quickly; applications with their own window and scene
// graph should drive the program catalog and [glpipe.Builder] directly.
func Show(scene Scene, cfg Config) error {
	if cfg.Title == "" {
		cfg.Title = "cloudgl viewer"
	}
	if cfg.Width == 0 || cfg.Height == 0 {
		cfg.Width, cfg.Height = 1280, 800
	}
	window, terminate, err := startGLFW(cfg)
	if err != nil {
		return err
	}
	defer terminate()

	api, err := glpipe.NewGLAPI()
	if err != nil {
		return err
	}
	bld, err := glpipe.NewBuilder(api, cfg.Diagnostics)
	if err != nil {
		return err
	}

	var draws []func(projView *[16]float32)
	if scene.Cloud != nil {
		draw, err := setupCloud(bld, scene.Cloud, cfg)
		if err != nil {
			return fmt.Errorf("cloud setup: %s", err)
		}
		draws = append(draws, draw)
	}
	if scene.Rings != nil {
		draws = append(draws, setupRings(bld, scene.Rings))
	}
	if len(scene.Cuboids) > 0 {
		draws = append(draws, setupCuboids(bld, scene.Cuboids))
	}
	if scene.Image != nil {
		draw, err := setupImage(bld, scene.Image, cfg)
		if err != nil {
			return fmt.Errorf("image panel setup: %s", err)
		}
		draws = append(draws, draw)
	}

	gl.Enable(gl.DEPTH_TEST)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)

	// Orbit camera, driven like the usual mouse-look: drag rotates, scroll
	// zooms.
	var (
		yaw            float32
		pitch          float32 = 0.5
		camDist        float32 = 40
		lastX, lastY   float64
		firstMove      = true
		isMousePressed = false
	)
	window.SetCursorPosCallback(func(w *glfw.Window, xpos, ypos float64) {
		if !isMousePressed {
			return
		}
		if firstMove {
			lastX, lastY = xpos, ypos
			firstMove = false
		}
		yaw += float32(xpos-lastX) * 0.005
		pitch += float32(ypos-lastY) * 0.005
		maxPitch := math32.Pi/2 - 0.01
		if pitch > maxPitch {
			pitch = maxPitch
		} else if pitch < -maxPitch {
			pitch = -maxPitch
		}
		lastX, lastY = xpos, ypos
	})
	window.SetScrollCallback(func(w *glfw.Window, xoff, yoff float64) {
		camDist -= float32(yoff) * (camDist*0.1 + 0.01)
		if camDist < 0.5 {
			camDist = 0.5
		} else if camDist > 2*cloudgl.RingMaxRadius {
			camDist = 2 * cloudgl.RingMaxRadius
		}
	})
	window.SetMouseButtonCallback(func(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
		if button != glfw.MouseButtonLeft {
			return
		}
		isMousePressed = action == glfw.Press
		firstMove = true
	})

	ctx := cfg.Context
	for !window.ShouldClose() {
		if ctx != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
		}
		width, height := window.GetSize()
		gl.Viewport(0, 0, int32(width), int32(height))
		gl.ClearColor(0, 0, 0, 1)
		gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

		aspect := float32(width) / float32(height)
		projView := mul4(perspective(1.0, aspect, 0.1, 4*cloudgl.RingMaxRadius),
			orbitView(yaw, pitch, camDist))
		for _, draw := range draws {
			draw(&projView)
		}

		window.SwapBuffers()
		glfw.PollEvents()
	}
	return nil
}

func startGLFW(cfg Config) (window *glfw.Window, term func(), err error) {
	if err := glfw.Init(); err != nil {
		return nil, nil, err
	}
	glfw.WindowHint(glfw.ContextVersionMajor, 3)
	glfw.WindowHint(glfw.ContextVersionMinor, 3)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	window, err = glfw.CreateWindow(cfg.Width, cfg.Height, cfg.Title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, nil, err
	}
	window.MakeContextCurrent()
	glfw.SwapInterval(1)
	if err := gl.Init(); err != nil {
		glfw.Terminate()
		return nil, nil, err
	}
	return window, glfw.Terminate, nil
}

func setupCloud(bld *glpipe.Builder, cloud *Cloud, cfg Config) (func(*[16]float32), error) {
	n := cloud.Points()
	if n == 0 {
		return nil, errEmptyCloud
	}
	transforms, err := cloudgl.NewTransformTexture(cloud.Poses)
	if err != nil {
		return nil, err
	}
	src := cloudgl.PointProgram()
	prog := bld.BuildProgram(src.Vertex, src.Fragment)
	gl.UseProgram(prog)

	var texs [2]uint32
	gl.GenTextures(2, &texs[0])
	gl.ActiveTexture(gl.TEXTURE0)
	err = bld.LoadTexture(transforms.RawData(), transforms.Width(), transforms.Height(),
		texs[0], glpipe.DefaultTextureFormat())
	if err != nil {
		return nil, err
	}
	pal := cfg.Palette
	if pal.Len() == 0 {
		pal = cloudgl.Heat(256)
	}
	gl.ActiveTexture(gl.TEXTURE1)
	err = bld.LoadTexture(pal.RawData(), pal.Len(), 1, texs[1], glpipe.DefaultTextureFormat())
	if err != nil {
		return nil, err
	}

	var vao uint32
	gl.GenVertexArrays(1, &vao)
	gl.BindVertexArray(vao)
	bindAttrib(prog, "xyz", 3, cloud.XYZ[:3*n])
	bindAttrib(prog, "offset", 3, cloud.Offset[:3*n])
	bindAttrib(prog, "range", 1, cloud.Range[:n])
	bindAttrib(prog, "trans_index", 1, cloud.TransIndex[:n])
	bindAttrib(prog, "vkey", 4, cloud.Key[:4*n])
	bindAttrib(prog, "vmask", 4, cloud.Mask[:4*n])

	model := poseMat4(cloud.Model)
	gl.UniformMatrix4fv(uniform(prog, "model"), 1, false, &model[0])
	gl.Uniform1i(uniform(prog, "transformation"), 0)
	gl.Uniform1i(uniform(prog, "palette"), 1)
	gl.Uniform1i(uniform(prog, "mono"), boolToInt(cfg.Mono))
	projViewLoc := uniform(prog, "proj_view")
	return func(projView *[16]float32) {
		gl.UseProgram(prog)
		gl.BindVertexArray(vao)
		gl.UniformMatrix4fv(projViewLoc, 1, false, &projView[0])
		gl.DrawArrays(gl.POINTS, 0, int32(n))
	}, nil
}

func setupRings(bld *glpipe.Builder, rings *Rings) func(*[16]float32) {
	src := cloudgl.RingProgram()
	prog := bld.BuildProgram(src.Vertex, src.Fragment)
	gl.UseProgram(prog)

	var vao uint32
	gl.GenVertexArrays(1, &vao)
	gl.BindVertexArray(vao)
	bindAttrib(prog, "ring_xyz", 3, GroundQuad(cloudgl.RingMaxRadius))

	thickness := rings.Thickness
	if thickness <= 0 {
		thickness = 1
	}
	gl.Uniform1f(uniform(prog, "ring_range"), rings.Spacing)
	gl.Uniform1f(uniform(prog, "ring_thickness"), thickness)
	projViewLoc := uniform(prog, "proj_view")
	return func(projView *[16]float32) {
		gl.UseProgram(prog)
		gl.BindVertexArray(vao)
		gl.UniformMatrix4fv(projViewLoc, 1, false, &projView[0])
		gl.DrawArrays(gl.TRIANGLES, 0, 6)
	}
}

func setupCuboids(bld *glpipe.Builder, cuboids []Cuboid) func(*[16]float32) {
	src := cloudgl.CuboidProgram()
	prog := bld.BuildProgram(src.Vertex, src.Fragment)
	gl.UseProgram(prog)

	var vertices []float32
	for _, c := range cuboids {
		vertices = c.AppendTriangles(vertices)
	}
	var vao uint32
	gl.GenVertexArrays(1, &vao)
	gl.BindVertexArray(vao)
	bindAttrib(prog, "cuboid_xyz", 3, vertices)

	rgbaLoc := uniform(prog, "cuboid_rgba")
	projViewLoc := uniform(prog, "proj_view")
	return func(projView *[16]float32) {
		gl.UseProgram(prog)
		gl.BindVertexArray(vao)
		gl.UniformMatrix4fv(projViewLoc, 1, false, &projView[0])
		for i, c := range cuboids {
			gl.Uniform4f(rgbaLoc, c.RGBA.R, c.RGBA.G, c.RGBA.B, c.RGBA.A)
			gl.DrawArrays(gl.TRIANGLES, int32(36*i), 36)
		}
	}
}

func setupImage(bld *glpipe.Builder, panel *ImagePanel, cfg Config) (func(*[16]float32), error) {
	src := cloudgl.ImageProgram()
	prog := bld.BuildProgram(src.Vertex, src.Fragment)
	gl.UseProgram(prog)

	var texs [3]uint32
	gl.GenTextures(3, &texs[0])
	gl.ActiveTexture(gl.TEXTURE2)
	redFmt := glpipe.TextureFormat{Internal: glpipe.FormatRed, Layout: glpipe.FormatRed, Type: glpipe.TypeFloat}
	err := bld.LoadTexture(panel.Data, panel.Width, panel.Height, texs[0], redFmt)
	if err != nil {
		return nil, err
	}
	gl.ActiveTexture(gl.TEXTURE3)
	rgbaFmt := glpipe.TextureFormat{Internal: glpipe.FormatRGBA, Layout: glpipe.FormatRGBA, Type: glpipe.TypeFloat}
	mask, mw, mh := panel.Mask, panel.Width, panel.Height
	if mask == nil {
		mask, mw, mh = []float32{0, 0, 0, 0}, 1, 1
	}
	err = bld.LoadTexture(mask, mw, mh, texs[1], rgbaFmt)
	if err != nil {
		return nil, err
	}
	pal := cfg.Palette
	if pal.Len() == 0 {
		pal = cloudgl.Heat(256)
	}
	gl.ActiveTexture(gl.TEXTURE4)
	err = bld.LoadTexture(pal.RawData(), pal.Len(), 1, texs[2], glpipe.DefaultTextureFormat())
	if err != nil {
		return nil, err
	}

	pos, uv := ImageQuad(panel.X0, panel.Y0, panel.X1, panel.Y1)
	var vao uint32
	gl.GenVertexArrays(1, &vao)
	gl.BindVertexArray(vao)
	bindAttrib(prog, "vertex", 2, pos)
	bindAttrib(prog, "vertex_uv", 2, uv)

	gl.Uniform1i(uniform(prog, "image"), 2)
	gl.Uniform1i(uniform(prog, "mask"), 3)
	gl.Uniform1i(uniform(prog, "palette"), 4)
	// A 1-channel panel only carries intensity, so it always renders mono.
	gl.Uniform1i(uniform(prog, "mono"), 1)
	gl.Uniform1i(uniform(prog, "use_palette"), boolToInt(panel.UsePalette))
	return func(*[16]float32) {
		gl.UseProgram(prog)
		gl.BindVertexArray(vao)
		gl.Disable(gl.DEPTH_TEST)
		gl.DrawArrays(gl.TRIANGLES, 0, 6)
		gl.Enable(gl.DEPTH_TEST)
	}, nil
}

func bindAttrib(prog uint32, name string, size int32, data []float32) {
	var vbo uint32
	gl.GenBuffers(1, &vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
	gl.BufferData(gl.ARRAY_BUFFER, 4*len(data), gl.Ptr(data), gl.STATIC_DRAW)
	loc := gl.GetAttribLocation(prog, gl.Str(name+"\x00"))
	if loc < 0 {
		// Attribute optimized out of the program; the data is simply unused.
		return
	}
	gl.EnableVertexAttribArray(uint32(loc))
	gl.VertexAttribPointer(uint32(loc), size, gl.FLOAT, false, 0, gl.PtrOffset(0))
}

func uniform(prog uint32, name string) int32 {
	return gl.GetUniformLocation(prog, gl.Str(name+"\x00"))
}

func boolToInt(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

// poseMat4 expands a pose to the column-major 4x4 layout GL uniforms use.
func poseMat4(p cloudgl.Pose) [16]float32 {
	if p == (cloudgl.Pose{}) {
		p = cloudgl.IdentityPose()
	}
	return [16]float32{
		p.X.X, p.X.Y, p.X.Z, 0,
		p.Y.X, p.Y.Y, p.Y.Z, 0,
		p.Z.X, p.Z.Y, p.Z.Z, 0,
		p.T.X, p.T.Y, p.T.Z, 1,
	}
}

// mul4 multiplies column-major 4x4 matrices.
func mul4(a, b [16]float32) [16]float32 {
	var m [16]float32
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			var sum float32
			for k := 0; k < 4; k++ {
				sum += a[k*4+row] * b[col*4+k]
			}
			m[col*4+row] = sum
		}
	}
	return m
}

func perspective(fovy, aspect, near, far float32) [16]float32 {
	f := 1 / math32.Tan(fovy/2)
	var m [16]float32
	m[0] = f / aspect
	m[5] = f
	m[10] = (far + near) / (near - far)
	m[11] = -1
	m[14] = 2 * far * near / (near - far)
	return m
}

// orbitView looks at the origin from yaw/pitch angles at distance dist,
// with the lidar's +z as up.
func orbitView(yaw, pitch, dist float32) [16]float32 {
	sy, cy := math32.Sincos(yaw)
	sp, cp := math32.Sincos(pitch)
	fwd := ms3.Vec{X: cp * cy, Y: cp * sy, Z: -sp} // eye toward origin
	eye := ms3.Scale(-dist, fwd)
	right := ms3.Unit(cross(fwd, ms3.Vec{Z: 1}))
	up := cross(right, fwd)
	var m [16]float32
	m[0], m[4], m[8] = right.X, right.Y, right.Z
	m[1], m[5], m[9] = up.X, up.Y, up.Z
	m[2], m[6], m[10] = -fwd.X, -fwd.Y, -fwd.Z
	m[12] = -ms3.Dot(right, eye)
	m[13] = -ms3.Dot(up, eye)
	m[14] = ms3.Dot(fwd, eye)
	m[15] = 1
	return m
}

func cross(a, b ms3.Vec) ms3.Vec {
	return ms3.Vec{
		X: a.Y*b.Z - a.Z*b.Y,
		Y: a.Z*b.X - a.X*b.Z,
		Z: a.X*b.Y - a.Y*b.X,
	}
}
