package cloudgl

// ShaderSource is an immutable vertex/fragment GLSL source pair. The four
// fixed instances returned by [PointProgram], [RingProgram], [CuboidProgram]
// and [ImageProgram] form the program catalog. Attribute and uniform names
// declared in each pair are a contract with whoever binds the vertex buffers
// and uniforms: renaming them breaks unchanged higher-level drawing code.
type ShaderSource struct {
	Vertex   string
	Fragment string
}

// PointProgram returns the point cloud program pair.
//
// Vertex attributes:
//   - xyz: unit direction of the beam before range scaling.
//   - offset: origin offset of the beam.
//   - range: measured range. A range of zero or less collapses the point
//     to the homogeneous origin instead of producing a garbage position.
//   - trans_index: selects which packed transform to apply, normalized to
//     [0,1] over the number of transforms. See [AppendTransforms].
//   - vkey, vmask: per-point key and mask colors, passed through.
//
// Uniforms: transformation (sampler2D, see [AppendTransforms]), model
// (sensor extrinsics), proj_view, mono (bool), palette (sampler2D).
func PointProgram() ShaderSource {
	return ShaderSource{Vertex: pointVertexSrc, Fragment: pointFragmentSrc}
}

// RingProgram returns the range ring program pair. The vertex stage consumes
// a ground-plane quad through attribute ring_xyz and uniforms proj_view,
// ring_range and ring_thickness drive the fragment stage's distance field.
func RingProgram() ShaderSource {
	return ShaderSource{Vertex: ringVertexSrc, Fragment: ringFragmentSrc}
}

// CuboidProgram returns the cuboid program pair: attribute cuboid_xyz,
// uniforms cuboid_rgba and proj_view. The fragment stage is a flat-color
// pass-through.
func CuboidProgram() ShaderSource {
	return ShaderSource{Vertex: cuboidVertexSrc, Fragment: cuboidFragmentSrc}
}

// ImageProgram returns the 2D image panel program pair: attributes vertex
// and vertex_uv, uniforms mono, use_palette and the image, mask and palette
// samplers.
func ImageProgram() ShaderSource {
	return ShaderSource{Vertex: imageVertexSrc, Fragment: imageFragmentSrc}
}

const pointVertexSrc = `#version 330 core
in vec3 xyz;
in vec3 offset;
in float range;
in float trans_index;

uniform sampler2D transformation;
uniform mat4 model;
uniform mat4 proj_view;

in vec4 vkey;
in vec4 vmask;

out vec4 key;
out vec4 mask;

void main() {
    vec4 local_point = range > 0
                       ? model * vec4(xyz * range + offset, 1.0)
                       : vec4(0, 0, 0, 1.0);
    // The w transforms are packed in a w x 4 texture, one column per
    // transform. Sample at the vertical center of each of the 4 texels
    // so filtering cannot bleed between rows:
    // |     r0     |     r1     |     r2     |     t     |
    // 0   0.125  0.25  0.375   0.5  0.625  0.75  0.875   1
    vec4 r0 = texture(transformation, vec2(trans_index, 0.125));
    vec4 r1 = texture(transformation, vec2(trans_index, 0.375));
    vec4 r2 = texture(transformation, vec2(trans_index, 0.625));
    vec4 t = texture(transformation, vec2(trans_index, 0.875));
    mat4 pose = mat4(
        r0.x, r0.y, r0.z, 0,
        r1.x, r1.y, r1.z, 0,
        r2.x, r2.y, r2.z, 0,
         t.x,  t.y,  t.z, 1
    );

    gl_Position = proj_view * pose * local_point;
    key = vkey;
    mask = vmask;
}`

const pointFragmentSrc = `#version 330 core
in vec4 key;
in vec4 mask;
uniform bool mono;
uniform sampler2D palette;
out vec4 color;

void main() {
    // Key color comes from the palette in mono mode, else from the rgb data.
    vec3 c = mono ? texture(palette, vec2(key.r, 1)).rgb : key.rgb;
    // Composite mask over the resolved point color with the "over" operator.
    float color_a = mask.a + key.a * (1 - mask.a);
    vec3 color_rgb = mask.rgb * mask.a + c * key.a * (1 - mask.a);
    // Guard the un-premultiply against zero total alpha.
    color = color_a > 0.0 ? vec4(color_rgb / color_a, color_a) : vec4(0.0);
}`

const ringVertexSrc = `#version 330 core
in vec3 ring_xyz;
uniform mat4 proj_view;
out vec2 ring_xy;

void main() {
    gl_Position = proj_view * vec4(ring_xyz, 1.0);
    gl_Position.z = gl_Position.w;
    ring_xy = ring_xyz.xy;
}`

const ringFragmentSrc = `#version 330 core
out vec4 color;
in vec2 ring_xy;
uniform float ring_range;
uniform float ring_thickness;

void main() {
    float radius = length(ring_xy);

    // Signed distance to the nearest concentric ring.
    float signedDistance = radius - round(radius/ring_range)*ring_range;

    // Screen-space gradient of radius gives meters per pixel at this
    // fragment, which keeps line width constant under zoom.
    vec2 gradient = vec2(dFdx(radius), dFdy(radius));
    float len = length(gradient);

    // meters / (meters/pixel) = pixels from the ring line.
    float rangeFromLine = abs(signedDistance/len);

    float lineWeight = clamp(ring_thickness - rangeFromLine, 0.0, 1.0);

    // Nothing past the max radius nor in the dead zone at the center.
    if (radius > 1000.0 || radius < ring_range*0.1) { lineWeight = 0; }
    color = vec4(vec3(0.15)*lineWeight, 1.0);
}`

const cuboidVertexSrc = `#version 330 core
in vec3 cuboid_xyz;
uniform vec4 cuboid_rgba;
uniform mat4 proj_view;
out vec4 rgba;

void main() {
    gl_Position = proj_view * vec4(cuboid_xyz, 1.0);
    rgba = cuboid_rgba;
}`

const cuboidFragmentSrc = `#version 330 core
in vec4 rgba;
out vec4 color;

void main() {
    color = rgba;
}`

const imageVertexSrc = `#version 330 core
in vec2 vertex;
in vec2 vertex_uv;
out vec2 uv;

void main() {
    gl_Position = vec4(vertex, 0, 1);
    uv = vertex_uv;
}`

const imageFragmentSrc = `#version 330 core
in vec2 uv;
uniform bool mono;
uniform bool use_palette;
uniform sampler2D image;
uniform sampler2D mask;
uniform sampler2D palette;
out vec4 color;

void main() {
    vec4 m = texture(mask, uv);
    vec4 itex = texture(image, uv);
    vec3 key_color = use_palette ? texture(palette, vec2(itex.r, 1)).rgb : vec3(itex.r);
    vec3 img_color = mono ? key_color : itex.rgb;
    float color_a = m.a + itex.a * (1 - m.a);
    vec3 color_rgb = m.rgb * m.a + img_color * itex.a * (1 - m.a);
    color = color_a > 0.0 ? vec4(color_rgb / color_a, color_a) : vec4(0.0);
}`
