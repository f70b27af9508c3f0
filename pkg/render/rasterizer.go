// Package render implements a software scanline Z-buffer rasterizer with an
// immediate-mode drawing interface.
package render

import (
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/taigrr/scanline/pkg/math3d"
)

var (
	// ErrNoRenderTarget is returned by Begin when no framebuffer is attached.
	ErrNoRenderTarget = errors.New("no render target")
	// ErrNotRecording is returned by End without a matching Begin.
	ErrNotRecording = errors.New("end without begin")
	// ErrUnsupportedPrimitive is returned by End for topologies that are
	// recorded but never rasterized.
	ErrUnsupportedPrimitive = errors.New("unsupported primitive")
)

// Primitive is the topology of a Begin/End block.
type Primitive int

const (
	PrimNone Primitive = iota
	PrimTriangles
	PrimTriangleStrip
	PrimTriangleFan
	PrimQuads
	PrimQuadStrip
	PrimPolygon
)

func (p Primitive) String() string {
	switch p {
	case PrimNone:
		return "none"
	case PrimTriangles:
		return "triangles"
	case PrimTriangleStrip:
		return "triangle-strip"
	case PrimTriangleFan:
		return "triangle-fan"
	case PrimQuads:
		return "quads"
	case PrimQuadStrip:
		return "quad-strip"
	case PrimPolygon:
		return "polygon"
	default:
		return fmt.Sprintf("Primitive(%d)", int(p))
	}
}

// Buffer selects the buffers affected by Clear.
type Buffer uint8

const (
	ColorBufferBit Buffer = 1 << iota
	DepthBufferBit
)

// FrameStats describes the work done by the last End.
type FrameStats struct {
	Vertices   int // vertices transformed
	Triangles  int // triangles decomposed from the primitive stream
	Degenerate int // zero screen height or edge-on
	Culled     int // back-facing
	Rejected   int // behind the eye, non-finite or off screen
	Oversized  int // dropped at the guard band, possibly partly visible
	Edges      int // edges entered into the edge table
	Rows       int // visible rows swept
	Fragments  int // fragments that passed the depth test
}

// CullingStats tracks mesh-level frustum culling done by DrawMesh.
type CullingStats struct {
	MeshesTested int // Total meshes tested for culling
	MeshesCulled int // Meshes culled (not rendered)
	MeshesDrawn  int // Meshes that passed culling
}

// Rasterizer renders immediate-mode primitives into a caller-owned
// framebuffer. It keeps its own depth buffer sized to that framebuffer.
//
// A Rasterizer is not safe for concurrent use.
type Rasterizer struct {
	log    *zap.Logger
	camera *Camera
	fb     *Framebuffer
	zbuf   []float64
	state  RenderState

	// Light, Material and GlobalAmbient are read by End.
	Light         Light
	Material      Material
	GlobalAmbient Color4

	// Stats describes the last End; CullingStats accumulates until reset.
	Stats        FrameStats
	CullingStats CullingStats

	// recorder state
	prim      Primitive
	recording bool
	color     Color4
	normal    math3d.Vec3

	// per-frame arenas, truncated on Begin and Clear
	vertices  []vertex
	triangles []triangle
	ael       []activeEdge // parallel to triangles
	edges     []edge
	table     []int // edge indices, sorted by starting row before the sweep
	active    []int // triangle ids in ascending order
	sweepMaxY int

	noSkip bool // step the invisible band one row at a time
}

// Option configures a Rasterizer.
type Option func(*Rasterizer)

// WithLogger sets the logger used for warnings and per-frame debug output.
func WithLogger(l *zap.Logger) Option {
	return func(r *Rasterizer) {
		if l != nil {
			r.log = l
		}
	}
}

// WithRenderTarget attaches a framebuffer at construction time.
func WithRenderTarget(fb *Framebuffer) Option {
	return func(r *Rasterizer) {
		r.SetRenderTarget(fb)
	}
}

// NewRasterizer creates a rasterizer with the default render state, light and
// material.
func NewRasterizer(opts ...Option) *Rasterizer {
	r := &Rasterizer{
		log:           zap.NewNop(),
		camera:        NewCamera(),
		state:         DefaultRenderState(),
		Light:         DefaultLight(),
		Material:      DefaultMaterial(),
		GlobalAmbient: DefaultGlobalAmbient,
		color:         Gray(1),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SetRenderTarget attaches fb and resets the depth buffer to 1.0.
// A nil fb detaches the current target.
func (r *Rasterizer) SetRenderTarget(fb *Framebuffer) {
	r.fb = fb
	if fb == nil {
		r.zbuf = r.zbuf[:0]
		return
	}
	r.resizeDepth()
}

// syncDepth reallocates the depth buffer when the attached framebuffer was
// resized since the last call. The new buffer reads as the far plane.
func (r *Rasterizer) syncDepth() {
	if r.fb != nil && len(r.zbuf) != r.fb.Width*r.fb.Height {
		r.resizeDepth()
	}
}

func (r *Rasterizer) resizeDepth() {
	n := r.fb.Width * r.fb.Height
	if cap(r.zbuf) < n {
		r.zbuf = make([]float64, n)
	}
	r.zbuf = r.zbuf[:n]
	r.ClearDepth()
}

// RenderTarget returns the attached framebuffer.
func (r *Rasterizer) RenderTarget() *Framebuffer {
	return r.fb
}

// Width returns the framebuffer width.
func (r *Rasterizer) Width() int {
	if r.fb == nil {
		return 0
	}
	return r.fb.Width
}

// Height returns the framebuffer height.
func (r *Rasterizer) Height() int {
	if r.fb == nil {
		return 0
	}
	return r.fb.Height
}

// Camera returns the rasterizer's camera.
func (r *Rasterizer) Camera() *Camera {
	return r.camera
}

// LookAt forwards to the camera.
func (r *Rasterizer) LookAt(eye, at, up math3d.Vec3) {
	r.camera.LookAt(eye, at, up)
}

// Perspective forwards to the camera.
func (r *Rasterizer) Perspective(fovy, aspect, zNear, zFar float64) error {
	return r.camera.Perspective(fovy, aspect, zNear, zFar)
}

// Frustum forwards to the camera.
func (r *Rasterizer) Frustum(left, right, bottom, top, near, far float64) error {
	return r.camera.Frustum(left, right, bottom, top, near, far)
}

// Ortho forwards to the camera.
func (r *Rasterizer) Ortho(left, right, bottom, top, near, far float64) error {
	return r.camera.Ortho(left, right, bottom, top, near, far)
}

// State returns the current render state.
func (r *Rasterizer) State() RenderState {
	return r.state
}

// SetState switches a capability on or off.
func (r *Rasterizer) SetState(c Capability, on bool) error {
	return r.state.set(c, on)
}

// Clear fills the selected buffers and drops any buffered geometry.
func (r *Rasterizer) Clear(mask Buffer, c Color, depth float64) {
	r.resetFrame()
	if r.fb == nil {
		return
	}
	r.syncDepth()
	if mask&ColorBufferBit != 0 {
		r.fb.Clear(c)
	}
	if mask&DepthBufferBit != 0 {
		fillDepth(r.zbuf, depth)
	}
}

// ClearDepth resets the depth buffer to the far value 1.0.
func (r *Rasterizer) ClearDepth() {
	fillDepth(r.zbuf, 1)
}

// fillDepth uses copy-doubling for faster clearing.
func fillDepth(buf []float64, v float64) {
	if len(buf) == 0 {
		return
	}
	buf[0] = v
	for i := 1; i < len(buf); i *= 2 {
		copy(buf[i:], buf[:i])
	}
}

// DepthAt returns the stored depth at framebuffer pixel (x, y).
// Pixels outside the target read as 1.0.
func (r *Rasterizer) DepthAt(x, y int) float64 {
	if x < 0 || x >= r.Width() || y < 0 || y >= r.Height() {
		return 1
	}
	r.syncDepth()
	return r.zbuf[y*r.fb.Width+x]
}

// Begin starts recording a primitive block.
func (r *Rasterizer) Begin(p Primitive) error {
	if r.fb == nil {
		return ErrNoRenderTarget
	}
	r.resetFrame()
	r.prim = p
	r.recording = true
	return nil
}

func (r *Rasterizer) resetFrame() {
	r.vertices = r.vertices[:0]
	r.triangles = r.triangles[:0]
	r.ael = r.ael[:0]
	r.edges = r.edges[:0]
	r.table = r.table[:0]
	r.active = r.active[:0]
	r.sweepMaxY = math.MinInt
}

// Color3f sets the current color with alpha 1.
func (r *Rasterizer) Color3f(red, green, blue float64) {
	r.color = Color4{red, green, blue, 1}
}

// Color4f sets the current color.
func (r *Rasterizer) Color4f(red, green, blue, alpha float64) {
	r.color = Color4{red, green, blue, alpha}
}

// Color3i sets the current color from 8-bit channels with alpha 255.
func (r *Rasterizer) Color3i(red, green, blue uint8) {
	r.color = Color4FromRGBA(Color{R: red, G: green, B: blue, A: 255})
}

// Color4i sets the current color from 8-bit channels.
func (r *Rasterizer) Color4i(red, green, blue, alpha uint8) {
	r.color = Color4FromRGBA(Color{R: red, G: green, B: blue, A: alpha})
}

// Normal3 sets the current normal.
func (r *Rasterizer) Normal3(x, y, z float64) {
	r.normal = math3d.V3(x, y, z)
}

// Normal3v sets the current normal.
func (r *Rasterizer) Normal3v(n math3d.Vec3) {
	r.normal = n
}

// Vertex3 appends a vertex carrying the current color and normal.
func (r *Rasterizer) Vertex3(x, y, z float64) {
	r.Vertex3v(math3d.V3(x, y, z))
}

// Vertex3v appends a vertex carrying the current color and normal.
func (r *Rasterizer) Vertex3v(p math3d.Vec3) {
	r.vertices = append(r.vertices, vertex{
		world:  p,
		color:  r.color,
		normal: r.normal,
	})
}

// End rasterizes the recorded block. Triangles, triangle strips and quads are
// drawn; the other topologies return ErrUnsupportedPrimitive without touching
// the framebuffer.
func (r *Rasterizer) End() error {
	if !r.recording {
		return ErrNotRecording
	}
	prim := r.prim
	r.recording = false
	r.prim = PrimNone
	r.Stats = FrameStats{Vertices: len(r.vertices)}

	switch prim {
	case PrimTriangles, PrimTriangleStrip, PrimQuads:
	default:
		r.log.Warn("primitive not rasterized",
			zap.Stringer("primitive", prim),
			zap.Int("vertices", len(r.vertices)))
		return fmt.Errorf("%s: %w", prim, ErrUnsupportedPrimitive)
	}

	r.syncDepth()
	r.transformVertices()
	r.decompose(prim)
	r.sweep()

	if ce := r.log.Check(zap.DebugLevel, "frame"); ce != nil {
		ce.Write(
			zap.Stringer("primitive", prim),
			zap.Int("vertices", r.Stats.Vertices),
			zap.Int("triangles", r.Stats.Triangles),
			zap.Int("degenerate", r.Stats.Degenerate),
			zap.Int("culled", r.Stats.Culled),
			zap.Int("rejected", r.Stats.Rejected),
			zap.Int("oversized", r.Stats.Oversized),
			zap.Int("edges", r.Stats.Edges),
			zap.Int("rows", r.Stats.Rows),
			zap.Int("fragments", r.Stats.Fragments),
		)
	}
	return nil
}

// transformVertices maps every buffered vertex to screen space and applies
// per-vertex lighting when flat shading is lit.
func (r *Rasterizer) transformVertices() {
	w := float64(r.fb.Width)
	h := float64(r.fb.Height)
	flat := r.state.FlatLit()
	eye := r.camera.Eye()

	for i := range r.vertices {
		v := &r.vertices[i]
		clip := r.camera.Transform(math3d.V4FromV3(v.world, 1))
		ndc := clip.PerspectiveDivide()

		v.clipW = clip.W
		v.screen = math3d.V3(
			math.Floor((ndc.X+1)*w/2+0.5),
			math.Floor((ndc.Y+1)*h/2+0.5),
			0.5*ndc.Z+0.5,
		)
		if flat {
			v.color = Shade(v.world, v.normal, eye, v.color, r.Light, r.Material, r.GlobalAmbient)
		}
	}
}
