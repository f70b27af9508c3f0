package render

import (
	"math/rand/v2"

	"github.com/taigrr/scanline/pkg/math3d"
)

// MeshSource is the interface for meshes that DrawMesh can submit.
type MeshSource interface {
	VertexCount() int
	TriangleCount() int
	GetFace(i int) [3]int
	GetVertex(i int) (pos, normal math3d.Vec3)
	// GetFaceColor returns the RGBA color of face i's material, if any.
	GetFaceColor(i int) ([4]float64, bool)
}

// BoundedMeshSource is a MeshSource with a local-space bounding box.
// DrawMesh skips such meshes when the box is outside the view frustum.
type BoundedMeshSource interface {
	MeshSource
	GetBounds() (min, max math3d.Vec3)
}

// DrawOptions selects the vertex colors DrawMesh emits.
type DrawOptions struct {
	// Color is used for faces without a material color.
	Color Color4
	// RandomColors gives every face a random color, ignoring materials.
	RandomColors bool
	// Rand supplies random colors; nil uses the global source.
	Rand *rand.Rand
}

// DefaultDrawOptions draws white faces colored by their materials.
func DefaultDrawOptions() DrawOptions {
	return DrawOptions{Color: Gray(1)}
}

// DrawMesh submits every face of mesh as a PrimTriangles block. Positions go
// through transform and normals through its inverse transpose.
func (r *Rasterizer) DrawMesh(mesh MeshSource, transform math3d.Mat4, opts DrawOptions) error {
	if r.fb == nil {
		return ErrNoRenderTarget
	}
	if r.cullMesh(mesh, transform) {
		r.Stats = FrameStats{}
		return nil
	}

	normalMat := transform.NormalMatrix()
	if err := r.Begin(PrimTriangles); err != nil {
		return err
	}

	for i := range mesh.TriangleCount() {
		r.Color4f(faceColor(mesh, i, opts))

		for _, vi := range mesh.GetFace(i) {
			pos, normal := mesh.GetVertex(vi)
			r.Normal3v(normalMat.MulVec3Dir(normal).Normalize())
			r.Vertex3v(transform.MulVec3(pos))
		}
	}

	return r.End()
}

func faceColor(mesh MeshSource, i int, opts DrawOptions) (red, green, blue, alpha float64) {
	switch {
	case opts.RandomColors:
		next := rand.Float64
		if opts.Rand != nil {
			next = opts.Rand.Float64
		}
		return next(), next(), next(), 1
	default:
		if c, ok := mesh.GetFaceColor(i); ok {
			return c[0], c[1], c[2], c[3]
		}
	}
	c := opts.Color
	return c.R, c.G, c.B, c.A
}

// cullMesh reports whether a bounded mesh lies entirely outside the view
// frustum after transform.
func (r *Rasterizer) cullMesh(mesh MeshSource, transform math3d.Mat4) bool {
	bounded, ok := mesh.(BoundedMeshSource)
	if !ok {
		return false
	}

	r.CullingStats.MeshesTested++
	lo, hi := bounded.GetBounds()
	box := AABB{Min: lo, Max: hi}.Transform(transform)
	if !FrustumFromMatrix(r.camera.ViewProjectionMatrix()).Intersects(box) {
		r.CullingStats.MeshesCulled++
		return true
	}

	r.CullingStats.MeshesDrawn++
	return false
}

// ResetCullingStats resets the culling statistics (call once per frame).
func (r *Rasterizer) ResetCullingStats() {
	r.CullingStats = CullingStats{}
}

// cubeFace is one side of the color cube: an outward normal and four corner
// indices in counter-clockwise order seen from outside.
type cubeFace struct {
	normal  math3d.Vec3
	corners [4]int
}

// Cube corners are indexed by bit: 1 = +x, 2 = +y, 4 = +z. Each corner's
// color is its position mapped into the unit RGB cube.
var cubeFaces = [6]cubeFace{
	{math3d.V3(0, 0, 1), [4]int{7, 6, 4, 5}},
	{math3d.V3(1, 0, 0), [4]int{7, 5, 1, 3}},
	{math3d.V3(0, 1, 0), [4]int{7, 3, 2, 6}},
	{math3d.V3(-1, 0, 0), [4]int{6, 2, 0, 4}},
	{math3d.V3(0, -1, 0), [4]int{0, 1, 5, 4}},
	{math3d.V3(0, 0, -1), [4]int{1, 0, 2, 3}},
}

// DrawColorCube draws an axis-aligned cube whose corners are colored by
// position, red along +x, green along +y and blue along +z. It is the scene
// shown when no model is loaded.
func (r *Rasterizer) DrawColorCube(center math3d.Vec3, size float64) error {
	if err := r.Begin(PrimQuads); err != nil {
		return err
	}

	half := size / 2
	for _, f := range cubeFaces {
		r.Normal3v(f.normal)
		for _, c := range f.corners {
			red, green, blue := float64(c&1), float64(c>>1&1), float64(c>>2&1)
			r.Color3f(red, green, blue)
			r.Vertex3(
				center.X+half*(2*red-1),
				center.Y+half*(2*green-1),
				center.Z+half*(2*blue-1),
			)
		}
	}

	return r.End()
}
