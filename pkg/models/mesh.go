// Package models loads triangle meshes from OBJ and glTF files for the
// scanline renderer.
package models

import (
	"github.com/taigrr/scanline/pkg/math3d"
)

// Mesh represents a 3D mesh with vertices, faces, and materials.
type Mesh struct {
	Name      string
	Vertices  []MeshVertex
	Faces     []Face
	Materials []Material
	Groups    []string

	// Bounding box (calculated on load)
	BoundsMin math3d.Vec3
	BoundsMax math3d.Vec3
}

// MeshVertex holds all vertex attributes.
type MeshVertex struct {
	Position math3d.Vec3
	Normal   math3d.Vec3
}

// Face is a counter-clockwise triangle.
type Face struct {
	V        [3]int // Indices into Mesh.Vertices
	Material int    // Index into Mesh.Materials (-1 for no material)
	Group    int    // Index into Mesh.Groups (-1 for no group)
}

// Material is a Phong material. Colors are RGBA in the 0-1 range.
type Material struct {
	Name      string
	Ambient   [4]float64
	Diffuse   [4]float64
	Specular  [4]float64
	Shininess float64
}

// DefaultMaterial returns the material used by MTL entries before any
// color statement.
func DefaultMaterial(name string) Material {
	return Material{
		Name:     name,
		Ambient:  [4]float64{0.2, 0.2, 0.2, 1},
		Diffuse:  [4]float64{0.8, 0.8, 0.8, 1},
		Specular: [4]float64{0, 0, 0, 1},
	}
}

// NewMesh creates an empty mesh.
func NewMesh(name string) *Mesh {
	return &Mesh{
		Name:     name,
		Vertices: make([]MeshVertex, 0),
		Faces:    make([]Face, 0),
	}
}

// CalculateBounds computes the axis-aligned bounding box.
func (m *Mesh) CalculateBounds() {
	if len(m.Vertices) == 0 {
		m.BoundsMin, m.BoundsMax = math3d.Zero3(), math3d.Zero3()
		return
	}

	m.BoundsMin = m.Vertices[0].Position
	m.BoundsMax = m.Vertices[0].Position

	for _, v := range m.Vertices[1:] {
		m.BoundsMin = m.BoundsMin.Min(v.Position)
		m.BoundsMax = m.BoundsMax.Max(v.Position)
	}
}

// Center returns the center of the bounding box.
func (m *Mesh) Center() math3d.Vec3 {
	return m.BoundsMin.Add(m.BoundsMax).Scale(0.5)
}

// Size returns the dimensions of the bounding box.
func (m *Mesh) Size() math3d.Vec3 {
	return m.BoundsMax.Sub(m.BoundsMin)
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Faces)
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

func (m *Mesh) faceNormal(f Face) math3d.Vec3 {
	v0 := m.Vertices[f.V[0]].Position
	v1 := m.Vertices[f.V[1]].Position
	v2 := m.Vertices[f.V[2]].Position
	return v1.Sub(v0).Cross(v2.Sub(v0))
}

// CalculateNormals assigns each face's normal to its vertices. Vertices
// shared between faces keep the normal of the last face.
func (m *Mesh) CalculateNormals() {
	for _, f := range m.Faces {
		n := m.faceNormal(f).Normalize()
		for _, vi := range f.V {
			m.Vertices[vi].Normal = n
		}
	}
}

// CalculateSmoothNormals computes area-weighted averaged normals.
func (m *Mesh) CalculateSmoothNormals() {
	for i := range m.Vertices {
		m.Vertices[i].Normal = math3d.Zero3()
	}

	for _, f := range m.Faces {
		n := m.faceNormal(f) // unnormalized: weights by area
		for _, vi := range f.V {
			m.Vertices[vi].Normal = m.Vertices[vi].Normal.Add(n)
		}
	}

	for i := range m.Vertices {
		m.Vertices[i].Normal = m.Vertices[i].Normal.Normalize()
	}
}

// FillMissingNormals gives every vertex without a normal the area-weighted
// average of the normals of the faces that use it. Vertices that already
// carry a normal are left alone, so files that supply normals for only some
// faces shade correctly everywhere.
func (m *Mesh) FillMissingNormals() {
	missing := make([]bool, len(m.Vertices))
	found := false
	for i, v := range m.Vertices {
		if v.Normal.Len() <= 0.001 {
			missing[i] = true
			found = true
			m.Vertices[i].Normal = math3d.Zero3()
		}
	}
	if !found {
		return
	}

	for _, f := range m.Faces {
		if !missing[f.V[0]] && !missing[f.V[1]] && !missing[f.V[2]] {
			continue
		}
		n := m.faceNormal(f)
		for _, vi := range f.V {
			if missing[vi] {
				m.Vertices[vi].Normal = m.Vertices[vi].Normal.Add(n)
			}
		}
	}

	for i := range m.Vertices {
		if missing[i] {
			m.Vertices[i].Normal = m.Vertices[i].Normal.Normalize()
		}
	}
}

// Transform applies a transformation matrix to all vertices. Normals go
// through the inverse transpose so non-uniform scales keep them
// perpendicular.
func (m *Mesh) Transform(mat math3d.Mat4) {
	normalMat := mat.NormalMatrix()
	for i := range m.Vertices {
		m.Vertices[i].Position = mat.MulVec3(m.Vertices[i].Position)
		m.Vertices[i].Normal = normalMat.MulVec3Dir(m.Vertices[i].Normal).Normalize()
	}
	m.CalculateBounds()
}

// Unitize centers the mesh at the origin and scales it uniformly so its
// largest dimension spans [-1, 1].
func (m *Mesh) Unitize() {
	if len(m.Vertices) == 0 {
		return
	}
	m.CalculateBounds()

	size := m.Size()
	extent := max(size.X, size.Y, size.Z)
	scale := 1.0
	if extent > 0 {
		scale = 2 / extent
	}

	m.Transform(math3d.Scale(math3d.V3(scale, scale, scale)).
		Mul(math3d.Translate(m.Center().Negate())))
}

// Clone creates a deep copy of the mesh.
func (m *Mesh) Clone() *Mesh {
	clone := &Mesh{
		Name:      m.Name,
		Vertices:  make([]MeshVertex, len(m.Vertices)),
		Faces:     make([]Face, len(m.Faces)),
		Materials: make([]Material, len(m.Materials)),
		Groups:    make([]string, len(m.Groups)),
		BoundsMin: m.BoundsMin,
		BoundsMax: m.BoundsMax,
	}
	copy(clone.Vertices, m.Vertices)
	copy(clone.Faces, m.Faces)
	copy(clone.Materials, m.Materials)
	copy(clone.Groups, m.Groups)
	return clone
}

// GetVertex returns the position and normal of vertex i.
func (m *Mesh) GetVertex(i int) (pos, normal math3d.Vec3) {
	v := m.Vertices[i]
	return v.Position, v.Normal
}

// GetFace returns the vertex indices for face i.
func (m *Mesh) GetFace(i int) [3]int {
	return m.Faces[i].V
}

// GetFaceColor returns the diffuse color of face i's material.
func (m *Mesh) GetFaceColor(i int) ([4]float64, bool) {
	mat := m.GetMaterial(m.Faces[i].Material)
	if mat == nil {
		return [4]float64{}, false
	}
	return mat.Diffuse, true
}

// GetFaceMaterial returns the material index for face i.
// Returns -1 if no material assigned.
func (m *Mesh) GetFaceMaterial(i int) int {
	return m.Faces[i].Material
}

// GetMaterial returns the material at index i.
// Returns nil if index is out of bounds or -1.
func (m *Mesh) GetMaterial(i int) *Material {
	if i < 0 || i >= len(m.Materials) {
		return nil
	}
	return &m.Materials[i]
}

// MaterialCount returns the number of materials.
func (m *Mesh) MaterialCount() int {
	return len(m.Materials)
}

// GetBounds returns the axis-aligned bounding box.
func (m *Mesh) GetBounds() (min, max math3d.Vec3) {
	return m.BoundsMin, m.BoundsMax
}
