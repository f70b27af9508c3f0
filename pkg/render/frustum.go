package render

import (
	"github.com/taigrr/scanline/pkg/math3d"
)

// Plane is n·p + D = 0 with the normal pointing into the visible half-space.
type Plane struct {
	Normal math3d.Vec3
	D      float64
}

// normalized scales the plane so its normal has unit length.
func (p Plane) normalized() Plane {
	l := p.Normal.Len()
	if l == 0 {
		return p
	}
	return Plane{Normal: p.Normal.Scale(1 / l), D: p.D / l}
}

// Distance returns the signed distance from the plane to q; positive is inside.
func (p Plane) Distance(q math3d.Vec3) float64 {
	return p.Normal.Dot(q) + p.D
}

// Frustum is the view volume of a projection * view matrix.
// Planes are ordered left, right, bottom, top, near, far.
type Frustum struct {
	Planes [6]Plane
}

// FrustumFromMatrix extracts the clip planes of m (Gribb/Hartmann).
func FrustumFromMatrix(m math3d.Mat4) Frustum {
	// row i of the column-major matrix is (m[i], m[i+4], m[i+8], m[i+12])
	row := func(i int) (math3d.Vec3, float64) {
		return math3d.V3(m[i], m[i+4], m[i+8]), m[i+12]
	}
	w, ww := row(3)

	var f Frustum
	for axis := range 3 {
		r, rw := row(axis)
		f.Planes[2*axis] = Plane{Normal: w.Add(r), D: ww + rw}.normalized()
		f.Planes[2*axis+1] = Plane{Normal: w.Sub(r), D: ww - rw}.normalized()
	}
	return f
}

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min math3d.Vec3
	Max math3d.Vec3
}

// Corners returns the eight corners of the box.
func (b AABB) Corners() [8]math3d.Vec3 {
	var c [8]math3d.Vec3
	for i := range c {
		c[i] = b.Min
		if i&1 != 0 {
			c[i].X = b.Max.X
		}
		if i&2 != 0 {
			c[i].Y = b.Max.Y
		}
		if i&4 != 0 {
			c[i].Z = b.Max.Z
		}
	}
	return c
}

// Transform returns the box bounding b's corners after an affine transform.
func (b AABB) Transform(m math3d.Mat4) AABB {
	corners := b.Corners()
	out := AABB{Min: m.MulVec3(corners[0]), Max: m.MulVec3(corners[0])}
	for _, c := range corners[1:] {
		p := m.MulVec3(c)
		out.Min = out.Min.Min(p)
		out.Max = out.Max.Max(p)
	}
	return out
}

// Intersects reports whether any part of the box may lie inside the frustum.
// It tests the corner furthest along each plane normal, so boxes near a
// frustum edge can be reported visible when they are not.
func (f Frustum) Intersects(b AABB) bool {
	for _, p := range f.Planes {
		far := b.Min
		if p.Normal.X >= 0 {
			far.X = b.Max.X
		}
		if p.Normal.Y >= 0 {
			far.Y = b.Max.Y
		}
		if p.Normal.Z >= 0 {
			far.Z = b.Max.Z
		}
		if p.Distance(far) < 0 {
			return false
		}
	}
	return true
}

// Contains reports whether q lies inside the frustum.
func (f Frustum) Contains(q math3d.Vec3) bool {
	for _, p := range f.Planes {
		if p.Distance(q) < 0 {
			return false
		}
	}
	return true
}
