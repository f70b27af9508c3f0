package render

import (
	"math"

	"github.com/taigrr/scanline/pkg/math3d"
)

// guardBand bounds screen coordinates so that rows and columns fit in an int.
const guardBand = 1 << 24

// vertex is a recorded vertex and, after End's transform stage, its screen
// position.
type vertex struct {
	world  math3d.Vec3 // w is implicitly 1
	color  Color4
	normal math3d.Vec3

	clipW  float64
	screen math3d.Vec3 // x, y in pixels, z in [0, 1]
}

// triangle is the supporting plane n·p + d = 0 of a screen-space triangle.
type triangle struct {
	normal math3d.Vec3
	d      float64
	dy     int
}

// edge is one non-horizontal side of a triangle. Attributes are taken at the
// lower endpoint and stepped by their per-row deltas as the sweep moves up.
type edge struct {
	tri int
	y   int // starting row
	dy  int // rows remaining after the current one

	x, dx           float64
	color, dColor   Color4
	pos, dPos       math3d.Vec3
	normal, dNormal math3d.Vec3
}

// step moves the edge up by n rows.
func (e *edge) step(n int, normals bool) {
	s := float64(n)
	e.dy -= n
	e.x += e.dx * s
	e.color = e.color.AddScaled(e.dColor, s)
	e.pos = e.pos.Add(e.dPos.Scale(s))
	if normals {
		e.normal = e.normal.Add(e.dNormal.Scale(s))
	}
}

// decompose splits the recorded vertex stream into triangles.
func (r *Rasterizer) decompose(prim Primitive) {
	n := len(r.vertices)
	switch prim {
	case PrimTriangles:
		for i := 0; i+2 < n; i += 3 {
			r.addTriangle(i, i+1, i+2)
		}
	case PrimTriangleStrip:
		// Odd triangles swap their first two vertices to keep the winding.
		for i := 0; i+2 < n; i++ {
			if i%2 == 0 {
				r.addTriangle(i, i+1, i+2)
			} else {
				r.addTriangle(i+1, i, i+2)
			}
		}
	case PrimQuads:
		for i := 0; i+3 < n; i += 4 {
			r.addTriangle(i, i+1, i+2)
			r.addTriangle(i, i+2, i+3)
		}
	}
}

// addTriangle filters a triangle and enters its edges into the edge table.
func (r *Rasterizer) addTriangle(i1, i2, i3 int) {
	v1, v2, v3 := &r.vertices[i1], &r.vertices[i2], &r.vertices[i3]
	r.Stats.Triangles++

	if v1.screen.Y == v2.screen.Y && v2.screen.Y == v3.screen.Y {
		r.Stats.Degenerate++
		return
	}
	if r.reject(v1, v2, v3) {
		r.Stats.Rejected++
		return
	}
	if beyondGuardBand(v1, v2, v3) {
		r.Stats.Oversized++
		return
	}

	n := v2.screen.Sub(v1.screen).Cross(v3.screen.Sub(v1.screen))
	if n.Z < 0 {
		r.Stats.Culled++
		return
	}
	if n.Z == 0 {
		r.Stats.Degenerate++
		return
	}

	minY := math.Min(v1.screen.Y, math.Min(v2.screen.Y, v3.screen.Y))
	maxY := math.Max(v1.screen.Y, math.Max(v2.screen.Y, v3.screen.Y))

	id := len(r.triangles)
	r.triangles = append(r.triangles, triangle{
		normal: n,
		d:      -n.Dot(v1.screen),
		dy:     int(maxY - minY),
	})
	r.ael = append(r.ael, activeEdge{el: -1, er: -1})

	r.addEdge(id, v1, v2)
	r.addEdge(id, v2, v3)
	r.addEdge(id, v3, v1)
}

// reject reports whether a triangle can be discarded without scan work: a
// vertex is at or behind the eye plane, a coordinate is not finite, or the
// screen bounding box misses the target.
func (r *Rasterizer) reject(vs ...*vertex) bool {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, v := range vs {
		if !(v.clipW > 0) || !v.screen.IsFinite() {
			return true
		}
		minX, maxX = math.Min(minX, v.screen.X), math.Max(maxX, v.screen.X)
		minY, maxY = math.Min(minY, v.screen.Y), math.Max(maxY, v.screen.Y)
	}
	return maxX < 0 || minX >= float64(r.fb.Width) ||
		maxY < 0 || minY >= float64(r.fb.Height)
}

// beyondGuardBand reports whether a vertex lies past the guard band. Such a
// triangle is dropped whole even when part of it covers the screen. Without
// clipping this happens to triangles with a vertex just in front of the eye
// plane, where the perspective divide sends it far off screen.
func beyondGuardBand(vs ...*vertex) bool {
	for _, v := range vs {
		if math.Abs(v.screen.X) > guardBand || math.Abs(v.screen.Y) > guardBand {
			return true
		}
	}
	return false
}

// addEdge builds the edge from a to b unless it is horizontal.
func (r *Rasterizer) addEdge(tri int, a, b *vertex) {
	if a.screen.Y == b.screen.Y {
		return
	}
	if a.screen.Y > b.screen.Y {
		a, b = b, a
	}

	dy := b.screen.Y - a.screen.Y
	inv := 1 / dy
	e := edge{
		tri:    tri,
		y:      int(a.screen.Y),
		dy:     int(dy),
		x:      a.screen.X,
		dx:     (b.screen.X - a.screen.X) * inv,
		color:  a.color,
		dColor: b.color.Sub(a.color).Scale(inv),
		pos:    a.world,
		dPos:   b.world.Sub(a.world).Scale(inv),
	}
	if r.state.Lighting {
		e.normal = a.normal
		e.dNormal = b.normal.Sub(a.normal).Scale(inv)
	}

	r.table = append(r.table, len(r.edges))
	r.edges = append(r.edges, e)
	r.Stats.Edges++

	if top := e.y + e.dy; top > r.sweepMaxY {
		r.sweepMaxY = top
	}
}
