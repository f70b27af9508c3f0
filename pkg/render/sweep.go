package render

import (
	"cmp"
	"math"
	"slices"

	"github.com/taigrr/scanline/pkg/math3d"
)

// activeEdge is the sweep state of one triangle: its left and right edges on
// the current row and the plane depth at the left edge.
type activeEdge struct {
	el, er   int // edge indices, -1 until assigned
	zl       float64
	dzx, dzy float64
}

// sweep walks the edge table upward one row at a time and fills every active
// triangle's span.
func (r *Rasterizer) sweep() {
	if len(r.table) == 0 {
		return
	}
	slices.SortStableFunc(r.table, func(a, b int) int {
		return cmp.Compare(r.edges[a].y, r.edges[b].y)
	})

	maxY := min(r.sweepMaxY, r.fb.Height-1)
	next := 0
	y := r.edges[r.table[0]].y

	for {
		if len(r.active) == 0 {
			if next == len(r.table) {
				break
			}
			y = r.edges[r.table[next]].y
		}
		if y > maxY {
			break
		}

		for next < len(r.table) && r.edges[r.table[next]].y == y {
			r.activate(r.table[next], y)
			next++
		}

		if y >= 0 {
			r.fillRow(y)
			r.Stats.Rows++
		}

		step := 1
		if y < 0 && !r.noSkip {
			step = r.skipRows(y, next)
		}
		r.advance(step)
		y += step
	}
}

// activate brings edge ei into the active list at row y.
func (r *Rasterizer) activate(ei, y int) {
	e := &r.edges[ei]
	a := &r.ael[e.tri]

	switch {
	case a.el < 0:
		a.el = ei

	case a.er < 0:
		a.er = ei
		l := &r.edges[a.el]
		if e.x < l.x || (e.x == l.x && e.dx < l.dx) {
			a.el, a.er = a.er, a.el
		}
		n := r.triangles[e.tri].normal
		a.dzx = -n.X / n.Z
		a.dzy = -n.Y / n.Z
		r.anchorDepth(e.tri, y)

		i, _ := slices.BinarySearch(r.active, e.tri)
		r.active = slices.Insert(r.active, i, e.tri)

	default:
		// The third edge continues whichever side just ran out.
		switch {
		case r.edges[a.el].dy <= 0:
			a.el = ei
			r.anchorDepth(e.tri, y)
		case r.edges[a.er].dy <= 0:
			a.er = ei
		}
	}
}

// anchorDepth evaluates the triangle's plane at its left edge on row y.
func (r *Rasterizer) anchorDepth(tri, y int) {
	t := &r.triangles[tri]
	a := &r.ael[tri]
	x := r.edges[a.el].x
	a.zl = -(t.normal.X*x + t.normal.Y*float64(y) + t.d) / t.normal.Z
}

// skipRows returns how far the sweep may jump from an invisible row y without
// passing row 0, the next edge-table bucket, or the end of an active edge.
// Those are the only rows where activation or removal can happen, so the
// jump is equivalent to stepping one row at a time.
func (r *Rasterizer) skipRows(y, next int) int {
	step := -y
	if next < len(r.table) {
		step = min(step, r.edges[r.table[next]].y-y)
	}
	for _, t := range r.active {
		a := r.ael[t]
		for _, ei := range [2]int{a.el, a.er} {
			if dy := r.edges[ei].dy; dy > 0 {
				step = min(step, dy)
			}
		}
	}
	return max(step, 1)
}

// advance moves every active triangle up by n rows, retiring those whose
// edges are both exhausted.
func (r *Rasterizer) advance(n int) {
	normals := r.state.Lighting
	kept := r.active[:0]
	for _, t := range r.active {
		a := &r.ael[t]
		el, er := &r.edges[a.el], &r.edges[a.er]
		if el.dy <= 0 && er.dy <= 0 {
			continue
		}
		a.zl += (a.dzx*el.dx + a.dzy) * float64(n)
		el.step(n, normals)
		er.step(n, normals)
		kept = append(kept, t)
	}
	r.active = kept
}

// fillRow rasterizes the spans of all active triangles on sweep row y into
// framebuffer row H-1-y.
func (r *Rasterizer) fillRow(y int) {
	w := r.fb.Width
	row := (r.fb.Height - 1 - y) * w
	smooth := r.state.SmoothLit()
	eye := r.camera.Eye()

	for _, t := range r.active {
		a := &r.ael[t]
		el, er := &r.edges[a.el], &r.edges[a.er]

		x0 := int(math.Floor(el.x))
		x1 := min(int(math.Floor(er.x)), w-1)
		if x1 < 0 || x0 > x1 {
			continue
		}

		var (
			dc     Color4
			dp, dn math3d.Vec3
		)
		if width := er.x - el.x; width > 0 {
			inv := 1 / width
			dc = er.color.Sub(el.color).Scale(inv)
			if smooth {
				dp = er.pos.Sub(el.pos).Scale(inv)
				dn = er.normal.Sub(el.normal).Scale(inv)
			}
		}

		c, z := el.color, a.zl
		p, nrm := el.pos, el.normal
		if x0 < 0 {
			s := float64(-x0)
			c = c.AddScaled(dc, s)
			z += a.dzx * s
			if smooth {
				p = p.Add(dp.Scale(s))
				nrm = nrm.Add(dn.Scale(s))
			}
			x0 = 0
		}

		for x := x0; x <= x1; x++ {
			i := row + x
			if !r.state.DepthTest || z < r.zbuf[i] {
				frag := c
				if smooth {
					frag = Shade(p, nrm, eye, c, r.Light, r.Material, r.GlobalAmbient)
				}
				r.writeFragment(i, frag, z)
			}
			c = c.Add(dc)
			z += a.dzx
			if smooth {
				p = p.Add(dp)
				nrm = nrm.Add(dn)
			}
		}
	}
}

func (r *Rasterizer) writeFragment(i int, c Color4, z float64) {
	r.Stats.Fragments++
	if r.state.ColorBuffer {
		if r.state.Blending {
			dst := Color4FromRGBA(r.fb.Pixels[i])
			c = c.Scale(c.A).Add(dst.Scale(1 - c.A))
			c.A = 1
		}
		r.fb.Pixels[i] = c.ToRGBA()
	}
	if r.state.DepthBuffer {
		r.zbuf[i] = z
	}
}
