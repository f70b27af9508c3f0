package math3d

import "math"

// Mat4 is a 4x4 matrix stored in column-major order, following OpenGL.
//
// Memory layout (indices):
// | 0  4  8  12 |
// | 1  5  9  13 |
// | 2  6  10 14 |
// | 3  7  11 15 |
type Mat4 [16]float64

// Identity returns the identity matrix.
func Identity() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Translate creates a translation matrix.
func Translate(v Vec3) Mat4 {
	m := Identity()
	m[12], m[13], m[14] = v.X, v.Y, v.Z
	return m
}

// Scale creates a scaling matrix.
func Scale(v Vec3) Mat4 {
	return Mat4{
		v.X, 0, 0, 0,
		0, v.Y, 0, 0,
		0, 0, v.Z, 0,
		0, 0, 0, 1,
	}
}

// RotateX creates a rotation matrix around the X axis.
func RotateX(angle float64) Mat4 {
	c, s := math.Cos(angle), math.Sin(angle)
	return Mat4{
		1, 0, 0, 0,
		0, c, s, 0,
		0, -s, c, 0,
		0, 0, 0, 1,
	}
}

// RotateY creates a rotation matrix around the Y axis.
func RotateY(angle float64) Mat4 {
	c, s := math.Cos(angle), math.Sin(angle)
	return Mat4{
		c, 0, -s, 0,
		0, 1, 0, 0,
		s, 0, c, 0,
		0, 0, 0, 1,
	}
}

// LookAt creates a view matrix looking from eye towards center.
func LookAt(eye, center, up Vec3) Mat4 {
	f := center.Sub(eye).Normalize() // Forward
	s := f.Cross(up).Normalize()     // Right
	u := s.Cross(f)                  // Up (recomputed)

	return Mat4{
		s.X, u.X, -f.X, 0,
		s.Y, u.Y, -f.Y, 0,
		s.Z, u.Z, -f.Z, 0,
		-s.Dot(eye), -u.Dot(eye), f.Dot(eye), 1,
	}
}

// Frustum creates a perspective projection matrix from the near-plane
// window (left, right, bottom, top) and the near and far distances.
func Frustum(left, right, bottom, top, near, far float64) Mat4 {
	rl := right - left
	tb := top - bottom
	fn := far - near

	var m Mat4
	m[0] = 2 * near / rl
	m[5] = 2 * near / tb
	m[8] = (right + left) / rl
	m[9] = (top + bottom) / tb
	m[10] = -(far + near) / fn
	m[11] = -1
	m[14] = -2 * far * near / fn
	return m
}

// Perspective creates a perspective projection matrix.
// fovy is the vertical field of view in radians and aspect is width/height.
func Perspective(fovy, aspect, near, far float64) Mat4 {
	top := math.Tan(fovy/2) * near
	right := top * aspect
	return Frustum(-right, right, -top, top, near, far)
}

// Orthographic creates an orthographic projection matrix.
func Orthographic(left, right, bottom, top, near, far float64) Mat4 {
	rl := 1.0 / (right - left)
	tb := 1.0 / (top - bottom)
	fn := 1.0 / (far - near)

	return Mat4{
		2 * rl, 0, 0, 0,
		0, 2 * tb, 0, 0,
		0, 0, -2 * fn, 0,
		-(right + left) * rl, -(top + bottom) * tb, -(far + near) * fn, 1,
	}
}

// Mul multiplies two matrices: a * b.
//
//nolint:st1016 // a*b naming convention is clearer for matrix multiplication
func (a Mat4) Mul(b Mat4) Mat4 {
	var m Mat4
	for col := range 4 {
		for row := range 4 {
			var sum float64
			for k := range 4 {
				sum += a[row+k*4] * b[k+col*4]
			}
			m[row+col*4] = sum
		}
	}
	return m
}

// MulVec3 transforms a Vec3 as a point (w=1) including the perspective divide.
func (m Mat4) MulVec3(v Vec3) Vec3 {
	return m.MulVec4(V4FromV3(v, 1)).PerspectiveDivide()
}

// MulVec3Dir transforms a Vec3 as a direction (w=0, no translation).
func (m Mat4) MulVec3Dir(v Vec3) Vec3 {
	return Vec3{
		m[0]*v.X + m[4]*v.Y + m[8]*v.Z,
		m[1]*v.X + m[5]*v.Y + m[9]*v.Z,
		m[2]*v.X + m[6]*v.Y + m[10]*v.Z,
	}
}

// MulVec4 transforms a Vec4.
func (m Mat4) MulVec4(v Vec4) Vec4 {
	return Vec4{
		m[0]*v.X + m[4]*v.Y + m[8]*v.Z + m[12]*v.W,
		m[1]*v.X + m[5]*v.Y + m[9]*v.Z + m[13]*v.W,
		m[2]*v.X + m[6]*v.Y + m[10]*v.Z + m[14]*v.W,
		m[3]*v.X + m[7]*v.Y + m[11]*v.Z + m[15]*v.W,
	}
}

// Transpose returns the transposed matrix.
func (m Mat4) Transpose() Mat4 {
	return Mat4{
		m[0], m[4], m[8], m[12],
		m[1], m[5], m[9], m[13],
		m[2], m[6], m[10], m[14],
		m[3], m[7], m[11], m[15],
	}
}

// Inverse returns the inverse of m. ok is false when m is singular, in which
// case the identity is returned.
func (m Mat4) Inverse() (inv Mat4, ok bool) {
	s0 := m[0]*m[5] - m[4]*m[1]
	s1 := m[0]*m[6] - m[4]*m[2]
	s2 := m[0]*m[7] - m[4]*m[3]
	s3 := m[1]*m[6] - m[5]*m[2]
	s4 := m[1]*m[7] - m[5]*m[3]
	s5 := m[2]*m[7] - m[6]*m[3]

	c5 := m[10]*m[15] - m[14]*m[11]
	c4 := m[9]*m[15] - m[13]*m[11]
	c3 := m[9]*m[14] - m[13]*m[10]
	c2 := m[8]*m[15] - m[12]*m[11]
	c1 := m[8]*m[14] - m[12]*m[10]
	c0 := m[8]*m[13] - m[12]*m[9]

	det := s0*c5 - s1*c4 + s2*c3 + s3*c2 - s4*c1 + s5*c0
	if det == 0 {
		return Identity(), false
	}
	d := 1 / det

	inv[0] = (m[5]*c5 - m[6]*c4 + m[7]*c3) * d
	inv[1] = (-m[1]*c5 + m[2]*c4 - m[3]*c3) * d
	inv[2] = (m[13]*s5 - m[14]*s4 + m[15]*s3) * d
	inv[3] = (-m[9]*s5 + m[10]*s4 - m[11]*s3) * d

	inv[4] = (-m[4]*c5 + m[6]*c2 - m[7]*c1) * d
	inv[5] = (m[0]*c5 - m[2]*c2 + m[3]*c1) * d
	inv[6] = (-m[12]*s5 + m[14]*s2 - m[15]*s1) * d
	inv[7] = (m[8]*s5 - m[10]*s2 + m[11]*s1) * d

	inv[8] = (m[4]*c4 - m[5]*c2 + m[7]*c0) * d
	inv[9] = (-m[0]*c4 + m[1]*c2 - m[3]*c0) * d
	inv[10] = (m[12]*s4 - m[13]*s2 + m[15]*s0) * d
	inv[11] = (-m[8]*s4 + m[9]*s2 - m[11]*s0) * d

	inv[12] = (-m[4]*c3 + m[5]*c1 - m[6]*c0) * d
	inv[13] = (m[0]*c3 - m[1]*c1 + m[2]*c0) * d
	inv[14] = (-m[12]*s3 + m[13]*s1 - m[14]*s0) * d
	inv[15] = (m[8]*s3 - m[9]*s1 + m[10]*s0) * d

	return inv, true
}

// NormalMatrix returns the inverse transpose of m, the matrix that carries
// surface normals through a non-uniform transform.
func (m Mat4) NormalMatrix() Mat4 {
	inv, ok := m.Inverse()
	if !ok {
		return m
	}
	return inv.Transpose()
}
