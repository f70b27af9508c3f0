package render

import (
	"errors"
	"fmt"

	"github.com/taigrr/scanline/pkg/math3d"
)

// ErrInvalidProjection is returned when projection parameters violate their
// preconditions.
var ErrInvalidProjection = errors.New("invalid projection parameters")

// Camera holds the view and projection transforms applied to every vertex.
type Camera struct {
	eye math3d.Vec3

	// Cached matrices (computed on demand)
	viewMatrix     math3d.Mat4
	projMatrix     math3d.Mat4
	viewProjMatrix math3d.Mat4
	dirty          bool
}

// NewCamera creates a camera at (0, 0, 1) with identity view and projection.
func NewCamera() *Camera {
	return &Camera{
		eye:        math3d.V3(0, 0, 1),
		viewMatrix: math3d.Identity(),
		projMatrix: math3d.Identity(),
		dirty:      true,
	}
}

// LookAt places the camera at eye looking towards at.
func (c *Camera) LookAt(eye, at, up math3d.Vec3) {
	c.eye = eye
	c.viewMatrix = math3d.LookAt(eye, at, up)
	c.dirty = true
}

// Perspective sets a symmetric perspective projection.
// fovy is the vertical field of view in radians.
func (c *Camera) Perspective(fovy, aspect, zNear, zFar float64) error {
	if !(fovy > 0) || !(aspect > 0) || !(zNear > 0) || !(zNear < zFar) {
		return fmt.Errorf("perspective(fovy=%g, aspect=%g, near=%g, far=%g): %w",
			fovy, aspect, zNear, zFar, ErrInvalidProjection)
	}
	c.setProjection(math3d.Perspective(fovy, aspect, zNear, zFar))
	return nil
}

// Frustum sets a perspective projection from the near-plane window.
func (c *Camera) Frustum(left, right, bottom, top, near, far float64) error {
	if err := checkVolume("frustum", left, right, bottom, top, near, far); err != nil {
		return err
	}
	c.setProjection(math3d.Frustum(left, right, bottom, top, near, far))
	return nil
}

// Ortho sets an orthographic projection.
func (c *Camera) Ortho(left, right, bottom, top, near, far float64) error {
	if err := checkVolume("ortho", left, right, bottom, top, near, far); err != nil {
		return err
	}
	c.setProjection(math3d.Orthographic(left, right, bottom, top, near, far))
	return nil
}

func checkVolume(op string, left, right, bottom, top, near, far float64) error {
	if left == right || bottom == top || near == far {
		return fmt.Errorf("%s(%g, %g, %g, %g, %g, %g): %w",
			op, left, right, bottom, top, near, far, ErrInvalidProjection)
	}
	return nil
}

func (c *Camera) setProjection(m math3d.Mat4) {
	c.projMatrix = m
	c.dirty = true
}

// Eye returns the camera position used for specular lighting.
func (c *Camera) Eye() math3d.Vec3 {
	return c.eye
}

// ViewMatrix returns the view matrix.
func (c *Camera) ViewMatrix() math3d.Mat4 {
	return c.viewMatrix
}

// ProjectionMatrix returns the projection matrix.
func (c *Camera) ProjectionMatrix() math3d.Mat4 {
	return c.projMatrix
}

// ViewProjectionMatrix returns the combined projection * view matrix.
func (c *Camera) ViewProjectionMatrix() math3d.Mat4 {
	if c.dirty {
		c.viewProjMatrix = c.projMatrix.Mul(c.viewMatrix)
		c.dirty = false
	}
	return c.viewProjMatrix
}

// Transform maps a homogeneous world-space point to clip space.
func (c *Camera) Transform(p math3d.Vec4) math3d.Vec4 {
	return c.ViewProjectionMatrix().MulVec4(p)
}
