package math3d

import (
	"math"
	"testing"
)

const eps = 1e-9

func near(a, b float64) bool {
	return math.Abs(a-b) < eps
}

func TestCross(t *testing.T) {
	got := V3(1, 0, 0).Cross(V3(0, 1, 0))
	if got != V3(0, 0, 1) {
		t.Errorf("x × y = %v, want (0,0,1)", got)
	}
}

func TestNormalizeZero(t *testing.T) {
	if got := Zero3().Normalize(); got != Zero3() {
		t.Errorf("Normalize(0) = %v, want zero", got)
	}
}

func TestLookAtMapsEyeToOrigin(t *testing.T) {
	eye := V3(3, 4, 5)
	view := LookAt(eye, Zero3(), Up())

	p := view.MulVec3(eye)
	if !near(p.X, 0) || !near(p.Y, 0) || !near(p.Z, 0) {
		t.Errorf("eye in view space = %v, want origin", p)
	}

	// The target lies straight ahead on -Z.
	c := view.MulVec3(Zero3())
	if !near(c.X, 0) || !near(c.Y, 0) || !near(c.Z, -eye.Len()) {
		t.Errorf("target in view space = %v, want (0,0,%v)", c, -eye.Len())
	}
}

func TestPerspectiveDepthRange(t *testing.T) {
	proj := Perspective(math.Pi/2, 1, 1, 100)

	tests := []struct {
		name string
		z    float64
		want float64
	}{
		{"near plane", -1, -1},
		{"far plane", -100, 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ndc := proj.MulVec4(V4(0, 0, tc.z, 1)).PerspectiveDivide()
			if !near(ndc.Z, tc.want) {
				t.Errorf("ndc z = %v, want %v", ndc.Z, tc.want)
			}
		})
	}
}

func TestFrustumMatchesPerspective(t *testing.T) {
	fovy, aspect := math.Pi/6, 4.0/3.0
	top := math.Tan(fovy/2) * 1
	want := Frustum(-top*aspect, top*aspect, -top, top, 1, 100)
	got := Perspective(fovy, aspect, 1, 100)
	for i := range got {
		if !near(got[i], want[i]) {
			t.Fatalf("element %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestOrthographicCorners(t *testing.T) {
	m := Orthographic(-2, 2, -1, 1, 1, 10)
	p := m.MulVec3(V3(2, 1, -1))
	if !near(p.X, 1) || !near(p.Y, 1) || !near(p.Z, -1) {
		t.Errorf("corner = %v, want (1,1,-1)", p)
	}
}

func TestMulIdentity(t *testing.T) {
	m := Translate(V3(1, 2, 3)).Mul(RotateY(0.3))
	if got := m.Mul(Identity()); got != m {
		t.Errorf("m * I != m")
	}
	if got := m.Transpose().Transpose(); got != m {
		t.Errorf("transpose is not an involution")
	}
}

func TestInverse(t *testing.T) {
	tests := []struct {
		name string
		m    Mat4
	}{
		{"translate", Translate(V3(1, -2, 3))},
		{"rotate scale", RotateY(0.7).Mul(Scale(V3(2, 3, 0.5)))},
		{"view", LookAt(V3(3, 4, 5), Zero3(), Up())},
		{"projection", Perspective(math.Pi/6, 4.0/3.0, 1, 100)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			inv, ok := tc.m.Inverse()
			if !ok {
				t.Fatal("matrix reported singular")
			}
			got := tc.m.Mul(inv)
			want := Identity()
			for i := range got {
				if math.Abs(got[i]-want[i]) > 1e-9 {
					t.Fatalf("m*inv[%d] = %v, want %v", i, got[i], want[i])
				}
			}
		})
	}

	if _, ok := Scale(V3(1, 0, 1)).Inverse(); ok {
		t.Error("singular matrix reported invertible")
	}
}
