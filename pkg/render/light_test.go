package render

import (
	"math"
	"testing"

	"github.com/taigrr/scanline/pkg/math3d"
)

func colorNear(a, b Color4, eps float64) bool {
	return math.Abs(a.R-b.R) < eps && math.Abs(a.G-b.G) < eps &&
		math.Abs(a.B-b.B) < eps && math.Abs(a.A-b.A) < eps
}

func TestShade(t *testing.T) {
	up := math3d.V3(0, 0, 1)
	eye := math3d.V3(0, 0, 10)
	white := Gray(1)

	directional := DefaultLight()
	directional.Type = LightDirectional
	directional.Diffuse = Gray(0.5)

	point := DefaultLight()
	point.Type = LightPoint
	point.Position = math3d.V3(0, 0, 1)
	point.Attenuation2 = 1

	below := DefaultLight()
	below.Type = LightDirectional
	below.Direction = math3d.V3(0, 0, 1)

	spot := DefaultLight()
	spot.Type = LightSpot

	glowing := DefaultMaterial()
	glowing.Emission = C4(0.3, 0, 0, 0)

	shiny := DefaultMaterial()
	shiny.Specular = Gray(1)
	shiny.Shininess = 60

	tests := []struct {
		name  string
		base  Color4
		light Light
		mat   Material
		want  Color4
	}{
		// 0.2*0.1 ambient + 0.5 diffuse
		{"directional", white, directional, DefaultMaterial(), C4(0.52, 0.52, 0.52, 1)},
		// diffuse 1 attenuated by 1/(1 + d*d) at d = 1, plus ambient
		{"point attenuated", white, point, DefaultMaterial(), C4(0.52, 0.52, 0.52, 1)},
		{"facing away", white, below, DefaultMaterial(), C4(0.02, 0.02, 0.02, 1)},
		{"spot passes through", C4(0.3, 0.4, 0.5, 0.6), spot, DefaultMaterial(), C4(0.3, 0.4, 0.5, 0.6)},
		{"none passes through", C4(0.3, 0.4, 0.5, 0.6), DefaultLight(), DefaultMaterial(), C4(0.3, 0.4, 0.5, 0.6)},
		// eye, light and normal aligned: N·H = 1
		{"specular", C4(0, 0, 0, 1), func() Light { l := directional; l.Diffuse = Gray(1); return l }(), shiny, C4(1.02, 1.02, 1.02, 1)},
		// emission is added even where the light does not reach
		{"emission", white, below, glowing, C4(0.32, 0.02, 0.02, 1)},
		{"alpha forced", C4(1, 0, 0, 0.25), directional, DefaultMaterial(), C4(0.52, 0.02, 0.02, 1)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Shade(math3d.Zero3(), up, eye, tc.base, tc.light, tc.mat, DefaultGlobalAmbient)
			if !colorNear(got, tc.want, 1e-9) {
				t.Errorf("Shade = %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestShadeNormalizesNormal(t *testing.T) {
	l := DefaultLight()
	l.Type = LightDirectional
	a := Shade(math3d.Zero3(), math3d.V3(0, 0, 5), math3d.V3(0, 0, 1), Gray(1), l, DefaultMaterial(), DefaultGlobalAmbient)
	b := Shade(math3d.Zero3(), math3d.V3(0, 0, 1), math3d.V3(0, 0, 1), Gray(1), l, DefaultMaterial(), DefaultGlobalAmbient)
	if !colorNear(a, b, 1e-12) {
		t.Errorf("unnormalized normal gave %+v, want %+v", a, b)
	}
}

func TestColor4ToRGBA(t *testing.T) {
	tests := []struct {
		in   Color4
		want Color
	}{
		{C4(0, 0, 0, 1), RGB(0, 0, 0)},
		{C4(1, 1, 1, 1), RGB(255, 255, 255)},
		{C4(0.5, 2, -1, 1), RGB(128, 255, 0)},
		{C4(math.NaN(), 0, 0, 0), Color{}},
	}
	for _, tc := range tests {
		if got := tc.in.ToRGBA(); got != tc.want {
			t.Errorf("%+v.ToRGBA() = %v, want %v", tc.in, got, tc.want)
		}
	}
}
