package render

import (
	"errors"
	"testing"
)

func TestDefaultRenderState(t *testing.T) {
	s := DefaultRenderState()
	if !s.ColorBuffer || !s.DepthBuffer || !s.DepthTest || !s.Lighting {
		t.Errorf("default state %+v missing an enabled switch", s)
	}
	if s.Blending {
		t.Error("blending enabled by default")
	}
	if s.Shading != ShadeFlat || !s.FlatLit() || s.SmoothLit() {
		t.Errorf("default shading = %v", s.Shading)
	}
}

func TestShadingModesExclusive(t *testing.T) {
	tests := []struct {
		name string
		cap  Capability
		on   bool
		want ShadingMode
	}{
		{"enable smooth", CapSmoothShading, true, ShadeSmooth},
		{"disable smooth", CapSmoothShading, false, ShadeFlat},
		{"enable flat", CapFlatShading, true, ShadeFlat},
		{"disable flat", CapFlatShading, false, ShadeSmooth},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := NewRasterizer()
			if err := r.SetState(tc.cap, tc.on); err != nil {
				t.Fatal(err)
			}
			if got := r.State().Shading; got != tc.want {
				t.Errorf("Shading = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestLitPredicates(t *testing.T) {
	r := NewRasterizer()
	_ = r.SetState(CapSmoothShading, true)
	if !r.State().SmoothLit() || r.State().FlatLit() {
		t.Error("smooth shading with lighting should be smooth-lit")
	}
	_ = r.SetState(CapLighting, false)
	if r.State().SmoothLit() || r.State().FlatLit() {
		t.Error("no lit predicate should hold without lighting")
	}
}

func TestSetStateSwitches(t *testing.T) {
	r := NewRasterizer()
	for _, c := range []Capability{CapColorBuffer, CapDepthBuffer, CapDepthTest, CapLighting, CapBlending} {
		if err := r.SetState(c, false); err != nil {
			t.Fatal(err)
		}
	}
	s := r.State()
	if s.ColorBuffer || s.DepthBuffer || s.DepthTest || s.Lighting || s.Blending {
		t.Errorf("state %+v still has a switch on", s)
	}

	if err := r.SetState(Capability(99), true); !errors.Is(err, ErrUnknownCapability) {
		t.Errorf("unknown capability = %v, want ErrUnknownCapability", err)
	}
}
