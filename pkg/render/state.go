package render

import (
	"errors"
	"fmt"
)

// ErrUnknownCapability is returned by SetState for capabilities it does not know.
var ErrUnknownCapability = errors.New("unknown capability")

// ShadingMode selects where lighting is evaluated.
type ShadingMode int

const (
	// ShadeFlat lights each vertex once before rasterization.
	ShadeFlat ShadingMode = iota
	// ShadeSmooth lights every fragment from its interpolated position and normal.
	ShadeSmooth
)

func (m ShadingMode) String() string {
	switch m {
	case ShadeFlat:
		return "flat"
	case ShadeSmooth:
		return "smooth"
	default:
		return fmt.Sprintf("ShadingMode(%d)", int(m))
	}
}

// Capability names a switch accepted by Rasterizer.SetState.
type Capability int

const (
	CapColorBuffer Capability = iota
	CapDepthBuffer
	CapDepthTest
	CapLighting
	CapBlending
	CapFlatShading
	CapSmoothShading
)

// RenderState controls which buffers are written and how fragments are shaded.
type RenderState struct {
	Shading     ShadingMode
	ColorBuffer bool // write fragment colors
	DepthBuffer bool // write fragment depths
	DepthTest   bool // reject fragments not closer than the stored depth
	Lighting    bool
	Blending    bool // src*a + dst*(1-a)
}

// DefaultRenderState returns color and depth writes with depth testing, flat
// shading and lighting enabled and blending disabled.
func DefaultRenderState() RenderState {
	return RenderState{
		Shading:     ShadeFlat,
		ColorBuffer: true,
		DepthBuffer: true,
		DepthTest:   true,
		Lighting:    true,
	}
}

// FlatLit reports whether lighting is evaluated per vertex.
func (s RenderState) FlatLit() bool {
	return s.Lighting && s.Shading == ShadeFlat
}

// SmoothLit reports whether lighting is evaluated per fragment.
func (s RenderState) SmoothLit() bool {
	return s.Lighting && s.Shading == ShadeSmooth
}

// set applies a capability switch. Flat and smooth shading are two views of
// the same mode: turning one on turns the other off.
func (s *RenderState) set(c Capability, on bool) error {
	switch c {
	case CapColorBuffer:
		s.ColorBuffer = on
	case CapDepthBuffer:
		s.DepthBuffer = on
	case CapDepthTest:
		s.DepthTest = on
	case CapLighting:
		s.Lighting = on
	case CapBlending:
		s.Blending = on
	case CapFlatShading:
		s.Shading = ShadeSmooth
		if on {
			s.Shading = ShadeFlat
		}
	case CapSmoothShading:
		s.Shading = ShadeFlat
		if on {
			s.Shading = ShadeSmooth
		}
	default:
		return fmt.Errorf("capability %d: %w", int(c), ErrUnknownCapability)
	}
	return nil
}
