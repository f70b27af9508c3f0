package render

import (
	"math"

	"github.com/taigrr/scanline/pkg/math3d"
)

// LightType selects how a light's direction is derived.
type LightType int

const (
	LightNone LightType = iota
	LightPoint
	LightSpot // accepted but not lit
	LightDirectional
)

func (t LightType) String() string {
	switch t {
	case LightPoint:
		return "point"
	case LightSpot:
		return "spot"
	case LightDirectional:
		return "directional"
	default:
		return "none"
	}
}

// Light is a single light source. Fields are mutated directly between frames.
type Light struct {
	Type     LightType
	Ambient  Color4
	Diffuse  Color4
	Specular Color4

	Position  math3d.Vec3 // point lights
	Direction math3d.Vec3 // directional lights, pointing away from the source

	// Point light attenuation 1/(a0 + a1*d + a2*d*d).
	Attenuation0 float64
	Attenuation1 float64
	Attenuation2 float64
}

// DefaultLight returns a disabled white light.
func DefaultLight() Light {
	return Light{
		Type:         LightNone,
		Ambient:      C4(0, 0, 0, 1),
		Diffuse:      Gray(1),
		Specular:     Gray(1),
		Position:     math3d.V3(0, 0, 1),
		Direction:    math3d.V3(0, 0, -1),
		Attenuation0: 1,
	}
}

// Material describes how a surface responds to light.
type Material struct {
	Ambient   Color4
	Diffuse   Color4
	Specular  Color4
	Emission  Color4
	Shininess float64
}

// DefaultMaterial returns a dull gray material without highlights.
func DefaultMaterial() Material {
	return Material{
		Ambient:  Gray(0.2),
		Diffuse:  Gray(0.8),
		Specular: C4(0, 0, 0, 1),
		Emission: C4(0, 0, 0, 0),
	}
}

// DefaultGlobalAmbient is the scene-wide ambient term.
var DefaultGlobalAmbient = Gray(0.1)

// Shade evaluates Blinn-Phong lighting for a surface point.
//
// base is the interpolated vertex color; it takes the role of the material's
// diffuse and ambient reflectance. Spot lights and LightNone leave base
// unchanged. The returned color always has alpha 1.
func Shade(pos, normal, eye math3d.Vec3, base Color4, light Light, mat Material, globalAmbient Color4) Color4 {
	var l math3d.Vec3
	atten := 1.0

	switch light.Type {
	case LightPoint:
		toLight := light.Position.Sub(pos)
		d := toLight.Len()
		l = toLight.Normalize()
		if k := light.Attenuation0 + light.Attenuation1*d + light.Attenuation2*d*d; k > 0 {
			atten = 1 / k
		}
	case LightDirectional:
		l = light.Direction.Negate().Normalize()
	default:
		return base
	}

	n := normal.Normalize()
	out := mat.Emission.Add(mat.Ambient.Mul(globalAmbient))

	nDotL := math.Max(n.Dot(l), 0)
	if nDotL > 0 {
		v := eye.Sub(pos).Normalize()
		h := l.Add(v).Normalize()

		diffuse := base.Mul(light.Diffuse).Scale(nDotL)
		ambient := base.Mul(light.Ambient)
		specular := mat.Specular.Mul(light.Specular).Scale(math.Pow(math.Max(n.Dot(h), 0), mat.Shininess))

		out = out.AddScaled(diffuse.Add(ambient).Add(specular), atten)
	}

	out.A = 1
	return out
}
