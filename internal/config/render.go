package config

import (
	"fmt"
	"math"

	"github.com/taigrr/scanline/pkg/math3d"
	"github.com/taigrr/scanline/pkg/render"
)

func parseLightType(s string) (render.LightType, error) {
	switch s {
	case "point":
		return render.LightPoint, nil
	case "directional":
		return render.LightDirectional, nil
	case "spot":
		return render.LightSpot, nil
	case "none":
		return render.LightNone, nil
	default:
		return render.LightNone, fmt.Errorf("light type %q: %w", s, ErrInvalidConfig)
	}
}

func vec3(v [3]float64) math3d.Vec3 {
	return math3d.V3(v[0], v[1], v[2])
}

// RenderState returns the render switches selected by the config.
func (c *Config) RenderState() render.RenderState {
	s := render.DefaultRenderState()
	if c.Render.Shading == "smooth" {
		s.Shading = render.ShadeSmooth
	}
	s.Lighting = c.Render.Lighting
	s.Blending = c.Render.Blending
	return s
}

// BackgroundColor returns the clear color.
func (c *Config) BackgroundColor() render.Color {
	b := c.Render.Background
	return render.RGB(b[0], b[1], b[2])
}

// SceneLight returns the configured light. Unknown types yield LightNone;
// Validate reports them.
func (c *Config) SceneLight() render.Light {
	l := render.DefaultLight()
	l.Type, _ = parseLightType(c.Light.Type)
	l.Position = vec3(c.Light.Position)
	l.Direction = vec3(c.Light.Direction)
	l.Attenuation0 = c.Light.Attenuation[0]
	l.Attenuation1 = c.Light.Attenuation[1]
	l.Attenuation2 = c.Light.Attenuation[2]
	return l
}

// SceneMaterial returns the configured surface material.
func (c *Config) SceneMaterial() render.Material {
	m := render.DefaultMaterial()
	s := c.Material.Specular
	m.Specular = render.C4(s[0], s[1], s[2], s[3])
	e := c.Material.Emission
	m.Emission = render.C4(e[0], e[1], e[2], 0)
	m.Shininess = c.Material.Shininess
	return m
}

// Apply configures r's camera, state, light and material. aspect is the
// framebuffer's width over height.
func (c *Config) Apply(r *render.Rasterizer, aspect float64) error {
	r.LookAt(vec3(c.Camera.Eye), vec3(c.Camera.At), vec3(c.Camera.Up))
	fovy := c.Camera.FOVY * math.Pi / 180
	if err := r.Perspective(fovy, aspect, c.Camera.Near, c.Camera.Far); err != nil {
		return err
	}

	st := c.RenderState()
	for _, sw := range []struct {
		c  render.Capability
		on bool
	}{
		{render.CapLighting, st.Lighting},
		{render.CapBlending, st.Blending},
		{render.CapSmoothShading, st.Shading == render.ShadeSmooth},
	} {
		if err := r.SetState(sw.c, sw.on); err != nil {
			return err
		}
	}

	r.Light = c.SceneLight()
	r.Material = c.SceneMaterial()
	return nil
}
