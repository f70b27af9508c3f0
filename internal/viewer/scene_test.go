package viewer

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/taigrr/scanline/internal/config"
	"github.com/taigrr/scanline/pkg/math3d"
	"github.com/taigrr/scanline/pkg/render"
)

const tetraOBJ = `v 0 0 0
v 4 0 0
v 0 4 0
v 0 0 4
f 1 3 2
f 1 2 4
f 1 4 3
f 2 3 4
`

func writeModel(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tetra.obj")
	if err := os.WriteFile(path, []byte(tetraOBJ), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func countBackground(fb *render.Framebuffer, bg render.Color) int {
	n := 0
	for _, p := range fb.Pixels {
		if p == bg {
			n++
		}
	}
	return n
}

func TestRenderColorCube(t *testing.T) {
	cfg := config.Default()
	s := NewScene(cfg, nil)
	fb := render.NewFramebuffer(80, 60)

	if err := s.Render(fb); err != nil {
		t.Fatal(err)
	}
	if s.Title() != "color cube" || s.TriangleCount() != 12 {
		t.Errorf("title %q with %d triangles", s.Title(), s.TriangleCount())
	}

	bg := cfg.BackgroundColor()
	if fb.GetPixel(40, 30) == bg {
		t.Error("cube does not cover the center pixel")
	}
	if countBackground(fb, bg) == 0 {
		t.Error("cube covers the whole frame")
	}
	// three faces are visible from (3, 4, 5), three are culled
	if st := s.Stats(); st.Culled != 6 || st.Fragments == 0 {
		t.Errorf("stats = %+v", st)
	}
}

func TestLoadModel(t *testing.T) {
	path := writeModel(t)
	s := NewScene(config.Default(), nil)

	if err := s.Load(path); err != nil {
		t.Fatal(err)
	}
	if s.Title() != "tetra.obj" || s.TriangleCount() != 4 {
		t.Errorf("title %q with %d triangles", s.Title(), s.TriangleCount())
	}

	fb := render.NewFramebuffer(64, 48)
	if err := s.Render(fb); err != nil {
		t.Fatal(err)
	}
	if st := s.Stats(); st.Triangles != 4 || st.Fragments == 0 {
		t.Errorf("stats = %+v", st)
	}

	if err := s.Load(filepath.Join(t.TempDir(), "missing.obj")); err == nil {
		t.Error("expected error for a missing model")
	}
	if s.Title() != "tetra.obj" {
		t.Error("failed load replaced the model")
	}

	if err := os.WriteFile(path, []byte(tetraOBJ+"f 2 4 3\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := s.Reload(); err != nil || s.TriangleCount() != 5 {
		t.Errorf("Reload: %v, %d triangles", err, s.TriangleCount())
	}

	if err := s.Load(""); err != nil || s.Title() != "color cube" {
		t.Errorf("Load(\"\"): %v, %q", err, s.Title())
	}
}

func TestRandomColorsStable(t *testing.T) {
	s := NewScene(config.Default(), nil)
	if err := s.Load(writeModel(t)); err != nil {
		t.Fatal(err)
	}
	s.ToggleRandomColors()

	a := render.NewFramebuffer(64, 48)
	b := render.NewFramebuffer(64, 48)
	if err := s.Render(a); err != nil {
		t.Fatal(err)
	}
	if err := s.Render(b); err != nil {
		t.Fatal(err)
	}
	for i := range a.Pixels {
		if a.Pixels[i] != b.Pixels[i] {
			t.Fatalf("pixel %d differs between frames", i)
		}
	}
}

func TestToggles(t *testing.T) {
	s := NewScene(config.Default(), nil)
	cfg := s.Config()

	s.ToggleShading()
	if cfg.Render.Shading != "smooth" {
		t.Errorf("shading = %s", cfg.Render.Shading)
	}
	s.ToggleShading()
	if cfg.Render.Shading != "flat" {
		t.Errorf("shading = %s", cfg.Render.Shading)
	}

	s.ToggleLighting()
	if cfg.Render.Lighting {
		t.Error("lighting still on")
	}

	var seen []string
	for range 3 {
		s.CycleLight()
		seen = append(seen, cfg.Light.Type)
	}
	if seen[0] != "directional" || seen[1] != "none" || seen[2] != "point" {
		t.Errorf("light cycle = %v", seen)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("toggled config invalid: %v", err)
	}
}

func TestOrbit(t *testing.T) {
	s := NewScene(config.Default(), nil)
	if s.Eye() != math3d.V3(3, 4, 5) {
		t.Errorf("initial eye = %v", s.Eye())
	}

	s.Rotate(math.Pi, 0)
	if e := s.Eye(); e.Sub(math3d.V3(-3, 4, -5)).Len() > 1e-9 {
		t.Errorf("eye after half turn = %v", e)
	}

	s.Rotate(0, 10)
	if s.Pitch >= math.Pi/2 {
		t.Errorf("pitch %v reached the pole", s.Pitch)
	}

	s.ZoomBy(100)
	if s.Zoom != maxZoom {
		t.Errorf("zoom = %v, want %v", s.Zoom, maxZoom)
	}
	s.ZoomBy(0)
	if s.Zoom != minZoom {
		t.Errorf("zoom = %v, want %v", s.Zoom, minZoom)
	}
}
