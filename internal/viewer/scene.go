// Package viewer holds the scene shared by the terminal and desktop viewers:
// the loaded model, the orbiting camera and the render toggles.
package viewer

import (
	"fmt"
	"math"
	"math/rand/v2"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/taigrr/scanline/internal/config"
	"github.com/taigrr/scanline/pkg/math3d"
	"github.com/taigrr/scanline/pkg/models"
	"github.com/taigrr/scanline/pkg/render"
)

const (
	cubeSize = 2 // matches the extent of a unitized model
	minZoom  = 0.2
	maxZoom  = 5
	maxPitch = math.Pi/2 - 0.01
)

// Scene renders one model, or the color cube when none is loaded, from a
// camera orbiting the configured look-at point.
type Scene struct {
	cfg  *config.Config
	log  *zap.Logger
	rast *render.Rasterizer

	path string
	mesh *models.Mesh

	// Yaw and Pitch orbit the eye around the look-at point, in radians.
	Yaw, Pitch float64
	// Zoom scales the eye distance.
	Zoom float64
	// Seed fixes random face colors between frames.
	Seed uint64
}

// NewScene creates a scene that draws the color cube.
func NewScene(cfg *config.Config, log *zap.Logger) *Scene {
	if log == nil {
		log = zap.NewNop()
	}
	return &Scene{
		cfg:  cfg,
		log:  log,
		rast: render.NewRasterizer(render.WithLogger(log.Named("render"))),
		Zoom: 1,
		Seed: 1,
	}
}

// Load reads and unitizes the model at path. An empty path returns to the
// color cube. On error the previous model stays.
func (s *Scene) Load(path string) error {
	if path == "" {
		s.path, s.mesh = "", nil
		return nil
	}

	mesh, err := models.Load(path)
	if err != nil {
		return fmt.Errorf("load model: %w", err)
	}
	mesh.Unitize()

	s.path, s.mesh = path, mesh
	s.log.Info("model loaded",
		zap.String("path", path),
		zap.Int("vertices", mesh.VertexCount()),
		zap.Int("triangles", mesh.TriangleCount()),
		zap.Int("materials", mesh.MaterialCount()),
	)
	return nil
}

// Reload loads the current model again.
func (s *Scene) Reload() error {
	return s.Load(s.path)
}

// Title names what is being shown.
func (s *Scene) Title() string {
	if s.mesh == nil {
		return "color cube"
	}
	return filepath.Base(s.path)
}

// TriangleCount returns the triangles submitted per frame.
func (s *Scene) TriangleCount() int {
	if s.mesh == nil {
		return 12
	}
	return s.mesh.TriangleCount()
}

// Stats returns the statistics of the last rendered frame.
func (s *Scene) Stats() render.FrameStats {
	return s.rast.Stats
}

// Config returns the live configuration; toggles edit it in place.
func (s *Scene) Config() *config.Config {
	return s.cfg
}

// ToggleShading switches between flat and smooth shading.
func (s *Scene) ToggleShading() {
	if s.cfg.Render.Shading == "smooth" {
		s.cfg.Render.Shading = "flat"
	} else {
		s.cfg.Render.Shading = "smooth"
	}
}

// ToggleLighting switches lighting on or off.
func (s *Scene) ToggleLighting() {
	s.cfg.Render.Lighting = !s.cfg.Render.Lighting
}

// CycleLight steps the light through point, directional and none.
func (s *Scene) CycleLight() {
	switch s.cfg.Light.Type {
	case "point":
		s.cfg.Light.Type = "directional"
	case "directional":
		s.cfg.Light.Type = "none"
	default:
		s.cfg.Light.Type = "point"
	}
}

// ToggleRandomColors switches random per-face colors on or off and picks a
// new palette.
func (s *Scene) ToggleRandomColors() {
	s.cfg.Render.RandomColors = !s.cfg.Render.RandomColors
	s.Seed++
}

// Rotate adds to the orbit angles, keeping the eye off the poles.
func (s *Scene) Rotate(yaw, pitch float64) {
	s.Yaw += yaw
	s.Pitch = max(-maxPitch, min(maxPitch, s.Pitch+pitch))
}

// ZoomBy multiplies the eye distance by f.
func (s *Scene) ZoomBy(f float64) {
	s.Zoom = max(minZoom, min(maxZoom, s.Zoom*f))
}

// Eye returns the orbiting eye position.
func (s *Scene) Eye() math3d.Vec3 {
	c := s.cfg.Camera
	at := math3d.V3(c.At[0], c.At[1], c.At[2])
	offset := math3d.V3(c.Eye[0], c.Eye[1], c.Eye[2]).Sub(at).Scale(s.Zoom)
	orbit := math3d.RotateY(s.Yaw).Mul(math3d.RotateX(s.Pitch))
	return at.Add(orbit.MulVec3Dir(offset))
}

// Render draws the scene into fb.
func (s *Scene) Render(fb *render.Framebuffer) error {
	if fb.Width == 0 || fb.Height == 0 {
		return nil
	}
	r := s.rast
	r.SetRenderTarget(fb)

	if err := s.cfg.Apply(r, float64(fb.Width)/float64(fb.Height)); err != nil {
		return err
	}
	c := s.cfg.Camera
	r.LookAt(s.Eye(), math3d.V3(c.At[0], c.At[1], c.At[2]), math3d.V3(c.Up[0], c.Up[1], c.Up[2]))

	r.Clear(render.ColorBufferBit|render.DepthBufferBit, s.cfg.BackgroundColor(), 1)

	if s.mesh == nil {
		return r.DrawColorCube(math3d.Zero3(), cubeSize)
	}

	opts := render.DefaultDrawOptions()
	if s.cfg.Render.RandomColors {
		opts.RandomColors = true
		opts.Rand = rand.New(rand.NewPCG(s.Seed, s.Seed))
	}
	return r.DrawMesh(s.mesh, math3d.Identity(), opts)
}
