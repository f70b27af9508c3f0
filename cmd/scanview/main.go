// scanview - Desktop window for the scanline Z-buffer renderer
//
// Controls:
//
//	Mouse drag - Orbit the camera
//	Scroll     - Zoom in/out
//	Arrows     - Orbit the camera
//	F          - Toggle flat/smooth shading
//	L          - Toggle lighting
//	P          - Cycle light type
//	C          - Toggle random face colors
//	R          - Reload the model
//	Esc        - Quit
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"go.uber.org/zap"

	"github.com/taigrr/scanline/internal/config"
	"github.com/taigrr/scanline/internal/logger"
	"github.com/taigrr/scanline/internal/viewer"
	"github.com/taigrr/scanline/internal/watch"
	"github.com/taigrr/scanline/pkg/render"
)

const (
	keyOrbitSpeed   = 0.04
	mouseOrbitSpeed = 0.01
)

type game struct {
	scene *viewer.Scene
	fb    *render.Framebuffer
	img   *ebiten.Image

	reloads   <-chan watch.Reload
	watchErrs <-chan error

	dragging     bool
	lastX, lastY int
}

func (g *game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	g.pollWatcher()

	var yaw, pitch float64
	if ebiten.IsKeyPressed(ebiten.KeyLeft) {
		yaw -= keyOrbitSpeed
	}
	if ebiten.IsKeyPressed(ebiten.KeyRight) {
		yaw += keyOrbitSpeed
	}
	if ebiten.IsKeyPressed(ebiten.KeyUp) {
		pitch -= keyOrbitSpeed
	}
	if ebiten.IsKeyPressed(ebiten.KeyDown) {
		pitch += keyOrbitSpeed
	}

	x, y := ebiten.CursorPosition()
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		g.dragging = true
		g.lastX, g.lastY = x, y
	}
	if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
		g.dragging = false
	}
	if g.dragging {
		yaw -= float64(x-g.lastX) * mouseOrbitSpeed
		pitch += float64(y-g.lastY) * mouseOrbitSpeed
		g.lastX, g.lastY = x, y
	}
	g.scene.Rotate(yaw, pitch)

	if _, dy := ebiten.Wheel(); dy > 0 {
		g.scene.ZoomBy(0.9)
	} else if dy < 0 {
		g.scene.ZoomBy(1 / 0.9)
	}

	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyF):
		g.scene.ToggleShading()
	case inpututil.IsKeyJustPressed(ebiten.KeyL):
		g.scene.ToggleLighting()
	case inpututil.IsKeyJustPressed(ebiten.KeyP):
		g.scene.CycleLight()
	case inpututil.IsKeyJustPressed(ebiten.KeyC):
		g.scene.ToggleRandomColors()
	case inpututil.IsKeyJustPressed(ebiten.KeyR):
		if err := g.scene.Reload(); err != nil {
			logger.Warn("reload failed", zap.Error(err))
		}
	}

	return g.scene.Render(g.fb)
}

// pollWatcher applies pending file change notifications without blocking.
func (g *game) pollWatcher() {
	select {
	case _, ok := <-g.reloads:
		if !ok {
			g.reloads = nil
			return
		}
		if err := g.scene.Reload(); err != nil {
			logger.Warn("reload failed", zap.Error(err))
		}
	case err := <-g.watchErrs:
		logger.Warn("watch error", zap.Error(err))
	default:
	}
}

func (g *game) Draw(screen *ebiten.Image) {
	g.img.WritePixels(g.fb.ToImage().Pix)
	screen.DrawImage(g.img, nil)

	st := g.scene.Stats()
	ebitenutil.DebugPrint(screen, fmt.Sprintf("%s\n%.0f FPS  %d tris  %d frags",
		g.scene.Title(), ebiten.ActualFPS(), g.scene.TriangleCount(), st.Fragments))
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.fb.Width, g.fb.Height
}

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "scanview - desktop viewer for the scanline renderer\n\n")
		fmt.Fprintf(os.Stderr, "Usage: scanview [options] [model.obj|model.glb]\n\n")
		flag.PrintDefaults()
	}
	config.ParseFlags()

	if err := run(flag.Arg(0)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(modelPath string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	scene := viewer.NewScene(cfg, logger.Named("viewer"))
	if err := scene.Load(modelPath); err != nil {
		return err
	}

	g := &game{
		scene: scene,
		fb:    render.NewFramebuffer(cfg.Render.Width, cfg.Render.Height),
		img:   ebiten.NewImage(cfg.Render.Width, cfg.Render.Height),
	}

	if cfg.Viewer.Watch && modelPath != "" {
		w, err := watch.New(modelPath, cfg.Viewer.Debounce)
		if err != nil {
			return err
		}
		defer w.Close()
		g.reloads, g.watchErrs = w.Events(), w.Errors()
	}

	ebiten.SetWindowTitle("scanview - " + scene.Title())
	ebiten.SetWindowSize(cfg.Render.Width, cfg.Render.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(cfg.Viewer.FPS)

	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return nil
}
