// scanline - Terminal viewer for the scanline Z-buffer renderer
// View OBJ and GLB files in your terminal, or render them to an image.
//
// Controls:
//
//	Mouse drag  - Orbit the camera
//	Scroll      - Zoom in/out
//	Arrows/WASD - Orbit the camera
//	F           - Toggle flat/smooth shading
//	L           - Toggle lighting
//	P           - Cycle light type (point, directional, none)
//	C           - Toggle random face colors
//	O           - Save a snapshot at the configured resolution
//	R           - Reset view
//	?           - Toggle HUD overlay
//	+/-         - Adjust zoom
//	Esc         - Quit
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	uv "github.com/charmbracelet/ultraviolet"
	"go.uber.org/zap"

	"github.com/taigrr/scanline/internal/config"
	"github.com/taigrr/scanline/internal/logger"
	"github.com/taigrr/scanline/internal/viewer"
	"github.com/taigrr/scanline/internal/watch"
	"github.com/taigrr/scanline/pkg/render"
)

var (
	outputPath = flag.String("o", "", "Render one frame to this image file (png, jpg, bmp, tiff) and exit")
	outScale   = flag.Int("scale", 1, "Integer upscale factor for -o")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "scanline - software scanline Z-buffer renderer\n\n")
		fmt.Fprintf(os.Stderr, "Usage: scanline [options] [model.obj|model.glb]\n\n")
		fmt.Fprintf(os.Stderr, "Without a model a color cube is shown.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nControls:\n")
		fmt.Fprintf(os.Stderr, "  Mouse drag  - Orbit\n")
		fmt.Fprintf(os.Stderr, "  Arrows/WASD - Orbit\n")
		fmt.Fprintf(os.Stderr, "  F           - Flat/smooth shading\n")
		fmt.Fprintf(os.Stderr, "  L           - Lighting on/off\n")
		fmt.Fprintf(os.Stderr, "  P           - Cycle light type\n")
		fmt.Fprintf(os.Stderr, "  C           - Random colors\n")
		fmt.Fprintf(os.Stderr, "  O           - Save snapshot\n")
		fmt.Fprintf(os.Stderr, "  R           - Reset view\n")
		fmt.Fprintf(os.Stderr, "  ?           - Toggle HUD overlay\n")
		fmt.Fprintf(os.Stderr, "  Esc         - Quit\n")
	}
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg, flag.Arg(0)); err != nil {
		logger.Error("scanline failed", zap.Error(err))
		logger.Sync()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	logger.Sync()
}

func run(cfg *config.Config, modelPath string) error {
	headless := *outputPath != ""

	// The interactive viewer owns the terminal, so it only logs to a file.
	fileCfg := logger.FileConfig{}
	if cfg.Logging.LogFile != "" {
		fileCfg = logger.DefaultFileConfig(cfg.Logging.LogFile)
	}
	if err := logger.InitWithFileConfig(cfg.Logging.Level, fileCfg, headless); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	scene := viewer.NewScene(cfg, logger.Named("viewer"))
	if err := scene.Load(modelPath); err != nil {
		return err
	}

	if headless {
		return renderToFile(scene, cfg, *outputPath, *outScale)
	}
	return interactive(scene, cfg, modelPath)
}

// renderToFile draws a single frame at the configured size and saves it.
func renderToFile(scene *viewer.Scene, cfg *config.Config, path string, scale int) error {
	fb := render.NewFramebuffer(cfg.Render.Width, cfg.Render.Height)
	start := time.Now()
	if err := scene.Render(fb); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	elapsed := time.Since(start)

	if scale > 1 {
		fb = fb.Scaled(scale)
	}
	if err := fb.Save(path); err != nil {
		return err
	}

	st := scene.Stats()
	logger.Info("frame saved",
		zap.String("path", path),
		zap.Int("width", fb.Width),
		zap.Int("height", fb.Height),
		zap.Int("triangles", st.Triangles),
		zap.Int("fragments", st.Fragments),
		zap.Duration("elapsed", elapsed),
	)
	return nil
}

// app is the state of the interactive terminal viewer.
type app struct {
	term     *uv.Terminal
	tr       *render.TerminalRenderer
	fb       *render.Framebuffer
	scene    *viewer.Scene
	cfg      *config.Config
	rotation *RotationState
	hud      *HUD

	width, height int

	// key torque, decayed every frame (key release events are unreliable)
	torque struct{ pitch, yaw float64 }

	mouseDown              bool
	lastMouseX, lastMouseY int
	lastFrame              time.Time
}

func interactive(scene *viewer.Scene, cfg *config.Config, modelPath string) error {
	term := uv.DefaultTerminal()

	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}

	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}

	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(width, height)

	fmt.Fprint(os.Stdout, "\x1b[?1003h") // Enable any-event mouse tracking
	fmt.Fprint(os.Stdout, "\x1b[?1006h") // Enable SGR extended mouse mode

	defer func() {
		fmt.Fprint(os.Stdout, "\x1b[?1003l")
		fmt.Fprint(os.Stdout, "\x1b[?1006l")
		term.ExitAltScreen()
		term.ShowCursor()
		term.Shutdown(context.Background())
	}()

	a := &app{
		term:      term,
		tr:        render.NewTerminalRenderer(term, width, height),
		scene:     scene,
		cfg:       cfg,
		rotation:  NewRotationState(cfg.Viewer.FPS),
		hud:       NewHUD(),
		width:     width,
		height:    height,
		lastFrame: time.Now(),
	}
	a.fb = render.NewFramebuffer(a.tr.FramebufferSize())

	var (
		reloads   <-chan watch.Reload
		watchErrs <-chan error
	)
	if cfg.Viewer.Watch && modelPath != "" {
		w, err := watch.New(modelPath, cfg.Viewer.Debounce)
		if err != nil {
			return err
		}
		defer w.Close()
		reloads, watchErrs = w.Events(), w.Errors()
		logger.Info("watching model", zap.String("path", w.Path()))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ticker := time.NewTicker(time.Second / time.Duration(cfg.Viewer.FPS))
	defer ticker.Stop()

	events := term.Events()
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-events:
			if !ok || a.handle(ev) {
				return nil
			}

		case rl, ok := <-reloads:
			if !ok {
				reloads = nil
				continue
			}
			if err := scene.Reload(); err != nil {
				logger.Warn("reload failed", zap.String("path", rl.Path), zap.Error(err))
			}

		case err := <-watchErrs:
			logger.Warn("watch error", zap.Error(err))

		case <-ticker.C:
			if err := a.frame(); err != nil {
				return err
			}
		}
	}
}

// handle applies one terminal event and reports whether to quit.
func (a *app) handle(ev uv.Event) bool {
	const torqueStrength = 3.0

	switch ev := ev.(type) {
	case uv.WindowSizeEvent:
		a.width, a.height = ev.Width, ev.Height
		a.term.Erase()
		a.term.Resize(a.width, a.height)
		a.tr.Resize(a.width, a.height)
		a.fb.Resize(a.tr.FramebufferSize())

	case uv.KeyPressEvent:
		switch {
		case ev.MatchString("escape", "ctrl+c"):
			return true
		case ev.MatchString("w", "up"):
			a.torque.pitch = -torqueStrength
		case ev.MatchString("s", "down"):
			a.torque.pitch = torqueStrength
		case ev.MatchString("a", "left"):
			a.torque.yaw = -torqueStrength
		case ev.MatchString("d", "right"):
			a.torque.yaw = torqueStrength
		case ev.MatchString("r"):
			a.rotation.Reset()
			a.scene.Yaw, a.scene.Pitch, a.scene.Zoom = 0, 0, 1
		case ev.MatchString("+", "="):
			a.scene.ZoomBy(0.9)
		case ev.MatchString("-", "_"):
			a.scene.ZoomBy(1 / 0.9)
		case ev.MatchString("f"):
			a.scene.ToggleShading()
		case ev.MatchString("l"):
			a.scene.ToggleLighting()
		case ev.MatchString("p"):
			a.scene.CycleLight()
		case ev.MatchString("c"):
			a.scene.ToggleRandomColors()
		case ev.MatchString("o"):
			a.snapshot()
		case ev.MatchString("?"), ev.MatchString("shift+/"):
			a.hud.Visible = !a.hud.Visible
			// force a full redraw over the old HUD rows
			a.term.Erase()
		}

	case uv.KeyReleaseEvent:
		switch {
		case ev.MatchString("w", "up", "s", "down"):
			a.torque.pitch = 0
		case ev.MatchString("a", "left", "d", "right"):
			a.torque.yaw = 0
		}

	case uv.MouseClickEvent:
		a.mouseDown = true
		a.lastMouseX, a.lastMouseY = ev.X, ev.Y

	case uv.MouseReleaseEvent:
		a.mouseDown = false

	case uv.MouseMotionEvent:
		if a.mouseDown {
			dx := ev.X - a.lastMouseX
			dy := ev.Y - a.lastMouseY
			a.rotation.ApplyImpulse(float64(dy)*0.03, float64(-dx)*0.03)
			a.lastMouseX, a.lastMouseY = ev.X, ev.Y
		}

	case uv.MouseWheelEvent:
		switch ev.Button {
		case uv.MouseWheelUp:
			a.scene.ZoomBy(0.9)
		case uv.MouseWheelDown:
			a.scene.ZoomBy(1 / 0.9)
		}
	}
	return false
}

// frame advances the rotation and draws one frame to the terminal.
func (a *app) frame() error {
	now := time.Now()
	dt := min(now.Sub(a.lastFrame).Seconds(), 0.1)
	a.lastFrame = now

	a.rotation.ApplyImpulse(a.torque.pitch*dt, a.torque.yaw*dt)
	a.torque.pitch *= 0.9
	a.torque.yaw *= 0.9
	a.scene.Rotate(a.rotation.Update())

	if err := a.scene.Render(a.fb); err != nil {
		return fmt.Errorf("render: %w", err)
	}

	a.tr.Render(a.fb)
	if err := a.tr.Flush(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}

	a.hud.UpdateFPS()
	a.hud.Render(os.Stdout, a.width, a.height, a.scene)
	return nil
}

// snapshot saves the current view at the configured resolution.
func (a *app) snapshot() {
	path := fmt.Sprintf("scanline-%s.png", time.Now().Format("20060102-150405"))
	if err := renderToFile(a.scene, a.cfg, path, 1); err != nil {
		logger.Warn("snapshot failed", zap.String("path", path), zap.Error(err))
	}
}
