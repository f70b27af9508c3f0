package main

import (
	"fmt"
	"io"
	"time"

	"github.com/taigrr/scanline/internal/viewer"
)

// HUD renders an overlay with model info and render state
type HUD struct {
	Visible   bool
	fps       float64
	fpsFrames int
	fpsTime   time.Time
}

// NewHUD creates a new HUD
func NewHUD() *HUD {
	return &HUD{fpsTime: time.Now()}
}

// UpdateFPS updates the FPS counter (call once per frame)
func (h *HUD) UpdateFPS() {
	h.fpsFrames++
	elapsed := time.Since(h.fpsTime)
	if elapsed >= time.Second {
		h.fps = float64(h.fpsFrames) / elapsed.Seconds()
		h.fpsFrames = 0
		h.fpsTime = time.Now()
	}
}

func check(on bool) string {
	if on {
		return "[✓]"
	}
	return "[ ]"
}

// Render draws the HUD over the top and bottom terminal rows.
func (h *HUD) Render(w io.Writer, width, height int, s *viewer.Scene) {
	const (
		reset     = "\x1b[0m"
		bold      = "\x1b[1m"
		bgBlack   = "\x1b[40m"
		fgWhite   = "\x1b[97m"
		fgGreen   = "\x1b[92m"
		fgYellow  = "\x1b[93m"
		fgCyan    = "\x1b[96m"
		clearLine = "\x1b[2K"
	)
	moveTo := func(row, col int) string {
		return fmt.Sprintf("\x1b[%d;%dH", row, col)
	}

	if !h.Visible {
		return
	}

	fmt.Fprint(w, moveTo(1, 1)+clearLine)
	fmt.Fprint(w, moveTo(height, 1)+clearLine)

	fmt.Fprintf(w, "%s%s%s %.0f FPS %s", moveTo(1, 1), bgBlack, fgGreen, h.fps, reset)

	title := s.Title()
	titleCol := max((width-len(title)-2)/2, 1)
	fmt.Fprintf(w, "%s%s%s%s %s %s", moveTo(1, titleCol), bold, bgBlack, fgWhite, title, reset)

	st := s.Stats()
	stats := fmt.Sprintf("%d tris %d frags", s.TriangleCount(), st.Fragments)
	fmt.Fprintf(w, "%s%s%s %s %s", moveTo(1, max(width-len(stats)-1, 1)), bgBlack, fgCyan, stats, reset)

	cfg := s.Config()
	modes := fmt.Sprintf("%s smooth  %s lighting  %s random  light: %s",
		check(cfg.Render.Shading == "smooth"), check(cfg.Render.Lighting),
		check(cfg.Render.RandomColors), cfg.Light.Type)
	fmt.Fprintf(w, "%s%s%s %s %s", moveTo(height, 1), bgBlack, fgWhite, modes, reset)

	hint := "o: snapshot"
	fmt.Fprintf(w, "%s%s%s %s %s", moveTo(height, max(width-len(hint)-1, 1)), bgBlack, fgYellow, hint, reset)
}
