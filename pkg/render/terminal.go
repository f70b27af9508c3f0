package render

import (
	"image"
	"image/color"

	uv "github.com/charmbracelet/ultraviolet"
)

// Draw converts the framebuffer to terminal cells and draws them on the
// screen. Each terminal row shows two framebuffer rows using an upper half
// block with fg=top color and bg=bottom color.
func (fb *Framebuffer) Draw(scr uv.Screen, area uv.Rectangle) {
	for row := area.Min.Y; row < area.Max.Y; row++ {
		topY := (row - area.Min.Y) * 2
		botY := topY + 1

		for col := area.Min.X; col < area.Max.X && col-area.Min.X < fb.Width; col++ {
			x := col - area.Min.X
			scr.SetCell(col, row, &uv.Cell{
				Content: "▀",
				Width:   1,
				Style: uv.Style{
					Fg: cellColor(fb.GetPixel(x, topY)),
					Bg: cellColor(fb.GetPixel(x, botY)),
				},
			})
		}
	}
}

// cellColor maps transparent pixels to the terminal default color.
func cellColor(c color.RGBA) color.Color {
	if c.A == 0 {
		return nil
	}
	return c
}

// TerminalScreen is the part of a uv.Terminal the renderer draws on.
type TerminalScreen interface {
	uv.Screen
	Display() error
}

// TerminalRenderer blits framebuffers onto a terminal sized cols x rows.
type TerminalRenderer struct {
	scr  TerminalScreen
	cols int
	rows int
}

// NewTerminalRenderer creates a renderer covering cols x rows cells of scr.
func NewTerminalRenderer(scr TerminalScreen, cols, rows int) *TerminalRenderer {
	return &TerminalRenderer{scr: scr, cols: cols, rows: rows}
}

// FramebufferSize returns the framebuffer dimensions that exactly cover the
// terminal: one pixel per column and two per row.
func (t *TerminalRenderer) FramebufferSize() (width, height int) {
	return t.cols, t.rows * 2
}

// Resize changes the covered cell area.
func (t *TerminalRenderer) Resize(cols, rows int) {
	t.cols, t.rows = cols, rows
}

// Render draws fb into the terminal's cell buffer.
func (t *TerminalRenderer) Render(fb *Framebuffer) {
	fb.Draw(t.scr, image.Rect(0, 0, t.cols, t.rows))
}

// Flush displays the cell buffer.
func (t *TerminalRenderer) Flush() error {
	return t.scr.Display()
}
