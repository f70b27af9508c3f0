package render

import (
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/tiff"
)

// ErrUnknownFormat is returned by Save for file extensions it cannot encode.
var ErrUnknownFormat = errors.New("unknown image format")

// Format is an image encoding supported by Save.
type Format int

const (
	FormatPNG Format = iota
	FormatJPEG
	FormatBMP
	FormatTIFF
)

// FormatFromPath picks the encoding from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return FormatPNG, nil
	case ".jpg", ".jpeg":
		return FormatJPEG, nil
	case ".bmp":
		return FormatBMP, nil
	case ".tif", ".tiff":
		return FormatTIFF, nil
	default:
		return 0, fmt.Errorf("%s: %w", path, ErrUnknownFormat)
	}
}

// Encode writes the framebuffer to w.
func (fb *Framebuffer) Encode(w io.Writer, f Format) error {
	img := fb.ToImage()
	switch f {
	case FormatPNG:
		return png.Encode(w, img)
	case FormatJPEG:
		return jpeg.Encode(w, img, &jpeg.Options{Quality: 95})
	case FormatBMP:
		return bmp.Encode(w, img)
	case FormatTIFF:
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	default:
		return fmt.Errorf("format %d: %w", int(f), ErrUnknownFormat)
	}
}

// Save writes the framebuffer to path, choosing the encoder by extension.
func (fb *Framebuffer) Save(path string) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create image: %w", err)
	}
	if err := fb.Encode(f, format); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return f.Close()
}

// Scaled returns a nearest-neighbour upscale by an integer factor, keeping
// pixel edges sharp. Factors below 2 return a copy.
func (fb *Framebuffer) Scaled(factor int) *Framebuffer {
	factor = max(factor, 1)
	out := NewFramebuffer(fb.Width*factor, fb.Height*factor)
	dst := image.NewRGBA(image.Rect(0, 0, out.Width, out.Height))
	src := fb.ToImage()
	xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)

	for i := range out.Pixels {
		out.Pixels[i].R = dst.Pix[4*i+0]
		out.Pixels[i].G = dst.Pix[4*i+1]
		out.Pixels[i].B = dst.Pix[4*i+2]
		out.Pixels[i].A = dst.Pix[4*i+3]
	}
	return out
}
