package gonet

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// RenderRegionOverlay writes a JPG preview of a channel with the region
// mask tinted blue and the extraction statistics captioned below, and
// saves it to a file.
func RenderRegionOverlay(img *Image, mask *Mask, result ExtractionResult, outputPath string) error {
	rendered, err := renderRegionImage(img, mask, result)
	if err != nil {
		return err
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create overlay file: %w", err)
	}
	defer f.Close()

	return jpeg.Encode(f, rendered, &jpeg.Options{Quality: 90})
}

// RenderRegionOverlayBytes renders the preview and returns it as JPEG bytes.
func RenderRegionOverlayBytes(img *Image, mask *Mask, result ExtractionResult) ([]byte, error) {
	rendered, err := renderRegionImage(img, mask, result)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, rendered, &jpeg.Options{Quality: 90}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// renderRegionImage creates the overlay image in memory: the channel as
// grayscale, masked cells tinted, stats text at the bottom.
func renderRegionImage(img *Image, mask *Mask, result ExtractionResult) (*image.RGBA, error) {
	if img == nil || mask == nil {
		return nil, fmt.Errorf("no channel or mask to render")
	}
	if img.Rows() != mask.Rows() || img.Cols() != mask.Cols() {
		return nil, fmt.Errorf("%w: mask %dx%d over channel %dx%d",
			ErrDimensionMismatch, mask.Rows(), mask.Cols(), img.Rows(), img.Cols())
	}

	rows, cols := img.Rows(), img.Cols()

	// Reserve space for the stats caption at the bottom
	captionH := 24
	out := image.NewRGBA(image.Rect(0, 0, cols, rows+captionH))

	// Normalize the channel against its peak so both 12-bit and 16-bit
	// data render with full contrast.
	peak := 0.0
	for _, v := range img.Data() {
		if v > peak {
			peak = v
		}
	}
	if peak <= 0 {
		peak = 1
	}

	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			v := img.At(y, x)
			if v < 0 {
				v = 0
			}
			g := uint8(v / peak * 255)
			if mask.At(y, x) {
				// tint selected cells toward royal blue
				out.Set(x, y, color.RGBA{
					R: uint8(float64(g)*0.5 + 0.5*65),
					G: uint8(float64(g)*0.5 + 0.5*105),
					B: uint8(float64(g)*0.5 + 0.5*225),
					A: 255,
				})
			} else {
				out.Set(x, y, color.RGBA{g, g, g, 255})
			}
		}
	}

	// Black caption band
	for y := rows; y < rows+captionH; y++ {
		for x := 0; x < cols; x++ {
			out.Set(x, y, color.RGBA{0, 0, 0, 255})
		}
	}

	face := basicfont.Face7x13
	caption := fmt.Sprintf("total=%.1f  mean=%.3f  std=%.3f  n=%d", result.Total, result.Mean, result.Std, result.Count)
	drawText(out, face, caption, 6, rows+16, color.RGBA{220, 220, 220, 255})

	return out, nil
}

// drawText draws a string at (x, y) using the given font face.
func drawText(img *image.RGBA, face font.Face, s string, x, y int, c color.RGBA) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}
