//go:build purego || js

package main

import (
	"fmt"
	"image"
	_ "image/png"
	"os"

	"gonet/pkg/gonet"
)

func loadDecodedImage(path string, kind gonet.FileKind) (*gonet.GONetFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	red := gonet.NewImage(h, w)
	green := gonet.NewImage(h, w)
	blue := gonet.NewImage(h, w)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			red.Set(y, x, float64(r))
			green.Set(y, x, float64(g))
			blue.Set(y, x, float64(b))
		}
	}

	return gonet.New(path, red, green, blue, nil, kind)
}
