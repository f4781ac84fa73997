//go:build !purego && !js

package main

import (
	"fmt"

	"gocv.io/x/gocv"

	"gonet/pkg/gonet"
)

func loadDecodedImage(path string, kind gonet.FileKind) (*gonet.GONetFile, error) {
	src := gocv.IMRead(path, gocv.IMReadColor)
	if src.Empty() {
		return nil, fmt.Errorf("could not load image: %s", path)
	}
	defer src.Close()

	h, w := src.Rows(), src.Cols()
	red := gonet.NewImage(h, w)
	green := gonet.NewImage(h, w)
	blue := gonet.NewImage(h, w)

	// IMReadColor yields interleaved 8-bit BGR; scale to the 16-bit range
	// the library's channels use.
	data, err := src.DataPtrUint8()
	if err != nil {
		return nil, fmt.Errorf("reading image data: %w", err)
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			base := (y*w + x) * 3
			blue.Set(y, x, float64(data[base])*257)
			green.Set(y, x, float64(data[base+1])*257)
			red.Set(y, x, float64(data[base+2])*257)
		}
	}

	return gonet.New(path, red, green, blue, nil, kind)
}
