package gonet

import "fmt"

// Demosaic splits a full-frame raster of samples into per-color planes
// according to the GONet sensor's repeating 2x2 BGGR tile.
//
// BGGR layout (row-major, 0-indexed):
//
//	(even row, even col) = B
//	(even row, odd  col) = G
//	(odd  row, even col) = G
//	(odd  row, odd  col) = R
//
// The two green positions of each tile are averaged into a single plane,
// so all three output planes are rows/2 x cols/2. rows*cols must equal
// len(samples) and both dimensions must be even.
func Demosaic(samples []uint16, rows, cols int) (red, green, blue *Image, err error) {
	if rows <= 0 || cols <= 0 || rows*cols != len(samples) {
		return nil, nil, nil, fmt.Errorf("%w: %d samples cannot fill a %dx%d frame", ErrFormat, len(samples), rows, cols)
	}
	if rows%2 != 0 || cols%2 != 0 {
		return nil, nil, nil, fmt.Errorf("%w: frame dimensions %dx%d cannot form 2x2 tiles", ErrFormat, rows, cols)
	}

	hr, hc := rows/2, cols/2
	red = NewImage(hr, hc)
	green = NewImage(hr, hc)
	blue = NewImage(hr, hc)

	for i := 0; i < hr; i++ {
		top := 2 * i * cols
		bottom := top + cols
		for j := 0; j < hc; j++ {
			c := 2 * j
			b := float64(samples[top+c])
			g1 := float64(samples[top+c+1])
			g2 := float64(samples[bottom+c])
			r := float64(samples[bottom+c+1])

			red.Set(i, j, r)
			green.Set(i, j, (g1+g2)/2)
			blue.Set(i, j, b)
		}
	}
	return red, green, blue, nil
}
