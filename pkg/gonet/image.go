package gonet

import "fmt"

// Image is a row-major 2D float64 grid. Channel data is kept as float64 so
// that calibration arithmetic (bias subtraction, flat division) follows IEEE
// semantics instead of wrapping or truncating fixed-width integers.
type Image struct {
	data []float64
	rows int
	cols int
}

// NewImage returns a zero-filled rows x cols image.
func NewImage(rows, cols int) *Image {
	return &Image{
		data: make([]float64, rows*cols),
		rows: rows,
		cols: cols,
	}
}

// ImageFromData wraps a copy of data as a rows x cols image.
func ImageFromData(data []float64, rows, cols int) (*Image, error) {
	if rows <= 0 || cols <= 0 || rows*cols != len(data) {
		return nil, fmt.Errorf("%w: %d values cannot form a %dx%d image", ErrFormat, len(data), rows, cols)
	}
	im := NewImage(rows, cols)
	copy(im.data, data)
	return im, nil
}

func (im *Image) Rows() int { return im.rows }
func (im *Image) Cols() int { return im.cols }

// At returns the value at row r, column c.
func (im *Image) At(r, c int) float64 { return im.data[r*im.cols+c] }

// Set stores v at row r, column c.
func (im *Image) Set(r, c int, v float64) { im.data[r*im.cols+c] = v }

// Data returns the backing slice in raster order. The slice aliases the
// image; callers that need isolation should Clone first.
func (im *Image) Data() []float64 { return im.data }

// Clone returns a deep copy.
func (im *Image) Clone() *Image {
	out := NewImage(im.rows, im.cols)
	copy(out.data, im.data)
	return out
}

// Fill sets every cell to v.
func (im *Image) Fill(v float64) {
	for i := range im.data {
		im.data[i] = v
	}
}

// Equal reports whether both images have the same shape and exactly the
// same cell values. NaN cells are never equal, per IEEE comparison.
func (im *Image) Equal(other *Image) bool {
	if im.rows != other.rows || im.cols != other.cols {
		return false
	}
	for i, v := range im.data {
		if v != other.data[i] {
			return false
		}
	}
	return true
}

// Mask is a row-major 2D boolean grid produced by the region geometry. A
// mask depends only on geometric parameters, never on pixel values, so the
// same mask can be reused across any number of same-shaped channels.
type Mask struct {
	bits []bool
	rows int
	cols int
}

// NewMask returns an all-false rows x cols mask.
func NewMask(rows, cols int) *Mask {
	return &Mask{
		bits: make([]bool, rows*cols),
		rows: rows,
		cols: cols,
	}
}

func (m *Mask) Rows() int { return m.rows }
func (m *Mask) Cols() int { return m.cols }

// At reports whether the cell at row r, column c is selected.
func (m *Mask) At(r, c int) bool { return m.bits[r*m.cols+c] }

// Set marks the cell at row r, column c.
func (m *Mask) Set(r, c int, v bool) { m.bits[r*m.cols+c] = v }

// Count returns the number of selected cells.
func (m *Mask) Count() int {
	n := 0
	for _, b := range m.bits {
		if b {
			n++
		}
	}
	return n
}
