package gonet

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/tiff"
)

// FileKind categorizes a GONet frame. It carries no behavior; calibration
// math (dark subtraction, flat division) lives with the caller.
type FileKind int

const (
	KindScience FileKind = iota
	KindBias
	KindFlat
	KindDark
)

func (k FileKind) String() string {
	switch k {
	case KindScience:
		return "science"
	case KindBias:
		return "bias"
	case KindFlat:
		return "flat"
	case KindDark:
		return "dark"
	default:
		return "unknown"
	}
}

// ParseFileKind maps a kind name to its FileKind.
func ParseFileKind(s string) (FileKind, error) {
	switch strings.ToLower(s) {
	case "science":
		return KindScience, nil
	case "bias":
		return KindBias, nil
	case "flat":
		return KindFlat, nil
	case "dark":
		return KindDark, nil
	}
	return 0, fmt.Errorf("%w: unknown file kind %q", ErrFormat, s)
}

// GONetFile is the in-memory form of one GONet observation: three
// same-shaped float64 channel images, the file's kind, and its metadata.
// Instances are immutable once constructed; the arithmetic methods return
// new files and never touch their operands.
type GONetFile struct {
	filename string
	red      *Image
	green    *Image
	blue     *Image
	meta     Metadata
	kind     FileKind
}

// New builds a GONetFile from three channels. The channels must share
// dimensions; they are deep-copied so the file never aliases caller
// memory. A nil meta becomes an empty map.
func New(filename string, red, green, blue *Image, meta Metadata, kind FileKind) (*GONetFile, error) {
	if red == nil || green == nil || blue == nil {
		return nil, fmt.Errorf("%w: all three channels are required", ErrFormat)
	}
	if red.Rows() != green.Rows() || red.Cols() != green.Cols() ||
		red.Rows() != blue.Rows() || red.Cols() != blue.Cols() {
		return nil, fmt.Errorf("%w: channel shapes %dx%d, %dx%d, %dx%d differ",
			ErrDimensionMismatch, red.Rows(), red.Cols(), green.Rows(), green.Cols(), blue.Rows(), blue.Cols())
	}
	if meta == nil {
		meta = Metadata{}
	}
	return &GONetFile{
		filename: filename,
		red:      red.Clone(),
		green:    green.Clone(),
		blue:     blue.Clone(),
		meta:     meta,
		kind:     kind,
	}, nil
}

func (f *GONetFile) Filename() string { return f.filename }
func (f *GONetFile) Red() *Image      { return f.red }
func (f *GONetFile) Green() *Image    { return f.green }
func (f *GONetFile) Blue() *Image     { return f.blue }
func (f *GONetFile) Meta() Metadata   { return f.meta }
func (f *GONetFile) Kind() FileKind   { return f.kind }

// Rows and Cols report the shared channel dimensions.
func (f *GONetFile) Rows() int { return f.red.Rows() }
func (f *GONetFile) Cols() int { return f.red.Cols() }

// Channel returns the named channel: "red", "green" or "blue".
func (f *GONetFile) Channel(name string) (*Image, error) {
	switch strings.ToLower(name) {
	case "red":
		return f.red, nil
	case "green":
		return f.green, nil
	case "blue":
		return f.blue, nil
	}
	return nil, fmt.Errorf("%w: unknown channel %q (want red, green or blue)", ErrFormat, name)
}

// Equal compares channel contents exactly. Metadata, kind and filename do
// not participate.
func (f *GONetFile) Equal(other *GONetFile) bool {
	return f.red.Equal(other.red) && f.green.Equal(other.green) && f.blue.Equal(other.blue)
}

// Loader decodes GONet containers with an explicit sensor geometry, so
// hypothetical alternate sensors can be exercised without global state.
type Loader struct {
	Geometry SensorGeometry
}

// FromFile loads path as a science frame with metadata, using the default
// GONet sensor geometry.
func FromFile(path string) (*GONetFile, error) {
	return Loader{Geometry: DefaultSensorGeometry()}.FromFile(path, KindScience, true)
}

// FromFile loads a container. The extension selects the source: ".jpg" is
// the camera's raw container, ".tif"/".tiff" a pre-decoded three-channel
// image. The choice is made once, here; both paths produce the same
// GONetFile shape.
func (l Loader) FromFile(path string, kind FileKind, withMeta bool) (*GONetFile, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return l.parseRawFile(path, kind, withMeta)
	case ".tif", ".tiff":
		return parseTIFFFile(path, kind)
	}
	return nil, fmt.Errorf("%w: unsupported container extension %q (want .jpg or .tiff)", ErrFormat, filepath.Ext(path))
}

// parseRawFile decodes the camera's raw container: a JPEG preview with the
// packed 12-bit frame at a fixed offset from the end of the file.
func (l Loader) parseRawFile(path string, kind FileKind, withMeta bool) (*GONetFile, error) {
	geom := l.Geometry
	if err := geom.Validate(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading raw container: %w", err)
	}

	need := geom.RawDataOffset()
	if len(data) < need {
		return nil, fmt.Errorf("%w: container of %d bytes is smaller than the %d-byte raw region", ErrFormat, len(data), need)
	}
	payload := data[len(data)-need:]

	rows, cols := geom.PixelsPerColumn, geom.PixelsPerLine
	used := geom.UsedLineBytes()
	samples := make([]uint16, 0, rows*cols)
	for line := 0; line < rows; line++ {
		start := line * geom.PaddedLineBytes
		lineSamples, err := UnpackSamples(payload[start : start+used])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		samples = append(samples, lineSamples...)
	}

	red, green, blue, err := Demosaic(samples, rows, cols)
	if err != nil {
		return nil, err
	}

	meta := Metadata{}
	if withMeta {
		meta, err = ParseEXIF(data)
		if err != nil {
			return nil, err
		}
	}

	return &GONetFile{
		filename: path,
		red:      red,
		green:    green,
		blue:     blue,
		meta:     meta,
		kind:     kind,
	}, nil
}

// parseTIFFFile loads a pre-decoded three-channel TIFF. Channel values are
// kept in the encoder's 16-bit range.
func parseTIFFFile(path string, kind FileKind) (*GONetFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening TIFF: %w", err)
	}
	defer f.Close()

	img, err := tiff.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: decoding TIFF: %v", ErrFormat, err)
	}
	red, green, blue := splitChannels(img)

	return &GONetFile{
		filename: path,
		red:      red,
		green:    green,
		blue:     blue,
		meta:     Metadata{},
		kind:     kind,
	}, nil
}

// splitChannels copies a decoded image into three float64 planes in the
// 16-bit range.
func splitChannels(img image.Image) (red, green, blue *Image) {
	bounds := img.Bounds()
	rows, cols := bounds.Dy(), bounds.Dx()
	red = NewImage(rows, cols)
	green = NewImage(rows, cols)
	blue = NewImage(rows, cols)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			red.Set(y, x, float64(r))
			green.Set(y, x, float64(g))
			blue.Set(y, x, float64(b))
		}
	}
	return red, green, blue
}

// binOp is an element-wise operation between two cells.
type binOp func(a, b float64) float64

// apply combines two files element-wise into a new one. Metadata, kind and
// filename carry over from the left-hand operand.
func (f *GONetFile) apply(other *GONetFile, op binOp) (*GONetFile, error) {
	if f.Rows() != other.Rows() || f.Cols() != other.Cols() {
		return nil, fmt.Errorf("%w: operands are %dx%d and %dx%d",
			ErrDimensionMismatch, f.Rows(), f.Cols(), other.Rows(), other.Cols())
	}
	out := &GONetFile{
		filename: f.filename,
		red:      NewImage(f.Rows(), f.Cols()),
		green:    NewImage(f.Rows(), f.Cols()),
		blue:     NewImage(f.Rows(), f.Cols()),
		meta:     f.meta,
		kind:     f.kind,
	}
	pairs := [][3]*Image{
		{out.red, f.red, other.red},
		{out.green, f.green, other.green},
		{out.blue, f.blue, other.blue},
	}
	for _, p := range pairs {
		dst, a, b := p[0], p[1], p[2]
		for i := range dst.data {
			dst.data[i] = op(a.data[i], b.data[i])
		}
	}
	return out, nil
}

// applyScalar combines a file with a scalar element-wise.
func (f *GONetFile) applyScalar(s float64, op binOp) *GONetFile {
	out := &GONetFile{
		filename: f.filename,
		red:      NewImage(f.Rows(), f.Cols()),
		green:    NewImage(f.Rows(), f.Cols()),
		blue:     NewImage(f.Rows(), f.Cols()),
		meta:     f.meta,
		kind:     f.kind,
	}
	pairs := [][2]*Image{{out.red, f.red}, {out.green, f.green}, {out.blue, f.blue}}
	for _, p := range pairs {
		dst, a := p[0], p[1]
		for i := range dst.data {
			dst.data[i] = op(a.data[i], s)
		}
	}
	return out
}

// Add returns f + other element-wise.
func (f *GONetFile) Add(other *GONetFile) (*GONetFile, error) {
	return f.apply(other, func(a, b float64) float64 { return a + b })
}

// Sub returns f - other element-wise.
func (f *GONetFile) Sub(other *GONetFile) (*GONetFile, error) {
	return f.apply(other, func(a, b float64) float64 { return a - b })
}

// Mul returns f * other element-wise.
func (f *GONetFile) Mul(other *GONetFile) (*GONetFile, error) {
	return f.apply(other, func(a, b float64) float64 { return a * b })
}

// Div returns f / other element-wise. Division by zero follows IEEE-754:
// the affected cells become +-Inf (or NaN for 0/0) rather than raising,
// since flat frames legitimately contain dead pixels.
func (f *GONetFile) Div(other *GONetFile) (*GONetFile, error) {
	return f.apply(other, func(a, b float64) float64 { return a / b })
}

// AddScalar returns f + s on every cell.
func (f *GONetFile) AddScalar(s float64) *GONetFile {
	return f.applyScalar(s, func(a, b float64) float64 { return a + b })
}

// SubScalar returns f - s on every cell.
func (f *GONetFile) SubScalar(s float64) *GONetFile {
	return f.applyScalar(s, func(a, b float64) float64 { return a - b })
}

// MulScalar returns f * s on every cell.
func (f *GONetFile) MulScalar(s float64) *GONetFile {
	return f.applyScalar(s, func(a, b float64) float64 { return a * b })
}

// DivScalar returns f / s on every cell, with IEEE semantics for s == 0.
func (f *GONetFile) DivScalar(s float64) *GONetFile {
	return f.applyScalar(s, func(a, b float64) float64 { return a / b })
}
