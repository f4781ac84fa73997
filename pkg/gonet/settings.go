package gonet

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SensorGeometry describes the fixed byte layout of a GONet raw container
// and the resolution of the sensor behind it. The decoder takes it as an
// explicit value rather than reading process-wide constants, so alternate
// geometries can be exercised in tests.
type SensorGeometry struct {
	// RawFileOffset is the distance in bytes from the start of the raw
	// payload region to the end of the file, header included.
	RawFileOffset int `yaml:"rawFileOffset"`

	// RawHeaderSize is the size in bytes of the header that precedes the
	// pixel data inside the raw payload region.
	RawHeaderSize int `yaml:"rawHeaderSize"`

	// PixelsPerLine is the number of pixels in one sensor row.
	PixelsPerLine int `yaml:"pixelsPerLine"`

	// PixelsPerColumn is the number of sensor rows.
	PixelsPerColumn int `yaml:"pixelsPerColumn"`

	// PaddedLineBytes is the stored size of one sensor row, padding
	// included. Only UsedLineBytes of each line carry samples.
	PaddedLineBytes int `yaml:"paddedLineBytes"`
}

// DefaultSensorGeometry returns the layout of the GONet camera: a Sony
// IMX477 frame of 4056x3040 12-bit samples, 6112-byte padded lines, with
// the payload at a fixed offset from the end of the container.
func DefaultSensorGeometry() SensorGeometry {
	return SensorGeometry{
		RawFileOffset:   18711040,
		RawHeaderSize:   32768,
		PixelsPerLine:   4056,
		PixelsPerColumn: 3040,
		PaddedLineBytes: 6112,
	}
}

// RawDataOffset is the seek distance back from the end of the file to the
// first pixel line.
func (g SensorGeometry) RawDataOffset() int { return g.RawFileOffset - g.RawHeaderSize }

// UsedLineBytes is the number of payload bytes per line at 12 bits per pixel.
func (g SensorGeometry) UsedLineBytes() int { return g.PixelsPerLine * 12 / 8 }

// Validate checks that the geometry can produce whole 3-byte groups and
// whole 2x2 Bayer tiles.
func (g SensorGeometry) Validate() error {
	if g.PixelsPerLine <= 0 || g.PixelsPerColumn <= 0 {
		return fmt.Errorf("%w: non-positive sensor dimensions %dx%d", ErrFormat, g.PixelsPerLine, g.PixelsPerColumn)
	}
	if g.PixelsPerLine%2 != 0 || g.PixelsPerColumn%2 != 0 {
		return fmt.Errorf("%w: sensor dimensions %dx%d cannot form 2x2 tiles", ErrFormat, g.PixelsPerLine, g.PixelsPerColumn)
	}
	if g.UsedLineBytes() > g.PaddedLineBytes {
		return fmt.Errorf("%w: padded line of %d bytes is smaller than the %d used bytes", ErrFormat, g.PaddedLineBytes, g.UsedLineBytes())
	}
	if g.RawDataOffset() < g.PixelsPerColumn*g.PaddedLineBytes {
		return fmt.Errorf("%w: raw data offset %d cannot hold %d lines of %d bytes", ErrFormat, g.RawDataOffset(), g.PixelsPerColumn, g.PaddedLineBytes)
	}
	return nil
}

// LoadSensorGeometry reads a geometry from a YAML file. A missing file
// yields the GONet defaults; fields absent from the file keep their
// default values.
func LoadSensorGeometry(path string) (SensorGeometry, error) {
	g := DefaultSensorGeometry()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return g, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return g, fmt.Errorf("reading sensor geometry: %w", err)
	}
	if err := yaml.Unmarshal(data, &g); err != nil {
		return g, fmt.Errorf("parsing sensor geometry: %w", err)
	}
	if err := g.Validate(); err != nil {
		return g, err
	}
	return g, nil
}

// SaveSensorGeometry writes the geometry to a YAML file.
func SaveSensorGeometry(g SensorGeometry, path string) error {
	data, err := yaml.Marshal(g)
	if err != nil {
		return fmt.Errorf("marshaling sensor geometry: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing sensor geometry: %w", err)
	}
	return nil
}
