package gonet

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"testing"
)

// buildExifJPEG synthesizes a minimal JPEG whose APP1 segment holds a
// little-endian TIFF block: IFD0 with Make, ISO, ExposureTime and a
// sub-IFD pointer, then a sub-IFD with DateTimeOriginal.
func buildExifJPEG(t *testing.T) []byte {
	t.Helper()

	le := binary.LittleEndian
	entry := func(buf *bytes.Buffer, tag, typ uint16, count uint32, value [4]byte) {
		binary.Write(buf, le, tag)
		binary.Write(buf, le, typ)
		binary.Write(buf, le, count)
		buf.Write(value[:])
	}
	offsetValue := func(off uint32) [4]byte {
		var v [4]byte
		le.PutUint32(v[:], off)
		return v
	}
	shortValue := func(s uint16) [4]byte {
		var v [4]byte
		le.PutUint16(v[:], s)
		return v
	}

	// Layout inside the TIFF block:
	//   0  header
	//   8  IFD0: count + 4 entries + next pointer
	//  62  "GONet\x00"
	//  68  rational 1/2
	//  76  sub-IFD: count + 1 entry + next pointer
	//  94  DateTimeOriginal string (20 bytes)
	const (
		makeOff = 62
		ratOff  = 68
		subOff  = 76
		dtOff   = 94
	)
	dt := "2026:08:27 01:02:03\x00"

	var tiff bytes.Buffer
	tiff.WriteString("II")
	binary.Write(&tiff, le, uint16(42))
	binary.Write(&tiff, le, uint32(8))

	binary.Write(&tiff, le, uint16(4))
	entry(&tiff, 0x010F, 2, 6, offsetValue(makeOff))       // Make
	entry(&tiff, 0x8827, 3, 1, shortValue(100))            // ISOSpeedRatings
	entry(&tiff, 0x829A, 5, 1, offsetValue(ratOff))        // ExposureTime
	entry(&tiff, exifSubIFDTag, 4, 1, offsetValue(subOff)) // EXIF sub-IFD
	binary.Write(&tiff, le, uint32(0))

	tiff.WriteString("GONet\x00")
	binary.Write(&tiff, le, uint32(1))
	binary.Write(&tiff, le, uint32(2))

	binary.Write(&tiff, le, uint16(1))
	entry(&tiff, 0x9003, 2, uint32(len(dt)), offsetValue(dtOff)) // DateTimeOriginal
	binary.Write(&tiff, le, uint32(0))
	tiff.WriteString(dt)

	payload := append([]byte("Exif\x00\x00"), tiff.Bytes()...)
	var jpg bytes.Buffer
	jpg.Write([]byte{0xFF, 0xD8}) // SOI
	jpg.Write([]byte{0xFF, 0xE1}) // APP1
	binary.Write(&jpg, binary.BigEndian, uint16(len(payload)+2))
	jpg.Write(payload)
	jpg.Write([]byte{0xFF, 0xD9}) // EOI
	return jpg.Bytes()
}

func TestParseEXIF(t *testing.T) {
	meta, err := ParseEXIF(buildExifJPEG(t))
	if err != nil {
		t.Fatalf("ParseEXIF failed: %v", err)
	}

	if got := meta.CameraMake(); got != "GONet" {
		t.Errorf("Make = %q, want GONet", got)
	}
	if iso, ok := meta.ISO(); !ok || iso != 100 {
		t.Errorf("ISO = (%d, %v), want (100, true)", iso, ok)
	}
	if exp, ok := meta.ExposureTime(); !ok || math.Abs(exp-0.5) > 1e-15 {
		t.Errorf("ExposureTime = (%g, %v), want (0.5, true)", exp, ok)
	}
	if got := meta.GetString("DateTimeOriginal"); got != "2026:08:27 01:02:03" {
		t.Errorf("DateTimeOriginal = %q", got)
	}
}

func TestParseEXIFNoSegment(t *testing.T) {
	// A JPEG without an Exif segment is not an error, just empty metadata.
	meta, err := ParseEXIF([]byte{0xFF, 0xD8, 0xFF, 0xD9})
	if err != nil {
		t.Fatalf("ParseEXIF failed: %v", err)
	}
	if len(meta) != 0 {
		t.Errorf("metadata has %d entries, want 0", len(meta))
	}
}

func TestParseEXIFRejectsNonJPEG(t *testing.T) {
	if _, err := ParseEXIF([]byte("not a jpeg")); !errors.Is(err, ErrFormat) {
		t.Errorf("got %v, want ErrFormat", err)
	}
	if _, err := ParseEXIF(nil); !errors.Is(err, ErrFormat) {
		t.Errorf("nil data: got %v, want ErrFormat", err)
	}
}

func TestParseEXIFRejectsBrokenStructure(t *testing.T) {
	good := buildExifJPEG(t)

	// Segment length pointing past the end of the stream.
	overrun := append([]byte{}, good...)
	binary.BigEndian.PutUint16(overrun[4:6], uint16(len(overrun)))
	if _, err := ParseEXIF(overrun); !errors.Is(err, ErrFormat) {
		t.Errorf("overrunning segment: got %v, want ErrFormat", err)
	}

	// Unknown byte order in the TIFF header.
	badOrder := append([]byte{}, good...)
	copy(badOrder[bytes.Index(badOrder, []byte("II")):], "XX")
	if _, err := ParseEXIF(badOrder); !errors.Is(err, ErrFormat) {
		t.Errorf("bad byte order: got %v, want ErrFormat", err)
	}
}

func TestMetadataAccessors(t *testing.T) {
	meta := Metadata{
		"Make":         "GONet",
		"ExposureTime": 0.25,
		"Orientation":  int64(1),
	}
	if meta.GetString("Make") != "GONet" {
		t.Error("GetString failed")
	}
	if meta.GetString("Orientation") != "" {
		t.Error("GetString on an int should be empty")
	}
	if v, ok := meta.GetFloat("Orientation"); !ok || v != 1 {
		t.Error("GetFloat should accept integer tags")
	}
	if _, ok := meta.GetInt("ExposureTime"); ok {
		t.Error("GetInt should reject float tags")
	}
	if _, ok := meta.GetFloat("missing"); ok {
		t.Error("GetFloat on a missing key should report false")
	}
}
