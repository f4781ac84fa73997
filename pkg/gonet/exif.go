package gonet

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// Metadata holds the side-channel key-value pairs of a container: the EXIF
// tags of a raw GONet file, or whatever a pre-decoded source carried.
// Values are string, int64 or float64.
type Metadata map[string]any

// GetString returns the value for key if it is a string.
func (m Metadata) GetString(key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

// GetFloat returns a numeric value for key, accepting both integer and
// rational tags.
func (m Metadata) GetFloat(key string) (float64, bool) {
	switch v := m[key].(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	}
	return 0, false
}

// GetInt returns an integer value for key.
func (m Metadata) GetInt(key string) (int64, bool) {
	if v, ok := m[key].(int64); ok {
		return v, true
	}
	return 0, false
}

// Convenience accessors for the tags GONet observation logs care about.
func (m Metadata) CameraMake() string  { return m.GetString("Make") }
func (m Metadata) CameraModel() string { return m.GetString("Model") }
func (m Metadata) DateTime() string    { return m.GetString("DateTime") }

func (m Metadata) ExposureTime() (float64, bool) { return m.GetFloat("ExposureTime") }
func (m Metadata) ISO() (int64, bool)            { return m.GetInt("ISOSpeedRatings") }

// exifTagNames maps the TIFF/EXIF tag IDs the parser understands to their
// conventional names. Unknown tags are skipped, not errors.
var exifTagNames = map[uint16]string{
	0x010F: "Make",
	0x0110: "Model",
	0x0112: "Orientation",
	0x011A: "XResolution",
	0x011B: "YResolution",
	0x0131: "Software",
	0x0132: "DateTime",
	0x829A: "ExposureTime",
	0x829D: "FNumber",
	0x8827: "ISOSpeedRatings",
	0x9003: "DateTimeOriginal",
	0x9004: "DateTimeDigitized",
	0x9201: "ShutterSpeedValue",
	0x9202: "ApertureValue",
	0x9204: "ExposureBiasValue",
	0x920A: "FocalLength",
	0xA002: "PixelXDimension",
	0xA003: "PixelYDimension",
}

// exifSubIFDTag points at the EXIF private IFD inside IFD0.
const exifSubIFDTag = 0x8769

// ParseEXIF scans a JPEG byte stream for its APP1 Exif segment and decodes
// IFD0 plus the EXIF sub-IFD into a Metadata map. A stream without an Exif
// segment yields an empty map; a segment that is present but structurally
// broken is a format error.
func ParseEXIF(data []byte) (Metadata, error) {
	meta := Metadata{}
	if len(data) < 2 || data[0] != 0xFF || data[1] != 0xD8 {
		return nil, fmt.Errorf("%w: not a JPEG stream", ErrFormat)
	}

	pos := 2
	for pos+4 <= len(data) {
		if data[pos] != 0xFF {
			break
		}
		marker := data[pos+1]
		if marker == 0xDA || marker == 0xD9 { // start of scan / end of image
			break
		}
		segLen := int(binary.BigEndian.Uint16(data[pos+2 : pos+4]))
		if segLen < 2 || pos+2+segLen > len(data) {
			return nil, fmt.Errorf("%w: JPEG segment 0x%02X overruns the stream", ErrFormat, marker)
		}
		payload := data[pos+4 : pos+2+segLen]
		if marker == 0xE1 && len(payload) >= 6 && string(payload[:6]) == "Exif\x00\x00" {
			if err := parseTIFFIFDs(payload[6:], meta); err != nil {
				return nil, err
			}
			return meta, nil
		}
		pos += 2 + segLen
	}
	return meta, nil
}

// parseTIFFIFDs decodes IFD0 of a TIFF structure and follows the EXIF
// sub-IFD pointer if present.
func parseTIFFIFDs(tiff []byte, meta Metadata) error {
	if len(tiff) < 8 {
		return fmt.Errorf("%w: EXIF TIFF header truncated at %d bytes", ErrFormat, len(tiff))
	}
	var order binary.ByteOrder
	switch string(tiff[:2]) {
	case "II":
		order = binary.LittleEndian
	case "MM":
		order = binary.BigEndian
	default:
		return fmt.Errorf("%w: unknown EXIF byte order %q", ErrFormat, tiff[:2])
	}
	if order.Uint16(tiff[2:4]) != 42 {
		return fmt.Errorf("%w: bad EXIF TIFF magic %d", ErrFormat, order.Uint16(tiff[2:4]))
	}

	ifdOffset := int(order.Uint32(tiff[4:8]))
	subOffset, err := parseIFD(tiff, ifdOffset, order, meta)
	if err != nil {
		return err
	}
	if subOffset > 0 {
		if _, err := parseIFD(tiff, subOffset, order, meta); err != nil {
			return err
		}
	}
	return nil
}

// parseIFD reads one IFD's entries into meta and returns the offset of the
// EXIF sub-IFD if an entry points at one.
func parseIFD(tiff []byte, offset int, order binary.ByteOrder, meta Metadata) (int, error) {
	if offset < 0 || offset+2 > len(tiff) {
		return 0, fmt.Errorf("%w: EXIF IFD offset %d out of range", ErrFormat, offset)
	}
	count := int(order.Uint16(tiff[offset : offset+2]))
	entriesEnd := offset + 2 + count*12
	if entriesEnd > len(tiff) {
		return 0, fmt.Errorf("%w: EXIF IFD with %d entries overruns the segment", ErrFormat, count)
	}

	subIFD := 0
	for i := 0; i < count; i++ {
		entry := tiff[offset+2+i*12 : offset+2+(i+1)*12]
		tag := order.Uint16(entry[0:2])
		typ := order.Uint16(entry[2:4])
		num := int(order.Uint32(entry[4:8]))

		if tag == exifSubIFDTag && typ == 4 {
			subIFD = int(order.Uint32(entry[8:12]))
			continue
		}
		name, known := exifTagNames[tag]
		if !known {
			continue
		}
		value, err := decodeIFDValue(tiff, entry, typ, num, order)
		if err != nil {
			return 0, err
		}
		if value != nil {
			meta[name] = value
		}
	}
	return subIFD, nil
}

// decodeIFDValue extracts one entry's value. Values wider than 4 bytes
// live at an offset elsewhere in the TIFF block.
func decodeIFDValue(tiff, entry []byte, typ uint16, num int, order binary.ByteOrder) (any, error) {
	sizes := map[uint16]int{1: 1, 2: 1, 3: 2, 4: 4, 5: 8, 9: 4, 10: 8}
	size, ok := sizes[typ]
	if !ok {
		return nil, nil // unhandled type, skip
	}
	total := size * num
	var raw []byte
	if total <= 4 {
		raw = entry[8 : 8+total]
	} else {
		off := int(order.Uint32(entry[8:12]))
		if off < 0 || off+total > len(tiff) {
			return nil, fmt.Errorf("%w: EXIF value at offset %d overruns the segment", ErrFormat, off)
		}
		raw = tiff[off : off+total]
	}

	switch typ {
	case 2: // ASCII, NUL-terminated
		return strings.TrimRight(string(raw), "\x00"), nil
	case 3: // SHORT
		return int64(order.Uint16(raw[:2])), nil
	case 4: // LONG
		return int64(order.Uint32(raw[:4])), nil
	case 9: // SLONG
		return int64(int32(order.Uint32(raw[:4]))), nil
	case 5: // RATIONAL
		den := order.Uint32(raw[4:8])
		return float64(order.Uint32(raw[:4])) / float64(den), nil
	case 10: // SRATIONAL
		den := int32(order.Uint32(raw[4:8]))
		return float64(int32(order.Uint32(raw[:4]))) / float64(den), nil
	default:
		return nil, nil
	}
}
