package gonet

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"math"
	"os"
	"strings"

	"github.com/astrogo/fitsio"
	"golang.org/x/image/tiff"
)

// Format writers. The container only guarantees that its channels and
// metadata are complete and consistent; the encodings below are plain
// re-expressions of that state. Channels are assumed to live in the
// 16-bit range [0, 65535] and are clipped into it before encoding.

// WriteFITS streams the three channels to w as IMAGE HDUs (RED first,
// then GREEN and BLUE), each carrying the file metadata as header cards.
// Keys are sanitized to the 8-character uppercase FITS form.
func (f *GONetFile) WriteFITS(w io.Writer) error {
	fits, err := fitsio.Create(w)
	if err != nil {
		return fmt.Errorf("creating FITS: %w", err)
	}
	defer fits.Close()

	channels := []struct {
		name string
		img  *Image
	}{
		{"RED", f.red},
		{"GREEN", f.green},
		{"BLUE", f.blue},
	}
	for _, ch := range channels {
		im := fitsio.NewImage(-64, []int{ch.img.Cols(), ch.img.Rows()})
		cards := metadataCards(f.meta)
		cards = append(cards,
			fitsio.Card{Name: "CHANNEL", Value: ch.name},
			fitsio.Card{Name: "EXTNAME", Value: ch.name},
			fitsio.Card{Name: "FILEKIND", Value: strings.ToUpper(f.kind.String())},
		)
		if err := im.Header().Append(cards...); err != nil {
			im.Close()
			return fmt.Errorf("%s header: %w", ch.name, err)
		}
		if err := im.Write(ch.img.Data()); err != nil {
			im.Close()
			return fmt.Errorf("%s data: %w", ch.name, err)
		}
		if err := fits.Write(im); err != nil {
			im.Close()
			return fmt.Errorf("%s HDU: %w", ch.name, err)
		}
		im.Close()
	}
	return nil
}

// metadataCards converts the metadata map to FITS header cards. Keys are
// upper-cased and truncated to 8 characters; collisions after truncation
// keep the first value seen.
func metadataCards(meta Metadata) []fitsio.Card {
	cards := make([]fitsio.Card, 0, len(meta))
	seen := map[string]bool{"CHANNEL": true, "EXTNAME": true, "FILEKIND": true}
	for key, value := range meta {
		name := strings.ToUpper(key)
		if len(name) > 8 {
			name = name[:8]
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		switch v := value.(type) {
		case string:
			cards = append(cards, fitsio.Card{Name: name, Value: v})
		case int64:
			cards = append(cards, fitsio.Card{Name: name, Value: int(v)})
		case float64:
			if !math.IsNaN(v) && !math.IsInf(v, 0) {
				cards = append(cards, fitsio.Card{Name: name, Value: v})
			}
		}
	}
	return cards
}

// WriteTIFF encodes the channels as a deflate-compressed 16-bit RGB TIFF.
func (f *GONetFile) WriteTIFF(w io.Writer) error {
	img := image.NewRGBA64(image.Rect(0, 0, f.Cols(), f.Rows()))
	for y := 0; y < f.Rows(); y++ {
		for x := 0; x < f.Cols(); x++ {
			img.SetRGBA64(x, y, color.RGBA64{
				R: clipUint16(f.red.At(y, x)),
				G: clipUint16(f.green.At(y, x)),
				B: clipUint16(f.blue.At(y, x)),
				A: 0xFFFF,
			})
		}
	}
	if err := tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate}); err != nil {
		return fmt.Errorf("encoding TIFF: %w", err)
	}
	return nil
}

// WriteJPEG encodes the channels as an 8-bit JPEG, rescaling from the
// 16-bit range.
func (f *GONetFile) WriteJPEG(w io.Writer) error {
	img := image.NewRGBA(image.Rect(0, 0, f.Cols(), f.Rows()))
	for y := 0; y < f.Rows(); y++ {
		for x := 0; x < f.Cols(); x++ {
			img.SetRGBA(x, y, color.RGBA{
				R: uint8(math.Round(float64(clipUint16(f.red.At(y, x))) / 65535 * 255)),
				G: uint8(math.Round(float64(clipUint16(f.green.At(y, x))) / 65535 * 255)),
				B: uint8(math.Round(float64(clipUint16(f.blue.At(y, x))) / 65535 * 255)),
				A: 0xFF,
			})
		}
	}
	if err := jpeg.Encode(w, img, &jpeg.Options{Quality: 95}); err != nil {
		return fmt.Errorf("encoding JPEG: %w", err)
	}
	return nil
}

// WriteFITSFile, WriteTIFFFile and WriteJPEGFile are path-taking
// conveniences over the stream writers.
func (f *GONetFile) WriteFITSFile(path string) error { return writeFile(path, f.WriteFITS) }
func (f *GONetFile) WriteTIFFFile(path string) error { return writeFile(path, f.WriteTIFF) }
func (f *GONetFile) WriteJPEGFile(path string) error { return writeFile(path, f.WriteJPEG) }

func writeFile(path string, write func(io.Writer) error) error {
	fid, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer fid.Close()
	return write(fid)
}

func clipUint16(v float64) uint16 {
	if v < 0 {
		return 0
	}
	if v > 65535 {
		return 65535
	}
	return uint16(math.Round(v))
}
