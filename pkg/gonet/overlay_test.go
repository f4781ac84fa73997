package gonet

import (
	"bytes"
	"errors"
	"image/jpeg"
	"testing"
)

func TestRenderRegionOverlayBytes(t *testing.T) {
	img := NewImage(20, 30)
	img.Fill(1000)
	mask, err := MaskSector(15, 10, 5, 0, 360, 20, 30)
	if err != nil {
		t.Fatalf("MaskSector failed: %v", err)
	}
	result, err := ExtractRegion(img, mask)
	if err != nil {
		t.Fatalf("ExtractRegion failed: %v", err)
	}

	data, err := RenderRegionOverlayBytes(img, mask, result)
	if err != nil {
		t.Fatalf("RenderRegionOverlayBytes failed: %v", err)
	}
	decoded, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("overlay does not decode as JPEG: %v", err)
	}
	if decoded.Bounds().Dx() != 30 {
		t.Errorf("overlay width = %d, want 30", decoded.Bounds().Dx())
	}
	if decoded.Bounds().Dy() != 20+24 {
		t.Errorf("overlay height = %d, want %d for the image plus the caption band", decoded.Bounds().Dy(), 20+24)
	}
}

func TestRenderRegionOverlayBytesRejectsMismatch(t *testing.T) {
	img := NewImage(4, 4)
	mask := NewMask(5, 5)
	_, err := RenderRegionOverlayBytes(img, mask, ExtractionResult{})
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("got %v, want ErrDimensionMismatch", err)
	}
}
