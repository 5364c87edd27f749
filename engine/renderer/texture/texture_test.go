package texture

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/oxy-gl/common"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(y), G: 0, B: 0, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestNewTextureDefaults(t *testing.T) {
	tex := NewTexture()
	if tex.InternalFormat() != ColorFormatRGBA || tex.Format() != ColorFormatRGBA {
		t.Errorf("unexpected formats %x %x", tex.InternalFormat(), tex.Format())
	}
	if tex.DataType() != DataTypeUnsignedByte {
		t.Errorf("unexpected data type %x", tex.DataType())
	}
	if tex.WrapS() != WrapClampToEdge || tex.WrapT() != WrapClampToEdge {
		t.Errorf("unexpected wrap %x %x", tex.WrapS(), tex.WrapT())
	}
	if tex.MinFilter() != FilterLinear || tex.MagFilter() != FilterLinear {
		t.Errorf("unexpected filters %x %x", tex.MinFilter(), tex.MagFilter())
	}
	if tex.ID() == 0 || tex.Data() != nil {
		t.Errorf("expected generated id and no data")
	}
}

func TestNewAttachmentFormats(t *testing.T) {
	tests := []struct {
		name     string
		internal ColorFormat
		format   ColorFormat
		dataType DataType
	}{
		{"depth32f", ColorFormatDepth32F, ColorFormatDepth, DataTypeFloat},
		{"hdr", ColorFormatR11G11B10F, ColorFormatRGB, DataTypeFloat},
		{"rgba8", ColorFormatRGBA8, ColorFormatRGBA, DataTypeUnsignedByte},
		{"rgb16f", ColorFormatRGB16F, ColorFormatRGB, DataTypeFloat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tex := NewAttachment(AttachmentColor0, tt.internal)
			if tex.Format() != tt.format || tex.DataType() != tt.dataType {
				t.Errorf("format=%x type=%x, want %x %x", tex.Format(), tex.DataType(), tt.format, tt.dataType)
			}
			if tex.Width() != 0 || tex.Height() != 0 {
				t.Errorf("attachment should start with zero size")
			}
		})
	}
}

func TestAttachmentOrdering(t *testing.T) {
	if !(AttachmentColor0 < AttachmentColor1 && AttachmentColor7 < AttachmentDepth) {
		t.Error("attachment values are not ordered by slot")
	}
	if AttachmentDepth.IsColor() || !AttachmentColor3.IsColor() {
		t.Error("IsColor misclassifies attachments")
	}
}

func TestFromBytes(t *testing.T) {
	data := encodePNG(t, 4, 3)
	tex, err := FromBytes(data, DecodeOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if tex.Width() != 4 || tex.Height() != 3 {
		t.Errorf("size = %dx%d, want 4x3", tex.Width(), tex.Height())
	}
	if len(tex.Data()) != 4*3*4 {
		t.Errorf("data length = %d, want %d", len(tex.Data()), 4*3*4)
	}

	flipped, err := FromBytes(data, DecodeOptions{FlipY: true})
	if err != nil {
		t.Fatal(err)
	}
	if got := flipped.Data()[0]; got != 2 {
		t.Errorf("flipped first row red = %d, want 2", got)
	}
}

func TestFromFileDownsamples(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.png")
	if err := os.WriteFile(path, encodePNG(t, 64, 32), 0o644); err != nil {
		t.Fatal(err)
	}
	tex, err := FromFile(common.Path(path), DecodeOptions{MaxSize: 16})
	if err != nil {
		t.Fatal(err)
	}
	if tex.Width() != 16 || tex.Height() != 8 {
		t.Errorf("size = %dx%d, want 16x8", tex.Width(), tex.Height())
	}
	if tex.Path() != common.Path(path) {
		t.Errorf("path not recorded: %q", tex.Path())
	}
}

func TestFromBytesRejectsGarbage(t *testing.T) {
	if _, err := FromBytes([]byte("not an image"), DecodeOptions{}); err == nil {
		t.Error("expected decode error")
	}
	if _, err := FromBytes(nil, DecodeOptions{}); err == nil {
		t.Error("expected error for empty data")
	}
}
