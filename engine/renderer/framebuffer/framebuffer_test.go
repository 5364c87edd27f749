package framebuffer

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/texture"
)

func TestNewFramebufferDefaults(t *testing.T) {
	f := NewFramebuffer(640, 480)
	if f.Width() != 640 || f.Height() != 480 {
		t.Errorf("size = %dx%d", f.Width(), f.Height())
	}
	if !f.Resize() || f.ResizeFactor() != 1 {
		t.Errorf("resize=%v factor=%f, want true 1", f.Resize(), f.ResizeFactor())
	}
	f = NewFramebuffer(1, 1, WithResize(false), WithResizeFactor(0.5))
	if f.Resize() || f.ResizeFactor() != 0.5 {
		t.Errorf("options not applied")
	}
}

func TestAddTextureRejectsSecondDepth(t *testing.T) {
	f := NewFramebuffer(1, 1)
	if err := f.AddTexture("depth", texture.NewAttachment(texture.AttachmentDepth, texture.ColorFormatDepth32F)); err != nil {
		t.Fatal(err)
	}
	err := f.AddTexture("depth2", texture.NewAttachment(texture.AttachmentDepth, texture.ColorFormatDepth32F))
	if !errors.Is(err, common.ErrDuplicateDepth) {
		t.Fatalf("expected ErrDuplicateDepth, got %v", err)
	}
	if err := f.AddTexture("depth", texture.NewAttachment(texture.AttachmentDepth, texture.ColorFormatDepth24)); err != nil {
		t.Errorf("replacing the depth attachment under the same tag failed: %v", err)
	}
	if !f.HasDepth() {
		t.Error("HasDepth() = false")
	}
}

func TestTexturesOrderedBySlot(t *testing.T) {
	f := NewFramebuffer(1, 1)
	_ = f.AddTexture("depth", texture.NewAttachment(texture.AttachmentDepth, texture.ColorFormatDepth32F))
	_ = f.AddTexture("material", texture.NewAttachment(texture.AttachmentColor2, texture.ColorFormatRGBA8))
	_ = f.AddTexture("normal", texture.NewAttachment(texture.AttachmentColor0, texture.ColorFormatRGB16F))
	_ = f.AddTexture("albedo", texture.NewAttachment(texture.AttachmentColor1, texture.ColorFormatRGB16F))

	want := []string{"normal", "albedo", "material", "depth"}
	got := f.Tags()
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Tags() = %v, want %v", got, want)
		}
	}
	if _, err := f.Texture("missing"); !errors.Is(err, common.ErrLookup) {
		t.Errorf("expected ErrLookup, got %v", err)
	}
}

func TestScaledSizeRoundsDown(t *testing.T) {
	w, h := ScaledSize(1601, 901, 0.5)
	if w != 800 || h != 450 {
		t.Errorf("ScaledSize = %dx%d, want 800x450", w, h)
	}
}
