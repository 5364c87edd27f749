// Package framebuffer describes off-screen render targets built from named texture attachments.
package framebuffer

import (
	"fmt"
	"sort"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/texture"
)

// framebufferImpl is the implementation of the Framebuffer interface.
type framebufferImpl struct {
	id           common.AssetID
	width        int
	height       int
	textures     map[string]texture.Texture
	attachments  []texture.AttachmentType
	resize       bool
	resizeFactor float32
}

// Framebuffer is an off-screen target made of tagged attachment textures.
//
// Attachments are added before the device builds the framebuffer. A framebuffer holds at
// most one depth attachment; when none is given the device backs depth with a
// renderbuffer. Resizable framebuffers are rebuilt at viewport * ResizeFactor whenever
// the viewport changes.
type Framebuffer interface {
	// ID returns the asset identifier of the framebuffer.
	//
	// Returns:
	//   - common.AssetID: the framebuffer identifier
	ID() common.AssetID

	// Width returns the width in pixels.
	Width() int

	// Height returns the height in pixels.
	Height() int

	// SetSize sets the framebuffer dimensions.
	//
	// Parameters:
	//   - width, height: the new dimensions in pixels
	SetSize(width, height int)

	// AddTexture attaches a texture under tag.
	//
	// Parameters:
	//   - tag: the attachment name ("color", "depth", ...)
	//   - tex: the attachment texture
	//
	// Returns:
	//   - error: ErrDuplicateDepth when a second depth attachment is added
	AddTexture(tag string, tex texture.Texture) error

	// Texture returns the attachment stored under tag.
	//
	// Parameters:
	//   - tag: the attachment name
	//
	// Returns:
	//   - texture.Texture: the attachment
	//   - error: ErrLookup when the tag is unknown
	Texture(tag string) (texture.Texture, error)

	// Textures returns all attachments ordered by attachment slot.
	//
	// Returns:
	//   - []texture.Texture: the attachments
	Textures() []texture.Texture

	// Tags returns the attachment names ordered by attachment slot.
	//
	// Returns:
	//   - []string: the tags
	Tags() []string

	// HasDepth reports whether a depth texture is attached.
	//
	// Returns:
	//   - bool: true if a depth attachment exists
	HasDepth() bool

	// Attachments returns the color slots recorded by the last build, ascending.
	//
	// Returns:
	//   - []texture.AttachmentType: the draw-buffer list
	Attachments() []texture.AttachmentType

	// SetAttachments records the draw-buffer list. Called by the device on build.
	//
	// Parameters:
	//   - attachments: the color slots in draw-buffer order
	SetAttachments(attachments []texture.AttachmentType)

	// ClearAttachments drops the recorded draw-buffer list before a rebuild.
	ClearAttachments()

	// Resize reports whether the framebuffer follows the viewport size.
	Resize() bool

	// SetResize toggles viewport following.
	SetResize(resize bool)

	// ResizeFactor returns the multiplier applied to the viewport on resize.
	ResizeFactor() float32

	// SetResizeFactor sets the multiplier applied to the viewport on resize.
	SetResizeFactor(factor float32)
}

var _ Framebuffer = &framebufferImpl{}

// NewFramebuffer creates an empty framebuffer of the given size. Defaults: resize enabled, factor 1.
//
// Parameters:
//   - width, height: the initial dimensions in pixels
//   - options: functional options to configure the framebuffer
//
// Returns:
//   - Framebuffer: the new framebuffer
func NewFramebuffer(width, height int, options ...FramebufferBuilderOption) Framebuffer {
	f := &framebufferImpl{
		width:        width,
		height:       height,
		textures:     make(map[string]texture.Texture),
		resize:       true,
		resizeFactor: 1,
	}
	for _, opt := range options {
		opt(f)
	}
	if f.id == 0 {
		f.id = common.NewAssetID()
	}
	return f
}

// ScaledSize returns floor(width * factor) and floor(height * factor).
//
// Parameters:
//   - width, height: the viewport size
//   - factor: the resize factor
//
// Returns:
//   - int, int: the scaled size
func ScaledSize(width, height int, factor float32) (int, int) {
	return int(float32(width) * factor), int(float32(height) * factor)
}

func (f *framebufferImpl) ID() common.AssetID {
	return f.id
}

func (f *framebufferImpl) Width() int {
	return f.width
}

func (f *framebufferImpl) Height() int {
	return f.height
}

func (f *framebufferImpl) SetSize(width, height int) {
	f.width = width
	f.height = height
}

func (f *framebufferImpl) AddTexture(tag string, tex texture.Texture) error {
	if tex.Attachment() == texture.AttachmentDepth && f.HasDepth() {
		if existing, ok := f.textures[tag]; !ok || existing.Attachment() != texture.AttachmentDepth {
			return fmt.Errorf("%w: %q", common.ErrDuplicateDepth, tag)
		}
	}
	f.textures[tag] = tex
	return nil
}

func (f *framebufferImpl) Texture(tag string) (texture.Texture, error) {
	t, ok := f.textures[tag]
	if !ok {
		return nil, common.LookupError("framebuffer texture", tag)
	}
	return t, nil
}

func (f *framebufferImpl) Textures() []texture.Texture {
	tags := f.Tags()
	out := make([]texture.Texture, len(tags))
	for i, tag := range tags {
		out[i] = f.textures[tag]
	}
	return out
}

func (f *framebufferImpl) Tags() []string {
	tags := make([]string, 0, len(f.textures))
	for tag := range f.textures {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool {
		a, b := f.textures[tags[i]].Attachment(), f.textures[tags[j]].Attachment()
		if a != b {
			return a < b
		}
		return tags[i] < tags[j]
	})
	return tags
}

func (f *framebufferImpl) HasDepth() bool {
	for _, t := range f.textures {
		if t.Attachment() == texture.AttachmentDepth {
			return true
		}
	}
	return false
}

func (f *framebufferImpl) Attachments() []texture.AttachmentType {
	return f.attachments
}

func (f *framebufferImpl) SetAttachments(attachments []texture.AttachmentType) {
	f.attachments = append(f.attachments[:0], attachments...)
}

func (f *framebufferImpl) ClearAttachments() {
	f.attachments = f.attachments[:0]
}

func (f *framebufferImpl) Resize() bool {
	return f.resize
}

func (f *framebufferImpl) SetResize(resize bool) {
	f.resize = resize
}

func (f *framebufferImpl) ResizeFactor() float32 {
	return f.resizeFactor
}

func (f *framebufferImpl) SetResizeFactor(factor float32) {
	f.resizeFactor = factor
}
