// package texture describes 2D textures: sampled images loaded from disk and uninitialized render targets.
package texture

import "github.com/Carmen-Shannon/oxy-gl/common"

// textureImpl is the implementation of the Texture interface.
type textureImpl struct {
	id             common.AssetID
	internalFormat ColorFormat
	format         ColorFormat
	dataType       DataType
	width          int
	height         int
	wrapS, wrapT   Wrap
	minFilter      Filter
	magFilter      Filter
	attachment     AttachmentType
	data           []byte
	path           common.Path
}

// Texture is a 2D image description. A texture without data is created uninitialized
// on the GPU and is used as a render target. Width and height may be zero until the
// owning framebuffer assigns them.
type Texture interface {
	// ID returns the asset identifier of the texture.
	//
	// Returns:
	//   - common.AssetID: the texture identifier
	ID() common.AssetID

	// InternalFormat returns the GPU storage format.
	//
	// Returns:
	//   - ColorFormat: the internal format
	InternalFormat() ColorFormat

	// Format returns the format of the uploaded pixel data.
	//
	// Returns:
	//   - ColorFormat: the upload format
	Format() ColorFormat

	// DataType returns the component type of the uploaded pixel data.
	//
	// Returns:
	//   - DataType: the data type
	DataType() DataType

	// Width returns the width in pixels.
	Width() int

	// Height returns the height in pixels.
	Height() int

	// SetSize sets the dimensions. Used by the framebuffer on build and resize.
	//
	// Parameters:
	//   - width, height: the new dimensions in pixels
	SetSize(width, height int)

	// WrapS returns the horizontal wrap mode.
	WrapS() Wrap

	// WrapT returns the vertical wrap mode.
	WrapT() Wrap

	// MinFilter returns the minification filter.
	MinFilter() Filter

	// MagFilter returns the magnification filter.
	MagFilter() Filter

	// Attachment returns the framebuffer slot of the texture, AttachmentNone for sampled images.
	//
	// Returns:
	//   - AttachmentType: the attachment slot
	Attachment() AttachmentType

	// Data returns the raw pixel bytes, or nil for render targets.
	//
	// Returns:
	//   - []byte: the pixel data
	Data() []byte

	// Path returns the file the texture was decoded from, if any.
	//
	// Returns:
	//   - common.Path: the source path
	Path() common.Path
}

var _ Texture = &textureImpl{}

// NewTexture creates a Texture. Defaults: RGBA internal and upload format, unsigned byte
// data, clamp-to-edge wrapping and linear filtering.
//
// Parameters:
//   - options: functional options to configure the texture
//
// Returns:
//   - Texture: the new texture
func NewTexture(options ...TextureBuilderOption) Texture {
	t := &textureImpl{
		internalFormat: ColorFormatRGBA,
		format:         ColorFormatRGBA,
		dataType:       DataTypeUnsignedByte,
		wrapS:          WrapClampToEdge,
		wrapT:          WrapClampToEdge,
		minFilter:      FilterLinear,
		magFilter:      FilterLinear,
	}
	for _, opt := range options {
		opt(t)
	}
	if t.id == 0 {
		t.id = common.NewAssetID()
	}
	return t
}

// NewAttachment creates an uninitialized render target texture for a framebuffer slot.
// The upload format and data type are derived from the internal format.
//
// Parameters:
//   - attachment: the framebuffer slot
//   - internalFormat: the GPU storage format
//
// Returns:
//   - Texture: the attachment texture with zero size
func NewAttachment(attachment AttachmentType, internalFormat ColorFormat) Texture {
	format, dataType := ColorFormatRGBA, DataTypeUnsignedByte
	switch internalFormat {
	case ColorFormatDepth, ColorFormatDepth24, ColorFormatDepth32F:
		format, dataType = ColorFormatDepth, DataTypeFloat
	case ColorFormatRGB16F, ColorFormatRGB32F, ColorFormatR11G11B10F:
		format, dataType = ColorFormatRGB, DataTypeFloat
	case ColorFormatRGBA16F, ColorFormatRGBA32F:
		format, dataType = ColorFormatRGBA, DataTypeFloat
	case ColorFormatR16F, ColorFormatR32F:
		format, dataType = ColorFormatRed, DataTypeFloat
	case ColorFormatRGB, ColorFormatRGB8:
		format = ColorFormatRGB
	}
	return NewTexture(
		WithAttachment(attachment),
		WithInternalFormat(internalFormat),
		WithFormat(format),
		WithDataType(dataType),
	)
}

func (t *textureImpl) ID() common.AssetID {
	return t.id
}

func (t *textureImpl) InternalFormat() ColorFormat {
	return t.internalFormat
}

func (t *textureImpl) Format() ColorFormat {
	return t.format
}

func (t *textureImpl) DataType() DataType {
	return t.dataType
}

func (t *textureImpl) Width() int {
	return t.width
}

func (t *textureImpl) Height() int {
	return t.height
}

func (t *textureImpl) SetSize(width, height int) {
	t.width = width
	t.height = height
}

func (t *textureImpl) WrapS() Wrap {
	return t.wrapS
}

func (t *textureImpl) WrapT() Wrap {
	return t.wrapT
}

func (t *textureImpl) MinFilter() Filter {
	return t.minFilter
}

func (t *textureImpl) MagFilter() Filter {
	return t.magFilter
}

func (t *textureImpl) Attachment() AttachmentType {
	return t.attachment
}

func (t *textureImpl) Data() []byte {
	return t.data
}

func (t *textureImpl) Path() common.Path {
	return t.path
}
