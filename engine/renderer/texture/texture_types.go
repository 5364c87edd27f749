package texture

// ColorFormat is an internal or upload pixel format. Values match the OpenGL enums.
type ColorFormat uint32

const (
	ColorFormatDepth        ColorFormat = 0x1902
	ColorFormatRed          ColorFormat = 0x1903
	ColorFormatRGB          ColorFormat = 0x1907
	ColorFormatRGBA         ColorFormat = 0x1908
	ColorFormatRGB8         ColorFormat = 0x8051
	ColorFormatRGBA8        ColorFormat = 0x8058
	ColorFormatRGBA32F      ColorFormat = 0x8814
	ColorFormatRGB32F       ColorFormat = 0x8815
	ColorFormatRGBA16F      ColorFormat = 0x881A
	ColorFormatRGB16F       ColorFormat = 0x881B
	ColorFormatR16F         ColorFormat = 0x822D
	ColorFormatR32F         ColorFormat = 0x822E
	ColorFormatR11G11B10F   ColorFormat = 0x8C3A
	ColorFormatDepth24      ColorFormat = 0x81A6
	ColorFormatDepth32F     ColorFormat = 0x8CAC
	ColorFormatSRGB8Alpha8  ColorFormat = 0x8C43
	ColorFormatDepthStencil ColorFormat = 0x84F9
)

// IsDepth reports whether the format stores depth.
func (f ColorFormat) IsDepth() bool {
	switch f {
	case ColorFormatDepth, ColorFormatDepth24, ColorFormatDepth32F, ColorFormatDepthStencil:
		return true
	}
	return false
}

// DataType is the component type of uploaded pixel data. Values match the OpenGL enums.
type DataType uint32

const (
	DataTypeByte          DataType = 0x1400
	DataTypeUnsignedByte  DataType = 0x1401
	DataTypeShort         DataType = 0x1402
	DataTypeUnsignedShort DataType = 0x1403
	DataTypeInt           DataType = 0x1404
	DataTypeUnsignedInt   DataType = 0x1405
	DataTypeFloat         DataType = 0x1406
	DataTypeHalfFloat     DataType = 0x140B
)

// Wrap is a texture coordinate wrap mode. Values match the OpenGL enums.
type Wrap uint32

const (
	WrapRepeat         Wrap = 0x2901
	WrapMirroredRepeat Wrap = 0x8370
	WrapClampToEdge    Wrap = 0x812F
	WrapClampToBorder  Wrap = 0x812D
)

// Filter is a texture sampling filter. Values match the OpenGL enums.
type Filter uint32

const (
	FilterNearest              Filter = 0x2600
	FilterLinear               Filter = 0x2601
	FilterNearestMipmapNearest Filter = 0x2700
	FilterLinearMipmapNearest  Filter = 0x2701
	FilterNearestMipmapLinear  Filter = 0x2702
	FilterLinearMipmapLinear   Filter = 0x2703
)

// Mipmapped reports whether the filter samples mip levels.
func (f Filter) Mipmapped() bool {
	return f >= FilterNearestMipmapNearest && f <= FilterLinearMipmapLinear
}

// AttachmentType is the framebuffer slot a texture is attached to. Values match the
// OpenGL enums, so sorting by value sorts color slots in ascending order.
type AttachmentType uint32

const (
	AttachmentNone   AttachmentType = 0
	AttachmentColor0 AttachmentType = 0x8CE0
	AttachmentColor1 AttachmentType = 0x8CE1
	AttachmentColor2 AttachmentType = 0x8CE2
	AttachmentColor3 AttachmentType = 0x8CE3
	AttachmentColor4 AttachmentType = 0x8CE4
	AttachmentColor5 AttachmentType = 0x8CE5
	AttachmentColor6 AttachmentType = 0x8CE6
	AttachmentColor7 AttachmentType = 0x8CE7
	AttachmentDepth  AttachmentType = 0x8D00
)

// IsColor reports whether the attachment is a color slot.
func (a AttachmentType) IsColor() bool {
	return a >= AttachmentColor0 && a <= AttachmentColor7
}

// Unit is a texture unit index.
type Unit int32

const (
	Unit0 Unit = iota
	Unit1
	Unit2
	Unit3
	Unit4
	Unit5
	Unit6
	Unit7
)
