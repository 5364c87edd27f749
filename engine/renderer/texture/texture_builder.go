package texture

import "github.com/Carmen-Shannon/oxy-gl/common"

// TextureBuilderOption is a functional option for configuring a Texture via NewTexture.
type TextureBuilderOption func(*textureImpl)

// WithID fixes the AssetID of the texture.
func WithID(id common.AssetID) TextureBuilderOption {
	return func(t *textureImpl) {
		t.id = id
	}
}

// WithInternalFormat sets the GPU storage format.
func WithInternalFormat(format ColorFormat) TextureBuilderOption {
	return func(t *textureImpl) {
		t.internalFormat = format
	}
}

// WithFormat sets the format of the uploaded pixel data.
func WithFormat(format ColorFormat) TextureBuilderOption {
	return func(t *textureImpl) {
		t.format = format
	}
}

// WithDataType sets the component type of the uploaded pixel data.
func WithDataType(dataType DataType) TextureBuilderOption {
	return func(t *textureImpl) {
		t.dataType = dataType
	}
}

// WithSize sets the texture dimensions in pixels.
func WithSize(width, height int) TextureBuilderOption {
	return func(t *textureImpl) {
		t.width = width
		t.height = height
	}
}

// WithWrap sets both wrap modes.
func WithWrap(s, t Wrap) TextureBuilderOption {
	return func(tex *textureImpl) {
		tex.wrapS = s
		tex.wrapT = t
	}
}

// WithFilter sets the minification and magnification filters.
func WithFilter(minFilter, magFilter Filter) TextureBuilderOption {
	return func(t *textureImpl) {
		t.minFilter = minFilter
		t.magFilter = magFilter
	}
}

// WithAttachment sets the framebuffer slot of the texture.
func WithAttachment(attachment AttachmentType) TextureBuilderOption {
	return func(t *textureImpl) {
		t.attachment = attachment
	}
}

// WithData sets the raw pixel bytes. The slice is not copied.
func WithData(data []byte) TextureBuilderOption {
	return func(t *textureImpl) {
		t.data = data
	}
}

// WithPath records the file the texture was decoded from.
func WithPath(path common.Path) TextureBuilderOption {
	return func(t *textureImpl) {
		t.path = path
	}
}
