package texture

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	"github.com/Carmen-Shannon/oxy-gl/common"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// DecodeOptions controls how image files are converted into textures.
type DecodeOptions struct {
	// FlipY mirrors the image vertically so row 0 is the bottom row, as OpenGL samples it.
	FlipY bool
	// MaxSize downsamples images whose largest side exceeds it. Zero disables scaling.
	MaxSize int
	// Texture holds extra options applied after the decoded size and data.
	Texture []TextureBuilderOption
}

// FromFile decodes a PNG, JPEG, BMP, TIFF or WebP file into an RGBA8 texture.
//
// Parameters:
//   - path: the image file
//   - opts: decode options
//
// Returns:
//   - Texture: the decoded texture
//   - error: error if the file cannot be opened or decoded
func FromFile(path common.Path, opts DecodeOptions) (Texture, error) {
	file, err := os.Open(string(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open texture file %s: %w", path, err)
	}
	defer file.Close()

	opts.Texture = append([]TextureBuilderOption{WithPath(path)}, opts.Texture...)
	t, err := Decode(file, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to decode texture file %s: %w", path, err)
	}
	return t, nil
}

// FromBytes decodes an in-memory encoded image (embedded glTF images, for example).
//
// Parameters:
//   - data: the encoded image bytes
//   - opts: decode options
//
// Returns:
//   - Texture: the decoded texture
//   - error: error if decoding fails
func FromBytes(data []byte, opts DecodeOptions) (Texture, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("texture has no data")
	}
	return Decode(bytes.NewReader(data), opts)
}

// Decode reads an encoded image and converts it to an RGBA8 texture.
//
// Parameters:
//   - r: the encoded image stream
//   - opts: decode options
//
// Returns:
//   - Texture: the decoded texture
//   - error: error if decoding fails
func Decode(r io.Reader, opts DecodeOptions) (Texture, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	rgba := ToRGBA(img, opts.MaxSize)
	if opts.FlipY {
		flipRows(rgba)
	}

	b := rgba.Bounds()
	options := append([]TextureBuilderOption{
		WithSize(b.Dx(), b.Dy()),
		WithData(rgba.Pix),
		WithInternalFormat(ColorFormatRGBA8),
		WithFormat(ColorFormatRGBA),
		WithDataType(DataTypeUnsignedByte),
	}, opts.Texture...)
	return NewTexture(options...), nil
}

// ToRGBA converts img to a tightly packed RGBA image, downsampling so that neither side
// exceeds maxSize when maxSize is positive.
//
// Parameters:
//   - img: the source image
//   - maxSize: the largest allowed side, or 0
//
// Returns:
//   - *image.RGBA: the converted image with origin (0, 0)
func ToRGBA(img image.Image, maxSize int) *image.RGBA {
	src := img.Bounds()
	w, h := src.Dx(), src.Dy()
	if maxSize > 0 && (w > maxSize || h > maxSize) {
		if w >= h {
			w, h = maxSize, max(1, h*maxSize/w)
		} else {
			w, h = max(1, w*maxSize/h), maxSize
		}
		dst := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, src, draw.Src, nil)
		return dst
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), img, src.Min, draw.Src)
	return dst
}

// flipRows mirrors an RGBA image vertically in place.
func flipRows(img *image.RGBA) {
	h := img.Bounds().Dy()
	row := make([]byte, img.Stride)
	for y := 0; y < h/2; y++ {
		top := img.Pix[y*img.Stride : (y+1)*img.Stride]
		bottom := img.Pix[(h-1-y)*img.Stride : (h-y)*img.Stride]
		copy(row, top)
		copy(top, bottom)
		copy(bottom, row)
	}
}
