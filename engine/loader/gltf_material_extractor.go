package loader

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"sync"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/texture"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
)

// extractMaterials converts every glTF material into a Material. The base color texture
// is resolved through textures, which holds one entry per glTF texture (nil when the texture
// is not used as a base color or has no image).
func extractMaterials(doc *gltf.Document, textures []texture.Texture) []material.Material {
	out := make([]material.Material, 0, len(doc.Materials))
	for i, m := range doc.Materials {
		name := m.Name
		if name == "" {
			name = fmt.Sprintf("material_%d", i)
		}
		opts := []material.MaterialBuilderOption{
			material.WithName(name),
			material.WithEmission(maxComponent(m.EmissiveFactor)),
		}
		if pbr := m.PBRMetallicRoughness; pbr != nil {
			c := pbr.BaseColorFactorOrDefault()
			opts = append(opts,
				material.WithColor(mgl32.Vec4(c)),
				material.WithMetallic(pbr.MetallicFactorOrDefault()),
				material.WithRoughness(pbr.RoughnessFactorOrDefault()),
			)
			if info := pbr.BaseColorTexture; info != nil && int(info.Index) < len(textures) && textures[info.Index] != nil {
				opts = append(opts, material.WithAlbedoTexture(textures[info.Index].ID()))
			}
		}
		switch m.AlphaMode {
		case gltf.AlphaMask:
			opts = append(opts, material.WithTransparency(material.TransparencyCutout))
		case gltf.AlphaBlend:
			opts = append(opts, material.WithTransparency(material.TransparencyBlended))
		}
		out = append(out, material.NewMaterial(opts...))
	}
	return out
}

// extractTextures decodes the images of every texture used as a base color, in parallel on
// pool. The result is indexed by glTF texture index.
func extractTextures(doc *gltf.Document, dir string, pool worker.DynamicWorkerPool) ([]texture.Texture, error) {
	used := make(map[uint32]bool)
	for _, m := range doc.Materials {
		if m.PBRMetallicRoughness != nil && m.PBRMetallicRoughness.BaseColorTexture != nil {
			used[m.PBRMetallicRoughness.BaseColorTexture.Index] = true
		}
	}

	out := make([]texture.Texture, len(doc.Textures))
	var (
		mu   sync.Mutex
		errs []error
		wg   sync.WaitGroup
	)
	for i, t := range doc.Textures {
		if !used[uint32(i)] || t.Source == nil || int(*t.Source) >= len(doc.Images) {
			continue
		}
		img := doc.Images[*t.Source]
		idx := i
		wg.Add(1)
		pool.SubmitTask(worker.Task{
			ID: idx,
			Do: func() (any, error) {
				defer wg.Done()
				tex, err := decodeImage(doc, img, dir)
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					errs = append(errs, fmt.Errorf("texture %d: %w", idx, err))
					return nil, err
				}
				out[idx] = tex
				return nil, nil
			},
		})
	}
	wg.Wait()
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return out, nil
}

// decodeImage reads an image from its buffer view, its data URI or a file relative to dir.
func decodeImage(doc *gltf.Document, img *gltf.Image, dir string) (texture.Texture, error) {
	// glTF UVs start at the top-left texel, matching the unflipped row order.
	var opts texture.DecodeOptions

	switch {
	case img.BufferView != nil:
		if int(*img.BufferView) >= len(doc.BufferViews) {
			return nil, fmt.Errorf("buffer view %d out of range", *img.BufferView)
		}
		bv := doc.BufferViews[*img.BufferView]
		if int(bv.Buffer) >= len(doc.Buffers) {
			return nil, fmt.Errorf("buffer %d out of range", bv.Buffer)
		}
		data := doc.Buffers[bv.Buffer].Data
		start, end := int(bv.ByteOffset), int(bv.ByteOffset)+int(bv.ByteLength)
		if end > len(data) {
			return nil, fmt.Errorf("buffer view %d exceeds its buffer", *img.BufferView)
		}
		return texture.FromBytes(data[start:end], opts)
	case img.IsEmbeddedResource():
		data, err := img.MarshalData()
		if err != nil {
			return nil, fmt.Errorf("read embedded image: %w", err)
		}
		return texture.FromBytes(data, opts)
	case img.URI != "":
		uri, err := url.PathUnescape(img.URI)
		if err != nil {
			uri = img.URI
		}
		return texture.FromFile(common.Path(filepath.Join(dir, filepath.FromSlash(uri))), opts)
	default:
		return nil, fmt.Errorf("image has no data")
	}
}

func maxComponent(v [3]float32) float32 {
	return max(v[0], v[1], v[2])
}
