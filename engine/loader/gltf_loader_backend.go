package loader

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/material"
	"github.com/qmuntal/gltf"
	"go.uber.org/zap"
)

// gltfLoaderBackendImpl is the implementation of gltfLoaderBackend.
type gltfLoaderBackendImpl struct {
	pool   worker.DynamicWorkerPool
	logger *zap.Logger
}

// gltfLoaderBackend is a loaderBackend implementation for glTF 2.0 and GLB files.
type gltfLoaderBackend interface {
	loaderBackend
}

var _ gltfLoaderBackend = &gltfLoaderBackendImpl{}

// newGLTFLoaderBackend creates a new glTF loader backend that decodes textures on pool.
//
// Parameters:
//   - pool: the worker pool running image decodes
//   - logger: the logger warnings are written to
//
// Returns:
//   - gltfLoaderBackend: the loader backend for glTF/GLB files
func newGLTFLoaderBackend(pool worker.DynamicWorkerPool, logger *zap.Logger) gltfLoaderBackend {
	return &gltfLoaderBackendImpl{
		pool:   pool,
		logger: logger,
	}
}

func (b *gltfLoaderBackendImpl) Load(path string) (*ImportedModel, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf %s: %w", path, err)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return b.importDocument(doc, name, filepath.Dir(path))
}

func (b *gltfLoaderBackendImpl) LoadReader(name string, r io.Reader, dir string) (*ImportedModel, error) {
	doc := new(gltf.Document)
	if err := gltf.NewDecoder(r).Decode(doc); err != nil {
		return nil, fmt.Errorf("decode gltf %s: %w", name, err)
	}
	return b.importDocument(doc, name, dir)
}

// importDocument converts every triangle primitive of every mesh. Materials are converted
// once each and shared by the primitives that reference them; primitives without a material
// get a default one.
func (b *gltfLoaderBackendImpl) importDocument(doc *gltf.Document, name, dir string) (*ImportedModel, error) {
	textures, err := extractTextures(doc, dir, b.pool)
	if err != nil {
		return nil, err
	}
	materials := extractMaterials(doc, textures)

	out := &ImportedModel{
		Name:      name,
		Materials: materials,
	}
	for _, t := range textures {
		if t != nil {
			out.Textures = append(out.Textures, t)
		}
	}

	var fallback material.Material
	for mi, m := range doc.Meshes {
		for pi, p := range m.Primitives {
			if p.Mode != gltf.PrimitiveTriangles {
				b.logger.Warn("skipping non-triangle primitive",
					zap.String("model", name), zap.Int("mesh", mi), zap.Int("primitive", pi))
				continue
			}
			meshName := fmt.Sprintf("%s/%s/%d", name, m.Name, pi)
			mesh, err := extractPrimitive(doc, p, meshName)
			if err != nil {
				return nil, fmt.Errorf("mesh %d primitive %d: %w", mi, pi, err)
			}

			var mat material.Material
			if p.Material != nil && int(*p.Material) < len(materials) {
				mat = materials[*p.Material]
			} else {
				if fallback == nil {
					fallback = material.NewMaterial(material.WithName(name + "/default"))
					out.Materials = append(out.Materials, fallback)
				}
				mat = fallback
			}
			out.Primitives = append(out.Primitives, ImportedPrimitive{Mesh: mesh, Material: mat})
		}
	}
	if len(out.Primitives) == 0 {
		return nil, fmt.Errorf("%w: %s has no triangle primitives", common.ErrInvalidMesh, name)
	}
	return out, nil
}
