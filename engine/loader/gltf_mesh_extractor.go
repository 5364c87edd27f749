package loader

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/model"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// extractPrimitive interleaves a primitive's POSITION, NORMAL and TEXCOORD_0 streams into the
// default {3,3,2} vertex layout. Missing normals and UVs are zero-filled and a primitive
// without indices is drawn in vertex order.
//
// Parameters:
//   - doc: the glTF document owning the accessors
//   - p: the primitive to convert
//   - name: the mesh name
//
// Returns:
//   - model.Mesh: the converted mesh
//   - error: error if an accessor cannot be read or the streams disagree in length
func extractPrimitive(doc *gltf.Document, p *gltf.Primitive, name string) (model.Mesh, error) {
	posIdx, ok := p.Attributes[gltf.POSITION]
	if !ok {
		return nil, fmt.Errorf("%w: primitive has no POSITION attribute", common.ErrInvalidMesh)
	}
	acr, err := accessor(doc, posIdx)
	if err != nil {
		return nil, err
	}
	positions, err := modeler.ReadPosition(doc, acr, nil)
	if err != nil {
		return nil, fmt.Errorf("read positions: %w", err)
	}

	var normals [][3]float32
	if idx, ok := p.Attributes[gltf.NORMAL]; ok {
		if acr, err = accessor(doc, idx); err != nil {
			return nil, err
		}
		if normals, err = modeler.ReadNormal(doc, acr, nil); err != nil {
			return nil, fmt.Errorf("read normals: %w", err)
		}
		if len(normals) != len(positions) {
			return nil, fmt.Errorf("%w: %d normals for %d positions", common.ErrInvalidMesh, len(normals), len(positions))
		}
	}

	var uvs [][2]float32
	if idx, ok := p.Attributes[gltf.TEXCOORD_0]; ok {
		if acr, err = accessor(doc, idx); err != nil {
			return nil, err
		}
		if uvs, err = modeler.ReadTextureCoord(doc, acr, nil); err != nil {
			return nil, fmt.Errorf("read texture coordinates: %w", err)
		}
		if len(uvs) != len(positions) {
			return nil, fmt.Errorf("%w: %d uvs for %d positions", common.ErrInvalidMesh, len(uvs), len(positions))
		}
	}

	vertices := interleave(positions, normals, uvs)

	var indices []uint32
	if p.Indices != nil {
		if acr, err = accessor(doc, *p.Indices); err != nil {
			return nil, err
		}
		if indices, err = modeler.ReadIndices(doc, acr, nil); err != nil {
			return nil, fmt.Errorf("read indices: %w", err)
		}
	} else {
		indices = make([]uint32, len(positions))
		for i := range indices {
			indices[i] = uint32(i)
		}
	}
	for _, i := range indices {
		if int(i) >= len(positions) {
			return nil, fmt.Errorf("%w: index %d out of range for %d vertices", common.ErrInvalidMesh, i, len(positions))
		}
	}

	return model.NewMesh(vertices, indices,
		model.WithMeshName(name),
		model.WithLayout(model.DefaultVertexLayout.Clone()),
	)
}

// accessor returns the accessor at idx, or ErrInvalidMesh when the document has no such accessor.
func accessor(doc *gltf.Document, idx uint32) (*gltf.Accessor, error) {
	if int(idx) >= len(doc.Accessors) || doc.Accessors[idx] == nil {
		return nil, fmt.Errorf("%w: accessor %d out of range", common.ErrInvalidMesh, idx)
	}
	return doc.Accessors[idx], nil
}

func interleave(positions, normals [][3]float32, uvs [][2]float32) []float32 {
	stride := int(model.DefaultVertexLayout.Stride())
	out := make([]float32, 0, len(positions)*stride)
	for i, pos := range positions {
		out = append(out, pos[0], pos[1], pos[2])
		if normals != nil {
			out = append(out, normals[i][0], normals[i][1], normals[i][2])
		} else {
			out = append(out, 0, 0, 0)
		}
		if uvs != nil {
			out = append(out, uvs[i][0], uvs[i][1])
		} else {
			out = append(out, 0, 0)
		}
	}
	return out
}
