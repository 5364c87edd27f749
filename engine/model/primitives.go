package model

import (
	"fmt"
	"math"
)

// Cube returns a unit cube centered on the origin (half extent 0.5) with per-face normals and UVs.
// The mesh uses the DefaultVertexLayout.
//
// Returns:
//   - Mesh: the cube mesh
func Cube() Mesh {
	type face struct {
		normal, u, v [3]float32
	}
	faces := []face{
		{[3]float32{0, 0, 1}, [3]float32{1, 0, 0}, [3]float32{0, 1, 0}},
		{[3]float32{0, 0, -1}, [3]float32{-1, 0, 0}, [3]float32{0, 1, 0}},
		{[3]float32{1, 0, 0}, [3]float32{0, 0, -1}, [3]float32{0, 1, 0}},
		{[3]float32{-1, 0, 0}, [3]float32{0, 0, 1}, [3]float32{0, 1, 0}},
		{[3]float32{0, 1, 0}, [3]float32{1, 0, 0}, [3]float32{0, 0, -1}},
		{[3]float32{0, -1, 0}, [3]float32{1, 0, 0}, [3]float32{0, 0, 1}},
	}
	corners := [4][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}

	vertices := make([]float32, 0, 24*8)
	indices := make([]uint32, 0, 36)
	for fi, f := range faces {
		for _, c := range corners {
			for k := 0; k < 3; k++ {
				vertices = append(vertices, 0.5*(f.normal[k]+c[0]*f.u[k]+c[1]*f.v[k]))
			}
			vertices = append(vertices, f.normal[0], f.normal[1], f.normal[2])
			vertices = append(vertices, (c[0]+1)/2, (c[1]+1)/2)
		}
		base := uint32(fi * 4)
		indices = append(indices, base, base+1, base+2, base, base+2, base+3)
	}
	return mustMesh(vertices, indices, "cube")
}

// Sphere returns a unit-radius UV sphere with segments stacks and segments sectors.
// segments below 3 are raised to 3. The mesh uses the DefaultVertexLayout.
//
// Parameters:
//   - segments: tessellation level
//
// Returns:
//   - Mesh: the sphere mesh
func Sphere(segments int) Mesh {
	segments = max(segments, 3)
	stacks, sectors := segments, segments

	vertices := make([]float32, 0, (stacks+1)*(sectors+1)*8)
	for i := 0; i <= stacks; i++ {
		phi := math.Pi/2 - float64(i)*math.Pi/float64(stacks)
		xy, y := math.Cos(phi), math.Sin(phi)
		for j := 0; j <= sectors; j++ {
			theta := float64(j) * 2 * math.Pi / float64(sectors)
			x, z := xy*math.Cos(theta), -xy*math.Sin(theta)
			vertices = append(vertices,
				float32(x), float32(y), float32(z),
				float32(x), float32(y), float32(z),
				float32(j)/float32(sectors), float32(i)/float32(stacks),
			)
		}
	}

	indices := make([]uint32, 0, stacks*sectors*6)
	for i := 0; i < stacks; i++ {
		k1 := uint32(i * (sectors + 1))
		k2 := k1 + uint32(sectors+1)
		for j := 0; j < sectors; j++ {
			if i != 0 {
				indices = append(indices, k1, k2, k1+1)
			}
			if i != stacks-1 {
				indices = append(indices, k1+1, k2, k2+1)
			}
			k1++
			k2++
		}
	}
	return mustMesh(vertices, indices, fmt.Sprintf("sphere_%d", segments))
}

// Quad returns a fullscreen quad in normalized device coordinates (z = 0) facing +Z.
// The mesh uses the DefaultVertexLayout.
//
// Returns:
//   - Mesh: the quad mesh
func Quad() Mesh {
	vertices := []float32{
		-1, -1, 0, 0, 0, 1, 0, 0,
		1, -1, 0, 0, 0, 1, 1, 0,
		1, 1, 0, 0, 0, 1, 1, 1,
		-1, 1, 0, 0, 0, 1, 0, 1,
	}
	indices := []uint32{0, 1, 2, 0, 2, 3}
	return mustMesh(vertices, indices, "quad")
}

// mustMesh builds a primitive mesh whose layout is known to match the data.
func mustMesh(vertices []float32, indices []uint32, name string) Mesh {
	m, err := NewMesh(vertices, indices, WithLayout(DefaultVertexLayout), WithMeshName(name))
	if err != nil {
		panic(fmt.Sprintf("model: invalid %s primitive: %v", name, err))
	}
	return m
}

