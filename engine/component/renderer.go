package component

import "github.com/Carmen-Shannon/oxy-gl/common"

// MeshRenderer draws one mesh with one material at the owning entity's Transform.
type MeshRenderer struct {
	Mesh     common.AssetID
	Material common.AssetID

	// Render enables drawing in the geometry pass.
	Render bool
	// Dynamic hints that the mesh is rebuilt frequently.
	Dynamic bool
	// FrustumCulling skips the draw when the mesh bounding sphere is outside the camera frustum.
	FrustumCulling bool
	// Shadow enables drawing into the shadow cascades.
	Shadow bool
}

// NewMeshRenderer returns a MeshRenderer with render, frustum culling and shadow enabled.
func NewMeshRenderer(mesh, material common.AssetID) *MeshRenderer {
	return &MeshRenderer{
		Mesh:           mesh,
		Material:       material,
		Render:         true,
		FrustumCulling: true,
		Shadow:         true,
	}
}

// InstanceRenderer marks an entity as one instance of an InstanceGroup.
type InstanceRenderer struct {
	Group common.AssetID
}
