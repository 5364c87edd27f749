package repository

import (
	"sort"
	"sync"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/model"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/texture"
)

// asset is anything keyed by an AssetID.
type asset interface {
	ID() common.AssetID
}

// assets is a mutex-guarded AssetID keyed map.
type assets[T asset] struct {
	kind  string
	items map[common.AssetID]T
}

func newAssets[T asset](kind string) assets[T] {
	return assets[T]{kind: kind, items: make(map[common.AssetID]T)}
}

func (a *assets[T]) add(v T) common.AssetID {
	a.items[v.ID()] = v
	return v.ID()
}

func (a *assets[T]) get(id common.AssetID) (T, error) {
	v, ok := a.items[id]
	if !ok {
		var zero T
		return zero, common.LookupError(a.kind, id)
	}
	return v, nil
}

func (a *assets[T]) remove(id common.AssetID) bool {
	if _, ok := a.items[id]; !ok {
		return false
	}
	delete(a.items, id)
	return true
}

// all returns the stored values ordered by AssetID so sweeps are deterministic.
func (a *assets[T]) all() []T {
	ids := make([]common.AssetID, 0, len(a.items))
	for id := range a.items {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]T, len(ids))
	for i, id := range ids {
		out[i] = a.items[id]
	}
	return out
}

// repository is the implementation of the Repository interface.
type repository struct {
	mu *sync.Mutex

	meshes    assets[model.Mesh]
	materials assets[material.Material]
	textures  assets[texture.Texture]
	groups    assets[model.InstanceGroup]
}

// Repository holds the scene-authored CPU assets keyed by AssetID. The renderer reads all four
// kinds during its upload sweep; passes read meshes, materials and instance groups through the
// render context. Safe for concurrent use, but assets must not be added or removed while a
// frame is rendering.
type Repository interface {
	// AddMesh stores a mesh under its ID, replacing any mesh with the same ID.
	//
	// Parameters:
	//   - m: the mesh to store
	//
	// Returns:
	//   - common.AssetID: the mesh ID
	AddMesh(m model.Mesh) common.AssetID

	// Mesh retrieves a mesh by ID.
	//
	// Parameters:
	//   - id: the mesh ID
	//
	// Returns:
	//   - model.Mesh: the mesh
	//   - error: common.ErrLookup if the ID is unknown
	Mesh(id common.AssetID) (model.Mesh, error)

	// RemoveMesh deletes a mesh. The GPU mirror must be released separately.
	//
	// Parameters:
	//   - id: the mesh ID
	//
	// Returns:
	//   - bool: true if the mesh existed
	RemoveMesh(id common.AssetID) bool

	// Meshes returns every stored mesh ordered by ID.
	//
	// Returns:
	//   - []model.Mesh: the meshes
	Meshes() []model.Mesh

	// AddMaterial stores a material under its ID.
	//
	// Parameters:
	//   - m: the material to store
	//
	// Returns:
	//   - common.AssetID: the material ID
	AddMaterial(m material.Material) common.AssetID

	// Material retrieves a material by ID.
	//
	// Parameters:
	//   - id: the material ID
	//
	// Returns:
	//   - material.Material: the material
	//   - error: common.ErrLookup if the ID is unknown
	Material(id common.AssetID) (material.Material, error)

	// RemoveMaterial deletes a material.
	//
	// Parameters:
	//   - id: the material ID
	//
	// Returns:
	//   - bool: true if the material existed
	RemoveMaterial(id common.AssetID) bool

	// Materials returns every stored material ordered by ID.
	//
	// Returns:
	//   - []material.Material: the materials
	Materials() []material.Material

	// AddTexture stores a texture under its ID.
	//
	// Parameters:
	//   - t: the texture to store
	//
	// Returns:
	//   - common.AssetID: the texture ID
	AddTexture(t texture.Texture) common.AssetID

	// Texture retrieves a texture by ID.
	//
	// Parameters:
	//   - id: the texture ID
	//
	// Returns:
	//   - texture.Texture: the texture
	//   - error: common.ErrLookup if the ID is unknown
	Texture(id common.AssetID) (texture.Texture, error)

	// RemoveTexture deletes a texture. The GPU mirror must be released separately.
	//
	// Parameters:
	//   - id: the texture ID
	//
	// Returns:
	//   - bool: true if the texture existed
	RemoveTexture(id common.AssetID) bool

	// Textures returns every stored texture ordered by ID.
	//
	// Returns:
	//   - []texture.Texture: the textures
	Textures() []texture.Texture

	// AddInstanceGroup stores an instance group under its ID.
	//
	// Parameters:
	//   - g: the group to store
	//
	// Returns:
	//   - common.AssetID: the group ID
	AddInstanceGroup(g model.InstanceGroup) common.AssetID

	// InstanceGroup retrieves an instance group by ID.
	//
	// Parameters:
	//   - id: the group ID
	//
	// Returns:
	//   - model.InstanceGroup: the group
	//   - error: common.ErrLookup if the ID is unknown
	InstanceGroup(id common.AssetID) (model.InstanceGroup, error)

	// RemoveInstanceGroup deletes an instance group. The GPU mirror must be released separately.
	//
	// Parameters:
	//   - id: the group ID
	//
	// Returns:
	//   - bool: true if the group existed
	RemoveInstanceGroup(id common.AssetID) bool

	// InstanceGroups returns every stored instance group ordered by ID.
	//
	// Returns:
	//   - []model.InstanceGroup: the groups
	InstanceGroups() []model.InstanceGroup
}

var _ Repository = &repository{}

// NewRepository creates an empty Repository.
//
// Returns:
//   - Repository: the new repository
func NewRepository() Repository {
	return &repository{
		mu:        &sync.Mutex{},
		meshes:    newAssets[model.Mesh]("mesh"),
		materials: newAssets[material.Material]("material"),
		textures:  newAssets[texture.Texture]("texture"),
		groups:    newAssets[model.InstanceGroup]("instance group"),
	}
}

func (r *repository) AddMesh(m model.Mesh) common.AssetID {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.meshes.add(m)
}

func (r *repository) Mesh(id common.AssetID) (model.Mesh, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.meshes.get(id)
}

func (r *repository) RemoveMesh(id common.AssetID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.meshes.remove(id)
}

func (r *repository) Meshes() []model.Mesh {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.meshes.all()
}

func (r *repository) AddMaterial(m material.Material) common.AssetID {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.materials.add(m)
}

func (r *repository) Material(id common.AssetID) (material.Material, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.materials.get(id)
}

func (r *repository) RemoveMaterial(id common.AssetID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.materials.remove(id)
}

func (r *repository) Materials() []material.Material {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.materials.all()
}

func (r *repository) AddTexture(t texture.Texture) common.AssetID {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.textures.add(t)
}

func (r *repository) Texture(id common.AssetID) (texture.Texture, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.textures.get(id)
}

func (r *repository) RemoveTexture(id common.AssetID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.textures.remove(id)
}

func (r *repository) Textures() []texture.Texture {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.textures.all()
}

func (r *repository) AddInstanceGroup(g model.InstanceGroup) common.AssetID {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.groups.add(g)
}

func (r *repository) InstanceGroup(id common.AssetID) (model.InstanceGroup, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.groups.get(id)
}

func (r *repository) RemoveInstanceGroup(id common.AssetID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.groups.remove(id)
}

func (r *repository) InstanceGroups() []model.InstanceGroup {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.groups.all()
}
