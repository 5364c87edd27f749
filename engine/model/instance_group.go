package model

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/go-gl/mathgl/mgl32"
)

// DefaultInstanceLayout is position(3) + scale(3) + quaternion(4).
var DefaultInstanceLayout = common.Layout{3, 3, 4}

// Placement is anything that can report a world position, scale and orientation.
// The component Transform satisfies it.
type Placement interface {
	Position() mgl32.Vec3
	Scale() mgl32.Vec3
	Rotation() mgl32.Quat
}

// instanceGroup is the implementation of the InstanceGroup interface.
type instanceGroup struct {
	id       common.AssetID
	mesh     common.AssetID
	material common.AssetID
	layout   common.Layout
	keys     []uint64
	data     []float32
	slots    map[uint64]int
	render   bool
	dynamic  bool
	shadow   bool
	changed  bool
}

// InstanceGroup is a packed per-instance buffer drawn with one mesh and one material.
// Every instance is identified by a key (usually an entity id) and occupies exactly one
// layout stride of floats in Data. Mutations mark the group as changed until the device
// uploads it and calls Sync.
//
// An InstanceGroup is not safe for concurrent mutation.
type InstanceGroup interface {
	// ID returns the asset identifier of the group.
	//
	// Returns:
	//   - common.AssetID: the group identifier
	ID() common.AssetID

	// Mesh returns the AssetID of the mesh every instance draws.
	//
	// Returns:
	//   - common.AssetID: the mesh identifier
	Mesh() common.AssetID

	// Material returns the AssetID of the material every instance is shaded with.
	//
	// Returns:
	//   - common.AssetID: the material identifier
	Material() common.AssetID

	// Layout returns a copy of the per-instance attribute layout.
	//
	// Returns:
	//   - common.Layout: the per-instance attribute widths
	Layout() common.Layout

	// Keys returns the instance keys, co-indexed with Data. The slice must not be modified.
	//
	// Returns:
	//   - []uint64: the keys
	Keys() []uint64

	// Data returns the packed instance floats. The slice must not be modified.
	//
	// Returns:
	//   - []float32: the packed data
	Data() []float32

	// Count returns the number of instances.
	//
	// Returns:
	//   - int: len(Keys())
	Count() int

	// IndexOf returns the slot of key, or -1 when the key is absent.
	//
	// Parameters:
	//   - key: the instance key
	//
	// Returns:
	//   - int: the slot index
	IndexOf(key uint64) int

	// Submit appends an instance. values must hold exactly one layout stride of floats.
	//
	// Parameters:
	//   - key: the instance key
	//   - values: the packed instance values
	//
	// Returns:
	//   - error: ErrInvalidInstanceData on a length mismatch or duplicate key
	Submit(key uint64, values []float32) error

	// SubmitTransform appends an instance from a placement, packing position, scale and
	// quaternion (x, y, z, w). Only valid for groups using the DefaultInstanceLayout.
	//
	// Parameters:
	//   - key: the instance key
	//   - p: the placement to pack
	//
	// Returns:
	//   - error: ErrInvalidInstanceData when the layout is not the default one
	SubmitTransform(key uint64, p Placement) error

	// Update overwrites the values of an existing instance in place.
	//
	// Parameters:
	//   - key: the instance key
	//   - values: the packed instance values
	//
	// Returns:
	//   - error: ErrLookup when the key is absent, ErrInvalidInstanceData on a length mismatch
	Update(key uint64, values []float32) error

	// UpdateTransform overwrites an existing instance from a placement.
	//
	// Parameters:
	//   - key: the instance key
	//   - p: the placement to pack
	//
	// Returns:
	//   - error: as Update
	UpdateTransform(key uint64, p Placement) error

	// Remove deletes an instance. The last instance is moved into the freed slot.
	//
	// Parameters:
	//   - key: the instance key
	//
	// Returns:
	//   - bool: true if the key was present
	Remove(key uint64) bool

	// Clear removes every instance.
	Clear()

	// Changed reports whether the group was mutated since the last Sync.
	//
	// Returns:
	//   - bool: the dirty flag
	Changed() bool

	// Sync clears the dirty flag. Called by the device after uploading the data.
	Sync()

	// Render reports whether the group is drawn by the geometry pass.
	Render() bool

	// SetRender toggles geometry pass drawing.
	SetRender(render bool)

	// Dynamic reports whether the instance buffer is allocated for frequent updates.
	Dynamic() bool

	// Shadow reports whether the group is drawn into the shadow maps.
	Shadow() bool

	// SetShadow toggles shadow casting.
	SetShadow(shadow bool)
}

var _ InstanceGroup = &instanceGroup{}

// NewInstanceGroup creates an empty InstanceGroup drawing mesh with material.
// Defaults: DefaultInstanceLayout, render=true, dynamic=false, shadow=true.
//
// Parameters:
//   - mesh: the mesh asset every instance draws
//   - material: the material asset every instance uses
//   - options: functional options to configure the group
//
// Returns:
//   - InstanceGroup: the new group
func NewInstanceGroup(mesh, material common.AssetID, options ...InstanceGroupBuilderOption) InstanceGroup {
	g := &instanceGroup{
		mesh:     mesh,
		material: material,
		layout:   DefaultInstanceLayout.Clone(),
		slots:    make(map[uint64]int),
		render:   true,
		shadow:   true,
	}
	for _, opt := range options {
		opt(g)
	}
	if g.id == 0 {
		g.id = common.NewAssetID()
	}
	return g
}

func (g *instanceGroup) ID() common.AssetID {
	return g.id
}

func (g *instanceGroup) Mesh() common.AssetID {
	return g.mesh
}

func (g *instanceGroup) Material() common.AssetID {
	return g.material
}

func (g *instanceGroup) Layout() common.Layout {
	return g.layout.Clone()
}

func (g *instanceGroup) Keys() []uint64 {
	return g.keys
}

func (g *instanceGroup) Data() []float32 {
	return g.data
}

func (g *instanceGroup) Count() int {
	return len(g.keys)
}

func (g *instanceGroup) IndexOf(key uint64) int {
	if i, ok := g.slots[key]; ok {
		return i
	}
	return -1
}

func (g *instanceGroup) Submit(key uint64, values []float32) error {
	if err := g.checkValues(values); err != nil {
		return err
	}
	if _, ok := g.slots[key]; ok {
		return fmt.Errorf("%w: key %d already submitted", common.ErrInvalidInstanceData, key)
	}
	g.slots[key] = len(g.keys)
	g.keys = append(g.keys, key)
	g.data = append(g.data, values...)
	g.changed = true
	return nil
}

func (g *instanceGroup) SubmitTransform(key uint64, p Placement) error {
	values, err := g.packPlacement(p)
	if err != nil {
		return err
	}
	return g.Submit(key, values)
}

func (g *instanceGroup) Update(key uint64, values []float32) error {
	i, ok := g.slots[key]
	if !ok {
		return common.LookupError("instance", key)
	}
	if err := g.checkValues(values); err != nil {
		return err
	}
	stride := int(g.layout.Stride())
	copy(g.data[i*stride:(i+1)*stride], values)
	g.changed = true
	return nil
}

func (g *instanceGroup) UpdateTransform(key uint64, p Placement) error {
	values, err := g.packPlacement(p)
	if err != nil {
		return err
	}
	return g.Update(key, values)
}

func (g *instanceGroup) Remove(key uint64) bool {
	i, ok := g.slots[key]
	if !ok {
		return false
	}
	stride := int(g.layout.Stride())
	last := len(g.keys) - 1
	if i != last {
		moved := g.keys[last]
		g.keys[i] = moved
		copy(g.data[i*stride:(i+1)*stride], g.data[last*stride:(last+1)*stride])
		g.slots[moved] = i
	}
	g.keys = g.keys[:last]
	g.data = g.data[:last*stride]
	delete(g.slots, key)
	g.changed = true
	return true
}

func (g *instanceGroup) Clear() {
	g.keys = g.keys[:0]
	g.data = g.data[:0]
	clear(g.slots)
	g.changed = true
}

func (g *instanceGroup) Changed() bool {
	return g.changed
}

func (g *instanceGroup) Sync() {
	g.changed = false
}

func (g *instanceGroup) Render() bool {
	return g.render
}

func (g *instanceGroup) SetRender(render bool) {
	g.render = render
}

func (g *instanceGroup) Dynamic() bool {
	return g.dynamic
}

func (g *instanceGroup) Shadow() bool {
	return g.shadow
}

func (g *instanceGroup) SetShadow(shadow bool) {
	g.shadow = shadow
}

// checkValues validates that values hold exactly one stride of floats.
func (g *instanceGroup) checkValues(values []float32) error {
	if stride := int(g.layout.Stride()); len(values) != stride {
		return fmt.Errorf("%w: got %d values, layout stride is %d", common.ErrInvalidInstanceData, len(values), stride)
	}
	return nil
}

// packPlacement converts a placement into the default per-instance layout.
func (g *instanceGroup) packPlacement(p Placement) ([]float32, error) {
	if !g.layout.Equal(DefaultInstanceLayout) {
		return nil, fmt.Errorf("%w: transform submit needs layout %v, group has %v", common.ErrInvalidInstanceData, DefaultInstanceLayout, g.layout)
	}
	pos, scale, rot := p.Position(), p.Scale(), common.QuatToVec4(p.Rotation())
	return []float32{
		pos[0], pos[1], pos[2],
		scale[0], scale[1], scale[2],
		rot[0], rot[1], rot[2], rot[3],
	}, nil
}
