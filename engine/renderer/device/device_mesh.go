package device

import (
	"fmt"
	"math"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/model"
	"go.uber.org/zap"
)

func (d *device) MeshLoaded(id common.AssetID) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.meshes[id]
	return ok
}

func (d *device) LoadMesh(m model.Mesh) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.loadMesh(m)
}

func (d *device) loadMesh(m model.Mesh) error {
	h, err := d.backend.CreateMesh(m.Vertices(), m.Indices(), m.Layout(), m.Dynamic())
	if err != nil {
		return fmt.Errorf("load mesh %d: %w", m.ID(), err)
	}
	d.meshes[m.ID()] = h
	d.logger.Debug("mesh loaded", zap.Uint64("asset_id", uint64(m.ID())), zap.Int("indices", h.IndexCount))
	return nil
}

func (d *device) BindMesh(id common.AssetID) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	h, ok := d.meshes[id]
	if !ok {
		return common.LookupError("mesh", id)
	}
	d.backend.BindVertexArray(h.VAO)
	return nil
}

func (d *device) ReleaseMesh(id common.AssetID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.releaseMesh(id)
}

func (d *device) releaseMesh(id common.AssetID) {
	h, ok := d.meshes[id]
	if !ok {
		return
	}
	d.backend.DeleteMesh(h)
	delete(d.meshes, id)
}

func (d *device) InstanceGroupLoaded(id common.AssetID) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.groups[id]
	return ok
}

func (d *device) LoadInstanceGroup(g model.InstanceGroup, m model.Mesh) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if m.ID() != g.Mesh() {
		return fmt.Errorf("load instance group %d: mesh %d does not match group mesh %d", g.ID(), m.ID(), g.Mesh())
	}
	mh, ok := d.meshes[m.ID()]
	if !ok {
		if err := d.loadMesh(m); err != nil {
			return fmt.Errorf("load instance group %d: %w", g.ID(), err)
		}
		mh = d.meshes[m.ID()]
	}

	data := g.Data()
	h, err := d.backend.CreateInstanceBuffer(mh, m.Layout(), g.Layout(), data, len(data), g.Dynamic())
	if err != nil {
		return fmt.Errorf("load instance group %d: %w", g.ID(), err)
	}
	d.groups[g.ID()] = &instanceEntry{
		handle:   h,
		mesh:     m.ID(),
		stride:   int(g.Layout().Stride()),
		capacity: g.Count(),
	}
	g.Sync()
	d.logger.Debug("instance group loaded", zap.Uint64("asset_id", uint64(g.ID())), zap.Int("instances", g.Count()))
	return nil
}

func (d *device) UpdateInstanceGroup(g model.InstanceGroup) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	e, ok := d.groups[g.ID()]
	if !ok {
		return common.LookupError("instance group", g.ID())
	}

	data := g.Data()
	count := g.Count()
	if count > e.capacity {
		capacity := int(math.Ceil(float64(count) * float64(d.growthFactor)))
		d.backend.UpdateInstanceBuffer(&e.handle, data, capacity*e.stride, g.Dynamic())
		e.capacity = capacity
		d.logger.Debug("instance buffer grown",
			zap.Uint64("asset_id", uint64(g.ID())), zap.Int("instances", count), zap.Int("capacity", capacity))
	} else {
		d.backend.UpdateInstanceBuffer(&e.handle, data, e.handle.Capacity, g.Dynamic())
	}
	g.Sync()
	return nil
}

func (d *device) BindInstanceGroup(id common.AssetID) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	e, ok := d.groups[id]
	if !ok {
		return common.LookupError("instance group", id)
	}
	d.backend.BindVertexArray(e.handle.VAO)
	return nil
}

func (d *device) InstanceCapacity(id common.AssetID) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	e, ok := d.groups[id]
	if !ok {
		return 0, common.LookupError("instance group", id)
	}
	return e.capacity, nil
}

func (d *device) ReleaseInstanceGroup(id common.AssetID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.releaseInstanceGroup(id)
}

func (d *device) releaseInstanceGroup(id common.AssetID) {
	e, ok := d.groups[id]
	if !ok {
		return
	}
	d.backend.DeleteInstanceBuffer(e.handle)
	delete(d.groups, id)
}
