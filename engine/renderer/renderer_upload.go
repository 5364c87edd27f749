package renderer

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-gl/engine/scene"
	"go.uber.org/zap"
)

// upload makes every asset of the frame resident: registered shaders, pass and repository
// meshes, repository textures, registered framebuffers and repository instance groups.
// A group is uploaded on first observation and re-uploaded while it is changed; groups
// without a mesh are skipped like the passes skip them.
func (r *renderer) upload(ctx scene.RenderContext) error {
	if err := r.uploadShaders(); err != nil {
		return err
	}

	repo := ctx.Repository()
	meshes := append(r.renderData.Meshes(), repo.Meshes()...)
	for _, m := range meshes {
		if r.device.MeshLoaded(m.ID()) {
			continue
		}
		if err := r.device.LoadMesh(m); err != nil {
			return err
		}
		r.logger.Debug("mesh uploaded", zap.Uint64("asset_id", uint64(m.ID())))
	}

	for _, t := range repo.Textures() {
		if r.device.TextureLoaded(t.ID()) {
			continue
		}
		if err := r.device.LoadTexture(t); err != nil {
			return err
		}
		r.logger.Debug("texture uploaded", zap.Uint64("asset_id", uint64(t.ID())))
	}

	for _, fb := range r.renderData.Framebuffers() {
		if r.device.FramebufferLoaded(fb.ID()) {
			continue
		}
		if err := r.device.LoadFramebuffer(fb); err != nil {
			return err
		}
		r.logger.Debug("framebuffer built", zap.Uint64("asset_id", uint64(fb.ID())),
			zap.Int("width", fb.Width()), zap.Int("height", fb.Height()))
	}

	for _, g := range repo.InstanceGroups() {
		if g.Mesh() == 0 {
			continue
		}
		switch {
		case !r.device.InstanceGroupLoaded(g.ID()):
			m, err := repo.Mesh(g.Mesh())
			if err != nil {
				return fmt.Errorf("instance group %d: %w", g.ID(), err)
			}
			if err := r.device.LoadInstanceGroup(g, m); err != nil {
				return err
			}
			r.logger.Debug("instance group uploaded", zap.Uint64("asset_id", uint64(g.ID())), zap.Int("count", g.Count()))
		case g.Changed():
			if err := r.device.UpdateInstanceGroup(g); err != nil {
				return err
			}
		}
	}
	return nil
}

// uploadShaders reads the sources of every unresident shader on the loader pool, then
// compiles them in registration order on the context thread.
func (r *renderer) uploadShaders() error {
	var pending []shader.Shader
	for _, s := range r.renderData.Shaders() {
		if !r.device.ShaderLoaded(s.ID()) {
			pending = append(pending, s)
		}
	}
	if len(pending) == 0 {
		return nil
	}

	sources, err := shader.LoadAll(r.loaderPool, pending)
	if err != nil {
		return err
	}
	for _, s := range pending {
		if err := r.device.CompileShader(s, sources[s.ID()]); err != nil {
			return err
		}
		r.logger.Debug("shader compiled", zap.Uint64("asset_id", uint64(s.ID())),
			zap.String("vertex", string(s.Vertex())), zap.String("fragment", string(s.Fragment())))
	}
	return nil
}
