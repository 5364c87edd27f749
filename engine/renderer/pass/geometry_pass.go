package pass

import (
	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/component"
	"github.com/Carmen-Shannon/oxy-gl/engine/ecs"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/framebuffer"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/texture"
	"github.com/Carmen-Shannon/oxy-gl/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
)

// Material shader tags that replace the geometry pass programs for one material.
const (
	MaterialShaderGeometry  = "geometry"
	MaterialShaderInstanced = "instanced"
)

// GeometryPass fills the g-buffer with normals, albedo, packed material and depth.
type GeometryPass struct{}

var _ Pass = &GeometryPass{}

// NewGeometryPass creates a GeometryPass.
func NewGeometryPass() *GeometryPass {
	return &GeometryPass{}
}

func (p *GeometryPass) Name() string {
	return "geometry"
}

func (p *GeometryPass) Initialize(rd RenderData) error {
	if !rd.Claim(p.Name()) {
		return nil
	}
	if _, err := lookupFramebuffer(rd, KeyGeometryBuffer); err != nil {
		fb, err := newGeometryBuffer(rd.Width(), rd.Height())
		if err != nil {
			return passError(p, "initialize", err)
		}
		rd.AddFramebuffer(fb)
		if err := rd.Set(KeyGeometryBuffer, fb.ID()); err != nil {
			return passError(p, "initialize", err)
		}
	}
	if err := registerShader(rd, KeyGeometryShader, "default.vert", "deferred.frag", shader.WithDefaultMaterial(true)); err != nil {
		return passError(p, "initialize", err)
	}
	if err := registerShader(rd, KeyInstancedGeometryShader, "instanced.vert", "deferred.frag", shader.WithDefaultMaterial(true)); err != nil {
		return passError(p, "initialize", err)
	}
	return nil
}

func newGeometryBuffer(width, height int) (framebuffer.Framebuffer, error) {
	fb := framebuffer.NewFramebuffer(width, height)
	for _, a := range []struct {
		tag    string
		slot   texture.AttachmentType
		format texture.ColorFormat
	}{
		{"normal", texture.AttachmentColor0, texture.ColorFormatRGB16F},
		{"albedo", texture.AttachmentColor1, texture.ColorFormatRGB16F},
		{"material", texture.AttachmentColor2, texture.ColorFormatRGBA8},
		{"depth", texture.AttachmentDepth, texture.ColorFormatDepth32F},
	} {
		if err := fb.AddTexture(a.tag, texture.NewAttachment(a.slot, a.format)); err != nil {
			return nil, err
		}
	}
	return fb, nil
}

// materialShader returns the shader a material names under tag, or fallback.
func materialShader(rd RenderData, m material.Material, tag string, fallback shader.Shader) shader.Shader {
	if !m.HasShader(tag) {
		return fallback
	}
	s, err := rd.Shader(m.Shader(tag))
	if err != nil {
		return fallback
	}
	return s
}

func (p *GeometryPass) Render(rd RenderData, ctx scene.RenderContext) error {
	dev := rd.Device()
	f, err := newFrame(rd, ctx)
	if err != nil {
		return passError(p, "render", err)
	}
	if _, err := bindFramebuffer(rd, KeyGeometryBuffer); err != nil {
		return passError(p, "render", err)
	}
	dev.ClearBuffers(mgl32.Vec4{0, 0, 0, 0})

	if err := p.renderMeshes(rd, ctx, f); err != nil {
		return passError(p, "render", err)
	}
	if err := p.renderInstances(rd, ctx, f); err != nil {
		return passError(p, "render", err)
	}
	return nil
}

func (p *GeometryPass) renderMeshes(rd RenderData, ctx scene.RenderContext, f frame) error {
	dev := rd.Device()
	fallback, err := lookupShader(rd, KeyGeometryShader)
	if err != nil {
		return err
	}
	frustum := common.ExtractFrustumFromMatrix(f.projection.Mul4(f.view))

	var drawErr error
	ctx.EachMeshRenderer(func(_ ecs.EntityID, r *component.MeshRenderer, t *component.Transform) {
		if drawErr != nil || r.Mesh == 0 || r.Material == 0 || !r.Render {
			return
		}
		m, err := ctx.Repository().Mesh(r.Mesh)
		if err != nil {
			drawErr = err
			return
		}
		if r.FrustumCulling && !frustum.ContainsSphere(t.Position(), m.BoundingRadius()*common.MaxComponent(t.Scale())) {
			return
		}
		mat, err := ctx.Repository().Material(r.Material)
		if err != nil {
			drawErr = err
			return
		}
		s := materialShader(rd, mat, MaterialShaderGeometry, fallback)
		if err := dev.BindMesh(r.Mesh); err != nil {
			drawErr = err
			return
		}
		if err := dev.ApplyTransform(s.ID(), t); err != nil {
			drawErr = err
			return
		}
		u := newUniformWriter(dev, s.ID())
		u.set("uProjection", f.projection)
		u.set("uView", f.view)
		if u.err != nil {
			drawErr = u.err
			return
		}
		if err := dev.ApplyMaterial(s, mat); err != nil {
			drawErr = err
			return
		}
		dev.Draw(m.IndexCount())
	})
	return drawErr
}

func (p *GeometryPass) renderInstances(rd RenderData, ctx scene.RenderContext, f frame) error {
	dev := rd.Device()
	fallback, err := lookupShader(rd, KeyInstancedGeometryShader)
	if err != nil {
		return err
	}
	for _, g := range ctx.InstanceGroups() {
		if g.Mesh() == 0 || g.Material() == 0 || g.Count() == 0 || !g.Render() {
			continue
		}
		m, err := ctx.Repository().Mesh(g.Mesh())
		if err != nil {
			return err
		}
		mat, err := ctx.Repository().Material(g.Material())
		if err != nil {
			return err
		}
		s := materialShader(rd, mat, MaterialShaderInstanced, fallback)
		if err := dev.BindInstanceGroup(g.ID()); err != nil {
			return err
		}
		u := newUniformWriter(dev, s.ID())
		u.set("uProjection", f.projection)
		u.set("uView", f.view)
		if u.err != nil {
			return u.err
		}
		if err := dev.ApplyMaterial(s, mat); err != nil {
			return err
		}
		dev.DrawInstanced(m.IndexCount(), g.Count())
	}
	return nil
}

func (p *GeometryPass) Terminate(rd RenderData) error {
	releaseOwned(rd, []string{KeyGeometryShader, KeyInstancedGeometryShader}, []string{KeyGeometryBuffer})
	rd.Release(p.Name())
	return nil
}

func (p *GeometryPass) Clone() Pass {
	c := *p
	return &c
}
