package pass

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/component"
	"github.com/Carmen-Shannon/oxy-gl/engine/ecs"
	"github.com/Carmen-Shannon/oxy-gl/engine/light"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/framebuffer"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/texture"
	"github.com/Carmen-Shannon/oxy-gl/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
)

// ShadowPass renders the cascaded shadow maps of the directional light. The light-space
// matrix of cascade i is published under LightSpaceKey(i) for the lighting pass.
type ShadowPass struct{}

var _ Pass = &ShadowPass{}

// NewShadowPass creates a ShadowPass.
func NewShadowPass() *ShadowPass {
	return &ShadowPass{}
}

func (p *ShadowPass) Name() string {
	return "shadow"
}

func (p *ShadowPass) Initialize(rd RenderData) error {
	if !rd.Claim(p.Name()) {
		return nil
	}
	for key, value := range map[string]any{
		KeyCascadeCount:     DefaultCascadeCount,
		KeyShadowBufferSize: DefaultShadowBufferSize,
		KeyRenderShadow:     true,
	} {
		if err := rd.SetDefault(key, value); err != nil {
			return passError(p, "initialize", err)
		}
	}

	count, err := Get[uint64](rd, KeyCascadeCount)
	if err != nil {
		return passError(p, "initialize", err)
	}
	size, err := Get[uint64](rd, KeyShadowBufferSize)
	if err != nil {
		return passError(p, "initialize", err)
	}
	for i := 0; i < int(count); i++ {
		if _, err := lookupFramebuffer(rd, ShadowBufferKey(i)); err == nil {
			continue
		}
		fb, err := newShadowBuffer(int(size))
		if err != nil {
			return passError(p, "initialize", err)
		}
		rd.AddFramebuffer(fb)
		if err := rd.Set(ShadowBufferKey(i), fb.ID()); err != nil {
			return passError(p, "initialize", err)
		}
	}

	if err := registerShader(rd, KeyDepthShader, "depth.vert", "depth.frag"); err != nil {
		return passError(p, "initialize", err)
	}
	if err := registerShader(rd, KeyInstancedDepthShader, "instanced_depth.vert", "depth.frag"); err != nil {
		return passError(p, "initialize", err)
	}
	return nil
}

// newShadowBuffer creates a fixed-size depth-only framebuffer. Samples outside the map read
// the border depth of 1, so they are never in shadow.
func newShadowBuffer(size int) (framebuffer.Framebuffer, error) {
	fb := framebuffer.NewFramebuffer(size, size, framebuffer.WithResize(false))
	depth := texture.NewTexture(
		texture.WithAttachment(texture.AttachmentDepth),
		texture.WithInternalFormat(texture.ColorFormatDepth32F),
		texture.WithFormat(texture.ColorFormatDepth),
		texture.WithDataType(texture.DataTypeFloat),
		texture.WithSize(size, size),
		texture.WithWrap(texture.WrapClampToBorder, texture.WrapClampToBorder),
		texture.WithFilter(texture.FilterNearest, texture.FilterNearest),
	)
	if err := fb.AddTexture("depth", depth); err != nil {
		return nil, err
	}
	return fb, nil
}

// CascadeLightSpaces computes the light-space matrix of every cascade. Cascade i covers
// the view frustum from the camera near plane to far / CascadeDivisor(i).
//
// Parameters:
//   - projectionOf: returns the camera projection for a given far plane
//   - view: the camera view matrix
//   - far: the camera far plane, also used as the depth bias
//   - lightFront, lightUp: the light orientation
//   - count: the number of cascades
//
// Returns:
//   - []mgl32.Mat4: one light-space matrix per cascade
func CascadeLightSpaces(projectionOf func(far float32) mgl32.Mat4, view mgl32.Mat4, far float32, lightFront, lightUp mgl32.Vec3, count int) []mgl32.Mat4 {
	out := make([]mgl32.Mat4, count)
	for i := range out {
		out[i] = light.FitLightSpace(projectionOf(light.CascadeFar(far, i)), view, lightFront, lightUp, far)
	}
	return out
}

func (p *ShadowPass) Render(rd RenderData, ctx scene.RenderContext) error {
	enabled, err := GetOr(rd, KeyRenderShadow, true)
	if err != nil {
		return passError(p, "render", err)
	}
	if !enabled {
		return nil
	}
	count, err := GetOr(rd, KeyCascadeCount, DefaultCascadeCount)
	if err != nil {
		return passError(p, "render", err)
	}
	dev := rd.Device()
	f, err := newFrame(rd, ctx)
	if err != nil {
		return passError(p, "render", err)
	}
	_, lt, err := ctx.DirectionalLight()
	if err != nil {
		return passError(p, "render", err)
	}

	spaces := CascadeLightSpaces(func(far float32) mgl32.Mat4 {
		return f.camera.PerspectiveFar(f.aspect, far)
	}, f.view, f.camera.Far(), lt.Front(), lt.Up(), int(count))
	for i, m := range spaces {
		if err := rd.Set(LightSpaceKey(i), m); err != nil {
			return passError(p, "render", err)
		}
	}

	for i, lightSpace := range spaces {
		if _, err := bindFramebuffer(rd, ShadowBufferKey(i)); err != nil {
			return passError(p, "render", err)
		}
		dev.ClearBuffers(mgl32.Vec4{0, 0, 0, 0})
		if err := p.renderMeshes(rd, ctx, lightSpace); err != nil {
			return passError(p, fmt.Sprintf("render cascade %d", i), err)
		}
		if err := p.renderInstances(rd, ctx, lightSpace); err != nil {
			return passError(p, fmt.Sprintf("render cascade %d", i), err)
		}
	}
	return nil
}

func (p *ShadowPass) renderMeshes(rd RenderData, ctx scene.RenderContext, lightSpace mgl32.Mat4) error {
	dev := rd.Device()
	s, err := bindShader(rd, KeyDepthShader)
	if err != nil {
		return err
	}
	if err := dev.Uniform(s.ID(), "uLightSpace", lightSpace); err != nil {
		return err
	}

	var drawErr error
	ctx.EachMeshRenderer(func(_ ecs.EntityID, r *component.MeshRenderer, t *component.Transform) {
		if drawErr != nil || r.Mesh == 0 || r.Material == 0 || !r.Shadow {
			return
		}
		m, err := ctx.Repository().Mesh(r.Mesh)
		if err != nil {
			drawErr = err
			return
		}
		if err := dev.BindMesh(r.Mesh); err != nil {
			drawErr = err
			return
		}
		if err := dev.ApplyTransform(s.ID(), t); err != nil {
			drawErr = err
			return
		}
		dev.Draw(m.IndexCount())
	})
	return drawErr
}

func (p *ShadowPass) renderInstances(rd RenderData, ctx scene.RenderContext, lightSpace mgl32.Mat4) error {
	dev := rd.Device()
	s, err := bindShader(rd, KeyInstancedDepthShader)
	if err != nil {
		return err
	}
	if err := dev.Uniform(s.ID(), "uLightSpace", lightSpace); err != nil {
		return err
	}
	for _, g := range ctx.InstanceGroups() {
		if g.Mesh() == 0 || g.Count() == 0 || !g.Shadow() {
			continue
		}
		m, err := ctx.Repository().Mesh(g.Mesh())
		if err != nil {
			return err
		}
		if err := dev.BindInstanceGroup(g.ID()); err != nil {
			return err
		}
		dev.DrawInstanced(m.IndexCount(), g.Count())
	}
	return nil
}

func (p *ShadowPass) Terminate(rd RenderData) error {
	for _, key := range indexedKeys(rd, LightSpaceKey) {
		rd.Delete(key)
	}
	buffers := indexedKeys(rd, ShadowBufferKey)
	releaseOwned(rd, []string{KeyDepthShader, KeyInstancedDepthShader}, buffers)
	rd.Release(p.Name())
	return nil
}

func (p *ShadowPass) Clone() Pass {
	c := *p
	return &c
}

// activeCascades returns the number of cascades with a published light-space matrix.
func activeCascades(rd RenderData) (int, error) {
	enabled, err := GetOr(rd, KeyRenderShadow, true)
	if err != nil || !enabled {
		return 0, err
	}
	count, err := GetOr(rd, KeyCascadeCount, DefaultCascadeCount)
	if err != nil {
		return 0, err
	}
	for i := 0; i < int(count); i++ {
		if _, err := Get[mgl32.Mat4](rd, LightSpaceKey(i)); err != nil {
			return i, nil
		}
		if _, err := Get[common.AssetID](rd, ShadowBufferKey(i)); err != nil {
			return i, nil
		}
	}
	return int(count), nil
}
