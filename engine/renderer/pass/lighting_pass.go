package pass

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/light"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/backend"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/framebuffer"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/texture"
	"github.com/Carmen-Shannon/oxy-gl/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
)

// gBufferSamplers maps the g-buffer attachments to their sampler uniforms, in unit order.
var gBufferSamplers = []struct {
	tag     string
	uniform string
}{
	{"normal", "uNormal"},
	{"albedo", "uAlbedo"},
	{"material", "uMaterial"},
	{"depth", "uDepth"},
}

// LightingPass accumulates the directional light, with cascaded shadows, and the point light
// volumes into the HDR color buffer.
type LightingPass struct{}

var _ Pass = &LightingPass{}

// NewLightingPass creates a LightingPass.
func NewLightingPass() *LightingPass {
	return &LightingPass{}
}

func (p *LightingPass) Name() string {
	return "lighting"
}

func (p *LightingPass) Initialize(rd RenderData) error {
	if !rd.Claim(p.Name()) {
		return nil
	}
	if err := ensureQuad(rd); err != nil {
		return passError(p, "initialize", err)
	}
	if err := ensureColorBuffer(rd); err != nil {
		return passError(p, "initialize", err)
	}
	if err := registerShader(rd, KeyLightingShader, "quad.vert", "lighting.frag"); err != nil {
		return passError(p, "initialize", err)
	}
	if err := registerShader(rd, KeyPointLightShader, "point_light.vert", "point_light.frag"); err != nil {
		return passError(p, "initialize", err)
	}
	return nil
}

// bindGBuffer binds the four g-buffer textures to units 0 to 3 of shader id.
func bindGBuffer(rd RenderData, gBuffer framebuffer.Framebuffer, u *uniformWriter) error {
	for i, s := range gBufferSamplers {
		unit := texture.Unit(i)
		if err := bindAttachment(rd, gBuffer, s.tag, unit); err != nil {
			return err
		}
		u.set(s.uniform, unit)
	}
	return u.err
}

func (p *LightingPass) Render(rd RenderData, ctx scene.RenderContext) error {
	if err := p.renderDirectional(rd, ctx); err != nil {
		return passError(p, "render", err)
	}
	if err := p.renderPointLights(rd, ctx); err != nil {
		return passError(p, "render point lights", err)
	}
	return nil
}

func (p *LightingPass) renderDirectional(rd RenderData, ctx scene.RenderContext) error {
	dev := rd.Device()
	f, err := newFrame(rd, ctx)
	if err != nil {
		return err
	}
	dl, lt, err := ctx.DirectionalLight()
	if err != nil {
		return err
	}
	gBuffer, err := lookupFramebuffer(rd, KeyGeometryBuffer)
	if err != nil {
		return err
	}
	if _, err := bindFramebuffer(rd, KeyColorBuffer); err != nil {
		return err
	}
	s, err := bindShader(rd, KeyLightingShader)
	if err != nil {
		return err
	}

	u := newUniformWriter(dev, s.ID())
	if err := bindGBuffer(rd, gBuffer, u); err != nil {
		return err
	}
	u.set("uDLight.direction", lt.Front())
	u.set("uDLight.color", dl.Color)
	u.set("uDLight.intensity", dl.Intensity)
	f.setCamera(u)

	cascades, err := activeCascades(rd)
	if err != nil {
		return err
	}
	u.set("uCascadeCount", uint64(cascades))
	for i := 0; i < cascades; i++ {
		lightSpace, err := Get[mgl32.Mat4](rd, LightSpaceKey(i))
		if err != nil {
			return err
		}
		shadowBuffer, err := lookupFramebuffer(rd, ShadowBufferKey(i))
		if err != nil {
			return err
		}
		unit := texture.Unit(4 + i)
		if err := bindAttachment(rd, shadowBuffer, "depth", unit); err != nil {
			return err
		}
		u.set(fmt.Sprintf("uLightSpaces[%d]", i), lightSpace)
		u.set(fmt.Sprintf("uCascadeFars[%d]", i), light.CascadeFar(f.camera.Far(), i))
		u.set(fmt.Sprintf("uDepthMaps[%d]", i), unit)
	}
	if u.err != nil {
		return u.err
	}
	return drawQuad(rd)
}

func (p *LightingPass) renderPointLights(rd RenderData, ctx scene.RenderContext) error {
	groupID, err := Get[common.AssetID](rd, KeyPointLightGroup)
	if err != nil {
		return err
	}
	group, err := ctx.Repository().InstanceGroup(groupID)
	if err != nil {
		return err
	}
	if group.Count() == 0 {
		return nil
	}
	mesh, err := ctx.Repository().Mesh(group.Mesh())
	if err != nil {
		return err
	}
	gBuffer, err := lookupFramebuffer(rd, KeyGeometryBuffer)
	if err != nil {
		return err
	}
	f, err := newFrame(rd, ctx)
	if err != nil {
		return err
	}

	dev := rd.Device()
	dev.State(backend.StateDisableDepth)
	dev.State(backend.StateEnableBlend)
	dev.State(backend.StateBlendAdd)
	dev.State(backend.StateEnableCulling)
	// back faces only, so the volume still lights the scene with the camera inside it
	dev.State(backend.StateCullFront)
	defer func() {
		dev.State(backend.StateEnableDepth)
		dev.State(backend.StateDisableBlend)
		dev.State(backend.StateCullBack)
		dev.State(backend.StateDisableCulling)
	}()

	s, err := bindShader(rd, KeyPointLightShader)
	if err != nil {
		return err
	}
	if err := dev.BindInstanceGroup(group.ID()); err != nil {
		return err
	}
	u := newUniformWriter(dev, s.ID())
	u.set("uProjection", f.projection)
	f.setCamera(u)
	u.set("uViewPortSize", mgl32.Vec2{float32(rd.Width()), float32(rd.Height())})
	if err := bindGBuffer(rd, gBuffer, u); err != nil {
		return err
	}
	dev.DrawInstanced(mesh.IndexCount(), group.Count())
	return nil
}

func (p *LightingPass) Terminate(rd RenderData) error {
	releaseOwned(rd, []string{KeyLightingShader, KeyPointLightShader}, nil)
	rd.Release(p.Name())
	return nil
}

func (p *LightingPass) Clone() Pass {
	c := *p
	return &c
}
