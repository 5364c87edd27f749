package pass

import (
	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/backend"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-gl/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
)

// SkyboxPass clears the HDR color buffer and fills it with the procedural sky.
type SkyboxPass struct{}

var _ Pass = &SkyboxPass{}

// NewSkyboxPass creates a SkyboxPass.
func NewSkyboxPass() *SkyboxPass {
	return &SkyboxPass{}
}

func (p *SkyboxPass) Name() string {
	return "skybox"
}

func (p *SkyboxPass) Initialize(rd RenderData) error {
	if !rd.Claim(p.Name()) {
		return nil
	}
	if err := ensureQuad(rd); err != nil {
		return passError(p, "initialize", err)
	}
	if err := ensureColorBuffer(rd); err != nil {
		return passError(p, "initialize", err)
	}
	if err := registerShader(rd, KeySkyboxShader, "skybox.vert", "skybox.frag", shader.WithUniforms("uScatter")); err != nil {
		return passError(p, "initialize", err)
	}
	return nil
}

func (p *SkyboxPass) Render(rd RenderData, ctx scene.RenderContext) error {
	dev := rd.Device()
	f, err := newFrame(rd, ctx)
	if err != nil {
		return passError(p, "render", err)
	}
	dl, lt, err := ctx.DirectionalLight()
	if err != nil {
		return passError(p, "render", err)
	}
	materialID, err := Get[common.AssetID](rd, KeySkyboxMaterial)
	if err != nil {
		return passError(p, "render", err)
	}
	mat, err := ctx.Repository().Material(materialID)
	if err != nil {
		return passError(p, "render", err)
	}

	if _, err := bindFramebuffer(rd, KeyColorBuffer); err != nil {
		return passError(p, "render", err)
	}
	dev.ClearBuffers(mgl32.Vec4{0, 0, 0, 1})

	s, err := bindShader(rd, KeySkyboxShader)
	if err != nil {
		return passError(p, "render", err)
	}
	if err := dev.ApplyMaterial(s, mat); err != nil {
		return passError(p, "render", err)
	}

	// the sky is drawn as if the camera sat at the origin
	view := f.view
	view.SetCol(3, mgl32.Vec4{0, 0, 0, 1})
	inverse, _ := common.Invert4(f.projection.Mul4(view))

	u := newUniformWriter(dev, s.ID())
	u.set("uDLight.direction", lt.Front())
	u.set("uDLight.color", dl.Color)
	u.set("uDLight.intensity", dl.Intensity)
	u.set("uInverseViewProjection", inverse)
	if u.err != nil {
		return passError(p, "render", u.err)
	}

	dev.State(backend.StateDisableDepth)
	if err := drawQuad(rd); err != nil {
		return passError(p, "render", err)
	}
	dev.State(backend.StateEnableDepth)
	return nil
}

func (p *SkyboxPass) Terminate(rd RenderData) error {
	releaseOwned(rd, []string{KeySkyboxShader}, nil)
	rd.Release(p.Name())
	return nil
}

func (p *SkyboxPass) Clone() Pass {
	c := *p
	return &c
}
