package pass

import (
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/texture"
	"github.com/Carmen-Shannon/oxy-gl/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
)

// DrawPass tonemaps the color buffer onto the back buffer with gamma correction and
// distance fog, optionally through FXAA.
type DrawPass struct{}

var _ Pass = &DrawPass{}

// NewDrawPass creates a DrawPass.
func NewDrawPass() *DrawPass {
	return &DrawPass{}
}

func (p *DrawPass) Name() string {
	return "draw"
}

func (p *DrawPass) Initialize(rd RenderData) error {
	if !rd.Claim(p.Name()) {
		return nil
	}
	for key, value := range map[string]any{
		KeyRenderFXAA: true,
		KeyGamma:      DefaultGamma,
		KeyFogColor:   DefaultFogColor,
		KeyFogNear:    DefaultFogNear,
		KeyFogFar:     DefaultFogFar,
	} {
		if err := rd.SetDefault(key, value); err != nil {
			return passError(p, "initialize", err)
		}
	}
	if err := ensureQuad(rd); err != nil {
		return passError(p, "initialize", err)
	}
	if err := ensureColorBuffer(rd); err != nil {
		return passError(p, "initialize", err)
	}
	if err := registerShader(rd, KeyFinalShader, "quad.vert", "final.frag"); err != nil {
		return passError(p, "initialize", err)
	}
	if err := registerShader(rd, KeyFXAAShader, "quad.vert", "fxaa.frag"); err != nil {
		return passError(p, "initialize", err)
	}
	return nil
}

func (p *DrawPass) Render(rd RenderData, ctx scene.RenderContext) error {
	dev := rd.Device()
	cam, _, err := ctx.Camera()
	if err != nil {
		return passError(p, "render", err)
	}
	color, err := lookupFramebuffer(rd, KeyColorBuffer)
	if err != nil {
		return passError(p, "render", err)
	}

	fxaa, err := GetOr(rd, KeyRenderFXAA, true)
	if err != nil {
		return passError(p, "render", err)
	}

	w, h := rd.Width(), rd.Height()
	dev.BindDefault(w, h)
	dev.ClearBuffers(mgl32.Vec4{0, 0, 0, 1})

	key := KeyFinalShader
	if fxaa {
		key = KeyFXAAShader
	}
	s, err := bindShader(rd, key)
	if err != nil {
		return passError(p, "render", err)
	}

	u := newUniformWriter(dev, s.ID())
	if fxaa {
		u.set("uScreenSize", mgl32.Vec2{float32(w), float32(h)})
	}
	if err := bindAttachment(rd, color, "color", texture.Unit0); err != nil {
		return passError(p, "render", err)
	}
	u.set("uColor", texture.Unit0)
	if gBuffer, err := lookupFramebuffer(rd, KeyGeometryBuffer); err == nil {
		if err := bindAttachment(rd, gBuffer, "depth", texture.Unit1); err != nil {
			return passError(p, "render", err)
		}
		u.set("uDepth", texture.Unit1)
	}
	setParameter(u, rd, "uGamma", KeyGamma, DefaultGamma)
	u.set("uNear", cam.Near())
	u.set("uFar", cam.Far())
	setParameter(u, rd, "uFogColor", KeyFogColor, DefaultFogColor)
	setParameter(u, rd, "uFogNear", KeyFogNear, DefaultFogNear)
	setParameter(u, rd, "uFogFar", KeyFogFar, DefaultFogFar)
	if u.err != nil {
		return passError(p, "render", u.err)
	}
	if err := drawQuad(rd); err != nil {
		return passError(p, "render", err)
	}
	return nil
}

func (p *DrawPass) Terminate(rd RenderData) error {
	releaseOwned(rd, []string{KeyFinalShader, KeyFXAAShader}, nil)
	rd.Release(p.Name())
	return nil
}

func (p *DrawPass) Clone() Pass {
	c := *p
	return &c
}
