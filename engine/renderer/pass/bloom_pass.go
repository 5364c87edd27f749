package pass

import (
	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/backend"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/framebuffer"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/texture"
	"github.com/Carmen-Shannon/oxy-gl/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
)

// BloomPass extracts the bright parts of the color buffer through a chain of half-resolution
// mips and blends the upsampled result back into the color buffer.
type BloomPass struct{}

var _ Pass = &BloomPass{}

// NewBloomPass creates a BloomPass.
func NewBloomPass() *BloomPass {
	return &BloomPass{}
}

func (p *BloomPass) Name() string {
	return "bloom"
}

// BloomMipFactor returns the resize factor of bloom mip i: 1/2, 1/4, 1/8 and so on.
func BloomMipFactor(i int) float32 {
	return 1 / float32(uint(2)<<uint(i))
}

func (p *BloomPass) Initialize(rd RenderData) error {
	if !rd.Claim(p.Name()) {
		return nil
	}
	for key, value := range map[string]any{
		KeyRenderBloom:    true,
		KeyBloomMipLevels: DefaultBloomMipLevels,
		KeyBloomStrength:  DefaultBloomStrength,
		KeyGamma:          DefaultGamma,
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

	levels, err := Get[common.Size](rd, KeyBloomMipLevels)
	if err != nil {
		return passError(p, "initialize", err)
	}
	for i := 0; i < int(levels); i++ {
		if _, err := lookupFramebuffer(rd, BloomFramebufferKey(i)); err == nil {
			continue
		}
		factor := BloomMipFactor(i)
		w, h := framebuffer.ScaledSize(rd.Width(), rd.Height(), factor)
		fb := framebuffer.NewFramebuffer(w, h, framebuffer.WithResizeFactor(factor))
		if err := fb.AddTexture("bloom", texture.NewAttachment(texture.AttachmentColor0, texture.ColorFormatR11G11B10F)); err != nil {
			return passError(p, "initialize", err)
		}
		rd.AddFramebuffer(fb)
		if err := rd.Set(BloomFramebufferKey(i), fb.ID()); err != nil {
			return passError(p, "initialize", err)
		}
	}

	if err := registerShader(rd, KeyBloomDownsampleShader, "quad.vert", "bloom_downsample.frag"); err != nil {
		return passError(p, "initialize", err)
	}
	if err := registerShader(rd, KeyBloomUpsampleShader, "quad.vert", "bloom_upsample.frag"); err != nil {
		return passError(p, "initialize", err)
	}
	return nil
}

func (p *BloomPass) Render(rd RenderData, _ scene.RenderContext) error {
	enabled, err := GetOr(rd, KeyRenderBloom, true)
	if err != nil {
		return passError(p, "render", err)
	}
	if !enabled {
		return nil
	}
	levels, err := GetOr(rd, KeyBloomMipLevels, DefaultBloomMipLevels)
	if err != nil {
		return passError(p, "render", err)
	}
	if levels == 0 {
		return nil
	}
	mips := make([]framebuffer.Framebuffer, levels)
	for i := range mips {
		fb, err := lookupFramebuffer(rd, BloomFramebufferKey(i))
		if err != nil {
			return passError(p, "render", err)
		}
		mips[i] = fb
	}
	color, err := lookupFramebuffer(rd, KeyColorBuffer)
	if err != nil {
		return passError(p, "render", err)
	}

	if err := p.downsample(rd, color, mips); err != nil {
		return passError(p, "downsample", err)
	}
	if err := p.upsample(rd, color, mips); err != nil {
		return passError(p, "upsample", err)
	}
	return nil
}

func (p *BloomPass) downsample(rd RenderData, color framebuffer.Framebuffer, mips []framebuffer.Framebuffer) error {
	dev := rd.Device()
	s, err := bindShader(rd, KeyBloomDownsampleShader)
	if err != nil {
		return err
	}
	gamma, err := GetOr(rd, KeyGamma, DefaultGamma)
	if err != nil {
		return err
	}
	u := newUniformWriter(dev, s.ID())
	u.set("uInverseGamma", 1/gamma)
	u.set("uKarisAverage", true)

	src, srcTag := color, "color"
	for i, mip := range mips {
		if err := dev.BindFramebuffer(mip.ID()); err != nil {
			return err
		}
		if err := bindAttachment(rd, src, srcTag, texture.Unit0); err != nil {
			return err
		}
		u.set("uSrcTexture", texture.Unit0)
		u.set("uSrcResolution", mgl32.Vec2{float32(src.Width()), float32(src.Height())})
		if u.err != nil {
			return u.err
		}
		if err := drawQuad(rd); err != nil {
			return err
		}
		if i == 0 {
			// only the first mip averages fireflies away
			u.set("uKarisAverage", false)
		}
		src, srcTag = mip, "bloom"
	}
	return u.err
}

func (p *BloomPass) upsample(rd RenderData, color framebuffer.Framebuffer, mips []framebuffer.Framebuffer) error {
	dev := rd.Device()
	strength, err := GetOr(rd, KeyBloomStrength, DefaultBloomStrength)
	if err != nil {
		return err
	}
	s, err := bindShader(rd, KeyBloomUpsampleShader)
	if err != nil {
		return err
	}
	dev.State(backend.StateDisableDepth)
	dev.State(backend.StateEnableBlend)
	defer func() {
		dev.State(backend.StateBlendAdd)
		dev.State(backend.StateEnableDepth)
		dev.State(backend.StateDisableBlend)
	}()

	u := newUniformWriter(dev, s.ID())
	u.set("uFilterRadius", DefaultFilterRadius)
	for i := len(mips) - 1; i > 0; i-- {
		if err := dev.BindFramebuffer(mips[i-1].ID()); err != nil {
			return err
		}
		if err := bindAttachment(rd, mips[i], "bloom", texture.Unit0); err != nil {
			return err
		}
		u.set("uSrcTexture", texture.Unit0)
		if u.err != nil {
			return u.err
		}
		if err := drawQuad(rd); err != nil {
			return err
		}
	}

	dev.BlendWeights(strength, 1-strength)
	dev.State(backend.StateBlendWeighted)
	if err := dev.BindFramebuffer(color.ID()); err != nil {
		return err
	}
	if err := bindAttachment(rd, mips[0], "bloom", texture.Unit0); err != nil {
		return err
	}
	u.set("uSrcTexture", texture.Unit0)
	if u.err != nil {
		return u.err
	}
	return drawQuad(rd)
}

func (p *BloomPass) Terminate(rd RenderData) error {
	buffers := indexedKeys(rd, BloomFramebufferKey)
	releaseOwned(rd, []string{KeyBloomDownsampleShader, KeyBloomUpsampleShader}, buffers)
	rd.Release(p.Name())
	return nil
}

func (p *BloomPass) Clone() Pass {
	c := *p
	return &c
}
