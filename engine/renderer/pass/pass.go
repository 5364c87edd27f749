// Package pass holds the render passes of the deferred pipeline and the RenderData they share.
package pass

import (
	"fmt"
	"path/filepath"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/camera"
	"github.com/Carmen-Shannon/oxy-gl/engine/component"
	"github.com/Carmen-Shannon/oxy-gl/engine/model"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/device"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/framebuffer"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/texture"
	"github.com/Carmen-Shannon/oxy-gl/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
)

// Pass is one stage of the render pipeline. A pass registers the shaders, meshes and
// framebuffers it owns with the RenderData during Initialize, and the renderer uploads them
// before the first Render. Initialize is idempotent per RenderData.
type Pass interface {
	// Name returns the unique name of the pass.
	Name() string

	// Initialize registers the pass assets and writes the parameter defaults the pass reads.
	// Parameters that are already set are left untouched.
	//
	// Parameters:
	//   - rd: the shared render data
	//
	// Returns:
	//   - error: common.ErrLookup if a required parameter is missing
	Initialize(rd RenderData) error

	// Render records the pass for one frame. Every asset the pass references must be resident.
	//
	// Parameters:
	//   - rd: the shared render data
	//   - ctx: the scene view of this frame
	//
	// Returns:
	//   - error: the first error raised by the device or a lookup
	Render(rd RenderData, ctx scene.RenderContext) error

	// Terminate releases the pass-owned shaders and framebuffers from the device and the
	// render data, and drops the initialization claim.
	//
	// Parameters:
	//   - rd: the shared render data
	//
	// Returns:
	//   - error: always nil for the built-in passes
	Terminate(rd RenderData) error

	// Clone returns an independent copy of the pass.
	Clone() Pass
}

// uniformWriter uploads uniforms to one shader and keeps the first error.
type uniformWriter struct {
	dev device.Device
	id  common.AssetID
	err error
}

func newUniformWriter(dev device.Device, id common.AssetID) *uniformWriter {
	return &uniformWriter{dev: dev, id: id}
}

func (u *uniformWriter) set(name string, value any) {
	if u.err != nil {
		return
	}
	u.err = u.dev.Uniform(u.id, name, value)
}

// setParameter uploads the parameter under key, or fallback when the key is absent.
func setParameter[T any](u *uniformWriter, rd RenderData, name, key string, fallback T) {
	if u.err != nil {
		return
	}
	v, err := GetOr(rd, key, fallback)
	if err != nil {
		u.err = err
		return
	}
	u.set(name, v)
}

// frame is the camera state shared by the passes of one frame.
type frame struct {
	camera            *camera.Camera
	transform         *component.Transform
	aspect            float32
	projection        mgl32.Mat4
	inverseProjection mgl32.Mat4
	view              mgl32.Mat4
	inverseView       mgl32.Mat4
}

func newFrame(rd RenderData, ctx scene.RenderContext) (frame, error) {
	cam, t, err := ctx.Camera()
	if err != nil {
		return frame{}, err
	}
	aspect := float32(1)
	if h := rd.Height(); h > 0 {
		aspect = float32(rd.Width()) / float32(h)
	}
	f := frame{
		camera:     cam,
		transform:  t,
		aspect:     aspect,
		projection: cam.Perspective(aspect),
		view:       t.View(),
	}
	f.inverseProjection, _ = common.Invert4(f.projection)
	f.inverseView, _ = common.Invert4(f.view)
	return f, nil
}

// setCamera uploads the camera uniforms shared by the lighting shaders.
func (f frame) setCamera(u *uniformWriter) {
	u.set("uView", f.view)
	u.set("uInverseView", f.inverseView)
	u.set("uInverseProjection", f.inverseProjection)
	u.set("uViewPos", f.transform.Position())
}

func shaderPath(rd RenderData, name string) (common.Path, error) {
	dir, err := Get[common.Path](rd, KeyShaderPath)
	if err != nil {
		return "", err
	}
	return common.Path(filepath.Join(string(dir), name)), nil
}

// registerShader creates the shader stored under key unless one is already registered.
func registerShader(rd RenderData, key, vertex, fragment string, opts ...shader.ShaderBuilderOption) error {
	if id, err := Get[common.AssetID](rd, key); err == nil {
		if _, err := rd.Shader(id); err == nil {
			return nil
		}
	}
	vs, err := shaderPath(rd, vertex)
	if err != nil {
		return err
	}
	fs, err := shaderPath(rd, fragment)
	if err != nil {
		return err
	}
	s := shader.NewShader(vs, fs, opts...)
	rd.AddShader(s)
	return rd.Set(key, s.ID())
}

// ensureQuad registers the fullscreen quad shared by the screen-space passes.
func ensureQuad(rd RenderData) error {
	if id, err := Get[common.AssetID](rd, KeyQuadMesh); err == nil {
		if _, err := rd.Mesh(id); err == nil {
			return nil
		}
	}
	m := model.Quad()
	rd.AddMesh(m)
	return rd.Set(KeyQuadMesh, m.ID())
}

// ensureColorBuffer registers the HDR color target the lighting and bloom passes accumulate into.
func ensureColorBuffer(rd RenderData) error {
	if id, err := Get[common.AssetID](rd, KeyColorBuffer); err == nil {
		if _, err := rd.Framebuffer(id); err == nil {
			return nil
		}
	}
	fb := framebuffer.NewFramebuffer(rd.Width(), rd.Height())
	if err := fb.AddTexture("color", texture.NewAttachment(texture.AttachmentColor0, texture.ColorFormatR11G11B10F)); err != nil {
		return err
	}
	rd.AddFramebuffer(fb)
	return rd.Set(KeyColorBuffer, fb.ID())
}

func lookupShader(rd RenderData, key string) (shader.Shader, error) {
	id, err := Get[common.AssetID](rd, key)
	if err != nil {
		return nil, err
	}
	return rd.Shader(id)
}

func lookupFramebuffer(rd RenderData, key string) (framebuffer.Framebuffer, error) {
	id, err := Get[common.AssetID](rd, key)
	if err != nil {
		return nil, err
	}
	return rd.Framebuffer(id)
}

func bindFramebuffer(rd RenderData, key string) (framebuffer.Framebuffer, error) {
	fb, err := lookupFramebuffer(rd, key)
	if err != nil {
		return nil, err
	}
	return fb, rd.Device().BindFramebuffer(fb.ID())
}

func bindShader(rd RenderData, key string) (shader.Shader, error) {
	s, err := lookupShader(rd, key)
	if err != nil {
		return nil, err
	}
	return s, rd.Device().BindShader(s.ID())
}

// bindAttachment binds the texture under tag of a framebuffer to unit.
func bindAttachment(rd RenderData, fb framebuffer.Framebuffer, tag string, unit texture.Unit) error {
	t, err := fb.Texture(tag)
	if err != nil {
		return err
	}
	return rd.Device().BindTexture(t.ID(), unit)
}

// drawQuad binds and draws the fullscreen quad.
func drawQuad(rd RenderData) error {
	id, err := Get[common.AssetID](rd, KeyQuadMesh)
	if err != nil {
		return err
	}
	m, err := rd.Mesh(id)
	if err != nil {
		return err
	}
	if err := rd.Device().BindMesh(id); err != nil {
		return err
	}
	rd.Device().Draw(m.IndexCount())
	return nil
}

// releaseOwned releases the shaders and framebuffers stored under the given keys and deletes the keys.
func releaseOwned(rd RenderData, shaderKeys, framebufferKeys []string) {
	for _, key := range shaderKeys {
		if id, err := Get[common.AssetID](rd, key); err == nil {
			rd.Device().ReleaseShader(id)
			rd.RemoveShader(id)
			rd.Delete(key)
		}
	}
	for _, key := range framebufferKeys {
		if id, err := Get[common.AssetID](rd, key); err == nil {
			rd.Device().ReleaseFramebuffer(id)
			rd.RemoveFramebuffer(id)
			rd.Delete(key)
		}
	}
}

func passError(p Pass, op string, err error) error {
	return fmt.Errorf("%s pass %s: %w", p.Name(), op, err)
}
