package device

import (
	"fmt"
	"sort"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/model"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/backend"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/texture"
	"go.uber.org/zap"
)

// Material mode bits uploaded as uMaterialMode.
const (
	ModeAlbedoTexture   int32 = 1 << 0
	ModeMaterialTexture int32 = 1 << 1
)

func (d *device) ShaderLoaded(id common.AssetID) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.shaders[id]
	return ok
}

func (d *device) LoadShader(s shader.Shader) error {
	src, err := shader.LoadSources(s)
	if err != nil {
		return fmt.Errorf("load shader %d: %w", s.ID(), err)
	}
	return d.CompileShader(s, src)
}

func (d *device) CompileShader(s shader.Shader, src shader.Sources) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	program, err := d.backend.CompileProgram(backend.ProgramSource{
		Name:     string(s.Vertex()) + "+" + string(s.Fragment()),
		Vertex:   src.Vertex,
		Fragment: src.Fragment,
		Geometry: src.Geometry,
	})
	if err != nil {
		return fmt.Errorf("compile shader %d: %w", s.ID(), err)
	}
	if old, ok := d.shaders[s.ID()]; ok {
		d.releaseProgram(old.program)
	}
	d.shaders[s.ID()] = &shaderEntry{program: program, locations: make(map[string]int32)}
	d.logger.Debug("shader compiled",
		zap.Uint64("asset_id", uint64(s.ID())), zap.String("vertex", string(s.Vertex())), zap.String("fragment", string(s.Fragment())))
	return nil
}

func (d *device) BindShader(id common.AssetID) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	e, ok := d.shaders[id]
	if !ok {
		return common.LookupError("shader", id)
	}
	d.useProgram(e.program)
	return nil
}

func (d *device) useProgram(program uint32) {
	if d.boundProgram == program {
		return
	}
	d.backend.UseProgram(program)
	d.boundProgram = program
}

func (d *device) ReleaseShader(id common.AssetID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.releaseShader(id)
}

func (d *device) releaseShader(id common.AssetID) {
	e, ok := d.shaders[id]
	if !ok {
		return
	}
	d.releaseProgram(e.program)
	delete(d.shaders, id)
}

func (d *device) releaseProgram(program uint32) {
	if d.boundProgram == program {
		d.boundProgram = 0
	}
	d.backend.DeleteProgram(program)
}

func (d *device) ShaderProgram(id common.AssetID) (uint32, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	e, ok := d.shaders[id]
	if !ok {
		return 0, common.LookupError("shader", id)
	}
	return e.program, nil
}

func (d *device) Uniform(id common.AssetID, name string, value any) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.uniform(id, name, value)
}

func (d *device) uniform(id common.AssetID, name string, value any) error {
	e, ok := d.shaders[id]
	if !ok {
		return common.LookupError("shader", id)
	}
	d.useProgram(e.program)

	loc, ok := e.locations[name]
	if !ok {
		loc = d.backend.UniformLocation(e.program, name)
		e.locations[name] = loc
	}
	if err := d.backend.Uniform(loc, value); err != nil {
		return fmt.Errorf("uniform %s: %w", name, err)
	}
	return nil
}

func (d *device) ApplyMaterial(s shader.Shader, m material.Material) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	id := s.ID()
	if s.UseDefaultMaterial() {
		if err := d.applyDefaultMaterial(id, m); err != nil {
			return err
		}
	}

	for _, tag := range m.ParameterTags() {
		if !s.DeclaresUniform(tag) {
			continue
		}
		v, _ := m.Parameter(tag)
		if err := d.uniform(id, tag, v); err != nil {
			return err
		}
	}

	// extra textures take the units after the material slots
	textures := m.Textures()
	tags := make([]string, 0, len(textures))
	for tag := range textures {
		if s.DeclaresUniform(tag) {
			tags = append(tags, tag)
		}
	}
	sort.Strings(tags)
	unit := texture.Unit4
	for _, tag := range tags {
		if err := d.bindTexture(textures[tag], unit); err != nil {
			return fmt.Errorf("apply material %d: %w", m.ID(), err)
		}
		if err := d.uniform(id, tag, unit); err != nil {
			return err
		}
		unit++
	}
	return nil
}

// applyDefaultMaterial uploads the PBR set. The material texture unit is the mode mask, 2 or 3.
func (d *device) applyDefaultMaterial(id common.AssetID, m material.Material) error {
	var mode int32
	if m.AlbedoTexture() != 0 {
		if err := d.bindTexture(m.AlbedoTexture(), texture.Unit0); err != nil {
			return fmt.Errorf("apply material %d: %w", m.ID(), err)
		}
		if err := d.uniform(id, "uAlbedoTexture", texture.Unit0); err != nil {
			return err
		}
		mode |= ModeAlbedoTexture
	} else if err := d.uniform(id, "uAlbedo", m.Color()); err != nil {
		return err
	}

	if m.MaterialTexture() != 0 {
		mode |= ModeMaterialTexture
		unit := texture.Unit(mode)
		if err := d.bindTexture(m.MaterialTexture(), unit); err != nil {
			return fmt.Errorf("apply material %d: %w", m.ID(), err)
		}
		if err := d.uniform(id, "uMaterialTexture", unit); err != nil {
			return err
		}
	} else {
		for _, u := range []struct {
			name  string
			value float32
		}{
			{"uMetallic", m.Metallic()},
			{"uRoughness", m.Roughness()},
			{"uEmission", m.Emission()},
			{"uAO", m.AmbientOcclusion()},
		} {
			if err := d.uniform(id, u.name, u.value); err != nil {
				return err
			}
		}
	}
	return d.uniform(id, "uMaterialMode", mode)
}

func (d *device) ApplyTransform(id common.AssetID, p model.Placement) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.uniform(id, "uPosition", p.Position()); err != nil {
		return err
	}
	if err := d.uniform(id, "uScale", p.Scale()); err != nil {
		return err
	}
	return d.uniform(id, "uRotation", p.Rotation())
}
