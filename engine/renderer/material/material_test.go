package material

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/go-gl/mathgl/mgl32"
)

func TestNewMaterialDefaults(t *testing.T) {
	m := NewMaterial()
	if m.ID() == 0 {
		t.Fatal("expected generated id")
	}
	if m.Color() != (mgl32.Vec4{1, 1, 1, 1}) {
		t.Errorf("Color = %v", m.Color())
	}
	if m.Metallic() != 0 || m.Roughness() != 0.9 || m.Emission() != 0 || m.AmbientOcclusion() != 0.5 {
		t.Errorf("pbr defaults = %v %v %v %v", m.Metallic(), m.Roughness(), m.Emission(), m.AmbientOcclusion())
	}
	if m.Transparency() != TransparencyOpaque {
		t.Errorf("Transparency = %v", m.Transparency())
	}
	if m.AlbedoTexture() != 0 || m.MaterialTexture() != 0 {
		t.Error("textures should be unset")
	}
}

func TestSetParameterDomain(t *testing.T) {
	tests := []struct {
		name    string
		value   any
		want    any
		wantErr bool
	}{
		{"bool", true, true, false},
		{"int narrowed", 3, int32(3), false},
		{"uint narrowed", uint(4), uint32(4), false},
		{"float64 narrowed", 0.5, float32(0.5), false},
		{"vec3", mgl32.Vec3{0.1, 0.2, 0.9}, mgl32.Vec3{0.1, 0.2, 0.9}, false},
		{"quat", mgl32.QuatIdent(), mgl32.QuatIdent(), false},
		{"string rejected", "nope", nil, true},
		{"mat4 rejected", mgl32.Ident4(), nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMaterial()
			err := m.SetParameter("uValue", tt.value)
			if tt.wantErr {
				if !errors.Is(err, common.ErrTypeMismatch) {
					t.Fatalf("expected ErrTypeMismatch, got %v", err)
				}
				if _, ok := m.Parameter("uValue"); ok {
					t.Error("rejected value was stored")
				}
				return
			}
			if err != nil {
				t.Fatalf("SetParameter: %v", err)
			}
			got, ok := m.Parameter("uValue")
			if !ok || got != tt.want {
				t.Errorf("Parameter = %v (%T), want %v (%T)", got, got, tt.want, tt.want)
			}
		})
	}
}

func TestReferenceMapsAreCopied(t *testing.T) {
	m := NewMaterial(WithParameter("uScatter", mgl32.Vec3{0.1, 0.2, 0.9}), WithParameter("uBad", "x"))
	m.SetShader("skybox", 5)
	m.SetTexture("albedo", 9)

	shaders := m.Shaders()
	shaders["skybox"] = 6
	if m.Shader("skybox") != 5 {
		t.Error("Shaders() exposed internal map")
	}
	if !m.HasTexture("albedo") || m.Texture("missing") != 0 {
		t.Error("texture lookups wrong")
	}
	tags := m.ParameterTags()
	if len(tags) != 1 || tags[0] != "uScatter" {
		t.Errorf("ParameterTags = %v", tags)
	}
	m.RemoveParameter("uScatter")
	if len(m.ParameterTags()) != 0 {
		t.Error("RemoveParameter had no effect")
	}
}
