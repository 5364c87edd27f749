package material

import (
	"fmt"
	"sort"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/go-gl/mathgl/mgl32"
)

// Transparency selects how a material's alpha is treated.
type Transparency int

const (
	// TransparencyOpaque ignores alpha.
	TransparencyOpaque Transparency = iota

	// TransparencyCutout discards fragments below an alpha threshold.
	TransparencyCutout

	// TransparencyBlended blends fragments with the destination by alpha.
	TransparencyBlended
)

func (t Transparency) String() string {
	switch t {
	case TransparencyOpaque:
		return "opaque"
	case TransparencyCutout:
		return "cutout"
	case TransparencyBlended:
		return "blended"
	default:
		return fmt.Sprintf("Transparency(%d)", int(t))
	}
}

const (
	DefaultMetallic         float32 = 0.0
	DefaultRoughness        float32 = 0.9
	DefaultEmission         float32 = 0.0
	DefaultAmbientOcclusion float32 = 0.5
)

// material is the implementation of the Material interface.
type material struct {
	id               common.AssetID
	name             string
	color            mgl32.Vec4
	metallic         float32
	roughness        float32
	emission         float32
	ambientOcclusion float32
	albedoTexture    common.AssetID
	materialTexture  common.AssetID
	transparency     Transparency
	parameters       map[string]any
	shaders          map[string]common.AssetID
	textures         map[string]common.AssetID
}

// Material is a PBR parameter set with optional texture references and custom shader parameters.
//
// The default PBR values are applied by the device when the drawing shader uses the default
// material. Custom parameters are uploaded to any shader that declares a uniform of the same name.
type Material interface {
	// ID returns the asset identifier of the material.
	//
	// Returns:
	//   - common.AssetID: the material identifier
	ID() common.AssetID

	// Name returns the optional debug name of the material.
	//
	// Returns:
	//   - string: the material name
	Name() string

	// Color retrieves the RGBA albedo color.
	//
	// Returns:
	//   - mgl32.Vec4: the color
	Color() mgl32.Vec4

	// SetColor sets the RGBA albedo color.
	//
	// Parameters:
	//   - color: the new color
	SetColor(color mgl32.Vec4)

	// SetColorRGB sets the albedo color from an RGB triple with alpha 1.
	//
	// Parameters:
	//   - color: the new color
	SetColorRGB(color mgl32.Vec3)

	// Metallic retrieves the metallic factor in [0,1].
	//
	// Returns:
	//   - float32: the metallic factor
	Metallic() float32

	// SetMetallic sets the metallic factor.
	//
	// Parameters:
	//   - v: the new metallic factor
	SetMetallic(v float32)

	// Roughness retrieves the roughness factor in [0,1].
	//
	// Returns:
	//   - float32: the roughness factor
	Roughness() float32

	// SetRoughness sets the roughness factor.
	//
	// Parameters:
	//   - v: the new roughness factor
	SetRoughness(v float32)

	// Emission retrieves the emission strength.
	//
	// Returns:
	//   - float32: the emission strength
	Emission() float32

	// SetEmission sets the emission strength.
	//
	// Parameters:
	//   - v: the new emission strength
	SetEmission(v float32)

	// AmbientOcclusion retrieves the ambient occlusion factor.
	//
	// Returns:
	//   - float32: the ambient occlusion factor
	AmbientOcclusion() float32

	// SetAmbientOcclusion sets the ambient occlusion factor.
	//
	// Parameters:
	//   - v: the new ambient occlusion factor
	SetAmbientOcclusion(v float32)

	// AlbedoTexture retrieves the repository texture used for albedo, or 0 if none.
	//
	// Returns:
	//   - common.AssetID: the albedo texture id
	AlbedoTexture() common.AssetID

	// SetAlbedoTexture sets the repository texture used for albedo. 0 clears it.
	//
	// Parameters:
	//   - id: the albedo texture id
	SetAlbedoTexture(id common.AssetID)

	// MaterialTexture retrieves the repository texture packing metallic, roughness, emission
	// and ambient occlusion, or 0 if none.
	//
	// Returns:
	//   - common.AssetID: the material texture id
	MaterialTexture() common.AssetID

	// SetMaterialTexture sets the packed material texture. 0 clears it.
	//
	// Parameters:
	//   - id: the material texture id
	SetMaterialTexture(id common.AssetID)

	// Transparency retrieves the transparency mode.
	//
	// Returns:
	//   - Transparency: the transparency mode
	Transparency() Transparency

	// SetTransparency sets the transparency mode.
	//
	// Parameters:
	//   - t: the new transparency mode
	SetTransparency(t Transparency)

	// SetParameter stores a custom shader parameter. The value must be one of bool, int32,
	// uint32, float32, mgl32.Vec3 or mgl32.Quat; int, uint and float64 are narrowed.
	//
	// Parameters:
	//   - tag: the uniform name the parameter is uploaded to
	//   - value: the parameter value
	//
	// Returns:
	//   - error: common.ErrTypeMismatch if the value type is outside the parameter domain
	SetParameter(tag string, value any) error

	// Parameter retrieves a custom shader parameter.
	//
	// Parameters:
	//   - tag: the parameter tag
	//
	// Returns:
	//   - any: the stored value
	//   - bool: true if the parameter exists
	Parameter(tag string) (any, bool)

	// RemoveParameter deletes a custom shader parameter.
	//
	// Parameters:
	//   - tag: the parameter tag
	RemoveParameter(tag string)

	// ParameterTags returns the custom parameter tags in sorted order.
	//
	// Returns:
	//   - []string: the parameter tags
	ParameterTags() []string

	// Shader retrieves a named shader reference, or 0 if the tag is not set.
	//
	// Parameters:
	//   - tag: the shader tag
	//
	// Returns:
	//   - common.AssetID: the shader id
	Shader(tag string) common.AssetID

	// SetShader stores a named shader reference.
	//
	// Parameters:
	//   - tag: the shader tag
	//   - id: the shader id
	SetShader(tag string, id common.AssetID)

	// HasShader reports whether a named shader reference exists.
	//
	// Parameters:
	//   - tag: the shader tag
	//
	// Returns:
	//   - bool: true if the tag is set
	HasShader(tag string) bool

	// Shaders returns a copy of the named shader references.
	//
	// Returns:
	//   - map[string]common.AssetID: the shader references
	Shaders() map[string]common.AssetID

	// Texture retrieves a named texture reference, or 0 if the tag is not set.
	//
	// Parameters:
	//   - tag: the texture tag
	//
	// Returns:
	//   - common.AssetID: the texture id
	Texture(tag string) common.AssetID

	// SetTexture stores a named texture reference.
	//
	// Parameters:
	//   - tag: the texture tag
	//   - id: the texture id
	SetTexture(tag string, id common.AssetID)

	// HasTexture reports whether a named texture reference exists.
	//
	// Parameters:
	//   - tag: the texture tag
	//
	// Returns:
	//   - bool: true if the tag is set
	HasTexture(tag string) bool

	// Textures returns a copy of the named texture references.
	//
	// Returns:
	//   - map[string]common.AssetID: the texture references
	Textures() map[string]common.AssetID
}

var _ Material = &material{}

// NewMaterial creates a new Material with white color, metallic 0, roughness 0.9,
// emission 0, ambient occlusion 0.5 and opaque transparency.
//
// Parameters:
//   - opts: optional MaterialBuilderOption functions
//
// Returns:
//   - Material: the new material
func NewMaterial(opts ...MaterialBuilderOption) Material {
	m := &material{
		color:            mgl32.Vec4{1, 1, 1, 1},
		metallic:         DefaultMetallic,
		roughness:        DefaultRoughness,
		emission:         DefaultEmission,
		ambientOcclusion: DefaultAmbientOcclusion,
		transparency:     TransparencyOpaque,
		parameters:       make(map[string]any),
		shaders:          make(map[string]common.AssetID),
		textures:         make(map[string]common.AssetID),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.id == 0 {
		m.id = common.NewAssetID()
	}
	return m
}

// NormalizeParameter narrows value into the custom parameter domain.
//
// Parameters:
//   - value: the candidate value
//
// Returns:
//   - any: the normalized value
//   - bool: false if the value type is outside the domain
func NormalizeParameter(value any) (any, bool) {
	switch v := value.(type) {
	case bool, int32, uint32, float32, mgl32.Vec3, mgl32.Quat:
		return v, true
	case int:
		return int32(v), true
	case uint:
		return uint32(v), true
	case float64:
		return float32(v), true
	default:
		return nil, false
	}
}

func (m *material) ID() common.AssetID {
	return m.id
}

func (m *material) Name() string {
	return m.name
}

func (m *material) Color() mgl32.Vec4 {
	return m.color
}

func (m *material) SetColor(color mgl32.Vec4) {
	m.color = color
}

func (m *material) SetColorRGB(color mgl32.Vec3) {
	m.color = color.Vec4(1)
}

func (m *material) Metallic() float32 {
	return m.metallic
}

func (m *material) SetMetallic(v float32) {
	m.metallic = v
}

func (m *material) Roughness() float32 {
	return m.roughness
}

func (m *material) SetRoughness(v float32) {
	m.roughness = v
}

func (m *material) Emission() float32 {
	return m.emission
}

func (m *material) SetEmission(v float32) {
	m.emission = v
}

func (m *material) AmbientOcclusion() float32 {
	return m.ambientOcclusion
}

func (m *material) SetAmbientOcclusion(v float32) {
	m.ambientOcclusion = v
}

func (m *material) AlbedoTexture() common.AssetID {
	return m.albedoTexture
}

func (m *material) SetAlbedoTexture(id common.AssetID) {
	m.albedoTexture = id
}

func (m *material) MaterialTexture() common.AssetID {
	return m.materialTexture
}

func (m *material) SetMaterialTexture(id common.AssetID) {
	m.materialTexture = id
}

func (m *material) Transparency() Transparency {
	return m.transparency
}

func (m *material) SetTransparency(t Transparency) {
	m.transparency = t
}

func (m *material) SetParameter(tag string, value any) error {
	v, ok := NormalizeParameter(value)
	if !ok {
		return fmt.Errorf("%w: material parameter %q has unsupported type %T", common.ErrTypeMismatch, tag, value)
	}
	m.parameters[tag] = v
	return nil
}

func (m *material) Parameter(tag string) (any, bool) {
	v, ok := m.parameters[tag]
	return v, ok
}

func (m *material) RemoveParameter(tag string) {
	delete(m.parameters, tag)
}

func (m *material) ParameterTags() []string {
	tags := make([]string, 0, len(m.parameters))
	for t := range m.parameters {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return tags
}

func (m *material) Shader(tag string) common.AssetID {
	return m.shaders[tag]
}

func (m *material) SetShader(tag string, id common.AssetID) {
	m.shaders[tag] = id
}

func (m *material) HasShader(tag string) bool {
	_, ok := m.shaders[tag]
	return ok
}

func (m *material) Shaders() map[string]common.AssetID {
	return copyIDs(m.shaders)
}

func (m *material) Texture(tag string) common.AssetID {
	return m.textures[tag]
}

func (m *material) SetTexture(tag string, id common.AssetID) {
	m.textures[tag] = id
}

func (m *material) HasTexture(tag string) bool {
	_, ok := m.textures[tag]
	return ok
}

func (m *material) Textures() map[string]common.AssetID {
	return copyIDs(m.textures)
}

func copyIDs(in map[string]common.AssetID) map[string]common.AssetID {
	out := make(map[string]common.AssetID, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
