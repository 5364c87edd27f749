package pass

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/go-gl/mathgl/mgl32"
)

// Configuration keys of the parameter bag.
const (
	KeyShaderPath       = "default_shader_path"
	KeySkyboxMaterial   = "skybox_material"
	KeyPointLightGroup  = "point_light_group_id"
	KeyCascadeCount     = "cascade_count"
	KeyShadowBufferSize = "shadow_buffer_size"
	KeyRenderShadow     = "render_shadow"
	KeyRenderBloom      = "render_bloom"
	KeyRenderFXAA       = "render_fxaa"
	KeyBloomMipLevels   = "bloom_mipmap_levels"
	KeyBloomStrength    = "bloom_strength"
	KeyGamma            = "gamma"
	KeyFogColor         = "fog_color"
	KeyFogNear          = "fog_near"
	KeyFogFar           = "fog_far"
)

// Keys of the assets shared between passes.
const (
	KeyQuadMesh       = "quad_mesh_id"
	KeyColorBuffer    = "color_buffer_id"
	KeyGeometryBuffer = "geometry_buffer_id"
)

// Keys of the pass-owned shader programs.
const (
	KeySkyboxShader            = "skybox_shader_id"
	KeyDepthShader             = "depth_shader_id"
	KeyInstancedDepthShader    = "instanced_depth_shader_id"
	KeyGeometryShader          = "geometry_shader_id"
	KeyInstancedGeometryShader = "instanced_geometry_shader_id"
	KeyLightingShader          = "lighting_shader_id"
	KeyPointLightShader        = "point_light_shader_id"
	KeyBloomDownsampleShader   = "bloom_downsample_shader_id"
	KeyBloomUpsampleShader     = "bloom_upsample_shader_id"
	KeyFinalShader             = "final_shader_id"
	KeyFXAAShader              = "fxaa_shader_id"
)

// Default parameter values.
const (
	DefaultCascadeCount     uint64      = 4
	DefaultShadowBufferSize uint64      = 2048
	DefaultBloomMipLevels   common.Size = 3
	DefaultBloomStrength    float32     = 0.3
	DefaultGamma            float32     = 2.2
	DefaultFogNear          float32     = 200
	DefaultFogFar           float32     = 300
	DefaultFilterRadius     float32     = 0.005
)

// DefaultFogColor is the default fog_color.
var DefaultFogColor = mgl32.Vec3{0.5, 0.5, 0.5}

// ShadowBufferKey returns the key of the shadow framebuffer of cascade i.
func ShadowBufferKey(i int) string {
	return fmt.Sprintf("shadow_buffer_id_%d", i)
}

// LightSpaceKey returns the key of the light-space matrix of cascade i.
func LightSpaceKey(i int) string {
	return fmt.Sprintf("light_space_matrix_%d", i)
}

// BloomFramebufferKey returns the key of bloom mip framebuffer i.
func BloomFramebufferKey(i int) string {
	return fmt.Sprintf("bloom_framebuffer_id_%d", i)
}

// NormalizeParameter maps a value onto the parameter domain: bool, int, uint64, float32,
// mgl32.Vec2, mgl32.Vec3, mgl32.Vec4, mgl32.Quat, mgl32.Mat4, common.Path, common.AssetID
// and common.Size. Other integer widths narrow or widen to int and uint64, float64 narrows
// to float32 and string becomes a Path.
//
// Parameters:
//   - value: the value to normalize
//
// Returns:
//   - any: the normalized value
//   - bool: false if the value has no place in the domain
func NormalizeParameter(value any) (any, bool) {
	switch v := value.(type) {
	case bool, int, uint64, float32, mgl32.Vec2, mgl32.Vec3, mgl32.Vec4, mgl32.Quat, mgl32.Mat4,
		common.Path, common.AssetID, common.Size:
		return v, true
	case int32:
		return int(v), true
	case int64:
		return int(v), true
	case uint:
		return uint64(v), true
	case uint32:
		return uint64(v), true
	case float64:
		return float32(v), true
	case string:
		return common.Path(v), true
	default:
		return nil, false
	}
}

// Get returns the parameter stored under key as a T.
//
// Parameters:
//   - rd: the render data holding the bag
//   - key: the parameter key
//
// Returns:
//   - T: the value
//   - error: common.ErrLookup if the key is absent, common.ErrTypeMismatch if the stored value is not a T
func Get[T any](rd RenderData, key string) (T, error) {
	var zero T
	v, ok := rd.Parameter(key)
	if !ok {
		return zero, common.LookupError("parameter", key)
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("%w: parameter %q holds %T, not %T", common.ErrTypeMismatch, key, v, zero)
	}
	return t, nil
}

// GetOr returns the parameter stored under key as a T, or fallback when the key is absent.
//
// Parameters:
//   - rd: the render data holding the bag
//   - key: the parameter key
//   - fallback: the value used when key is absent
//
// Returns:
//   - T: the value or fallback
//   - error: common.ErrTypeMismatch if the stored value is not a T
func GetOr[T any](rd RenderData, key string, fallback T) (T, error) {
	v, err := Get[T](rd, key)
	if errors.Is(err, common.ErrLookup) {
		return fallback, nil
	}
	return v, err
}

// indexedKeys returns key(0), key(1), ... up to the first index with no parameter.
func indexedKeys(rd RenderData, key func(int) string) []string {
	var keys []string
	for i := 0; ; i++ {
		k := key(i)
		if _, ok := rd.Parameter(k); !ok {
			return keys
		}
		keys = append(keys, k)
	}
}
