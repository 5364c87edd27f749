package common

import (
	"errors"
	"fmt"
)

var (
	// ErrBuild is returned when a shader program fails to compile or link, or a framebuffer cannot be completed.
	ErrBuild = errors.New("build error")
	// ErrFramebufferIncomplete is returned when the graphics API reports an incomplete framebuffer.
	ErrFramebufferIncomplete = fmt.Errorf("%w: framebuffer incomplete", ErrBuild)
	// ErrLookup is returned when an AssetID or parameter key is not present.
	ErrLookup = errors.New("lookup error")
	// ErrTypeMismatch is returned when a typed read finds a value of a different type.
	ErrTypeMismatch = errors.New("type mismatch")
	// ErrUnknownUniformType is returned when a uniform value has no upload rule.
	ErrUnknownUniformType = errors.New("unknown uniform type")
	// ErrInvalidMesh is returned when mesh vertex data does not match its layout.
	ErrInvalidMesh = errors.New("invalid mesh")
	// ErrInvalidInstanceData is returned when submitted instance values do not match the group layout.
	ErrInvalidInstanceData = errors.New("invalid instance data")
	// ErrDuplicateDepth is returned when a second depth attachment is added to a framebuffer.
	ErrDuplicateDepth = errors.New("framebuffer already has a depth attachment")
)

// BuildError carries the compiler or linker log of a failed shader build.
type BuildError struct {
	// Stage is the pipeline stage that failed ("vertex", "fragment", "geometry" or "link").
	Stage string
	// Path is the source file of the failing stage, empty for link errors.
	Path string
	// Log is the info log reported by the driver.
	Log string
}

func (e *BuildError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("build error: %s stage %s: %s", e.Stage, e.Path, e.Log)
	}
	return fmt.Sprintf("build error: %s: %s", e.Stage, e.Log)
}

func (e *BuildError) Unwrap() error {
	return ErrBuild
}

// LookupError wraps ErrLookup with the kind and key of the missing entry.
//
// Parameters:
//   - kind: what was looked up ("mesh", "shader", "parameter", ...)
//   - key: the missing key
//
// Returns:
//   - error: an error matching ErrLookup under errors.Is
func LookupError(kind string, key any) error {
	return fmt.Errorf("%w: %s %v", ErrLookup, kind, key)
}
