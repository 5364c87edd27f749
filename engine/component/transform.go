// package component contains the plain data components attached to scene entities.
package component

import (
	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/go-gl/mathgl/mgl32"
)

// Transform holds the local and global placement of an entity.
//
// Mutators write the global placement directly and derive the local one from the parent,
// if any. Rotations are normalized on every write. Any mutation sets the changed flag,
// which systems clear once they have consumed it.
type Transform struct {
	parent *Transform

	position mgl32.Vec3
	scale    mgl32.Vec3
	rotation mgl32.Quat

	localPosition mgl32.Vec3
	localScale    mgl32.Vec3
	localRotation mgl32.Quat

	changed bool
}

// NewTransform creates an identity transform at the origin.
//
// Returns:
//   - *Transform: the new transform, marked as changed
func NewTransform() *Transform {
	return &Transform{
		scale:         mgl32.Vec3{1, 1, 1},
		rotation:      mgl32.QuatIdent(),
		localScale:    mgl32.Vec3{1, 1, 1},
		localRotation: mgl32.QuatIdent(),
		changed:       true,
	}
}

// NewTransformAt creates a transform at position with unit scale and no rotation.
//
// Parameters:
//   - position: world position
//
// Returns:
//   - *Transform: the new transform
func NewTransformAt(position mgl32.Vec3) *Transform {
	t := NewTransform()
	t.SetPosition(position)
	return t
}

// Parent returns the parent transform, or nil.
func (t *Transform) Parent() *Transform {
	return t.parent
}

// SetParent attaches t to parent, keeping the current global placement.
//
// Parameters:
//   - parent: the parent transform, or nil to detach
func (t *Transform) SetParent(parent *Transform) {
	t.parent = parent
	t.deriveLocal()
}

func (t *Transform) Position() mgl32.Vec3 {
	return t.position
}

func (t *Transform) Scale() mgl32.Vec3 {
	return t.scale
}

func (t *Transform) Rotation() mgl32.Quat {
	return t.rotation
}

func (t *Transform) LocalPosition() mgl32.Vec3 {
	return t.localPosition
}

func (t *Transform) LocalScale() mgl32.Vec3 {
	return t.localScale
}

func (t *Transform) LocalRotation() mgl32.Quat {
	return t.localRotation
}

// SetPosition sets the world position.
func (t *Transform) SetPosition(position mgl32.Vec3) {
	t.position = position
	t.deriveLocal()
}

// Translate moves the transform by delta in world space.
func (t *Transform) Translate(delta mgl32.Vec3) {
	t.SetPosition(t.position.Add(delta))
}

// SetScale sets the world scale.
func (t *Transform) SetScale(scale mgl32.Vec3) {
	t.scale = scale
	t.deriveLocal()
}

// SetRotation sets the world rotation. The quaternion is normalized.
func (t *Transform) SetRotation(rotation mgl32.Quat) {
	t.rotation = rotation.Normalize()
	t.deriveLocal()
}

// SetEuler sets the world rotation from Euler angles in degrees.
func (t *Transform) SetEuler(degrees mgl32.Vec3) {
	t.SetRotation(common.EulerToQuat(degrees))
}

// Rotate applies an additional rotation of degrees around a world-space axis.
func (t *Transform) Rotate(axis mgl32.Vec3, degrees float32) {
	q := mgl32.QuatRotate(mgl32.DegToRad(degrees), axis.Normalize())
	t.SetRotation(q.Mul(t.rotation))
}

// RotateEuler applies an additional rotation given as Euler angles in degrees.
func (t *Transform) RotateEuler(degrees mgl32.Vec3) {
	t.SetRotation(common.EulerToQuat(degrees).Mul(t.rotation))
}

// Front returns the forward (-Z) axis of the rotation.
func (t *Transform) Front() mgl32.Vec3 {
	return t.rotation.Rotate(common.WorldForward).Normalize()
}

// Up returns the up (+Y) axis of the rotation.
func (t *Transform) Up() mgl32.Vec3 {
	return t.rotation.Rotate(common.WorldUp).Normalize()
}

// Right returns the right (+X) axis of the rotation.
func (t *Transform) Right() mgl32.Vec3 {
	return t.rotation.Rotate(common.WorldRight).Normalize()
}

// View returns the world-to-view matrix for an observer at this transform.
func (t *Transform) View() mgl32.Mat4 {
	return mgl32.LookAtV(t.position, t.position.Add(t.Front()), t.Up())
}

// Model returns the local-to-world matrix.
func (t *Transform) Model() mgl32.Mat4 {
	return common.BuildModelMatrix(t.position, t.rotation, t.scale)
}

// Changed reports whether the transform was mutated since the last ClearChanged.
func (t *Transform) Changed() bool {
	return t.changed
}

// ClearChanged resets the changed flag.
func (t *Transform) ClearChanged() {
	t.changed = false
}

// deriveLocal recomputes the local placement from the global one and marks the transform changed.
func (t *Transform) deriveLocal() {
	t.changed = true
	if t.parent == nil {
		t.localPosition = t.position
		t.localScale = t.scale
		t.localRotation = t.rotation
		return
	}
	inv := t.parent.rotation.Inverse()
	ps := t.parent.scale
	rel := inv.Rotate(t.position.Sub(t.parent.position))
	t.localPosition = mgl32.Vec3{safeDiv(rel[0], ps[0]), safeDiv(rel[1], ps[1]), safeDiv(rel[2], ps[2])}
	t.localScale = mgl32.Vec3{safeDiv(t.scale[0], ps[0]), safeDiv(t.scale[1], ps[1]), safeDiv(t.scale[2], ps[2])}
	t.localRotation = inv.Mul(t.rotation).Normalize()
}

func safeDiv(a, b float32) float32 {
	if b == 0 {
		return 0
	}
	return a / b
}
