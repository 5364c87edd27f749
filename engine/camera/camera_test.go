package camera

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/component"
	"github.com/go-gl/mathgl/mgl32"
)

func TestCameraDefaults(t *testing.T) {
	c := NewCamera()
	if c.Fov() != DefaultFov || c.Near() != DefaultNear || c.Far() != DefaultFar {
		t.Errorf("unexpected defaults fov=%f near=%f far=%f", c.Fov(), c.Near(), c.Far())
	}
	c = NewCamera(WithFar(500), WithNear(1))
	if c.Far() != 500 || c.Near() != 1 {
		t.Errorf("options not applied: near=%f far=%f", c.Near(), c.Far())
	}
}

func TestPerspectiveFarMapsFarPlaneToOne(t *testing.T) {
	c := NewCamera()
	proj := c.PerspectiveFar(16.0/9.0, 50)
	p := proj.Mul4x1(mgl32.Vec4{0, 0, -50, 1})
	if ndc := p.Z() / p.W(); mgl32.Abs(ndc-1) > 1e-4 {
		t.Errorf("far plane NDC z = %f, want 1", ndc)
	}
}

func TestControllerPitchClamp(t *testing.T) {
	cc := NewCameraController()
	cc.OnMouseMove(0, 0)
	cc.OnMouseMove(0, -10000)
	if cc.Pitch() != DefaultPitchLimit {
		t.Errorf("pitch = %f, want clamp %f", cc.Pitch(), DefaultPitchLimit)
	}
	cc.OnMouseMove(100, -10000)
	if want := -100 * DefaultSensitivity; mgl32.Abs(cc.Yaw()-want) > 1e-5 {
		t.Errorf("yaw = %f, want %f", cc.Yaw(), want)
	}
}

func TestControllerMovesAlongFront(t *testing.T) {
	cc := NewCameraController(WithSpeed(10))
	tr := component.NewTransform()
	cc.OnKeyDown(common.KeyW)
	cc.Update(tr, 0.5)
	if !vecNear(tr.Position(), mgl32.Vec3{0, 0, -5}) {
		t.Errorf("position = %v, want (0,0,-5)", tr.Position())
	}
	cc.OnKeyUp(common.KeyW)
	cc.Update(tr, 0.5)
	if !vecNear(tr.Position(), mgl32.Vec3{0, 0, -5}) {
		t.Errorf("moved after key release: %v", tr.Position())
	}
}

// vecNear compares a and b component-wise with an absolute tolerance.
func vecNear(a, b mgl32.Vec3) bool {
	for i := range a {
		if mgl32.Abs(a[i]-b[i]) > 1e-5 {
			return false
		}
	}
	return true
}
