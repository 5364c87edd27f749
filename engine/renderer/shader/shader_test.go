package shader

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-gl/common"
)

func writeFile(t *testing.T, dir, name, content string) common.Path {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return common.Path(p)
}

func TestNewShaderDefaults(t *testing.T) {
	s := NewShader("a.vert", "a.frag")
	if s.ID() == 0 {
		t.Fatal("expected generated id")
	}
	if s.Geometry() != "" {
		t.Errorf("Geometry = %q, want empty", s.Geometry())
	}
	if s.UseDefaultMaterial() {
		t.Error("default material should be off")
	}

	g := NewShader("a.vert", "a.frag", WithID(7), WithGeometry("a.geom"), WithDefaultMaterial(true), WithUniforms("uScatter"))
	if g.ID() != 7 || g.Geometry() != "a.geom" || !g.UseDefaultMaterial() {
		t.Errorf("options not applied: id=%d geom=%q default=%v", g.ID(), g.Geometry(), g.UseDefaultMaterial())
	}
	if !g.DeclaresUniform("uScatter") {
		t.Error("uScatter should be declared")
	}
}

func TestPreProcessorIncludes(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "lib/common.glsl", "float half(float x) { return x * 0.5; }")
	writeFile(t, dir, "lib/light.glsl", "#include \"common.glsl\"\nstruct DirectionalLight {\n    vec3 direction;\n    vec3 color;\n    float intensity;\n};")
	main := writeFile(t, dir, "main.frag", "#version 410 core\n#include \"lib/light.glsl\"\n#include \"lib/common.glsl\"\nuniform DirectionalLight uDLight;\nvoid main() {}")

	pp := NewPreProcessor()
	out, err := pp.Process(main)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if strings.Contains(out, "#include") {
		t.Errorf("include directive left in output:\n%s", out)
	}
	if n := strings.Count(out, "float half"); n != 1 {
		t.Errorf("common.glsl spliced %d times, want 1", n)
	}
	if !strings.HasPrefix(out, "#version 410 core") {
		t.Errorf("version line moved:\n%s", out)
	}

	want := []string{"uDLight.color", "uDLight.direction", "uDLight.intensity"}
	got := pp.Uniforms()
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("Uniforms = %v, want %v", got, want)
	}
}

func TestPreProcessorIncludeCycle(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.glsl", "#include \"b.glsl\"")
	writeFile(t, dir, "b.glsl", "#include \"a.glsl\"")
	main := writeFile(t, dir, "main.vert", "#include \"a.glsl\"")

	if _, err := NewPreProcessor().Process(main); err == nil || !strings.Contains(err.Error(), "include cycle") {
		t.Fatalf("expected include cycle error, got %v", err)
	}
}

func TestPreProcessorUniformDiscovery(t *testing.T) {
	dir := t.TempDir()
	src := strings.Join([]string{
		"#version 410 core",
		"#define MAX_CASCADES 2",
		"uniform vec3 uScatter;",
		"uniform highp float uGamma; // gamma",
		"layout(std140) uniform mat4 uView;",
		"uniform mat4 uLightSpaces[MAX_CASCADES];",
		"uniform float uCascadeFars[3];",
		"// uniform float uCommented;",
		"in vec3 vNormal;",
	}, "\n")
	path := writeFile(t, dir, "lighting.frag", src)

	pp := NewPreProcessor()
	if _, err := pp.Process(path); err != nil {
		t.Fatalf("Process: %v", err)
	}
	got := make(map[string]bool)
	for _, n := range pp.Uniforms() {
		got[n] = true
	}
	for _, n := range []string{"uScatter", "uGamma", "uView", "uLightSpaces", "uLightSpaces[0]", "uLightSpaces[1]", "uCascadeFars[2]"} {
		if !got[n] {
			t.Errorf("missing uniform %q in %v", n, pp.Uniforms())
		}
	}
	for _, n := range []string{"uCommented", "vNormal", "uLightSpaces[2]"} {
		if got[n] {
			t.Errorf("unexpected uniform %q", n)
		}
	}
}

func TestLoadSources(t *testing.T) {
	dir := t.TempDir()
	vert := writeFile(t, dir, "sky.vert", "#version 410 core\nuniform mat4 uInverseViewProjection;\nvoid main() {}")
	frag := writeFile(t, dir, "sky.frag", "#version 410 core\nuniform vec3 uScatter;\nvoid main() {}")

	s := NewShader(vert, frag)
	src, err := LoadSources(s)
	if err != nil {
		t.Fatalf("LoadSources: %v", err)
	}
	if src.Geometry != "" {
		t.Errorf("unexpected geometry source")
	}
	if !s.DeclaresUniform("uScatter") || !s.DeclaresUniform("uInverseViewProjection") {
		t.Errorf("uniforms not discovered: %v", s.Uniforms())
	}

	missing := NewShader(vert, common.Path(filepath.Join(dir, "missing.frag")))
	_, err = LoadSources(missing)
	if !errors.Is(err, common.ErrBuild) {
		t.Fatalf("expected build error, got %v", err)
	}
	var be *common.BuildError
	if !errors.As(err, &be) || be.Stage != "read" {
		t.Errorf("expected read-stage BuildError, got %#v", err)
	}
}

func TestLoadAll(t *testing.T) {
	dir := t.TempDir()
	vert := writeFile(t, dir, "q.vert", "void main() {}")
	frag := writeFile(t, dir, "q.frag", "uniform float uGamma;\nvoid main() {}")

	var shaders []Shader
	for i := 0; i < 8; i++ {
		shaders = append(shaders, NewShader(vert, frag))
	}
	bad := NewShader(vert, common.Path(filepath.Join(dir, "nope.frag")))
	shaders = append(shaders, bad)

	out, err := LoadAll(NewLoaderPool(3), shaders)
	if !errors.Is(err, common.ErrBuild) {
		t.Fatalf("expected joined build error, got %v", err)
	}
	if len(out) != 8 {
		t.Fatalf("loaded %d shaders, want 8", len(out))
	}
	if _, ok := out[bad.ID()]; ok {
		t.Error("failed shader should not be in the result")
	}
	for _, s := range shaders[:8] {
		if !s.DeclaresUniform("uGamma") {
			t.Errorf("shader %d missing uGamma", s.ID())
		}
	}
}
