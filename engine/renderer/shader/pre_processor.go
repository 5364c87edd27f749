// pre_processor.go implements the GLSL pre-processor. It splices #include "file" directives
// relative to the including file and scans the spliced source for uniform declarations so
// the shader's declared-uniform set can be filled without hand-maintained name lists.
//
// Uniform discovery understands:
//   - plain uniforms: uniform vec3 uScatter;
//   - arrays sized by a literal or an integer #define: uniform mat4 uLightSpaces[MAX_CASCADES];
//   - struct-typed uniforms, expanded to their members: uniform DirectionalLight uDLight;
package shader

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/Carmen-Shannon/oxy-gl/common"
)

var (
	includePattern = regexp.MustCompile(`^\s*#include\s+"([^"]+)"\s*$`)
	definePattern  = regexp.MustCompile(`^\s*#define\s+(\w+)\s+(\d+)\s*$`)
	structPattern  = regexp.MustCompile(`^\s*struct\s+(\w+)\s*\{?\s*$`)
	memberPattern  = regexp.MustCompile(`^\s*(?:(?:highp|mediump|lowp)\s+)?(\w+)\s+(\w+)\s*(?:\[\s*(\w+)\s*\])?\s*;`)
	uniformPattern = regexp.MustCompile(`^\s*(?:layout\s*\([^)]*\)\s*)?uniform\s+(?:(?:highp|mediump|lowp)\s+)?(\w+)\s+(\w+)\s*(?:\[\s*(\w+)\s*\])?\s*;`)
)

// field is a member of a GLSL struct, or the top-level uniform itself.
type field struct {
	typeName string
	name     string
	length   string
}

// preProcessor is the implementation of the PreProcessor interface.
type preProcessor struct {
	// uniforms accumulates discovered uniform names during a Process call.
	uniforms map[string]struct{}

	// included holds files already spliced during a Process call; repeats are skipped.
	included map[string]struct{}
}

// PreProcessor resolves #include directives in GLSL sources and discovers declared uniforms.
type PreProcessor interface {
	// Process reads the source at path, recursively splicing #include "file" directives
	// (resolved relative to the including file). A file included twice is spliced once;
	// an include cycle is an error. Uniform names found in the spliced source are collected
	// and can be retrieved via Uniforms() after Process returns.
	//
	// Parameters:
	//   - path: the GLSL source file to process
	//
	// Returns:
	//   - string: the spliced GLSL source
	//   - error: an error if a file cannot be read or an include cycle is found
	Process(path common.Path) (string, error)

	// Uniforms returns the uniform names discovered during the most recent call to Process,
	// sorted. Array uniforms yield the base name and every indexed element name; struct
	// uniforms yield one name per member.
	//
	// Returns:
	//   - []string: the discovered uniform names
	Uniforms() []string
}

var _ PreProcessor = &preProcessor{}

// NewPreProcessor creates a new PreProcessor.
//
// Returns:
//   - PreProcessor: a ready-to-use pre-processor instance
func NewPreProcessor() PreProcessor {
	return &preProcessor{}
}

func (p *preProcessor) Process(path common.Path) (string, error) {
	p.uniforms = make(map[string]struct{})
	p.included = make(map[string]struct{})

	var out []string
	if err := p.splice(string(path), nil, &out); err != nil {
		return "", err
	}
	p.scan(out)
	return strings.Join(out, "\n"), nil
}

func (p *preProcessor) Uniforms() []string {
	out := make([]string, 0, len(p.uniforms))
	for n := range p.uniforms {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// splice appends the lines of path to out, expanding includes depth-first.
// stack holds the chain of files currently being expanded.
func (p *preProcessor) splice(path string, stack []string, out *[]string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", path, err)
	}
	for _, s := range stack {
		if s == abs {
			return fmt.Errorf("include cycle: %s -> %s", strings.Join(stack, " -> "), abs)
		}
	}
	if _, ok := p.included[abs]; ok {
		return nil
	}
	p.included[abs] = struct{}{}

	data, err := os.ReadFile(abs)
	if err != nil {
		return fmt.Errorf("read shader source %s: %w", path, err)
	}
	stack = append(stack, abs)

	for i, line := range strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n") {
		m := includePattern.FindStringSubmatch(line)
		if m == nil {
			*out = append(*out, line)
			continue
		}
		target := m[1]
		if !filepath.IsAbs(target) {
			target = filepath.Join(filepath.Dir(abs), target)
		}
		if err := p.splice(target, stack, out); err != nil {
			return fmt.Errorf("%s:%d: %w", path, i+1, err)
		}
	}
	return nil
}

// scan walks the spliced source collecting #define constants, struct definitions, and
// uniform declarations.
func (p *preProcessor) scan(lines []string) {
	defines := make(map[string]int)
	structs := make(map[string][]field)

	var current string
	for _, raw := range lines {
		line := raw
		if i := strings.Index(line, "//"); i >= 0 {
			line = line[:i]
		}

		if current != "" {
			if strings.Contains(line, "}") {
				current = ""
				continue
			}
			if m := memberPattern.FindStringSubmatch(line); m != nil {
				structs[current] = append(structs[current], field{typeName: m[1], name: m[2], length: m[3]})
			}
			continue
		}

		if m := definePattern.FindStringSubmatch(line); m != nil {
			n, _ := strconv.Atoi(m[2])
			defines[m[1]] = n
			continue
		}
		if m := structPattern.FindStringSubmatch(line); m != nil {
			current = m[1]
			structs[current] = nil
			continue
		}
		if m := uniformPattern.FindStringSubmatch(line); m != nil {
			p.expand(field{typeName: m[1], name: m[2], length: m[3]}, "", defines, structs, 0)
		}
	}
}

// expand records f under prefix, recursing into struct members and array elements.
func (p *preProcessor) expand(f field, prefix string, defines map[string]int, structs map[string][]field, depth int) {
	if depth > 8 {
		return
	}
	name := prefix + f.name
	members, isStruct := structs[f.typeName]

	record := func(n string) {
		if !isStruct {
			p.uniforms[n] = struct{}{}
			return
		}
		for _, m := range members {
			p.expand(m, n+".", defines, structs, depth+1)
		}
	}

	if f.length == "" {
		record(name)
		return
	}
	length, err := strconv.Atoi(f.length)
	if err != nil {
		length = defines[f.length]
	}
	if !isStruct {
		p.uniforms[name] = struct{}{}
	}
	for i := 0; i < length; i++ {
		record(fmt.Sprintf("%s[%d]", name, i))
	}
}
