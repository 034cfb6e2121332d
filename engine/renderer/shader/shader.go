// Package shader implements the data-driven shader definition: named uniform
// and texture properties mapped to byte-exact GPU layouts, and named
// sub-shader passes carrying WGSL source pairs plus fixed-function state.
// Definitions are parsed once at load time, built once against a device, and
// immutable thereafter.
package shader

import (
	"fmt"
	"os"

	"github.com/cogentcore/webgpu/wgpu"
)

// shader is the implementation of the Shader interface.
type shader struct {
	name          string
	uniformLayout UniformLayout
	textureSlots  TextureSlotTable
	subShaders    []*SubShader

	bindGroupLayout *wgpu.BindGroupLayout
	built           bool

	pp PreProcessor
}

// Shader is a parsed shader definition. The uniform layout and texture slot
// table are derived at construction; Build compiles the sub-shader modules
// and creates the material bind-group layout, and must succeed before
// pipeline creation or material building.
type Shader interface {
	// Name returns the shader's unique name.
	//
	// Returns:
	//   - string: the shader name
	Name() string

	// UniformLayout returns the packed layout of the material uniform block.
	//
	// Returns:
	//   - UniformLayout: the byte layout
	UniformLayout() UniformLayout

	// TextureSlots returns the texture binding slot table.
	//
	// Returns:
	//   - TextureSlotTable: the slot table
	TextureSlots() TextureSlotTable

	// SubShader retrieves a pass by tag. A missing tag is an absent lookup,
	// not an error; draw code skips the pass.
	//
	// Parameters:
	//   - tag: the pass tag (e.g. ForwardBase)
	//
	// Returns:
	//   - *SubShader: the pass
	//   - bool: false when the tag is not declared
	SubShader(tag string) (*SubShader, bool)

	// SubShaders returns all passes in declaration order.
	//
	// Returns:
	//   - []*SubShader: the declared passes
	SubShaders() []*SubShader

	// Build compiles every sub-shader's vertex and fragment modules with its
	// definition set applied, then creates the combined material bind-group
	// layout (binding 0 uniform buffer, then view/sampler pairs at the slot
	// table's bindings). Build is once-only: calling it again after success
	// is a no-op. On failure no partial state is retained.
	//
	// Parameters:
	//   - device: the wgpu device
	//
	// Returns:
	//   - error: a compile error with the offending pass named, or nil
	Build(device *wgpu.Device) error

	// Built reports whether Build has succeeded.
	//
	// Returns:
	//   - bool: true after a successful Build
	Built() bool

	// BindGroupLayout returns the material bind-group layout.
	//
	// Returns:
	//   - *wgpu.BindGroupLayout: the layout
	//   - error: ErrNotBuilt before a successful Build
	BindGroupLayout() (*wgpu.BindGroupLayout, error)

	// Release frees the compiled pass modules and the material bind-group
	// layout, returning the shader to the unbuilt state. Pipelines and
	// materials already created from the shader keep their own resources.
	Release()
}

var _ Shader = &shader{}

// New creates a Shader from its parsed parts. The uniform layout and texture
// slot table are computed immediately; GPU objects are deferred to Build.
//
// Parameters:
//   - name: the unique shader name
//   - uniforms: uniform properties in declaration order
//   - textures: texture properties in declaration order
//   - subShaders: the declared passes, tags unique
//
// Returns:
//   - Shader: the unbuilt shader
func New(name string, uniforms []NamedUniform, textures []NamedTexture, subShaders []*SubShader) Shader {
	if name == "" {
		panic("shader: name must not be empty")
	}
	seen := make(map[string]bool, len(subShaders))
	for _, sub := range subShaders {
		if seen[sub.Tag] {
			panic(fmt.Sprintf("shader: %s declares duplicate sub-shader tag %q", name, sub.Tag))
		}
		seen[sub.Tag] = true
	}
	return &shader{
		name:          name,
		uniformLayout: NewUniformLayout(uniforms),
		textureSlots:  NewTextureSlotTable(textures),
		subShaders:    subShaders,
		pp:            NewPreProcessor(),
	}
}

func (s *shader) Name() string {
	return s.name
}

func (s *shader) UniformLayout() UniformLayout {
	return s.uniformLayout
}

func (s *shader) TextureSlots() TextureSlotTable {
	return s.textureSlots
}

func (s *shader) SubShader(tag string) (*SubShader, bool) {
	for _, sub := range s.subShaders {
		if sub.Tag == tag {
			return sub, true
		}
	}
	return nil, false
}

func (s *shader) SubShaders() []*SubShader {
	return s.subShaders
}

func (s *shader) Built() bool {
	return s.built
}

func (s *shader) BindGroupLayout() (*wgpu.BindGroupLayout, error) {
	if !s.built {
		return nil, fmt.Errorf("shader %s: %w", s.name, ErrNotBuilt)
	}
	return s.bindGroupLayout, nil
}

func (s *shader) Build(device *wgpu.Device) error {
	if s.built {
		return nil
	}

	// Compile into local state first so a failed build leaves the shader
	// fully unbuilt.
	type compiled struct {
		vs, fs *wgpu.ShaderModule
	}
	modules := make([]compiled, 0, len(s.subShaders))
	releaseAll := func() {
		for _, m := range modules {
			if m.vs != nil {
				m.vs.Release()
			}
			if m.fs != nil {
				m.fs.Release()
			}
		}
	}

	for _, sub := range s.subShaders {
		vs, err := s.compileModule(device, sub.VertexPath, sub.Definitions)
		if err != nil {
			releaseAll()
			return fmt.Errorf("shader %s pass %s: %w", s.name, sub.Tag, err)
		}
		fs, err := s.compileModule(device, sub.FragmentPath, sub.Definitions)
		if err != nil {
			vs.Release()
			releaseAll()
			return fmt.Errorf("shader %s pass %s: %w", s.name, sub.Tag, err)
		}
		modules = append(modules, compiled{vs: vs, fs: fs})
	}

	entries := make([]wgpu.BindGroupLayoutEntry, 0, 1+2*s.textureSlots.Len())
	entries = append(entries, UniformEntry(0))
	for i, tex := range s.textureSlots.Properties() {
		entries = append(entries, TextureEntry(uint32(i)*2+1, tex.Property.Kind.ViewDimension()))
		entries = append(entries, SamplerEntry(uint32(i)*2+2))
	}
	layout, err := device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label:   s.name + " Bind Group Layout",
		Entries: entries,
	})
	if err != nil {
		releaseAll()
		return fmt.Errorf("shader %s: failed to create bind group layout: %w", s.name, err)
	}

	for i, sub := range s.subShaders {
		sub.vertexModule = modules[i].vs
		sub.fragmentModule = modules[i].fs
	}
	s.bindGroupLayout = layout
	s.built = true
	return nil
}

func (s *shader) Release() {
	for _, sub := range s.subShaders {
		if sub.vertexModule != nil {
			sub.vertexModule.Release()
			sub.vertexModule = nil
		}
		if sub.fragmentModule != nil {
			sub.fragmentModule.Release()
			sub.fragmentModule = nil
		}
	}
	if s.bindGroupLayout != nil {
		s.bindGroupLayout.Release()
		s.bindGroupLayout = nil
	}
	s.built = false
}

func (s *shader) compileModule(device *wgpu.Device, path string, definitions map[string]*string) (*wgpu.ShaderModule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read shader source %s: %w", path, err)
	}
	source, err := s.pp.Process(string(data), definitions)
	if err != nil {
		return nil, fmt.Errorf("failed to pre-process %s: %w", path, err)
	}
	module, err := device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: path,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: source,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to compile %s: %w", path, err)
	}
	return module, nil
}
