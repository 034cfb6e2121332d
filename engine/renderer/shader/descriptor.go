package shader

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/penumbra3d/penumbra/engine/texture"
)

// MaterialDescription is the declarative form of a material: a unique name
// and the shader it instantiates. Instances are created empty and populated
// later through the material setter contract.
type MaterialDescription struct {
	Name   string `json:"name"`
	Shader string `json:"shader"`
}

// LibraryDescription is the top level of a shader description file: a list of
// shader descriptions (each either inline or a string path to another file
// holding a single shader description) and a list of material descriptions.
type LibraryDescription struct {
	Shaders   []json.RawMessage     `json:"shaders"`
	Materials []MaterialDescription `json:"materials"`
}

// subShaderDescription is the raw JSON form of one sub-shader pass. Optional
// fields are pointers so omitted state falls back to DefaultRasterState.
type subShaderDescription struct {
	Tag        string             `json:"tag"`
	VS         string             `json:"vs"`
	FS         string             `json:"fs"`
	Definition map[string]*string `json:"definition"`

	Cull         *string            `json:"cull"`
	FrontFace    *string            `json:"front_face"`
	WriteMask    []string           `json:"write_mask"`
	Blend        *blendDescription  `json:"blend"`
	DepthWrite   *bool              `json:"depth_write"`
	DepthCompare *string            `json:"depth_compare"`
	Stencil      *stencilDescription `json:"stencil"`
}

type blendDescription struct {
	Op  string `json:"op"`
	Src string `json:"src"`
	Dst string `json:"dst"`

	// Alpha equation fields default to the color equation when omitted.
	OpAlpha  *string `json:"op_alpha"`
	SrcAlpha *string `json:"src_alpha"`
	DstAlpha *string `json:"dst_alpha"`
}

type stencilDescription struct {
	ReadMask  uint32                  `json:"read_mask"`
	WriteMask uint32                  `json:"write_mask"`
	Front     *stencilFaceDescription `json:"front"`
	Back      *stencilFaceDescription `json:"back"`
}

type stencilFaceDescription struct {
	Compare   string `json:"compare"`
	Fail      string `json:"fail"`
	DepthFail string `json:"depth_fail"`
	Pass      string `json:"pass"`
}

// shaderDescription is the raw JSON form of one shader. The property lists
// are positional arrays: [type, name] for uniforms, [type, name, default?]
// for textures.
type shaderDescription struct {
	Name              string                 `json:"name"`
	UniformProperties [][]string             `json:"uniform_properties"`
	TextureProperties [][]string             `json:"texture_properties"`
	SubShaders        []subShaderDescription `json:"subshaders"`
}

// ParseLibraryFile reads and parses a shader description file, returning the
// parsed shaders and the material descriptions it declares. Shader source
// paths are resolved relative to the file's directory.
//
// Parameters:
//   - path: path to the JSON description file
//
// Returns:
//   - []Shader: the parsed, unbuilt shaders
//   - []MaterialDescription: the declared materials
//   - error: an I/O error or a ParseError naming the offending field
func ParseLibraryFile(path string) ([]Shader, []MaterialDescription, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read shader description %s: %w", path, err)
	}
	return ParseLibrary(data, filepath.Dir(path))
}

// ParseLibrary parses shader description JSON. A string entry in the shaders
// array is a single-level indirection: the named file must hold one inline
// shader description object.
//
// Parameters:
//   - data: the raw JSON bytes
//   - baseDir: directory against which shader source and indirection paths resolve
//
// Returns:
//   - []Shader: the parsed, unbuilt shaders
//   - []MaterialDescription: the declared materials
//   - error: an I/O error or a ParseError naming the offending field
func ParseLibrary(data []byte, baseDir string) ([]Shader, []MaterialDescription, error) {
	var lib LibraryDescription
	if err := json.Unmarshal(data, &lib); err != nil {
		return nil, nil, fmt.Errorf("malformed shader description: %w", err)
	}

	shaders := make([]Shader, 0, len(lib.Shaders))
	for _, raw := range lib.Shaders {
		s, err := parseShaderEntry(raw, baseDir, true)
		if err != nil {
			return nil, nil, err
		}
		shaders = append(shaders, s)
	}

	for _, m := range lib.Materials {
		if m.Name == "" {
			return nil, nil, parseErr("materials.name", "", "material name is required")
		}
		if m.Shader == "" {
			return nil, nil, parseErr("materials.shader", "", fmt.Sprintf("material %q must reference a shader", m.Name))
		}
	}

	return shaders, lib.Materials, nil
}

func parseShaderEntry(raw json.RawMessage, baseDir string, allowIndirection bool) (Shader, error) {
	var path string
	if err := json.Unmarshal(raw, &path); err == nil {
		if !allowIndirection {
			return nil, parseErr("shaders", path, "nested file indirection is not allowed")
		}
		resolved := filepath.Join(baseDir, path)
		data, err := os.ReadFile(resolved)
		if err != nil {
			return nil, fmt.Errorf("failed to read referenced shader description %s: %w", resolved, err)
		}
		return parseShaderEntry(data, filepath.Dir(resolved), false)
	}

	var desc shaderDescription
	if err := json.Unmarshal(raw, &desc); err != nil {
		return nil, fmt.Errorf("malformed shader description entry: %w", err)
	}
	return parseShader(desc, baseDir)
}

func parseShader(desc shaderDescription, baseDir string) (Shader, error) {
	if desc.Name == "" {
		return nil, parseErr("name", "", "shader name is required")
	}

	uniforms := make([]NamedUniform, 0, len(desc.UniformProperties))
	for _, entry := range desc.UniformProperties {
		if len(entry) != 2 {
			return nil, parseErr("uniform_properties", fmt.Sprintf("%v", entry), "expected [type, name]")
		}
		prop, err := ParseUniformProperty(entry[0])
		if err != nil {
			return nil, err
		}
		uniforms = append(uniforms, NamedUniform{Name: entry[1], Property: prop})
	}

	textures := make([]NamedTexture, 0, len(desc.TextureProperties))
	for _, entry := range desc.TextureProperties {
		if len(entry) != 2 && len(entry) != 3 {
			return nil, parseErr("texture_properties", fmt.Sprintf("%v", entry), "expected [type, name, default?]")
		}
		kind, err := ParseTextureKind(entry[0])
		if err != nil {
			return nil, err
		}
		prop := TextureProperty{Kind: kind}
		if kind == texture.Kind2D {
			if len(entry) != 3 {
				return nil, parseErr("texture_properties", entry[1], "2D texture property requires a default tag")
			}
			tag, err := ParseDefaultTag(entry[2])
			if err != nil {
				return nil, err
			}
			prop.Default = tag
		}
		textures = append(textures, NamedTexture{Name: entry[1], Property: prop})
	}

	subs := make([]*SubShader, 0, len(desc.SubShaders))
	seen := make(map[string]bool, len(desc.SubShaders))
	for _, sd := range desc.SubShaders {
		sub, err := parseSubShader(sd, baseDir)
		if err != nil {
			return nil, err
		}
		if seen[sub.Tag] {
			return nil, parseErr("subshaders.tag", sub.Tag, "duplicate sub-shader tag")
		}
		seen[sub.Tag] = true
		subs = append(subs, sub)
	}

	return New(desc.Name, uniforms, textures, subs), nil
}

func parseSubShader(desc subShaderDescription, baseDir string) (*SubShader, error) {
	if desc.Tag == "" {
		return nil, parseErr("subshaders.tag", "", "sub-shader tag is required")
	}
	if desc.VS == "" || desc.FS == "" {
		return nil, parseErr("subshaders", desc.Tag, "vs and fs shader paths are required")
	}

	state := DefaultRasterState()
	var err error

	if desc.Cull != nil {
		if state.CullMode, err = ParseCullMode(*desc.Cull); err != nil {
			return nil, err
		}
	}
	if desc.FrontFace != nil {
		if state.FrontFace, err = ParseFrontFace(*desc.FrontFace); err != nil {
			return nil, err
		}
	}
	if desc.WriteMask != nil {
		if state.WriteMask, err = ParseWriteMask(desc.WriteMask); err != nil {
			return nil, err
		}
	}
	if desc.Blend != nil {
		if state.Blend, err = parseBlend(desc.Blend); err != nil {
			return nil, err
		}
	}
	if desc.DepthWrite != nil {
		state.DepthWrite = *desc.DepthWrite
	}
	if desc.DepthCompare != nil {
		if state.DepthCompare, err = ParseCompareFunction(*desc.DepthCompare); err != nil {
			return nil, err
		}
	}
	if desc.Stencil != nil {
		if state.Stencil, err = parseStencil(desc.Stencil); err != nil {
			return nil, err
		}
	}

	return &SubShader{
		Tag:          desc.Tag,
		VertexPath:   filepath.Join(baseDir, desc.VS),
		FragmentPath: filepath.Join(baseDir, desc.FS),
		Definitions:  desc.Definition,
		State:        state,
	}, nil
}

func parseBlend(desc *blendDescription) (wgpu.BlendState, error) {
	var state wgpu.BlendState
	var err error

	if state.Color.Operation, err = ParseBlendOperation(desc.Op); err != nil {
		return wgpu.BlendState{}, err
	}
	if state.Color.SrcFactor, err = ParseBlendFactor(desc.Src); err != nil {
		return wgpu.BlendState{}, err
	}
	if state.Color.DstFactor, err = ParseBlendFactor(desc.Dst); err != nil {
		return wgpu.BlendState{}, err
	}

	// alpha equation defaults to the color equation
	state.Alpha = state.Color
	if desc.OpAlpha != nil {
		if state.Alpha.Operation, err = ParseBlendOperation(*desc.OpAlpha); err != nil {
			return wgpu.BlendState{}, err
		}
	}
	if desc.SrcAlpha != nil {
		if state.Alpha.SrcFactor, err = ParseBlendFactor(*desc.SrcAlpha); err != nil {
			return wgpu.BlendState{}, err
		}
	}
	if desc.DstAlpha != nil {
		if state.Alpha.DstFactor, err = ParseBlendFactor(*desc.DstAlpha); err != nil {
			return wgpu.BlendState{}, err
		}
	}
	return state, nil
}

func parseStencilFace(desc *stencilFaceDescription) (wgpu.StencilFaceState, error) {
	face := stencilKeep()
	var err error
	if desc.Compare != "" {
		if face.Compare, err = ParseCompareFunction(desc.Compare); err != nil {
			return wgpu.StencilFaceState{}, err
		}
	}
	if desc.Fail != "" {
		if face.FailOp, err = ParseStencilOperation(desc.Fail); err != nil {
			return wgpu.StencilFaceState{}, err
		}
	}
	if desc.DepthFail != "" {
		if face.DepthFailOp, err = ParseStencilOperation(desc.DepthFail); err != nil {
			return wgpu.StencilFaceState{}, err
		}
	}
	if desc.Pass != "" {
		if face.PassOp, err = ParseStencilOperation(desc.Pass); err != nil {
			return wgpu.StencilFaceState{}, err
		}
	}
	return face, nil
}

func parseStencil(desc *stencilDescription) (StencilState, error) {
	state := DefaultRasterState().Stencil
	state.ReadMask = desc.ReadMask
	state.WriteMask = desc.WriteMask
	var err error
	if desc.Front != nil {
		if state.Front, err = parseStencilFace(desc.Front); err != nil {
			return StencilState{}, err
		}
	}
	if desc.Back != nil {
		if state.Back, err = parseStencilFace(desc.Back); err != nil {
			return StencilState{}, err
		}
	}
	return state, nil
}
