package shader

import (
	"github.com/penumbra3d/penumbra/engine/texture"
)

// UniformProperty is the type of one named field in a shader's material
// uniform block. Each variant has a fixed byte size and minimum alignment
// matching GPU uniform-buffer packing rules.
type UniformProperty int

const (
	// UniformFloat is a single 32-bit float (size 4, align 4).
	UniformFloat UniformProperty = iota

	// UniformVec2 is a 2-component float vector (size 8, align 8).
	UniformVec2

	// UniformVec3 is a 3-component float vector (size 12, align 16).
	UniformVec3

	// UniformVec4 is a 4-component float vector (size 16, align 16).
	UniformVec4

	// UniformMat3 is a 3x3 float matrix stored as three 16-byte padded
	// columns (size 48, align 16), not a tightly packed 36 bytes.
	UniformMat3

	// UniformMat4 is a 4x4 float matrix (size 64, align 16).
	UniformMat4
)

// Size returns the byte size of the property inside a uniform block.
func (p UniformProperty) Size() uint32 {
	switch p {
	case UniformFloat:
		return 4
	case UniformVec2:
		return 8
	case UniformVec3:
		return 12
	case UniformVec4:
		return 16
	case UniformMat3:
		return 48
	case UniformMat4:
		return 64
	default:
		return 0
	}
}

// Align returns the minimum byte alignment of the property inside a uniform block.
func (p UniformProperty) Align() uint32 {
	switch p {
	case UniformFloat:
		return 4
	case UniformVec2:
		return 8
	default:
		return 16
	}
}

// String returns the descriptor keyword for the property type.
func (p UniformProperty) String() string {
	switch p {
	case UniformFloat:
		return "float"
	case UniformVec2:
		return "vec2"
	case UniformVec3:
		return "vec3"
	case UniformVec4:
		return "vec4"
	case UniformMat3:
		return "mat3"
	case UniformMat4:
		return "mat4"
	default:
		return "unknown"
	}
}

// ParseUniformProperty converts a descriptor keyword into a UniformProperty.
//
// Parameters:
//   - keyword: one of "float", "vec2", "vec3", "vec4", "mat3", "mat4"
//
// Returns:
//   - UniformProperty: the parsed property type
//   - error: a ParseError naming the keyword when it is not recognized
func ParseUniformProperty(keyword string) (UniformProperty, error) {
	switch keyword {
	case "float":
		return UniformFloat, nil
	case "vec2":
		return UniformVec2, nil
	case "vec3":
		return UniformVec3, nil
	case "vec4":
		return UniformVec4, nil
	case "mat3":
		return UniformMat3, nil
	case "mat4":
		return UniformMat4, nil
	default:
		return 0, parseErr("uniform_properties", keyword, "unknown uniform property type")
	}
}

// DefaultTag names the placeholder texture bound for a 2D texture property a
// material never set.
type DefaultTag string

const (
	// DefaultWhite binds the 1x1 [255, 255, 255, 255] placeholder.
	DefaultWhite DefaultTag = "white"

	// DefaultBlack binds the 1x1 [0, 0, 0, 255] placeholder.
	DefaultBlack DefaultTag = "black"

	// DefaultGray binds the 1x1 [128, 128, 128, 255] placeholder.
	DefaultGray DefaultTag = "gray"

	// DefaultNormal binds the 1x1 [128, 128, 255, 255] flat-normal placeholder.
	DefaultNormal DefaultTag = "normal"
)

// ParseDefaultTag validates a Texture2D default keyword. "grey" is accepted
// as an alias for "gray".
//
// Parameters:
//   - keyword: one of "white", "black", "gray", "grey", "normal"
//
// Returns:
//   - DefaultTag: the normalized tag
//   - error: a ParseError naming the keyword when it is not recognized
func ParseDefaultTag(keyword string) (DefaultTag, error) {
	switch keyword {
	case "white":
		return DefaultWhite, nil
	case "black":
		return DefaultBlack, nil
	case "gray", "grey":
		return DefaultGray, nil
	case "normal":
		return DefaultNormal, nil
	default:
		return "", parseErr("texture_properties", keyword, "unknown texture default, expected white/black/gray/normal")
	}
}

// TextureProperty is one named texture slot declared by a shader. Kind drives
// both the bind-group layout view dimension and the type filtering applied by
// material setters; Default is meaningful only for 2D textures.
type TextureProperty struct {
	// Kind is the declared dimensionality (2D, 3D or Cube).
	Kind texture.Kind

	// Default is the placeholder tag for 2D textures. 3D and Cube
	// properties fall back to the fixed black volume and default cube.
	Default DefaultTag
}

// ParseTextureKind converts a descriptor keyword into a texture kind.
//
// Parameters:
//   - keyword: one of "2D", "3D", "Cube"
//
// Returns:
//   - texture.Kind: the parsed kind
//   - error: a ParseError naming the keyword when it is not recognized
func ParseTextureKind(keyword string) (texture.Kind, error) {
	switch keyword {
	case "2D":
		return texture.Kind2D, nil
	case "3D":
		return texture.Kind3D, nil
	case "Cube":
		return texture.KindCube, nil
	default:
		return 0, parseErr("texture_properties", keyword, "unknown texture property type, expected 2D/3D/Cube")
	}
}
