package shader

import (
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
)

// Pass tags with positional meaning at draw time: the first light rendered
// for a mesh uses ForwardBase, every subsequent light uses ForwardAdd. A
// shader lacking the requested tag produces no draw for that light.
const (
	TagForwardBase = "ForwardBase"
	TagForwardAdd  = "ForwardAdd"
)

// StencilState is the full stencil configuration of a sub-shader pass.
type StencilState struct {
	ReadMask  uint32
	WriteMask uint32
	Front     wgpu.StencilFaceState
	Back      wgpu.StencilFaceState
}

// RasterState is the fixed-function state of one sub-shader pass.
type RasterState struct {
	CullMode     wgpu.CullMode
	FrontFace    wgpu.FrontFace
	WriteMask    wgpu.ColorWriteMask
	Blend        wgpu.BlendState
	DepthWrite   bool
	DepthCompare wgpu.CompareFunction
	Stencil      StencilState
}

// DefaultRasterState returns the state a sub-shader uses for every field its
// description omits: back-face culling, counter-clockwise winding, full RGBA
// write mask, replace blending, depth write on with Less comparison, and
// pass-through stencil.
func DefaultRasterState() RasterState {
	return RasterState{
		CullMode:  wgpu.CullModeBack,
		FrontFace: wgpu.FrontFaceCCW,
		WriteMask: wgpu.ColorWriteMaskAll,
		Blend: wgpu.BlendState{
			Color: blendReplace(),
			Alpha: blendReplace(),
		},
		DepthWrite:   true,
		DepthCompare: wgpu.CompareFunctionLess,
		Stencil: StencilState{
			ReadMask:  0xFFFFFFFF,
			WriteMask: 0xFFFFFFFF,
			Front:     stencilKeep(),
			Back:      stencilKeep(),
		},
	}
}

func blendReplace() wgpu.BlendComponent {
	return wgpu.BlendComponent{
		Operation: wgpu.BlendOperationAdd,
		SrcFactor: wgpu.BlendFactorOne,
		DstFactor: wgpu.BlendFactorZero,
	}
}

func stencilKeep() wgpu.StencilFaceState {
	return wgpu.StencilFaceState{
		Compare:     wgpu.CompareFunctionAlways,
		FailOp:      wgpu.StencilOperationKeep,
		DepthFailOp: wgpu.StencilOperationKeep,
		PassOp:      wgpu.StencilOperationKeep,
	}
}

// SubShader is one named rendering pass of a shader: a vertex/fragment WGSL
// source pair, the pre-processor definitions applied at compile time, and the
// pass's fixed-function state. Modules are compiled during Shader.Build.
type SubShader struct {
	// Tag is the pass name, unique within its shader.
	Tag string

	// VertexPath and FragmentPath locate the WGSL sources on disk.
	VertexPath   string
	FragmentPath string

	// Definitions are pre-processor symbols applied to both sources. A nil
	// value defines the symbol without a replacement value.
	Definitions map[string]*string

	// State is the pass's raster/blend/depth/stencil configuration.
	State RasterState

	vertexModule   *wgpu.ShaderModule
	fragmentModule *wgpu.ShaderModule
}

// VertexModule returns the compiled vertex shader module, or nil before Build.
func (s *SubShader) VertexModule() *wgpu.ShaderModule {
	return s.vertexModule
}

// FragmentModule returns the compiled fragment shader module, or nil before Build.
func (s *SubShader) FragmentModule() *wgpu.ShaderModule {
	return s.fragmentModule
}

// ParseCullMode converts a descriptor keyword into a cull mode.
func ParseCullMode(keyword string) (wgpu.CullMode, error) {
	switch keyword {
	case "front":
		return wgpu.CullModeFront, nil
	case "back":
		return wgpu.CullModeBack, nil
	case "none":
		return wgpu.CullModeNone, nil
	default:
		return 0, parseErr("cull", keyword, "unknown cull mode, expected front/back/none")
	}
}

// ParseFrontFace converts a descriptor keyword into a winding order.
func ParseFrontFace(keyword string) (wgpu.FrontFace, error) {
	switch keyword {
	case "ccw":
		return wgpu.FrontFaceCCW, nil
	case "cw":
		return wgpu.FrontFaceCW, nil
	default:
		return 0, parseErr("front_face", keyword, "unknown front face winding, expected ccw/cw")
	}
}

// ParseWriteMask combines single-channel keywords ("R", "G", "B", "A") into a
// color write mask.
//
// Parameters:
//   - channels: channel keywords, each one of R/G/B/A
//
// Returns:
//   - wgpu.ColorWriteMask: the union of the named channels
//   - error: a ParseError naming the first unrecognized channel
func ParseWriteMask(channels []string) (wgpu.ColorWriteMask, error) {
	var mask wgpu.ColorWriteMask
	for _, c := range channels {
		switch strings.ToUpper(c) {
		case "R":
			mask |= wgpu.ColorWriteMaskRed
		case "G":
			mask |= wgpu.ColorWriteMaskGreen
		case "B":
			mask |= wgpu.ColorWriteMaskBlue
		case "A":
			mask |= wgpu.ColorWriteMaskAlpha
		default:
			return 0, parseErr("write_mask", c, "unknown color channel, expected R/G/B/A")
		}
	}
	return mask, nil
}

// ParseBlendOperation converts a descriptor keyword into a blend operation.
func ParseBlendOperation(keyword string) (wgpu.BlendOperation, error) {
	switch keyword {
	case "add":
		return wgpu.BlendOperationAdd, nil
	case "sub":
		return wgpu.BlendOperationSubtract, nil
	case "rsub":
		return wgpu.BlendOperationReverseSubtract, nil
	case "min":
		return wgpu.BlendOperationMin, nil
	case "max":
		return wgpu.BlendOperationMax, nil
	default:
		return 0, parseErr("blend", keyword, "unknown blend operation, expected add/sub/rsub/min/max")
	}
}

// ParseBlendFactor converts a descriptor keyword into a blend factor.
func ParseBlendFactor(keyword string) (wgpu.BlendFactor, error) {
	switch keyword {
	case "zero":
		return wgpu.BlendFactorZero, nil
	case "one":
		return wgpu.BlendFactorOne, nil
	case "src":
		return wgpu.BlendFactorSrc, nil
	case "one_minus_src":
		return wgpu.BlendFactorOneMinusSrc, nil
	case "src_alpha":
		return wgpu.BlendFactorSrcAlpha, nil
	case "one_minus_src_alpha":
		return wgpu.BlendFactorOneMinusSrcAlpha, nil
	case "dst":
		return wgpu.BlendFactorDst, nil
	case "one_minus_dst":
		return wgpu.BlendFactorOneMinusDst, nil
	case "dst_alpha":
		return wgpu.BlendFactorDstAlpha, nil
	case "one_minus_dst_alpha":
		return wgpu.BlendFactorOneMinusDstAlpha, nil
	case "src_alpha_saturated":
		return wgpu.BlendFactorSrcAlphaSaturated, nil
	case "constant":
		return wgpu.BlendFactorConstant, nil
	case "one_minus_constant":
		return wgpu.BlendFactorOneMinusConstant, nil
	default:
		return 0, parseErr("blend", keyword, "unknown blend factor")
	}
}

// ParseCompareFunction converts a descriptor keyword into a comparison function.
func ParseCompareFunction(keyword string) (wgpu.CompareFunction, error) {
	switch keyword {
	case "never":
		return wgpu.CompareFunctionNever, nil
	case "less":
		return wgpu.CompareFunctionLess, nil
	case "equal":
		return wgpu.CompareFunctionEqual, nil
	case "less_equal":
		return wgpu.CompareFunctionLessEqual, nil
	case "greater":
		return wgpu.CompareFunctionGreater, nil
	case "not_equal":
		return wgpu.CompareFunctionNotEqual, nil
	case "greater_equal":
		return wgpu.CompareFunctionGreaterEqual, nil
	case "always":
		return wgpu.CompareFunctionAlways, nil
	default:
		return 0, parseErr("depth_compare", keyword, "unknown compare function")
	}
}

// ParseStencilOperation converts a descriptor keyword into a stencil operation.
func ParseStencilOperation(keyword string) (wgpu.StencilOperation, error) {
	switch keyword {
	case "keep":
		return wgpu.StencilOperationKeep, nil
	case "zero":
		return wgpu.StencilOperationZero, nil
	case "replace":
		return wgpu.StencilOperationReplace, nil
	case "invert":
		return wgpu.StencilOperationInvert, nil
	case "increment_clamp":
		return wgpu.StencilOperationIncrementClamp, nil
	case "decrement_clamp":
		return wgpu.StencilOperationDecrementClamp, nil
	case "increment_wrap":
		return wgpu.StencilOperationIncrementWrap, nil
	case "decrement_wrap":
		return wgpu.StencilOperationDecrementWrap, nil
	default:
		return 0, parseErr("stencil", keyword, "unknown stencil operation")
	}
}
