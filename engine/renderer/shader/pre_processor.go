// pre_processor.go implements the WGSL shader pre-processor applied to every
// sub-shader source before module compilation. Sub-shader descriptions carry a
// definition set (name -> optional string value); the pre-processor uses it to
// resolve two line-based directive forms, since WGSL itself has no macro
// system:
//
//	//#ifdef NAME ... //#else ... //#endif   conditional line inclusion
//	//#ifndef NAME ... //#endif              inverted conditional
//	${NAME}                                  token substitution with the
//	                                         definition's value
//
// Conditionals nest. A definition with a nil value satisfies #ifdef but
// substitutes as the empty string.
package shader

import (
	"fmt"
	"strings"
)

// preProcessor is the implementation of the PreProcessor interface.
type preProcessor struct{}

// PreProcessor resolves conditional directives and definition tokens in raw
// WGSL source against a sub-shader's definition set.
type PreProcessor interface {
	// Process applies the definition set to the source: conditional blocks
	// are kept or dropped based on which names are defined, and ${NAME}
	// tokens are replaced with the definition's value.
	//
	// Parameters:
	//   - source: the raw WGSL source containing directives to resolve
	//   - definitions: defined symbols; a nil value defines the symbol
	//     without a replacement value
	//
	// Returns:
	//   - string: the resolved WGSL source
	//   - error: an error if directives are unbalanced or a ${NAME} token
	//     references an undefined symbol
	Process(source string, definitions map[string]*string) (string, error)
}

var _ PreProcessor = &preProcessor{}

// NewPreProcessor creates a stateless pre-processor instance.
//
// Returns:
//   - PreProcessor: a ready-to-use pre-processor
func NewPreProcessor() PreProcessor {
	return &preProcessor{}
}

func (p *preProcessor) Process(source string, definitions map[string]*string) (string, error) {
	lines := strings.Split(source, "\n")
	out := make([]string, 0, len(lines))

	// conditional stack: each frame records whether its block emits lines
	type frame struct {
		emitting  bool
		satisfied bool
		line      int
	}
	var stack []frame
	emitting := func() bool {
		for _, f := range stack {
			if !f.emitting {
				return false
			}
		}
		return true
	}

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "//#ifdef "):
			name := strings.TrimSpace(strings.TrimPrefix(trimmed, "//#ifdef "))
			_, defined := definitions[name]
			stack = append(stack, frame{emitting: defined, satisfied: defined, line: i + 1})
		case strings.HasPrefix(trimmed, "//#ifndef "):
			name := strings.TrimSpace(strings.TrimPrefix(trimmed, "//#ifndef "))
			_, defined := definitions[name]
			stack = append(stack, frame{emitting: !defined, satisfied: !defined, line: i + 1})
		case trimmed == "//#else":
			if len(stack) == 0 {
				return "", fmt.Errorf("line %d: //#else without matching //#ifdef", i+1)
			}
			top := &stack[len(stack)-1]
			top.emitting = !top.satisfied
			top.satisfied = true
		case trimmed == "//#endif":
			if len(stack) == 0 {
				return "", fmt.Errorf("line %d: //#endif without matching //#ifdef", i+1)
			}
			stack = stack[:len(stack)-1]
		default:
			if !emitting() {
				continue
			}
			resolved, err := substituteTokens(line, i+1, definitions)
			if err != nil {
				return "", err
			}
			out = append(out, resolved)
		}
	}
	if len(stack) != 0 {
		return "", fmt.Errorf("line %d: //#ifdef without matching //#endif", stack[len(stack)-1].line)
	}
	return strings.Join(out, "\n"), nil
}

// substituteTokens replaces every ${NAME} occurrence on the line with the
// definition's value.
func substituteTokens(line string, lineNo int, definitions map[string]*string) (string, error) {
	for {
		start := strings.Index(line, "${")
		if start < 0 {
			return line, nil
		}
		end := strings.Index(line[start:], "}")
		if end < 0 {
			return "", fmt.Errorf("line %d: unterminated ${ token", lineNo)
		}
		end += start
		name := line[start+2 : end]
		value, ok := definitions[name]
		if !ok {
			return "", fmt.Errorf("line %d: undefined symbol %q", lineNo, name)
		}
		replacement := ""
		if value != nil {
			replacement = *value
		}
		line = line[:start] + replacement + line[end+1:]
	}
}
