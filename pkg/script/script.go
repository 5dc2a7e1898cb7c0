// Package script evaluates a small Lisp scene language into a
// field.Field. It wraps zygomys in a sandboxed environment, so scripts
// can compose the field primitives but cannot touch the filesystem or
// the process.
//
// A scene script is a sequence of expressions whose last value is the
// field to mesh:
//
//	(smooth-union
//	  (sphere :radius 1)
//	  (translate (box :size (vec3 1 1 2)) (vec3 0.8 0 0))
//	  0.3)
package script

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/voxelforge/isomesh/pkg/field"
)

// Engine evaluates scene scripts. Each Evaluate call runs in a fresh
// sandbox, so an Engine is stateless and safe for concurrent use.
type Engine struct{}

// NewEngine creates a script engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Evaluate runs source and returns the field produced by its last
// expression.
func (e *Engine) Evaluate(source string) (field.Field, error) {
	if strings.TrimSpace(source) == "" {
		return nil, fmt.Errorf("script: empty source")
	}

	env := zygo.NewZlispSandbox()
	defer env.Stop()
	registerBuiltins(env)

	if err := env.LoadString(preprocess(source)); err != nil {
		return nil, scriptError(err)
	}
	result, err := env.Run()
	if err != nil {
		return nil, scriptError(err)
	}

	sf, ok := result.(*sexpField)
	if !ok {
		if result == nil {
			return nil, fmt.Errorf("script: no value produced")
		}
		return nil, fmt.Errorf("script: last expression is %s, not a field",
			result.SexpString(nil))
	}
	return sf.f, nil
}

// linePattern pulls the line number out of zygomys parse errors, which
// read "Error on line N: ...".
var linePattern = regexp.MustCompile(`(?i)on line (\d+):\s*(.*)`)

func scriptError(err error) error {
	if m := linePattern.FindStringSubmatch(err.Error()); m != nil {
		line, _ := strconv.Atoi(m[1])
		return fmt.Errorf("script: line %d: %s", line, strings.TrimSpace(m[2]))
	}
	return fmt.Errorf("script: %w", err)
}

// kwPrefix marks keyword arguments after preprocessing. Keywords become
// plain strings so they need no global symbol registration.
const kwPrefix = "__kw_"

// preprocess rewrites the scene dialect into syntax zygomys accepts:
// ";" comments become "//", ":keyword" becomes a marked string, and
// hyphens inside identifiers become underscores (zygomys reads a bare
// hyphen as subtraction). String literals pass through untouched.
func preprocess(source string) string {
	var out strings.Builder
	out.Grow(len(source) + len(source)/4)
	b := source
	i := 0
	for i < len(b) {
		switch {
		case b[i] == '"':
			j := i + 1
			for j < len(b) && b[j] != '"' {
				if b[j] == '\\' && j+1 < len(b) {
					j++
				}
				j++
			}
			if j < len(b) {
				j++
			}
			out.WriteString(b[i:j])
			i = j

		case b[i] == ';':
			out.WriteString("//")
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				out.WriteByte(b[i])
				i++
			}

		case b[i] == ':' && i+1 < len(b) && isAlpha(b[i+1]):
			j := i + 1
			for j < len(b) && isKWByte(b[j]) {
				j++
			}
			name := strings.ReplaceAll(b[i+1:j], "-", "_")
			out.WriteByte('"')
			out.WriteString(kwPrefix)
			out.WriteString(name)
			out.WriteByte('"')
			i = j

		case b[i] == '-' && i > 0 && i+1 < len(b) && isIdent(b[i-1]) && isAlpha(b[i+1]):
			out.WriteByte('_')
			i++

		default:
			out.WriteByte(b[i])
			i++
		}
	}
	return out.String()
}

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWByte(c byte) bool {
	return isAlpha(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdent(c byte) bool {
	return isAlpha(c) || (c >= '0' && c <= '9') || c == '_'
}
