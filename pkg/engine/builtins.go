package engine

import (
	"fmt"
	"strings"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/sixbitdeep/3D-Models/pkg/param"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource rewrites .part source for zygomys:
//
//  1. :keyword becomes the string literal "__kw_keyword", so keyword
//     arguments need no registered symbols and cannot collide with user
//     variables.
//  2. kebab-case identifiers become snake_case (buckle-width becomes
//     buckle_width); zygomys would read the hyphen as subtraction.
//  3. ; line comments become // comments.
//
// String literals are copied untouched. Newlines are never added or
// removed, so zygomys line numbers match the script.
func preprocessSource(source string) string {
	out := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		switch c := b[i]; {
		case c == '"':
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
			out = append(out, b[i:j]...)
			i = j

		case c == '`':
			j := i + 1
			for j < len(b) && b[j] != '`' {
				j++
			}
			if j < len(b) {
				j++
			}
			out = append(out, b[i:j]...)
			i = j

		case c == ';':
			out = append(out, '/', '/')
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				out = append(out, b[i])
				i++
			}

		case c == ':' && i+1 < len(b) && b[i+1] == '=':
			out = append(out, ':', '=')
			i += 2

		case c == ':' && i+1 < len(b) && isLetter(b[i+1]):
			j := i + 1
			for j < len(b) && isKWChar(b[j]) {
				j++
			}
			out = append(out, '"')
			out = append(out, kwPrefix...)
			out = append(out, b[i+1:j]...)
			out = append(out, '"')
			i = j

		case c == '-' && i > 0 && i+1 < len(b) && isIdentChar(b[i-1]) && isLetter(b[i+1]):
			// A hyphen inside an identifier; a minus operator has no
			// identifier character on its left.
			out = append(out, '_')
			i++

		default:
			out = append(out, c)
			i++
		}
	}
	return string(out)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

// ---------------------------------------------------------------------------
// Keyword arguments
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW reports whether s is a preprocessed keyword and returns its name.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok || !strings.HasPrefix(str.S, kwPrefix) {
		return "", false
	}
	return str.S[len(kwPrefix):], true
}

// kwPair is one keyword argument in call order.
type kwPair struct {
	name  string
	value zygo.Sexp
}

// parseKeywords reads a keyword-only argument list. A keyword given twice
// is an error, as is any positional argument.
func parseKeywords(args []zygo.Sexp) ([]kwPair, error) {
	var out []kwPair
	seen := map[string]bool{}
	for i := 0; i < len(args); i++ {
		name, ok := isKW(args[i])
		if !ok {
			return nil, fmt.Errorf("expected keyword argument, got %s", args[i].SexpString(nil))
		}
		if i+1 == len(args) {
			return nil, fmt.Errorf(":%s has no value", name)
		}
		if seen[name] {
			return nil, fmt.Errorf(":%s given twice", name)
		}
		seen[name] = true
		i++
		out = append(out, kwPair{name: name, value: args[i]})
	}
	return out, nil
}

// ParamName converts a script keyword to its parameter name.
func ParamName(keyword string) string {
	return strings.ReplaceAll(keyword, "-", "_")
}

// toValue maps a script value to a parameter value. Numbers become
// numeric parameters, keywords and strings choices, and booleans flags.
func toValue(s zygo.Sexp) (param.Value, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return param.Number(float64(v.Val)), nil
	case *zygo.SexpFloat:
		return param.Number(v.Val), nil
	case *zygo.SexpBool:
		return param.Flag(v.Val), nil
	case *zygo.SexpStr:
		if name, ok := isKW(v); ok {
			return param.Enum(name), nil
		}
		return param.Enum(v.S), nil
	}
	return param.Value{}, fmt.Errorf("expected number, keyword, string or boolean, got %T", s)
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs one builtin per family. Each call such as
//
//	(csleeve :buckle-width 51.6 :slot-side :right)
//
// appends a Request to reqs and returns nil. Source must be preprocessed
// with preprocessSource so keywords are recognisable.
func registerBuiltins(env *zygo.Zlisp, families []string, reqs *[]Request) {
	for _, family := range families {
		family := family
		env.AddFunction(family, func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			kws, err := parseKeywords(args)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", family, err)
			}
			m := make(map[string]param.Value, len(kws))
			for _, kw := range kws {
				v, err := toValue(kw.value)
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("%s: %s: %w", family, kw.name, err)
				}
				m[ParamName(kw.name)] = v
			}
			*reqs = append(*reqs, Request{Family: family, Overrides: param.NewSet(m)})
			return zygo.SexpNull, nil
		})
	}
}
