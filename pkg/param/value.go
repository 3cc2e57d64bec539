// Package param holds the immutable parameter sets that drive part
// families, and the validation that turns raw parameters into accepted
// configurations or fatal configuration errors.
package param

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Kind is the type of a parameter value.
type Kind int

const (
	KindNumber Kind = iota // mm, degrees or a ratio
	KindEnum               // one of a small set of strings
	KindFlag               // enables or disables an optional feature
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindEnum:
		return "enum"
	case KindFlag:
		return "flag"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Value is a single parameter value.
type Value struct {
	kind Kind
	num  float64
	str  string
	flag bool
}

// Number returns a numeric value.
func Number(v float64) Value { return Value{kind: KindNumber, num: v} }

// Enum returns an enum value.
func Enum(s string) Value { return Value{kind: KindEnum, str: s} }

// Flag returns a flag value.
func Flag(b bool) Value { return Value{kind: KindFlag, flag: b} }

// Parse interprets command-line text: numbers become Number, true/false
// become Flag, anything else is an Enum.
func Parse(text string) Value {
	t := strings.TrimSpace(text)
	if f, err := strconv.ParseFloat(t, 64); err == nil {
		return Number(f)
	}
	switch strings.ToLower(t) {
	case "true", "yes", "on":
		return Flag(true)
	case "false", "no", "off":
		return Flag(false)
	}
	return Enum(t)
}

func (v Value) Kind() Kind { return v.kind }

// Float returns the numeric value; zero for other kinds.
func (v Value) Float() float64 { return v.num }

// Text returns the enum string; empty for other kinds.
func (v Value) Text() string { return v.str }

// Bool returns the flag value; false for other kinds.
func (v Value) Bool() bool { return v.flag }

// String formats the value for reports and listings.
func (v Value) String() string {
	switch v.kind {
	case KindNumber:
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	case KindFlag:
		return strconv.FormatBool(v.flag)
	default:
		return v.str
	}
}

// Set is an immutable mapping from parameter name to value.
type Set struct {
	vals map[string]Value
}

// NewSet copies m into a new Set.
func NewSet(m map[string]Value) Set {
	vals := make(map[string]Value, len(m))
	for k, v := range m {
		vals[k] = v
	}
	return Set{vals: vals}
}

// Get returns the named value.
func (s Set) Get(name string) (Value, bool) {
	v, ok := s.vals[name]
	return v, ok
}

// Len returns the number of parameters.
func (s Set) Len() int { return len(s.vals) }

// Names returns the parameter names in sorted order.
func (s Set) Names() []string {
	names := make([]string, 0, len(s.vals))
	for k := range s.vals {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Map returns a copy of the set's contents.
func (s Set) Map() map[string]Value {
	out := make(map[string]Value, len(s.vals))
	for k, v := range s.vals {
		out[k] = v
	}
	return out
}

// Override returns a new set with the values of o replacing those of s.
// Every name in o must exist in s with the same kind.
func (s Set) Override(o Set) (Set, error) {
	out := s.Map()
	for _, name := range o.Names() {
		nv := o.vals[name]
		cur, ok := s.vals[name]
		if !ok {
			return Set{}, fmt.Errorf("param: unknown parameter %q", name)
		}
		if cur.kind != nv.kind {
			return Set{}, fmt.Errorf("param: %s: cannot override %s value with %s %s", name, cur.kind, nv.kind, nv)
		}
		out[name] = nv
	}
	return Set{vals: out}, nil
}
