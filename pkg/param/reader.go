package param

// Reader extracts typed values from a Set. Missing parameters, kind
// mismatches and unknown enum choices are recorded as violations on the
// validator it was created with.
type Reader struct {
	set Set
	v   *Validator
}

// NewReader returns a reader over s reporting into v.
func NewReader(s Set, v *Validator) *Reader {
	return &Reader{set: s, v: v}
}

func (r *Reader) get(name string, kind Kind) (Value, bool) {
	val, ok := r.set.Get(name)
	if !ok {
		r.v.Failf(name, "missing parameter")
		return Value{}, false
	}
	if val.kind != kind {
		r.v.Failf(name, "want %s, got %s %s", kind, val.kind, val)
		return Value{}, false
	}
	return val, true
}

// Number returns the named number, or 0 after recording a violation.
func (r *Reader) Number(name string) float64 {
	val, _ := r.get(name, KindNumber)
	return val.num
}

// Int returns the named number truncated to an int. Non-integral values
// are violations.
func (r *Reader) Int(name string) int {
	f := r.Number(name)
	n := int(f)
	if float64(n) != f {
		r.v.Failf(name, "want an integer, got %v", f)
	}
	return n
}

// Enum returns the named enum, which must be one of choices.
func (r *Reader) Enum(name string, choices ...string) string {
	val, ok := r.get(name, KindEnum)
	if !ok {
		return ""
	}
	for _, c := range choices {
		if val.str == c {
			return c
		}
	}
	r.v.Failf(name, "%q is not one of %v", val.str, choices)
	return val.str
}

// Flag returns the named flag.
func (r *Reader) Flag(name string) bool {
	val, _ := r.get(name, KindFlag)
	return val.flag
}
