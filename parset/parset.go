package parset

import (
	"fmt"
)

// Def declares one parameter of a set: its key, initial and default
// values, and the constraints applied on every write.
//
// Fields:
//   - Key     — unique parameter name (required, non-empty).
//   - Value   — initial value; if nil, Default is used.
//   - Default — value applied when the parameter is unset.
//   - Options — if non-empty, every non-nil value must equal one member.
//   - Kinds   — if non-empty, every non-nil value must have one of these kinds.
//   - CanCall — if true, every non-nil value must be a Func.
//   - Descr   — human-readable description, emitted as config comments.
type Def struct {
	Key     string
	Value   Value
	Default Value
	Options []Value
	Kinds   []Kind
	CanCall bool
	Descr   string
}

// Option configures a ParSet at construction.
type Option func(*ParSet)

// WithSection sets the top-level configuration section name.
func WithSection(name string) Option {
	return func(p *ParSet) { p.section = name }
}

// WithSectionComment sets the comment written above the top-level
// configuration section.
func WithSectionComment(comment string) Option {
	return func(p *ParSet) { p.comment = comment }
}

// ParSet is an ordered, typed, constrained parameter container.
//
// Every key is present in all auxiliary maps simultaneously (values,
// defaults, options, kinds, callable flags, descriptions), and every
// held value is either nil (unset) or satisfies the key's constraints.
// Iteration order is key insertion order, so rendered configuration
// output is deterministic.
type ParSet struct {
	keys    []string
	data    map[string]Value
	def     map[string]Value
	opts    map[string][]Value
	kinds   map[string][]Kind
	canCall map[string]bool
	descr   map[string]string

	section string
	comment string
}

// New constructs a ParSet from the given parameter definitions.
// Defaults are applied to parameters whose Value is nil. Returns
// ErrSchema for empty or duplicate keys, and the usual Set validation
// errors if an initial value violates its own constraints.
func New(defs []Def, opts ...Option) (*ParSet, error) {
	p := &ParSet{
		keys:    make([]string, 0, len(defs)),
		data:    make(map[string]Value, len(defs)),
		def:     make(map[string]Value, len(defs)),
		opts:    make(map[string][]Value, len(defs)),
		kinds:   make(map[string][]Kind, len(defs)),
		canCall: make(map[string]bool, len(defs)),
		descr:   make(map[string]string, len(defs)),
	}
	for _, o := range opts {
		o(p)
	}

	for _, d := range defs {
		if d.Key == "" {
			return nil, fmt.Errorf("%w: empty key", ErrSchema)
		}
		if _, ok := p.data[d.Key]; ok {
			return nil, fmt.Errorf("%w: key %q repeated", ErrSchema, d.Key)
		}
		p.keys = append(p.keys, d.Key)
		p.data[d.Key] = nil
		p.def[d.Key] = d.Default
		p.opts[d.Key] = d.Options
		p.kinds[d.Key] = d.Kinds
		p.canCall[d.Key] = d.CanCall
		p.descr[d.Key] = d.Descr

		// Initial values pass through Set so constraint checking is
		// identical to any later write.
		v := d.Value
		if v == nil {
			v = d.Default
		}
		if err := p.Set(d.Key, v); err != nil {
			return nil, err
		}
	}

	return p, nil
}

// MustNew is New for statically-known schemas; it panics on error.
func MustNew(defs []Def, opts ...Option) *ParSet {
	p, err := New(defs, opts...)
	if err != nil {
		panic(err)
	}

	return p
}

// NPar returns the number of parameters in the set.
func (p *ParSet) NPar() int { return len(p.keys) }

// Keys returns the parameter keys in insertion order.
// The returned slice is a copy.
func (p *ParSet) Keys() []string {
	out := make([]string, len(p.keys))
	copy(out, p.keys)

	return out
}

// Has reports whether key is part of the schema.
func (p *ParSet) Has(key string) bool {
	_, ok := p.data[key]

	return ok
}

// Get returns the current value of key, or ErrUnknownKey.
// A nil Value with a nil error means the parameter is unset.
func (p *ParSet) Get(key string) (Value, error) {
	v, ok := p.data[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}

	return v, nil
}

// MustGet returns the current value of key, panicking if the key is
// not part of the schema. Intended for statically-known keys.
func (p *ParSet) MustGet(key string) Value {
	v, err := p.Get(key)
	if err != nil {
		panic(err)
	}

	return v
}

// Default returns the default value of key, or ErrUnknownKey.
func (p *ParSet) Default(key string) (Value, error) {
	if !p.Has(key) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}

	return p.def[key], nil
}

// Descr returns the description of key (empty if none).
func (p *ParSet) Descr(key string) string { return p.descr[key] }

// Options returns the allowed options for key (nil if unconstrained).
func (p *ParSet) Options(key string) []Value { return p.opts[key] }

// Kinds returns the allowed kinds for key (nil if unconstrained).
func (p *ParSet) Kinds(key string) []Kind { return p.kinds[key] }

// CanCall reports whether key is declared callable.
func (p *ParSet) CanCall(key string) bool { return p.canCall[key] }

// Set assigns value to key after validating it against the key's
// constraints. A nil value always clears the slot regardless of
// constraints. Validation is atomic: on error the previous value is
// left untouched.
//
// Errors: ErrUnknownKey, ErrInvalidValue (options), ErrWrongType
// (kind or callable constraint).
func (p *ParSet) Set(key string, value Value) error {
	if _, ok := p.data[key]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	if value == nil {
		p.data[key] = nil

		return nil
	}

	if err := p.check(key, value); err != nil {
		return err
	}
	p.data[key] = value

	return nil
}

// check validates value against the constraints of key without
// mutating anything.
func (p *ParSet) check(key string, value Value) error {
	if opts := p.opts[key]; len(opts) > 0 {
		found := false
		for _, o := range opts {
			if valuesEqual(o, value) {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("%w: %s for key %q", ErrInvalidValue, value.configValue(), key)
		}
	}

	if kinds := p.kinds[key]; len(kinds) > 0 && !kindAllowed(value.Kind(), kinds) {
		return fmt.Errorf("%w: key %q got %s, want one of: %s",
			ErrWrongType, key, value.Kind(), kindNames(kinds))
	}

	if p.canCall[key] {
		f, ok := value.(Func)
		if !ok || f == nil {
			return fmt.Errorf("%w: key %q requires a callable", ErrWrongType, key)
		}
	}

	return nil
}

// Add extends the schema with a new parameter. It fails with
// ErrDuplicateKey if key already exists. If the implicit Set of the
// initial value fails, the partially-added schema entries are rolled
// back so the schema is exactly as before the call.
func (p *ParSet) Add(d Def) error {
	if d.Key == "" {
		return fmt.Errorf("%w: empty key", ErrSchema)
	}
	if _, ok := p.data[d.Key]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateKey, d.Key)
	}

	p.keys = append(p.keys, d.Key)
	p.data[d.Key] = nil
	p.def[d.Key] = d.Default
	p.opts[d.Key] = d.Options
	p.kinds[d.Key] = d.Kinds
	p.canCall[d.Key] = d.CanCall
	p.descr[d.Key] = d.Descr

	v := d.Value
	if v == nil {
		v = d.Default
	}
	if err := p.Set(d.Key, v); err != nil {
		// Roll back the extension; no residual schema pollution.
		p.keys = p.keys[:len(p.keys)-1]
		delete(p.data, d.Key)
		delete(p.def, d.Key)
		delete(p.opts, d.Key)
		delete(p.kinds, d.Key)
		delete(p.canCall, d.Key)
		delete(p.descr, d.Key)

		return err
	}

	return nil
}

// ValidateKeys checks that every key in required is part of the schema
// and that every set member whose key is absent from canBeNil holds a
// value. Both failures are reported with ErrValidation, listing every
// offending key.
func (p *ParSet) ValidateKeys(required, canBeNil []string) error {
	var missing []string
	for _, k := range required {
		if !p.Has(k) {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: required keys not defined: %v", ErrValidation, missing)
	}

	allowed := make(map[string]bool, len(canBeNil))
	for _, k := range canBeNil {
		allowed[k] = true
	}
	var unset []string
	for _, k := range p.keys {
		if p.data[k] == nil && !allowed[k] {
			unset = append(unset, k)
		}
	}
	if len(unset) > 0 {
		return fmt.Errorf("%w: keys must not be unset: %v", ErrValidation, unset)
	}

	return nil
}
