package pardb

import (
	"errors"
	"fmt"
	"math"

	"github.com/katalvlaran/specalign/msgs"
	"github.com/katalvlaran/specalign/parset"
)

var (
	// ErrSchemaMismatch indicates the input sets do not share one
	// schema, or an Append with storage-incompatible columns.
	ErrSchemaMismatch = errors.New("pardb: parameter sets do not share a schema")

	// ErrUnsetNumeric indicates an unset value in a numeric column
	// without the NaN-fill policy enabled.
	ErrUnsetNumeric = errors.New("pardb: unset value in numeric column")

	// ErrUnknownKey indicates a column lookup for a key outside the
	// schema.
	ErrUnknownKey = errors.New("pardb: unknown key")

	// ErrColumnKind indicates a typed column accessor applied to a
	// column of a different storage kind.
	ErrColumnKind = errors.New("pardb: column has different storage kind")
)

// ColKind enumerates column storage categories.
type ColKind int

const (
	// ColOpaque stores rows as their original parset values.
	ColOpaque ColKind = iota

	// ColFloat stores one float64 per row.
	ColFloat

	// ColArray stores one fixed-shape []float64 per row.
	ColArray

	// ColString stores one fixed-width string per row.
	ColString

	// ColBool stores one bool per row.
	ColBool
)

// Column is one column of the database. Exactly one of the storage
// slices is populated, selected by Kind.
type Column struct {
	Key  string
	Kind ColKind

	Floats  []float64
	Arrays  [][]float64
	Strings []string
	Bools   []bool
	Values  []parset.Value

	// Shape is the fixed per-row length of an array column.
	Shape int

	// Width is the widest observed string of a string column.
	Width int
}

// Option configures database construction.
type Option func(*ParDatabase)

// WithNaNFill stores unset numeric entries as NaN instead of rejecting
// them. This intentionally loses the unset/NaN distinction; enable it
// only when downstream summarization treats both alike.
func WithNaNFill() Option {
	return func(db *ParDatabase) { db.nanFill = true }
}

// WithLogger routes column-inference warnings to log.
func WithLogger(log *msgs.Logger) Option {
	return func(db *ParDatabase) { db.log = log }
}

// ParDatabase is a columnar aggregation of schema-identical parameter
// sets. Rows are append-only.
type ParDatabase struct {
	keys  []string
	kinds map[string][]parset.Kind
	cols  map[string]*Column
	nsets int

	nanFill bool
	log     *msgs.Logger
}

// numericScalar reports whether kinds is a non-empty subset of the
// numeric scalar kinds.
func numericScalar(kinds []parset.Kind) bool {
	if len(kinds) == 0 {
		return false
	}
	for _, k := range kinds {
		if k != parset.KindInt && k != parset.KindFloat {
			return false
		}
	}

	return true
}

// numericSequence reports whether kinds is a non-empty subset of the
// numeric sequence kinds.
func numericSequence(kinds []parset.Kind) bool {
	if len(kinds) == 0 {
		return false
	}
	for _, k := range kinds {
		if k != parset.KindInts && k != parset.KindFloats {
			return false
		}
	}

	return true
}

// mixedScalarSequence reports whether kinds declares both a numeric
// scalar and a numeric sequence kind.
func mixedScalarSequence(kinds []parset.Kind) bool {
	scalar, seq := false, false
	for _, k := range kinds {
		switch k {
		case parset.KindInt, parset.KindFloat:
			scalar = true
		case parset.KindInts, parset.KindFloats:
			seq = true
		}
	}

	return scalar && seq
}

// asFloat converts a numeric scalar value to float64.
func asFloat(v parset.Value) (float64, bool) {
	switch x := v.(type) {
	case parset.Int:
		return float64(x), true
	case parset.Float:
		return float64(x), true
	default:
		return 0, false
	}
}

// asFloatSlice converts a numeric sequence value to []float64.
func asFloatSlice(v parset.Value) ([]float64, bool) {
	switch x := v.(type) {
	case parset.Ints:
		out := make([]float64, len(x))
		for i, n := range x {
			out[i] = float64(n)
		}

		return out, true
	case parset.Floats:
		out := make([]float64, len(x))
		copy(out, x)

		return out, true
	default:
		return nil, false
	}
}

// New builds a columnar database from schema-identical parameter sets.
// Returns ErrSchemaMismatch if any two inputs differ in key set or
// count, and ErrUnsetNumeric for unset numeric entries unless
// WithNaNFill is given.
func New(sets []*parset.ParSet, opts ...Option) (*ParDatabase, error) {
	if len(sets) == 0 {
		return nil, fmt.Errorf("%w: no input sets", ErrSchemaMismatch)
	}

	db := &ParDatabase{
		keys:  sets[0].Keys(),
		kinds: make(map[string][]parset.Kind, sets[0].NPar()),
		cols:  make(map[string]*Column, sets[0].NPar()),
		nsets: len(sets),
		log:   msgs.Default(),
	}
	for _, o := range opts {
		o(db)
	}

	for i := 1; i < len(sets); i++ {
		if sets[i].NPar() != sets[0].NPar() {
			return nil, fmt.Errorf("%w: set %d has %d parameters, want %d",
				ErrSchemaMismatch, i, sets[i].NPar(), sets[0].NPar())
		}
		other := sets[i].Keys()
		for j, k := range db.keys {
			if other[j] != k {
				return nil, fmt.Errorf("%w: set %d key %d is %q, want %q",
					ErrSchemaMismatch, i, j, other[j], k)
			}
		}
	}

	for _, k := range db.keys {
		db.kinds[k] = sets[0].Kinds(k)
		col, err := db.buildColumn(k, sets)
		if err != nil {
			return nil, err
		}
		db.cols[k] = col
	}

	return db, nil
}

// buildColumn infers the storage for one key and fills it from every
// row, applying the inference policy in declaration order: kind-mixing
// goes opaque with a warning, numeric scalars unify to float64, numeric
// sequences become fixed-shape arrays, textual values become fixed-width
// strings, and anything else keeps the literal kind of the first row or
// falls back to opaque.
func (db *ParDatabase) buildColumn(key string, sets []*parset.ParSet) (*Column, error) {
	kinds := sets[0].Kinds(key)
	col := &Column{Key: key}

	values := func() []parset.Value {
		vs := make([]parset.Value, len(sets))
		for i, s := range sets {
			vs[i] = s.MustGet(key)
		}

		return vs
	}

	switch {
	case mixedScalarSequence(kinds):
		db.log.Warn("pardb: key %q mixes scalar and sequence kinds; column stored opaque", key)
		col.Kind = ColOpaque
		col.Values = values()

	case numericScalar(kinds):
		col.Kind = ColFloat
		col.Floats = make([]float64, len(sets))
		for i, s := range sets {
			v := s.MustGet(key)
			if v == nil {
				if !db.nanFill {
					return nil, fmt.Errorf("%w: key %q, row %d", ErrUnsetNumeric, key, i)
				}
				col.Floats[i] = math.NaN()
				continue
			}
			f, ok := asFloat(v)
			if !ok {
				return nil, fmt.Errorf("%w: key %q, row %d holds %s",
					ErrSchemaMismatch, key, i, v.Kind())
			}
			col.Floats[i] = f
		}

	case numericSequence(kinds):
		col.Kind = ColArray
		col.Arrays = make([][]float64, len(sets))
		for i, s := range sets {
			v := s.MustGet(key)
			fs, ok := asFloatSlice(v)
			if v == nil || !ok {
				return nil, fmt.Errorf("%w: key %q, row %d is not a numeric sequence",
					ErrSchemaMismatch, key, i)
			}
			if i == 0 {
				col.Shape = len(fs)
			} else if len(fs) != col.Shape {
				return nil, fmt.Errorf("%w: key %q, row %d has length %d, want %d",
					ErrSchemaMismatch, key, i, len(fs), col.Shape)
			}
			col.Arrays[i] = fs
		}

	default:
		first := sets[0].MustGet(key)
		switch first.(type) {
		case parset.String:
			// Fixed-width text unless any row is unset.
			strs := make([]string, len(sets))
			for i, s := range sets {
				v := s.MustGet(key)
				sv, ok := v.(parset.String)
				if v == nil || !ok {
					col.Kind = ColOpaque
					col.Values = values()

					return col, nil
				}
				strs[i] = string(sv)
				if len(sv) > col.Width {
					col.Width = len(sv)
				}
			}
			col.Kind = ColString
			col.Strings = strs

		case parset.Bool:
			bools := make([]bool, len(sets))
			for i, s := range sets {
				v := s.MustGet(key)
				bv, ok := v.(parset.Bool)
				if v == nil || !ok {
					col.Kind = ColOpaque
					col.Values = values()

					return col, nil
				}
				bools[i] = bool(bv)
			}
			col.Kind = ColBool
			col.Bools = bools

		default:
			col.Kind = ColOpaque
			col.Values = values()
		}
	}

	return col, nil
}

// NSets returns the number of rows.
func (db *ParDatabase) NSets() int { return db.nsets }

// NPar returns the number of columns.
func (db *ParDatabase) NPar() int { return len(db.keys) }

// Keys returns the column keys in schema order. The slice is a copy.
func (db *ParDatabase) Keys() []string {
	out := make([]string, len(db.keys))
	copy(out, db.keys)

	return out
}

// Col returns the column for key.
func (db *ParDatabase) Col(key string) (*Column, error) {
	col, ok := db.cols[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}

	return col, nil
}

// Floats returns the float64 storage of a numeric column.
func (db *ParDatabase) Floats(key string) ([]float64, error) {
	col, err := db.Col(key)
	if err != nil {
		return nil, err
	}
	if col.Kind != ColFloat {
		return nil, fmt.Errorf("%w: %q", ErrColumnKind, key)
	}

	return col.Floats, nil
}

// Row reconstructs row i as parset values in schema order. NaN-filled
// numeric entries come back as Float(NaN), not as unset.
func (db *ParDatabase) Row(i int) ([]parset.Value, error) {
	if i < 0 || i >= db.nsets {
		return nil, fmt.Errorf("pardb: row %d out of range [0,%d)", i, db.nsets)
	}

	out := make([]parset.Value, len(db.keys))
	for j, k := range db.keys {
		col := db.cols[k]
		switch col.Kind {
		case ColFloat:
			out[j] = parset.Float(col.Floats[i])
		case ColArray:
			arr := make(parset.Floats, col.Shape)
			copy(arr, col.Arrays[i])
			out[j] = arr
		case ColString:
			out[j] = parset.String(col.Strings[i])
		case ColBool:
			out[j] = parset.Bool(col.Bools[i])
		default:
			out[j] = col.Values[i]
		}
	}

	return out, nil
}

// Append merges the rows of other into the database. The schemas and
// every column's storage kind (and array shape) must agree; string
// widths widen to the maximum of both sides.
func (db *ParDatabase) Append(other *ParDatabase) error {
	if len(other.keys) != len(db.keys) {
		return fmt.Errorf("%w: appending %d columns to %d",
			ErrSchemaMismatch, len(other.keys), len(db.keys))
	}
	for j, k := range db.keys {
		if other.keys[j] != k {
			return fmt.Errorf("%w: column %d is %q, want %q",
				ErrSchemaMismatch, j, other.keys[j], k)
		}
		if other.cols[k].Kind != db.cols[k].Kind {
			return fmt.Errorf("%w: column %q storage differs", ErrSchemaMismatch, k)
		}
		if db.cols[k].Kind == ColArray && other.cols[k].Shape != db.cols[k].Shape {
			return fmt.Errorf("%w: column %q array shape %d, want %d",
				ErrSchemaMismatch, k, other.cols[k].Shape, db.cols[k].Shape)
		}
	}

	for _, k := range db.keys {
		dst, src := db.cols[k], other.cols[k]
		switch dst.Kind {
		case ColFloat:
			dst.Floats = append(dst.Floats, src.Floats...)
		case ColArray:
			dst.Arrays = append(dst.Arrays, src.Arrays...)
		case ColString:
			dst.Strings = append(dst.Strings, src.Strings...)
			if src.Width > dst.Width {
				dst.Width = src.Width
			}
		case ColBool:
			dst.Bools = append(dst.Bools, src.Bools...)
		default:
			dst.Values = append(dst.Values, src.Values...)
		}
	}
	db.nsets += other.nsets

	return nil
}
