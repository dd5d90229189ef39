// Package parset implements a typed, constrained, nestable parameter
// container used to configure every stage of a spectroscopic reduction
// pipeline, with deterministic configuration-file round-tripping.
//
// 🚀 What is a ParSet?
//
//	A glorified ordered dictionary that constrains its components:
//	  • every key carries a value, a default, and a description
//	  • optional option lists restrict values to an allowed set
//	  • optional kind lists restrict values to declared categories
//	  • values may themselves be ParSets (nested configuration) or
//	    homogeneous lists of ParSets (indexed sub-sections)
//
// ✨ Key features:
//   - closed tagged-variant value model (Bool, Int, Float, String,
//     sequences, nested sets, callables) — no reflection
//   - atomic writes: a failing Set or Add leaves the set untouched
//   - deterministic bracketed-section config rendering ([a], [[b]], ...)
//     with wrapped '#' description comments
//   - config parsing that round-trips every explicitly-set value back
//     into a schema-matching set
//
// ⚙️ Usage:
//
//	import "github.com/katalvlaran/specalign/parset"
//
//	p, err := parset.New([]parset.Def{
//	  {Key: "max_shift", Default: parset.Int(20),
//	   Kinds: []parset.Kind{parset.KindInt},
//	   Descr: "Maximum allowed flexure shift in pixels"},
//	  {Key: "spec", Default: parset.String("boxcar"),
//	   Options: []parset.Value{parset.String("boxcar"), parset.String("optimal")},
//	   Descr: "Extraction to use for the sky spectrum"},
//	})
//	if err != nil { ... }
//	if err = p.Set("max_shift", parset.Int(30)); err != nil { ... }
//	lines := p.ConfigLines(parset.ConfigOptions{SectionName: "flexure"})
//
// Errors are sentinel values (ErrSchema, ErrInvalidValue, ErrWrongType,
// ErrDuplicateKey, ErrValidation, ...) and are wrapped with context;
// discriminate with errors.Is.
//
// See pardb for the columnar aggregation of schema-identical sets.
package parset
