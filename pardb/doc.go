// Package pardb aggregates many structurally identical parameter sets
// into a single columnar database for batch analysis.
//
// 🚀 What is a ParDatabase?
//
//	A read-mostly table built from N parset.ParSet instances sharing one
//	schema (same keys, same order). Each column's storage is inferred
//	from the declared kinds of the corresponding key:
//	  • numeric scalar kinds unify to float64
//	  • sequence kinds become fixed-shape float64 array columns
//	  • textual values become fixed-width strings (max observed length)
//	  • untyped or kind-ambiguous columns fall back to opaque storage
//
// Unset numeric entries are rejected by default; opt in to NaN filling
// with WithNaNFill when summarization over missing values is intended.
//
// Mutation is append-only: Append merges another database's rows after
// checking storage compatibility; there are no in-place row edits.
//
// ⚙️ Usage:
//
//	import "github.com/katalvlaran/specalign/pardb"
//
//	db, err := pardb.New(sets)          // ErrSchemaMismatch on drift
//	col, err := db.Floats("max_shift")  // one float64 per input set
//	err = db.Append(other)
package pardb
