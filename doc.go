// Package specalign is a toolkit for keeping spectroscopic reductions
// aligned — typed, validated parameter handling on one side and
// sky-line flexure correction of wavelength solutions on the other.
//
// 🚀 What is specalign?
//
//	A set of focused packages that cover the plumbing every spectral
//	pipeline ends up rebuilding:
//		• Parameter sets: ordered, typed, constrained key/value containers
//		  with config rendering and parsing (round-trip safe)
//		• Parameter databases: columnar views over many uniform sets
//		• Flexure correction: cross-correlation of extracted sky spectra
//		  against archival references, with sub-pixel peak refinement
//		• Emission-line detection: amplitude, center and width estimates
//		• Master frames: FITS-backed calibration products with provenance
//		• Messaging: leveled, verbosity-gated reduction logging
//
// ✨ Why choose specalign?
//
//   - Deterministic – insertion-ordered parameters, reproducible config output
//   - Fail-fast – every parameter write validated against its declared schema
//   - Fault-isolated – per-object flexure failures never abort the run
//   - Extensible – schemas grow at runtime, detectors are pluggable
//
// Under the hood, everything is organized under six subpackages:
//
//	parset/  — typed parameter sets: schema, validation, config I/O
//	pardb/   — columnar database over uniform parameter sets
//	flexure/ — wavelength flexure estimation & correction
//	lines/   — emission-line detection in 1D spectra
//	master/  — master calibration frames on FITS files
//	msgs/    — leveled reduction messages
//
// Quick sketch of the flexure flow:
//
//	object sky ──┐
//	             ├── rebin → cross-correlate → fit peak → shift λ
//	archive sky ─┘
//
// Dive into the per-package doc.go files for full examples.
//
//	go get github.com/katalvlaran/specalign
package specalign
