// Package flexure estimates and corrects sub-pixel wavelength shifts
// caused by instrument flexure, by cross-correlating the sky spectrum
// extracted with each object against an archival sky spectrum.
//
// 🚀 What is flexure correction?
//
//	Gravity flexes a spectrograph as the telescope tracks, so the
//	recorded spectrum drifts by a fraction of a pixel against the
//	wavelength solution derived from arc frames.  Night-sky emission
//	lines ride along with the object, so correlating the extracted sky
//	against a high-quality archive recovers the drift:
//	  • match spectral resolution (smooth the archive if sharper)
//	  • rebin both spectra onto the common wavelength range
//	  • cross-correlate and fit the peak to sub-pixel precision
//	  • shift every extraction's wavelength solution by the result
//
// ✨ Key features:
//   - archive auto-selection per spectrograph arm, with explicit override
//   - flux-conserving rebinning onto the overlap window
//   - resolution matching via quadrature-difference Gaussian smoothing
//   - degree-2 sub-pixel refinement of the correlation maximum
//   - per-object fault isolation: recoverable failures are logged and
//     skipped, the remaining objects still get corrected
//   - air/vacuum wavelength conversion helpers
//
// ⚙️ Usage:
//
//	import "github.com/katalvlaran/specalign/flexure"
//
//	corr, err := flexure.New(flexure.Options{
//	  Spectrograph: "kast_blue",
//	  SkyDir:       "data/sky",
//	  MaxShift:     20,
//	})
//	if err != nil { ... }
//	results, err := corr.Run(objs)
//
// Configuration can also arrive through a parameter set: Par() declares
// the schema and FromParSet() converts a populated set into Options.
//
// Performance:
//
//   - Correlation: O(N²) in the overlap length (N is typically ≤ a few
//     thousand samples)
//   - Memory:      O(N) per object
//
// See examples in example_test.go.
package flexure
