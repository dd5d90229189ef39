package flexure

import (
	"errors"
	"math"

	"github.com/katalvlaran/specalign/lines"
	"github.com/katalvlaran/specalign/msgs"
)

// fwhmFactor converts a Gaussian sigma to its full width at half
// maximum, 2*sqrt(2*ln 2), fixed throughout the corrector.
var fwhmFactor = 2 * math.Sqrt(2*math.Log(2))

// Supported extraction methods.
const (
	// MethodBoxcar selects the boxcar extraction of each object.
	MethodBoxcar = "boxcar"

	// MethodOptimal selects the optimal extraction of each object.
	MethodOptimal = "optimal"
)

// Default archive sky spectra per spectrograph arm.
const (
	// ArchiveKastBlue is the default archive for the blue arms.
	ArchiveKastBlue = "sky_kastb_600.fits"

	// ArchiveParanal is the generic default archive.
	ArchiveParanal = "paranal_sky.fits"
)

// Sentinel errors for flexure correction.
var (
	// ErrNoArchive indicates no archival sky spectrum could be
	// resolved to an existing resource.
	ErrNoArchive = errors.New("flexure: archival sky spectrum not found")

	// ErrUnsupportedMethod indicates the configured extraction method
	// is unrecognized or absent from the object.
	ErrUnsupportedMethod = errors.New("flexure: unsupported extraction method")

	// ErrInsufficientOverlap indicates fewer than the minimum samples
	// in the wavelength intersection of object and archive.
	ErrInsufficientOverlap = errors.New("flexure: not enough overlap between sky spectra")

	// ErrNoLines indicates no valid emission lines were detected in
	// the object or archive spectrum.
	ErrNoLines = errors.New("flexure: no valid emission lines detected")

	// ErrBadFit indicates a degenerate sub-pixel peak fit.
	ErrBadFit = errors.New("flexure: degenerate correlation peak fit")

	// ErrShortInput indicates input vectors too short or of unequal
	// length.
	ErrShortInput = errors.New("flexure: input vectors too short or mismatched")
)

// minOverlap is the minimum number of object samples required inside
// the wavelength intersection of object and archive.
const minOverlap = 50

// topLines is the number of highest-amplitude valid lines matched on
// each side.
const topLines = 5

// Spectrum is a sampled one-dimensional spectrum: a wavelength vector
// and a flux vector of equal length.
type Spectrum struct {
	Wave []float64
	Flux []float64
}

// Clone returns a deep copy of the spectrum.
func (s Spectrum) Clone() Spectrum {
	w := make([]float64, len(s.Wave))
	copy(w, s.Wave)
	f := make([]float64, len(s.Flux))
	copy(f, s.Flux)

	return Spectrum{Wave: w, Flux: f}
}

// Extraction is one named extraction of a spectral object: its
// wavelength solution and the sky flux extracted alongside the object.
type Extraction struct {
	Wave []float64
	Sky  []float64
}

// SpecObj is one spectral object on a detector with its named
// extractions (boxcar, optimal, ...).
type SpecObj struct {
	Name        string
	Extractions map[string]*Extraction
}

// Result records the flexure estimate for one object: the sub-pixel
// correlation peak fit, the applied shift, the sampled correlation
// around its maximum, the smoothing applied to the archive, and the
// diagnostic spectra.
type Result struct {
	// Object is the name of the corrected object.
	Object string

	// PolyFit holds the ascending-power coefficients of the degree-2
	// polynomial fitted to the correlation peak.
	PolyFit []float64

	// Shift is the estimated flexure shift in pixels.
	Shift float64

	// Subpix is the integer lag grid around the correlation maximum.
	Subpix []float64

	// Corr is the correlation sampled at Subpix.
	Corr []float64

	// CorrCenter is the zero-lag index of the same-size correlation.
	CorrCenter float64

	// SmoothSigPix is the Gaussian sigma, in archive pixels, applied
	// to match the archive resolution to the object (0 if none).
	SmoothSigPix float64

	// ArxSpec is the (possibly smoothed) archive spectrum rebinned to
	// the overlap window.
	ArxSpec Spectrum

	// SkySpec is the object sky spectrum on the overlap window with
	// the estimated shift applied to its wavelengths.
	SkySpec Spectrum
}

// DetectFunc locates emission lines in a flux vector; see lines.Detect.
type DetectFunc func(flux []float64) []lines.Line

// Options configures a Corrector.
//
// Fields:
//   - ArchiveSpec  — explicit archive file; overrides the arm default.
//   - Spectrograph — instrument arm used for the default archive lookup
//     (kast_blue and lris_blue map to the blue archive, everything else
//     to the generic one).
//   - SkyDir   — directory holding archive sky files; joined to
//     relative archive names.
//   - MaxShift — half-width, in pixels, of the correlation search
//     window around zero lag (default 20).
//   - Method   — extraction method providing the sky spectrum
//     (default MethodBoxcar).
//   - Detect   — line detector (default lines.Detect with standard
//     tuning).
//   - Log      — message sink (default msgs.Default()).
type Options struct {
	ArchiveSpec  string
	Spectrograph string
	SkyDir       string
	MaxShift     int
	Method       string
	Detect       DetectFunc
	Log          *msgs.Logger
}

// DefaultOptions returns the standard corrector configuration.
func DefaultOptions() Options {
	return Options{
		MaxShift: 20,
		Method:   MethodBoxcar,
	}
}

// Corrector estimates and applies sub-pixel wavelength shifts by
// cross-correlating object sky spectra against an archival reference.
// The archive spectrum is loaded once at construction and treated as
// immutable; per-object smoothing operates on a local copy.
type Corrector struct {
	opts    Options
	log     *msgs.Logger
	detect  DetectFunc
	archive Spectrum
	file    string
}

// ArchiveFile returns the resolved archive sky-spectrum path.
func (c *Corrector) ArchiveFile() string { return c.file }

// Archive returns the loaded archive spectrum.
func (c *Corrector) Archive() Spectrum { return c.archive }
